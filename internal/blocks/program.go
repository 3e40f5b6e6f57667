package blocks

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// BlockInstance is a block placed into a program. Type, category, text and icon
// are copied from the definition at placement time.
type BlockInstance struct {
	InstanceID string   `json:"instanceId"`
	ID         string   `json:"id"`
	Type       string   `json:"type"`
	Category   Category `json:"category"`
	Text       string   `json:"text"`
	Icon       string   `json:"icon"`
}

// BlockRecord is the plain transport form of a placed block
type BlockRecord struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Category   string `json:"category"`
	Text       string `json:"text"`
	Icon       string `json:"icon"`
	InstanceID string `json:"instanceId,omitempty"`
}

// MalformedProgramError reports serialized program data that is not a list of
// well-formed block records. Index is -1 when the document itself is wrong.
type MalformedProgramError struct {
	Index  int
	Field  string
	Reason string
}

func (e *MalformedProgramError) Error() string {
	switch {
	case e.Index < 0:
		return fmt.Sprintf("malformed program: %s", e.Reason)
	case e.Field == "":
		return fmt.Sprintf("malformed program: block %d: %s", e.Index, e.Reason)
	default:
		return fmt.Sprintf("malformed program: block %d: field %q %s", e.Index, e.Field, e.Reason)
	}
}

// IsMalformedProgram reports whether err wraps a MalformedProgramError
func IsMalformedProgram(err error) bool {
	var target *MalformedProgramError
	return errors.As(err, &target)
}

// Program is the ordered block sequence a learner assembles. Order is execution
// order. A Program is meant to be driven by a single caller; Snapshot hands out
// copies so a running animation never observes later edits.
type Program struct {
	blocks []BlockInstance
	used   map[string]struct{}
}

// NewProgram creates an empty program
func NewProgram() *Program {
	return &Program{used: make(map[string]struct{})}
}

// NewProgramFrom creates a program with one instance per definition, in order
func NewProgramFrom(defs []BlockDefinition) *Program {
	p := NewProgram()
	for _, def := range defs {
		p.Append(def)
	}
	return p
}

func (slf *Program) newInstanceID(defID string) string {
	for {
		id := fmt.Sprintf("%s_%s", defID, uuid.NewString())
		if _, taken := slf.used[id]; !taken {
			return id
		}
	}
}

// Append places a new instance of def at the end of the program
func (slf *Program) Append(def BlockDefinition) BlockInstance {
	inst := BlockInstance{
		InstanceID: slf.newInstanceID(def.ID),
		ID:         def.ID,
		Type:       def.Type,
		Category:   def.Category,
		Text:       def.Text,
		Icon:       def.Icon,
	}
	slf.used[inst.InstanceID] = struct{}{}
	slf.blocks = append(slf.blocks, inst)
	return inst
}

// Remove deletes the instance with the given id. Removing an unknown id is a no-op.
func (slf *Program) Remove(instanceID string) bool {
	for i, inst := range slf.blocks {
		if inst.InstanceID == instanceID {
			slf.blocks = append(slf.blocks[:i:i], slf.blocks[i+1:]...)
			delete(slf.used, instanceID)
			return true
		}
	}
	return false
}

// Clear empties the program
func (slf *Program) Clear() {
	slf.blocks = nil
	slf.used = make(map[string]struct{})
}

// Len returns the number of placed blocks
func (slf *Program) Len() int {
	return len(slf.blocks)
}

// Snapshot returns a copy of the current sequence
func (slf *Program) Snapshot() []BlockInstance {
	out := make([]BlockInstance, len(slf.blocks))
	copy(out, slf.blocks)
	return out
}

// ToSerializable converts the program into its transport form
func (slf *Program) ToSerializable() []BlockRecord {
	records := make([]BlockRecord, len(slf.blocks))
	for i, inst := range slf.blocks {
		records[i] = BlockRecord{
			ID:         inst.ID,
			Type:       inst.Type,
			Category:   string(inst.Category),
			Text:       inst.Text,
			Icon:       inst.Icon,
			InstanceID: inst.InstanceID,
		}
	}
	return records
}

// FromSerializable rebuilds a program from transport records. It applies the
// same rule as ParseProgram: id, type, category, text and icon must be set.
// Records without an instance id, or repeating one already seen, get a fresh id.
func FromSerializable(records []BlockRecord) (*Program, error) {
	if records == nil {
		return nil, &MalformedProgramError{Index: -1, Reason: "not a list of block records"}
	}

	p := NewProgram()
	for i, rec := range records {
		if err := validateRecord(i, rec); err != nil {
			return nil, err
		}
		inst := BlockInstance{
			InstanceID: rec.InstanceID,
			ID:         rec.ID,
			Type:       rec.Type,
			Category:   Category(rec.Category),
			Text:       rec.Text,
			Icon:       rec.Icon,
		}
		if _, taken := p.used[inst.InstanceID]; inst.InstanceID == "" || taken {
			inst.InstanceID = p.newInstanceID(rec.ID)
		}
		p.used[inst.InstanceID] = struct{}{}
		p.blocks = append(p.blocks, inst)
	}
	return p, nil
}

func validateRecord(index int, rec BlockRecord) error {
	if rec.ID == "" {
		return &MalformedProgramError{Index: index, Field: "id", Reason: "is required"}
	}
	if rec.Type == "" {
		return &MalformedProgramError{Index: index, Field: "type", Reason: "is required"}
	}
	if rec.Category == "" {
		return &MalformedProgramError{Index: index, Field: "category", Reason: "is required"}
	}
	if !Category(rec.Category).Valid() {
		return &MalformedProgramError{Index: index, Field: "category", Reason: fmt.Sprintf("has unknown value %q", rec.Category)}
	}
	if rec.Text == "" {
		return &MalformedProgramError{Index: index, Field: "text", Reason: "is required"}
	}
	if rec.Icon == "" {
		return &MalformedProgramError{Index: index, Field: "icon", Reason: "is required"}
	}
	return nil
}

var requiredRecordFields = []string{"id", "type", "category", "text", "icon"}

// ParseProgram decodes a JSON array of block records. Every element must be an
// object carrying id, type, category, text and icon as strings.
func ParseProgram(data []byte) (*Program, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, &MalformedProgramError{Index: -1, Reason: "not a list of block records"}
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, &MalformedProgramError{Index: -1, Reason: "not a list of block records"}
	}

	records := make([]BlockRecord, 0, len(elems))
	for i, elem := range elems {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(elem, &fields); err != nil || fields == nil {
			return nil, &MalformedProgramError{Index: i, Reason: "is not an object"}
		}

		values := make(map[string]string, len(requiredRecordFields))
		for _, name := range requiredRecordFields {
			raw, ok := fields[name]
			if !ok {
				return nil, &MalformedProgramError{Index: i, Field: name, Reason: "is required"}
			}
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return nil, &MalformedProgramError{Index: i, Field: name, Reason: "must be a string"}
			}
			values[name] = s
		}

		rec := BlockRecord{
			ID:       values["id"],
			Type:     values["type"],
			Category: values["category"],
			Text:     values["text"],
			Icon:     values["icon"],
		}
		if raw, ok := fields["instanceId"]; ok {
			if err := json.Unmarshal(raw, &rec.InstanceID); err != nil {
				return nil, &MalformedProgramError{Index: i, Field: "instanceId", Reason: "must be a string"}
			}
		}
		records = append(records, rec)
	}
	return FromSerializable(records)
}

// MarshalProgram encodes the program as a JSON array of block records
func MarshalProgram(p *Program) ([]byte, error) {
	return json.Marshal(p.ToSerializable())
}

// ProgramRecords is a serialized program stored as a JSON column
type ProgramRecords []BlockRecord

// Value implements driver.Valuer for GORM
func (pr ProgramRecords) Value() (driver.Value, error) {
	if pr == nil {
		return json.Marshal([]BlockRecord{})
	}
	return json.Marshal([]BlockRecord(pr))
}

// Scan implements sql.Scanner for GORM. Records are not validated here; callers
// go through FromSerializable to decide what to do with bad data.
func (pr *ProgramRecords) Scan(value interface{}) error {
	if value == nil {
		*pr = ProgramRecords{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("failed to scan ProgramRecords: expected []byte")
	}
	var out []BlockRecord
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	if out == nil {
		out = []BlockRecord{}
	}
	*pr = out
	return nil
}
