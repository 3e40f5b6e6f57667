package blocks

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Category groups block definitions in the palette
type Category string

const (
	CategoryMotion    Category = "motion"
	CategoryLooks     Category = "looks"
	CategoryControl   Category = "control"
	CategoryEvents    Category = "events"
	CategoryOperators Category = "operators"
)

// Valid reports whether c is one of the known palette categories
func (c Category) Valid() bool {
	switch c {
	case CategoryMotion, CategoryLooks, CategoryControl, CategoryEvents, CategoryOperators:
		return true
	}
	return false
}

// BlockDefinition is a catalog entry. Definitions are handed out by value so the
// catalog itself can never be modified by a caller.
type BlockDefinition struct {
	ID       string   `json:"id" yaml:"id"`
	Type     string   `json:"type" yaml:"type"`
	Category Category `json:"category" yaml:"-"`
	Text     string   `json:"text" yaml:"text"`
	Icon     string   `json:"icon" yaml:"icon"`
}

// The events block every new program starts with.
const defaultStarterType = "when_clicked"

//go:embed catalog.yaml
var embeddedCatalog []byte

var defaultCatalog = mustLoadCatalog(embeddedCatalog)

type catalogFile struct {
	Version    int `yaml:"version"`
	Categories []struct {
		Name   Category          `yaml:"name"`
		Blocks []BlockDefinition `yaml:"blocks"`
	} `yaml:"categories"`
}

// Catalog is the fixed vocabulary of blocks, loaded once at process start
type Catalog struct {
	order      []Category
	byCategory map[Category][]BlockDefinition
	byType     map[string]BlockDefinition
	all        []BlockDefinition
}

// DefaultCatalog returns the catalog embedded in the binary
func DefaultCatalog() *Catalog {
	return defaultCatalog
}

// LoadCatalog parses a YAML catalog document and validates it
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var file catalogFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("catalog: empty document")
		}
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	if file.Version != 1 {
		return nil, fmt.Errorf("catalog: unsupported version %d", file.Version)
	}

	c := &Catalog{
		byCategory: make(map[Category][]BlockDefinition),
		byType:     make(map[string]BlockDefinition),
	}
	ids := make(map[string]struct{})

	for _, group := range file.Categories {
		if !group.Name.Valid() {
			return nil, fmt.Errorf("catalog: unknown category %q", group.Name)
		}
		if _, seen := c.byCategory[group.Name]; seen {
			return nil, fmt.Errorf("catalog: category %q declared twice", group.Name)
		}
		c.order = append(c.order, group.Name)
		defs := make([]BlockDefinition, 0, len(group.Blocks))

		for _, def := range group.Blocks {
			if def.ID == "" || def.Type == "" || def.Text == "" || def.Icon == "" {
				return nil, fmt.Errorf("catalog: block in %q is missing id, type, text or icon", group.Name)
			}
			if _, dup := ids[def.ID]; dup {
				return nil, fmt.Errorf("catalog: duplicate block id %q", def.ID)
			}
			if _, dup := c.byType[def.Type]; dup {
				return nil, fmt.Errorf("catalog: duplicate block type %q", def.Type)
			}
			def.Category = group.Name
			ids[def.ID] = struct{}{}
			c.byType[def.Type] = def
			c.all = append(c.all, def)
			defs = append(defs, def)
		}
		c.byCategory[group.Name] = defs
	}

	if len(c.all) == 0 {
		return nil, errors.New("catalog: no blocks defined")
	}
	return c, nil
}

func mustLoadCatalog(data []byte) *Catalog {
	c, err := LoadCatalog(bytes.NewReader(data))
	if err != nil {
		panic(err)
	}
	return c
}

// Categories returns the categories in palette display order
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.order))
	copy(out, c.order)
	return out
}

// ListByCategory returns every category with its blocks in display order
func (c *Catalog) ListByCategory() map[Category][]BlockDefinition {
	out := make(map[Category][]BlockDefinition, len(c.byCategory))
	for cat, defs := range c.byCategory {
		cp := make([]BlockDefinition, len(defs))
		copy(cp, defs)
		out[cat] = cp
	}
	return out
}

// ListAll returns all blocks, category by category
func (c *Catalog) ListAll() []BlockDefinition {
	out := make([]BlockDefinition, len(c.all))
	copy(out, c.all)
	return out
}

// FindByType looks a definition up by its block type
func (c *Catalog) FindByType(blockType string) (BlockDefinition, bool) {
	def, ok := c.byType[blockType]
	return def, ok
}

// DefaultBlocks returns the definitions a fresh program is seeded with
func (c *Catalog) DefaultBlocks() []BlockDefinition {
	if def, ok := c.byType[defaultStarterType]; ok {
		return []BlockDefinition{def}
	}
	return []BlockDefinition{}
}
