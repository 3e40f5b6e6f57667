package blocks

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// Command is a primitive runtime instruction produced by interpretation
type Command string

const (
	CommandMoveForward Command = "MOVE_FORWARD"
	CommandTurnRight   Command = "TURN_RIGHT"
	CommandTurnLeft    Command = "TURN_LEFT"
	CommandSayHello    Command = "SAY_HELLO"
	CommandRepeatStart Command = "REPEAT_START"
	CommandRepeatEnd   Command = "REPEAT_END"
)

// AllCommands lists the command set in declaration order
func AllCommands() []Command {
	return []Command{
		CommandMoveForward,
		CommandTurnRight,
		CommandTurnLeft,
		CommandSayHello,
		CommandRepeatStart,
		CommandRepeatEnd,
	}
}

// Valid reports whether cmd belongs to the command set
func (cmd Command) Valid() bool {
	switch cmd {
	case CommandMoveForward, CommandTurnRight, CommandTurnLeft,
		CommandSayHello, CommandRepeatStart, CommandRepeatEnd:
		return true
	}
	return false
}

var ErrUnknownCommand = errors.New("unknown command")

// ParseCommand converts a wire value into a Command
func ParseCommand(s string) (Command, error) {
	cmd := Command(s)
	if !cmd.Valid() {
		return "", fmt.Errorf("%w %q", ErrUnknownCommand, s)
	}
	return cmd, nil
}

// CommandList is an ordered command sequence stored as a JSON column,
// typically a challenge's expected solution.
type CommandList []Command

// Value implements driver.Valuer for GORM
func (cl CommandList) Value() (driver.Value, error) {
	if cl == nil {
		return json.Marshal([]Command{})
	}
	return json.Marshal([]Command(cl))
}

// Scan implements sql.Scanner for GORM
func (cl *CommandList) Scan(value interface{}) error {
	if value == nil {
		*cl = CommandList{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("failed to scan CommandList: expected []byte")
	}

	var out []Command
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	for _, cmd := range out {
		if !cmd.Valid() {
			return fmt.Errorf("failed to scan CommandList: unknown command %q", cmd)
		}
	}
	*cl = out
	return nil
}
