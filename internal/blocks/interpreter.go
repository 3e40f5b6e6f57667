package blocks

import "fmt"

// Interpreter translates a block sequence into runtime commands
type Interpreter interface {
	Interpret(sequence []BlockInstance) []Command
}

// TableInterpreter maps each block type to a fixed command list. Types missing
// from the table produce no commands, so new blocks can be added to the catalog
// before they get execution semantics.
type TableInterpreter struct {
	table map[string][]Command
}

// DefaultTable returns the translation table for the current block set.
// repeat emits only its bracketing markers: the flat program model has no loop
// body to expand.
func DefaultTable() map[string][]Command {
	return map[string][]Command{
		"move_forward": {CommandMoveForward},
		"turn_right":   {CommandTurnRight},
		"turn_left":    {CommandTurnLeft},
		"say_hello":    {CommandSayHello},
		"repeat":       {CommandRepeatStart, CommandRepeatEnd},
	}
}

var defaultInterpreter = NewTableInterpreter(DefaultTable())

// NewTableInterpreter copies table into a new interpreter. It panics when the
// table contains a command outside the command set.
func NewTableInterpreter(table map[string][]Command) *TableInterpreter {
	cp := make(map[string][]Command, len(table))
	for blockType, cmds := range table {
		for _, cmd := range cmds {
			if !cmd.Valid() {
				panic(fmt.Sprintf("blocks: block type %q maps to unknown command %q", blockType, cmd))
			}
		}
		cp[blockType] = append([]Command(nil), cmds...)
	}
	return &TableInterpreter{table: cp}
}

// Interpret walks the sequence in order and concatenates each block's commands
func (slf *TableInterpreter) Interpret(sequence []BlockInstance) []Command {
	commands := make([]Command, 0, len(sequence))
	for _, inst := range sequence {
		commands = append(commands, slf.table[inst.Type]...)
	}
	return commands
}

// Supports reports whether the block type has execution semantics
func (slf *TableInterpreter) Supports(blockType string) bool {
	_, ok := slf.table[blockType]
	return ok
}

// Interpret translates a sequence with the default table
func Interpret(sequence []BlockInstance) []Command {
	return defaultInterpreter.Interpret(sequence)
}
