package blocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func programOf(t *testing.T, types ...string) []BlockInstance {
	t.Helper()
	p := NewProgram()
	for _, blockType := range types {
		p.Append(mustDef(t, blockType))
	}
	return p.Snapshot()
}

func TestInterpret(t *testing.T) {
	tests := []struct {
		name  string
		types []string
		want  []Command
	}{
		{"empty program", nil, []Command{}},
		{"only unmapped blocks", []string{"when_clicked", "hide", "wait", "equals"}, []Command{}},
		{"basic run", []string{"move_forward", "turn_right", "say_hello"}, []Command{CommandMoveForward, CommandTurnRight, CommandSayHello}},
		{"repeat is flat", []string{"repeat", "move_forward"}, []Command{CommandRepeatStart, CommandRepeatEnd, CommandMoveForward}},
		{"unmapped skipped in place", []string{"when_clicked", "turn_left", "show", "turn_left"}, []Command{CommandTurnLeft, CommandTurnLeft}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Interpret(programOf(t, tt.types...))
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInterpret_UnknownTypeIsSkipped(t *testing.T) {
	seq := []BlockInstance{
		{InstanceID: "x_1", ID: "x", Type: "teleport", Category: CategoryMotion},
		{InstanceID: "y_1", ID: "y", Type: "move_forward", Category: CategoryMotion},
	}
	assert.Equal(t, []Command{CommandMoveForward}, Interpret(seq))
}

func TestInterpret_Deterministic(t *testing.T) {
	seq := programOf(t, "when_clicked", "move_forward", "repeat", "turn_right", "say_hello", "turn_left")
	before := append([]BlockInstance(nil), seq...)

	first := Interpret(seq)
	second := Interpret(seq)

	assert.Equal(t, first, second)
	assert.Equal(t, before, seq, "interpretation must not touch its input")

	first[0] = CommandSayHello
	assert.Equal(t, CommandMoveForward, Interpret(seq)[0], "result slices are independent")
}

func TestTableInterpreter_CustomTable(t *testing.T) {
	table := map[string][]Command{"hide": {CommandSayHello, CommandSayHello}}
	interp := NewTableInterpreter(table)

	table["hide"][0] = CommandTurnLeft

	assert.Equal(t, []Command{CommandSayHello, CommandSayHello}, interp.Interpret(programOf(t, "hide", "move_forward")))
	assert.True(t, interp.Supports("hide"))
	assert.False(t, interp.Supports("move_forward"))
}

func TestTableInterpreter_RejectsUnknownCommands(t *testing.T) {
	assert.Panics(t, func() {
		NewTableInterpreter(map[string][]Command{"jump": {"JUMP"}})
	})
}

func TestDefaultTable_OnlyValidCommands(t *testing.T) {
	for blockType, cmds := range DefaultTable() {
		_, ok := DefaultCatalog().FindByType(blockType)
		assert.True(t, ok, "table entry %s has no catalog block", blockType)
		for _, cmd := range cmds {
			assert.True(t, cmd.Valid(), "%s -> %s", blockType, cmd)
		}
	}
}

func TestParseCommand(t *testing.T) {
	for _, cmd := range AllCommands() {
		parsed, err := ParseCommand(string(cmd))
		require.NoError(t, err)
		assert.Equal(t, cmd, parsed)
	}

	_, err := ParseCommand("move_forward")
	assert.ErrorIs(t, err, ErrUnknownCommand, "commands are upper case")
}

func TestCommandList_Scan(t *testing.T) {
	var cl CommandList
	require.NoError(t, cl.Scan([]byte(`["MOVE_FORWARD","TURN_LEFT"]`)))
	assert.Equal(t, CommandList{CommandMoveForward, CommandTurnLeft}, cl)

	assert.Error(t, cl.Scan([]byte(`["FLY"]`)))

	raw, err := CommandList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), raw)
}
