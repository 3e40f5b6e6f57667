package service

import (
	"codekids/internal/blocks"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProgramService() *ProgramService {
	return NewProgramServiceWith(blocks.NewTableInterpreter(blocks.DefaultTable()), zerolog.Nop())
}

func programJSON(t *testing.T, types ...string) []byte {
	t.Helper()
	p := blocks.NewProgram()
	for _, blockType := range types {
		def, ok := blocks.DefaultCatalog().FindByType(blockType)
		require.True(t, ok, blockType)
		p.Append(def)
	}
	data, err := blocks.MarshalProgram(p)
	require.NoError(t, err)
	return data
}

func TestProgramService_Run(t *testing.T) {
	service := newTestProgramService()

	result, err := service.Run(programJSON(t, "when_clicked", "move_forward", "repeat", "say_hello", "if"))
	require.NoError(t, err)
	assert.Equal(t, []blocks.Command{
		blocks.CommandMoveForward,
		blocks.CommandRepeatStart,
		blocks.CommandRepeatEnd,
		blocks.CommandSayHello,
	}, result.Commands)
}

func TestProgramService_RunEmpty(t *testing.T) {
	result, err := newTestProgramService().Run([]byte(`[]`))
	require.NoError(t, err)
	assert.NotNil(t, result.Commands)
	assert.Empty(t, result.Commands)
}

func TestProgramService_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{`},
		{"object", `{"blocks":[]}`},
		{"null", `null`},
		{"missing type", `[{"id":"block_motion_forward","category":"motion","text":"Move","icon":"x"}]`},
		{"number id", `[{"id":1,"type":"move_forward","category":"motion","text":"Move","icon":"x"}]`},
	}

	service := newTestProgramService()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Run([]byte(tt.raw))
			assert.True(t, blocks.IsMalformedProgram(err), "got %v", err)

			_, err = service.Check([]byte(tt.raw), nil)
			assert.True(t, blocks.IsMalformedProgram(err))
		})
	}
}

func TestProgramService_Check(t *testing.T) {
	service := newTestProgramService()
	raw := programJSON(t, "move_forward", "turn_left")

	result, err := service.Check(raw, []blocks.Command{blocks.CommandMoveForward, blocks.CommandTurnLeft})
	require.NoError(t, err)
	assert.True(t, result.Passed)

	result, err = service.Check(raw, []blocks.Command{blocks.CommandMoveForward})
	require.NoError(t, err)
	assert.False(t, result.Passed)
	assert.Len(t, result.Commands, 2)
}

func TestBlockService(t *testing.T) {
	service := NewBlockServiceWith(blocks.DefaultCatalog(), zerolog.Nop())

	def, err := service.FindByType("turn_right")
	require.NoError(t, err)
	assert.Equal(t, blocks.CategoryMotion, def.Category)

	_, err = service.FindByType("fly")
	assert.ErrorIs(t, err, ErrUnknownBlockType)

	starter := service.StarterProgram()
	require.Equal(t, 1, starter.Len())
	assert.Equal(t, "when_clicked", starter.Snapshot()[0].Type)

	assert.Len(t, service.ListAll(), 15)
	assert.Len(t, service.Categories(), 5)
}
