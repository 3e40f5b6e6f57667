package endpoints

import (
	"bytes"
	"codekids/internal/actor"
	"codekids/internal/api/handler/response"
	"codekids/internal/api/service"
	"codekids/internal/blocks"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func programRecords(t *testing.T, types ...string) json.RawMessage {
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

func TestBlockHandler(t *testing.T) {
	router := newTestRouter()
	BlockHandler(router)

	t.Run("palette", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/v1/blocks", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var palette []response.CategoryBlocks
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &palette))
		require.Len(t, palette, len(blocks.DefaultCatalog().Categories()))
		assert.Equal(t, "motion", palette[0].Category)
		assert.NotEmpty(t, palette[0].Blocks)
	})

	t.Run("categories", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/v1/blocks/categories", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var categories []string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &categories))
		assert.Contains(t, categories, "motion")
	})

	t.Run("defaults", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/v1/blocks/defaults", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var starter []response.BlockInstance
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &starter))
		require.NotEmpty(t, starter)
		assert.Equal(t, "when_clicked", starter[0].Type)
		assert.NotEmpty(t, starter[0].InstanceID)
	})

	t.Run("by type", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/v1/blocks/move_forward", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var block response.Block
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &block))
		assert.Equal(t, "motion", block.Category)
	})

	t.Run("unknown type", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/v1/blocks/fly_away", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestProgramHandler_Run(t *testing.T) {
	router := newTestRouter()
	ProgramHandler(router)

	w := doJSON(t, router, http.MethodPost, "/api/v1/programs/run", gin.H{
		"blocks": programRecords(t, "when_clicked", "move_forward", "turn_right", "say_hello"),
	})
	require.Equal(t, http.StatusOK, w.Code)

	var result response.RunResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, []blocks.Command{
		blocks.CommandMoveForward,
		blocks.CommandTurnRight,
		blocks.CommandSayHello,
	}, result.Commands)
}

func TestProgramHandler_RunEmpty(t *testing.T) {
	router := newTestRouter()
	ProgramHandler(router)

	w := doJSON(t, router, http.MethodPost, "/api/v1/programs/run", `{"blocks":[]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"commands":[]}`, w.Body.String())
}

func TestProgramHandler_Malformed(t *testing.T) {
	router := newTestRouter()
	ProgramHandler(router)

	tests := []struct {
		name  string
		body  string
		index float64
	}{
		{"not a list", `{"blocks":{"type":"move_forward"}}`, -1},
		{"missing field", `{"blocks":[{"id":"b1","type":"move_forward","category":"motion","text":"Move"}]}`, 0},
		{"wrong field type", `{"blocks":[{"id":"b1","type":"when_clicked","category":"events","text":"When","icon":"x"},{"id":1,"type":"t","category":"c","text":"t","icon":"i"}]}`, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/api/v1/programs/run", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)

			var apiErr struct {
				Message string                    `json:"message"`
				Data    response.MalformedProgram `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
			assert.Contains(t, apiErr.Message, "malformed program")
			assert.Equal(t, int(tt.index), apiErr.Data.Index)
		})
	}

	w := doJSON(t, router, http.MethodPost, "/api/v1/programs/run", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "blocks are required")
}

func TestProgramHandler_Check(t *testing.T) {
	router := newTestRouter()
	ProgramHandler(router)

	records := programRecords(t, "when_clicked", "move_forward", "move_forward")

	w := doJSON(t, router, http.MethodPost, "/api/v1/programs/check", gin.H{
		"blocks":   records,
		"expected": []string{"MOVE_FORWARD", "MOVE_FORWARD"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	var result response.CheckResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Passed)

	w = doJSON(t, router, http.MethodPost, "/api/v1/programs/check", gin.H{
		"blocks":   records,
		"expected": []string{"MOVE_FORWARD"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.False(t, result.Passed)
	assert.Len(t, result.Commands, 2)

	w = doJSON(t, router, http.MethodPost, "/api/v1/programs/check", gin.H{
		"blocks":   records,
		"expected": []string{"JUMP"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func newTestStageRouter(t *testing.T, quantum time.Duration) *gin.Engine {
	t.Helper()
	cfg := actor.DefaultConfig()
	cfg.Quantum = quantum
	cfg.TrailingBuffer = quantum
	stages := service.NewStageService(nil,
		service.WithStageConfig(cfg),
		service.WithStageLogger(zerolog.Nop()),
	)
	t.Cleanup(stages.Close)

	router := newTestRouter()
	StageHandler(router, stages)
	return router
}

func TestStageHandler_RunAndStop(t *testing.T) {
	router := newTestStageRouter(t, time.Minute)
	body := gin.H{"blocks": programRecords(t, "when_clicked", "move_forward", "say_hello")}

	w := doJSON(t, router, http.MethodPost, "/api/v1/stages/room-1/run", body)
	require.Equal(t, http.StatusAccepted, w.Code)
	var run response.StageRun
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &run))
	assert.Equal(t, "room-1", run.StageID)
	assert.NotEmpty(t, run.RunID)
	assert.Equal(t, []blocks.Command{blocks.CommandMoveForward, blocks.CommandSayHello}, run.Commands)

	w = doJSON(t, router, http.MethodPost, "/api/v1/stages/room-1/run", body)
	assert.Equal(t, http.StatusConflict, w.Code, "a playing stage rejects a second run")

	w = doJSON(t, router, http.MethodGet, "/api/v1/stages/room-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var frame actor.Frame
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &frame))
	assert.Equal(t, actor.StatusRunning, frame.Status)

	w = doJSON(t, router, http.MethodGet, "/api/v1/stages", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"stageId":"room-1","status":"running"}]`, w.Body.String())

	w = doJSON(t, router, http.MethodPost, "/api/v1/stages/room-1/stop", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"stageId":"room-1","stopped":true}`, w.Body.String())

	w = doJSON(t, router, http.MethodPost, "/api/v1/stages/room-1/stop", nil)
	assert.JSONEq(t, `{"stageId":"room-1","stopped":false}`, w.Body.String())
}

func TestStageHandler_Delete(t *testing.T) {
	router := newTestStageRouter(t, time.Minute)
	body := gin.H{"blocks": programRecords(t, "move_forward", "move_forward")}

	w := doJSON(t, router, http.MethodPost, "/api/v1/stages/room-3/run", body)
	require.Equal(t, http.StatusAccepted, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/v1/stages/room-3", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/stages/room-3", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doJSON(t, router, http.MethodGet, "/api/v1/stages", nil)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = doJSON(t, router, http.MethodDelete, "/api/v1/stages/room-3", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStageHandler_Errors(t *testing.T) {
	router := newTestStageRouter(t, time.Millisecond)

	w := doJSON(t, router, http.MethodGet, "/api/v1/stages/nobody", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/stages/nobody/stop", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/stages/bad.id/run", gin.H{"blocks": programRecords(t, "move_forward")})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/stages/room-2/run", `{"blocks":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
