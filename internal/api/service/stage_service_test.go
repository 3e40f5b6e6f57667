package service

import (
	"codekids"
	"codekids/internal/actor"
	"codekids/internal/blocks"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	frames []actor.Frame
	done   chan actor.Frame
	fail   bool
	closed bool
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{done: make(chan actor.Frame, 16)}
}

func (p *recordingPublisher) Publish(frame actor.Frame) error {
	p.mu.Lock()
	p.frames = append(p.frames, frame)
	fail := p.fail
	p.mu.Unlock()

	if frame.Event == actor.EventCompleted || frame.Event == actor.EventCancelled {
		p.done <- frame
	}
	if fail {
		return errors.New("bus down")
	}
	return nil
}

func (p *recordingPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

func (p *recordingPublisher) events() []actor.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]actor.Event, len(p.frames))
	for i, f := range p.frames {
		out[i] = f.Event
	}
	return out
}

func fastStageService(publisher *recordingPublisher, quantum time.Duration, opts ...StageOption) *StageService {
	cfg := actor.DefaultConfig()
	cfg.Quantum = quantum
	cfg.TrailingBuffer = quantum
	opts = append([]StageOption{WithStageConfig(cfg), WithStageLogger(zerolog.Nop())}, opts...)
	return NewStageService(publisher, opts...)
}

func waitFrame(t *testing.T, p *recordingPublisher) actor.Frame {
	t.Helper()
	select {
	case f := <-p.done:
		return f
	case <-time.After(3 * time.Second):
		t.Fatal("stage did not finish")
	}
	return actor.Frame{}
}

func TestStageService_RunPublishesFrames(t *testing.T) {
	publisher := newRecordingPublisher()
	service := fastStageService(publisher, 2*time.Millisecond)

	run, err := service.Run("stage-1", programJSON(t, "when_clicked", "move_forward", "turn_right"))
	require.NoError(t, err)
	assert.Equal(t, "stage-1", run.StageID)
	assert.NotEmpty(t, run.RunID)
	assert.Equal(t, []blocks.Command{blocks.CommandMoveForward, blocks.CommandTurnRight}, run.Commands)

	last := waitFrame(t, publisher)
	assert.Equal(t, actor.EventCompleted, last.Event)
	assert.Equal(t, run.RunID, last.RunID)
	assert.Equal(t, actor.InitialState(), last.State)
	assert.Equal(t, []actor.Event{actor.EventStarted, actor.EventStep, actor.EventStep, actor.EventCompleted}, publisher.events())

	frame, err := service.Snapshot("stage-1")
	require.NoError(t, err)
	assert.Equal(t, actor.StatusIdle, frame.Status)

	assert.Equal(t, []StageSummary{{StageID: "stage-1", Status: actor.StatusIdle}}, service.List())
}

func TestStageService_RejectWhileRunningAndStop(t *testing.T) {
	publisher := newRecordingPublisher()
	service := fastStageService(publisher, time.Hour)

	_, err := service.Run("s", programJSON(t, "move_forward", "move_forward"))
	require.NoError(t, err)

	_, err = service.Run("s", programJSON(t, "say_hello"))
	assert.ErrorIs(t, err, actor.ErrAlreadyRunning)

	assert.Equal(t, []StageSummary{{StageID: "s", Status: actor.StatusRunning}}, service.List())

	stopped, err := service.Stop("s")
	require.NoError(t, err)
	assert.True(t, stopped)
	assert.Equal(t, actor.EventCancelled, waitFrame(t, publisher).Event)

	stopped, err = service.Stop("s")
	require.NoError(t, err)
	assert.False(t, stopped)
}

func TestStageService_Errors(t *testing.T) {
	service := fastStageService(newRecordingPublisher(), time.Millisecond)

	_, err := service.Run("bad.id", programJSON(t, "move_forward"))
	assert.ErrorIs(t, err, ErrInvalidStageID)

	_, err = service.Run("ok", []byte(`[{"id":"x"}]`))
	assert.True(t, blocks.IsMalformedProgram(err))
	assert.Empty(t, service.List(), "malformed program creates no stage")

	_, err = service.Stop("missing")
	assert.ErrorIs(t, err, ErrStageNotFound)
	_, err = service.Snapshot("missing")
	assert.ErrorIs(t, err, ErrStageNotFound)
}

func TestStageService_PublishFailureDoesNotStopRun(t *testing.T) {
	publisher := newRecordingPublisher()
	publisher.fail = true
	service := fastStageService(publisher, time.Millisecond)

	_, err := service.Run("s", programJSON(t, "say_hello"))
	require.NoError(t, err)
	assert.Equal(t, actor.EventCompleted, waitFrame(t, publisher).Event)
}

func TestStageService_Close(t *testing.T) {
	publisher := newRecordingPublisher()
	service := fastStageService(publisher, time.Hour)

	_, err := service.Run("a", programJSON(t, "move_forward"))
	require.NoError(t, err)
	_, err = service.Run("b", programJSON(t, "move_forward"))
	require.NoError(t, err)

	service.Close()
	for _, summary := range service.List() {
		assert.Equal(t, actor.StatusIdle, summary.Status)
	}
	assert.True(t, publisher.closed)
}

func TestStageService_IdleStagesAreEvicted(t *testing.T) {
	publisher := newRecordingPublisher()
	service := fastStageService(publisher, time.Millisecond, WithStageIdleTTL(20*time.Millisecond))

	for _, id := range []string{"s1", "s2", "s3", "s4", "s5"} {
		_, err := service.Run(id, programJSON(t, "say_hello"))
		require.NoError(t, err)
	}
	for i := 0; i < 5; i++ {
		waitFrame(t, publisher)
	}

	assert.Eventually(t, func() bool { return len(service.List()) == 0 }, 2*time.Second, 5*time.Millisecond)
	_, err := service.Snapshot("s1")
	assert.ErrorIs(t, err, ErrStageNotFound)
}

func TestStageService_EvictionSparesRestartedStage(t *testing.T) {
	publisher := newRecordingPublisher()
	service := fastStageService(publisher, time.Hour, WithStageIdleTTL(0))

	_, err := service.Run("s", programJSON(t, "move_forward"))
	require.NoError(t, err)
	_, err = service.Stop("s")
	require.NoError(t, err)
	waitFrame(t, publisher)
	assert.Eventually(t, func() bool { return len(service.List()) == 0 }, 2*time.Second, 5*time.Millisecond)

	run, err := service.Run("s", programJSON(t, "move_forward"))
	require.NoError(t, err)
	service.evict("s", "some-older-run")
	frame, err := service.Snapshot("s")
	require.NoError(t, err)
	assert.Equal(t, run.RunID, frame.RunID)
	assert.Equal(t, actor.StatusRunning, frame.Status)
}

func TestStageService_Delete(t *testing.T) {
	publisher := newRecordingPublisher()
	service := fastStageService(publisher, time.Hour)

	_, err := service.Run("s", programJSON(t, "move_forward", "move_forward"))
	require.NoError(t, err)
	_, err = service.Run("t", programJSON(t, "move_forward"))
	require.NoError(t, err)

	require.NoError(t, service.Delete("s"))
	assert.Equal(t, actor.EventCancelled, waitFrame(t, publisher).Event, "deleting a running stage stops it")
	assert.Equal(t, []StageSummary{{StageID: "t", Status: actor.StatusRunning}}, service.List())

	assert.ErrorIs(t, service.Delete("s"), ErrStageNotFound)
	_, err = service.Stop("s")
	assert.ErrorIs(t, err, ErrStageNotFound)
}

func TestStageService_CloseDeliversLastFrames(t *testing.T) {
	publisher := newRecordingPublisher()
	service := fastStageService(publisher, time.Hour)

	_, err := service.Run("a", programJSON(t, "move_forward"))
	require.NoError(t, err)

	service.Close()
	assert.Equal(t, []actor.Event{actor.EventStarted, actor.EventCancelled}, publisher.events())
}

func TestRuntimeConfig(t *testing.T) {
	var cfg codekids.AppConfig
	assert.Equal(t, actor.DefaultConfig(), RuntimeConfig(cfg))

	cfg.RuntimeConfig.QuantumMs = 250
	cfg.RuntimeConfig.TrailingBufferMs = 100
	cfg.RuntimeConfig.Step = 20
	got := RuntimeConfig(cfg)
	assert.Equal(t, 250*time.Millisecond, got.Quantum)
	assert.Equal(t, 100*time.Millisecond, got.TrailingBuffer)
	assert.Equal(t, 20, got.Step)
	assert.Equal(t, "Hello!", got.Greeting)
}

func TestStageIdleTTL(t *testing.T) {
	var cfg codekids.AppConfig
	assert.Equal(t, DefaultStageIdleTTL, StageIdleTTL(cfg))

	cfg.RuntimeConfig.StageIdleTTLSeconds = 5
	assert.Equal(t, 5*time.Second, StageIdleTTL(cfg))
}
