package service

import (
	"codekids"
	"codekids/internal/actor"
	"codekids/internal/blocks"
	"codekids/internal/realtime"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	ErrStageNotFound  = errors.New("stage not found")
	ErrInvalidStageID = errors.New("invalid stage id")
)

// StageRun is returned when a stage starts playing a program
type StageRun struct {
	StageID  string
	RunID    string
	Commands []blocks.Command
}

// StageSummary describes one known stage
type StageSummary struct {
	StageID string       `json:"stageId"`
	Status  actor.Status `json:"status"`
}

// DefaultStageIdleTTL is how long an idle stage is kept after its last run
const DefaultStageIdleTTL = time.Minute

// StageService owns one animator per stage id and forwards their frames to
// the configured publisher. A stage is dropped once it has been idle for the
// idle TTL.
type StageService struct {
	mu        sync.RWMutex
	stages    map[string]*actor.Animator
	cfg       actor.Config
	idleTTL   time.Duration
	clock     actor.Clock
	publisher realtime.FramePublisher
	programs  *ProgramService
	logger    zerolog.Logger
}

type StageOption func(*StageService)

// WithStageClock replaces the real clock of every animator created afterwards
func WithStageClock(clock actor.Clock) StageOption {
	return func(s *StageService) { s.clock = clock }
}

func WithStageConfig(cfg actor.Config) StageOption {
	return func(s *StageService) { s.cfg = cfg }
}

func WithStageLogger(logger zerolog.Logger) StageOption {
	return func(s *StageService) { s.logger = logger }
}

// WithStageIdleTTL sets how long an idle stage survives. Zero drops it as soon
// as its run completes or is cancelled.
func WithStageIdleTTL(ttl time.Duration) StageOption {
	return func(s *StageService) { s.idleTTL = ttl }
}

func NewStageService(publisher realtime.FramePublisher, opts ...StageOption) *StageService {
	s := &StageService{
		stages:    make(map[string]*actor.Animator),
		cfg:       RuntimeConfig(codekids.GetConfig()),
		idleTTL:   StageIdleTTL(codekids.GetConfig()),
		clock:     actor.RealClock(),
		publisher: publisher,
		logger:    codekids.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.publisher == nil {
		s.publisher = realtime.NewNoopPublisher(s.logger)
	}
	s.programs = NewProgramServiceWith(blocks.NewTableInterpreter(blocks.DefaultTable()), s.logger)
	return s
}

// RuntimeConfig converts the application config into animator settings,
// falling back to the defaults for unset values.
func RuntimeConfig(cfg codekids.AppConfig) actor.Config {
	out := actor.DefaultConfig()
	if cfg.RuntimeConfig.QuantumMs > 0 {
		out.Quantum = time.Duration(cfg.RuntimeConfig.QuantumMs) * time.Millisecond
	}
	if cfg.RuntimeConfig.TrailingBufferMs > 0 {
		out.TrailingBuffer = time.Duration(cfg.RuntimeConfig.TrailingBufferMs) * time.Millisecond
	}
	if cfg.RuntimeConfig.Step > 0 {
		out.Step = cfg.RuntimeConfig.Step
	}
	return out
}

// StageIdleTTL reads the idle TTL from the application config
func StageIdleTTL(cfg codekids.AppConfig) time.Duration {
	if cfg.RuntimeConfig.StageIdleTTLSeconds > 0 {
		return time.Duration(cfg.RuntimeConfig.StageIdleTTLSeconds) * time.Second
	}
	return DefaultStageIdleTTL
}

// Run interprets a JSON program and plays it on the stage, creating the stage
// on first use. While a run is in flight actor.ErrAlreadyRunning is returned.
func (slf *StageService) Run(stageID string, raw []byte) (*StageRun, error) {
	if !realtime.ValidStageID(stageID) {
		return nil, ErrInvalidStageID
	}
	result, err := slf.programs.Run(raw)
	if err != nil {
		return nil, err
	}

	slf.mu.Lock()
	animator := slf.getOrCreateLocked(stageID)
	runID, err := animator.Run(result.Commands)
	slf.mu.Unlock()
	if err != nil {
		slf.logger.Debug().Err(err).Str("stageId", stageID).Msg("Run rejected")
		return nil, err
	}

	slf.logger.Info().Str("stageId", stageID).Str("runId", runID).Int("commands", len(result.Commands)).Msg("Stage run started")
	return &StageRun{StageID: stageID, RunID: runID, Commands: result.Commands}, nil
}

// Stop cancels the stage's current run. It reports whether a run was in flight.
func (slf *StageService) Stop(stageID string) (bool, error) {
	animator, err := slf.get(stageID)
	if err != nil {
		return false, err
	}
	return animator.Stop(), nil
}

// Delete stops the stage if it is running and forgets it
func (slf *StageService) Delete(stageID string) error {
	slf.mu.Lock()
	animator, ok := slf.stages[stageID]
	if !ok {
		slf.mu.Unlock()
		return ErrStageNotFound
	}
	delete(slf.stages, stageID)
	slf.mu.Unlock()

	animator.Stop()
	slf.logger.Info().Str("stageId", stageID).Msg("Stage deleted")
	return nil
}

// Snapshot returns the most recent frame of the stage
func (slf *StageService) Snapshot(stageID string) (actor.Frame, error) {
	animator, err := slf.get(stageID)
	if err != nil {
		return actor.Frame{}, err
	}
	return animator.Snapshot(), nil
}

// List returns every known stage sorted by id
func (slf *StageService) List() []StageSummary {
	slf.mu.RLock()
	out := make([]StageSummary, 0, len(slf.stages))
	for id, animator := range slf.stages {
		out = append(out, StageSummary{StageID: id, Status: animator.Status()})
	}
	slf.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].StageID < out[j].StageID })
	return out
}

// Close stops every running stage, waits for their last frames and closes the
// publisher
func (slf *StageService) Close() {
	slf.mu.RLock()
	animators := make([]*actor.Animator, 0, len(slf.stages))
	for _, animator := range slf.stages {
		animators = append(animators, animator)
	}
	slf.mu.RUnlock()

	for _, animator := range animators {
		animator.Stop()
	}
	for _, animator := range animators {
		animator.Flush()
	}
	slf.publisher.Close()
}

func (slf *StageService) get(stageID string) (*actor.Animator, error) {
	slf.mu.RLock()
	defer slf.mu.RUnlock()

	animator, ok := slf.stages[stageID]
	if !ok {
		return nil, ErrStageNotFound
	}
	return animator, nil
}

func (slf *StageService) getOrCreateLocked(stageID string) *actor.Animator {
	if animator, ok := slf.stages[stageID]; ok {
		return animator
	}
	animator := actor.NewAnimator(stageID, slf.cfg,
		actor.WithClock(slf.clock),
		actor.WithLogger(slf.logger),
		actor.WithSink(slf.publish),
	)
	slf.stages[stageID] = animator
	return animator
}

func (slf *StageService) publish(frame actor.Frame) {
	if err := slf.publisher.Publish(frame); err != nil {
		slf.logger.Warn().Err(err).Str("stageId", frame.StageID).Str("event", string(frame.Event)).Msg("Frame publish failed")
	}

	if frame.Event == actor.EventCompleted || frame.Event == actor.EventCancelled {
		if slf.idleTTL <= 0 {
			slf.evict(frame.StageID, frame.RunID)
			return
		}
		slf.clock.AfterFunc(slf.idleTTL, func() { slf.evict(frame.StageID, frame.RunID) })
	}
}

// evict drops the stage if it is still idle after the given run
func (slf *StageService) evict(stageID string, runID string) {
	slf.mu.Lock()
	defer slf.mu.Unlock()

	animator, ok := slf.stages[stageID]
	if !ok || animator.Status() != actor.StatusIdle || animator.Snapshot().RunID != runID {
		return
	}
	delete(slf.stages, stageID)
	slf.logger.Debug().Str("stageId", stageID).Msg("Idle stage evicted")
}
