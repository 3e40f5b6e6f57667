package actor

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"codekids/internal/blocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrAlreadyRunning is returned by Run while a previous run is in flight.
// Callers that want cancel-and-restart call Stop first.
var ErrAlreadyRunning = errors.New("actor is already running")

// Animator plays a command list against a single actor, one command per
// quantum. Only one run is in flight at a time; Stop revokes the pending step
// and resets the actor immediately.
type Animator struct {
	stageID string
	cfg     Config
	clock   Clock
	sink    FrameSink
	logger  zerolog.Logger

	mu         sync.Mutex
	outbox     []Frame
	draining   bool
	drained    *sync.Cond
	state      State
	status     Status
	commands   []blocks.Command
	next       int
	runID      string
	generation uint64
	timer      Timer
	last       Frame
}

// Option customizes an Animator
type Option func(*Animator)

// WithClock replaces the real clock, mainly for tests
func WithClock(clock Clock) Option {
	return func(a *Animator) { a.clock = clock }
}

// WithSink registers the frame sink. Frames are delivered in transition order
// on a separate goroutine, so a slow sink never holds up Run or Stop.
func WithSink(sink FrameSink) Option {
	return func(a *Animator) { a.sink = sink }
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(a *Animator) { a.logger = logger }
}

// NewAnimator creates an idle animator for the given stage
func NewAnimator(stageID string, cfg Config, opts ...Option) *Animator {
	a := &Animator{
		stageID: stageID,
		cfg:     cfg,
		clock:   RealClock(),
		logger:  zerolog.Nop(),
		state:   InitialState(),
		status:  StatusIdle,
	}
	a.drained = sync.NewCond(&a.mu)
	for _, opt := range opts {
		opt(a)
	}
	a.last = a.frameLocked(EventCompleted, "")
	return a
}

// Run starts playing commands. Every command must belong to the command set;
// anything else is an interpreter bug and panics.
func (a *Animator) Run(commands []blocks.Command) (string, error) {
	for i, cmd := range commands {
		if !cmd.Valid() {
			panic(fmt.Sprintf("actor: command %d (%q) is outside the command set", i, cmd))
		}
	}

	a.mu.Lock()
	if a.status == StatusRunning {
		a.mu.Unlock()
		return "", ErrAlreadyRunning
	}

	a.generation++
	gen := a.generation
	a.commands = append([]blocks.Command(nil), commands...)
	a.next = 0
	a.runID = uuid.NewString()
	a.state = InitialState()
	a.status = StatusRunning

	if len(a.commands) == 0 {
		a.timer = a.clock.AfterFunc(a.cfg.TrailingBuffer, func() { a.finish(gen) })
	} else {
		a.timer = a.clock.AfterFunc(0, func() { a.step(gen) })
	}

	runID := a.runID
	frame := a.frameLocked(EventStarted, "")
	a.publish(frame)

	a.logger.Debug().Str("stageId", a.stageID).Str("runId", runID).Int("commands", len(commands)).Msg("Run started")
	return runID, nil
}

func (a *Animator) step(gen uint64) {
	a.mu.Lock()
	if gen != a.generation || a.status != StatusRunning {
		a.mu.Unlock()
		return
	}

	cmd := a.commands[a.next]
	a.apply(cmd)
	a.next++

	if a.next < len(a.commands) {
		a.timer = a.clock.AfterFunc(a.cfg.Quantum, func() { a.step(gen) })
	} else {
		a.timer = a.clock.AfterFunc(a.cfg.Quantum+a.cfg.TrailingBuffer, func() { a.finish(gen) })
	}

	a.publish(a.frameLocked(EventStep, cmd))
}

func (a *Animator) finish(gen uint64) {
	a.mu.Lock()
	if gen != a.generation || a.status != StatusRunning {
		a.mu.Unlock()
		return
	}
	runID := a.runID
	a.resetLocked()
	frame := a.frameLocked(EventCompleted, "")
	frame.RunID = runID
	a.last = frame
	a.publish(frame)

	a.logger.Debug().Str("stageId", a.stageID).Str("runId", runID).Msg("Run completed")
}

// Stop cancels the current run and resets the actor. It reports whether a run
// was actually cancelled.
func (a *Animator) Stop() bool {
	a.mu.Lock()
	if a.status != StatusRunning {
		a.mu.Unlock()
		return false
	}
	if a.timer != nil {
		a.timer.Stop()
	}
	a.generation++
	runID := a.runID
	a.resetLocked()
	frame := a.frameLocked(EventCancelled, "")
	frame.RunID = runID
	a.last = frame
	a.publish(frame)

	a.logger.Debug().Str("stageId", a.stageID).Str("runId", runID).Msg("Run cancelled")
	return true
}

// apply mutates the actor for one command. Heading is tracked for display but
// movement stays on fixed axes.
func (a *Animator) apply(cmd blocks.Command) {
	switch cmd {
	case blocks.CommandMoveForward:
		a.state.Position.Y -= a.cfg.Step
	case blocks.CommandTurnRight:
		a.state.Position.X += a.cfg.Step
		a.state.Heading = (a.state.Heading + 90) % 360
	case blocks.CommandTurnLeft:
		a.state.Position.X -= a.cfg.Step
		a.state.Heading = (a.state.Heading + 270) % 360
	case blocks.CommandSayHello:
		a.state.SpeechText = a.cfg.Greeting
	case blocks.CommandRepeatStart, blocks.CommandRepeatEnd:
	default:
		panic(fmt.Sprintf("actor: command %q is outside the command set", cmd))
	}
}

func (a *Animator) resetLocked() {
	a.timer = nil
	a.commands = nil
	a.next = 0
	a.runID = ""
	a.state = InitialState()
	a.status = StatusIdle
}

func (a *Animator) frameLocked(event Event, cmd blocks.Command) Frame {
	f := Frame{
		StageID: a.stageID,
		RunID:   a.runID,
		Event:   event,
		Status:  a.status,
		Step:    a.next,
		Total:   len(a.commands),
		Command: cmd,
		State:   a.state,
		At:      time.Now(),
	}
	a.last = f
	return f
}

// publish queues the frame for the sink and releases a.mu. A single drain
// goroutine per burst keeps frames in the order transitions happened.
func (a *Animator) publish(frame Frame) {
	if a.sink != nil {
		a.outbox = append(a.outbox, frame)
		if !a.draining {
			a.draining = true
			go a.drain()
		}
	}
	a.mu.Unlock()
}

func (a *Animator) drain() {
	for {
		a.mu.Lock()
		if len(a.outbox) == 0 {
			a.draining = false
			a.outbox = nil
			a.drained.Broadcast()
			a.mu.Unlock()
			return
		}
		frame := a.outbox[0]
		a.outbox = a.outbox[1:]
		a.mu.Unlock()

		a.sink(frame)
	}
}

// Flush blocks until every queued frame has reached the sink
func (a *Animator) Flush() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for a.draining {
		a.drained.Wait()
	}
}

// StageID returns the id the animator was created with
func (a *Animator) StageID() string {
	return a.stageID
}

// State returns the current actor state
func (a *Animator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Status returns idle or running
func (a *Animator) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// Snapshot returns the most recent frame
func (a *Animator) Snapshot() Frame {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last
}
