package playback

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Default tail policy constants.
const (
	// DefaultTailLookahead is how close to the timeline end a tick may
	// get before the scheduler asks for more room.
	DefaultTailLookahead = 1.0

	// DefaultExtendPadding is how much room an auto-extension adds past
	// the tick that triggered it.
	DefaultExtendPadding = 10.0
)

// Model is the slice of the timeline API the scheduler drives. The
// production implementation is *timeline.Model.
type Model interface {
	CurrentTime() float64
	Duration() float64
	ExtendDurationIfNeeded(time, padding float64) bool
	SetCurrentTime(t float64)
}

// State is the scheduler's play state.
type State int

const (
	// Stopped means ticks are ignored.
	Stopped State = iota
	// Playing means each tick advances the playhead.
	Playing
)

// String returns the lowercase state name.
func (s State) String() string {
	if s == Playing {
		return "playing"
	}
	return "stopped"
}

// Scheduler advances the playhead once per external tick and owns the
// duration-growth decision at the timeline's tail. The model's
// SetCurrentTime never extends; keeping the extension decision here
// means a tick cannot extend twice.
//
// Thread-safety: all methods are safe for concurrent use, but the
// intended usage is one driver (an animation-frame loop or Run) calling
// Tick while other goroutines at most call Play/Pause/Stop.
type Scheduler struct {
	mu        sync.Mutex
	model     Model
	state     State
	startedAt time.Time // reference time of the last Play, drives Run deltas

	autoExtend    bool
	tailLookahead float64
	extendPadding float64
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithAutoExtend disables or enables duration auto-growth. With growth
// off, playback wraps to 0 at the timeline end instead.
func WithAutoExtend(enabled bool) Option {
	return func(s *Scheduler) { s.autoExtend = enabled }
}

// WithTailLookahead sets how close to the end a tick may get before
// extension kicks in.
func WithTailLookahead(seconds float64) Option {
	return func(s *Scheduler) {
		if seconds >= 0 {
			s.tailLookahead = seconds
		}
	}
}

// WithExtendPadding sets how much room each auto-extension adds.
func WithExtendPadding(seconds float64) Option {
	return func(s *Scheduler) {
		if seconds >= 0 {
			s.extendPadding = seconds
		}
	}
}

// New creates a scheduler in the Stopped state. Auto-extension is on by
// default.
func New(model Model, opts ...Option) *Scheduler {
	s := &Scheduler{
		model:         model,
		autoExtend:    true,
		tailLookahead: DefaultTailLookahead,
		extendPadding: DefaultExtendPadding,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current play state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Play starts playback from the current playhead position and records
// the wall-clock reference time for Run's delta computation.
func (s *Scheduler) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Playing
	s.startedAt = time.Now()
}

// Pause stops advancing; the playhead stays where it is.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Stopped
}

// Stop halts playback and resets the playhead to 0.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.state = Stopped
	s.mu.Unlock()
	s.model.SetCurrentTime(0)
}

// Tick advances the playhead by an elapsed wall-clock delta (seconds).
// No-op unless Playing.
//
// Tail policy: when the next position reaches duration minus the
// lookahead window, the scheduler extends the duration so playback is
// never abruptly truncated; if no extension happened (auto-growth off)
// and the next position reaches the end, it wraps to 0.
func (s *Scheduler) Tick(delta float64) {
	s.mu.Lock()
	if s.state != Playing || delta < 0 {
		s.mu.Unlock()
		return
	}
	autoExtend := s.autoExtend
	lookahead := s.tailLookahead
	padding := s.extendPadding
	s.mu.Unlock()

	next := s.model.CurrentTime() + delta
	if autoExtend && next >= s.model.Duration()-lookahead {
		s.model.ExtendDurationIfNeeded(next, padding)
	}
	if next >= s.model.Duration() {
		next = 0
	}
	s.model.SetCurrentTime(next)
}

// Run drives Tick from a wall-clock ticker at the given frame rate
// until ctx is cancelled. It calls Play first and pauses on exit. Ticks
// while paused or stopped are absorbed by Tick's state check.
func (s *Scheduler) Run(ctx context.Context, fps int) error {
	if fps <= 0 {
		fps = 60
	}
	interval := time.Second / time.Duration(fps)

	s.Play()
	defer s.Pause()

	slog.Debug("playback loop starting", "fps", fps, "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Deltas are measured from the reference time Play recorded, so the
	// first frame accounts for ticker start-up latency.
	s.mu.Lock()
	last := s.startedAt
	s.mu.Unlock()
	for {
		select {
		case <-ctx.Done():
			slog.Debug("playback loop stopped", "reason", ctx.Err())
			return ctx.Err()
		case now := <-ticker.C:
			s.Tick(now.Sub(last).Seconds())
			last = now
		}
	}
}
