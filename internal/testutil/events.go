package testutil

import (
	"sync"

	"github.com/keyline/keyline/internal/timeline"
)

// EventRecorder captures change notifications in delivery order, so
// tests can assert on the exact event stream a mutation produced.
//
// Thread-safety: safe for concurrent use via internal mutex; the model
// delivers events synchronously, so in practice a single goroutine
// appends.
type EventRecorder struct {
	mu     sync.Mutex
	events []timeline.Event
}

// NewEventRecorder creates an empty recorder. Wire it up with:
//
//	rec := testutil.NewEventRecorder()
//	model.Subscribe(rec.Record)
func NewEventRecorder() *EventRecorder {
	return &EventRecorder{}
}

// Record appends one event. Pass this method to Model.Subscribe.
func (r *EventRecorder) Record(ev timeline.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of the captured events in delivery order.
func (r *EventRecorder) Events() []timeline.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]timeline.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Kinds returns just the event kinds, in delivery order.
func (r *EventRecorder) Kinds() []timeline.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]timeline.EventKind, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Kind
	}
	return out
}

// Reset drops all captured events for fixture reuse.
func (r *EventRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
