package timeline

// EventKind identifies the mutation a change notification describes.
type EventKind string

const (
	EventLayerAdded       EventKind = "layer_added"
	EventLayerUpdated     EventKind = "layer_updated"
	EventLayerRemoved     EventKind = "layer_removed"
	EventLayerReordered   EventKind = "layer_reordered"
	EventGroupCreated     EventKind = "group_created"
	EventKeyframeAdded    EventKind = "keyframe_added"
	EventKeyframeUpdated  EventKind = "keyframe_updated"
	EventKeyframeRemoved  EventKind = "keyframe_removed"
	EventTweenAdded       EventKind = "tween_added"
	EventTweenRemoved     EventKind = "tween_removed"
	EventTimeChanged      EventKind = "time_changed"
	EventDurationChanged  EventKind = "duration_changed"
	EventTimeScaleChanged EventKind = "time_scale_changed"
	EventSelectionChanged EventKind = "selection_changed"
	EventStateReplaced    EventKind = "state_replaced"
)

// Event is a structured change notification: the mutation kind, the
// affected ids, and snapshot payloads where they apply. All entity
// pointers are clones; listeners can hold them freely.
type Event struct {
	Kind EventKind

	// Affected ids. Which are set depends on Kind.
	LayerID    string
	KeyframeID string
	TweenID    string

	// Snapshot payloads for entity mutations, when relevant.
	Layer    *Layer
	Keyframe *Keyframe
	Tween    *MotionTween

	// Scalar payloads for clock mutations, when relevant.
	Time      float64
	Duration  float64
	TimeScale float64
}

type subscriber struct {
	id int
	fn func(Event)
}

// Subscribe registers a listener for change notifications and returns a
// subscription id for Unsubscribe.
//
// Delivery contract: events for a mutation are delivered synchronously,
// in subscription order, strictly after the mutation is fully applied
// and strictly before the mutating call returns. No coalescing.
//
// A listener that mutates the model from inside its callback runs
// against state that already incorporates the triggering mutation, and
// its own mutation re-notifies; avoiding notification cycles is the
// caller's responsibility.
func (m *Model) Subscribe(fn func(Event)) int {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	m.nextSub++
	m.subs = append(m.subs, subscriber{id: m.nextSub, fn: fn})
	return m.nextSub
}

// Unsubscribe removes a listener. Returns false if the id is unknown.
func (m *Model) Unsubscribe(id int) bool {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	for i, sub := range m.subs {
		if sub.id == id {
			m.subs = append(m.subs[:i], m.subs[i+1:]...)
			return true
		}
	}
	return false
}

// publish delivers events to all subscribers in subscription order.
// Called after the state mutex is released so listeners may re-enter
// the model.
func (m *Model) publish(events ...Event) {
	if len(events) == 0 {
		return
	}
	m.subsMu.Lock()
	subs := make([]subscriber, len(m.subs))
	copy(subs, m.subs)
	m.subsMu.Unlock()

	for _, ev := range events {
		for _, sub := range subs {
			sub.fn(ev)
		}
	}
}
