package timeline

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/keyline/keyline/internal/motion"
)

// Model owns the timeline state and exposes the mutation/query API.
//
// Model is the single authoritative holder of timeline state: no other
// component keeps a copy, and every query returns fresh clones rather
// than live aliases. Construct one Model per independent timeline; there
// are no package-level singletons.
//
// Thread-safety model:
//   - mutations take the write lock; queries take the read lock
//   - the intended usage is still a single logical writer (one UI or
//     one scheduler); the lock makes concurrent readers safe, it does
//     not serialize conflicting edit intents
//   - change notifications are delivered after the lock is released, so
//     listeners may call back into the model
type Model struct {
	mu    sync.RWMutex
	state State
	ids   IDGenerator

	subsMu  sync.Mutex
	subs    []subscriber
	nextSub int
}

// Option configures a Model at construction time.
type Option func(*Model)

// WithIDGenerator replaces the UUIDv7 id generator. Tests use a fixed
// sequence generator so serialized output is deterministic.
func WithIDGenerator(g IDGenerator) Option {
	return func(m *Model) { m.ids = g }
}

// WithDuration sets the initial timeline duration instead of
// DefaultDuration.
func WithDuration(d float64) Option {
	return func(m *Model) {
		if d > 0 {
			m.state.Duration = d
		}
	}
}

// New creates an empty timeline model.
func New(opts ...Option) *Model {
	m := &Model{
		state: newState(),
		ids:   UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// LayerParams are the caller-supplied fields for AddLayer. Unset
// booleans default to visible, unlocked, expanded.
type LayerParams struct {
	Name       string
	Color      string
	ParentID   string
	Visible    *bool
	Locked     *bool
	IsExpanded *bool
}

// LayerPatch is a partial layer update. Nil fields are left unchanged.
// Setting ParentID to a non-nil empty string moves the layer to root.
type LayerPatch struct {
	Name       *string
	Color      *string
	ParentID   *string
	Visible    *bool
	Locked     *bool
	IsExpanded *bool
}

// AddLayer creates a layer, assigns a fresh id and the next index, and
// returns a clone of the stored layer.
func (m *Model) AddLayer(p LayerParams) (*Layer, error) {
	m.mu.Lock()
	if p.ParentID != "" && m.layerLocked(p.ParentID) == nil {
		m.mu.Unlock()
		return nil, newLayerNotFound(p.ParentID)
	}

	layer := &Layer{
		ID:         m.ids.Generate(),
		Name:       p.Name,
		Visible:    boolOr(p.Visible, true),
		Locked:     boolOr(p.Locked, false),
		Color:      p.Color,
		ParentID:   p.ParentID,
		IsExpanded: boolOr(p.IsExpanded, true),
		Index:      len(m.state.Layers),
		Keyframes:  []*Keyframe{},
		Tweens:     []*MotionTween{},
	}
	if layer.Name == "" {
		layer.Name = fmt.Sprintf("Layer %d", len(m.state.Layers)+1)
	}
	m.state.Layers = append(m.state.Layers, layer)
	snapshot := layer.Clone()
	m.mu.Unlock()

	m.publish(Event{Kind: EventLayerAdded, LayerID: snapshot.ID, Layer: snapshot})
	return snapshot.Clone(), nil
}

// UpdateLayer merges the patch into the layer. A ParentID change that
// would make the layer its own transitive ancestor is rejected with a
// CYCLIC_GROUP error and leaves state unchanged.
func (m *Model) UpdateLayer(id string, patch LayerPatch) (*Layer, error) {
	m.mu.Lock()
	layer := m.layerLocked(id)
	if layer == nil {
		m.mu.Unlock()
		return nil, newLayerNotFound(id)
	}

	if patch.ParentID != nil && *patch.ParentID != "" {
		if m.layerLocked(*patch.ParentID) == nil {
			m.mu.Unlock()
			return nil, newLayerNotFound(*patch.ParentID)
		}
		if m.wouldCycleLocked(id, *patch.ParentID) {
			m.mu.Unlock()
			return nil, newCyclicGroup(id, *patch.ParentID)
		}
	}

	if patch.Name != nil {
		layer.Name = *patch.Name
	}
	if patch.Color != nil {
		layer.Color = *patch.Color
	}
	if patch.ParentID != nil {
		layer.ParentID = *patch.ParentID
	}
	if patch.Visible != nil {
		layer.Visible = *patch.Visible
	}
	if patch.Locked != nil {
		layer.Locked = *patch.Locked
	}
	if patch.IsExpanded != nil {
		layer.IsExpanded = *patch.IsExpanded
	}
	snapshot := layer.Clone()
	m.mu.Unlock()

	m.publish(Event{Kind: EventLayerUpdated, LayerID: snapshot.ID, Layer: snapshot})
	return snapshot.Clone(), nil
}

// RemoveLayer removes a layer and applies the cascade policy to its
// children atomically: CascadeDeleteChildren removes the whole subtree,
// CascadeReparentChildren moves direct children to the removed layer's
// own parent. Returns false (and mutates nothing) when the id is unknown
// or the policy is not one of the two valid values.
func (m *Model) RemoveLayer(id string, policy CascadePolicy) bool {
	m.mu.Lock()
	if !policy.valid() || m.layerLocked(id) == nil {
		m.mu.Unlock()
		return false
	}

	var events []Event
	switch policy {
	case CascadeDeleteChildren:
		for _, removedID := range m.subtreeLocked(id) {
			m.deleteLayerLocked(removedID)
			events = append(events, Event{Kind: EventLayerRemoved, LayerID: removedID})
		}
	case CascadeReparentChildren:
		parentID := m.layerLocked(id).ParentID
		for _, child := range m.state.Layers {
			if child.ParentID == id {
				child.ParentID = parentID
				events = append(events, Event{Kind: EventLayerUpdated, LayerID: child.ID, Layer: child.Clone()})
			}
		}
		m.deleteLayerLocked(id)
		events = append(events, Event{Kind: EventLayerRemoved, LayerID: id})
	}
	m.mu.Unlock()

	m.publish(events...)
	return true
}

// ReorderLayer moves a layer within its sibling list. The target index
// is clamped to the sibling range; siblings are renumbered contiguously.
func (m *Model) ReorderLayer(id string, newIndex int) error {
	m.mu.Lock()
	layer := m.layerLocked(id)
	if layer == nil {
		m.mu.Unlock()
		return newLayerNotFound(id)
	}

	siblings := m.siblingsLocked(layer.ParentID)
	pos := 0
	for i, sib := range siblings {
		if sib.ID == id {
			pos = i
			break
		}
	}
	if newIndex < 0 {
		newIndex = 0
	}
	if newIndex > len(siblings)-1 {
		newIndex = len(siblings) - 1
	}

	siblings = append(siblings[:pos], siblings[pos+1:]...)
	siblings = append(siblings[:newIndex], append([]*Layer{layer}, siblings[newIndex:]...)...)
	for i, sib := range siblings {
		sib.Index = i
	}
	snapshot := layer.Clone()
	m.mu.Unlock()

	m.publish(Event{Kind: EventLayerReordered, LayerID: snapshot.ID, Layer: snapshot})
	return nil
}

// AddKeyframe creates a keyframe at the given time on the layer and
// extends the duration when the keyframe lands past the current end.
// Negative times are rejected.
func (m *Model) AddKeyframe(layerID string, time float64, props motion.Properties) (*Keyframe, error) {
	if time < 0 || math.IsNaN(time) {
		return nil, newInvalidTimeRange(fmt.Sprintf("keyframe time must be >= 0, got %v", time))
	}

	m.mu.Lock()
	layer := m.layerLocked(layerID)
	if layer == nil {
		m.mu.Unlock()
		return nil, newLayerNotFound(layerID)
	}

	kf := &Keyframe{
		ID:         m.ids.Generate(),
		Time:       time,
		Properties: props.Clone(),
	}
	if kf.Properties == nil {
		kf.Properties = motion.Properties{}
	}
	layer.Keyframes = append(layer.Keyframes, kf)
	sortKeyframes(layer.Keyframes)

	events := []Event{{Kind: EventKeyframeAdded, LayerID: layerID, KeyframeID: kf.ID, Keyframe: kf.Clone()}}
	if m.extendLocked(time, 0) {
		events = append(events, Event{Kind: EventDurationChanged, Duration: m.state.Duration})
	}
	snapshot := kf.Clone()
	m.mu.Unlock()

	m.publish(events...)
	return snapshot, nil
}

// KeyframePatch is a partial keyframe update. Nil fields are left
// unchanged; a non-nil Properties map replaces the snapshot wholesale.
type KeyframePatch struct {
	Time       *float64
	Properties motion.Properties
	Selected   *bool
}

// UpdateKeyframe merges the patch into the keyframe. A time change
// re-sorts the layer's keyframe sequence and extends the duration when
// the new time lands past the current end.
func (m *Model) UpdateKeyframe(layerID, keyframeID string, patch KeyframePatch) (*Keyframe, error) {
	if patch.Time != nil && (*patch.Time < 0 || math.IsNaN(*patch.Time)) {
		return nil, newInvalidTimeRange(fmt.Sprintf("keyframe time must be >= 0, got %v", *patch.Time))
	}

	m.mu.Lock()
	layer := m.layerLocked(layerID)
	if layer == nil {
		m.mu.Unlock()
		return nil, newLayerNotFound(layerID)
	}
	kf := findKeyframe(layer, keyframeID)
	if kf == nil {
		m.mu.Unlock()
		return nil, newKeyframeNotFound(layerID, keyframeID)
	}

	events := make([]Event, 0, 2)
	if patch.Time != nil {
		kf.Time = *patch.Time
		sortKeyframes(layer.Keyframes)
		if m.extendLocked(*patch.Time, 0) {
			events = append(events, Event{Kind: EventDurationChanged, Duration: m.state.Duration})
		}
	}
	if patch.Properties != nil {
		kf.Properties = patch.Properties.Clone()
	}
	if patch.Selected != nil {
		kf.Selected = *patch.Selected
		ref := KeyframeRef{LayerID: layerID, KeyframeID: keyframeID}
		if *patch.Selected {
			m.state.SelectedKeyframes[ref] = true
		} else {
			delete(m.state.SelectedKeyframes, ref)
		}
	}

	snapshot := kf.Clone()
	events = append([]Event{{Kind: EventKeyframeUpdated, LayerID: layerID, KeyframeID: keyframeID, Keyframe: snapshot}}, events...)
	m.mu.Unlock()

	m.publish(events...)
	return snapshot.Clone(), nil
}

// MoveKeyframe repositions a keyframe in time.
func (m *Model) MoveKeyframe(layerID, keyframeID string, newTime float64) (*Keyframe, error) {
	return m.UpdateKeyframe(layerID, keyframeID, KeyframePatch{Time: &newTime})
}

// RemoveKeyframe removes a keyframe. Any tween referencing it is removed
// first, so no dangling tween reference ever survives. Returns false
// when the layer or keyframe is unknown.
func (m *Model) RemoveKeyframe(layerID, keyframeID string) bool {
	m.mu.Lock()
	layer := m.layerLocked(layerID)
	if layer == nil || findKeyframe(layer, keyframeID) == nil {
		m.mu.Unlock()
		return false
	}

	var events []Event
	kept := layer.Tweens[:0]
	for _, tw := range layer.Tweens {
		if tw.StartKeyframeID == keyframeID || tw.EndKeyframeID == keyframeID {
			events = append(events, Event{Kind: EventTweenRemoved, LayerID: layerID, TweenID: tw.ID})
			continue
		}
		kept = append(kept, tw)
	}
	layer.Tweens = kept

	for i, kf := range layer.Keyframes {
		if kf.ID == keyframeID {
			layer.Keyframes = append(layer.Keyframes[:i], layer.Keyframes[i+1:]...)
			break
		}
	}
	delete(m.state.SelectedKeyframes, KeyframeRef{LayerID: layerID, KeyframeID: keyframeID})
	events = append(events, Event{Kind: EventKeyframeRemoved, LayerID: layerID, KeyframeID: keyframeID})
	m.mu.Unlock()

	m.publish(events...)
	return true
}

// TweenParams are the caller-supplied fields for AddMotionTween. An
// empty Easing defaults to linear.
type TweenParams struct {
	StartKeyframeID string
	EndKeyframeID   string
	Easing          string
	Properties      motion.Properties
}

// AddMotionTween creates a tween between two distinct keyframes of the
// layer. Missing or equal keyframe ids are rejected with an
// INVALID_REFERENCE error.
func (m *Model) AddMotionTween(layerID string, p TweenParams) (*MotionTween, error) {
	m.mu.Lock()
	layer := m.layerLocked(layerID)
	if layer == nil {
		m.mu.Unlock()
		return nil, newLayerNotFound(layerID)
	}
	if p.StartKeyframeID == p.EndKeyframeID {
		m.mu.Unlock()
		return nil, newInvalidReference("tween endpoints must be distinct keyframes", layerID)
	}
	if findKeyframe(layer, p.StartKeyframeID) == nil {
		m.mu.Unlock()
		return nil, newInvalidReference(fmt.Sprintf("start keyframe %s does not exist on layer", p.StartKeyframeID), layerID)
	}
	if findKeyframe(layer, p.EndKeyframeID) == nil {
		m.mu.Unlock()
		return nil, newInvalidReference(fmt.Sprintf("end keyframe %s does not exist on layer", p.EndKeyframeID), layerID)
	}

	easing := p.Easing
	if easing == "" {
		easing = motion.DefaultEasing
	}
	tw := &MotionTween{
		ID:              m.ids.Generate(),
		StartKeyframeID: p.StartKeyframeID,
		EndKeyframeID:   p.EndKeyframeID,
		Easing:          easing,
		Properties:      p.Properties.Clone(),
	}
	layer.Tweens = append(layer.Tweens, tw)
	snapshot := tw.Clone()
	m.mu.Unlock()

	m.publish(Event{Kind: EventTweenAdded, LayerID: layerID, TweenID: snapshot.ID, Tween: snapshot})
	return snapshot.Clone(), nil
}

// RemoveMotionTween removes a tween. Returns false when the layer or
// tween is unknown.
func (m *Model) RemoveMotionTween(layerID, tweenID string) bool {
	m.mu.Lock()
	layer := m.layerLocked(layerID)
	if layer == nil {
		m.mu.Unlock()
		return false
	}
	removed := false
	for i, tw := range layer.Tweens {
		if tw.ID == tweenID {
			layer.Tweens = append(layer.Tweens[:i], layer.Tweens[i+1:]...)
			removed = true
			break
		}
	}
	m.mu.Unlock()

	if removed {
		m.publish(Event{Kind: EventTweenRemoved, LayerID: layerID, TweenID: tweenID})
	}
	return removed
}

// SetCurrentTime moves the playhead, clamped to [0, duration]. It never
// extends the duration; growth is an explicit, separate decision
// (ExtendDurationIfNeeded), so a scheduler and a manual scrub cannot
// double-extend.
func (m *Model) SetCurrentTime(t float64) {
	m.mu.Lock()
	if t < 0 || math.IsNaN(t) {
		t = 0
	}
	if t > m.state.Duration {
		t = m.state.Duration
	}
	m.state.CurrentTime = t
	m.mu.Unlock()

	m.publish(Event{Kind: EventTimeChanged, Time: t})
}

// ExtendDurationIfNeeded grows the duration to time+padding when that
// exceeds the current duration. Extension only ever grows the timeline.
// Returns true when the duration changed.
func (m *Model) ExtendDurationIfNeeded(time, padding float64) bool {
	m.mu.Lock()
	extended := m.extendLocked(time, padding)
	duration := m.state.Duration
	m.mu.Unlock()

	if extended {
		m.publish(Event{Kind: EventDurationChanged, Duration: duration})
	}
	return extended
}

// SetDuration sets the duration explicitly. Rejected when below the
// maximum existing keyframe time or negative; the playhead is clamped
// down when the timeline shrinks past it.
func (m *Model) SetDuration(d float64) error {
	m.mu.Lock()
	if d < 0 || math.IsNaN(d) {
		m.mu.Unlock()
		return newInvalidTimeRange(fmt.Sprintf("duration must be >= 0, got %v", d))
	}
	if maxTime := m.maxKeyframeTimeLocked(); d < maxTime {
		m.mu.Unlock()
		return newInvalidTimeRange(fmt.Sprintf("duration %v is below the last keyframe at %v", d, maxTime))
	}

	m.state.Duration = d
	events := []Event{{Kind: EventDurationChanged, Duration: d}}
	if m.state.CurrentTime > d {
		m.state.CurrentTime = d
		events = append(events, Event{Kind: EventTimeChanged, Time: d})
	}
	m.mu.Unlock()

	m.publish(events...)
	return nil
}

// SetTimeScale sets the viewport zoom factor, clamped to
// [MinTimeScale, MaxTimeScale].
func (m *Model) SetTimeScale(scale float64) {
	if scale < MinTimeScale || math.IsNaN(scale) {
		scale = MinTimeScale
	}
	if scale > MaxTimeScale {
		scale = MaxTimeScale
	}

	m.mu.Lock()
	m.state.TimeScale = scale
	m.mu.Unlock()

	m.publish(Event{Kind: EventTimeScaleChanged, TimeScale: scale})
}

// SelectLayer adds a layer to the selection. A non-additive select
// replaces the whole selection (layers and keyframes).
func (m *Model) SelectLayer(id string, additive bool) error {
	m.mu.Lock()
	if m.layerLocked(id) == nil {
		m.mu.Unlock()
		return newLayerNotFound(id)
	}
	if !additive {
		m.clearSelectionLocked()
	}
	m.state.SelectedLayers[id] = true
	m.mu.Unlock()

	m.publish(Event{Kind: EventSelectionChanged})
	return nil
}

// SelectKeyframe adds a keyframe to the selection and mirrors the
// Selected flag on the keyframe itself. A non-additive select replaces
// the whole selection.
func (m *Model) SelectKeyframe(layerID, keyframeID string, additive bool) error {
	m.mu.Lock()
	layer := m.layerLocked(layerID)
	if layer == nil {
		m.mu.Unlock()
		return newLayerNotFound(layerID)
	}
	kf := findKeyframe(layer, keyframeID)
	if kf == nil {
		m.mu.Unlock()
		return newKeyframeNotFound(layerID, keyframeID)
	}
	if !additive {
		m.clearSelectionLocked()
	}
	kf.Selected = true
	m.state.SelectedKeyframes[KeyframeRef{LayerID: layerID, KeyframeID: keyframeID}] = true
	m.mu.Unlock()

	m.publish(Event{Kind: EventSelectionChanged})
	return nil
}

// ClearSelection empties both selection sets.
func (m *Model) ClearSelection() {
	m.mu.Lock()
	m.clearSelectionLocked()
	m.mu.Unlock()

	m.publish(Event{Kind: EventSelectionChanged})
}

// --- locked helpers -------------------------------------------------

// layerLocked returns the live layer with the given id, or nil.
func (m *Model) layerLocked(id string) *Layer {
	for _, l := range m.state.Layers {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// siblingsLocked returns live layers sharing a parent, in Index order.
func (m *Model) siblingsLocked(parentID string) []*Layer {
	var out []*Layer
	for _, l := range m.state.Layers {
		if l.ParentID == parentID {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// subtreeLocked returns the layer's id plus all transitive descendant
// ids, depth-first.
func (m *Model) subtreeLocked(id string) []string {
	out := []string{id}
	for _, child := range m.siblingsLocked(id) {
		out = append(out, m.subtreeLocked(child.ID)...)
	}
	return out
}

// deleteLayerLocked removes a single layer and its selection entries.
// Cascade handling is the caller's job.
func (m *Model) deleteLayerLocked(id string) {
	for i, l := range m.state.Layers {
		if l.ID == id {
			m.state.Layers = append(m.state.Layers[:i], m.state.Layers[i+1:]...)
			break
		}
	}
	delete(m.state.SelectedLayers, id)
	for ref := range m.state.SelectedKeyframes {
		if ref.LayerID == id {
			delete(m.state.SelectedKeyframes, ref)
		}
	}
}

// extendLocked applies the duration-growth rule without notifying.
func (m *Model) extendLocked(time, padding float64) bool {
	if time+padding > m.state.Duration {
		m.state.Duration = time + padding
		return true
	}
	return false
}

func (m *Model) maxKeyframeTimeLocked() float64 {
	maxTime := 0.0
	for _, l := range m.state.Layers {
		for _, kf := range l.Keyframes {
			if kf.Time > maxTime {
				maxTime = kf.Time
			}
		}
	}
	return maxTime
}

func (m *Model) clearSelectionLocked() {
	m.state.SelectedLayers = make(map[string]bool)
	for ref := range m.state.SelectedKeyframes {
		if layer := m.layerLocked(ref.LayerID); layer != nil {
			if kf := findKeyframe(layer, ref.KeyframeID); kf != nil {
				kf.Selected = false
			}
		}
	}
	m.state.SelectedKeyframes = make(map[KeyframeRef]bool)
}

func findKeyframe(layer *Layer, id string) *Keyframe {
	for _, kf := range layer.Keyframes {
		if kf.ID == id {
			return kf
		}
	}
	return nil
}

// sortKeyframes keeps a layer's keyframes in ascending time order.
// The sort is stable so equal-time keyframes keep insertion order.
func sortKeyframes(kfs []*Keyframe) {
	sort.SliceStable(kfs, func(i, j int) bool { return kfs[i].Time < kfs[j].Time })
}

func boolOr(p *bool, def bool) bool {
	if p != nil {
		return *p
	}
	return def
}
