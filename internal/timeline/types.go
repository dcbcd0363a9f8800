package timeline

import "github.com/keyline/keyline/internal/motion"

// Engine-wide constants. Duration and time values are seconds.
const (
	// MinTimeScale and MaxTimeScale bound the viewport zoom factor.
	MinTimeScale = 0.1
	MaxTimeScale = 10.0

	// DefaultTimeScale is the zoom factor of a fresh timeline.
	DefaultTimeScale = 1.0

	// DefaultDuration is the length of a fresh timeline.
	DefaultDuration = 10.0

	// DefaultKeyframeTolerance is the time window used to match keyframes
	// at a scrub position. Exact floating-point time matches are
	// unreliable, so hit-testing always uses a tolerance.
	DefaultKeyframeTolerance = 0.1
)

// Layer is an animatable object/track. A layer acts as a group when other
// layers reference it as their ParentID; there is no separate group type.
type Layer struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Visible    bool           `json:"visible"`
	Locked     bool           `json:"locked"`
	Color      string         `json:"color,omitempty"`
	ParentID   string         `json:"parentId,omitempty"`
	IsExpanded bool           `json:"isExpanded"`
	Index      int            `json:"index"`
	Keyframes  []*Keyframe    `json:"keyframes"`
	Tweens     []*MotionTween `json:"motionTweens"`
}

// Clone returns a deep copy of the layer, including its keyframes and
// tweens. Query methods hand out clones so callers never hold live
// aliases into model state.
func (l *Layer) Clone() *Layer {
	if l == nil {
		return nil
	}
	out := *l
	out.Keyframes = make([]*Keyframe, len(l.Keyframes))
	for i, kf := range l.Keyframes {
		out.Keyframes[i] = kf.Clone()
	}
	out.Tweens = make([]*MotionTween, len(l.Tweens))
	for i, tw := range l.Tweens {
		out.Tweens[i] = tw.Clone()
	}
	return &out
}

// Keyframe is a timestamped property snapshot on a layer. ID is unique
// within the owning layer.
type Keyframe struct {
	ID         string            `json:"id"`
	Time       float64           `json:"time"`
	Properties motion.Properties `json:"properties"`
	Selected   bool              `json:"selected,omitempty"`
}

// Clone returns a deep copy of the keyframe.
func (k *Keyframe) Clone() *Keyframe {
	if k == nil {
		return nil
	}
	out := *k
	out.Properties = k.Properties.Clone()
	return &out
}

// MotionTween interpolates between two keyframes on the same layer.
// Properties are optional per-tween overrides laid over both endpoint
// snapshots before blending, so an override pins its key for the whole
// tween span.
type MotionTween struct {
	ID              string            `json:"id"`
	StartKeyframeID string            `json:"startKeyframeId"`
	EndKeyframeID   string            `json:"endKeyframeId"`
	Easing          string            `json:"easingFunction"`
	Properties      motion.Properties `json:"properties,omitempty"`
}

// Clone returns a deep copy of the tween.
func (t *MotionTween) Clone() *MotionTween {
	if t == nil {
		return nil
	}
	out := *t
	out.Properties = t.Properties.Clone()
	return &out
}

// KeyframeRef addresses a keyframe across the model. Keyframe IDs are
// only unique within their layer, so the layer ID is part of the ref.
type KeyframeRef struct {
	LayerID    string `json:"layerId"`
	KeyframeID string `json:"keyframeId"`
}

// CascadePolicy selects what happens to child layers when a group layer
// is removed. There is deliberately no default: callers must choose.
type CascadePolicy int

const (
	// CascadeDeleteChildren recursively removes the layer's descendants.
	CascadeDeleteChildren CascadePolicy = iota + 1
	// CascadeReparentChildren moves direct children to the removed
	// layer's own parent (possibly root).
	CascadeReparentChildren
)

func (p CascadePolicy) valid() bool {
	return p == CascadeDeleteChildren || p == CascadeReparentChildren
}

// State is the full timeline document: all layers plus the scalar clock
// fields and the selection sets. State is exclusively owned by Model;
// external code only ever sees clones.
type State struct {
	Layers            []*Layer
	CurrentTime       float64
	Duration          float64
	TimeScale         float64
	SelectedLayers    map[string]bool
	SelectedKeyframes map[KeyframeRef]bool
}

func newState() State {
	return State{
		Duration:          DefaultDuration,
		TimeScale:         DefaultTimeScale,
		SelectedLayers:    make(map[string]bool),
		SelectedKeyframes: make(map[KeyframeRef]bool),
	}
}
