package timeline

import (
	"math"
	"sort"

	"github.com/keyline/keyline/internal/motion"
)

// KeyframeHit is one match from KeyframesAtTime.
type KeyframeHit struct {
	LayerID  string
	Keyframe *Keyframe
}

// ObjectSnapshot is one layer's interpolated property state at a point
// in time. Layer is a clone; Properties is an owned map.
type ObjectSnapshot struct {
	Layer      *Layer
	Properties motion.Properties
}

// KeyframesAtTime returns every keyframe across all layers whose time is
// within tolerance of t. A negative tolerance selects
// DefaultKeyframeTolerance.
func (m *Model) KeyframesAtTime(t, tolerance float64) []KeyframeHit {
	if tolerance < 0 {
		tolerance = DefaultKeyframeTolerance
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var hits []KeyframeHit
	for _, layer := range m.state.Layers {
		for _, kf := range layer.Keyframes {
			if math.Abs(kf.Time-t) <= tolerance {
				hits = append(hits, KeyframeHit{LayerID: layer.ID, Keyframe: kf.Clone()})
			}
		}
	}
	return hits
}

// ObjectsAtTime computes the interpolated property snapshot of every
// layer at time t. Per layer:
//   - no keyframes: an empty property map
//   - t inside a tween's keyframe range: the eased blend of the two
//     endpoint snapshots, with tween overrides laid over both first
//   - t on or before the first keyframe / on or after the last: that
//     keyframe's properties unmodified
//   - between keyframes with no tween: the nearest earlier keyframe's
//     properties (frame-hold)
func (m *Model) ObjectsAtTime(t float64) []ObjectSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ObjectSnapshot, 0, len(m.state.Layers))
	for _, layer := range m.state.Layers {
		out = append(out, ObjectSnapshot{
			Layer:      layer.Clone(),
			Properties: layerPropertiesAt(layer, t),
		})
	}
	return out
}

// layerPropertiesAt resolves one layer's snapshot. Keyframes are kept in
// ascending time order by every mutation.
func layerPropertiesAt(layer *Layer, t float64) motion.Properties {
	kfs := layer.Keyframes
	if len(kfs) == 0 {
		return motion.Properties{}
	}

	// Tweens win over plain holds. The first tween whose keyframe range
	// contains t is used; authoring overlapping tweens is possible but
	// the earliest-added one takes effect.
	for _, tw := range layer.Tweens {
		start := findKeyframe(layer, tw.StartKeyframeID)
		end := findKeyframe(layer, tw.EndKeyframeID)
		if start == nil || end == nil {
			continue
		}
		if start.Time > end.Time {
			start, end = end, start
		}
		if t < start.Time || t > end.Time || start.Time == end.Time {
			continue
		}

		progress := (t - start.Time) / (end.Time - start.Time)
		startProps := start.Properties.Merge(tw.Properties)
		endProps := end.Properties.Merge(tw.Properties)
		return motion.Interpolate(startProps, endProps, progress, tw.Easing)
	}

	if t <= kfs[0].Time {
		return kfs[0].Properties.Clone()
	}
	if t >= kfs[len(kfs)-1].Time {
		return kfs[len(kfs)-1].Properties.Clone()
	}

	// Hold the nearest earlier keyframe.
	held := kfs[0]
	for _, kf := range kfs[1:] {
		if kf.Time > t {
			break
		}
		held = kf
	}
	return held.Properties.Clone()
}

// Layer returns a clone of the layer, or nil when the id is unknown.
func (m *Model) Layer(id string) *Layer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.layerLocked(id).Clone()
}

// Layers returns clones of all layers in storage order.
func (m *Model) Layers() []*Layer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Layer, len(m.state.Layers))
	for i, l := range m.state.Layers {
		out[i] = l.Clone()
	}
	return out
}

// CurrentTime returns the playhead position.
func (m *Model) CurrentTime() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.CurrentTime
}

// Duration returns the timeline length.
func (m *Model) Duration() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Duration
}

// TimeScale returns the viewport zoom factor.
func (m *Model) TimeScale() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.TimeScale
}

// SelectedLayerIDs returns the selected layer ids, sorted.
func (m *Model) SelectedLayerIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.state.SelectedLayers))
	for id := range m.state.SelectedLayers {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// SelectedKeyframeRefs returns the selected keyframe refs, sorted by
// layer id then keyframe id.
func (m *Model) SelectedKeyframeRefs() []KeyframeRef {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]KeyframeRef, 0, len(m.state.SelectedKeyframes))
	for ref := range m.state.SelectedKeyframes {
		out = append(out, ref)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LayerID != out[j].LayerID {
			return out[i].LayerID < out[j].LayerID
		}
		return out[i].KeyframeID < out[j].KeyframeID
	})
	return out
}
