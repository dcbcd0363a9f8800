package timeline

import (
	"encoding/json"
	"sort"

	"github.com/keyline/keyline/internal/motion"
)

// stateDoc is the serialized document shape. One JSON document carries
// the whole timeline; layers embed their keyframes and tweens verbatim.
type stateDoc struct {
	Layers            []*Layer      `json:"layers"`
	CurrentTime       float64       `json:"currentTime"`
	Duration          float64       `json:"duration"`
	TimeScale         float64       `json:"timeScale"`
	SelectedLayers    []string      `json:"selectedLayers,omitempty"`
	SelectedKeyframes []KeyframeRef `json:"selectedKeyframes,omitempty"`
}

// ToJSON serializes the full timeline state as canonical JSON: sorted
// keys, NFC strings, shortest float form. The same state always encodes
// to the same bytes.
func (m *Model) ToJSON() ([]byte, error) {
	m.mu.RLock()
	doc := m.docMapLocked()
	m.mu.RUnlock()
	return motion.MarshalCanonical(doc)
}

// docMapLocked projects the state into the generic form the canonical
// encoder consumes.
func (m *Model) docMapLocked() map[string]any {
	layers := make([]any, len(m.state.Layers))
	for i, l := range m.state.Layers {
		layers[i] = layerMap(l)
	}

	doc := map[string]any{
		"layers":      layers,
		"currentTime": m.state.CurrentTime,
		"duration":    m.state.Duration,
		"timeScale":   m.state.TimeScale,
	}

	if len(m.state.SelectedLayers) > 0 {
		ids := make([]string, 0, len(m.state.SelectedLayers))
		for id := range m.state.SelectedLayers {
			ids = append(ids, id)
		}
		sortStrings(ids)
		doc["selectedLayers"] = ids
	}
	if len(m.state.SelectedKeyframes) > 0 {
		refs := make([]KeyframeRef, 0, len(m.state.SelectedKeyframes))
		for ref := range m.state.SelectedKeyframes {
			refs = append(refs, ref)
		}
		sortRefs(refs)
		list := make([]any, len(refs))
		for i, ref := range refs {
			list[i] = map[string]any{"layerId": ref.LayerID, "keyframeId": ref.KeyframeID}
		}
		doc["selectedKeyframes"] = list
	}
	return doc
}

func layerMap(l *Layer) map[string]any {
	kfs := make([]any, len(l.Keyframes))
	for i, kf := range l.Keyframes {
		kfMap := map[string]any{
			"id":         kf.ID,
			"time":       kf.Time,
			"properties": kf.Properties,
		}
		if kf.Selected {
			kfMap["selected"] = true
		}
		kfs[i] = kfMap
	}

	tweens := make([]any, len(l.Tweens))
	for i, tw := range l.Tweens {
		twMap := map[string]any{
			"id":              tw.ID,
			"startKeyframeId": tw.StartKeyframeID,
			"endKeyframeId":   tw.EndKeyframeID,
			"easingFunction":  tw.Easing,
		}
		if len(tw.Properties) > 0 {
			twMap["properties"] = tw.Properties
		}
		tweens[i] = twMap
	}

	out := map[string]any{
		"id":           l.ID,
		"name":         l.Name,
		"visible":      l.Visible,
		"locked":       l.Locked,
		"isExpanded":   l.IsExpanded,
		"index":        l.Index,
		"keyframes":    kfs,
		"motionTweens": tweens,
	}
	if l.Color != "" {
		out["color"] = l.Color
	}
	if l.ParentID != "" {
		out["parentId"] = l.ParentID
	}
	return out
}

// FromJSON fully replaces the timeline state with the decoded document.
// The new state is validated against all structural invariants before
// the swap; on any failure the prior state is preserved untouched and a
// MALFORMED_STATE error is returned.
func (m *Model) FromJSON(data []byte) error {
	var doc stateDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return NewMalformedStateError("cannot decode timeline document", err)
	}

	next := newState()
	next.CurrentTime = doc.CurrentTime
	next.Duration = doc.Duration
	next.TimeScale = doc.TimeScale
	next.Layers = make([]*Layer, len(doc.Layers))
	for i, l := range doc.Layers {
		clone := l.Clone()
		if clone.Keyframes == nil {
			clone.Keyframes = []*Keyframe{}
		}
		if clone.Tweens == nil {
			clone.Tweens = []*MotionTween{}
		}
		for _, kf := range clone.Keyframes {
			if kf.Properties == nil {
				kf.Properties = motion.Properties{}
			}
		}
		sortKeyframes(clone.Keyframes)
		next.Layers[i] = clone
	}

	// Selection is carried both as explicit ref lists and as Selected
	// flags on keyframes; the two are unioned, then mirrored back.
	for _, id := range doc.SelectedLayers {
		next.SelectedLayers[id] = true
	}
	for _, ref := range doc.SelectedKeyframes {
		next.SelectedKeyframes[ref] = true
	}
	for _, l := range next.Layers {
		for _, kf := range l.Keyframes {
			if kf.Selected {
				next.SelectedKeyframes[KeyframeRef{LayerID: l.ID, KeyframeID: kf.ID}] = true
			}
		}
	}

	if err := validateState(&next); err != nil {
		return err
	}

	for ref := range next.SelectedKeyframes {
		for _, l := range next.Layers {
			if l.ID == ref.LayerID {
				findKeyframe(l, ref.KeyframeID).Selected = true
			}
		}
	}

	m.mu.Lock()
	m.state = next
	m.mu.Unlock()

	m.publish(Event{Kind: EventStateReplaced})
	return nil
}

func sortStrings(s []string) {
	sort.Strings(s)
}

func sortRefs(refs []KeyframeRef) {
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].LayerID != refs[j].LayerID {
			return refs[i].LayerID < refs[j].LayerID
		}
		return refs[i].KeyframeID < refs[j].KeyframeID
	})
}
