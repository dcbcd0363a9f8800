package timeline

import (
	"fmt"
	"math"
)

// validateState checks every structural invariant a loaded document must
// satisfy before it may replace live state:
//
//  1. layer ids unique; keyframe/tween ids unique within their layer
//  2. tween keyframe refs exist, are distinct, and are same-layer
//  3. parent refs exist and never form a cycle
//  4. duration >= max keyframe time; keyframe times >= 0
//  5. 0 <= currentTime <= duration
//  6. MinTimeScale <= timeScale <= MaxTimeScale
//
// Selection refs must also point at existing entities. Returns a
// MALFORMED_STATE error describing the first violation found.
func validateState(s *State) error {
	if math.IsNaN(s.TimeScale) || s.TimeScale < MinTimeScale || s.TimeScale > MaxTimeScale {
		return NewMalformedStateError(
			fmt.Sprintf("timeScale %v outside [%v, %v]", s.TimeScale, MinTimeScale, MaxTimeScale), nil)
	}
	if math.IsNaN(s.Duration) || s.Duration < 0 {
		return NewMalformedStateError(fmt.Sprintf("duration must be >= 0, got %v", s.Duration), nil)
	}
	if math.IsNaN(s.CurrentTime) || s.CurrentTime < 0 || s.CurrentTime > s.Duration {
		return NewMalformedStateError(
			fmt.Sprintf("currentTime %v outside [0, %v]", s.CurrentTime, s.Duration), nil)
	}

	byID := make(map[string]*Layer, len(s.Layers))
	for _, l := range s.Layers {
		if l == nil || l.ID == "" {
			return NewMalformedStateError("layer with empty id", nil)
		}
		if _, dup := byID[l.ID]; dup {
			return NewMalformedStateError(fmt.Sprintf("duplicate layer id %s", l.ID), nil)
		}
		byID[l.ID] = l
	}

	maxTime := 0.0
	for _, l := range s.Layers {
		if l.ParentID != "" {
			if _, ok := byID[l.ParentID]; !ok {
				return NewMalformedStateError(
					fmt.Sprintf("layer %s references missing parent %s", l.ID, l.ParentID), nil)
			}
		}

		kfIDs := make(map[string]bool, len(l.Keyframes))
		for _, kf := range l.Keyframes {
			if kf == nil || kf.ID == "" {
				return NewMalformedStateError(fmt.Sprintf("layer %s has a keyframe with empty id", l.ID), nil)
			}
			if kfIDs[kf.ID] {
				return NewMalformedStateError(
					fmt.Sprintf("layer %s has duplicate keyframe id %s", l.ID, kf.ID), nil)
			}
			kfIDs[kf.ID] = true
			if math.IsNaN(kf.Time) || kf.Time < 0 {
				return NewMalformedStateError(
					fmt.Sprintf("keyframe %s on layer %s has negative time %v", kf.ID, l.ID, kf.Time), nil)
			}
			if kf.Time > maxTime {
				maxTime = kf.Time
			}
		}

		twIDs := make(map[string]bool, len(l.Tweens))
		for _, tw := range l.Tweens {
			if tw == nil || tw.ID == "" {
				return NewMalformedStateError(fmt.Sprintf("layer %s has a tween with empty id", l.ID), nil)
			}
			if twIDs[tw.ID] {
				return NewMalformedStateError(
					fmt.Sprintf("layer %s has duplicate tween id %s", l.ID, tw.ID), nil)
			}
			twIDs[tw.ID] = true
			if tw.StartKeyframeID == tw.EndKeyframeID {
				return NewMalformedStateError(
					fmt.Sprintf("tween %s on layer %s references the same keyframe twice", tw.ID, l.ID), nil)
			}
			if !kfIDs[tw.StartKeyframeID] {
				return NewMalformedStateError(
					fmt.Sprintf("tween %s on layer %s references missing start keyframe %s", tw.ID, l.ID, tw.StartKeyframeID), nil)
			}
			if !kfIDs[tw.EndKeyframeID] {
				return NewMalformedStateError(
					fmt.Sprintf("tween %s on layer %s references missing end keyframe %s", tw.ID, l.ID, tw.EndKeyframeID), nil)
			}
		}
	}

	if s.Duration < maxTime {
		return NewMalformedStateError(
			fmt.Sprintf("duration %v is below the last keyframe at %v", s.Duration, maxTime), nil)
	}

	if err := validateAcyclic(byID); err != nil {
		return err
	}

	for id := range s.SelectedLayers {
		if _, ok := byID[id]; !ok {
			return NewMalformedStateError(fmt.Sprintf("selection references missing layer %s", id), nil)
		}
	}
	for ref := range s.SelectedKeyframes {
		l, ok := byID[ref.LayerID]
		if !ok {
			return NewMalformedStateError(
				fmt.Sprintf("selection references missing layer %s", ref.LayerID), nil)
		}
		if findKeyframe(l, ref.KeyframeID) == nil {
			return NewMalformedStateError(
				fmt.Sprintf("selection references missing keyframe %s on layer %s", ref.KeyframeID, ref.LayerID), nil)
		}
	}

	return nil
}

// validateAcyclic walks every layer's ancestor chain. A chain longer
// than the layer count can only mean a cycle.
func validateAcyclic(byID map[string]*Layer) error {
	for id, l := range byID {
		current := l.ParentID
		for steps := 0; current != ""; steps++ {
			if steps > len(byID) {
				return NewMalformedStateError(
					fmt.Sprintf("layer %s is part of a parent cycle", id), nil)
			}
			if current == id {
				return NewMalformedStateError(
					fmt.Sprintf("layer %s is its own transitive ancestor", id), nil)
			}
			current = byID[current].ParentID
		}
	}
	return nil
}
