package timeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyline/keyline/internal/motion"
	"github.com/keyline/keyline/internal/timeline"
)

// snapshotFor extracts the snapshot of one layer from ObjectsAtTime.
func snapshotFor(t *testing.T, m *timeline.Model, layerID string, at float64) motion.Properties {
	t.Helper()
	for _, obj := range m.ObjectsAtTime(at) {
		if obj.Layer.ID == layerID {
			return obj.Properties
		}
	}
	t.Fatalf("layer %s not in ObjectsAtTime result", layerID)
	return nil
}

func TestObjectsAtTime_NoKeyframes(t *testing.T) {
	m := newTestModel()
	layer, _ := m.AddLayer(timeline.LayerParams{Name: "empty"})

	for _, at := range []float64{0, 1, 100} {
		props := snapshotFor(t, m, layer.ID, at)
		assert.Empty(t, props)
		assert.NotNil(t, props)
	}
}

func TestObjectsAtTime_SingleKeyframeHoldsEverywhere(t *testing.T) {
	m := newTestModel()
	layer, _ := m.AddLayer(timeline.LayerParams{Name: "dot"})
	_, err := m.AddKeyframe(layer.ID, 3, motion.Properties{"x": motion.Number(42)})
	require.NoError(t, err)

	for _, at := range []float64{0, 3, 9} {
		assert.Equal(t, motion.Number(42), snapshotFor(t, m, layer.ID, at)["x"])
	}
}

func TestObjectsAtTime_LinearTweenMidpoint(t *testing.T) {
	m := newTestModel()
	layer, _ := m.AddLayer(timeline.LayerParams{Name: "box"})
	a, _ := m.AddKeyframe(layer.ID, 0, motion.Properties{"x": motion.Number(0)})
	b, _ := m.AddKeyframe(layer.ID, 2, motion.Properties{"x": motion.Number(100)})
	_, err := m.AddMotionTween(layer.ID, timeline.TweenParams{
		StartKeyframeID: a.ID, EndKeyframeID: b.ID, Easing: "linear",
	})
	require.NoError(t, err)

	assert.Equal(t, motion.Number(50), snapshotFor(t, m, layer.ID, 1)["x"])
	// Shared numeric properties land on the arithmetic mean at the
	// temporal midpoint of a linear tween.
	assert.Equal(t, motion.Number(25), snapshotFor(t, m, layer.ID, 0.5)["x"])
	assert.Equal(t, motion.Number(0), snapshotFor(t, m, layer.ID, 0)["x"])
	assert.Equal(t, motion.Number(100), snapshotFor(t, m, layer.ID, 2)["x"])
}

func TestObjectsAtTime_EasedTween(t *testing.T) {
	m := newTestModel()
	layer, _ := m.AddLayer(timeline.LayerParams{Name: "box"})
	a, _ := m.AddKeyframe(layer.ID, 0, motion.Properties{"x": motion.Number(0)})
	b, _ := m.AddKeyframe(layer.ID, 2, motion.Properties{"x": motion.Number(100)})
	_, err := m.AddMotionTween(layer.ID, timeline.TweenParams{
		StartKeyframeID: a.ID, EndKeyframeID: b.ID, Easing: "easeInQuad",
	})
	require.NoError(t, err)

	// easeInQuad at progress 0.5: 100 * 0.5^2 = 25.
	got := snapshotFor(t, m, layer.ID, 1)["x"]
	assert.InDelta(t, 25, float64(got.(motion.Number)), 1e-9)
}

func TestObjectsAtTime_OutsideKeyframeRange(t *testing.T) {
	m := newTestModel()
	layer, _ := m.AddLayer(timeline.LayerParams{Name: "box"})
	_, err := m.AddKeyframe(layer.ID, 2, motion.Properties{"x": motion.Number(10)})
	require.NoError(t, err)
	_, err = m.AddKeyframe(layer.ID, 4, motion.Properties{"x": motion.Number(20)})
	require.NoError(t, err)

	// Before the first and after the last keyframe: that keyframe's
	// properties unmodified.
	assert.Equal(t, motion.Number(10), snapshotFor(t, m, layer.ID, 0)["x"])
	assert.Equal(t, motion.Number(20), snapshotFor(t, m, layer.ID, 9)["x"])
}

func TestObjectsAtTime_GapWithoutTweenHoldsEarlierKeyframe(t *testing.T) {
	m := newTestModel()
	layer, _ := m.AddLayer(timeline.LayerParams{Name: "box"})
	_, err := m.AddKeyframe(layer.ID, 1, motion.Properties{"x": motion.Number(1)})
	require.NoError(t, err)
	_, err = m.AddKeyframe(layer.ID, 5, motion.Properties{"x": motion.Number(5)})
	require.NoError(t, err)

	// No tween joins the pair, so the timeline frame-holds.
	assert.Equal(t, motion.Number(1), snapshotFor(t, m, layer.ID, 3)["x"])
	assert.Equal(t, motion.Number(5), snapshotFor(t, m, layer.ID, 5)["x"])
}

func TestObjectsAtTime_TweenOverridesPinProperties(t *testing.T) {
	m := newTestModel()
	layer, _ := m.AddLayer(timeline.LayerParams{Name: "box"})
	a, _ := m.AddKeyframe(layer.ID, 0, motion.Properties{"x": motion.Number(0), "opacity": motion.Number(0)})
	b, _ := m.AddKeyframe(layer.ID, 2, motion.Properties{"x": motion.Number(100), "opacity": motion.Number(1)})
	_, err := m.AddMotionTween(layer.ID, timeline.TweenParams{
		StartKeyframeID: a.ID,
		EndKeyframeID:   b.ID,
		Properties:      motion.Properties{"opacity": motion.Number(0.5)},
	})
	require.NoError(t, err)

	props := snapshotFor(t, m, layer.ID, 1)
	// The override replaces both endpoints for its key, so it stays
	// constant across the tween span while other keys blend normally.
	assert.Equal(t, motion.Number(0.5), props["opacity"])
	assert.Equal(t, motion.Number(50), props["x"])
}

func TestObjectsAtTime_ColorTween(t *testing.T) {
	m := newTestModel()
	layer, _ := m.AddLayer(timeline.LayerParams{Name: "box"})
	a, _ := m.AddKeyframe(layer.ID, 0, motion.Properties{"fill": motion.Color("#000000")})
	b, _ := m.AddKeyframe(layer.ID, 2, motion.Properties{"fill": motion.Color("#ffffff")})
	_, err := m.AddMotionTween(layer.ID, timeline.TweenParams{StartKeyframeID: a.ID, EndKeyframeID: b.ID})
	require.NoError(t, err)

	assert.Equal(t, motion.Color("rgb(128, 128, 128)"), snapshotFor(t, m, layer.ID, 1)["fill"])
}

func TestObjectsAtTime_ReversedTweenEndpoints(t *testing.T) {
	m := newTestModel()
	layer, _ := m.AddLayer(timeline.LayerParams{Name: "box"})
	early, _ := m.AddKeyframe(layer.ID, 0, motion.Properties{"x": motion.Number(0)})
	late, _ := m.AddKeyframe(layer.ID, 2, motion.Properties{"x": motion.Number(100)})

	// Authored backwards: start points at the later keyframe. The
	// blend still follows time order.
	_, err := m.AddMotionTween(layer.ID, timeline.TweenParams{
		StartKeyframeID: late.ID, EndKeyframeID: early.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, motion.Number(50), snapshotFor(t, m, layer.ID, 1)["x"])
}

func TestKeyframesAtTime(t *testing.T) {
	m := newTestModel()
	la, _ := m.AddLayer(timeline.LayerParams{Name: "a"})
	lb, _ := m.AddLayer(timeline.LayerParams{Name: "b"})
	kfA, _ := m.AddKeyframe(la.ID, 1.0, nil)
	_, err := m.AddKeyframe(la.ID, 5.0, nil)
	require.NoError(t, err)
	kfB, _ := m.AddKeyframe(lb.ID, 1.05, nil)

	// Both keyframes near t=1 match across layers.
	hits := m.KeyframesAtTime(1.0, 0.1)
	require.Len(t, hits, 2)
	assert.Equal(t, kfA.ID, hits[0].Keyframe.ID)
	assert.Equal(t, la.ID, hits[0].LayerID)
	assert.Equal(t, kfB.ID, hits[1].Keyframe.ID)

	// Tight tolerance excludes the off-by-0.05 keyframe.
	hits = m.KeyframesAtTime(1.0, 0.01)
	require.Len(t, hits, 1)
	assert.Equal(t, kfA.ID, hits[0].Keyframe.ID)

	// Negative tolerance selects the default window.
	hits = m.KeyframesAtTime(1.0, -1)
	assert.Len(t, hits, 2)

	assert.Empty(t, m.KeyframesAtTime(3.0, 0.1))
}
