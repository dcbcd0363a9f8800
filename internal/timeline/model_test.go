package timeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyline/keyline/internal/motion"
	"github.com/keyline/keyline/internal/testutil"
	"github.com/keyline/keyline/internal/timeline"
)

func newTestModel() *timeline.Model {
	return timeline.New(timeline.WithIDGenerator(testutil.NewSequenceIDs("kl")))
}

func ptr[T any](v T) *T { return &v }

func TestAddLayer_DefaultsAndIndex(t *testing.T) {
	m := newTestModel()

	first, err := m.AddLayer(timeline.LayerParams{Name: "Box"})
	require.NoError(t, err)
	assert.Equal(t, "kl-001", first.ID)
	assert.Equal(t, 0, first.Index)
	assert.True(t, first.Visible)
	assert.False(t, first.Locked)
	assert.True(t, first.IsExpanded)
	assert.NotNil(t, first.Keyframes)
	assert.NotNil(t, first.Tweens)

	second, err := m.AddLayer(timeline.LayerParams{Visible: ptr(false), Locked: ptr(true)})
	require.NoError(t, err)
	assert.Equal(t, 1, second.Index)
	assert.False(t, second.Visible)
	assert.True(t, second.Locked)
	assert.NotEmpty(t, second.Name) // auto-named when omitted
}

func TestAddLayer_UnknownParent(t *testing.T) {
	m := newTestModel()
	_, err := m.AddLayer(timeline.LayerParams{Name: "child", ParentID: "nope"})
	assert.True(t, timeline.IsNotFound(err))
	assert.Empty(t, m.Layers())
}

func TestUpdateLayer(t *testing.T) {
	m := newTestModel()
	layer, err := m.AddLayer(timeline.LayerParams{Name: "Box"})
	require.NoError(t, err)

	updated, err := m.UpdateLayer(layer.ID, timeline.LayerPatch{
		Name:    ptr("Renamed"),
		Locked:  ptr(true),
		Color:   ptr("#00ff00"),
		Visible: ptr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.True(t, updated.Locked)
	assert.Equal(t, "#00ff00", updated.Color)
	assert.False(t, updated.Visible)

	_, err = m.UpdateLayer("nope", timeline.LayerPatch{Name: ptr("x")})
	assert.True(t, timeline.IsNotFound(err))
}

func TestUpdateLayer_ReparentAndCycleRejection(t *testing.T) {
	m := newTestModel()
	groupA, err := m.AddLayer(timeline.LayerParams{Name: "A"})
	require.NoError(t, err)
	groupB, err := m.AddLayer(timeline.LayerParams{Name: "B"})
	require.NoError(t, err)

	_, err = m.UpdateLayer(groupA.ID, timeline.LayerPatch{ParentID: ptr(groupB.ID)})
	require.NoError(t, err)

	// The reverse reparent would close a cycle and must be rejected,
	// leaving B's parent unchanged.
	_, err = m.UpdateLayer(groupB.ID, timeline.LayerPatch{ParentID: ptr(groupA.ID)})
	assert.True(t, timeline.IsCyclicGroup(err))
	assert.Empty(t, m.Layer(groupB.ID).ParentID)

	// Self-parenting is a cycle of length one.
	_, err = m.UpdateLayer(groupA.ID, timeline.LayerPatch{ParentID: ptr(groupA.ID)})
	assert.True(t, timeline.IsCyclicGroup(err))

	// Moving back to root is always legal.
	moved, err := m.UpdateLayer(groupA.ID, timeline.LayerPatch{ParentID: ptr("")})
	require.NoError(t, err)
	assert.Empty(t, moved.ParentID)
}

func TestRemoveLayer_DeleteChildrenCascades(t *testing.T) {
	m := newTestModel()
	root, _ := m.AddLayer(timeline.LayerParams{Name: "root"})
	child, _ := m.AddLayer(timeline.LayerParams{Name: "child", ParentID: root.ID})
	_, err := m.AddLayer(timeline.LayerParams{Name: "grandchild", ParentID: child.ID})
	require.NoError(t, err)
	other, _ := m.AddLayer(timeline.LayerParams{Name: "other"})

	assert.True(t, m.RemoveLayer(root.ID, timeline.CascadeDeleteChildren))

	remaining := m.Layers()
	require.Len(t, remaining, 1)
	assert.Equal(t, other.ID, remaining[0].ID)
	// No survivor may reference the removed subtree.
	for _, l := range remaining {
		assert.NotEqual(t, root.ID, l.ParentID)
		assert.NotEqual(t, child.ID, l.ParentID)
	}
}

func TestRemoveLayer_ReparentChildren(t *testing.T) {
	m := newTestModel()
	top, _ := m.AddLayer(timeline.LayerParams{Name: "top"})
	mid, _ := m.AddLayer(timeline.LayerParams{Name: "mid", ParentID: top.ID})
	leaf, _ := m.AddLayer(timeline.LayerParams{Name: "leaf", ParentID: mid.ID})

	assert.True(t, m.RemoveLayer(mid.ID, timeline.CascadeReparentChildren))

	// The orphan moves up to the removed layer's own parent.
	assert.Equal(t, top.ID, m.Layer(leaf.ID).ParentID)
	assert.Len(t, m.Layers(), 2)
}

func TestRemoveLayer_UnknownOrInvalidPolicy(t *testing.T) {
	m := newTestModel()
	layer, _ := m.AddLayer(timeline.LayerParams{Name: "x"})

	assert.False(t, m.RemoveLayer("nope", timeline.CascadeDeleteChildren))
	assert.False(t, m.RemoveLayer(layer.ID, timeline.CascadePolicy(0)))
	assert.Len(t, m.Layers(), 1)
}

func TestAddKeyframe(t *testing.T) {
	m := newTestModel()
	layer, _ := m.AddLayer(timeline.LayerParams{Name: "Box"})

	kf, err := m.AddKeyframe(layer.ID, 2.5, motion.Properties{"x": motion.Number(10)})
	require.NoError(t, err)
	assert.Equal(t, 2.5, kf.Time)
	assert.Equal(t, motion.Number(10), kf.Properties["x"])

	_, err = m.AddKeyframe(layer.ID, -1, nil)
	assert.True(t, timeline.IsInvalidTimeRange(err))

	_, err = m.AddKeyframe("nope", 1, nil)
	assert.True(t, timeline.IsNotFound(err))
}

func TestAddKeyframe_KeepsTimeOrderAndExtendsDuration(t *testing.T) {
	m := newTestModel() // duration 10
	layer, _ := m.AddLayer(timeline.LayerParams{Name: "Box"})

	_, err := m.AddKeyframe(layer.ID, 5, nil)
	require.NoError(t, err)
	_, err = m.AddKeyframe(layer.ID, 1, nil)
	require.NoError(t, err)
	_, err = m.AddKeyframe(layer.ID, 25, nil)
	require.NoError(t, err)

	got := m.Layer(layer.ID)
	require.Len(t, got.Keyframes, 3)
	assert.Equal(t, 1.0, got.Keyframes[0].Time)
	assert.Equal(t, 5.0, got.Keyframes[1].Time)
	assert.Equal(t, 25.0, got.Keyframes[2].Time)

	// Landing past the end grew the duration to cover the keyframe.
	assert.Equal(t, 25.0, m.Duration())
}

func TestUpdateKeyframe(t *testing.T) {
	m := newTestModel()
	layer, _ := m.AddLayer(timeline.LayerParams{Name: "Box"})
	a, _ := m.AddKeyframe(layer.ID, 1, motion.Properties{"x": motion.Number(0)})
	b, _ := m.AddKeyframe(layer.ID, 2, nil)

	// Moving a past b re-sorts the sequence.
	moved, err := m.MoveKeyframe(layer.ID, a.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3.0, moved.Time)
	got := m.Layer(layer.ID)
	assert.Equal(t, b.ID, got.Keyframes[0].ID)
	assert.Equal(t, a.ID, got.Keyframes[1].ID)

	// Property replacement.
	updated, err := m.UpdateKeyframe(layer.ID, a.ID, timeline.KeyframePatch{
		Properties: motion.Properties{"y": motion.Number(7)},
	})
	require.NoError(t, err)
	assert.NotContains(t, updated.Properties, "x")
	assert.Equal(t, motion.Number(7), updated.Properties["y"])

	_, err = m.UpdateKeyframe(layer.ID, a.ID, timeline.KeyframePatch{Time: ptr(-2.0)})
	assert.True(t, timeline.IsInvalidTimeRange(err))

	_, err = m.UpdateKeyframe(layer.ID, "nope", timeline.KeyframePatch{})
	assert.True(t, timeline.IsNotFound(err))
}

func TestMoveKeyframe_ExtendsDuration(t *testing.T) {
	m := newTestModel()
	layer, _ := m.AddLayer(timeline.LayerParams{Name: "Box"})
	kf, _ := m.AddKeyframe(layer.ID, 1, nil)

	_, err := m.MoveKeyframe(layer.ID, kf.ID, 40)
	require.NoError(t, err)
	assert.Equal(t, 40.0, m.Duration())
}

func TestAddMotionTween(t *testing.T) {
	m := newTestModel()
	layer, _ := m.AddLayer(timeline.LayerParams{Name: "Box"})
	a, _ := m.AddKeyframe(layer.ID, 0, nil)
	b, _ := m.AddKeyframe(layer.ID, 2, nil)

	tw, err := m.AddMotionTween(layer.ID, timeline.TweenParams{
		StartKeyframeID: a.ID,
		EndKeyframeID:   b.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "linear", tw.Easing) // default when omitted

	// Equal endpoints are rejected.
	_, err = m.AddMotionTween(layer.ID, timeline.TweenParams{StartKeyframeID: a.ID, EndKeyframeID: a.ID})
	assert.True(t, timeline.IsInvalidReference(err))

	// Missing endpoints are rejected.
	_, err = m.AddMotionTween(layer.ID, timeline.TweenParams{StartKeyframeID: a.ID, EndKeyframeID: "nope"})
	assert.True(t, timeline.IsInvalidReference(err))

	_, err = m.AddMotionTween("nope", timeline.TweenParams{StartKeyframeID: a.ID, EndKeyframeID: b.ID})
	assert.True(t, timeline.IsNotFound(err))
}

func TestRemoveKeyframe_RemovesReferencingTweensFirst(t *testing.T) {
	m := newTestModel()
	layer, _ := m.AddLayer(timeline.LayerParams{Name: "Box"})
	a, _ := m.AddKeyframe(layer.ID, 0, nil)
	b, _ := m.AddKeyframe(layer.ID, 1, nil)
	c, _ := m.AddKeyframe(layer.ID, 2, nil)
	_, err := m.AddMotionTween(layer.ID, timeline.TweenParams{StartKeyframeID: a.ID, EndKeyframeID: b.ID})
	require.NoError(t, err)
	keep, err := m.AddMotionTween(layer.ID, timeline.TweenParams{StartKeyframeID: b.ID, EndKeyframeID: c.ID})
	require.NoError(t, err)
	_ = keep

	assert.True(t, m.RemoveKeyframe(layer.ID, b.ID))

	got := m.Layer(layer.ID)
	assert.Len(t, got.Keyframes, 2)
	// Both tweens referenced b; neither may survive with a dangling ref.
	assert.Empty(t, got.Tweens)
}

func TestRemoveMotionTween(t *testing.T) {
	m := newTestModel()
	layer, _ := m.AddLayer(timeline.LayerParams{Name: "Box"})
	a, _ := m.AddKeyframe(layer.ID, 0, nil)
	b, _ := m.AddKeyframe(layer.ID, 1, nil)
	tw, _ := m.AddMotionTween(layer.ID, timeline.TweenParams{StartKeyframeID: a.ID, EndKeyframeID: b.ID})

	assert.True(t, m.RemoveMotionTween(layer.ID, tw.ID))
	assert.False(t, m.RemoveMotionTween(layer.ID, tw.ID))
	assert.False(t, m.RemoveMotionTween("nope", tw.ID))
}

func TestSetCurrentTime_ClampsAndNeverExtends(t *testing.T) {
	m := newTestModel() // duration 10

	m.SetCurrentTime(4)
	assert.Equal(t, 4.0, m.CurrentTime())

	m.SetCurrentTime(-3)
	assert.Equal(t, 0.0, m.CurrentTime())

	m.SetCurrentTime(99)
	assert.Equal(t, 10.0, m.CurrentTime())
	assert.Equal(t, 10.0, m.Duration())
}

func TestExtendDurationIfNeeded(t *testing.T) {
	m := newTestModel() // duration 10

	assert.False(t, m.ExtendDurationIfNeeded(5, 0))
	assert.Equal(t, 10.0, m.Duration())

	assert.True(t, m.ExtendDurationIfNeeded(12, 3))
	assert.Equal(t, 15.0, m.Duration())

	// Never decreases.
	assert.False(t, m.ExtendDurationIfNeeded(1, 0))
	assert.Equal(t, 15.0, m.Duration())
}

func TestSetDuration(t *testing.T) {
	m := newTestModel()
	layer, _ := m.AddLayer(timeline.LayerParams{Name: "Box"})
	_, err := m.AddKeyframe(layer.ID, 6, nil)
	require.NoError(t, err)
	m.SetCurrentTime(9)

	// Below the last keyframe: rejected, nothing changes.
	err = m.SetDuration(5)
	assert.True(t, timeline.IsInvalidTimeRange(err))
	assert.Equal(t, 10.0, m.Duration())

	// Shrinking above the last keyframe clamps the playhead down.
	require.NoError(t, m.SetDuration(7))
	assert.Equal(t, 7.0, m.Duration())
	assert.Equal(t, 7.0, m.CurrentTime())
}

func TestSetTimeScale_Clamps(t *testing.T) {
	m := newTestModel()

	m.SetTimeScale(2.5)
	assert.Equal(t, 2.5, m.TimeScale())

	m.SetTimeScale(0.0001)
	assert.Equal(t, timeline.MinTimeScale, m.TimeScale())

	m.SetTimeScale(99)
	assert.Equal(t, timeline.MaxTimeScale, m.TimeScale())
}

func TestReorderLayer(t *testing.T) {
	m := newTestModel()
	a, _ := m.AddLayer(timeline.LayerParams{Name: "a"})
	b, _ := m.AddLayer(timeline.LayerParams{Name: "b"})
	c, _ := m.AddLayer(timeline.LayerParams{Name: "c"})

	require.NoError(t, m.ReorderLayer(c.ID, 0))

	rows := m.LayersWithIndentation()
	require.Len(t, rows, 3)
	assert.Equal(t, c.ID, rows[0].Layer.ID)
	assert.Equal(t, a.ID, rows[1].Layer.ID)
	assert.Equal(t, b.ID, rows[2].Layer.ID)
	// Siblings renumbered contiguously.
	assert.Equal(t, []int{0, 1, 2}, []int{rows[0].Layer.Index, rows[1].Layer.Index, rows[2].Layer.Index})

	// Out-of-range target clamps instead of failing.
	require.NoError(t, m.ReorderLayer(c.ID, 99))
	rows = m.LayersWithIndentation()
	assert.Equal(t, c.ID, rows[2].Layer.ID)

	assert.True(t, timeline.IsNotFound(m.ReorderLayer("nope", 0)))
}

func TestSelection(t *testing.T) {
	m := newTestModel()
	a, _ := m.AddLayer(timeline.LayerParams{Name: "a"})
	b, _ := m.AddLayer(timeline.LayerParams{Name: "b"})
	kf, _ := m.AddKeyframe(a.ID, 1, nil)

	require.NoError(t, m.SelectLayer(a.ID, false))
	require.NoError(t, m.SelectLayer(b.ID, true))
	assert.ElementsMatch(t, []string{a.ID, b.ID}, m.SelectedLayerIDs())

	require.NoError(t, m.SelectKeyframe(a.ID, kf.ID, true))
	refs := m.SelectedKeyframeRefs()
	require.Len(t, refs, 1)
	assert.Equal(t, timeline.KeyframeRef{LayerID: a.ID, KeyframeID: kf.ID}, refs[0])
	assert.True(t, m.Layer(a.ID).Keyframes[0].Selected) // mirror flag

	// Non-additive select replaces everything.
	require.NoError(t, m.SelectLayer(b.ID, false))
	assert.Equal(t, []string{b.ID}, m.SelectedLayerIDs())
	assert.Empty(t, m.SelectedKeyframeRefs())
	assert.False(t, m.Layer(a.ID).Keyframes[0].Selected)

	m.ClearSelection()
	assert.Empty(t, m.SelectedLayerIDs())

	assert.True(t, timeline.IsNotFound(m.SelectLayer("nope", false)))
	assert.True(t, timeline.IsNotFound(m.SelectKeyframe(a.ID, "nope", false)))
}

func TestRemoveLayer_DropsSelectionEntries(t *testing.T) {
	m := newTestModel()
	a, _ := m.AddLayer(timeline.LayerParams{Name: "a"})
	kf, _ := m.AddKeyframe(a.ID, 1, nil)
	require.NoError(t, m.SelectLayer(a.ID, false))
	require.NoError(t, m.SelectKeyframe(a.ID, kf.ID, true))

	assert.True(t, m.RemoveLayer(a.ID, timeline.CascadeDeleteChildren))
	assert.Empty(t, m.SelectedLayerIDs())
	assert.Empty(t, m.SelectedKeyframeRefs())
}

func TestQueriesReturnSnapshots(t *testing.T) {
	m := newTestModel()
	layer, _ := m.AddLayer(timeline.LayerParams{Name: "Box"})
	_, err := m.AddKeyframe(layer.ID, 1, motion.Properties{"x": motion.Number(1)})
	require.NoError(t, err)

	// Mutating a query result must not touch model state.
	got := m.Layer(layer.ID)
	got.Name = "hacked"
	got.Keyframes[0].Properties["x"] = motion.Number(999)

	fresh := m.Layer(layer.ID)
	assert.Equal(t, "Box", fresh.Name)
	assert.Equal(t, motion.Number(1), fresh.Keyframes[0].Properties["x"])
}
