package motion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpolate_NumericLinearMidpoint(t *testing.T) {
	start := Properties{"x": Number(0), "y": Number(10)}
	end := Properties{"x": Number(100), "y": Number(20)}

	got := Interpolate(start, end, 0.5, "linear")
	assert.Equal(t, Number(50), got["x"])
	assert.Equal(t, Number(15), got["y"])
}

func TestInterpolate_EasedQuarterValue(t *testing.T) {
	// easeInQuad at progress 0.5 yields eased progress 0.25, so a 0->100
	// blend lands at 25.
	start := Properties{"x": Number(0)}
	end := Properties{"x": Number(100)}

	got := Interpolate(start, end, 0.5, "easeInQuad")
	require.Contains(t, got, "x")
	assert.InDelta(t, 25, float64(got["x"].(Number)), 1e-9)
}

func TestInterpolate_ProgressClamped(t *testing.T) {
	start := Properties{"x": Number(0)}
	end := Properties{"x": Number(100)}

	assert.Equal(t, Number(0), Interpolate(start, end, -0.5, "linear")["x"])
	assert.Equal(t, Number(100), Interpolate(start, end, 1.5, "linear")["x"])
}

func TestInterpolate_OneSidedPassThrough(t *testing.T) {
	start := Properties{"x": Number(0), "onlyStart": Text("hello")}
	end := Properties{"x": Number(100), "onlyEnd": Bool(true)}

	got := Interpolate(start, end, 0.9, "linear")
	assert.Equal(t, Text("hello"), got["onlyStart"])
	assert.Equal(t, Bool(true), got["onlyEnd"])
}

func TestInterpolate_ColorBlend(t *testing.T) {
	start := Properties{"fill": Color("#000000")}
	end := Properties{"fill": Color("#ffffff")}

	got := Interpolate(start, end, 0.5, "linear")
	assert.Equal(t, Color("rgb(128, 128, 128)"), got["fill"])
}

func TestInterpolate_DiscreteSwitchAtMidpoint(t *testing.T) {
	start := Properties{"label": Text("before"), "flag": Bool(false)}
	end := Properties{"label": Text("after"), "flag": Bool(true)}

	before := Interpolate(start, end, 0.49, "linear")
	assert.Equal(t, Text("before"), before["label"])
	assert.Equal(t, Bool(false), before["flag"])

	at := Interpolate(start, end, 0.5, "linear")
	assert.Equal(t, Text("after"), at["label"])
	assert.Equal(t, Bool(true), at["flag"])
}

func TestInterpolate_DiscreteSwitchComparesEasedProgress(t *testing.T) {
	// easeInQuad(0.6) = 0.36 < 0.5, so the discrete switch still holds
	// the start value even though raw progress passed the midpoint.
	start := Properties{"label": Text("before")}
	end := Properties{"label": Text("after")}

	got := Interpolate(start, end, 0.6, "easeInQuad")
	assert.Equal(t, Text("before"), got["label"])
}

func TestInterpolate_MixedKindsSwitchDiscretely(t *testing.T) {
	start := Properties{"v": Number(1)}
	end := Properties{"v": Text("done")}

	assert.Equal(t, Number(1), Interpolate(start, end, 0.2, "linear")["v"])
	assert.Equal(t, Text("done"), Interpolate(start, end, 0.8, "linear")["v"])
}

func TestInterpolate_UnparseableColorFallsBackDiscretely(t *testing.T) {
	start := Properties{"fill": Color("#ff0000")}
	end := Properties{"fill": Color("junk")}

	assert.Equal(t, Color("#ff0000"), Interpolate(start, end, 0.25, "linear")["fill"])
	assert.Equal(t, Color("junk"), Interpolate(start, end, 0.75, "linear")["fill"])
}

func TestInterpolate_InputsNotModified(t *testing.T) {
	start := Properties{"x": Number(0)}
	end := Properties{"x": Number(100)}

	_ = Interpolate(start, end, 0.5, "linear")
	assert.Equal(t, Number(0), start["x"])
	assert.Equal(t, Number(100), end["x"])
}
