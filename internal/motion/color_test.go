package motion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsColor(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"#f00", true},
		{"#ff0000", true},
		{"#FF0000", true},
		{"rgb(255, 0, 0)", true},
		{"rgb(255,0,0)", true},
		{"rgba(255, 0, 0, 0.5)", true},
		{"red", true},
		{"steelblue", true},
		{"  #fff  ", true},
		{"", false},
		{"bold", false},
		{"#gg0000", false},
		{"#ff00", false},
		{"rgb(256, 0, 0)", false},
		{"rgb(255, 0)", false},
		{"rgba(255, 0, 0, 2)", false},
		{"rgb(255, 0, 0", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, IsColor(tt.input))
		})
	}
}

func TestBlendColors_Midpoint(t *testing.T) {
	got, ok := BlendColors("#000000", "#ffffff", 0.5)
	require.True(t, ok)
	assert.Equal(t, "rgb(128, 128, 128)", got)
}

func TestBlendColors_Endpoints(t *testing.T) {
	start, ok := BlendColors("rgb(10, 20, 30)", "rgb(200, 100, 50)", 0)
	require.True(t, ok)
	assert.Equal(t, "rgb(10, 20, 30)", start)

	end, ok := BlendColors("rgb(10, 20, 30)", "rgb(200, 100, 50)", 1)
	require.True(t, ok)
	assert.Equal(t, "rgb(200, 100, 50)", end)
}

func TestBlendColors_MixedForms(t *testing.T) {
	// A hex color, a named color, and an rgb() form all blend together.
	got, ok := BlendColors("red", "#0000ff", 0.5)
	require.True(t, ok)
	assert.Equal(t, "rgb(128, 0, 128)", got)
}

func TestBlendColors_AlphaSerialization(t *testing.T) {
	got, ok := BlendColors("rgba(255, 0, 0, 0)", "rgba(255, 0, 0, 1)", 0.5)
	require.True(t, ok)
	assert.Equal(t, "rgba(255, 0, 0, 0.5)", got)

	// Opaque results serialize as rgb(), not rgba(..., 1).
	got, ok = BlendColors("rgba(0, 0, 0, 1)", "#ffffff", 0.25)
	require.True(t, ok)
	assert.Equal(t, "rgb(64, 64, 64)", got)
}

func TestBlendColors_Unparseable(t *testing.T) {
	_, ok := BlendColors("#ff0000", "not-a-color", 0.5)
	assert.False(t, ok)

	_, ok = BlendColors("nope", "#ff0000", 0.5)
	assert.False(t, ok)
}
