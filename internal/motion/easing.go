package motion

import (
	"slices"

	"github.com/fogleman/ease"
)

// EasingFunc remaps interpolation progress. Every registered function is
// pure and total on [0,1] -> [0,1].
type EasingFunc func(float64) float64

// easings maps the editor-facing easing names to their curve functions.
// The quad/cubic/quart/quint in/out/in-out families plus linear.
var easings = map[string]EasingFunc{
	"linear":         ease.Linear,
	"easeInQuad":     ease.InQuad,
	"easeOutQuad":    ease.OutQuad,
	"easeInOutQuad":  ease.InOutQuad,
	"easeInCubic":    ease.InCubic,
	"easeOutCubic":   ease.OutCubic,
	"easeInOutCubic": ease.InOutCubic,
	"easeInQuart":    ease.InQuart,
	"easeOutQuart":   ease.OutQuart,
	"easeInOutQuart": ease.InOutQuart,
	"easeInQuint":    ease.InQuint,
	"easeOutQuint":   ease.OutQuint,
	"easeInOutQuint": ease.InOutQuint,
}

// DefaultEasing is the curve used when a tween does not name one.
const DefaultEasing = "linear"

// ResolveEasing returns the named easing function. Unknown names resolve
// to linear rather than failing, so a stale easing name in a loaded
// document degrades gracefully instead of breaking playback.
func ResolveEasing(name string) EasingFunc {
	if fn, ok := easings[name]; ok {
		return fn
	}
	return easings[DefaultEasing]
}

// KnownEasing reports whether name is a registered easing function.
func KnownEasing(name string) bool {
	_, ok := easings[name]
	return ok
}

// EasingNames returns the sorted list of registered easing names, for
// easing pickers and CLI help output.
func EasingNames() []string {
	names := make([]string, 0, len(easings))
	for name := range easings {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
