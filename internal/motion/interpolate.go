package motion

import "log/slog"

// Interpolate blends two property snapshots at the given progress, easing
// first. Progress is clamped to [0,1] before easing.
//
// Per-key rules, applied to the union of both maps:
//   - present in only one map: passed through unchanged
//   - both numbers: linear blend with the eased progress
//   - both parseable colors: component-wise color blend
//   - anything else (mixed kinds, bools, text, unparseable colors):
//     discrete switch at eased progress 0.5 - start value below the
//     midpoint, end value at or above it
//
// Neither input is modified; the result is an independent snapshot.
func Interpolate(start, end Properties, progress float64, easingName string) Properties {
	if progress < 0 {
		progress = 0
	} else if progress > 1 {
		progress = 1
	}
	eased := ResolveEasing(easingName)(progress)

	out := make(Properties, max(len(start), len(end)))
	for key, startVal := range start {
		endVal, ok := end[key]
		if !ok {
			out[key] = startVal
			continue
		}
		out[key] = blendValue(key, startVal, endVal, eased)
	}
	for key, endVal := range end {
		if _, ok := start[key]; !ok {
			out[key] = endVal
		}
	}
	return out
}

// blendValue blends a single property present in both snapshots.
func blendValue(key string, start, end Value, eased float64) Value {
	if start.Kind() == KindNumber && end.Kind() == KindNumber {
		a := float64(start.(Number))
		b := float64(end.(Number))
		return Number(a + (b-a)*eased)
	}

	if start.Kind() == KindColor && end.Kind() == KindColor {
		blended, ok := BlendColors(string(start.(Color)), string(end.(Color)), eased)
		if ok {
			return Color(blended)
		}
		slog.Warn("unparseable color in blend, switching discretely",
			"property", key,
			"start", string(start.(Color)),
			"end", string(end.(Color)))
	}

	if eased < 0.5 {
		return start
	}
	return end
}
