package motion

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// parsedColor is a color split into a blendable RGB triple plus alpha.
// Alpha is carried separately because colorful.Color has no alpha channel.
type parsedColor struct {
	rgb   colorful.Color
	alpha float64
}

// IsColor reports whether s parses as a recognized color form: #rgb,
// #rrggbb, rgb(), rgba(), or a CSS named color.
func IsColor(s string) bool {
	_, ok := parseColor(s)
	return ok
}

// BlendColors linearly blends two color strings at progress t and
// re-serializes the result. Returns false when either input is not a
// recognized color; the caller decides the fallback (discrete switching).
func BlendColors(start, end string, t float64) (string, bool) {
	a, okA := parseColor(start)
	b, okB := parseColor(end)
	if !okA || !okB {
		return "", false
	}

	blended := a.rgb.BlendRgb(b.rgb, t).Clamped()
	alpha := a.alpha + (b.alpha-a.alpha)*t
	return formatColor(blended, alpha), true
}

// parseColor parses the supported color forms into RGB + alpha.
func parseColor(s string) (parsedColor, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return parsedColor{}, false
	}

	if strings.HasPrefix(s, "#") {
		c, err := colorful.Hex(strings.ToLower(s))
		if err != nil {
			return parsedColor{}, false
		}
		return parsedColor{rgb: c, alpha: 1}, true
	}

	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "rgb(") || strings.HasPrefix(lower, "rgba(") {
		return parseRGBFunc(lower)
	}

	if named, ok := colornames.Map[lower]; ok {
		c, ok := colorful.MakeColor(named)
		if !ok {
			return parsedColor{}, false
		}
		return parsedColor{rgb: c, alpha: 1}, true
	}

	return parsedColor{}, false
}

// parseRGBFunc parses "rgb(r, g, b)" and "rgba(r, g, b, a)" with channel
// values in 0-255 and alpha in 0-1. Input must already be lowercased.
func parseRGBFunc(s string) (parsedColor, bool) {
	wantAlpha := strings.HasPrefix(s, "rgba(")
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return parsedColor{}, false
	}

	parts := strings.Split(s[open+1:len(s)-1], ",")
	if (wantAlpha && len(parts) != 4) || (!wantAlpha && len(parts) != 3) {
		return parsedColor{}, false
	}

	var channels [3]float64
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil || v < 0 || v > 255 {
			return parsedColor{}, false
		}
		channels[i] = v
	}

	alpha := 1.0
	if wantAlpha {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || v < 0 || v > 1 {
			return parsedColor{}, false
		}
		alpha = v
	}

	return parsedColor{
		rgb:   colorful.Color{R: channels[0] / 255, G: channels[1] / 255, B: channels[2] / 255},
		alpha: alpha,
	}, true
}

// formatColor serializes a blended color: rgb(...) for opaque colors,
// rgba(...) otherwise. Alpha is rounded to three decimals so blends of
// hand-authored values stay readable.
func formatColor(c colorful.Color, alpha float64) string {
	r, g, b := c.RGB255()
	if alpha >= 0.9995 {
		return fmt.Sprintf("rgb(%d, %d, %d)", r, g, b)
	}
	rounded := math.Round(alpha*1000) / 1000
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, strconv.FormatFloat(rounded, 'g', -1, 64))
}
