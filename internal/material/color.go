// Color handling in linear and display (sRGB) space
package material

import (
	"fmt"
	"math"
	"strings"
)

// RGB is a color triple with components in [0, 1].
type RGB struct {
	R, G, B float64
}

// Clamped returns the color with every component restricted to [0, 1].
func (c RGB) Clamped() RGB {
	return RGB{R: clamp01(c.R), G: clamp01(c.G), B: clamp01(c.B)}
}

// ToLinear converts a display (sRGB encoded) color to linear space.
func (c RGB) ToLinear() RGB {
	return RGB{
		R: SRGBToLinear(c.R),
		G: SRGBToLinear(c.G),
		B: SRGBToLinear(c.B),
	}
}

// ToSRGB converts a linear-space color back to display (sRGB) space.
func (c RGB) ToSRGB() RGB {
	return RGB{
		R: LinearToSRGB(c.R),
		G: LinearToSRGB(c.G),
		B: LinearToSRGB(c.B),
	}
}

// Scale multiplies every component by s.
func (c RGB) Scale(s float64) RGB {
	return RGB{R: c.R * s, G: c.G * s, B: c.B * s}
}

// SRGBToLinear converts one sRGB-encoded channel to linear space using the
// exact piecewise IEC 61966-2-1 transfer function.
func SRGBToLinear(v float64) float64 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// LinearToSRGB converts one linear channel back to sRGB encoding.
func LinearToSRGB(v float64) float64 {
	if v <= 0.0031308 {
		return v * 12.92
	}
	return 1.055*math.Pow(v, 1.0/2.4) - 0.055
}

// ParseHex parses a "#RRGGBB" (or "RRGGBB") hex color string.
func ParseHex(s string) (RGB, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return RGB{}, fmt.Errorf("invalid hex color %q: want 6 hex digits", s)
	}

	var v [3]float64
	for i := 0; i < 3; i++ {
		hi, ok1 := hexDigit(s[i*2])
		lo, ok2 := hexDigit(s[i*2+1])
		if !ok1 || !ok2 {
			return RGB{}, fmt.Errorf("invalid hex color %q", s)
		}
		v[i] = float64(hi*16+lo) / 255.0
	}

	return RGB{R: v[0], G: v[1], B: v[2]}, nil
}

func hexDigit(c byte) (int, bool) {
	switch {
	case '0' <= c && c <= '9':
		return int(c - '0'), true
	case 'a' <= c && c <= 'f':
		return int(c-'a') + 10, true
	case 'A' <= c && c <= 'F':
		return int(c-'A') + 10, true
	}
	return 0, false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
