package frame

import "math"

// RGB represents a 24-bit color
type RGB struct {
	R, G, B uint8
}

// Common colors
var (
	Black = RGB{0, 0, 0}
	White = RGB{255, 255, 255}
	Red   = RGB{255, 0, 0}
	Green = RGB{0, 255, 0}
	Blue  = RGB{0, 0, 255}
)

// Equal returns true if colors match
func (c RGB) Equal(other RGB) bool {
	return c.R == other.R && c.G == other.G && c.B == other.B
}

// ClampChannel converts a 0-255 scaled float to a channel value
// Values outside the range saturate, NaN maps to 0
func ClampChannel(v float64) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

// FromFloat builds a color from 0-255 scaled components with saturation
func FromFloat(r, g, b float64) RGB {
	return RGB{ClampChannel(r), ClampChannel(g), ClampChannel(b)}
}

// FromUnit builds a color from 0-1 components, clamped before scaling
func FromUnit(r, g, b float64) RGB {
	return RGB{unitChannel(r), unitChannel(g), unitChannel(b)}
}

func unitChannel(v float64) uint8 {
	if math.IsNaN(v) {
		return 0
	}
	return ClampChannel(math.Min(math.Max(v, 0), 1) * 255)
}

// Lerp blends a toward b by t, t clamped to [0,1]
func Lerp(a, b RGB, t float64) RGB {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return RGB{
		R: uint8(float64(a.R) + (float64(b.R)-float64(a.R))*t),
		G: uint8(float64(a.G) + (float64(b.G)-float64(a.G))*t),
		B: uint8(float64(a.B) + (float64(b.B)-float64(a.B))*t),
	}
}
