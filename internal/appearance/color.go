package appearance

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an RGBA color with channels in [0, 1].
type Color struct {
	R, G, B, A float32
}

// NewColor returns a color with every channel clamped into [0, 1].
func NewColor(r, g, b, a float32) Color {
	return Color{R: clamp(r), G: clamp(g), B: clamp(b), A: clamp(a)}
}

// Colorful converts the color to a go-colorful value, dropping alpha.
func (c Color) Colorful() colorful.Color {
	return colorful.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B)}
}

// Hex renders the color as #rrggbb.
func (c Color) Hex() string {
	return c.Colorful().Hex()
}

// HexAlpha renders the color as #rrggbbaa.
func (c Color) HexAlpha() string {
	return fmt.Sprintf("%s%02x", c.Hex(), uint8(math.Round(float64(c.A)*255)))
}

// String renders the color in the wire format channel order.
func (c Color) String() string {
	return fmt.Sprintf("%g %g %g %g", c.R, c.G, c.B, c.A)
}

func clamp(f float32) float32 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
