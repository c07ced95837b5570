package gfx

import (
	"image/color"

	"github.com/chewxy/math32"
)

// Color is a 32-bit RGBA colour in SurfaceFormatColor layout: R occupies the
// lowest byte of the packed value and the first byte in memory.
type Color struct {
	R, G, B, A uint8
}

// Common colours.
var (
	Transparent    = Color{0, 0, 0, 0}
	Black          = Color{0, 0, 0, 255}
	White          = Color{255, 255, 255, 255}
	Red            = Color{255, 0, 0, 255}
	Lime           = Color{0, 255, 0, 255}
	Blue           = Color{0, 0, 255, 255}
	CornflowerBlue = Color{100, 149, 237, 255}
)

// NewColorFromVector4 converts a normalized colour to Color. Components are
// clamped to [0, 1] and rounded to the nearest 8-bit value.
func NewColorFromVector4(v Vector4) Color {
	return Color{
		R: unitToByte(v.X),
		G: unitToByte(v.Y),
		B: unitToByte(v.Z),
		A: unitToByte(v.W),
	}
}

// NewColorRGB returns an opaque colour from normalized components.
func NewColorRGB(r, g, b float32) Color {
	return Color{R: unitToByte(r), G: unitToByte(g), B: unitToByte(b), A: 255}
}

// ColorFromPacked unpacks a value produced by Color.Packed.
func ColorFromPacked(v uint32) Color {
	return Color{R: uint8(v), G: uint8(v >> 8), B: uint8(v >> 16), A: uint8(v >> 24)}
}

// Packed returns the colour as a little-endian packed RGBA value.
func (c Color) Packed() uint32 {
	return uint32(c.R) | uint32(c.G)<<8 | uint32(c.B)<<16 | uint32(c.A)<<24
}

// ToVector4 returns the colour with components in [0, 1].
func (c Color) ToVector4() Vector4 {
	return Vector4{
		X: float32(c.R) / 255,
		Y: float32(c.G) / 255,
		Z: float32(c.B) / 255,
		W: float32(c.A) / 255,
	}
}

// NRGBA converts to the standard library's non-premultiplied colour.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// ColorFromStd converts any standard library colour to Color.
func ColorFromStd(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{R: n.R, G: n.G, B: n.B, A: n.A}
}

func unitToByte(v float32) uint8 {
	return uint8(math32.Round(clamp01(v) * 255))
}

func clamp01(v float32) float32 {
	if !(v > 0) { // also catches NaN
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
