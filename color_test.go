package gfx

import (
	"image/color"
	"math"
	"testing"
)

func TestColorConversions(t *testing.T) {
	c := Color{R: 10, G: 20, B: 30, A: 40}
	if got := ColorFromPacked(c.Packed()); got != c {
		t.Errorf("ColorFromPacked(Packed()) = %v, want %v", got, c)
	}
	if c.Packed() != 0x281e140a {
		t.Errorf("Packed() = %#x, want R in the low byte", c.Packed())
	}
	if got := ColorFromStd(color.NRGBA{R: 1, G: 2, B: 3, A: 4}); got != (Color{1, 2, 3, 4}) {
		t.Errorf("ColorFromStd() = %v", got)
	}
	if got := NewColorFromVector4(Vector4{X: 2, Y: -1, Z: 0.5, W: float32(math.NaN())}); got != (Color{255, 0, 128, 0}) {
		t.Errorf("NewColorFromVector4() = %v, want clamped components", got)
	}
	if !CornflowerBlue.ToVector4().Near(Vector4{100.0 / 255, 149.0 / 255, 237.0 / 255, 1}, 1e-6) {
		t.Errorf("ToVector4() = %v", CornflowerBlue.ToVector4())
	}
}

func TestPackedVectors(t *testing.T) {
	tests := []struct {
		name string
		got  Vector4
		want Vector4
	}{
		{"Alpha8", NewAlpha8(1).ToVector4(), Vector4{W: 1}},
		{"Bgr565", Bgr565(0b11111_000000_00000).ToVector4(), Vector4{X: 1, W: 1}},
		{"Bgra4444", NewBgra4444(0, 1, 0, 1).ToVector4(), Vector4{Y: 1, W: 1}},
		{"Bgra5551 red", Bgra5551(0b1_11111_00000_00000).ToVector4(), Vector4{X: 1, W: 1}},
		{"Bgra5551 low alpha", NewBgra5551(0, 0, 1, 0.4).ToVector4(), Vector4{Z: 1}},
		{"HalfSingle", NewHalfSingle(0.5).ToVector4(), Vector4{X: 0.5, W: 1}},
		{"HalfVector2", NewHalfVector2(-2, 0.25).ToVector4(), Vector4{X: -2, Y: 0.25, W: 1}},
		{"HalfVector4", NewHalfVector4(1, 2, 3, 4).ToVector4(), Vector4{1, 2, 3, 4}},
		{"NormalizedByte2", NewNormalizedByte2(-1, 1).ToVector4(), Vector4{X: -1, Y: 1, W: 1}},
		{"NormalizedByte4", NewNormalizedByte4(1, 0, -1, 1).ToVector4(), Vector4{1, 0, -1, 1}},
		{"Rg32", NewRg32(1, 0).ToVector4(), Vector4{X: 1, W: 1}},
		{"Rgba64", NewRgba64(0, 1, 0, 1).ToVector4(), Vector4{Y: 1, W: 1}},
		{"Rgba1010102", NewRgba1010102(1, 0, 1, 1).ToVector4(), Vector4{1, 0, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.got.Near(tt.want, 1e-3) {
				t.Errorf("ToVector4() = %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestHalfFloat(t *testing.T) {
	tests := []struct {
		in   float32
		want uint16
	}{
		{0, 0x0000},
		{1, 0x3c00},
		{-2, 0xc000},
		{65504, 0x7bff},
		{1e9, 0x7c00},
		{float32(math.Inf(-1)), 0xfc00},
		{5.960464477539063e-08, 0x0001},
	}
	for _, tt := range tests {
		if got := HalfFromFloat32(tt.in); got != tt.want {
			t.Errorf("HalfFromFloat32(%g) = %#04x, want %#04x", tt.in, got, tt.want)
		}
	}
	for _, v := range []float32{0, 1, -2, 0.5, 65504, 6.103515625e-05} {
		if got := HalfToFloat32(HalfFromFloat32(v)); got != v {
			t.Errorf("round trip of %g = %g", v, got)
		}
	}
	if h := HalfFromFloat32(float32(math.NaN())); h&0x7c00 != 0x7c00 || h&0x3ff == 0 {
		t.Errorf("NaN encoded as %#04x", h)
	}
}
