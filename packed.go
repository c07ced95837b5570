package gfx

import "github.com/chewxy/math32"

// Packed vector types mirror the texel layouts of the matching surface
// formats. A slice of any of them can be passed to SetTextureData and
// GetTextureData directly.

// Alpha8 is a single 8-bit alpha channel.
type Alpha8 uint8

// NewAlpha8 packs a normalized alpha value.
func NewAlpha8(a float32) Alpha8 { return Alpha8(unorm(a, 0xff)) }

// ToVector4 returns (0, 0, 0, alpha).
func (p Alpha8) ToVector4() Vector4 { return Vector4{W: float32(p) / 0xff} }

// Bgr565 packs red in bits 11-15, green in 5-10 and blue in 0-4.
type Bgr565 uint16

// NewBgr565 packs normalized red, green and blue.
func NewBgr565(r, g, b float32) Bgr565 {
	return Bgr565(unorm(r, 31)<<11 | unorm(g, 63)<<5 | unorm(b, 31))
}

// ToVector4 returns the colour with alpha 1.
func (p Bgr565) ToVector4() Vector4 {
	return Vector4{
		X: float32(p>>11&0x1f) / 31,
		Y: float32(p>>5&0x3f) / 63,
		Z: float32(p&0x1f) / 31,
		W: 1,
	}
}

// Bgra4444 packs alpha in bits 12-15, red in 8-11, green in 4-7, blue in 0-3.
type Bgra4444 uint16

// NewBgra4444 packs normalized components.
func NewBgra4444(r, g, b, a float32) Bgra4444 {
	return Bgra4444(unorm(a, 15)<<12 | unorm(r, 15)<<8 | unorm(g, 15)<<4 | unorm(b, 15))
}

func (p Bgra4444) ToVector4() Vector4 {
	return Vector4{
		X: float32(p>>8&0xf) / 15,
		Y: float32(p>>4&0xf) / 15,
		Z: float32(p&0xf) / 15,
		W: float32(p>>12&0xf) / 15,
	}
}

// Bgra5551 packs alpha in bit 15, red in 10-14, green in 5-9, blue in 0-4.
type Bgra5551 uint16

// NewBgra5551 packs normalized components. Alpha rounds to 0 or 1.
func NewBgra5551(r, g, b, a float32) Bgra5551 {
	return Bgra5551(unorm(a, 1)<<15 | unorm(r, 31)<<10 | unorm(g, 31)<<5 | unorm(b, 31))
}

func (p Bgra5551) ToVector4() Vector4 {
	return Vector4{
		X: float32(p>>10&0x1f) / 31,
		Y: float32(p>>5&0x1f) / 31,
		Z: float32(p&0x1f) / 31,
		W: float32(p >> 15 & 1),
	}
}

// HalfSingle is one 16-bit float.
type HalfSingle uint16

func NewHalfSingle(v float32) HalfSingle { return HalfSingle(HalfFromFloat32(v)) }

func (p HalfSingle) ToVector4() Vector4 {
	return Vector4{X: HalfToFloat32(uint16(p)), W: 1}
}

// HalfVector2 holds X in the low 16 bits and Y in the high 16 bits.
type HalfVector2 uint32

func NewHalfVector2(x, y float32) HalfVector2 {
	return HalfVector2(uint32(HalfFromFloat32(x)) | uint32(HalfFromFloat32(y))<<16)
}

func (p HalfVector2) ToVector4() Vector4 {
	return Vector4{X: HalfToFloat32(uint16(p)), Y: HalfToFloat32(uint16(p >> 16)), W: 1}
}

// HalfVector4 holds X, Y, Z, W as 16-bit floats from the low bits up.
type HalfVector4 uint64

func NewHalfVector4(x, y, z, w float32) HalfVector4 {
	return HalfVector4(uint64(HalfFromFloat32(x)) |
		uint64(HalfFromFloat32(y))<<16 |
		uint64(HalfFromFloat32(z))<<32 |
		uint64(HalfFromFloat32(w))<<48)
}

func (p HalfVector4) ToVector4() Vector4 {
	return Vector4{
		X: HalfToFloat32(uint16(p)),
		Y: HalfToFloat32(uint16(p >> 16)),
		Z: HalfToFloat32(uint16(p >> 32)),
		W: HalfToFloat32(uint16(p >> 48)),
	}
}

// NormalizedByte2 holds two signed normalized bytes, X in the low byte.
type NormalizedByte2 uint16

func NewNormalizedByte2(x, y float32) NormalizedByte2 {
	return NormalizedByte2(uint16(snorm8(x)) | uint16(snorm8(y))<<8)
}

func (p NormalizedByte2) ToVector4() Vector4 {
	return Vector4{X: fromSnorm8(uint8(p)), Y: fromSnorm8(uint8(p >> 8)), W: 1}
}

// NormalizedByte4 holds four signed normalized bytes, X in the low byte.
type NormalizedByte4 uint32

func NewNormalizedByte4(x, y, z, w float32) NormalizedByte4 {
	return NormalizedByte4(uint32(snorm8(x)) | uint32(snorm8(y))<<8 |
		uint32(snorm8(z))<<16 | uint32(snorm8(w))<<24)
}

func (p NormalizedByte4) ToVector4() Vector4 {
	return Vector4{
		X: fromSnorm8(uint8(p)),
		Y: fromSnorm8(uint8(p >> 8)),
		Z: fromSnorm8(uint8(p >> 16)),
		W: fromSnorm8(uint8(p >> 24)),
	}
}

// Rg32 holds two unsigned normalized 16-bit values, X in the low half.
type Rg32 uint32

func NewRg32(x, y float32) Rg32 {
	return Rg32(unorm(x, 0xffff) | unorm(y, 0xffff)<<16)
}

func (p Rg32) ToVector4() Vector4 {
	return Vector4{X: float32(p&0xffff) / 0xffff, Y: float32(p>>16) / 0xffff, W: 1}
}

// Rgba64 holds four unsigned normalized 16-bit values, R in the low bits.
type Rgba64 uint64

func NewRgba64(r, g, b, a float32) Rgba64 {
	return Rgba64(uint64(unorm(r, 0xffff)) | uint64(unorm(g, 0xffff))<<16 |
		uint64(unorm(b, 0xffff))<<32 | uint64(unorm(a, 0xffff))<<48)
}

func (p Rgba64) ToVector4() Vector4 {
	return Vector4{
		X: float32(p&0xffff) / 0xffff,
		Y: float32(p>>16&0xffff) / 0xffff,
		Z: float32(p>>32&0xffff) / 0xffff,
		W: float32(p>>48) / 0xffff,
	}
}

// Rgba1010102 packs red in bits 0-9, green in 10-19, blue in 20-29 and a
// two-bit alpha in 30-31.
type Rgba1010102 uint32

func NewRgba1010102(r, g, b, a float32) Rgba1010102 {
	return Rgba1010102(unorm(r, 1023) | unorm(g, 1023)<<10 | unorm(b, 1023)<<20 | unorm(a, 3)<<30)
}

func (p Rgba1010102) ToVector4() Vector4 {
	return Vector4{
		X: float32(p&0x3ff) / 1023,
		Y: float32(p>>10&0x3ff) / 1023,
		Z: float32(p>>20&0x3ff) / 1023,
		W: float32(p>>30) / 3,
	}
}

func unorm(v float32, maxValue uint32) uint32 {
	return uint32(math32.Round(clamp01(v) * float32(maxValue)))
}

func snorm8(v float32) int8 {
	if v < -1 {
		v = -1
	} else if v > 1 {
		v = 1
	}
	return int8(math32.Round(v * 127))
}

func fromSnorm8(b uint8) float32 {
	return math32.Max(float32(int8(b))/127, -1)
}
