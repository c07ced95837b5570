package softgl

import (
	"encoding/binary"
	"math"

	"github.com/chewxy/math32"
	"github.com/gogpu/gfx"
	"github.com/gogpu/gfx/backend/gl"
)

// rgba is a texel or fragment colour.
type rgba = [4]float32

// components returns the number of components and the position of each
// RGBA channel inside a pixel of format, -1 for absent channels.
func components(format gl.Enum) (n int, order [4]int, ok bool) {
	switch format {
	case gl.RGBA:
		return 4, [4]int{0, 1, 2, 3}, true
	case gl.BGRA:
		return 4, [4]int{2, 1, 0, 3}, true
	case gl.RGB:
		return 3, [4]int{0, 1, 2, -1}, true
	case gl.RG:
		return 2, [4]int{0, 1, -1, -1}, true
	case gl.RED, gl.DEPTH_COMPONENT:
		return 1, [4]int{0, -1, -1, -1}, true
	case gl.ALPHA:
		return 1, [4]int{-1, -1, -1, 0}, true
	}
	return 0, [4]int{}, false
}

// packing describes the bit widths of a packed pixel type in format order.
// With rev set the first component occupies the low bits.
type packing struct {
	bytes  int
	widths []int
	rev    bool
}

var packedTypes = map[gl.Enum]packing{
	gl.UNSIGNED_SHORT_5_6_5:        {2, []int{5, 6, 5}, false},
	gl.UNSIGNED_SHORT_4_4_4_4:      {2, []int{4, 4, 4, 4}, false},
	gl.UNSIGNED_SHORT_4_4_4_4_REV:  {2, []int{4, 4, 4, 4}, true},
	gl.UNSIGNED_SHORT_5_5_5_1:      {2, []int{5, 5, 5, 1}, false},
	gl.UNSIGNED_SHORT_1_5_5_5_REV:  {2, []int{5, 5, 5, 1}, true},
	gl.UNSIGNED_INT_2_10_10_10_REV: {4, []int{10, 10, 10, 2}, true},
}

// pixelSize returns the byte size of one pixel of format and ty.
func pixelSize(format, ty gl.Enum) (int, bool) {
	n, _, ok := components(format)
	if !ok {
		return 0, false
	}
	if p, ok := packedTypes[ty]; ok {
		return p.bytes, len(p.widths) == n
	}
	switch ty {
	case gl.UNSIGNED_BYTE, gl.BYTE:
		return n, true
	case gl.UNSIGNED_SHORT, gl.SHORT, gl.HALF_FLOAT:
		return 2 * n, true
	case gl.FLOAT, gl.UNSIGNED_INT, gl.INT:
		return 4 * n, true
	}
	return 0, false
}

// rowStride returns the byte distance between rows under alignment.
func rowStride(width, pixel, align int) int {
	row := width * pixel
	if align > 1 {
		row = (row + align - 1) / align * align
	}
	return row
}

// decodePixel converts one pixel to RGBA. Absent channels read as 0 for
// colour and 1 for alpha.
func decodePixel(format, ty gl.Enum, b []byte) rgba {
	n, order, _ := components(format)
	var comp [4]float32
	if p, ok := packedTypes[ty]; ok {
		var v uint32
		if p.bytes == 2 {
			v = uint32(binary.LittleEndian.Uint16(b))
		} else {
			v = binary.LittleEndian.Uint32(b)
		}
		shift := 0
		if !p.rev {
			for _, w := range p.widths {
				shift += w
			}
		}
		for i, w := range p.widths {
			if !p.rev {
				shift -= w
			}
			mask := uint32(1)<<w - 1
			comp[i] = float32((v>>shift)&mask) / float32(mask)
			if p.rev {
				shift += w
			}
		}
	} else {
		for i := 0; i < n; i++ {
			comp[i] = decodeComponent(ty, b, i)
		}
	}
	out := rgba{0, 0, 0, 1}
	for ch, at := range order {
		if at >= 0 {
			out[ch] = comp[at]
		}
	}
	return out
}

func decodeComponent(ty gl.Enum, b []byte, i int) float32 {
	switch ty {
	case gl.UNSIGNED_BYTE:
		return float32(b[i]) / 255
	case gl.BYTE:
		return max(float32(int8(b[i]))/127, -1)
	case gl.UNSIGNED_SHORT:
		return float32(binary.LittleEndian.Uint16(b[2*i:])) / 65535
	case gl.SHORT:
		return max(float32(int16(binary.LittleEndian.Uint16(b[2*i:])))/32767, -1)
	case gl.HALF_FLOAT:
		return gfx.HalfToFloat32(binary.LittleEndian.Uint16(b[2*i:]))
	case gl.FLOAT:
		return math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	case gl.UNSIGNED_INT:
		return float32(binary.LittleEndian.Uint32(b[4*i:])) / math.MaxUint32
	case gl.INT:
		return float32(int32(binary.LittleEndian.Uint32(b[4*i:])))
	}
	return 0
}

// encodePixel is the inverse of decodePixel.
func encodePixel(format, ty gl.Enum, v rgba, b []byte) {
	n, order, _ := components(format)
	var comp [4]float32
	for ch, at := range order {
		if at >= 0 {
			comp[at] = v[ch]
		}
	}
	if p, ok := packedTypes[ty]; ok {
		var word uint32
		shift := 0
		if !p.rev {
			for _, w := range p.widths {
				shift += w
			}
		}
		for i, w := range p.widths {
			if !p.rev {
				shift -= w
			}
			mask := uint32(1)<<w - 1
			word |= uint32(math32.Round(clamp01(comp[i])*float32(mask))) << shift
			if p.rev {
				shift += w
			}
		}
		if p.bytes == 2 {
			binary.LittleEndian.PutUint16(b, uint16(word))
		} else {
			binary.LittleEndian.PutUint32(b, word)
		}
		return
	}
	for i := 0; i < n; i++ {
		encodeComponent(ty, comp[i], b, i)
	}
}

func encodeComponent(ty gl.Enum, v float32, b []byte, i int) {
	switch ty {
	case gl.UNSIGNED_BYTE:
		b[i] = byte(math32.Round(clamp01(v) * 255))
	case gl.BYTE:
		b[i] = byte(int8(math32.Round(clampSigned(v) * 127)))
	case gl.UNSIGNED_SHORT:
		binary.LittleEndian.PutUint16(b[2*i:], uint16(math32.Round(clamp01(v)*65535)))
	case gl.SHORT:
		binary.LittleEndian.PutUint16(b[2*i:], uint16(int16(math32.Round(clampSigned(v)*32767))))
	case gl.HALF_FLOAT:
		binary.LittleEndian.PutUint16(b[2*i:], gfx.HalfFromFloat32(v))
	case gl.FLOAT:
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(v))
	case gl.UNSIGNED_INT:
		binary.LittleEndian.PutUint32(b[4*i:], uint32(float64(clamp01(v))*math.MaxUint32))
	case gl.INT:
		binary.LittleEndian.PutUint32(b[4*i:], uint32(int32(v)))
	}
}

func clamp01(v float32) float32 { return min(max(v, 0), 1) }

func clampSigned(v float32) float32 { return min(max(v, -1), 1) }

// storage describes how an internal format holds values.
type storage struct {
	// bits is the precision of each channel; 0 keeps full float precision
	// and -1 marks an absent channel.
	bits   [4]int
	signed bool
	half   bool
}

var storages = map[gl.Enum]storage{
	gl.RGBA8:        {bits: [4]int{8, 8, 8, 8}},
	gl.SRGB8_ALPHA8: {bits: [4]int{8, 8, 8, 8}},
	gl.RGB8:         {bits: [4]int{8, 8, 8, -1}},
	gl.R8:           {bits: [4]int{8, -1, -1, -1}},
	gl.ALPHA8:       {bits: [4]int{-1, -1, -1, 8}},
	gl.RGB565:       {bits: [4]int{5, 6, 5, -1}},
	gl.RGBA4:        {bits: [4]int{4, 4, 4, 4}},
	gl.RGB5_A1:      {bits: [4]int{5, 5, 5, 1}},
	gl.RGB10_A2:     {bits: [4]int{10, 10, 10, 2}},
	gl.RGBA16:       {bits: [4]int{16, 16, 16, 16}},
	gl.RG16:         {bits: [4]int{16, 16, -1, -1}},
	gl.RG8_SNORM:    {bits: [4]int{8, 8, -1, -1}, signed: true},
	gl.RGBA8_SNORM:  {bits: [4]int{8, 8, 8, 8}, signed: true},
	gl.R16F:         {bits: [4]int{0, -1, -1, -1}, half: true},
	gl.RG16F:        {bits: [4]int{0, 0, -1, -1}, half: true},
	gl.RGBA16F:      {bits: [4]int{0, 0, 0, 0}, half: true},
	gl.R32F:         {bits: [4]int{0, -1, -1, -1}},
	gl.RG32F:        {bits: [4]int{0, 0, -1, -1}},
	gl.RGBA32F:      {bits: [4]int{0, 0, 0, 0}},
}

func storageOf(internal gl.Enum) (storage, bool) {
	s, ok := storages[internal]
	return s, ok
}

// normalized reports whether stored values are clamped to a fixed range.
func (s storage) normalized() bool { return s.bits[0] > 0 || s.bits[3] > 0 }

// store rounds v to what the format can represent.
func (s storage) store(v rgba) rgba {
	for ch, bits := range s.bits {
		switch {
		case bits < 0:
			if ch == 3 {
				v[ch] = 1
			} else {
				v[ch] = 0
			}
		case bits == 0 && s.half:
			v[ch] = gfx.HalfToFloat32(gfx.HalfFromFloat32(v[ch]))
		case bits > 0 && s.signed:
			scale := float32(int(1)<<(bits-1) - 1)
			v[ch] = math32.Round(clampSigned(v[ch])*scale) / scale
		case bits > 0:
			scale := float32(int(1)<<bits - 1)
			v[ch] = math32.Round(clamp01(v[ch])*scale) / scale
		}
	}
	return v
}
