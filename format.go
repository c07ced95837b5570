package gfx

import "fmt"

// SurfaceFormat describes the layout of texels in a texture or render target.
type SurfaceFormat int

// Surface formats. Packed formats list their components from the most
// significant bit down; byte formats list them in memory order.
const (
	SurfaceFormatColor SurfaceFormat = iota // RGBA8, R in the first byte
	SurfaceFormatBgr565
	SurfaceFormatBgra5551
	SurfaceFormatBgra4444
	SurfaceFormatDxt1
	SurfaceFormatDxt3
	SurfaceFormatDxt5
	SurfaceFormatNormalizedByte2
	SurfaceFormatNormalizedByte4
	SurfaceFormatRgba1010102
	SurfaceFormatRg32
	SurfaceFormatRgba64
	SurfaceFormatAlpha8
	SurfaceFormatSingle
	SurfaceFormatVector2
	SurfaceFormatVector4
	SurfaceFormatHalfSingle
	SurfaceFormatHalfVector2
	SurfaceFormatHalfVector4
	SurfaceFormatHdrBlendable
	SurfaceFormatBgr32
	SurfaceFormatBgra32
	SurfaceFormatColorSRgb
	SurfaceFormatBgr32SRgb
	SurfaceFormatBgra32SRgb
	SurfaceFormatDxt1SRgb
	SurfaceFormatDxt3SRgb
	SurfaceFormatDxt5SRgb
	SurfaceFormatRgbPvrtc2Bpp
	SurfaceFormatRgbPvrtc4Bpp
	SurfaceFormatRgbaPvrtc2Bpp
	SurfaceFormatRgbaPvrtc4Bpp
	SurfaceFormatRgbEtc1
	SurfaceFormatDxt1a
	SurfaceFormatRgbaAtcExplicitAlpha
	SurfaceFormatRgbaAtcInterpolatedAlpha
	SurfaceFormatRgb8Etc2
	SurfaceFormatSrgb8Etc2
	SurfaceFormatRgb8A1Etc2
	SurfaceFormatSrgb8A1Etc2
	SurfaceFormatRgba8Etc2
	SurfaceFormatSRgb8A8Etc2

	surfaceFormatCount
)

// formatFamily groups formats by the capability that gates them.
type formatFamily uint8

const (
	familyPlain formatFamily = iota
	familyFloat
	familyHalf
	familySRgb
	familyDxt1
	familyS3tc
	familyPvrtc
	familyEtc1
	familyEtc2
	familyAtc
)

type formatInfo struct {
	name   string
	size   int // bytes per texel, or per block for compressed formats
	blockW int // 1 for uncompressed formats
	blockH int
	family formatFamily
}

var formatTable = [surfaceFormatCount]formatInfo{
	SurfaceFormatColor:                    {"Color", 4, 1, 1, familyPlain},
	SurfaceFormatBgr565:                   {"Bgr565", 2, 1, 1, familyPlain},
	SurfaceFormatBgra5551:                 {"Bgra5551", 2, 1, 1, familyPlain},
	SurfaceFormatBgra4444:                 {"Bgra4444", 2, 1, 1, familyPlain},
	SurfaceFormatDxt1:                     {"Dxt1", 8, 4, 4, familyDxt1},
	SurfaceFormatDxt3:                     {"Dxt3", 16, 4, 4, familyS3tc},
	SurfaceFormatDxt5:                     {"Dxt5", 16, 4, 4, familyS3tc},
	SurfaceFormatNormalizedByte2:          {"NormalizedByte2", 2, 1, 1, familyPlain},
	SurfaceFormatNormalizedByte4:          {"NormalizedByte4", 4, 1, 1, familyPlain},
	SurfaceFormatRgba1010102:              {"Rgba1010102", 4, 1, 1, familyPlain},
	SurfaceFormatRg32:                     {"Rg32", 4, 1, 1, familyPlain},
	SurfaceFormatRgba64:                   {"Rgba64", 8, 1, 1, familyPlain},
	SurfaceFormatAlpha8:                   {"Alpha8", 1, 1, 1, familyPlain},
	SurfaceFormatSingle:                   {"Single", 4, 1, 1, familyFloat},
	SurfaceFormatVector2:                  {"Vector2", 8, 1, 1, familyFloat},
	SurfaceFormatVector4:                  {"Vector4", 16, 1, 1, familyFloat},
	SurfaceFormatHalfSingle:               {"HalfSingle", 2, 1, 1, familyHalf},
	SurfaceFormatHalfVector2:              {"HalfVector2", 4, 1, 1, familyHalf},
	SurfaceFormatHalfVector4:              {"HalfVector4", 8, 1, 1, familyHalf},
	SurfaceFormatHdrBlendable:             {"HdrBlendable", 8, 1, 1, familyHalf},
	SurfaceFormatBgr32:                    {"Bgr32", 4, 1, 1, familyPlain},
	SurfaceFormatBgra32:                   {"Bgra32", 4, 1, 1, familyPlain},
	SurfaceFormatColorSRgb:                {"ColorSRgb", 4, 1, 1, familySRgb},
	SurfaceFormatBgr32SRgb:                {"Bgr32SRgb", 4, 1, 1, familySRgb},
	SurfaceFormatBgra32SRgb:               {"Bgra32SRgb", 4, 1, 1, familySRgb},
	SurfaceFormatDxt1SRgb:                 {"Dxt1SRgb", 8, 4, 4, familyDxt1},
	SurfaceFormatDxt3SRgb:                 {"Dxt3SRgb", 16, 4, 4, familyS3tc},
	SurfaceFormatDxt5SRgb:                 {"Dxt5SRgb", 16, 4, 4, familyS3tc},
	SurfaceFormatRgbPvrtc2Bpp:             {"RgbPvrtc2Bpp", 8, 8, 4, familyPvrtc},
	SurfaceFormatRgbPvrtc4Bpp:             {"RgbPvrtc4Bpp", 8, 4, 4, familyPvrtc},
	SurfaceFormatRgbaPvrtc2Bpp:            {"RgbaPvrtc2Bpp", 8, 8, 4, familyPvrtc},
	SurfaceFormatRgbaPvrtc4Bpp:            {"RgbaPvrtc4Bpp", 8, 4, 4, familyPvrtc},
	SurfaceFormatRgbEtc1:                  {"RgbEtc1", 8, 4, 4, familyEtc1},
	SurfaceFormatDxt1a:                    {"Dxt1a", 8, 4, 4, familyDxt1},
	SurfaceFormatRgbaAtcExplicitAlpha:     {"RgbaAtcExplicitAlpha", 16, 4, 4, familyAtc},
	SurfaceFormatRgbaAtcInterpolatedAlpha: {"RgbaAtcInterpolatedAlpha", 16, 4, 4, familyAtc},
	SurfaceFormatRgb8Etc2:                 {"Rgb8Etc2", 8, 4, 4, familyEtc2},
	SurfaceFormatSrgb8Etc2:                {"Srgb8Etc2", 8, 4, 4, familyEtc2},
	SurfaceFormatRgb8A1Etc2:               {"Rgb8A1Etc2", 8, 4, 4, familyEtc2},
	SurfaceFormatSrgb8A1Etc2:              {"Srgb8A1Etc2", 8, 4, 4, familyEtc2},
	SurfaceFormatRgba8Etc2:                {"Rgba8Etc2", 16, 4, 4, familyEtc2},
	SurfaceFormatSRgb8A8Etc2:              {"SRgb8A8Etc2", 16, 4, 4, familyEtc2},
}

// Valid reports whether f is a declared format.
func (f SurfaceFormat) Valid() bool {
	return f >= 0 && f < surfaceFormatCount
}

func (f SurfaceFormat) String() string {
	if !f.Valid() {
		return fmt.Sprintf("SurfaceFormat(%d)", int(f))
	}
	return formatTable[f].name
}

// Size returns the byte size of one texel, or of one block for
// block-compressed formats.
func (f SurfaceFormat) Size() int {
	if !f.Valid() {
		return 0
	}
	return formatTable[f].size
}

// IsCompressed reports whether f is a block-compressed format.
func (f SurfaceFormat) IsCompressed() bool {
	return f.Valid() && formatTable[f].blockW > 1
}

// BlockSize returns the block dimensions in texels. Uncompressed formats
// report 1x1.
func (f SurfaceFormat) BlockSize() (w, h int) {
	if !f.Valid() {
		return 1, 1
	}
	return formatTable[f].blockW, formatTable[f].blockH
}

// IsPVRTC reports whether f is one of the PVRTC formats, which have
// minimum surface sizes.
func (f SurfaceFormat) IsPVRTC() bool {
	return f.Valid() && formatTable[f].family == familyPvrtc
}

// IsSRgb reports whether f stores sRGB encoded colour.
func (f SurfaceFormat) IsSRgb() bool {
	switch f {
	case SurfaceFormatColorSRgb, SurfaceFormatBgr32SRgb, SurfaceFormatBgra32SRgb,
		SurfaceFormatDxt1SRgb, SurfaceFormatDxt3SRgb, SurfaceFormatDxt5SRgb,
		SurfaceFormatSrgb8Etc2, SurfaceFormatSrgb8A1Etc2, SurfaceFormatSRgb8A8Etc2:
		return true
	}
	return false
}

// supportedBy reports whether caps allow textures of format f.
func (f SurfaceFormat) supportedBy(caps *GraphicsCapabilities) bool {
	if !f.Valid() {
		return false
	}
	switch formatTable[f].family {
	case familyFloat:
		return caps.SupportsFloatTextures
	case familyHalf:
		return caps.SupportsHalfFloatTextures
	case familySRgb:
		return caps.SupportsSRgb
	case familyDxt1:
		return caps.SupportsDxt1 || caps.SupportsS3tc
	case familyS3tc:
		return caps.SupportsS3tc
	case familyPvrtc:
		return caps.SupportsPvrtc
	case familyEtc1:
		return caps.SupportsEtc1
	case familyEtc2:
		return caps.SupportsEtc2
	case familyAtc:
		return caps.SupportsAtitc
	}
	return true
}

// byteCount returns the number of bytes a w x h region of format f
// occupies. Compressed formats round the region up to whole blocks.
func (f SurfaceFormat) byteCount(w, h int) int {
	switch f {
	case SurfaceFormatRgbPvrtc2Bpp, SurfaceFormatRgbaPvrtc2Bpp:
		return (max(w, 16)*max(h, 8)*2 + 7) / 8
	case SurfaceFormatRgbPvrtc4Bpp, SurfaceFormatRgbaPvrtc4Bpp:
		return (max(w, 8)*max(h, 8)*4 + 7) / 8
	}
	bw, bh := f.BlockSize()
	if bw == 1 && bh == 1 {
		return w * h * f.Size()
	}
	rw := (w + bw - 1) / bw * bw
	rh := (h + bh - 1) / bh * bh
	return rw * rh * f.Size() / (bw * bh)
}

// DepthFormat describes the depth-stencil buffer attached to a render target
// or the back buffer.
type DepthFormat int

const (
	DepthFormatNone DepthFormat = iota
	DepthFormatDepth16
	DepthFormatDepth24
	DepthFormatDepth24Stencil8
)

func (d DepthFormat) String() string {
	switch d {
	case DepthFormatNone:
		return "None"
	case DepthFormatDepth16:
		return "Depth16"
	case DepthFormatDepth24:
		return "Depth24"
	case DepthFormatDepth24Stencil8:
		return "Depth24Stencil8"
	}
	return fmt.Sprintf("DepthFormat(%d)", int(d))
}

// HasStencil reports whether d carries a stencil component.
func (d DepthFormat) HasStencil() bool { return d == DepthFormatDepth24Stencil8 }

// ParseSurfaceFormat looks a format up by name.
func ParseSurfaceFormat(s string) (SurfaceFormat, error) {
	for i := range formatTable {
		if formatTable[i].name == s {
			return SurfaceFormat(i), nil
		}
	}
	return SurfaceFormatColor, argError("format", "unknown surface format %q", s)
}

// ParseDepthFormat looks a depth format up by name.
func ParseDepthFormat(s string) (DepthFormat, error) {
	for d := DepthFormatNone; d <= DepthFormatDepth24Stencil8; d++ {
		if d.String() == s {
			return d, nil
		}
	}
	return DepthFormatNone, argError("depthFormat", "unknown depth format %q", s)
}
