package gl

import (
	"fmt"

	"github.com/gogpu/gfx"
)

// textureFormat is the GL triple used to store a gfx.SurfaceFormat. Type is
// zero for compressed formats.
type textureFormat struct {
	internal Enum
	format   Enum
	typ      Enum
}

func (t textureFormat) compressed() bool { return t.typ == 0 }

var textureFormats = map[gfx.SurfaceFormat]textureFormat{
	gfx.SurfaceFormatColor:           {RGBA8, RGBA, UNSIGNED_BYTE},
	gfx.SurfaceFormatColorSRgb:       {SRGB8_ALPHA8, RGBA, UNSIGNED_BYTE},
	gfx.SurfaceFormatBgr565:          {RGB565, RGB, UNSIGNED_SHORT_5_6_5},
	gfx.SurfaceFormatBgra4444:        {RGBA4, BGRA, UNSIGNED_SHORT_4_4_4_4_REV},
	gfx.SurfaceFormatBgra5551:        {RGB5_A1, BGRA, UNSIGNED_SHORT_1_5_5_5_REV},
	gfx.SurfaceFormatNormalizedByte2: {RG8_SNORM, RG, BYTE},
	gfx.SurfaceFormatNormalizedByte4: {RGBA8_SNORM, RGBA, BYTE},
	gfx.SurfaceFormatRgba1010102:     {RGB10_A2, RGBA, UNSIGNED_INT_2_10_10_10_REV},
	gfx.SurfaceFormatRg32:            {RG16, RG, UNSIGNED_SHORT},
	gfx.SurfaceFormatRgba64:          {RGBA16, RGBA, UNSIGNED_SHORT},
	gfx.SurfaceFormatAlpha8:          {ALPHA8, ALPHA, UNSIGNED_BYTE},
	gfx.SurfaceFormatSingle:          {R32F, RED, FLOAT},
	gfx.SurfaceFormatVector2:         {RG32F, RG, FLOAT},
	gfx.SurfaceFormatVector4:         {RGBA32F, RGBA, FLOAT},
	gfx.SurfaceFormatHalfSingle:      {R16F, RED, HALF_FLOAT},
	gfx.SurfaceFormatHalfVector2:     {RG16F, RG, HALF_FLOAT},
	gfx.SurfaceFormatHalfVector4:     {RGBA16F, RGBA, HALF_FLOAT},
	gfx.SurfaceFormatHdrBlendable:    {RGBA16F, RGBA, HALF_FLOAT},
	gfx.SurfaceFormatBgr32:           {RGB8, BGRA, UNSIGNED_BYTE},
	gfx.SurfaceFormatBgra32:          {RGBA8, BGRA, UNSIGNED_BYTE},
	gfx.SurfaceFormatBgr32SRgb:       {SRGB8_ALPHA8, BGRA, UNSIGNED_BYTE},
	gfx.SurfaceFormatBgra32SRgb:      {SRGB8_ALPHA8, BGRA, UNSIGNED_BYTE},

	gfx.SurfaceFormatDxt1:                     {internal: COMPRESSED_RGB_S3TC_DXT1_EXT},
	gfx.SurfaceFormatDxt1a:                    {internal: COMPRESSED_RGBA_S3TC_DXT1_EXT},
	gfx.SurfaceFormatDxt3:                     {internal: COMPRESSED_RGBA_S3TC_DXT3_EXT},
	gfx.SurfaceFormatDxt5:                     {internal: COMPRESSED_RGBA_S3TC_DXT5_EXT},
	gfx.SurfaceFormatDxt1SRgb:                 {internal: COMPRESSED_SRGB_S3TC_DXT1_EXT},
	gfx.SurfaceFormatDxt3SRgb:                 {internal: COMPRESSED_SRGB_ALPHA_S3TC_DXT3_EXT},
	gfx.SurfaceFormatDxt5SRgb:                 {internal: COMPRESSED_SRGB_ALPHA_S3TC_DXT5_EXT},
	gfx.SurfaceFormatRgbPvrtc2Bpp:             {internal: COMPRESSED_RGB_PVRTC_2BPPV1_IMG},
	gfx.SurfaceFormatRgbPvrtc4Bpp:             {internal: COMPRESSED_RGB_PVRTC_4BPPV1_IMG},
	gfx.SurfaceFormatRgbaPvrtc2Bpp:            {internal: COMPRESSED_RGBA_PVRTC_2BPPV1_IMG},
	gfx.SurfaceFormatRgbaPvrtc4Bpp:            {internal: COMPRESSED_RGBA_PVRTC_4BPPV1_IMG},
	gfx.SurfaceFormatRgbEtc1:                  {internal: ETC1_RGB8_OES},
	gfx.SurfaceFormatRgbaAtcExplicitAlpha:     {internal: ATC_RGBA_EXPLICIT_ALPHA_AMD},
	gfx.SurfaceFormatRgbaAtcInterpolatedAlpha: {internal: ATC_RGBA_INTERPOLATED_ALPHA_AMD},
	gfx.SurfaceFormatRgb8Etc2:                 {internal: COMPRESSED_RGB8_ETC2},
	gfx.SurfaceFormatSrgb8Etc2:                {internal: COMPRESSED_SRGB8_ETC2},
	gfx.SurfaceFormatRgb8A1Etc2:               {internal: COMPRESSED_RGB8_PUNCHTHROUGH_ALPHA1_ETC2},
	gfx.SurfaceFormatSrgb8A1Etc2:              {internal: COMPRESSED_SRGB8_PUNCHTHROUGH_ALPHA1_ETC2},
	gfx.SurfaceFormatRgba8Etc2:                {internal: COMPRESSED_RGBA8_ETC2_EAC},
	gfx.SurfaceFormatSRgb8A8Etc2:              {internal: COMPRESSED_SRGB8_ALPHA8_ETC2_EAC},
}

func lookupTextureFormat(f gfx.SurfaceFormat) (textureFormat, error) {
	t, ok := textureFormats[f]
	if !ok {
		return textureFormat{}, fmt.Errorf("%w: %s has no GL equivalent", gfx.ErrNotSupported, f)
	}
	return t, nil
}

// depthFormat returns the renderbuffer format and attachment point for d.
func depthFormat(d gfx.DepthFormat) (internal, attachment Enum) {
	switch d {
	case gfx.DepthFormatDepth16:
		return DEPTH_COMPONENT16, DEPTH_ATTACHMENT
	case gfx.DepthFormatDepth24:
		return DEPTH_COMPONENT24, DEPTH_ATTACHMENT
	case gfx.DepthFormatDepth24Stencil8:
		return DEPTH24_STENCIL8, DEPTH_STENCIL_ATTACHMENT
	}
	return 0, 0
}

// vertexFormat returns the VertexAttribPointer size, type and
// normalization of a vertex element format.
func vertexFormat(f gfx.VertexElementFormat) (size int, typ Enum, normalized bool) {
	switch f {
	case gfx.VertexElementSingle:
		return 1, FLOAT, false
	case gfx.VertexElementVector2:
		return 2, FLOAT, false
	case gfx.VertexElementVector3:
		return 3, FLOAT, false
	case gfx.VertexElementVector4:
		return 4, FLOAT, false
	case gfx.VertexElementColor:
		return 4, UNSIGNED_BYTE, true
	case gfx.VertexElementByte4:
		return 4, UNSIGNED_BYTE, false
	case gfx.VertexElementShort2:
		return 2, SHORT, false
	case gfx.VertexElementShort4:
		return 4, SHORT, false
	case gfx.VertexElementNormalizedShort2:
		return 2, SHORT, true
	case gfx.VertexElementNormalizedShort4:
		return 4, SHORT, true
	case gfx.VertexElementHalfVector2:
		return 2, HALF_FLOAT, false
	case gfx.VertexElementHalfVector4:
		return 4, HALF_FLOAT, false
	}
	return 4, FLOAT, false
}

func primitiveMode(p gfx.PrimitiveType) Enum {
	switch p {
	case gfx.TriangleStrip:
		return TRIANGLE_STRIP
	case gfx.LineList:
		return LINES
	case gfx.LineStrip:
		return LINE_STRIP
	case gfx.PointList:
		return POINTS
	}
	return TRIANGLES
}

func indexType(s gfx.IndexElementSize) Enum {
	if s == gfx.IndexElementSize32 {
		return UNSIGNED_INT
	}
	return UNSIGNED_SHORT
}

func blendFactor(b gfx.Blend) Enum {
	switch b {
	case gfx.BlendZero:
		return ZERO
	case gfx.BlendSourceColor:
		return SRC_COLOR
	case gfx.BlendInverseSourceColor:
		return ONE_MINUS_SRC_COLOR
	case gfx.BlendSourceAlpha:
		return SRC_ALPHA
	case gfx.BlendInverseSourceAlpha:
		return ONE_MINUS_SRC_ALPHA
	case gfx.BlendDestinationColor:
		return DST_COLOR
	case gfx.BlendInverseDestinationColor:
		return ONE_MINUS_DST_COLOR
	case gfx.BlendDestinationAlpha:
		return DST_ALPHA
	case gfx.BlendInverseDestinationAlpha:
		return ONE_MINUS_DST_ALPHA
	case gfx.BlendBlendFactor:
		return CONSTANT_COLOR
	case gfx.BlendInverseBlendFactor:
		return ONE_MINUS_CONSTANT_COLOR
	case gfx.BlendSourceAlphaSaturation:
		return SRC_ALPHA_SATURATE
	}
	return ONE
}

func blendEquation(f gfx.BlendFunction) Enum {
	switch f {
	case gfx.BlendFunctionSubtract:
		return FUNC_SUBTRACT
	case gfx.BlendFunctionReverseSubtract:
		return FUNC_REVERSE_SUBTRACT
	case gfx.BlendFunctionMin:
		return MIN
	case gfx.BlendFunctionMax:
		return MAX
	}
	return FUNC_ADD
}

func compareFunc(c gfx.CompareFunction) Enum {
	switch c {
	case gfx.CompareNever:
		return NEVER
	case gfx.CompareLess:
		return LESS
	case gfx.CompareLessEqual:
		return LEQUAL
	case gfx.CompareEqual:
		return EQUAL
	case gfx.CompareGreaterEqual:
		return GEQUAL
	case gfx.CompareGreater:
		return GREATER
	case gfx.CompareNotEqual:
		return NOTEQUAL
	}
	return ALWAYS
}

func stencilOp(op gfx.StencilOperation) Enum {
	switch op {
	case gfx.StencilZero:
		return ZERO
	case gfx.StencilReplace:
		return REPLACE
	case gfx.StencilIncrement:
		return INCR_WRAP
	case gfx.StencilDecrement:
		return DECR_WRAP
	case gfx.StencilIncrementSaturation:
		return INCR
	case gfx.StencilDecrementSaturation:
		return DECR
	case gfx.StencilInvert:
		return INVERT
	}
	return KEEP
}

func wrapMode(m gfx.TextureAddressMode) Enum {
	switch m {
	case gfx.TextureAddressClamp:
		return CLAMP_TO_EDGE
	case gfx.TextureAddressMirror:
		return MIRRORED_REPEAT
	case gfx.TextureAddressBorder:
		return CLAMP_TO_BORDER
	}
	return REPEAT
}

// filterModes returns the minification and magnification filters. Mip
// filtering is only applied when the texture has more than one level.
func filterModes(f gfx.TextureFilter, mipmapped bool) (minFilter, magFilter Enum) {
	minLinear, magLinear, mipLinear := f.Split()
	magFilter = NEAREST
	if magLinear {
		magFilter = LINEAR
	}
	switch {
	case !mipmapped && minLinear:
		minFilter = LINEAR
	case !mipmapped:
		minFilter = NEAREST
	case minLinear && mipLinear:
		minFilter = LINEAR_MIPMAP_LINEAR
	case minLinear:
		minFilter = LINEAR_MIPMAP_NEAREST
	case mipLinear:
		minFilter = NEAREST_MIPMAP_LINEAR
	default:
		minFilter = NEAREST_MIPMAP_NEAREST
	}
	return minFilter, magFilter
}
