package wgpu

import (
	"fmt"

	"github.com/gogpu/gfx"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// textureFormats lists the surface formats WebGPU stores natively. Packed
// 16-bit formats, 16-bit normalized formats and alpha-only textures have no
// WebGPU equivalent. Block-compressed formats need device features the
// backend does not request.
var textureFormats = map[gfx.SurfaceFormat]gputypes.TextureFormat{
	gfx.SurfaceFormatColor:           gputypes.TextureFormatRGBA8Unorm,
	gfx.SurfaceFormatColorSRgb:       gputypes.TextureFormatRGBA8UnormSrgb,
	gfx.SurfaceFormatBgra32:          gputypes.TextureFormatBGRA8Unorm,
	gfx.SurfaceFormatBgra32SRgb:      gputypes.TextureFormatBGRA8UnormSrgb,
	gfx.SurfaceFormatBgr32:           gputypes.TextureFormatBGRA8Unorm,
	gfx.SurfaceFormatBgr32SRgb:       gputypes.TextureFormatBGRA8UnormSrgb,
	gfx.SurfaceFormatNormalizedByte2: gputypes.TextureFormatRG8Snorm,
	gfx.SurfaceFormatNormalizedByte4: gputypes.TextureFormatRGBA8Snorm,
	gfx.SurfaceFormatRgba1010102:     gputypes.TextureFormatRGB10A2Unorm,
	gfx.SurfaceFormatSingle:          gputypes.TextureFormatR32Float,
	gfx.SurfaceFormatVector2:         gputypes.TextureFormatRG32Float,
	gfx.SurfaceFormatVector4:         gputypes.TextureFormatRGBA32Float,
	gfx.SurfaceFormatHalfSingle:      gputypes.TextureFormatR16Float,
	gfx.SurfaceFormatHalfVector2:     gputypes.TextureFormatRG16Float,
	gfx.SurfaceFormatHalfVector4:     gputypes.TextureFormatRGBA16Float,
	gfx.SurfaceFormatHdrBlendable:    gputypes.TextureFormatRGBA16Float,
}

func lookupTextureFormat(f gfx.SurfaceFormat) (gputypes.TextureFormat, error) {
	t, ok := textureFormats[f]
	if !ok {
		return gputypes.TextureFormatUndefined, fmt.Errorf("%w: %s has no WebGPU equivalent", gfx.ErrNotSupported, f)
	}
	return t, nil
}

func depthFormat(d gfx.DepthFormat) gputypes.TextureFormat {
	switch d {
	case gfx.DepthFormatDepth16:
		return gputypes.TextureFormatDepth16Unorm
	case gfx.DepthFormatDepth24:
		return gputypes.TextureFormatDepth24Plus
	case gfx.DepthFormatDepth24Stencil8:
		return gputypes.TextureFormatDepth24PlusStencil8
	}
	return gputypes.TextureFormatUndefined
}

func vertexFormat(f gfx.VertexElementFormat) gputypes.VertexFormat {
	switch f {
	case gfx.VertexElementSingle:
		return gputypes.VertexFormatFloat32
	case gfx.VertexElementVector2:
		return gputypes.VertexFormatFloat32x2
	case gfx.VertexElementVector3:
		return gputypes.VertexFormatFloat32x3
	case gfx.VertexElementColor:
		return gputypes.VertexFormatUnorm8x4
	case gfx.VertexElementByte4:
		return gputypes.VertexFormatUint8x4
	case gfx.VertexElementShort2:
		return gputypes.VertexFormatSint16x2
	case gfx.VertexElementShort4:
		return gputypes.VertexFormatSint16x4
	case gfx.VertexElementNormalizedShort2:
		return gputypes.VertexFormatSnorm16x2
	case gfx.VertexElementNormalizedShort4:
		return gputypes.VertexFormatSnorm16x4
	case gfx.VertexElementHalfVector2:
		return gputypes.VertexFormatFloat16x2
	case gfx.VertexElementHalfVector4:
		return gputypes.VertexFormatFloat16x4
	}
	return gputypes.VertexFormatFloat32x4
}

func topology(p gfx.PrimitiveType) gputypes.PrimitiveTopology {
	switch p {
	case gfx.TriangleStrip:
		return gputypes.PrimitiveTopologyTriangleStrip
	case gfx.LineList:
		return gputypes.PrimitiveTopologyLineList
	case gfx.LineStrip:
		return gputypes.PrimitiveTopologyLineStrip
	case gfx.PointList:
		return gputypes.PrimitiveTopologyPointList
	}
	return gputypes.PrimitiveTopologyTriangleList
}

func indexFormat(s gfx.IndexElementSize) gputypes.IndexFormat {
	if s == gfx.IndexElementSize32 {
		return gputypes.IndexFormatUint32
	}
	return gputypes.IndexFormatUint16
}

// cullMode maps a cull mode for pipelines whose front face is clockwise.
func cullMode(c gfx.CullMode) gputypes.CullMode {
	switch c {
	case gfx.CullClockwiseFace:
		return gputypes.CullModeFront
	case gfx.CullCounterClockwiseFace:
		return gputypes.CullModeBack
	}
	return gputypes.CullModeNone
}

func blendFactor(b gfx.Blend) gputypes.BlendFactor {
	switch b {
	case gfx.BlendZero:
		return gputypes.BlendFactorZero
	case gfx.BlendSourceColor:
		return gputypes.BlendFactorSrc
	case gfx.BlendInverseSourceColor:
		return gputypes.BlendFactorOneMinusSrc
	case gfx.BlendSourceAlpha:
		return gputypes.BlendFactorSrcAlpha
	case gfx.BlendInverseSourceAlpha:
		return gputypes.BlendFactorOneMinusSrcAlpha
	case gfx.BlendDestinationColor:
		return gputypes.BlendFactorDst
	case gfx.BlendInverseDestinationColor:
		return gputypes.BlendFactorOneMinusDst
	case gfx.BlendDestinationAlpha:
		return gputypes.BlendFactorDstAlpha
	case gfx.BlendInverseDestinationAlpha:
		return gputypes.BlendFactorOneMinusDstAlpha
	case gfx.BlendBlendFactor:
		return gputypes.BlendFactorConstant
	case gfx.BlendInverseBlendFactor:
		return gputypes.BlendFactorOneMinusConstant
	case gfx.BlendSourceAlphaSaturation:
		return gputypes.BlendFactorSrcAlphaSaturated
	}
	return gputypes.BlendFactorOne
}

func blendOperation(f gfx.BlendFunction) gputypes.BlendOperation {
	switch f {
	case gfx.BlendFunctionSubtract:
		return gputypes.BlendOperationSubtract
	case gfx.BlendFunctionReverseSubtract:
		return gputypes.BlendOperationReverseSubtract
	case gfx.BlendFunctionMin:
		return gputypes.BlendOperationMin
	case gfx.BlendFunctionMax:
		return gputypes.BlendOperationMax
	}
	return gputypes.BlendOperationAdd
}

// blendState returns nil for opaque blending. WebGPU requires factor One
// for min and max, which is what Direct3D ignores them as.
func blendState(d gfx.BlendDesc) *gputypes.BlendState {
	if !d.Enabled() {
		return nil
	}
	component := func(src, dst gfx.Blend, fn gfx.BlendFunction) gputypes.BlendComponent {
		if fn == gfx.BlendFunctionMin || fn == gfx.BlendFunctionMax {
			src, dst = gfx.BlendOne, gfx.BlendOne
		}
		return gputypes.BlendComponent{
			SrcFactor: blendFactor(src),
			DstFactor: blendFactor(dst),
			Operation: blendOperation(fn),
		}
	}
	return &gputypes.BlendState{
		Color: component(d.ColorSourceBlend, d.ColorDestinationBlend, d.ColorBlendFunction),
		Alpha: component(d.AlphaSourceBlend, d.AlphaDestinationBlend, d.AlphaBlendFunction),
	}
}

func writeMask(c gfx.ColorWriteChannels) gputypes.ColorWriteMask {
	m := gputypes.ColorWriteMaskNone
	if c&gfx.ColorWriteRed != 0 {
		m |= gputypes.ColorWriteMaskRed
	}
	if c&gfx.ColorWriteGreen != 0 {
		m |= gputypes.ColorWriteMaskGreen
	}
	if c&gfx.ColorWriteBlue != 0 {
		m |= gputypes.ColorWriteMaskBlue
	}
	if c&gfx.ColorWriteAlpha != 0 {
		m |= gputypes.ColorWriteMaskAlpha
	}
	return m
}

func compareFunction(f gfx.CompareFunction) gputypes.CompareFunction {
	switch f {
	case gfx.CompareNever:
		return gputypes.CompareFunctionNever
	case gfx.CompareLess:
		return gputypes.CompareFunctionLess
	case gfx.CompareLessEqual:
		return gputypes.CompareFunctionLessEqual
	case gfx.CompareEqual:
		return gputypes.CompareFunctionEqual
	case gfx.CompareGreaterEqual:
		return gputypes.CompareFunctionGreaterEqual
	case gfx.CompareGreater:
		return gputypes.CompareFunctionGreater
	case gfx.CompareNotEqual:
		return gputypes.CompareFunctionNotEqual
	}
	return gputypes.CompareFunctionAlways
}

func stencilOperation(op gfx.StencilOperation) hal.StencilOperation {
	switch op {
	case gfx.StencilZero:
		return hal.StencilOperationZero
	case gfx.StencilReplace:
		return hal.StencilOperationReplace
	case gfx.StencilIncrement:
		return hal.StencilOperationIncrementWrap
	case gfx.StencilDecrement:
		return hal.StencilOperationDecrementWrap
	case gfx.StencilIncrementSaturation:
		return hal.StencilOperationIncrementClamp
	case gfx.StencilDecrementSaturation:
		return hal.StencilOperationDecrementClamp
	case gfx.StencilInvert:
		return hal.StencilOperationInvert
	}
	return hal.StencilOperationKeep
}

// depthStencilState builds the pipeline depth-stencil state for a target
// with depth format f. Clockwise faces are front faces, so the primary
// stencil settings apply to StencilFront.
func depthStencilState(d gfx.DepthStencilDesc, f gfx.DepthFormat) *hal.DepthStencilState {
	if f == gfx.DepthFormatNone {
		return nil
	}
	s := &hal.DepthStencilState{
		Format:       depthFormat(f),
		DepthCompare: gputypes.CompareFunctionAlways,
		StencilFront: hal.StencilFaceState{
			Compare:     gputypes.CompareFunctionAlways,
			FailOp:      hal.StencilOperationKeep,
			DepthFailOp: hal.StencilOperationKeep,
			PassOp:      hal.StencilOperationKeep,
		},
	}
	if d.DepthBufferEnable {
		s.DepthWriteEnabled = d.DepthBufferWriteEnable
		s.DepthCompare = compareFunction(d.DepthBufferFunction)
	}
	if d.StencilEnable && f.HasStencil() {
		s.StencilFront = hal.StencilFaceState{
			Compare:     compareFunction(d.StencilFunction),
			FailOp:      stencilOperation(d.StencilFail),
			DepthFailOp: stencilOperation(d.StencilDepthBufferFail),
			PassOp:      stencilOperation(d.StencilPass),
		}
		s.StencilReadMask = d.StencilMask
		s.StencilWriteMask = d.StencilWriteMask
	}
	s.StencilBack = s.StencilFront
	if d.StencilEnable && d.TwoSidedStencilMode && f.HasStencil() {
		s.StencilBack = hal.StencilFaceState{
			Compare:     compareFunction(d.CounterClockwiseStencilFunction),
			FailOp:      stencilOperation(d.CounterClockwiseStencilFail),
			DepthFailOp: stencilOperation(d.CounterClockwiseStencilDepthBuffer),
			PassOp:      stencilOperation(d.CounterClockwiseStencilPass),
		}
	}
	return s
}

func addressMode(m gfx.TextureAddressMode) gputypes.AddressMode {
	switch m {
	case gfx.TextureAddressWrap:
		return gputypes.AddressModeRepeat
	case gfx.TextureAddressMirror:
		return gputypes.AddressModeMirrorRepeat
	}
	// WebGPU has no border addressing; clamping is the closest match.
	return gputypes.AddressModeClampToEdge
}

func filterMode(linear bool) gputypes.FilterMode {
	if linear {
		return gputypes.FilterModeLinear
	}
	return gputypes.FilterModeNearest
}

// multiSampleCount maps a requested count to one WebGPU supports: 1 or 4.
func multiSampleCount(n int) uint32 {
	if n > 1 {
		return 4
	}
	return 1
}

// alignedRow rounds a row length up to the copy alignment of WebGPU.
func alignedRow(n int) int {
	const align = 256
	return (n + align - 1) / align * align
}
