package gl

import "github.com/gogpu/gfx"

// Fixed-function state lives entirely in the descriptors. The context
// applies them through glState before every draw so that objects touched
// between draws are restored without extra bookkeeping.

type blendState struct{ desc gfx.BlendDesc }

func (*blendState) Dispose() {}

type depthStencilState struct{ desc gfx.DepthStencilDesc }

func (*depthStencilState) Dispose() {}

type rasterizerState struct{ desc gfx.RasterizerDesc }

func (*rasterizerState) Dispose() {}

type samplerState struct{ desc gfx.SamplerDesc }

func (*samplerState) Dispose() {}

func applyBlend(f *EntryPoints, s *glState, d gfx.BlendDesc, factor gfx.Color) {
	enabled := d.Enabled()
	s.set(f, BLEND, enabled)
	if enabled {
		s.setBlendFuncSeparate(f,
			blendFactor(d.ColorSourceBlend), blendFactor(d.ColorDestinationBlend),
			blendFactor(d.AlphaSourceBlend), blendFactor(d.AlphaDestinationBlend))
		s.setBlendEquationSeparate(f, blendEquation(d.ColorBlendFunction), blendEquation(d.AlphaBlendFunction))
		v := factor.ToVector4()
		s.setBlendColor(f, v.X, v.Y, v.Z, v.W)
	}
	m := d.ColorWriteChannels
	s.setColorMask(f, m&gfx.ColorWriteRed != 0, m&gfx.ColorWriteGreen != 0,
		m&gfx.ColorWriteBlue != 0, m&gfx.ColorWriteAlpha != 0)
}

// stencilKey is everything the stencil calls depend on. glState does not
// cache stencil state, so the context compares keys instead.
type stencilKey struct {
	desc      gfx.DepthStencilDesc
	ref       int
	cwIsFront bool
}

func applyDepth(f *EntryPoints, s *glState, d gfx.DepthStencilDesc) {
	s.set(f, DEPTH_TEST, d.DepthBufferEnable)
	s.setDepthMask(f, d.DepthBufferWriteEnable)
	s.setDepthFunc(f, compareFunc(d.DepthBufferFunction))
}

func applyStencil(f *EntryPoints, s *glState, k stencilKey) {
	d := k.desc
	s.set(f, STENCIL_TEST, d.StencilEnable)
	f.StencilMask(d.StencilWriteMask)
	if !d.StencilEnable {
		return
	}
	if !d.TwoSidedStencilMode {
		f.StencilFuncSeparate(FRONT_AND_BACK, compareFunc(d.StencilFunction), k.ref, d.StencilMask)
		f.StencilOpSeparate(FRONT_AND_BACK, stencilOp(d.StencilFail),
			stencilOp(d.StencilDepthBufferFail), stencilOp(d.StencilPass))
		return
	}
	cw, ccw := FRONT, BACK
	if !k.cwIsFront {
		cw, ccw = BACK, FRONT
	}
	f.StencilFuncSeparate(cw, compareFunc(d.StencilFunction), k.ref, d.StencilMask)
	f.StencilOpSeparate(cw, stencilOp(d.StencilFail),
		stencilOp(d.StencilDepthBufferFail), stencilOp(d.StencilPass))
	f.StencilFuncSeparate(ccw, compareFunc(d.CounterClockwiseStencilFunction), k.ref, d.StencilMask)
	f.StencilOpSeparate(ccw, stencilOp(d.CounterClockwiseStencilFail),
		stencilOp(d.CounterClockwiseStencilDepthBuffer), stencilOp(d.CounterClockwiseStencilPass))
}

// applyRasterizer sets culling for the given framebuffer orientation and
// reports whether visually clockwise triangles are GL front faces.
//
// Drawing into a render target flips clip space vertically, which mirrors
// the winding GL computes in window coordinates.
func applyRasterizer(f *EntryPoints, s *glState, d gfx.RasterizerDesc, flipped bool, depthBits int,
	depthClamp bool) (cwIsFront bool) {
	visualCW, visualCCW := CW, CCW
	if flipped {
		visualCW, visualCCW = CCW, CW
	}
	front := visualCW
	if d.CullMode == gfx.CullClockwiseFace {
		front = visualCCW
	}
	s.set(f, CULL_FACE, d.CullMode != gfx.CullNone)
	s.setCullFace(f, BACK)
	s.setFrontFace(f, front)
	s.set(f, SCISSOR_TEST, d.ScissorTestEnable)

	biased := d.DepthBias != 0 || d.SlopeScaleDepthBias != 0
	s.set(f, POLYGON_OFFSET_FILL, biased)
	if biased {
		f.PolygonOffset(d.SlopeScaleDepthBias, d.DepthBias*float32(int(1)<<depthBits))
	}
	if depthClamp {
		s.set(f, DEPTH_CLAMP, !d.DepthClipEnable)
	}
	return front == visualCW
}

// applySampler programs the sampling parameters of the texture bound to
// the active unit.
func applySampler(f *EntryPoints, target Enum, d gfx.SamplerDesc, levels int, caps *gfx.GraphicsCapabilities) {
	minFilter, magFilter := filterModes(d.Filter, levels > 1)
	f.TexParameteri(target, TEXTURE_MIN_FILTER, int(minFilter))
	f.TexParameteri(target, TEXTURE_MAG_FILTER, int(magFilter))
	f.TexParameteri(target, TEXTURE_WRAP_S, int(wrapMode(d.AddressU)))
	f.TexParameteri(target, TEXTURE_WRAP_T, int(wrapMode(d.AddressV)))
	if target == TEXTURE_3D {
		f.TexParameteri(target, TEXTURE_WRAP_R, int(wrapMode(d.AddressW)))
	}
	if levels > 1 {
		f.TexParameteri(target, TEXTURE_BASE_LEVEL, min(d.MaxMipLevel, levels-1))
	}
	if caps.SupportsTextureAnisotropy {
		aniso := 1
		if d.Filter == gfx.TextureFilterAnisotropic {
			aniso = max(1, min(d.MaxAnisotropy, caps.MaxTextureAnisotropy))
		}
		f.TexParameterf(target, TEXTURE_MAX_ANISOTROPY_EXT, float32(aniso))
	}
	if d.Comparison {
		f.TexParameteri(target, TEXTURE_COMPARE_MODE, int(COMPARE_REF_TO_TEXTURE))
		f.TexParameteri(target, TEXTURE_COMPARE_FUNC, int(compareFunc(d.ComparisonFunction)))
	} else {
		f.TexParameteri(target, TEXTURE_COMPARE_MODE, 0)
	}
}
