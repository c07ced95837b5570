package gfx

import "sync"

// Blend is a blend factor.
type Blend int

const (
	// BlendOne weights by (1, 1, 1, 1).
	BlendOne Blend = iota
	// BlendZero weights by (0, 0, 0, 0).
	BlendZero
	// BlendSourceColor weights by the source colour.
	BlendSourceColor
	// BlendInverseSourceColor weights by one minus the source colour.
	BlendInverseSourceColor
	// BlendSourceAlpha weights by the source alpha.
	BlendSourceAlpha
	// BlendInverseSourceAlpha weights by one minus the source alpha.
	BlendInverseSourceAlpha
	// BlendDestinationColor weights by the destination colour.
	BlendDestinationColor
	// BlendInverseDestinationColor weights by one minus the destination colour.
	BlendInverseDestinationColor
	// BlendDestinationAlpha weights by the destination alpha.
	BlendDestinationAlpha
	// BlendInverseDestinationAlpha weights by one minus the destination alpha.
	BlendInverseDestinationAlpha
	// BlendBlendFactor weights by the context blend factor.
	BlendBlendFactor
	// BlendInverseBlendFactor weights by one minus the context blend factor.
	BlendInverseBlendFactor
	// BlendSourceAlphaSaturation weights by min(source alpha, 1 - destination alpha).
	BlendSourceAlphaSaturation
)

// BlendFunction combines the weighted source and destination.
type BlendFunction int

const (
	// BlendFunctionAdd is source + destination.
	BlendFunctionAdd BlendFunction = iota
	// BlendFunctionSubtract is source - destination.
	BlendFunctionSubtract
	// BlendFunctionReverseSubtract is destination - source.
	BlendFunctionReverseSubtract
	// BlendFunctionMin is min(source, destination), ignoring the factors.
	BlendFunctionMin
	// BlendFunctionMax is max(source, destination), ignoring the factors.
	BlendFunctionMax
)

// ColorWriteChannels is a mask of colour channels written by draws.
type ColorWriteChannels uint8

const (
	ColorWriteRed ColorWriteChannels = 1 << iota
	ColorWriteGreen
	ColorWriteBlue
	ColorWriteAlpha

	ColorWriteNone ColorWriteChannels = 0
	ColorWriteAll                     = ColorWriteRed | ColorWriteGreen | ColorWriteBlue | ColorWriteAlpha
)

// CompareFunction is a depth, stencil or sampler comparison.
type CompareFunction int

const (
	// CompareAlways always passes.
	CompareAlways CompareFunction = iota
	// CompareNever never passes.
	CompareNever
	// CompareLess passes when the new value is less than the stored one.
	CompareLess
	// CompareLessEqual passes when the new value is less than or equal to the stored one.
	CompareLessEqual
	// CompareEqual passes when the values are equal.
	CompareEqual
	// CompareGreaterEqual passes when the new value is greater than or equal to the stored one.
	CompareGreaterEqual
	// CompareGreater passes when the new value is greater than the stored one.
	CompareGreater
	// CompareNotEqual passes when the values differ.
	CompareNotEqual
)

// StencilOperation is applied to the stencil buffer after a test.
type StencilOperation int

const (
	StencilKeep StencilOperation = iota
	StencilZero
	StencilReplace
	StencilIncrement
	StencilDecrement
	StencilIncrementSaturation
	StencilDecrementSaturation
	StencilInvert
)

// CullMode selects which triangle winding is discarded.
type CullMode int

const (
	CullNone CullMode = iota
	CullClockwiseFace
	CullCounterClockwiseFace
)

// FillMode selects how triangles are rasterized.
type FillMode int

const (
	FillSolid FillMode = iota
	FillWireFrame
)

// TextureFilter selects minification, magnification and mip filtering.
type TextureFilter int

const (
	TextureFilterLinear TextureFilter = iota
	TextureFilterPoint
	TextureFilterAnisotropic
	TextureFilterLinearMipPoint
	TextureFilterPointMipLinear
	TextureFilterMinLinearMagPointMipLinear
	TextureFilterMinLinearMagPointMipPoint
	TextureFilterMinPointMagLinearMipLinear
	TextureFilterMinPointMagLinearMipPoint
)

// Split returns whether minification, magnification and mip filtering are
// linear for f. Anisotropic counts as linear everywhere.
func (f TextureFilter) Split() (minLinear, magLinear, mipLinear bool) {
	switch f {
	case TextureFilterLinear, TextureFilterAnisotropic:
		return true, true, true
	case TextureFilterPoint:
		return false, false, false
	case TextureFilterLinearMipPoint:
		return true, true, false
	case TextureFilterPointMipLinear:
		return false, false, true
	case TextureFilterMinLinearMagPointMipLinear:
		return true, false, true
	case TextureFilterMinLinearMagPointMipPoint:
		return true, false, false
	case TextureFilterMinPointMagLinearMipLinear:
		return false, true, true
	case TextureFilterMinPointMagLinearMipPoint:
		return false, true, false
	}
	return true, true, true
}

// TextureAddressMode selects how coordinates outside [0, 1] are resolved.
type TextureAddressMode int

const (
	TextureAddressWrap TextureAddressMode = iota
	TextureAddressClamp
	TextureAddressMirror
	TextureAddressBorder
)

// BlendDesc configures colour blending.
type BlendDesc struct {
	ColorSourceBlend      Blend
	ColorDestinationBlend Blend
	ColorBlendFunction    BlendFunction
	AlphaSourceBlend      Blend
	AlphaDestinationBlend Blend
	AlphaBlendFunction    BlendFunction
	ColorWriteChannels    ColorWriteChannels
	BlendFactor           Color
	MultiSampleMask       uint32
}

// DefaultBlendDesc returns opaque blending with all channels written.
func DefaultBlendDesc() BlendDesc {
	return BlendDesc{
		ColorSourceBlend:      BlendOne,
		ColorDestinationBlend: BlendZero,
		AlphaSourceBlend:      BlendOne,
		AlphaDestinationBlend: BlendZero,
		ColorWriteChannels:    ColorWriteAll,
		BlendFactor:           White,
		MultiSampleMask:       0xffffffff,
	}
}

// Enabled reports whether the description needs blending at all.
func (d BlendDesc) Enabled() bool {
	return !(d.ColorSourceBlend == BlendOne && d.ColorDestinationBlend == BlendZero &&
		d.AlphaSourceBlend == BlendOne && d.AlphaDestinationBlend == BlendZero &&
		d.ColorBlendFunction == BlendFunctionAdd && d.AlphaBlendFunction == BlendFunctionAdd)
}

// DepthStencilDesc configures depth and stencil testing.
type DepthStencilDesc struct {
	DepthBufferEnable      bool
	DepthBufferWriteEnable bool
	DepthBufferFunction    CompareFunction

	StencilEnable          bool
	StencilFunction        CompareFunction
	StencilPass            StencilOperation
	StencilFail            StencilOperation
	StencilDepthBufferFail StencilOperation

	TwoSidedStencilMode                bool
	CounterClockwiseStencilFunction    CompareFunction
	CounterClockwiseStencilPass        StencilOperation
	CounterClockwiseStencilFail        StencilOperation
	CounterClockwiseStencilDepthBuffer StencilOperation

	StencilMask      uint32
	StencilWriteMask uint32
	ReferenceStencil int
}

// DefaultDepthStencilDesc returns depth test and write enabled with
// LessEqual and stencil disabled.
func DefaultDepthStencilDesc() DepthStencilDesc {
	return DepthStencilDesc{
		DepthBufferEnable:      true,
		DepthBufferWriteEnable: true,
		DepthBufferFunction:    CompareLessEqual,
		StencilFunction:        CompareAlways,
		StencilMask:            0xffffffff,
		StencilWriteMask:       0xffffffff,
	}
}

// RasterizerDesc configures triangle setup.
type RasterizerDesc struct {
	CullMode             CullMode
	FillMode             FillMode
	DepthBias            float32
	SlopeScaleDepthBias  float32
	ScissorTestEnable    bool
	MultiSampleAntiAlias bool
	DepthClipEnable      bool
}

// DefaultRasterizerDesc culls counter-clockwise faces.
func DefaultRasterizerDesc() RasterizerDesc {
	return RasterizerDesc{
		CullMode:             CullCounterClockwiseFace,
		MultiSampleAntiAlias: true,
		DepthClipEnable:      true,
	}
}

// SamplerDesc configures texture sampling.
type SamplerDesc struct {
	Filter             TextureFilter
	AddressU           TextureAddressMode
	AddressV           TextureAddressMode
	AddressW           TextureAddressMode
	BorderColor        Color
	MaxAnisotropy      int
	MaxMipLevel        int
	MipMapLODBias      float32
	ComparisonFunction CompareFunction
	// Comparison enables depth comparison sampling.
	Comparison bool
}

// DefaultSamplerDesc returns linear filtering with wrapping.
func DefaultSamplerDesc() SamplerDesc {
	return SamplerDesc{MaxAnisotropy: 4, ComparisonFunction: CompareNever}
}

// stateObject holds the description and per-device native objects shared by
// every state kind.
type stateObject[D comparable] struct {
	mu       sync.Mutex
	name     string
	desc     D
	readonly bool
	bound    bool
	native   map[*GraphicsDevice]nativeState
}

type nativeState struct {
	s   StateStrategy
	gen uint64
}

func (o *stateObject[D]) init(name string, desc D, readonly bool) {
	o.name = name
	o.desc = desc
	o.readonly = readonly
}

// Name returns the debug name of the state object.
func (o *stateObject[D]) Name() string { return o.name }

// Desc returns a copy of the description.
func (o *stateObject[D]) Desc() D {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.desc
}

// IsReadOnly reports whether the object is one of the immutable presets.
func (o *stateObject[D]) IsReadOnly() bool { return o.readonly }

// IsBound reports whether the object has been bound to a context and is
// therefore immutable.
func (o *stateObject[D]) IsBound() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.bound
}

// Update mutates the description. It fails with ErrReadOnly for presets and
// with ErrInvalidOperation once the object has been bound.
func (o *stateObject[D]) Update(fn func(*D)) error {
	if o.readonly {
		return ErrReadOnly
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.bound {
		return invalidOp("%s cannot be modified after it has been bound to a device", o.name)
	}
	fn(&o.desc)
	return nil
}

// strategy returns the native object of o for dev, creating it on first use
// and again after the device was recovered.
func (o *stateObject[D]) strategy(dev *GraphicsDevice, create func(D) (StateStrategy, error)) (StateStrategy, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	// Objects from an earlier generation died with the native device.
	if n, ok := o.native[dev]; ok && n.gen == dev.generation {
		return n.s, nil
	}
	s, err := create(o.desc)
	if err != nil {
		return nil, err
	}
	if o.native == nil {
		o.native = make(map[*GraphicsDevice]nativeState)
	}
	if _, seen := o.native[dev]; !seen {
		dev.trackState(o)
	}
	o.native[dev] = nativeState{s: s, gen: dev.generation}
	o.bound = true
	return s, nil
}

// releaseDevice drops the native object created for dev.
func (o *stateObject[D]) releaseDevice(dev *GraphicsDevice) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if n, ok := o.native[dev]; ok {
		if n.s != nil && n.gen == dev.generation {
			n.s.Dispose()
		}
		delete(o.native, dev)
	}
}

// BlendState describes colour blending.
type BlendState struct{ stateObject[BlendDesc] }

// DepthStencilState describes depth and stencil testing.
type DepthStencilState struct{ stateObject[DepthStencilDesc] }

// RasterizerState describes triangle setup.
type RasterizerState struct{ stateObject[RasterizerDesc] }

// SamplerState describes texture sampling.
type SamplerState struct{ stateObject[SamplerDesc] }

// NewBlendState returns a mutable blend state.
func NewBlendState(desc BlendDesc) *BlendState {
	s := &BlendState{}
	s.init("BlendState", desc, false)
	return s
}

// NewDepthStencilState returns a mutable depth-stencil state.
func NewDepthStencilState(desc DepthStencilDesc) *DepthStencilState {
	s := &DepthStencilState{}
	s.init("DepthStencilState", desc, false)
	return s
}

// NewRasterizerState returns a mutable rasterizer state.
func NewRasterizerState(desc RasterizerDesc) *RasterizerState {
	s := &RasterizerState{}
	s.init("RasterizerState", desc, false)
	return s
}

// NewSamplerState returns a mutable sampler state.
func NewSamplerState(desc SamplerDesc) *SamplerState {
	s := &SamplerState{}
	s.init("SamplerState", desc, false)
	return s
}

func readonlyBlend(name string, src, dst Blend) *BlendState {
	d := DefaultBlendDesc()
	d.ColorSourceBlend, d.AlphaSourceBlend = src, src
	d.ColorDestinationBlend, d.AlphaDestinationBlend = dst, dst
	s := &BlendState{}
	s.init(name, d, true)
	return s
}

func readonlyDepth(name string, enable, write bool) *DepthStencilState {
	d := DefaultDepthStencilDesc()
	d.DepthBufferEnable, d.DepthBufferWriteEnable = enable, write
	s := &DepthStencilState{}
	s.init(name, d, true)
	return s
}

func readonlyRasterizer(name string, cull CullMode) *RasterizerState {
	d := DefaultRasterizerDesc()
	d.CullMode = cull
	s := &RasterizerState{}
	s.init(name, d, true)
	return s
}

func readonlySampler(name string, filter TextureFilter, mode TextureAddressMode) *SamplerState {
	d := DefaultSamplerDesc()
	d.Filter = filter
	d.AddressU, d.AddressV, d.AddressW = mode, mode, mode
	s := &SamplerState{}
	s.init(name, d, true)
	return s
}

// Readonly presets.
var (
	BlendOpaque           = readonlyBlend("BlendState.Opaque", BlendOne, BlendZero)
	BlendAlphaBlend       = readonlyBlend("BlendState.AlphaBlend", BlendOne, BlendInverseSourceAlpha)
	BlendAdditive         = readonlyBlend("BlendState.Additive", BlendSourceAlpha, BlendOne)
	BlendNonPremultiplied = readonlyBlend("BlendState.NonPremultiplied", BlendSourceAlpha, BlendInverseSourceAlpha)

	DepthStencilDefault   = readonlyDepth("DepthStencilState.Default", true, true)
	DepthStencilDepthRead = readonlyDepth("DepthStencilState.DepthRead", true, false)
	DepthStencilNone      = readonlyDepth("DepthStencilState.None", false, false)

	RasterizerCullNone             = readonlyRasterizer("RasterizerState.CullNone", CullNone)
	RasterizerCullClockwise        = readonlyRasterizer("RasterizerState.CullClockwise", CullClockwiseFace)
	RasterizerCullCounterClockwise = readonlyRasterizer("RasterizerState.CullCounterClockwise", CullCounterClockwiseFace)

	SamplerLinearClamp      = readonlySampler("SamplerState.LinearClamp", TextureFilterLinear, TextureAddressClamp)
	SamplerLinearWrap       = readonlySampler("SamplerState.LinearWrap", TextureFilterLinear, TextureAddressWrap)
	SamplerPointClamp       = readonlySampler("SamplerState.PointClamp", TextureFilterPoint, TextureAddressClamp)
	SamplerPointWrap        = readonlySampler("SamplerState.PointWrap", TextureFilterPoint, TextureAddressWrap)
	SamplerAnisotropicClamp = readonlySampler("SamplerState.AnisotropicClamp", TextureFilterAnisotropic, TextureAddressClamp)
	SamplerAnisotropicWrap  = readonlySampler("SamplerState.AnisotropicWrap", TextureFilterAnisotropic, TextureAddressWrap)
)
