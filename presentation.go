package gfx

// PresentInterval selects how Present synchronizes with the display.
type PresentInterval int

const (
	// PresentIntervalDefault lets the backend choose; equivalent to One.
	PresentIntervalDefault PresentInterval = iota
	// PresentIntervalOne waits for one vertical retrace (vsync).
	PresentIntervalOne
	// PresentIntervalTwo waits for every second retrace.
	PresentIntervalTwo
	// PresentIntervalImmediate presents without waiting.
	PresentIntervalImmediate
)

func (p PresentInterval) String() string {
	switch p {
	case PresentIntervalDefault:
		return "Default"
	case PresentIntervalOne:
		return "One"
	case PresentIntervalTwo:
		return "Two"
	case PresentIntervalImmediate:
		return "Immediate"
	}
	return "PresentInterval(?)"
}

// RenderTargetUsage selects what happens to render target contents when the
// target is bound again.
type RenderTargetUsage int

const (
	RenderTargetUsageDiscardContents RenderTargetUsage = iota
	RenderTargetUsagePreserveContents
	RenderTargetUsagePlatformContents
)

// DisplayOrientation describes how the back buffer maps onto the screen.
type DisplayOrientation int

const (
	DisplayOrientationDefault DisplayOrientation = iota
	DisplayOrientationLandscapeLeft
	DisplayOrientationLandscapeRight
	DisplayOrientationPortrait
)

// PresentationParameters configures the back buffer and swap behaviour.
// It is a plain value: comparing two instances with == decides whether a
// Reset is needed at all.
type PresentationParameters struct {
	BackBufferWidth    int
	BackBufferHeight   int
	BackBufferFormat   SurfaceFormat
	DepthStencilFormat DepthFormat
	MultiSampleCount   int
	IsFullScreen       bool
	HardwareModeSwitch bool
	// DeviceWindowHandle is the native window the device presents into.
	// Zero selects an offscreen back buffer on backends that support it.
	DeviceWindowHandle   uintptr
	PresentationInterval PresentInterval
	DisplayOrientation   DisplayOrientation
	RenderTargetUsage    RenderTargetUsage
}

// Default back-buffer size used by DefaultPresentationParameters.
const (
	DefaultBackBufferWidth  = 800
	DefaultBackBufferHeight = 480
)

// DefaultPresentationParameters returns an 800x480 Color back buffer with a
// Depth24 depth buffer and default presentation interval.
func DefaultPresentationParameters() PresentationParameters {
	return PresentationParameters{
		BackBufferWidth:      DefaultBackBufferWidth,
		BackBufferHeight:     DefaultBackBufferHeight,
		BackBufferFormat:     SurfaceFormatColor,
		DepthStencilFormat:   DepthFormatDepth24,
		PresentationInterval: PresentIntervalDefault,
		HardwareModeSwitch:   true,
	}
}

// Bounds returns the back-buffer rectangle.
func (p PresentationParameters) Bounds() Rectangle {
	return Rectangle{Width: p.BackBufferWidth, Height: p.BackBufferHeight}
}

// Validate checks p against the limits of profile.
func (p PresentationParameters) Validate(profile GraphicsProfile) error {
	if p.BackBufferWidth <= 0 {
		return argError("BackBufferWidth", "must be greater than zero, got %d", p.BackBufferWidth)
	}
	if p.BackBufferHeight <= 0 {
		return argError("BackBufferHeight", "must be greater than zero, got %d", p.BackBufferHeight)
	}
	limit := profile.MaxTextureSize()
	if p.BackBufferWidth > limit || p.BackBufferHeight > limit {
		return notSupported("BackBufferWidth",
			"%s profile supports a maximum back buffer size of %d, got %dx%d",
			profile, limit, p.BackBufferWidth, p.BackBufferHeight)
	}
	if !p.BackBufferFormat.Valid() || p.BackBufferFormat.IsCompressed() {
		return notSupported("BackBufferFormat", "%s cannot be used as a back buffer format", p.BackBufferFormat)
	}
	if !profile.SupportsFormat(p.BackBufferFormat) {
		return notSupported("BackBufferFormat", "%s profile does not support the %s format", profile, p.BackBufferFormat)
	}
	if p.DepthStencilFormat < DepthFormatNone || p.DepthStencilFormat > DepthFormatDepth24Stencil8 {
		return argError("DepthStencilFormat", "invalid depth format %d", int(p.DepthStencilFormat))
	}
	if p.MultiSampleCount < 0 {
		return argError("MultiSampleCount", "must not be negative, got %d", p.MultiSampleCount)
	}
	if p.PresentationInterval < PresentIntervalDefault || p.PresentationInterval > PresentIntervalImmediate {
		return argError("PresentationInterval", "invalid interval %d", int(p.PresentationInterval))
	}
	return nil
}

// normalizedMultiSample clamps the requested count to a power of two no
// larger than maxCount. Counts below 2 disable multisampling.
func normalizedMultiSample(count, maxCount int) int {
	if count < 2 || maxCount < 2 {
		return 0
	}
	n := 2
	for n*2 <= count && n*2 <= maxCount {
		n *= 2
	}
	return n
}
