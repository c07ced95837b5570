package gfx

// RenderTarget2D is a 2D texture that can be drawn into. It optionally
// carries a depth-stencil buffer and multisample storage.
type RenderTarget2D struct {
	Texture2D
	depthFormat DepthFormat
	multiSample int
	usage       RenderTargetUsage
	mipmap      bool
	// scale is non-zero for targets sized relative to the back buffer.
	scale   float32
	surface RenderTargetStrategy
}

func (rt *RenderTarget2D) texture() *Texture {
	if rt == nil {
		return nil
	}
	return &rt.Texture
}

func (rt *RenderTarget2D) texture2D() *Texture2D {
	if rt == nil {
		return nil
	}
	return &rt.Texture2D
}

// NewRenderTarget2D creates a render target of a fixed size. A
// multiSampleCount the device cannot honour is lowered to the nearest
// supported power of two.
func NewRenderTarget2D(dev *GraphicsDevice, width, height int, mipmap bool, format SurfaceFormat,
	depthFormat DepthFormat, multiSampleCount int, usage RenderTargetUsage) (*RenderTarget2D, error) {
	return newRenderTarget2D(dev, width, height, 0, mipmap, format, depthFormat, multiSampleCount, usage)
}

// NewBackBufferRenderTarget2D creates a render target sized to scale times
// the back buffer. Device Reset resizes it to follow the back buffer; its
// contents are lost when that happens.
func NewBackBufferRenderTarget2D(dev *GraphicsDevice, scale float32, mipmap bool, format SurfaceFormat,
	depthFormat DepthFormat, multiSampleCount int, usage RenderTargetUsage) (*RenderTarget2D, error) {
	if dev == nil {
		return nil, argError("graphicsDevice", "must not be nil")
	}
	if scale <= 0 {
		return nil, argError("scale", "must be greater than zero, got %g", scale)
	}
	w, h := scaledSize(dev.pp, scale)
	return newRenderTarget2D(dev, w, h, scale, mipmap, format, depthFormat, multiSampleCount, usage)
}

func newRenderTarget2D(dev *GraphicsDevice, width, height int, scale float32, mipmap bool, format SurfaceFormat,
	depthFormat DepthFormat, multiSampleCount int, usage RenderTargetUsage) (*RenderTarget2D, error) {
	desc, err := texture2DDesc(dev, width, height, mipmap, format, 1)
	if err != nil {
		return nil, err
	}
	if format.IsCompressed() {
		return nil, notSupported("format", "render targets cannot use the compressed %s format", format)
	}
	if depthFormat < DepthFormatNone || depthFormat > DepthFormatDepth24Stencil8 {
		return nil, argError("depthFormat", "unknown depth format %d", int(depthFormat))
	}
	if multiSampleCount < 0 {
		return nil, argError("multiSampleCount", "must not be negative, got %d", multiSampleCount)
	}
	rt := &RenderTarget2D{
		depthFormat: depthFormat,
		multiSample: normalizedMultiSample(multiSampleCount, dev.caps.MaxMultiSampleCount),
		usage:       usage,
		mipmap:      mipmap,
		scale:       scale,
	}
	rt.Texture2D.target = rt
	rt.create = rt.createNative
	if err := rt.init(dev, desc, "RenderTarget2D", rt); err != nil {
		return nil, err
	}
	if scale > 0 {
		dev.relative[rt] = struct{}{}
	}
	return rt, nil
}

func (rt *RenderTarget2D) createNative(dev *GraphicsDevice) (TextureStrategy, error) {
	s, err := dev.strategy.CreateRenderTarget(RenderTargetDesc{
		TextureDesc:      rt.desc,
		DepthFormat:      rt.depthFormat,
		MultiSampleCount: rt.multiSample,
		Usage:            rt.usage,
	})
	if err != nil {
		return nil, err
	}
	rt.surface = s
	return s, nil
}

func (rt *RenderTarget2D) DepthStencilFormat() DepthFormat      { return rt.depthFormat }
func (rt *RenderTarget2D) MultiSampleCount() int                { return rt.multiSample }
func (rt *RenderTarget2D) RenderTargetUsage() RenderTargetUsage { return rt.usage }

// Scale returns the back-buffer scale, or 0 for a fixed-size target.
func (rt *RenderTarget2D) Scale() float32 { return rt.scale }

// ContentLost reports whether the contents were discarded by a device loss
// or a back-buffer resize and have not been redrawn or rewritten since.
func (rt *RenderTarget2D) ContentLost() bool { return rt.IsContentLost() }

func (rt *RenderTarget2D) renderNative() (RenderTargetStrategy, error) {
	if _, err := rt.native(); err != nil {
		return nil, err
	}
	// Drawing into the target produces fresh contents.
	rt.contentLost = false
	return rt.surface, nil
}

// resolve makes rendered content visible to sampling. Single-sampled
// targets without mips have nothing to resolve.
func (rt *RenderTarget2D) resolve() error {
	if rt.multiSample == 0 && rt.desc.LevelCount == 1 {
		return nil
	}
	if _, err := rt.native(); err != nil {
		return err
	}
	if err := rt.surface.Resolve(); err != nil {
		return rt.device.wrap("resolve render target", err)
	}
	return nil
}

// prepareRead finishes pending rendering before GetData.
func (rt *RenderTarget2D) prepareRead() error {
	if err := rt.device.ctx.resolvePending(rt); err != nil {
		return err
	}
	return rt.device.ctx.Flush()
}

// checkResize validates the size the target takes for pp against the
// limits its creation was checked against.
func (rt *RenderTarget2D) checkResize(pp PresentationParameters) error {
	w, h := scaledSize(pp, rt.scale)
	dev := rt.device
	profile := dev.profile
	limit := profile.MaxTextureSize()
	if c := dev.caps.MaxTextureSize; c > 0 && c < limit {
		limit = c
	}
	if w > limit || h > limit {
		param := "BackBufferWidth"
		if w <= limit {
			param = "BackBufferHeight"
		}
		return notSupported(param, "%s profile supports a maximum RenderTarget2D size of %d, a %g scale back-buffer target needs %dx%d",
			profile, limit, rt.scale, w, h)
	}
	pow2 := isPowerOfTwo(w) && isPowerOfTwo(h)
	if rt.mipmap && !pow2 && (profile == Reach || !dev.caps.SupportsNonPowerOfTwo) {
		return notSupported("BackBufferWidth", "%s profile on this device requires mipmapped render targets to be powers of two, got %dx%d",
			profile, w, h)
	}
	return nil
}

// resizeToBackBuffer recreates a back-buffer-relative target at the current
// back-buffer size. The old native object is released only once the new
// one exists, so a failure leaves the target usable at its previous size.
func (rt *RenderTarget2D) resizeToBackBuffer() error {
	w, h := scaledSize(rt.device.pp, rt.scale)
	if w == rt.desc.Width && h == rt.desc.Height {
		return nil
	}
	old, oldSurface, oldDesc := rt.strategy, rt.surface, rt.desc
	oldCurrent := rt.current()
	rt.desc.Width, rt.desc.Height = w, h
	if rt.mipmap {
		rt.desc.LevelCount = CalculateMipLevels(w, h, 0)
	}
	if _, err := rt.createNative(rt.device); err != nil {
		rt.desc, rt.surface = oldDesc, oldSurface
		return rt.device.wrap("resize render target", err)
	}
	if old != nil && oldCurrent {
		old.Dispose()
	}
	rt.strategy = rt.surface
	rt.recreated()
	rt.device.ctx.targetResized(rt)
	rt.device.log.Debug("gfx: render target resized", "name", rt.name, "width", w, "height", h)
	return nil
}

func scaledSize(pp PresentationParameters, scale float32) (int, int) {
	w := max(int(float32(pp.BackBufferWidth)*scale), 1)
	h := max(int(float32(pp.BackBufferHeight)*scale), 1)
	return w, h
}
