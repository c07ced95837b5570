package gl

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/gfx"
)

// device implements gfx.DeviceStrategy on one GL context.
type device struct {
	backend *Backend
	desc    gfx.DeviceDesc
	log     *slog.Logger

	surface Surface
	f       *EntryPoints
	version Version
	exts    Extensions
	caps    gfx.GraphicsCapabilities
	state   glState
	ctx     *glContext
	pp      gfx.PresentationParameters

	// gen identifies the native context. Objects created under an older
	// generation died with their context and are never deleted.
	gen  uint64
	lost atomic.Bool

	programs map[programKey]*program
	// scratchFBO reads textures back when GetTexImage is missing.
	scratchFBO Object
}

func newDevice(b *Backend, desc gfx.DeviceDesc) (*device, error) {
	d := &device{
		backend: b,
		desc:    desc,
		log:     loggerFor(desc),
		pp:      desc.Presentation,
	}
	if err := d.open(); err != nil {
		return nil, err
	}
	if limit := MaxProfile(d.version, d.caps.MaxTextureSize); desc.Profile > limit {
		d.surface.Release()
		return nil, fmt.Errorf("%w: %s supports profiles up to %s, %s requested",
			gfx.ErrNotSupported, d.version, limit, desc.Profile)
	}
	d.ctx = newContext(d)
	d.log.Info("gl: device opened",
		"version", d.version.String(),
		"renderer", d.f.GetString(RENDERER),
		"instancing", d.caps.SupportsInstancing)
	return d, nil
}

// open creates the surface and loads everything derived from it.
func (d *device) open() error {
	d.desc.Presentation = d.pp
	s, err := d.backend.factory(d.desc)
	if err != nil {
		return err
	}
	f, err := LoadEntryPoints(s)
	if err != nil {
		s.Release()
		return d.backend.loadError(err)
	}
	version, err := ParseVersion(f.GetString(VERSION))
	if err != nil {
		s.Release()
		return err
	}
	d.surface, d.f, d.version = s, f, version
	d.exts = ParseExtensions(f.GetString(EXTENSIONS))
	d.caps = queryCapabilities(f, version, d.exts)
	d.state.reset()
	d.programs = make(map[programKey]*program)
	d.scratchFBO = 0
	d.gen++
	for _, name := range f.Missing {
		d.log.Warn("gl: optional entry point missing", "name", name)
	}
	if !d.caps.SupportsInstancing {
		d.log.Warn("gl: instanced drawing unavailable")
	}
	return nil
}

func (d *device) Capabilities() gfx.GraphicsCapabilities { return d.caps }

func (d *device) Context() gfx.ContextStrategy { return d.ctx }

func (d *device) ResetPresentation(pp gfx.PresentationParameters) error {
	if err := d.surface.Resize(pp.BackBufferWidth, pp.BackBufferHeight); err != nil {
		return err
	}
	d.pp = pp
	return nil
}

func (d *device) Present() error {
	if d.f.GetGraphicsResetStatus != nil {
		if status := d.f.GetGraphicsResetStatus(); status != NO_ERROR {
			d.reportLoss(status)
			return fmt.Errorf("%w: context reset (status 0x%04x)", gfx.ErrDeviceLost, uint32(status))
		}
	}
	return d.surface.SwapBuffers()
}

// reportLoss calls the loss handler once per lost context.
func (d *device) reportLoss(status Enum) {
	if !d.lost.CompareAndSwap(false, true) {
		return
	}
	d.log.Info("gl: context lost", "status", uint32(status))
	if d.desc.LossHandler != nil {
		d.desc.LossHandler()
	}
}

func (d *device) ReadBackBuffer(rect gfx.Rectangle, dst []byte) error {
	tf, err := lookupTextureFormat(d.pp.BackBufferFormat)
	if err != nil {
		return err
	}
	d.state.bindFramebuffer(d.f, FRAMEBUFFER, 0)
	y := d.pp.BackBufferHeight - rect.Y - rect.Height
	readPixelsFlipped(d.f, rect.X, y, rect.Width, rect.Height, tf, d.pp.BackBufferFormat.Size(), dst)
	return d.glError("read back buffer")
}

// readPixelsFlipped reads a bottom-up GL region into dst top row first.
func readPixelsFlipped(f *EntryPoints, x, y, w, h int, tf textureFormat, texel int, dst []byte) {
	f.PixelStorei(PACK_ALIGNMENT, 1)
	tmp := make([]byte, len(dst))
	f.ReadPixels(x, y, w, h, tf.format, tf.typ, tmp)
	stride := w * texel
	for row := 0; row < h; row++ {
		copy(dst[row*stride:(row+1)*stride], tmp[(h-1-row)*stride:(h-row)*stride])
	}
}

func (d *device) Restore() error {
	d.log.Info("gl: restoring context")
	d.surface.Release()
	d.surface = nil
	if err := d.open(); err != nil {
		return err
	}
	d.lost.Store(false)
	d.ctx.reset()
	return nil
}

func (d *device) Dispose() {
	if d.surface == nil {
		return
	}
	if !d.lost.Load() {
		for _, p := range d.programs {
			d.state.deleteProgram(d.f, p.obj)
		}
		if d.scratchFBO.Valid() {
			d.state.deleteFramebuffer(d.f, d.scratchFBO)
		}
		d.ctx.release()
	}
	d.surface.Release()
	d.surface = nil
}

// alive reports whether an object created under gen can still be used.
func (d *device) alive(gen uint64) bool {
	return d.surface != nil && gen == d.gen && !d.lost.Load()
}

// glError turns a pending GL error into a BackendError.
func (d *device) glError(op string) error {
	code := d.f.GetError()
	if code == NO_ERROR {
		return nil
	}
	// Drain the remaining flags so the next check starts clean.
	for n := 0; n < 8; n++ {
		if d.f.GetError() == NO_ERROR {
			break
		}
	}
	return &gfx.BackendError{Backend: d.backend.name, Op: op, Err: fmt.Errorf("GL error 0x%04x", uint32(code))}
}

func (d *device) CreateBlendState(desc gfx.BlendDesc) (gfx.StateStrategy, error) {
	return &blendState{desc: desc}, nil
}

func (d *device) CreateDepthStencilState(desc gfx.DepthStencilDesc) (gfx.StateStrategy, error) {
	return &depthStencilState{desc: desc}, nil
}

func (d *device) CreateRasterizerState(desc gfx.RasterizerDesc) (gfx.StateStrategy, error) {
	return &rasterizerState{desc: desc}, nil
}

func (d *device) CreateSamplerState(desc gfx.SamplerDesc) (gfx.StateStrategy, error) {
	return &samplerState{desc: desc}, nil
}

func (d *device) CreateOcclusionQuery() (gfx.QueryStrategy, error) {
	if !d.f.Queries() {
		return nil, fmt.Errorf("%w: occlusion queries need GL_ARB_occlusion_query", gfx.ErrNotSupported)
	}
	return &query{dev: d, gen: d.gen, obj: d.f.GenQuery()}, nil
}
