package gl

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gfx"
)

// scratchUnit is the texture unit used for uploads and readback. The
// context rebinds its own textures before every draw.
const scratchUnit = 0

type texture struct {
	dev    *device
	gen    uint64
	obj    Object
	target Enum
	desc   gfx.TextureDesc
	tf     textureFormat

	// sampler is the state last applied to the texture parameters.
	sampler    gfx.SamplerDesc
	hasSampler bool
}

func (d *device) CreateTexture(desc gfx.TextureDesc) (gfx.TextureStrategy, error) {
	return d.newTexture(desc)
}

func (d *device) newTexture(desc gfx.TextureDesc) (*texture, error) {
	tf, err := lookupTextureFormat(desc.Format)
	if err != nil {
		return nil, err
	}
	t := &texture{dev: d, gen: d.gen, desc: desc, tf: tf}
	switch {
	case desc.Kind == gfx.TextureKindCube:
		t.target = TEXTURE_CUBE_MAP
	case desc.Kind == gfx.TextureKind3D:
		t.target = TEXTURE_3D
	case desc.ArraySize > 1:
		t.target = TEXTURE_2D_ARRAY
	default:
		t.target = TEXTURE_2D
	}
	if (t.target == TEXTURE_3D || t.target == TEXTURE_2D_ARRAY) && d.f.TexImage3D == nil {
		return nil, fmt.Errorf("%w: %s textures need glTexImage3D", gfx.ErrNotSupported, kindName(t.target))
	}

	f := d.f
	t.obj = f.GenTexture()
	d.state.bindTexture(f, scratchUnit, t.target, t.obj)
	f.PixelStorei(UNPACK_ALIGNMENT, 1)
	for level := 0; level < desc.LevelCount; level++ {
		w, h, depth := max(1, desc.Width>>level), max(1, desc.Height>>level), max(1, desc.Depth>>level)
		switch t.target {
		case TEXTURE_2D:
			t.allocate2D(TEXTURE_2D, level, w, h)
		case TEXTURE_CUBE_MAP:
			for face := 0; face < 6; face++ {
				t.allocate2D(TEXTURE_CUBE_MAP_POSITIVE_X+Enum(face), level, w, h)
			}
		case TEXTURE_2D_ARRAY:
			t.allocate3D(level, w, h, desc.ArraySize)
		case TEXTURE_3D:
			t.allocate3D(level, w, h, depth)
		}
	}
	f.TexParameteri(t.target, TEXTURE_MAX_LEVEL, desc.LevelCount-1)
	// Incomplete mip chains sample as black; default to a filter that
	// never needs them until a sampler is applied.
	f.TexParameteri(t.target, TEXTURE_MIN_FILTER, int(LINEAR))
	if err := d.glError("create texture"); err != nil {
		d.state.deleteTexture(f, t.obj)
		return nil, err
	}
	d.log.Debug("gl: texture created", "target", kindName(t.target), "width", desc.Width,
		"height", desc.Height, "levels", desc.LevelCount, "format", desc.Format.String())
	return t, nil
}

func (t *texture) allocate2D(target Enum, level, w, h int) {
	f := t.dev.f
	if t.tf.compressed() {
		f.CompressedTexImage2D(target, level, t.tf.internal, w, h, make([]byte, levelBytes(t.desc.Format, w, h)))
		return
	}
	f.TexImage2D(target, level, t.tf.internal, w, h, t.tf.format, t.tf.typ, nil)
}

func (t *texture) allocate3D(level, w, h, depth int) {
	t.dev.f.TexImage3D(t.target, level, t.tf.internal, w, h, depth, t.tf.format, t.tf.typ, nil)
}

// levelBytes returns the byte size of one w x h image of format f.
func levelBytes(f gfx.SurfaceFormat, w, h int) int {
	switch f {
	case gfx.SurfaceFormatRgbPvrtc2Bpp, gfx.SurfaceFormatRgbaPvrtc2Bpp:
		return (max(w, 16)*max(h, 8)*2 + 7) / 8
	case gfx.SurfaceFormatRgbPvrtc4Bpp, gfx.SurfaceFormatRgbaPvrtc4Bpp:
		return (max(w, 8)*max(h, 8)*4 + 7) / 8
	}
	bw, bh := f.BlockSize()
	return (w + bw - 1) / bw * ((h + bh - 1) / bh) * f.Size()
}

func kindName(target Enum) string {
	switch target {
	case TEXTURE_3D:
		return "3D"
	case TEXTURE_2D_ARRAY:
		return "2D array"
	case TEXTURE_CUBE_MAP:
		return "cube"
	}
	return "2D"
}

func (t *texture) usable() error {
	if !t.dev.alive(t.gen) {
		return gfx.ErrDeviceLost
	}
	return nil
}

func (t *texture) SetData(r gfx.TextureRegion, data []byte) error {
	if err := t.usable(); err != nil {
		return err
	}
	d, f := t.dev, t.dev.f
	d.state.bindTexture(f, scratchUnit, t.target, t.obj)
	f.PixelStorei(UNPACK_ALIGNMENT, 1)
	switch t.target {
	case TEXTURE_2D, TEXTURE_CUBE_MAP:
		target := t.target
		if target == TEXTURE_CUBE_MAP {
			target = TEXTURE_CUBE_MAP_POSITIVE_X + Enum(r.Slice)
		}
		if t.tf.compressed() {
			f.CompressedTexSubImage2D(target, r.Level, r.X, r.Y, r.Width, r.Height, t.tf.internal, data)
		} else {
			f.TexSubImage2D(target, r.Level, r.X, r.Y, r.Width, r.Height, t.tf.format, t.tf.typ, data)
		}
	case TEXTURE_2D_ARRAY:
		if f.TexSubImage3D == nil || t.tf.compressed() {
			return fmt.Errorf("%w: updating 2D array textures of %s", gfx.ErrNotSupported, t.desc.Format)
		}
		f.TexSubImage3D(t.target, r.Level, r.X, r.Y, r.Slice, r.Width, r.Height, 1, t.tf.format, t.tf.typ, data)
	case TEXTURE_3D:
		if f.TexSubImage3D == nil || t.tf.compressed() {
			return fmt.Errorf("%w: updating 3D textures of %s", gfx.ErrNotSupported, t.desc.Format)
		}
		f.TexSubImage3D(t.target, r.Level, r.X, r.Y, r.Z, r.Width, r.Height, r.Depth, t.tf.format, t.tf.typ, data)
	}
	return d.glError("set texture data")
}

func (t *texture) GetData(r gfx.TextureRegion, data []byte) error {
	if err := t.usable(); err != nil {
		return err
	}
	d, f := t.dev, t.dev.f
	if t.tf.compressed() {
		return fmt.Errorf("%w: reading back compressed %s textures", gfx.ErrNotSupported, t.desc.Format)
	}
	if f.GetTexImage == nil {
		return t.readThroughFramebuffer(r, data)
	}

	w := max(1, t.desc.Width>>r.Level)
	h := max(1, t.desc.Height>>r.Level)
	layers := 1
	target := t.target
	switch t.target {
	case TEXTURE_CUBE_MAP:
		target = TEXTURE_CUBE_MAP_POSITIVE_X + Enum(r.Slice)
	case TEXTURE_2D_ARRAY:
		layers = t.desc.ArraySize
	case TEXTURE_3D:
		layers = max(1, t.desc.Depth>>r.Level)
	}
	texel := t.desc.Format.Size()
	full := make([]byte, w*h*layers*texel)
	d.state.bindTexture(f, scratchUnit, t.target, t.obj)
	f.PixelStorei(PACK_ALIGNMENT, 1)
	f.GetTexImage(target, r.Level, t.tf.format, t.tf.typ, full)
	if err := d.glError("get texture data"); err != nil {
		return err
	}

	z0, depth := r.Z, max(1, r.Depth)
	if t.target == TEXTURE_2D_ARRAY {
		z0, depth = r.Slice, 1
	}
	row := r.Width * texel
	n := 0
	for z := z0; z < z0+depth; z++ {
		for y := r.Y; y < r.Y+r.Height; y++ {
			src := ((z*h+y)*w + r.X) * texel
			copy(data[n:n+row], full[src:src+row])
			n += row
		}
	}
	return nil
}

// readThroughFramebuffer reads a 2D region by attaching the texture to a
// scratch framebuffer. Texture rows are stored top row first, so no flip is
// needed.
func (t *texture) readThroughFramebuffer(r gfx.TextureRegion, data []byte) error {
	d, f := t.dev, t.dev.f
	if t.target == TEXTURE_3D || t.target == TEXTURE_2D_ARRAY {
		return fmt.Errorf("%w: reading %s textures needs glGetTexImage", gfx.ErrNotSupported, kindName(t.target))
	}
	if !d.scratchFBO.Valid() {
		d.scratchFBO = f.GenFramebuffer()
	}
	target := t.target
	if target == TEXTURE_CUBE_MAP {
		target = TEXTURE_CUBE_MAP_POSITIVE_X + Enum(r.Slice)
	}
	d.state.bindFramebuffer(f, FRAMEBUFFER, d.scratchFBO)
	f.FramebufferTexture2D(FRAMEBUFFER, COLOR_ATTACHMENT0, target, t.obj, r.Level)
	if status := f.CheckFramebufferStatus(FRAMEBUFFER); status != FRAMEBUFFER_COMPLETE {
		return fmt.Errorf("%w: %s textures cannot be read back (framebuffer status 0x%04x)",
			gfx.ErrNotSupported, t.desc.Format, uint32(status))
	}
	f.PixelStorei(PACK_ALIGNMENT, 1)
	f.ReadPixels(r.X, r.Y, r.Width, r.Height, t.tf.format, t.tf.typ, data)
	f.FramebufferTexture2D(FRAMEBUFFER, COLOR_ATTACHMENT0, target, 0, 0)
	return d.glError("read texture")
}

func (t *texture) Dispose() {
	if t.obj.Valid() && t.dev.alive(t.gen) {
		t.dev.state.deleteTexture(t.dev.f, t.obj)
	}
	t.obj = 0
}

// renderTarget is a 2D texture with a framebuffer. Multisampled targets
// render into renderbuffers that Resolve blits into the texture.
type renderTarget struct {
	*texture
	rtDesc  gfx.RenderTargetDesc
	fbo     Object
	depth   Object
	msaaFBO Object
	msaaCol Object
	msaaDep Object
	samples int
}

func (d *device) CreateRenderTarget(desc gfx.RenderTargetDesc) (gfx.RenderTargetStrategy, error) {
	if desc.Kind != gfx.TextureKind2D || desc.ArraySize > 1 {
		return nil, fmt.Errorf("%w: only 2D render targets are supported", gfx.ErrNotSupported)
	}
	if desc.Format.IsCompressed() {
		return nil, fmt.Errorf("%w: %s is not renderable", gfx.ErrNotSupported, desc.Format)
	}
	tex, err := d.newTexture(desc.TextureDesc)
	if err != nil {
		return nil, err
	}
	rt := &renderTarget{texture: tex, rtDesc: desc}
	if err := rt.build(); err != nil {
		rt.Dispose()
		return nil, err
	}
	d.log.Debug("gl: render target created", "width", desc.Width, "height", desc.Height,
		"depth", desc.DepthFormat.String(), "samples", rt.samples)
	return rt, nil
}

func (rt *renderTarget) build() error {
	d, f := rt.dev, rt.dev.f
	desc := rt.rtDesc
	w, h := desc.Width, desc.Height
	rt.fbo = f.GenFramebuffer()
	d.state.bindFramebuffer(f, FRAMEBUFFER, rt.fbo)
	f.FramebufferTexture2D(FRAMEBUFFER, COLOR_ATTACHMENT0, TEXTURE_2D, rt.obj, 0)

	if desc.MultiSampleCount > 1 && f.RenderbufferStorageMultisample != nil && f.BlitFramebuffer != nil {
		rt.samples = min(desc.MultiSampleCount, max(1, d.caps.MaxMultiSampleCount))
	}
	depthInternal, depthAttach := depthFormat(desc.DepthFormat)
	if rt.samples == 0 && depthInternal != 0 {
		rt.depth = f.GenRenderbuffer()
		d.state.bindRenderbuffer(f, rt.depth)
		f.RenderbufferStorage(RENDERBUFFER, depthInternal, w, h)
		f.FramebufferRenderbuffer(FRAMEBUFFER, depthAttach, RENDERBUFFER, rt.depth)
	}
	if err := d.checkFramebuffer("render target"); err != nil {
		return err
	}
	if rt.samples == 0 {
		return d.glError("create render target")
	}

	rt.msaaFBO = f.GenFramebuffer()
	d.state.bindFramebuffer(f, FRAMEBUFFER, rt.msaaFBO)
	rt.msaaCol = f.GenRenderbuffer()
	d.state.bindRenderbuffer(f, rt.msaaCol)
	f.RenderbufferStorageMultisample(RENDERBUFFER, rt.samples, rt.tf.internal, w, h)
	f.FramebufferRenderbuffer(FRAMEBUFFER, COLOR_ATTACHMENT0, RENDERBUFFER, rt.msaaCol)
	if depthInternal != 0 {
		rt.msaaDep = f.GenRenderbuffer()
		d.state.bindRenderbuffer(f, rt.msaaDep)
		f.RenderbufferStorageMultisample(RENDERBUFFER, rt.samples, depthInternal, w, h)
		f.FramebufferRenderbuffer(FRAMEBUFFER, depthAttach, RENDERBUFFER, rt.msaaDep)
	}
	if err := d.checkFramebuffer("multisample render target"); err != nil {
		return err
	}
	return d.glError("create render target")
}

func (d *device) checkFramebuffer(what string) error {
	if status := d.f.CheckFramebufferStatus(FRAMEBUFFER); status != FRAMEBUFFER_COMPLETE {
		return &gfx.BackendError{Backend: d.backend.name, Op: "create " + what,
			Err: fmt.Errorf("framebuffer incomplete (status 0x%04x)", uint32(status))}
	}
	return nil
}

// drawFBO returns the framebuffer draws go to.
func (rt *renderTarget) drawFBO() Object {
	if rt.msaaFBO.Valid() {
		return rt.msaaFBO
	}
	return rt.fbo
}

func (rt *renderTarget) Resolve() error {
	if err := rt.usable(); err != nil {
		return err
	}
	d, f := rt.dev, rt.dev.f
	if rt.msaaFBO.Valid() {
		w, h := rt.desc.Width, rt.desc.Height
		d.state.bindFramebuffer(f, READ_FRAMEBUFFER, rt.msaaFBO)
		d.state.bindFramebuffer(f, DRAW_FRAMEBUFFER, rt.fbo)
		f.BlitFramebuffer(0, 0, w, h, 0, 0, w, h, COLOR_BUFFER_BIT, NEAREST)
	}
	if rt.desc.LevelCount > 1 {
		d.state.bindTexture(f, scratchUnit, rt.target, rt.obj)
		f.GenerateMipmap(rt.target)
	}
	return d.glError("resolve render target")
}

func (rt *renderTarget) Dispose() {
	d := rt.dev
	if d.alive(rt.gen) {
		for _, fbo := range []Object{rt.fbo, rt.msaaFBO} {
			if fbo.Valid() {
				d.state.deleteFramebuffer(d.f, fbo)
			}
		}
		for _, rb := range []Object{rt.depth, rt.msaaCol, rt.msaaDep} {
			if rb.Valid() {
				d.state.deleteRenderbuffer(d.f, rb)
			}
		}
	}
	rt.fbo, rt.msaaFBO, rt.depth, rt.msaaCol, rt.msaaDep = 0, 0, 0, 0, 0
	rt.texture.Dispose()
}

type buffer struct {
	dev    *device
	gen    uint64
	obj    Object
	target Enum
	size   int
	usage  Enum
}

func (d *device) CreateBuffer(desc gfx.BufferDesc) (gfx.BufferStrategy, error) {
	b := &buffer{dev: d, gen: d.gen, target: ARRAY_BUFFER, size: desc.Size, usage: STATIC_DRAW}
	if desc.Kind == gfx.BufferKindIndex {
		b.target = ELEMENT_ARRAY_BUFFER
	}
	if desc.Dynamic {
		b.usage = DYNAMIC_DRAW
	}
	b.obj = d.f.GenBuffer()
	d.state.bindBuffer(d.f, b.target, b.obj)
	d.f.BufferData(b.target, b.size, nil, b.usage)
	if err := d.glError("create buffer"); err != nil {
		d.state.deleteBuffer(d.f, b.obj)
		return nil, err
	}
	return b, nil
}

func (b *buffer) SetData(offset int, data []byte, options gfx.SetDataOptions) error {
	if !b.dev.alive(b.gen) {
		return gfx.ErrDeviceLost
	}
	d, f := b.dev, b.dev.f
	d.state.bindBuffer(f, b.target, b.obj)
	if options == gfx.SetDataDiscard {
		// Orphan the old storage so draws in flight keep theirs.
		f.BufferData(b.target, b.size, nil, b.usage)
	}
	f.BufferSubData(b.target, offset, data)
	return d.glError("set buffer data")
}

func (b *buffer) GetData(offset int, data []byte) error {
	if !b.dev.alive(b.gen) {
		return gfx.ErrDeviceLost
	}
	d, f := b.dev, b.dev.f
	if f.GetBufferSubData == nil {
		return fmt.Errorf("%w: reading buffers needs glGetBufferSubData", gfx.ErrNotSupported)
	}
	d.state.bindBuffer(f, b.target, b.obj)
	f.GetBufferSubData(b.target, offset, data)
	return d.glError("get buffer data")
}

func (b *buffer) Dispose() {
	if b.obj.Valid() && b.dev.alive(b.gen) {
		b.dev.state.deleteBuffer(b.dev.f, b.obj)
	}
	b.obj = 0
}

// constantBuffer holds the vec4 array uploaded to uniform arrays. GL has no
// native object for it, so it survives context loss unchanged.
type constantBuffer struct {
	name    string
	vectors []float32
	version uint64
}

func (d *device) CreateConstantBuffer(desc gfx.ConstantBufferDesc) (gfx.ConstantBufferStrategy, error) {
	n := (desc.Size + 15) / 16
	return &constantBuffer{name: desc.Name, vectors: make([]float32, n*4)}, nil
}

func (c *constantBuffer) Upload(data []byte) error {
	for i := range c.vectors {
		if 4*i+4 > len(data) {
			c.vectors[i] = 0
			continue
		}
		c.vectors[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	c.version++
	return nil
}

func (c *constantBuffer) Dispose() {}
