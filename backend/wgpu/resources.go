package wgpu

import (
	"unsafe"

	"github.com/gogpu/gfx"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

type texture struct {
	dev    *device
	gen    uint64
	desc   gfx.TextureDesc
	format gputypes.TextureFormat
	tex    hal.Texture
	// view covers every level and layer; it is what shaders sample.
	view    hal.TextureView
	viewDim gputypes.TextureViewDimension
	// state is the usage the texture was last transitioned to.
	state gputypes.TextureUsage
	// used is the recording serial of the last draw sampling the texture.
	used uint64
}

func (d *device) CreateTexture(desc gfx.TextureDesc) (gfx.TextureStrategy, error) {
	if err := d.usable(d.gen); err != nil {
		return nil, err
	}
	return d.newTexture("gfx_texture", desc, 0)
}

func (d *device) newTexture(label string, desc gfx.TextureDesc, usage gputypes.TextureUsage) (*texture, error) {
	format, err := lookupTextureFormat(desc.Format)
	if err != nil {
		return nil, err
	}
	t := &texture{dev: d, gen: d.gen, desc: desc, format: format}
	size := hal.Extent3D{Width: uint32(desc.Width), Height: uint32(desc.Height), DepthOrArrayLayers: 1}
	dim := gputypes.TextureDimension2D
	switch {
	case desc.Kind == gfx.TextureKindCube:
		size.DepthOrArrayLayers = 6
		t.viewDim = gputypes.TextureViewDimensionCube
	case desc.Kind == gfx.TextureKind3D:
		size.DepthOrArrayLayers = uint32(max(1, desc.Depth))
		dim = gputypes.TextureDimension3D
		t.viewDim = gputypes.TextureViewDimension3D
	case desc.ArraySize > 1:
		size.DepthOrArrayLayers = uint32(desc.ArraySize)
		t.viewDim = gputypes.TextureViewDimension2DArray
	default:
		t.viewDim = gputypes.TextureViewDimension2D
	}
	dev := d.hw.device
	t.tex, err = dev.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          size,
		MipLevelCount: uint32(max(1, desc.LevelCount)),
		SampleCount:   1,
		Dimension:     dim,
		Format:        format,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst | gputypes.TextureUsageCopySrc | usage,
	})
	if err != nil {
		return nil, d.halError("create texture", err)
	}
	t.view, err = dev.CreateTextureView(t.tex, &hal.TextureViewDescriptor{
		Label:           label + "_view",
		Format:          format,
		Dimension:       t.viewDim,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   uint32(max(1, desc.LevelCount)),
		ArrayLayerCount: layerCount(t.viewDim, size.DepthOrArrayLayers),
	})
	if err != nil {
		dev.DestroyTexture(t.tex)
		return nil, d.halError("create texture view", err)
	}
	d.log.Debug("wgpu: texture created", "kind", t.viewDim, "width", desc.Width,
		"height", desc.Height, "levels", desc.LevelCount, "format", desc.Format.String())
	return t, nil
}

// layerCount returns the array layers a view of dim covers. 3D views have
// a single layer.
func layerCount(dim gputypes.TextureViewDimension, layers uint32) uint32 {
	if dim == gputypes.TextureViewDimension3D {
		return 1
	}
	return layers
}

// origin maps a region to the copy origin and extent of its level.
func (t *texture) origin(r gfx.TextureRegion) (hal.Origin3D, hal.Extent3D) {
	o := hal.Origin3D{X: uint32(r.X), Y: uint32(r.Y), Z: uint32(r.Slice)}
	e := hal.Extent3D{Width: uint32(r.Width), Height: uint32(r.Height), DepthOrArrayLayers: 1}
	if t.desc.Kind == gfx.TextureKind3D {
		o.Z = uint32(r.Z)
		e.DepthOrArrayLayers = uint32(max(1, r.Depth))
	}
	return o, e
}

func (t *texture) SetData(r gfx.TextureRegion, data []byte) error {
	d := t.dev
	if err := d.usable(t.gen); err != nil {
		return err
	}
	// The queue applies writes before recorded commands run.
	if d.ctx.using(t.used) {
		if err := d.ctx.submit(); err != nil {
			return err
		}
	}
	o, e := t.origin(r)
	texel := t.desc.Format.Size()
	err := d.hw.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: t.tex, MipLevel: uint32(r.Level), Origin: o, Aspect: gputypes.TextureAspectAll},
		data,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: uint32(r.Width * texel), RowsPerImage: uint32(r.Height)},
		&e,
	)
	if err != nil {
		return d.halError("write texture", err)
	}
	t.state = gputypes.TextureUsageCopyDst
	return nil
}

func (t *texture) GetData(r gfx.TextureRegion, data []byte) error {
	if err := t.dev.usable(t.gen); err != nil {
		return err
	}
	if err := t.dev.ctx.submit(); err != nil {
		return err
	}
	return t.read(r, data)
}

// read copies r into data through a staging buffer. Rows of the staging
// buffer are padded to the copy alignment and stripped afterwards.
func (t *texture) read(r gfx.TextureRegion, data []byte) error {
	d := t.dev
	dev := d.hw.device
	o, e := t.origin(r)
	rowBytes := r.Width * t.desc.Format.Size()
	pitch := alignedRow(rowBytes)
	images := int(e.DepthOrArrayLayers)
	size := uint64(pitch * r.Height * images)

	staging, err := dev.CreateBuffer(&hal.BufferDescriptor{
		Label: "gfx_readback",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return d.halError("create staging buffer", err)
	}
	defer dev.DestroyBuffer(staging)

	enc, err := dev.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "gfx_readback"})
	if err != nil {
		return d.halError("create command encoder", err)
	}
	if err := enc.BeginEncoding("gfx_readback"); err != nil {
		return d.halError("begin encoding", err)
	}
	prev := t.state
	transition(enc, t, gputypes.TextureUsageCopySrc)
	enc.CopyTextureToBuffer(t.tex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: uint32(pitch), RowsPerImage: uint32(r.Height)},
		TextureBase: hal.ImageCopyTexture{
			Texture:  t.tex,
			MipLevel: uint32(r.Level),
			Origin:   o,
			Aspect:   gputypes.TextureAspectAll,
		},
		Size: e,
	}})
	if prev == gputypes.TextureUsageRenderAttachment {
		transition(enc, t, prev)
	}
	cmd, err := enc.EndEncoding()
	if err != nil {
		enc.DiscardEncoding()
		return d.halError("end encoding", err)
	}
	if err := d.wait(cmd); err != nil {
		return err
	}
	m, err := dev.MapBuffer(staging, 0, size)
	if err != nil {
		return d.halError("map staging buffer", err)
	}
	readback := unsafe.Slice((*byte)(m.Ptr), size)
	for row := 0; row < r.Height*images; row++ {
		copy(data[row*rowBytes:(row+1)*rowBytes], readback[row*pitch:])
	}
	if err := dev.UnmapBuffer(staging); err != nil {
		return d.halError("unmap staging buffer", err)
	}
	return nil
}

// transition records a barrier moving t to usage unless it is there already.
func transition(enc hal.CommandEncoder, t *texture, usage gputypes.TextureUsage) {
	if t.state == usage {
		return
	}
	enc.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.tex,
		Usage:   hal.TextureUsageTransition{OldUsage: t.state, NewUsage: usage},
	}})
	t.state = usage
}

func (t *texture) Dispose() {
	if t.tex == nil {
		return
	}
	if t.dev.alive(t.gen) {
		t.dev.ctx.retire(func(dev hal.Device) {
			dev.DestroyTextureView(t.view)
			dev.DestroyTexture(t.tex)
		})
	}
	t.tex, t.view = nil, nil
}

// renderTarget is a texture with the attachments a render pass needs.
// Multisampled targets render into msaa and resolve into the texture at
// the end of every pass.
type renderTarget struct {
	*texture
	rtDesc  gfx.RenderTargetDesc
	samples uint32

	// attach is a single-level view of level 0.
	attach    hal.TextureView
	msaa      hal.Texture
	msaaView  hal.TextureView
	depth     hal.Texture
	depthView hal.TextureView
	depthFmt  gputypes.TextureFormat
}

func (d *device) CreateRenderTarget(desc gfx.RenderTargetDesc) (gfx.RenderTargetStrategy, error) {
	if err := d.usable(d.gen); err != nil {
		return nil, err
	}
	return d.newRenderTarget("gfx_render_target", desc)
}

func (d *device) newBackBuffer(pp gfx.PresentationParameters) (*renderTarget, error) {
	return d.newRenderTarget("gfx_back_buffer", gfx.RenderTargetDesc{
		TextureDesc: gfx.TextureDesc{
			Kind:       gfx.TextureKind2D,
			Width:      pp.BackBufferWidth,
			Height:     pp.BackBufferHeight,
			ArraySize:  1,
			LevelCount: 1,
			Format:     pp.BackBufferFormat,
		},
		DepthFormat:      pp.DepthStencilFormat,
		MultiSampleCount: pp.MultiSampleCount,
		Usage:            pp.RenderTargetUsage,
	})
}

func (d *device) newRenderTarget(label string, desc gfx.RenderTargetDesc) (*renderTarget, error) {
	if desc.LevelCount > 1 {
		d.log.Debug("wgpu: render target mips are not generated", "levels", desc.LevelCount)
	}
	t, err := d.newTexture(label, desc.TextureDesc, gputypes.TextureUsageRenderAttachment)
	if err != nil {
		return nil, err
	}
	rt := &renderTarget{texture: t, rtDesc: desc, samples: multiSampleCount(desc.MultiSampleCount)}
	if desc.MultiSampleCount > 1 && desc.MultiSampleCount != 4 {
		d.log.Warn("wgpu: multisample count adjusted", "requested", desc.MultiSampleCount, "used", rt.samples)
	}
	if err := rt.createAttachments(label); err != nil {
		rt.destroy(d.hw.device)
		return nil, err
	}
	return rt, nil
}

func (rt *renderTarget) createAttachments(label string) error {
	d := rt.dev
	dev := d.hw.device
	size := hal.Extent3D{Width: uint32(rt.desc.Width), Height: uint32(rt.desc.Height), DepthOrArrayLayers: 1}
	var err error
	rt.attach = rt.view
	if rt.desc.LevelCount > 1 || rt.desc.Kind != gfx.TextureKind2D || rt.desc.ArraySize > 1 {
		rt.attach, err = dev.CreateTextureView(rt.tex, &hal.TextureViewDescriptor{
			Label:           label + "_attach",
			Format:          rt.format,
			Dimension:       gputypes.TextureViewDimension2D,
			Aspect:          gputypes.TextureAspectAll,
			MipLevelCount:   1,
			ArrayLayerCount: 1,
		})
		if err != nil {
			return d.halError("create attachment view", err)
		}
	}
	if rt.samples > 1 {
		rt.msaa, rt.msaaView, err = d.attachment(label+"_msaa", size, rt.format, rt.samples)
		if err != nil {
			return err
		}
	}
	if rt.rtDesc.DepthFormat != gfx.DepthFormatNone {
		rt.depthFmt = depthFormat(rt.rtDesc.DepthFormat)
		rt.depth, rt.depthView, err = d.attachment(label+"_depth", size, rt.depthFmt, rt.samples)
		if err != nil {
			return err
		}
	}
	return nil
}

// attachment creates a render-only texture and its view.
func (d *device) attachment(label string, size hal.Extent3D, format gputypes.TextureFormat,
	samples uint32) (hal.Texture, hal.TextureView, error) {
	dev := d.hw.device
	tex, err := dev.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   samples,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		return nil, nil, d.halError("create "+label, err)
	}
	view, err := dev.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		dev.DestroyTexture(tex)
		return nil, nil, d.halError("create "+label+" view", err)
	}
	return tex, view, nil
}

// Resolve has nothing to do: multisample resolves happen when the pass
// drawing into the target ends.
func (rt *renderTarget) Resolve() error {
	return rt.dev.usable(rt.gen)
}

func (rt *renderTarget) Dispose() {
	if rt.tex == nil {
		return
	}
	if rt.dev.alive(rt.gen) {
		rt.dev.ctx.unbind(rt)
		rt.dev.ctx.retire(rt.destroy)
	}
	rt.tex, rt.view, rt.attach, rt.msaa, rt.msaaView, rt.depth, rt.depthView = nil, nil, nil, nil, nil, nil, nil
}

func (rt *renderTarget) destroy(dev hal.Device) {
	for _, v := range []hal.TextureView{rt.depthView, rt.msaaView} {
		if v != nil {
			dev.DestroyTextureView(v)
		}
	}
	for _, t := range []hal.Texture{rt.depth, rt.msaa} {
		if t != nil {
			dev.DestroyTexture(t)
		}
	}
	if rt.attach != nil && rt.attach != rt.view {
		dev.DestroyTextureView(rt.attach)
	}
	if rt.view != nil {
		dev.DestroyTextureView(rt.view)
	}
	if rt.tex != nil {
		dev.DestroyTexture(rt.tex)
	}
}

// buffer is a vertex or index buffer. WebGPU writes must be 4-byte
// aligned, so a shadow copy supplies the bytes around unaligned updates
// and answers GetData.
type buffer struct {
	dev    *device
	gen    uint64
	desc   gfx.BufferDesc
	buf    hal.Buffer
	shadow []byte
	// used is the recording serial of the last draw reading the buffer.
	used uint64
}

func (d *device) CreateBuffer(desc gfx.BufferDesc) (gfx.BufferStrategy, error) {
	if err := d.usable(d.gen); err != nil {
		return nil, err
	}
	b := &buffer{dev: d, gen: d.gen, desc: desc, shadow: make([]byte, (desc.Size+3)&^3)}
	buf, err := b.create()
	if err != nil {
		return nil, err
	}
	b.buf = buf
	return b, nil
}

func (b *buffer) create() (hal.Buffer, error) {
	usage := gputypes.BufferUsageVertex
	if b.desc.Kind == gfx.BufferKindIndex {
		usage = gputypes.BufferUsageIndex
	}
	buf, err := b.dev.hw.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "gfx_buffer",
		Size:  uint64(len(b.shadow)),
		Usage: usage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, b.dev.halError("create buffer", err)
	}
	return buf, nil
}

func (b *buffer) SetData(offset int, data []byte, options gfx.SetDataOptions) error {
	d := b.dev
	if err := d.usable(b.gen); err != nil {
		return err
	}
	if d.ctx.using(b.used) {
		switch options {
		case gfx.SetDataDiscard:
			// Recorded draws keep the old storage.
			buf, err := b.create()
			if err != nil {
				return err
			}
			old := b.buf
			d.ctx.retire(func(dev hal.Device) { dev.DestroyBuffer(old) })
			b.buf = buf
			copy(b.shadow[offset:], data)
			return b.write(0, len(b.shadow))
		case gfx.SetDataNoOverwrite:
		default:
			if err := d.ctx.submit(); err != nil {
				return err
			}
		}
	}
	copy(b.shadow[offset:], data)
	return b.write(offset&^3, min(len(b.shadow), (offset+len(data)+3)&^3))
}

// write uploads shadow[lo:hi].
func (b *buffer) write(lo, hi int) error {
	if err := b.dev.hw.queue.WriteBuffer(b.buf, uint64(lo), b.shadow[lo:hi]); err != nil {
		return b.dev.halError("write buffer", err)
	}
	return nil
}

func (b *buffer) GetData(offset int, data []byte) error {
	if err := b.dev.usable(b.gen); err != nil {
		return err
	}
	copy(data, b.shadow[offset:])
	return nil
}

func (b *buffer) Dispose() {
	if b.buf == nil {
		return
	}
	if b.dev.alive(b.gen) {
		buf := b.buf
		b.dev.ctx.retire(func(dev hal.Device) { dev.DestroyBuffer(buf) })
	}
	b.buf = nil
}

// constantBuffer is a uniform buffer. An upload while recorded draws still
// read the buffer moves it to fresh storage.
type constantBuffer struct {
	dev  *device
	gen  uint64
	name string
	size int
	buf  hal.Buffer
	used uint64
}

func (d *device) CreateConstantBuffer(desc gfx.ConstantBufferDesc) (gfx.ConstantBufferStrategy, error) {
	if err := d.usable(d.gen); err != nil {
		return nil, err
	}
	c := &constantBuffer{dev: d, gen: d.gen, name: desc.Name, size: (max(desc.Size, 16) + 15) &^ 15}
	buf, err := c.create()
	if err != nil {
		return nil, err
	}
	c.buf = buf
	return c, nil
}

func (c *constantBuffer) create() (hal.Buffer, error) {
	buf, err := c.dev.hw.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "gfx_cbuffer_" + c.name,
		Size:  uint64(c.size),
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, c.dev.halError("create constant buffer "+c.name, err)
	}
	return buf, nil
}

func (c *constantBuffer) Upload(data []byte) error {
	d := c.dev
	if err := d.usable(c.gen); err != nil {
		return err
	}
	if d.ctx.using(c.used) {
		buf, err := c.create()
		if err != nil {
			return err
		}
		old := c.buf
		d.ctx.retire(func(dev hal.Device) { dev.DestroyBuffer(old) })
		c.buf = buf
	}
	padded := make([]byte, c.size)
	copy(padded, data)
	if err := d.hw.queue.WriteBuffer(c.buf, 0, padded); err != nil {
		return d.halError("write constant buffer "+c.name, err)
	}
	return nil
}

func (c *constantBuffer) Dispose() {
	if c.buf == nil {
		return
	}
	if c.dev.alive(c.gen) {
		buf := c.buf
		c.dev.ctx.retire(func(dev hal.Device) { dev.DestroyBuffer(buf) })
	}
	c.buf = nil
}
