package gl

import (
	"fmt"

	"github.com/gogpu/gfx"
)

// glContext implements gfx.ContextStrategy. Setters only record; prepare
// applies everything through glState before each draw, which makes the
// strategy immune to bindings changed by resource uploads in between.
type glContext struct {
	dev *device

	targets  []*renderTarget
	mrtFBO   Object
	mrtCount int
	viewport gfx.Viewport
	scissor  gfx.Rectangle

	vs, ps    *shader
	cbufs     [2][16]*constantBuffer
	streams   []gfx.VertexStream
	index     *buffer
	indexSize gfx.IndexElementSize
	textures  [maxTextureUnits]*texture
	samplers  [maxTextureUnits]*samplerState

	blend       gfx.BlendDesc
	blendFactor gfx.Color
	depth       gfx.DepthStencilDesc
	refStencil  int
	raster      gfx.RasterizerDesc
	stencil     stencilKey
	stencilSet  bool
}

func newContext(d *device) *glContext {
	c := &glContext{dev: d}
	c.reset()
	return c
}

// reset forgets every binding. It follows context recreation.
func (c *glContext) reset() {
	d := c.dev
	*c = glContext{dev: d}
	c.blend = gfx.DefaultBlendDesc()
	c.blendFactor = gfx.White
	c.depth = gfx.DefaultDepthStencilDesc()
	c.raster = gfx.DefaultRasterizerDesc()
	pp := d.pp
	c.viewport = gfx.NewViewport(0, 0, pp.BackBufferWidth, pp.BackBufferHeight)
	c.scissor = pp.Bounds()
}

// release deletes objects the context owns.
func (c *glContext) release() {
	if c.mrtFBO.Valid() {
		c.dev.state.deleteFramebuffer(c.dev.f, c.mrtFBO)
		c.mrtFBO = 0
	}
}

func (c *glContext) SetRenderTargets(targets []gfx.RenderTargetStrategy) error {
	c.targets = c.targets[:0]
	for _, t := range targets {
		rt, ok := t.(*renderTarget)
		if !ok {
			return fmt.Errorf("gl: foreign render target %T", t)
		}
		c.targets = append(c.targets, rt)
	}
	if len(c.targets) > 1 {
		if c.dev.f.DrawBuffers == nil {
			return fmt.Errorf("%w: multiple render targets need glDrawBuffers", gfx.ErrNotSupported)
		}
		for _, rt := range c.targets {
			if rt.msaaFBO.Valid() {
				return fmt.Errorf("%w: multisampled render targets cannot be combined", gfx.ErrNotSupported)
			}
		}
	}
	return nil
}

func (c *glContext) SetViewport(vp gfx.Viewport)         { c.viewport = vp }
func (c *glContext) SetScissorRectangle(r gfx.Rectangle) { c.scissor = r }

func (c *glContext) SetShaders(vs, ps gfx.ShaderStrategy) error {
	v, ok1 := vs.(*shader)
	p, ok2 := ps.(*shader)
	if !ok1 || !ok2 {
		return fmt.Errorf("gl: foreign shader %T, %T", vs, ps)
	}
	c.vs, c.ps = v, p
	return nil
}

func (c *glContext) SetConstantBuffer(stage gfx.ShaderStage, slot int, cb gfx.ConstantBufferStrategy) {
	b, _ := cb.(*constantBuffer)
	c.cbufs[stage][slot] = b
}

func (c *glContext) SetVertexBuffers(streams []gfx.VertexStream) error {
	for _, s := range streams {
		if _, ok := s.Buffer.(*buffer); !ok {
			return fmt.Errorf("gl: foreign vertex buffer %T", s.Buffer)
		}
		if s.InstanceFrequency > 0 && !c.dev.caps.SupportsInstancing {
			return fmt.Errorf("%w: per-instance vertex data needs glVertexAttribDivisor", gfx.ErrNotSupported)
		}
	}
	c.streams = append(c.streams[:0], streams...)
	return nil
}

func (c *glContext) SetIndexBuffer(ib gfx.BufferStrategy, size gfx.IndexElementSize) {
	c.index, _ = ib.(*buffer)
	c.indexSize = size
}

func textureUnit(stage gfx.ShaderStage, slot int) int {
	if stage == gfx.ShaderStageVertex {
		return vertexUnitBase + slot
	}
	return slot
}

func (c *glContext) SetTexture(stage gfx.ShaderStage, slot int, tex gfx.TextureStrategy) {
	unit := textureUnit(stage, slot)
	switch t := tex.(type) {
	case *texture:
		c.textures[unit] = t
	case *renderTarget:
		c.textures[unit] = t.texture
	default:
		c.textures[unit] = nil
	}
}

func (c *glContext) SetSampler(stage gfx.ShaderStage, slot int, s gfx.StateStrategy) {
	c.samplers[textureUnit(stage, slot)], _ = s.(*samplerState)
}

func (c *glContext) SetBlendState(s gfx.StateStrategy, factor gfx.Color) {
	if b, ok := s.(*blendState); ok {
		c.blend = b.desc
	}
	c.blendFactor = factor
}

func (c *glContext) SetDepthStencilState(s gfx.StateStrategy, referenceStencil int) {
	if ds, ok := s.(*depthStencilState); ok {
		c.depth = ds.desc
	}
	c.refStencil = referenceStencil
}

func (c *glContext) SetRasterizerState(s gfx.StateStrategy) {
	if r, ok := s.(*rasterizerState); ok {
		c.raster = r.desc
	}
}

// flipped reports whether a render target is bound. Render targets are
// drawn upside down in GL terms so that their first row is the top row.
func (c *glContext) flipped() bool { return len(c.targets) > 0 }

// targetSize returns the size of the bound framebuffer.
func (c *glContext) targetSize() (w, h int) {
	if len(c.targets) > 0 {
		return c.targets[0].desc.Width, c.targets[0].desc.Height
	}
	return c.dev.pp.BackBufferWidth, c.dev.pp.BackBufferHeight
}

// bindTargets binds the framebuffer of the current targets.
func (c *glContext) bindTargets() {
	d, f := c.dev, c.dev.f
	switch len(c.targets) {
	case 0:
		d.state.bindFramebuffer(f, FRAMEBUFFER, 0)
		return
	case 1:
		d.state.bindFramebuffer(f, FRAMEBUFFER, c.targets[0].drawFBO())
		return
	}
	if !c.mrtFBO.Valid() {
		c.mrtFBO = f.GenFramebuffer()
	}
	d.state.bindFramebuffer(f, FRAMEBUFFER, c.mrtFBO)
	bufs := make([]Enum, len(c.targets))
	for i, rt := range c.targets {
		bufs[i] = COLOR_ATTACHMENT0 + Enum(i)
		f.FramebufferTexture2D(FRAMEBUFFER, bufs[i], TEXTURE_2D, rt.obj, 0)
	}
	for i := len(c.targets); i < c.mrtCount; i++ {
		f.FramebufferTexture2D(FRAMEBUFFER, COLOR_ATTACHMENT0+Enum(i), TEXTURE_2D, 0, 0)
	}
	c.mrtCount = len(c.targets)
	internal, attach := depthFormat(c.targets[0].rtDesc.DepthFormat)
	if internal != 0 {
		f.FramebufferRenderbuffer(FRAMEBUFFER, attach, RENDERBUFFER, c.targets[0].depth)
	}
	f.DrawBuffers(bufs)
}

// applyRect maps a top-left origin rectangle to GL window coordinates.
func (c *glContext) applyRect(r gfx.Rectangle) (x, y, w, h int) {
	if c.flipped() {
		return r.X, r.Y, r.Width, r.Height
	}
	_, th := c.targetSize()
	return r.X, th - r.Y - r.Height, r.Width, r.Height
}

func (c *glContext) applyViewport() {
	d, f := c.dev, c.dev.f
	vp := c.viewport
	x, y, w, h := c.applyRect(vp.Bounds())
	d.state.setViewport(f, x, y, w, h)
	d.state.setDepthRange(f, vp.MinDepth, vp.MaxDepth)
	x, y, w, h = c.applyRect(c.scissor)
	d.state.setScissor(f, x, y, max(0, w), max(0, h))
}

func (c *glContext) Clear(options gfx.ClearOptions, color gfx.Vector4, depth float32, stencil int) error {
	d, f := c.dev, c.dev.f
	if !d.alive(d.gen) {
		return gfx.ErrDeviceLost
	}
	c.bindTargets()
	c.applyViewport()
	// Clears ignore the scissor rectangle and every write mask.
	d.state.set(f, SCISSOR_TEST, false)
	var mask Enum
	if options&gfx.ClearTarget != 0 {
		mask |= COLOR_BUFFER_BIT
		d.state.setColorMask(f, true, true, true, true)
		d.state.setClearColor(f, color.X, color.Y, color.Z, color.W)
	}
	if options&gfx.ClearDepthBuffer != 0 {
		mask |= DEPTH_BUFFER_BIT
		d.state.setDepthMask(f, true)
		d.state.setClearDepth(f, depth)
	}
	if options&gfx.ClearStencil != 0 {
		mask |= STENCIL_BUFFER_BIT
		f.StencilMask(0xffffffff)
		c.stencilSet = false
		d.state.setClearStencil(f, stencil)
	}
	f.Clear(mask)
	return d.glError("clear")
}

// prepare applies all recorded state for a draw.
func (c *glContext) prepare(baseVertex int) (*program, error) {
	d, f := c.dev, c.dev.f
	if !d.alive(d.gen) {
		return nil, gfx.ErrDeviceLost
	}
	if c.vs == nil || c.ps == nil {
		return nil, fmt.Errorf("%w: no shaders bound", gfx.ErrInvalidOperation)
	}
	c.bindTargets()
	c.applyViewport()

	p, err := d.program(c.vs, c.ps)
	if err != nil {
		return nil, err
	}
	d.state.useProgram(f, p.obj)
	p.upload(f, &c.cbufs)
	var fixup [4]float32
	fixup[0], fixup[1] = 1, 1
	if c.flipped() {
		fixup[1] = -1
	}
	if d.desc.PreferHalfPixelOffset {
		vw, vh := max(1, c.viewport.Width), max(1, c.viewport.Height)
		fixup[2] = -1 / float32(vw)
		fixup[3] = fixup[1] / float32(vh)
	}
	p.setFixup(f, fixup)

	if err := c.applyAttributes(p, baseVertex); err != nil {
		return nil, err
	}
	c.applyTextures()

	applyBlend(f, &d.state, c.blend, c.blendFactor)
	applyDepth(f, &d.state, c.depth)
	depthBits := 24
	if c.depthFormat() == gfx.DepthFormatDepth16 {
		depthBits = 16
	}
	cwIsFront := applyRasterizer(f, &d.state, c.raster, c.flipped(), depthBits, d.caps.SupportsDepthClamp)
	key := stencilKey{desc: c.depth, ref: c.refStencil, cwIsFront: cwIsFront}
	if !c.stencilSet || key != c.stencil {
		applyStencil(f, &d.state, key)
		c.stencil, c.stencilSet = key, true
	}
	return p, nil
}

func (c *glContext) depthFormat() gfx.DepthFormat {
	if len(c.targets) > 0 {
		return c.targets[0].rtDesc.DepthFormat
	}
	return c.dev.pp.DepthStencilFormat
}

// applyAttributes points every program attribute at the stream element with
// the same usage and usage index. Unmatched attributes are disabled.
func (c *glContext) applyAttributes(p *program, baseVertex int) error {
	d, f := c.dev, c.dev.f
	for loc, a := range p.attribs {
		if loc >= maxVertexAttribs {
			return fmt.Errorf("%w: more than %d vertex attributes", gfx.ErrNotSupported, maxVertexAttribs)
		}
		found := false
		for _, s := range c.streams {
			for _, e := range s.Declaration.Elements() {
				if e.Usage != a.Usage || e.UsageIndex != a.UsageIndex {
					continue
				}
				b := s.Buffer.(*buffer)
				stride := s.Declaration.Stride()
				first := s.Offset
				if s.InstanceFrequency == 0 {
					first += baseVertex
				}
				size, typ, norm := vertexFormat(e.Format)
				d.state.bindBuffer(f, ARRAY_BUFFER, b.obj)
				d.state.setVertexAttribArray(f, loc, true)
				f.VertexAttribPointer(loc, size, typ, norm, stride, first*stride+e.Offset)
				d.state.setVertexAttribDivisor(f, loc, s.InstanceFrequency)
				found = true
				break
			}
			if found {
				break
			}
		}
		if !found {
			d.state.setVertexAttribArray(f, loc, false)
		}
	}
	for loc := len(p.attribs); loc < maxVertexAttribs; loc++ {
		d.state.setVertexAttribArray(f, loc, false)
	}
	return nil
}

func (c *glContext) applyTextures() {
	d, f := c.dev, c.dev.f
	for unit, t := range c.textures {
		if t == nil || !d.alive(t.gen) {
			continue
		}
		d.state.bindTexture(f, unit, t.target, t.obj)
		s := gfx.DefaultSamplerDesc()
		if c.samplers[unit] != nil {
			s = c.samplers[unit].desc
		}
		if !t.hasSampler || t.sampler != s {
			applySampler(f, t.target, s, t.desc.LevelCount, &d.caps)
			t.sampler, t.hasSampler = s, true
		}
	}
}

func (c *glContext) Draw(prim gfx.PrimitiveType, startVertex, vertexCount int) error {
	if _, err := c.prepare(0); err != nil {
		return err
	}
	c.dev.f.DrawArrays(primitiveMode(prim), startVertex, vertexCount)
	return c.dev.glError("draw")
}

func (c *glContext) bindIndices() error {
	if c.index == nil {
		return fmt.Errorf("%w: no index buffer bound", gfx.ErrInvalidOperation)
	}
	c.dev.state.bindBuffer(c.dev.f, ELEMENT_ARRAY_BUFFER, c.index.obj)
	return nil
}

func (c *glContext) DrawIndexed(prim gfx.PrimitiveType, baseVertex, startIndex, indexCount int) error {
	if _, err := c.prepare(baseVertex); err != nil {
		return err
	}
	if err := c.bindIndices(); err != nil {
		return err
	}
	c.dev.f.DrawElements(primitiveMode(prim), indexCount, indexType(c.indexSize), startIndex*c.indexSize.Bytes())
	return c.dev.glError("draw indexed")
}

func (c *glContext) DrawInstanced(prim gfx.PrimitiveType, baseVertex, startIndex, indexCount, baseInstance,
	instanceCount int) error {
	f := c.dev.f
	if !f.Instancing() {
		return fmt.Errorf("%w: instanced drawing needs glDrawElementsInstanced", gfx.ErrNotSupported)
	}
	if baseInstance != 0 && f.DrawElementsInstancedBaseInstance == nil {
		return fmt.Errorf("%w: a base instance needs glDrawElementsInstancedBaseInstance", gfx.ErrNotSupported)
	}
	if _, err := c.prepare(baseVertex); err != nil {
		return err
	}
	if err := c.bindIndices(); err != nil {
		return err
	}
	mode, ty, offset := primitiveMode(prim), indexType(c.indexSize), startIndex*c.indexSize.Bytes()
	if baseInstance != 0 {
		f.DrawElementsInstancedBaseInstance(mode, indexCount, ty, offset, instanceCount, baseInstance)
	} else {
		f.DrawElementsInstanced(mode, indexCount, ty, offset, instanceCount)
	}
	return c.dev.glError("draw instanced")
}

func (c *glContext) Flush() error {
	d := c.dev
	if !d.alive(d.gen) {
		return gfx.ErrDeviceLost
	}
	d.f.Finish()
	return d.glError("flush")
}
