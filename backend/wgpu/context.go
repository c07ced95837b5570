package wgpu

import (
	"fmt"

	"github.com/gogpu/gfx"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// maxSlots bounds the texture and constant buffer slots of one stage.
const maxSlots = 16

// wgpuContext implements gfx.ContextStrategy on one command encoder.
//
// Setters only record. Every draw resolves the recorded state into a
// cached pipeline and fresh bind groups and encodes into the open render
// pass, which stays open until the targets change, a resource barrier is
// needed or the work is submitted. Clears are deferred into the load
// operations of the next pass on their targets.
type wgpuContext struct {
	dev *device

	targets  []*renderTarget
	viewport gfx.Viewport
	scissor  gfx.Rectangle

	vs, ps    *shader
	cbufs     [2][maxSlots]*constantBuffer
	streams   []gfx.VertexStream
	index     *buffer
	indexSize gfx.IndexElementSize
	textures  [2][maxSlots]*texture
	samplers  [2][maxSlots]*samplerStateObject

	blend       gfx.BlendDesc
	blendFactor gfx.Color
	depth       gfx.DepthStencilDesc
	refStencil  int
	raster      gfx.RasterizerDesc

	// serial numbers the recording in progress. Resources store the serial
	// of the last draw using them.
	serial uint64
	enc    hal.CommandEncoder
	pass   hal.RenderPassEncoder
	// passTargets are the attachments of pass.
	passTargets []*renderTarget
	clear       *pendingClear
	// retired holds destructions waiting for the recording to execute.
	retired []func(hal.Device)
}

type pendingClear struct {
	targets []*renderTarget
	options gfx.ClearOptions
	color   gfx.Vector4
	depth   float32
	stencil int
}

func newContext(d *device) *wgpuContext {
	c := &wgpuContext{dev: d}
	c.reset()
	return c
}

// reset forgets every binding and any recording. It follows device
// recreation and back buffer changes.
func (c *wgpuContext) reset() {
	d := c.dev
	*c = wgpuContext{dev: d, serial: c.serial + 1}
	c.blend = gfx.DefaultBlendDesc()
	c.blendFactor = gfx.White
	c.depth = gfx.DefaultDepthStencilDesc()
	c.raster = gfx.DefaultRasterizerDesc()
	pp := d.pp
	c.viewport = gfx.NewViewport(0, 0, pp.BackBufferWidth, pp.BackBufferHeight)
	c.scissor = pp.Bounds()
}

// discard drops the recording and destroys everything retired.
func (c *wgpuContext) discard() {
	if c.pass != nil {
		c.pass.End()
		c.pass, c.passTargets = nil, nil
	}
	if c.enc != nil {
		c.enc.DiscardEncoding()
		c.enc = nil
	}
	c.clear = nil
	c.serial++
	c.runRetired()
}

// using reports whether the recording in progress uses a resource whose
// last use was serial.
func (c *wgpuContext) using(serial uint64) bool {
	return c.enc != nil && serial == c.serial
}

// retire destroys a resource once nothing recorded can refer to it.
func (c *wgpuContext) retire(fn func(hal.Device)) {
	if c.enc == nil {
		fn(c.dev.hw.device)
		return
	}
	c.retired = append(c.retired, fn)
}

func (c *wgpuContext) runRetired() {
	fns := c.retired
	c.retired = nil
	if !c.dev.alive(c.dev.gen) {
		return
	}
	for _, fn := range fns {
		fn(c.dev.hw.device)
	}
}

// unbind removes rt from every binding ahead of its destruction.
func (c *wgpuContext) unbind(rt *renderTarget) {
	for i := 0; i < len(c.targets); i++ {
		if c.targets[i] == rt {
			c.targets = append(c.targets[:i], c.targets[i+1:]...)
			i--
		}
	}
	if contains(c.passTargets, rt) {
		c.endPass()
	}
	if c.clear != nil && contains(c.clear.targets, rt) {
		c.clear = nil
	}
	for stage := range c.textures {
		for slot, t := range c.textures[stage] {
			if t == rt.texture {
				c.textures[stage][slot] = nil
			}
		}
	}
}

// forget drops s from the shader bindings.
func (c *wgpuContext) forget(s *shader) {
	if c.vs == s {
		c.vs = nil
	}
	if c.ps == s {
		c.ps = nil
	}
}

func contains(targets []*renderTarget, rt *renderTarget) bool {
	for _, t := range targets {
		if t == rt {
			return true
		}
	}
	return false
}

func sameTargets(a, b []*renderTarget) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (c *wgpuContext) SetRenderTargets(targets []gfx.RenderTargetStrategy) error {
	next := make([]*renderTarget, 0, len(targets))
	for _, t := range targets {
		rt, ok := t.(*renderTarget)
		if !ok {
			return fmt.Errorf("wgpu: foreign render target %T", t)
		}
		if len(next) > 0 && rt.samples != next[0].samples {
			return fmt.Errorf("%w: render targets with different multisample counts cannot be combined",
				gfx.ErrNotSupported)
		}
		next = append(next, rt)
	}
	c.targets = next
	return nil
}

func (c *wgpuContext) SetViewport(vp gfx.Viewport)         { c.viewport = vp }
func (c *wgpuContext) SetScissorRectangle(r gfx.Rectangle) { c.scissor = r }

func (c *wgpuContext) SetShaders(vs, ps gfx.ShaderStrategy) error {
	v, ok1 := vs.(*shader)
	p, ok2 := ps.(*shader)
	if !ok1 || !ok2 {
		return fmt.Errorf("wgpu: foreign shader %T, %T", vs, ps)
	}
	c.vs, c.ps = v, p
	return nil
}

func (c *wgpuContext) SetConstantBuffer(stage gfx.ShaderStage, slot int, cb gfx.ConstantBufferStrategy) {
	b, _ := cb.(*constantBuffer)
	c.cbufs[stage][slot] = b
}

func (c *wgpuContext) SetVertexBuffers(streams []gfx.VertexStream) error {
	for _, s := range streams {
		if _, ok := s.Buffer.(*buffer); !ok {
			return fmt.Errorf("wgpu: foreign vertex buffer %T", s.Buffer)
		}
		if s.InstanceFrequency > 1 {
			return fmt.Errorf("%w: instance step rates above 1", gfx.ErrNotSupported)
		}
	}
	c.streams = append(c.streams[:0], streams...)
	return nil
}

func (c *wgpuContext) SetIndexBuffer(ib gfx.BufferStrategy, size gfx.IndexElementSize) {
	c.index, _ = ib.(*buffer)
	c.indexSize = size
}

func (c *wgpuContext) SetTexture(stage gfx.ShaderStage, slot int, tex gfx.TextureStrategy) {
	switch t := tex.(type) {
	case *texture:
		c.textures[stage][slot] = t
	case *renderTarget:
		c.textures[stage][slot] = t.texture
	default:
		c.textures[stage][slot] = nil
	}
}

func (c *wgpuContext) SetSampler(stage gfx.ShaderStage, slot int, s gfx.StateStrategy) {
	c.samplers[stage][slot], _ = s.(*samplerStateObject)
}

func (c *wgpuContext) SetBlendState(s gfx.StateStrategy, factor gfx.Color) {
	if b, ok := s.(*blendStateObject); ok {
		c.blend = b.desc
	}
	c.blendFactor = factor
}

func (c *wgpuContext) SetDepthStencilState(s gfx.StateStrategy, referenceStencil int) {
	if ds, ok := s.(*depthStencilStateObject); ok {
		c.depth = ds.desc
	}
	c.refStencil = referenceStencil
}

func (c *wgpuContext) SetRasterizerState(s gfx.StateStrategy) {
	if r, ok := s.(*rasterizerStateObject); ok {
		c.raster = r.desc
	}
}

// current returns the targets draws go to.
func (c *wgpuContext) current() []*renderTarget {
	if len(c.targets) > 0 {
		return c.targets
	}
	return []*renderTarget{c.dev.back}
}

// encoder returns the command encoder, beginning one if needed.
func (c *wgpuContext) encoder() (hal.CommandEncoder, error) {
	if c.enc != nil {
		return c.enc, nil
	}
	d := c.dev
	enc, err := d.hw.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "gfx_frame"})
	if err != nil {
		return nil, d.halError("create command encoder", err)
	}
	if err := enc.BeginEncoding("gfx_frame"); err != nil {
		return nil, d.halError("begin encoding", err)
	}
	c.enc = enc
	return enc, nil
}

func (c *wgpuContext) endPass() {
	if c.pass == nil {
		return
	}
	c.pass.End()
	c.pass, c.passTargets = nil, nil
}

// beginPass opens a pass on targets, consuming a pending clear of the
// same targets. A pending clear of other targets runs in a pass of its own.
func (c *wgpuContext) beginPass(targets []*renderTarget) error {
	c.endPass()
	if c.clear != nil && !sameTargets(c.clear.targets, targets) {
		if err := c.flushClear(); err != nil {
			return err
		}
	}
	enc, err := c.encoder()
	if err != nil {
		return err
	}
	for _, rt := range targets {
		transition(enc, rt.texture, gputypes.TextureUsageRenderAttachment)
	}
	pending := c.clear
	c.clear = nil

	desc := &hal.RenderPassDescriptor{Label: "gfx_pass"}
	for _, rt := range targets {
		a := hal.RenderPassColorAttachment{
			View:    rt.attach,
			LoadOp:  gputypes.LoadOpLoad,
			StoreOp: gputypes.StoreOpStore,
		}
		if rt.msaaView != nil {
			a.View, a.ResolveTarget = rt.msaaView, rt.attach
		}
		if pending != nil && pending.options&gfx.ClearTarget != 0 {
			a.LoadOp = gputypes.LoadOpClear
			a.ClearValue = gputypes.Color{
				R: float64(pending.color.X),
				G: float64(pending.color.Y),
				B: float64(pending.color.Z),
				A: float64(pending.color.W),
			}
		}
		desc.ColorAttachments = append(desc.ColorAttachments, a)
	}
	if first := targets[0]; first.depthView != nil {
		ds := &hal.RenderPassDepthStencilAttachment{
			View:         first.depthView,
			DepthLoadOp:  gputypes.LoadOpLoad,
			DepthStoreOp: gputypes.StoreOpStore,
		}
		if pending != nil && pending.options&gfx.ClearDepthBuffer != 0 {
			ds.DepthLoadOp = gputypes.LoadOpClear
			ds.DepthClearValue = pending.depth
		}
		if first.rtDesc.DepthFormat.HasStencil() {
			ds.StencilLoadOp, ds.StencilStoreOp = gputypes.LoadOpLoad, gputypes.StoreOpStore
			if pending != nil && pending.options&gfx.ClearStencil != 0 {
				ds.StencilLoadOp = gputypes.LoadOpClear
				ds.StencilClearValue = uint32(pending.stencil)
			}
		}
		desc.DepthStencilAttachment = ds
	}
	c.pass = enc.BeginRenderPass(desc)
	c.passTargets = append([]*renderTarget(nil), targets...)
	return nil
}

// flushClear runs the pending clear in an otherwise empty pass.
func (c *wgpuContext) flushClear() error {
	if c.clear == nil {
		return nil
	}
	if err := c.beginPass(c.clear.targets); err != nil {
		return err
	}
	c.endPass()
	return nil
}

// Clear defers to the load operations of the next pass. Clears cover the
// whole target regardless of viewport and scissor.
func (c *wgpuContext) Clear(options gfx.ClearOptions, color gfx.Vector4, depth float32, stencil int) error {
	d := c.dev
	if err := d.usable(d.gen); err != nil {
		return err
	}
	targets := c.current()
	c.endPass()
	if c.clear != nil {
		if !sameTargets(c.clear.targets, targets) {
			if err := c.flushClear(); err != nil {
				return err
			}
		} else {
			// A later clear overrides only the buffers it names.
			prev := c.clear
			if options&gfx.ClearTarget == 0 {
				color = prev.color
			}
			if options&gfx.ClearDepthBuffer == 0 {
				depth = prev.depth
			}
			if options&gfx.ClearStencil == 0 {
				stencil = prev.stencil
			}
			options |= prev.options
		}
	}
	c.clear = &pendingClear{
		targets: append([]*renderTarget(nil), targets...),
		options: options,
		color:   color,
		depth:   depth,
		stencil: stencil,
	}
	return nil
}

// prepare resolves the recorded state and encodes it into an open pass.
func (c *wgpuContext) prepare(prim gfx.PrimitiveType, indexed bool) error {
	d := c.dev
	if err := d.usable(d.gen); err != nil {
		return err
	}
	if c.vs == nil || c.ps == nil {
		return fmt.Errorf("%w: no shaders bound", gfx.ErrInvalidOperation)
	}
	if indexed && (c.index == nil || c.index.buf == nil) {
		return fmt.Errorf("%w: no index buffer bound", gfx.ErrInvalidOperation)
	}
	targets := c.current()

	sampled, err := c.sampledTextures(targets)
	if err != nil {
		return err
	}
	layouts, err := c.vertexLayouts()
	if err != nil {
		return err
	}
	pipeline, err := c.pipeline(prim, targets, layouts)
	if err != nil {
		return err
	}

	// Barriers cannot be recorded inside a pass.
	barrier := false
	for _, t := range sampled {
		if t.state != gputypes.TextureUsageTextureBinding {
			barrier = true
		}
	}
	if barrier || c.pass == nil || !sameTargets(c.passTargets, targets) || c.clear != nil {
		c.endPass()
		if barrier {
			enc, err := c.encoder()
			if err != nil {
				return err
			}
			for _, t := range sampled {
				transition(enc, t, gputypes.TextureUsageTextureBinding)
			}
		}
		if err := c.beginPass(targets); err != nil {
			return err
		}
	}

	groups, err := c.bindGroups()
	if err != nil {
		return err
	}
	pass := c.pass
	pass.SetPipeline(pipeline)
	for i, g := range groups {
		pass.SetBindGroup(uint32(i), g, nil)
	}
	for i, s := range c.streams {
		b := s.Buffer.(*buffer)
		if b.buf == nil {
			return fmt.Errorf("%w: vertex buffer %d is disposed", gfx.ErrInvalidOperation, i)
		}
		pass.SetVertexBuffer(uint32(i), b.buf, uint64(s.Offset*s.Declaration.Stride()))
		b.used = c.serial
	}
	if indexed {
		pass.SetIndexBuffer(c.index.buf, indexFormat(c.indexSize), 0)
		c.index.used = c.serial
	}
	c.applyRects(targets[0])
	pass.SetBlendConstant(&gputypes.Color{
		R: float64(c.blendFactor.R) / 255,
		G: float64(c.blendFactor.G) / 255,
		B: float64(c.blendFactor.B) / 255,
		A: float64(c.blendFactor.A) / 255,
	})
	pass.SetStencilReference(uint32(c.refStencil))
	for _, t := range sampled {
		t.used = c.serial
	}
	return nil
}

// sampledTextures returns the textures the shaders sample, failing when
// one is missing or is also being drawn into.
func (c *wgpuContext) sampledTextures(targets []*renderTarget) ([]*texture, error) {
	var out []*texture
	for _, s := range []*shader{c.vs, c.ps} {
		stage := s.desc.Stage
		for _, sm := range s.desc.Samplers {
			t := c.textures[stage][sm.Slot]
			if t == nil || t.tex == nil || !c.dev.alive(t.gen) {
				return nil, fmt.Errorf("%w: %s texture %q (slot %d) is not bound",
					gfx.ErrInvalidOperation, stage, sm.Name, sm.Slot)
			}
			for _, rt := range targets {
				if rt.texture == t {
					return nil, fmt.Errorf("%w: %s texture %q is also a bound render target",
						gfx.ErrInvalidOperation, stage, sm.Name)
				}
			}
			out = append(out, t)
		}
	}
	return out, nil
}

// vertexLayouts describes one buffer layout per stream, each holding the
// shader inputs matched to its elements by usage and usage index.
func (c *wgpuContext) vertexLayouts() ([]gputypes.VertexBufferLayout, error) {
	layouts := make([]gputypes.VertexBufferLayout, len(c.streams))
	for i, s := range c.streams {
		layouts[i] = gputypes.VertexBufferLayout{
			ArrayStride: uint64(s.Declaration.Stride()),
			StepMode:    gputypes.VertexStepModeVertex,
		}
		if s.InstanceFrequency > 0 {
			layouts[i].StepMode = gputypes.VertexStepModeInstance
		}
	}
	for _, a := range c.vs.desc.Attributes {
		found := false
		for i, s := range c.streams {
			for _, e := range s.Declaration.Elements() {
				if e.Usage != a.Usage || e.UsageIndex != a.UsageIndex {
					continue
				}
				layouts[i].Attributes = append(layouts[i].Attributes, gputypes.VertexAttribute{
					Format:         vertexFormat(e.Format),
					Offset:         uint64(e.Offset),
					ShaderLocation: uint32(a.Location),
				})
				found = true
				break
			}
			if found {
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: vertex input %q (%v%d) has no matching vertex element",
				gfx.ErrInvalidOperation, a.Name, a.Usage, a.UsageIndex)
		}
	}
	return layouts, nil
}

func (c *wgpuContext) pipeline(prim gfx.PrimitiveType, targets []*renderTarget,
	layouts []gputypes.VertexBufferLayout) (hal.RenderPipeline, error) {
	d := c.dev
	layout, err := d.pipelineLayout(c.vs, c.ps)
	if err != nil {
		return nil, err
	}
	colors := make([]gputypes.ColorTargetState, len(targets))
	for i, rt := range targets {
		colors[i] = gputypes.ColorTargetState{
			Format:    rt.format,
			Blend:     blendState(c.blend),
			WriteMask: writeMask(c.blend.ColorWriteChannels),
		}
	}
	desc := &hal.RenderPipelineDescriptor{
		Label:  "gfx_pipeline",
		Layout: layout,
		Vertex: hal.VertexState{
			Module:     c.vs.module,
			EntryPoint: c.vs.entry,
			Buffers:    layouts,
		},
		Fragment: &hal.FragmentState{
			Module:     c.ps.module,
			EntryPoint: c.ps.entry,
			Targets:    colors,
		},
		DepthStencil: depthStencilState(c.depth, targets[0].rtDesc.DepthFormat),
		Primitive: gputypes.PrimitiveState{
			Topology:  topology(prim),
			FrontFace: gputypes.FrontFaceCW,
			CullMode:  cullMode(c.raster.CullMode),
		},
		Multisample: gputypes.MultisampleState{
			Count: targets[0].samples,
			Mask:  uint64(c.blend.MultiSampleMask),
		},
	}
	p, err := d.pipelines.getOrCreate(d.hw.device, c.vs, c.ps, desc)
	if err != nil {
		return nil, d.halError("create render pipeline", err)
	}
	return p, nil
}

// bindGroups creates the four bind groups of the draw. They are destroyed
// once the recording has executed.
func (c *wgpuContext) bindGroups() ([groupCount]hal.BindGroup, error) {
	var groups [groupCount]hal.BindGroup
	layout := [groupCount]struct {
		s        *shader
		textures bool
	}{
		{c.vs, false}, {c.ps, false}, {c.ps, true}, {c.vs, true},
	}
	for i, l := range layout {
		g, err := c.bindGroup(l.s, l.textures)
		if err != nil {
			return groups, err
		}
		groups[i] = g
	}
	return groups, nil
}

func (c *wgpuContext) bindGroup(s *shader, textures bool) (hal.BindGroup, error) {
	d := c.dev
	stage := s.desc.Stage
	layout := s.uniforms
	var entries []gputypes.BindGroupEntry
	if textures {
		layout = s.textures
		for _, sm := range s.desc.Samplers {
			t := c.textures[stage][sm.Slot]
			sampler := d.defaultSampler
			if so := c.samplers[stage][sm.Slot]; so != nil && so.sampler != nil {
				sampler = so.sampler
			}
			entries = append(entries,
				gputypes.BindGroupEntry{
					Binding:  uint32(2 * sm.Slot),
					Resource: gputypes.TextureViewBinding{TextureView: t.view.NativeHandle()},
				},
				gputypes.BindGroupEntry{
					Binding:  uint32(2*sm.Slot + 1),
					Resource: gputypes.SamplerBinding{Sampler: sampler.NativeHandle()},
				})
		}
	} else {
		for _, u := range s.desc.ConstantBuffers {
			cb := c.cbufs[stage][u.Slot]
			if cb == nil || cb.buf == nil || !d.alive(cb.gen) {
				return nil, fmt.Errorf("%w: %s constant buffer %q (slot %d) is not bound",
					gfx.ErrInvalidOperation, stage, u.Name, u.Slot)
			}
			entries = append(entries, gputypes.BindGroupEntry{
				Binding:  uint32(u.Slot),
				Resource: gputypes.BufferBinding{Buffer: cb.buf.NativeHandle(), Offset: 0, Size: uint64(cb.size)},
			})
			cb.used = c.serial
		}
	}
	if layout == nil {
		return d.emptyGroup, nil
	}
	g, err := d.hw.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   "gfx_bind_group",
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return nil, d.halError("create bind group", err)
	}
	c.retired = append(c.retired, func(dev hal.Device) { dev.DestroyBindGroup(g) })
	return g, nil
}

// applyRects sets viewport and scissor, the latter covering the whole
// target while the scissor test is off.
func (c *wgpuContext) applyRects(rt *renderTarget) {
	bounds := gfx.Rectangle{Width: rt.desc.Width, Height: rt.desc.Height}
	vp := c.viewport
	c.pass.SetViewport(float32(vp.X), float32(vp.Y), float32(vp.Width), float32(vp.Height),
		vp.MinDepth, vp.MaxDepth)
	r := bounds
	if c.raster.ScissorTestEnable {
		r = bounds.Intersect(c.scissor)
	}
	c.pass.SetScissorRect(uint32(r.X), uint32(r.Y), uint32(max(0, r.Width)), uint32(max(0, r.Height)))
}

func (c *wgpuContext) Draw(prim gfx.PrimitiveType, startVertex, vertexCount int) error {
	if err := c.prepare(prim, false); err != nil {
		return err
	}
	c.pass.Draw(uint32(vertexCount), 1, uint32(startVertex), 0)
	return nil
}

func (c *wgpuContext) DrawIndexed(prim gfx.PrimitiveType, baseVertex, startIndex, indexCount int) error {
	if err := c.prepare(prim, true); err != nil {
		return err
	}
	c.pass.DrawIndexed(uint32(indexCount), 1, uint32(startIndex), int32(baseVertex), 0)
	return nil
}

func (c *wgpuContext) DrawInstanced(prim gfx.PrimitiveType, baseVertex, startIndex, indexCount, baseInstance,
	instanceCount int) error {
	if err := c.prepare(prim, true); err != nil {
		return err
	}
	c.pass.DrawIndexed(uint32(indexCount), uint32(instanceCount), uint32(startIndex), int32(baseVertex),
		uint32(baseInstance))
	return nil
}

// submit executes everything recorded and waits for it.
func (c *wgpuContext) submit() error {
	d := c.dev
	if err := d.usable(d.gen); err != nil {
		return err
	}
	if err := c.flushClear(); err != nil {
		return err
	}
	if c.enc == nil {
		c.runRetired()
		return nil
	}
	c.endPass()
	enc := c.enc
	c.enc = nil
	cmd, err := enc.EndEncoding()
	if err != nil {
		enc.DiscardEncoding()
		c.serial++
		c.runRetired()
		return d.halError("end encoding", err)
	}
	err = d.wait(cmd)
	c.serial++
	c.runRetired()
	return err
}

// Flush submits the recorded work and blocks until the GPU has run it.
func (c *wgpuContext) Flush() error {
	return c.submit()
}
