package gfx

import (
	"slices"
	"sync"
)

// dirtyFlags records which pieces of context state changed since the last
// draw.
type dirtyFlags uint16

const (
	dirtyTargets dirtyFlags = 1 << iota
	dirtyViewport
	dirtyScissor
	dirtyShaders
	dirtyVertexBuffers
	dirtyIndexBuffer
	dirtyBlend
	dirtyDepthStencil
	dirtyRasterizer

	dirtyAll = 1<<iota - 1
)

// Metrics counts the work a context issued since the last Present.
type Metrics struct {
	DrawCount      int
	PrimitiveCount int
	ClearCount     int

	TargetBinds           int
	ShaderBinds           int
	ConstantBufferBinds   int
	ConstantBufferUploads int
	VertexBufferBinds     int
	IndexBufferBinds      int
	TextureBinds          int
	SamplerBinds          int
	StateBinds            int
}

// VertexBufferBinding binds a vertex buffer to one input slot.
type VertexBufferBinding struct {
	Buffer *VertexBuffer
	// VertexOffset is the first vertex read from the buffer.
	VertexOffset int
	// InstanceFrequency is 0 for per-vertex data, otherwise the number of
	// instances drawn per element.
	InstanceFrequency int
}

// Index is the set of element types accepted for index data.
type Index interface {
	~uint16 | ~int16 | ~uint32 | ~int32
}

// GraphicsContext records render state and issues draws. State is applied
// lazily, right before the next draw, and only where it changed.
type GraphicsContext struct {
	device   *GraphicsDevice
	strategy ContextStrategy

	mu     sync.Mutex
	locked bool

	dirty    dirtyFlags
	viewport Viewport
	scissor  Rectangle
	targets  []*RenderTarget2D
	// unbound holds targets switched away from that still need Resolve.
	unbound []*RenderTarget2D

	vs, ps        *Shader
	vertexBuffers []VertexBufferBinding
	indexBuffer   *IndexBuffer

	blend            *BlendState
	blendFactor      Color
	depthStencil     *DepthStencilState
	referenceStencil int
	rasterizer       *RasterizerState

	textures  [shaderStageCount]*TextureCollection
	samplers  [shaderStageCount]*SamplerStateCollection
	constants [shaderStageCount]*ConstantBufferCollection

	userVertices streamBuffer
	userIndices  streamBuffer

	// scratch slices reused across draws
	targetNatives []RenderTargetStrategy
	streams       []VertexStream

	metrics Metrics
}

func newGraphicsContext(d *GraphicsDevice, s ContextStrategy) *GraphicsContext {
	c := &GraphicsContext{
		device:       d,
		strategy:     s,
		dirty:        dirtyAll,
		viewport:     NewViewport(0, 0, d.pp.BackBufferWidth, d.pp.BackBufferHeight),
		scissor:      d.pp.Bounds(),
		blend:        BlendOpaque,
		blendFactor:  BlendOpaque.Desc().BlendFactor,
		depthStencil: DepthStencilDefault,
		rasterizer:   RasterizerCullCounterClockwise,
		userVertices: streamBuffer{kind: BufferKindVertex},
		userIndices:  streamBuffer{kind: BufferKindIndex},
	}
	caps := d.caps
	c.textures[ShaderStagePixel] = newTextureCollection(c, ShaderStagePixel, caps.MaxTextureSlots)
	c.textures[ShaderStageVertex] = newTextureCollection(c, ShaderStageVertex, caps.MaxVertexTextureSlots)
	c.samplers[ShaderStagePixel] = newSamplerStateCollection(c, ShaderStagePixel, caps.MaxTextureSlots)
	c.samplers[ShaderStageVertex] = newSamplerStateCollection(c, ShaderStageVertex, caps.MaxVertexTextureSlots)
	c.constants[ShaderStagePixel] = newConstantBufferCollection(c, ShaderStagePixel, caps.MaxConstantBufferSlots)
	c.constants[ShaderStageVertex] = newConstantBufferCollection(c, ShaderStageVertex, caps.MaxConstantBufferSlots)
	return c
}

// Device returns the owning device.
func (c *GraphicsContext) Device() *GraphicsDevice { return c.device }

// Lock acquires the context lock. Draws, clears and flushes take it
// themselves; constant-buffer uploads run only while it is held.
func (c *GraphicsContext) Lock() {
	c.mu.Lock()
	c.locked = true
}

// Unlock releases the context lock.
func (c *GraphicsContext) Unlock() {
	c.locked = false
	c.mu.Unlock()
}

// Metrics returns the counters accumulated since the last Present.
func (c *GraphicsContext) Metrics() Metrics { return c.metrics }

func (c *GraphicsContext) Viewport() Viewport { return c.viewport }

// SetViewport sets the viewport used by subsequent draws.
func (c *GraphicsContext) SetViewport(vp Viewport) {
	if vp != c.viewport {
		c.viewport = vp
		c.dirty |= dirtyViewport
	}
}

func (c *GraphicsContext) ScissorRectangle() Rectangle { return c.scissor }

// SetScissorRectangle sets the scissor rectangle. It only takes effect with
// a rasterizer state that enables the scissor test.
func (c *GraphicsContext) SetScissorRectangle(r Rectangle) {
	if r != c.scissor {
		c.scissor = r
		c.dirty |= dirtyScissor
	}
}

func (c *GraphicsContext) BlendState() *BlendState { return c.blend }

// SetBlendState binds s and resets the blend factor to the one s describes.
func (c *GraphicsContext) SetBlendState(s *BlendState) error {
	if s == nil {
		return argError("blendState", "must not be nil")
	}
	factor := s.Desc().BlendFactor
	if s != c.blend || factor != c.blendFactor {
		c.blend = s
		c.blendFactor = factor
		c.dirty |= dirtyBlend
	}
	return nil
}

func (c *GraphicsContext) BlendFactor() Color { return c.blendFactor }

// SetBlendFactor overrides the constant colour used by BlendBlendFactor.
func (c *GraphicsContext) SetBlendFactor(f Color) {
	if f != c.blendFactor {
		c.blendFactor = f
		c.dirty |= dirtyBlend
	}
}

func (c *GraphicsContext) DepthStencilState() *DepthStencilState { return c.depthStencil }

// SetDepthStencilState binds s and resets the reference stencil to the one
// s describes.
func (c *GraphicsContext) SetDepthStencilState(s *DepthStencilState) error {
	if s == nil {
		return argError("depthStencilState", "must not be nil")
	}
	ref := s.Desc().ReferenceStencil
	if s != c.depthStencil || ref != c.referenceStencil {
		c.depthStencil = s
		c.referenceStencil = ref
		c.dirty |= dirtyDepthStencil
	}
	return nil
}

func (c *GraphicsContext) ReferenceStencil() int { return c.referenceStencil }

func (c *GraphicsContext) SetReferenceStencil(ref int) {
	if ref != c.referenceStencil {
		c.referenceStencil = ref
		c.dirty |= dirtyDepthStencil
	}
}

func (c *GraphicsContext) RasterizerState() *RasterizerState { return c.rasterizer }

func (c *GraphicsContext) SetRasterizerState(s *RasterizerState) error {
	if s == nil {
		return argError("rasterizerState", "must not be nil")
	}
	if s != c.rasterizer {
		c.rasterizer = s
		c.dirty |= dirtyRasterizer
	}
	return nil
}

func (c *GraphicsContext) VertexShader() *Shader { return c.vs }
func (c *GraphicsContext) PixelShader() *Shader  { return c.ps }

// SetVertexShader binds a vertex shader. Nil unbinds it.
func (c *GraphicsContext) SetVertexShader(s *Shader) error {
	return c.setShader(&c.vs, s, ShaderStageVertex)
}

// SetPixelShader binds a pixel shader. Nil unbinds it.
func (c *GraphicsContext) SetPixelShader(s *Shader) error {
	return c.setShader(&c.ps, s, ShaderStagePixel)
}

func (c *GraphicsContext) setShader(slot **Shader, s *Shader, stage ShaderStage) error {
	if s != nil {
		if s.Stage() != stage {
			return argError("shader", "a %s shader cannot be bound to the %s stage", s.Stage(), stage)
		}
		if s.device != c.device {
			return argError("shader", "belongs to a different device")
		}
	}
	if *slot != s {
		*slot = s
		c.dirty |= dirtyShaders
	}
	return nil
}

// VertexBuffers returns a copy of the vertex buffer bindings.
func (c *GraphicsContext) VertexBuffers() []VertexBufferBinding {
	return slices.Clone(c.vertexBuffers)
}

// SetVertexBuffer binds vb to slot 0 and unbinds the other slots. Nil
// unbinds every slot.
func (c *GraphicsContext) SetVertexBuffer(vb *VertexBuffer) error {
	if vb == nil {
		return c.SetVertexBuffers()
	}
	return c.SetVertexBuffers(VertexBufferBinding{Buffer: vb})
}

// SetVertexBuffers binds one buffer per input slot.
func (c *GraphicsContext) SetVertexBuffers(bindings ...VertexBufferBinding) error {
	if len(bindings) > c.device.caps.MaxVertexBufferSlots {
		return argError("bindings", "at most %d vertex buffers can be bound, got %d",
			c.device.caps.MaxVertexBufferSlots, len(bindings))
	}
	for i, b := range bindings {
		if b.Buffer == nil {
			return argError("bindings", "binding %d has no buffer", i)
		}
		if b.Buffer.device != c.device {
			return argError("bindings", "binding %d belongs to a different device", i)
		}
		if b.VertexOffset < 0 || b.VertexOffset >= b.Buffer.VertexCount() {
			return argError("bindings", "binding %d: vertex offset %d outside the buffer", i, b.VertexOffset)
		}
		if b.InstanceFrequency < 0 {
			return argError("bindings", "binding %d: negative instance frequency", i)
		}
	}
	if slices.Equal(bindings, c.vertexBuffers) {
		return nil
	}
	c.vertexBuffers = append(c.vertexBuffers[:0], bindings...)
	c.dirty |= dirtyVertexBuffers
	return nil
}

func (c *GraphicsContext) IndexBuffer() *IndexBuffer { return c.indexBuffer }

// SetIndexBuffer binds the index buffer used by indexed draws.
func (c *GraphicsContext) SetIndexBuffer(ib *IndexBuffer) error {
	if ib != nil && ib.device != c.device {
		return argError("indexBuffer", "belongs to a different device")
	}
	if ib != c.indexBuffer {
		c.indexBuffer = ib
		c.dirty |= dirtyIndexBuffer
	}
	return nil
}

// Textures returns the texture slots of stage.
func (c *GraphicsContext) Textures(stage ShaderStage) *TextureCollection { return c.textures[stage] }

// SamplerStates returns the sampler slots of stage.
func (c *GraphicsContext) SamplerStates(stage ShaderStage) *SamplerStateCollection {
	return c.samplers[stage]
}

// ConstantBuffers returns the constant-buffer slots of stage.
func (c *GraphicsContext) ConstantBuffers(stage ShaderStage) *ConstantBufferCollection {
	return c.constants[stage]
}

// RenderTargets returns the bound render targets. Empty means the back
// buffer.
func (c *GraphicsContext) RenderTargets() []*RenderTarget2D { return slices.Clone(c.targets) }

// SetRenderTarget binds rt, or the back buffer when rt is nil.
func (c *GraphicsContext) SetRenderTarget(rt *RenderTarget2D) error {
	if rt == nil {
		return c.SetRenderTargets()
	}
	return c.SetRenderTargets(rt)
}

// SetRenderTargets binds up to MaxRenderTargets targets of equal size. No
// targets binds the back buffer. The viewport and scissor rectangle are
// reset to cover the new targets. Targets switched away from are resolved
// before the next draw.
func (c *GraphicsContext) SetRenderTargets(targets ...*RenderTarget2D) error {
	if len(targets) > c.device.caps.MaxRenderTargets {
		return argError("renderTargets", "at most %d render targets can be bound, got %d",
			c.device.caps.MaxRenderTargets, len(targets))
	}
	for i, rt := range targets {
		if rt == nil {
			return argError("renderTargets", "render target %d is nil", i)
		}
		if rt.IsDisposed() {
			return invalidDisposed("RenderTarget2D")
		}
		if rt.device != c.device {
			return argError("renderTargets", "render target %d belongs to a different device", i)
		}
		if rt.Width() != targets[0].Width() || rt.Height() != targets[0].Height() {
			return argError("renderTargets", "all render targets must have the same size")
		}
	}
	if slices.Equal(targets, c.targets) {
		return nil
	}
	for _, old := range c.targets {
		if !slices.Contains(targets, old) && !slices.Contains(c.unbound, old) {
			c.unbound = append(c.unbound, old)
		}
	}
	c.targets = append(c.targets[:0], targets...)
	var bounds Rectangle
	if len(targets) > 0 {
		bounds = targets[0].Bounds()
	} else {
		bounds = c.device.pp.Bounds()
	}
	c.SetViewport(NewViewport(bounds.X, bounds.Y, bounds.Width, bounds.Height))
	c.SetScissorRectangle(bounds)
	c.dirty |= dirtyTargets
	return nil
}

// Clear clears the selected buffers of the bound render targets.
func (c *GraphicsContext) Clear(options ClearOptions, color Vector4, depth float32, stencil int) error {
	if err := c.device.checkUsable(); err != nil {
		return err
	}
	if options == 0 {
		return nil
	}
	c.Lock()
	defer c.Unlock()
	if err := c.applyTargets(); err != nil {
		return err
	}
	c.applyViewport()
	if err := c.strategy.Clear(options, color, depth, stencil); err != nil {
		return c.device.wrap("clear", err)
	}
	c.metrics.ClearCount++
	return nil
}

// ClearColor clears colour, depth and stencil, using col for the colour.
func (c *GraphicsContext) ClearColor(col Color) error {
	return c.Clear(ClearAll, col.ToVector4(), 1, 0)
}

// Flush submits pending native work and waits for the GPU to consume it.
func (c *GraphicsContext) Flush() error {
	if err := c.device.checkUsable(); err != nil {
		return err
	}
	c.Lock()
	defer c.Unlock()
	if err := c.strategy.Flush(); err != nil {
		return c.device.wrap("flush", err)
	}
	return nil
}

// ResolveRenderTargets resolves every target that was rendered to, bound
// or not, so its contents can be sampled or read back.
func (c *GraphicsContext) ResolveRenderTargets() error {
	if err := c.device.checkUsable(); err != nil {
		return err
	}
	c.Lock()
	defer c.Unlock()
	if err := c.applyTargets(); err != nil {
		return err
	}
	if err := c.resolveUnbound(); err != nil {
		return err
	}
	for _, rt := range c.targets {
		if err := rt.resolve(); err != nil {
			return err
		}
	}
	return nil
}

// DrawPrimitives draws non-indexed primitives from the bound vertex buffers.
func (c *GraphicsContext) DrawPrimitives(prim PrimitiveType, vertexStart, primitiveCount int) error {
	if err := c.checkDraw(prim, primitiveCount); err != nil {
		return err
	}
	if len(c.vertexBuffers) == 0 {
		return invalidOp("a vertex buffer must be set before calling DrawPrimitives")
	}
	if vertexStart < 0 {
		return argError("vertexStart", "must not be negative, got %d", vertexStart)
	}
	c.Lock()
	defer c.Unlock()
	if err := c.applyState(false, nil); err != nil {
		return err
	}
	if err := c.strategy.Draw(prim, vertexStart, prim.VertexCount(primitiveCount)); err != nil {
		return c.device.wrap("draw", err)
	}
	c.countDraw(primitiveCount)
	return nil
}

// DrawIndexedPrimitives draws indexed primitives from the bound vertex and
// index buffers. baseVertex is added to every index.
func (c *GraphicsContext) DrawIndexedPrimitives(prim PrimitiveType, baseVertex, startIndex, primitiveCount int) error {
	indexCount, err := c.checkIndexed(prim, startIndex, primitiveCount)
	if err != nil {
		return err
	}
	c.Lock()
	defer c.Unlock()
	if err := c.applyState(true, nil); err != nil {
		return err
	}
	if err := c.strategy.DrawIndexed(prim, baseVertex, startIndex, indexCount); err != nil {
		return c.device.wrap("draw indexed", err)
	}
	c.countDraw(primitiveCount)
	return nil
}

// DrawInstancedPrimitives draws instanceCount instances of indexed
// primitives. It requires SupportsInstancing, and SupportsBaseInstance for
// a non-zero baseInstance.
func (c *GraphicsContext) DrawInstancedPrimitives(prim PrimitiveType, baseVertex, startIndex, primitiveCount,
	baseInstance, instanceCount int) error {
	caps := c.device.caps
	if !caps.SupportsInstancing {
		return notSupported("instanceCount", "instanced drawing is not supported on this device")
	}
	if baseInstance != 0 && !caps.SupportsBaseInstance {
		return notSupported("baseInstance", "a base instance is not supported on this device")
	}
	if instanceCount <= 0 {
		return argError("instanceCount", "must be greater than zero, got %d", instanceCount)
	}
	if baseInstance < 0 {
		return argError("baseInstance", "must not be negative, got %d", baseInstance)
	}
	indexCount, err := c.checkIndexed(prim, startIndex, primitiveCount)
	if err != nil {
		return err
	}
	c.Lock()
	defer c.Unlock()
	if err := c.applyState(true, nil); err != nil {
		return err
	}
	if err := c.strategy.DrawInstanced(prim, baseVertex, startIndex, indexCount, baseInstance, instanceCount); err != nil {
		return c.device.wrap("draw instanced", err)
	}
	c.countDraw(primitiveCount * instanceCount)
	return nil
}

// DrawUserPrimitives draws primitives straight from a caller-owned slice.
// The vertices are copied into a streaming buffer; data is not retained.
func DrawUserPrimitives[T any](c *GraphicsContext, prim PrimitiveType, vertexData []T, vertexOffset,
	primitiveCount int, decl *VertexDeclaration) error {
	if err := c.checkDraw(prim, primitiveCount); err != nil {
		return err
	}
	if len(vertexData) == 0 {
		return argError("vertexData", "must not be empty")
	}
	if err := checkUserDeclaration[T](decl); err != nil {
		return err
	}
	vertexCount := prim.VertexCount(primitiveCount)
	if vertexOffset < 0 || vertexOffset+vertexCount > len(vertexData) {
		return argError("vertexOffset", "%d vertices from offset %d exceed the %d supplied",
			vertexCount, vertexOffset, len(vertexData))
	}

	c.Lock()
	defer c.Unlock()
	var first int
	bind := func() error {
		var err error
		first, err = c.bindUserVertices(asBytes(vertexData[vertexOffset:vertexOffset+vertexCount]), decl)
		return err
	}
	if err := c.applyState(false, bind); err != nil {
		return err
	}
	if err := c.strategy.Draw(prim, first, vertexCount); err != nil {
		return c.device.wrap("draw user primitives", err)
	}
	c.countDraw(primitiveCount)
	return nil
}

// DrawUserIndexedPrimitives draws indexed primitives from caller-owned
// slices. Indices are relative to vertexOffset. Both slices are copied into
// streaming buffers and not retained.
func DrawUserIndexedPrimitives[T any, I Index](c *GraphicsContext, prim PrimitiveType, vertexData []T,
	vertexOffset, numVertices int, indexData []I, indexOffset, primitiveCount int, decl *VertexDeclaration) error {
	if err := c.checkDraw(prim, primitiveCount); err != nil {
		return err
	}
	if len(vertexData) == 0 {
		return argError("vertexData", "must not be empty")
	}
	if len(indexData) == 0 {
		return argError("indexData", "must not be empty")
	}
	if err := checkUserDeclaration[T](decl); err != nil {
		return err
	}
	if numVertices <= 0 || vertexOffset < 0 || vertexOffset+numVertices > len(vertexData) {
		return argError("numVertices", "%d vertices from offset %d exceed the %d supplied",
			numVertices, vertexOffset, len(vertexData))
	}
	indexCount := prim.VertexCount(primitiveCount)
	if indexOffset < 0 || indexOffset+indexCount > len(indexData) {
		return argError("indexOffset", "%d indices from offset %d exceed the %d supplied",
			indexCount, indexOffset, len(indexData))
	}
	size := IndexElementSize16
	if sizeOf[I]() == 4 {
		size = IndexElementSize32
	}

	c.Lock()
	defer c.Unlock()
	var baseVertex, startIndex int
	bind := func() error {
		var err error
		baseVertex, err = c.bindUserVertices(asBytes(vertexData[vertexOffset:vertexOffset+numVertices]), decl)
		if err != nil {
			return err
		}
		startIndex, err = c.bindUserIndices(asBytes(indexData[indexOffset:indexOffset+indexCount]), size)
		return err
	}
	if err := c.applyState(true, bind); err != nil {
		return err
	}
	if err := c.strategy.DrawIndexed(prim, baseVertex, startIndex, indexCount); err != nil {
		return c.device.wrap("draw user indexed primitives", err)
	}
	c.countDraw(primitiveCount)
	return nil
}

func checkUserDeclaration[T any](decl *VertexDeclaration) error {
	if decl == nil {
		return argError("vertexDeclaration", "must not be nil")
	}
	if decl.Stride() != sizeOf[T]() {
		return argError("vertexDeclaration", "stride %d does not match the vertex size %d", decl.Stride(), sizeOf[T]())
	}
	return nil
}

func (c *GraphicsContext) checkDraw(prim PrimitiveType, primitiveCount int) error {
	if err := c.device.checkUsable(); err != nil {
		return err
	}
	if prim < TriangleList || prim > PointList {
		return argError("primitiveType", "unknown primitive type %d", int(prim))
	}
	if primitiveCount <= 0 {
		return argError("primitiveCount", "must be greater than zero, got %d", primitiveCount)
	}
	if c.vs == nil {
		return invalidOp("a vertex shader must be set before drawing")
	}
	if c.ps == nil {
		return invalidOp("a pixel shader must be set before drawing")
	}
	if c.vs.IsDisposed() || c.ps.IsDisposed() {
		return invalidDisposed("Shader")
	}
	return nil
}

func (c *GraphicsContext) checkIndexed(prim PrimitiveType, startIndex, primitiveCount int) (int, error) {
	if err := c.checkDraw(prim, primitiveCount); err != nil {
		return 0, err
	}
	if len(c.vertexBuffers) == 0 {
		return 0, invalidOp("a vertex buffer must be set before drawing indexed primitives")
	}
	if c.indexBuffer == nil {
		return 0, invalidOp("an index buffer must be set before drawing indexed primitives")
	}
	indexCount := prim.VertexCount(primitiveCount)
	if startIndex < 0 || startIndex+indexCount > c.indexBuffer.IndexCount() {
		return 0, argError("startIndex", "%d indices from %d exceed the %d in the index buffer",
			indexCount, startIndex, c.indexBuffer.IndexCount())
	}
	return indexCount, nil
}

func (c *GraphicsContext) countDraw(primitives int) {
	c.metrics.DrawCount++
	c.metrics.PrimitiveCount += primitives
}

// applyState resolves pending state in a fixed order: render targets,
// viewport and scissor, shaders, constant buffers, vertex and index
// buffers, textures and samplers, fixed-function state. streams, when not
// nil, replaces the vertex and index buffer step.
func (c *GraphicsContext) applyState(indexed bool, streams func() error) error {
	if err := c.applyTargets(); err != nil {
		return err
	}
	if err := c.resolveUnbound(); err != nil {
		return err
	}
	c.applyViewport()

	if c.dirty&dirtyShaders != 0 {
		vs, err := c.vs.native()
		if err != nil {
			return err
		}
		ps, err := c.ps.native()
		if err != nil {
			return err
		}
		if err := c.strategy.SetShaders(vs, ps); err != nil {
			return c.device.wrap("set shaders", err)
		}
		c.dirty &^= dirtyShaders
		c.metrics.ShaderBinds++
	}

	for _, cbs := range c.constants {
		if err := cbs.apply(); err != nil {
			return err
		}
	}

	if streams != nil {
		if err := streams(); err != nil {
			return err
		}
	} else if err := c.applyBuffers(indexed); err != nil {
		return err
	}

	for stage := range shaderStageCount {
		if err := c.textures[stage].apply(); err != nil {
			return err
		}
		if err := c.samplers[stage].apply(); err != nil {
			return err
		}
	}

	return c.applyFixedFunction()
}

func (c *GraphicsContext) applyTargets() error {
	if c.dirty&dirtyTargets == 0 {
		return nil
	}
	natives := c.targetNatives[:0]
	for _, rt := range c.targets {
		n, err := rt.renderNative()
		if err != nil {
			return err
		}
		natives = append(natives, n)
	}
	c.targetNatives = natives
	if err := c.strategy.SetRenderTargets(natives); err != nil {
		return c.device.wrap("set render targets", err)
	}
	c.dirty &^= dirtyTargets
	c.metrics.TargetBinds++
	return nil
}

func (c *GraphicsContext) resolveUnbound() error {
	for len(c.unbound) > 0 {
		rt := c.unbound[0]
		c.unbound = c.unbound[1:]
		if rt.IsDisposed() {
			continue
		}
		if err := rt.resolve(); err != nil {
			return err
		}
	}
	c.unbound = nil
	return nil
}

// resolvePending resolves rt if it was unbound and not resolved yet.
func (c *GraphicsContext) resolvePending(rt *RenderTarget2D) error {
	i := slices.Index(c.unbound, rt)
	if i < 0 {
		return nil
	}
	c.unbound = slices.Delete(c.unbound, i, i+1)
	return rt.resolve()
}

func (c *GraphicsContext) applyViewport() {
	if c.dirty&dirtyViewport != 0 {
		c.strategy.SetViewport(c.viewport)
		c.dirty &^= dirtyViewport
	}
	if c.dirty&dirtyScissor != 0 {
		c.strategy.SetScissorRectangle(c.scissor)
		c.dirty &^= dirtyScissor
	}
}

func (c *GraphicsContext) applyBuffers(indexed bool) error {
	if c.dirty&dirtyVertexBuffers != 0 {
		streams := c.streams[:0]
		for _, b := range c.vertexBuffers {
			n, err := b.Buffer.native()
			if err != nil {
				return err
			}
			streams = append(streams, VertexStream{
				Buffer:            n,
				Declaration:       b.Buffer.decl,
				Offset:            b.VertexOffset,
				InstanceFrequency: b.InstanceFrequency,
			})
		}
		c.streams = streams
		if err := c.strategy.SetVertexBuffers(streams); err != nil {
			return c.device.wrap("set vertex buffers", err)
		}
		c.dirty &^= dirtyVertexBuffers
		c.metrics.VertexBufferBinds++
	}
	if indexed && c.dirty&dirtyIndexBuffer != 0 {
		n, err := c.indexBuffer.native()
		if err != nil {
			return err
		}
		c.strategy.SetIndexBuffer(n, c.indexBuffer.ElementSize())
		c.dirty &^= dirtyIndexBuffer
		c.metrics.IndexBufferBinds++
	}
	return nil
}

func (c *GraphicsContext) applyFixedFunction() error {
	dev := c.device
	if c.dirty&dirtyBlend != 0 {
		s, err := c.blend.strategy(dev, dev.strategy.CreateBlendState)
		if err != nil {
			return dev.wrap("create blend state", err)
		}
		c.strategy.SetBlendState(s, c.blendFactor)
		c.dirty &^= dirtyBlend
		c.metrics.StateBinds++
	}
	if c.dirty&dirtyDepthStencil != 0 {
		s, err := c.depthStencil.strategy(dev, dev.strategy.CreateDepthStencilState)
		if err != nil {
			return dev.wrap("create depth-stencil state", err)
		}
		c.strategy.SetDepthStencilState(s, c.referenceStencil)
		c.dirty &^= dirtyDepthStencil
		c.metrics.StateBinds++
	}
	if c.dirty&dirtyRasterizer != 0 {
		s, err := c.rasterizer.strategy(dev, dev.strategy.CreateRasterizerState)
		if err != nil {
			return dev.wrap("create rasterizer state", err)
		}
		c.strategy.SetRasterizerState(s)
		c.dirty &^= dirtyRasterizer
		c.metrics.StateBinds++
	}
	return nil
}

// bindUserVertices streams data into the user vertex buffer, binds it and
// returns the first vertex. The regular bindings are restored on the next
// draw that uses them.
func (c *GraphicsContext) bindUserVertices(data []byte, decl *VertexDeclaration) (int, error) {
	offset, err := c.userVertices.write(c, data, decl.Stride())
	if err != nil {
		return 0, err
	}
	c.streams = append(c.streams[:0], VertexStream{Buffer: c.userVertices.native, Declaration: decl})
	if err := c.strategy.SetVertexBuffers(c.streams); err != nil {
		return 0, c.device.wrap("set vertex buffers", err)
	}
	c.dirty |= dirtyVertexBuffers
	c.metrics.VertexBufferBinds++
	return offset / decl.Stride(), nil
}

func (c *GraphicsContext) bindUserIndices(data []byte, size IndexElementSize) (int, error) {
	offset, err := c.userIndices.write(c, data, size.Bytes())
	if err != nil {
		return 0, err
	}
	c.strategy.SetIndexBuffer(c.userIndices.native, size)
	c.dirty |= dirtyIndexBuffer
	c.metrics.IndexBufferBinds++
	return offset / size.Bytes(), nil
}

// backBufferChanged follows a Reset. With the back buffer bound, viewport
// and scissor snap to its new size.
func (c *GraphicsContext) backBufferChanged() {
	c.dirty |= dirtyTargets
	if len(c.targets) == 0 {
		b := c.device.pp.Bounds()
		c.SetViewport(NewViewport(0, 0, b.Width, b.Height))
		c.SetScissorRectangle(b)
	}
}

// invalidate forgets every native binding, so the next draw rebinds all
// populated state. Used after recovery and after a bound resource got a
// new native object.
func (c *GraphicsContext) invalidate() {
	c.dirty = dirtyAll
	for stage := range shaderStageCount {
		c.textures[stage].invalidate()
		c.samplers[stage].invalidate()
		c.constants[stage].invalidate()
	}
}

// targetResized rebinds rt wherever it is bound after it got a new native
// object.
func (c *GraphicsContext) targetResized(rt *RenderTarget2D) {
	if slices.Contains(c.targets, rt) {
		c.dirty |= dirtyTargets
	}
	for stage := range shaderStageCount {
		c.textures[stage].rebind(rt.texture())
	}
}

func (c *GraphicsContext) dispose() {
	c.userVertices.release(c.device)
	c.userIndices.release(c.device)
	c.targets = nil
	c.unbound = nil
	c.vertexBuffers = nil
	c.indexBuffer = nil
	c.vs, c.ps = nil, nil
}

// streamBuffer is a device-owned dynamic buffer the user primitive draws
// append to. It discards its contents when it wraps.
type streamBuffer struct {
	kind   BufferKind
	native BufferStrategy
	size   int
	pos    int
	gen    uint64
}

func (s *streamBuffer) write(c *GraphicsContext, data []byte, align int) (int, error) {
	dev := c.device
	if s.native != nil && s.gen != dev.generation {
		// Died with the previous native device.
		s.native, s.size, s.pos = nil, 0, 0
	}
	if s.native == nil || len(data) > s.size {
		size := max(s.size, dev.opts.userBufferSize)
		for size < len(data) {
			size *= 2
		}
		if s.native != nil {
			s.native.Dispose()
		}
		n, err := dev.strategy.CreateBuffer(BufferDesc{
			Kind:    s.kind,
			Size:    size,
			Usage:   BufferUsageWriteOnly,
			Dynamic: true,
		})
		if err != nil {
			s.native, s.size = nil, 0
			return 0, dev.wrap("create user buffer", err)
		}
		dev.log.Debug("gfx: user buffer grown", "kind", int(s.kind), "size", size)
		s.native, s.size, s.pos, s.gen = n, size, 0, dev.generation
	}
	pos := alignUp(s.pos, align)
	opts := SetDataNoOverwrite
	if pos+len(data) > s.size {
		pos = 0
		opts = SetDataDiscard
	}
	if err := s.native.SetData(pos, data, opts); err != nil {
		return 0, dev.wrap("write user buffer", err)
	}
	s.pos = pos + len(data)
	return pos, nil
}

func (s *streamBuffer) release(dev *GraphicsDevice) {
	if s.native != nil && s.gen == dev.generation && dev.state == DeviceActive {
		s.native.Dispose()
	}
	s.native, s.size, s.pos = nil, 0, 0
}
