package gfx

// TextureResource is implemented by every texture kind that can be bound
// to a texture slot: *Texture2D, *Texture3D, *TextureCube and
// *RenderTarget2D.
type TextureResource interface {
	GraphicsResource
	texture() *Texture
}

// TextureCollection holds the texture slots of one shader stage. A slot is
// marked dirty only when its value changes; only dirty slots reach the
// backend on the next draw.
type TextureCollection struct {
	ctx      *GraphicsContext
	stage    ShaderStage
	textures []TextureResource
	// native is what the backend currently has bound per slot.
	native []TextureStrategy
	dirty  slotMask
}

func newTextureCollection(c *GraphicsContext, stage ShaderStage, slots int) *TextureCollection {
	return &TextureCollection{
		ctx:      c,
		stage:    stage,
		textures: make([]TextureResource, slots),
		native:   make([]TextureStrategy, slots),
	}
}

// Len returns the number of slots.
func (tc *TextureCollection) Len() int { return len(tc.textures) }

// Get returns the texture in slot, or nil.
func (tc *TextureCollection) Get(slot int) TextureResource {
	if slot < 0 || slot >= len(tc.textures) {
		return nil
	}
	return tc.textures[slot]
}

// Set binds tex to slot. Nil unbinds the slot. The vertex stage fails with
// ErrNotSupported on devices without vertex textures.
func (tc *TextureCollection) Set(slot int, tex TextureResource) error {
	if tc.stage == ShaderStageVertex && !tc.ctx.device.caps.SupportsVertexTextures {
		return notSupported("stage", "vertex textures are not supported on this device")
	}
	if slot < 0 || slot >= len(tc.textures) {
		return argError("slot", "must be in [0, %d), got %d", len(tc.textures), slot)
	}
	var t *Texture
	if tex != nil {
		t = tex.texture()
	}
	if t == nil {
		tex = nil
	} else if t.device != tc.ctx.device {
		return argError("texture", "belongs to a different device")
	}
	if textureOf(tc.textures[slot]) == t {
		return nil
	}
	tc.textures[slot] = tex
	tc.dirty.set(slot)
	return nil
}

// Clear unbinds every slot. Slots the backend still has bound are released
// right away, so the next draw has nothing left to apply.
func (tc *TextureCollection) Clear() {
	live := tc.ctx.device.state == DeviceActive && !tc.ctx.device.disposed
	for i := range tc.textures {
		tc.textures[i] = nil
		if tc.native[i] != nil {
			if live {
				tc.ctx.strategy.SetTexture(tc.stage, i, nil)
			}
			tc.native[i] = nil
		}
	}
	tc.dirty = 0
}

// IsDirty reports whether slot changed since the last draw.
func (tc *TextureCollection) IsDirty(slot int) bool { return tc.dirty.has(slot) }

func (tc *TextureCollection) apply() error {
	for m := tc.dirty; !m.empty(); {
		slot := m.first()
		var n TextureStrategy
		if tex := tc.textures[slot]; tex != nil && !tex.IsDisposed() {
			t := tex.texture()
			if rt, ok := tex.(*RenderTarget2D); ok {
				if err := tc.ctx.resolvePending(rt); err != nil {
					tc.dirty = m
					return err
				}
			}
			var err error
			if n, err = t.native(); err != nil {
				tc.dirty = m
				return err
			}
		}
		if n != tc.native[slot] {
			tc.ctx.strategy.SetTexture(tc.stage, slot, n)
			tc.native[slot] = n
			tc.ctx.metrics.TextureBinds++
		}
		m.clear(slot)
	}
	tc.dirty = 0
	return nil
}

// rebind marks every slot holding t dirty.
func (tc *TextureCollection) rebind(t *Texture) {
	for i, tex := range tc.textures {
		if textureOf(tex) == t {
			tc.dirty.set(i)
		}
	}
}

func (tc *TextureCollection) invalidate() {
	tc.dirty = 0
	for i, t := range tc.textures {
		tc.native[i] = nil
		if t != nil {
			tc.dirty.set(i)
		}
	}
}

func textureOf(r TextureResource) *Texture {
	if r == nil {
		return nil
	}
	return r.texture()
}

// SamplerStateCollection holds the sampler slots of one shader stage. Every
// slot starts as SamplerLinearWrap.
type SamplerStateCollection struct {
	ctx      *GraphicsContext
	stage    ShaderStage
	samplers []*SamplerState
	native   []StateStrategy
	dirty    slotMask
}

func newSamplerStateCollection(c *GraphicsContext, stage ShaderStage, slots int) *SamplerStateCollection {
	sc := &SamplerStateCollection{
		ctx:      c,
		stage:    stage,
		samplers: make([]*SamplerState, slots),
		native:   make([]StateStrategy, slots),
		dirty:    fillMask(slots),
	}
	for i := range sc.samplers {
		sc.samplers[i] = SamplerLinearWrap
	}
	return sc
}

// Len returns the number of slots.
func (sc *SamplerStateCollection) Len() int { return len(sc.samplers) }

// Get returns the sampler state in slot.
func (sc *SamplerStateCollection) Get(slot int) *SamplerState {
	if slot < 0 || slot >= len(sc.samplers) {
		return nil
	}
	return sc.samplers[slot]
}

// Set binds s to slot.
func (sc *SamplerStateCollection) Set(slot int, s *SamplerState) error {
	if sc.stage == ShaderStageVertex && !sc.ctx.device.caps.SupportsVertexTextures {
		return notSupported("stage", "vertex samplers are not supported on this device")
	}
	if slot < 0 || slot >= len(sc.samplers) {
		return argError("slot", "must be in [0, %d), got %d", len(sc.samplers), slot)
	}
	if s == nil {
		return argError("samplerState", "must not be nil")
	}
	if sc.samplers[slot] != s {
		sc.samplers[slot] = s
		sc.dirty.set(slot)
	}
	return nil
}

// Clear resets every slot to SamplerLinearWrap.
func (sc *SamplerStateCollection) Clear() {
	for i, s := range sc.samplers {
		if s != SamplerLinearWrap {
			sc.samplers[i] = SamplerLinearWrap
			sc.dirty.set(i)
		}
	}
}

func (sc *SamplerStateCollection) apply() error {
	if sc.dirty.empty() {
		return nil
	}
	dev := sc.ctx.device
	for m := sc.dirty; !m.empty(); {
		slot := m.first()
		n, err := sc.samplers[slot].strategy(dev, dev.strategy.CreateSamplerState)
		if err != nil {
			sc.dirty = m
			return dev.wrap("create sampler state", err)
		}
		if n != sc.native[slot] {
			sc.ctx.strategy.SetSampler(sc.stage, slot, n)
			sc.native[slot] = n
			sc.ctx.metrics.SamplerBinds++
		}
		m.clear(slot)
	}
	sc.dirty = 0
	return nil
}

func (sc *SamplerStateCollection) invalidate() {
	clear(sc.native)
	sc.dirty = fillMask(len(sc.samplers))
}

// ConstantBufferCollection holds the constant-buffer slots of one shader
// stage. The valid mask tracks populated slots; a buffer is uploaded only
// when its shadow copy changed and bound only when the slot's native
// buffer changed.
type ConstantBufferCollection struct {
	ctx     *GraphicsContext
	stage   ShaderStage
	buffers []*ConstantBuffer
	native  []ConstantBufferStrategy
	valid   slotMask
}

func newConstantBufferCollection(c *GraphicsContext, stage ShaderStage, slots int) *ConstantBufferCollection {
	return &ConstantBufferCollection{
		ctx:     c,
		stage:   stage,
		buffers: make([]*ConstantBuffer, slots),
		native:  make([]ConstantBufferStrategy, slots),
	}
}

// Len returns the number of slots.
func (cc *ConstantBufferCollection) Len() int { return len(cc.buffers) }

// Get returns the constant buffer in slot, or nil.
func (cc *ConstantBufferCollection) Get(slot int) *ConstantBuffer {
	if slot < 0 || slot >= len(cc.buffers) {
		return nil
	}
	return cc.buffers[slot]
}

// Set binds cb to slot. Nil empties the slot.
func (cc *ConstantBufferCollection) Set(slot int, cb *ConstantBuffer) error {
	if slot < 0 || slot >= len(cc.buffers) {
		return argError("slot", "must be in [0, %d), got %d", len(cc.buffers), slot)
	}
	if cb != nil && cb.device != cc.ctx.device {
		return argError("constantBuffer", "belongs to a different device")
	}
	cc.buffers[slot] = cb
	if cb == nil {
		cc.valid.clear(slot)
	} else {
		cc.valid.set(slot)
	}
	return nil
}

// Clear empties every slot.
func (cc *ConstantBufferCollection) Clear() {
	clear(cc.buffers)
	cc.valid = 0
}

// IsValid reports whether slot holds a buffer.
func (cc *ConstantBufferCollection) IsValid(slot int) bool { return cc.valid.has(slot) }

func (cc *ConstantBufferCollection) apply() error {
	if cc.valid.empty() {
		return nil
	}
	for m := cc.valid; !m.empty(); {
		slot := m.first()
		m.clear(slot)
		cb := cc.buffers[slot]
		if cb == nil || cb.IsDisposed() {
			continue
		}
		n, err := cb.flush(cc.ctx)
		if err != nil {
			return err
		}
		if n != cc.native[slot] {
			cc.ctx.strategy.SetConstantBuffer(cc.stage, slot, n)
			cc.native[slot] = n
			cc.ctx.metrics.ConstantBufferBinds++
		}
	}
	return nil
}

func (cc *ConstantBufferCollection) invalidate() {
	clear(cc.native)
}
