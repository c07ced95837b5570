package gfx

import "testing"

// drawOnce issues a single triangle with shaders and a vertex buffer bound.
func drawOnce(t *testing.T, ctx *GraphicsContext) {
	t.Helper()
	if err := ctx.DrawPrimitives(TriangleList, 0, 1); err != nil {
		t.Fatalf("DrawPrimitives() error = %v", err)
	}
}

func drawSetup(t *testing.T) (*GraphicsDevice, *fakeDevice, *GraphicsContext) {
	t.Helper()
	dev, fd := newTestDevice(t)
	testShaders(t, dev)
	ctx := dev.Context()
	if err := ctx.SetVertexBuffer(testVertexBuffer(t, dev, 3)); err != nil {
		t.Fatal(err)
	}
	drawOnce(t, ctx)
	fd.ctx.reset()
	return dev, fd, ctx
}

func TestTextureCollectionDirtySlots(t *testing.T) {
	dev, fd, ctx := drawSetup(t)
	tc := ctx.Textures(ShaderStagePixel)
	if tc.Len() != 16 {
		t.Fatalf("Len() = %d, want 16", tc.Len())
	}
	a, _ := NewTexture2D(dev, 4, 4, false, SurfaceFormatColor)
	b, _ := NewTextureCube(dev, 4, false, SurfaceFormatColor)

	_ = tc.Set(0, a)
	_ = tc.Set(3, b)
	if !tc.IsDirty(0) || !tc.IsDirty(3) || tc.IsDirty(1) {
		t.Error("dirty mask does not match the changed slots")
	}
	drawOnce(t, ctx)
	if n := fd.ctx.count("texture"); n != 2 {
		t.Errorf("texture binds = %d, want 2", n)
	}
	if fd.ctx.textures[[2]int{int(ShaderStagePixel), 3}] != fd.textures[len(fd.textures)-1] {
		t.Error("slot 3 bound to the wrong native texture")
	}
	if tc.Get(3) != TextureResource(b) {
		t.Error("Get(3) did not return the cube")
	}

	// Setting the same texture again is not a change.
	fd.ctx.reset()
	_ = tc.Set(0, a)
	if tc.IsDirty(0) {
		t.Error("re-setting the bound texture marked the slot dirty")
	}
	drawOnce(t, ctx)
	if n := fd.ctx.count("texture"); n != 0 {
		t.Errorf("texture binds = %d, want 0", n)
	}

	errIs(t, tc.Set(16, a), ErrInvalidArgument)
	errIs(t, tc.Set(-1, a), ErrInvalidArgument)
}

func TestTextureCollectionTypedNil(t *testing.T) {
	dev, fd, ctx := drawSetup(t)
	tc := ctx.Textures(ShaderStagePixel)
	a, _ := NewTexture2D(dev, 4, 4, false, SurfaceFormatColor)
	_ = tc.Set(1, a)
	drawOnce(t, ctx)
	fd.ctx.reset()

	var none *Texture2D
	if err := tc.Set(1, none); err != nil {
		t.Fatalf("Set(typed nil) error = %v", err)
	}
	if tc.Get(1) != nil {
		t.Error("typed nil stored as a texture")
	}
	drawOnce(t, ctx)
	if n, ok := fd.ctx.textures[[2]int{int(ShaderStagePixel), 1}]; !ok || n != nil {
		t.Errorf("slot 1 native = %v, want an explicit unbind", n)
	}
}

func TestTextureCollectionClearUnbindsEagerly(t *testing.T) {
	dev, fd, ctx := drawSetup(t)
	tc := ctx.Textures(ShaderStagePixel)
	a, _ := NewTexture2D(dev, 4, 4, false, SurfaceFormatColor)
	b, _ := NewTexture2D(dev, 4, 4, false, SurfaceFormatColor)
	_ = tc.Set(0, a)
	_ = tc.Set(5, b)
	drawOnce(t, ctx)
	// Slot 7 is set but never applied.
	_ = tc.Set(7, a)
	fd.ctx.reset()

	tc.Clear()
	if n := fd.ctx.count("texture"); n != 2 {
		t.Errorf("Clear() unbound %d slots, want the 2 applied ones", n)
	}
	for slot := range tc.Len() {
		if tc.Get(slot) != nil || tc.IsDirty(slot) {
			t.Errorf("slot %d not cleared", slot)
		}
	}
	fd.ctx.reset()
	drawOnce(t, ctx)
	if n := fd.ctx.count("texture"); n != 0 {
		t.Errorf("draw after Clear() bound %d textures, want 0", n)
	}
}

func TestTextureCollectionDisposedTexture(t *testing.T) {
	dev, fd, ctx := drawSetup(t)
	tc := ctx.Textures(ShaderStagePixel)
	a, _ := NewTexture2D(dev, 4, 4, false, SurfaceFormatColor)
	_ = tc.Set(0, a)
	a.Dispose()
	drawOnce(t, ctx)
	if n := fd.ctx.textures[[2]int{int(ShaderStagePixel), 0}]; n != nil {
		t.Errorf("slot 0 native = %v, want nil for a disposed texture", n)
	}
}

func TestTextureCollectionSkipsUnchangedNative(t *testing.T) {
	dev, fd, ctx := drawSetup(t)
	tc := ctx.Textures(ShaderStagePixel)
	a, _ := NewTexture2D(dev, 4, 4, false, SurfaceFormatColor)
	b, _ := NewTexture2D(dev, 4, 4, false, SurfaceFormatColor)
	_ = tc.Set(0, a)
	drawOnce(t, ctx)

	tests := []struct {
		name  string
		set   []*Texture2D
		binds int
	}{
		{"swap back before draw", []*Texture2D{b, a}, 0},
		{"swap", []*Texture2D{b}, 1},
		{"swap and swap back", []*Texture2D{a, b}, 0},
		{"unbind", []*Texture2D{nil}, 1},
		{"unbind again", []*Texture2D{a, nil}, 0},
	}
	for _, tt := range tests {
		fd.ctx.reset()
		before := ctx.Metrics().TextureBinds
		for _, tex := range tt.set {
			_ = tc.Set(0, tex)
		}
		drawOnce(t, ctx)
		if got := fd.ctx.count("texture"); got != tt.binds {
			t.Errorf("%s: texture binds = %d, want %d", tt.name, got, tt.binds)
		}
		if got := ctx.Metrics().TextureBinds - before; got != tt.binds {
			t.Errorf("%s: TextureBinds = %d, want %d", tt.name, got, tt.binds)
		}
	}
}

func TestVertexTexturesNotSupported(t *testing.T) {
	caps := fakeCaps()
	caps.SupportsVertexTextures = false
	dev, _ := newTestDeviceCaps(t, HiDef, caps)
	ctx := dev.Context()
	a, _ := NewTexture2D(dev, 4, 4, false, SurfaceFormatColor)
	errIs(t, ctx.Textures(ShaderStageVertex).Set(0, a), ErrNotSupported)
	errIs(t, ctx.SamplerStates(ShaderStageVertex).Set(0, SamplerPointClamp), ErrNotSupported)
	if n := ctx.Textures(ShaderStageVertex).Len(); n != 0 {
		t.Errorf("vertex texture slots = %d, want 0", n)
	}
}

func TestSamplerStateCollection(t *testing.T) {
	_, fd, ctx := drawSetup(t)
	sc := ctx.SamplerStates(ShaderStagePixel)
	if sc.Get(0) != SamplerLinearWrap {
		t.Errorf("default sampler = %v", sc.Get(0).Name())
	}
	errIs(t, sc.Set(0, nil), ErrInvalidArgument)

	_ = sc.Set(2, SamplerPointClamp)
	_ = sc.Set(3, SamplerLinearWrap)
	drawOnce(t, ctx)
	if n := fd.ctx.count("sampler"); n != 1 || fd.ctx.calls[0] != "sampler Pixel 2" {
		t.Errorf("calls = %v, want one bind of slot 2", fd.ctx.calls)
	}

	// Two objects with equal descriptions still get separate natives.
	fd.ctx.reset()
	custom := NewSamplerState(SamplerPointClamp.Desc())
	_ = sc.Set(2, custom)
	drawOnce(t, ctx)
	if n := fd.ctx.count("sampler"); n != 1 {
		t.Errorf("sampler binds = %d, want 1", n)
	}
	if !custom.IsBound() {
		t.Error("custom sampler not marked bound")
	}

	fd.ctx.reset()
	sc.Clear()
	drawOnce(t, ctx)
	if n := fd.ctx.count("sampler"); n != 1 {
		t.Errorf("Clear() rebound %d samplers, want only slot 2", n)
	}
	if sc.Get(2) != SamplerLinearWrap {
		t.Error("Clear() did not restore LinearWrap")
	}
}

func TestConstantBufferCollection(t *testing.T) {
	dev, fd, ctx := drawSetup(t)
	cc := ctx.ConstantBuffers(ShaderStagePixel)
	cb, err := NewConstantBuffer(dev, "Material", 32)
	if err != nil {
		t.Fatal(err)
	}
	native := fd.cbuffers[len(fd.cbuffers)-1]

	_ = cc.Set(1, cb)
	if !cc.IsValid(1) || cc.IsValid(0) {
		t.Error("valid mask does not match the populated slots")
	}
	drawOnce(t, ctx)
	if fd.ctx.count("cbuffer Pixel 1") != 1 || native.uploads != 1 {
		t.Fatalf("calls = %v uploads = %d", fd.ctx.calls, native.uploads)
	}

	// Unchanged contents: no upload and no rebind.
	fd.ctx.reset()
	drawOnce(t, ctx)
	if fd.ctx.count("cbuffer") != 0 || native.uploads != 1 {
		t.Errorf("unchanged buffer: calls = %v uploads = %d", fd.ctx.calls, native.uploads)
	}

	// Changed contents: one upload, still no rebind.
	fd.ctx.reset()
	if err := cb.SetFloats(0, 1, 2, 3, 4); err != nil {
		t.Fatal(err)
	}
	if !cb.IsDirty() {
		t.Error("SetFloats did not mark the buffer dirty")
	}
	drawOnce(t, ctx)
	if fd.ctx.count("cbuffer") != 0 || native.uploads != 2 {
		t.Errorf("changed buffer: calls = %v uploads = %d", fd.ctx.calls, native.uploads)
	}
	if v := native.last[4:8]; v[0] != 0 || v[3] != 0x40 {
		t.Errorf("uploaded bytes = %v, want float32(2)", v)
	}

	errIs(t, cc.Set(14, cb), ErrInvalidArgument)
	cc.Clear()
	if cc.IsValid(1) || cc.Get(1) != nil {
		t.Error("Clear() left slot 1 populated")
	}
}

func TestConstantBufferValidation(t *testing.T) {
	dev, _ := newTestDevice(t)
	_, err := NewConstantBuffer(dev, "Odd", 20)
	errIs(t, err, ErrInvalidArgument)
	_, err = NewConstantBuffer(dev, "Huge", 16*5000)
	errIs(t, err, ErrNotSupported)

	cb, _ := NewConstantBuffer(dev, "Globals", 32)
	errIs(t, cb.SetData(24, make([]byte, 16)), ErrInvalidArgument)

	// Uploads only happen under the context lock.
	_, err = cb.flush(dev.Context())
	errIs(t, err, ErrInvalidOperation)

	clone, err := cb.Clone()
	if err != nil {
		t.Fatal(err)
	}
	if clone == cb || clone.BufferName() != "Globals" || clone.Size() != 32 {
		t.Errorf("Clone() = %+v", clone)
	}
}
