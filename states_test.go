package gfx

import (
	"errors"
	"testing"
)

func TestPresetsAreReadOnly(t *testing.T) {
	tests := []struct {
		name   string
		update func() error
	}{
		{"BlendOpaque", func() error { return BlendOpaque.Update(func(d *BlendDesc) { d.BlendFactor = Black }) }},
		{"DepthStencilNone", func() error {
			return DepthStencilNone.Update(func(d *DepthStencilDesc) { d.DepthBufferEnable = true })
		}},
		{"RasterizerCullNone", func() error {
			return RasterizerCullNone.Update(func(d *RasterizerDesc) { d.ScissorTestEnable = true })
		}},
		{"SamplerPointWrap", func() error {
			return SamplerPointWrap.Update(func(d *SamplerDesc) { d.MaxAnisotropy = 8 })
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.update(); !errors.Is(err, ErrReadOnly) {
				t.Errorf("Update() error = %v, want ErrReadOnly", err)
			}
		})
	}
	if !BlendAdditive.IsReadOnly() || NewBlendState(DefaultBlendDesc()).IsReadOnly() {
		t.Error("IsReadOnly() mismatch")
	}
}

func TestPresetDescriptions(t *testing.T) {
	if d := BlendAlphaBlend.Desc(); d.ColorSourceBlend != BlendOne || d.ColorDestinationBlend != BlendInverseSourceAlpha {
		t.Errorf("AlphaBlend = %+v", d)
	}
	if d := BlendOpaque.Desc(); d.Enabled() {
		t.Error("Opaque should not enable blending")
	}
	if d := DepthStencilDepthRead.Desc(); !d.DepthBufferEnable || d.DepthBufferWriteEnable {
		t.Errorf("DepthRead = %+v", d)
	}
	if d := RasterizerCullCounterClockwise.Desc(); d.CullMode != CullCounterClockwiseFace {
		t.Errorf("CullCounterClockwise = %+v", d)
	}
	if d := SamplerAnisotropicClamp.Desc(); d.Filter != TextureFilterAnisotropic || d.AddressV != TextureAddressClamp {
		t.Errorf("AnisotropicClamp = %+v", d)
	}
	if SamplerLinearWrap.Name() != "SamplerState.LinearWrap" {
		t.Errorf("Name() = %q", SamplerLinearWrap.Name())
	}
}

func TestStateFrozenAfterBind(t *testing.T) {
	_, fd, ctx := drawSetup(t)
	rs := NewRasterizerState(DefaultRasterizerDesc())
	if err := rs.Update(func(d *RasterizerDesc) { d.CullMode = CullNone }); err != nil {
		t.Fatalf("Update() before bind error = %v", err)
	}
	if err := ctx.SetRasterizerState(rs); err != nil {
		t.Fatal(err)
	}
	if rs.IsBound() {
		t.Error("state bound before a draw applied it")
	}
	drawOnce(t, ctx)
	if !rs.IsBound() {
		t.Fatal("state not bound by the draw")
	}
	errIs(t, rs.Update(func(d *RasterizerDesc) { d.CullMode = CullClockwiseFace }), ErrInvalidOperation)
	if rs.Desc().CullMode != CullNone {
		t.Error("rejected Update changed the description")
	}

	created := fd.states[len(fd.states)-1]
	if created.kind != "raster" || created.desc.(RasterizerDesc).CullMode != CullNone {
		t.Errorf("native state = %+v", created)
	}
}

func TestStateNotFrozenWhenCreateFails(t *testing.T) {
	_, fd, ctx := drawSetup(t)
	rs := NewRasterizerState(DefaultRasterizerDesc())
	if err := ctx.SetRasterizerState(rs); err != nil {
		t.Fatal(err)
	}
	fd.stateErr = errors.New("out of state objects")
	if err := ctx.DrawPrimitives(TriangleList, 0, 1); err == nil {
		t.Fatal("DrawPrimitives() error = nil, want the state creation failure")
	}
	if rs.IsBound() {
		t.Error("IsBound() = true after native creation failed, want false")
	}
	if err := rs.Update(func(d *RasterizerDesc) { d.CullMode = CullNone }); err != nil {
		t.Errorf("Update() after failed bind error = %v, want nil", err)
	}

	fd.stateErr = nil
	drawOnce(t, ctx)
	if !rs.IsBound() {
		t.Error("IsBound() = false after a successful draw, want true")
	}
	if got := fd.states[len(fd.states)-1].desc.(RasterizerDesc).CullMode; got != CullNone {
		t.Errorf("native CullMode = %v, want %v", got, CullNone)
	}
}

func TestStateNativeSharedAndReleased(t *testing.T) {
	dev, fd, ctx := drawSetup(t)
	before := len(fd.states)
	_ = ctx.SetBlendState(BlendAdditive)
	drawOnce(t, ctx)
	_ = ctx.SetBlendState(BlendOpaque)
	drawOnce(t, ctx)
	_ = ctx.SetBlendState(BlendAdditive)
	drawOnce(t, ctx)
	if got := len(fd.states) - before; got != 1 {
		t.Errorf("native states created = %d, want 1 for Additive", got)
	}
	additive := fd.states[before]

	dev.Dispose()
	if !additive.disposed {
		t.Error("native state survived device Dispose")
	}
	for i, s := range fd.states {
		if !s.disposed {
			t.Errorf("native state %d (%s) leaked", i, s.kind)
		}
	}
}

func TestStatesPerDevice(t *testing.T) {
	devA, fdA, ctxA := drawSetup(t)
	devB, fdB := newTestDevice(t)
	testShaders(t, devB)
	ctxB := devB.Context()
	_ = ctxB.SetVertexBuffer(testVertexBuffer(t, devB, 3))

	s := NewDepthStencilState(DefaultDepthStencilDesc())
	_ = ctxA.SetDepthStencilState(s)
	_ = ctxB.SetDepthStencilState(s)
	drawOnce(t, ctxA)
	drawOnce(t, ctxB)
	depthA, _ := fdA.ctx.depth.(*fakeState)
	depthB, _ := fdB.ctx.depth.(*fakeState)
	if depthA == nil || depthB == nil || depthA == depthB {
		t.Fatal("each device should bind its own native object")
	}

	devA.Dispose()
	if !depthA.disposed || depthB.disposed {
		t.Error("disposing one device released the other device's native state")
	}
}

func TestStencilReference(t *testing.T) {
	_, fd, ctx := drawSetup(t)
	d := DefaultDepthStencilDesc()
	d.StencilEnable = true
	d.ReferenceStencil = 3
	s := NewDepthStencilState(d)
	_ = ctx.SetDepthStencilState(s)
	if ctx.ReferenceStencil() != 3 {
		t.Errorf("ReferenceStencil() = %d, want the state's 3", ctx.ReferenceStencil())
	}
	ctx.SetReferenceStencil(7)
	drawOnce(t, ctx)
	if fd.ctx.stencil != 7 {
		t.Errorf("backend reference = %d, want 7", fd.ctx.stencil)
	}
	errIs(t, ctx.SetDepthStencilState(nil), ErrInvalidArgument)
}

func TestTextureFilterSplit(t *testing.T) {
	tests := []struct {
		filter           TextureFilter
		minL, magL, mipL bool
	}{
		{TextureFilterLinear, true, true, true},
		{TextureFilterPoint, false, false, false},
		{TextureFilterPointMipLinear, false, false, true},
		{TextureFilterLinearMipPoint, true, true, false},
		{TextureFilterMinLinearMagPointMipPoint, true, false, false},
	}
	for _, tt := range tests {
		minL, magL, mipL := tt.filter.Split()
		if minL != tt.minL || magL != tt.magL || mipL != tt.mipL {
			t.Errorf("%v.Split() = %v %v %v, want %v %v %v", tt.filter, minL, magL, mipL, tt.minL, tt.magL, tt.mipL)
		}
	}
}
