package gfx

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

func callIndex(calls []string, prefix string) int {
	return slices.IndexFunc(calls, func(c string) bool { return strings.HasPrefix(c, prefix) })
}

func TestApplyOrder(t *testing.T) {
	dev, fd := newTestDevice(t)
	testShaders(t, dev)
	ctx := dev.Context()

	vb := testVertexBuffer(t, dev, 3)
	tex, _ := NewTexture2D(dev, 4, 4, false, SurfaceFormatColor)
	cb, err := NewConstantBuffer(dev, "Globals", 64)
	if err != nil {
		t.Fatal(err)
	}
	if err := ctx.SetVertexBuffer(vb); err != nil {
		t.Fatal(err)
	}
	if err := ctx.Textures(ShaderStagePixel).Set(0, tex); err != nil {
		t.Fatal(err)
	}
	if err := ctx.ConstantBuffers(ShaderStageVertex).Set(0, cb); err != nil {
		t.Fatal(err)
	}
	if err := ctx.DrawPrimitives(TriangleList, 0, 1); err != nil {
		t.Fatalf("DrawPrimitives() error = %v", err)
	}

	order := []string{
		"targets", "viewport", "scissor", "shaders", "cbuffer Vertex 0", "vertices",
		"texture Pixel 0", "blend", "depth", "raster", "draw",
	}
	calls := fd.ctx.calls
	prev := -1
	for _, want := range order {
		i := callIndex(calls, want)
		if i < 0 {
			t.Fatalf("%q not applied; calls = %v", want, calls)
		}
		if i < prev {
			t.Errorf("%q applied out of order; calls = %v", want, calls)
		}
		prev = i
	}
	if got := fd.ctx.draws[0]; got != "draw TriangleList 0 3" {
		t.Errorf("draw = %q", got)
	}
	if n := fd.ctx.count("sampler Pixel"); n != 16 {
		t.Errorf("pixel samplers bound = %d, want 16", n)
	}
	if n := fd.ctx.count("sampler Vertex"); n != 4 {
		t.Errorf("vertex samplers bound = %d, want 4", n)
	}

	// Nothing changed: only the draw reaches the backend.
	fd.ctx.reset()
	if err := ctx.DrawPrimitives(TriangleList, 0, 1); err != nil {
		t.Fatal(err)
	}
	if len(fd.ctx.calls) != 1 || fd.ctx.calls[0] != "draw" {
		t.Errorf("second draw calls = %v, want [draw]", fd.ctx.calls)
	}

	m := ctx.Metrics()
	if m.DrawCount != 2 || m.PrimitiveCount != 2 || m.ShaderBinds != 1 || m.ConstantBufferUploads != 1 {
		t.Errorf("metrics = %+v", m)
	}
	if err := dev.Present(); err != nil {
		t.Fatal(err)
	}
	if ctx.Metrics() != (Metrics{}) {
		t.Errorf("metrics not reset by Present: %+v", ctx.Metrics())
	}
}

func TestRedundantStateIsSkipped(t *testing.T) {
	dev, fd := newTestDevice(t)
	testShaders(t, dev)
	ctx := dev.Context()
	vb := testVertexBuffer(t, dev, 3)
	_ = ctx.SetVertexBuffer(vb)
	if err := ctx.DrawPrimitives(TriangleList, 0, 1); err != nil {
		t.Fatal(err)
	}
	fd.ctx.reset()

	_ = ctx.SetBlendState(BlendOpaque)
	_ = ctx.SetDepthStencilState(DepthStencilDefault)
	_ = ctx.SetRasterizerState(RasterizerCullCounterClockwise)
	_ = ctx.SetVertexBuffer(vb)
	ctx.SetViewport(ctx.Viewport())
	if err := ctx.DrawPrimitives(TriangleList, 0, 1); err != nil {
		t.Fatal(err)
	}
	if len(fd.ctx.calls) != 1 {
		t.Errorf("calls = %v, want only the draw", fd.ctx.calls)
	}

	fd.ctx.reset()
	_ = ctx.SetBlendState(BlendAlphaBlend)
	_ = ctx.SetRasterizerState(RasterizerCullNone)
	if err := ctx.DrawPrimitives(TriangleList, 0, 1); err != nil {
		t.Fatal(err)
	}
	want := []string{"blend", "raster", "draw"}
	if !slices.Equal(fd.ctx.calls, want) {
		t.Errorf("calls = %v, want %v", fd.ctx.calls, want)
	}
	if fd.ctx.factor != White {
		t.Errorf("blend factor = %v, want the state's factor", fd.ctx.factor)
	}
}

func TestDrawValidation(t *testing.T) {
	dev, _ := newTestDevice(t)
	ctx := dev.Context()

	errIs(t, ctx.DrawPrimitives(TriangleList, 0, 0), ErrInvalidArgument)
	errIs(t, ctx.DrawPrimitives(PrimitiveType(9), 0, 1), ErrInvalidArgument)
	errIs(t, ctx.DrawPrimitives(TriangleList, 0, 1), ErrInvalidOperation)

	testShaders(t, dev)
	errIs(t, ctx.DrawPrimitives(TriangleList, 0, 1), ErrInvalidOperation)
	_ = ctx.SetVertexBuffer(testVertexBuffer(t, dev, 3))
	errIs(t, ctx.DrawPrimitives(TriangleList, -1, 1), ErrInvalidArgument)
	errIs(t, ctx.DrawIndexedPrimitives(TriangleList, 0, 0, 1), ErrInvalidOperation)

	ib, _ := NewIndexBuffer(dev, IndexElementSize16, 3, BufferUsageNone)
	_ = ctx.SetIndexBuffer(ib)
	errIs(t, ctx.DrawIndexedPrimitives(TriangleList, 0, 1, 1), ErrInvalidArgument)
	if err := ctx.DrawIndexedPrimitives(TriangleList, 0, 0, 1); err != nil {
		t.Errorf("DrawIndexedPrimitives() error = %v", err)
	}

	vs := ctx.VertexShader()
	ps := ctx.PixelShader()
	errIs(t, ctx.SetVertexShader(ps), ErrInvalidArgument)
	if ctx.VertexShader() != vs {
		t.Error("rejected shader replaced the binding")
	}
}

func TestDrawBackendFailure(t *testing.T) {
	dev, fd := newTestDevice(t)
	testShaders(t, dev)
	ctx := dev.Context()
	_ = ctx.SetVertexBuffer(testVertexBuffer(t, dev, 3))
	fd.ctx.failDraw = errors.New("boom")
	err := ctx.DrawPrimitives(TriangleList, 0, 1)
	var be *BackendError
	if !errors.As(err, &be) || !errors.Is(err, ErrBackend) {
		t.Fatalf("error = %v, want a BackendError", err)
	}
	if be.Op != "draw" {
		t.Errorf("Op = %q", be.Op)
	}
	if ctx.Metrics().DrawCount != 0 {
		t.Error("failed draw counted")
	}
}

func TestInstancing(t *testing.T) {
	caps := fakeCaps()
	caps.SupportsBaseInstance = false
	dev, fd := newTestDeviceCaps(t, HiDef, caps)
	testShaders(t, dev)
	ctx := dev.Context()
	_ = ctx.SetVertexBuffers(
		VertexBufferBinding{Buffer: testVertexBuffer(t, dev, 4)},
		VertexBufferBinding{Buffer: testVertexBuffer(t, dev, 10), InstanceFrequency: 1},
	)
	ib, _ := NewIndexBuffer(dev, IndexElementSize16, 6, BufferUsageNone)
	_ = ctx.SetIndexBuffer(ib)

	errIs(t, ctx.DrawInstancedPrimitives(TriangleList, 0, 0, 2, 1, 10), ErrNotSupported)
	errIs(t, ctx.DrawInstancedPrimitives(TriangleList, 0, 0, 2, 0, 0), ErrInvalidArgument)
	if err := ctx.DrawInstancedPrimitives(TriangleList, 0, 0, 2, 0, 10); err != nil {
		t.Fatalf("DrawInstancedPrimitives() error = %v", err)
	}
	if got := fd.ctx.draws[0]; got != "instanced TriangleList 0 0 6 0 10" {
		t.Errorf("draw = %q", got)
	}
	if len(fd.ctx.streams) != 2 || fd.ctx.streams[1].InstanceFrequency != 1 {
		t.Errorf("streams = %+v", fd.ctx.streams)
	}
	if got := ctx.Metrics().PrimitiveCount; got != 20 {
		t.Errorf("PrimitiveCount = %d, want 20", got)
	}
}

func TestInstancingNotSupported(t *testing.T) {
	caps := fakeCaps()
	caps.SupportsInstancing = false
	dev, fd := newTestDeviceCaps(t, HiDef, caps)
	testShaders(t, dev)
	ctx := dev.Context()
	_ = ctx.SetVertexBuffer(testVertexBuffer(t, dev, 3))
	ib, _ := NewIndexBuffer(dev, IndexElementSize16, 3, BufferUsageNone)
	_ = ctx.SetIndexBuffer(ib)
	errIs(t, ctx.DrawInstancedPrimitives(TriangleList, 0, 0, 1, 0, 4), ErrNotSupported)
	if len(fd.ctx.calls) != 0 {
		t.Errorf("unsupported draw reached the backend: %v", fd.ctx.calls)
	}
}

func TestDrawUserPrimitivesStreaming(t *testing.T) {
	// Four VertexPositionColor fit in 64 bytes.
	dev, fd := newTestDevice(t, WithUserBufferSize(64))
	testShaders(t, dev)
	ctx := dev.Context()
	verts := []VertexPositionColor{
		{Position: Vector3{0, 0, 0}, Color: Red},
		{Position: Vector3{1, 0, 0}, Color: Lime},
		{Position: Vector3{0, 1, 0}, Color: Blue},
	}

	for range 5 {
		if err := DrawUserPrimitives(ctx, PointList, verts, 0, 1, VertexPositionColorDeclaration); err != nil {
			t.Fatalf("DrawUserPrimitives() error = %v", err)
		}
	}
	want := []string{
		"draw PointList 0 1", "draw PointList 1 1", "draw PointList 2 1", "draw PointList 3 1",
		"draw PointList 0 1",
	}
	if !slices.Equal(fd.ctx.draws, want) {
		t.Errorf("draws = %v, want %v", fd.ctx.draws, want)
	}
	if len(fd.buffers) != 1 {
		t.Fatalf("user buffers created = %d, want 1", len(fd.buffers))
	}
	user := fd.buffers[0]
	if !user.desc.Dynamic || user.desc.Size != 64 {
		t.Errorf("user buffer desc = %+v", user.desc)
	}
	for i, s := range user.sets {
		wantOpts := SetDataNoOverwrite
		if i == 4 {
			wantOpts = SetDataDiscard
		}
		if s.opts != wantOpts || s.size != 16 {
			t.Errorf("set %d = %+v, want %v of 16 bytes", i, s, wantOpts)
		}
	}

	// A draw larger than the buffer replaces it with a bigger one.
	big := make([]VertexPositionColor, 6)
	if err := DrawUserPrimitives(ctx, TriangleList, big, 0, 2, VertexPositionColorDeclaration); err != nil {
		t.Fatal(err)
	}
	if len(fd.buffers) != 2 || fd.buffers[1].desc.Size != 128 {
		t.Fatalf("grown buffer = %+v", fd.buffers[len(fd.buffers)-1].desc)
	}
	if !user.disposed {
		t.Error("outgrown user buffer not disposed")
	}

	errIs(t, DrawUserPrimitives(ctx, TriangleList, verts, 1, 1, VertexPositionColorDeclaration), ErrInvalidArgument)
	errIs(t, DrawUserPrimitives(ctx, PointList, verts, 0, 1, VertexPositionTextureDeclaration), ErrInvalidArgument)
	errIs(t, DrawUserPrimitives(ctx, PointList, verts, 0, 1, nil), ErrInvalidArgument)
	errIs(t, DrawUserPrimitives[VertexPositionColor](ctx, PointList, nil, 0, 1, VertexPositionColorDeclaration),
		ErrInvalidArgument)
}

func TestDrawUserIndexedPrimitives(t *testing.T) {
	dev, fd := newTestDevice(t, WithUserBufferSize(256))
	testShaders(t, dev)
	ctx := dev.Context()
	verts := make([]VertexPositionColor, 4)
	indices := []uint16{0, 1, 2, 2, 1, 3}

	if err := DrawUserIndexedPrimitives(ctx, TriangleList, verts, 0, 4, indices, 0, 2,
		VertexPositionColorDeclaration); err != nil {
		t.Fatalf("DrawUserIndexedPrimitives() error = %v", err)
	}
	if err := DrawUserIndexedPrimitives(ctx, TriangleList, verts, 0, 4, indices, 3, 1,
		VertexPositionColorDeclaration); err != nil {
		t.Fatal(err)
	}
	want := []string{"indexed TriangleList 0 0 6", "indexed TriangleList 4 6 3"}
	if !slices.Equal(fd.ctx.draws, want) {
		t.Errorf("draws = %v, want %v", fd.ctx.draws, want)
	}
	if len(fd.buffers) != 2 {
		t.Fatalf("streaming buffers = %d, want vertex and index", len(fd.buffers))
	}
	if fd.buffers[1].desc.Kind != BufferKindIndex {
		t.Errorf("second buffer kind = %v", fd.buffers[1].desc.Kind)
	}

	errIs(t, DrawUserIndexedPrimitives(ctx, TriangleList, verts, 0, 4, indices, 4, 1,
		VertexPositionColorDeclaration), ErrInvalidArgument)
	errIs(t, DrawUserIndexedPrimitives(ctx, TriangleList, verts, 2, 4, indices, 0, 1,
		VertexPositionColorDeclaration), ErrInvalidArgument)

	// Bound buffers come back for the next regular draw.
	vb := testVertexBuffer(t, dev, 3)
	_ = ctx.SetVertexBuffer(vb)
	fd.ctx.reset()
	if err := ctx.DrawPrimitives(TriangleList, 0, 1); err != nil {
		t.Fatal(err)
	}
	if fd.ctx.count("vertices") != 1 {
		t.Errorf("regular vertex buffers not rebound: %v", fd.ctx.calls)
	}
}

func TestRenderTargetSwitchResolves(t *testing.T) {
	dev, fd := newTestDevice(t)
	testShaders(t, dev)
	ctx := dev.Context()
	_ = ctx.SetVertexBuffer(testVertexBuffer(t, dev, 3))

	rt, err := NewRenderTarget2D(dev, 64, 32, false, SurfaceFormatColor, DepthFormatDepth24Stencil8, 4,
		RenderTargetUsageDiscardContents)
	if err != nil {
		t.Fatal(err)
	}
	if rt.MultiSampleCount() != 4 {
		t.Errorf("MultiSampleCount() = %d", rt.MultiSampleCount())
	}
	native := fd.textures[len(fd.textures)-1]

	if err := ctx.SetRenderTarget(rt); err != nil {
		t.Fatal(err)
	}
	if vp := ctx.Viewport(); vp.Width != 64 || vp.Height != 32 {
		t.Errorf("viewport = %+v, want the target size", vp)
	}
	if err := ctx.DrawPrimitives(TriangleList, 0, 1); err != nil {
		t.Fatal(err)
	}
	if len(fd.ctx.targets) != 1 || fd.ctx.targets[0] != native {
		t.Fatalf("backend targets = %v", fd.ctx.targets)
	}

	if err := ctx.SetRenderTarget(nil); err != nil {
		t.Fatal(err)
	}
	if native.resolves != 0 {
		t.Error("resolved before the next draw")
	}
	if err := ctx.Textures(ShaderStagePixel).Set(0, rt); err != nil {
		t.Fatal(err)
	}
	if err := ctx.DrawPrimitives(TriangleList, 0, 1); err != nil {
		t.Fatal(err)
	}
	if native.resolves != 1 {
		t.Errorf("resolves = %d, want 1", native.resolves)
	}
	if len(fd.ctx.targets) != 0 {
		t.Error("back buffer not restored")
	}
	if vp := ctx.Viewport(); vp.Width != 800 || vp.Height != 600 {
		t.Errorf("viewport = %+v, want the back buffer", vp)
	}

	small, _ := NewRenderTarget2D(dev, 8, 8, false, SurfaceFormatColor, DepthFormatNone, 0,
		RenderTargetUsageDiscardContents)
	errIs(t, ctx.SetRenderTargets(rt, small), ErrInvalidArgument)
	errIs(t, ctx.SetRenderTargets(rt, rt, rt, rt, rt), ErrInvalidArgument)
}

func TestContextRebindsAfterRecovery(t *testing.T) {
	dev, fd := newTestDevice(t)
	testShaders(t, dev)
	ctx := dev.Context()
	_ = ctx.SetVertexBuffer(testVertexBuffer(t, dev, 3))
	tex, _ := NewTexture2D(dev, 4, 4, false, SurfaceFormatColor)
	_ = ctx.Textures(ShaderStagePixel).Set(2, tex)
	if err := ctx.DrawPrimitives(TriangleList, 0, 1); err != nil {
		t.Fatal(err)
	}
	textures, shaders := len(fd.textures), fd.shaders

	fd.lose()
	errIs(t, ctx.DrawPrimitives(TriangleList, 0, 1), ErrDeviceLost)
	if err := dev.Recover(); err != nil {
		t.Fatal(err)
	}
	fd.ctx.reset()
	if err := ctx.DrawPrimitives(TriangleList, 0, 1); err != nil {
		t.Fatalf("draw after Recover: %v", err)
	}
	for _, want := range []string{"targets", "shaders", "vertices", "texture Pixel 2", "blend", "depth", "raster"} {
		if callIndex(fd.ctx.calls, want) < 0 {
			t.Errorf("%q not rebound after recovery", want)
		}
	}
	if fd.ctx.count("sampler") != 20 {
		t.Errorf("samplers rebound = %d, want 20", fd.ctx.count("sampler"))
	}
	if len(fd.textures) != textures+1 || fd.shaders != shaders+2 {
		t.Errorf("natives not recreated: textures %d->%d shaders %d->%d",
			textures, len(fd.textures), shaders, fd.shaders)
	}
}

func TestClear(t *testing.T) {
	dev, fd := newTestDevice(t)
	ctx := dev.Context()
	if err := ctx.Clear(0, Vector4{}, 1, 0); err != nil {
		t.Fatal(err)
	}
	if fd.ctx.clears != 0 {
		t.Error("empty ClearOptions reached the backend")
	}
	if err := ctx.ClearColor(CornflowerBlue); err != nil {
		t.Fatal(err)
	}
	want := []string{"targets", "viewport", "scissor", "clear"}
	if !slices.Equal(fd.ctx.calls, want) {
		t.Errorf("calls = %v, want %v", fd.ctx.calls, want)
	}
	if ctx.Metrics().ClearCount != 1 {
		t.Errorf("ClearCount = %d", ctx.Metrics().ClearCount)
	}
}
