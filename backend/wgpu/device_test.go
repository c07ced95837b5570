package wgpu

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/gogpu/gfx"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

func newTestDevice(t *testing.T, losses *atomic.Int32) *device {
	t.Helper()
	pp := gfx.DefaultPresentationParameters()
	pp.BackBufferWidth, pp.BackBufferHeight = 16, 16
	desc := gfx.DeviceDesc{Profile: gfx.HiDef, Presentation: pp}
	if losses != nil {
		desc.LossHandler = func() { losses.Add(1) }
	}
	d, err := NewBackend("wgpu-noop-test", noop.API{}).CreateDevice(desc)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(d.Dispose)
	return d.(*device)
}

func mustOK(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func TestMaxProfile(t *testing.T) {
	tests := []struct {
		max  int
		want gfx.GraphicsProfile
	}{
		{1024, gfx.Reach},
		{2048, gfx.Reach},
		{4096, gfx.HiDef},
		{8192, gfx.FL10_1},
		{16384, gfx.FL11_0},
	}
	for _, tt := range tests {
		if got := maxProfile(tt.max); got != tt.want {
			t.Errorf("maxProfile(%d) = %v, want %v", tt.max, got, tt.want)
		}
	}
}

func TestCreateDeviceRejects(t *testing.T) {
	b := NewBackend("wgpu-noop-test", noop.API{})
	pp := gfx.DefaultPresentationParameters()
	pp.BackBufferFormat = gfx.SurfaceFormatBgra5551
	if _, err := b.CreateDevice(gfx.DeviceDesc{Profile: gfx.HiDef, Presentation: pp}); !errors.Is(err, gfx.ErrNotSupported) {
		t.Errorf("CreateDevice(Bgra5551) = %v, want ErrNotSupported", err)
	}
	limit := maxProfile(int(gputypes.DefaultLimits().MaxTextureDimension2D))
	if limit < gfx.FL11_1 {
		pp = gfx.DefaultPresentationParameters()
		if _, err := b.CreateDevice(gfx.DeviceDesc{Profile: gfx.FL11_1, Presentation: pp}); !errors.Is(err, gfx.ErrNotSupported) {
			t.Errorf("CreateDevice(FL11_1) = %v, want ErrNotSupported", err)
		}
	}
}

func TestBufferShadow(t *testing.T) {
	d := newTestDevice(t, nil)
	s, err := d.CreateBuffer(gfx.BufferDesc{Kind: gfx.BufferKindVertex, Size: 10})
	mustOK(t, err)
	b := s.(*buffer)
	if len(b.shadow) != 12 {
		t.Fatalf("shadow length = %d, want 12", len(b.shadow))
	}
	mustOK(t, b.SetData(3, []byte{1, 2, 3}, gfx.SetDataNone))
	got := make([]byte, 4)
	mustOK(t, b.GetData(2, got))
	if want := []byte{0, 1, 2, 3}; string(got) != string(want) {
		t.Errorf("GetData() = %v, want %v", got, want)
	}
}

func TestBufferDiscardWhileUsed(t *testing.T) {
	d := newTestDevice(t, nil)
	s, err := d.CreateBuffer(gfx.BufferDesc{Kind: gfx.BufferKindIndex, Size: 8, Dynamic: true})
	mustOK(t, err)
	b := s.(*buffer)
	// Mark the buffer as read by the recording in progress.
	_, err = d.ctx.encoder()
	mustOK(t, err)
	b.used = d.ctx.serial
	old := b.buf
	mustOK(t, b.SetData(0, []byte{9, 9}, gfx.SetDataDiscard))
	if b.buf == old {
		t.Error("SetData(Discard) on a buffer in use kept its storage")
	}
	if len(d.ctx.retired) != 1 {
		t.Errorf("retired %d destructions, want 1", len(d.ctx.retired))
	}
	mustOK(t, d.ctx.submit())
	if len(d.ctx.retired) != 0 {
		t.Errorf("submit left %d destructions pending", len(d.ctx.retired))
	}
	if d.ctx.using(b.used) {
		t.Error("buffer still in use after submit")
	}
}

func TestConstantBufferRounding(t *testing.T) {
	d := newTestDevice(t, nil)
	for _, tt := range []struct{ size, want int }{{0, 16}, {4, 16}, {16, 16}, {20, 32}} {
		s, err := d.CreateConstantBuffer(gfx.ConstantBufferDesc{Name: "params", Size: tt.size})
		mustOK(t, err)
		if got := s.(*constantBuffer).size; got != tt.want {
			t.Errorf("size(%d) = %d, want %d", tt.size, got, tt.want)
		}
		mustOK(t, s.Upload(make([]byte, tt.size)))
		s.Dispose()
	}
}

func TestPipelineCache(t *testing.T) {
	d := newTestDevice(t, nil)
	vs, err := d.CreateShader(gfx.ShaderDesc{Stage: gfx.ShaderStageVertex, Code: []byte(`
@vertex
fn vs_main(@location(0) position: vec3<f32>) -> @builtin(position) vec4<f32> {
    return vec4<f32>(position, 1.0);
}
`), Attributes: []gfx.ShaderAttribute{{Name: "position", Usage: gfx.VertexElementUsagePosition}}})
	mustOK(t, err)
	ps, err := d.CreateShader(gfx.ShaderDesc{Stage: gfx.ShaderStagePixel, Code: []byte(`
@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 0.0, 0.0, 1.0);
}
`)})
	mustOK(t, err)
	decl, err := gfx.NewVertexDeclaration(12, gfx.VertexElement{
		Format: gfx.VertexElementVector3, Usage: gfx.VertexElementUsagePosition,
	})
	mustOK(t, err)
	vb, err := d.CreateBuffer(gfx.BufferDesc{Kind: gfx.BufferKindVertex, Size: 36})
	mustOK(t, err)

	ctx := d.ctx
	mustOK(t, ctx.SetShaders(vs, ps))
	mustOK(t, ctx.SetVertexBuffers([]gfx.VertexStream{{Buffer: vb, Declaration: decl}}))
	for range 3 {
		mustOK(t, ctx.Draw(gfx.TriangleList, 0, 3))
	}
	mustOK(t, ctx.Draw(gfx.LineList, 0, 2))
	if hits, misses := d.pipelines.stats(); hits != 2 || misses != 2 {
		t.Errorf("stats() = %d hits, %d misses, want 2, 2", hits, misses)
	}
	if got := d.pipelines.size(); got != 2 {
		t.Errorf("size() = %d, want 2", got)
	}
	mustOK(t, ctx.Flush())

	vs.Dispose()
	if got := d.pipelines.size(); got != 0 {
		t.Errorf("size() after disposing the vertex shader = %d, want 0", got)
	}
	if err := ctx.Draw(gfx.TriangleList, 0, 3); !errors.Is(err, gfx.ErrInvalidOperation) {
		t.Errorf("Draw() with a disposed shader = %v, want ErrInvalidOperation", err)
	}
}

func TestDeferredClear(t *testing.T) {
	d := newTestDevice(t, nil)
	ctx := d.ctx
	mustOK(t, ctx.Clear(gfx.ClearTarget, gfx.Vector4{X: 1, W: 1}, 1, 0))
	mustOK(t, ctx.Clear(gfx.ClearDepthBuffer, gfx.Vector4{}, 0.5, 0))
	if ctx.clear == nil {
		t.Fatal("Clear() recorded nothing")
	}
	if got := ctx.clear.options; got != gfx.ClearTarget|gfx.ClearDepthBuffer {
		t.Errorf("merged options = %v, want target and depth", got)
	}
	if c := ctx.clear.color; c.X != 1 || ctx.clear.depth != 0.5 {
		t.Errorf("merged clear colour %v depth %v", c, ctx.clear.depth)
	}
	mustOK(t, d.Present())
	if ctx.clear != nil || ctx.enc != nil {
		t.Error("Present() left a clear or an encoder behind")
	}
}

func TestDeviceLoss(t *testing.T) {
	var losses atomic.Int32
	d := newTestDevice(t, &losses)
	tex, err := d.CreateTexture(gfx.TextureDesc{
		Kind: gfx.TextureKind2D, Width: 4, Height: 4, ArraySize: 1, LevelCount: 1, Format: gfx.SurfaceFormatColor,
	})
	mustOK(t, err)

	d.reportLoss(errors.New("device removed"))
	d.reportLoss(errors.New("device removed"))
	if got := losses.Load(); got != 1 {
		t.Errorf("LossHandler called %d times, want 1", got)
	}
	if err := d.Present(); !errors.Is(err, gfx.ErrDeviceLost) {
		t.Errorf("Present() = %v, want ErrDeviceLost", err)
	}
	if err := tex.SetData(gfx.TextureRegion{Width: 4, Height: 4, Depth: 1}, make([]byte, 64)); !errors.Is(err, gfx.ErrDeviceLost) {
		t.Errorf("SetData() = %v, want ErrDeviceLost", err)
	}

	mustOK(t, d.Restore())
	mustOK(t, d.Present())
	if err := tex.SetData(gfx.TextureRegion{Width: 4, Height: 4, Depth: 1}, make([]byte, 64)); !errors.Is(err, gfx.ErrDeviceLost) {
		t.Errorf("SetData() on a texture of the lost device = %v, want ErrDeviceLost", err)
	}
	tex.Dispose()
}

func TestReadBackBuffer(t *testing.T) {
	d := newTestDevice(t, nil)
	dst := make([]byte, 4*4*4)
	mustOK(t, d.ReadBackBuffer(gfx.Rectangle{X: 2, Y: 2, Width: 4, Height: 4}, dst))
	mustOK(t, d.ResetPresentation(gfx.PresentationParameters{
		BackBufferWidth:  32,
		BackBufferHeight: 8,
		BackBufferFormat: gfx.SurfaceFormatBgra32,
	}))
	if d.back.desc.Width != 32 || d.back.depthView != nil {
		t.Errorf("back buffer after reset: width %d, depth %v", d.back.desc.Width, d.back.depthView)
	}
}

type providerDevice struct{}

func (providerDevice) Poll(bool) {}
func (providerDevice) Destroy()  {}

// halProvider is a gpucontext.DeviceProvider exposing a noop HAL device.
type halProvider struct {
	device hal.Device
	queue  hal.Queue
}

func (p *halProvider) Device() gpucontext.Device             { return providerDevice{} }
func (p *halProvider) Queue() gpucontext.Queue               { return nil }
func (p *halProvider) Adapter() gpucontext.Adapter           { return nil }
func (p *halProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatBGRA8Unorm }
func (p *halProvider) HalDevice() any                        { return p.device }
func (p *halProvider) HalQueue() any                         { return p.queue }

// plainProvider hides its HAL objects.
type plainProvider struct{ halProvider }

func (plainProvider) HalDevice() {}

func TestExternalBackend(t *testing.T) {
	instance, err := noop.API{}.CreateInstance(nil)
	mustOK(t, err)
	defer instance.Destroy()
	adapters := instance.EnumerateAdapters(nil)
	open, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	mustOK(t, err)
	defer open.Device.Destroy()

	if _, err := NewExternalBackend("external", &plainProvider{}); !errors.Is(err, errNoHAL) {
		t.Errorf("NewExternalBackend(plain) = %v, want errNoHAL", err)
	}
	b, err := NewExternalBackend("external", &halProvider{device: open.Device, queue: open.Queue})
	mustOK(t, err)
	if got := b.Adapters(); len(got) != 1 || got[0].Name != "external" {
		t.Errorf("Adapters() = %+v, want one named external", got)
	}
	s, err := b.CreateDevice(gfx.DeviceDesc{Profile: gfx.HiDef, Presentation: gfx.DefaultPresentationParameters()})
	mustOK(t, err)
	d := s.(*device)
	if !d.hw.external {
		t.Error("device does not use the external HAL device")
	}
	mustOK(t, d.Present())
	d.Dispose()
}
