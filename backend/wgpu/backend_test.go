package wgpu_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/gfx"
	"github.com/gogpu/gfx/backend/wgpu"
)

const colorVS = `
struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) color: vec4<f32>,
};

@vertex
fn vs_main(@location(0) position: vec3<f32>, @location(1) color: vec4<f32>) -> VertexOutput {
    var out: VertexOutput;
    out.position = vec4<f32>(position, 1.0);
    out.color = color;
    return out;
}
`

const colorFS = `
@fragment
fn fs_main(@location(0) color: vec4<f32>) -> @location(0) vec4<f32> {
    return color;
}
`

const texturedFS = `
@group(2) @binding(0) var tex: texture_2d<f32>;
@group(2) @binding(1) var samp: sampler;

@fragment
fn fs_main(@location(0) color: vec4<f32>) -> @location(0) vec4<f32> {
    return textureSample(tex, samp, vec2<f32>(0.5, 0.5)) * color;
}
`

var colorAttributes = []gfx.ShaderAttribute{
	{Name: "position", Usage: gfx.VertexElementUsagePosition, Location: 0},
	{Name: "color", Usage: gfx.VertexElementUsageColor, Location: 1},
}

const size = 8

func newDevice(t *testing.T) *gfx.GraphicsDevice {
	t.Helper()
	adapters, err := gfx.AdaptersFor(wgpu.NoopBackendName)
	if err != nil {
		t.Fatal(err)
	}
	if len(adapters) != 1 {
		t.Fatalf("AdaptersFor(%q) returned %d adapters", wgpu.NoopBackendName, len(adapters))
	}
	pp := gfx.DefaultPresentationParameters()
	pp.BackBufferWidth, pp.BackBufferHeight = size, size
	dev, err := gfx.NewGraphicsDevice(adapters[0], gfx.HiDef, false, pp)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(dev.Dispose)
	return dev
}

func newShader(t *testing.T, dev *gfx.GraphicsDevice, desc gfx.ShaderDesc) *gfx.Shader {
	t.Helper()
	s, err := gfx.NewShader(dev, desc)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func bindShaders(t *testing.T, dev *gfx.GraphicsDevice, ps gfx.ShaderDesc) {
	t.Helper()
	ctx := dev.Context()
	mustOK(t, ctx.SetVertexShader(newShader(t, dev, gfx.ShaderDesc{
		Stage: gfx.ShaderStageVertex, Code: []byte(colorVS), Attributes: colorAttributes,
	})))
	mustOK(t, ctx.SetPixelShader(newShader(t, dev, ps)))
}

func quad(c gfx.Color) []gfx.VertexPositionColor {
	v := func(x, y float32) gfx.VertexPositionColor {
		return gfx.VertexPositionColor{Position: gfx.Vector3{X: x, Y: y}, Color: c}
	}
	return []gfx.VertexPositionColor{
		v(-1, -1), v(1, -1), v(1, 1),
		v(-1, -1), v(1, 1), v(-1, 1),
	}
}

func vertexBuffer(t *testing.T, dev *gfx.GraphicsDevice, verts []gfx.VertexPositionColor) *gfx.VertexBuffer {
	t.Helper()
	vb, err := gfx.NewVertexBuffer(dev, gfx.VertexPositionColorDeclaration, len(verts), gfx.BufferUsageWriteOnly)
	if err != nil {
		t.Fatal(err)
	}
	mustOK(t, gfx.SetVertexData(vb, verts))
	return vb
}

func mustOK(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func TestAdapterDescription(t *testing.T) {
	adapters, err := gfx.AdaptersFor(wgpu.NoopBackendName)
	if err != nil {
		t.Fatal(err)
	}
	if len(adapters) != 1 {
		t.Fatalf("AdaptersFor() returned %d adapters, want 1", len(adapters))
	}
	if got := adapters[0].HighestProfile(); got < gfx.HiDef {
		t.Errorf("HighestProfile() = %v, want at least HiDef", got)
	}
}

func TestFrame(t *testing.T) {
	dev := newDevice(t)
	bindShaders(t, dev, gfx.ShaderDesc{Stage: gfx.ShaderStagePixel, Code: []byte(colorFS)})
	ctx := dev.Context()
	mustOK(t, ctx.SetVertexBuffer(vertexBuffer(t, dev, quad(gfx.Red))))
	mustOK(t, ctx.ClearColor(gfx.Blue))
	mustOK(t, ctx.DrawPrimitives(gfx.TriangleList, 0, 2))
	mustOK(t, ctx.DrawPrimitives(gfx.TriangleList, 0, 1))
	mustOK(t, dev.Present())

	px := make([]gfx.Color, size*size)
	mustOK(t, gfx.GetBackBufferData(dev, nil, px))
	mustOK(t, ctx.Flush())
}

func TestRenderTargetAsTexture(t *testing.T) {
	dev := newDevice(t)
	ctx := dev.Context()
	rt, err := gfx.NewRenderTarget2D(dev, size, size, false, gfx.SurfaceFormatColor, gfx.DepthFormatDepth24Stencil8, 0,
		gfx.RenderTargetUsagePreserveContents)
	mustOK(t, err)

	bindShaders(t, dev, gfx.ShaderDesc{Stage: gfx.ShaderStagePixel, Code: []byte(colorFS)})
	mustOK(t, ctx.SetVertexBuffer(vertexBuffer(t, dev, quad(gfx.Lime))))
	mustOK(t, ctx.SetRenderTarget(rt))
	mustOK(t, ctx.Clear(gfx.ClearTarget|gfx.ClearDepthBuffer|gfx.ClearStencil, gfx.Vector4{W: 1}, 1, 0))
	mustOK(t, ctx.DrawPrimitives(gfx.TriangleList, 0, 2))
	mustOK(t, ctx.SetRenderTarget(nil))

	bindShaders(t, dev, gfx.ShaderDesc{
		Stage:    gfx.ShaderStagePixel,
		Code:     []byte(texturedFS),
		Samplers: []gfx.ShaderSampler{{Name: "tex", Slot: 0, Kind: gfx.TextureKind2D}},
	})
	mustOK(t, ctx.Textures(gfx.ShaderStagePixel).Set(0, rt))
	mustOK(t, ctx.DrawPrimitives(gfx.TriangleList, 0, 2))
	mustOK(t, dev.Present())

	px := make([]gfx.Color, size*size)
	mustOK(t, gfx.GetTextureData(rt, px))
}

func TestMissingTexture(t *testing.T) {
	dev := newDevice(t)
	bindShaders(t, dev, gfx.ShaderDesc{
		Stage:    gfx.ShaderStagePixel,
		Code:     []byte(texturedFS),
		Samplers: []gfx.ShaderSampler{{Name: "tex", Slot: 0, Kind: gfx.TextureKind2D}},
	})
	ctx := dev.Context()
	mustOK(t, ctx.SetVertexBuffer(vertexBuffer(t, dev, quad(gfx.Red))))
	if err := ctx.DrawPrimitives(gfx.TriangleList, 0, 2); !errors.Is(err, gfx.ErrInvalidOperation) {
		t.Errorf("DrawPrimitives() without a texture = %v, want ErrInvalidOperation", err)
	}
}

func TestUnmatchedVertexInput(t *testing.T) {
	dev := newDevice(t)
	ctx := dev.Context()
	attrs := append([]gfx.ShaderAttribute{
		{Name: "uv", Usage: gfx.VertexElementUsageTextureCoordinate, Location: 2},
	}, colorAttributes...)
	mustOK(t, ctx.SetVertexShader(newShader(t, dev, gfx.ShaderDesc{
		Stage: gfx.ShaderStageVertex, Code: []byte(colorVS), Attributes: attrs,
	})))
	mustOK(t, ctx.SetPixelShader(newShader(t, dev, gfx.ShaderDesc{Stage: gfx.ShaderStagePixel, Code: []byte(colorFS)})))
	mustOK(t, ctx.SetVertexBuffer(vertexBuffer(t, dev, quad(gfx.Red))))
	err := ctx.DrawPrimitives(gfx.TriangleList, 0, 2)
	if !errors.Is(err, gfx.ErrInvalidOperation) || !strings.Contains(err.Error(), "uv") {
		t.Errorf("DrawPrimitives() = %v, want ErrInvalidOperation naming uv", err)
	}
}

func TestShaderCompileError(t *testing.T) {
	dev := newDevice(t)
	_, err := gfx.NewShader(dev, gfx.ShaderDesc{Stage: gfx.ShaderStagePixel, Code: []byte("fn fs_main( {")})
	var be *gfx.BackendError
	if !errors.As(err, &be) {
		t.Fatalf("NewShader() = %v, want a BackendError", err)
	}
	if !strings.Contains(be.Op, "pixel") || be.Log == "" {
		t.Errorf("BackendError op %q log %q", be.Op, be.Log)
	}
}

func TestTextureRoundTrip(t *testing.T) {
	dev := newDevice(t)
	tex, err := gfx.NewTexture2D(dev, 3, 2, true, gfx.SurfaceFormatColor)
	mustOK(t, err)
	in := []gfx.Color{gfx.Red, gfx.Lime, gfx.Blue, gfx.White, gfx.Black, gfx.Red}
	mustOK(t, gfx.SetTextureData(tex, in))
	out := make([]gfx.Color, len(in))
	mustOK(t, gfx.GetTextureData(tex, out))
}

func TestUnsupportedFormat(t *testing.T) {
	dev := newDevice(t)
	if _, err := gfx.NewTexture2D(dev, 4, 4, false, gfx.SurfaceFormatBgr565); !errors.Is(err, gfx.ErrNotSupported) {
		t.Errorf("NewTexture2D(Bgr565) = %v, want ErrNotSupported", err)
	}
}

func TestOcclusionQuery(t *testing.T) {
	dev := newDevice(t)
	bindShaders(t, dev, gfx.ShaderDesc{Stage: gfx.ShaderStagePixel, Code: []byte(colorFS)})
	ctx := dev.Context()
	mustOK(t, ctx.SetVertexBuffer(vertexBuffer(t, dev, quad(gfx.White))))
	q, err := gfx.NewOcclusionQuery(dev)
	mustOK(t, err)
	mustOK(t, q.Begin())
	mustOK(t, ctx.DrawPrimitives(gfx.TriangleList, 0, 2))
	mustOK(t, q.End())
	done, err := q.IsComplete()
	mustOK(t, err)
	if !done {
		t.Fatal("IsComplete() = false after End")
	}
	if n, err := q.PixelCount(); err != nil || n != 0 {
		t.Errorf("PixelCount() = %d, %v, want 0, nil", n, err)
	}
}
