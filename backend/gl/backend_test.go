package gl_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/gfx"
	"github.com/gogpu/gfx/backend/gl"
	"github.com/gogpu/gfx/backend/gl/softgl"
)

const colorVS = `
attribute vec3 position;
attribute vec4 color;
uniform vec4 posFixup;
varying vec4 vColor;
void main() {
	vColor = color;
	gl_Position = vec4(position, 1.0);
	gl_Position.y *= posFixup.y;
}
`

const colorFS = `
varying vec4 vColor;
void main() { gl_FragColor = vColor; }
`

var colorAttributes = []gfx.ShaderAttribute{
	{Name: "position", Usage: gfx.VertexElementUsagePosition},
	{Name: "color", Usage: gfx.VertexElementUsageColor},
}

const size = 4

// newDevice registers a softgl backend private to the test and opens a
// size x size device on it.
func newDevice(t *testing.T, cfg softgl.Config, profile gfx.GraphicsProfile) (*gfx.GraphicsDevice, *softgl.Backend) {
	t.Helper()
	name := "softgl-test-" + t.Name()
	b := softgl.Register(name, cfg)
	t.Cleanup(func() { gfx.UnregisterBackend(name) })
	adapters, err := gfx.AdaptersFor(name)
	if err != nil {
		t.Fatal(err)
	}
	if len(adapters) != 1 {
		t.Fatalf("AdaptersFor(%q) returned %d adapters", name, len(adapters))
	}
	pp := gfx.DefaultPresentationParameters()
	pp.BackBufferWidth, pp.BackBufferHeight = size, size
	dev, err := gfx.NewGraphicsDevice(adapters[0], profile, false, pp)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(dev.Dispose)
	return dev, b
}

func bindColorShaders(t *testing.T, dev *gfx.GraphicsDevice) {
	t.Helper()
	vs, err := gfx.NewShader(dev, gfx.ShaderDesc{
		Stage: gfx.ShaderStageVertex, Code: []byte(colorVS), Attributes: colorAttributes,
	})
	if err != nil {
		t.Fatal(err)
	}
	ps, err := gfx.NewShader(dev, gfx.ShaderDesc{Stage: gfx.ShaderStagePixel, Code: []byte(colorFS)})
	if err != nil {
		t.Fatal(err)
	}
	ctx := dev.Context()
	mustOK(t, ctx.SetVertexShader(vs))
	mustOK(t, ctx.SetPixelShader(ps))
	mustOK(t, ctx.SetRasterizerState(gfx.RasterizerCullNone))
}

// rect returns two triangles covering x0..x1, y0..y1 in clip space.
func rect(x0, y0, x1, y1 float32, c gfx.Color) []gfx.VertexPositionColor {
	v := func(x, y float32) gfx.VertexPositionColor {
		return gfx.VertexPositionColor{Position: gfx.Vector3{X: x, Y: y}, Color: c}
	}
	return []gfx.VertexPositionColor{
		v(x0, y0), v(x1, y0), v(x1, y1),
		v(x0, y0), v(x1, y1), v(x0, y1),
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

func backBuffer(t *testing.T, dev *gfx.GraphicsDevice) []gfx.Color {
	t.Helper()
	px := make([]gfx.Color, size*size)
	mustOK(t, gfx.GetBackBufferData(dev, nil, px))
	return px
}

func mustOK(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func TestAdapterDescription(t *testing.T) {
	name := "softgl-test-adapter"
	softgl.Register(name, softgl.Config{})
	defer gfx.UnregisterBackend(name)
	adapters, err := gfx.AdaptersFor(name)
	if err != nil {
		t.Fatal(err)
	}
	if got := adapters[0].HighestProfile(); got != gfx.FL10_1 {
		t.Errorf("HighestProfile() = %v, want FL10_1", got)
	}
	if !strings.Contains(adapters[0].Description(), "3.3") {
		t.Errorf("Description() = %q, want the GL version", adapters[0].Description())
	}

	es := "softgl-test-adapter-es"
	softgl.Register(es, softgl.Config{Version: "OpenGL ES 3.0 softgl"})
	defer gfx.UnregisterBackend(es)
	adapters, err = gfx.AdaptersFor(es)
	if err != nil {
		t.Fatal(err)
	}
	if got := adapters[0].HighestProfile(); got != gfx.HiDef {
		t.Errorf("ES 3.0 HighestProfile() = %v, want HiDef", got)
	}
}

func TestDrawToBackBuffer(t *testing.T) {
	dev, b := newDevice(t, softgl.Config{}, gfx.HiDef)
	bindColorShaders(t, dev)
	ctx := dev.Context()
	mustOK(t, ctx.SetVertexBuffer(vertexBuffer(t, dev, rect(-1, 0, 1, 1, gfx.Red))))
	mustOK(t, ctx.ClearColor(gfx.Blue))
	mustOK(t, ctx.DrawPrimitives(gfx.TriangleList, 0, 2))

	px := backBuffer(t, dev)
	for y := range size {
		want := gfx.Blue
		if y < size/2 {
			want = gfx.Red
		}
		for x := range size {
			if got := px[y*size+x]; got != want {
				t.Fatalf("pixel (%d, %d) = %v, want %v", x, y, got, want)
			}
		}
	}
	mustOK(t, dev.Present())
	if got := b.Current().Frames(); got != 1 {
		t.Errorf("Frames() = %d, want 1", got)
	}
}

func TestDrawIndexedWithBaseVertex(t *testing.T) {
	dev, _ := newDevice(t, softgl.Config{}, gfx.HiDef)
	bindColorShaders(t, dev)
	ctx := dev.Context()
	quad := func(c gfx.Color) []gfx.VertexPositionColor {
		r := rect(-1, -1, 1, 1, c)
		return []gfx.VertexPositionColor{r[0], r[1], r[2], r[5]}
	}
	mustOK(t, ctx.SetVertexBuffer(vertexBuffer(t, dev, append(quad(gfx.Lime), quad(gfx.Red)...))))
	ib, err := gfx.NewIndexBuffer(dev, gfx.IndexElementSize16, 6, gfx.BufferUsageNone)
	mustOK(t, err)
	mustOK(t, gfx.SetIndexData(ib, []uint16{0, 1, 2, 0, 2, 3}))
	mustOK(t, ctx.SetIndexBuffer(ib))
	mustOK(t, ctx.ClearColor(gfx.Black))
	mustOK(t, ctx.DrawIndexedPrimitives(gfx.TriangleList, 4, 0, 2))

	for i, got := range backBuffer(t, dev) {
		if got != gfx.Red {
			t.Fatalf("pixel %d = %v, want red", i, got)
		}
	}
}

func TestRenderTarget(t *testing.T) {
	dev, _ := newDevice(t, softgl.Config{}, gfx.HiDef)
	bindColorShaders(t, dev)
	ctx := dev.Context()
	rt, err := gfx.NewRenderTarget2D(dev, size, size, false, gfx.SurfaceFormatColor, gfx.DepthFormatNone, 0,
		gfx.RenderTargetUsageDiscardContents)
	mustOK(t, err)
	mustOK(t, ctx.SetRenderTarget(rt))
	mustOK(t, ctx.SetVertexBuffer(vertexBuffer(t, dev, rect(-1, 0, 1, 1, gfx.Red))))
	mustOK(t, ctx.ClearColor(gfx.Transparent))
	mustOK(t, ctx.DrawPrimitives(gfx.TriangleList, 0, 2))

	if err := dev.Present(); !errors.Is(err, gfx.ErrInvalidOperation) {
		t.Errorf("Present() with a bound target = %v, want ErrInvalidOperation", err)
	}
	mustOK(t, ctx.SetRenderTarget(nil))

	px := make([]gfx.Color, size*size)
	mustOK(t, gfx.GetTextureData(rt, px))
	if px[0] != gfx.Red || px[len(px)-1] != gfx.Transparent {
		t.Errorf("render target first row %v, last row %v", px[0], px[len(px)-1])
	}
}

func TestTextureRoundTrip(t *testing.T) {
	for _, tt := range []struct{ name, version string }{
		{"desktop", ""},
		{"es", "OpenGL ES 3.0 softgl"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			dev, _ := newDevice(t, softgl.Config{Version: tt.version}, gfx.HiDef)
			tex, err := gfx.NewTexture2D(dev, 2, 2, false, gfx.SurfaceFormatColor)
			mustOK(t, err)
			in := []gfx.Color{gfx.Red, gfx.Lime, gfx.Blue, gfx.White}
			mustOK(t, gfx.SetTextureData(tex, in))
			out := make([]gfx.Color, 4)
			mustOK(t, gfx.GetTextureData(tex, out))
			for i := range in {
				if out[i] != in[i] {
					t.Errorf("texel %d = %v, want %v", i, out[i], in[i])
				}
			}
		})
	}
}

func TestInstancing(t *testing.T) {
	posDecl, err := gfx.NewVertexDeclaration(12, gfx.VertexElement{
		Format: gfx.VertexElementVector3, Usage: gfx.VertexElementUsagePosition,
	})
	mustOK(t, err)
	colDecl, err := gfx.NewVertexDeclaration(4, gfx.VertexElement{
		Format: gfx.VertexElementColor, Usage: gfx.VertexElementUsageColor,
	})
	mustOK(t, err)

	t.Run("supported", func(t *testing.T) {
		dev, _ := newDevice(t, softgl.Config{}, gfx.HiDef)
		if caps := dev.Capabilities(); !caps.SupportsInstancing || !caps.SupportsBaseInstance {
			t.Fatalf("capabilities %+v lack instancing", caps)
		}
		bindColorShaders(t, dev)
		ctx := dev.Context()

		positions, err := gfx.NewVertexBuffer(dev, posDecl, 4, gfx.BufferUsageNone)
		mustOK(t, err)
		mustOK(t, gfx.SetVertexData(positions, []gfx.Vector3{{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1}}))
		colors, err := gfx.NewVertexBuffer(dev, colDecl, 2, gfx.BufferUsageNone)
		mustOK(t, err)
		mustOK(t, gfx.SetVertexData(colors, []gfx.Color{gfx.Red, gfx.Lime}))
		ib, err := gfx.NewIndexBuffer(dev, gfx.IndexElementSize32, 6, gfx.BufferUsageNone)
		mustOK(t, err)
		mustOK(t, gfx.SetIndexData(ib, []uint32{0, 1, 2, 0, 2, 3}))

		mustOK(t, ctx.SetVertexBuffers(
			gfx.VertexBufferBinding{Buffer: positions},
			gfx.VertexBufferBinding{Buffer: colors, InstanceFrequency: 1},
		))
		mustOK(t, ctx.SetIndexBuffer(ib))
		mustOK(t, ctx.ClearColor(gfx.Black))
		mustOK(t, ctx.DrawInstancedPrimitives(gfx.TriangleList, 0, 0, 2, 1, 1))
		for i, got := range backBuffer(t, dev) {
			if got != gfx.Lime {
				t.Fatalf("pixel %d = %v, want the second instance colour", i, got)
			}
		}
	})

	t.Run("omitted", func(t *testing.T) {
		dev, _ := newDevice(t, softgl.Config{OmitInstancing: true}, gfx.HiDef)
		if dev.Capabilities().SupportsInstancing {
			t.Fatal("SupportsInstancing = true without instancing entry points")
		}
		bindColorShaders(t, dev)
		err := dev.Context().DrawInstancedPrimitives(gfx.TriangleList, 0, 0, 2, 0, 3)
		if !errors.Is(err, gfx.ErrNotSupported) {
			t.Errorf("DrawInstancedPrimitives() = %v, want ErrNotSupported", err)
		}
	})
}

func TestOcclusionQuery(t *testing.T) {
	dev, _ := newDevice(t, softgl.Config{QueryLatency: 2}, gfx.HiDef)
	bindColorShaders(t, dev)
	ctx := dev.Context()
	mustOK(t, ctx.SetVertexBuffer(vertexBuffer(t, dev, rect(-1, -1, 1, 0, gfx.White))))
	q, err := gfx.NewOcclusionQuery(dev)
	mustOK(t, err)

	mustOK(t, q.Begin())
	mustOK(t, ctx.DrawPrimitives(gfx.TriangleList, 0, 2))
	mustOK(t, q.End())
	for i := range 2 {
		done, err := q.IsComplete()
		mustOK(t, err)
		if done {
			t.Fatalf("poll %d: query complete before its latency elapsed", i)
		}
	}
	if _, err := q.PixelCount(); !errors.Is(err, gfx.ErrInvalidOperation) {
		t.Errorf("PixelCount() while pending = %v, want ErrInvalidOperation", err)
	}
	done, err := q.IsComplete()
	mustOK(t, err)
	if !done {
		t.Fatal("query still pending")
	}
	n, err := q.PixelCount()
	mustOK(t, err)
	if n != size*size/2 {
		t.Errorf("PixelCount() = %d, want %d", n, size*size/2)
	}
}

func TestShaderCompileError(t *testing.T) {
	dev, _ := newDevice(t, softgl.Config{}, gfx.HiDef)
	_, err := gfx.NewShader(dev, gfx.ShaderDesc{Stage: gfx.ShaderStagePixel, Code: []byte("vec4 helper();\n")})
	var be *gfx.BackendError
	if !errors.As(err, &be) {
		t.Fatalf("NewShader() = %v, want a BackendError", err)
	}
	if !strings.Contains(be.Op, "fragment") || !strings.Contains(be.Log, "main") {
		t.Errorf("BackendError op %q log %q", be.Op, be.Log)
	}
}

func TestDeviceLossAndRecover(t *testing.T) {
	dev, b := newDevice(t, softgl.Config{}, gfx.HiDef)
	bindColorShaders(t, dev)
	ctx := dev.Context()
	verts := rect(-1, -1, 1, 1, gfx.Red)
	vb := vertexBuffer(t, dev, verts)
	mustOK(t, ctx.SetVertexBuffer(vb))

	var lost, reset int
	dev.OnDeviceLost(func(*gfx.GraphicsDevice) { lost++ })
	dev.OnDeviceReset(func(*gfx.GraphicsDevice) { reset++ })

	first := b.Current()
	first.LoseContext(gl.GUILTY_CONTEXT_RESET)
	if err := dev.Present(); !errors.Is(err, gfx.ErrDeviceLost) {
		t.Fatalf("Present() after loss = %v, want ErrDeviceLost", err)
	}
	if got := dev.State(); got != gfx.DeviceLost {
		t.Fatalf("State() = %v, want DeviceLost", got)
	}
	if err := ctx.DrawPrimitives(gfx.TriangleList, 0, 2); !errors.Is(err, gfx.ErrDeviceLost) {
		t.Errorf("DrawPrimitives() on a lost device = %v, want ErrDeviceLost", err)
	}

	mustOK(t, dev.Recover())
	if got := dev.State(); got != gfx.DeviceActive {
		t.Fatalf("State() after Recover = %v", got)
	}
	if b.Current() == first {
		t.Fatal("Recover did not open a new context")
	}
	if lost != 1 || reset != 1 {
		t.Errorf("lost %d reset %d, want 1 each", lost, reset)
	}

	// Contents are undefined after recovery.
	mustOK(t, gfx.SetVertexData(vb, verts))
	mustOK(t, ctx.ClearColor(gfx.Black))
	mustOK(t, ctx.DrawPrimitives(gfx.TriangleList, 0, 2))
	if px := backBuffer(t, dev); px[0] != gfx.Red {
		t.Errorf("pixel after recovery = %v, want red", px[0])
	}
}

const texturedVS = `
attribute vec3 position;
attribute vec2 texCoord;
uniform vec4 posFixup;
varying vec2 vUV;
void main() {
	vUV = texCoord;
	gl_Position = vec4(position, 1.0);
	gl_Position.y *= posFixup.y;
}
`

const texturedFS = `
uniform sampler2D tex;
varying vec2 vUV;
void main() { gl_FragColor = texture2D(tex, vUV); }
`

func TestTexturedFullScreenQuad(t *testing.T) {
	const width, height = 800, 600
	name := "softgl-test-" + t.Name()
	softgl.Register(name, softgl.Config{})
	t.Cleanup(func() { gfx.UnregisterBackend(name) })
	adapters, err := gfx.AdaptersFor(name)
	mustOK(t, err)
	pp := gfx.DefaultPresentationParameters()
	pp.BackBufferWidth, pp.BackBufferHeight = width, height
	dev, err := gfx.NewGraphicsDevice(adapters[0], gfx.HiDef, false, pp)
	mustOK(t, err)
	t.Cleanup(dev.Dispose)

	tex, err := gfx.NewTexture2D(dev, 100, 100, false, gfx.SurfaceFormatColor)
	mustOK(t, err)
	texels := make([]gfx.Color, 100*100)
	for i := range texels {
		texels[i] = gfx.Red
	}
	mustOK(t, gfx.SetTextureData(tex, texels))

	vs, err := gfx.NewShader(dev, gfx.ShaderDesc{
		Stage: gfx.ShaderStageVertex, Code: []byte(texturedVS),
		Attributes: []gfx.ShaderAttribute{
			{Name: "position", Usage: gfx.VertexElementUsagePosition},
			{Name: "texCoord", Usage: gfx.VertexElementUsageTextureCoordinate},
		},
	})
	mustOK(t, err)
	ps, err := gfx.NewShader(dev, gfx.ShaderDesc{
		Stage: gfx.ShaderStagePixel, Code: []byte(texturedFS),
		Samplers: []gfx.ShaderSampler{{Name: "tex", Slot: 0, Kind: gfx.TextureKind2D}},
	})
	mustOK(t, err)

	ctx := dev.Context()
	mustOK(t, ctx.SetVertexShader(vs))
	mustOK(t, ctx.SetPixelShader(ps))
	mustOK(t, ctx.SetRasterizerState(gfx.RasterizerCullNone))
	mustOK(t, ctx.Textures(gfx.ShaderStagePixel).Set(0, tex))
	mustOK(t, ctx.SamplerStates(gfx.ShaderStagePixel).Set(0, gfx.SamplerPointClamp))
	mustOK(t, ctx.ClearColor(gfx.Black))

	v := func(x, y, u, w float32) gfx.VertexPositionTexture {
		return gfx.VertexPositionTexture{
			Position:          gfx.Vector3{X: x, Y: y},
			TextureCoordinate: gfx.Vector2{X: u, Y: w},
		}
	}
	quad := []gfx.VertexPositionTexture{
		v(-1, -1, 0, 1), v(1, -1, 1, 1), v(1, 1, 1, 0),
		v(-1, -1, 0, 1), v(1, 1, 1, 0), v(-1, 1, 0, 0),
	}
	mustOK(t, gfx.DrawUserPrimitives(ctx, gfx.TriangleList, quad, 0, 2, gfx.VertexPositionTextureDeclaration))

	px := make([]gfx.Color, width*height)
	mustOK(t, gfx.GetBackBufferData(dev, nil, px))
	for i, got := range px {
		if got != gfx.Red {
			t.Fatalf("pixel (%d, %d) = %v, want %v", i%width, i/width, got, gfx.Red)
		}
	}
}
