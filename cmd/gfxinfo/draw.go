package main

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/gfx"
	"github.com/gogpu/gfx/internal/codec"
)

const (
	glslVS = `
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
	glslFS = `
varying vec4 vColor;
void main() { gl_FragColor = vColor; }
`
	wgslVS = `
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
	wgslFS = `
@fragment
fn fs_main(@location(0) color: vec4<f32>) -> @location(0) vec4<f32> {
    return color;
}
`
)

// testShaders returns the colour pass-through pair in the language the
// backend compiles.
func testShaders(backend string) (vs, ps gfx.ShaderDesc) {
	vsrc, psrc := glslVS, glslFS
	if strings.HasPrefix(backend, gfx.BackendWGPU) {
		vsrc, psrc = wgslVS, wgslFS
	}
	vs = gfx.ShaderDesc{
		Stage: gfx.ShaderStageVertex,
		Code:  []byte(vsrc),
		Attributes: []gfx.ShaderAttribute{
			{Name: "position", Usage: gfx.VertexElementUsagePosition, Location: 0},
			{Name: "color", Usage: gfx.VertexElementUsageColor, Location: 1},
		},
	}
	ps = gfx.ShaderDesc{Stage: gfx.ShaderStagePixel, Code: []byte(psrc)}
	return vs, ps
}

// testQuad covers the centre quarter of the viewport: red at the bottom,
// blue at the top.
func testQuad() []gfx.VertexPositionColor {
	v := func(x, y float32, c gfx.Color) gfx.VertexPositionColor {
		return gfx.VertexPositionColor{Position: gfx.Vector3{X: x, Y: y}, Color: c}
	}
	return []gfx.VertexPositionColor{
		v(-0.5, -0.5, gfx.Red), v(0.5, -0.5, gfx.Red), v(0.5, 0.5, gfx.Blue),
		v(-0.5, -0.5, gfx.Red), v(0.5, 0.5, gfx.Blue), v(-0.5, 0.5, gfx.Blue),
	}
}

// drawTestFrame clears the back buffer, draws the test quad, presents and
// writes the back buffer to path.
func drawTestFrame(dev *gfx.GraphicsDevice, path string) error {
	vsDesc, psDesc := testShaders(dev.Adapter().Backend())
	vs, err := gfx.NewShader(dev, vsDesc)
	if err != nil {
		return err
	}
	defer vs.Dispose()
	ps, err := gfx.NewShader(dev, psDesc)
	if err != nil {
		return err
	}
	defer ps.Dispose()

	verts := testQuad()
	vb, err := gfx.NewVertexBuffer(dev, gfx.VertexPositionColorDeclaration, len(verts), gfx.BufferUsageWriteOnly)
	if err != nil {
		return err
	}
	defer vb.Dispose()
	if err := gfx.SetVertexData(vb, verts); err != nil {
		return err
	}

	ctx := dev.Context()
	for _, step := range []func() error{
		func() error { return ctx.SetVertexShader(vs) },
		func() error { return ctx.SetPixelShader(ps) },
		func() error { return ctx.SetVertexBuffer(vb) },
		func() error { return ctx.ClearColor(gfx.Color{R: 32, G: 32, B: 32, A: 255}) },
		func() error { return ctx.DrawPrimitives(gfx.TriangleList, 0, 2) },
		dev.Present,
	} {
		if err := step(); err != nil {
			return err
		}
	}

	pp := dev.PresentationParameters()
	w, h := pp.BackBufferWidth, pp.BackBufferHeight
	px := make([]gfx.Color, w*h)
	if err := gfx.GetBackBufferData(dev, nil, px); err != nil {
		return err
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i, c := range px {
		copy(img.Pix[4*i:], []byte{c.R, c.G, c.B, c.A})
	}

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return err
	}
	if err := codec.EncodePNG(f, img); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
