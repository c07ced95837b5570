package softgl

import (
	"strings"

	"github.com/gogpu/gfx/backend/gl"
)

const (
	maxTextureUnits = 32
	maxAttribs      = 16
	maxDrawBuffers  = 8
)

type stencilFace struct {
	fn                    gl.Enum
	ref                   int
	mask                  uint32
	sfail, dpfail, dppass gl.Enum
}

// attrib is one vertex attribute array.
type attrib struct {
	enabled    bool
	size       int
	ty         gl.Enum
	normalized bool
	stride     int
	offset     int
	buffer     gl.Object
	divisor    int
}

// state is the fixed-function and binding state of a context.
type state struct {
	caps map[gl.Enum]bool

	viewport     [4]int
	scissor      [4]int
	near, far    float32
	clearColor   rgba
	clearDepth   float32
	clearStencil int

	colorMask    [4]bool
	depthMask    bool
	depthFunc    gl.Enum
	stencil      [2]stencilFace // front, back
	stencilWrite uint32

	blendSrc   [2]gl.Enum // colour, alpha
	blendDst   [2]gl.Enum
	blendEq    [2]gl.Enum
	blendColor rgba

	cullFace     gl.Enum
	frontFace    gl.Enum
	offsetFactor float32
	offsetUnits  float32

	unpackAlign int
	packAlign   int

	activeUnit int
	units      [maxTextureUnits]map[gl.Enum]gl.Object

	arrayBuf gl.Object
	elemBuf  gl.Object
	drawFBO  gl.Object
	readFBO  gl.Object
	rbo      gl.Object
	program  gl.Object
	attribs  [maxAttribs]attrib
	query    gl.Object
}

func (s *state) reset(w, h int) {
	*s = state{
		caps:        make(map[gl.Enum]bool),
		viewport:    [4]int{0, 0, w, h},
		scissor:     [4]int{0, 0, w, h},
		far:         1,
		clearDepth:  1,
		colorMask:   [4]bool{true, true, true, true},
		depthMask:   true,
		depthFunc:   gl.LESS,
		blendSrc:    [2]gl.Enum{gl.ONE, gl.ONE},
		blendDst:    [2]gl.Enum{gl.ZERO, gl.ZERO},
		blendEq:     [2]gl.Enum{gl.FUNC_ADD, gl.FUNC_ADD},
		cullFace:    gl.BACK,
		frontFace:   gl.CCW,
		unpackAlign: 4,
		packAlign:   4,
	}
	s.stencilWrite = 0xffffffff
	for i := range s.stencil {
		s.stencil[i] = stencilFace{fn: gl.ALWAYS, mask: 0xffffffff, sfail: gl.KEEP, dpfail: gl.KEEP, dppass: gl.KEEP}
	}
	for i := range s.units {
		s.units[i] = make(map[gl.Enum]gl.Object)
	}
	for i := range s.attribs {
		s.attribs[i] = attrib{size: 4, ty: gl.FLOAT}
	}
}

func (c *Context) GetError() gl.Enum {
	if c.lost.Load() {
		return gl.NO_ERROR
	}
	e := c.err
	c.err = gl.NO_ERROR
	return e
}

func (c *Context) GetString(name gl.Enum) string {
	switch name {
	case gl.VENDOR:
		return "gogpu"
	case gl.RENDERER:
		return "softgl"
	case gl.VERSION:
		return c.cfg.Version
	case gl.SHADING_LANGUAGE_VERSION:
		if c.es() {
			return "OpenGL ES GLSL ES 3.00"
		}
		return "3.30"
	case gl.EXTENSIONS:
		return strings.Join(c.cfg.Extensions, " ")
	}
	c.fail(gl.INVALID_ENUM)
	return ""
}

var limits = map[gl.Enum]int{
	gl.MAX_TEXTURE_SIZE:                 8192,
	gl.MAX_3D_TEXTURE_SIZE:              2048,
	gl.MAX_CUBE_MAP_TEXTURE_SIZE:        8192,
	gl.MAX_TEXTURE_IMAGE_UNITS:          16,
	gl.MAX_VERTEX_TEXTURE_IMAGE_UNITS:   16,
	gl.MAX_COMBINED_TEXTURE_IMAGE_UNITS: maxTextureUnits,
	gl.MAX_VERTEX_ATTRIBS:               maxAttribs,
	gl.MAX_VERTEX_UNIFORM_VECTORS:       1024,
	gl.MAX_DRAW_BUFFERS:                 maxDrawBuffers,
	gl.MAX_SAMPLES:                      8,
	gl.MAX_ARRAY_TEXTURE_LAYERS:         512,
	gl.MAX_TEXTURE_MAX_ANISOTROPY_EXT:   16,
}

func (c *Context) GetInteger(pname gl.Enum) int {
	if v, ok := limits[pname]; ok {
		return v
	}
	c.fail(gl.INVALID_ENUM)
	return 0
}

func (c *Context) GetGraphicsResetStatus() gl.Enum { return gl.Enum(c.status.Load()) }

func (c *Context) Enable(cp gl.Enum)  { c.st.caps[cp] = true }
func (c *Context) Disable(cp gl.Enum) { c.st.caps[cp] = false }

func (c *Context) enabled(cp gl.Enum) bool { return c.st.caps[cp] }

func (c *Context) Viewport(x, y, width, height int) {
	if width < 0 || height < 0 {
		c.fail(gl.INVALID_VALUE)
		return
	}
	c.st.viewport = [4]int{x, y, width, height}
}

func (c *Context) Scissor(x, y, width, height int) {
	if width < 0 || height < 0 {
		c.fail(gl.INVALID_VALUE)
		return
	}
	c.st.scissor = [4]int{x, y, width, height}
}

func (c *Context) DepthRange(near, far float32) {
	c.st.near, c.st.far = clamp01(near), clamp01(far)
}

func (c *Context) ClearColor(r, g, b, a float32) { c.st.clearColor = rgba{r, g, b, a} }
func (c *Context) ClearDepth(d float32)          { c.st.clearDepth = clamp01(d) }
func (c *Context) ClearStencil(s int)            { c.st.clearStencil = s }
func (c *Context) ColorMask(r, g, b, a bool)     { c.st.colorMask = [4]bool{r, g, b, a} }
func (c *Context) Flush()                        {}
func (c *Context) Finish()                       {}

func (c *Context) PolygonOffset(factor, units float32) {
	c.st.offsetFactor, c.st.offsetUnits = factor, units
}

func (c *Context) CullFace(mode gl.Enum) {
	switch mode {
	case gl.FRONT, gl.BACK, gl.FRONT_AND_BACK:
		c.st.cullFace = mode
	default:
		c.fail(gl.INVALID_ENUM)
	}
}

func (c *Context) FrontFace(mode gl.Enum) {
	if mode != gl.CW && mode != gl.CCW {
		c.fail(gl.INVALID_ENUM)
		return
	}
	c.st.frontFace = mode
}

func (c *Context) BlendColor(r, g, b, a float32) {
	c.st.blendColor = rgba{clamp01(r), clamp01(g), clamp01(b), clamp01(a)}
}

func (c *Context) BlendEquationSeparate(modeRGB, modeAlpha gl.Enum) {
	c.st.blendEq = [2]gl.Enum{modeRGB, modeAlpha}
}

func (c *Context) BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha gl.Enum) {
	c.st.blendSrc = [2]gl.Enum{srcRGB, srcAlpha}
	c.st.blendDst = [2]gl.Enum{dstRGB, dstAlpha}
}

func (c *Context) DepthFunc(fn gl.Enum) { c.st.depthFunc = fn }
func (c *Context) DepthMask(flag bool)  { c.st.depthMask = flag }

// faces returns the stencil faces face selects.
func (c *Context) faces(face gl.Enum) []*stencilFace {
	switch face {
	case gl.FRONT:
		return []*stencilFace{&c.st.stencil[0]}
	case gl.BACK:
		return []*stencilFace{&c.st.stencil[1]}
	case gl.FRONT_AND_BACK:
		return []*stencilFace{&c.st.stencil[0], &c.st.stencil[1]}
	}
	c.fail(gl.INVALID_ENUM)
	return nil
}

func (c *Context) StencilFuncSeparate(face, fn gl.Enum, ref int, mask uint32) {
	for _, f := range c.faces(face) {
		f.fn, f.ref, f.mask = fn, ref, mask
	}
}

func (c *Context) StencilOpSeparate(face, sfail, dpfail, dppass gl.Enum) {
	for _, f := range c.faces(face) {
		f.sfail, f.dpfail, f.dppass = sfail, dpfail, dppass
	}
}

func (c *Context) StencilMask(mask uint32) { c.st.stencilWrite = mask }

func (c *Context) PixelStorei(pname gl.Enum, param int) {
	if param != 1 && param != 2 && param != 4 && param != 8 {
		c.fail(gl.INVALID_VALUE)
		return
	}
	switch pname {
	case gl.UNPACK_ALIGNMENT:
		c.st.unpackAlign = param
	case gl.PACK_ALIGNMENT:
		c.st.packAlign = param
	default:
		c.fail(gl.INVALID_ENUM)
	}
}
