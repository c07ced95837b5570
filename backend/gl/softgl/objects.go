package softgl

import "github.com/gogpu/gfx/backend/gl"

// image is one 2D slice of colour storage. Row 0 is the bottom row in
// window coordinates, the first row uploaded for textures.
type image struct {
	w, h     int
	internal gl.Enum
	st       storage
	pix      []float32
	// raw holds compressed payloads, which are stored but never decoded.
	raw []byte
}

func newImage(internal gl.Enum, w, h int) *image {
	st, _ := storageOf(internal)
	return &image{w: w, h: h, internal: internal, st: st, pix: make([]float32, 4*w*h)}
}

func (im *image) compressed() bool { return im.pix == nil }

func (im *image) at(x, y int) rgba {
	i := 4 * (y*im.w + x)
	return rgba{im.pix[i], im.pix[i+1], im.pix[i+2], im.pix[i+3]}
}

func (im *image) set(x, y int, v rgba) {
	v = im.st.store(v)
	i := 4 * (y*im.w + x)
	copy(im.pix[i:i+4], v[:])
}

// depthBuffer holds depth and stencil values of a framebuffer.
type depthBuffer struct {
	w, h       int
	depth      []float32
	stencil    []uint8
	hasStencil bool
}

func newDepthBuffer(w, h int, stencil bool) *depthBuffer {
	d := &depthBuffer{w: w, h: h, depth: make([]float32, w*h), hasStencil: stencil}
	if stencil {
		d.stencil = make([]uint8, w*h)
	}
	return d
}

type level struct {
	w, h, d  int
	internal gl.Enum
	// layers holds one image per array layer, 3D slice or cube face.
	layers []*image
}

type texture struct {
	target    gl.Enum
	levels    []level
	minFilter gl.Enum
	magFilter gl.Enum
	wrap      [3]gl.Enum
	baseLevel int
	maxLevel  int
}

func newTexture(target gl.Enum) *texture {
	return &texture{
		target:    target,
		minFilter: gl.NEAREST_MIPMAP_LINEAR,
		magFilter: gl.LINEAR,
		wrap:      [3]gl.Enum{gl.REPEAT, gl.REPEAT, gl.REPEAT},
		maxLevel:  1000,
	}
}

// define replaces level n with uninitialized storage.
func (t *texture) define(n int, internal gl.Enum, w, h, d int) *level {
	for len(t.levels) <= n {
		t.levels = append(t.levels, level{})
	}
	layers := d
	if t.target == gl.TEXTURE_CUBE_MAP {
		layers = 6
	}
	l := &t.levels[n]
	*l = level{w: w, h: h, d: d, internal: internal, layers: make([]*image, layers)}
	for i := range l.layers {
		l.layers[i] = newImage(internal, w, h)
	}
	return l
}

func (t *texture) level(n int) *level {
	if n < 0 || n >= len(t.levels) || t.levels[n].layers == nil {
		return nil
	}
	return &t.levels[n]
}

type buffer struct {
	data  []byte
	usage gl.Enum
}

type renderbuffer struct {
	internal gl.Enum
	w, h     int
	samples  int
	color    *image
	depth    *depthBuffer
}

type attachment struct {
	tex   gl.Object
	level int
	layer int
	rb    gl.Object
}

func (a attachment) empty() bool { return !a.tex.Valid() && !a.rb.Valid() }

type framebuffer struct {
	color       [8]attachment
	depth       attachment
	stencil     attachment
	drawBuffers []gl.Enum
	hasDrawBufs bool
}

type query struct {
	samples uint32
	active  bool
	// pending counts availability polls left before the result is ready.
	pending int
}
