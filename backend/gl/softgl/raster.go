package softgl

import (
	"math"
	"sync"

	"github.com/gogpu/gfx/backend/gl"
	"github.com/gogpu/gfx/internal/parallel"
)

// clearRows is the minimum band height a clear is split into. Smaller
// clears run on the calling goroutine.
const clearRows = 64

// workers is shared by every context.
var workers = sync.OnceValue(func() *parallel.WorkerPool { return parallel.NewWorkerPool(0) })

// depthUnit is the minimum resolvable depth difference polygon offset
// units are measured in.
const depthUnit = 1.0 / (1 << 24)

// raster holds the per-draw state of the fixed pipeline.
type raster struct {
	c  *Context
	s  *surface
	pr *program

	vx, vy, vw, vh float32
	near, far      float32
	// Fragments outside [x0, x1) x [y0, y1) are dropped.
	x0, y0, x1, y1 int

	depthTest   bool
	stencilTest bool
	blend       bool
	cull        bool
	offset      bool
	depthClamp  bool
	occlusion   *query
}

func intersect(r, o [4]int) [4]int {
	x0, y0 := max(r[0], o[0]), max(r[1], o[1])
	x1, y1 := min(r[0]+r[2], o[0]+o[2]), min(r[1]+r[3], o[1]+o[3])
	return [4]int{x0, y0, max(x1-x0, 0), max(y1-y0, 0)}
}

// clipRect is the drawable area of s: the surface bounded by the scissor
// box when the scissor test is enabled.
func (c *Context) clipRect(s *surface) [4]int {
	rect := [4]int{0, 0, s.w, s.h}
	if c.enabled(gl.SCISSOR_TEST) {
		rect = intersect(rect, c.st.scissor)
	}
	return rect
}

func (c *Context) newRaster(s *surface, pr *program) *raster {
	vp := c.st.viewport
	rect := intersect(c.clipRect(s), vp)
	r := &raster{
		c: c, s: s, pr: pr,
		vx: float32(vp[0]), vy: float32(vp[1]), vw: float32(vp[2]), vh: float32(vp[3]),
		near: c.st.near, far: c.st.far,
		x0: rect[0], y0: rect[1], x1: rect[0] + rect[2], y1: rect[1] + rect[3],
		depthTest:   c.enabled(gl.DEPTH_TEST),
		stencilTest: c.enabled(gl.STENCIL_TEST),
		blend:       c.enabled(gl.BLEND),
		cull:        c.enabled(gl.CULL_FACE),
		offset:      c.enabled(gl.POLYGON_OFFSET_FILL),
		depthClamp:  c.enabled(gl.DEPTH_CLAMP),
	}
	if q := c.queries[c.st.query]; q != nil && q.active {
		r.occlusion = q
	}
	return r
}

// winVertex is a vertex in window coordinates. Its attributes are divided
// by w for perspective-correct interpolation.
type winVertex struct {
	x, y, z, iw float32
	color       rgba
	uv          [2]float32
}

func (r *raster) window(v vertex) winVertex {
	iw := 1 / v.clip[3]
	nx, ny, nz := v.clip[0]*iw, v.clip[1]*iw, v.clip[2]*iw
	w := winVertex{
		x:  (nx+1)*0.5*r.vw + r.vx,
		y:  (ny+1)*0.5*r.vh + r.vy,
		z:  nz*0.5*(r.far-r.near) + (r.far+r.near)*0.5,
		iw: iw,
	}
	for i := range 4 {
		w.color[i] = v.color[i] * iw
	}
	w.uv = [2]float32{v.uv[0] * iw, v.uv[1] * iw}
	return w
}

// edge is twice the signed area of (a, b, p). It is positive when p lies to
// the left of a->b.
func edge(a, b winVertex, x, y float32) float32 {
	return (b.x-a.x)*(y-a.y) - (b.y-a.y)*(x-a.x)
}

// owns reports whether a pixel centre exactly on edge a->b of a
// counter-clockwise triangle belongs to it. Top and left edges do.
func owns(a, b winVertex) bool {
	dx, dy := b.x-a.x, b.y-a.y
	return dy < 0 || (dy == 0 && dx < 0)
}

func covered(w float32, a, b winVertex) bool {
	return w > 0 || (w == 0 && owns(a, b))
}

// interpolate blends the attributes of three vertices with screen-space
// weights l and undoes the division by w.
func interpolate(v [3]winVertex, l [3]float32) (rgba, [2]float32) {
	iw := l[0]*v[0].iw + l[1]*v[1].iw + l[2]*v[2].iw
	var col rgba
	var uv [2]float32
	for i := range 4 {
		col[i] = (l[0]*v[0].color[i] + l[1]*v[1].color[i] + l[2]*v[2].color[i]) / iw
	}
	for i := range 2 {
		uv[i] = (l[0]*v[0].uv[i] + l[1]*v[1].uv[i] + l[2]*v[2].uv[i]) / iw
	}
	return col, uv
}

func (r *raster) fill(a, b, c winVertex) {
	area := edge(a, b, c.x, c.y)
	if area == 0 || math.IsNaN(float64(area)) {
		return
	}
	ccw := area > 0
	front := ccw == (r.c.st.frontFace == gl.CCW)
	if r.cull {
		switch r.c.st.cullFace {
		case gl.FRONT_AND_BACK:
			return
		case gl.FRONT:
			if front {
				return
			}
		case gl.BACK:
			if !front {
				return
			}
		}
	}
	if !ccw {
		b, c = c, b
		area = -area
	}

	var off float32
	if r.offset {
		// Depth slopes from the plane through the three vertices.
		e1x, e1y, e1z := b.x-a.x, b.y-a.y, b.z-a.z
		e2x, e2y, e2z := c.x-a.x, c.y-a.y, c.z-a.z
		nx := e1y*e2z - e1z*e2y
		ny := e1z*e2x - e1x*e2z
		nz := e1x*e2y - e1y*e2x
		m := max(abs(nx/nz), abs(ny/nz))
		off = r.c.st.offsetFactor*m + r.c.st.offsetUnits*depthUnit
	}

	minX := max(int(math.Floor(float64(min(a.x, b.x, c.x)))), r.x0)
	maxX := min(int(math.Ceil(float64(max(a.x, b.x, c.x)))), r.x1-1)
	minY := max(int(math.Floor(float64(min(a.y, b.y, c.y)))), r.y0)
	maxY := min(int(math.Ceil(float64(max(a.y, b.y, c.y)))), r.y1-1)
	v := [3]winVertex{a, b, c}
	for py := minY; py <= maxY; py++ {
		cy := float32(py) + 0.5
		for px := minX; px <= maxX; px++ {
			cx := float32(px) + 0.5
			w0 := edge(b, c, cx, cy)
			w1 := edge(c, a, cx, cy)
			w2 := edge(a, b, cx, cy)
			if !covered(w0, b, c) || !covered(w1, c, a) || !covered(w2, a, b) {
				continue
			}
			l := [3]float32{w0 / area, w1 / area, w2 / area}
			z := l[0]*a.z + l[1]*b.z + l[2]*c.z + off
			col, uv := interpolate(v, l)
			r.fragment(px, py, z, col, uv, front)
		}
	}
}

// segment draws a line with one fragment per step along its major axis.
func (r *raster) segment(a, b winVertex) {
	dx, dy := b.x-a.x, b.y-a.y
	n := int(math.Round(float64(max(abs(dx), abs(dy)))))
	v := [3]winVertex{a, b, b}
	for i := 0; i < n; i++ {
		t := (float32(i) + 0.5) / float32(n)
		x, y := a.x+dx*t, a.y+dy*t
		l := [3]float32{1 - t, t, 0}
		col, uv := interpolate(v, l)
		z := a.z + (b.z-a.z)*t
		r.fragment(int(math.Floor(float64(x))), int(math.Floor(float64(y))), z, col, uv, true)
	}
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func compare[T float32 | uint32](fn gl.Enum, a, b T) bool {
	switch fn {
	case gl.NEVER:
		return false
	case gl.LESS:
		return a < b
	case gl.EQUAL:
		return a == b
	case gl.LEQUAL:
		return a <= b
	case gl.GREATER:
		return a > b
	case gl.NOTEQUAL:
		return a != b
	case gl.GEQUAL:
		return a >= b
	}
	return true
}

func stencilOp(op gl.Enum, v uint8, ref int) uint8 {
	switch op {
	case gl.ZERO:
		return 0
	case gl.REPLACE:
		return uint8(min(max(ref, 0), 255))
	case gl.INCR:
		if v == 255 {
			return v
		}
		return v + 1
	case gl.DECR:
		if v == 0 {
			return v
		}
		return v - 1
	case gl.INVERT:
		return ^v
	case gl.INCR_WRAP:
		return v + 1
	case gl.DECR_WRAP:
		return v - 1
	}
	return v
}

func (r *raster) writeStencil(ds *depthBuffer, i int, op gl.Enum, f *stencilFace) {
	mask := uint8(r.c.st.stencilWrite)
	v := ds.stencil[i]
	ds.stencil[i] = v&^mask | stencilOp(op, v, f.ref)&mask
}

// fragment runs the per-fragment operations for pixel (x, y).
func (r *raster) fragment(x, y int, z float32, col rgba, uv [2]float32, front bool) {
	if x < r.x0 || x >= r.x1 || y < r.y0 || y >= r.y1 {
		return
	}
	lo, hi := min(r.near, r.far), max(r.near, r.far)
	if z < lo || z > hi {
		if !r.depthClamp {
			return
		}
		z = min(max(z, lo), hi)
	}
	if s := r.pr.sampler; s != nil {
		t := r.c.sample(s.i, r.pr.samplerTarget, uv)
		for i := range 4 {
			col[i] *= t[i]
		}
	}

	ds := r.s.depth
	i := y*r.s.w + x
	face := &r.c.st.stencil[0]
	if !front {
		face = &r.c.st.stencil[1]
	}
	stencil := r.stencilTest && ds != nil && ds.hasStencil
	if stencil {
		ref := uint32(min(max(face.ref, 0), 255))
		if !compare(face.fn, ref&face.mask, uint32(ds.stencil[i])&face.mask) {
			r.writeStencil(ds, i, face.sfail, face)
			return
		}
	}
	if r.depthTest && ds != nil {
		if !compare(r.c.st.depthFunc, z, ds.depth[i]) {
			if stencil {
				r.writeStencil(ds, i, face.dpfail, face)
			}
			return
		}
		if r.c.st.depthMask {
			ds.depth[i] = z
		}
	}
	if stencil {
		r.writeStencil(ds, i, face.dppass, face)
	}
	if r.occlusion != nil {
		r.occlusion.samples++
	}

	for _, im := range r.s.colors {
		if im == nil {
			continue
		}
		dst := im.at(x, y)
		out := col
		if r.blend {
			out = r.blendColor(col, dst, im.st.normalized())
		}
		for ch, on := range r.c.st.colorMask {
			if !on {
				out[ch] = dst[ch]
			}
		}
		im.set(x, y, out)
	}
}

func (r *raster) blendColor(src, dst rgba, normalized bool) rgba {
	if normalized {
		for i := range 4 {
			src[i], dst[i] = clamp01(src[i]), clamp01(dst[i])
		}
	}
	st := &r.c.st
	var out rgba
	for ch := range 4 {
		i := 0
		if ch == 3 {
			i = 1
		}
		eq := st.blendEq[i]
		switch eq {
		case gl.MIN:
			out[ch] = min(src[ch], dst[ch])
			continue
		case gl.MAX:
			out[ch] = max(src[ch], dst[ch])
			continue
		}
		s := src[ch] * factor(st.blendSrc[i], ch, src, dst, st.blendColor)
		d := dst[ch] * factor(st.blendDst[i], ch, src, dst, st.blendColor)
		switch eq {
		case gl.FUNC_SUBTRACT:
			out[ch] = s - d
		case gl.FUNC_REVERSE_SUBTRACT:
			out[ch] = d - s
		default:
			out[ch] = s + d
		}
	}
	return out
}

func factor(f gl.Enum, ch int, src, dst, k rgba) float32 {
	switch f {
	case gl.ZERO:
		return 0
	case gl.ONE:
		return 1
	case gl.SRC_COLOR:
		return src[ch]
	case gl.ONE_MINUS_SRC_COLOR:
		return 1 - src[ch]
	case gl.SRC_ALPHA:
		return src[3]
	case gl.ONE_MINUS_SRC_ALPHA:
		return 1 - src[3]
	case gl.DST_COLOR:
		return dst[ch]
	case gl.ONE_MINUS_DST_COLOR:
		return 1 - dst[ch]
	case gl.DST_ALPHA:
		return dst[3]
	case gl.ONE_MINUS_DST_ALPHA:
		return 1 - dst[3]
	case gl.CONSTANT_COLOR:
		return k[ch]
	case gl.ONE_MINUS_CONSTANT_COLOR:
		return 1 - k[ch]
	case gl.SRC_ALPHA_SATURATE:
		if ch == 3 {
			return 1
		}
		return min(src[3], 1-dst[3])
	}
	return 0
}

// Clear fills the buffers selected by mask within the scissor box, subject
// to the write masks.
func (c *Context) Clear(mask gl.Enum) {
	if c.dead() {
		return
	}
	if mask&^(gl.COLOR_BUFFER_BIT|gl.DEPTH_BUFFER_BIT|gl.STENCIL_BUFFER_BIT) != 0 {
		c.fail(gl.INVALID_VALUE)
		return
	}
	s, status := c.framebufferSurface(c.st.drawFBO)
	if status != gl.FRAMEBUFFER_COMPLETE {
		c.fail(gl.INVALID_FRAMEBUFFER_OPERATION)
		return
	}
	rect := c.clipRect(s)
	workers().Rows(rect[3], clearRows, func(y0, y1 int) {
		for y := rect[1] + y0; y < rect[1]+y1; y++ {
			for x := rect[0]; x < rect[0]+rect[2]; x++ {
				c.clearPixel(s, x, y, mask)
			}
		}
	})
}

func (c *Context) clearPixel(s *surface, x, y int, mask gl.Enum) {
	if mask&gl.COLOR_BUFFER_BIT != 0 {
		for _, im := range s.colors {
			if im == nil {
				continue
			}
			v, dst := c.st.clearColor, im.at(x, y)
			for ch, on := range c.st.colorMask {
				if !on {
					v[ch] = dst[ch]
				}
			}
			im.set(x, y, v)
		}
	}
	ds := s.depth
	if ds == nil {
		return
	}
	i := y*ds.w + x
	if mask&gl.DEPTH_BUFFER_BIT != 0 && c.st.depthMask {
		ds.depth[i] = c.st.clearDepth
	}
	if mask&gl.STENCIL_BUFFER_BIT != 0 && ds.hasStencil {
		w := uint8(c.st.stencilWrite)
		ds.stencil[i] = ds.stencil[i]&^w | uint8(c.st.clearStencil)&w
	}
}
