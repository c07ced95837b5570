package softgl

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gfx/backend/gl"
)

func (c *Context) attrib(index int) *attrib {
	if index < 0 || index >= maxAttribs {
		c.fail(gl.INVALID_VALUE)
		return nil
	}
	return &c.st.attribs[index]
}

func (c *Context) EnableVertexAttribArray(index int) {
	if a := c.attrib(index); a != nil {
		a.enabled = true
	}
}

func (c *Context) DisableVertexAttribArray(index int) {
	if a := c.attrib(index); a != nil {
		a.enabled = false
	}
}

func (c *Context) VertexAttribPointer(index, size int, ty gl.Enum, normalized bool, stride, offset int) {
	a := c.attrib(index)
	if a == nil {
		return
	}
	if size < 1 || size > 4 || stride < 0 || offset < 0 {
		c.fail(gl.INVALID_VALUE)
		return
	}
	if typeSize(ty) == 0 {
		c.fail(gl.INVALID_ENUM)
		return
	}
	if !c.st.arrayBuf.Valid() {
		c.fail(gl.INVALID_OPERATION)
		return
	}
	a.size, a.ty, a.normalized, a.stride, a.offset, a.buffer = size, ty, normalized, stride, offset, c.st.arrayBuf
}

func (c *Context) VertexAttribDivisor(index, divisor int) {
	if a := c.attrib(index); a != nil {
		if divisor < 0 {
			c.fail(gl.INVALID_VALUE)
			return
		}
		a.divisor = divisor
	}
}

func typeSize(ty gl.Enum) int {
	switch ty {
	case gl.BYTE, gl.UNSIGNED_BYTE:
		return 1
	case gl.SHORT, gl.UNSIGNED_SHORT, gl.HALF_FLOAT:
		return 2
	case gl.INT, gl.UNSIGNED_INT, gl.FLOAT:
		return 4
	}
	return 0
}

// fetch reads attribute loc for a vertex. Disabled arrays and reads past the
// end of the buffer yield the default (0, 0, 0, 1).
func (c *Context) fetch(loc, vertex, instance, baseInstance int) rgba {
	out := rgba{0, 0, 0, 1}
	if loc < 0 || loc >= maxAttribs || !c.st.attribs[loc].enabled {
		return out
	}
	a := c.st.attribs[loc]
	ts := typeSize(a.ty)
	stride := a.stride
	if stride == 0 {
		stride = a.size * ts
	}
	idx := vertex
	if a.divisor > 0 {
		idx = baseInstance + instance/a.divisor
	}
	b := c.buffers[a.buffer]
	off := a.offset + idx*stride
	if b == nil || idx < 0 || off+a.size*ts > len(b.data) {
		return out
	}
	for i := 0; i < a.size; i++ {
		out[i] = component(a.ty, a.normalized, b.data[off+i*ts:])
	}
	return out
}

func component(ty gl.Enum, normalized bool, b []byte) float32 {
	if normalized || ty == gl.FLOAT || ty == gl.HALF_FLOAT {
		return decodeComponent(ty, b, 0)
	}
	switch ty {
	case gl.BYTE:
		return float32(int8(b[0]))
	case gl.UNSIGNED_BYTE:
		return float32(b[0])
	case gl.SHORT:
		return float32(int16(binary.LittleEndian.Uint16(b)))
	case gl.UNSIGNED_SHORT:
		return float32(binary.LittleEndian.Uint16(b))
	case gl.INT:
		return float32(int32(binary.LittleEndian.Uint32(b)))
	case gl.UNSIGNED_INT:
		return float32(binary.LittleEndian.Uint32(b))
	}
	return 0
}

// vertex is the output of the vertex stage.
type vertex struct {
	clip  rgba
	color rgba
	uv    [2]float32
}

func lerp(a, b vertex, t float32) vertex {
	var v vertex
	for i := range 4 {
		v.clip[i] = a.clip[i] + (b.clip[i]-a.clip[i])*t
		v.color[i] = a.color[i] + (b.color[i]-a.color[i])*t
	}
	for i := range 2 {
		v.uv[i] = a.uv[i] + (b.uv[i]-a.uv[i])*t
	}
	return v
}

func (c *Context) shade(pr *program, idx, instance, baseInstance int) vertex {
	pos := c.fetch(pr.posLoc, idx, instance, baseInstance)
	if t := pr.transform; t != nil {
		var m mgl32.Mat4
		copy(m[:], t.f[:16])
		pos = rgba(m.Mul4x1(mgl32.Vec4(pos)))
	}
	if f := pr.fixup; f != nil {
		pos[1] *= f.f[1]
		pos[0] += f.f[2] * pos[3]
		pos[1] += f.f[3] * pos[3]
	}
	v := vertex{clip: pos, color: rgba{1, 1, 1, 1}}
	if pr.colorLoc >= 0 {
		v.color = c.fetch(pr.colorLoc, idx, instance, baseInstance)
	}
	if pr.texLoc >= 0 {
		t := c.fetch(pr.texLoc, idx, instance, baseInstance)
		v.uv = [2]float32{t[0], t[1]}
	}
	return v
}

func (c *Context) DrawArrays(mode gl.Enum, first, count int) {
	if first < 0 {
		c.fail(gl.INVALID_VALUE)
		return
	}
	c.run(mode, count, 1, 0, func(i int) int { return first + i })
}

func (c *Context) DrawElements(mode gl.Enum, count int, ty gl.Enum, offset int) {
	c.DrawElementsInstancedBaseInstance(mode, count, ty, offset, 1, 0)
}

func (c *Context) DrawElementsInstanced(mode gl.Enum, count int, ty gl.Enum, offset, instances int) {
	c.DrawElementsInstancedBaseInstance(mode, count, ty, offset, instances, 0)
}

func (c *Context) DrawElementsInstancedBaseInstance(mode gl.Enum, count int, ty gl.Enum, offset, instances,
	baseInstance int) {
	idx, ok := c.indices(count, ty, offset)
	if !ok {
		return
	}
	c.run(mode, count, instances, baseInstance, func(i int) int { return idx[i] })
}

// indices reads count indices from the element buffer.
func (c *Context) indices(count int, ty gl.Enum, offset int) ([]int, bool) {
	if count < 0 || offset < 0 {
		c.fail(gl.INVALID_VALUE)
		return nil, false
	}
	b := c.buffers[c.st.elemBuf]
	if b == nil {
		c.fail(gl.INVALID_OPERATION)
		return nil, false
	}
	size := 0
	switch ty {
	case gl.UNSIGNED_BYTE:
		size = 1
	case gl.UNSIGNED_SHORT:
		size = 2
	case gl.UNSIGNED_INT:
		size = 4
	default:
		c.fail(gl.INVALID_ENUM)
		return nil, false
	}
	if offset+count*size > len(b.data) {
		c.fail(gl.INVALID_OPERATION)
		return nil, false
	}
	out := make([]int, count)
	for i := range out {
		p := b.data[offset+i*size:]
		switch size {
		case 1:
			out[i] = int(p[0])
		case 2:
			out[i] = int(binary.LittleEndian.Uint16(p))
		default:
			out[i] = int(binary.LittleEndian.Uint32(p))
		}
	}
	return out, true
}

// run shades count vertices per instance and rasterizes the primitives
// they form.
func (c *Context) run(mode gl.Enum, count, instances, baseInstance int, index func(int) int) {
	if c.dead() {
		return
	}
	switch mode {
	case gl.POINTS, gl.LINES, gl.LINE_STRIP, gl.TRIANGLES, gl.TRIANGLE_STRIP:
	default:
		c.fail(gl.INVALID_ENUM)
		return
	}
	if count < 0 || instances < 0 || baseInstance < 0 {
		c.fail(gl.INVALID_VALUE)
		return
	}
	pr := c.programs[c.st.program]
	if pr == nil || !pr.linked {
		c.fail(gl.INVALID_OPERATION)
		return
	}
	s, status := c.framebufferSurface(c.st.drawFBO)
	if status != gl.FRAMEBUFFER_COMPLETE {
		c.fail(gl.INVALID_FRAMEBUFFER_OPERATION)
		return
	}
	r := c.newRaster(s, pr)
	verts := make([]vertex, count)
	for inst := 0; inst < instances; inst++ {
		for i := range verts {
			verts[i] = c.shade(pr, index(i), inst, baseInstance)
		}
		r.assemble(mode, verts)
	}
}

func (r *raster) assemble(mode gl.Enum, v []vertex) {
	n := len(v)
	switch mode {
	case gl.TRIANGLES:
		for i := 0; i+2 < n; i += 3 {
			r.triangle(v[i], v[i+1], v[i+2])
		}
	case gl.TRIANGLE_STRIP:
		for i := 0; i+2 < n; i++ {
			if i%2 == 0 {
				r.triangle(v[i], v[i+1], v[i+2])
			} else {
				r.triangle(v[i+1], v[i], v[i+2])
			}
		}
	case gl.LINES:
		for i := 0; i+1 < n; i += 2 {
			r.line(v[i], v[i+1])
		}
	case gl.LINE_STRIP:
		for i := 0; i+1 < n; i++ {
			r.line(v[i], v[i+1])
		}
	case gl.POINTS:
		for i := range v {
			r.point(v[i])
		}
	}
}

// minW keeps clipped vertices strictly in front of the eye.
const minW = 1e-6

// clipPlanes returns the signed distances a vertex must keep non-negative.
func (r *raster) clipPlanes() []func(vertex) float32 {
	planes := []func(vertex) float32{func(v vertex) float32 { return v.clip[3] - minW }}
	if !r.depthClamp {
		planes = append(planes, func(v vertex) float32 { return v.clip[2] + v.clip[3] })
	}
	return planes
}

// clipPolygon clips a convex polygon against the near planes.
func (r *raster) clipPolygon(poly []vertex) []vertex {
	for _, dist := range r.clipPlanes() {
		if len(poly) == 0 {
			return nil
		}
		var out []vertex
		for i, a := range poly {
			b := poly[(i+1)%len(poly)]
			da, db := dist(a), dist(b)
			if da >= 0 {
				out = append(out, a)
			}
			if (da >= 0) != (db >= 0) {
				out = append(out, lerp(a, b, da/(da-db)))
			}
		}
		poly = out
	}
	return poly
}

// clipSegment clips a line against the near planes.
func (r *raster) clipSegment(a, b vertex) (vertex, vertex, bool) {
	for _, dist := range r.clipPlanes() {
		da, db := dist(a), dist(b)
		switch {
		case da < 0 && db < 0:
			return a, b, false
		case da < 0:
			a = lerp(a, b, da/(da-db))
		case db < 0:
			b = lerp(a, b, da/(da-db))
		}
	}
	return a, b, true
}

func (r *raster) triangle(a, b, c vertex) {
	poly := []vertex{a, b, c}
	for _, dist := range r.clipPlanes() {
		if dist(a) < 0 || dist(b) < 0 || dist(c) < 0 {
			poly = r.clipPolygon(poly)
			break
		}
	}
	if len(poly) < 3 {
		return
	}
	w0 := r.window(poly[0])
	for i := 1; i+1 < len(poly); i++ {
		r.fill(w0, r.window(poly[i]), r.window(poly[i+1]))
	}
}

func (r *raster) line(a, b vertex) {
	a, b, ok := r.clipSegment(a, b)
	if !ok {
		return
	}
	r.segment(r.window(a), r.window(b))
}

func (r *raster) point(v vertex) {
	for _, dist := range r.clipPlanes() {
		if dist(v) < 0 {
			return
		}
	}
	w := r.window(v)
	r.fragment(int(math.Floor(float64(w.x))), int(math.Floor(float64(w.y))), w.z, v.color, v.uv, true)
}
