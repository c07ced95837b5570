package softgl

import "github.com/gogpu/gfx/backend/gl"

func isCubeFace(target gl.Enum) bool {
	return target >= gl.TEXTURE_CUBE_MAP_POSITIVE_X && target < gl.TEXTURE_CUBE_MAP_POSITIVE_X+6
}

func (c *Context) GenTexture() gl.Object {
	obj := c.gen()
	c.textures[obj] = &texture{}
	return obj
}

func (c *Context) DeleteTexture(t gl.Object) {
	delete(c.textures, t)
	for _, u := range c.st.units {
		for target, obj := range u {
			if obj == t {
				delete(u, target)
			}
		}
	}
}

func (c *Context) ActiveTexture(unit gl.Enum) {
	i := int(unit - gl.TEXTURE0)
	if i < 0 || i >= maxTextureUnits {
		c.fail(gl.INVALID_ENUM)
		return
	}
	c.st.activeUnit = i
}

func (c *Context) BindTexture(target gl.Enum, t gl.Object) {
	switch target {
	case gl.TEXTURE_2D, gl.TEXTURE_3D, gl.TEXTURE_2D_ARRAY, gl.TEXTURE_CUBE_MAP:
	default:
		c.fail(gl.INVALID_ENUM)
		return
	}
	if t.Valid() {
		tex, ok := c.textures[t]
		if !ok {
			c.fail(gl.INVALID_OPERATION)
			return
		}
		if tex.target == 0 {
			*tex = *newTexture(target)
		} else if tex.target != target {
			c.fail(gl.INVALID_OPERATION)
			return
		}
	}
	c.st.units[c.st.activeUnit][target] = t
}

// bound returns the texture bound to target on the active unit and the
// layer a cube face target selects.
func (c *Context) bound(target gl.Enum) (*texture, int) {
	bind, face := target, 0
	if isCubeFace(target) {
		bind, face = gl.TEXTURE_CUBE_MAP, int(target-gl.TEXTURE_CUBE_MAP_POSITIVE_X)
	}
	t := c.textures[c.st.units[c.st.activeUnit][bind]]
	if t == nil || t.target == 0 {
		c.fail(gl.INVALID_OPERATION)
		return nil, 0
	}
	return t, face
}

func (c *Context) TexParameteri(target, pname gl.Enum, param int) {
	t, _ := c.bound(target)
	if t == nil {
		return
	}
	v := gl.Enum(param)
	switch pname {
	case gl.TEXTURE_MIN_FILTER:
		t.minFilter = v
	case gl.TEXTURE_MAG_FILTER:
		t.magFilter = v
	case gl.TEXTURE_WRAP_S:
		t.wrap[0] = v
	case gl.TEXTURE_WRAP_T:
		t.wrap[1] = v
	case gl.TEXTURE_WRAP_R:
		t.wrap[2] = v
	case gl.TEXTURE_BASE_LEVEL:
		t.baseLevel = param
	case gl.TEXTURE_MAX_LEVEL:
		t.maxLevel = param
	case gl.TEXTURE_COMPARE_MODE, gl.TEXTURE_COMPARE_FUNC:
		// Comparison sampling is not emulated.
	default:
		c.fail(gl.INVALID_ENUM)
	}
}

func (c *Context) TexParameterf(target, pname gl.Enum, param float32) {
	switch pname {
	case gl.TEXTURE_MAX_ANISOTROPY_EXT, gl.TEXTURE_LOD_BIAS:
		c.bound(target)
	default:
		c.TexParameteri(target, pname, int(param))
	}
}

// checkPixels validates a format, type and the size of data for a w x h x d
// box. A nil data is always accepted.
func (c *Context) checkPixels(format, ty gl.Enum, w, h, d int, data []byte, align int) (int, bool) {
	px, ok := pixelSize(format, ty)
	if !ok {
		c.fail(gl.INVALID_ENUM)
		return 0, false
	}
	if data != nil && w > 0 && h > 0 && d > 0 {
		stride := rowStride(w, px, align)
		need := stride*(h*d-1) + w*px
		if len(data) < need {
			c.fail(gl.INVALID_OPERATION)
			return 0, false
		}
	}
	return px, true
}

// unpack decodes a w x h region of data into im at x, y.
func (c *Context) unpack(im *image, x, y, w, h int, format, ty gl.Enum, px int, data []byte) {
	stride := rowStride(w, px, c.st.unpackAlign)
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			off := row*stride + col*px
			im.set(x+col, y+row, decodePixel(format, ty, data[off:off+px]))
		}
	}
}

// pack encodes a w x h region of im at x, y into data.
func (c *Context) pack(im *image, x, y, w, h int, format, ty gl.Enum, px int, data []byte) {
	stride := rowStride(w, px, c.st.packAlign)
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			encodePixel(format, ty, im.at(x+col, y+row), data[row*stride+col*px:])
		}
	}
}

func (c *Context) TexImage2D(target gl.Enum, lvl int, internal gl.Enum, width, height int, format, ty gl.Enum,
	data []byte) {
	t, face := c.bound(target)
	if t == nil {
		return
	}
	if (t.target == gl.TEXTURE_CUBE_MAP) != isCubeFace(target) || (t.target != gl.TEXTURE_2D && !isCubeFace(target)) {
		c.fail(gl.INVALID_ENUM)
		return
	}
	if _, ok := storageOf(internal); !ok || lvl < 0 || width < 0 || height < 0 {
		c.fail(gl.INVALID_VALUE)
		return
	}
	px, ok := c.checkPixels(format, ty, width, height, 1, data, c.st.unpackAlign)
	if !ok {
		return
	}
	l := t.level(lvl)
	if l == nil || t.target != gl.TEXTURE_CUBE_MAP || l.w != width || l.h != height || l.internal != internal {
		l = t.define(lvl, internal, width, height, 1)
	}
	if data != nil {
		c.unpack(l.layers[face], 0, 0, width, height, format, ty, px, data)
	}
}

func (c *Context) TexSubImage2D(target gl.Enum, lvl, x, y, width, height int, format, ty gl.Enum, data []byte) {
	t, face := c.bound(target)
	if t == nil {
		return
	}
	l := t.level(lvl)
	if l == nil || l.layers[face].compressed() {
		c.fail(gl.INVALID_OPERATION)
		return
	}
	if x < 0 || y < 0 || x+width > l.w || y+height > l.h {
		c.fail(gl.INVALID_VALUE)
		return
	}
	px, ok := c.checkPixels(format, ty, width, height, 1, data, c.st.unpackAlign)
	if !ok || data == nil {
		return
	}
	c.unpack(l.layers[face], x, y, width, height, format, ty, px, data)
}

func (c *Context) CompressedTexImage2D(target gl.Enum, lvl int, internal gl.Enum, width, height int, data []byte) {
	t, face := c.bound(target)
	if t == nil {
		return
	}
	if _, ok := storageOf(internal); ok {
		c.fail(gl.INVALID_ENUM)
		return
	}
	l := t.level(lvl)
	if l == nil || t.target != gl.TEXTURE_CUBE_MAP || l.w != width || l.h != height || l.internal != internal {
		l = t.define(lvl, internal, width, height, 1)
		for _, im := range l.layers {
			im.pix = nil
		}
	}
	l.layers[face].raw = append([]byte(nil), data...)
}

func (c *Context) CompressedTexSubImage2D(target gl.Enum, lvl, x, y, width, height int, format gl.Enum,
	data []byte) {
	t, face := c.bound(target)
	if t == nil {
		return
	}
	l := t.level(lvl)
	if l == nil || !l.layers[face].compressed() || format != l.internal {
		c.fail(gl.INVALID_OPERATION)
		return
	}
	if x < 0 || y < 0 || x+width > l.w || y+height > l.h {
		c.fail(gl.INVALID_VALUE)
		return
	}
	// Blocks are opaque, so a partial update only replaces the payload prefix.
	copy(l.layers[face].raw, data)
}

func (c *Context) TexImage3D(target gl.Enum, lvl int, internal gl.Enum, width, height, depth int, format,
	ty gl.Enum, data []byte) {
	t, _ := c.bound(target)
	if t == nil {
		return
	}
	if t.target != gl.TEXTURE_3D && t.target != gl.TEXTURE_2D_ARRAY {
		c.fail(gl.INVALID_ENUM)
		return
	}
	if _, ok := storageOf(internal); !ok || lvl < 0 || width < 0 || height < 0 || depth < 0 {
		c.fail(gl.INVALID_VALUE)
		return
	}
	px, ok := c.checkPixels(format, ty, width, height, depth, data, c.st.unpackAlign)
	if !ok {
		return
	}
	l := t.define(lvl, internal, width, height, depth)
	if data != nil {
		slice := rowStride(width, px, c.st.unpackAlign) * height
		for z, im := range l.layers {
			c.unpack(im, 0, 0, width, height, format, ty, px, data[z*slice:])
		}
	}
}

func (c *Context) TexSubImage3D(target gl.Enum, lvl, x, y, z, width, height, depth int, format, ty gl.Enum,
	data []byte) {
	t, _ := c.bound(target)
	if t == nil {
		return
	}
	l := t.level(lvl)
	if l == nil || t.target == gl.TEXTURE_2D || t.target == gl.TEXTURE_CUBE_MAP {
		c.fail(gl.INVALID_OPERATION)
		return
	}
	if x < 0 || y < 0 || z < 0 || x+width > l.w || y+height > l.h || z+depth > len(l.layers) {
		c.fail(gl.INVALID_VALUE)
		return
	}
	px, ok := c.checkPixels(format, ty, width, height, depth, data, c.st.unpackAlign)
	if !ok || data == nil {
		return
	}
	slice := rowStride(width, px, c.st.unpackAlign) * height
	for i := 0; i < depth; i++ {
		c.unpack(l.layers[z+i], x, y, width, height, format, ty, px, data[i*slice:])
	}
}

func (c *Context) GetTexImage(target gl.Enum, lvl int, format, ty gl.Enum, data []byte) {
	t, face := c.bound(target)
	if t == nil {
		return
	}
	l := t.level(lvl)
	if l == nil || l.layers[0].compressed() || (t.target == gl.TEXTURE_CUBE_MAP && !isCubeFace(target)) {
		c.fail(gl.INVALID_OPERATION)
		return
	}
	layers := l.layers
	if t.target == gl.TEXTURE_CUBE_MAP {
		layers = layers[face : face+1]
	}
	px, ok := c.checkPixels(format, ty, l.w, l.h, len(layers), data, c.st.packAlign)
	if !ok {
		return
	}
	slice := rowStride(l.w, px, c.st.packAlign) * l.h
	for z, im := range layers {
		c.pack(im, 0, 0, l.w, l.h, format, ty, px, data[z*slice:])
	}
}

func (c *Context) GenerateMipmap(target gl.Enum) {
	t, _ := c.bound(target)
	if t == nil {
		return
	}
	base := t.level(t.baseLevel)
	if base == nil || base.layers[0].compressed() {
		c.fail(gl.INVALID_OPERATION)
		return
	}
	prev := *base
	for n := t.baseLevel + 1; n <= t.maxLevel && (prev.w > 1 || prev.h > 1 || (t.target == gl.TEXTURE_3D && prev.d > 1)); n++ {
		w, h, d := max(1, prev.w/2), max(1, prev.h/2), prev.d
		if t.target == gl.TEXTURE_3D {
			d = max(1, prev.d/2)
		}
		l := t.define(n, prev.internal, w, h, d)
		for i, dst := range l.layers {
			if t.target == gl.TEXTURE_3D {
				a, b := prev.layers[min(2*i, prev.d-1)], prev.layers[min(2*i+1, prev.d-1)]
				downsample(dst, a, b)
			} else {
				downsample(dst, prev.layers[i], prev.layers[i])
			}
		}
		prev = *l
	}
}

func (c *Context) GenBuffer() gl.Object {
	obj := c.gen()
	c.buffers[obj] = &buffer{}
	return obj
}

func (c *Context) DeleteBuffer(b gl.Object) {
	delete(c.buffers, b)
	if c.st.arrayBuf == b {
		c.st.arrayBuf = 0
	}
	if c.st.elemBuf == b {
		c.st.elemBuf = 0
	}
}

func (c *Context) BindBuffer(target gl.Enum, b gl.Object) {
	if _, ok := c.buffers[b]; b.Valid() && !ok {
		c.fail(gl.INVALID_OPERATION)
		return
	}
	switch target {
	case gl.ARRAY_BUFFER:
		c.st.arrayBuf = b
	case gl.ELEMENT_ARRAY_BUFFER:
		c.st.elemBuf = b
	default:
		c.fail(gl.INVALID_ENUM)
	}
}

func (c *Context) boundBuffer(target gl.Enum) *buffer {
	var obj gl.Object
	switch target {
	case gl.ARRAY_BUFFER:
		obj = c.st.arrayBuf
	case gl.ELEMENT_ARRAY_BUFFER:
		obj = c.st.elemBuf
	default:
		c.fail(gl.INVALID_ENUM)
		return nil
	}
	b := c.buffers[obj]
	if b == nil {
		c.fail(gl.INVALID_OPERATION)
	}
	return b
}

func (c *Context) BufferData(target gl.Enum, size int, data []byte, usage gl.Enum) {
	b := c.boundBuffer(target)
	if b == nil {
		return
	}
	if size < 0 {
		c.fail(gl.INVALID_VALUE)
		return
	}
	b.data = make([]byte, size)
	copy(b.data, data)
	b.usage = usage
}

func (c *Context) BufferSubData(target gl.Enum, offset int, data []byte) {
	b := c.boundBuffer(target)
	if b == nil {
		return
	}
	if offset < 0 || offset+len(data) > len(b.data) {
		c.fail(gl.INVALID_VALUE)
		return
	}
	copy(b.data[offset:], data)
}

func (c *Context) GetBufferSubData(target gl.Enum, offset int, data []byte) {
	b := c.boundBuffer(target)
	if b == nil {
		return
	}
	if offset < 0 || offset+len(data) > len(b.data) {
		c.fail(gl.INVALID_VALUE)
		return
	}
	copy(data, b.data[offset:])
}

func (c *Context) GenFramebuffer() gl.Object {
	obj := c.gen()
	c.framebuffers[obj] = &framebuffer{}
	return obj
}

func (c *Context) DeleteFramebuffer(fb gl.Object) {
	delete(c.framebuffers, fb)
	if c.st.drawFBO == fb {
		c.st.drawFBO = 0
	}
	if c.st.readFBO == fb {
		c.st.readFBO = 0
	}
}

func (c *Context) BindFramebuffer(target gl.Enum, fb gl.Object) {
	if _, ok := c.framebuffers[fb]; fb.Valid() && !ok {
		c.fail(gl.INVALID_OPERATION)
		return
	}
	switch target {
	case gl.FRAMEBUFFER:
		c.st.drawFBO, c.st.readFBO = fb, fb
	case gl.DRAW_FRAMEBUFFER:
		c.st.drawFBO = fb
	case gl.READ_FRAMEBUFFER:
		c.st.readFBO = fb
	default:
		c.fail(gl.INVALID_ENUM)
	}
}

// boundFramebuffer returns the framebuffer object bound to target. The
// default framebuffer cannot be modified.
func (c *Context) boundFramebuffer(target gl.Enum) *framebuffer {
	obj := c.st.drawFBO
	if target == gl.READ_FRAMEBUFFER {
		obj = c.st.readFBO
	}
	fb := c.framebuffers[obj]
	if fb == nil {
		c.fail(gl.INVALID_OPERATION)
	}
	return fb
}

func (c *Context) attach(target, point gl.Enum, a attachment) {
	fb := c.boundFramebuffer(target)
	if fb == nil {
		return
	}
	switch {
	case point >= gl.COLOR_ATTACHMENT0 && point < gl.COLOR_ATTACHMENT0+maxDrawBuffers:
		fb.color[point-gl.COLOR_ATTACHMENT0] = a
	case point == gl.DEPTH_ATTACHMENT:
		fb.depth = a
	case point == gl.STENCIL_ATTACHMENT:
		fb.stencil = a
	case point == gl.DEPTH_STENCIL_ATTACHMENT:
		fb.depth, fb.stencil = a, a
	default:
		c.fail(gl.INVALID_ENUM)
	}
}

func (c *Context) FramebufferTexture2D(target, point, texTarget gl.Enum, t gl.Object, lvl int) {
	layer := 0
	if isCubeFace(texTarget) {
		layer = int(texTarget - gl.TEXTURE_CUBE_MAP_POSITIVE_X)
	}
	c.attach(target, point, attachment{tex: t, level: lvl, layer: layer})
}

func (c *Context) FramebufferTextureLayer(target, point gl.Enum, t gl.Object, lvl, layer int) {
	c.attach(target, point, attachment{tex: t, level: lvl, layer: layer})
}

func (c *Context) FramebufferRenderbuffer(target, point, rbTarget gl.Enum, rb gl.Object) {
	if rbTarget != gl.RENDERBUFFER {
		c.fail(gl.INVALID_ENUM)
		return
	}
	c.attach(target, point, attachment{rb: rb})
}

func (c *Context) DrawBuffers(bufs []gl.Enum) {
	if len(bufs) > maxDrawBuffers {
		c.fail(gl.INVALID_VALUE)
		return
	}
	if !c.st.drawFBO.Valid() {
		return
	}
	fb := c.boundFramebuffer(gl.DRAW_FRAMEBUFFER)
	if fb == nil {
		return
	}
	fb.drawBuffers = append(fb.drawBuffers[:0], bufs...)
	fb.hasDrawBufs = true
}

// surface is a resolved framebuffer.
type surface struct {
	w, h int
	// colors holds one image per draw buffer; nil entries are not written.
	colors []*image
	depth  *depthBuffer
}

// framebufferSurface resolves obj. The returned status is
// FRAMEBUFFER_COMPLETE when the surface can be used.
func (c *Context) framebufferSurface(obj gl.Object) (*surface, gl.Enum) {
	if !obj.Valid() {
		return &surface{w: c.back.w, h: c.back.h, colors: []*image{c.back}, depth: c.backDepth}, gl.FRAMEBUFFER_COMPLETE
	}
	fb := c.framebuffers[obj]
	if fb == nil {
		return nil, gl.FRAMEBUFFER_UNSUPPORTED
	}
	s := &surface{w: -1}
	size := func(w, h int) bool {
		if s.w < 0 {
			s.w, s.h = w, h
		}
		return s.w == w && s.h == h
	}
	var images [maxDrawBuffers]*image
	for i, a := range fb.color {
		if a.empty() {
			continue
		}
		im, status := c.colorImage(a)
		if status != gl.FRAMEBUFFER_COMPLETE {
			return nil, status
		}
		if !size(im.w, im.h) {
			return nil, gl.FRAMEBUFFER_INCOMPLETE_ATTACHMENT
		}
		images[i] = im
	}
	for _, a := range []attachment{fb.depth, fb.stencil} {
		if a.empty() {
			continue
		}
		if a.tex.Valid() {
			return nil, gl.FRAMEBUFFER_UNSUPPORTED
		}
		rb := c.renderbuffers[a.rb]
		if rb == nil || rb.depth == nil {
			return nil, gl.FRAMEBUFFER_INCOMPLETE_ATTACHMENT
		}
		if s.depth != nil && s.depth != rb.depth {
			return nil, gl.FRAMEBUFFER_UNSUPPORTED
		}
		if !size(rb.w, rb.h) {
			return nil, gl.FRAMEBUFFER_INCOMPLETE_ATTACHMENT
		}
		s.depth = rb.depth
	}
	if s.w < 0 {
		return nil, gl.FRAMEBUFFER_INCOMPLETE_ATTACHMENT
	}
	if !fb.hasDrawBufs {
		s.colors = []*image{images[0]}
	} else {
		for _, b := range fb.drawBuffers {
			var im *image
			if b >= gl.COLOR_ATTACHMENT0 && b < gl.COLOR_ATTACHMENT0+maxDrawBuffers {
				im = images[b-gl.COLOR_ATTACHMENT0]
			}
			s.colors = append(s.colors, im)
		}
	}
	return s, gl.FRAMEBUFFER_COMPLETE
}

func (c *Context) colorImage(a attachment) (*image, gl.Enum) {
	if a.rb.Valid() {
		rb := c.renderbuffers[a.rb]
		if rb == nil || rb.color == nil {
			return nil, gl.FRAMEBUFFER_INCOMPLETE_ATTACHMENT
		}
		return rb.color, gl.FRAMEBUFFER_COMPLETE
	}
	t := c.textures[a.tex]
	if t == nil {
		return nil, gl.FRAMEBUFFER_INCOMPLETE_ATTACHMENT
	}
	l := t.level(a.level)
	if l == nil || a.layer < 0 || a.layer >= len(l.layers) {
		return nil, gl.FRAMEBUFFER_INCOMPLETE_ATTACHMENT
	}
	if l.layers[a.layer].compressed() {
		return nil, gl.FRAMEBUFFER_UNSUPPORTED
	}
	return l.layers[a.layer], gl.FRAMEBUFFER_COMPLETE
}

func (c *Context) CheckFramebufferStatus(target gl.Enum) gl.Enum {
	obj := c.st.drawFBO
	if target == gl.READ_FRAMEBUFFER {
		obj = c.st.readFBO
	}
	_, status := c.framebufferSurface(obj)
	return status
}

func (c *Context) GenRenderbuffer() gl.Object {
	obj := c.gen()
	c.renderbuffers[obj] = &renderbuffer{}
	return obj
}

func (c *Context) DeleteRenderbuffer(rb gl.Object) {
	delete(c.renderbuffers, rb)
	if c.st.rbo == rb {
		c.st.rbo = 0
	}
}

func (c *Context) BindRenderbuffer(target gl.Enum, rb gl.Object) {
	if target != gl.RENDERBUFFER {
		c.fail(gl.INVALID_ENUM)
		return
	}
	if _, ok := c.renderbuffers[rb]; rb.Valid() && !ok {
		c.fail(gl.INVALID_OPERATION)
		return
	}
	c.st.rbo = rb
}

func (c *Context) RenderbufferStorage(target, internal gl.Enum, width, height int) {
	c.RenderbufferStorageMultisample(target, 0, internal, width, height)
}

// RenderbufferStorageMultisample allocates single sample storage whatever
// the sample count.
func (c *Context) RenderbufferStorageMultisample(target gl.Enum, samples int, internal gl.Enum, width, height int) {
	rb := c.renderbuffers[c.st.rbo]
	if target != gl.RENDERBUFFER || rb == nil {
		c.fail(gl.INVALID_OPERATION)
		return
	}
	if width < 0 || height < 0 || samples < 0 || samples > limits[gl.MAX_SAMPLES] {
		c.fail(gl.INVALID_VALUE)
		return
	}
	*rb = renderbuffer{internal: internal, w: width, h: height, samples: samples}
	switch internal {
	case gl.DEPTH_COMPONENT16, gl.DEPTH_COMPONENT24:
		rb.depth = newDepthBuffer(width, height, false)
	case gl.DEPTH24_STENCIL8:
		rb.depth = newDepthBuffer(width, height, true)
	default:
		if _, ok := storageOf(internal); !ok {
			c.fail(gl.INVALID_ENUM)
			return
		}
		rb.color = newImage(internal, width, height)
	}
}

func (c *Context) ReadPixels(x, y, width, height int, format, ty gl.Enum, data []byte) {
	if c.dead() {
		return
	}
	s, status := c.framebufferSurface(c.st.readFBO)
	if status != gl.FRAMEBUFFER_COMPLETE {
		c.fail(gl.INVALID_FRAMEBUFFER_OPERATION)
		return
	}
	im := s.colors[0]
	if im == nil {
		c.fail(gl.INVALID_OPERATION)
		return
	}
	if x < 0 || y < 0 || x+width > im.w || y+height > im.h {
		c.fail(gl.INVALID_VALUE)
		return
	}
	px, ok := c.checkPixels(format, ty, width, height, 1, data, c.st.packAlign)
	if !ok || data == nil {
		return
	}
	c.pack(im, x, y, width, height, format, ty, px, data)
}

func (c *Context) BlitFramebuffer(sx0, sy0, sx1, sy1, dx0, dy0, dx1, dy1 int, mask, filter gl.Enum) {
	if c.dead() {
		return
	}
	src, s1 := c.framebufferSurface(c.st.readFBO)
	dst, s2 := c.framebufferSurface(c.st.drawFBO)
	if s1 != gl.FRAMEBUFFER_COMPLETE || s2 != gl.FRAMEBUFFER_COMPLETE {
		c.fail(gl.INVALID_FRAMEBUFFER_OPERATION)
		return
	}
	if mask&(gl.DEPTH_BUFFER_BIT|gl.STENCIL_BUFFER_BIT) != 0 && filter != gl.NEAREST {
		c.fail(gl.INVALID_OPERATION)
		return
	}
	dw, dh := dx1-dx0, dy1-dy0
	if dw == 0 || dh == 0 {
		return
	}
	for y := min(dy0, dy1); y < max(dy0, dy1); y++ {
		for x := min(dx0, dx1); x < max(dx0, dx1); x++ {
			if x < 0 || y < 0 || x >= dst.w || y >= dst.h {
				continue
			}
			// Source position of the destination pixel centre.
			u := float32(sx0) + (float32(x-dx0)+0.5)*float32(sx1-sx0)/float32(dw)
			v := float32(sy0) + (float32(y-dy0)+0.5)*float32(sy1-sy0)/float32(dh)
			sx, sy := int(u), int(v)
			if u < 0 || v < 0 || sx >= src.w || sy >= src.h {
				continue
			}
			if mask&gl.COLOR_BUFFER_BIT != 0 && src.colors[0] != nil {
				col := src.colors[0].at(sx, sy)
				for _, im := range dst.colors {
					if im != nil {
						im.set(x, y, col)
					}
				}
			}
			if src.depth == nil || dst.depth == nil {
				continue
			}
			if mask&gl.DEPTH_BUFFER_BIT != 0 {
				dst.depth.depth[y*dst.w+x] = src.depth.depth[sy*src.w+sx]
			}
			if mask&gl.STENCIL_BUFFER_BIT != 0 && src.depth.hasStencil && dst.depth.hasStencil {
				dst.depth.stencil[y*dst.w+x] = src.depth.stencil[sy*src.w+sx]
			}
		}
	}
}

func (c *Context) GenQuery() gl.Object {
	obj := c.gen()
	c.queries[obj] = &query{}
	return obj
}

func (c *Context) DeleteQuery(q gl.Object) {
	delete(c.queries, q)
	if c.st.query == q {
		c.st.query = 0
	}
}

func (c *Context) BeginQuery(target gl.Enum, q gl.Object) {
	if target != gl.SAMPLES_PASSED {
		c.fail(gl.INVALID_ENUM)
		return
	}
	qq := c.queries[q]
	if qq == nil || c.st.query.Valid() {
		c.fail(gl.INVALID_OPERATION)
		return
	}
	*qq = query{active: true}
	c.st.query = q
}

func (c *Context) EndQuery(target gl.Enum) {
	qq := c.queries[c.st.query]
	if target != gl.SAMPLES_PASSED || qq == nil {
		c.fail(gl.INVALID_OPERATION)
		return
	}
	qq.active = false
	qq.pending = c.cfg.QueryLatency
	c.st.query = 0
}

func (c *Context) GetQueryObjectuiv(q gl.Object, pname gl.Enum) uint32 {
	qq := c.queries[q]
	if qq == nil || qq.active {
		c.fail(gl.INVALID_OPERATION)
		return 0
	}
	switch pname {
	case gl.QUERY_RESULT_AVAILABLE:
		if qq.pending > 0 {
			qq.pending--
			return 0
		}
		return 1
	case gl.QUERY_RESULT:
		qq.pending = 0
		return qq.samples
	}
	c.fail(gl.INVALID_ENUM)
	return 0
}
