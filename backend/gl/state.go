package gl

// maxTextureUnits covers 16 pixel and 16 vertex units.
const maxTextureUnits = 32

// vertexUnitBase is the first texture unit used by vertex stage samplers.
const vertexUnitBase = 16

const maxVertexAttribs = 16

// glState shadows the bindings and switches the backend touches so that
// redundant GL calls are skipped. It must be reset whenever the context is
// recreated or touched by foreign code.
type glState struct {
	drawFBO   Object
	readFBO   Object
	renderBuf Object
	arrayBuf  Object
	elemBuf   Object
	prog      Object
	texUnits  struct {
		active Enum
		binds  [maxTextureUnits]struct {
			target Enum
			obj    Object
		}
	}
	attribs [maxVertexAttribs]struct {
		enabled bool
		divisor int
	}
	enabled    map[Enum]bool
	clearColor [4]float32
	clearDepth float32
	clearStenc int
	viewport   [4]int
	scissor    [4]int
	depthRange [2]float32
	colorMask  [4]bool
	depthMask  bool
	depthFunc  Enum
	blend      struct {
		srcRGB, dstRGB Enum
		srcA, dstA     Enum
		eqRGB, eqA     Enum
		color          [4]float32
	}
	cullFace  Enum
	frontFace Enum
}

// reset returns the cache to the initial GL state of a fresh context.
func (s *glState) reset() {
	*s = glState{}
	s.enabled = make(map[Enum]bool)
	s.texUnits.active = TEXTURE0
	s.colorMask = [4]bool{true, true, true, true}
	s.depthMask = true
	s.depthFunc = LESS
	s.clearDepth = 1
	s.depthRange = [2]float32{0, 1}
	s.blend.srcRGB, s.blend.srcA = ONE, ONE
	s.blend.dstRGB, s.blend.dstA = ZERO, ZERO
	s.blend.eqRGB, s.blend.eqA = FUNC_ADD, FUNC_ADD
	s.cullFace = BACK
	s.frontFace = CCW
	s.viewport = [4]int{-1, -1, -1, -1}
	s.scissor = [4]int{-1, -1, -1, -1}
}

func (s *glState) set(f *EntryPoints, cap Enum, enable bool) {
	if s.enabled[cap] == enable {
		return
	}
	s.enabled[cap] = enable
	if enable {
		f.Enable(cap)
	} else {
		f.Disable(cap)
	}
}

func (s *glState) bindFramebuffer(f *EntryPoints, target Enum, fbo Object) {
	switch target {
	case FRAMEBUFFER:
		if fbo == s.drawFBO && fbo == s.readFBO {
			return
		}
		s.drawFBO, s.readFBO = fbo, fbo
	case READ_FRAMEBUFFER:
		if fbo == s.readFBO {
			return
		}
		s.readFBO = fbo
	case DRAW_FRAMEBUFFER:
		if fbo == s.drawFBO {
			return
		}
		s.drawFBO = fbo
	default:
		panic("gl: unknown framebuffer target")
	}
	f.BindFramebuffer(target, fbo)
}

func (s *glState) bindRenderbuffer(f *EntryPoints, rb Object) {
	if rb != s.renderBuf {
		f.BindRenderbuffer(RENDERBUFFER, rb)
		s.renderBuf = rb
	}
}

func (s *glState) bindBuffer(f *EntryPoints, target Enum, buf Object) {
	switch target {
	case ARRAY_BUFFER:
		if buf == s.arrayBuf {
			return
		}
		s.arrayBuf = buf
	case ELEMENT_ARRAY_BUFFER:
		if buf == s.elemBuf {
			return
		}
		s.elemBuf = buf
	default:
		panic("gl: unknown buffer target")
	}
	f.BindBuffer(target, buf)
}

func (s *glState) activeTexture(f *EntryPoints, unit int) {
	u := TEXTURE0 + Enum(unit)
	if u != s.texUnits.active {
		f.ActiveTexture(u)
		s.texUnits.active = u
	}
}

func (s *glState) bindTexture(f *EntryPoints, unit int, target Enum, t Object) {
	s.activeTexture(f, unit)
	b := &s.texUnits.binds[unit]
	if b.target == target && b.obj == t {
		return
	}
	// A unit holds one binding per target; unbind the previous target so
	// that only one is ever live.
	if b.obj.Valid() && b.target != target {
		f.BindTexture(b.target, 0)
	}
	f.BindTexture(target, t)
	b.target, b.obj = target, t
}

// boundTexture returns the texture bound to unit.
func (s *glState) boundTexture(unit int) (Enum, Object) {
	b := s.texUnits.binds[unit]
	return b.target, b.obj
}

func (s *glState) useProgram(f *EntryPoints, p Object) {
	if p != s.prog {
		f.UseProgram(p)
		s.prog = p
	}
}

func (s *glState) setVertexAttribArray(f *EntryPoints, idx int, enabled bool) {
	a := &s.attribs[idx]
	if enabled == a.enabled {
		return
	}
	if enabled {
		f.EnableVertexAttribArray(idx)
	} else {
		f.DisableVertexAttribArray(idx)
	}
	a.enabled = enabled
}

func (s *glState) setVertexAttribDivisor(f *EntryPoints, idx, divisor int) {
	a := &s.attribs[idx]
	if divisor == a.divisor || f.VertexAttribDivisor == nil {
		return
	}
	f.VertexAttribDivisor(idx, divisor)
	a.divisor = divisor
}

func (s *glState) setViewport(f *EntryPoints, x, y, width, height int) {
	v := [4]int{x, y, width, height}
	if v != s.viewport {
		f.Viewport(x, y, width, height)
		s.viewport = v
	}
}

func (s *glState) setScissor(f *EntryPoints, x, y, width, height int) {
	r := [4]int{x, y, width, height}
	if r != s.scissor {
		f.Scissor(x, y, width, height)
		s.scissor = r
	}
}

func (s *glState) setDepthRange(f *EntryPoints, near, far float32) {
	r := [2]float32{near, far}
	if r != s.depthRange {
		f.DepthRange(near, far)
		s.depthRange = r
	}
}

func (s *glState) setClearColor(f *EntryPoints, r, g, b, a float32) {
	c := [4]float32{r, g, b, a}
	if c != s.clearColor {
		f.ClearColor(r, g, b, a)
		s.clearColor = c
	}
}

func (s *glState) setClearDepth(f *EntryPoints, d float32) {
	if d != s.clearDepth {
		f.ClearDepth(d)
		s.clearDepth = d
	}
}

func (s *glState) setClearStencil(f *EntryPoints, v int) {
	if v != s.clearStenc {
		f.ClearStencil(v)
		s.clearStenc = v
	}
}

func (s *glState) setColorMask(f *EntryPoints, r, g, b, a bool) {
	m := [4]bool{r, g, b, a}
	if m != s.colorMask {
		f.ColorMask(r, g, b, a)
		s.colorMask = m
	}
}

func (s *glState) setDepthMask(f *EntryPoints, enable bool) {
	if enable != s.depthMask {
		f.DepthMask(enable)
		s.depthMask = enable
	}
}

func (s *glState) setDepthFunc(f *EntryPoints, fn Enum) {
	if fn != s.depthFunc {
		f.DepthFunc(fn)
		s.depthFunc = fn
	}
}

func (s *glState) setBlendFuncSeparate(f *EntryPoints, srcRGB, dstRGB, srcA, dstA Enum) {
	b := &s.blend
	if srcRGB == b.srcRGB && dstRGB == b.dstRGB && srcA == b.srcA && dstA == b.dstA {
		return
	}
	b.srcRGB, b.dstRGB, b.srcA, b.dstA = srcRGB, dstRGB, srcA, dstA
	f.BlendFuncSeparate(srcRGB, dstRGB, srcA, dstA)
}

func (s *glState) setBlendEquationSeparate(f *EntryPoints, rgb, alpha Enum) {
	if rgb == s.blend.eqRGB && alpha == s.blend.eqA {
		return
	}
	s.blend.eqRGB, s.blend.eqA = rgb, alpha
	f.BlendEquationSeparate(rgb, alpha)
}

func (s *glState) setBlendColor(f *EntryPoints, r, g, b, a float32) {
	c := [4]float32{r, g, b, a}
	if c != s.blend.color {
		f.BlendColor(r, g, b, a)
		s.blend.color = c
	}
}

func (s *glState) setCullFace(f *EntryPoints, face Enum) {
	if face != s.cullFace {
		f.CullFace(face)
		s.cullFace = face
	}
}

func (s *glState) setFrontFace(f *EntryPoints, mode Enum) {
	if mode != s.frontFace {
		f.FrontFace(mode)
		s.frontFace = mode
	}
}

func (s *glState) deleteTexture(f *EntryPoints, t Object) {
	f.DeleteTexture(t)
	for i := range s.texUnits.binds {
		if s.texUnits.binds[i].obj == t {
			s.texUnits.binds[i].obj = 0
		}
	}
}

func (s *glState) deleteBuffer(f *EntryPoints, b Object) {
	f.DeleteBuffer(b)
	if b == s.arrayBuf {
		s.arrayBuf = 0
	}
	if b == s.elemBuf {
		s.elemBuf = 0
	}
}

func (s *glState) deleteFramebuffer(f *EntryPoints, fbo Object) {
	f.DeleteFramebuffer(fbo)
	if fbo == s.drawFBO {
		s.drawFBO = 0
	}
	if fbo == s.readFBO {
		s.readFBO = 0
	}
}

func (s *glState) deleteRenderbuffer(f *EntryPoints, rb Object) {
	f.DeleteRenderbuffer(rb)
	if rb == s.renderBuf {
		s.renderBuf = 0
	}
}

func (s *glState) deleteProgram(f *EntryPoints, p Object) {
	f.DeleteProgram(p)
	if p == s.prog {
		s.prog = 0
	}
}
