package gl

import (
	"fmt"
	"strings"
)

// Loader resolves GL entry points by their C name, such as "glClear". The
// returned value must be a Go function with the signature of the matching
// EntryPoints field, or nil when the entry point does not exist.
type Loader interface {
	ProcAddress(name string) any
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(name string) any

func (f LoaderFunc) ProcAddress(name string) any { return f(name) }

// EntryPoints is the table of GL functions the backend calls. Optional
// entries are nil when the driver does not provide them.
type EntryPoints struct {
	GetError      func() Enum
	GetString     func(name Enum) string
	GetInteger    func(pname Enum) int
	Enable        func(cap Enum)
	Disable       func(cap Enum)
	Viewport      func(x, y, width, height int)
	Scissor       func(x, y, width, height int)
	DepthRange    func(near, far float32)
	ClearColor    func(r, g, b, a float32)
	ClearDepth    func(d float32)
	ClearStencil  func(s int)
	Clear         func(mask Enum)
	ColorMask     func(r, g, b, a bool)
	Flush         func()
	Finish        func()
	PolygonOffset func(factor, units float32)
	CullFace      func(mode Enum)
	FrontFace     func(mode Enum)

	BlendColor            func(r, g, b, a float32)
	BlendEquationSeparate func(modeRGB, modeAlpha Enum)
	BlendFuncSeparate     func(srcRGB, dstRGB, srcAlpha, dstAlpha Enum)
	DepthFunc             func(fn Enum)
	DepthMask             func(flag bool)
	StencilFuncSeparate   func(face, fn Enum, ref int, mask uint32)
	StencilOpSeparate     func(face, sfail, dpfail, dppass Enum)
	StencilMask           func(mask uint32)

	GenTexture              func() Object
	DeleteTexture           func(t Object)
	BindTexture             func(target Enum, t Object)
	ActiveTexture           func(unit Enum)
	TexParameteri           func(target, pname Enum, param int)
	TexParameterf           func(target, pname Enum, param float32)
	PixelStorei             func(pname Enum, param int)
	TexImage2D              func(target Enum, level int, internalFormat Enum, width, height int, format, ty Enum, data []byte)
	TexSubImage2D           func(target Enum, level, x, y, width, height int, format, ty Enum, data []byte)
	CompressedTexImage2D    func(target Enum, level int, internalFormat Enum, width, height int, data []byte)
	CompressedTexSubImage2D func(target Enum, level, x, y, width, height int, format Enum, data []byte)
	GenerateMipmap          func(target Enum)

	GenBuffer     func() Object
	DeleteBuffer  func(b Object)
	BindBuffer    func(target Enum, b Object)
	BufferData    func(target Enum, size int, data []byte, usage Enum)
	BufferSubData func(target Enum, offset int, data []byte)

	CreateShader       func(ty Enum) Object
	ShaderSource       func(s Object, src string)
	CompileShader      func(s Object)
	GetShaderi         func(s Object, pname Enum) int
	GetShaderInfoLog   func(s Object) string
	DeleteShader       func(s Object)
	CreateProgram      func() Object
	AttachShader       func(p, s Object)
	BindAttribLocation func(p Object, index int, name string)
	LinkProgram        func(p Object)
	GetProgrami        func(p Object, pname Enum) int
	GetProgramInfoLog  func(p Object) string
	UseProgram         func(p Object)
	DeleteProgram      func(p Object)
	GetUniformLocation func(p Object, name string) int
	Uniform1i          func(location, v int)
	Uniform4fv         func(location int, v []float32)

	EnableVertexAttribArray  func(index int)
	DisableVertexAttribArray func(index int)
	VertexAttribPointer      func(index, size int, ty Enum, normalized bool, stride, offset int)
	DrawArrays               func(mode Enum, first, count int)
	DrawElements             func(mode Enum, count int, ty Enum, offset int)

	GenFramebuffer          func() Object
	DeleteFramebuffer       func(fb Object)
	BindFramebuffer         func(target Enum, fb Object)
	FramebufferTexture2D    func(target, attachment, texTarget Enum, t Object, level int)
	CheckFramebufferStatus  func(target Enum) Enum
	GenRenderbuffer         func() Object
	DeleteRenderbuffer      func(rb Object)
	BindRenderbuffer        func(target Enum, rb Object)
	RenderbufferStorage     func(target, internalFormat Enum, width, height int)
	FramebufferRenderbuffer func(target, attachment, rbTarget Enum, rb Object)
	ReadPixels              func(x, y, width, height int, format, ty Enum, data []byte)

	// Optional.
	FramebufferTextureLayer        func(target, attachment Enum, t Object, level, layer int)
	TexImage3D                     func(target Enum, level int, internalFormat Enum, width, height, depth int, format, ty Enum, data []byte)
	TexSubImage3D                  func(target Enum, level, x, y, z, width, height, depth int, format, ty Enum, data []byte)
	GetTexImage                    func(target Enum, level int, format, ty Enum, data []byte)
	GetBufferSubData               func(target Enum, offset int, data []byte)
	BlitFramebuffer                func(sx0, sy0, sx1, sy1, dx0, dy0, dx1, dy1 int, mask, filter Enum)
	RenderbufferStorageMultisample func(target Enum, samples int, internalFormat Enum, width, height int)
	DrawBuffers                    func(bufs []Enum)
	GetGraphicsResetStatus         func() Enum

	GenQuery          func() Object
	DeleteQuery       func(q Object)
	BeginQuery        func(target Enum, q Object)
	EndQuery          func(target Enum)
	GetQueryObjectuiv func(q Object, pname Enum) uint32

	// Instancing group. SupportsInstancing requires the first two.
	DrawElementsInstanced             func(mode Enum, count int, ty Enum, offset, instances int)
	VertexAttribDivisor               func(index, divisor int)
	DrawElementsInstancedBaseInstance func(mode Enum, count int, ty Enum, offset, instances, baseInstance int)

	// Missing lists the optional entry points the loader did not provide.
	Missing []string
}

// LoadEntryPoints resolves every entry point through l. A missing required
// entry point is an error naming all of them.
func LoadEntryPoints(l Loader) (*EntryPoints, error) {
	e := new(EntryPoints)
	var missing []string
	need := func(ok bool, name string) {
		if !ok {
			missing = append(missing, name)
		}
	}
	want := func(ok bool, name string) {
		if !ok {
			e.Missing = append(e.Missing, name)
		}
	}

	need(resolve(l, &e.GetError, "glGetError"), "glGetError")
	need(resolve(l, &e.GetString, "glGetString"), "glGetString")
	need(resolve(l, &e.GetInteger, "glGetIntegerv"), "glGetIntegerv")
	need(resolve(l, &e.Enable, "glEnable"), "glEnable")
	need(resolve(l, &e.Disable, "glDisable"), "glDisable")
	need(resolve(l, &e.Viewport, "glViewport"), "glViewport")
	need(resolve(l, &e.Scissor, "glScissor"), "glScissor")
	need(resolve(l, &e.DepthRange, "glDepthRangef", "glDepthRange"), "glDepthRangef")
	need(resolve(l, &e.ClearColor, "glClearColor"), "glClearColor")
	need(resolve(l, &e.ClearDepth, "glClearDepth", "glClearDepthf"), "glClearDepth")
	need(resolve(l, &e.ClearStencil, "glClearStencil"), "glClearStencil")
	need(resolve(l, &e.Clear, "glClear"), "glClear")
	need(resolve(l, &e.ColorMask, "glColorMask"), "glColorMask")
	need(resolve(l, &e.Flush, "glFlush"), "glFlush")
	need(resolve(l, &e.Finish, "glFinish"), "glFinish")
	need(resolve(l, &e.PolygonOffset, "glPolygonOffset"), "glPolygonOffset")
	need(resolve(l, &e.CullFace, "glCullFace"), "glCullFace")
	need(resolve(l, &e.FrontFace, "glFrontFace"), "glFrontFace")

	need(resolve(l, &e.BlendColor, "glBlendColor"), "glBlendColor")
	need(resolve(l, &e.BlendEquationSeparate, "glBlendEquationSeparate"), "glBlendEquationSeparate")
	need(resolve(l, &e.BlendFuncSeparate, "glBlendFuncSeparate"), "glBlendFuncSeparate")
	need(resolve(l, &e.DepthFunc, "glDepthFunc"), "glDepthFunc")
	need(resolve(l, &e.DepthMask, "glDepthMask"), "glDepthMask")
	need(resolve(l, &e.StencilFuncSeparate, "glStencilFuncSeparate"), "glStencilFuncSeparate")
	need(resolve(l, &e.StencilOpSeparate, "glStencilOpSeparate"), "glStencilOpSeparate")
	need(resolve(l, &e.StencilMask, "glStencilMask"), "glStencilMask")

	need(resolve(l, &e.GenTexture, "glGenTextures"), "glGenTextures")
	need(resolve(l, &e.DeleteTexture, "glDeleteTextures"), "glDeleteTextures")
	need(resolve(l, &e.BindTexture, "glBindTexture"), "glBindTexture")
	need(resolve(l, &e.ActiveTexture, "glActiveTexture"), "glActiveTexture")
	need(resolve(l, &e.TexParameteri, "glTexParameteri"), "glTexParameteri")
	need(resolve(l, &e.TexParameterf, "glTexParameterf"), "glTexParameterf")
	need(resolve(l, &e.PixelStorei, "glPixelStorei"), "glPixelStorei")
	need(resolve(l, &e.TexImage2D, "glTexImage2D"), "glTexImage2D")
	need(resolve(l, &e.TexSubImage2D, "glTexSubImage2D"), "glTexSubImage2D")
	need(resolve(l, &e.CompressedTexImage2D, "glCompressedTexImage2D"), "glCompressedTexImage2D")
	need(resolve(l, &e.CompressedTexSubImage2D, "glCompressedTexSubImage2D"), "glCompressedTexSubImage2D")
	need(resolve(l, &e.GenerateMipmap, "glGenerateMipmap", "glGenerateMipmapEXT"), "glGenerateMipmap")

	need(resolve(l, &e.GenBuffer, "glGenBuffers"), "glGenBuffers")
	need(resolve(l, &e.DeleteBuffer, "glDeleteBuffers"), "glDeleteBuffers")
	need(resolve(l, &e.BindBuffer, "glBindBuffer"), "glBindBuffer")
	need(resolve(l, &e.BufferData, "glBufferData"), "glBufferData")
	need(resolve(l, &e.BufferSubData, "glBufferSubData"), "glBufferSubData")

	need(resolve(l, &e.CreateShader, "glCreateShader"), "glCreateShader")
	need(resolve(l, &e.ShaderSource, "glShaderSource"), "glShaderSource")
	need(resolve(l, &e.CompileShader, "glCompileShader"), "glCompileShader")
	need(resolve(l, &e.GetShaderi, "glGetShaderiv"), "glGetShaderiv")
	need(resolve(l, &e.GetShaderInfoLog, "glGetShaderInfoLog"), "glGetShaderInfoLog")
	need(resolve(l, &e.DeleteShader, "glDeleteShader"), "glDeleteShader")
	need(resolve(l, &e.CreateProgram, "glCreateProgram"), "glCreateProgram")
	need(resolve(l, &e.AttachShader, "glAttachShader"), "glAttachShader")
	need(resolve(l, &e.BindAttribLocation, "glBindAttribLocation"), "glBindAttribLocation")
	need(resolve(l, &e.LinkProgram, "glLinkProgram"), "glLinkProgram")
	need(resolve(l, &e.GetProgrami, "glGetProgramiv"), "glGetProgramiv")
	need(resolve(l, &e.GetProgramInfoLog, "glGetProgramInfoLog"), "glGetProgramInfoLog")
	need(resolve(l, &e.UseProgram, "glUseProgram"), "glUseProgram")
	need(resolve(l, &e.DeleteProgram, "glDeleteProgram"), "glDeleteProgram")
	need(resolve(l, &e.GetUniformLocation, "glGetUniformLocation"), "glGetUniformLocation")
	need(resolve(l, &e.Uniform1i, "glUniform1i"), "glUniform1i")
	need(resolve(l, &e.Uniform4fv, "glUniform4fv"), "glUniform4fv")

	need(resolve(l, &e.EnableVertexAttribArray, "glEnableVertexAttribArray"), "glEnableVertexAttribArray")
	need(resolve(l, &e.DisableVertexAttribArray, "glDisableVertexAttribArray"), "glDisableVertexAttribArray")
	need(resolve(l, &e.VertexAttribPointer, "glVertexAttribPointer"), "glVertexAttribPointer")
	need(resolve(l, &e.DrawArrays, "glDrawArrays"), "glDrawArrays")
	need(resolve(l, &e.DrawElements, "glDrawElements"), "glDrawElements")

	// Framebuffer objects fall back to the EXT_framebuffer_object names.
	need(resolve(l, &e.GenFramebuffer, "glGenFramebuffers", "glGenFramebuffersEXT"), "glGenFramebuffers")
	need(resolve(l, &e.DeleteFramebuffer, "glDeleteFramebuffers", "glDeleteFramebuffersEXT"), "glDeleteFramebuffers")
	need(resolve(l, &e.BindFramebuffer, "glBindFramebuffer", "glBindFramebufferEXT"), "glBindFramebuffer")
	need(resolve(l, &e.FramebufferTexture2D, "glFramebufferTexture2D", "glFramebufferTexture2DEXT"), "glFramebufferTexture2D")
	need(resolve(l, &e.CheckFramebufferStatus, "glCheckFramebufferStatus", "glCheckFramebufferStatusEXT"), "glCheckFramebufferStatus")
	need(resolve(l, &e.GenRenderbuffer, "glGenRenderbuffers", "glGenRenderbuffersEXT"), "glGenRenderbuffers")
	need(resolve(l, &e.DeleteRenderbuffer, "glDeleteRenderbuffers", "glDeleteRenderbuffersEXT"), "glDeleteRenderbuffers")
	need(resolve(l, &e.BindRenderbuffer, "glBindRenderbuffer", "glBindRenderbufferEXT"), "glBindRenderbuffer")
	need(resolve(l, &e.RenderbufferStorage, "glRenderbufferStorage", "glRenderbufferStorageEXT"), "glRenderbufferStorage")
	need(resolve(l, &e.FramebufferRenderbuffer, "glFramebufferRenderbuffer", "glFramebufferRenderbufferEXT"), "glFramebufferRenderbuffer")
	need(resolve(l, &e.ReadPixels, "glReadPixels"), "glReadPixels")

	want(resolve(l, &e.FramebufferTextureLayer, "glFramebufferTextureLayer", "glFramebufferTextureLayerEXT"), "glFramebufferTextureLayer")
	want(resolve(l, &e.TexImage3D, "glTexImage3D", "glTexImage3DOES"), "glTexImage3D")
	want(resolve(l, &e.TexSubImage3D, "glTexSubImage3D", "glTexSubImage3DOES"), "glTexSubImage3D")
	want(resolve(l, &e.GetTexImage, "glGetTexImage"), "glGetTexImage")
	want(resolve(l, &e.GetBufferSubData, "glGetBufferSubData"), "glGetBufferSubData")
	want(resolve(l, &e.BlitFramebuffer, "glBlitFramebuffer", "glBlitFramebufferEXT", "glBlitFramebufferNV"), "glBlitFramebuffer")
	want(resolve(l, &e.RenderbufferStorageMultisample, "glRenderbufferStorageMultisample",
		"glRenderbufferStorageMultisampleEXT", "glRenderbufferStorageMultisampleAPPLE",
		"glRenderbufferStorageMultisampleIMG", "glRenderbufferStorageMultisampleNV"), "glRenderbufferStorageMultisample")
	want(resolve(l, &e.DrawBuffers, "glDrawBuffers", "glDrawBuffersARB", "glDrawBuffersEXT"), "glDrawBuffers")
	want(resolve(l, &e.GetGraphicsResetStatus, "glGetGraphicsResetStatus", "glGetGraphicsResetStatusARB",
		"glGetGraphicsResetStatusKHR", "glGetGraphicsResetStatusEXT"), "glGetGraphicsResetStatus")

	want(resolve(l, &e.GenQuery, "glGenQueries", "glGenQueriesARB"), "glGenQueries")
	want(resolve(l, &e.DeleteQuery, "glDeleteQueries", "glDeleteQueriesARB"), "glDeleteQueries")
	want(resolve(l, &e.BeginQuery, "glBeginQuery", "glBeginQueryARB"), "glBeginQuery")
	want(resolve(l, &e.EndQuery, "glEndQuery", "glEndQueryARB"), "glEndQuery")
	want(resolve(l, &e.GetQueryObjectuiv, "glGetQueryObjectuiv", "glGetQueryObjectuivARB", "glGetQueryObjectiv"), "glGetQueryObjectuiv")

	want(resolve(l, &e.DrawElementsInstanced, "glDrawElementsInstanced", "glDrawElementsInstancedARB",
		"glDrawElementsInstancedEXT"), "glDrawElementsInstanced")
	want(resolve(l, &e.VertexAttribDivisor, "glVertexAttribDivisor", "glVertexAttribDivisorARB",
		"glVertexAttribDivisorEXT"), "glVertexAttribDivisor")
	want(resolve(l, &e.DrawElementsInstancedBaseInstance, "glDrawElementsInstancedBaseInstance",
		"glDrawElementsInstancedBaseInstanceEXT"), "glDrawElementsInstancedBaseInstance")

	if len(missing) > 0 {
		return nil, &MissingEntryPointsError{Names: missing}
	}
	return e, nil
}

// MissingEntryPointsError lists required entry points the loader could not
// resolve.
type MissingEntryPointsError struct {
	Names []string
}

func (e *MissingEntryPointsError) Error() string {
	return fmt.Sprintf("gl: missing required entry points: %s", strings.Join(e.Names, ", "))
}

// Instancing reports whether instanced drawing can be used.
func (e *EntryPoints) Instancing() bool {
	return e.DrawElementsInstanced != nil && e.VertexAttribDivisor != nil
}

// Queries reports whether occlusion queries can be used.
func (e *EntryPoints) Queries() bool {
	return e.GenQuery != nil && e.DeleteQuery != nil && e.BeginQuery != nil &&
		e.EndQuery != nil && e.GetQueryObjectuiv != nil
}

// resolve stores the first of names the loader provides with type F.
func resolve[F any](l Loader, dst *F, names ...string) bool {
	for _, name := range names {
		v := l.ProcAddress(name)
		if v == nil {
			continue
		}
		if f, ok := v.(F); ok {
			*dst = f
			return true
		}
	}
	return false
}
