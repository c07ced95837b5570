// Package softgl is an OpenGL implementation in pure Go that renders into
// memory. It provides the entry points package gl resolves, so the gl
// backend runs unchanged on machines without a driver.
//
// Shaders are scanned, not executed. Linking binds a fixed pipeline to the
// declarations it finds:
//
//   - the vertex attribute whose name contains "pos" is the position, one
//     containing "col" the colour and one containing "tex" or "uv" the
//     texture coordinate;
//   - the first vertex shader vec4 uniform array with at least four
//     vectors is a column-major matrix applied to the position;
//   - a posFixup uniform is applied the way gl.PosFixupUniform documents;
//   - the fragment colour is the vertex colour times a sample of the
//     first sampler the fragment shader declares.
//
// Importing the package registers the "softgl" backend:
//
//	import _ "github.com/gogpu/gfx/backend/gl/softgl"
package softgl

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gfx"
	"github.com/gogpu/gfx/backend/gl"
)

// Config selects what a context reports and which features it exposes.
type Config struct {
	// Width and Height size the default framebuffer. Devices override them
	// with their back-buffer size.
	Width, Height int
	// Version is reported as GL_VERSION. Empty selects "3.3.0 softgl".
	// An "OpenGL ES" version exposes the ES entry point names, without
	// glGetTexImage and glGetBufferSubData.
	Version string
	// Extensions is reported as GL_EXTENSIONS. Nil selects DefaultExtensions.
	Extensions []string
	// OmitInstancing hides the instanced drawing entry points.
	OmitInstancing bool
	// QueryLatency is the number of availability polls that report an ended
	// occlusion query as pending.
	QueryLatency int
}

// DefaultExtensions is the extension list of a default context.
var DefaultExtensions = []string{
	"GL_ARB_depth_clamp",
	"GL_ARB_robustness",
	"GL_EXT_texture_filter_anisotropic",
	"GL_EXT_texture_compression_s3tc",
}

const defaultVersion = "3.3.0 softgl"

// Context is one GL context with its default framebuffer. It implements
// gl.Surface. Apart from LoseContext it must be used from one goroutine.
type Context struct {
	cfg   Config
	procs map[string]any

	lost     atomic.Bool
	status   atomic.Uint32
	released bool
	frames   int

	err  gl.Enum
	next gl.Object

	back      *image
	backDepth *depthBuffer

	textures      map[gl.Object]*texture
	buffers       map[gl.Object]*buffer
	framebuffers  map[gl.Object]*framebuffer
	renderbuffers map[gl.Object]*renderbuffer
	shaders       map[gl.Object]*shader
	programs      map[gl.Object]*program
	queries       map[gl.Object]*query

	st state
}

// New returns a context configured by cfg.
func New(cfg Config) *Context {
	if cfg.Width <= 0 {
		cfg.Width = gfx.DefaultBackBufferWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = gfx.DefaultBackBufferHeight
	}
	if cfg.Version == "" {
		cfg.Version = defaultVersion
	}
	if cfg.Extensions == nil {
		cfg.Extensions = DefaultExtensions
	}
	c := &Context{cfg: cfg}
	c.reset()
	c.procs = c.entryPoints()
	return c
}

// reset deletes every object and restores the initial state.
func (c *Context) reset() {
	c.err = gl.NO_ERROR
	c.next = 0
	c.back = newImage(gl.RGBA8, c.cfg.Width, c.cfg.Height)
	c.backDepth = newDepthBuffer(c.cfg.Width, c.cfg.Height, true)
	c.textures = make(map[gl.Object]*texture)
	c.buffers = make(map[gl.Object]*buffer)
	c.framebuffers = make(map[gl.Object]*framebuffer)
	c.renderbuffers = make(map[gl.Object]*renderbuffer)
	c.shaders = make(map[gl.Object]*shader)
	c.programs = make(map[gl.Object]*program)
	c.queries = make(map[gl.Object]*query)
	c.st.reset(c.cfg.Width, c.cfg.Height)
}

func (c *Context) es() bool { return strings.HasPrefix(c.cfg.Version, "OpenGL ES") }

// gen returns a fresh object name. Names are unique across object types.
func (c *Context) gen() gl.Object {
	c.next++
	return c.next
}

// fail records code unless an earlier error is still pending.
func (c *Context) fail(code gl.Enum) {
	if c.err == gl.NO_ERROR {
		c.err = code
	}
}

// dead reports whether calls must be ignored.
func (c *Context) dead() bool { return c.released || c.lost.Load() }

// ProcAddress implements gl.Loader.
func (c *Context) ProcAddress(name string) any {
	if f, ok := c.procs[name]; ok {
		return f
	}
	return nil
}

// SwapBuffers implements gl.Surface.
func (c *Context) SwapBuffers() error {
	if c.released {
		return gfx.ErrDisposed
	}
	c.frames++
	return nil
}

// Frames returns the number of completed SwapBuffers calls.
func (c *Context) Frames() int { return c.frames }

// Resize implements gl.Surface.
func (c *Context) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return gfx.ErrInvalidArgument
	}
	c.cfg.Width, c.cfg.Height = width, height
	c.back = newImage(gl.RGBA8, width, height)
	c.backDepth = newDepthBuffer(width, height, true)
	return nil
}

// Release implements gl.Surface.
func (c *Context) Release() {
	c.released = true
}

// LoseContext simulates a GPU reset. Calls are ignored from now on and
// glGetGraphicsResetStatus reports status, UNKNOWN_CONTEXT_RESET when zero.
// It may be called from any goroutine.
func (c *Context) LoseContext(status gl.Enum) {
	if status == gl.NO_ERROR {
		status = gl.UNKNOWN_CONTEXT_RESET
	}
	c.status.Store(uint32(status))
	c.lost.Store(true)
}

// RestoreContext makes a lost context usable again. Every object is gone.
func (c *Context) RestoreContext() {
	c.reset()
	c.status.Store(uint32(gl.NO_ERROR))
	c.lost.Store(false)
}

// BackBuffer returns the default framebuffer as RGBA8 rows, top row first.
func (c *Context) BackBuffer() []byte {
	w, h := c.back.w, c.back.h
	out := make([]byte, 4*w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			encodePixel(gl.RGBA, gl.UNSIGNED_BYTE, c.back.at(x, h-1-y), out[4*(y*w+x):])
		}
	}
	return out
}

func (c *Context) entryPoints() map[string]any {
	p := map[string]any{
		"glGetError":     c.GetError,
		"glGetString":    c.GetString,
		"glGetIntegerv":  c.GetInteger,
		"glEnable":       c.Enable,
		"glDisable":      c.Disable,
		"glViewport":     c.Viewport,
		"glScissor":      c.Scissor,
		"glDepthRangef":  c.DepthRange,
		"glClearColor":   c.ClearColor,
		"glClearStencil": c.ClearStencil,
		"glClear":        c.Clear,
		"glColorMask":    c.ColorMask,
		"glFlush":        c.Flush,
		"glFinish":       c.Finish,

		"glPolygonOffset":         c.PolygonOffset,
		"glCullFace":              c.CullFace,
		"glFrontFace":             c.FrontFace,
		"glBlendColor":            c.BlendColor,
		"glBlendEquationSeparate": c.BlendEquationSeparate,
		"glBlendFuncSeparate":     c.BlendFuncSeparate,
		"glDepthFunc":             c.DepthFunc,
		"glDepthMask":             c.DepthMask,
		"glStencilFuncSeparate":   c.StencilFuncSeparate,
		"glStencilOpSeparate":     c.StencilOpSeparate,
		"glStencilMask":           c.StencilMask,

		"glGenTextures":             c.GenTexture,
		"glDeleteTextures":          c.DeleteTexture,
		"glBindTexture":             c.BindTexture,
		"glActiveTexture":           c.ActiveTexture,
		"glTexParameteri":           c.TexParameteri,
		"glTexParameterf":           c.TexParameterf,
		"glPixelStorei":             c.PixelStorei,
		"glTexImage2D":              c.TexImage2D,
		"glTexSubImage2D":           c.TexSubImage2D,
		"glCompressedTexImage2D":    c.CompressedTexImage2D,
		"glCompressedTexSubImage2D": c.CompressedTexSubImage2D,
		"glGenerateMipmap":          c.GenerateMipmap,
		"glTexImage3D":              c.TexImage3D,
		"glTexSubImage3D":           c.TexSubImage3D,
		"glFramebufferTextureLayer": c.FramebufferTextureLayer,

		"glGenBuffers":    c.GenBuffer,
		"glDeleteBuffers": c.DeleteBuffer,
		"glBindBuffer":    c.BindBuffer,
		"glBufferData":    c.BufferData,
		"glBufferSubData": c.BufferSubData,

		"glCreateShader":       c.CreateShader,
		"glShaderSource":       c.ShaderSource,
		"glCompileShader":      c.CompileShader,
		"glGetShaderiv":        c.GetShaderi,
		"glGetShaderInfoLog":   c.GetShaderInfoLog,
		"glDeleteShader":       c.DeleteShader,
		"glCreateProgram":      c.CreateProgram,
		"glAttachShader":       c.AttachShader,
		"glBindAttribLocation": c.BindAttribLocation,
		"glLinkProgram":        c.LinkProgram,
		"glGetProgramiv":       c.GetProgrami,
		"glGetProgramInfoLog":  c.GetProgramInfoLog,
		"glUseProgram":         c.UseProgram,
		"glDeleteProgram":      c.DeleteProgram,
		"glGetUniformLocation": c.GetUniformLocation,
		"glUniform1i":          c.Uniform1i,
		"glUniform4fv":         c.Uniform4fv,

		"glEnableVertexAttribArray":  c.EnableVertexAttribArray,
		"glDisableVertexAttribArray": c.DisableVertexAttribArray,
		"glVertexAttribPointer":      c.VertexAttribPointer,
		"glDrawArrays":               c.DrawArrays,
		"glDrawElements":             c.DrawElements,

		"glGenFramebuffers":                c.GenFramebuffer,
		"glDeleteFramebuffers":             c.DeleteFramebuffer,
		"glBindFramebuffer":                c.BindFramebuffer,
		"glFramebufferTexture2D":           c.FramebufferTexture2D,
		"glCheckFramebufferStatus":         c.CheckFramebufferStatus,
		"glGenRenderbuffers":               c.GenRenderbuffer,
		"glDeleteRenderbuffers":            c.DeleteRenderbuffer,
		"glBindRenderbuffer":               c.BindRenderbuffer,
		"glRenderbufferStorage":            c.RenderbufferStorage,
		"glRenderbufferStorageMultisample": c.RenderbufferStorageMultisample,
		"glFramebufferRenderbuffer":        c.FramebufferRenderbuffer,
		"glBlitFramebuffer":                c.BlitFramebuffer,
		"glDrawBuffers":                    c.DrawBuffers,
		"glReadPixels":                     c.ReadPixels,
		"glGetGraphicsResetStatus":         c.GetGraphicsResetStatus,

		"glGenQueries":        c.GenQuery,
		"glDeleteQueries":     c.DeleteQuery,
		"glBeginQuery":        c.BeginQuery,
		"glEndQuery":          c.EndQuery,
		"glGetQueryObjectuiv": c.GetQueryObjectuiv,
	}
	if c.es() {
		p["glClearDepthf"] = c.ClearDepth
	} else {
		p["glClearDepth"] = c.ClearDepth
		p["glDepthRange"] = c.DepthRange
		p["glGetTexImage"] = c.GetTexImage
		p["glGetBufferSubData"] = c.GetBufferSubData
	}
	if !c.cfg.OmitInstancing {
		p["glDrawElementsInstanced"] = c.DrawElementsInstanced
		p["glVertexAttribDivisor"] = c.VertexAttribDivisor
		p["glDrawElementsInstancedBaseInstance"] = c.DrawElementsInstancedBaseInstance
	}
	return p
}

// Backend is a gl backend that opens softgl contexts.
type Backend struct {
	*gl.Backend

	mu      sync.Mutex
	current *Context
	opened  int
}

// NewBackend returns a backend named name whose contexts use cfg.
func NewBackend(name string, cfg Config) *Backend {
	b := &Backend{}
	b.Backend = gl.NewBackend(name, func(desc gfx.DeviceDesc) (gl.Surface, error) {
		cc := cfg
		if pp := desc.Presentation; pp.BackBufferWidth > 0 && pp.BackBufferHeight > 0 {
			cc.Width, cc.Height = pp.BackBufferWidth, pp.BackBufferHeight
		}
		ctx := New(cc)
		b.mu.Lock()
		b.current = ctx
		b.opened++
		b.mu.Unlock()
		return ctx, nil
	})
	return b
}

// Current returns the context opened last, or nil.
func (b *Backend) Current() *Context {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// Opened returns the number of contexts opened so far, including the one Adapters opens.
func (b *Backend) Opened() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opened
}

// Register registers a softgl backend under name and returns it.
func Register(name string, cfg Config) *Backend {
	b := NewBackend(name, cfg)
	gfx.RegisterBackend(name, func() gfx.Backend { return b })
	return b
}

func init() {
	Register(gfx.BackendSoftGL, Config{})
}
