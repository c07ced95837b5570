package softgl

import (
	"fmt"
	"strings"

	"github.com/gogpu/gfx/backend/gl"
)

type uniform struct {
	name  string
	typ   string
	count int
	f     []float32
	i     int
}

type program struct {
	shaders  []gl.Object
	bindings map[string]int
	linked   bool
	log      string
	deleted  bool

	// attribs maps attribute names to locations after linking.
	attribs  map[string]int
	uniforms []*uniform

	// Roles of the fixed pipeline, -1 or nil when absent.
	posLoc, colorLoc, texLoc int
	transform                *uniform
	fixup                    *uniform
	sampler                  *uniform
	samplerTarget            gl.Enum
}

func (c *Context) CreateShader(ty gl.Enum) gl.Object {
	if ty != gl.VERTEX_SHADER && ty != gl.FRAGMENT_SHADER {
		c.fail(gl.INVALID_ENUM)
		return 0
	}
	obj := c.gen()
	c.shaders[obj] = &shader{kind: ty}
	return obj
}

func (c *Context) ShaderSource(s gl.Object, src string) {
	if sh := c.shader(s); sh != nil {
		sh.source = src
	}
}

func (c *Context) shader(s gl.Object) *shader {
	sh := c.shaders[s]
	if sh == nil {
		c.fail(gl.INVALID_VALUE)
	}
	return sh
}

func (c *Context) CompileShader(s gl.Object) {
	sh := c.shader(s)
	if sh == nil {
		return
	}
	decls, err := compileGLSL(sh.source)
	sh.compiled, sh.decls, sh.log = err == nil, decls, ""
	if err != nil {
		sh.log = err.Error() + "\n"
	}
}

func (c *Context) GetShaderi(s gl.Object, pname gl.Enum) int {
	sh := c.shader(s)
	if sh == nil {
		return 0
	}
	if pname != gl.COMPILE_STATUS {
		c.fail(gl.INVALID_ENUM)
		return 0
	}
	if sh.compiled {
		return 1
	}
	return 0
}

func (c *Context) GetShaderInfoLog(s gl.Object) string {
	if sh := c.shader(s); sh != nil {
		return sh.log
	}
	return ""
}

func (c *Context) DeleteShader(s gl.Object) {
	sh := c.shaders[s]
	if sh == nil {
		return
	}
	sh.deleted = true
	if sh.attached == 0 {
		delete(c.shaders, s)
	}
}

func (c *Context) CreateProgram() gl.Object {
	obj := c.gen()
	c.programs[obj] = &program{bindings: make(map[string]int)}
	return obj
}

func (c *Context) program(p gl.Object) *program {
	pr := c.programs[p]
	if pr == nil {
		c.fail(gl.INVALID_VALUE)
	}
	return pr
}

func (c *Context) AttachShader(p, s gl.Object) {
	pr, sh := c.program(p), c.shader(s)
	if pr == nil || sh == nil {
		return
	}
	pr.shaders = append(pr.shaders, s)
	sh.attached++
}

func (c *Context) BindAttribLocation(p gl.Object, index int, name string) {
	pr := c.program(p)
	if pr == nil {
		return
	}
	if index < 0 || index >= maxAttribs {
		c.fail(gl.INVALID_VALUE)
		return
	}
	pr.bindings[name] = index
}

// LinkProgram binds the fixed pipeline to the declarations of the attached
// shaders.
func (c *Context) LinkProgram(p gl.Object) {
	pr := c.program(p)
	if pr == nil {
		return
	}
	pr.linked, pr.log = false, ""
	var vs, fs *shader
	for _, s := range pr.shaders {
		sh := c.shaders[s]
		if sh == nil {
			continue
		}
		if !sh.compiled {
			pr.log = "error: attached shader is not compiled\n"
			return
		}
		if sh.kind == gl.VERTEX_SHADER {
			vs = sh
		} else {
			fs = sh
		}
	}
	if vs == nil || fs == nil {
		pr.log = "error: program needs a vertex and a fragment shader\n"
		return
	}

	pr.attribs = make(map[string]int)
	pr.uniforms = nil
	pr.posLoc, pr.colorLoc, pr.texLoc = -1, -1, -1
	pr.transform, pr.fixup, pr.sampler = nil, nil, nil
	used := make(map[int]bool)
	var unbound []string
	for _, d := range vs.decls {
		if d.qualifier != "attribute" && d.qualifier != "in" {
			continue
		}
		if loc, ok := pr.bindings[d.name]; ok {
			pr.attribs[d.name] = loc
			used[loc] = true
		} else {
			unbound = append(unbound, d.name)
		}
	}
	next := 0
	for _, name := range unbound {
		for used[next] {
			next++
		}
		if next >= maxAttribs {
			pr.log = fmt.Sprintf("error: too many vertex attributes (%d available)\n", maxAttribs)
			return
		}
		pr.attribs[name] = next
		used[next] = true
	}

	seen := make(map[string]*uniform)
	for _, sh := range []*shader{vs, fs} {
		for _, d := range sh.decls {
			if d.qualifier != "uniform" {
				continue
			}
			if u, ok := seen[d.name]; ok {
				if u.typ != d.typ {
					pr.log = fmt.Sprintf("error: uniform %q declared as %s and %s\n", d.name, u.typ, d.typ)
					return
				}
				continue
			}
			u := &uniform{name: d.name, typ: d.typ, count: d.count}
			if d.typ == "vec4" {
				u.f = make([]float32, 4*d.count)
			}
			seen[d.name] = u
			pr.uniforms = append(pr.uniforms, u)
			switch {
			case d.name == gl.PosFixupUniform && sh == vs:
				pr.fixup = u
			case sh == vs && d.typ == "vec4" && d.count >= 4 && pr.transform == nil:
				pr.transform = u
			}
			if target, ok := samplerTarget(d.typ); ok && sh == fs && pr.sampler == nil {
				pr.sampler, pr.samplerTarget = u, target
			}
		}
	}
	for name, loc := range pr.attribs {
		n := strings.ToLower(name)
		switch {
		case strings.Contains(n, "pos"):
			pr.posLoc = loc
		case strings.Contains(n, "col"):
			pr.colorLoc = loc
		case strings.Contains(n, "tex"), strings.Contains(n, "uv"):
			pr.texLoc = loc
		}
	}
	if pr.posLoc < 0 {
		pr.log = "error: vertex shader declares no position attribute\n"
		return
	}
	pr.linked = true
}

func (c *Context) GetProgrami(p gl.Object, pname gl.Enum) int {
	pr := c.program(p)
	if pr == nil {
		return 0
	}
	if pname != gl.LINK_STATUS {
		c.fail(gl.INVALID_ENUM)
		return 0
	}
	if pr.linked {
		return 1
	}
	return 0
}

func (c *Context) GetProgramInfoLog(p gl.Object) string {
	if pr := c.program(p); pr != nil {
		return pr.log
	}
	return ""
}

func (c *Context) UseProgram(p gl.Object) {
	if p.Valid() {
		pr := c.program(p)
		if pr == nil {
			return
		}
		if !pr.linked {
			c.fail(gl.INVALID_OPERATION)
			return
		}
	}
	prev := c.st.program
	c.st.program = p
	if prev != p {
		c.collect(prev)
	}
}

func (c *Context) DeleteProgram(p gl.Object) {
	pr := c.programs[p]
	if pr == nil {
		return
	}
	pr.deleted = true
	c.collect(p)
}

// collect frees a deleted program once it is no longer current.
func (c *Context) collect(p gl.Object) {
	pr := c.programs[p]
	if pr == nil || !pr.deleted || c.st.program == p {
		return
	}
	for _, s := range pr.shaders {
		if sh := c.shaders[s]; sh != nil {
			sh.attached--
			if sh.deleted && sh.attached == 0 {
				delete(c.shaders, s)
			}
		}
	}
	delete(c.programs, p)
}

// GetUniformLocation returns the index of the uniform named name, which may
// carry a "[0]" suffix.
func (c *Context) GetUniformLocation(p gl.Object, name string) int {
	pr := c.program(p)
	if pr == nil {
		return -1
	}
	if !pr.linked {
		c.fail(gl.INVALID_OPERATION)
		return -1
	}
	name = strings.TrimSuffix(name, "[0]")
	for i, u := range pr.uniforms {
		if u.name == name {
			return i
		}
	}
	return -1
}

func (c *Context) currentUniform(location int) *uniform {
	pr := c.programs[c.st.program]
	if pr == nil {
		c.fail(gl.INVALID_OPERATION)
		return nil
	}
	if location < 0 || location >= len(pr.uniforms) {
		if location != -1 {
			c.fail(gl.INVALID_OPERATION)
		}
		return nil
	}
	return pr.uniforms[location]
}

func (c *Context) Uniform1i(location, v int) {
	if u := c.currentUniform(location); u != nil {
		u.i = v
	}
}

func (c *Context) Uniform4fv(location int, v []float32) {
	u := c.currentUniform(location)
	if u == nil {
		return
	}
	if u.f == nil || len(v)%4 != 0 {
		c.fail(gl.INVALID_OPERATION)
		return
	}
	copy(u.f, v)
}
