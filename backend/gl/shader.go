package gl

import "github.com/gogpu/gfx"

// PosFixupUniform is the optional vec4 uniform vertex shaders declare to
// follow gfx conventions on GL. The backend sets it to
// (1, yflip, halfPixelX, halfPixelY); shaders apply it as
//
//	gl_Position.y *= posFixup.y;
//	gl_Position.xy += posFixup.zw * gl_Position.w;
const PosFixupUniform = "posFixup"

type shader struct {
	dev  *device
	gen  uint64
	obj  Object
	desc gfx.ShaderDesc
}

func (d *device) CreateShader(desc gfx.ShaderDesc) (gfx.ShaderStrategy, error) {
	ty, stage := VERTEX_SHADER, "vertex"
	if desc.Stage == gfx.ShaderStagePixel {
		ty, stage = FRAGMENT_SHADER, "fragment"
	}
	f := d.f
	obj := f.CreateShader(ty)
	if !obj.Valid() {
		return nil, d.glError("create " + stage + " shader")
	}
	f.ShaderSource(obj, string(desc.Code))
	f.CompileShader(obj)
	if f.GetShaderi(obj, COMPILE_STATUS) == 0 {
		log := f.GetShaderInfoLog(obj)
		f.DeleteShader(obj)
		return nil, &gfx.BackendError{Backend: d.backend.name, Op: "compile " + stage + " shader", Log: log}
	}
	d.log.Debug("gl: shader compiled", "stage", stage, "bytes", len(desc.Code))
	return &shader{dev: d, gen: d.gen, obj: obj, desc: desc}, nil
}

func (s *shader) Dispose() {
	d := s.dev
	if !s.obj.Valid() {
		return
	}
	if d.alive(s.gen) {
		for k, p := range d.programs {
			if k.vs == s || k.ps == s {
				d.state.deleteProgram(d.f, p.obj)
				delete(d.programs, k)
			}
		}
		d.f.DeleteShader(s.obj)
	}
	s.obj = 0
}

type programKey struct {
	vs, ps *shader
}

// uniformArray is a constant buffer slot bound to a vec4 uniform array.
type uniformArray struct {
	slot     int
	location int
	vectors  int
	// uploaded identifies the data last sent to the location.
	uploaded *constantBuffer
	version  uint64
}

type program struct {
	obj Object
	// attribs is indexed by attribute location.
	attribs  []gfx.ShaderAttribute
	uniforms [2][]uniformArray
	posFixup int
	fixup    [4]float32
}

// program returns the linked program for vs and ps, linking it on first use.
func (d *device) program(vs, ps *shader) (*program, error) {
	key := programKey{vs, ps}
	if p, ok := d.programs[key]; ok {
		return p, nil
	}
	f := d.f
	p := &program{obj: f.CreateProgram(), attribs: vs.desc.Attributes}
	f.AttachShader(p.obj, vs.obj)
	f.AttachShader(p.obj, ps.obj)
	for i, a := range p.attribs {
		f.BindAttribLocation(p.obj, i, a.Name)
	}
	f.LinkProgram(p.obj)
	if f.GetProgrami(p.obj, LINK_STATUS) == 0 {
		log := f.GetProgramInfoLog(p.obj)
		f.DeleteProgram(p.obj)
		return nil, &gfx.BackendError{Backend: d.backend.name, Op: "link program", Log: log}
	}

	d.state.useProgram(f, p.obj)
	for stage, s := range [2]*shader{vs, ps} {
		for _, cb := range s.desc.ConstantBuffers {
			loc := f.GetUniformLocation(p.obj, cb.Name)
			if loc < 0 {
				continue
			}
			p.uniforms[stage] = append(p.uniforms[stage], uniformArray{
				slot: cb.Slot, location: loc, vectors: (cb.Size + 15) / 16,
			})
		}
		base := 0
		if s.desc.Stage == gfx.ShaderStageVertex {
			base = vertexUnitBase
		}
		for _, smp := range s.desc.Samplers {
			if loc := f.GetUniformLocation(p.obj, smp.Name); loc >= 0 {
				f.Uniform1i(loc, base+smp.Slot)
			}
		}
	}
	p.posFixup = f.GetUniformLocation(p.obj, PosFixupUniform)
	if err := d.glError("link program"); err != nil {
		d.state.deleteProgram(f, p.obj)
		return nil, err
	}
	d.programs[key] = p
	d.log.Debug("gl: program linked", "programs", len(d.programs), "attributes", len(p.attribs))
	return p, nil
}

// upload sends constant buffers that changed since the last draw with p.
// The program must be current.
func (p *program) upload(f *EntryPoints, cbufs *[2][16]*constantBuffer) {
	for stage := range p.uniforms {
		for i := range p.uniforms[stage] {
			u := &p.uniforms[stage][i]
			cb := cbufs[stage][u.slot]
			if cb == nil || (cb == u.uploaded && cb.version == u.version) {
				continue
			}
			n := min(u.vectors*4, len(cb.vectors))
			f.Uniform4fv(u.location, cb.vectors[:n])
			u.uploaded, u.version = cb, cb.version
		}
	}
}

// setFixup updates posFixup when it differs from the last value sent.
func (p *program) setFixup(f *EntryPoints, v [4]float32) {
	if p.posFixup < 0 || v == p.fixup {
		return
	}
	f.Uniform4fv(p.posFixup, v[:])
	p.fixup = v
}
