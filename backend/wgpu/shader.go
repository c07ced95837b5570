package wgpu

import (
	"github.com/gogpu/gfx"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// Bind group indices of the resource layout.
const (
	groupVertexUniforms = iota
	groupPixelUniforms
	groupPixelTextures
	groupVertexTextures
	groupCount
)

// shader is a validated WGSL module and the bind group layouts of its
// resources. A nil layout means the stage declares no such resources.
type shader struct {
	dev    *device
	gen    uint64
	desc   gfx.ShaderDesc
	module hal.ShaderModule
	entry  string
	// id tells apart shaders with identical code, whose pipelines must not
	// be shared since each has its own layouts.
	id   uint64
	hash uint64

	uniforms hal.BindGroupLayout
	textures hal.BindGroupLayout
}

func (d *device) CreateShader(desc gfx.ShaderDesc) (gfx.ShaderStrategy, error) {
	if err := d.usable(d.gen); err != nil {
		return nil, err
	}
	stage, entry, vis := "vertex", "vs_main", gputypes.ShaderStageVertex
	if desc.Stage == gfx.ShaderStagePixel {
		stage, entry, vis = "pixel", "fs_main", gputypes.ShaderStageFragment
	}
	if desc.EntryPoint != "" {
		entry = desc.EntryPoint
	}
	src := string(desc.Code)
	if _, err := naga.Compile(src); err != nil {
		return nil, &gfx.BackendError{Backend: d.backend.name, Op: "compile " + stage + " shader", Log: err.Error()}
	}
	dev := d.hw.device
	module, err := dev.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "gfx_" + stage + "_shader",
		Source: hal.ShaderSource{WGSL: src},
	})
	if err != nil {
		return nil, d.halError("create "+stage+" shader module", err)
	}
	s := &shader{
		dev:    d,
		gen:    d.gen,
		desc:   desc,
		module: module,
		entry:  entry,
		hash:   hashBytes(append([]byte(entry+"\x00"), desc.Code...)),
	}
	d.shaderSeq++
	s.id = d.shaderSeq
	if err := s.createLayouts(vis); err != nil {
		s.destroy(dev)
		return nil, err
	}
	d.log.Debug("wgpu: shader compiled", "stage", stage, "entry", entry, "bytes", len(desc.Code))
	return s, nil
}

func (s *shader) createLayouts(vis gputypes.ShaderStage) error {
	dev := s.dev.hw.device
	var uniforms []gputypes.BindGroupLayoutEntry
	for _, cb := range s.desc.ConstantBuffers {
		uniforms = append(uniforms, gputypes.BindGroupLayoutEntry{
			Binding:    uint32(cb.Slot),
			Visibility: vis,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
		})
	}
	var textures []gputypes.BindGroupLayoutEntry
	for _, sm := range s.desc.Samplers {
		textures = append(textures,
			gputypes.BindGroupLayoutEntry{
				Binding:    uint32(2 * sm.Slot),
				Visibility: vis,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: viewDimension(sm.Kind),
				},
			},
			gputypes.BindGroupLayoutEntry{
				Binding:    uint32(2*sm.Slot + 1),
				Visibility: vis,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			})
	}
	var err error
	if len(uniforms) > 0 {
		s.uniforms, err = dev.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
			Label:   "gfx_uniform_layout",
			Entries: uniforms,
		})
		if err != nil {
			return s.dev.halError("create uniform bind group layout", err)
		}
	}
	if len(textures) > 0 {
		s.textures, err = dev.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
			Label:   "gfx_texture_layout",
			Entries: textures,
		})
		if err != nil {
			return s.dev.halError("create texture bind group layout", err)
		}
	}
	return nil
}

func viewDimension(k gfx.TextureKind) gputypes.TextureViewDimension {
	switch k {
	case gfx.TextureKindCube:
		return gputypes.TextureViewDimensionCube
	case gfx.TextureKind3D:
		return gputypes.TextureViewDimension3D
	}
	return gputypes.TextureViewDimension2D
}

// Dispose destroys the module together with every pipeline and pipeline
// layout built from it.
func (s *shader) Dispose() {
	d := s.dev
	if s.module == nil {
		return
	}
	if d.alive(s.gen) {
		pipelines := d.pipelines.evict(s)
		var layouts []hal.PipelineLayout
		for k, l := range d.layouts {
			if k.vs == s || k.ps == s {
				layouts = append(layouts, l)
				delete(d.layouts, k)
			}
		}
		d.ctx.forget(s)
		dead := *s
		d.ctx.retire(func(dev hal.Device) {
			for _, p := range pipelines {
				dev.DestroyRenderPipeline(p)
			}
			for _, l := range layouts {
				dev.DestroyPipelineLayout(l)
			}
			dead.destroy(dev)
		})
	}
	s.module, s.uniforms, s.textures = nil, nil, nil
}

func (s *shader) destroy(dev hal.Device) {
	if s.uniforms != nil {
		dev.DestroyBindGroupLayout(s.uniforms)
	}
	if s.textures != nil {
		dev.DestroyBindGroupLayout(s.textures)
	}
	if s.module != nil {
		dev.DestroyShaderModule(s.module)
	}
	s.module, s.uniforms, s.textures = nil, nil, nil
}

// pipelineLayout returns the layout shared by every pipeline of the pair.
func (d *device) pipelineLayout(vs, ps *shader) (hal.PipelineLayout, error) {
	key := programKey{vs, ps}
	if l, ok := d.layouts[key]; ok {
		return l, nil
	}
	groups := make([]hal.BindGroupLayout, groupCount)
	for i, g := range [groupCount]hal.BindGroupLayout{vs.uniforms, ps.uniforms, ps.textures, vs.textures} {
		groups[i] = g
		if g == nil {
			groups[i] = d.emptyLayout
		}
	}
	l, err := d.hw.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "gfx_pipeline_layout",
		BindGroupLayouts: groups,
	})
	if err != nil {
		return nil, d.halError("create pipeline layout", err)
	}
	d.layouts[key] = l
	return l, nil
}
