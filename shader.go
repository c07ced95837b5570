package gfx

import "slices"

// Shader is a compiled vertex or pixel shader.
type Shader struct {
	resource
	desc     ShaderDesc
	strategy ShaderStrategy
}

// NewShader compiles desc on dev. Compile failures are returned as a
// *BackendError carrying the compiler log.
func NewShader(dev *GraphicsDevice, desc ShaderDesc) (*Shader, error) {
	if dev == nil {
		return nil, argError("graphicsDevice", "must not be nil")
	}
	if err := dev.checkUsable(); err != nil {
		return nil, err
	}
	if desc.Stage != ShaderStageVertex && desc.Stage != ShaderStagePixel {
		return nil, argError("stage", "unknown shader stage %d", int(desc.Stage))
	}
	if len(desc.Code) == 0 {
		return nil, argError("code", "must not be empty")
	}
	if desc.Stage == ShaderStagePixel && len(desc.Attributes) > 0 {
		return nil, argError("attributes", "pixel shaders have no vertex attributes")
	}
	if n := dev.caps.MaxVertexAttributes; n > 0 && len(desc.Attributes) > n {
		return nil, notSupported("attributes", "%d attributes exceed the device limit of %d", len(desc.Attributes), n)
	}
	textureSlots := dev.caps.MaxTextureSlots
	if desc.Stage == ShaderStageVertex {
		textureSlots = dev.caps.MaxVertexTextureSlots
	}
	for _, s := range desc.Samplers {
		if s.Slot < 0 || s.Slot >= textureSlots {
			return nil, notSupported("samplers", "sampler %q uses slot %d, the %s stage has %d",
				s.Name, s.Slot, desc.Stage, textureSlots)
		}
	}
	for _, cb := range desc.ConstantBuffers {
		if cb.Slot < 0 || cb.Slot >= dev.caps.MaxConstantBufferSlots {
			return nil, notSupported("constantBuffers", "constant buffer %q uses slot %d, the device has %d",
				cb.Name, cb.Slot, dev.caps.MaxConstantBufferSlots)
		}
	}

	desc.Code = slices.Clone(desc.Code)
	desc.Attributes = slices.Clone(desc.Attributes)
	desc.Samplers = slices.Clone(desc.Samplers)
	desc.ConstantBuffers = slices.Clone(desc.ConstantBuffers)
	s := &Shader{desc: desc}
	if err := s.create(dev); err != nil {
		return nil, err
	}
	s.attach(dev, s, "Shader")
	return s, nil
}

func (s *Shader) create(dev *GraphicsDevice) error {
	n, err := dev.strategy.CreateShader(s.desc)
	if err != nil {
		return dev.wrap("compile "+s.desc.Stage.String()+" shader", err)
	}
	s.strategy = n
	dev.log.Debug("gfx: shader compiled", "stage", s.desc.Stage.String(), "bytes", len(s.desc.Code))
	return nil
}

// Stage returns the pipeline stage.
func (s *Shader) Stage() ShaderStage { return s.desc.Stage }

// Attributes returns the vertex inputs of a vertex shader.
func (s *Shader) Attributes() []ShaderAttribute { return slices.Clone(s.desc.Attributes) }

// Samplers returns the sampler bindings.
func (s *Shader) Samplers() []ShaderSampler { return slices.Clone(s.desc.Samplers) }

// ConstantBuffers returns the constant-buffer layout.
func (s *Shader) ConstantBuffers() []ShaderConstantBuffer { return slices.Clone(s.desc.ConstantBuffers) }

func (s *Shader) native() (ShaderStrategy, error) {
	stale, err := s.check()
	if err != nil {
		return nil, err
	}
	if stale {
		if err := s.create(s.device); err != nil {
			return nil, err
		}
		s.recreated()
		// Code is kept, so nothing is lost.
		s.contentLost = false
	}
	return s.strategy, nil
}

func (s *Shader) release() {
	if s.strategy != nil && s.current() {
		s.strategy.Dispose()
	}
	s.strategy = nil
}
