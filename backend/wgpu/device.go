package wgpu

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gogpu/gfx"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// submitTimeout bounds every wait for submitted work.
const submitTimeout = 5 * time.Second

// device implements gfx.DeviceStrategy on one HAL device.
type device struct {
	backend *Backend
	desc    gfx.DeviceDesc
	log     *slog.Logger

	hw   *opened
	caps gfx.GraphicsCapabilities
	pp   gfx.PresentationParameters
	ctx  *wgpuContext
	back *renderTarget

	// emptyLayout serves every bind group without entries.
	emptyLayout    hal.BindGroupLayout
	emptyGroup     hal.BindGroup
	defaultSampler hal.Sampler
	pipelines      *pipelineCache
	layouts        map[programKey]hal.PipelineLayout
	shaderSeq      uint64

	// gen identifies the HAL device. Objects created under an older
	// generation died with it and are never destroyed.
	gen  uint64
	lost atomic.Bool
}

type programKey struct{ vs, ps *shader }

func newDevice(b *Backend, desc gfx.DeviceDesc) (*device, error) {
	d := &device{
		backend: b,
		desc:    desc,
		log:     loggerFor(desc),
		pp:      desc.Presentation,
	}
	if _, err := lookupTextureFormat(d.pp.BackBufferFormat); err != nil {
		return nil, err
	}
	limit := maxProfile(int(gputypes.DefaultLimits().MaxTextureDimension2D))
	if desc.Profile > limit {
		return nil, fmt.Errorf("%w: %s supports profiles up to %s, %s requested",
			gfx.ErrNotSupported, b.name, limit, desc.Profile)
	}
	if err := d.open(); err != nil {
		return nil, err
	}
	d.log.Info("wgpu: device opened",
		"backend", b.name,
		"adapter", d.hw.name,
		"external", d.hw.external)
	return d, nil
}

// open acquires the HAL device and everything derived from it.
func (d *device) open() error {
	hw, err := d.backend.open()
	if err != nil {
		return err
	}
	d.hw = hw
	d.gen++
	d.caps = capabilities()
	d.pipelines = newPipelineCache()
	d.layouts = make(map[programKey]hal.PipelineLayout)

	if err := d.createShared(); err != nil {
		hw.release()
		return err
	}
	back, err := d.newBackBuffer(d.pp)
	if err != nil {
		hw.release()
		return err
	}
	d.back = back
	if d.ctx == nil {
		d.ctx = newContext(d)
	} else {
		d.ctx.reset()
	}
	return nil
}

// createShared creates the objects every pipeline may refer to.
func (d *device) createShared() error {
	dev := d.hw.device
	layout, err := dev.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{Label: "gfx_empty_layout"})
	if err != nil {
		return d.halError("create empty bind group layout", err)
	}
	group, err := dev.CreateBindGroup(&hal.BindGroupDescriptor{Label: "gfx_empty_group", Layout: layout})
	if err != nil {
		dev.DestroyBindGroupLayout(layout)
		return d.halError("create empty bind group", err)
	}
	sampler, err := dev.CreateSampler(samplerDescriptor("gfx_default_sampler", gfx.DefaultSamplerDesc()))
	if err != nil {
		dev.DestroyBindGroup(group)
		dev.DestroyBindGroupLayout(layout)
		return d.halError("create default sampler", err)
	}
	d.emptyLayout, d.emptyGroup, d.defaultSampler = layout, group, sampler
	return nil
}

// capabilities reports what the backend exposes on a device opened with
// the default limits and no optional features.
func capabilities() gfx.GraphicsCapabilities {
	limits := gputypes.DefaultLimits()
	return gfx.GraphicsCapabilities{
		SupportsNonPowerOfTwo:     true,
		SupportsTextureArrays:     true,
		SupportsVertexTextures:    true,
		SupportsInstancing:        true,
		SupportsBaseInstance:      true,
		SupportsOcclusionQuery:    true,
		SupportsFloatTextures:     true,
		SupportsHalfFloatTextures: true,
		SupportsSRgb:              true,
		SupportsSeparateBlend:     true,

		MaxTextureSize:           int(limits.MaxTextureDimension2D),
		MaxTextureSlots:          int(limits.MaxSampledTexturesPerShaderStage) / 2,
		MaxVertexTextureSlots:    4,
		MaxVertexBufferSlots:     int(limits.MaxVertexBuffers),
		MaxConstantBufferSlots:   int(limits.MaxUniformBuffersPerShaderStage),
		MaxRenderTargets:         int(limits.MaxColorAttachments),
		MaxMultiSampleCount:      4,
		MaxVertexAttributes:      int(limits.MaxVertexAttributes),
		MaxConstantBufferVectors: int(limits.MaxUniformBufferBindingSize) / 16,
	}
}

func (d *device) Capabilities() gfx.GraphicsCapabilities { return d.caps }

func (d *device) Context() gfx.ContextStrategy { return d.ctx }

func (d *device) ResetPresentation(pp gfx.PresentationParameters) error {
	if _, err := lookupTextureFormat(pp.BackBufferFormat); err != nil {
		return err
	}
	if err := d.ctx.submit(); err != nil {
		return err
	}
	back, err := d.newBackBuffer(pp)
	if err != nil {
		return err
	}
	d.back.Dispose()
	d.back, d.pp = back, pp
	d.ctx.reset()
	return nil
}

// Present submits the frame. The back buffer stays offscreen.
func (d *device) Present() error {
	return d.ctx.submit()
}

// reportLoss calls the loss handler once per lost device.
func (d *device) reportLoss(err error) {
	if !d.lost.CompareAndSwap(false, true) {
		return
	}
	d.log.Info("wgpu: device lost", "err", err)
	if d.desc.LossHandler != nil {
		d.desc.LossHandler()
	}
}

func (d *device) ReadBackBuffer(rect gfx.Rectangle, dst []byte) error {
	if err := d.ctx.submit(); err != nil {
		return err
	}
	return d.back.read(gfx.TextureRegion{
		X: rect.X, Y: rect.Y, Width: rect.Width, Height: rect.Height, Depth: 1,
	}, dst)
}

func (d *device) Restore() error {
	d.log.Info("wgpu: restoring device")
	d.release(false)
	if err := d.open(); err != nil {
		return err
	}
	d.lost.Store(false)
	return nil
}

func (d *device) Dispose() {
	if d.hw == nil {
		return
	}
	d.release(!d.lost.Load())
	d.log.Info("wgpu: device disposed", "backend", d.backend.name)
}

// release drops the HAL device. Owned objects are destroyed first when
// the device is still usable.
func (d *device) release(destroy bool) {
	if d.hw == nil {
		return
	}
	if destroy {
		d.ctx.discard()
		d.back.Dispose()
		d.pipelines.destroyAll(d.hw.device)
		for _, l := range d.layouts {
			d.hw.device.DestroyPipelineLayout(l)
		}
		d.hw.device.DestroySampler(d.defaultSampler)
		d.hw.device.DestroyBindGroup(d.emptyGroup)
		d.hw.device.DestroyBindGroupLayout(d.emptyLayout)
	}
	d.hw.release()
	d.hw = nil
}

// alive reports whether an object created under gen can still be used.
func (d *device) alive(gen uint64) bool {
	return d.hw != nil && gen == d.gen && !d.lost.Load()
}

// usable returns ErrDeviceLost for objects of a dead generation.
func (d *device) usable(gen uint64) error {
	if !d.alive(gen) {
		return gfx.ErrDeviceLost
	}
	return nil
}

func (d *device) halError(op string, err error) error {
	return &gfx.BackendError{Backend: d.backend.name, Op: op, Err: err}
}

// wait submits cmd and blocks until the GPU has executed it. Failures
// mean the device is gone.
func (d *device) wait(cmd hal.CommandBuffer) error {
	dev := d.hw.device
	defer dev.FreeCommandBuffer(cmd)
	idx, err := d.hw.queue.Submit([]hal.CommandBuffer{cmd})
	if err != nil {
		return d.lose("submit", err)
	}
	deadline := time.Now().Add(submitTimeout)
	for d.hw.queue.PollCompleted() < idx {
		if time.Now().After(deadline) {
			return d.lose("wait", fmt.Errorf("submission %d not completed after %v", idx, submitTimeout))
		}
		if err := dev.WaitIdle(); err != nil {
			return d.lose("wait", err)
		}
	}
	return nil
}

func (d *device) lose(op string, err error) error {
	d.reportLoss(err)
	return fmt.Errorf("%w: %s: %w", gfx.ErrDeviceLost, op, err)
}

func (d *device) CreateBlendState(desc gfx.BlendDesc) (gfx.StateStrategy, error) {
	return &blendStateObject{desc: desc}, nil
}

func (d *device) CreateDepthStencilState(desc gfx.DepthStencilDesc) (gfx.StateStrategy, error) {
	return &depthStencilStateObject{desc: desc}, nil
}

func (d *device) CreateRasterizerState(desc gfx.RasterizerDesc) (gfx.StateStrategy, error) {
	if desc.FillMode == gfx.FillWireFrame {
		d.log.Debug("wgpu: wireframe fill unavailable, drawing solid")
	}
	return &rasterizerStateObject{desc: desc}, nil
}

func (d *device) CreateSamplerState(desc gfx.SamplerDesc) (gfx.StateStrategy, error) {
	if err := d.usable(d.gen); err != nil {
		return nil, err
	}
	s, err := d.hw.device.CreateSampler(samplerDescriptor("gfx_sampler", desc))
	if err != nil {
		return nil, d.halError("create sampler", err)
	}
	return &samplerStateObject{dev: d, gen: d.gen, desc: desc, sampler: s}, nil
}

func (d *device) CreateOcclusionQuery() (gfx.QueryStrategy, error) {
	return &query{dev: d, gen: d.gen}, nil
}

type blendStateObject struct{ desc gfx.BlendDesc }

func (*blendStateObject) Dispose() {}

type depthStencilStateObject struct{ desc gfx.DepthStencilDesc }

func (*depthStencilStateObject) Dispose() {}

type rasterizerStateObject struct{ desc gfx.RasterizerDesc }

func (*rasterizerStateObject) Dispose() {}

// samplerStateObject owns a HAL sampler.
type samplerStateObject struct {
	dev     *device
	gen     uint64
	desc    gfx.SamplerDesc
	sampler hal.Sampler
}

func (s *samplerStateObject) Dispose() {
	if s.sampler == nil {
		return
	}
	if s.dev.alive(s.gen) {
		s.dev.hw.device.DestroySampler(s.sampler)
	}
	s.sampler = nil
}

func samplerDescriptor(label string, s gfx.SamplerDesc) *hal.SamplerDescriptor {
	minLinear, magLinear, mipLinear := s.Filter.Split()
	return &hal.SamplerDescriptor{
		Label:        label,
		AddressModeU: addressMode(s.AddressU),
		AddressModeV: addressMode(s.AddressV),
		AddressModeW: addressMode(s.AddressW),
		MagFilter:    filterMode(magLinear),
		MinFilter:    filterMode(minLinear),
		MipmapFilter: filterMode(mipLinear),
	}
}
