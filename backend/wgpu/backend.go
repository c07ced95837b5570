package wgpu

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/gfx"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// NoopBackendName is the registry name of the noop HAL backend.
const NoopBackendName = "wgpu-noop"

func init() {
	gfx.RegisterBackend(gfx.BackendWGPU, func() gfx.Backend {
		return NewBackend(gfx.BackendWGPU, nativeAPI{})
	})
	gfx.RegisterBackend(NoopBackendName, func() gfx.Backend {
		return NewBackend(NoopBackendName, noop.API{})
	})
}

// API creates HAL instances. Every hal backend, noop.API included,
// satisfies it.
type API interface {
	CreateInstance(desc *hal.InstanceDescriptor) (hal.Instance, error)
}

// nativeVariants is the order in which linked HAL backends are tried.
var nativeVariants = []gputypes.Backend{
	gputypes.BackendVulkan,
	gputypes.BackendMetal,
	gputypes.BackendDX12,
	gputypes.BackendGL,
}

// nativeAPI opens the first native HAL backend that initializes.
type nativeAPI struct{}

func (nativeAPI) CreateInstance(desc *hal.InstanceDescriptor) (hal.Instance, error) {
	err := fmt.Errorf("%w: no native HAL backend linked", gfx.ErrBackendNotAvailable)
	for _, v := range nativeVariants {
		b, ok := hal.GetBackend(v)
		if !ok {
			continue
		}
		inst, ierr := b.CreateInstance(desc)
		if ierr == nil {
			return inst, nil
		}
		err = fmt.Errorf("create %v instance: %w", v, ierr)
	}
	return nil, err
}

// opened is a HAL device and the objects that own it.
type opened struct {
	instance hal.Instance // nil for external devices
	device   hal.Device
	queue    hal.Queue
	external bool

	name     string
	kind     string
	vendorID uint32
	deviceID uint32
}

func (o *opened) release() {
	if o.external {
		return
	}
	if o.device != nil {
		o.device.Destroy()
	}
	if o.instance != nil {
		o.instance.Destroy()
	}
}

// Backend is the wgpu gfx.Backend.
type Backend struct {
	name     string
	api      API
	provider gpucontext.DeviceProvider

	once     sync.Once
	adapters []gfx.AdapterDesc
}

// NewBackend returns a backend named name whose devices come from api.
func NewBackend(name string, api API) *Backend {
	return &Backend{name: name, api: api}
}

// NewExternalBackend returns a backend that renders with the device of p
// instead of opening its own. p must expose HalDevice and HalQueue.
func NewExternalBackend(name string, p gpucontext.DeviceProvider) (*Backend, error) {
	if _, err := halObjects(p); err != nil {
		return nil, err
	}
	return &Backend{name: name, provider: p}, nil
}

// Register registers a backend named name on api with the gfx registry.
func Register(name string, api API) {
	gfx.RegisterBackend(name, func() gfx.Backend { return NewBackend(name, api) })
}

// Name implements gfx.Backend.
func (b *Backend) Name() string { return b.name }

// Adapters opens the backend once and reports the adapter it would pick.
// A backend that fails to open reports no adapters.
func (b *Backend) Adapters() []gfx.AdapterDesc {
	b.once.Do(func() {
		o, err := b.open()
		if err != nil {
			gfx.Logger().Warn("wgpu: adapter query failed", "backend", b.name, "err", err)
			return
		}
		defer o.release()
		b.adapters = []gfx.AdapterDesc{b.describe(o)}
	})
	return b.adapters
}

func (b *Backend) describe(o *opened) gfx.AdapterDesc {
	name := o.name
	if name == "" {
		name = b.name
	}
	desc := name
	if o.kind != "" {
		desc = fmt.Sprintf("%s (%s)", name, o.kind)
	}
	return gfx.AdapterDesc{
		Name:        name,
		Description: desc,
		VendorID:    o.vendorID,
		DeviceID:    o.deviceID,
		Profiles:    gfx.ProfilesUpTo(maxProfile(int(gputypes.DefaultLimits().MaxTextureDimension2D))),
		Default:     true,
	}
}

// CreateDevice implements gfx.Backend.
func (b *Backend) CreateDevice(desc gfx.DeviceDesc) (gfx.DeviceStrategy, error) {
	d, err := newDevice(b, desc)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// open creates an instance and opens the preferred adapter on it, or
// fetches the HAL objects of the external provider.
func (b *Backend) open() (*opened, error) {
	if b.provider != nil {
		return halObjects(b.provider)
	}
	instance, err := b.api.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, &gfx.BackendError{Backend: b.name, Op: "create instance", Err: err}
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("%w: %s found no adapters", gfx.ErrBackendNotAvailable, b.name)
	}
	selected := pickAdapter(adapters)
	dev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, &gfx.BackendError{Backend: b.name, Op: "open device", Err: err}
	}
	return &opened{
		instance: instance,
		device:   dev.Device,
		queue:    dev.Queue,
		name:     selected.Info.Name,
		kind:     fmt.Sprint(selected.Info.DeviceType),
		vendorID: uint32(selected.Info.VendorID),
		deviceID: uint32(selected.Info.DeviceID),
	}, nil
}

// pickAdapter prefers discrete over integrated GPUs and falls back to the
// first adapter.
func pickAdapter(adapters []hal.ExposedAdapter) *hal.ExposedAdapter {
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU {
			return &adapters[i]
		}
	}
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			return &adapters[i]
		}
	}
	return &adapters[0]
}

var errNoHAL = errors.New("wgpu: provider does not expose HAL types")

// halObjects extracts the HAL device and queue of an external provider.
func halObjects(p gpucontext.DeviceProvider) (*opened, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := p.(halProvider)
	if !ok {
		return nil, errNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not a hal.Device", errNoHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not a hal.Queue", errNoHAL)
	}
	return &opened{device: device, queue: queue, external: true}, nil
}

// maxProfile maps the 2D texture limit to the highest profile it allows.
// WebGPU devices meet every other FL11_0 requirement; FL11_1 needs storage
// resources at every stage, which the backend does not expose.
func maxProfile(maxTexture2D int) gfx.GraphicsProfile {
	for _, p := range []gfx.GraphicsProfile{gfx.FL11_0, gfx.FL10_1, gfx.FL10_0, gfx.HiDef} {
		if maxTexture2D >= p.MaxTextureSize() {
			return p
		}
	}
	return gfx.Reach
}

func loggerFor(desc gfx.DeviceDesc) *slog.Logger {
	if desc.Logger != nil {
		return desc.Logger
	}
	return gfx.Logger()
}
