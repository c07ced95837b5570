package gfx

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
)

// DeviceState is the lifecycle state of a GraphicsDevice with respect to
// loss of the native device.
type DeviceState int

const (
	// DeviceActive devices accept every call.
	DeviceActive DeviceState = iota
	// DeviceLost devices reject GPU operations with ErrDeviceLost until
	// Recover succeeds.
	DeviceLost
	// DeviceRecreating is reported while Recover rebuilds the native device.
	DeviceRecreating
)

func (s DeviceState) String() string {
	switch s {
	case DeviceActive:
		return "Active"
	case DeviceLost:
		return "Lost"
	case DeviceRecreating:
		return "Recreating"
	}
	return "DeviceState(?)"
}

// stateReleaser is implemented by every state object kind.
type stateReleaser interface {
	releaseDevice(dev *GraphicsDevice)
}

// GraphicsDevice owns a native device, its main context and every resource
// created on it.
type GraphicsDevice struct {
	adapter   *GraphicsAdapter
	backend   Backend
	profile   GraphicsProfile
	halfPixel bool
	pp        PresentationParameters
	caps      GraphicsCapabilities
	strategy  DeviceStrategy
	ctx       *GraphicsContext
	log       *slog.Logger
	opts      deviceOptions

	resources map[tracked]struct{}
	states    map[stateReleaser]struct{}
	relative  map[*RenderTarget2D]struct{}
	// pending holds resources still waiting for their lazy recreation.
	pending map[tracked]struct{}

	generation  uint64
	state       DeviceState
	lossPending atomic.Bool
	disposed    bool

	resetting    event[*GraphicsDevice]
	reset        event[*GraphicsDevice]
	presentation event[PresentationEventArgs]
	lost         event[*GraphicsDevice]
	disposing    event[*GraphicsDevice]
}

// NewGraphicsDevice opens a device on adapter with the given profile and
// back-buffer settings.
//
// It fails with ErrNotSupported when the adapter cannot satisfy the profile
// or when the back buffer exceeds the profile's size limit.
func NewGraphicsDevice(adapter *GraphicsAdapter, profile GraphicsProfile, preferHalfPixelOffset bool,
	pp PresentationParameters, opts ...DeviceOption) (*GraphicsDevice, error) {
	if adapter == nil {
		return nil, argError("adapter", "must not be nil")
	}
	if !profile.Valid() {
		return nil, argError("profile", "unknown graphics profile %d", int(profile))
	}
	if !adapter.IsProfileSupported(profile) {
		return nil, notSupported("profile", "adapter %q does not support the %s profile", adapter.Name(), profile)
	}
	if err := pp.Validate(profile); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger
	if log == nil {
		log = Logger()
	}

	backend, err := LookupBackend(adapter.Backend())
	if err != nil {
		return nil, err
	}

	d := &GraphicsDevice{
		adapter:   adapter,
		backend:   backend,
		profile:   profile,
		halfPixel: preferHalfPixelOffset,
		log:       log,
		opts:      o,
		resources: make(map[tracked]struct{}),
		states:    make(map[stateReleaser]struct{}),
		relative:  make(map[*RenderTarget2D]struct{}),
		pending:   make(map[tracked]struct{}),
	}
	strategy, err := backend.CreateDevice(DeviceDesc{
		Adapter:               adapter.Desc(),
		Profile:               profile,
		PreferHalfPixelOffset: preferHalfPixelOffset,
		Presentation:          pp,
		Logger:                log,
		LossHandler:           d.notifyLost,
	})
	if err != nil {
		return nil, d.wrap("create device", err)
	}
	d.strategy = strategy
	d.caps = strategy.Capabilities().clamp(profile)

	if n := normalizedMultiSample(pp.MultiSampleCount, d.caps.MaxMultiSampleCount); n != pp.MultiSampleCount {
		log.Warn("gfx: multisample count clamped", "requested", pp.MultiSampleCount, "used", n)
		pp.MultiSampleCount = n
		if err := strategy.ResetPresentation(pp); err != nil {
			strategy.Dispose()
			return nil, d.wrap("reset presentation", err)
		}
	}
	d.pp = pp
	d.ctx = newGraphicsContext(d, strategy.Context())

	log.Info("gfx: device created",
		"backend", backend.Name(),
		"adapter", adapter.Name(),
		"profile", profile.String(),
		"width", pp.BackBufferWidth,
		"height", pp.BackBufferHeight)
	for _, fn := range o.created {
		fn(d)
	}
	return d, nil
}

// Adapter returns the adapter the device was created on.
func (d *GraphicsDevice) Adapter() *GraphicsAdapter { return d.adapter }

// Profile returns the profile fixed at creation.
func (d *GraphicsDevice) Profile() GraphicsProfile { return d.profile }

// Capabilities returns what the backend supports, limited by the profile.
func (d *GraphicsDevice) Capabilities() GraphicsCapabilities { return d.caps }

// PresentationParameters returns the parameters currently in effect.
func (d *GraphicsDevice) PresentationParameters() PresentationParameters { return d.pp }

// UseHalfPixelOffset reports whether the device was created preferring the
// Direct3D 9 half-pixel convention.
func (d *GraphicsDevice) UseHalfPixelOffset() bool { return d.halfPixel }

// Context returns the main rendering context.
func (d *GraphicsDevice) Context() *GraphicsContext { return d.ctx }

// Viewport returns the viewport of the main context.
func (d *GraphicsDevice) Viewport() Viewport { return d.ctx.Viewport() }

// SetViewport sets the viewport of the main context.
func (d *GraphicsDevice) SetViewport(vp Viewport) { d.ctx.SetViewport(vp) }

// IsDisposed reports whether Dispose has been called.
func (d *GraphicsDevice) IsDisposed() bool { return d.disposed }

// ResourceCount returns the number of live resources owned by the device.
func (d *GraphicsDevice) ResourceCount() int { return len(d.resources) }

// State returns the device-loss state. A loss reported by the backend is
// observed here, on the calling goroutine.
func (d *GraphicsDevice) State() DeviceState {
	d.pollLoss()
	return d.state
}

// PendingRecreations returns how many resources still hold native objects
// from before the last loss.
func (d *GraphicsDevice) PendingRecreations() int { return len(d.pending) }

// OnDeviceResetting subscribes to the notification raised before Reset
// applies new presentation parameters.
func (d *GraphicsDevice) OnDeviceResetting(fn func(*GraphicsDevice)) (remove func()) {
	return d.resetting.add(fn)
}

// OnDeviceReset subscribes to the notification raised after a Reset and
// after a successful Recover.
func (d *GraphicsDevice) OnDeviceReset(fn func(*GraphicsDevice)) (remove func()) {
	return d.reset.add(fn)
}

// OnPresentationChanged subscribes to back-buffer changes.
func (d *GraphicsDevice) OnPresentationChanged(fn func(PresentationEventArgs)) (remove func()) {
	return d.presentation.add(fn)
}

// OnDeviceLost subscribes to device loss. Handlers run on the goroutine
// that observed the loss, never on the backend's notification path.
func (d *GraphicsDevice) OnDeviceLost(fn func(*GraphicsDevice)) (remove func()) {
	return d.lost.add(fn)
}

// OnDisposing subscribes to the notification raised at the start of Dispose.
func (d *GraphicsDevice) OnDisposing(fn func(*GraphicsDevice)) (remove func()) {
	return d.disposing.add(fn)
}

func (d *GraphicsDevice) checkUsable() error {
	if d.disposed {
		return invalidDisposed("GraphicsDevice")
	}
	d.pollLoss()
	if d.state != DeviceActive {
		return ErrDeviceLost
	}
	return nil
}

// Reset applies new presentation parameters without recreating resources.
// Render targets created relative to the back buffer are resized.
func (d *GraphicsDevice) Reset(pp PresentationParameters) error {
	if err := d.checkUsable(); err != nil {
		return err
	}
	if err := pp.Validate(d.profile); err != nil {
		return err
	}
	pp.MultiSampleCount = normalizedMultiSample(pp.MultiSampleCount, d.caps.MaxMultiSampleCount)
	for rt := range d.relative {
		if err := rt.checkResize(pp); err != nil {
			return err
		}
	}

	d.resetting.emit(d)
	if err := d.ctx.Flush(); err != nil {
		return err
	}
	if err := d.strategy.ResetPresentation(pp); err != nil {
		return d.wrap("reset presentation", err)
	}
	prev := d.pp
	d.pp = pp
	d.ctx.backBufferChanged()
	for rt := range d.relative {
		if err := rt.resizeToBackBuffer(); err != nil {
			return err
		}
	}
	d.log.Info("gfx: device reset", "width", pp.BackBufferWidth, "height", pp.BackBufferHeight)
	d.presentation.emit(PresentationEventArgs{Device: d, Parameters: pp, Previous: prev})
	d.reset.emit(d)
	return nil
}

// ResetProfile is Reset for callers that renegotiated the profile as well.
// A different profile cannot be applied in place and returns
// ErrInvalidOperation; dispose the device and create a new one instead.
func (d *GraphicsDevice) ResetProfile(profile GraphicsProfile, pp PresentationParameters) error {
	if NeedsRecreate(d.profile, profile) {
		return invalidOp("changing the graphics profile from %s to %s requires recreating the device", d.profile, profile)
	}
	return d.Reset(pp)
}

// Present shows the back buffer and starts a new frame of metrics.
func (d *GraphicsDevice) Present() error {
	if err := d.checkUsable(); err != nil {
		return err
	}
	if len(d.ctx.targets) > 0 {
		return invalidOp("Present cannot be called while a render target is bound")
	}
	if err := d.strategy.Present(); err != nil {
		return d.wrap("present", err)
	}
	d.ctx.metrics = Metrics{}
	// Backends usually detect loss while presenting.
	d.pollLoss()
	return nil
}

// GetBackBufferData copies rect of the back buffer into data. A nil rect
// reads the whole back buffer. Rows are returned top row first.
func GetBackBufferData[T any](d *GraphicsDevice, rect *Rectangle, data []T) error {
	if err := d.checkUsable(); err != nil {
		return err
	}
	bounds := d.pp.Bounds()
	r := bounds
	if rect != nil {
		r = *rect
	}
	if r.Empty() || !bounds.Contains(r) {
		return argError("rect", "must be inside the back buffer bounds %dx%d", bounds.Width, bounds.Height)
	}
	format := d.pp.BackBufferFormat
	elem := sizeOf[T]()
	if elem == 0 || elem > format.Size() || format.Size()%elem != 0 {
		return argError("T", "element size %d is invalid for the %s back buffer format", elem, format)
	}
	want := r.Width * r.Height * format.Size()
	if len(data)*elem != want {
		return argError("data", "holds %d bytes, the rectangle needs %d", len(data)*elem, want)
	}
	if err := d.ctx.Flush(); err != nil {
		return err
	}
	if err := d.strategy.ReadBackBuffer(r, asBytes(data)); err != nil {
		return d.wrap("read back buffer", err)
	}
	return nil
}

// notifyLost is the backend's LossHandler. It only records the request, so
// no native call can re-enter the backend from its own notification.
func (d *GraphicsDevice) notifyLost() {
	d.lossPending.Store(true)
}

// pollLoss moves an Active device to Lost when the backend reported a loss.
func (d *GraphicsDevice) pollLoss() {
	if d.disposed || d.state != DeviceActive || !d.lossPending.Swap(false) {
		return
	}
	d.state = DeviceLost
	for r := range d.resources {
		d.pending[r] = struct{}{}
	}
	d.log.Info("gfx: device lost", "resources", len(d.pending))
	d.lost.emit(d)
}

// Recover rebuilds the native device after a loss. Resources keep their Go
// identity and recreate their native objects on next use, with undefined
// contents. Recover on an active device is a no-op.
func (d *GraphicsDevice) Recover() error {
	if d.disposed {
		return invalidDisposed("GraphicsDevice")
	}
	d.pollLoss()
	switch d.state {
	case DeviceActive:
		return nil
	case DeviceRecreating:
		return invalidOp("Recover is already in progress")
	}
	d.state = DeviceRecreating
	if err := d.strategy.Restore(); err != nil {
		d.state = DeviceLost
		return d.wrap("restore device", err)
	}
	// A loss reported while restoring belongs to the dead native device.
	d.lossPending.Store(false)
	d.generation++
	d.caps = d.strategy.Capabilities().clamp(d.profile)
	d.ctx.invalidate()
	d.state = DeviceActive
	d.log.Info("gfx: device recovered", "generation", d.generation, "pending", len(d.pending))
	d.reset.emit(d)
	return nil
}

// Dispose disposes every resource created on the device, then the device.
// Calling it again is a no-op.
func (d *GraphicsDevice) Dispose() {
	if d.disposed {
		return
	}
	d.disposing.emit(d)
	if d.state == DeviceActive {
		_ = d.ctx.Flush()
	}
	for r := range d.resources {
		r.release()
		r.base().disposed = true
	}
	for s := range d.states {
		s.releaseDevice(d)
	}
	d.ctx.dispose()
	d.strategy.Dispose()
	clear(d.resources)
	clear(d.states)
	clear(d.relative)
	clear(d.pending)
	d.disposed = true
	d.log.Info("gfx: device disposed", "backend", d.backend.Name())
}

func (d *GraphicsDevice) track(r tracked) {
	d.resources[r] = struct{}{}
}

func (d *GraphicsDevice) untrack(r tracked) {
	delete(d.resources, r)
	delete(d.pending, r)
	if rt, ok := r.(*RenderTarget2D); ok {
		delete(d.relative, rt)
	}
}

func (d *GraphicsDevice) recreatedOne(r tracked) {
	delete(d.pending, r)
}

func (d *GraphicsDevice) trackState(s stateReleaser) {
	d.states[s] = struct{}{}
}

// wrap turns a native failure into a BackendError. Errors that already
// carry a gfx class pass through.
func (d *GraphicsDevice) wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var be *BackendError
	if errors.As(err, &be) ||
		errors.Is(err, ErrNotSupported) ||
		errors.Is(err, ErrInvalidArgument) ||
		errors.Is(err, ErrInvalidOperation) ||
		errors.Is(err, ErrDeviceLost) {
		return err
	}
	name := ""
	if d.backend != nil {
		name = d.backend.Name()
	}
	return &BackendError{Backend: name, Op: op, Err: err}
}

func (d *GraphicsDevice) String() string {
	return fmt.Sprintf("GraphicsDevice(%s, %s, %dx%d)", d.adapter.Backend(), d.profile,
		d.pp.BackBufferWidth, d.pp.BackBufferHeight)
}
