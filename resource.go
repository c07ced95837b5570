package gfx

// GraphicsResource is implemented by every object a device creates.
type GraphicsResource interface {
	// Device returns the owning device. The reference does not keep the
	// device alive past Dispose.
	Device() *GraphicsDevice
	Name() string
	SetName(name string)
	Tag() any
	SetTag(tag any)
	IsDisposed() bool
	// Dispose releases the native object. Calling it again is a no-op.
	Dispose()
}

// tracked is what the device keeps for each live resource.
type tracked interface {
	base() *resource
	// release destroys the native object, if it is still current.
	release()
}

// resource is embedded by every GraphicsResource implementation.
type resource struct {
	device   *GraphicsDevice
	self     tracked
	kind     string
	name     string
	tag      any
	disposed bool
	// gen is the device generation the native object was created in.
	gen uint64
	// contentLost is set when the native object was recreated after a
	// device loss and holds undefined data.
	contentLost bool
}

func (r *resource) attach(dev *GraphicsDevice, self tracked, kind string) {
	r.device = dev
	r.self = self
	r.kind = kind
	r.gen = dev.generation
	dev.track(self)
}

func (r *resource) base() *resource { return r }

func (r *resource) Device() *GraphicsDevice { return r.device }
func (r *resource) Name() string            { return r.name }
func (r *resource) SetName(name string)     { r.name = name }
func (r *resource) Tag() any                { return r.tag }
func (r *resource) SetTag(tag any)          { r.tag = tag }

// IsDisposed reports whether the resource or its device has been disposed.
func (r *resource) IsDisposed() bool {
	return r.disposed || (r.device != nil && r.device.disposed)
}

// IsContentLost reports whether the native object was recreated after a
// device loss. Its contents are undefined until the caller uploads them
// again; the flag clears on the next successful SetData.
func (r *resource) IsContentLost() bool { return r.contentLost }

func (r *resource) Dispose() {
	if r.disposed {
		return
	}
	r.disposed = true
	dev := r.device
	if dev == nil || dev.disposed {
		return
	}
	r.self.release()
	dev.untrack(r.self)
}

// check asserts that the resource may issue native calls. It also reports
// whether the native object has to be recreated first.
func (r *resource) check() (stale bool, err error) {
	if r.disposed {
		return false, invalidDisposed(r.kind)
	}
	dev := r.device
	if dev.disposed {
		return false, invalidDisposed("GraphicsDevice")
	}
	dev.pollLoss()
	if dev.state != DeviceActive {
		return false, ErrDeviceLost
	}
	return r.gen != dev.generation, nil
}

// current reports whether the native object belongs to the live native
// device and may be disposed.
func (r *resource) current() bool {
	dev := r.device
	return dev != nil && !dev.disposed && dev.state == DeviceActive && r.gen == dev.generation
}

// recreated records a successful recreation after a loss.
func (r *resource) recreated() {
	r.gen = r.device.generation
	r.contentLost = true
	r.device.recreatedOne(r.self)
}

func invalidDisposed(kind string) error {
	return &disposedError{kind: kind}
}

type disposedError struct{ kind string }

func (e *disposedError) Error() string { return "gfx: " + e.kind + " has been disposed" }
func (e *disposedError) Unwrap() error { return ErrDisposed }
