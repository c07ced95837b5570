// Package gl implements the gfx device strategies on OpenGL 3.x, OpenGL ES 3
// and compatible contexts.
//
// The backend never links against a GL library. Every entry point is looked
// up by name through a Loader provided by a Surface, so the same code runs on
// a native context or on the pure-Go implementation in package softgl:
//
//	gl.Register("gl", func(desc gfx.DeviceDesc) (gl.Surface, error) {
//	    return openWindowContext(desc.Presentation)
//	})
package gl

import (
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/gogpu/gfx"
)

// Surface is a GL context together with its default framebuffer.
type Surface interface {
	Loader
	// SwapBuffers presents the default framebuffer.
	SwapBuffers() error
	// Resize changes the default framebuffer size.
	Resize(width, height int) error
	// Release destroys the context. Objects created in it become invalid.
	Release()
}

// SurfaceFactory opens a context suitable for desc. It is called once per
// device and again every time a lost device is restored.
type SurfaceFactory func(desc gfx.DeviceDesc) (Surface, error)

// Backend is the gl gfx.Backend.
type Backend struct {
	name    string
	factory SurfaceFactory

	once     sync.Once
	adapters []gfx.AdapterDesc
}

// NewBackend returns a backend named name whose contexts come from factory.
func NewBackend(name string, factory SurfaceFactory) *Backend {
	return &Backend{name: name, factory: factory}
}

// Register registers a gl backend under name with the gfx registry.
func Register(name string, factory SurfaceFactory) {
	gfx.RegisterBackend(name, func() gfx.Backend { return NewBackend(name, factory) })
}

// Name implements gfx.Backend.
func (b *Backend) Name() string { return b.name }

// Adapters opens a 1x1 context once and reports it as the only
// adapter. A context that fails to open reports no adapters.
func (b *Backend) Adapters() []gfx.AdapterDesc {
	b.once.Do(func() {
		a, err := b.describeAdapter()
		if err != nil {
			gfx.Logger().Warn("gl: adapter query failed", "backend", b.name, "err", err)
			return
		}
		b.adapters = []gfx.AdapterDesc{a}
	})
	return b.adapters
}

func (b *Backend) describeAdapter() (gfx.AdapterDesc, error) {
	pp := gfx.DefaultPresentationParameters()
	pp.BackBufferWidth, pp.BackBufferHeight = 1, 1
	s, err := b.factory(gfx.DeviceDesc{Presentation: pp, Logger: gfx.Logger()})
	if err != nil {
		return gfx.AdapterDesc{}, err
	}
	defer s.Release()
	f, err := LoadEntryPoints(s)
	if err != nil {
		return gfx.AdapterDesc{}, b.loadError(err)
	}
	version, err := ParseVersion(f.GetString(VERSION))
	if err != nil {
		return gfx.AdapterDesc{}, err
	}
	vendor, renderer := f.GetString(VENDOR), f.GetString(RENDERER)
	profile := MaxProfile(version, f.GetInteger(MAX_TEXTURE_SIZE))
	return gfx.AdapterDesc{
		Name:        renderer,
		Description: strings.TrimSpace(vendor + " " + version.String()),
		VendorID:    vendorID(vendor),
		Profiles:    gfx.ProfilesUpTo(profile),
		Default:     true,
	}, nil
}

// CreateDevice implements gfx.Backend.
func (b *Backend) CreateDevice(desc gfx.DeviceDesc) (gfx.DeviceStrategy, error) {
	return newDevice(b, desc)
}

func (b *Backend) loadError(err error) error {
	var missing *MissingEntryPointsError
	if errors.As(err, &missing) {
		return &gfx.BackendError{
			Backend: b.name,
			Op:      "load entry points",
			Log:     strings.Join(missing.Names, "\n"),
			Err:     err,
		}
	}
	return err
}

// vendorID maps well-known GL_VENDOR strings to PCI vendor ids.
func vendorID(vendor string) uint32 {
	v := strings.ToLower(vendor)
	switch {
	case strings.Contains(v, "nvidia"):
		return 0x10de
	case strings.Contains(v, "amd"), strings.Contains(v, "ati "):
		return 0x1002
	case strings.Contains(v, "intel"):
		return 0x8086
	case strings.Contains(v, "apple"):
		return 0x106b
	case strings.Contains(v, "arm"):
		return 0x13b5
	case strings.Contains(v, "qualcomm"):
		return 0x5143
	}
	return 0
}

func loggerFor(desc gfx.DeviceDesc) *slog.Logger {
	if desc.Logger != nil {
		return desc.Logger
	}
	return gfx.Logger()
}
