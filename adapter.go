package gfx

import "slices"

// GraphicsAdapter identifies one GPU exposed by a registered backend.
// Adapters are immutable snapshots taken at discovery.
type GraphicsAdapter struct {
	backend string
	desc    AdapterDesc
}

// Adapters enumerates the adapters of every registered backend, in backend
// priority order.
func Adapters() []*GraphicsAdapter {
	var out []*GraphicsAdapter
	for _, name := range Backends() {
		b, err := LookupBackend(name)
		if err != nil {
			continue
		}
		for _, d := range b.Adapters() {
			out = append(out, newAdapter(name, d))
		}
	}
	return out
}

// AdaptersFor enumerates the adapters of one backend.
func AdaptersFor(backend string) ([]*GraphicsAdapter, error) {
	b, err := LookupBackend(backend)
	if err != nil {
		return nil, err
	}
	descs := b.Adapters()
	out := make([]*GraphicsAdapter, 0, len(descs))
	for _, d := range descs {
		out = append(out, newAdapter(backend, d))
	}
	return out, nil
}

// DefaultAdapter returns the adapter flagged as default by the
// highest-priority backend, falling back to the first adapter found.
// It returns nil when no backend reports an adapter.
func DefaultAdapter() *GraphicsAdapter {
	all := Adapters()
	for _, a := range all {
		if a.desc.Default {
			return a
		}
	}
	if len(all) > 0 {
		return all[0]
	}
	return nil
}

func newAdapter(backend string, d AdapterDesc) *GraphicsAdapter {
	d.Profiles = slices.Clone(d.Profiles)
	d.DisplayModes = slices.Clone(d.DisplayModes)
	return &GraphicsAdapter{backend: backend, desc: d}
}

// Backend returns the name of the backend driving the adapter.
func (a *GraphicsAdapter) Backend() string { return a.backend }

// Name returns the adapter name reported by the driver.
func (a *GraphicsAdapter) Name() string { return a.desc.Name }

// Description returns a human-readable description of the adapter.
func (a *GraphicsAdapter) Description() string { return a.desc.Description }

// VendorID returns the PCI vendor id, or 0 when unknown.
func (a *GraphicsAdapter) VendorID() uint32 { return a.desc.VendorID }

// DeviceID returns the PCI device id, or 0 when unknown.
func (a *GraphicsAdapter) DeviceID() uint32 { return a.desc.DeviceID }

// IsDefault reports whether the backend would pick the adapter on its own.
func (a *GraphicsAdapter) IsDefault() bool { return a.desc.Default }

// Desc returns the description the backend reported.
func (a *GraphicsAdapter) Desc() AdapterDesc { return a.desc }

// CurrentDisplayMode returns the display mode in use when the adapter was
// enumerated.
func (a *GraphicsAdapter) CurrentDisplayMode() DisplayMode {
	return a.desc.CurrentDisplayMode
}

// SupportedDisplayModes returns a copy of the display modes.
func (a *GraphicsAdapter) SupportedDisplayModes() []DisplayMode {
	return slices.Clone(a.desc.DisplayModes)
}

// IsProfileSupported reports whether a device of profile p can be created.
func (a *GraphicsAdapter) IsProfileSupported(p GraphicsProfile) bool {
	return slices.Contains(a.desc.Profiles, p)
}

// HighestProfile returns the most capable supported profile.
func (a *GraphicsAdapter) HighestProfile() GraphicsProfile {
	best := Reach
	for _, p := range a.desc.Profiles {
		best = max(best, p)
	}
	return best
}

// ProfilesUpTo returns Reach through p, the profile list most backends report.
func ProfilesUpTo(p GraphicsProfile) []GraphicsProfile {
	out := make([]GraphicsProfile, 0, int(p)+1)
	for q := Reach; q <= p; q++ {
		out = append(out, q)
	}
	return out
}
