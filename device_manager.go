package gfx

import "fmt"

// DeviceManager owns the device for an application and applies Settings
// changes with the least disruptive operation: a Reset when only the
// presentation changed, a full recreation when the adapter, profile or
// half-pixel mode changed.
type DeviceManager struct {
	// Settings is the desired configuration. Changes take effect on the
	// next ApplyChanges.
	Settings Settings

	opts    []DeviceOption
	device  *GraphicsDevice
	applied Settings
}

// NewDeviceManager returns a manager that creates devices with opts. No
// device exists until the first ApplyChanges.
func NewDeviceManager(s Settings, opts ...DeviceOption) *DeviceManager {
	return &DeviceManager{Settings: s, opts: opts}
}

// Device returns the managed device, or nil before ApplyChanges.
func (m *DeviceManager) Device() *GraphicsDevice { return m.device }

// ApplyChanges brings the device in line with Settings. A lost device is
// recovered first.
func (m *DeviceManager) ApplyChanges() error {
	profile, err := m.Settings.GraphicsProfile()
	if err != nil {
		return err
	}
	pp, err := m.Settings.Presentation()
	if err != nil {
		return err
	}
	adapter, err := m.selectAdapter(profile)
	if err != nil {
		return err
	}

	if d := m.device; d != nil && !d.IsDisposed() {
		if d.State() == DeviceLost {
			if err := d.Recover(); err != nil {
				return err
			}
		}
		if !m.needsRecreate(adapter, profile) {
			pp.MultiSampleCount = normalizedMultiSample(pp.MultiSampleCount, d.caps.MaxMultiSampleCount)
			if pp != d.PresentationParameters() {
				if err := d.Reset(pp); err != nil {
					return err
				}
			}
			m.applied = m.Settings
			return nil
		}
		d.log.Info("gfx: recreating device", "backend", adapter.Backend(), "adapter", adapter.Name(),
			"profile", profile.String())
		d.Dispose()
		m.device = nil
	}

	d, err := NewGraphicsDevice(adapter, profile, m.Settings.HalfPixelOffset, pp, m.opts...)
	if err != nil {
		return err
	}
	m.device = d
	m.applied = m.Settings
	return nil
}

func (m *DeviceManager) needsRecreate(adapter *GraphicsAdapter, profile GraphicsProfile) bool {
	d := m.device
	cur := d.Adapter()
	return cur.Backend() != adapter.Backend() ||
		cur.Name() != adapter.Name() ||
		d.Profile() != profile ||
		m.applied.HalfPixelOffset != m.Settings.HalfPixelOffset
}

// selectAdapter picks the configured adapter, or the default adapter of
// the configured backend, that supports profile.
func (m *DeviceManager) selectAdapter(profile GraphicsProfile) (*GraphicsAdapter, error) {
	var candidates []*GraphicsAdapter
	if m.Settings.Backend == "" {
		candidates = Adapters()
	} else {
		var err error
		if candidates, err = AdaptersFor(m.Settings.Backend); err != nil {
			return nil, err
		}
	}
	var best *GraphicsAdapter
	for _, a := range candidates {
		if m.Settings.Adapter != "" && a.Name() != m.Settings.Adapter {
			continue
		}
		if !a.IsProfileSupported(profile) {
			continue
		}
		if best == nil || (a.IsDefault() && !best.IsDefault()) {
			best = a
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: no adapter supports the %s profile (backend %q, adapter %q)",
			ErrNotSupported, profile, m.Settings.Backend, m.Settings.Adapter)
	}
	return best, nil
}

// Dispose releases the managed device.
func (m *DeviceManager) Dispose() {
	if m.device != nil {
		m.device.Dispose()
		m.device = nil
	}
}
