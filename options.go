package gfx

import "log/slog"

// DeviceOption configures a GraphicsDevice during creation.
// Use functional options to customize device behavior.
//
// Example:
//
//	dev, err := gfx.NewGraphicsDevice(adapter, gfx.HiDef, false, pp,
//		gfx.WithLogger(slog.Default()),
//		gfx.WithUserBufferSize(1<<20),
//	)
type DeviceOption func(*deviceOptions)

// deviceOptions holds optional configuration for device creation.
type deviceOptions struct {
	logger         *slog.Logger
	created        []func(*GraphicsDevice)
	userBufferSize int
}

// Smallest streaming buffer used by the user primitive draws.
const defaultUserBufferSize = 64 << 10

func defaultOptions() deviceOptions {
	return deviceOptions{userBufferSize: defaultUserBufferSize}
}

// WithLogger sets the logger handed to the backend. Without it the device
// logs through the package logger set by SetLogger.
func WithLogger(l *slog.Logger) DeviceOption {
	return func(o *deviceOptions) {
		o.logger = l
	}
}

// WithDeviceCreated registers a handler called once the device is fully
// constructed, before NewGraphicsDevice returns.
//
// Example:
//
//	dev, _ := gfx.NewGraphicsDevice(adapter, gfx.HiDef, false, pp,
//		gfx.WithDeviceCreated(func(d *gfx.GraphicsDevice) {
//			input.Resize(d.PresentationParameters().Bounds())
//		}),
//	)
func WithDeviceCreated(fn func(*GraphicsDevice)) DeviceOption {
	return func(o *deviceOptions) {
		if fn != nil {
			o.created = append(o.created, fn)
		}
	}
}

// WithUserBufferSize sets the initial size in bytes of the streaming
// buffers behind DrawUserPrimitives and DrawUserIndexedPrimitives. The
// buffers grow by powers of two when a draw does not fit.
func WithUserBufferSize(n int) DeviceOption {
	return func(o *deviceOptions) {
		if n > 0 {
			o.userBufferSize = n
		}
	}
}
