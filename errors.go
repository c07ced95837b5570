package gfx

import (
	"errors"
	"fmt"
	"strings"
)

// Error classes. Every error returned by gfx wraps exactly one of these.
var (
	// ErrNotSupported reports a configuration the profile, adapter or
	// backend cannot satisfy (size limits, formats, texture arrays, ...).
	ErrNotSupported = errors.New("gfx: not supported")

	// ErrInvalidArgument reports an argument outside its valid range.
	ErrInvalidArgument = errors.New("gfx: invalid argument")

	// ErrInvalidOperation reports a call made in the wrong state.
	ErrInvalidOperation = errors.New("gfx: invalid operation")

	// ErrDisposed is returned by operations on a disposed resource or on a
	// resource whose device has been disposed.
	ErrDisposed = errors.New("gfx: object disposed")

	// ErrReadOnly is returned when a readonly state object is mutated.
	ErrReadOnly = errors.New("gfx: the state object is readonly")

	// ErrDeviceLost is returned by GPU operations while the device is lost.
	ErrDeviceLost = errors.New("gfx: device lost")

	// ErrBackendNotAvailable is returned when no backend is registered
	// under the requested name.
	ErrBackendNotAvailable = errors.New("gfx: backend not available")

	// ErrImageFormat is returned when an image stream cannot be decoded.
	ErrImageFormat = errors.New("gfx: this image format is not supported")

	// ErrBackend is the class of native failures reported by BackendError.
	ErrBackend = errors.New("gfx: backend failure")
)

// ArgumentError identifies the argument that violated a constraint.
type ArgumentError struct {
	// Param names the offending argument.
	Param string
	// Msg describes the violated constraint.
	Msg string
	// Err is the error class: ErrInvalidArgument or ErrNotSupported.
	Err error
}

func (e *ArgumentError) Error() string {
	if e.Param == "" {
		return "gfx: " + e.Msg
	}
	return "gfx: " + e.Param + ": " + e.Msg
}

func (e *ArgumentError) Unwrap() error {
	if e.Err == nil {
		return ErrInvalidArgument
	}
	return e.Err
}

func argError(param, format string, args ...any) error {
	return &ArgumentError{Param: param, Msg: fmt.Sprintf(format, args...), Err: ErrInvalidArgument}
}

func notSupported(param, format string, args ...any) error {
	return &ArgumentError{Param: param, Msg: fmt.Sprintf(format, args...), Err: ErrNotSupported}
}

// BackendError wraps a native failure together with the diagnostic text
// the native API produced, such as a shader info log.
type BackendError struct {
	Backend string
	Op      string
	// Log is the native diagnostic text. May be empty.
	Log string
	Err error
}

func (e *BackendError) Error() string {
	var b strings.Builder
	b.WriteString("gfx: ")
	if e.Backend != "" {
		b.WriteString(e.Backend)
		b.WriteString(": ")
	}
	b.WriteString(e.Op)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if log := strings.TrimSpace(e.Log); log != "" {
		b.WriteString("\n")
		b.WriteString(log)
	}
	return b.String()
}

// Unwrap returns both the wrapped error and the ErrBackend class so that
// errors.Is matches either.
func (e *BackendError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrBackend}
	}
	return []error{e.Err, ErrBackend}
}

func invalidOp(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidOperation, fmt.Sprintf(format, args...))
}
