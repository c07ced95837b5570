package gfx

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ConstantBuffer is a block of shader constants. Writes go to a CPU shadow
// copy which is uploaded the first time the buffer is used by a draw after
// it changed.
type ConstantBuffer struct {
	resource
	bufName  string
	shadow   []byte
	dirty    bool
	strategy ConstantBufferStrategy
}

// NewConstantBuffer creates a zeroed constant buffer of size bytes. The
// size must be a positive multiple of 16, one vec4 register.
func NewConstantBuffer(dev *GraphicsDevice, name string, size int) (*ConstantBuffer, error) {
	if dev == nil {
		return nil, argError("graphicsDevice", "must not be nil")
	}
	if err := dev.checkUsable(); err != nil {
		return nil, err
	}
	if size <= 0 || size%16 != 0 {
		return nil, argError("size", "must be a positive multiple of 16, got %d", size)
	}
	if v := dev.caps.MaxConstantBufferVectors; v > 0 && size/16 > v {
		return nil, notSupported("size", "%d vectors exceed the device limit of %d", size/16, v)
	}
	cb := &ConstantBuffer{bufName: name, shadow: make([]byte, size), dirty: true}
	if err := cb.create(dev); err != nil {
		return nil, err
	}
	cb.attach(dev, cb, "ConstantBuffer")
	return cb, nil
}

func (cb *ConstantBuffer) create(dev *GraphicsDevice) error {
	s, err := dev.strategy.CreateConstantBuffer(ConstantBufferDesc{Name: cb.bufName, Size: len(cb.shadow)})
	if err != nil {
		return dev.wrap("create constant buffer", err)
	}
	cb.strategy = s
	return nil
}

// BufferName returns the uniform block name the buffer was created for.
func (cb *ConstantBuffer) BufferName() string { return cb.bufName }

// Size returns the size in bytes.
func (cb *ConstantBuffer) Size() int { return len(cb.shadow) }

// Data returns a copy of the shadow contents.
func (cb *ConstantBuffer) Data() []byte {
	return append([]byte(nil), cb.shadow...)
}

// IsDirty reports whether the shadow copy changed since the last upload.
func (cb *ConstantBuffer) IsDirty() bool { return cb.dirty }

// SetData copies data into the shadow copy at offset.
func (cb *ConstantBuffer) SetData(offset int, data []byte) error {
	if cb.disposed {
		return invalidDisposed("ConstantBuffer")
	}
	if offset < 0 || offset+len(data) > len(cb.shadow) {
		return argError("offset", "%d bytes at %d exceed the buffer size %d", len(data), offset, len(cb.shadow))
	}
	copy(cb.shadow[offset:], data)
	cb.dirty = true
	return nil
}

// SetFloats writes vs as little-endian float32 values starting at offset.
func (cb *ConstantBuffer) SetFloats(offset int, vs ...float32) error {
	if cb.disposed {
		return invalidDisposed("ConstantBuffer")
	}
	if offset < 0 || offset+4*len(vs) > len(cb.shadow) {
		return argError("offset", "%d floats at %d exceed the buffer size %d", len(vs), offset, len(cb.shadow))
	}
	for i, v := range vs {
		binary.LittleEndian.PutUint32(cb.shadow[offset+4*i:], math.Float32bits(v))
	}
	cb.dirty = true
	return nil
}

// SetVector4 writes one vec4 register at offset.
func (cb *ConstantBuffer) SetVector4(offset int, v Vector4) error {
	return cb.SetFloats(offset, v.X, v.Y, v.Z, v.W)
}

// SetMatrix writes m as four column vectors, the layout GLSL and WGSL use
// for mat4.
func (cb *ConstantBuffer) SetMatrix(offset int, m mgl32.Mat4) error {
	return cb.SetFloats(offset, m[:]...)
}

// SetMatrixTransposed writes m as four row vectors, the layout of shaders
// that multiply with the vector on the left.
func (cb *ConstantBuffer) SetMatrixTransposed(offset int, m mgl32.Mat4) error {
	t := m.Transpose()
	return cb.SetFloats(offset, t[:]...)
}

// Clear forces the shadow copy to be uploaded again on next use.
func (cb *ConstantBuffer) Clear() {
	cb.dirty = true
}

// Clone returns a new buffer with the same name, size and contents.
func (cb *ConstantBuffer) Clone() (*ConstantBuffer, error) {
	if cb.disposed {
		return nil, invalidDisposed("ConstantBuffer")
	}
	c, err := NewConstantBuffer(cb.device, cb.bufName, len(cb.shadow))
	if err != nil {
		return nil, err
	}
	copy(c.shadow, cb.shadow)
	c.name, c.tag = cb.name, cb.tag
	return c, nil
}

// flush returns the native buffer, uploading the shadow copy if it changed.
// The caller holds the context lock.
func (cb *ConstantBuffer) flush(c *GraphicsContext) (ConstantBufferStrategy, error) {
	if !c.locked {
		return nil, invalidOp("constant buffer upload requires the context lock")
	}
	stale, err := cb.check()
	if err != nil {
		return nil, err
	}
	if stale {
		if err := cb.create(cb.device); err != nil {
			return nil, err
		}
		cb.recreated()
		// The shadow is kept on the CPU, so it survives the loss.
		cb.contentLost = false
		cb.dirty = true
	}
	if cb.dirty {
		if err := cb.strategy.Upload(cb.shadow); err != nil {
			return nil, cb.device.wrap("upload constant buffer", err)
		}
		cb.dirty = false
		c.metrics.ConstantBufferUploads++
	}
	return cb.strategy, nil
}

func (cb *ConstantBuffer) release() {
	if cb.strategy != nil && cb.current() {
		cb.strategy.Dispose()
	}
	cb.strategy = nil
}
