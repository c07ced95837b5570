package gfx

// gpuBuffer is the part shared by vertex and index buffers.
type gpuBuffer struct {
	resource
	desc     BufferDesc
	strategy BufferStrategy
}

func (b *gpuBuffer) create(dev *GraphicsDevice) error {
	s, err := dev.strategy.CreateBuffer(b.desc)
	if err != nil {
		return dev.wrap("create buffer", err)
	}
	b.strategy = s
	return nil
}

// BufferUsage returns the usage hint the buffer was created with.
func (b *gpuBuffer) BufferUsage() BufferUsage { return b.desc.Usage }

// IsDynamic reports whether the buffer accepts SetDataDiscard and
// SetDataNoOverwrite.
func (b *gpuBuffer) IsDynamic() bool { return b.desc.Dynamic }

// SizeInBytes returns the buffer size.
func (b *gpuBuffer) SizeInBytes() int { return b.desc.Size }

func (b *gpuBuffer) native() (BufferStrategy, error) {
	stale, err := b.check()
	if err != nil {
		return nil, err
	}
	if stale {
		if err := b.create(b.device); err != nil {
			return nil, err
		}
		b.recreated()
	}
	return b.strategy, nil
}

func (b *gpuBuffer) release() {
	if b.strategy != nil && b.current() {
		b.strategy.Dispose()
	}
	b.strategy = nil
}

// setData writes elementCount elements of elemSize bytes, starting at
// offsetInBytes and spaced stride bytes apart.
func (b *gpuBuffer) setData(offsetInBytes int, data []byte, elemSize, elementCount, stride int, opts SetDataOptions) error {
	if opts != SetDataNone && !b.desc.Dynamic {
		return invalidOp("SetDataOptions other than None require a dynamic buffer")
	}
	if stride == 0 {
		stride = elemSize
	}
	if stride < elemSize {
		return argError("vertexStride", "%d is smaller than the element size %d", stride, elemSize)
	}
	if offsetInBytes < 0 {
		return argError("offsetInBytes", "must not be negative, got %d", offsetInBytes)
	}
	if elementCount == 0 {
		return nil
	}
	if offsetInBytes+stride*(elementCount-1)+elemSize > b.desc.Size {
		return invalidOp("the array specified in the data parameter is not the correct size for the amount of data requested")
	}
	n, err := b.native()
	if err != nil {
		return err
	}
	if stride == elemSize {
		if err := n.SetData(offsetInBytes, data, opts); err != nil {
			return b.device.wrap("set buffer data", err)
		}
	} else {
		for i := range elementCount {
			if err := n.SetData(offsetInBytes+i*stride, data[i*elemSize:(i+1)*elemSize], opts); err != nil {
				return b.device.wrap("set buffer data", err)
			}
			// Only the first write may discard.
			if opts == SetDataDiscard {
				opts = SetDataNoOverwrite
			}
		}
	}
	b.contentLost = false
	return nil
}

func (b *gpuBuffer) getData(offsetInBytes int, data []byte, elemSize, elementCount, stride int) error {
	if b.desc.Usage == BufferUsageWriteOnly {
		return notSupported("", "calling GetData on a resource that was created with BufferUsageWriteOnly is not supported")
	}
	if stride == 0 {
		stride = elemSize
	}
	if stride < elemSize {
		return argError("vertexStride", "%d is smaller than the element size %d", stride, elemSize)
	}
	if offsetInBytes < 0 {
		return argError("offsetInBytes", "must not be negative, got %d", offsetInBytes)
	}
	if elementCount == 0 {
		return nil
	}
	if offsetInBytes+stride*(elementCount-1)+elemSize > b.desc.Size {
		return invalidOp("the array specified in the data parameter is not the correct size for the amount of data requested")
	}
	n, err := b.native()
	if err != nil {
		return err
	}
	if err := b.device.ctx.Flush(); err != nil {
		return err
	}
	if stride == elemSize {
		if err := n.GetData(offsetInBytes, data); err != nil {
			return b.device.wrap("get buffer data", err)
		}
		return nil
	}
	for i := range elementCount {
		if err := n.GetData(offsetInBytes+i*stride, data[i*elemSize:(i+1)*elemSize]); err != nil {
			return b.device.wrap("get buffer data", err)
		}
	}
	return nil
}

// VertexBuffer holds vertices described by a VertexDeclaration.
type VertexBuffer struct {
	gpuBuffer
	decl        *VertexDeclaration
	vertexCount int
}

// NewVertexBuffer creates a static vertex buffer.
func NewVertexBuffer(dev *GraphicsDevice, decl *VertexDeclaration, vertexCount int, usage BufferUsage) (*VertexBuffer, error) {
	return newVertexBuffer(dev, decl, vertexCount, usage, false)
}

// NewDynamicVertexBuffer creates a vertex buffer meant to be rewritten
// every frame with SetDataDiscard or SetDataNoOverwrite.
func NewDynamicVertexBuffer(dev *GraphicsDevice, decl *VertexDeclaration, vertexCount int, usage BufferUsage) (*VertexBuffer, error) {
	return newVertexBuffer(dev, decl, vertexCount, usage, true)
}

func newVertexBuffer(dev *GraphicsDevice, decl *VertexDeclaration, vertexCount int, usage BufferUsage, dynamic bool) (*VertexBuffer, error) {
	if dev == nil {
		return nil, argError("graphicsDevice", "must not be nil")
	}
	if err := dev.checkUsable(); err != nil {
		return nil, err
	}
	if decl == nil {
		return nil, argError("vertexDeclaration", "must not be nil")
	}
	if vertexCount <= 0 {
		return nil, argError("vertexCount", "must be greater than zero, got %d", vertexCount)
	}
	if n := dev.caps.MaxVertexAttributes; n > 0 && len(decl.elements) > n {
		return nil, notSupported("vertexDeclaration", "%d elements exceed the device limit of %d", len(decl.elements), n)
	}
	vb := &VertexBuffer{decl: decl, vertexCount: vertexCount}
	vb.desc = BufferDesc{Kind: BufferKindVertex, Size: vertexCount * decl.Stride(), Usage: usage, Dynamic: dynamic}
	if err := vb.create(dev); err != nil {
		return nil, err
	}
	vb.attach(dev, vb, "VertexBuffer")
	return vb, nil
}

func (vb *VertexBuffer) VertexDeclaration() *VertexDeclaration { return vb.decl }
func (vb *VertexBuffer) VertexCount() int                      { return vb.vertexCount }

// SetVertexData replaces the buffer contents from the start, one element
// per vertex.
func SetVertexData[T any](vb *VertexBuffer, data []T) error {
	return SetVertexDataRegion(vb, 0, data, 0, len(data), 0, SetDataNone)
}

// SetVertexDataRegion writes elementCount elements of data, starting at
// startIndex, to offsetInBytes. A vertexStride greater than the element
// size writes each element at the start of its own vertex; 0 selects the
// element size.
func SetVertexDataRegion[T any](vb *VertexBuffer, offsetInBytes int, data []T, startIndex, elementCount,
	vertexStride int, opts SetDataOptions) error {
	if data == nil {
		return argError("data", "must not be nil")
	}
	if err := checkSpan(len(data), startIndex, elementCount); err != nil {
		return err
	}
	if elementCount > 1 && vertexStride != 0 && elementCount*vertexStride > vb.desc.Size {
		return invalidOp("the vertex stride is larger than the vertex buffer")
	}
	window := data[startIndex : startIndex+elementCount]
	return vb.setData(offsetInBytes, asBytes(window), sizeOf[T](), elementCount, vertexStride, opts)
}

// GetVertexData reads len(data) elements from the start of the buffer.
func GetVertexData[T any](vb *VertexBuffer, data []T) error {
	return GetVertexDataRegion(vb, 0, data, 0, len(data), 0)
}

// GetVertexDataRegion reads elementCount elements into data at startIndex.
func GetVertexDataRegion[T any](vb *VertexBuffer, offsetInBytes int, data []T, startIndex, elementCount,
	vertexStride int) error {
	if data == nil {
		return argError("data", "must not be nil")
	}
	if err := checkSpan(len(data), startIndex, elementCount); err != nil {
		return err
	}
	window := data[startIndex : startIndex+elementCount]
	return vb.getData(offsetInBytes, asBytes(window), sizeOf[T](), elementCount, vertexStride)
}

// IndexBuffer holds 16- or 32-bit indices.
type IndexBuffer struct {
	gpuBuffer
	size       IndexElementSize
	indexCount int
}

// NewIndexBuffer creates a static index buffer.
func NewIndexBuffer(dev *GraphicsDevice, size IndexElementSize, indexCount int, usage BufferUsage) (*IndexBuffer, error) {
	return newIndexBuffer(dev, size, indexCount, usage, false)
}

// NewDynamicIndexBuffer creates an index buffer meant to be rewritten
// every frame.
func NewDynamicIndexBuffer(dev *GraphicsDevice, size IndexElementSize, indexCount int, usage BufferUsage) (*IndexBuffer, error) {
	return newIndexBuffer(dev, size, indexCount, usage, true)
}

func newIndexBuffer(dev *GraphicsDevice, size IndexElementSize, indexCount int, usage BufferUsage, dynamic bool) (*IndexBuffer, error) {
	if dev == nil {
		return nil, argError("graphicsDevice", "must not be nil")
	}
	if err := dev.checkUsable(); err != nil {
		return nil, err
	}
	if size != IndexElementSize16 && size != IndexElementSize32 {
		return nil, argError("indexElementSize", "unknown index size %d", int(size))
	}
	if size == IndexElementSize32 && dev.profile == Reach {
		return nil, notSupported("indexElementSize", "Reach profile does not support 32-bit indices")
	}
	if indexCount <= 0 {
		return nil, argError("indexCount", "must be greater than zero, got %d", indexCount)
	}
	ib := &IndexBuffer{size: size, indexCount: indexCount}
	ib.desc = BufferDesc{
		Kind:      BufferKindIndex,
		Size:      indexCount * size.Bytes(),
		Usage:     usage,
		Dynamic:   dynamic,
		IndexSize: size,
	}
	if err := ib.create(dev); err != nil {
		return nil, err
	}
	ib.attach(dev, ib, "IndexBuffer")
	return ib, nil
}

func (ib *IndexBuffer) ElementSize() IndexElementSize { return ib.size }
func (ib *IndexBuffer) IndexCount() int               { return ib.indexCount }

// SetIndexData replaces the indices from the start. The element size of I
// must match the buffer's index size.
func SetIndexData[I Index](ib *IndexBuffer, data []I) error {
	return SetIndexDataRegion(ib, 0, data, 0, len(data), SetDataNone)
}

// SetIndexDataRegion writes elementCount indices of data, starting at
// startIndex, to offsetInBytes.
func SetIndexDataRegion[I Index](ib *IndexBuffer, offsetInBytes int, data []I, startIndex, elementCount int,
	opts SetDataOptions) error {
	if data == nil {
		return argError("data", "must not be nil")
	}
	if sizeOf[I]() != ib.size.Bytes() {
		return argError("data", "%d-byte indices cannot be written to a %d-byte index buffer", sizeOf[I](), ib.size.Bytes())
	}
	if err := checkSpan(len(data), startIndex, elementCount); err != nil {
		return err
	}
	window := data[startIndex : startIndex+elementCount]
	return ib.setData(offsetInBytes, asBytes(window), sizeOf[I](), elementCount, 0, opts)
}

// GetIndexData reads len(data) indices from the start of the buffer.
func GetIndexData[I Index](ib *IndexBuffer, data []I) error {
	return GetIndexDataRegion(ib, 0, data, 0, len(data))
}

// GetIndexDataRegion reads elementCount indices into data at startIndex.
func GetIndexDataRegion[I Index](ib *IndexBuffer, offsetInBytes int, data []I, startIndex, elementCount int) error {
	if data == nil {
		return argError("data", "must not be nil")
	}
	if sizeOf[I]() != ib.size.Bytes() {
		return argError("data", "%d-byte indices cannot be read from a %d-byte index buffer", sizeOf[I](), ib.size.Bytes())
	}
	if err := checkSpan(len(data), startIndex, elementCount); err != nil {
		return err
	}
	window := data[startIndex : startIndex+elementCount]
	return ib.getData(offsetInBytes, asBytes(window), sizeOf[I](), elementCount, 0)
}
