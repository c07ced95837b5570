package gfx

// PrimitiveType selects how vertices are assembled into primitives.
type PrimitiveType int

const (
	TriangleList PrimitiveType = iota
	TriangleStrip
	LineList
	LineStrip
	PointList
)

func (p PrimitiveType) String() string {
	switch p {
	case TriangleList:
		return "TriangleList"
	case TriangleStrip:
		return "TriangleStrip"
	case LineList:
		return "LineList"
	case LineStrip:
		return "LineStrip"
	case PointList:
		return "PointList"
	}
	return "PrimitiveType(?)"
}

// VertexCount returns the number of vertices needed for primitiveCount
// primitives of type p.
func (p PrimitiveType) VertexCount(primitiveCount int) int {
	switch p {
	case TriangleList:
		return primitiveCount * 3
	case TriangleStrip:
		return primitiveCount + 2
	case LineList:
		return primitiveCount * 2
	case LineStrip:
		return primitiveCount + 1
	case PointList:
		return primitiveCount
	}
	return 0
}

// IndexElementSize is the width of one index.
type IndexElementSize int

const (
	IndexElementSize16 IndexElementSize = iota
	IndexElementSize32
)

// Bytes returns the size of one index in bytes.
func (s IndexElementSize) Bytes() int {
	if s == IndexElementSize32 {
		return 4
	}
	return 2
}

// BufferUsage hints how a buffer will be accessed.
type BufferUsage int

const (
	BufferUsageNone BufferUsage = iota
	// BufferUsageWriteOnly buffers cannot be read back.
	BufferUsageWriteOnly
)

// SetDataOptions controls how a dynamic buffer update interacts with data
// the GPU may still be reading.
type SetDataOptions int

const (
	SetDataNone SetDataOptions = iota
	// SetDataDiscard orphans the previous contents.
	SetDataDiscard
	// SetDataNoOverwrite promises not to touch data referenced by
	// pending draws.
	SetDataNoOverwrite
)

// ClearOptions selects the buffers Clear affects.
type ClearOptions uint8

const (
	ClearTarget ClearOptions = 1 << iota
	ClearDepthBuffer
	ClearStencil

	ClearAll = ClearTarget | ClearDepthBuffer | ClearStencil
)

// ShaderStage identifies a programmable pipeline stage.
type ShaderStage int

const (
	ShaderStageVertex ShaderStage = iota
	ShaderStagePixel

	shaderStageCount
)

func (s ShaderStage) String() string {
	if s == ShaderStageVertex {
		return "Vertex"
	}
	return "Pixel"
}

// CubeMapFace selects one face of a cube texture.
type CubeMapFace int

const (
	CubeMapFacePositiveX CubeMapFace = iota
	CubeMapFaceNegativeX
	CubeMapFacePositiveY
	CubeMapFaceNegativeY
	CubeMapFacePositiveZ
	CubeMapFaceNegativeZ
)
