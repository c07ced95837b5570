package gfx

import "fmt"

// VertexElementFormat is the data type of one vertex attribute.
type VertexElementFormat int

const (
	VertexElementSingle VertexElementFormat = iota
	VertexElementVector2
	VertexElementVector3
	VertexElementVector4
	VertexElementColor
	VertexElementByte4
	VertexElementShort2
	VertexElementShort4
	VertexElementNormalizedShort2
	VertexElementNormalizedShort4
	VertexElementHalfVector2
	VertexElementHalfVector4
)

// Size returns the byte size of one element of format f.
func (f VertexElementFormat) Size() int {
	switch f {
	case VertexElementSingle, VertexElementColor, VertexElementByte4,
		VertexElementShort2, VertexElementNormalizedShort2, VertexElementHalfVector2:
		return 4
	case VertexElementVector2, VertexElementShort4, VertexElementNormalizedShort4,
		VertexElementHalfVector4:
		return 8
	case VertexElementVector3:
		return 12
	case VertexElementVector4:
		return 16
	}
	return 0
}

// Components returns the number of scalar components in f.
func (f VertexElementFormat) Components() int {
	switch f {
	case VertexElementSingle:
		return 1
	case VertexElementVector2, VertexElementShort2, VertexElementNormalizedShort2, VertexElementHalfVector2:
		return 2
	case VertexElementVector3:
		return 3
	}
	return 4
}

// VertexElementUsage is the semantic of a vertex attribute.
type VertexElementUsage int

const (
	VertexElementUsagePosition VertexElementUsage = iota
	VertexElementUsageColor
	VertexElementUsageTextureCoordinate
	VertexElementUsageNormal
	VertexElementUsageBinormal
	VertexElementUsageTangent
	VertexElementUsageBlendIndices
	VertexElementUsageBlendWeight
	VertexElementUsageDepth
	VertexElementUsageFog
	VertexElementUsagePointSize
	VertexElementUsageSample
	VertexElementUsageTessellateFactor
)

var usageNames = [...]string{
	"POSITION", "COLOR", "TEXCOORD", "NORMAL", "BINORMAL", "TANGENT",
	"BLENDINDICES", "BLENDWEIGHT", "DEPTH", "FOG", "PSIZE", "SAMPLE", "TESSFACTOR",
}

func (u VertexElementUsage) String() string {
	if u < 0 || int(u) >= len(usageNames) {
		return fmt.Sprintf("VertexElementUsage(%d)", int(u))
	}
	return usageNames[u]
}

// VertexElement describes one attribute inside a vertex.
type VertexElement struct {
	Offset     int
	Format     VertexElementFormat
	Usage      VertexElementUsage
	UsageIndex int
}

// Semantic returns the HLSL-style semantic, e.g. "TEXCOORD0".
func (e VertexElement) Semantic() string {
	return fmt.Sprintf("%s%d", e.Usage, e.UsageIndex)
}

// VertexDeclaration describes the layout of one vertex.
type VertexDeclaration struct {
	stride   int
	elements []VertexElement
}

// NewVertexDeclaration builds a declaration. A stride of 0 is computed from
// the elements.
func NewVertexDeclaration(stride int, elements ...VertexElement) (*VertexDeclaration, error) {
	if len(elements) == 0 {
		return nil, argError("elements", "a vertex declaration needs at least one element")
	}
	end := 0
	for _, e := range elements {
		if e.Offset < 0 {
			return nil, argError("elements", "element %s has negative offset", e.Semantic())
		}
		end = max(end, e.Offset+e.Format.Size())
	}
	if stride == 0 {
		stride = end
	}
	if stride < end {
		return nil, argError("stride", "stride %d is smaller than the element span %d", stride, end)
	}
	return &VertexDeclaration{stride: stride, elements: append([]VertexElement(nil), elements...)}, nil
}

// MustVertexDeclaration is like NewVertexDeclaration but panics on error.
// Intended for package-level declarations.
func MustVertexDeclaration(stride int, elements ...VertexElement) *VertexDeclaration {
	d, err := NewVertexDeclaration(stride, elements...)
	if err != nil {
		panic(err)
	}
	return d
}

// Stride returns the size of one vertex in bytes.
func (d *VertexDeclaration) Stride() int { return d.stride }

// Elements returns a copy of the elements.
func (d *VertexDeclaration) Elements() []VertexElement {
	return append([]VertexElement(nil), d.elements...)
}

// Stock vertex types with matching declarations.

// VertexPositionColor is a position with a packed colour.
type VertexPositionColor struct {
	Position Vector3
	Color    Color
}

// VertexPositionTexture is a position with one texture coordinate.
type VertexPositionTexture struct {
	Position          Vector3
	TextureCoordinate Vector2
}

// VertexPositionColorTexture is a position, a colour and a texture coordinate.
type VertexPositionColorTexture struct {
	Position          Vector3
	Color             Color
	TextureCoordinate Vector2
}

var (
	VertexPositionColorDeclaration = MustVertexDeclaration(16,
		VertexElement{Offset: 0, Format: VertexElementVector3, Usage: VertexElementUsagePosition},
		VertexElement{Offset: 12, Format: VertexElementColor, Usage: VertexElementUsageColor},
	)
	VertexPositionTextureDeclaration = MustVertexDeclaration(20,
		VertexElement{Offset: 0, Format: VertexElementVector3, Usage: VertexElementUsagePosition},
		VertexElement{Offset: 12, Format: VertexElementVector2, Usage: VertexElementUsageTextureCoordinate},
	)
	VertexPositionColorTextureDeclaration = MustVertexDeclaration(24,
		VertexElement{Offset: 0, Format: VertexElementVector3, Usage: VertexElementUsagePosition},
		VertexElement{Offset: 12, Format: VertexElementColor, Usage: VertexElementUsageColor},
		VertexElement{Offset: 16, Format: VertexElementVector2, Usage: VertexElementUsageTextureCoordinate},
	)
)
