package gfx

import "github.com/chewxy/math32"

// Vector2 is a two-component float vector with a fixed memory layout,
// suitable as a vertex attribute.
type Vector2 struct {
	X, Y float32
}

// Vector3 is a three-component float vector.
type Vector3 struct {
	X, Y, Z float32
}

// Vector4 is a four-component float vector.
type Vector4 struct {
	X, Y, Z, W float32
}

// Near reports whether every component of v is within eps of o.
func (v Vector4) Near(o Vector4, eps float32) bool {
	return math32.Abs(v.X-o.X) <= eps &&
		math32.Abs(v.Y-o.Y) <= eps &&
		math32.Abs(v.Z-o.Z) <= eps &&
		math32.Abs(v.W-o.W) <= eps
}

// Point is an integer 2D coordinate.
type Point struct {
	X, Y int
}

// Rectangle is an integer rectangle with its origin at the top-left corner.
type Rectangle struct {
	X, Y, Width, Height int
}

// Right returns the exclusive right edge.
func (r Rectangle) Right() int { return r.X + r.Width }

// Bottom returns the exclusive bottom edge.
func (r Rectangle) Bottom() int { return r.Y + r.Height }

// Empty reports whether r has no area.
func (r Rectangle) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Contains reports whether o lies entirely inside r.
func (r Rectangle) Contains(o Rectangle) bool {
	return o.X >= r.X && o.Y >= r.Y && o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}

// Intersect returns the overlap of r and o, or an empty rectangle.
func (r Rectangle) Intersect(o Rectangle) Rectangle {
	x0, y0 := max(r.X, o.X), max(r.Y, o.Y)
	x1, y1 := min(r.Right(), o.Right()), min(r.Bottom(), o.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return Rectangle{}
	}
	return Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Viewport is the region of the render target that clip space maps onto.
type Viewport struct {
	X, Y, Width, Height int
	MinDepth, MaxDepth  float32
}

// NewViewport returns a viewport with the default 0..1 depth range.
func NewViewport(x, y, width, height int) Viewport {
	return Viewport{X: x, Y: y, Width: width, Height: height, MaxDepth: 1}
}

// Bounds returns the viewport rectangle.
func (v Viewport) Bounds() Rectangle {
	return Rectangle{X: v.X, Y: v.Y, Width: v.Width, Height: v.Height}
}

// AspectRatio returns Width/Height, or 0 for a degenerate viewport.
func (v Viewport) AspectRatio() float32 {
	if v.Height == 0 || v.Width == 0 {
		return 0
	}
	return float32(v.Width) / float32(v.Height)
}
