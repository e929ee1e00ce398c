// Package atlas packs rectangular images into a single power-of-two texture
// and derives the transforms that move texture coordinates into it.
package atlas

import (
	"fmt"
	"image"
)

// Size is the pixel extent of an image to be packed.
type Size struct {
	Width, Height int
}

// Area returns Width * Height.
func (s Size) Area() int {
	return s.Width * s.Height
}

// String returns the size as "WxH".
func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Rect is an axis-aligned region (X0,Y0)-(X1,Y1) in atlas pixel space.
// X1 and Y1 are exclusive.
type Rect struct {
	X0, Y0, X1, Y1 int
}

// Width returns X1 - X0.
func (r Rect) Width() int {
	return r.X1 - r.X0
}

// Height returns Y1 - Y0.
func (r Rect) Height() int {
	return r.Y1 - r.Y0
}

// Size returns the width and height of r.
func (r Rect) Size() Size {
	return Size{r.Width(), r.Height()}
}

// Area returns the number of pixels covered by r.
func (r Rect) Area() int {
	return r.Width() * r.Height()
}

// Empty reports whether r covers no pixels.
func (r Rect) Empty() bool {
	return r.X0 >= r.X1 || r.Y0 >= r.Y1
}

// Overlaps reports whether the interiors of r and other intersect.
func (r Rect) Overlaps(other Rect) bool {
	if r.Empty() || other.Empty() {
		return false
	}
	return r.X0 < other.X1 && other.X0 < r.X1 && r.Y0 < other.Y1 && other.Y0 < r.Y1
}

// Within reports whether r lies fully inside the square [0,size) x [0,size).
func (r Rect) Within(size int) bool {
	return r.X0 >= 0 && r.Y0 >= 0 && r.X1 <= size && r.Y1 <= size
}

// Image converts r to an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X0, r.Y0, r.X1, r.Y1)
}

// String returns the rectangle as "(x0,y0)-(x1,y1)".
func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", r.X0, r.Y0, r.X1, r.Y1)
}
