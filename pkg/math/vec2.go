// Package math provides the small amount of linear algebra needed to move
// texture coordinates between image and atlas space.
package math

import "math"

// Vec2 is a 2D vector, usually a (u, v) texture coordinate.
type Vec2 struct {
	X, Y float64
}

// ApproxEqual reports whether v and other differ by at most eps on each axis.
func (v Vec2) ApproxEqual(other Vec2, eps float64) bool {
	return math.Abs(v.X-other.X) <= eps && math.Abs(v.Y-other.Y) <= eps
}
