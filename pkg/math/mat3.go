package math

import "fmt"

// Mat3 is a 3x3 matrix in row-major order, applied to homogeneous 2D points
// (x, y, 1).
// Layout: [m0 m1 m2]
//
//	[m3 m4 m5]
//	[m6 m7 m8]
type Mat3 [9]float64

// Identity returns an identity matrix.
func Identity() Mat3 {
	return Mat3{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}

// Affine returns a matrix that scales and then translates:
// x' = x*sx + tx, y' = y*sy + ty.
func Affine(sx, sy, tx, ty float64) Mat3 {
	return Mat3{
		sx, 0, tx,
		0, sy, ty,
		0, 0, 1,
	}
}

// TransformPoint applies the matrix to (p.X, p.Y, 1) and drops the
// homogeneous component. Affine matrices keep it at 1.
func (m Mat3) TransformPoint(p Vec2) Vec2 {
	return Vec2{
		X: m[0]*p.X + m[1]*p.Y + m[2],
		Y: m[3]*p.X + m[4]*p.Y + m[5],
	}
}

// IsIdentity reports whether m is exactly the identity matrix.
func (m Mat3) IsIdentity() bool {
	return m == Identity()
}

// String formats the matrix as three bracketed rows.
func (m Mat3) String() string {
	return fmt.Sprintf("[%g %g %g] [%g %g %g] [%g %g %g]",
		m[0], m[1], m[2], m[3], m[4], m[5], m[6], m[7], m[8])
}
