package svgpath

import "math"

// Matrix2D represents an SVG style matrix
//
//	| A C E |
//	| B D F |
//	| 0 0 1 |
type Matrix2D struct {
	A, B, C, D, E, F float64
}

// Identity is the identity transform
var Identity = Matrix2D{1, 0, 0, 1, 0, 0}

// Mult returns m * b
func (m Matrix2D) Mult(b Matrix2D) Matrix2D {
	return Matrix2D{
		A: m.A*b.A + m.C*b.B,
		B: m.B*b.A + m.D*b.B,
		C: m.A*b.C + m.C*b.D,
		D: m.B*b.C + m.D*b.D,
		E: m.A*b.E + m.C*b.F + m.E,
		F: m.B*b.E + m.D*b.F + m.F,
	}
}

// Translate returns m translated by (x, y)
func (m Matrix2D) Translate(x, y float64) Matrix2D {
	return m.Mult(Matrix2D{1, 0, 0, 1, x, y})
}

// Scale returns m scaled by (x, y)
func (m Matrix2D) Scale(x, y float64) Matrix2D {
	return m.Mult(Matrix2D{x, 0, 0, y, 0, 0})
}

// Rotate returns m rotated by theta radians
func (m Matrix2D) Rotate(theta float64) Matrix2D {
	s, c := math.Sincos(theta)
	return m.Mult(Matrix2D{c, s, -s, c, 0, 0})
}

// Apply maps the point p by m
func (m Matrix2D) Apply(p Point) Point {
	return Point{
		X: m.A*p.X + m.C*p.Y + m.E,
		Y: m.B*p.X + m.D*p.Y + m.F,
	}
}

// Angle returns the rotation part of m, in radians.
func (m Matrix2D) Angle() float64 {
	return math.Atan2(m.B, m.A)
}
