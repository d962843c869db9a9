package svgpath

import "math"

const epsilon = 1e-12

// CatmullRom accumulates points and emits a smooth curve passing
// through all of them, as cubic bezier segments.
// Alpha parametrizes the spline: 0 is uniform, 0.5 centripetal
// and 1 chordal.
// Non finite points are kept as is, so that they show in the output.
type CatmullRom struct {
	Alpha float64

	path  Path
	point int // number of points seen, saturated at 3

	x0, x1, x2, y0, y1, y2                   float64
	l01a, l12a, l23a, l01_2a, l12_2a, l23_2a float64
}

// NewCatmullRom returns a centripetal Catmull-Rom builder.
func NewCatmullRom() *CatmullRom {
	return &CatmullRom{Alpha: 0.5}
}

// CatmullRomPath returns the smoothed path through the given points.
// A single point yields a degenerated closed path, an empty slice
// an empty path.
func CatmullRomPath(points []Point) Path {
	c := NewCatmullRom()
	for _, p := range points {
		c.Add(p)
	}
	return c.End()
}

// bezierTo emits the segment ending at (x1, y1) [the second to last point],
// using (x, y) as the following point.
func (c *CatmullRom) bezierTo(x, y float64) {
	x1, y1, x2, y2 := c.x1, c.y1, c.x2, c.y2

	if c.l01a > epsilon {
		a := 2*c.l01_2a + 3*c.l01a*c.l12a + c.l12_2a
		n := 3 * c.l01a * (c.l01a + c.l12a)
		x1 = (x1*a - c.x0*c.l12_2a + c.x2*c.l01_2a) / n
		y1 = (y1*a - c.y0*c.l12_2a + c.y2*c.l01_2a) / n
	}

	if c.l23a > epsilon {
		b := 2*c.l23_2a + 3*c.l23a*c.l12a + c.l12_2a
		m := 3 * c.l23a * (c.l23a + c.l12a)
		x2 = (x2*b + c.x1*c.l23_2a - x*c.l12_2a) / m
		y2 = (y2*b + c.y1*c.l23_2a - y*c.l12_2a) / m
	}

	c.path.CubeBezier(Point{x1, y1}, Point{x2, y2}, Point{c.x2, c.y2})
}

// Add appends a point to the curve.
func (c *CatmullRom) Add(p Point) {
	x, y := p.X, p.Y
	if c.point > 0 {
		x23, y23 := c.x2-x, c.y2-y
		c.l23_2a = math.Pow(x23*x23+y23*y23, c.Alpha)
		c.l23a = math.Sqrt(c.l23_2a)
	}

	switch c.point {
	case 0:
		c.point = 1
		c.path.Start(p)
	case 1:
		c.point = 2
	case 2:
		c.point = 3
		c.bezierTo(x, y)
	default:
		c.bezierTo(x, y)
	}

	c.l01a, c.l12a = c.l12a, c.l23a
	c.l01_2a, c.l12_2a = c.l12_2a, c.l23_2a
	c.x0, c.x1, c.x2 = c.x1, c.x2, x
	c.y0, c.y1, c.y2 = c.y1, c.y2, y
}

// End terminates the curve and returns the accumulated path.
func (c *CatmullRom) End() Path {
	switch c.point {
	case 1:
		c.path.Stop(true)
	case 2:
		c.path.Line(Point{c.x2, c.y2})
	case 3:
		c.Add(Point{c.x2, c.y2})
	}
	out := c.path
	*c = CatmullRom{Alpha: c.Alpha}
	return out
}
