// Implements an abstract representation of
// svg paths, which can then be consumed
// by painting driver
package svgpath

import (
	"math"
	"strconv"
	"strings"
)

type pathCommand uint8

// Human readable path constants
const (
	pathMoveTo pathCommand = iota
	pathLineTo
	pathQuadTo
	pathCubicTo
	pathClose
)

// Point is a location in user space. Coordinates are
// kept as float64 so that invalid (NaN) data survives
// until the path is written out.
type Point struct{ X, Y float64 }

// IsFinite returns false if one of the coordinates is NaN or infinite.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Operation groups the different SVG commands
type Operation interface {
	command() pathCommand
	points() []Point
}

type MoveTo Point

type LineTo Point

type QuadTo [2]Point

type CubicTo [3]Point

type Close struct{}

func (MoveTo) command() pathCommand  { return pathMoveTo }
func (LineTo) command() pathCommand  { return pathLineTo }
func (QuadTo) command() pathCommand  { return pathQuadTo }
func (CubicTo) command() pathCommand { return pathCubicTo }
func (Close) command() pathCommand   { return pathClose }

// Path describes a sequence of basic SVG operations, which should not be nil
// Higher-level shapes may be reduced to a path.
type Path []Operation

// FormatNumber writes coordinates the way browsers serialize numbers:
// shortest representation, NaN spelled out.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatPoint(p Point) string {
	return FormatNumber(p.X) + "," + FormatNumber(p.Y)
}

// ToSVGPath returns a string representation of the path,
// suitable for the `d` attribute of a <path> element.
func (p Path) ToSVGPath() string {
	var b strings.Builder
	for _, op := range p {
		switch op := op.(type) {
		case MoveTo:
			b.WriteString("M" + formatPoint(Point(op)))
		case LineTo:
			b.WriteString("L" + formatPoint(Point(op)))
		case QuadTo:
			b.WriteString("Q" + formatPoint(op[0]) + "," + formatPoint(op[1]))
		case CubicTo:
			b.WriteString("C" + formatPoint(op[0]) + "," + formatPoint(op[1]) + "," + formatPoint(op[2]))
		case Close:
			b.WriteString("Z")
		}
	}
	return b.String()
}

// String returns a readable representation of a Path.
func (p Path) String() string {
	return p.ToSVGPath()
}

// IsFinite returns false if any point of the path is not finite.
func (p Path) IsFinite() bool {
	for _, op := range p {
		for _, pt := range op.points() {
			if !pt.IsFinite() {
				return false
			}
		}
	}
	return true
}

// Transform returns a copy of the path with every point mapped by m.
func (p Path) Transform(m Matrix2D) Path {
	out := make(Path, len(p))
	for i, op := range p {
		switch op := op.(type) {
		case MoveTo:
			out[i] = MoveTo(m.Apply(Point(op)))
		case LineTo:
			out[i] = LineTo(m.Apply(Point(op)))
		case QuadTo:
			out[i] = QuadTo{m.Apply(op[0]), m.Apply(op[1])}
		case CubicTo:
			out[i] = CubicTo{m.Apply(op[0]), m.Apply(op[1]), m.Apply(op[2])}
		default:
			out[i] = op
		}
	}
	return out
}

func (op MoveTo) points() []Point  { return []Point{Point(op)} }
func (op LineTo) points() []Point  { return []Point{Point(op)} }
func (op QuadTo) points() []Point  { return op[:] }
func (op CubicTo) points() []Point { return op[:] }
func (Close) points() []Point      { return nil }

// Clear zeros the path slice
func (p *Path) Clear() {
	*p = (*p)[:0]
}

// Start starts a new curve at the given point.
func (p *Path) Start(a Point) {
	*p = append(*p, MoveTo(a))
}

// Line adds a linear segment to the current curve.
func (p *Path) Line(b Point) {
	*p = append(*p, LineTo(b))
}

// QuadBezier adds a quadratic segment to the current curve.
func (p *Path) QuadBezier(b, c Point) {
	*p = append(*p, QuadTo{b, c})
}

// CubeBezier adds a cubic segment to the current curve.
func (p *Path) CubeBezier(b, c, d Point) {
	*p = append(*p, CubicTo{b, c, d})
}

// Stop joins the ends of the path
func (p *Path) Stop(closeLoop bool) {
	if closeLoop {
		*p = append(*p, Close{})
	}
}
