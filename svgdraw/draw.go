// Given a chart scene, implements how to
// draw it on screen.
// This requires a driver implementing the actual draw operations,
// such as a rasterizer to output .png images or a pdf writer.
// The scene may also be written as an SVG document, see WriteSVG.
package svgdraw

import (
	"image/color"
	"log"
	"math"

	"github.com/benoitkugler/okchart/svgpath"
	"golang.org/x/image/math/fixed"
)

// Drawer knows how to do the actual draw operations
// but doesn't need any SVG kwowledge
// In particular, tranformations matrix are already applied to the points
// before sending them to the Drawer.
type Drawer interface {
	// Clear must reset the internal state (used before starting a new path painting)
	Clear()

	// Start starts a new path at the given point.
	Start(a fixed.Point26_6)

	// Line Adds a line for the current point to `b`
	Line(b fixed.Point26_6)

	// QuadBezier adds a quadratic bezier curve to the path
	QuadBezier(b, c fixed.Point26_6)

	// CubeBezier adds a cubic bezier curve to the path
	CubeBezier(b, c, d fixed.Point26_6)

	// Closes the path to the start point if `closeLoop` is true
	Stop(closeLoop bool)

	// SetColor set the color for the current path
	SetColor(color color.Color, opacity float64)

	// Draw strokes the accumulated path using the current settings
	Draw()
}

type Stroker interface {
	Drawer

	// Parametrize the stroking style for the current path
	SetStrokeOptions(options StrokeOptions)
}

// Rect is a box in device space.
type Rect struct{ X, Y, W, H float64 }

// TextItem is a text run, already placed in device space.
type TextItem struct {
	Origin     svgpath.Point // anchor point, on the baseline
	Content    string
	Anchor     TextAnchor
	Angle      float64 // radians, clockwise
	Size       float64
	FontFamily string
	Color      color.Color
}

type Driver interface {
	// SetupStroker returns the backend painter, and
	// will be called at the begining of every stroked path.
	SetupStroker() Stroker

	// DrawImage paints the resource found at `href` into `rect`.
	// Failing to load the resource must not abort the drawing.
	DrawImage(href string, rect Rect)

	// DrawText paints a single line of text.
	DrawText(text TextItem)
}

type DashOptions struct {
	Dash       []float64 // values for the dash pattern (nil or an empty slice for no dashes)
	DashOffset float64   // starting offset into the dash array
}

// JoinMode type to specify how segments join.
type JoinMode uint8

// JoinMode constants determine how stroke segments bridge the gap at a join
const (
	Round JoinMode = iota
	Bevel
	Miter
)

func (s JoinMode) String() string {
	switch s {
	case Round:
		return "Round"
	case Bevel:
		return "Bevel"
	case Miter:
		return "Miter"
	default:
		return "<unknown JoinMode>"
	}
}

// CapMode defines how to draw caps on the ends of lines
type CapMode uint8

const (
	ButtCap CapMode = iota
	SquareCap
	RoundCap
)

func (c CapMode) String() string {
	switch c {
	case ButtCap:
		return "ButtCap"
	case SquareCap:
		return "SquareCap"
	case RoundCap:
		return "RoundCap"
	default:
		return "<unknown CapMode>"
	}
}

type JoinOptions struct {
	MiterLimit fixed.Int26_6 // the miter cutoff value for miter joins
	LineJoin   JoinMode      // JoinMode for curve segments
	LineCap    CapMode       // capping function for both line ends
}

type StrokeOptions struct {
	LineWidth fixed.Int26_6 // width of the line
	Join      JoinOptions
	Dash      DashOptions
}

// DefaultJoin matches the SVG defaults: miter joins with
// a limit of 4 and butt caps.
var DefaultJoin = JoinOptions{
	MiterLimit: fToFixed(4),
	LineJoin:   Miter,
	LineCap:    ButtCap,
}

const defaultFontSize = 10

func fToFixed(f float64) fixed.Int26_6 {
	return fixed.Int26_6(f * 64)
}

func toFixedP(p svgpath.Point) fixed.Point26_6 {
	return fixed.Point26_6{X: fToFixed(p.X), Y: fToFixed(p.Y)}
}

// Draw paints the scene into the driver `d`.
// Elements with non finite coordinates cannot be expressed in device
// space: they are skipped, and a warning is logged.
func Draw(s *Scene, d Driver) {
	s.walk(func(e Element, m svgpath.Matrix2D) {
		switch e := e.(type) {
		case *Curve:
			strokePath(d, e.Class, e.Path.Transform(m), e.Stroke, e.StrokeWidth)
		case *Line:
			var p svgpath.Path
			p.Start(svgpath.Point{X: e.X1, Y: e.Y1})
			p.Line(svgpath.Point{X: e.X2, Y: e.Y2})
			strokePath(d, "line", p.Transform(m), e.Stroke, e.StrokeWidth)
		case *Image:
			drawImage(d, e, m)
		case *Text:
			drawText(d, e, m)
		}
	})
}

func strokePath(d Driver, class string, path svgpath.Path, stroke string, width float64) {
	if len(path) == 0 {
		return
	}
	if !path.IsFinite() {
		log.Printf("svgdraw: skipping %q path with non finite coordinates: %s", class, path)
		return
	}
	col, err := ParseColor(stroke)
	if err != nil {
		log.Printf("svgdraw: %s, using black", err)
	}
	if col.A == 0 || width <= 0 {
		return // nothing visible
	}

	stroker := d.SetupStroker()
	stroker.Clear()
	stroker.SetStrokeOptions(StrokeOptions{
		LineWidth: fToFixed(width),
		Join:      DefaultJoin,
	})
	for _, op := range path {
		switch op := op.(type) {
		case svgpath.MoveTo:
			stroker.Stop(false) // implicit close if currently in path.
			stroker.Start(toFixedP(svgpath.Point(op)))
		case svgpath.LineTo:
			stroker.Line(toFixedP(svgpath.Point(op)))
		case svgpath.QuadTo:
			stroker.QuadBezier(toFixedP(op[0]), toFixedP(op[1]))
		case svgpath.CubicTo:
			stroker.CubeBezier(toFixedP(op[0]), toFixedP(op[1]), toFixedP(op[2]))
		case svgpath.Close:
			stroker.Stop(true)
		}
	}
	stroker.Stop(false)
	stroker.SetColor(col, 1)
	stroker.Draw()
}

func drawImage(d Driver, img *Image, m svgpath.Matrix2D) {
	origin := m.Apply(svgpath.Point{X: img.X, Y: img.Y})
	if !origin.IsFinite() {
		log.Printf("svgdraw: skipping image %s with non finite position", img.Href)
		return
	}
	d.DrawImage(img.Href, Rect{X: origin.X, Y: origin.Y, W: img.Width, H: img.Height})
}

func drawText(d Driver, t *Text, m svgpath.Matrix2D) {
	size := t.FontSize
	if size <= 0 {
		size = defaultFontSize
	}
	inner := m.Rotate(t.Rotate * math.Pi / 180)
	origin := inner.Apply(svgpath.Point{X: t.X, Y: t.Y + t.Dy*size})
	if !origin.IsFinite() {
		log.Printf("svgdraw: skipping text %q with non finite position", t.Content)
		return
	}
	col, err := ParseColor(t.Fill)
	if err != nil {
		log.Printf("svgdraw: %s, using black", err)
	}
	d.DrawText(TextItem{
		Origin:     origin,
		Content:    t.Content,
		Anchor:     t.Anchor,
		Angle:      inner.Angle(),
		Size:       size,
		FontFamily: t.FontFamily,
		Color:      col,
	})
}
