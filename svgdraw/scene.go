package svgdraw

import (
	"github.com/benoitkugler/okchart/svgpath"
)

// Element is one node of a Scene.
// It is implemented by *Group, *Curve, *Line, *Image and *Text.
type Element interface {
	isElement()
}

// Scene is an immutable vector drawing, ready
// to be encoded as SVG or painted by a Driver.
type Scene struct {
	Width, Height float64
	Root          *Group
}

// Group holds children sharing a translation.
type Group struct {
	ID, Class string
	Translate svgpath.Point
	Children  []Element
}

// Curve is a stroked, unfilled path.
type Curve struct {
	Class       string
	Path        svgpath.Path
	Stroke      string // any CSS color
	StrokeWidth float64
}

// Line is a straight stroked segment.
type Line struct {
	X1, Y1, X2, Y2 float64
	Stroke         string
	StrokeWidth    float64
}

// Image references an external resource by URL,
// drawn in the given box.
type Image struct {
	Class               string
	Href                string
	X, Y, Width, Height float64
}

// TextAnchor is the horizontal alignment of a text
// relative to its anchor point.
type TextAnchor uint8

const (
	AnchorStart TextAnchor = iota
	AnchorMiddle
	AnchorEnd
)

func (a TextAnchor) String() string {
	switch a {
	case AnchorStart:
		return "start"
	case AnchorMiddle:
		return "middle"
	case AnchorEnd:
		return "end"
	default:
		return "<unknown TextAnchor>"
	}
}

// Text is a single line label.
// The text is first rotated by Rotate degrees around the origin
// of its parent, then placed at (X, Y) in the rotated frame,
// shifted down by Dy em.
type Text struct {
	Class      string
	X, Y       float64
	Dy         float64 // in em
	Content    string
	Anchor     TextAnchor
	Rotate     float64 // degrees, clockwise
	Fill       string
	FontSize   float64
	FontFamily string
}

func (*Group) isElement() {}
func (*Curve) isElement() {}
func (*Line) isElement()  {}
func (*Image) isElement() {}
func (*Text) isElement()  {}

// Append adds children to the group and returns it.
func (g *Group) Append(children ...Element) *Group {
	g.Children = append(g.Children, children...)
	return g
}

// Walk calls fn for every element below g, in painting order,
// with the transform accumulated from the ancestors of the element.
// Groups are visited before their children.
func (g *Group) Walk(m svgpath.Matrix2D, fn func(e Element, m svgpath.Matrix2D)) {
	inner := m.Translate(g.Translate.X, g.Translate.Y)
	for _, child := range g.Children {
		fn(child, inner)
		if sub, ok := child.(*Group); ok {
			sub.Walk(inner, fn)
		}
	}
}

// Curves returns all the curves of the scene, in painting order.
func (s *Scene) Curves() []*Curve {
	var out []*Curve
	s.walk(func(e Element, _ svgpath.Matrix2D) {
		if c, ok := e.(*Curve); ok {
			out = append(out, c)
		}
	})
	return out
}

// Images returns all the images of the scene, in painting order.
func (s *Scene) Images() []*Image {
	var out []*Image
	s.walk(func(e Element, _ svgpath.Matrix2D) {
		if c, ok := e.(*Image); ok {
			out = append(out, c)
		}
	})
	return out
}

// Texts returns all the texts of the scene, in painting order.
func (s *Scene) Texts() []*Text {
	var out []*Text
	s.walk(func(e Element, _ svgpath.Matrix2D) {
		if c, ok := e.(*Text); ok {
			out = append(out, c)
		}
	})
	return out
}

// FindGroup returns the first group with the given ID, or nil.
func (s *Scene) FindGroup(id string) *Group {
	if s.Root != nil && s.Root.ID == id {
		return s.Root
	}
	var out *Group
	s.walk(func(e Element, _ svgpath.Matrix2D) {
		if g, ok := e.(*Group); ok && out == nil && g.ID == id {
			out = g
		}
	})
	return out
}

func (s *Scene) walk(fn func(e Element, m svgpath.Matrix2D)) {
	if s == nil || s.Root == nil {
		return
	}
	fn(s.Root, svgpath.Identity)
	s.Root.Walk(svgpath.Identity, fn)
}
