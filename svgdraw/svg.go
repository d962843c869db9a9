package svgdraw

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/benoitkugler/okchart/svgpath"
)

const (
	svgNamespace   = "http://www.w3.org/2000/svg"
	xlinkNamespace = "http://www.w3.org/1999/xlink"
)

// svgWriter serializes elements as xml tokens
type svgWriter struct {
	enc *xml.Encoder
	err error
}

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

func num(f float64) string { return svgpath.FormatNumber(f) }

func (w *svgWriter) token(t xml.Token) {
	if w.err != nil {
		return
	}
	w.err = w.enc.EncodeToken(t)
}

// element writes an element, with optional text content
func (w *svgWriter) element(name string, attrs []xml.Attr, content string) {
	start := xml.StartElement{Name: xml.Name{Local: name}, Attr: attrs}
	w.token(start)
	if content != "" {
		w.token(xml.CharData(content))
	}
	w.token(start.End())
}

func appendNonEmpty(attrs []xml.Attr, name, value string) []xml.Attr {
	if value == "" {
		return attrs
	}
	return append(attrs, attr(name, value))
}

func (w *svgWriter) group(g *Group) {
	var attrs []xml.Attr
	attrs = appendNonEmpty(attrs, "id", g.ID)
	attrs = appendNonEmpty(attrs, "class", g.Class)
	if g.Translate != (svgpath.Point{}) {
		attrs = append(attrs, attr("transform", fmt.Sprintf("translate(%s,%s)", num(g.Translate.X), num(g.Translate.Y))))
	}
	start := xml.StartElement{Name: xml.Name{Local: "g"}, Attr: attrs}
	w.token(start)
	for _, child := range g.Children {
		w.child(child)
	}
	w.token(start.End())
}

func (w *svgWriter) child(e Element) {
	switch e := e.(type) {
	case *Group:
		w.group(e)
	case *Curve:
		var attrs []xml.Attr
		attrs = appendNonEmpty(attrs, "class", e.Class)
		attrs = append(attrs,
			attr("d", e.Path.ToSVGPath()),
			attr("fill", "none"),
			attr("style", fmt.Sprintf("stroke: %s; stroke-width: %s;", e.Stroke, num(e.StrokeWidth))),
		)
		w.element("path", attrs, "")
	case *Line:
		w.element("line", []xml.Attr{
			attr("x1", num(e.X1)), attr("y1", num(e.Y1)),
			attr("x2", num(e.X2)), attr("y2", num(e.Y2)),
			attr("stroke", e.Stroke), attr("stroke-width", num(e.StrokeWidth)),
		}, "")
	case *Image:
		var attrs []xml.Attr
		attrs = appendNonEmpty(attrs, "class", e.Class)
		attrs = append(attrs,
			attr("xlink:href", e.Href),
			attr("x", num(e.X)), attr("y", num(e.Y)),
			attr("width", num(e.Width)), attr("height", num(e.Height)),
		)
		w.element("image", attrs, "")
	case *Text:
		w.element("text", textAttrs(e), e.Content)
	}
}

func textAttrs(t *Text) []xml.Attr {
	var attrs []xml.Attr
	attrs = appendNonEmpty(attrs, "class", t.Class)
	attrs = append(attrs, attr("x", num(t.X)), attr("y", num(t.Y)))
	if t.Dy != 0 {
		attrs = append(attrs, attr("dy", num(t.Dy)+"em"))
	}
	attrs = appendNonEmpty(attrs, "fill", t.Fill)
	if t.Anchor != AnchorStart {
		attrs = append(attrs, attr("text-anchor", t.Anchor.String()))
	}
	if t.FontSize > 0 {
		attrs = append(attrs, attr("font-size", num(t.FontSize)))
	}
	attrs = appendNonEmpty(attrs, "font-family", t.FontFamily)
	if t.Rotate != 0 {
		attrs = append(attrs, attr("transform", fmt.Sprintf("rotate(%s)", num(t.Rotate))))
	}
	return attrs
}

// WriteSVG writes the scene as a standalone SVG document.
func WriteSVG(out io.Writer, s *Scene) error {
	w := svgWriter{enc: xml.NewEncoder(out)}
	w.enc.Indent("", "  ")

	root := xml.StartElement{Name: xml.Name{Local: "svg"}, Attr: []xml.Attr{
		attr("xmlns", svgNamespace),
		attr("xmlns:xlink", xlinkNamespace),
		attr("width", num(s.Width)),
		attr("height", num(s.Height)),
	}}
	w.token(root)
	if s.Root != nil {
		w.group(s.Root)
	}
	w.token(root.End())
	if w.err != nil {
		return w.err
	}
	return w.enc.Flush()
}

// ToSVG returns the SVG document as bytes.
func (s *Scene) ToSVG() ([]byte, error) {
	var b bytes.Buffer
	if err := WriteSVG(&b, s); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
