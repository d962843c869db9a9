package svgdraw

import (
	"bytes"
	"encoding/xml"
	"image/color"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/benoitkugler/okchart/svgpath"
	"golang.org/x/image/math/fixed"
)

// recorder logs the calls received from Draw
type recorder struct {
	strokes []recordedStroke
	images  []string
	rects   []Rect
	texts   []TextItem

	current *recordedStroke
}

type recordedStroke struct {
	options StrokeOptions
	color   color.Color
	ops     []string
}

func (r *recorder) SetupStroker() Stroker {
	r.strokes = append(r.strokes, recordedStroke{})
	r.current = &r.strokes[len(r.strokes)-1]
	return r
}

func (r *recorder) DrawImage(href string, rect Rect) {
	r.images = append(r.images, href)
	r.rects = append(r.rects, rect)
}

func (r *recorder) DrawText(text TextItem) { r.texts = append(r.texts, text) }

func (r *recorder) Clear()                             { r.current.ops = nil }
func (r *recorder) Start(a fixed.Point26_6)            { r.current.ops = append(r.current.ops, "M") }
func (r *recorder) Line(b fixed.Point26_6)             { r.current.ops = append(r.current.ops, "L") }
func (r *recorder) QuadBezier(b, c fixed.Point26_6)    { r.current.ops = append(r.current.ops, "Q") }
func (r *recorder) CubeBezier(b, c, d fixed.Point26_6) { r.current.ops = append(r.current.ops, "C") }
func (r *recorder) Stop(closeLoop bool) {
	if closeLoop {
		r.current.ops = append(r.current.ops, "Z")
	}
}
func (r *recorder) SetColor(c color.Color, opacity float64) { r.current.color = c }
func (r *recorder) SetStrokeOptions(options StrokeOptions)  { r.current.options = options }
func (r *recorder) Draw()                                   {}

func testScene() *Scene {
	var curve svgpath.Path
	curve.Start(svgpath.Point{X: 0, Y: 0})
	curve.CubeBezier(svgpath.Point{X: 1, Y: 1}, svgpath.Point{X: 2, Y: 2}, svgpath.Point{X: 3, Y: 3})

	inner := &Group{Class: "axis", Translate: svgpath.Point{X: 0, Y: 100}}
	inner.Append(
		&Line{X1: 0, Y1: 0, X2: 0, Y2: 6, Stroke: "currentColor", StrokeWidth: 1},
		&Text{X: -50, Y: -40, Content: "Metric & more", Anchor: AnchorMiddle, Rotate: -90, Fill: "#000"},
	)
	root := &Group{ID: "chart", Translate: svgpath.Point{X: 50, Y: 20}}
	root.Append(
		&Curve{Class: "line main-competitor", Path: curve, Stroke: "#1f77b4", StrokeWidth: 4},
		&Image{Class: "logo", Href: "http://example.com/a.png?x=1&y=2", X: 10, Y: 5, Width: 40, Height: 40},
		inner,
	)
	return &Scene{Width: 600, Height: 400, Root: root}
}

func TestDraw(t *testing.T) {
	var r recorder
	Draw(testScene(), &r)

	if len(r.strokes) != 2 {
		t.Fatalf("expected 2 strokes, got %d", len(r.strokes))
	}
	if got := strings.Join(r.strokes[0].ops, ""); got != "MC" {
		t.Errorf("unexpected curve operations %s", got)
	}
	if r.strokes[0].options.LineWidth != fixed.I(4) {
		t.Errorf("unexpected line width %v", r.strokes[0].options.LineWidth)
	}
	if r.strokes[0].color != (color.NRGBA{0x1f, 0x77, 0xb4, 0xff}) {
		t.Errorf("unexpected stroke color %v", r.strokes[0].color)
	}

	if len(r.images) != 1 || r.rects[0] != (Rect{X: 60, Y: 25, W: 40, H: 40}) {
		t.Errorf("unexpected images %v %v", r.images, r.rects)
	}

	if len(r.texts) != 1 {
		t.Fatalf("expected 1 text, got %d", len(r.texts))
	}
	text := r.texts[0]
	// rotate(-90) maps (-50, -40) to (-40, 50), then the groups translate by (50, 120)
	if math.Abs(text.Origin.X-10) > 1e-9 || math.Abs(text.Origin.Y-170) > 1e-9 {
		t.Errorf("unexpected text origin %v", text.Origin)
	}
	if math.Abs(text.Angle+math.Pi/2) > 1e-9 {
		t.Errorf("unexpected text angle %f", text.Angle)
	}
}

func TestDrawSkipsNaN(t *testing.T) {
	var p svgpath.Path
	p.Start(svgpath.Point{X: 0, Y: math.NaN()})
	p.Line(svgpath.Point{X: 1, Y: 1})
	scene := &Scene{Width: 10, Height: 10, Root: &Group{Children: []Element{
		&Curve{Path: p, Stroke: "red", StrokeWidth: 1},
		&Image{Href: "logo.png", X: math.NaN(), Y: 0, Width: 20, Height: 20},
	}}}
	var r recorder
	Draw(scene, &r)
	if len(r.strokes) != 0 || len(r.images) != 0 {
		t.Errorf("non finite elements should be skipped, got %d strokes, %d images", len(r.strokes), len(r.images))
	}
}

func TestWriteSVG(t *testing.T) {
	scene := testScene()
	b, err := scene.ToSVG()
	if err != nil {
		t.Fatal(err)
	}
	out := string(b)
	for _, expected := range []string{
		`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="600" height="400">`,
		`<g id="chart" transform="translate(50,20)">`,
		`d="M0,0C1,1,2,2,3,3"`,
		`style="stroke: #1f77b4; stroke-width: 4;"`,
		`xlink:href="http://example.com/a.png?x=1&amp;y=2"`,
		`transform="rotate(-90)"`,
		`text-anchor="middle"`,
		`Metric &amp; more`,
	} {
		if !strings.Contains(out, expected) {
			t.Errorf("missing %s in\n%s", expected, out)
		}
	}

	// the output is well formed
	dec := xml.NewDecoder(bytes.NewReader(b))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("invalid xml: %s", err)
		}
	}
}

func TestSceneQueries(t *testing.T) {
	scene := testScene()
	if n := len(scene.Curves()); n != 1 {
		t.Errorf("expected 1 curve, got %d", n)
	}
	if n := len(scene.Images()); n != 1 {
		t.Errorf("expected 1 image, got %d", n)
	}
	if n := len(scene.Texts()); n != 1 {
		t.Errorf("expected 1 text, got %d", n)
	}
	if g := scene.FindGroup("chart"); g == nil || g != scene.Root {
		t.Error("root group not found")
	}
	if g := scene.FindGroup("missing"); g != nil {
		t.Error("unexpected group")
	}
}
