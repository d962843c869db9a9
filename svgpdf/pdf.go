// Implements a PDF backend to render chart scenes,
// by wrapping github.com/jung-kurt/gofpdf.
package svgpdf

import (
	"bytes"
	"context"
	"image/color"
	"image/png"
	"io"
	"log"
	"math"

	"github.com/benoitkugler/okchart/svgdraw"
	"github.com/benoitkugler/okchart/svgicon"
	"github.com/jung-kurt/gofpdf"
	"golang.org/x/image/math/fixed"
)

// assert interface conformance
var (
	_ svgdraw.Driver  = (*Renderer)(nil)
	_ svgdraw.Stroker = pather{}
)

// FontFamily is the core font used for texts.
const FontFamily = "Helvetica"

// Renderer draws on the current page of a PDF document.
// One user space unit is one scene pixel.
type Renderer struct {
	ctx context.Context
	pdf *gofpdf.Fpdf

	// Logos resolves image references. If nil, a placeholder is drawn.
	Logos *svgicon.Loader

	translate func(string) string // UTF-8 to the core font encoding
	images    map[string]bool     // registered logos
}

// implements the path commands and the stroking operation
type pather struct {
	pdf *gofpdf.Fpdf
}

// NewRenderer return a renderer which will
// write to the given `pdf`.
func NewRenderer(ctx context.Context, pdf *gofpdf.Fpdf, logos *svgicon.Loader) *Renderer {
	return &Renderer{
		ctx:       ctx,
		pdf:       pdf,
		Logos:     logos,
		translate: pdf.UnicodeTranslatorFromDescriptor(""),
		images:    make(map[string]bool),
	}
}

// NewDocument returns a one page document, sized after the scene.
func NewDocument(scene *svgdraw.Scene) *gofpdf.Fpdf {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: scene.Width, Ht: scene.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	return pdf
}

// WritePDF renders the scene as a one page PDF document.
func WritePDF(ctx context.Context, out io.Writer, scene *svgdraw.Scene, logos *svgicon.Loader) error {
	pdf := NewDocument(scene)
	svgdraw.Draw(scene, NewRenderer(ctx, pdf, logos))
	return pdf.Output(out)
}

func fixedTof(a fixed.Point26_6) (float64, float64) {
	return float64(a.X) / 64, float64(a.Y) / 64
}

func (rd *Renderer) SetupStroker() svgdraw.Stroker { return pather{pdf: rd.pdf} }

func (p pather) Clear() {}

func (p pather) Start(a fixed.Point26_6) {
	p.pdf.MoveTo(fixedTof(a))
}

func (p pather) Line(b fixed.Point26_6) {
	p.pdf.LineTo(fixedTof(b))
}

func (p pather) QuadBezier(b fixed.Point26_6, c fixed.Point26_6) {
	cx, cy := fixedTof(b)
	x, y := fixedTof(c)
	p.pdf.CurveTo(cx, cy, x, y)
}

func (p pather) CubeBezier(b fixed.Point26_6, c fixed.Point26_6, d fixed.Point26_6) {
	cx0, cy0 := fixedTof(b)
	cx1, cy1 := fixedTof(c)
	x, y := fixedTof(d)
	p.pdf.CurveBezierCubicTo(cx0, cy0, cx1, cy1, x, y)
}

func (p pather) Stop(closeLoop bool) {
	if closeLoop {
		p.pdf.ClosePath()
	}
}

func (p pather) SetColor(col color.Color, opacity float64) {
	c := color.NRGBAModel.Convert(col).(color.NRGBA)
	p.pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
	p.pdf.SetAlpha(opacity*float64(c.A)/255, "")
}

var (
	joinStyles = [...]string{
		svgdraw.Round: "round",
		svgdraw.Bevel: "bevel",
		svgdraw.Miter: "miter",
	}
	capStyles = [...]string{
		svgdraw.ButtCap:   "butt",
		svgdraw.SquareCap: "square",
		svgdraw.RoundCap:  "round",
	}
)

func (p pather) SetStrokeOptions(options svgdraw.StrokeOptions) {
	p.pdf.SetLineWidth(float64(options.LineWidth) / 64)
	p.pdf.SetLineJoinStyle(joinStyles[options.Join.LineJoin])
	p.pdf.SetLineCapStyle(capStyles[options.Join.LineCap])
	p.pdf.SetDashPattern(options.Dash.Dash, options.Dash.DashOffset)
}

func (p pather) Draw() {
	p.pdf.DrawPath("D")
}

// DrawImage embeds the logo, registered once per URL.
// When the logo can't be loaded, a frame is drawn instead.
func (rd *Renderer) DrawImage(href string, rect svgdraw.Rect) {
	if rd.Logos != nil && rd.registerLogo(href) {
		rd.pdf.SetAlpha(1, "")
		rd.pdf.ImageOptions(href, rect.X, rect.Y, rect.W, rect.H, false, gofpdf.ImageOptions{}, 0, "")
		return
	}
	rd.pdf.SetAlpha(1, "")
	rd.pdf.SetLineWidth(1)
	rd.pdf.SetDashPattern(nil, 0)
	rd.pdf.SetDrawColor(0x99, 0x99, 0x99)
	rd.pdf.Rect(rect.X, rect.Y, rect.W, rect.H, "D")
}

func (rd *Renderer) registerLogo(href string) bool {
	if ok, seen := rd.images[href]; seen {
		return ok
	}
	rd.images[href] = false

	logo, err := rd.Logos.Load(rd.ctx, href)
	if err != nil {
		return false // already logged by the loader
	}
	// logos are normalized to PNG, since the other formats
	// supported by the loader can't be embedded as is
	var buf bytes.Buffer
	if err := png.Encode(&buf, logo.Image); err != nil {
		log.Printf("svgpdf: encoding logo %q: %s", href, err)
		return false
	}
	info := rd.pdf.RegisterImageOptionsReader(href, gofpdf.ImageOptions{ImageType: "PNG"}, &buf)
	if info == nil || rd.pdf.Err() {
		log.Printf("svgpdf: registering logo %q: %s", href, rd.pdf.Error())
		rd.pdf.ClearError()
		return false
	}
	rd.images[href] = true
	return true
}

// DrawText writes the text with the core font. Rotated texts are
// written in a transformed graphic state.
func (rd *Renderer) DrawText(text svgdraw.TextItem) {
	content := rd.translate(text.Content)
	rd.pdf.SetFont(FontFamily, "", text.Size)
	c := color.NRGBAModel.Convert(text.Color).(color.NRGBA)
	rd.pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
	rd.pdf.SetAlpha(float64(c.A)/255, "")

	x := text.Origin.X
	switch text.Anchor {
	case svgdraw.AnchorMiddle:
		x -= rd.pdf.GetStringWidth(content) / 2
	case svgdraw.AnchorEnd:
		x -= rd.pdf.GetStringWidth(content)
	}

	if text.Angle == 0 {
		rd.pdf.Text(x, text.Origin.Y, content)
		return
	}
	// PDF angles are counter clockwise
	rd.pdf.TransformBegin()
	rd.pdf.TransformRotate(-text.Angle*180/math.Pi, text.Origin.X, text.Origin.Y)
	rd.pdf.Text(x, text.Origin.Y, content)
	rd.pdf.TransformEnd()
}
