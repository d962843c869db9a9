// Implements a raster backend to render chart scenes,
// by wrapping rasterx.
package svgraster

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/benoitkugler/okchart/svgdraw"
	"github.com/benoitkugler/okchart/svgicon"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
)

var _ svgdraw.Driver = (*Renderer)(nil) // assert interface conformance

// PlaceholderColor is used to frame logos which can't be loaded.
var PlaceholderColor = color.NRGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xff}

// Renderer paints into an RGBA image.
type Renderer struct {
	ctx    context.Context
	dst    *image.RGBA
	dasher *rasterx.Dasher

	// Face is used for every text, default to basicfont.Face7x13.
	// Since bitmap faces have a fixed size, TextItem.Size is ignored.
	Face font.Face

	// Logos resolves image references. If nil, a placeholder is drawn.
	Logos *svgicon.Loader
}

// NewRenderer returns a renderer drawing into `dst`.
// `ctx` bounds the loading of the logos.
func NewRenderer(ctx context.Context, dst *image.RGBA, logos *svgicon.Loader) *Renderer {
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	return &Renderer{
		ctx:    ctx,
		dst:    dst,
		dasher: rasterx.NewDasher(w, h, scanner),
		Face:   basicfont.Face7x13,
		Logos:  logos,
	}
}

// RasterScene paints the scene on a `background` filled image
// with the scene dimensions, and returns it.
// A nil background keeps the image transparent.
func RasterScene(ctx context.Context, scene *svgdraw.Scene, logos *svgicon.Loader, background color.Color) *image.RGBA {
	w, h := int(math.Ceil(scene.Width)), int(math.Ceil(scene.Height))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if background != nil {
		draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)
	}
	svgdraw.Draw(scene, NewRenderer(ctx, img, logos))
	return img
}

// WritePNG rasterizes the scene on a white background
// and writes it as PNG.
func WritePNG(ctx context.Context, out io.Writer, scene *svgdraw.Scene, logos *svgicon.Loader) error {
	img := RasterScene(ctx, scene, logos, color.White)
	return png.Encode(out, img)
}

func (rd *Renderer) SetupStroker() svgdraw.Stroker { return stroker{rd.dasher} }

type stroker struct {
	*rasterx.Dasher
}

func (st stroker) SetColor(col color.Color, opacity float64) {
	st.Dasher.SetColor(rasterx.ApplyOpacity(col, opacity))
}

var (
	joinToJoin = [...]rasterx.JoinMode{
		svgdraw.Round: rasterx.Round,
		svgdraw.Bevel: rasterx.Bevel,
		svgdraw.Miter: rasterx.Miter,
	}

	capToFunc = [...]rasterx.CapFunc{
		svgdraw.ButtCap:   rasterx.ButtCap,
		svgdraw.SquareCap: rasterx.SquareCap,
		svgdraw.RoundCap:  rasterx.RoundCap,
	}
)

func (st stroker) SetStrokeOptions(options svgdraw.StrokeOptions) {
	capFunc := capToFunc[options.Join.LineCap]
	st.Dasher.SetStroke(
		options.LineWidth, options.Join.MiterLimit, capFunc, capFunc, rasterx.FlatGap,
		joinToJoin[options.Join.LineJoin], options.Dash.Dash, options.Dash.DashOffset,
	)
}

func toFixed(x, y float64) fixed.Point26_6 {
	return fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)}
}

// DrawImage scales the logo into `rect`. When the logo can't be loaded,
// a frame is drawn instead.
func (rd *Renderer) DrawImage(href string, rect svgdraw.Rect) {
	target := image.Rect(
		int(math.Round(rect.X)), int(math.Round(rect.Y)),
		int(math.Round(rect.X+rect.W)), int(math.Round(rect.Y+rect.H)),
	)
	if target.Empty() {
		return
	}
	if rd.Logos != nil {
		logo, err := rd.Logos.Load(rd.ctx, href)
		if err == nil {
			draw.CatmullRom.Scale(rd.dst, target, logo.Image, logo.Image.Bounds(), draw.Over, nil)
			return
		}
	}
	rd.drawPlaceholder(rect)
}

func (rd *Renderer) drawPlaceholder(rect svgdraw.Rect) {
	st := rd.SetupStroker()
	st.Clear()
	st.SetStrokeOptions(svgdraw.StrokeOptions{LineWidth: fixed.I(1), Join: svgdraw.DefaultJoin})
	st.Start(toFixed(rect.X, rect.Y))
	st.Line(toFixed(rect.X+rect.W, rect.Y))
	st.Line(toFixed(rect.X+rect.W, rect.Y+rect.H))
	st.Line(toFixed(rect.X, rect.Y+rect.H))
	st.Stop(true)
	st.SetColor(PlaceholderColor, 1)
	st.Draw()
}

// DrawText draws a text line with the bitmap face. Rotated texts
// are drawn on a temporary image, which is then transformed.
func (rd *Renderer) DrawText(text svgdraw.TextItem) {
	face := rd.Face
	if face == nil {
		face = basicfont.Face7x13
	}
	width := font.MeasureString(face, text.Content)
	var shift fixed.Int26_6
	switch text.Anchor {
	case svgdraw.AnchorMiddle:
		shift = -width / 2
	case svgdraw.AnchorEnd:
		shift = -width
	}
	src := image.NewUniform(text.Color)

	if text.Angle == 0 {
		d := font.Drawer{
			Dst:  rd.dst,
			Src:  src,
			Face: face,
			Dot:  toFixed(text.Origin.X, text.Origin.Y).Add(fixed.Point26_6{X: shift}),
		}
		d.DrawString(text.Content)
		return
	}

	metrics := face.Metrics()
	ascent := metrics.Ascent.Ceil()
	tmp := image.NewRGBA(image.Rect(0, 0, width.Ceil(), ascent+metrics.Descent.Ceil()))
	d := font.Drawer{Dst: tmp, Src: src, Face: face, Dot: fixed.P(0, ascent)}
	d.DrawString(text.Content)

	// maps the temporary image so that its baseline start lands on the origin
	cos, sin := math.Cos(text.Angle), math.Sin(text.Angle)
	dx, dy := float64(shift)/64, -float64(ascent)
	s2d := f64.Aff3{
		cos, -sin, text.Origin.X + cos*dx - sin*dy,
		sin, cos, text.Origin.Y + sin*dx + cos*dy,
	}
	draw.BiLinear.Transform(rd.dst, s2d, tmp, tmp.Bounds(), draw.Over, nil)
}
