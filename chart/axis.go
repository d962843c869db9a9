package chart

import (
	"github.com/benoitkugler/okchart/svgdraw"
	"github.com/benoitkugler/okchart/svgpath"
)

// axis geometry
const (
	tickSize     = 6
	tickPadding  = 3
	crispOffset  = 0.5 // aligns 1px strokes on the pixel grid
	axisFontSize = 10
	axisFont     = "sans-serif"
	axisColor    = "currentColor"
	labelColor   = "#000"
	labelOffset  = 40
)

func axisText(content string) *svgdraw.Text {
	return &svgdraw.Text{
		Content:    content,
		Anchor:     svgdraw.AnchorMiddle,
		Fill:       axisColor,
		FontSize:   axisFontSize,
		FontFamily: axisFont,
	}
}

func domainCurve(path svgpath.Path) *svgdraw.Curve {
	return &svgdraw.Curve{Class: "domain", Path: path, Stroke: axisColor, StrokeWidth: 1}
}

// RenderAxes returns the bottom (time) and left (metric) axes,
// with their ticks and static labels.
func RenderAxes(scales Scales, layout Layout) []svgdraw.Element {
	return []svgdraw.Element{bottomAxis(scales.X, layout), leftAxis(scales.Y, layout)}
}

func bottomAxis(x TimeScale, layout Layout) *svgdraw.Group {
	w, h := layout.PlotWidth(), layout.PlotHeight()
	axis := &svgdraw.Group{ID: "x-axis", Class: "axis axis-bottom", Translate: svgpath.Point{Y: h}}

	r0, r1 := x.R0+crispOffset, x.R1+crispOffset
	axis.Append(domainCurve(svgpath.Path{
		svgpath.MoveTo{X: r0, Y: tickSize},
		svgpath.LineTo{X: r0, Y: crispOffset},
		svgpath.LineTo{X: r1, Y: crispOffset},
		svgpath.LineTo{X: r1, Y: tickSize},
	}))

	for _, t := range x.Ticks(layout.tickCount()) {
		label := axisText(FormatTime(t))
		label.Y = tickSize + tickPadding
		label.Dy = 0.71
		tick := &svgdraw.Group{Class: "tick", Translate: svgpath.Point{X: x.Apply(t) + crispOffset}}
		tick.Append(&svgdraw.Line{Y2: tickSize, Stroke: axisColor, StrokeWidth: 1}, label)
		axis.Append(tick)
	}

	title := axisText(layout.XLabel)
	title.Class = "axis-label"
	title.X, title.Y = w/2, labelOffset
	title.Fill = labelColor
	return axis.Append(title)
}

func leftAxis(y LinearScale, layout Layout) *svgdraw.Group {
	h := layout.PlotHeight()
	axis := &svgdraw.Group{ID: "y-axis", Class: "axis axis-left"}

	r0, r1 := y.R0+crispOffset, y.R1+crispOffset
	axis.Append(domainCurve(svgpath.Path{
		svgpath.MoveTo{X: -tickSize, Y: r0},
		svgpath.LineTo{X: crispOffset, Y: r0},
		svgpath.LineTo{X: crispOffset, Y: r1},
		svgpath.LineTo{X: -tickSize, Y: r1},
	}))

	count := layout.tickCount()
	format := y.TickFormat(count)
	for _, v := range y.Ticks(count) {
		label := axisText(format(v))
		label.X = -(tickSize + tickPadding)
		label.Dy = 0.32
		label.Anchor = svgdraw.AnchorEnd
		tick := &svgdraw.Group{Class: "tick", Translate: svgpath.Point{Y: y.Apply(v) + crispOffset}}
		tick.Append(&svgdraw.Line{X2: -tickSize, Stroke: axisColor, StrokeWidth: 1}, label)
		axis.Append(tick)
	}

	title := axisText(layout.YLabel)
	title.Class = "axis-label"
	title.X, title.Y = -h/2, -labelOffset
	title.Rotate = -90
	title.Fill = labelColor
	return axis.Append(title)
}
