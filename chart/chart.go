// Package chart builds a multi-series line chart from tabular
// observations (date, entity, metric, logo).
//
// The pipeline is pure: Render parses the rows, resolves the style,
// computes the scales and returns a fresh svgdraw.Scene, which may then
// be encoded as SVG or painted by one of the drawing backends.
package chart

import (
	"fmt"

	"github.com/benoitkugler/okchart/svgdraw"
	"github.com/benoitkugler/okchart/svgpath"
)

// Margins around the plot area, in pixels.
type Margins struct {
	Top    float64 `yaml:"top"`
	Right  float64 `yaml:"right"`
	Bottom float64 `yaml:"bottom"`
	Left   float64 `yaml:"left"`
}

// Layout describes the fixed geometry of a chart.
type Layout struct {
	Width   float64 `yaml:"width"`
	Height  float64 `yaml:"height"`
	Margins Margins `yaml:"margins"`

	// Pad is added below the minimum and above the maximum metric.
	Pad float64 `yaml:"pad"`

	XLabel string `yaml:"x_label"`
	YLabel string `yaml:"y_label"`

	// TickCount is the approximate number of ticks per axis.
	// Zero means DefaultTickCount.
	TickCount int `yaml:"tick_count"`

	// SortPoints sorts each series by date before drawing it.
	// By default, points are drawn in input order.
	SortPoints bool `yaml:"sort_points"`
}

// DefaultLayout returns a 600x400 chart with a 470x330 plot area.
func DefaultLayout() Layout {
	return Layout{
		Width:   600,
		Height:  400,
		Margins: Margins{Top: 20, Right: 80, Bottom: 50, Left: 50},
		Pad:     100,
		XLabel:  "Date",
		YLabel:  "Metric",
	}
}

// PlotWidth is the width of the area inside the margins.
func (l Layout) PlotWidth() float64 { return l.Width - l.Margins.Left - l.Margins.Right }

// PlotHeight is the height of the area inside the margins.
func (l Layout) PlotHeight() float64 { return l.Height - l.Margins.Top - l.Margins.Bottom }

func (l Layout) tickCount() int {
	if l.TickCount <= 0 {
		return DefaultTickCount
	}
	return l.TickCount
}

// Validate checks that the plot area is not empty.
func (l Layout) Validate() error {
	if l.PlotWidth() <= 0 || l.PlotHeight() <= 0 {
		return fmt.Errorf("invalid layout: empty plot area (%gx%g)", l.PlotWidth(), l.PlotHeight())
	}
	if l.Pad < 0 {
		return fmt.Errorf("invalid layout: negative pad %g", l.Pad)
	}
	return nil
}

// Payload is one delivery of data and style from the host.
type Payload struct {
	Rows  []Row
	Style *StyleInput
}

// Options controls how payloads are rendered.
type Options struct {
	Layout Layout
	Policy ParsePolicy
	// Style is applied below the payload style: options present
	// in the payload win.
	Style *StyleInput
}

// DefaultOptions returns the default layout, keeping invalid metrics.
func DefaultOptions() Options {
	return Options{Layout: DefaultLayout(), Policy: KeepInvalid}
}

// Report describes the outcome of a rendering,
// for diagnostic purposes.
type Report struct {
	Records []Record
	Issues  []*ParseError
	Style   StyleConfig
	Groups  []EntityGroup
	Scales  Scales

	// Extents holds, for each group, the exact bounding box of its curve
	// in plot coordinates. It is false for non finite curves.
	Extents []Extent
}

// Extent is the area covered by a curve.
type Extent struct {
	Box svgpath.Rect
	OK  bool
}

// Overshoots returns true if the curve leaves the plot area,
// which happens with smoothing.
func (e Extent) Overshoots(layout Layout) bool {
	plot := svgpath.Rect{Max: svgpath.Point{X: layout.PlotWidth(), Y: layout.PlotHeight()}}
	return e.OK && !plot.Contains(e.Box)
}

// Render builds the chart scene for the payload. The returned scene
// is new and shares nothing with previous calls.
// Errors are ErrNoRecords, *DateError, or *ParseError when
// the policy is AbortOnInvalid.
func Render(payload Payload, opts Options) (*svgdraw.Scene, Report, error) {
	var report Report
	records, issues, err := ParseRows(payload.Rows, opts.Policy)
	if err != nil {
		return nil, report, err
	}
	report.Records, report.Issues = records, issues

	report.Style = ResolveStyle(opts.Style.Merge(payload.Style))

	layout := opts.Layout
	report.Scales, err = BuildScales(records, layout.PlotWidth(), layout.PlotHeight(), layout.Pad)
	if err != nil {
		return nil, report, err
	}

	report.Groups = GroupRecords(records, report.Style.MainEntityID)
	if layout.SortPoints {
		for i, g := range report.Groups {
			report.Groups[i] = g.SortByDate()
		}
	}

	root := &svgdraw.Group{
		ID:        "chart",
		Translate: svgpath.Point{X: layout.Margins.Left, Y: layout.Margins.Top},
	}
	series := RenderSeries(report.Groups, report.Style, report.Scales)
	for _, elem := range series {
		if curve, ok := elem.(*svgdraw.Curve); ok {
			box, ok := curve.Path.Bounds()
			report.Extents = append(report.Extents, Extent{Box: box, OK: ok})
		}
	}
	root.Append(series...)
	root.Append(RenderAxes(report.Scales, layout)...)

	return &svgdraw.Scene{Width: layout.Width, Height: layout.Height, Root: root}, report, nil
}
