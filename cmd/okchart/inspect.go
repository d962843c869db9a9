package main

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/benoitkugler/okchart/chart"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [input]",
		Short: "Print the series and parsing issues of a chart",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspect,
	}
}

func runInspect(cmd *cobra.Command, args []string) error {
	_, opts, err := loadConfig()
	if err != nil {
		return err
	}
	payload, err := loadPayload(args[0])
	if err != nil {
		return err
	}
	_, report, err := chart.Render(payload, opts)
	if err != nil {
		return fmt.Errorf("rendering failed: %w", err)
	}
	writeReport(cmd.OutOrStdout(), report, opts.Layout)
	return nil
}

func formatMetric(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

// writeReport prints the style, the domains and one row per series.
func writeReport(w io.Writer, report chart.Report, layout chart.Layout) {
	fmt.Fprintf(w, "main entity: %q\n", report.Style.MainEntityID)
	fmt.Fprintf(w, "records: %d\n", len(report.Records))
	x, y := report.Scales.X, report.Scales.Y
	fmt.Fprintf(w, "dates: %s to %s\n", x.D0.Format("2006-01-02 15:04"), x.D1.Format("2006-01-02 15:04"))
	fmt.Fprintf(w, "metrics: %s to %s\n\n", formatMetric(y.D0), formatMetric(y.D1))

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"entity", "main", "records", "duplicates", "last date", "last metric", "logo", "overshoot"})
	for i, g := range report.Groups {
		last := g.Last()
		overshoot := false
		if i < len(report.Extents) {
			overshoot = report.Extents[i].Overshoots(layout)
		}
		t.AppendRow(table.Row{
			g.EntityID, yesNo(g.IsMain), len(g.Records), g.Duplicates(),
			last.Date, formatMetric(last.Metric), last.LogoURL, yesNo(overshoot),
		})
	}
	t.Render()

	if len(report.Issues) == 0 {
		return
	}
	fmt.Fprintln(w)
	t = table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"row", "token", "issue"})
	for _, issue := range report.Issues {
		t.AppendRow(table.Row{issue.Row, issue.Token, issue.Err})
	}
	t.Render()
}
