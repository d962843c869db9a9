package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/benoitkugler/okchart/chart"
	"github.com/benoitkugler/okchart/svgdraw"
	"github.com/benoitkugler/okchart/svgicon"
	"github.com/benoitkugler/okchart/svgpdf"
	"github.com/benoitkugler/okchart/svgraster"

	"github.com/spf13/cobra"
)

var outputPath string

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render [input]",
		Short: "Render a chart as SVG, PNG or PDF",
		Long: `Render reads rows from a .json, .csv, .tsv or .xlsx file ("-" for a JSON
payload on stdin) and writes the chart. The output format is chosen from the
extension of the output file: .svg, .png or .pdf. Without output, SVG is written
to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: runRender,
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: SVG on stdout)")
	return cmd
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, opts, err := loadConfig()
	if err != nil {
		return err
	}
	payload, err := loadPayload(args[0])
	if err != nil {
		return err
	}
	scene, report, err := chart.Render(payload, opts)
	if err != nil {
		return fmt.Errorf("rendering failed: %w", err)
	}
	for _, issue := range report.Issues {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", issue)
	}

	logos := svgicon.NewLoader(nil, cfg.Logos)
	if outputPath == "" {
		return writeChart(cmd.Context(), cmd.OutOrStdout(), ".svg", scene, logos)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := writeChart(cmd.Context(), f, filepath.Ext(outputPath), scene, logos); err != nil {
		f.Close()
		return fmt.Errorf("failed to write output: %w", err)
	}
	return f.Close()
}

// writeChart encodes the scene in the format given by `ext`.
func writeChart(ctx context.Context, out io.Writer, ext string, scene *svgdraw.Scene, logos *svgicon.Loader) error {
	if ctx == nil {
		ctx = context.Background()
	}
	switch strings.ToLower(ext) {
	case ".svg":
		return svgdraw.WriteSVG(out, scene)
	case ".png":
		return svgraster.WritePNG(ctx, out, scene, logos)
	case ".pdf":
		return svgpdf.WritePDF(ctx, out, scene, logos)
	default:
		return fmt.Errorf("unsupported output format %q (must be .svg, .png or .pdf)", ext)
	}
}
