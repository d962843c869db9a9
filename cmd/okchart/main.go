// Package main provides the okchart command line tool:
// rendering charts from JSON, CSV or XLSX files, inspecting
// their series, and serving them over HTTP.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/benoitkugler/okchart/chart"
	"github.com/benoitkugler/okchart/config"
	"github.com/benoitkugler/okchart/source"

	"github.com/spf13/cobra"
)

var (
	configPath     string
	policyFlag     string
	mainCompetitor string
	sheet          string
	charsetLabel   string
	headerFlag     string
	separator      string
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "okchart",
		Short: "Render multi-series line charts highlighting one entity",
		Long: `okchart draws one curve per entity from (date, entity, metric, logo) rows,
highlighting the main entity, with a logo marking the last point of each curve.
Input files may be JSON payloads, CSV or XLSX tables.`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	flags.StringVar(&policyFlag, "policy", "", "Invalid metric policy: keep, drop or abort (default: from config)")
	flags.StringVar(&mainCompetitor, "main", "", "Main entity, overriding the payload style")
	flags.StringVar(&sheet, "sheet", "", "XLSX sheet (default: first sheet)")
	flags.StringVar(&charsetLabel, "charset", "", "CSV charset, such as latin1 (default: utf-8)")
	flags.StringVar(&headerFlag, "header", "auto", "CSV/XLSX header row: auto, yes or no")
	flags.StringVar(&separator, "separator", "", "CSV field separator (default: ,)")

	rootCmd.AddCommand(newRenderCmd(), newInspectCmd(), newServeCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig returns the configuration, with the command line overrides applied.
func loadConfig() (*config.Config, chart.Options, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, chart.Options{}, err
	}
	if policyFlag != "" {
		cfg.ParsePolicy = policyFlag
	}
	opts, err := cfg.RenderOptions()
	if err != nil {
		return nil, chart.Options{}, err
	}
	return cfg, opts, nil
}

func tableOptions() (source.TableOptions, error) {
	opts := source.TableOptions{Charset: charsetLabel, Sheet: sheet}
	switch strings.ToLower(headerFlag) {
	case "", "auto":
		opts.Header = source.HeaderAuto
	case "yes", "true":
		opts.Header = source.HeaderPresent
	case "no", "false":
		opts.Header = source.HeaderAbsent
	default:
		return opts, fmt.Errorf("invalid header mode: %s (must be auto, yes or no)", headerFlag)
	}
	if separator != "" {
		r := []rune(separator)
		if len(r) != 1 {
			return opts, fmt.Errorf("invalid separator %q: expected one character", separator)
		}
		opts.Comma = r[0]
	}
	return opts, nil
}

// loadPayload reads the input file, or a JSON payload from stdin for "-".
func loadPayload(path string) (chart.Payload, error) {
	var (
		payload chart.Payload
		err     error
	)
	if path == "-" {
		payload, err = source.DecodePayload(os.Stdin)
	} else {
		var opts source.TableOptions
		opts, err = tableOptions()
		if err != nil {
			return payload, err
		}
		payload, err = source.ReadFile(path, opts)
	}
	if err != nil {
		return payload, fmt.Errorf("reading %s: %w", path, err)
	}
	payload.Style = payload.Style.Merge(styleOverride())
	return payload, nil
}

// styleOverride returns the style given on the command line, which wins
// over the style of the payloads, or nil.
func styleOverride() *chart.StyleInput {
	if mainCompetitor == "" {
		return nil
	}
	return &chart.StyleInput{MainCompetitor: chart.Some(mainCompetitor)}
}
