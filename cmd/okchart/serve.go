package main

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/benoitkugler/okchart/chart"
	"github.com/benoitkugler/okchart/host"
	"github.com/benoitkugler/okchart/source"
	"github.com/benoitkugler/okchart/svgicon"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var (
	addr      string
	fromStdin bool
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [input]",
		Short: "Serve the chart over HTTP",
		Long: `Serve mounts the chart of the optional input file, and accepts new payloads
on POST /api/v1/payload. With --stdin, a stream of JSON payloads is also read
from stdin, and each one replaces the mounted chart.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runServe,
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: from config)")
	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "Read a stream of JSON payloads from stdin")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, opts, err := loadConfig()
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if cfg.Server.Release {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	coordinator := host.NewCoordinator(new(host.Mount), opts)
	coordinator.Override = styleOverride()
	sub := host.Subscribe(func(p chart.Payload) { _ = coordinator.Deliver(p) }, 1)
	defer sub.Close()

	if len(args) == 1 {
		payload, err := loadPayload(args[0])
		if err != nil {
			return err
		}
		if err := sub.Publish(ctx, payload); err != nil {
			return err
		}
	}
	if fromStdin {
		go readPayloads(ctx, os.Stdin, sub)
	}

	server := host.NewServer(coordinator, svgicon.NewLoader(nil, cfg.Logos), cfg.Server)
	return server.ListenAndServe(ctx)
}

// readPayloads publishes every payload of the stream, until EOF.
func readPayloads(ctx context.Context, r io.Reader, sub *host.Subscription) {
	dec := source.NewDecoder(r)
	for {
		payload, err := dec.Decode()
		if err == io.EOF {
			return
		}
		if err != nil {
			log.Printf("okchart: invalid payload on stdin: %s", err)
			return
		}
		if err := sub.Publish(ctx, payload); err != nil {
			if !errors.Is(err, host.ErrClosed) && !errors.Is(err, context.Canceled) {
				log.Printf("okchart: %s", err)
			}
			return
		}
	}
}
