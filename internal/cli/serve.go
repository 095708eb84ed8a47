package cli

import (
	"context"
	"errors"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mutuals/internal/server"
	"github.com/matzehuels/mutuals/pkg/observability/prom"
)

// serveCommand creates the serve command for the interactive viewer.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags buildFlags
		addr  string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve [snapshot.json|mongodb://...]",
		Short: "Serve the interactive graph viewer",
		Long: `Serve the interactive graph viewer.

Open the printed address in a browser and tap any node to highlight what it
touches. Each browser tab is an independent view. With --watch, edits to a
snapshot file are picked up live and every view returns to its idle state.

Prometheus metrics are exposed at /metrics.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Server.Addr
			}
			if !cmd.Flags().Changed("watch") {
				watch = c.Config.Server.Watch
			}
			return c.runServe(cmd.Context(), args[0], flags, addr, watch)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8080)")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload when the snapshot file changes")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, loc string, flags buildFlags, addr string, watch bool) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom.New(reg).Install()

	runner, closeFn := c.newRunner(ctx, flags.noCache)
	defer closeFn()

	srv := server.New(runner, c.Logger, server.Options{
		Addr:     addr,
		Source:   c.openSource(loc),
		Build:    c.buildOptions(flags),
		Watch:    watch,
		Gatherer: reg,
	})

	p := newPrinter(os.Stderr)
	p.info("Serving %s", StyleValue.Render(loc))
	p.info("Open %s", StyleHighlight.Render("http://"+addr))

	err := srv.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
