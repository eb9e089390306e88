package cli

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/craftgraph/pkg/api"
	"github.com/matzehuels/craftgraph/pkg/editor"
	"github.com/matzehuels/craftgraph/pkg/errors"
	"github.com/matzehuels/craftgraph/pkg/observability"
)

const shutdownTimeout = 5 * time.Second

// serveCommand creates the serve command that exposes one edit session over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		opts sessionOptions
		addr string
	)

	cmd := &cobra.Command{
		Use:   "serve <recipe>",
		Short: "Serve an edit session over HTTP",
		Long: `Build the production graph for a recipe and serve it over HTTP. Edits are
posted as JSON to /edits; the graph is available as JSON, DOT and SVG, and
Prometheus metrics are exported on /metrics.`,
		Example: `  craftgraph serve inserter --book book.toml --addr :9000
  curl -X POST localhost:9000/edits -d '{"op":"expand","node":2}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts = c.resolve(cmd, opts)
			if addr == "" {
				addr = c.Config.Addr
			}
			return c.runServe(cmd.Context(), args[0], addr, opts)
		},
	}

	c.addSessionFlags(cmd, &opts)
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default "+DefaultAddr+")")

	return cmd
}

// newMetrics creates a registry with Go and process collectors and installs
// Prometheus hooks as the global edit, book and HTTP hooks.
func newMetrics() (*prometheus.Registry, *observability.PrometheusHooks) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	hooks := observability.NewPrometheusHooks(reg)
	observability.SetEditHooks(hooks)
	observability.SetBookHooks(hooks)
	observability.SetHTTPHooks(hooks)
	return reg, hooks
}

func (c *CLI) runServe(ctx context.Context, root, addr string, opts sessionOptions) error {
	reg, hooks := newMetrics()
	defer observability.Reset()

	b, err := c.loadBook(ctx, opts.book)
	if err != nil {
		return err
	}
	ed, err := c.newSession(b, root, opts, editor.WithHooks(hooks))
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.New(ed, api.WithLogger(c.Logger), api.WithGatherer(reg)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	c.Logger.Info("serving", "addr", addr, "recipe", root, "session", ed.ID())
	printNextStep("Try", "curl http://"+displayAddr(addr)+"/graph")

	select {
	case err := <-errc:
		return errors.Wrap(errors.ErrCodeInternal, err, "listen on %s", addr)
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(errors.ErrCodeInternal, err, "shutdown")
	}
	return nil
}

// displayAddr turns a listen address like ":8080" into one curl can use.
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
