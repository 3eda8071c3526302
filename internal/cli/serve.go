package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/structio/internal/server"
	"github.com/matzehuels/structio/pkg/store"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		maxBody int64
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the codec over HTTP",
		Long: `Serve decode, encode, inspect and graph endpoints plus a structure archive.

The archive backend is chosen by [store] in the config file: "file" (default,
under $XDG_DATA_HOME/structio/structures) or "mongo". Prometheus metrics are
exposed on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.config().Server
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("max-body") {
				cfg.MaxBody = maxBody
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().Int64Var(&maxBody, "max-body", 0, "maximum request body in bytes")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg ServerConfig) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	st, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	server.NewMetrics(prometheus.DefaultRegisterer).Install()

	srv := server.New(runner, st, server.Config{
		Addr:    cfg.Addr,
		MaxBody: cfg.MaxBody,
		Logger:  c.Logger,
	})
	printInfo("Serving on %s", StyleHighlight.Render(cfg.Addr))
	return srv.ListenAndServe(ctx)
}

func (c *CLI) newStore(ctx context.Context) (store.Store, error) {
	cfg := c.config().Store
	switch cfg.Backend {
	case "mongo":
		return store.NewMongoStore(ctx, store.MongoConfig{URI: cfg.MongoURI, Database: cfg.Database})
	case "", "file":
		dir := cfg.Dir
		if dir == "" {
			d, err := dataDir()
			if err != nil {
				return nil, fmt.Errorf("store directory: %w", err)
			}
			dir = filepath.Join(d, "structures")
		}
		c.Logger.Debug("file store", "dir", dir)
		return store.NewFileStore(dir)
	}
	return nil, fmt.Errorf("unknown store backend %q (want file or mongo)", cfg.Backend)
}
