// Command neo-api serves NEO orbital elements to the front-end and can run a
// single NeoWs aggregation from the command line.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sternrassler/neo-orbit-api/internal/api"
	"github.com/Sternrassler/neo-orbit-api/internal/config"
	"github.com/Sternrassler/neo-orbit-api/pkg/client"
	"github.com/Sternrassler/neo-orbit-api/pkg/logging"
	"github.com/Sternrassler/neo-orbit-api/pkg/pagination"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const defaultConfigPath = "config.yml"

// rootOptions holds the persistent flags and the configuration loaded from
// them before any subcommand runs.
type rootOptions struct {
	configPath string
	envFile    string
	cfg        *config.Config
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "neo-api",
		Short: "HTTP API exposing near-earth-object orbital elements",
		Long: `neo-api normalizes asteroid orbital elements from a local CSV catalog,
a static seed list or the NASA NeoWs browse API into one JSON shape.

Configuration is read from an optional YAML file, then overridden by
environment variables (PORT, NASA_API_KEY, NEOWS_BASE_URL, NEOWS_TIMEOUT,
CSV_PATH, LOG_LEVEL, LOG_PRETTY, LOG_FILE, USER_AGENT). A .env file is
loaded first when present.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfigPath, "Path to YAML configuration file")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Path to .env file")

	root.AddCommand(newServeCmd(opts), newFetchCmd(opts))
	return root
}

// load reads .env, the configuration file and the environment, then sets up
// the global logger.
func (o *rootOptions) load(cmd *cobra.Command) error {
	if err := godotenv.Load(o.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", o.envFile, err)
	}

	path := o.configPath
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			path = ""
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	o.cfg = cfg

	logging.Setup(cfg.LoggingConfig())
	return nil
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				opts.cfg.Server.Addr = addr
			}

			agg, err := newAggregator(opts.cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, api.NewServer(opts.cfg, agg), opts.cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr and PORT)")
	return cmd
}

// serve runs srv until ctx is done or the listener fails.
func serve(ctx context.Context, srv *api.Server, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func newFetchCmd(opts *rootOptions) *cobra.Command {
	req := pagination.DefaultRequest()

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch NeoWs pages once and print the normalized records as JSON",
		Long: `Fetch runs the same aggregation as GET /api/neos and writes the
{count, items} result to stdout.

Example:
  neo-api fetch --page 0 --size 20 --pages 3 --sleep-ms 500`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := req.Validate(); err != nil {
				return err
			}

			agg, err := newAggregator(opts.cfg)
			if err != nil {
				return err
			}

			page, err := agg.Collect(cmd.Context(), req)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(page)
		},
	}

	cmd.Flags().IntVar(&req.Page, "page", req.Page, "First page index")
	cmd.Flags().IntVar(&req.Size, "size", req.Size, "Page size")
	cmd.Flags().IntVar(&req.Pages, "pages", req.Pages, "Number of consecutive pages")
	cmd.Flags().IntVar(&req.SleepMS, "sleep-ms", req.SleepMS, "Pause between page fetches in milliseconds")
	return cmd
}

func newAggregator(cfg *config.Config) (*pagination.Aggregator, error) {
	c, err := client.New(cfg.ClientConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create NeoWs client: %w", err)
	}
	return pagination.NewAggregator(c), nil
}
