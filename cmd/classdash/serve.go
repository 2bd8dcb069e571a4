// ABOUTME: CLI command for the HTTP and WebSocket dashboard feed.
// ABOUTME: Runs a Syncer and serves its snapshot until interrupted.
package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/classdash/internal/sync"
	"github.com/harperreed/classdash/internal/web"
	"github.com/spf13/cobra"
)

var (
	serveAddr         string
	serveSyncInterval time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard over HTTP and WebSocket",
	Long: `Start the HTTP feed for a dashboard front end.

ENDPOINTS:

  GET    /api/dashboard                 Snapshot with loading and error state
  GET    /api/dashboard/chart           Chart-ready arrays
  GET    /api/dashboard/summary         Headline numbers
  POST   /api/dashboard/seed            Seed defaults if empty
  POST   /api/dashboard/refresh         Force a refetch
  GET    /api/tables/:table             Rows of one table
  POST   /api/tables/:table             Add a row
  PUT    /api/tables/:table/:id         Update a row
  DELETE /api/tables/:table             Clear a table
  DELETE /api/tables/:table/:id         Delete a row
  GET    /ws/dashboard                  Chart data pushed after every refresh

The listen address comes from --addr, then CLASSDASH_LISTEN_ADDR, then
listen_addr in the config file, and defaults to :8080.

With the charm backend, --sync-interval pulls remote changes periodically.

EXAMPLES:

  classdash serve
  classdash serve --addr 127.0.0.1:9000
  classdash --backend charm serve --sync-interval 1m`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext(cmd.Context())
		defer stop()

		addr := serveAddr
		if addr == "" {
			addr = cfg.GetListenAddr()
		}

		syncer := sync.New(repo, sync.WithLogger(logger))
		if err := syncer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start sync: %w", err)
		}
		defer syncer.Close()

		startCharmSync(ctx, serveSyncInterval)

		color.Green("✓ Serving dashboard on %s", addr)
		return web.NewServer(repo, syncer, logger).Run(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default :8080)")
	serveCmd.Flags().DurationVar(&serveSyncInterval, "sync-interval", 0, "charm backend: pull remote changes on this interval")
	rootCmd.AddCommand(serveCmd)
}
