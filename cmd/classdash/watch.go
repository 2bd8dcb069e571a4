// ABOUTME: CLI command for a live terminal dashboard.
// ABOUTME: Redraws the charts every time the Syncer finishes a refresh.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/classdash/internal/sync"
	"github.com/spf13/cobra"
)

var (
	watchInterval time.Duration
	watchNoClear  bool
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"w"},
	Short:   "Live dashboard that redraws on every change",
	Long: `Subscribe to changes on all three tables and redraw the dashboard after
every refresh. Press Ctrl-C to stop.

Changes made in this process, through Postgres LISTEN/NOTIFY, or through a
Charm sync trigger a redraw. Writes from another process on a local SQLite
file do not notify, so pass --interval to also poll.

EXAMPLES:

  classdash watch                               # Redraw on notifications
  classdash watch --interval 10s                # Also refresh every 10 seconds
  classdash --backend postgres watch            # Follow a shared database`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext(cmd.Context())
		defer stop()

		syncer := sync.New(repo, sync.WithLogger(logger))
		updates, cancel := syncer.Watch()
		defer cancel()

		if err := syncer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start sync: %w", err)
		}
		defer syncer.Close()

		startCharmSync(ctx, watchInterval)

		var tick <-chan time.Time
		if watchInterval > 0 {
			ticker := time.NewTicker(watchInterval)
			defer ticker.Stop()
			tick = ticker.C
		}

		for {
			select {
			case <-ctx.Done():
				fmt.Println()
				return nil
			case <-tick:
				_ = syncer.Refresh(ctx)
			case state, ok := <-updates:
				if !ok {
					return nil
				}
				drawWatch(state)
			}
		}
	},
}

func drawWatch(state sync.State) {
	if !watchNoClear {
		fmt.Print("\033[H\033[2J")
	}
	faintColor.Printf("classdash  %s", time.Now().Format(time.Kitchen))
	if state.Loading {
		faintColor.Print("  refreshing...")
	}
	fmt.Println()
	if state.Err != nil {
		color.Red("✗ %v", state.Err)
	}
	fmt.Println()
	renderChart(os.Stdout, state.ChartData())
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "also refresh on this interval (0 disables)")
	watchCmd.Flags().BoolVar(&watchNoClear, "no-clear", false, "append frames instead of clearing the screen")
	rootCmd.AddCommand(watchCmd)
}
