// ABOUTME: CLI command for rendering the dashboard once.
// ABOUTME: Loads all three tables, seeding if empty, and draws terminal charts.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/harperreed/classdash/internal/sync"
	"github.com/spf13/cobra"
)

var (
	showNoSeed bool
	showJSON   bool
)

var showCmd = &cobra.Command{
	Use:     "show",
	Aliases: []string{"dashboard"},
	Short:   "Render the dashboard charts",
	Long: `Load the dashboard and render its charts in the terminal.

When the performance table is empty, default data is seeded first, the same
way the live dashboard does it. Use --no-seed to render what is there.

EXAMPLES:

  classdash show                # Charts and summary
  classdash show --no-seed      # Never write default rows
  classdash show --json         # Chart-ready JSON for other tools`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := []sync.Option{sync.WithLogger(logger)}
		if showNoSeed {
			opts = append(opts, sync.WithSeeder(nil))
		}

		state, err := sync.Load(cmd.Context(), repo, opts...)
		if err != nil {
			return fmt.Errorf("failed to load dashboard: %w", err)
		}

		chart := state.ChartData()
		if showJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(chart)
		}

		renderChart(os.Stdout, chart)
		return nil
	},
}

func init() {
	showCmd.Flags().BoolVar(&showNoSeed, "no-seed", false, "do not seed an empty dashboard")
	showCmd.Flags().BoolVar(&showJSON, "json", false, "print chart data as JSON")
	rootCmd.AddCommand(showCmd)
}
