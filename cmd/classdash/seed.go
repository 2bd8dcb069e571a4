// ABOUTME: CLI command for seeding default dashboard data.
// ABOUTME: Only seeds when the performance table is empty.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/classdash/internal/seed"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill an empty dashboard with default data",
	Long: `Insert six months of performance data, four subjects, and four
distribution categories.

Seeding only runs when the performance table is empty. Subject and
distribution tables are not checked. Inserts are not transactional: if one
table fails, rows already written stay in place.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := seed.Seed(cmd.Context(), repo)
		if err != nil {
			return fmt.Errorf("failed to seed: %w", err)
		}

		if res.Seeded {
			color.Green("✓ %s", res.Message)
			fmt.Printf("  %d months, %d subjects, %d categories\n",
				len(seed.DefaultPerformance()), len(seed.DefaultSubjects()), len(seed.DefaultDistribution()))
		} else {
			color.Yellow("%s", res.Message)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
