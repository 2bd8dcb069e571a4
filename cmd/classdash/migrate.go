// ABOUTME: CLI command for copying dashboard data between backends.
// ABOUTME: Reads every row from the configured backend and writes it to another.
package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/classdash/internal/config"
	"github.com/harperreed/classdash/internal/models"
	"github.com/harperreed/classdash/internal/storage"
	"github.com/spf13/cobra"
)

var (
	migrateTo         string
	migrateToDataDir  string
	migrateToDatabase string
	migrateDryRun     bool
	migrateForce      bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy dashboard data to another backend",
	Long: `Copy all three tables from the configured backend to another one.

The source is whatever --backend, the config file, or the environment selects.
The destination is chosen with --to and its own location flags. Rows receive
new IDs in the destination, in the same order.

IMPORTANT:

  - The destination should be empty; pass --force to append anyway
  - Run with --dry-run first to see what would be copied
  - The source is never modified

EXAMPLES:

  classdash migrate --to postgres --to-database-url postgres://localhost/classdash
  classdash --backend charm migrate --to sqlite --dry-run
  classdash migrate --to sqlite --to-data-dir ./snapshot`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		dstCfg := migrateTarget(cfg)
		if dstCfg.GetBackend() == cfg.GetBackend() && sameLocation(cfg, dstCfg) {
			return fmt.Errorf("source and destination are the same %s backend", cfg.GetBackend())
		}

		counts, err := tableCounts(ctx, repo)
		if err != nil {
			return err
		}

		fmt.Printf("Source (%s):\n", cfg.GetBackend())
		for _, table := range models.AllTables {
			fmt.Printf("  %-20s %d\n", table.Label(), counts[table])
		}
		fmt.Println()

		if migrateDryRun {
			color.Yellow("Dry run mode - no changes made")
			return nil
		}

		dst, err := dstCfg.OpenStorage(ctx, logger)
		if err != nil {
			return fmt.Errorf("failed to open %s destination: %w", dstCfg.GetBackend(), err)
		}
		defer func() { _ = dst.Close() }()

		if !migrateForce {
			existing, err := tableCounts(ctx, dst)
			if err != nil {
				return err
			}
			for _, table := range models.AllTables {
				if existing[table] > 0 {
					return fmt.Errorf("destination already has %d %s rows (use --force to append)", existing[table], table.Label())
				}
			}
		}

		summary, err := storage.MigrateData(ctx, repo, dst)
		if err != nil {
			if summary != nil {
				color.Yellow("⚠ Copied %d rows before failing", summary.Total())
			}
			return fmt.Errorf("migration failed: %w", err)
		}

		color.Green("✓ Migrated %d rows to %s", summary.Total(), dstCfg.GetBackend())
		fmt.Printf("  Performance:  %d\n", summary.Performance)
		fmt.Printf("  Subjects:     %d\n", summary.Subjects)
		fmt.Printf("  Distribution: %d\n", summary.Distribution)
		return nil
	},
}

// migrateTarget builds the destination config. Location fields not given
// on the command line are inherited from the source config.
func migrateTarget(src *config.Config) *config.Config {
	dst := *src
	dst.Backend = migrateTo
	if migrateToDataDir != "" {
		dst.DataDir = migrateToDataDir
	}
	if migrateToDatabase != "" {
		dst.DatabaseURL = migrateToDatabase
	}
	return &dst
}

func sameLocation(a, b *config.Config) bool {
	switch a.GetBackend() {
	case config.BackendSQLite:
		return a.GetDataDir() == b.GetDataDir()
	case config.BackendPostgres:
		return a.DatabaseURL == b.DatabaseURL
	default:
		return true
	}
}

func tableCounts(ctx context.Context, r storage.Repository) (map[models.Table]int, error) {
	counts := make(map[models.Table]int, len(models.AllTables))
	for _, table := range models.AllTables {
		n, err := r.Count(ctx, table)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table.Label(), err)
		}
		counts[table] = n
	}
	return counts, nil
}

func init() {
	migrateCmd.Flags().StringVar(&migrateTo, "to", "", "destination backend: sqlite, postgres, or charm")
	migrateCmd.Flags().StringVar(&migrateToDataDir, "to-data-dir", "", "destination data directory (sqlite)")
	migrateCmd.Flags().StringVar(&migrateToDatabase, "to-database-url", "", "destination connection string (postgres)")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "preview migration without making changes")
	migrateCmd.Flags().BoolVar(&migrateForce, "force", false, "append to a non-empty destination")
	_ = migrateCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(migrateCmd)
}
