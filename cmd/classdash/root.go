// ABOUTME: Root Cobra command for classdash CLI.
// ABOUTME: Loads config and manages the storage lifecycle via PersistentPre/PostRunE.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/harperreed/classdash/internal/config"
	"github.com/harperreed/classdash/internal/storage"
	"github.com/spf13/cobra"
)

// skipStorage marks commands that must not open the configured backend.
const skipStorage = "skip-storage"

var (
	cfg    *config.Config
	repo   storage.Repository
	logger *log.Logger

	flagBackend     string
	flagDataDir     string
	flagDatabaseURL string
	flagLogLevel    string
)

var rootCmd = &cobra.Command{
	Use:   "classdash",
	Short: "Classroom dashboard data manager",
	Long: `Classdash manages the data behind a classroom dashboard.

WHAT IT TRACKS:

  Performance    monthly score, attendance, and participation
  Subjects       students and average score per subject
  Distribution   number of classes per category

QUICK START:

  $ classdash seed                              # Fill an empty dashboard with defaults
  $ classdash show                              # Render the charts in the terminal
  $ classdash add performance Jul 90 96 88      # Add a month
  $ classdash add subject History 22 74 --color "#ec4899"
  $ classdash list subjects                     # See rows with their IDs
  $ classdash delete subjects 5                 # Remove one row
  $ classdash clear distribution --yes          # Empty a table

LIVE VIEWS:

  $ classdash watch                             # Redraw on every change
  $ classdash serve --addr :8080                # HTTP + WebSocket feed

BACKENDS:

  sqlite     Local file at ~/.local/share/classdash/classdash.db (default)
  postgres   Set --database-url or DATABASE_URL; changes arrive via LISTEN/NOTIFY
  charm      Charm KV with cloud sync (see 'classdash sync')

  Settings come from ~/.config/classdash/config.json, then .env, then
  CLASSDASH_* environment variables, then flags.

MCP INTEGRATION:

  Run 'classdash mcp' to start the Model Context Protocol server:

  {
    "mcpServers": {
      "classdash": { "command": "classdash", "args": ["mcp"] }
    }
  }`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip setup for commands that don't need it
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		applyFlags(cfg)

		logger, err = cfg.NewLogger(os.Stderr)
		if err != nil {
			return err
		}

		if cmd.Annotations[skipStorage] == "true" {
			return nil
		}

		repo, err = cfg.OpenStorage(cmd.Context(), logger)
		if err != nil {
			return fmt.Errorf("failed to open %s storage: %w", cfg.GetBackend(), err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeStorage()
	},
}

// closeStorage closes the open backend, if any. Post-run hooks are skipped
// when a command fails, so main calls it too.
func closeStorage() error {
	if repo == nil {
		return nil
	}
	err := repo.Close()
	repo = nil
	return err
}

func applyFlags(c *config.Config) {
	if flagBackend != "" {
		c.Backend = flagBackend
	}
	if flagDataDir != "" {
		c.DataDir = flagDataDir
	}
	if flagDatabaseURL != "" {
		c.DatabaseURL = flagDatabaseURL
	}
	if flagLogLevel != "" {
		c.LogLevel = flagLogLevel
	}
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "storage backend: sqlite, postgres, or charm")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory for the sqlite backend")
	rootCmd.PersistentFlags().StringVar(&flagDatabaseURL, "database-url", "", "Postgres connection string")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
}
