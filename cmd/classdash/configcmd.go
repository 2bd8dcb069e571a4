// ABOUTME: CLI commands for viewing and editing the config file.
// ABOUTME: Shows effective settings and writes single keys back to disk.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/classdash/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or change settings",
	Long: `View or change classdash settings.

KEYS:

  backend        sqlite, postgres, or charm
  data_dir       data directory for the sqlite backend
  database_url   Postgres connection string
  listen_addr    address for 'classdash serve'
  log_level      debug, info, warn, or error

EXAMPLES:

  classdash config show
  classdash config set backend postgres
  classdash config set database_url postgres://localhost/classdash`,
}

var configShowCmd = &cobra.Command{
	Use:         "show",
	Short:       "Show effective settings",
	Annotations: map[string]string{skipStorage: "true"},
	Args:        cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		faint := color.New(color.Faint)
		faint.Println(config.GetConfigPath())
		fmt.Printf("backend       %s\n", cfg.GetBackend())
		fmt.Printf("data_dir      %s\n", cfg.GetDataDir())
		fmt.Printf("database_url  %s\n", redact(cfg.DatabaseURL))
		fmt.Printf("listen_addr   %s\n", cfg.GetListenAddr())
		level, _ := cfg.GetLogLevel()
		fmt.Printf("log_level     %s\n", level)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:         "set <key> <value>",
	Short:       "Write one setting to the config file",
	Annotations: map[string]string{skipStorage: "true"},
	Args:        cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Environment and flag overrides must not leak into the file.
		fileCfg, err := config.LoadFile()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		key, value := args[0], args[1]
		switch key {
		case "backend":
			switch value {
			case config.BackendSQLite, config.BackendPostgres, config.BackendCharm:
			default:
				return fmt.Errorf("unknown backend: %s (use sqlite, postgres, or charm)", value)
			}
			fileCfg.Backend = value
		case "data_dir":
			fileCfg.DataDir = value
		case "database_url":
			fileCfg.DatabaseURL = value
		case "listen_addr":
			fileCfg.ListenAddr = value
		case "log_level":
			fileCfg.LogLevel = value
			if _, err := fileCfg.GetLogLevel(); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown key: %s", key)
		}

		if err := fileCfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		color.Green("✓ Set %s", key)
		return nil
	},
}

// redact hides everything but the scheme of a connection string.
func redact(dsn string) string {
	if dsn == "" {
		return ""
	}
	if i := strings.Index(dsn, "://"); i >= 0 {
		return dsn[:i+3] + "****"
	}
	return "****"
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
