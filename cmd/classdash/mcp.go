// ABOUTME: CLI command for starting MCP server.
// ABOUTME: Runs stdio-based MCP server for AI assistant integration.
package main

import (
	"github.com/harperreed/classdash/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server communicates via stdin/stdout. Logs go to stderr.

CONFIGURATION:

  {
    "mcpServers": {
      "classdash": {
        "command": "classdash",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  get_dashboard      Load chart data, seeding an empty dashboard
  seed_dashboard     Seed defaults if the performance table is empty
  add_performance    Add a month of performance data
  add_subject        Add a subject
  add_distribution   Add a class distribution category
  delete_record      Delete one row by table and ID
  clear_table        Delete every row in a table

AVAILABLE RESOURCES:

  dashboard://chart      Chart-ready arrays
  dashboard://summary    Headline numbers`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(repo, logger)
		if err != nil {
			return err
		}

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
