// ABOUTME: CLI commands for deleting dashboard rows.
// ABOUTME: Deletes one row by ID or clears a whole table.
package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/harperreed/classdash/internal/models"
	"github.com/spf13/cobra"
)

var clearYes bool

var deleteCmd = &cobra.Command{
	Use:     "delete <table> <id>",
	Aliases: []string{"del", "rm"},
	Short:   "Delete a dashboard row",
	Long: `Delete one row by table and ID.

The ID is shown in the first column of 'classdash list' output.

EXAMPLES:

  classdash delete subjects 3
  classdash rm perf 12`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := models.ParseTable(args[0])
		if err != nil {
			return err
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id: %s", args[1])
		}

		if err := repo.Delete(cmd.Context(), table, id); err != nil {
			return fmt.Errorf("failed to delete: %w", err)
		}

		color.Yellow("✗ Deleted %s row #%d", table.Label(), id)
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear <table>",
	Short: "Delete every row in a table",
	Long: `Delete every row in one table. Other tables are untouched.

Clearing the performance table makes the next dashboard load seed defaults
again.

EXAMPLES:

  classdash clear distribution          # Asks for confirmation
  classdash clear perf --yes            # No prompt`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := models.ParseTable(args[0])
		if err != nil {
			return err
		}

		if !clearYes {
			fmt.Printf("This will delete ALL %s.\n", table.Label())
			fmt.Print("Continue? [y/N]: ")
			var confirm string
			_, _ = fmt.Scanln(&confirm)
			if confirm != "y" && confirm != "Y" {
				fmt.Println("Canceled.")
				return nil
			}
		}

		n, err := repo.Clear(cmd.Context(), table)
		if err != nil {
			return fmt.Errorf("failed to clear %s: %w", table.Label(), err)
		}

		color.Yellow("✗ Cleared %d rows from %s", n, table.Label())
		return nil
	},
}

func init() {
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "skip confirmation")
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(clearCmd)
}
