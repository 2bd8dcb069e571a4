// ABOUTME: CLI command for listing dashboard rows.
// ABOUTME: Lists one table or all three in ID order.
package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/classdash/internal/models"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list [table]",
	Aliases: []string{"ls", "l"},
	Short:   "List dashboard rows",
	Long: `List rows from one table, or all three when no table is given.

OUTPUT FORMAT:

  Each line starts with the row ID, which you can pass to 'classdash delete'.

TABLES:

  performance (perf)    subjects (subject)    distribution (dist)

EXAMPLES:

  classdash list                 # All tables
  classdash list subjects        # Only subjects
  classdash ls dist              # Only class distribution`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tables := models.AllTables
		if len(args) == 1 {
			table, err := models.ParseTable(args[0])
			if err != nil {
				return err
			}
			tables = []models.Table{table}
		}

		for i, table := range tables {
			if len(tables) > 1 {
				if i > 0 {
					fmt.Println()
				}
				color.New(color.Bold).Println(strings.ToUpper(table.Label()))
			}
			if err := listTable(cmd.Context(), table); err != nil {
				return err
			}
		}
		return nil
	},
}

func listTable(ctx context.Context, table models.Table) error {
	faint := color.New(color.Faint)

	switch table {
	case models.TablePerformance:
		rows, err := repo.ListPerformance(ctx)
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", table.Label(), err)
		}
		if len(rows) == 0 {
			fmt.Println("No performance data found.")
		}
		for _, r := range rows {
			fmt.Printf("%s %s score %5.1f  attendance %5.1f  participation %5.1f\n",
				faint.Sprint(padRight(fmt.Sprintf("#%d", r.ID), 5)),
				padRight(r.Month, 6),
				r.Score.Float64(), r.Attendance.Float64(), r.Participation.Float64())
		}
	case models.TableSubjects:
		rows, err := repo.ListSubjects(ctx)
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", table.Label(), err)
		}
		if len(rows) == 0 {
			fmt.Println("No subject data found.")
		}
		for _, r := range rows {
			fmt.Printf("%s %s %3d students  avg %5.1f  %s\n",
				faint.Sprint(padRight(fmt.Sprintf("#%d", r.ID), 5)),
				padRight(truncate(r.Name, 16), 16),
				r.Students.Int(), r.AvgScore.Float64(), faint.Sprint(r.Color))
		}
	case models.TableDistribution:
		rows, err := repo.ListDistribution(ctx)
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", table.Label(), err)
		}
		if len(rows) == 0 {
			fmt.Println("No class distribution data found.")
		}
		for _, r := range rows {
			fmt.Printf("%s %s %3d classes  %s\n",
				faint.Sprint(padRight(fmt.Sprintf("#%d", r.ID), 5)),
				padRight(truncate(r.Name, 16), 16),
				r.Value.Int(), faint.Sprint(r.Color))
		}
	}
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

func init() {
	rootCmd.AddCommand(listCmd)
}
