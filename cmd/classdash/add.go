// ABOUTME: CLI commands for adding dashboard rows.
// ABOUTME: One subcommand per table with positional numeric arguments.
package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/classdash/internal/models"
	"github.com/spf13/cobra"
)

var (
	addAt    string
	addColor string
)

var addCmd = &cobra.Command{
	Use:     "add",
	Aliases: []string{"a"},
	Short:   "Add a dashboard row",
	Long: `Add a row to one of the dashboard tables.

Examples:
  classdash add performance Jul 90 96 88
  classdash add subject History 22 74.5 --color "#ec4899"
  classdash add distribution Arts 2`,
}

var addPerformanceCmd = &cobra.Command{
	Use:     "performance <month> <score> <attendance> <participation>",
	Aliases: []string{"perf"},
	Short:   "Add a month of performance data",
	Args:    cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		score, err := parseFloat("score", args[1])
		if err != nil {
			return err
		}
		attendance, err := parseFloat("attendance", args[2])
		if err != nil {
			return err
		}
		participation, err := parseFloat("participation", args[3])
		if err != nil {
			return err
		}

		r := models.NewPerformanceRecord(args[0], score, attendance, participation)
		if err := applyAt(&r.CreatedAt); err != nil {
			return err
		}

		if err := repo.CreatePerformance(cmd.Context(), r); err != nil {
			return fmt.Errorf("failed to add performance: %w", err)
		}

		color.Green("✓ Added %s", r.Month)
		fmt.Printf("  %s score %.1f  attendance %.1f  participation %.1f\n",
			faintID(r.ID), score, attendance, participation)
		return nil
	},
}

var addSubjectCmd = &cobra.Command{
	Use:     "subject <name> <students> <avg_score>",
	Aliases: []string{"subjects"},
	Short:   "Add a subject",
	Args:    cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		students, err := parseInt("students", args[1])
		if err != nil {
			return err
		}
		avg, err := parseFloat("avg_score", args[2])
		if err != nil {
			return err
		}

		r := models.NewSubjectRecord(args[0], students, avg, addColor)
		if err := applyAt(&r.CreatedAt); err != nil {
			return err
		}

		if err := repo.CreateSubject(cmd.Context(), r); err != nil {
			return fmt.Errorf("failed to add subject: %w", err)
		}

		color.Green("✓ Added %s", r.Name)
		fmt.Printf("  %s %d students  avg %.1f  %s\n", faintID(r.ID), students, avg, r.Color)
		return nil
	},
}

var addDistributionCmd = &cobra.Command{
	Use:     "distribution <name> <value>",
	Aliases: []string{"dist"},
	Short:   "Add a class distribution category",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := parseInt("value", args[1])
		if err != nil {
			return err
		}

		r := models.NewDistributionRecord(args[0], value, addColor)
		if err := applyAt(&r.CreatedAt); err != nil {
			return err
		}

		if err := repo.CreateDistribution(cmd.Context(), r); err != nil {
			return fmt.Errorf("failed to add distribution: %w", err)
		}

		color.Green("✓ Added %s", r.Name)
		fmt.Printf("  %s %d classes  %s\n", faintID(r.ID), value, r.Color)
		return nil
	},
}

func parseFloat(field, s string) (float64, error) {
	v, err := models.ParseNumber(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", field, s)
	}
	return v.Float64(), nil
}

func parseInt(field, s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", field, s)
	}
	return v, nil
}

// applyAt overrides the creation timestamp when --at is set.
func applyAt(dst *time.Time) error {
	if addAt == "" {
		return nil
	}
	t, err := parseTime(addAt)
	if err != nil {
		return fmt.Errorf("invalid timestamp: %s", addAt)
	}
	*dst = t
	return nil
}

func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02 15:04",
		"2006-01-02T15:04",
		"2006-01-02",
		time.RFC3339,
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format")
}

func faintID(id int64) string {
	return color.New(color.Faint).Sprintf("#%d", id)
}

func init() {
	addCmd.PersistentFlags().StringVar(&addAt, "at", "", "creation timestamp (YYYY-MM-DD HH:MM)")
	addSubjectCmd.Flags().StringVar(&addColor, "color", "", "hex color (default #8b5cf6)")
	addDistributionCmd.Flags().StringVar(&addColor, "color", "", "hex color (default #8b5cf6)")

	addCmd.AddCommand(addPerformanceCmd)
	addCmd.AddCommand(addSubjectCmd)
	addCmd.AddCommand(addDistributionCmd)
	rootCmd.AddCommand(addCmd)
}
