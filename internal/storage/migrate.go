// ABOUTME: Data migration between dashboard storage backends.
// ABOUTME: Copies performance, subject, and distribution rows from source to destination.

package storage

import (
	"context"
	"fmt"
)

// MigrateSummary holds counts of migrated rows.
type MigrateSummary struct {
	Performance  int
	Subjects     int
	Distribution int
}

// Total returns the number of rows copied.
func (s *MigrateSummary) Total() int {
	return s.Performance + s.Subjects + s.Distribution
}

// MigrateData copies all rows from src to dst in ID order.
// The destination should be empty; IDs are reassigned by dst.
func MigrateData(ctx context.Context, src, dst Repository) (*MigrateSummary, error) {
	summary := &MigrateSummary{}

	perf, err := src.ListPerformance(ctx)
	if err != nil {
		return nil, fmt.Errorf("list source performance: %w", err)
	}
	for _, r := range perf {
		if err := dst.CreatePerformance(ctx, r); err != nil {
			return summary, fmt.Errorf("create performance %s: %w", r.Month, err)
		}
		summary.Performance++
	}

	subjects, err := src.ListSubjects(ctx)
	if err != nil {
		return summary, fmt.Errorf("list source subjects: %w", err)
	}
	for _, r := range subjects {
		if err := dst.CreateSubject(ctx, r); err != nil {
			return summary, fmt.Errorf("create subject %s: %w", r.Name, err)
		}
		summary.Subjects++
	}

	dist, err := src.ListDistribution(ctx)
	if err != nil {
		return summary, fmt.Errorf("list source distribution: %w", err)
	}
	for _, r := range dist {
		if err := dst.CreateDistribution(ctx, r); err != nil {
			return summary, fmt.Errorf("create distribution %s: %w", r.Name, err)
		}
		summary.Distribution++
	}

	return summary, nil
}
