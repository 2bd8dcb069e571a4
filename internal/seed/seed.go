// ABOUTME: Seeds the dashboard tables with default rows when empty.
// ABOUTME: Only the performance table decides whether seeding runs.
package seed

import (
	"context"
	"fmt"

	"github.com/harperreed/classdash/internal/models"
)

const (
	MessageSeeded  = "Dashboard data seeded successfully"
	MessageSkipped = "Data already exists, skipping seed"
)

// Store is the subset of storage the seeder writes through.
type Store interface {
	Count(ctx context.Context, table models.Table) (int, error)
	CreatePerformance(ctx context.Context, r *models.PerformanceRecord) error
	CreateSubject(ctx context.Context, r *models.SubjectRecord) error
	CreateDistribution(ctx context.Context, r *models.DistributionRecord) error
}

// Func seeds a store. Seed satisfies it; tests substitute their own.
type Func func(ctx context.Context, s Store) (*Result, error)

// Result reports what a seed call did.
type Result struct {
	Seeded  bool   `json:"success"`
	Message string `json:"message"`
}

// Error names the table whose insert failed. Rows written to earlier
// tables stay in place.
type Error struct {
	Table models.Table
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("seed %s: %v", e.Table.Label(), e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Seed inserts the default rows if the performance table is empty.
// Subject and distribution tables are not inspected, so a partially
// cleared dashboard is only reseeded once performance is empty too.
func Seed(ctx context.Context, s Store) (*Result, error) {
	n, err := s.Count(ctx, models.TablePerformance)
	if err != nil {
		return nil, &Error{Table: models.TablePerformance, Err: fmt.Errorf("count: %w", err)}
	}
	if n > 0 {
		return &Result{Seeded: false, Message: MessageSkipped}, nil
	}

	for _, r := range DefaultPerformance() {
		if err := s.CreatePerformance(ctx, r); err != nil {
			return nil, &Error{Table: models.TablePerformance, Err: err}
		}
	}
	for _, r := range DefaultSubjects() {
		if err := s.CreateSubject(ctx, r); err != nil {
			return nil, &Error{Table: models.TableSubjects, Err: err}
		}
	}
	for _, r := range DefaultDistribution() {
		if err := s.CreateDistribution(ctx, r); err != nil {
			return nil, &Error{Table: models.TableDistribution, Err: err}
		}
	}

	return &Result{Seeded: true, Message: MessageSeeded}, nil
}

// DefaultPerformance returns six months of sample performance.
func DefaultPerformance() []*models.PerformanceRecord {
	return []*models.PerformanceRecord{
		models.NewPerformanceRecord("Jan", 75, 92, 68),
		models.NewPerformanceRecord("Feb", 82, 89, 75),
		models.NewPerformanceRecord("Mar", 78, 94, 72),
		models.NewPerformanceRecord("Apr", 85, 91, 80),
		models.NewPerformanceRecord("May", 88, 95, 85),
		models.NewPerformanceRecord("Jun", 92, 97, 90),
	}
}

func DefaultSubjects() []*models.SubjectRecord {
	return []*models.SubjectRecord{
		models.NewSubjectRecord("Biology", 32, 85, "#8b5cf6"),
		models.NewSubjectRecord("Chemistry", 28, 78, "#06b6d4"),
		models.NewSubjectRecord("Physics", 24, 82, "#f97316"),
		models.NewSubjectRecord("Mathematics", 30, 76, "#10b981"),
	}
}

func DefaultDistribution() []*models.DistributionRecord {
	return []*models.DistributionRecord{
		models.NewDistributionRecord("Science", 5, "#8b5cf6"),
		models.NewDistributionRecord("Math", 4, "#06b6d4"),
		models.NewDistributionRecord("Language", 3, "#f97316"),
		models.NewDistributionRecord("History", 2, "#10b981"),
	}
}
