// ABOUTME: Repository interface for dashboard data storage.
// ABOUTME: Defines count, list, write, clear, and change-feed operations.
package storage

import (
	"context"
	"errors"

	"github.com/harperreed/classdash/internal/models"
	"github.com/harperreed/classdash/internal/realtime"
)

// ErrNotFound is returned when a record ID does not exist.
var ErrNotFound = errors.New("not found")

// Repository defines the storage interface for dashboard data.
// Lists are always ordered by ID ascending.
type Repository interface {
	// Table-wide operations
	Count(ctx context.Context, table models.Table) (int, error)
	Clear(ctx context.Context, table models.Table) (int, error)
	Delete(ctx context.Context, table models.Table, id int64) error

	// Performance
	CreatePerformance(ctx context.Context, r *models.PerformanceRecord) error
	ListPerformance(ctx context.Context) ([]*models.PerformanceRecord, error)
	UpdatePerformance(ctx context.Context, r *models.PerformanceRecord) error

	// Subjects
	CreateSubject(ctx context.Context, r *models.SubjectRecord) error
	ListSubjects(ctx context.Context) ([]*models.SubjectRecord, error)
	UpdateSubject(ctx context.Context, r *models.SubjectRecord) error

	// Class distribution
	CreateDistribution(ctx context.Context, r *models.DistributionRecord) error
	ListDistribution(ctx context.Context) ([]*models.DistributionRecord, error)
	UpdateDistribution(ctx context.Context, r *models.DistributionRecord) error

	// Changes returns the per-table notification broker.
	Changes() realtime.Broker

	// Lifecycle
	Close() error
}
