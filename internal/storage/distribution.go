// ABOUTME: Class distribution CRUD operations for SQL storage.
// ABOUTME: Implements Repository methods for the class_distribution table.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/classdash/internal/models"
	"github.com/harperreed/classdash/internal/realtime"
)

type distributionRow struct {
	ID        int64         `db:"id"`
	Name      string        `db:"name"`
	Value     models.Number `db:"value"`
	Color     string        `db:"color"`
	CreatedAt dbTime        `db:"created_at"`
}

func (r distributionRow) record() *models.DistributionRecord {
	return &models.DistributionRecord{
		ID:        r.ID,
		Name:      r.Name,
		Value:     r.Value,
		Color:     r.Color,
		CreatedAt: r.CreatedAt.Time,
	}
}

// CreateDistribution inserts a record and sets its ID.
func (d *DB) CreateDistribution(ctx context.Context, r *models.DistributionRecord) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("create distribution: %w", err)
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	query := d.db.Rebind(`
		INSERT INTO class_distribution (name, value, color, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`)
	err := d.db.QueryRowxContext(ctx, query,
		r.Name, r.Value.Int(), r.Color, d.timeArg(r.CreatedAt),
	).Scan(&r.ID)
	if err != nil {
		return fmt.Errorf("create distribution: %w", err)
	}
	d.publish(ctx, models.TableDistribution, realtime.OpInsert, r.ID)
	return nil
}

// ListDistribution returns all distribution records ordered by ID.
func (d *DB) ListDistribution(ctx context.Context) ([]*models.DistributionRecord, error) {
	var rows []distributionRow
	err := d.db.SelectContext(ctx, &rows, `
		SELECT id, name, value, color, created_at
		FROM class_distribution
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list distribution: %w", err)
	}

	records := make([]*models.DistributionRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.record())
	}
	return records, nil
}

// UpdateDistribution overwrites the mutable fields of an existing record.
func (d *DB) UpdateDistribution(ctx context.Context, r *models.DistributionRecord) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("update distribution: %w", err)
	}
	result, err := d.db.ExecContext(ctx, d.db.Rebind(`
		UPDATE class_distribution
		SET name = ?, value = ?, color = ?
		WHERE id = ?
	`), r.Name, r.Value.Int(), r.Color, r.ID)
	if err != nil {
		return fmt.Errorf("update distribution: %w", err)
	}
	if err := checkAffected(result, models.TableDistribution, r.ID); err != nil {
		return fmt.Errorf("update distribution: %w", err)
	}
	d.publish(ctx, models.TableDistribution, realtime.OpUpdate, r.ID)
	return nil
}
