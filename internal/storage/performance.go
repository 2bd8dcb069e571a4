// ABOUTME: Performance record CRUD operations for SQL storage.
// ABOUTME: Implements Repository methods for the performance_data table.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/classdash/internal/models"
	"github.com/harperreed/classdash/internal/realtime"
)

type performanceRow struct {
	ID            int64         `db:"id"`
	Month         string        `db:"month"`
	Score         models.Number `db:"score"`
	Attendance    models.Number `db:"attendance"`
	Participation models.Number `db:"participation"`
	CreatedAt     dbTime        `db:"created_at"`
}

func (r performanceRow) record() *models.PerformanceRecord {
	return &models.PerformanceRecord{
		ID:            r.ID,
		Month:         r.Month,
		Score:         r.Score,
		Attendance:    r.Attendance,
		Participation: r.Participation,
		CreatedAt:     r.CreatedAt.Time,
	}
}

// CreatePerformance inserts a record and sets its ID.
func (d *DB) CreatePerformance(ctx context.Context, r *models.PerformanceRecord) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("create performance: %w", err)
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	query := d.db.Rebind(`
		INSERT INTO performance_data (month, score, attendance, participation, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := d.db.QueryRowxContext(ctx, query,
		r.Month, r.Score.Float64(), r.Attendance.Float64(), r.Participation.Float64(),
		d.timeArg(r.CreatedAt),
	).Scan(&r.ID)
	if err != nil {
		return fmt.Errorf("create performance: %w", err)
	}
	d.publish(ctx, models.TablePerformance, realtime.OpInsert, r.ID)
	return nil
}

// ListPerformance returns all performance records ordered by ID.
func (d *DB) ListPerformance(ctx context.Context) ([]*models.PerformanceRecord, error) {
	var rows []performanceRow
	err := d.db.SelectContext(ctx, &rows, `
		SELECT id, month, score, attendance, participation, created_at
		FROM performance_data
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list performance: %w", err)
	}

	records := make([]*models.PerformanceRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.record())
	}
	return records, nil
}

// UpdatePerformance overwrites the mutable fields of an existing record.
func (d *DB) UpdatePerformance(ctx context.Context, r *models.PerformanceRecord) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("update performance: %w", err)
	}
	result, err := d.db.ExecContext(ctx, d.db.Rebind(`
		UPDATE performance_data
		SET month = ?, score = ?, attendance = ?, participation = ?
		WHERE id = ?
	`), r.Month, r.Score.Float64(), r.Attendance.Float64(), r.Participation.Float64(), r.ID)
	if err != nil {
		return fmt.Errorf("update performance: %w", err)
	}
	if err := checkAffected(result, models.TablePerformance, r.ID); err != nil {
		return fmt.Errorf("update performance: %w", err)
	}
	d.publish(ctx, models.TablePerformance, realtime.OpUpdate, r.ID)
	return nil
}
