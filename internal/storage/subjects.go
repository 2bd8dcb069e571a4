// ABOUTME: Subject record CRUD operations for SQL storage.
// ABOUTME: Implements Repository methods for the subject_data table.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/classdash/internal/models"
	"github.com/harperreed/classdash/internal/realtime"
)

type subjectRow struct {
	ID        int64         `db:"id"`
	Name      string        `db:"name"`
	Students  models.Number `db:"students"`
	AvgScore  models.Number `db:"avg_score"`
	Color     string        `db:"color"`
	CreatedAt dbTime        `db:"created_at"`
}

func (r subjectRow) record() *models.SubjectRecord {
	return &models.SubjectRecord{
		ID:        r.ID,
		Name:      r.Name,
		Students:  r.Students,
		AvgScore:  r.AvgScore,
		Color:     r.Color,
		CreatedAt: r.CreatedAt.Time,
	}
}

// CreateSubject inserts a record and sets its ID.
func (d *DB) CreateSubject(ctx context.Context, r *models.SubjectRecord) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	query := d.db.Rebind(`
		INSERT INTO subject_data (name, students, avg_score, color, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := d.db.QueryRowxContext(ctx, query,
		r.Name, r.Students.Int(), r.AvgScore.Float64(), r.Color, d.timeArg(r.CreatedAt),
	).Scan(&r.ID)
	if err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	d.publish(ctx, models.TableSubjects, realtime.OpInsert, r.ID)
	return nil
}

// ListSubjects returns all subject records ordered by ID.
func (d *DB) ListSubjects(ctx context.Context) ([]*models.SubjectRecord, error) {
	var rows []subjectRow
	err := d.db.SelectContext(ctx, &rows, `
		SELECT id, name, students, avg_score, color, created_at
		FROM subject_data
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}

	records := make([]*models.SubjectRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.record())
	}
	return records, nil
}

// UpdateSubject overwrites the mutable fields of an existing record.
func (d *DB) UpdateSubject(ctx context.Context, r *models.SubjectRecord) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("update subject: %w", err)
	}
	result, err := d.db.ExecContext(ctx, d.db.Rebind(`
		UPDATE subject_data
		SET name = ?, students = ?, avg_score = ?, color = ?
		WHERE id = ?
	`), r.Name, r.Students.Int(), r.AvgScore.Float64(), r.Color, r.ID)
	if err != nil {
		return fmt.Errorf("update subject: %w", err)
	}
	if err := checkAffected(result, models.TableSubjects, r.ID); err != nil {
		return fmt.Errorf("update subject: %w", err)
	}
	d.publish(ctx, models.TableSubjects, realtime.OpUpdate, r.ID)
	return nil
}
