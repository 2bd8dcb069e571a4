// ABOUTME: Table-wide operations shared by all three collections.
// ABOUTME: Implements Count, Clear, and Delete for the SQL backends.
package storage

import (
	"context"
	"fmt"

	"github.com/harperreed/classdash/internal/models"
	"github.com/harperreed/classdash/internal/realtime"
)

// Count returns the number of rows in table.
func (d *DB) Count(ctx context.Context, table models.Table) (int, error) {
	if !table.Valid() {
		return 0, fmt.Errorf("count: unknown table %q", table)
	}
	var n int
	if err := d.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+string(table)); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// Clear deletes every row in table and returns how many were removed.
func (d *DB) Clear(ctx context.Context, table models.Table) (int, error) {
	if !table.Valid() {
		return 0, fmt.Errorf("clear: unknown table %q", table)
	}
	result, err := d.db.ExecContext(ctx, "DELETE FROM "+string(table))
	if err != nil {
		return 0, fmt.Errorf("clear %s: %w", table, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear %s: %w", table, err)
	}
	if affected > 0 {
		d.publish(ctx, table, realtime.OpDelete, 0)
	}
	return int(affected), nil
}

// Delete removes one row by ID.
func (d *DB) Delete(ctx context.Context, table models.Table, id int64) error {
	if !table.Valid() {
		return fmt.Errorf("delete: unknown table %q", table)
	}
	result, err := d.db.ExecContext(ctx, d.db.Rebind("DELETE FROM "+string(table)+" WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", table, id, err)
	}
	if err := checkAffected(result, table, id); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	d.publish(ctx, table, realtime.OpDelete, id)
	return nil
}
