// ABOUTME: Dashboard record operations for Charm KV storage.
// ABOUTME: Uses table-prefixed keys, per-table sequences, and client-side sorting.
package charm

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/harperreed/classdash/internal/models"
	"github.com/harperreed/classdash/internal/realtime"
	"github.com/harperreed/classdash/internal/storage"
)

// Compile-time check that Client implements storage.Repository.
var _ storage.Repository = (*Client)(nil)

// Count returns the number of rows stored for table.
func (c *Client) Count(_ context.Context, table models.Table) (int, error) {
	prefix, err := prefixFor(table)
	if err != nil {
		return 0, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	keys, err := c.keys(prefix)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table.Label(), err)
	}
	return len(keys), nil
}

// Clear removes every row in table and returns how many were removed.
func (c *Client) Clear(ctx context.Context, table models.Table) (int, error) {
	prefix, err := prefixFor(table)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	if err := c.checkWritable(); err != nil {
		c.mu.Unlock()
		return 0, err
	}
	keys, err := c.keys(prefix)
	if err != nil {
		c.mu.Unlock()
		return 0, fmt.Errorf("clear %s: %w", table.Label(), err)
	}
	for _, key := range keys {
		if err := c.kv.Delete(key); err != nil {
			c.mu.Unlock()
			return 0, fmt.Errorf("clear %s: %w", table.Label(), err)
		}
	}
	if len(keys) > 0 {
		c.syncIfEnabled()
	}
	c.mu.Unlock()

	if len(keys) > 0 {
		c.publish(ctx, table, realtime.OpDelete, 0)
	}
	return len(keys), nil
}

// Delete removes one row by ID.
func (c *Client) Delete(ctx context.Context, table models.Table, id int64) error {
	prefix, err := prefixFor(table)
	if err != nil {
		return err
	}
	key := recordKey(prefix, id)

	c.mu.Lock()
	if err := c.checkWritable(); err != nil {
		c.mu.Unlock()
		return err
	}
	keys, err := c.keys(key)
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("delete %s: %w", table.Label(), err)
	}
	if len(keys) == 0 {
		c.mu.Unlock()
		return fmt.Errorf("delete %s %d: %w", table.Label(), id, storage.ErrNotFound)
	}
	if err := c.kv.Delete([]byte(key)); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("delete %s: %w", table.Label(), err)
	}
	c.syncIfEnabled()
	c.mu.Unlock()

	c.publish(ctx, table, realtime.OpDelete, id)
	return nil
}

// insert assigns the next ID via assign, stores the encoded row, and
// publishes an INSERT event.
func (c *Client) insert(ctx context.Context, table models.Table, assign func(id int64) any) error {
	prefix, err := prefixFor(table)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if err := c.checkWritable(); err != nil {
		c.mu.Unlock()
		return err
	}
	id, err := c.nextID(table)
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("next %s id: %w", table.Label(), err)
	}
	data, err := json.Marshal(assign(id))
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("marshal %s: %w", table.Label(), err)
	}
	if err := c.kv.Set([]byte(recordKey(prefix, id)), data); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("create %s: %w", table.Label(), err)
	}
	c.syncIfEnabled()
	c.mu.Unlock()

	c.publish(ctx, table, realtime.OpInsert, id)
	return nil
}

// update overwrites an existing row and publishes an UPDATE event.
func (c *Client) update(ctx context.Context, table models.Table, id int64, row any) error {
	prefix, err := prefixFor(table)
	if err != nil {
		return err
	}
	key := recordKey(prefix, id)

	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", table.Label(), err)
	}

	c.mu.Lock()
	if err := c.checkWritable(); err != nil {
		c.mu.Unlock()
		return err
	}
	keys, err := c.keys(key)
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("update %s: %w", table.Label(), err)
	}
	if len(keys) == 0 {
		c.mu.Unlock()
		return fmt.Errorf("update %s %d: %w", table.Label(), id, storage.ErrNotFound)
	}
	if err := c.kv.Set([]byte(key), data); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("update %s: %w", table.Label(), err)
	}
	c.syncIfEnabled()
	c.mu.Unlock()

	c.publish(ctx, table, realtime.OpUpdate, id)
	return nil
}

// list decodes every row under table's prefix, skipping invalid entries.
func list[T any](c *Client, table models.Table, id func(*T) int64) ([]*T, error) {
	prefix, err := prefixFor(table)
	if err != nil {
		return nil, err
	}

	allData, err := c.listByPrefix(prefix)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table.Label(), err)
	}

	rows := make([]*T, 0, len(allData))
	for _, data := range allData {
		r, err := unmarshalJSON[T](data)
		if err != nil {
			c.log.Warn("skipping invalid record", "table", table, "err", err)
			continue
		}
		rows = append(rows, r)
	}

	sort.Slice(rows, func(i, j int) bool { return id(rows[i]) < id(rows[j]) })
	return rows, nil
}

// CreatePerformance stores a new performance row.
func (c *Client) CreatePerformance(ctx context.Context, r *models.PerformanceRecord) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return c.insert(ctx, models.TablePerformance, func(id int64) any {
		r.ID = id
		return r
	})
}

// ListPerformance returns performance rows ordered by ID.
func (c *Client) ListPerformance(_ context.Context) ([]*models.PerformanceRecord, error) {
	return list(c, models.TablePerformance, func(r *models.PerformanceRecord) int64 { return r.ID })
}

// UpdatePerformance overwrites an existing performance row.
func (c *Client) UpdatePerformance(ctx context.Context, r *models.PerformanceRecord) error {
	if err := r.Validate(); err != nil {
		return err
	}
	return c.update(ctx, models.TablePerformance, r.ID, r)
}

// CreateSubject stores a new subject row.
func (c *Client) CreateSubject(ctx context.Context, r *models.SubjectRecord) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return c.insert(ctx, models.TableSubjects, func(id int64) any {
		r.ID = id
		return r
	})
}

// ListSubjects returns subject rows ordered by ID.
func (c *Client) ListSubjects(_ context.Context) ([]*models.SubjectRecord, error) {
	return list(c, models.TableSubjects, func(r *models.SubjectRecord) int64 { return r.ID })
}

// UpdateSubject overwrites an existing subject row.
func (c *Client) UpdateSubject(ctx context.Context, r *models.SubjectRecord) error {
	if err := r.Validate(); err != nil {
		return err
	}
	return c.update(ctx, models.TableSubjects, r.ID, r)
}

// CreateDistribution stores a new distribution row.
func (c *Client) CreateDistribution(ctx context.Context, r *models.DistributionRecord) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return c.insert(ctx, models.TableDistribution, func(id int64) any {
		r.ID = id
		return r
	})
}

// ListDistribution returns distribution rows ordered by ID.
func (c *Client) ListDistribution(_ context.Context) ([]*models.DistributionRecord, error) {
	return list(c, models.TableDistribution, func(r *models.DistributionRecord) int64 { return r.ID })
}

// UpdateDistribution overwrites an existing distribution row.
func (c *Client) UpdateDistribution(ctx context.Context, r *models.DistributionRecord) error {
	if err := r.Validate(); err != nil {
		return err
	}
	return c.update(ctx, models.TableDistribution, r.ID, r)
}
