// ABOUTME: Charm KV client wrapper for dashboard storage.
// ABOUTME: Provides thread-safe initialization, cloud sync, and change events.
package charm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
	"github.com/charmbracelet/log"
	"github.com/harperreed/classdash/internal/models"
	"github.com/harperreed/classdash/internal/realtime"
)

const (
	// DBName is the Charm KV database name.
	DBName    = "classdash"
	charmHost = "charm.2389.dev"

	PerformancePrefix  = "perf:"
	SubjectPrefix      = "subject:"
	DistributionPrefix = "dist:"
	SequencePrefix     = "seq:"
)

var (
	globalClient *Client
	clientOnce   sync.Once
	clientErr    error
)

type Client struct {
	kv       *kv.KV
	autoSync bool
	mu       sync.RWMutex
	hub      *realtime.Hub
	log      *log.Logger
}

// InitClient initializes the global Charm client.
// Thread-safe; can be called multiple times.
func InitClient(logger *log.Logger) (*Client, error) {
	clientOnce.Do(func() {
		if logger == nil {
			logger = log.Default()
		}

		// An explicit CHARM_HOST wins over the default server.
		if os.Getenv("CHARM_HOST") == "" {
			if err := os.Setenv("CHARM_HOST", charmHost); err != nil {
				clientErr = err
				return
			}
		}

		db, err := kv.OpenWithDefaultsFallback(DBName)
		if err != nil {
			clientErr = err
			return
		}

		globalClient = &Client{
			kv:       db,
			autoSync: true,
			hub:      realtime.NewHub(logger),
			log:      logger,
		}

		// Pull remote data on startup (skip in read-only mode)
		if !db.IsReadOnly() {
			if err := db.Sync(); err != nil {
				logger.Warn("initial charm sync failed", "err", err)
			}
		}
	})

	return globalClient, clientErr
}

// Close closes the change hub and the KV database.
func (c *Client) Close() error {
	_ = c.hub.Close()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.kv != nil {
		return c.kv.Close()
	}
	return nil
}

// Changes returns the per-table notification broker.
func (c *Client) Changes() realtime.Broker {
	return c.hub
}

// IsReadOnly returns true if the database is open in read-only mode.
// This happens when another process (like an MCP server) holds the lock.
func (c *Client) IsReadOnly() bool {
	return c.kv.IsReadOnly()
}

// Sync pulls and pushes changes with Charm Cloud, then tells every table's
// subscribers that rows may have changed.
func (c *Client) Sync() error {
	c.mu.RLock()
	if c.kv.IsReadOnly() {
		c.mu.RUnlock()
		return nil
	}
	err := c.kv.Sync()
	c.mu.RUnlock()
	if err != nil {
		return err
	}

	for _, table := range models.AllTables {
		c.publish(context.Background(), table, realtime.OpSync, 0)
	}
	return nil
}

// syncIfEnabled calls Sync if autoSync is enabled. Caller holds c.mu.
func (c *Client) syncIfEnabled() {
	if c.autoSync && !c.kv.IsReadOnly() {
		if err := c.kv.Sync(); err != nil {
			c.log.Warn("charm sync after write failed", "err", err)
		}
	}
}

// SetAutoSync enables or disables automatic sync after writes.
func (c *Client) SetAutoSync(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autoSync = enabled
}

// ID returns the Charm user ID for the current account.
func (c *Client) ID() (string, error) {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("create charm client: %w", err)
	}
	return cc.ID()
}

// Reset wipes local data and rebuilds from Charm Cloud.
func (c *Client) Reset() error {
	c.mu.Lock()
	err := c.kv.Reset()
	c.mu.Unlock()
	if err != nil {
		return err
	}

	for _, table := range models.AllTables {
		c.publish(context.Background(), table, realtime.OpSync, 0)
	}
	return nil
}

func (c *Client) publish(ctx context.Context, table models.Table, op realtime.Op, id int64) {
	if err := c.hub.Publish(ctx, realtime.NewEvent(table, op, id)); err != nil {
		c.log.Warn("publish change", "table", table, "op", op, "err", err)
	}
}

func (c *Client) checkWritable() error {
	if c.kv.IsReadOnly() {
		return fmt.Errorf("cannot write: database is locked by another process (MCP server?)")
	}
	return nil
}

// keys returns every key that starts with prefix. Caller holds c.mu.
func (c *Client) keys(prefix string) ([][]byte, error) {
	all, err := c.kv.Keys()
	if err != nil {
		return nil, err
	}

	prefixBytes := []byte(prefix)
	var matched [][]byte
	for _, key := range all {
		if bytes.HasPrefix(key, prefixBytes) {
			matched = append(matched, key)
		}
	}
	return matched, nil
}

// listByPrefix returns all values with keys matching the given prefix.
func (c *Client) listByPrefix(prefix string) ([][]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys, err := c.keys(prefix)
	if err != nil {
		return nil, err
	}

	results := make([][]byte, 0, len(keys))
	for _, key := range keys {
		val, err := c.kv.Get(key)
		if err != nil {
			return nil, err
		}
		results = append(results, val)
	}
	return results, nil
}

// nextID advances the per-table sequence. Caller holds c.mu for writing.
func (c *Client) nextID(table models.Table) (int64, error) {
	seqKey := []byte(SequencePrefix + string(table))

	existing, err := c.keys(string(seqKey))
	if err != nil {
		return 0, err
	}

	var current int64
	for _, key := range existing {
		if !bytes.Equal(key, seqKey) {
			continue
		}
		val, err := c.kv.Get(seqKey)
		if err != nil {
			return 0, err
		}
		current, err = strconv.ParseInt(string(val), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse sequence %s: %w", table, err)
		}
	}

	next := current + 1
	if err := c.kv.Set(seqKey, []byte(strconv.FormatInt(next, 10))); err != nil {
		return 0, err
	}
	return next, nil
}

// unmarshalJSON is a helper to unmarshal JSON data.
func unmarshalJSON[T any](data []byte) (*T, error) {
	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// prefixFor maps a table to its key prefix.
func prefixFor(table models.Table) (string, error) {
	switch table {
	case models.TablePerformance:
		return PerformancePrefix, nil
	case models.TableSubjects:
		return SubjectPrefix, nil
	case models.TableDistribution:
		return DistributionPrefix, nil
	}
	return "", fmt.Errorf("unknown table %q", table)
}

// recordKey builds the KV key for a row. IDs are zero-padded so keys sort
// in ID order.
func recordKey(prefix string, id int64) string {
	return fmt.Sprintf("%s%012d", prefix, id)
}
