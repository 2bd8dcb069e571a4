// ABOUTME: SQL schema definition and initialization for both dialects.
// ABOUTME: Postgres also gets per-table triggers that pg_notify each row change.
package storage

import (
	"context"
	"fmt"

	"github.com/harperreed/classdash/internal/models"
	"github.com/harperreed/classdash/internal/realtime"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS performance_data (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		month TEXT NOT NULL,
		score REAL NOT NULL,
		attendance REAL NOT NULL,
		participation REAL NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS subject_data (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		students INTEGER NOT NULL,
		avg_score REAL NOT NULL,
		color TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS class_distribution (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		value INTEGER NOT NULL,
		color TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
`

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS performance_data (
		id BIGSERIAL PRIMARY KEY,
		month TEXT NOT NULL,
		score NUMERIC NOT NULL,
		attendance NUMERIC NOT NULL,
		participation NUMERIC NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS subject_data (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		students INTEGER NOT NULL,
		avg_score NUMERIC NOT NULL,
		color TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS class_distribution (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		value INTEGER NOT NULL,
		color TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE OR REPLACE FUNCTION classdash_notify() RETURNS trigger AS $$
	DECLARE
		rid BIGINT;
	BEGIN
		IF TG_OP = 'DELETE' THEN
			rid := OLD.id;
		ELSE
			rid := NEW.id;
		END IF;
		PERFORM pg_notify('%s', json_build_object('table', TG_TABLE_NAME, 'op', TG_OP, 'id', rid)::text);
		RETURN NULL;
	END;
	$$ LANGUAGE plpgsql;
`

const postgresTrigger = `
	DROP TRIGGER IF EXISTS %[1]s_notify ON %[1]s;
	CREATE TRIGGER %[1]s_notify
		AFTER INSERT OR UPDATE OR DELETE ON %[1]s
		FOR EACH ROW EXECUTE FUNCTION classdash_notify();
`

// initSchema creates tables (and for Postgres, notify triggers) if missing.
func (d *DB) initSchema(ctx context.Context) error {
	if d.dialect == DialectSQLite {
		_, err := d.db.ExecContext(ctx, sqliteSchema)
		return err
	}

	if _, err := d.db.ExecContext(ctx, fmt.Sprintf(postgresSchema, realtime.NotifyChannel)); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	for _, table := range models.AllTables {
		if _, err := d.db.ExecContext(ctx, fmt.Sprintf(postgresTrigger, table)); err != nil {
			return fmt.Errorf("create trigger on %s: %w", table, err)
		}
	}
	return nil
}
