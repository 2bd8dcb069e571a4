// ABOUTME: SQL database connection and lifecycle management.
// ABOUTME: Serves SQLite (modernc.org/sqlite) and Postgres (lib/pq) through sqlx.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/classdash/internal/models"
	"github.com/harperreed/classdash/internal/realtime"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect selects SQL flavor differences.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// DB is a SQL-backed Repository.
type DB struct {
	db       *sqlx.DB
	dialect  Dialect
	dbPath   string
	hub      *realtime.Hub
	listener *realtime.PGListener
	log      *log.Logger
}

// Compile-time check that DB implements Repository.
var _ Repository = (*DB)(nil)

// Open opens or creates a SQLite database at the given path.
func Open(dbPath string) (*DB, error) {
	return OpenWithLogger(dbPath, nil)
}

// OpenWithLogger opens a SQLite database and logs through logger.
func OpenWithLogger(dbPath string, logger *log.Logger) (*DB, error) {
	if logger == nil {
		logger = log.Default()
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One writer keeps RETURNING inserts and pragmas on the same connection.
	db.SetMaxOpenConns(1)

	if err := os.Chmod(dbPath, 0600); err != nil && !os.IsNotExist(err) {
		_ = db.Close()
		return nil, fmt.Errorf("set database permissions: %w", err)
	}

	d := &DB{
		db:      db,
		dialect: DialectSQLite,
		dbPath:  dbPath,
		hub:     realtime.NewHub(logger),
		log:     logger,
	}

	if err := d.configurePragmas(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure pragmas: %w", err)
	}

	if err := d.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return d, nil
}

// OpenPostgres connects to Postgres, installs the schema and notify
// triggers, and starts a listener that feeds the change hub.
func OpenPostgres(ctx context.Context, dsn string, logger *log.Logger) (*DB, error) {
	if logger == nil {
		logger = log.Default()
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	d := &DB{
		db:      db,
		dialect: DialectPostgres,
		hub:     realtime.NewHub(logger),
		log:     logger,
	}

	if err := d.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	listener, err := realtime.ListenPostgres(dsn, d.hub, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	d.listener = listener

	return d, nil
}

// DataDir returns the default data directory under XDG_DATA_HOME.
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "classdash")
}

// DBFileName is the SQLite file name inside the data directory.
const DBFileName = "classdash.db"

// DefaultDBPath returns the default database path under XDG_DATA_HOME.
func DefaultDBPath() string {
	return filepath.Join(DataDir(), DBFileName)
}

// Dialect reports which SQL flavor this DB speaks.
func (d *DB) Dialect() Dialect {
	return d.dialect
}

// Changes returns the change hub. SQLite writes publish directly;
// Postgres changes arrive through the trigger listener.
func (d *DB) Changes() realtime.Broker {
	return d.hub
}

// Close stops the listener, closes every channel, and closes the connection.
func (d *DB) Close() error {
	if d.listener != nil {
		if err := d.listener.Close(); err != nil {
			d.log.Warn("close postgres listener", "err", err)
		}
	}
	if d.hub != nil {
		_ = d.hub.Close()
	}
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// configurePragmas sets up SQLite for concurrent readers.
func (d *DB) configurePragmas() error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := d.db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}
	return nil
}

// publish emits a change event for SQLite writes. Postgres triggers
// produce their own notifications, so nothing is published here.
func (d *DB) publish(ctx context.Context, table models.Table, op realtime.Op, id int64) {
	if d.dialect != DialectSQLite {
		return
	}
	if err := d.hub.Publish(ctx, realtime.NewEvent(table, op, id)); err != nil {
		d.log.Warn("publish change", "table", table, "op", op, "err", err)
	}
}

// timeArg formats a timestamp for the active dialect.
func (d *DB) timeArg(t time.Time) any {
	if t.IsZero() {
		t = time.Now()
	}
	if d.dialect == DialectSQLite {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return t.UTC()
}

// dbTime scans timestamps stored as native times or text.
type dbTime struct {
	time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05",
}

// Scan implements sql.Scanner.
func (t *dbTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v.UTC()
		return nil
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	default:
		return fmt.Errorf("cannot scan %T into time", src)
	}
}

func (t *dbTime) parse(s string) error {
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

// checkAffected maps a zero-row update or delete to ErrNotFound.
func checkAffected(result sql.Result, table models.Table, id int64) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%s %d: %w", table, id, ErrNotFound)
	}
	return nil
}
