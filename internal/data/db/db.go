// Package db owns the SQLite connection and schema for the local gateway.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// FileName is the database file created inside the data directory.
const FileName = "wiz.db"

const (
	pingAttempts = 5
	pingBackoff  = 100 * time.Millisecond
)

// OpenOptions tunes the connection pool. BusyTimeout is in milliseconds.
type OpenOptions struct {
	MaxOpenConns int
	MaxIdleConns int
	BusyTimeout  int
}

func DefaultOpenOptions() OpenOptions {
	return OpenOptions{MaxOpenConns: 10, MaxIdleConns: 5, BusyTimeout: 5000}
}

// Path returns the database file location for dataDir.
func Path(dataDir string) string { return filepath.Join(dataDir, FileName) }

func (o OpenOptions) dsn(path string) string {
	return fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)", path, o.BusyTimeout)
}

// DB is a migrated SQLite database with typed queries.
type DB struct {
	conn    *sql.DB
	queries *Queries
}

// Open connects to the database in dataDir, creating it if needed, and
// applies pending migrations.
func Open(dataDir string, opts OpenOptions) (*DB, error) {
	conn, err := sql.Open("sqlite", opts.dsn(Path(dataDir)))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	conn.SetMaxOpenConns(opts.MaxOpenConns)
	conn.SetMaxIdleConns(opts.MaxIdleConns)

	ctx := context.Background()
	if err := ping(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := migrateUp(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return &DB{conn: conn, queries: New(conn)}, nil
}

// ping retries with doubling backoff and reports the last failure.
func ping(ctx context.Context, conn *sql.DB) error {
	wait := pingBackoff
	var err error
	for attempt := 1; attempt <= pingAttempts; attempt++ {
		if err = conn.PingContext(ctx); err == nil {
			return nil
		}
		if attempt < pingAttempts {
			time.Sleep(wait)
			wait *= 2
		}
	}
	return fmt.Errorf("connect to database: %w", err)
}

func (db *DB) Close() error { return db.conn.Close() }

func (db *DB) Conn() *sql.DB { return db.conn }

func (db *DB) Queries() *Queries { return db.queries }

// WithTx runs fn in a transaction, committing only when fn returns nil.
func (db *DB) WithTx(ctx context.Context, fn func(*Queries) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(db.queries.WithTx(tx)); err != nil {
		return err
	}
	return tx.Commit()
}
