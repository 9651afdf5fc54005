package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/wiz/internal/core/logging"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migration is one schema version. Files are named NNNN_name.up.sql and
// NNNN_name.down.sql and must come in pairs.
type migration struct {
	version int
	name    string
	up      string
	down    string
}

// migrationFile is a parsed migration file name.
type migrationFile struct {
	version int
	name    string
	up      bool
}

var errBadMigrationName = errors.New("expected NNNN_name.up.sql or NNNN_name.down.sql")

func parseMigrationName(filename string) (migrationFile, error) {
	base, up := strings.CutSuffix(filename, ".up.sql")
	if !up {
		var down bool
		base, down = strings.CutSuffix(filename, ".down.sql")
		if !down {
			return migrationFile{}, errBadMigrationName
		}
	}

	num, name, ok := strings.Cut(base, "_")
	if !ok || name == "" {
		return migrationFile{}, errBadMigrationName
	}
	version, err := strconv.Atoi(num)
	if err != nil || version < 1 {
		return migrationFile{}, fmt.Errorf("%w: bad version %q", errBadMigrationName, num)
	}
	return migrationFile{version: version, name: name, up: up}, nil
}

// readMigrations loads every migration under dir in fsys, ordered by version.
func readMigrations(fsys fs.FS, dir string) ([]migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	byVersion := map[int]*migration{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		f, err := parseMigrationName(entry.Name())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Name(), err)
		}
		body, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}

		m := byVersion[f.version]
		if m == nil {
			m = &migration{version: f.version, name: f.name}
			byVersion[f.version] = m
		}
		slot := &m.down
		if f.up {
			slot = &m.up
		}
		if *slot != "" {
			return nil, fmt.Errorf("%s: duplicate migration for version %04d", entry.Name(), f.version)
		}
		*slot = string(body)
	}

	out := make([]migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.up == "" || m.down == "" {
			return nil, fmt.Errorf("migration %04d (%s) needs both up and down files", m.version, m.name)
		}
		out = append(out, *m)
	}
	slices.SortFunc(out, func(a, b migration) int { return a.version - b.version })
	return out, nil
}

func embeddedMigrations() ([]migration, error) {
	return readMigrations(migrationsFS, "migrations")
}

// schema applies and reverts migrations against a connection, tracking
// versions in schema_migrations.
type schema struct {
	conn *sql.DB
	log  zerolog.Logger
}

func newSchema(ctx context.Context, conn *sql.DB) (schema, error) {
	_, err := conn.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		name       TEXT NOT NULL,
		applied_at INTEGER NOT NULL
	)`)
	if err != nil {
		return schema{}, fmt.Errorf("create schema_migrations: %w", err)
	}
	return schema{conn: conn, log: logging.Component("db")}, nil
}

// applied returns the set of recorded versions.
func (s schema) applied(ctx context.Context) (map[int]bool, error) {
	rows, err := s.conn.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	set := map[int]bool{}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		set[v] = true
	}
	return set, rows.Err()
}

// run executes one direction of m and updates the version table in the same
// transaction.
func (s schema) run(ctx context.Context, m migration, up bool) error {
	script, record, args := m.down, "DELETE FROM schema_migrations WHERE version = ?", []any{m.version}
	verb := "reverting"
	if up {
		script = m.up
		record = "INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)"
		args = []any{m.version, m.name, time.Now().UnixNano()}
		verb = "applying"
	}
	s.log.Info().Int("version", m.version).Str("name", m.name).Msg(verb + " migration")

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, script); err != nil {
		return fmt.Errorf("migration %04d (%s): %w", m.version, m.name, err)
	}
	if _, err := tx.ExecContext(ctx, record, args...); err != nil {
		return fmt.Errorf("migration %04d (%s): record version: %w", m.version, m.name, err)
	}
	return tx.Commit()
}

// migrateUp applies every pending migration in version order.
func migrateUp(ctx context.Context, conn *sql.DB) error {
	all, err := embeddedMigrations()
	if err != nil {
		return err
	}
	s, err := newSchema(ctx, conn)
	if err != nil {
		return err
	}
	done, err := s.applied(ctx)
	if err != nil {
		return err
	}

	for _, m := range all {
		if done[m.version] {
			continue
		}
		if err := s.run(ctx, m, true); err != nil {
			return err
		}
	}
	return nil
}

// MigrateDown reverts the n most recent applied migrations.
func MigrateDown(ctx context.Context, conn *sql.DB, n int) error {
	if n < 1 {
		return fmt.Errorf("migrate down: n must be positive, got %d", n)
	}

	all, err := embeddedMigrations()
	if err != nil {
		return err
	}
	s, err := newSchema(ctx, conn)
	if err != nil {
		return err
	}
	done, err := s.applied(ctx)
	if err != nil {
		return err
	}

	var revert []migration
	for _, m := range slices.Backward(all) {
		if done[m.version] {
			revert = append(revert, m)
		}
	}
	if n > len(revert) {
		return fmt.Errorf("migrate down: %d requested, %d applied", n, len(revert))
	}

	for _, m := range revert[:n] {
		if err := s.run(ctx, m, false); err != nil {
			return err
		}
	}
	return nil
}
