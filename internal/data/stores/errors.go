package stores

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/colonyops/wiz/internal/core/logging"
	"github.com/colonyops/wiz/internal/data/db"
)

func sqliteCode(err error) (int, bool) {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code(), true
	}
	return 0, false
}

// IsBusyError reports SQLITE_BUSY, including its extended codes.
func IsBusyError(err error) bool {
	code, ok := sqliteCode(err)
	return ok && code&0xff == sqlite3.SQLITE_BUSY
}

// IsUniqueError reports a UNIQUE or PRIMARY KEY violation.
func IsUniqueError(err error) bool {
	code, ok := sqliteCode(err)
	return ok && (code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY)
}

func IsNotFoundError(err error) bool { return errors.Is(err, sql.ErrNoRows) }

var corruptMessages = []string{
	"database disk image is malformed",
	"file is not a database",
}

// IsCorruptionError reports errors meaning the database file is unusable.
// Some driver paths only surface the message, so it is matched as well.
func IsCorruptionError(err error) bool {
	if err == nil {
		return false
	}
	if code, ok := sqliteCode(err); ok {
		switch code & 0xff {
		case sqlite3.SQLITE_CORRUPT, sqlite3.SQLITE_NOTADB:
			return true
		}
	}
	msg := err.Error()
	for _, m := range corruptMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// Quarantine moves the database in dataDir and its -wal and -shm sidecars to
// "<file>.corrupt.<stamp>". Missing files are skipped. A sidecar that cannot
// be moved is removed, since SQLite would otherwise replay it into the new
// database.
func Quarantine(dataDir string, now time.Time) (string, error) {
	src := db.Path(dataDir)
	dst := fmt.Sprintf("%s.corrupt.%s", src, now.Format("20060102-150405"))

	if err := os.Rename(src, dst); err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("quarantine database: %w", err)
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		err := os.Rename(src+suffix, dst+suffix)
		if err == nil || os.IsNotExist(err) {
			continue
		}
		if rmErr := os.Remove(src + suffix); rmErr != nil && !os.IsNotExist(rmErr) {
			return "", fmt.Errorf("quarantine %s: %w", suffix, err)
		}
	}
	return dst, nil
}

// OpenDatabase opens the database in dataDir. A corrupt file is quarantined
// and replaced by an empty database.
func OpenDatabase(dataDir string, opts db.OpenOptions) (*db.DB, error) {
	database, err := db.Open(dataDir, opts)
	if err == nil || !IsCorruptionError(err) {
		return database, err
	}

	backup, qerr := Quarantine(dataDir, time.Now())
	if qerr != nil {
		return nil, errors.Join(err, qerr)
	}
	log := logging.Component("db")
	log.Warn().Err(err).Str("backup", backup).Msg("database was corrupt; starting fresh")
	return db.Open(dataDir, opts)
}
