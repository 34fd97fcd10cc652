package sessiondb

import (
	"errors"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/dmitrymomot/sqlitestore/pkg/pg"
)

var (
	// ErrOpen indicates the backing store could not be opened
	ErrOpen = errors.New("sessiondb.open_failed")

	// ErrCreateSchema indicates the session table could not be created
	ErrCreateSchema = errors.New("sessiondb.create_schema_failed")

	// ErrInvalidTable indicates the configured table name is not a plain identifier
	ErrInvalidTable = errors.New("sessiondb.invalid_table")

	// ErrInvalidDriver indicates an unsupported driver name
	ErrInvalidDriver = errors.New("sessiondb.invalid_driver")

	// ErrInvalidMode indicates an unsupported SQLite open mode
	ErrInvalidMode = errors.New("sessiondb.invalid_mode")

	// ErrInvalidRecord indicates a record without sid or with a negative expiration
	ErrInvalidRecord = errors.New("sessiondb.invalid_record")

	// ErrClosed indicates the engine has been closed
	ErrClosed = errors.New("sessiondb.closed")
)

// IsBusyError reports whether err is lock contention: SQLITE_BUSY or
// SQLITE_LOCKED on sqlite, a lock, deadlock or serialization failure on postgres.
func IsBusyError(err error) bool {
	if code, ok := sqliteCode(err); ok {
		return code == sqlite3.SQLITE_BUSY || code == sqlite3.SQLITE_LOCKED
	}
	return pg.IsLockError(err)
}

// IsConstraintError reports whether err is a constraint violation on either dialect.
func IsConstraintError(err error) bool {
	if code, ok := sqliteCode(err); ok {
		return code == sqlite3.SQLITE_CONSTRAINT
	}
	return pg.IsConstraintError(err)
}

// sqliteCode returns the primary result code of an SQLite error.
func sqliteCode(err error) (int, bool) {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return 0, false
	}
	return serr.Code() & 0xff, true
}
