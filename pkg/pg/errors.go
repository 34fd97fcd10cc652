package pg

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrFailedToOpenDBConnection = errors.New("failed to open db connection")
	ErrEmptyConnectionString    = errors.New("empty postgres connection string, use SESSION_PG_CONN_URL env var")
	ErrFailedToParseDBConfig    = errors.New("failed to parse db config")
)

// IsConstraintError detects any integrity constraint violation (SQLSTATE class 23).
func IsConstraintError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "23")
}

// IsLockError detects lock contention: lock_not_available (55P03),
// deadlock_detected (40P01) and serialization_failure (40001).
func IsLockError(err error) bool {
	return hasCode(err, "55P03") || hasCode(err, "40P01") || hasCode(err, "40001")
}

func hasCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
