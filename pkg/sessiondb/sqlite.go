package sessiondb

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
)

// openSQLite opens path with the pure-Go modernc.org/sqlite driver.
func openSQLite(ctx context.Context, path string, cfg Config) (*sql.DB, error) {
	dsn, err := sqliteDSN(path, cfg)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// In-memory and anonymous databases live inside a single connection; a
	// larger pool would hand different callers different databases.
	if path == "" || isMemoryName(path) || cfg.Mode == ModeMemory {
		conn.SetMaxOpenConns(1)
		conn.SetConnMaxIdleTime(0)
		conn.SetConnMaxLifetime(0)
	}

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}

// sqliteDSN builds the driver DSN. File databases are opened as SQLite URIs so
// that the open mode applies; busy_timeout is set on every pooled connection.
func sqliteDSN(path string, cfg Config) (string, error) {
	mode := cfg.Mode
	if mode == "" {
		mode = ModeReadWriteCreate
	}
	switch mode {
	case ModeReadOnly, ModeReadWrite, ModeReadWriteCreate, ModeMemory:
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}

	if path == "" || (isMemoryName(path) && mode != ModeMemory) {
		return path, nil
	}

	params := url.Values{}
	if !strings.Contains(path, "mode=") {
		params.Set("mode", mode)
	}
	if ms := cfg.BusyTimeout.Milliseconds(); ms > 0 {
		params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", ms))
	}

	dsn := path
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	if len(params) == 0 {
		return dsn, nil
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + params.Encode(), nil
}
