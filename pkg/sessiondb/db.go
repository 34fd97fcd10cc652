package sessiondb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite"

	"github.com/dmitrymomot/sqlitestore/pkg/logger"
	"github.com/dmitrymomot/sqlitestore/pkg/pg"
)

// DB owns the physical session table: the connection, the schema and the
// expiration sweep. It is safe for concurrent use.
type DB struct {
	cfg     Config
	dialect dialect
	q       queries
	path    string

	conn *sql.DB
	pool *pgxpool.Pool

	log *slog.Logger
	now func() time.Time

	closed    atomic.Bool
	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// Open connects to the configured backing store, creates the session table
// if needed, sweeps expired records once and starts the periodic sweep.
// Any failure is returned and leaves nothing running.
func Open(ctx context.Context, cfg Config, opts ...Option) (*DB, error) {
	if cfg.Driver == "" {
		cfg.Driver = DriverSQLite
	}
	d, ok := dialects[cfg.Driver]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDriver, cfg.Driver)
	}
	if !ValidTableName(cfg.Table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTable, cfg.Table)
	}

	db := &DB{
		cfg:     cfg,
		dialect: d,
		q:       d.queries(cfg.Table),
		log:     slog.Default(),
		now:     time.Now,
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(db)
	}
	db.log = db.log.With(logger.Component("sessiondb"), logger.Driver(d.name), logger.Table(cfg.Table))

	var err error
	switch cfg.Driver {
	case DriverPostgres:
		db.conn, db.pool, err = pg.OpenDB(ctx, cfg.Postgres)
	default:
		db.path = db.Path(cfg.DB)
		db.conn, err = openSQLite(ctx, db.path, cfg)
	}
	if err != nil {
		return nil, errors.Join(ErrOpen, err)
	}

	if err := db.Create(ctx); err != nil {
		_ = db.closeConn()
		return nil, errors.Join(ErrCreateSchema, err)
	}

	db.sweepAndLog(ctx)
	db.startSweeper()

	return db, nil
}

// Path resolves a database name against the configured directory. In-memory
// names and the empty anonymous name are returned unchanged.
func (db *DB) Path(name string) string {
	if isMemoryName(name) || name == "" {
		return name
	}
	return filepath.Join(db.cfg.Dir, name)
}

// Schema returns the idempotent table creation statement.
func (db *DB) Schema() string {
	return db.q.schema
}

// Table returns the session table name.
func (db *DB) Table() string {
	return db.cfg.Table
}

// Driver returns the storage dialect name.
func (db *DB) Driver() string {
	return db.dialect.name
}

// Create ensures the session table exists, enabling write-ahead logging first
// when the engine is configured for concurrent access.
func (db *DB) Create(ctx context.Context) error {
	if db.cfg.ConcurrentDB && db.dialect.name == DriverSQLite {
		var mode string
		if err := db.conn.QueryRowContext(ctx, "PRAGMA journal_mode = WAL").Scan(&mode); err != nil {
			return err
		}
		db.log.DebugContext(ctx, "journal mode set", slog.String("journal_mode", mode))
	}
	if _, err := db.conn.ExecContext(ctx, db.q.schema); err != nil {
		return err
	}
	if db.cfg.Mode != ModeReadOnly {
		if _, err := db.conn.ExecContext(ctx, db.q.index); err != nil {
			return err
		}
	}
	db.log.InfoContext(ctx, "session table ready")
	return nil
}

// Upsert inserts rec or fully replaces the stored record with the same sid.
func (db *DB) Upsert(ctx context.Context, rec Record) error {
	if rec.SID == "" || rec.ExpiresAt < 0 {
		return ErrInvalidRecord
	}
	if db.closed.Load() {
		return ErrClosed
	}
	_, err := db.conn.ExecContext(ctx, db.q.upsert, rec.SID, rec.Payload, rec.ExpiresAt)
	return err
}

// FindVisible returns the record for sid if it has not expired at now.
// ok is false when no visible record exists.
func (db *DB) FindVisible(ctx context.Context, sid string, now time.Time) (rec Record, ok bool, err error) {
	if db.closed.Load() {
		return Record{}, false, ErrClosed
	}
	rec.SID = sid
	err = db.conn.QueryRowContext(ctx, db.q.find, sid, now.UnixMilli()).Scan(&rec.Payload, &rec.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, err
	}
	return rec, true, nil
}

// Touch moves the expiration of sid to expiresAt if the record is still
// visible at now. It reports whether a record was updated.
func (db *DB) Touch(ctx context.Context, sid string, expiresAt int64, now time.Time) (bool, error) {
	if expiresAt < 0 {
		return false, ErrInvalidRecord
	}
	if db.closed.Load() {
		return false, ErrClosed
	}
	res, err := db.conn.ExecContext(ctx, db.q.touch, expiresAt, sid, now.UnixMilli())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete removes the record for sid. A missing record is not an error.
func (db *DB) Delete(ctx context.Context, sid string) error {
	if db.closed.Load() {
		return ErrClosed
	}
	_, err := db.conn.ExecContext(ctx, db.q.delete, sid)
	return err
}

// DeleteAll removes every record.
func (db *DB) DeleteAll(ctx context.Context) error {
	if db.closed.Load() {
		return ErrClosed
	}
	_, err := db.conn.ExecContext(ctx, db.q.clear)
	return err
}

// Count returns the number of stored records, expired ones included.
func (db *DB) Count(ctx context.Context) (int64, error) {
	if db.closed.Load() {
		return 0, ErrClosed
	}
	var n int64
	if err := db.conn.QueryRowContext(ctx, db.q.count).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// All returns every stored record without filtering by expiration.
func (db *DB) All(ctx context.Context) ([]Record, error) {
	if db.closed.Load() {
		return nil, ErrClosed
	}
	rows, err := db.conn.QueryContext(ctx, db.q.all)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.SID, &rec.Payload, &rec.ExpiresAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Sweep deletes every record that expired strictly before now and returns
// how many were removed.
func (db *DB) Sweep(ctx context.Context, now time.Time) (int64, error) {
	if db.closed.Load() {
		return 0, ErrClosed
	}
	res, err := db.conn.ExecContext(ctx, db.q.sweep, now.UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Close stops the periodic sweep and closes the connection. It is safe to
// call more than once.
func (db *DB) Close() error {
	var err error
	db.closeOnce.Do(func() {
		db.closed.Store(true)
		close(db.done)
		db.wg.Wait()
		err = db.closeConn()
	})
	return err
}

func (db *DB) closeConn() error {
	var err error
	if db.conn != nil {
		err = db.conn.Close()
	}
	if db.pool != nil {
		db.pool.Close()
	}
	return err
}

// Healthcheck returns a closure that pings the backing store.
func Healthcheck(db *DB) func(context.Context) error {
	return func(ctx context.Context) error {
		if db.closed.Load() {
			return ErrClosed
		}
		return db.conn.PingContext(ctx)
	}
}

func isMemoryName(name string) bool {
	return strings.Contains(name, ":memory:") || strings.Contains(name, "mode=memory")
}
