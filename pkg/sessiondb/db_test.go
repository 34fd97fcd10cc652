package sessiondb_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sqlitestore/pkg/logger"
	"github.com/dmitrymomot/sqlitestore/pkg/sessiondb"
)

func memoryConfig() sessiondb.Config {
	cfg := sessiondb.DefaultConfig()
	cfg.DB = ":memory:"
	cfg.CleanupInterval = 0
	return cfg
}

func openMemory(t *testing.T, mutate ...func(*sessiondb.Config)) *sessiondb.DB {
	t.Helper()
	cfg := memoryConfig()
	for _, fn := range mutate {
		fn(&cfg)
	}
	db, err := sessiondb.Open(context.Background(), cfg, sessiondb.WithLogger(logger.Discard()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func mockRecords() []sessiondb.Record {
	return []sessiondb.Record{
		{SID: "123", Payload: `{"test":1}`, ExpiresAt: 10000},
		{SID: "124", Payload: `{"test":2}`, ExpiresAt: 10000},
		{SID: "125", Payload: `{"test":1}`, ExpiresAt: time.Now().Add(30 * time.Second).UnixMilli()},
	}
}

func insertMock(t *testing.T, db *sessiondb.DB) {
	t.Helper()
	for _, rec := range mockRecords() {
		require.NoError(t, db.Upsert(context.Background(), rec))
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("in-memory database", func(t *testing.T) {
		db := openMemory(t)
		assert.Equal(t, "sessions", db.Table())
		assert.Equal(t, sessiondb.DriverSQLite, db.Driver())

		n, err := db.Count(context.Background())
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("invalid table name", func(t *testing.T) {
		cfg := memoryConfig()
		cfg.Table = "sessions; DROP TABLE users"
		_, err := sessiondb.Open(context.Background(), cfg)
		assert.ErrorIs(t, err, sessiondb.ErrInvalidTable)
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := memoryConfig()
		cfg.Driver = "oracle"
		_, err := sessiondb.Open(context.Background(), cfg)
		assert.ErrorIs(t, err, sessiondb.ErrInvalidDriver)
	})

	t.Run("unknown mode", func(t *testing.T) {
		cfg := memoryConfig()
		cfg.DB = "sessions.db"
		cfg.Dir = t.TempDir()
		cfg.Mode = "append"
		_, err := sessiondb.Open(context.Background(), cfg)
		assert.ErrorIs(t, err, sessiondb.ErrOpen)
		assert.ErrorIs(t, err, sessiondb.ErrInvalidMode)
	})

	t.Run("postgres without connection string", func(t *testing.T) {
		cfg := memoryConfig()
		cfg.Driver = sessiondb.DriverPostgres
		_, err := sessiondb.Open(context.Background(), cfg)
		assert.ErrorIs(t, err, sessiondb.ErrOpen)
	})

	t.Run("file database persists across reopen", func(t *testing.T) {
		cfg := sessiondb.DefaultConfig()
		cfg.Dir = t.TempDir()
		cfg.DB = "sessions.db"
		cfg.CleanupInterval = 0

		ctx := context.Background()
		exp := time.Now().Add(time.Hour).UnixMilli()

		db, err := sessiondb.Open(ctx, cfg, sessiondb.WithLogger(logger.Discard()))
		require.NoError(t, err)
		require.NoError(t, db.Upsert(ctx, sessiondb.Record{SID: "a", Payload: "{}", ExpiresAt: exp}))
		require.NoError(t, db.Close())
		assert.FileExists(t, filepath.Join(cfg.Dir, "sessions.db"))

		db, err = sessiondb.Open(ctx, cfg, sessiondb.WithLogger(logger.Discard()))
		require.NoError(t, err)
		defer db.Close()

		rec, ok, err := db.FindVisible(ctx, "a", time.Now())
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, exp, rec.ExpiresAt)
	})

	t.Run("write-ahead log when concurrent", func(t *testing.T) {
		cfg := sessiondb.DefaultConfig()
		cfg.Dir = t.TempDir()
		cfg.DB = "wal.db"
		cfg.ConcurrentDB = true
		cfg.CleanupInterval = 0

		ctx := context.Background()
		db, err := sessiondb.Open(ctx, cfg, sessiondb.WithLogger(logger.Discard()))
		require.NoError(t, err)
		defer db.Close()

		require.NoError(t, db.Upsert(ctx, sessiondb.Record{SID: "a", Payload: "{}", ExpiresAt: time.Now().Add(time.Hour).UnixMilli()}))
		assert.FileExists(t, filepath.Join(cfg.Dir, "wal.db-wal"))
	})

	t.Run("sweeps expired records on open", func(t *testing.T) {
		cfg := sessiondb.DefaultConfig()
		cfg.Dir = t.TempDir()
		cfg.DB = "sweep.db"
		cfg.CleanupInterval = 0

		ctx := context.Background()
		db, err := sessiondb.Open(ctx, cfg, sessiondb.WithLogger(logger.Discard()))
		require.NoError(t, err)
		insertMock(t, db)
		require.NoError(t, db.Close())

		db, err = sessiondb.Open(ctx, cfg, sessiondb.WithLogger(logger.Discard()))
		require.NoError(t, err)
		defer db.Close()

		n, err := db.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}

func TestPath(t *testing.T) {
	t.Parallel()

	db := openMemory(t, func(c *sessiondb.Config) { c.Dir = "/var/lib/app" })

	for _, name := range []string{":memory:", "file:shared?mode=memory&cache=shared", ""} {
		assert.Equal(t, name, db.Path(name), "name %q should pass through", name)
	}
	assert.Equal(t, filepath.Join("/var/lib/app", "test"), db.Path("test"))
}

func TestSchema(t *testing.T) {
	t.Parallel()

	db := openMemory(t, func(c *sessiondb.Config) { c.Table = "web_sessions" })
	schema := db.Schema()

	assert.NotEmpty(t, schema)
	assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS web_sessions")
	assert.Contains(t, schema, "sid TEXT PRIMARY KEY")
	assert.Contains(t, schema, "sess TEXT NOT NULL")
	assert.Contains(t, schema, "expired INTEGER NOT NULL")

	// Creating again is a no-op.
	require.NoError(t, db.Create(context.Background()))
}

func TestCountAndSweep(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openMemory(t)
	insertMock(t, db)

	n, err := db.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(mockRecords())), n)

	removed, err := db.Sweep(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	n, err = db.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// Sweeping again removes nothing.
	removed, err = db.Sweep(ctx, time.Now())
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestSweep_StrictlyPast(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openMemory(t)
	require.NoError(t, db.Upsert(ctx, sessiondb.Record{SID: "edge", Payload: "{}", ExpiresAt: 5000}))

	removed, err := db.Sweep(ctx, time.UnixMilli(5000))
	require.NoError(t, err)
	assert.Zero(t, removed, "a record expiring exactly at now is still visible")

	removed, err = db.Sweep(ctx, time.UnixMilli(5001))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestSweepRoutine(t *testing.T) {
	t.Parallel()

	db := openMemory(t, func(c *sessiondb.Config) { c.CleanupInterval = 20 * time.Millisecond })
	insertMock(t, db)

	assert.Eventually(t, func() bool {
		n, err := db.Count(context.Background())
		return err == nil && n == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestFindVisible(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openMemory(t)
	insertMock(t, db)
	now := time.Now()

	for _, sid := range []string{"123", "124"} {
		_, ok, err := db.FindVisible(ctx, sid, now)
		require.NoError(t, err)
		assert.False(t, ok, "expired record %s must be invisible", sid)
	}

	rec, ok, err := db.FindVisible(ctx, "125", now)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "125", rec.SID)
	assert.JSONEq(t, `{"test":1}`, rec.Payload)

	_, ok, err = db.FindVisible(ctx, uuid.NewString(), now)
	require.NoError(t, err)
	assert.False(t, ok)

	t.Run("boundary is inclusive", func(t *testing.T) {
		_, ok, err := db.FindVisible(ctx, "123", time.UnixMilli(10000))
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestUpsert(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openMemory(t)
	now := time.Now()
	sid := uuid.NewString()

	require.NoError(t, db.Upsert(ctx, sessiondb.Record{SID: sid, Payload: `{"v":1}`, ExpiresAt: now.Add(time.Hour).UnixMilli()}))
	require.NoError(t, db.Upsert(ctx, sessiondb.Record{SID: sid, Payload: `{"v":2}`, ExpiresAt: now.Add(2 * time.Hour).UnixMilli()}))

	rec, ok, err := db.FindVisible(ctx, sid, now)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"v":2}`, rec.Payload)
	assert.Equal(t, now.Add(2*time.Hour).UnixMilli(), rec.ExpiresAt)

	n, err := db.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	t.Run("invalid records", func(t *testing.T) {
		assert.ErrorIs(t, db.Upsert(ctx, sessiondb.Record{Payload: "{}", ExpiresAt: 1}), sessiondb.ErrInvalidRecord)
		assert.ErrorIs(t, db.Upsert(ctx, sessiondb.Record{SID: "x", Payload: "{}", ExpiresAt: -1}), sessiondb.ErrInvalidRecord)
	})
}

func TestTouch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openMemory(t)
	insertMock(t, db)
	now := time.Now()
	later := now.Add(time.Hour).UnixMilli()

	t.Run("extends visible record", func(t *testing.T) {
		updated, err := db.Touch(ctx, "125", later, now)
		require.NoError(t, err)
		assert.True(t, updated)

		rec, ok, err := db.FindVisible(ctx, "125", now)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, later, rec.ExpiresAt)
	})

	t.Run("does not resurrect expired record", func(t *testing.T) {
		updated, err := db.Touch(ctx, "123", later, now)
		require.NoError(t, err)
		assert.False(t, updated)

		_, ok, err := db.FindVisible(ctx, "123", now)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("missing record", func(t *testing.T) {
		updated, err := db.Touch(ctx, "missing", later, now)
		require.NoError(t, err)
		assert.False(t, updated)
	})

	t.Run("negative expiration", func(t *testing.T) {
		_, err := db.Touch(ctx, "125", -1, now)
		assert.ErrorIs(t, err, sessiondb.ErrInvalidRecord)
	})
}

func TestDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openMemory(t)
	insertMock(t, db)

	require.NoError(t, db.Delete(ctx, "125"))
	require.NoError(t, db.Delete(ctx, "125"), "deleting a missing record is not an error")

	n, err := db.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestDeleteAll(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openMemory(t)
	insertMock(t, db)

	require.NoError(t, db.DeleteAll(ctx))

	n, err := db.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAll(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openMemory(t)

	recs, err := db.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, recs)

	insertMock(t, db)

	recs, err = db.All(ctx)
	require.NoError(t, err)
	assert.Len(t, recs, 3, "listing does not filter by expiration")

	sids := make([]string, 0, len(recs))
	for _, r := range recs {
		sids = append(sids, r.SID)
	}
	assert.ElementsMatch(t, []string{"123", "124", "125"}, sids)
}

func TestClose(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := memoryConfig()
	cfg.CleanupInterval = 10 * time.Millisecond
	db, err := sessiondb.Open(ctx, cfg, sessiondb.WithLogger(logger.Discard()))
	require.NoError(t, err)

	health := sessiondb.Healthcheck(db)
	require.NoError(t, health(ctx))

	require.NoError(t, db.Close())
	require.NoError(t, db.Close(), "close is idempotent")

	assert.ErrorIs(t, health(ctx), sessiondb.ErrClosed)
	assert.ErrorIs(t, db.Upsert(ctx, sessiondb.Record{SID: "a", ExpiresAt: 1}), sessiondb.ErrClosed)
	_, _, err = db.FindVisible(ctx, "a", time.Now())
	assert.ErrorIs(t, err, sessiondb.ErrClosed)
	_, err = db.Touch(ctx, "a", 1, time.Now())
	assert.ErrorIs(t, err, sessiondb.ErrClosed)
	assert.ErrorIs(t, db.Delete(ctx, "a"), sessiondb.ErrClosed)
	assert.ErrorIs(t, db.DeleteAll(ctx), sessiondb.ErrClosed)
	_, err = db.Count(ctx)
	assert.ErrorIs(t, err, sessiondb.ErrClosed)
	_, err = db.All(ctx)
	assert.ErrorIs(t, err, sessiondb.ErrClosed)
	_, err = db.Sweep(ctx, time.Now())
	assert.ErrorIs(t, err, sessiondb.ErrClosed)
}

func TestSweepUsesClock(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := memoryConfig()
	cfg.CleanupInterval = 10 * time.Millisecond

	// A clock stuck in the past keeps the periodic sweep from removing anything.
	db, err := sessiondb.Open(ctx, cfg,
		sessiondb.WithLogger(logger.Discard()),
		sessiondb.WithClock(func() time.Time { return time.UnixMilli(0) }),
	)
	require.NoError(t, err)
	defer db.Close()

	insertMock(t, db)
	time.Sleep(50 * time.Millisecond)

	n, err := db.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	assert.False(t, sessiondb.IsBusyError(nil))
	assert.False(t, sessiondb.IsBusyError(errors.New("busy")))
	assert.False(t, sessiondb.IsConstraintError(errors.New("constraint")))

	t.Run("postgres", func(t *testing.T) {
		notNull := fmt.Errorf("upsert: %w", &pgconn.PgError{Code: "23502"})
		assert.True(t, sessiondb.IsConstraintError(notNull))
		assert.True(t, sessiondb.IsConstraintError(&pgconn.PgError{Code: "23505"}))
		assert.False(t, sessiondb.IsConstraintError(&pgconn.PgError{Code: "42P01"}))

		assert.True(t, sessiondb.IsBusyError(&pgconn.PgError{Code: "55P03"}))
		assert.True(t, sessiondb.IsBusyError(fmt.Errorf("sweep: %w", &pgconn.PgError{Code: "40P01"})))
		assert.False(t, sessiondb.IsBusyError(notNull))
	})
}
