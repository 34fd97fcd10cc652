package sessiondb

import (
	"time"

	"github.com/dmitrymomot/sqlitestore/pkg/pg"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// SQLite open modes, mapped onto the "mode" URI parameter.
const (
	ModeReadOnly        = "ro"
	ModeReadWrite       = "rw"
	ModeReadWriteCreate = "rwc"
	ModeMemory          = "memory"
)

// Config holds engine configuration. It is read once by Open and never
// mutated afterwards.
type Config struct {
	// Driver selects the storage dialect: "sqlite" (default) or "postgres".
	Driver string `env:"SESSION_DB_DRIVER" envDefault:"sqlite"`

	// DB is the database file name, ":memory:" for an anonymous in-memory
	// database, or "" for an anonymous on-disk database.
	DB string `env:"SESSION_DB_NAME" envDefault:"sessions"`

	// Dir is prepended to DB unless DB names an in-memory database.
	Dir string `env:"SESSION_DB_DIR" envDefault:"."`

	// Table is the session table name.
	Table string `env:"SESSION_DB_TABLE" envDefault:"sessions"`

	// Mode is the SQLite open mode: ro, rw, rwc or memory.
	Mode string `env:"SESSION_DB_MODE" envDefault:"rwc"`

	// ConcurrentDB enables SQLite write-ahead logging.
	ConcurrentDB bool `env:"SESSION_DB_CONCURRENT" envDefault:"false"`

	// CleanupInterval is the period of the expiration sweep (0 disables the periodic sweep)
	CleanupInterval time.Duration `env:"SESSION_DB_CLEANUP_INTERVAL" envDefault:"1h"`

	// BusyTimeout is how long SQLite waits on a locked database before failing.
	BusyTimeout time.Duration `env:"SESSION_DB_BUSY_TIMEOUT" envDefault:"5s"`

	// Postgres configures the postgres driver.
	Postgres pg.Config
}

// DefaultConfig returns default engine configuration
func DefaultConfig() Config {
	return Config{
		Driver:          DriverSQLite,
		DB:              "sessions",
		Dir:             ".",
		Table:           "sessions",
		Mode:            ModeReadWriteCreate,
		CleanupInterval: time.Hour,
		BusyTimeout:     5 * time.Second,
		Postgres: pg.Config{
			MaxOpenConns:  10,
			RetryAttempts: 3,
			RetryInterval: 2 * time.Second,
		},
	}
}
