package sqlitestore

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrymomot/sqlitestore/pkg/options"
	"github.com/dmitrymomot/sqlitestore/pkg/sessiondb"
)

// DefaultMaxAge is the record lifetime used when a session carries no cookie max-age.
const DefaultMaxAge = 24 * time.Hour

// Config holds store configuration
type Config struct {
	// MaxAge is the default record lifetime.
	MaxAge time.Duration `env:"SESSION_MAX_AGE" envDefault:"24h"`

	// DB configures the storage engine.
	DB sessiondb.Config
}

// DefaultConfig returns default store configuration
func DefaultConfig() Config {
	return Config{
		MaxAge: DefaultMaxAge,
		DB:     sessiondb.DefaultConfig(),
	}
}

// DefaultOptions returns the default configuration as an option map, the
// first candidate merged by NewFromOptions.
func DefaultOptions() map[string]any {
	return DefaultConfig().Options()
}

// Options renders c as an option map accepted by ConfigFromOptions.
// Durations are in milliseconds.
func (c Config) Options() map[string]any {
	opts := map[string]any{
		"driver":          c.DB.Driver,
		"db":              c.DB.DB,
		"dir":             c.DB.Dir,
		"table":           c.DB.Table,
		"mode":            c.DB.Mode,
		"concurrentDb":    c.DB.ConcurrentDB,
		"maxAge":          c.MaxAge.Milliseconds(),
		"cleanupInterval": c.DB.CleanupInterval.Milliseconds(),
		"busyTimeout":     c.DB.BusyTimeout.Milliseconds(),
	}
	if c.DB.Postgres.ConnectionString != "" {
		opts["connString"] = c.DB.Postgres.ConnectionString
	}
	return opts
}

// ConfigFromOptions decodes an option map on top of DefaultConfig. Unknown
// keys are ignored.
func ConfigFromOptions(opts map[string]any) (Config, error) {
	return DefaultConfig().WithOptions(opts)
}

// WithOptions returns a copy of c with the keys present in opts applied,
// validated.
func (c Config) WithOptions(opts map[string]any) (Config, error) {
	cfg := c

	strs := []struct {
		key string
		dst *string
	}{
		{"driver", &cfg.DB.Driver},
		{"db", &cfg.DB.DB},
		{"dir", &cfg.DB.Dir},
		{"table", &cfg.DB.Table},
		{"mode", &cfg.DB.Mode},
		{"connString", &cfg.DB.Postgres.ConnectionString},
	}
	for _, f := range strs {
		v, ok, err := options.String(opts, f.key)
		if err != nil {
			return Config{}, invalidOption(f.key, err)
		}
		if ok {
			*f.dst = v
		}
	}

	durs := []struct {
		key string
		dst *time.Duration
	}{
		{"maxAge", &cfg.MaxAge},
		{"cleanupInterval", &cfg.DB.CleanupInterval},
		{"busyTimeout", &cfg.DB.BusyTimeout},
	}
	for _, f := range durs {
		v, ok, err := options.Millis(opts, f.key)
		if err != nil {
			return Config{}, invalidOption(f.key, err)
		}
		if ok {
			*f.dst = v
		}
	}

	// "concurentDb" is accepted as a legacy spelling.
	for _, key := range []string{"concurentDb", "concurrentDb"} {
		v, ok, err := options.Bool(opts, key)
		if err != nil {
			return Config{}, invalidOption(key, err)
		}
		if ok {
			cfg.DB.ConcurrentDB = v
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that Open would otherwise reject late or misuse.
func (c Config) Validate() error {
	if c.MaxAge <= 0 {
		return fmt.Errorf("%w: maxAge must be positive, got %s", ErrInvalidConfig, c.MaxAge)
	}
	if c.DB.CleanupInterval < 0 {
		return fmt.Errorf("%w: cleanupInterval must not be negative", ErrInvalidConfig)
	}
	if !sessiondb.ValidTableName(c.DB.Table) {
		return fmt.Errorf("%w: table %q", ErrInvalidConfig, c.DB.Table)
	}
	return nil
}

func invalidOption(key string, err error) error {
	return errors.Join(fmt.Errorf("%w: option %q", ErrInvalidConfig, key), err)
}
