package sessiondb

import (
	"log/slog"
	"time"
)

// Option is a functional option for configuring the engine
type Option func(*DB)

// WithLogger sets the logger used for schema and sweep events.
func WithLogger(l *slog.Logger) Option {
	return func(db *DB) {
		if l != nil {
			db.log = l
		}
	}
}

// WithClock overrides the time source used by the background sweep.
func WithClock(now func() time.Time) Option {
	return func(db *DB) {
		if now != nil {
			db.now = now
		}
	}
}
