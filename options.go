package sqlitestore

import (
	"log/slog"
	"time"
)

// Option is a functional option for configuring the Store
type Option func(*Store)

// WithLogger sets the logger passed to the storage engine.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides the time source for expiration math and the sweep.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}
