// Package sqlitestore is a durable, time-bounded session store backed by an
// embedded SQLite database (or PostgreSQL through the same code path).
//
// Each record is keyed by a session id, holds the session serialized as JSON,
// and carries an absolute expiration in milliseconds. Records past their
// expiration are invisible to Get immediately and are physically removed by a
// background sweep.
//
// # Architecture
//
//	┌──────────────┐  validate, TTL, JSON  ┌──────────────────┐
//	│    Store     │ ────────────────────► │  sessiondb.DB    │──► sqlite / postgres
//	└──────────────┘                       └──────────────────┘
//	       │                                        │
//	       ▼                                        ▼
//	 callback.Process                        periodic sweep
//	 (return or handler)                     (DELETE … WHERE now > expired)
//
// Store implements SessionStore, the operation set a host session framework
// calls. Each operation accepts an optional trailing completion handler:
//
//	sess, err := store.Get(ctx, sid)                   // blocking style
//	store.Get(ctx, sid, func(err error, s sqlitestore.Session) { ... }) // handler style
//
// The handler is invoked exactly once; the outcome is returned in both styles.
//
// # Expiration
//
// Set stores the record until now + max-age, where max-age is the session's
// cookie.maxAge (milliseconds) when it is a positive integer and the store's
// configured MaxAge otherwise. Touch moves the expiration to cookie.expires,
// but only for a record that is still visible; a session without
// cookie.expires is left untouched and Touch reports success.
//
// Length and All work on stored records and include expired records that the
// sweep has not removed yet. Get never returns them.
//
// # Configuration
//
// Use New with a typed Config (environment variables through package config)
// or NewFromOptions with option maps merged over DefaultOptions:
//
//	store, err := sqlitestore.NewFromOptions(ctx, map[string]any{
//	    "db":     "sessions.db",
//	    "dir":    "/var/lib/app",
//	    "maxAge": 3600000,
//	})
//
// # Error Handling
//
//   - ErrInvalidSession   – empty sid or nil session passed to Set
//   - ErrCallbackRequired – All called without a completion handler
//   - ErrEncodePayload / ErrDecodePayload – JSON (de)serialization failures
//   - ErrInvalidConfig    – option values that cannot configure a store
//
// Storage errors from package sessiondb are returned unchanged.
package sqlitestore
