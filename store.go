package sqlitestore

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/sqlitestore/pkg/callback"
	"github.com/dmitrymomot/sqlitestore/pkg/options"
	"github.com/dmitrymomot/sqlitestore/pkg/sessiondb"
	"github.com/dmitrymomot/sqlitestore/pkg/sessmeta"
)

// SessionStore is the operation set a host session framework consumes.
// Every method takes an optional trailing completion handler; see package
// callback for the calling contract.
type SessionStore interface {
	// All returns every stored session, expired ones included.
	All(ctx context.Context, cb ...callback.Func[[]Session]) ([]Session, error)

	// Get returns the session for sid, or nil if none is visible.
	Get(ctx context.Context, sid string, cb ...callback.Func[Session]) (Session, error)

	// Set stores sess under sid, replacing any previous record.
	Set(ctx context.Context, sid string, sess Session, cb ...callback.Func[bool]) (bool, error)

	// Destroy removes the session for sid.
	Destroy(ctx context.Context, sid string, cb ...callback.Func[bool]) (bool, error)

	// Touch moves the expiration of a visible session to its cookie expiry.
	Touch(ctx context.Context, sid string, sess Session, cb ...callback.Func[bool]) (bool, error)

	// Length returns the number of stored sessions.
	Length(ctx context.Context, cb ...callback.Func[int64]) (int64, error)

	// Clear removes every session.
	Clear(ctx context.Context, cb ...callback.Func[bool]) (bool, error)
}

var _ SessionStore = (*Store)(nil)

// Store is the SQL-backed SessionStore.
type Store struct {
	db     *sessiondb.DB
	maxAge time.Duration
	now    func() time.Time
	log    *slog.Logger
}

// New opens the storage engine described by cfg and returns a ready Store.
// Engine initialization failures are returned as is.
func New(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Store{
		maxAge: cfg.MaxAge,
		now:    time.Now,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	db, err := sessiondb.Open(ctx, cfg.DB,
		sessiondb.WithLogger(s.log),
		sessiondb.WithClock(s.now),
	)
	if err != nil {
		return nil, err
	}
	s.db = db

	return s, nil
}

// NewFromOptions merges candidates over DefaultOptions, later candidates
// taking precedence, and opens a Store from the result. Candidates that are
// not option maps are ignored.
func NewFromOptions(ctx context.Context, candidates ...any) (*Store, error) {
	merged := options.Build(append([]any{DefaultOptions()}, candidates...)...)
	cfg, err := ConfigFromOptions(merged)
	if err != nil {
		return nil, err
	}
	return New(ctx, cfg)
}

// DB returns the underlying storage engine.
func (s *Store) DB() *sessiondb.DB {
	return s.db
}

// MaxAge returns the default record lifetime.
func (s *Store) MaxAge() time.Duration {
	return s.maxAge
}

// Close stops the background sweep and closes the storage connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// All returns every stored session with a non-empty payload. Expired records
// that have not been swept are included. A completion handler is required;
// without one All does nothing and returns ErrCallbackRequired.
func (s *Store) All(ctx context.Context, cb ...callback.Func[[]Session]) ([]Session, error) {
	if !callback.Provided(cb) {
		return nil, ErrCallbackRequired
	}
	recs, err := s.db.All(ctx)
	return callback.Process(callback.Then(callback.From(recs, err), decodeRecords), cb)
}

// Get returns the session stored under sid if it is visible now. An empty sid
// or a missing or expired record yields a nil Session and no error.
func (s *Store) Get(ctx context.Context, sid string, cb ...callback.Func[Session]) (Session, error) {
	if sid == "" {
		return callback.Process(callback.Success[Session](nil), cb)
	}

	rec, ok, err := s.db.FindVisible(ctx, sid, s.now())
	if err != nil {
		return callback.Process(callback.Failure[Session](err), cb)
	}
	if !ok {
		return callback.Process(callback.Success[Session](nil), cb)
	}
	return callback.Process(callback.Then(callback.Success(rec.Payload), decodeSession), cb)
}

// Set stores sess under sid until now plus the session's cookie max-age, or
// the store's MaxAge when the cookie has none.
func (s *Store) Set(ctx context.Context, sid string, sess Session, cb ...callback.Func[bool]) (bool, error) {
	if sid == "" || sess == nil {
		return callback.Process(callback.Failure[bool](ErrInvalidSession), cb)
	}

	payload, err := encodeSession(sess)
	if err != nil {
		return callback.Process(callback.Failure[bool](err), cb)
	}

	err = s.db.Upsert(ctx, sessiondb.Record{
		SID:       sid,
		Payload:   payload,
		ExpiresAt: sessmeta.ExpiresAt(sess, s.now(), s.maxAge),
	})
	return callback.Process(callback.From(true, err), cb)
}

// Destroy removes the session stored under sid. A missing record is not an error.
func (s *Store) Destroy(ctx context.Context, sid string, cb ...callback.Func[bool]) (bool, error) {
	err := s.db.Delete(ctx, sid)
	return callback.Process(callback.From(true, err), cb)
}

// Length returns the number of stored records, expired ones included.
func (s *Store) Length(ctx context.Context, cb ...callback.Func[int64]) (int64, error) {
	n, err := s.db.Count(ctx)
	return callback.Process(callback.From(n, err), cb)
}

// Clear removes every session.
func (s *Store) Clear(ctx context.Context, cb ...callback.Func[bool]) (bool, error) {
	err := s.db.DeleteAll(ctx)
	return callback.Process(callback.From(true, err), cb)
}

// Touch sets the expiration of the record under sid to the session's
// cookie.expires, provided the record is still visible. Expired records are
// never brought back. Sessions without cookie.expires are treated as
// non-expiring: storage is not touched and Touch reports true.
func (s *Store) Touch(ctx context.Context, sid string, sess Session, cb ...callback.Func[bool]) (bool, error) {
	expires, ok := sessmeta.Expires(sess)
	if !ok {
		return callback.Process(callback.Success(true), cb)
	}
	_, err := s.db.Touch(ctx, sid, expires, s.now())
	return callback.Process(callback.From(true, err), cb)
}
