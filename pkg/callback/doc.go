// Package callback lets one operation implementation serve two calling styles.
//
// Store operations compute a Result once. The caller then picks an adapter:
//
//   - Unwrap returns (value, error) directly, for blocking call sites.
//   - Deliver hands (error, value) to a completion handler exactly once, for
//     event-driven call sites.
//
// Process combines both: given the optional trailing handlers of a store
// method it delivers to the first non-nil one when present and always returns
// the outcome as well.
//
//	func (s *Store) Length(ctx context.Context, cb ...callback.Func[int64]) (int64, error) {
//	    n, err := s.db.Count(ctx)
//	    return callback.Process(callback.From(n, err), cb)
//	}
//
// A projection can be attached with Then; it runs only on success and its own
// failure turns the Result into a failure, so a handler never receives a
// half-decoded value.
package callback
