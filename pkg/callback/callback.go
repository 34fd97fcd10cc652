package callback

// Func is a completion handler. It receives a non-nil err and the zero value
// of T on failure, or a nil err and the result on success.
type Func[T any] func(err error, res T)

// Result is the outcome of a single operation: either a value or an error.
type Result[T any] struct {
	value T
	err   error
}

// Success wraps a successful value.
func Success[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Failure wraps an error. Failure(nil) behaves like Success of the zero value.
func Failure[T any](err error) Result[T] {
	return Result[T]{err: err}
}

// From builds a Result from a conventional (value, error) pair.
func From[T any](v T, err error) Result[T] {
	if err != nil {
		return Failure[T](err)
	}
	return Success(v)
}

// Err returns the failure, if any.
func (r Result[T]) Err() error {
	return r.err
}

// Unwrap is the synchronous adapter.
func (r Result[T]) Unwrap() (T, error) {
	if r.err != nil {
		var zero T
		return zero, r.err
	}
	return r.value, nil
}

// Deliver is the handler adapter. fn is called exactly once; a nil fn is a no-op.
func (r Result[T]) Deliver(fn Func[T]) {
	if fn == nil {
		return
	}
	if r.err != nil {
		var zero T
		fn(r.err, zero)
		return
	}
	fn(nil, r.value)
}

// Then projects a successful Result through fn. Failures pass through untouched
// and fn is not called.
func Then[T, U any](r Result[T], fn func(T) (U, error)) Result[U] {
	if r.err != nil {
		return Failure[U](r.err)
	}
	return From(fn(r.value))
}

// Process delivers r to the first non-nil handler in cbs, if any, and returns
// the outcome through the synchronous adapter.
func Process[T any](r Result[T], cbs []Func[T]) (T, error) {
	if fn := first(cbs); fn != nil {
		r.Deliver(fn)
	}
	return r.Unwrap()
}

func first[T any](cbs []Func[T]) Func[T] {
	for _, fn := range cbs {
		if fn != nil {
			return fn
		}
	}
	return nil
}

// Provided reports whether cbs holds at least one usable handler.
func Provided[T any](cbs []Func[T]) bool {
	return first(cbs) != nil
}
