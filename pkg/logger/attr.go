package logger

import (
	"log/slog"
	"time"
)

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// SID records a session identifier under the key "sid".
// If sid is empty, it returns an empty Attr.
func SID(sid string) slog.Attr {
	if sid == "" {
		return slog.Attr{}
	}
	return slog.String("sid", sid)
}

// Table records the session table name under the key "table".
func Table(name string) slog.Attr {
	return slog.String("table", name)
}

// Driver records the storage driver under the key "driver".
func Driver(name string) slog.Attr {
	return slog.String("driver", name)
}

// Count records a record count under the key "count".
func Count(n int64) slog.Attr {
	return slog.Int64("count", n)
}

// Duration records a duration under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}
