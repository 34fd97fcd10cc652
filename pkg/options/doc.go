// Package options merges loosely typed configuration maps.
//
// Configuration for the session store can arrive from several places at once:
// compiled-in defaults, a YAML option file, and overrides supplied by the
// caller. Build folds them into a single map where later candidates win on key
// collisions. Anything that is not a key-value mapping is skipped, so callers
// can pass through values of unknown shape without pre-filtering.
//
// # Usage
//
//	merged := options.Build(
//	    map[string]any{"table": "sessions", "maxAge": 86400000},
//	    fileOpts,                      // may be nil
//	    map[string]any{"table": "web_sessions"},
//	)
//	// merged["table"] == "web_sessions"
//
// The typed getters (String, Int64, Bool, Duration) coerce values the way
// option files and JSON payloads usually carry them: numbers may be floats or
// numeric strings, booleans may be "true"/"1". Coercion is delegated to
// github.com/spf13/cast.
package options
