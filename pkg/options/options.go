package options

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// ErrInvalidValue is returned when an option value cannot be coerced to the requested type.
var ErrInvalidValue = errors.New("options: invalid value")

// Build merges candidates into a new map. For keys present in more than one
// candidate the value from the highest-index candidate wins. Candidates that
// are not key-value mappings are skipped. Build never returns nil.
func Build(candidates ...any) map[string]any {
	res := make(map[string]any)
	for _, c := range candidates {
		if m, ok := asMap(c); ok {
			maps.Copy(res, m)
		}
	}
	return res
}

// asMap accepts the mapping shapes produced by callers, JSON and YAML decoders.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, m != nil
	case map[string]string:
		if m == nil {
			return nil, false
		}
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out, true
	case map[any]any:
		if m == nil {
			return nil, false
		}
		out := make(map[string]any, len(m))
		for k, v := range m {
			if ks, ok := k.(string); ok {
				out[ks] = v
			}
		}
		return out, true
	default:
		return nil, false
	}
}

// String returns opts[key] as a string. ok is false when the key is absent.
func String(opts map[string]any, key string) (string, bool, error) {
	v, ok := opts[key]
	if !ok || v == nil {
		return "", false, nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", true, errors.Join(ErrInvalidValue, err)
	}
	return s, true, nil
}

// Int64 returns opts[key] as an int64, accepting integers, floats and numeric strings.
func Int64(opts map[string]any, key string) (int64, bool, error) {
	v, ok := opts[key]
	if !ok || v == nil {
		return 0, false, nil
	}
	n, err := ToInt64(v)
	if err != nil {
		return 0, true, err
	}
	return n, true, nil
}

// ToInt64 converts v to an int64. Strings are read as base-10 integers, so
// "010" is 10 and "0x10" is rejected. Floats are truncated. Values outside
// the int64 range saturate at its bounds.
func ToInt64(v any) (int64, error) {
	switch n := v.(type) {
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0, errors.Join(ErrInvalidValue, err)
		}
		return i, nil
	case float64:
		return floatToInt64(n)
	case float32:
		return floatToInt64(float64(n))
	}
	i, err := cast.ToInt64E(v)
	if err != nil {
		return 0, errors.Join(ErrInvalidValue, err)
	}
	return i, nil
}

func floatToInt64(f float64) (int64, error) {
	switch {
	case math.IsNaN(f):
		return 0, fmt.Errorf("%w: NaN", ErrInvalidValue)
	case f >= math.MaxInt64:
		return math.MaxInt64, nil
	case f <= math.MinInt64:
		return math.MinInt64, nil
	}
	return int64(f), nil
}

// MillisToDuration converts milliseconds to a time.Duration, saturating
// instead of overflowing.
func MillisToDuration(ms int64) time.Duration {
	const limit = math.MaxInt64 / int64(time.Millisecond)
	switch {
	case ms > limit:
		return time.Duration(math.MaxInt64)
	case ms < -limit:
		return time.Duration(math.MinInt64)
	}
	return time.Duration(ms) * time.Millisecond
}

// Bool returns opts[key] as a bool.
func Bool(opts map[string]any, key string) (bool, bool, error) {
	v, ok := opts[key]
	if !ok || v == nil {
		return false, false, nil
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false, true, errors.Join(ErrInvalidValue, err)
	}
	return b, true, nil
}

// Millis returns opts[key], expressed in milliseconds, as a time.Duration.
// A duration string such as "90s" is also accepted.
func Millis(opts map[string]any, key string) (time.Duration, bool, error) {
	v, ok := opts[key]
	if !ok || v == nil {
		return 0, false, nil
	}
	switch d := v.(type) {
	case time.Duration:
		return d, true, nil
	case string:
		if n, err := ToInt64(d); err == nil {
			return MillisToDuration(n), true, nil
		}
		dur, err := time.ParseDuration(d)
		if err != nil {
			return 0, true, errors.Join(ErrInvalidValue, err)
		}
		return dur, true, nil
	}
	n, err := ToInt64(v)
	if err != nil {
		return 0, true, err
	}
	return MillisToDuration(n), true, nil
}
