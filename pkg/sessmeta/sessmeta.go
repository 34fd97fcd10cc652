// Package sessmeta reads the cookie metadata that host frameworks embed in a
// session payload under the "cookie" key.
//
// Two values matter to the store: the cookie's max-age, which decides how long
// a freshly written record lives, and the cookie's absolute expiry, which a
// touch moves the record's expiration to. Payloads that went through JSON carry
// these as float64 and RFC 3339 strings; payloads built in-process may carry
// integers, time.Time or a Cookie value. All of them are accepted.
package sessmeta

import (
	"math"
	"time"

	"github.com/spf13/cast"

	"github.com/dmitrymomot/sqlitestore/pkg/options"
)

// CookieKey is the payload key holding cookie metadata.
const CookieKey = "cookie"

// Cookie is the typed form of the cookie metadata.
// MaxAge is in milliseconds.
type Cookie struct {
	MaxAge  int64     `json:"maxAge,omitempty"`
	Expires time.Time `json:"expires,omitzero"`
}

// Expires returns the cookie's absolute expiry in milliseconds since the Unix
// epoch. ok is false when the payload has no cookie, the cookie has no expiry,
// or the expiry cannot be read as an instant at or after the epoch.
func Expires(sess map[string]any) (ms int64, ok bool) {
	raw, found := cookieField(sess, "expires")
	if !found {
		return 0, false
	}
	switch v := raw.(type) {
	case time.Time:
		if v.IsZero() {
			return 0, false
		}
		ms = v.UnixMilli()
	case *time.Time:
		if v == nil || v.IsZero() {
			return 0, false
		}
		ms = v.UnixMilli()
	case string:
		if v == "" {
			return 0, false
		}
		t, err := cast.ToTimeE(v)
		if err != nil {
			return 0, false
		}
		ms = t.UnixMilli()
	case bool:
		return 0, false
	default:
		n, err := options.ToInt64(v)
		if err != nil || n == 0 {
			return 0, false
		}
		ms = n
	}
	if ms < 0 {
		return 0, false
	}
	return ms, true
}

// MaxAge returns the cookie's max-age when it is a positive integer number of
// milliseconds, otherwise def. Values beyond the time.Duration range saturate.
func MaxAge(sess map[string]any, def time.Duration) time.Duration {
	ms, ok := maxAgeMillis(sess)
	if !ok {
		return def
	}
	return options.MillisToDuration(ms)
}

// ExpiresAt computes the absolute expiration, in milliseconds, of a record
// written at now. The sum saturates at math.MaxInt64.
func ExpiresAt(sess map[string]any, now time.Time, def time.Duration) int64 {
	ms, ok := maxAgeMillis(sess)
	if !ok {
		ms = def.Milliseconds()
	}
	base := now.UnixMilli()
	if ms > 0 && base > math.MaxInt64-ms {
		return math.MaxInt64
	}
	return base + ms
}

// maxAgeMillis reads cookie.maxAge as a positive base-10 integer.
func maxAgeMillis(sess map[string]any) (int64, bool) {
	raw, found := cookieField(sess, "maxAge")
	if !found {
		return 0, false
	}
	if _, isBool := raw.(bool); isBool {
		return 0, false
	}
	n, err := options.ToInt64(raw)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func cookieField(sess map[string]any, field string) (any, bool) {
	if sess == nil {
		return nil, false
	}
	switch c := sess[CookieKey].(type) {
	case map[string]any:
		v, ok := c[field]
		return v, ok && v != nil
	case map[any]any:
		v, ok := c[field]
		return v, ok && v != nil
	case Cookie:
		return c.field(field)
	case *Cookie:
		if c == nil {
			return nil, false
		}
		return c.field(field)
	default:
		return nil, false
	}
}

func (c Cookie) field(name string) (any, bool) {
	switch name {
	case "maxAge":
		return c.MaxAge, c.MaxAge != 0
	case "expires":
		return c.Expires, !c.Expires.IsZero()
	default:
		return nil, false
	}
}
