package sessiondb

// Record is a stored session: an identifier, an opaque serialized payload and
// an absolute expiration in milliseconds since the Unix epoch.
type Record struct {
	SID       string
	Payload   string
	ExpiresAt int64
}
