package sqlitestore

import "errors"

var (
	// ErrInvalidSession indicates an empty session id or a missing session payload
	ErrInvalidSession = errors.New("session.invalid")

	// ErrCallbackRequired indicates All was called without a completion handler
	ErrCallbackRequired = errors.New("session.callback_required")

	// ErrEncodePayload indicates the session could not be serialized
	ErrEncodePayload = errors.New("session.encode_failed")

	// ErrDecodePayload indicates a stored payload could not be deserialized
	ErrDecodePayload = errors.New("session.decode_failed")

	// ErrInvalidConfig indicates options that cannot configure a store
	ErrInvalidConfig = errors.New("session.invalid_config")
)
