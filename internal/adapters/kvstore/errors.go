package kvstore

import "errors"

var (
	// ErrNotFound is returned by Get for a key that was never set.
	ErrNotFound = errors.New("key not found")
	// ErrUnknownBackend is returned by Open for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown store backend")
	// ErrInvalidKey is returned for empty keys and keys that are not plain names.
	ErrInvalidKey = errors.New("invalid key")
)
