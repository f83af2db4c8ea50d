package cache

import (
	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to errors produced by this module.
const (
	TextCodeInvalidKey     = "INVALID_CACHE_KEY"
	TextCodeInvalidOptions = "INVALID_CACHE_OPTIONS"
	TextCodeSerialize      = "SERIALIZE"
	TextCodeDeserialize    = "DESERIALIZE"
	TextCodeBackend        = "CACHE_BACKEND"
)

func newInvalidKeyError(key, message string) error {
	return goerrors.New(message, goerrors.CategoryValidation).
		WithTextCode(TextCodeInvalidKey).
		WithMetadata(map[string]any{"key": key})
}

func newSerializeError(err error, key string) error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to serialize cache entry").
		WithTextCode(TextCodeSerialize).
		WithMetadata(map[string]any{"key": key})
}

func newDeserializeError(err error, key string) error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to deserialize cache entry").
		WithTextCode(TextCodeDeserialize).
		WithMetadata(map[string]any{"key": key})
}

// NewBackendError wraps a failure reported by a cache store. The original
// error stays reachable through errors.Is and errors.As.
func NewBackendError(err error, op, key string) error {
	if err == nil {
		return nil
	}
	return goerrors.Wrap(err, goerrors.CategoryExternal, "cache "+op+" failed").
		WithTextCode(TextCodeBackend).
		WithMetadata(map[string]any{"key": key, "op": op})
}

// IsInvalidKey reports whether err was raised for an unusable manual key.
func IsInvalidKey(err error) bool { return hasTextCode(err, TextCodeInvalidKey) }

// IsDeserialize reports whether err came from decoding a stored entry.
func IsDeserialize(err error) bool { return hasTextCode(err, TextCodeDeserialize) }

// IsBackend reports whether err came from the underlying store.
func IsBackend(err error) bool { return hasTextCode(err, TextCodeBackend) }

func hasTextCode(err error, code string) bool {
	var e *goerrors.Error
	if !goerrors.As(err, &e) {
		return false
	}
	return e.TextCode == code
}
