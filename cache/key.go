package cache

import (
	"crypto/md5"
	"encoding/base64"
	"strings"
	"unicode"
)

// DefaultNamespace prefixes every derived key unless a model overrides it.
const DefaultNamespace = "Query"

// KeySeparator sits between the namespace and the digest of a derived key.
const KeySeparator = ":"

// maxKeyLength matches the memcache protocol limit, the strictest backend we ship.
const maxKeyLength = 250

// DeriveKey builds the cache key for a canonical query representation.
// The result is namespace + ":" + base64(md5(canonical)), so two queries
// rendering the same SQL share a key and any textual difference yields a
// different one.
func DeriveKey(namespace, canonical string) string {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	sum := md5.Sum([]byte(canonical))
	return namespace + KeySeparator + base64.StdEncoding.EncodeToString(sum[:])
}

// ValidateKey reports whether key can be used verbatim as a manual cache key.
// Keys must be non-empty, printable, free of whitespace and at most 250 bytes.
func ValidateKey(key string) error {
	if key == "" {
		return newInvalidKeyError(key, "key cannot be empty")
	}
	if len(key) > maxKeyLength {
		return newInvalidKeyError(key, "key exceeds 250 bytes")
	}
	if strings.IndexFunc(key, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	}) >= 0 {
		return newInvalidKeyError(key, "key contains whitespace or control characters")
	}
	return nil
}
