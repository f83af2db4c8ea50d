// Package query provides the immutable select description the cache works
// on. Every builder call returns a new Query; the receiver is never touched.
//
//	base := query.New(db, "users")
//	admins := base.Where("role = ?", "admin").Order("name ASC").Limit(10)
//
// A clone keeps the cache override of its source (Cached, NotCached) but
// drops the manual key and the memoized derived key, so a reshaped query can
// never be served under the key of its ancestor.
//
// Canonical renders the query through bun's formatter. Two independently
// built queries with the same shape and arguments render identically and so
// derive the same cache key.
package query
