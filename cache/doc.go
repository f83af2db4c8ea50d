// Package cache holds the building blocks shared by every query cache layer:
// result rows, serializers, the driver contract, key derivation and the
// cacheability policy.
//
// # Overview
//
// A query result is a Rows value, an ordered slice of column maps. Drivers
// store Rows under string keys in a key/value backend:
//
//   - Serializer turns Rows into bytes (msgpack by default, CBOR and JSON
//     are available, Limit caps the decoded payload size)
//   - Store is the byte-level contract a backend client satisfies
//   - StoreDriver binds a Store to a Serializer and exposes the Driver
//     contract used by the query coordinator
//
// Concrete stores for redis, memcache, ristretto, bigcache and sturdyc live in
// the driver package.
//
// # Keys
//
// DeriveKey hashes the canonical SQL of a query:
//
//	key := cache.DeriveKey("Users", `SELECT * FROM "users" WHERE (id = 1)`)
//	// Users:RU3M7NzLnI5fvAJKuExaCg==
//
// Identical SQL always maps to the same key. Manual keys bypass derivation
// and must pass ValidateKey.
//
// # Policy
//
// Policy decides whether a query without an explicit override is cached:
//
//	p := cache.Policy{Always: false, IfLimit: cache.LimitMax(1)}
//	p.Allows(1) // true
//	p.Allows(5) // false, above the ceiling so Always decides
//	p.Allows(0) // false, no limit so Always decides
//
// Policies load from configuration:
//
//	{"always": true, "if_limit": 1}
//
// # TTL
//
// Driver.Set writes the value first and then calls Expire when a TTL is
// given. Stores without per-key expiry (the generic driver) log and ignore
// the TTL.
//
// # Errors
//
// Errors are go-errors values. A miss is never an error. Backend failures
// carry the CACHE_BACKEND text code and wrap the original error, undecodable
// entries carry DESERIALIZE and are returned to the caller rather than being
// treated as misses.
package cache
