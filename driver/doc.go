// Package driver binds concrete key/value backends to the cache.Driver
// contract.
//
// Backends are selected by Kind through a Registry instead of inspecting the
// client type at runtime:
//
//	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	d, err := driver.DefaultRegistry().New(driver.KindRedis, rdb,
//		cache.WithSerializer(cache.Msgpack{}),
//	)
//
// Built-in kinds:
//
//   - redis: go-redis client, TTL through EXPIRE
//   - memcache: gomemcache client, TTL through TOUCH
//   - ristretto: in-process, TTL by rewriting the entry with SetWithTTL
//   - bigcache: in-process, cache-wide life window only
//   - sturdyc: in-process, client-wide TTL only
//   - generic: any cache.Store
//
// Stores without per-key expiry get the generic behavior: the value is
// written and the TTL is logged and ignored.
package driver
