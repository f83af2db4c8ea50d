// Package querycache provides the read-through / write-invalidate coordinator
// that sits between query execution and a cache driver.
//
// # Overview
//
// CachedExecutor decorates an Executor. Select queries that the policy (or an
// explicit override) marks as cacheable are answered from the driver when an
// entry exists; on a miss the base executor runs, the fully materialized rows
// are stored and then returned. Update and Delete run against the database
// first and, only when they succeed, remove the entry of a cacheable query.
//
// # Basic Usage
//
//	store := driver.NewRistrettoStore(ristrettoCache)
//	drv := cache.NewStoreDriver(store, cache.WithName("ristretto"))
//
//	exec := querycache.New(querycache.NewBunExecutor(), drv, cache.DefaultOptions())
//
//	// LIMIT 1 is cacheable under the default policy
//	rows, err := exec.Fetch(ctx, query.New(db, "users").Where("id = ?", 1).Limit(1))
//
//	// forces caching regardless of policy
//	rows, err = exec.Fetch(ctx, query.New(db, "users").Cached())
//
// # Per-query Surface
//
//   - IsCacheable and CacheKey expose the decision and the key
//   - ReadFromCache and WriteToCache access the entry directly
//   - InvalidateCache removes it
//   - CacheEntity and UncacheEntity keep single-row identity lookups in sync
//     after an entity is saved or removed
//
// # TTL
//
// Entries are written with the executor TTL. WithTTL overrides it for the
// calls made with the returned context, and WriteToCache accepts a TTL of its
// own that wins over both.
//
// # Concurrency
//
// Concurrent misses on the same key are collapsed with singleflight, so one
// database round trip populates the entry and every waiter receives its own
// copy of the rows. WithSingleFlight(false) turns this off.
//
// A mutation that commits while a miss is being populated can leave the
// pre-mutation rows in the cache until the entry expires or is invalidated
// again. Callers needing strict coherence should bypass the cache with
// NotCached for those reads.
//
// # Observability
//
// Hits, misses, sets and invalidations are logged at debug level through
// cache.Logger and counted through Metrics (querycache_hits_total and
// friends, labelled by type). Each cacheable fetch runs inside a
// "querycache.fetch" span carrying the cache.key and cache.hit attributes.
package querycache
