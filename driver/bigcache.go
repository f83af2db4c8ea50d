package driver

import (
	"context"
	"errors"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/goliatone/go-query-cache/cache"
)

// BigCacheStore keeps result sets in bigcache. Entries share the cache-wide
// life window, so the store has no per-key expiry and is driven by the
// generic driver behavior.
type BigCacheStore struct {
	bc *bigcache.BigCache
}

var _ cache.Store = (*BigCacheStore)(nil)

// NewBigCache builds a bigcache instance whose entries live for lifeWindow.
func NewBigCache(ctx context.Context, lifeWindow time.Duration) (*bigcache.BigCache, error) {
	if lifeWindow <= 0 {
		return nil, invalidConfig(KindBigCache, "life window must be greater than 0")
	}
	cfg := bigcache.DefaultConfig(lifeWindow)
	cfg.Verbose = false
	return bigcache.New(ctx, cfg)
}

// NewBigCacheStore wraps an existing bigcache instance.
func NewBigCacheStore(bc *bigcache.BigCache) (*BigCacheStore, error) {
	if bc == nil {
		return nil, ErrNilClient
	}
	return &BigCacheStore{bc: bc}, nil
}

func (s *BigCacheStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, err := s.bc.Get(key)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s *BigCacheStore) Set(_ context.Context, key string, value []byte) error {
	return s.bc.Set(key, value)
}

func (s *BigCacheStore) Delete(_ context.Context, key string) error {
	if err := s.bc.Delete(key); err != nil && !errors.Is(err, bigcache.ErrEntryNotFound) {
		return err
	}
	return nil
}

func bigcacheFactory(handle any) (cache.Store, error) {
	bc, ok := handle.(*bigcache.BigCache)
	if !ok || bc == nil {
		return nil, invalidHandle(KindBigCache, handle)
	}
	return NewBigCacheStore(bc)
}
