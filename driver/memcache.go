package driver

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/goliatone/go-query-cache/cache"
)

// maxRelativeExpiry is the largest expiration memcache reads as a relative
// number of seconds. Anything above it is taken as a unix timestamp.
const maxRelativeExpiry = 30 * 24 * time.Hour

// MemcacheClient is the subset of *memcache.Client the store uses.
type MemcacheClient interface {
	Get(key string) (*memcache.Item, error)
	Set(item *memcache.Item) error
	Delete(key string) error
	Touch(key string, seconds int32) error
}

var _ MemcacheClient = (*memcache.Client)(nil)

// MemcacheStore keeps result sets in memcached and applies TTLs with TOUCH.
// The gomemcache client has no context support, so ctx is only checked for
// cancellation before each call.
type MemcacheStore struct {
	mc  MemcacheClient
	now func() time.Time
}

var (
	_ cache.Store   = (*MemcacheStore)(nil)
	_ cache.Expirer = (*MemcacheStore)(nil)
)

// NewMemcacheStore wraps a memcache client.
func NewMemcacheStore(mc MemcacheClient) (*MemcacheStore, error) {
	if isNilMemcache(mc) {
		return nil, ErrNilClient
	}
	return &MemcacheStore{mc: mc, now: time.Now}, nil
}

func (s *MemcacheStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	item, err := s.mc.Get(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return item.Value, true, nil
}

func (s *MemcacheStore) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.mc.Set(&memcache.Item{Key: key, Value: value})
}

func (s *MemcacheStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.mc.Delete(key); err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		return err
	}
	return nil
}

// Expire touches key with the new lifetime. A key that disappeared in the
// meantime is not an error.
func (s *MemcacheStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.mc.Touch(key, s.expiration(ttl)); err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		return err
	}
	return nil
}

func (s *MemcacheStore) expiration(ttl time.Duration) int32 {
	if ttl <= 0 {
		return 0
	}
	if ttl > maxRelativeExpiry {
		return clampInt32(s.now().Add(ttl).Unix())
	}
	secs := int64(math.Ceil(ttl.Seconds()))
	return clampInt32(secs)
}

func clampInt32(v int64) int32 {
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(v)
}

func memcacheFactory(handle any) (cache.Store, error) {
	mc, ok := handle.(MemcacheClient)
	if !ok || isNilMemcache(mc) {
		return nil, invalidHandle(KindMemcache, handle)
	}
	return NewMemcacheStore(mc)
}

func isNilMemcache(mc MemcacheClient) bool {
	switch c := mc.(type) {
	case nil:
		return true
	case *memcache.Client:
		return c == nil
	}
	return false
}
