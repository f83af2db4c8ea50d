package driver

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/goliatone/go-query-cache/cache"
)

// RistrettoStore keeps result sets in an in-process ristretto cache. Ristretto
// has no standalone expire call, so Expire rewrites the current value with
// the new lifetime. Writes rejected by the admission policy are dropped the
// same way an eviction would drop them.
type RistrettoStore struct {
	c *ristretto.Cache
}

var (
	_ cache.Store   = (*RistrettoStore)(nil)
	_ cache.Expirer = (*RistrettoStore)(nil)
)

// RistrettoConfig sizes a new ristretto cache.
type RistrettoConfig struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	Metrics     bool
}

// DefaultRistrettoConfig tracks about 100k keys within 64MB of encoded rows.
func DefaultRistrettoConfig() RistrettoConfig {
	return RistrettoConfig{
		NumCounters: 1e5,
		MaxCost:     64 << 20,
		BufferItems: 64,
	}
}

// NewRistrettoCache builds the ristretto cache backing a RistrettoStore.
func NewRistrettoCache(cfg RistrettoConfig) (*ristretto.Cache, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, invalidConfig(KindRistretto, "NumCounters, MaxCost and BufferItems must be greater than 0")
	}
	return ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
}

// NewRistrettoStore wraps an existing ristretto cache.
func NewRistrettoStore(c *ristretto.Cache) (*RistrettoStore, error) {
	if c == nil {
		return nil, ErrNilClient
	}
	return &RistrettoStore{c: c}, nil
}

func (s *RistrettoStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	if !ok {
		// foreign value under our key
		s.c.Del(key)
		return nil, false, nil
	}
	return b, true, nil
}

func (s *RistrettoStore) Set(_ context.Context, key string, value []byte) error {
	s.c.SetWithTTL(key, value, int64(len(value)), 0)
	s.c.Wait()
	return nil
}

func (s *RistrettoStore) Delete(_ context.Context, key string) error {
	s.c.Del(key)
	s.c.Wait()
	return nil
}

func (s *RistrettoStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	b, found, err := s.Get(ctx, key)
	if err != nil || !found {
		return err
	}
	s.c.SetWithTTL(key, b, int64(len(b)), ttl)
	s.c.Wait()
	return nil
}

func ristrettoFactory(handle any) (cache.Store, error) {
	c, ok := handle.(*ristretto.Cache)
	if !ok || c == nil {
		return nil, invalidHandle(KindRistretto, handle)
	}
	return NewRistrettoStore(c)
}
