package driver

import (
	"context"

	"github.com/goliatone/go-query-cache/cache"
	"github.com/goliatone/go-query-cache/internal/cacheinfra"
	"github.com/viccon/sturdyc"
)

// SturdycConfig sizes an in-process sturdyc client.
type SturdycConfig = cacheinfra.Config

// DefaultSturdycConfig returns a 10k entry client with a one hour TTL.
func DefaultSturdycConfig() SturdycConfig {
	return cacheinfra.DefaultConfig()
}

// NewSturdycClient validates cfg and builds a client for a SturdycStore.
func NewSturdycClient(cfg SturdycConfig) (*sturdyc.Client[[]byte], error) {
	return cacheinfra.NewClient(cfg)
}

// SturdycStore keeps result sets in a sturdyc client. sturdyc applies one TTL
// to the whole client, so the store has no per-key expiry.
type SturdycStore struct {
	client *sturdyc.Client[[]byte]
}

var _ cache.Store = (*SturdycStore)(nil)

// NewSturdycStore wraps an existing sturdyc client.
func NewSturdycStore(client *sturdyc.Client[[]byte]) (*SturdycStore, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	return &SturdycStore{client: client}, nil
}

func (s *SturdycStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, ok := s.client.Get(key)
	if !ok {
		return nil, false, nil
	}
	return b, true, nil
}

func (s *SturdycStore) Set(_ context.Context, key string, value []byte) error {
	s.client.Set(key, value)
	return nil
}

func (s *SturdycStore) Delete(_ context.Context, key string) error {
	s.client.Delete(key)
	return nil
}

func sturdycFactory(handle any) (cache.Store, error) {
	switch h := handle.(type) {
	case *sturdyc.Client[[]byte]:
		if h == nil {
			return nil, invalidHandle(KindSturdyc, handle)
		}
		return NewSturdycStore(h)
	case SturdycConfig:
		client, err := NewSturdycClient(h)
		if err != nil {
			return nil, err
		}
		return NewSturdycStore(client)
	default:
		return nil, invalidHandle(KindSturdyc, handle)
	}
}
