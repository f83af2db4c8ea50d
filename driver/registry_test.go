package driver

import (
	"context"
	"reflect"
	"testing"

	"github.com/allegro/bigcache/v3"
	"github.com/bradfitz/gomemcache/memcache"
	"github.com/dgraph-io/ristretto"
	"github.com/goliatone/go-query-cache/cache"
	"github.com/goliatone/go-query-cache/pkg/testsupport"
	goredis "github.com/redis/go-redis/v9"
	"github.com/viccon/sturdyc"
)

func TestDefaultRegistry_Kinds(t *testing.T) {
	got := DefaultRegistry().Kinds()
	want := []Kind{KindBigCache, KindGeneric, KindMemcache, KindRedis, KindRistretto, KindSturdyc}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Kinds() = %v, want %v", got, want)
	}
}

func TestRegistry_UnknownKind(t *testing.T) {
	_, err := NewRegistry().New(KindRedis, testsupport.NewMemoryStore())
	if err == nil {
		t.Fatal("expected error for unregistered kind")
	}
	if !IsUnknownDriver(err) {
		t.Errorf("expected unknown driver error, got %v", err)
	}
}

func TestRegistry_WrongHandleType(t *testing.T) {
	tests := []struct {
		kind   Kind
		handle any
	}{
		{kind: KindRedis, handle: "localhost:6379"},
		{kind: KindMemcache, handle: 42},
		{kind: KindRistretto, handle: testsupport.NewMemoryStore()},
		{kind: KindBigCache, handle: struct{}{}},
		{kind: KindSturdyc, handle: []byte("x")},
		{kind: KindGeneric, handle: "not a store"},
		{kind: KindGeneric, handle: nil},
	}

	r := DefaultRegistry()
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			_, err := r.New(tt.kind, tt.handle)
			if err == nil {
				t.Fatal("expected error for mismatched handle")
			}
			if !IsInvalidHandle(err) {
				t.Errorf("expected invalid handle error, got %v", err)
			}
		})
	}
}

func TestRegistry_NilPointerHandle(t *testing.T) {
	tests := []struct {
		name   string
		kind   Kind
		handle any
	}{
		{name: "redis client", kind: KindRedis, handle: (*goredis.Client)(nil)},
		{name: "redis cluster", kind: KindRedis, handle: (*goredis.ClusterClient)(nil)},
		{name: "memcache client", kind: KindMemcache, handle: (*memcache.Client)(nil)},
		{name: "ristretto cache", kind: KindRistretto, handle: (*ristretto.Cache)(nil)},
		{name: "bigcache", kind: KindBigCache, handle: (*bigcache.BigCache)(nil)},
		{name: "sturdyc client", kind: KindSturdyc, handle: (*sturdyc.Client[[]byte])(nil)},
		{name: "generic store", kind: KindGeneric, handle: (*testsupport.MemoryStore)(nil)},
	}

	r := DefaultRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := r.New(tt.kind, tt.handle)
			if !IsInvalidHandle(err) {
				t.Fatalf("expected invalid handle error, got %v", err)
			}
			if d != nil {
				t.Error("expected no driver for a nil handle")
			}
		})
	}
}

func TestFactories_RejectNilPointers(t *testing.T) {
	tests := []struct {
		name    string
		factory Factory
		handle  any
	}{
		{name: "redis", factory: redisFactory, handle: (*goredis.Ring)(nil)},
		{name: "memcache", factory: memcacheFactory, handle: (*memcache.Client)(nil)},
		{name: "ristretto", factory: ristrettoFactory, handle: (*ristretto.Cache)(nil)},
		{name: "bigcache", factory: bigcacheFactory, handle: (*bigcache.BigCache)(nil)},
		{name: "sturdyc", factory: sturdycFactory, handle: (*sturdyc.Client[[]byte])(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.factory(tt.handle); !IsInvalidHandle(err) {
				t.Errorf("expected invalid handle error, got %v", err)
			}
		})
	}
}

func TestRegistry_GenericAcceptsAnyStore(t *testing.T) {
	store := testsupport.NewPlainStore()
	d, err := DefaultRegistry().New(KindGeneric, store)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if d.Name() != "generic" {
		t.Errorf("Name() = %q, want generic", d.Name())
	}
	if d.SupportsExpire() {
		t.Error("plain store should not support expire")
	}
}

func TestRegistry_RegisterCustomKind(t *testing.T) {
	r := NewRegistry()
	mem := testsupport.NewMemoryStore()
	r.Register("memory", func(handle any) (cache.Store, error) {
		return mem, nil
	})

	d, err := r.New("memory", struct{}{}, cache.WithSerializer(cache.JSON{}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := d.Set(context.Background(), "k", cache.Rows{{"id": int64(1)}}, cache.SetOptions{}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if !mem.Has("k") {
		t.Error("custom store should receive the write")
	}
	if d.Name() != "memory" {
		t.Errorf("Name() = %q, want memory", d.Name())
	}
}
