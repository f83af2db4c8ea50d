package driver

import (
	"reflect"
	"sort"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-query-cache/cache"
)

// Kind names a backend family.
type Kind string

const (
	KindRedis     Kind = "redis"
	KindMemcache  Kind = "memcache"
	KindRistretto Kind = "ristretto"
	KindBigCache  Kind = "bigcache"
	KindSturdyc   Kind = "sturdyc"
	// KindGeneric accepts any cache.Store as is.
	KindGeneric Kind = "generic"
)

// Text codes for driver selection failures.
const (
	TextCodeUnknownDriver = "UNKNOWN_DRIVER"
	TextCodeInvalidHandle = "INVALID_DRIVER_HANDLE"
)

// Factory adapts a backend client handle into a store.
type Factory func(handle any) (cache.Store, error)

// Registry maps backend kinds to store factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[Kind]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[Kind]Factory)}
}

// DefaultRegistry returns a registry with every built-in backend registered.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(KindRedis, redisFactory)
	r.Register(KindMemcache, memcacheFactory)
	r.Register(KindRistretto, ristrettoFactory)
	r.Register(KindBigCache, bigcacheFactory)
	r.Register(KindSturdyc, sturdycFactory)
	r.Register(KindGeneric, genericFactory)
	return r
}

// Register adds or replaces the factory for kind.
func (r *Registry) Register(kind Kind, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[kind] = f
}

// Kinds lists the registered kinds in sorted order.
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]Kind, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Store builds the store for kind around handle.
func (r *Registry) Store(kind Kind, handle any) (cache.Store, error) {
	r.mu.RLock()
	f, ok := r.factories[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, goerrors.New("no cache driver registered for "+string(kind), goerrors.CategoryBadInput).
			WithTextCode(TextCodeUnknownDriver).
			WithMetadata(map[string]any{"kind": string(kind)})
	}
	if isNilHandle(handle) {
		return nil, invalidHandle(kind, handle)
	}
	return f(handle)
}

// New builds a driver for kind around handle. Options are applied after the
// defaults, so a caller supplied WithName replaces the kind label.
func (r *Registry) New(kind Kind, handle any, opts ...cache.DriverOption) (*cache.StoreDriver, error) {
	store, err := r.Store(kind, handle)
	if err != nil {
		return nil, err
	}
	all := append([]cache.DriverOption{cache.WithName(string(kind))}, opts...)
	return cache.NewStoreDriver(store, all...), nil
}

// IsUnknownDriver reports whether err came from selecting an unregistered kind.
func IsUnknownDriver(err error) bool {
	var e *goerrors.Error
	return goerrors.As(err, &e) && e.TextCode == TextCodeUnknownDriver
}

// IsInvalidHandle reports whether err came from a handle of the wrong type.
func IsInvalidHandle(err error) bool {
	var e *goerrors.Error
	return goerrors.As(err, &e) && e.TextCode == TextCodeInvalidHandle
}

func invalidHandle(kind Kind, handle any) error {
	return goerrors.New("unsupported handle for "+string(kind)+" driver", goerrors.CategoryValidation).
		WithTextCode(TextCodeInvalidHandle).
		WithMetadata(map[string]any{"kind": string(kind), "handle": typeName(handle)})
}

// isNilHandle reports an untyped nil or a nil pointer boxed in handle.
func isNilHandle(handle any) bool {
	if handle == nil {
		return true
	}
	v := reflect.ValueOf(handle)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

func genericFactory(handle any) (cache.Store, error) {
	s, ok := handle.(cache.Store)
	if !ok {
		return nil, invalidHandle(KindGeneric, handle)
	}
	return s, nil
}

func invalidConfig(kind Kind, message string) error {
	return goerrors.New(string(kind)+": "+message, goerrors.CategoryValidation).
		WithMetadata(map[string]any{"kind": string(kind)})
}
