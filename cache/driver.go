package cache

import (
	"context"
	"time"
)

// Driver stores and retrieves query results for one model hierarchy.
// Implementations must be safe for concurrent use.
type Driver interface {
	// Get returns the rows stored at key. A missing key is not an error and
	// yields found == false.
	Get(ctx context.Context, key string) (rows Rows, found bool, err error)
	// Set stores rows at key and, when opts.TTL is positive, applies it with
	// Expire as a second step. It returns the rows it stored.
	Set(ctx context.Context, key string, rows Rows, opts SetOptions) (Rows, error)
	// Delete removes key. Deleting a missing key succeeds.
	Delete(ctx context.Context, key string) error
	// Expire sets a lifetime on an existing key. Backends without per-key
	// expiry treat it as a no-op.
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// Store is the byte-level contract a backend client has to satisfy.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Expirer is implemented by stores with per-key expiry.
type Expirer interface {
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// StoreDriver adapts a Store and a Serializer into a Driver. Stores that do
// not implement Expirer get the generic behavior where TTLs are ignored.
type StoreDriver struct {
	name       string
	store      Store
	expirer    Expirer
	serializer Serializer
	logger     Logger
}

var _ Driver = (*StoreDriver)(nil)

// DriverOption customizes a StoreDriver.
type DriverOption func(*StoreDriver)

// WithSerializer replaces the default msgpack serializer.
func WithSerializer(s Serializer) DriverOption {
	return func(d *StoreDriver) {
		if s != nil {
			d.serializer = s
		}
	}
}

// WithLogger sets the logger used for cache traffic.
func WithLogger(l Logger) DriverOption {
	return func(d *StoreDriver) {
		d.logger = loggerOrNop(l)
	}
}

// WithName labels the driver in log output.
func WithName(name string) DriverOption {
	return func(d *StoreDriver) {
		d.name = name
	}
}

// NewStoreDriver builds a driver over store.
func NewStoreDriver(store Store, opts ...DriverOption) *StoreDriver {
	d := &StoreDriver{
		name:       "generic",
		store:      store,
		serializer: DefaultSerializer(),
		logger:     NopLogger{},
	}
	if e, ok := store.(Expirer); ok {
		d.expirer = e
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name returns the driver label.
func (d *StoreDriver) Name() string { return d.name }

// SupportsExpire reports whether TTLs reach the backend.
func (d *StoreDriver) SupportsExpire() bool { return d.expirer != nil }

// Serializer returns the serializer in use.
func (d *StoreDriver) Serializer() Serializer { return d.serializer }

// With returns a driver over the same store with opts applied on top of the
// receiver's settings. The receiver is left untouched.
func (d *StoreDriver) With(opts ...DriverOption) *StoreDriver {
	cp := *d
	for _, opt := range opts {
		opt(&cp)
	}
	return &cp
}

func (d *StoreDriver) Get(ctx context.Context, key string) (Rows, bool, error) {
	d.logger.Debug("CACHE GET", Fields{"key": key, "driver": d.name})

	data, found, err := d.store.Get(ctx, key)
	if err != nil {
		d.logger.Error("cache get failed", Fields{"key": key, "driver": d.name, "error": err})
		return nil, false, NewBackendError(err, "get", key)
	}
	if !found {
		return nil, false, nil
	}

	rows, err := d.serializer.Deserialize(data)
	if err != nil {
		d.logger.Error("cache entry could not be decoded", Fields{"key": key, "driver": d.name, "error": err})
		return nil, false, newDeserializeError(err, key)
	}
	return rows, true, nil
}

func (d *StoreDriver) Set(ctx context.Context, key string, rows Rows, opts SetOptions) (Rows, error) {
	d.logger.Debug("CACHE SET", Fields{"key": key, "driver": d.name, "rows": len(rows), "ttl": opts.TTL.String()})

	data, err := d.serializer.Serialize(rows)
	if err != nil {
		return nil, newSerializeError(err, key)
	}
	if err := d.store.Set(ctx, key, data); err != nil {
		d.logger.Error("cache set failed", Fields{"key": key, "driver": d.name, "error": err})
		return nil, NewBackendError(err, "set", key)
	}
	if opts.TTL > 0 {
		if err := d.Expire(ctx, key, opts.TTL); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

func (d *StoreDriver) Delete(ctx context.Context, key string) error {
	d.logger.Debug("CACHE DEL", Fields{"key": key, "driver": d.name})

	if err := d.store.Delete(ctx, key); err != nil {
		d.logger.Error("cache delete failed", Fields{"key": key, "driver": d.name, "error": err})
		return NewBackendError(err, "delete", key)
	}
	return nil
}

func (d *StoreDriver) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if d.expirer == nil {
		d.logger.Debug("CACHE EXPIRE skipped, store has no per-key expiry", Fields{"key": key, "driver": d.name})
		return nil
	}
	d.logger.Debug("CACHE EXPIRE", Fields{"key": key, "driver": d.name, "ttl": ttl.String()})

	if err := d.expirer.Expire(ctx, key, ttl); err != nil {
		d.logger.Error("cache expire failed", Fields{"key": key, "driver": d.name, "error": err})
		return NewBackendError(err, "expire", key)
	}
	return nil
}
