package di

import (
	"github.com/goliatone/go-query-cache/cache"
	"github.com/goliatone/go-query-cache/driver"
	"github.com/goliatone/go-query-cache/internal/cacheinfra"
	"github.com/goliatone/go-query-cache/model"
	"github.com/goliatone/go-query-cache/querycache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// Config selects the cache backend and the defaults applied to every model
// registered through the container.
type Config struct {
	// Kind picks the backend. It defaults to driver.KindSturdyc.
	Kind driver.Kind
	// Handle is the backend client (redis client, memcache client, ristretto
	// cache, bigcache instance or a cache.Store for the generic kind). When
	// nil with the sturdyc kind, a client is built from Sturdyc.
	Handle any
	// Sturdyc sizes the in-process sturdyc client. A zero value means
	// cacheinfra.DefaultConfig.
	Sturdyc cacheinfra.Config
	// Serializer overrides the msgpack default.
	Serializer cache.Serializer
	// Options are the cache options of models registered without their own.
	// Nil means cache.DefaultOptions.
	Options *cache.Options
	// Logger receives driver and coordinator events.
	Logger cache.Logger
	// Registerer enables Prometheus metrics when set.
	Registerer prometheus.Registerer
	// Tracer replaces the global OpenTelemetry tracer.
	Tracer trace.Tracer
	// DisableSingleFlight turns off miss collapsing.
	DisableSingleFlight bool
}

// DefaultConfig returns an in-process sturdyc backend with default options.
func DefaultConfig() Config {
	opts := cache.DefaultOptions()
	return Config{
		Kind:    driver.KindSturdyc,
		Sturdyc: cacheinfra.DefaultConfig(),
		Options: &opts,
		Logger:  cache.NopLogger{},
	}
}

// Container provides dependency injection for cache related components.
// It owns the driver shared by every registered model, the model registry
// and the metrics collectors, and builds repositories wired to all of them.
type Container struct {
	config  Config
	drivers *driver.Registry
	driver  *cache.StoreDriver
	models  *model.Registry
	metrics *querycache.Metrics
}

// NewContainer creates a new DI container from config.
func NewContainer(config Config) (*Container, error) {
	if config.Kind == "" {
		config.Kind = driver.KindSturdyc
	}
	if config.Logger == nil {
		config.Logger = cache.NopLogger{}
	}
	opts := cache.DefaultOptions()
	if config.Options != nil {
		opts = *config.Options
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	config.Options = &opts

	if config.Sturdyc.IsZero() {
		config.Sturdyc = cacheinfra.DefaultConfig()
	}

	handle := config.Handle
	if handle == nil && config.Kind == driver.KindSturdyc {
		if err := config.Sturdyc.Validate(); err != nil {
			return nil, err
		}
		handle = config.Sturdyc
	}

	drivers := driver.DefaultRegistry()
	driverOpts := []cache.DriverOption{cache.WithLogger(config.Logger)}
	if config.Serializer != nil {
		driverOpts = append(driverOpts, cache.WithSerializer(config.Serializer))
	}
	drv, err := drivers.New(config.Kind, handle, driverOpts...)
	if err != nil {
		return nil, err
	}

	metrics, err := querycache.NewMetrics(config.Registerer)
	if err != nil {
		return nil, err
	}

	return &Container{
		config:  config,
		drivers: drivers,
		driver:  drv,
		models:  model.NewRegistry(),
		metrics: metrics,
	}, nil
}

// NewContainerWithDefaults creates a new DI container using DefaultConfig.
func NewContainerWithDefaults() (*Container, error) {
	return NewContainer(DefaultConfig())
}

// Config returns a copy of the configuration in use.
func (c *Container) Config() Config {
	cfg := c.config
	opts := *c.config.Options
	cfg.Options = &opts
	return cfg
}

// Driver returns the shared cache driver.
func (c *Container) Driver() *cache.StoreDriver { return c.driver }

// Drivers returns the backend registry the driver was built from.
func (c *Container) Drivers() *driver.Registry { return c.drivers }

// Models returns the model registry.
func (c *Container) Models() *model.Registry { return c.models }

// Metrics returns the cache counters.
func (c *Container) Metrics() *querycache.Metrics { return c.metrics }

// RegisterModel registers a root type. Missing options and driver are taken
// from the container.
func (c *Container) RegisterModel(cfg model.Config) (*model.Type, error) {
	if cfg.Driver == nil {
		cfg.Driver = c.driver
	}
	if cfg.Options == nil {
		opts := *c.config.Options
		cfg.Options = &opts
	}
	return c.models.Register(cfg)
}

// DeriveModel registers name as a subtype of parent.
func (c *Container) DeriveModel(parent, name string, ov cache.Override) (*model.Type, error) {
	return c.models.Derive(parent, name, ov)
}

// Repository returns a repository for the registered type over db. A nil
// base uses the bun executor.
func (c *Container) Repository(db bun.IDB, typeName string, base querycache.Executor) (*model.Repository, error) {
	typ, err := c.models.Lookup(typeName)
	if err != nil {
		return nil, err
	}
	return typ.Repository(db, base, c.executorOptions()...), nil
}

// NewCachedExecutor wraps base with the container driver and options, for
// callers that do not go through a model type.
func (c *Container) NewCachedExecutor(base querycache.Executor, opts cache.Options) *querycache.CachedExecutor {
	return querycache.New(base, c.driver, opts, c.executorOptions()...)
}

func (c *Container) executorOptions() []querycache.Option {
	opts := []querycache.Option{
		querycache.WithLogger(c.config.Logger),
		querycache.WithMetrics(c.metrics),
		querycache.WithSingleFlight(!c.config.DisableSingleFlight),
	}
	if c.config.Tracer != nil {
		opts = append(opts, querycache.WithTracer(c.config.Tracer))
	}
	return opts
}
