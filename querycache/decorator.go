package querycache

import (
	"context"

	"github.com/goliatone/go-query-cache/cache"
	"github.com/goliatone/go-query-cache/query"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

// Interface assertion to ensure CachedExecutor can stand in for its base
var _ Executor = (*CachedExecutor)(nil)

// CachedExecutor decorates a base executor with read-through caching of
// select results and invalidation after mutations.
type CachedExecutor struct {
	base         Executor
	driver       cache.Driver
	options      cache.Options
	label        string
	logger       cache.Logger
	metrics      *Metrics
	tracer       trace.Tracer
	singleFlight bool
	group        singleflight.Group
}

// Option customizes a CachedExecutor.
type Option func(*CachedExecutor)

// WithLogger sets the logger for hit, miss and invalidation events.
func WithLogger(l cache.Logger) Option {
	return func(c *CachedExecutor) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics enables the Prometheus counters.
func WithMetrics(m *Metrics) Option {
	return func(c *CachedExecutor) {
		c.metrics = m
	}
}

// WithTracer replaces the global OpenTelemetry tracer.
func WithTracer(t trace.Tracer) Option {
	return func(c *CachedExecutor) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithSingleFlight toggles collapsing of concurrent misses on the same key.
// It is enabled by default.
func WithSingleFlight(enabled bool) Option {
	return func(c *CachedExecutor) {
		c.singleFlight = enabled
	}
}

// WithLabel names the entity type in logs, metrics and spans. It defaults to
// the options namespace.
func WithLabel(label string) Option {
	return func(c *CachedExecutor) {
		if label != "" {
			c.label = label
		}
	}
}

// New creates a CachedExecutor that wraps base with caching through driver.
func New(base Executor, driver cache.Driver, opts cache.Options, options ...Option) *CachedExecutor {
	if opts.Namespace == "" {
		opts.Namespace = cache.DefaultNamespace
	}
	c := &CachedExecutor{
		base:         base,
		driver:       driver,
		options:      opts,
		label:        opts.Namespace,
		logger:       cache.NopLogger{},
		tracer:       defaultTracer(),
		singleFlight: true,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Options returns the cache options in effect.
func (c *CachedExecutor) Options() cache.Options { return c.options }

// Driver returns the driver entries are stored through.
func (c *CachedExecutor) Driver() cache.Driver { return c.driver }

// Base returns the decorated executor.
func (c *CachedExecutor) Base() Executor { return c.base }

// IsCacheable reports whether q would be served through the cache.
func (c *CachedExecutor) IsCacheable(q *query.Query) bool {
	return q.Cacheable(c.options.Policy)
}

// CacheKey returns the key q is stored under.
func (c *CachedExecutor) CacheKey(q *query.Query) (string, error) {
	return q.CacheKey(c.options.Namespace)
}

// Fetch returns the rows for q, from the cache when q is cacheable and an
// entry exists, otherwise from the base executor. Cacheable misses populate
// the cache before returning.
func (c *CachedExecutor) Fetch(ctx context.Context, q *query.Query) (cache.Rows, error) {
	if !c.IsCacheable(q) {
		return c.base.Fetch(ctx, q)
	}

	key, err := c.CacheKey(q)
	if err != nil {
		return nil, err
	}

	ctx, span := startFetchSpan(ctx, c.tracer, c.label, q.TableName(), key)
	rows, err := c.fetch(ctx, q, key, span)
	endSpan(span, err)
	return rows, err
}

func (c *CachedExecutor) fetch(ctx context.Context, q *query.Query, key string, span trace.Span) (cache.Rows, error) {
	rows, found, err := c.driver.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attrHit.Bool(found))

	if found {
		c.logger.Debug("CACHE HIT", cache.Fields{"key": key, "type": c.label})
		c.metrics.hit(c.label)
		return cache.NormalizeRows(rows), nil
	}

	c.logger.Debug("CACHE MISS", cache.Fields{"key": key, "type": c.label})
	c.metrics.miss(c.label)

	if !c.singleFlight {
		return c.populate(ctx, q, key)
	}

	// The leader's context drives the shared fetch. Callers get their own
	// copy of the rows so none of them can alias another's result.
	v, err, _ := c.group.Do(key, func() (any, error) {
		return c.populate(ctx, q, key)
	})
	if err != nil {
		return nil, err
	}
	return v.(cache.Rows).Clone(), nil
}

func (c *CachedExecutor) populate(ctx context.Context, q *query.Query, key string) (cache.Rows, error) {
	rows, err := c.base.Fetch(ctx, q)
	if err != nil {
		return nil, err
	}
	rows = cache.NormalizeRows(rows)

	if _, err := c.driver.Set(ctx, key, rows, c.setOptions(ctx, cache.SetOptions{})); err != nil {
		return nil, err
	}
	c.metrics.set(c.label)
	return rows, nil
}

// ReadFromCache returns the entry stored for q without touching the
// database.
func (c *CachedExecutor) ReadFromCache(ctx context.Context, q *query.Query) (cache.Rows, bool, error) {
	key, err := c.CacheKey(q)
	if err != nil {
		return nil, false, err
	}
	rows, found, err := c.driver.Get(ctx, key)
	if err != nil || !found {
		return nil, found, err
	}
	return cache.NormalizeRows(rows), true, nil
}

// WriteToCache stores rows under the key of q. A zero TTL in opts falls back
// to the WithTTL context value, then to the executor options.
func (c *CachedExecutor) WriteToCache(ctx context.Context, q *query.Query, rows cache.Rows, opts cache.SetOptions) (cache.Rows, error) {
	key, err := c.CacheKey(q)
	if err != nil {
		return nil, err
	}
	stored, err := c.driver.Set(ctx, key, rows, c.setOptions(ctx, opts))
	if err != nil {
		return nil, err
	}
	c.metrics.set(c.label)
	return stored, nil
}

// InvalidateCache removes the entry stored for q.
func (c *CachedExecutor) InvalidateCache(ctx context.Context, q *query.Query) error {
	key, err := c.CacheKey(q)
	if err != nil {
		return err
	}
	if err := c.driver.Delete(ctx, key); err != nil {
		return err
	}
	c.logger.Debug("CACHE INVALIDATE", cache.Fields{"key": key, "type": c.label})
	c.metrics.invalidate(c.label)
	return nil
}

// Update runs the base update. On success the entry for q is invalidated
// when q is cacheable.
func (c *CachedExecutor) Update(ctx context.Context, q *query.Query, values map[string]any) (int64, error) {
	n, err := c.base.Update(ctx, q, values)
	if err != nil {
		return n, err
	}
	return n, c.invalidateAfterMutation(ctx, q)
}

// Delete runs the base delete. On success the entry for q is invalidated
// when q is cacheable.
func (c *CachedExecutor) Delete(ctx context.Context, q *query.Query) (int64, error) {
	n, err := c.base.Delete(ctx, q)
	if err != nil {
		return n, err
	}
	return n, c.invalidateAfterMutation(ctx, q)
}

func (c *CachedExecutor) invalidateAfterMutation(ctx context.Context, q *query.Query) error {
	if !c.IsCacheable(q) {
		return nil
	}
	return c.InvalidateCache(ctx, q)
}

// CacheEntity stores row as the single-row result of identity, the query
// that selects the entity by primary key. Nothing is written when identity
// is not cacheable.
func (c *CachedExecutor) CacheEntity(ctx context.Context, identity *query.Query, row cache.Row) (bool, error) {
	if !c.IsCacheable(identity) {
		return false, nil
	}
	if _, err := c.WriteToCache(ctx, identity, cache.Rows{row.Clone()}, cache.SetOptions{}); err != nil {
		return false, err
	}
	return true, nil
}

// UncacheEntity removes the entry for identity regardless of policy.
func (c *CachedExecutor) UncacheEntity(ctx context.Context, identity *query.Query) error {
	return c.InvalidateCache(ctx, identity)
}

func (c *CachedExecutor) setOptions(ctx context.Context, opts cache.SetOptions) cache.SetOptions {
	if ttl, ok := ttlFromContext(ctx); ok {
		opts = opts.Merge(cache.SetOptions{TTL: ttl})
	}
	return opts.Merge(cache.SetOptions{TTL: c.options.TTL})
}
