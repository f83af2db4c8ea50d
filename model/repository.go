package model

import (
	"context"

	"github.com/goliatone/go-query-cache/cache"
	"github.com/goliatone/go-query-cache/query"
	"github.com/goliatone/go-query-cache/querycache"
	"github.com/uptrace/bun"
)

// Repository binds a Type to a database handle and runs its queries through
// a CachedExecutor configured with the type's options and driver.
type Repository struct {
	typ  *Type
	db   bun.IDB
	exec *querycache.CachedExecutor
}

// Repository returns a repository for t over db. base executes the queries
// the cache cannot answer; a nil base uses querycache.BunExecutor.
func (t *Type) Repository(db bun.IDB, base querycache.Executor, opts ...querycache.Option) *Repository {
	if base == nil {
		base = querycache.NewBunExecutor()
	}
	opts = append([]querycache.Option{querycache.WithLabel(t.name)}, opts...)
	return &Repository{
		typ:  t,
		db:   db,
		exec: querycache.New(base, t.driver, t.options, opts...),
	}
}

// Type returns the bound type.
func (r *Repository) Type() *Type { return r.typ }

// Executor returns the cached executor.
func (r *Repository) Executor() *querycache.CachedExecutor { return r.exec }

// Query returns the type's base query with no override.
func (r *Repository) Query() *query.Query { return r.typ.Query(r.db) }

// Cached returns the base query forced into the cache.
func (r *Repository) Cached() *query.Query { return r.typ.Cached(r.db) }

// NotCached returns the base query forced past the cache.
func (r *Repository) NotCached() *query.Query { return r.typ.NotCached(r.db) }

// DefaultCached returns the base query left to the type's policy.
func (r *Repository) DefaultCached() *query.Query { return r.typ.DefaultCached(r.db) }

// Find runs q through the cache.
func (r *Repository) Find(ctx context.Context, q *query.Query) (cache.Rows, error) {
	return r.exec.Fetch(ctx, q)
}

// FindByID returns the row whose primary key is id.
func (r *Repository) FindByID(ctx context.Context, id any) (cache.Row, bool, error) {
	q, err := r.typ.IdentityQuery(r.db, cache.Row{r.typ.primaryKey: id})
	if err != nil {
		return nil, false, err
	}
	rows, err := r.exec.Fetch(ctx, q)
	if err != nil || len(rows) == 0 {
		return nil, false, err
	}
	return rows[0], true, nil
}

// Update sets values on the rows matched by q. q must carry no LIMIT or
// OFFSET. To invalidate an entry cached under a limited query, pass an
// unlimited Cached() scope with the same conditions and WithCacheKey set
// to that entry's key.
func (r *Repository) Update(ctx context.Context, q *query.Query, values map[string]any) (int64, error) {
	return r.exec.Update(ctx, q, values)
}

// Delete removes the rows matched by q. The scoping rules of Update apply.
func (r *Repository) Delete(ctx context.Context, q *query.Query) (int64, error) {
	return r.exec.Delete(ctx, q)
}

// Cache stores row as the result of its identity lookup when that lookup is
// cacheable under the type's policy. It reports whether anything was written.
func (r *Repository) Cache(ctx context.Context, row cache.Row) (bool, error) {
	q, err := r.typ.IdentityQuery(r.db, row)
	if err != nil {
		return false, err
	}
	return r.exec.CacheEntity(ctx, q, row)
}

// AfterSave is the hook to call once row has been persisted.
func (r *Repository) AfterSave(ctx context.Context, row cache.Row) error {
	_, err := r.Cache(ctx, row)
	return err
}

// Uncache removes the identity entry of row.
func (r *Repository) Uncache(ctx context.Context, row cache.Row) error {
	q, err := r.typ.IdentityQuery(r.db, row)
	if err != nil {
		return err
	}
	return r.exec.UncacheEntity(ctx, q)
}

// EntityKey returns the key the identity lookup of row is stored under.
func (r *Repository) EntityKey(row cache.Row) (string, error) {
	return r.typ.EntityKey(r.db, row)
}
