package model

import (
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-query-cache/cache"
	"github.com/goliatone/go-query-cache/query"
	"github.com/uptrace/bun"
)

// DefaultPrimaryKey is the identity column of types that do not name one.
const DefaultPrimaryKey = "id"

// TextCodeMissingPrimaryKey marks rows that cannot be mapped to an identity
// query.
const TextCodeMissingPrimaryKey = "MISSING_PRIMARY_KEY"

// Config describes an entity type at registration.
type Config struct {
	// Name identifies the type in the registry, logs and metrics.
	Name string
	// Table defaults to the snake cased plural of Name.
	Table string
	// PrimaryKey defaults to DefaultPrimaryKey.
	PrimaryKey string
	// Options are the cache settings. A zero value means cache.DefaultOptions.
	// Options.Serializer requires Driver to be a *cache.StoreDriver, which
	// the type then copies and rebinds to that serializer.
	Options *cache.Options
	// Driver stores the results of this type and every type derived from it.
	Driver cache.Driver
}

// Type is a registered entity type with resolved cache settings. Types are
// immutable once registered.
type Type struct {
	name       string
	table      string
	primaryKey string
	options    cache.Options
	driver     cache.Driver
	parent     *Type
}

// Name returns the type name.
func (t *Type) Name() string { return t.name }

// Table returns the table queries of this type select from.
func (t *Type) Table() string { return t.table }

// PrimaryKey returns the identity column.
func (t *Type) PrimaryKey() string { return t.primaryKey }

// Options returns a copy of the resolved cache options.
func (t *Type) Options() cache.Options { return t.options }

// Driver returns the driver, shared with the parent for derived types.
func (t *Type) Driver() cache.Driver { return t.driver }

// Parent returns the type this one was derived from, or nil.
func (t *Type) Parent() *Type { return t.parent }

// Query returns a query over the type's table with no override.
func (t *Type) Query(db bun.IDB) *query.Query {
	return query.New(db, t.table)
}

// Cached returns the base query forced into the cache.
func (t *Type) Cached(db bun.IDB) *query.Query { return t.Query(db).Cached() }

// NotCached returns the base query forced past the cache.
func (t *Type) NotCached(db bun.IDB) *query.Query { return t.Query(db).NotCached() }

// DefaultCached returns the base query left to the type's policy.
func (t *Type) DefaultCached(db bun.IDB) *query.Query { return t.Query(db).DefaultCached() }

// IdentityQuery returns the single-row lookup of the entity row represents:
// WHERE <pk> = <value> LIMIT 1.
func (t *Type) IdentityQuery(db bun.IDB, row cache.Row) (*query.Query, error) {
	id, ok := row[t.primaryKey]
	if !ok || id == nil {
		return nil, goerrors.New("row has no primary key value", goerrors.CategoryBadInput).
			WithTextCode(TextCodeMissingPrimaryKey).
			WithMetadata(map[string]any{"type": t.name, "primary_key": t.primaryKey})
	}
	return t.Query(db).Where("? = ?", bun.Ident(t.primaryKey), id).Limit(1), nil
}

// EntityKey returns the cache key the identity lookup of row is stored under.
func (t *Type) EntityKey(db bun.IDB, row cache.Row) (string, error) {
	q, err := t.IdentityQuery(db, row)
	if err != nil {
		return "", err
	}
	return q.CacheKey(t.options.Namespace)
}
