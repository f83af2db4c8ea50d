package query

import (
	"sync"

	"github.com/goliatone/go-query-cache/cache"
	"github.com/uptrace/bun"
)

// Override is the explicit per-query caching decision.
type Override int

const (
	// OverrideUnset defers to the model's Policy.
	OverrideUnset Override = iota
	// OverrideCache forces the query through the cache.
	OverrideCache
	// OverrideBypass keeps the query away from the cache.
	OverrideBypass
)

func (o Override) String() string {
	switch o {
	case OverrideCache:
		return "cache"
	case OverrideBypass:
		return "bypass"
	default:
		return "unset"
	}
}

// Condition is one WHERE clause with its bound arguments.
type Condition struct {
	Query string
	Args  []any
}

// Query is an immutable description of a select against one table. Every
// builder method returns a new Query. The override travels to the new value,
// while the manual key and the memoized derived key do not.
type Query struct {
	db      bun.IDB
	table   string
	columns []string
	wheres  []Condition
	orders  []string
	limit   int
	offset  int

	override  Override
	manualKey string

	memo *keyMemo
}

type keyMemo struct {
	mu        sync.Mutex
	namespace string
	key       string
	set       bool
}

// New starts a query selecting every column of table.
func New(db bun.IDB, table string) *Query {
	return &Query{db: db, table: table, memo: &keyMemo{}}
}

// clone copies the query for a builder step. Derived state is reset.
func (q *Query) clone() *Query {
	c := &Query{
		db:       q.db,
		table:    q.table,
		columns:  append([]string(nil), q.columns...),
		wheres:   append([]Condition(nil), q.wheres...),
		orders:   append([]string(nil), q.orders...),
		limit:    q.limit,
		offset:   q.offset,
		override: q.override,
		memo:     &keyMemo{},
	}
	return c
}

// Column restricts the selected columns.
func (q *Query) Column(columns ...string) *Query {
	c := q.clone()
	c.columns = append(c.columns, columns...)
	return c
}

// Where adds a condition. Conditions are joined with AND.
func (q *Query) Where(query string, args ...any) *Query {
	c := q.clone()
	c.wheres = append(c.wheres, Condition{Query: query, Args: append([]any(nil), args...)})
	return c
}

// Order adds ORDER BY expressions such as "name ASC".
func (q *Query) Order(orders ...string) *Query {
	c := q.clone()
	c.orders = append(c.orders, orders...)
	return c
}

// Limit caps the number of rows. Zero removes the limit.
func (q *Query) Limit(n int) *Query {
	c := q.clone()
	c.limit = n
	return c
}

// Offset skips the first n rows.
func (q *Query) Offset(n int) *Query {
	c := q.clone()
	c.offset = n
	return c
}

// Cached returns a copy that is always read through the cache.
func (q *Query) Cached() *Query {
	c := q.clone()
	c.override = OverrideCache
	return c
}

// NotCached returns a copy that never touches the cache.
func (q *Query) NotCached() *Query {
	c := q.clone()
	c.override = OverrideBypass
	return c
}

// DefaultCached returns a copy that defers to the model policy. When the
// override is already unset the receiver is returned as is.
func (q *Query) DefaultCached() *Query {
	if q.override == OverrideUnset {
		return q
	}
	c := q.clone()
	c.override = OverrideUnset
	return c
}

// WithCacheKey returns a copy that reads and writes under key instead of the
// derived one. An empty key returns a copy without a manual key. The key is
// not carried over by later builder calls.
func (q *Query) WithCacheKey(key string) (*Query, error) {
	c := q.clone()
	if key == "" {
		return c, nil
	}
	if err := cache.ValidateKey(key); err != nil {
		return nil, err
	}
	c.manualKey = key
	return c, nil
}

// DB returns the connection the query runs on.
func (q *Query) DB() bun.IDB { return q.db }

// TableName returns the queried table.
func (q *Query) TableName() string { return q.table }

// Columns returns the selected columns. Empty means all.
func (q *Query) Columns() []string { return append([]string(nil), q.columns...) }

// Conditions returns the WHERE clauses.
func (q *Query) Conditions() []Condition { return append([]Condition(nil), q.wheres...) }

// Orders returns the ORDER BY expressions.
func (q *Query) Orders() []string { return append([]string(nil), q.orders...) }

// GetLimit returns the row limit, zero when unlimited.
func (q *Query) GetLimit() int { return q.limit }

// GetOffset returns the row offset.
func (q *Query) GetOffset() int { return q.offset }

// HasLimit reports whether the query carries a limit.
func (q *Query) HasLimit() bool { return q.limit > 0 }

// Override returns the explicit caching decision.
func (q *Query) Override() Override { return q.override }

// ManualKey returns the manual cache key, if any.
func (q *Query) ManualKey() (string, bool) { return q.manualKey, q.manualKey != "" }

// Cacheable applies the override, falling back to policy.
func (q *Query) Cacheable(policy cache.Policy) bool {
	switch q.override {
	case OverrideCache:
		return true
	case OverrideBypass:
		return false
	default:
		return cache.Decide(q.limit, q.HasLimit(), policy)
	}
}

// SelectQuery renders the query as a bun select.
func (q *Query) SelectQuery() *bun.SelectQuery {
	sq := q.db.NewSelect().Table(q.table)
	if len(q.columns) > 0 {
		sq = sq.Column(q.columns...)
	}
	for _, w := range q.wheres {
		sq = sq.Where(w.Query, w.Args...)
	}
	if len(q.orders) > 0 {
		sq = sq.Order(q.orders...)
	}
	if q.limit > 0 {
		sq = sq.Limit(q.limit)
	}
	if q.offset > 0 {
		sq = sq.Offset(q.offset)
	}
	return sq
}

// Canonical returns the SQL text the cache key is derived from.
func (q *Query) Canonical() (string, error) {
	sq := q.SelectQuery()
	b, err := sq.AppendQuery(sq.DB().Formatter(), nil)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CacheKey returns the manual key when set, otherwise the derived key for
// namespace. The derived key is computed once per query value.
func (q *Query) CacheKey(namespace string) (string, error) {
	if q.manualKey != "" {
		return q.manualKey, nil
	}

	q.memo.mu.Lock()
	defer q.memo.mu.Unlock()
	if q.memo.set && q.memo.namespace == namespace {
		return q.memo.key, nil
	}

	canonical, err := q.Canonical()
	if err != nil {
		return "", err
	}
	q.memo.namespace = namespace
	q.memo.key = cache.DeriveKey(namespace, canonical)
	q.memo.set = true
	return q.memo.key, nil
}

// Memoized reports whether a derived key has been computed for this value.
func (q *Query) Memoized() bool {
	q.memo.mu.Lock()
	defer q.memo.mu.Unlock()
	return q.memo.set
}

func (q *Query) String() string {
	s, err := q.Canonical()
	if err != nil {
		return "<invalid query: " + err.Error() + ">"
	}
	return s
}
