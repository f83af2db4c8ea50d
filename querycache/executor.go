package querycache

import (
	"context"
	"sort"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-query-cache/cache"
	"github.com/goliatone/go-query-cache/query"
	"github.com/uptrace/bun"
)

// Executor runs queries against the database. CachedExecutor decorates one.
type Executor interface {
	// Fetch returns every row selected by q, fully materialized.
	Fetch(ctx context.Context, q *query.Query) (cache.Rows, error)
	// Update sets values on the rows matched by q and returns the affected count.
	Update(ctx context.Context, q *query.Query, values map[string]any) (int64, error)
	// Delete removes the rows matched by q and returns the affected count.
	Delete(ctx context.Context, q *query.Query) (int64, error)
}

// BunExecutor runs queries through the bun connection bound to each query.
type BunExecutor struct{}

var _ Executor = BunExecutor{}

// NewBunExecutor returns the bun backed executor.
func NewBunExecutor() BunExecutor { return BunExecutor{} }

func (BunExecutor) Fetch(ctx context.Context, q *query.Query) (cache.Rows, error) {
	var out []map[string]any
	if err := q.SelectQuery().Scan(ctx, &out); err != nil {
		return nil, err
	}
	rows := make(cache.Rows, len(out))
	for i, m := range out {
		rows[i] = cache.Row(m)
	}
	return rows, nil
}

// Update rejects queries scoped by LIMIT or OFFSET.
func (BunExecutor) Update(ctx context.Context, q *query.Query, values map[string]any) (int64, error) {
	if err := checkMutationScope(q); err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, goerrors.New("update requires at least one value", goerrors.CategoryBadInput)
	}

	uq := q.DB().NewUpdate().Table(q.TableName())
	for _, col := range sortedKeys(values) {
		uq = uq.Set("? = ?", bun.Ident(col), values[col])
	}
	for _, w := range whereOrAll(q) {
		uq = uq.Where(w.Query, w.Args...)
	}

	res, err := uq.Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Delete rejects queries scoped by LIMIT or OFFSET.
func (BunExecutor) Delete(ctx context.Context, q *query.Query) (int64, error) {
	if err := checkMutationScope(q); err != nil {
		return 0, err
	}

	dq := q.DB().NewDelete().Table(q.TableName())
	for _, w := range whereOrAll(q) {
		dq = dq.Where(w.Query, w.Args...)
	}

	res, err := dq.Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// checkMutationScope rejects mutations scoped by LIMIT or OFFSET, which
// UPDATE and DELETE cannot express portably.
func checkMutationScope(q *query.Query) error {
	if q.HasLimit() || q.GetOffset() > 0 {
		return goerrors.New("mutations cannot be scoped by limit or offset", goerrors.CategoryBadInput).
			WithMetadata(map[string]any{"table": q.TableName(), "limit": q.GetLimit(), "offset": q.GetOffset()})
	}
	return nil
}

// whereOrAll returns the query conditions. bun refuses unfiltered UPDATE and
// DELETE statements, so a query without conditions matches every row
// explicitly.
func whereOrAll(q *query.Query) []query.Condition {
	conds := q.Conditions()
	if len(conds) == 0 {
		return []query.Condition{{Query: "1 = 1"}}
	}
	return conds
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
