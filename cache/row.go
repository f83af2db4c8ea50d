package cache

import (
	"fmt"
	"time"
)

// Row is a single result row keyed by column name.
type Row map[string]any

// Rows is the ordered result of one query execution.
type Rows []Row

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Clone returns a copy of rows where every row is itself copied, so callers
// can mutate the result without touching a shared instance.
func (rs Rows) Clone() Rows {
	if rs == nil {
		return nil
	}
	out := make(Rows, len(rs))
	for i, r := range rs {
		out[i] = r.Clone()
	}
	return out
}

// NormalizeRows brings values to the canonical shapes every serializer can
// reproduce: signed integers become int64, unsigned integers uint64, float32
// becomes float64 and times are UTC without a monotonic reading. Nested maps
// with non-string keys become map[string]any and nested slices are walked
// recursively. Byte slices are kept as []byte. A nil input yields an empty,
// non-nil result.
func NormalizeRows(rs Rows) Rows {
	out := make(Rows, len(rs))
	for i, r := range rs {
		row := make(Row, len(r))
		for k, v := range r {
			row[k] = normalizeValue(v)
		}
		out[i] = row
	}
	return out
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case int:
		return int64(val)
	case int8:
		return int64(val)
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case uint:
		return uint64(val)
	case uint8:
		return uint64(val)
	case uint16:
		return uint64(val)
	case uint32:
		return uint64(val)
	case float32:
		return float64(val)
	case time.Time:
		return val.Round(0).UTC()
	case *time.Time:
		if val == nil {
			return nil
		}
		return val.Round(0).UTC()
	case map[any]any:
		m := make(map[string]any, len(val))
		for k, inner := range val {
			m[fmt.Sprint(k)] = normalizeValue(inner)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, inner := range val {
			m[k] = normalizeValue(inner)
		}
		return m
	case Row:
		return normalizeValue(map[string]any(val))
	case []any:
		s := make([]any, len(val))
		for i, inner := range val {
			s[i] = normalizeValue(inner)
		}
		return s
	default:
		return v
	}
}
