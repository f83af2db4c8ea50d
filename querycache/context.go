package querycache

import (
	"context"
	"time"
)

type ttlContextKey struct{}

// WithTTL overrides the lifetime of entries written during calls made with ctx.
// A non-positive ttl leaves ctx unchanged.
func WithTTL(ctx context.Context, ttl time.Duration) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if ttl <= 0 {
		return ctx
	}
	return context.WithValue(ctx, ttlContextKey{}, ttl)
}

func ttlFromContext(ctx context.Context) (time.Duration, bool) {
	if ctx == nil {
		return 0, false
	}
	ttl, ok := ctx.Value(ttlContextKey{}).(time.Duration)
	return ttl, ok
}
