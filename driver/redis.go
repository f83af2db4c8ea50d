package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-query-cache/cache"
	goredis "github.com/redis/go-redis/v9"
)

// ErrNilClient is returned when a store is built without a client.
var ErrNilClient = errors.New("driver: nil client")

// RedisStore keeps result sets in redis and applies TTLs with EXPIRE.
type RedisStore struct {
	rdb goredis.UniversalClient
}

var (
	_ cache.Store   = (*RedisStore)(nil)
	_ cache.Expirer = (*RedisStore)(nil)
)

// NewRedisStore wraps a go-redis client. The caller keeps ownership of it.
func NewRedisStore(rdb goredis.UniversalClient) (*RedisStore, error) {
	if isNilRedis(rdb) {
		return nil, ErrNilClient
	}
	return &RedisStore{rdb: rdb}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	return s.rdb.Set(ctx, key, value, 0).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

func (s *RedisStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return s.rdb.Expire(ctx, key, ttl).Err()
}

func redisFactory(handle any) (cache.Store, error) {
	rdb, ok := handle.(goredis.UniversalClient)
	if !ok || isNilRedis(rdb) {
		return nil, invalidHandle(KindRedis, handle)
	}
	return NewRedisStore(rdb)
}

// isNilRedis also catches a nil client pointer held in the interface.
func isNilRedis(rdb goredis.UniversalClient) bool {
	switch c := rdb.(type) {
	case nil:
		return true
	case *goredis.Client:
		return c == nil
	case *goredis.ClusterClient:
		return c == nil
	case *goredis.Ring:
		return c == nil
	}
	return false
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
