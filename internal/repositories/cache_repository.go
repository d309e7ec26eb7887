package repositories

import (
	"context"
	"errors"
	"time"
)

type CacheRepositoryInterface interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, key ...string) error
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, expiration time.Duration) (bool, error)
}

// IsCacheMiss - отсутствие ключа, а не ошибка хранилища.
func IsCacheMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss) || isRedisNil(err)
}
