package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rushteam/premiumkit/core"
)

// RedisStore 是 Redis 实现的 Store，多实例部署时共享预测缓存。
type RedisStore struct {
	client *redis.Client
	prefix string
}

// RedisOption 配置 RedisStore
type RedisOption func(*RedisStore)

// WithKeyPrefix 为所有 key 加前缀，便于和其他业务共用一个库
func WithKeyPrefix(prefix string) RedisOption {
	return func(r *RedisStore) {
		r.prefix = prefix
	}
}

// NewRedisStore 连接 Redis 并 Ping 一次，连不上直接返回 UNAVAILABLE
func NewRedisStore(ctx context.Context, addr, password string, db int, opts ...RedisOption) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, core.WrapDomainError(core.ModuleStore, core.ErrorCodeUnavailable, "redis ping "+addr, err)
	}
	r := &RedisStore{client: client}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *RedisStore) Name() string { return "redis" }

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, core.ErrStoreNotFound
	}
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleStore, core.ErrorCodeUnavailable, "redis get", err)
	}
	return val, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl ...int) error {
	var expiration time.Duration
	if len(ttl) > 0 && ttl[0] > 0 {
		expiration = time.Duration(ttl[0]) * time.Second
	}
	if err := r.client.Set(ctx, r.prefix+key, value, expiration).Err(); err != nil {
		return core.WrapDomainError(core.ModuleStore, core.ErrorCodeUnavailable, "redis set", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return core.WrapDomainError(core.ModuleStore, core.ErrorCodeUnavailable, "redis del", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

var _ core.Store = (*RedisStore)(nil)
