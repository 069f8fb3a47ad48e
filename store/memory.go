package store

import (
	"context"
	"errors"

	"github.com/coocood/freecache"
	"github.com/rushteam/premiumkit/core"
)

// DefaultMemorySize 进程内缓存默认容量（字节）
const DefaultMemorySize = 32 * 1024 * 1024

// MemoryStore 是基于 freecache 的进程内 Store。
// 容量固定，写满后按近似 LRU 淘汰；支持 TTL，进程重启后数据丢失。
type MemoryStore struct {
	cache *freecache.Cache
}

// NewMemoryStore 创建进程内缓存，sizeBytes<=0 时使用 DefaultMemorySize
func NewMemoryStore(sizeBytes int) *MemoryStore {
	if sizeBytes <= 0 {
		sizeBytes = DefaultMemorySize
	}
	return &MemoryStore{cache: freecache.NewCache(sizeBytes)}
}

func (m *MemoryStore) Name() string { return "memory" }

func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := m.cache.Get([]byte(key))
	if errors.Is(err, freecache.ErrNotFound) {
		return nil, core.ErrStoreNotFound
	}
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleStore, core.ErrorCodeUnavailable, "memory get", err)
	}
	return val, nil
}

func (m *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl ...int) error {
	expire := 0
	if len(ttl) > 0 && ttl[0] > 0 {
		expire = ttl[0]
	}
	if err := m.cache.Set([]byte(key), value, expire); err != nil {
		// 值超过单条上限（容量的 1/1024）时 freecache 拒绝写入
		return core.WrapDomainError(core.ModuleStore, core.ErrorCodeUnavailable, "memory set", err)
	}
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.cache.Del([]byte(key))
	return nil
}

// HitRate 命中率，供指标采集
func (m *MemoryStore) HitRate() float64 { return m.cache.HitRate() }

// EntryCount 当前条目数
func (m *MemoryStore) EntryCount() int64 { return m.cache.EntryCount() }

func (m *MemoryStore) Close() error {
	m.cache.Clear()
	return nil
}

var _ core.Store = (*MemoryStore)(nil)
