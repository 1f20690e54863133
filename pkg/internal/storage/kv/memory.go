package kv

import (
	"context"
	"path"
	"sync"
	"time"

	"github.com/yeisme/reportvault/pkg/configs"
)

type memoryEntry struct {
	value    []byte
	expireAt time.Time // 零值表示不过期
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expireAt.IsZero() && !now.Before(e.expireAt)
}

// MemoryKV 进程内 KV 实现，支持 TTL，过期条目在访问时惰性清理.
type MemoryKV struct {
	mu   sync.Mutex
	data map[string]memoryEntry
	now  func() time.Time
}

// NewMemoryKV 创建内存 KV 实例.
func NewMemoryKV(_ context.Context, _ *configs.KVConfig) (KVStore, error) {
	return newMemoryKV(time.Now), nil
}

func newMemoryKV(now func() time.Time) *MemoryKV {
	return &MemoryKV{data: make(map[string]memoryEntry), now: now}
}

// lookup 在持锁状态下读取条目并清理过期项.
func (m *MemoryKV) lookup(key string) (memoryEntry, bool) {
	e, ok := m.data[key]
	if !ok {
		return memoryEntry{}, false
	}

	if e.expired(m.now()) {
		delete(m.data, key)

		return memoryEntry{}, false
	}

	return e, true
}

func (m *MemoryKV) store(key string, value []byte, ttl time.Duration) {
	e := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expireAt = m.now().Add(ttl)
	}

	m.data[key] = e
}

// Get 获取键的值，返回副本.
func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.lookup(key)
	if !ok {
		return nil, notFound(key)
	}

	return append([]byte(nil), e.value...), nil
}

// Set 设置键的值.
func (m *MemoryKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.store(key, value, ttl)

	return nil
}

// SetIfAbsent 仅在键不存在时写入.
func (m *MemoryKV) SetIfAbsent(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.lookup(key); ok {
		return false, nil
	}

	m.store(key, value, ttl)

	return true, nil
}

// Delete 删除键.
func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)

	return nil
}

// Exists 检查键是否存在.
func (m *MemoryKV) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.lookup(key)

	return ok, nil
}

// Keys 获取匹配 glob 模式的键.
func (m *MemoryKV) Keys(_ context.Context, pattern string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.data))

	for k := range m.data {
		if _, ok := m.lookup(k); !ok {
			continue
		}

		if pattern != "" {
			matched, err := path.Match(pattern, k)
			if err != nil {
				return nil, err
			}

			if !matched {
				continue
			}
		}

		keys = append(keys, k)
	}

	return keys, nil
}

// Close 关闭存储（内存实现无需操作）.
func (m *MemoryKV) Close() error {
	return nil
}

func init() {
	RegisterKVFactory(configs.KVTypeMemory, NewMemoryKV)
}
