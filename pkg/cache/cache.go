// Package cache 在键值存储之上提供带命名空间的泛型缓存，值以 JSON（bytedance/sonic）编码.
//
// 活动通知去重的用法:
//
//	marks := cache.NewCache(kvClient, "activity.linked")
//
//	first, err := cache.SetOnce(ctx, marks, activityID, mark, 30*24*time.Hour)
//	if err == nil && !first {
//		// 已通知过
//	}
//
// 未命中返回 kv.ErrKeyNotFound，可用 errors.Is 判断.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/yeisme/reportvault/pkg/internal/storage/kv"
)

// Cache 同一命名空间下的缓存条目，实际键为 namespace + "." + key.
type Cache struct {
	store     kv.KVStore
	namespace string
}

// NewCache 创建缓存，namespace 为空时直接使用原始键.
func NewCache(store kv.KVStore, namespace string) *Cache {
	return &Cache{store: store, namespace: strings.TrimSuffix(namespace, ".")}
}

// Key 返回存储中的实际键.
func (c *Cache) Key(key string) string {
	if c.namespace == "" {
		return key
	}

	return c.namespace + "." + key
}

// Get 读取并解码.
func Get[T any](ctx context.Context, c *Cache, key string) (T, error) {
	var value T

	data, err := c.store.Get(ctx, c.Key(key))
	if err != nil {
		return value, err
	}

	if err := sonic.Unmarshal(data, &value); err != nil {
		return value, fmt.Errorf("decode cache entry %s: %w", c.Key(key), err)
	}

	return value, nil
}

// Set 编码并写入，ttl<=0 表示不过期.
func Set[T any](ctx context.Context, c *Cache, key string, value T, ttl time.Duration) error {
	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", c.Key(key), err)
	}

	return c.store.Set(ctx, c.Key(key), data, ttl)
}

// SetOnce 仅在键不存在时写入，返回本次是否写入；并发调用只有一个返回 true.
func SetOnce[T any](ctx context.Context, c *Cache, key string, value T, ttl time.Duration) (bool, error) {
	data, err := sonic.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("encode cache entry %s: %w", c.Key(key), err)
	}

	return c.store.SetIfAbsent(ctx, c.Key(key), data, ttl)
}

// Delete 删除条目，不存在时不报错.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.store.Delete(ctx, c.Key(key))
}

// Exists 条目是否存在且未过期.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	return c.store.Exists(ctx, c.Key(key))
}

// Entries 返回命名空间下的全部键（不含命名空间前缀）.
func (c *Cache) Entries(ctx context.Context) ([]string, error) {
	keys, err := c.store.Keys(ctx, c.Key("*"))
	if err != nil {
		return nil, err
	}

	prefix := c.Key("")
	for i, k := range keys {
		keys[i] = strings.TrimPrefix(k, prefix)
	}

	return keys, nil
}
