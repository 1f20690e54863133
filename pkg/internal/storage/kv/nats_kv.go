//go:build !no_nats

package kv

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/yeisme/reportvault/pkg/configs"
)

// NATSKV 基于 NATS JetStream KV 的实现.
// 桶级 TTL 由 NATSKVConfig.TTL 控制，单键 TTL 通过值包装惰性判断.
type NATSKV struct {
	kv   nats.KeyValue
	conn *nats.Conn
	now  func() time.Time
}

// NewNATSKV 创建 NATS KV 实例.
func NewNATSKV(_ context.Context, cfg *configs.KVConfig) (KVStore, error) {
	natsCfg := cfg.NATS

	opts := []nats.Option{nats.Name("reportvault-kv")}
	if natsCfg.User != "" {
		opts = append(opts, nats.UserInfo(natsCfg.User, natsCfg.Password))
	}

	nc, err := nats.Connect(natsCfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()

		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	kv, err := js.KeyValue(natsCfg.Bucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{
			Bucket: natsCfg.Bucket,
			TTL:    natsCfg.TTL,
		})
	}

	if err != nil {
		nc.Close()

		return nil, fmt.Errorf("failed to create/get KV bucket: %w", err)
	}

	return &NATSKV{kv: kv, conn: nc, now: time.Now}, nil
}

// Get 获取键的值，过期条目惰性删除.
func (n *NATSKV) Get(_ context.Context, key string) ([]byte, error) {
	entry, err := n.kv.Get(key)
	if errors.Is(err, nats.ErrKeyNotFound) {
		return nil, notFound(key)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get key: %w", err)
	}

	val, expired, err := decodeWithTTL(entry.Value(), n.now())
	if err != nil {
		return nil, err
	}

	if expired {
		_ = n.kv.Delete(key)

		return nil, notFound(key)
	}

	return val, nil
}

// Set 设置键的值.
func (n *NATSKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	encoded, err := encodeWithTTL(value, ttl, n.now())
	if err != nil {
		return err
	}

	if _, err := n.kv.Put(key, encoded); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}

	return nil
}

// SetIfAbsent 使用 KeyValue.Create，键已存在（且未过期）时返回 false.
func (n *NATSKV) SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	encoded, err := encodeWithTTL(value, ttl, n.now())
	if err != nil {
		return false, err
	}

	if _, err := n.kv.Create(key, encoded); err == nil {
		return true, nil
	} else if !errors.Is(err, nats.ErrKeyExists) {
		return false, fmt.Errorf("failed to create key: %w", err)
	}

	// 已存在的条目可能只是逻辑过期
	if ok, err := n.Exists(ctx, key); err != nil || ok {
		return false, err
	}

	if _, err := n.kv.Create(key, encoded); err != nil {
		if errors.Is(err, nats.ErrKeyExists) {
			return false, nil
		}

		return false, fmt.Errorf("failed to create key: %w", err)
	}

	return true, nil
}

// Delete 删除键.
func (n *NATSKV) Delete(_ context.Context, key string) error {
	if err := n.kv.Delete(key); err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
		return fmt.Errorf("failed to delete key: %w", err)
	}

	return nil
}

// Exists 检查键是否存在.
func (n *NATSKV) Exists(ctx context.Context, key string) (bool, error) {
	_, err := n.Get(ctx, key)
	if errors.Is(err, ErrKeyNotFound) {
		return false, nil
	}

	return err == nil, err
}

// Keys 获取匹配 glob 模式的键.
func (n *NATSKV) Keys(ctx context.Context, pattern string) ([]string, error) {
	keys, err := n.kv.Keys()
	if errors.Is(err, nats.ErrNoKeysFound) {
		return []string{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get keys: %w", err)
	}

	result := make([]string, 0, len(keys))

	for _, key := range keys {
		if pattern != "" {
			if ok, _ := path.Match(pattern, key); !ok {
				continue
			}
		}

		if ok, err := n.Exists(ctx, key); err != nil || !ok {
			continue
		}

		result = append(result, key)
	}

	return result, nil
}

// Close 关闭 NATS 连接.
func (n *NATSKV) Close() error {
	n.conn.Close()

	return nil
}

func init() {
	RegisterKVFactory(configs.KVTypeNATS, NewNATSKV)
}
