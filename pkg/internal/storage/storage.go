// Package storage 聚合数据库、键值存储、消息队列与对象存储客户端.
//
// Example:
//
//	mgr, err := storage.Init(ctx)
//	if err != nil {
//		// 处理错误
//	}
//	defer mgr.Close()
//
//	dbClient := mgr.GetDBClient()
package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/yeisme/reportvault/pkg/configs"
	dbc "github.com/yeisme/reportvault/pkg/internal/storage/db"
	kvc "github.com/yeisme/reportvault/pkg/internal/storage/kv"
	mqc "github.com/yeisme/reportvault/pkg/internal/storage/mq"
	s3c "github.com/yeisme/reportvault/pkg/internal/storage/s3"
	nlog "github.com/yeisme/reportvault/pkg/log"
)

// Manager 聚合所有存储资源，S3 仅在报告内容使用对象存储时初始化.
type Manager struct {
	DB *dbc.Client
	KV *kvc.Client
	MQ *mqc.Client
	S3 *s3c.Client
}

var (
	mgr     *Manager
	mgrErr  error
	mgrOnce sync.Once
)

// Init 使用全局配置初始化存储，重复调用只返回已初始化实例.
func Init(ctx context.Context) (*Manager, error) {
	mgrOnce.Do(func() {
		mgr, mgrErr = New(ctx, configs.GetConfig())
	})

	return mgr, mgrErr
}

// New 按给定配置创建 Manager，任一组件失败时关闭已创建的组件.
func New(ctx context.Context, cfg *configs.AppConfig) (m *Manager, err error) {
	m = &Manager{}

	defer func() {
		if err != nil {
			_ = m.Close()
			m = nil
		}
	}()

	if m.DB, err = dbc.New(ctx, &cfg.DB); err != nil {
		return nil, err
	}

	if cfg.DB.AutoMigrate {
		if err = m.DB.Migrate(ctx); err != nil {
			return nil, err
		}
	}

	if m.KV, err = kvc.New(ctx, &cfg.KV); err != nil {
		return nil, fmt.Errorf("init kv: %w", err)
	}

	if m.MQ, err = mqc.New(ctx, &cfg.MQ); err != nil {
		return nil, err
	}

	if cfg.Report.BlobStore == configs.BlobStoreS3 {
		if m.S3, err = s3c.New(ctx, &cfg.S3); err != nil {
			return nil, err
		}
	}

	nlog.Logger().Info().
		Str("db", cfg.DB.GetDBType()).
		Str("kv", string(cfg.KV.Type)).
		Str("mq", string(cfg.MQ.Type)).
		Bool("s3", m.S3 != nil).
		Msg("storage manager initialized")

	return m, nil
}

// GetDBClient 获取 DB 客户端.
func (m *Manager) GetDBClient() *dbc.Client {
	return m.DB
}

// GetKVClient 获取 KV 客户端.
func (m *Manager) GetKVClient() *kvc.Client {
	return m.KV
}

// GetMQClient 获取 MQ 客户端.
func (m *Manager) GetMQClient() *mqc.Client {
	return m.MQ
}

// GetS3Client 获取 S3 客户端，未启用时为 nil.
func (m *Manager) GetS3Client() *s3c.Client {
	return m.S3
}

// Close 按创建的逆序关闭所有资源.
func (m *Manager) Close() error {
	var err error

	if m.S3 != nil {
		err = errors.Join(err, m.S3.Close())
	}

	if m.MQ != nil {
		err = errors.Join(err, m.MQ.Close())
	}

	if m.KV != nil {
		err = errors.Join(err, m.KV.Close())
	}

	if m.DB != nil {
		err = errors.Join(err, m.DB.Close())
	}

	return err
}
