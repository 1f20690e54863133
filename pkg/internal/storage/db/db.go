// Package db 处理数据库存储操作.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	gormPrometheus "gorm.io/plugin/prometheus"

	"github.com/yeisme/reportvault/pkg/configs"
	"github.com/yeisme/reportvault/pkg/internal/model"
	nlog "github.com/yeisme/reportvault/pkg/log"
)

// DialectorFactory 按数据库配置创建 dialector，各驱动可读取自身关心的选项.
type DialectorFactory func(cfg *configs.DBConfig) gorm.Dialector

var (
	factoriesMu sync.RWMutex
	// dialectorFactories 存储数据库类型到 dialector 工厂的映射.
	dialectorFactories = map[configs.DBType]DialectorFactory{}
)

// RegisterDialectorFactory 注册数据库 dialector 工厂函数.
func RegisterDialectorFactory(dbType configs.DBType, factory DialectorFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()

	dialectorFactories[dbType] = factory
}

// GetRegisteredDBTypes 返回已注册的数据库类型列表（已排序）.
func GetRegisteredDBTypes() []configs.DBType {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	types := make([]configs.DBType, 0, len(dialectorFactories))
	for dbType := range dialectorFactories {
		types = append(types, dbType)
	}

	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	return types
}

// Client 包装 GORM DB 客户端.
type Client struct {
	*gorm.DB

	txOpts *sql.TxOptions
}

// New 按配置打开数据库连接，配置连接池并在需要时注册 GORM 指标.
func New(ctx context.Context, cfg *configs.DBConfig) (*Client, error) {
	if cfg.GetDSN() == "" {
		return nil, fmt.Errorf("failed to generate DSN for database type: %s", cfg.Type)
	}

	factoriesMu.RLock()
	factory, exists := dialectorFactories[cfg.Type]
	factoriesMu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}

	db, err := gorm.Open(factory(cfg), &gorm.Config{
		Logger:      NewLogger(time.Duration(cfg.SlowThresholdMs) * time.Millisecond),
		PrepareStmt: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// 获取底层 SQL DB 以配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	client := &Client{DB: db, txOpts: cfg.GetTxOptions()}

	if mc := configs.GetConfig().Metrics; mc.Enabled {
		if err := client.RegisterGORMMetrics(cfg.Database, mc.GORMRefreshSeconds()); err != nil {
			return nil, fmt.Errorf("failed to register GORM metrics: %w", err)
		}

		nlog.Logger().Debug().Msg("GORM metrics registered")
	}

	nlog.Logger().Info().
		Str("type", cfg.GetDBType()).
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Msg("database connected")

	return client, nil
}

// Wrap 用已打开的 gorm.DB 构造客户端，主要供测试使用.
func Wrap(db *gorm.DB, txOpts *sql.TxOptions) *Client {
	return &Client{DB: db, txOpts: txOpts}
}

// GetDB 返回 GORM DB 实例.
func (c *Client) GetDB() *gorm.DB {
	return c.DB
}

// TxOptions 返回单项操作事务使用的选项.
func (c *Client) TxOptions() *sql.TxOptions {
	return c.txOpts
}

// Migrate 自动迁移全部模型.
func (c *Client) Migrate(ctx context.Context) error {
	if err := c.WithContext(ctx).AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}

	return nil
}

// Ping 检查数据库连通性.
func (c *Client) Ping(ctx context.Context) error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}

// Close 关闭底层连接.
func (c *Client) Close() error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// RegisterGORMMetrics 注册GORM连接池指标，refresh 为刷新间隔（秒）.
func (c *Client) RegisterGORMMetrics(dbName string, refresh uint32) error {
	promConfig := gormPrometheus.Config{
		DBName:          dbName,
		RefreshInterval: refresh,
		StartServer:     false, // 指标由 /metrics 统一暴露
	}

	if err := c.Use(gormPrometheus.New(promConfig)); err != nil {
		return fmt.Errorf("failed to register GORM prometheus plugin: %w", err)
	}

	return nil
}

// NewLogger 返回写入 zerolog 的 GORM 日志器，slow 为 0 时不记录慢查询.
func NewLogger(slow time.Duration) logger.Interface {
	l := nlog.Component("gorm")

	return logger.New(&l, logger.Config{
		SlowThreshold:             slow,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
