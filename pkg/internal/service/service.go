// Package service 实现目录树、报告放置与批量操作的核心业务逻辑.
//
// 所有结构性检查（同名、环、父目录存在）与写入在同一个数据库事务内完成；
// 审计与活动通知在事务提交之后发送，失败只记录日志.
package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/yeisme/reportvault/pkg/configs"
	ctxPkg "github.com/yeisme/reportvault/pkg/context"
	"github.com/yeisme/reportvault/pkg/metrics"
	"github.com/yeisme/reportvault/pkg/tracing"
)

// Deps 构造服务所需的依赖.
type Deps struct {
	DB        *gorm.DB
	TxOptions *sql.TxOptions
	Tree      configs.TreeConfig
	Bulk      configs.BulkConfig
	Report    configs.ReportConfig
	Blobs     BlobStore
	Collaborators
}

// Services 一次请求使用的服务集合.
type Services struct {
	Folders   *FolderService
	Reports   *ReportService
	Bulk      *BulkService
	Inspector *Inspector
}

// NewServices 按依赖构造服务，零值配置使用默认值.
func NewServices(d Deps) *Services {
	if d.Tree.MaxDepth <= 0 {
		d.Tree.MaxDepth = configs.DefaultTreeMaxDepth
	}

	if d.Blobs == nil {
		d.Blobs = InlineBlobStore{}
	}

	d.Collaborators = d.Collaborators.withDefaults()

	folders := &FolderService{deps: d}
	reports := &ReportService{deps: d}

	return &Services{
		Folders:   folders,
		Reports:   reports,
		Bulk:      &BulkService{folders: folders, reports: reports, cfg: d.Bulk},
		Inspector: &Inspector{db: d.DB},
	}
}

// New 从请求上下文构造服务：存储来自 StorageMiddleware，协作方来自 CollaboratorsMiddleware.
func New(ctx context.Context) *Services {
	cfg := configs.GetConfig()

	d := Deps{
		Tree:          cfg.Tree,
		Bulk:          cfg.Bulk,
		Report:        cfg.Report,
		Collaborators: CollaboratorsFrom(ctx),
	}

	if dbc := ctxPkg.GetDBClient(ctx); dbc != nil {
		d.DB = dbc.GetDB()
		d.TxOptions = dbc.TxOptions()
	}

	if cfg.Report.BlobStore == configs.BlobStoreS3 {
		if s3c := ctxPkg.GetS3Client(ctx); s3c != nil {
			d.Blobs = NewS3BlobStore(s3c, cfg.S3.ReportPrefix())
		}
	}

	return NewServices(d)
}

// errNoDB 数据库未初始化.
var errNoDB = errors.New("database not initialized")

// transaction 在单个事务内执行 fn.
func transaction(ctx context.Context, d Deps, fn func(tx *gorm.DB) error) error {
	if d.DB == nil {
		return errNoDB
	}

	if d.TxOptions != nil {
		return d.DB.WithContext(ctx).Transaction(fn, d.TxOptions)
	}

	return d.DB.WithContext(ctx).Transaction(fn)
}

// startOp 开始一个被追踪、被计数的操作，返回的函数在操作结束时调用.
func startOp(ctx context.Context, counter *prometheus.CounterVec, kind, op string) (context.Context, func(error)) {
	ctx, span := tracing.StartSpan(ctx, kind+"."+op)

	return ctx, func(err error) {
		counter.WithLabelValues(op, metrics.Result(err)).Inc()
		tracing.End(span, err)
	}
}

// actor 当前用户，未认证时为空.
func actor(ctx context.Context) string {
	return ctxPkg.GetUser(ctx)
}
