// Package context 在 context.Context 中传递存储管理器与当前用户，并提供带追踪字段的 logger.
package context

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/yeisme/reportvault/pkg/internal/storage"
	dbc "github.com/yeisme/reportvault/pkg/internal/storage/db"
	kvc "github.com/yeisme/reportvault/pkg/internal/storage/kv"
	mqc "github.com/yeisme/reportvault/pkg/internal/storage/mq"
	s3c "github.com/yeisme/reportvault/pkg/internal/storage/s3"
)

type (
	managerKey struct{}
	userKey    struct{}
)

// WithStorageManager 将 Manager 存储到 context 中.
func WithStorageManager(ctx context.Context, mgr *storage.Manager) context.Context {
	return context.WithValue(ctx, managerKey{}, mgr)
}

// GetManager 从 context 中获取 Manager，未注入时为 nil.
func GetManager(ctx context.Context) *storage.Manager {
	mgr, _ := ctx.Value(managerKey{}).(*storage.Manager)

	return mgr
}

// fromManager 管理器缺失时返回零值，调用方按“组件未启用”处理.
func fromManager[T any](ctx context.Context, get func(*storage.Manager) T) T {
	var zero T

	mgr := GetManager(ctx)
	if mgr == nil {
		return zero
	}

	return get(mgr)
}

func GetDBClient(ctx context.Context) *dbc.Client {
	return fromManager(ctx, (*storage.Manager).GetDBClient)
}

func GetKVClient(ctx context.Context) *kvc.Client {
	return fromManager(ctx, (*storage.Manager).GetKVClient)
}

func GetMQClient(ctx context.Context) *mqc.Client {
	return fromManager(ctx, (*storage.Manager).GetMQClient)
}

// GetS3Client 仅在 s3 启用时非 nil，报告内容默认存放在数据库内.
func GetS3Client(ctx context.Context) *s3c.Client {
	return fromManager(ctx, (*storage.Manager).GetS3Client)
}

// WithUser 记录当前请求的用户标识.
func WithUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// GetUser 返回当前用户，未认证时为空字符串.
func GetUser(ctx context.Context) string {
	u, _ := ctx.Value(userKey{}).(string)

	return u
}

// Logger 在 base 上附加 trace_id/span_id 与当前用户.
func Logger(ctx context.Context, base zerolog.Logger) zerolog.Logger {
	lc := base.With()

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		lc = lc.Str("trace_id", sc.TraceID().String()).Str("span_id", sc.SpanID().String())
	}

	if u := GetUser(ctx); u != "" {
		lc = lc.Str("user", u)
	}

	return lc.Logger()
}
