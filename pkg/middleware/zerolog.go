package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	ctxPkg "github.com/yeisme/reportvault/pkg/context"
	"github.com/yeisme/reportvault/pkg/log"
)

// GinLoggerMiddleware 每个请求一条访问日志：5xx 为 error，4xx 为 warn，其余为 info.
// route 使用路由模板（如 /api/v1/folders/:id），便于按接口聚合.
func GinLoggerMiddleware() gin.HandlerFunc {
	base := log.Component("access")

	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		logger := ctxPkg.Logger(c.Request.Context(), base)

		var event *zerolog.Event

		switch {
		case status >= http.StatusInternalServerError:
			event = logger.Error()
		case status >= http.StatusBadRequest:
			event = logger.Warn()
		default:
			event = logger.Info()
		}

		event = event.
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("method", c.Request.Method).
			Str("route", c.FullPath()).
			Str("path", c.Request.URL.Path).
			Int("bytes", c.Writer.Size()).
			Str("client_ip", c.ClientIP())

		if q := c.Request.URL.RawQuery; q != "" {
			event = event.Str("query", q)
		}

		// 认证中间件写入 gin 上下文，请求 ctx 里可能还没有用户
		if user := CurrentUser(c); user != "" && ctxPkg.GetUser(c.Request.Context()) == "" {
			event = event.Str("user", user)
		}

		if len(c.Errors) > 0 {
			event = event.Str("error", c.Errors.String())
		}

		event.Msg("http request")
	}
}
