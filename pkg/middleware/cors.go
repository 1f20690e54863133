package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/yeisme/reportvault/pkg/configs"
)

// CORSMiddleware CORS中间件，放行身份与角色请求头.
func CORSMiddleware(cfg configs.ServerConfig) gin.HandlerFunc {
	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowFiles = true
	config.AddAllowHeaders("X-User", "X-Role", "X-Auth-Request-Email", "X-Forwarded-Email")
	config.AddExposeHeaders("Content-Disposition", "ETag")

	if cfg.Debug {
		config.AllowWebSockets = true
	}

	return cors.New(config)
}

// GzipMiddleware 压缩 JSON 响应，报告下载与指标端点除外.
func GzipMiddleware() gin.HandlerFunc {
	return gzip.Gzip(gzip.DefaultCompression,
		gzip.WithExcludedPaths([]string{"/metrics", "/debug/pprof"}),
		gzip.WithExcludedPathsRegexs([]string{`^/api/v1/reports/[^/]+/content$`}),
	)
}
