package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/reportvault/pkg/configs"
	ctxPkg "github.com/yeisme/reportvault/pkg/context"
)

const userKey = "user"

// AuthMiddleware 基于 oauth2-proxy 注入的请求头做统一身份认证，并把当前用户写入上下文.
//   - 依次读取 user_headers（默认 X-Auth-Request-Email、X-Forwarded-Email）
//   - trust_user_header 开启时接受网关注入的 X-User
//   - 开发模式可允许 ?user= 兜底（由 configs.auth.dev_allow_query 控制）
//   - 支持通过配置跳过某些路径（如 /metrics, /health）.
func AuthMiddleware(conf configs.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if conf.Skips(c.Request.URL.Path) {
			c.Next()
			return
		}

		user := resolveUser(c, conf)
		if user == "" && conf.Enabled {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required."})
			return
		}

		if user != "" {
			c.Set(userKey, user)
			c.Request = c.Request.WithContext(ctxPkg.WithUser(c.Request.Context(), user))
		}

		c.Next()
	}
}

func resolveUser(c *gin.Context, conf configs.AuthConfig) string {
	for _, h := range conf.UserHeaders {
		if v := strings.TrimSpace(c.GetHeader(h)); v != "" {
			return v
		}
	}

	if conf.TrustUserHeader {
		if v := strings.TrimSpace(c.GetHeader("X-User")); v != "" {
			return v
		}
	}

	if conf.DevAllowQuery {
		return strings.TrimSpace(c.Query("user"))
	}

	return ""
}

// CurrentUser 返回当前请求的用户，未认证时为空.
func CurrentUser(c *gin.Context) string {
	if v, ok := c.Get(userKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}

	return ctxPkg.GetUser(c.Request.Context())
}
