// Package middleware 提供 Gin 中间件：认证、角色、存储与协作方注入、限流、熔断、日志、指标与追踪.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/reportvault/pkg/configs"
)

// Role 表示请求方的角色（使用 iota 实现的枚举，数值越大权限越高）。
type Role int

const (
	RoleAssistant Role = iota + 1
	RoleAdmin
)

// String 返回角色的字符串表示。
func (r Role) String() string {
	if r == RoleAdmin {
		return "admin"
	}

	return "assistant"
}

type roleKey struct{}

// ParseRole 从字符串解析角色，未知值降级为 assistant。
func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), "admin") {
		return RoleAdmin
	}

	return RoleAssistant
}

// roleCtxKey gin 上下文中的角色键.
const roleCtxKey = "role"

// RoleMiddleware 确定请求角色并写入 gin.Context 与 request.Context，优先级：
//   - 匿名请求（免认证路径）始终视为 assistant
//   - auth.admin_users 中的用户为 admin
//   - auth.trust_role_header 开启时使用 X-Role
//   - 其余使用 auth.default_role
func RoleMiddleware(conf configs.AuthConfig) gin.HandlerFunc {
	fallback := ParseRole(conf.DefaultRole)

	return func(c *gin.Context) {
		r := RoleAssistant

		if user := CurrentUser(c); user != "" {
			r = fallback

			switch raw := c.GetHeader("X-Role"); {
			case conf.IsAdminUser(user):
				r = RoleAdmin
			case conf.TrustRoleHeader && raw != "":
				r = ParseRole(raw)
			}
		}

		c.Set(roleCtxKey, r)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), roleKey{}, r))
		c.Next()
	}
}

// GetRole 返回当前请求角色，未经过 RoleMiddleware 时为 assistant.
func GetRole(c *gin.Context) Role {
	if v, ok := c.Get(roleCtxKey); ok {
		if r, ok := v.(Role); ok {
			return r
		}
	}

	if r, ok := c.Request.Context().Value(roleKey{}).(Role); ok {
		return r
	}

	return RoleAssistant
}

// RequireMinRole 角色不足时返回 403.
func RequireMinRole(minRole Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetRole(c) < minRole {
			c.AbortWithStatusJSON(http.StatusForbidden,
				gin.H{"error": "This operation requires the " + minRole.String() + " role."})

			return
		}

		c.Next()
	}
}
