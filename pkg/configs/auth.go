package configs

import (
	"strings"

	"github.com/spf13/viper"
)

// AuthConfig 身份认证配置。用户身份由上游网关（如 oauth2-proxy）通过请求头注入，本服务只负责读取.
type AuthConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// UserHeaders 按顺序读取的身份请求头，第一个非空值即为当前用户.
	UserHeaders []string `mapstructure:"user_headers"`
	// SkipPaths 跳过认证的路径前缀.
	SkipPaths     []string `mapstructure:"skip_paths"`
	DevAllowQuery bool     `mapstructure:"dev_allow_query"` // 本地调试允许 ?user=
	// TrustUserHeader 额外信任 X-User.
	TrustUserHeader bool `mapstructure:"trust_user_header"`
	// TrustRoleHeader 信任请求携带的 X-Role，仅当该头由可信代理写入并剥离客户端原值时开启.
	TrustRoleHeader bool `mapstructure:"trust_role_header"`
	// AdminUsers 固定授予 admin 的用户.
	AdminUsers []string `mapstructure:"admin_users"`
	// DefaultRole 其余已认证用户的角色.
	DefaultRole string `mapstructure:"default_role" rule:"oneof=assistant admin"`
}

// IsAdminUser 判断用户是否在 AdminUsers 中，忽略大小写.
func (c *AuthConfig) IsAdminUser(user string) bool {
	user = strings.TrimSpace(user)
	if user == "" {
		return false
	}

	for _, u := range c.AdminUsers {
		if strings.EqualFold(strings.TrimSpace(u), user) {
			return true
		}
	}

	return false
}

// Skips 判断路径是否免认证.
func (c *AuthConfig) Skips(path string) bool {
	return HasAnyPrefix(path, c.SkipPaths)
}

// HasAnyPrefix 忽略空白前缀，path 为空时返回 false.
func HasAnyPrefix(path string, prefixes []string) bool {
	if path == "" {
		return false
	}

	for _, p := range prefixes {
		if p = strings.TrimSpace(p); p != "" && strings.HasPrefix(path, p) {
			return true
		}
	}

	return false
}

func (c *AuthConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("auth.enabled", true)
	v.SetDefault("auth.user_headers", []string{"X-Auth-Request-Email", "X-Forwarded-Email"})
	v.SetDefault("auth.dev_allow_query", true)
	v.SetDefault("auth.trust_user_header", true)
	v.SetDefault("auth.trust_role_header", false)
	v.SetDefault("auth.default_role", "assistant")
	v.SetDefault("auth.skip_paths", []string{
		"/metrics",
		"/debug/pprof",
		"/api/v1/health",
		"/swagger",
	})
}
