package configs

import "github.com/spf13/viper"

const (
	// 默认速率限制配置.
	DefaultRateLimitEnabled = false
	DefaultRateLimitRPS     = 50.0
	DefaultRateLimitBurst   = 100
	DefaultRateLimitKey     = "ip"
	DefaultBulkRPS          = 2.0
	DefaultBulkBurst        = 5
)

// RateLimitConfig 速率限制配置.
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`   // 每秒允许的请求数
	Burst   int     `mapstructure:"burst"` // 突发容量
	// Key 选择限流维度：global（全局）、ip（按客户端IP）、user（按认证用户）、header:Header-Name（按请求头）
	Key string `mapstructure:"key"`
	// BulkRPS/BulkBurst 批量接口的独立限额，每个批量请求会产生 N 个事务.
	BulkRPS   float64 `mapstructure:"bulk_rps"`
	BulkBurst int     `mapstructure:"bulk_burst"`
}

// Bulk 返回批量接口使用的限流配置.
func (c RateLimitConfig) Bulk() RateLimitConfig {
	b := c
	b.RPS = c.BulkRPS
	b.Burst = c.BulkBurst

	return b
}

func (c *RateLimitConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("rate_limit.enabled", DefaultRateLimitEnabled)
	v.SetDefault("rate_limit.rps", DefaultRateLimitRPS)
	v.SetDefault("rate_limit.burst", DefaultRateLimitBurst)
	v.SetDefault("rate_limit.key", DefaultRateLimitKey)
	v.SetDefault("rate_limit.bulk_rps", DefaultBulkRPS)
	v.SetDefault("rate_limit.bulk_burst", DefaultBulkBurst)
}
