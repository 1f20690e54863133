package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultCBEnabled           = false
	DefaultCBFailureRate       = 0.5
	DefaultCBMinRequests       = 20
	DefaultCBIntervalSeconds   = 60
	DefaultCBTimeoutSeconds    = 30
	DefaultCBMaxRequestsInHalf = 5
)

// CircuitBreakerConfig HTTP 熔断配置，只统计 5xx，业务错误（4xx）不计入失败.
type CircuitBreakerConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	FailureRate       float64 `mapstructure:"failure_rate"         rule:"gte=0,lte=1"`
	MinRequests       uint32  `mapstructure:"min_requests"`
	IntervalSeconds   int     `mapstructure:"interval_seconds"     rule:"min=0"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds"      rule:"min=0"`
	MaxRequestsInHalf uint32  `mapstructure:"max_requests_in_half"`
	// SkipPaths 不参与熔断统计的路径前缀，健康检查需要在熔断打开时仍然可达.
	SkipPaths []string `mapstructure:"skip_paths"`
}

// Interval 统计窗口，0 表示闭合状态下从不清零.
func (c *CircuitBreakerConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// OpenTimeout 打开状态持续多久后进入半开.
func (c *CircuitBreakerConfig) OpenTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ShouldTrip 请求数达到 MinRequests 且失败比例不低于 FailureRate 时熔断.
func (c *CircuitBreakerConfig) ShouldTrip(requests, failures uint32) bool {
	if requests == 0 || requests < c.MinRequests {
		return false
	}

	return float64(failures)/float64(requests) >= c.FailureRate
}

func (c *CircuitBreakerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("circuit_breaker.enabled", DefaultCBEnabled)
	v.SetDefault("circuit_breaker.failure_rate", DefaultCBFailureRate)
	v.SetDefault("circuit_breaker.min_requests", DefaultCBMinRequests)
	v.SetDefault("circuit_breaker.interval_seconds", DefaultCBIntervalSeconds)
	v.SetDefault("circuit_breaker.timeout_seconds", DefaultCBTimeoutSeconds)
	v.SetDefault("circuit_breaker.max_requests_in_half", DefaultCBMaxRequestsInHalf)
	v.SetDefault("circuit_breaker.skip_paths", []string{"/api/v1/health", "/metrics"})
}
