package configs

import (
	"time"

	"github.com/spf13/viper"
)

// MetricsConfig Prometheus 指标配置，业务指标统一使用 reportvault 命名空间.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" rule:"omitempty,startswith=/"`
	// CollectInterval GORM 连接池指标的刷新间隔.
	CollectInterval time.Duration `mapstructure:"collect_interval"`
	RuntimeMetrics  bool          `mapstructure:"runtime_metrics"`
	Pprof           bool          `mapstructure:"pprof"`
}

// GORMRefreshSeconds 返回 gorm prometheus 插件使用的刷新间隔（秒），至少为 1.
func (c *MetricsConfig) GORMRefreshSeconds() uint32 {
	if s := uint32(c.CollectInterval / time.Second); s > 0 {
		return s
	}

	return 1
}

func (c *MetricsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.collect_interval", "15s")
	v.SetDefault("metrics.runtime_metrics", true)
	v.SetDefault("metrics.pprof", false)
}
