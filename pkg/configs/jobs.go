package configs

import "github.com/spf13/viper"

// JobsConfig 定时任务配置.
type JobsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// TreeIntegrityCron 目录树完整性巡检的 cron 表达式.
	TreeIntegrityCron string `mapstructure:"tree_integrity_cron" rule:"required"`
}

func (c *JobsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("jobs.enabled", true)
	v.SetDefault("jobs.tree_integrity_cron", "*/30 * * * *")
}
