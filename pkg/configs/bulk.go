package configs

import "github.com/spf13/viper"

// BulkConfig 批量操作配置.
type BulkConfig struct {
	// FailFast 为 true 时，批量删除与批量移动目录在首个错误处中止.
	FailFast bool `mapstructure:"fail_fast"`
	// MaxItems 单次批量请求的条目上限（目录与报告合计）.
	MaxItems int `mapstructure:"max_items" rule:"min=1"`
}

func (c *BulkConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("bulk.fail_fast", false)
	v.SetDefault("bulk.max_items", 500)
}
