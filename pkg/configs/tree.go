package configs

import "github.com/spf13/viper"

// DefaultTreeMaxDepth 沿 parent_id 向上遍历的最大层数.
const DefaultTreeMaxDepth = 256

// TreeConfig 目录树遍历配置.
type TreeConfig struct {
	// MaxDepth 路径解析与环检测的遍历上限，数据损坏时保证终止.
	MaxDepth int `mapstructure:"max_depth" rule:"min=1,max=100000"`
	// MaxNameLength 目录名称最大长度.
	MaxNameLength int `mapstructure:"max_name_length" rule:"min=1,max=1024"`
}

func (c *TreeConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("tree.max_depth", DefaultTreeMaxDepth)
	v.SetDefault("tree.max_name_length", 255)
}
