package configs

import (
	"time"

	"github.com/spf13/viper"
)

// EventsConfig 控制事件发布的开关（全局与分主题）。
type EventsConfig struct {
	Enabled  bool                 `mapstructure:"enabled"` // 总开关
	Folder   FolderEventsConfig   `mapstructure:"folder"`
	Report   ReportEventsConfig   `mapstructure:"report"`
	Audit    AuditEventsConfig    `mapstructure:"audit"`
	Activity ActivityEventsConfig `mapstructure:"activity"`
}

// FolderEventsConfig 目录领域事件开关。
type FolderEventsConfig struct {
	Created  bool `mapstructure:"created"`
	Renamed  bool `mapstructure:"renamed"`
	Moved    bool `mapstructure:"moved"`
	Deleted  bool `mapstructure:"deleted"`
	Archived bool `mapstructure:"archived"`
	Restored bool `mapstructure:"restored"`
}

// ReportEventsConfig 报告领域事件开关。
type ReportEventsConfig struct {
	Created bool `mapstructure:"created"`
	Updated bool `mapstructure:"updated"`
	Moved   bool `mapstructure:"moved"`
	Deleted bool `mapstructure:"deleted"`
}

// AuditEventsConfig 审计日志事件。
type AuditEventsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Consume 在本进程内订阅审计事件并写入日志.
	Consume bool `mapstructure:"consume"`
}

// ActivityEventsConfig 报告关联活动事件。
type ActivityEventsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// DedupeTTL 同一活动重复通知的抑制时长.
	DedupeTTL time.Duration `mapstructure:"dedupe_ttl"`
}

func (c *EventsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("events.enabled", true)

	// 结构变更默认开启，重命名等高频事件按需开启
	v.SetDefault("events.folder.created", true)
	v.SetDefault("events.folder.renamed", false)
	v.SetDefault("events.folder.moved", true)
	v.SetDefault("events.folder.deleted", true)
	v.SetDefault("events.folder.archived", true)
	v.SetDefault("events.folder.restored", true)

	v.SetDefault("events.report.created", true)
	v.SetDefault("events.report.updated", false)
	v.SetDefault("events.report.moved", true)
	v.SetDefault("events.report.deleted", true)

	v.SetDefault("events.audit.enabled", true)
	v.SetDefault("events.audit.consume", true)

	v.SetDefault("events.activity.enabled", true)
	v.SetDefault("events.activity.dedupe_ttl", "720h")
}
