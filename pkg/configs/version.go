package configs

const (
	// AppName 应用名称，用于日志、追踪资源与指标标签.
	AppName = "reportvault"
)

// AppVersion 应用版本，构建时可通过 -ldflags "-X github.com/yeisme/reportvault/pkg/configs.AppVersion=x.y.z" 覆盖.
var AppVersion = "0.1.0"
