//go:build !no_sqlite && !cgo

package db

import (
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/yeisme/reportvault/pkg/configs"
)

// 无 cgo 时使用纯 Go 的 sqlite 驱动，DSN 中的 _pragma 参数两者通用.
func init() {
	RegisterDialectorFactory(configs.SQLite, func(cfg *configs.DBConfig) gorm.Dialector {
		return sqlite.Open(cfg.GetDSN())
	})
}
