//go:build !no_sqlite && cgo

package db

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeisme/reportvault/pkg/configs"
)

func init() {
	RegisterDialectorFactory(configs.SQLite, func(cfg *configs.DBConfig) gorm.Dialector {
		return sqlite.Open(cfg.GetDSN())
	})
}
