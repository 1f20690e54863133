//go:build !no_mysql

package db

import (
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/yeisme/reportvault/pkg/configs"
)

// newMySQLDialector 目录名称最长 255 个字符，默认字符串长度与之对齐.
func newMySQLDialector(cfg *configs.DBConfig) gorm.Dialector {
	return mysql.New(mysql.Config{
		DSN:                       cfg.GetDSN(),
		DefaultStringSize:         255,
		SkipInitializeWithVersion: false,
		DontSupportRenameIndex:    cfg.Type == configs.MariaDB,
	})
}

func init() {
	RegisterDialectorFactory(configs.MySQL, newMySQLDialector)
	RegisterDialectorFactory(configs.MariaDB, newMySQLDialector)
}
