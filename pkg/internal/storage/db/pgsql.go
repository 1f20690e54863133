//go:build !no_postgres

package db

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/yeisme/reportvault/pkg/configs"
)

func newPostgresDialector(cfg *configs.DBConfig) gorm.Dialector {
	return postgres.New(postgres.Config{
		DSN: cfg.GetDSN(),
		// 可串行化事务下预编译语句缓存容易在 DDL 后失效.
		PreferSimpleProtocol: cfg.TxIsolation == "serializable",
	})
}

func init() {
	for _, t := range []configs.DBType{configs.PostgreSQL, configs.Postgres, configs.Pg} {
		RegisterDialectorFactory(t, newPostgresDialector)
	}
}
