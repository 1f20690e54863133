// Package main 启动应用程序
package main

import (
	"os"

	"github.com/yeisme/reportvault/pkg/cmd"
)

//	@title			ReportVault API
//	@version		0.1.0
//	@description	ReportVault 是一个多用户报告库，提供目录树管理、报告放置与批量操作。

//	@license.name	MIT
//	@license.url	https://opensource.org/license/mit/

//	@contact.name	yeisme
//	@contact.email	yefun2004@gmail.com.

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
