// Package router 管理路由配置，把路径绑定到 pkg/internal/handle 中的处理器.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/reportvault/pkg/internal/handle"
	"github.com/yeisme/reportvault/pkg/middleware"
	"github.com/yeisme/reportvault/pkg/rule"
)

// APIPrefix 业务接口前缀.
const APIPrefix = "/api/v1"

// RegisterAPIRoutes 注册 /api/v1 下的全部路由，管理员接口统一挂载角色检查.
// bulk 为批量接口额外挂载的中间件（如独立限流）.
func RegisterAPIRoutes(g *gin.RouterGroup, bulk ...gin.HandlerFunc) {
	// 请求结构体的 binding 标签使用 status 等业务规则
	rule.Init()

	registerHealthRoutes(g)
	RegisterFolderRoutes(g)
	RegisterReportRoutes(g)
	RegisterBulkRoutes(g.Group("", bulk...), middleware.RequireMinRole(middleware.RoleAdmin))

	admin := g.Group("", middleware.RequireMinRole(middleware.RoleAdmin))
	RegisterTreeRoutes(admin)
	RegisterSchedulerRoutes(admin)
}

// registerHealthRoutes 各存储后端单独探活，未启用的后端返回 503.
func registerHealthRoutes(g *gin.RouterGroup) {
	h := g.Group("/health")
	h.GET("/db", handle.HealthDB)
	h.GET("/kv", handle.HealthKV)
	h.GET("/mq", handle.HealthMQ)
	h.GET("/s3", handle.HealthS3)
}
