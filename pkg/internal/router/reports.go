package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/reportvault/pkg/internal/handle"
)

// RegisterReportRoutes 注册报告相关路由.
func RegisterReportRoutes(g *gin.RouterGroup) {
	reports := g.Group("/reports")
	{
		reports.POST("", handle.CreateReport)
		reports.GET("", handle.ListReports)
		// 静态路径优先于 /:id
		reports.POST("/move", handle.MoveReports)

		single := reports.Group("/:id")
		{
			single.GET("", handle.GetReport)
			single.GET("/content", handle.DownloadReport)
			single.PATCH("", handle.UpdateReport)
			single.DELETE("", handle.DeleteReport)
		}
	}
}

// RegisterBulkRoutes 注册批量操作路由，删除额外经过 deleteGuard.
func RegisterBulkRoutes(g *gin.RouterGroup, deleteGuard gin.HandlerFunc) {
	bulk := g.Group("/bulk")
	{
		bulk.POST("/restore", handle.BulkRestore)
		bulk.POST("/archive", handle.BulkArchive)
		bulk.POST("/move", handle.BulkMove)
		bulk.POST("/delete", deleteGuard, handle.BulkDelete)
	}
}
