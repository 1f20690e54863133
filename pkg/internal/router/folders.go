package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/reportvault/pkg/internal/handle"
)

// RegisterFolderRoutes 注册目录树相关路由.
func RegisterFolderRoutes(g *gin.RouterGroup) {
	folders := g.Group("/folders")
	{
		folders.POST("", handle.CreateFolder)
		folders.GET("", handle.ListFolders)

		single := folders.Group("/:id")
		{
			single.GET("", handle.GetFolder)
			single.GET("/path", handle.GetFolderPath)
			single.PUT("/name", handle.RenameFolder)
			single.PUT("/parent", handle.MoveFolder)
			single.PUT("/status", handle.SetFolderStatus)
			single.DELETE("", handle.DeleteFolder)
		}
	}
}

// RegisterTreeRoutes 注册目录树巡检路由.
func RegisterTreeRoutes(g *gin.RouterGroup) {
	g.GET("/tree/integrity", handle.TreeIntegrity)
}
