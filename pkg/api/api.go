// Package api 把 HTTP 路由挂载到 gin 引擎，供 app 与测试共用.
package api

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/yeisme/reportvault/docs"
	"github.com/yeisme/reportvault/pkg/configs"
	"github.com/yeisme/reportvault/pkg/internal/router"
	"github.com/yeisme/reportvault/pkg/middleware"
)

// RegisterGroup 注册 /api/v1 业务路由，调试模式下额外提供 /swagger 文档.
func RegisterGroup(e *gin.Engine, cfg *configs.AppConfig) *gin.Engine {
	router.RegisterAPIRoutes(
		e.Group(router.APIPrefix),
		middleware.RateLimitMiddleware(cfg.RateLimit.Bulk()),
	)

	if cfg.Server.Debug {
		docs.SwaggerInfo.Host = cfg.Server.Addr()
		docs.SwaggerInfo.Version = configs.AppVersion

		e.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler,
			ginSwagger.DocExpansion("none"),
			ginSwagger.DefaultModelsExpandDepth(-1)))
	}

	return e
}
