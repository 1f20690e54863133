package middleware

import (
	"github.com/gin-gonic/gin"

	ctxPkg "github.com/yeisme/reportvault/pkg/context"
	"github.com/yeisme/reportvault/pkg/internal/service"
	"github.com/yeisme/reportvault/pkg/internal/storage"
	"github.com/yeisme/reportvault/pkg/scheduler"
)

// schedulerCtxKey 管理接口通过 gin 上下文取得调度器，服务层不依赖它.
const schedulerCtxKey = "reportvault.scheduler"

// StorageMiddleware 把存储管理器注入请求上下文.
func StorageMiddleware(manager *storage.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := ctxPkg.WithStorageManager(c.Request.Context(), manager)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// CollaboratorsMiddleware 把审计与活动协作方注入请求上下文，service.New 从中读取.
func CollaboratorsMiddleware(collab service.Collaborators) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := service.WithCollaborators(c.Request.Context(), collab)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// SchedulerMiddleware 把调度器放入 gin 上下文，sched 为 nil 时不写入.
func SchedulerMiddleware(sched *scheduler.Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sched != nil {
			c.Set(schedulerCtxKey, sched)
		}

		c.Next()
	}
}

// GetScheduler 取出调度器，未注入时返回 nil.
func GetScheduler(c *gin.Context) *scheduler.Scheduler {
	v, ok := c.Get(schedulerCtxKey)
	if !ok {
		return nil
	}

	sched, _ := v.(*scheduler.Scheduler)

	return sched
}
