package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/reportvault/pkg/internal/types"
	"github.com/yeisme/reportvault/pkg/middleware"
	"github.com/yeisme/reportvault/pkg/scheduler"
)

func schedulerOr503(c *gin.Context) (*scheduler.Scheduler, bool) {
	sched := middleware.GetScheduler(c)
	if sched == nil {
		c.JSON(http.StatusServiceUnavailable, types.ErrorResponse{Error: "Scheduler is not running."})

		return nil, false
	}

	return sched, true
}

// SchedulerJobs 返回所有调度器任务信息.
//
//	@Summary	定时任务列表
//	@Tags		调度器
//	@Produce	json
//	@Success	200	{object}	map[string][]scheduler.JobInfo
//	@Router		/api/v1/scheduler/jobs [get]
func SchedulerJobs(c *gin.Context) {
	sched, ok := schedulerOr503(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": sched.GetJobInfos()})
}

// SchedulerJob 返回单个任务信息.
//
//	@Summary	定时任务详情
//	@Tags		调度器
//	@Produce	json
//	@Param		name	path		string	true	"任务名称"
//	@Success	200		{object}	scheduler.JobInfo
//	@Failure	404		{object}	types.ErrorResponse
//	@Router		/api/v1/scheduler/jobs/{name} [get]
func SchedulerJob(c *gin.Context) {
	sched, ok := schedulerOr503(c)
	if !ok {
		return
	}

	info, err := sched.GetJobInfoByName(c.Param("name"))
	if err != nil {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, info)
}

// SchedulerRunJob 立即执行一次任务.
//
//	@Summary	立即执行任务
//	@Tags		调度器
//	@Produce	json
//	@Param		name	path		string	true	"任务名称"
//	@Success	202		{object}	map[string]string
//	@Failure	404		{object}	types.ErrorResponse
//	@Router		/api/v1/scheduler/jobs/{name}/run [post]
func SchedulerRunJob(c *gin.Context) {
	sched, ok := schedulerOr503(c)
	if !ok {
		return
	}

	if err := sched.RunNow(c.Param("name")); err != nil {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "job triggered"})
}

// SchedulerRemoveJob 根据名称删除任务.
//
//	@Summary	删除任务
//	@Tags		调度器
//	@Produce	json
//	@Param		name	path		string	true	"任务名称"
//	@Success	200		{object}	map[string]string
//	@Failure	404		{object}	types.ErrorResponse
//	@Router		/api/v1/scheduler/jobs/{name} [delete]
func SchedulerRemoveJob(c *gin.Context) {
	sched, ok := schedulerOr503(c)
	if !ok {
		return
	}

	if err := sched.RemoveJobByName(c.Param("name")); err != nil {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "job removed"})
}
