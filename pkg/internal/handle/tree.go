package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/reportvault/pkg/internal/jobs"
	"github.com/yeisme/reportvault/pkg/internal/service"
)

// TreeIntegrity 立即巡检目录树.
//
//	@Summary		目录树巡检
//	@Description	检查悬空父目录、环、孤立报告与同名目录，只读
//	@Tags			目录
//	@Produce		json
//	@Success		200	{object}	service.IntegrityReport
//	@Failure		500	{object}	types.ErrorResponse
//	@Router			/api/v1/tree/integrity [get]
func TreeIntegrity(c *gin.Context) {
	ctx := c.Request.Context()

	report, err := jobs.CheckTree(ctx, service.New(ctx).Inspector)
	if err != nil {
		writeError(c, "tree.integrity", err)
		return
	}

	c.JSON(http.StatusOK, report)
}
