package handle

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/reportvault/pkg/internal/service"
	"github.com/yeisme/reportvault/pkg/internal/types"
)

// BulkRestore 批量恢复.
//
//	@Summary		批量恢复
//	@Description	逐项恢复，同名冲突的目录保持归档并在 errors 中列出
//	@Tags			批量操作
//	@Accept			json
//	@Produce		json
//	@Param			body	body		types.BulkRequest	true	"选中的条目"
//	@Success		200		{object}	service.BulkResult	"全部或部分成功"
//	@Failure		400		{object}	types.ErrorResponse
//	@Failure		422		{object}	service.BulkResult	"全部失败"
//	@Router			/api/v1/bulk/restore [post]
func BulkRestore(c *gin.Context) {
	runBulk(c, func(ctx context.Context, b *service.BulkService, req types.BulkRequest) (*service.BulkResult, error) {
		return b.Restore(ctx, req.Selection())
	})
}

// BulkArchive 批量归档.
//
//	@Summary	批量归档
//	@Tags		批量操作
//	@Accept		json
//	@Produce	json
//	@Param		body	body		types.BulkRequest	true	"选中的条目"
//	@Success	200		{object}	service.BulkResult
//	@Failure	400		{object}	types.ErrorResponse
//	@Failure	422		{object}	service.BulkResult
//	@Router		/api/v1/bulk/archive [post]
func BulkArchive(c *gin.Context) {
	runBulk(c, func(ctx context.Context, b *service.BulkService, req types.BulkRequest) (*service.BulkResult, error) {
		return b.Archive(ctx, req.Selection())
	})
}

// BulkDelete 批量永久删除，仅管理员.
//
//	@Summary	批量删除
//	@Tags		批量操作
//	@Accept		json
//	@Produce	json
//	@Param		body	body		types.BulkRequest	true	"选中的条目"
//	@Success	200		{object}	service.BulkResult
//	@Failure	400		{object}	types.ErrorResponse
//	@Failure	403		{object}	types.ErrorResponse
//	@Failure	422		{object}	service.BulkResult
//	@Router		/api/v1/bulk/delete [post]
func BulkDelete(c *gin.Context) {
	runBulk(c, func(ctx context.Context, b *service.BulkService, req types.BulkRequest) (*service.BulkResult, error) {
		return b.Delete(ctx, req.Selection())
	})
}

// BulkMove 批量移动.
//
//	@Summary		批量移动
//	@Description	报告一次性移动；目录逐个移动，成环或同名的目录在 errors 中列出
//	@Tags			批量操作
//	@Accept			json
//	@Produce		json
//	@Param			body	body		types.BulkMoveRequest	true	"选中的条目与目标目录"
//	@Success		200		{object}	service.BulkResult
//	@Failure		400		{object}	types.ErrorResponse
//	@Failure		422		{object}	service.BulkResult
//	@Router			/api/v1/bulk/move [post]
func BulkMove(c *gin.Context) {
	var req types.BulkMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, "bulk.move", err)
		return
	}

	ctx := c.Request.Context()
	res, err := service.New(ctx).Bulk.Move(ctx, req.Selection())
	writeBulk(c, "bulk.move", res, err)
}

func runBulk(c *gin.Context, fn func(context.Context, *service.BulkService, types.BulkRequest) (*service.BulkResult, error)) {
	var req types.BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, "bulk", err)
		return
	}

	ctx := c.Request.Context()
	res, err := fn(ctx, service.New(ctx).Bulk, req)
	writeBulk(c, "bulk", res, err)
}

// writeBulk 全部失败为 422，其余为 200，由 outcome 区分成功与部分成功.
// fail_fast 中止时使用错误本身的状态码并附带已完成部分，存储错误不返回明细.
func writeBulk(c *gin.Context, op string, res *service.BulkResult, err error) {
	switch {
	case err != nil && res != nil && service.IsDomainError(err):
		c.JSON(service.StatusCode(err), res)
	case err != nil:
		writeError(c, op, err)
	case res.Outcome == service.OutcomeFailed:
		c.JSON(http.StatusUnprocessableEntity, res)
	default:
		c.JSON(http.StatusOK, res)
	}
}
