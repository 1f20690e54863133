package handle

import (
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/reportvault/pkg/configs"
	"github.com/yeisme/reportvault/pkg/internal/service"
	"github.com/yeisme/reportvault/pkg/internal/types"
)

// CreateReport 上传报告.
//
//	@Summary		上传报告
//	@Description	multipart 上传，file 为内容；folder_id 为空表示根目录；指定 activity_id 时关联到活动
//	@Tags			报告
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file		formData	file	true	"报告文件"
//	@Param			title		formData	string	false	"标题，默认为文件名"
//	@Param			folder_id	formData	string	false	"所在目录"
//	@Param			activity_id	formData	string	false	"关联活动"
//	@Success		201			{object}	model.Report
//	@Failure		400			{object}	types.ErrorResponse
//	@Failure		404			{object}	types.ErrorResponse	"目录不存在"
//	@Router			/api/v1/reports [post]
func CreateReport(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var form types.CreateReportForm
	if err := c.ShouldBind(&form); err != nil {
		bindError(c, "report.create", err)
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		writeError(c, "report.create", &service.ValidationError{Field: "file", Message: "A file is required."})
		return
	}

	f, err := fh.Open()
	if err != nil {
		writeError(c, "report.create", err)
		return
	}
	defer f.Close()

	var r io.Reader = f

	// 多读一个字节，超限由服务层统一报错
	if limit := configs.GetConfig().Report.MaxPayloadBytes; limit > 0 {
		r = io.LimitReader(f, limit+1)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		writeError(c, "report.create", err)
		return
	}

	ctx := c.Request.Context()

	report, err := service.New(ctx).Reports.Create(ctx, service.CreateReportInput{
		Title:      form.Title,
		FileName:   fh.Filename,
		FileType:   fh.Header.Get("Content-Type"),
		Data:       data,
		FolderID:   form.Folder(),
		UploadedBy: user,
		ActivityID: form.Activity(),
	})
	if err != nil {
		writeError(c, "report.create", err)
		return
	}

	c.JSON(http.StatusCreated, report)
}

// ListReports 按目录列出报告.
//
//	@Summary		列出报告
//	@Description	folder_id 为空、null 或 root 时只列出根目录下的报告，all 列出全部
//	@Tags			报告
//	@Produce		json
//	@Param			folder_id	query		string	false	"所在目录"
//	@Param			status		query		string	false	"active 或 archived"
//	@Success		200			{object}	types.ReportListResponse
//	@Failure		400			{object}	types.ErrorResponse
//	@Router			/api/v1/reports [get]
func ListReports(c *gin.Context) {
	var q types.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, "report.list", err)
		return
	}

	status, err := types.ParseStatus(q.Status)
	if err != nil {
		writeError(c, "report.list", err)
		return
	}

	ctx := c.Request.Context()

	reports, err := service.New(ctx).Reports.ListByFolder(ctx, types.ParseFolderFilter(q.FolderID), status)
	if err != nil {
		writeError(c, "report.list", err)
		return
	}

	c.JSON(http.StatusOK, types.ReportListResponse{Reports: reports, Total: len(reports)})
}

// GetReport 读取报告元数据.
//
//	@Summary	报告元数据
//	@Tags		报告
//	@Produce	json
//	@Param		id	path		string	true	"报告ID"
//	@Success	200	{object}	model.Report
//	@Failure	404	{object}	types.ErrorResponse
//	@Router		/api/v1/reports/{id} [get]
func GetReport(c *gin.Context) {
	ctx := c.Request.Context()

	report, err := service.New(ctx).Reports.Get(ctx, c.Param("id"))
	if err != nil {
		writeError(c, "report.get", err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// DownloadReport 下载报告内容.
//
//	@Summary	下载报告
//	@Tags		报告
//	@Produce	octet-stream
//	@Param		id	path		string	true	"报告ID"
//	@Success	200	{file}		binary
//	@Failure	404	{object}	types.ErrorResponse
//	@Router		/api/v1/reports/{id}/content [get]
func DownloadReport(c *gin.Context) {
	ctx := c.Request.Context()

	report, data, err := service.New(ctx).Reports.Download(ctx, c.Param("id"))
	if err != nil {
		writeError(c, "report.download", err)
		return
	}

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": report.FileName}))
	c.Header("ETag", `"`+report.Checksum+`"`)
	c.Data(http.StatusOK, report.FileType, data)
}

// UpdateReport 部分更新报告.
//
//	@Summary		更新报告
//	@Description	folder_id 缺省表示不修改，null 表示移到根目录
//	@Tags			报告
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"报告ID"
//	@Param			body	body		types.UpdateReportRequest	true	"修改内容"
//	@Success		200		{object}	model.Report
//	@Failure		400		{object}	types.ErrorResponse
//	@Failure		404		{object}	types.ErrorResponse
//	@Router			/api/v1/reports/{id} [patch]
func UpdateReport(c *gin.Context) {
	var req types.UpdateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, "report.update", err)
		return
	}

	ctx := c.Request.Context()

	report, err := service.New(ctx).Reports.Update(ctx, c.Param("id"), req.Patch())
	if err != nil {
		writeError(c, "report.update", err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// DeleteReport 永久删除报告.
//
//	@Summary	删除报告
//	@Tags		报告
//	@Param		id	path	string	true	"报告ID"
//	@Success	204
//	@Failure	404	{object}	types.ErrorResponse
//	@Router		/api/v1/reports/{id} [delete]
func DeleteReport(c *gin.Context) {
	ctx := c.Request.Context()

	if err := service.New(ctx).Reports.Delete(ctx, c.Param("id")); err != nil {
		writeError(c, "report.delete", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// MoveReports 把一组报告移动到同一个目录.
//
//	@Summary	批量移动报告
//	@Tags		报告
//	@Accept		json
//	@Produce	json
//	@Param		body	body		types.MoveReportsRequest	true	"报告与目标目录"
//	@Success	200		{object}	types.MoveReportsResponse
//	@Failure	404		{object}	types.ErrorResponse	"目标目录不存在"
//	@Router		/api/v1/reports/move [post]
func MoveReports(c *gin.Context) {
	var req types.MoveReportsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, "report.move", err)
		return
	}

	ctx := c.Request.Context()

	moved, err := service.New(ctx).Reports.MoveMany(ctx, req.ReportIDs, req.Target())
	if err != nil {
		writeError(c, "report.move", err)
		return
	}

	c.JSON(http.StatusOK, types.MoveReportsResponse{Moved: moved})
}
