package handle

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/reportvault/pkg/internal/service"
	"github.com/yeisme/reportvault/pkg/internal/types"
)

// CreateFolder 创建目录.
//
//	@Summary		创建目录
//	@Description	在根目录或指定父目录下创建目录，同一位置的活动目录不能重名
//	@Tags			目录
//	@Accept			json
//	@Produce		json
//	@Param			folder	body		types.CreateFolderRequest	true	"创建目录请求"
//	@Success		201		{object}	model.Folder
//	@Failure		400		{object}	types.ErrorResponse
//	@Failure		404		{object}	types.ErrorResponse	"父目录不存在"
//	@Failure		409		{object}	types.ErrorResponse	"同名目录已存在"
//	@Router			/api/v1/folders [post]
func CreateFolder(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req types.CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, "folder.create", err)
		return
	}

	ctx := c.Request.Context()

	folder, err := service.New(ctx).Folders.Create(ctx, service.CreateFolderInput{
		Name:      req.Name,
		ParentID:  req.Parent(),
		CreatedBy: user,
	})
	if err != nil {
		writeError(c, "folder.create", err)
		return
	}

	c.JSON(http.StatusCreated, folder)
}

// ListFolders 按父目录列出目录.
//
//	@Summary		列出目录
//	@Description	parent_id 为空、null 或 root 时列出根目录，all 列出全部
//	@Tags			目录
//	@Produce		json
//	@Param			parent_id	query		string	false	"父目录"
//	@Param			status		query		string	false	"active 或 archived"
//	@Success		200			{object}	types.FolderListResponse
//	@Failure		400			{object}	types.ErrorResponse
//	@Router			/api/v1/folders [get]
func ListFolders(c *gin.Context) {
	var q types.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, "folder.list", err)
		return
	}

	status, err := types.ParseStatus(q.Status)
	if err != nil {
		writeError(c, "folder.list", err)
		return
	}

	ctx := c.Request.Context()

	folders, err := service.New(ctx).Folders.List(ctx, types.ParseFolderFilter(q.ParentID), status)
	if err != nil {
		writeError(c, "folder.list", err)
		return
	}

	c.JSON(http.StatusOK, types.FolderListResponse{Folders: folders, Total: len(folders)})
}

// GetFolder 读取目录.
//
//	@Summary	读取目录
//	@Tags		目录
//	@Produce	json
//	@Param		id	path		string	true	"目录ID"
//	@Success	200	{object}	model.Folder
//	@Failure	404	{object}	types.ErrorResponse
//	@Router		/api/v1/folders/{id} [get]
func GetFolder(c *gin.Context) {
	ctx := c.Request.Context()

	folder, err := service.New(ctx).Folders.Get(ctx, c.Param("id"))
	if err != nil {
		writeError(c, "folder.get", err)
		return
	}

	c.JSON(http.StatusOK, folder)
}

// GetFolderPath 返回从根到目录的路径（面包屑）.
//
//	@Summary	目录路径
//	@Tags		目录
//	@Produce	json
//	@Param		id	path		string	true	"目录ID"
//	@Success	200	{object}	types.FolderPathResponse
//	@Failure	404	{object}	types.ErrorResponse
//	@Router		/api/v1/folders/{id}/path [get]
func GetFolderPath(c *gin.Context) {
	ctx := c.Request.Context()

	path, err := service.New(ctx).Folders.GetPath(ctx, c.Param("id"))
	if err != nil {
		writeError(c, "folder.path", err)
		return
	}

	names := make([]string, len(path))
	for i := range path {
		names[i] = path[i].Name
	}

	c.JSON(http.StatusOK, types.FolderPathResponse{Path: path, Display: strings.Join(names, " / ")})
}

// RenameFolder 重命名目录.
//
//	@Summary	重命名目录
//	@Tags		目录
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string						true	"目录ID"
//	@Param		body	body		types.RenameFolderRequest	true	"新名称"
//	@Success	200		{object}	model.Folder
//	@Failure	400		{object}	types.ErrorResponse
//	@Failure	404		{object}	types.ErrorResponse
//	@Failure	409		{object}	types.ErrorResponse
//	@Router		/api/v1/folders/{id}/name [put]
func RenameFolder(c *gin.Context) {
	var req types.RenameFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, "folder.rename", err)
		return
	}

	ctx := c.Request.Context()

	folder, err := service.New(ctx).Folders.Rename(ctx, c.Param("id"), req.Name)
	if err != nil {
		writeError(c, "folder.rename", err)
		return
	}

	c.JSON(http.StatusOK, folder)
}

// MoveFolder 移动目录，parent_id 为 null 表示移到根目录.
//
//	@Summary		移动目录
//	@Description	不能移到自身或其子目录下
//	@Tags			目录
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"目录ID"
//	@Param			body	body		types.MoveFolderRequest	true	"目标父目录"
//	@Success		200		{object}	model.Folder
//	@Failure		400		{object}	types.ErrorResponse
//	@Failure		404		{object}	types.ErrorResponse
//	@Failure		409		{object}	types.ErrorResponse	"成环或同名"
//	@Router			/api/v1/folders/{id}/parent [put]
func MoveFolder(c *gin.Context) {
	var req types.MoveFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, "folder.move", err)
		return
	}

	ctx := c.Request.Context()

	folder, err := service.New(ctx).Folders.Move(ctx, c.Param("id"), req.Parent())
	if err != nil {
		writeError(c, "folder.move", err)
		return
	}

	c.JSON(http.StatusOK, folder)
}

// SetFolderStatus 归档或恢复目录，只影响目录本身.
//
//	@Summary	修改目录状态
//	@Tags		目录
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string					true	"目录ID"
//	@Param		body	body		types.SetStatusRequest	true	"状态"
//	@Success	200		{object}	model.Folder
//	@Failure	400		{object}	types.ErrorResponse
//	@Failure	404		{object}	types.ErrorResponse
//	@Failure	409		{object}	types.ErrorResponse	"恢复时同名"
//	@Router		/api/v1/folders/{id}/status [put]
func SetFolderStatus(c *gin.Context) {
	var req types.SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, "folder.status", err)
		return
	}

	ctx := c.Request.Context()

	folder, err := service.New(ctx).Folders.SetStatus(ctx, c.Param("id"), req.Status)
	if err != nil {
		writeError(c, "folder.status", err)
		return
	}

	c.JSON(http.StatusOK, folder)
}

// DeleteFolder 永久删除目录及其全部子目录与报告.
//
//	@Summary	删除目录
//	@Tags		目录
//	@Produce	json
//	@Param		id	path		string	true	"目录ID"
//	@Success	200	{object}	types.DeleteFolderResponse
//	@Failure	404	{object}	types.ErrorResponse
//	@Router		/api/v1/folders/{id} [delete]
func DeleteFolder(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	res, err := service.New(ctx).Folders.Delete(ctx, id)
	if err != nil {
		writeError(c, "folder.delete", err)
		return
	}

	c.JSON(http.StatusOK, types.DeleteFolderResponse{ID: id, Folders: res.Folders, Reports: res.Reports})
}
