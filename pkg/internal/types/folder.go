package types

import "github.com/yeisme/reportvault/pkg/internal/model"

// ListQuery 列表查询参数，parent_id 与 folder_id 原样保留，由 ParseFolderFilter 解析.
type ListQuery struct {
	ParentID string `form:"parent_id"`
	FolderID string `form:"folder_id"`
	Status   string `form:"status"`
}

// CreateFolderRequest 创建目录请求，parent_id 缺省或为 null 表示根目录.
type CreateFolderRequest struct {
	Name     string  `binding:"required" json:"name"`
	ParentID *string `json:"parent_id"`
}

// Parent 返回父目录引用，空字符串视为根目录.
func (r *CreateFolderRequest) Parent() *string { return emptyToNil(r.ParentID) }

// RenameFolderRequest 重命名请求.
type RenameFolderRequest struct {
	Name string `binding:"required" json:"name"`
}

// MoveFolderRequest 移动请求，parent_id 为 null 表示移到根目录.
type MoveFolderRequest struct {
	ParentID *string `json:"parent_id"`
}

// Parent 返回目标父目录.
func (r *MoveFolderRequest) Parent() *string { return emptyToNil(r.ParentID) }

// SetStatusRequest 修改状态请求.
type SetStatusRequest struct {
	Status model.Status `binding:"required,status" json:"status"`
}

// FolderListResponse 目录列表.
type FolderListResponse struct {
	Folders []model.Folder `json:"folders"`
	Total   int            `json:"total"`
}

// FolderPathResponse 从根到当前目录的路径.
type FolderPathResponse struct {
	Path    []model.Folder `json:"path"`
	Display string         `json:"display"`
}

// DeleteFolderResponse 递归删除统计.
type DeleteFolderResponse struct {
	ID      string `json:"id"`
	Folders int    `json:"folders"`
	Reports int64  `json:"reports"`
}
