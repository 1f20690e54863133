package types

import (
	"github.com/yeisme/reportvault/pkg/internal/model"
	"github.com/yeisme/reportvault/pkg/internal/service"
)

// CreateReportForm 上传报告的 multipart 表单字段，文件内容位于 file 字段.
type CreateReportForm struct {
	Title      string `form:"title"`
	FolderID   string `form:"folder_id"`
	ActivityID string `form:"activity_id"`
}

// Folder 返回所在目录，空值表示根目录.
func (f *CreateReportForm) Folder() *string { return emptyToNil(&f.FolderID) }

// Activity 返回关联的活动 ID.
func (f *CreateReportForm) Activity() *string { return emptyToNil(&f.ActivityID) }

// UpdateReportRequest 部分更新，folder_id 出现且为 null 表示移到根目录.
type UpdateReportRequest struct {
	Title    *string        `json:"title"`
	FileName *string        `json:"file_name"`
	Status   *model.Status  `binding:"omitempty,status" json:"status"`
	FolderID OptionalString `json:"folder_id"       swaggertype:"string"`
}

// Patch 转换为服务层补丁.
func (r *UpdateReportRequest) Patch() service.ReportPatch {
	p := service.ReportPatch{
		Title:    r.Title,
		FileName: r.FileName,
		Status:   r.Status,
	}

	if r.FolderID.Set {
		p.FolderIDSet = true
		p.FolderID = emptyToNil(r.FolderID.Value)
	}

	return p
}

// MoveReportsRequest 批量移动报告，folder_id 为 null 表示根目录.
type MoveReportsRequest struct {
	ReportIDs []string `json:"report_ids"`
	FolderID  *string  `json:"folder_id"`
}

// Target 返回目标目录.
func (r *MoveReportsRequest) Target() *string { return emptyToNil(r.FolderID) }

// MoveReportsResponse 实际移动的数量.
type MoveReportsResponse struct {
	Moved int64 `json:"moved"`
}

// ReportListResponse 报告列表.
type ReportListResponse struct {
	Reports []model.Report `json:"reports"`
	Total   int            `json:"total"`
}
