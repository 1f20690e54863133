package types

import "github.com/yeisme/reportvault/pkg/internal/service"

// BulkRequest 批量操作选中的目录与报告.
type BulkRequest struct {
	FolderIDs []string `json:"folder_ids"`
	ReportIDs []string `json:"report_ids"`
}

// Selection 转换为服务层请求.
func (r *BulkRequest) Selection() service.BulkRequest {
	return service.BulkRequest{FolderIDs: r.FolderIDs, ReportIDs: r.ReportIDs}
}

// BulkMoveRequest 批量移动，target_folder_id 为 null 表示根目录.
type BulkMoveRequest struct {
	BulkRequest

	TargetFolderID *string `json:"target_folder_id"`
}

// Selection 转换为服务层请求.
func (r *BulkMoveRequest) Selection() service.BulkMoveRequest {
	return service.BulkMoveRequest{
		BulkRequest:    r.BulkRequest.Selection(),
		TargetFolderID: emptyToNil(r.TargetFolderID),
	}
}
