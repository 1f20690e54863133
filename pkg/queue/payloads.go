package queue

import "time"

// EventHeader 定义所有事件的通用头部元数据.
type EventHeader struct {
	// Topic 冗余记录消息主题，便于离线处理或转储后定位来源主题.
	Topic string `json:"topic"`
	// TraceID 分布式追踪/关联 ID.
	TraceID string `json:"trace_id,omitempty"`
	// Producer 生产者服务名或节点标识.
	Producer string `json:"producer,omitempty"`
	// Actor 触发事件的用户.
	Actor string `json:"actor,omitempty"`
	// OccurredAt 事件发生时间（UTC）.
	OccurredAt time.Time `json:"occurred_at"`
	// Version 事件负载版本.
	Version string `json:"version,omitempty"`
}

// Message 是统一的消息封装，Header + Payload.
type Message[T any] struct {
	Header  EventHeader `json:"header"`
	Payload T           `json:"payload"`
}

// -------------------------- 目录树领域 --------------------------

// FolderRef 目录快照.
type FolderRef struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id"`
	Status   string  `json:"status"`
}

// FolderEventPayload 目录创建/重命名/移动/归档/恢复.
type FolderEventPayload struct {
	Folder FolderRef `json:"folder"`
	// PrevName 重命名前的名称.
	PrevName string `json:"prev_name,omitempty"`
	// PrevParentID 移动前的父目录，nil 表示根目录.
	PrevParentID *string `json:"prev_parent_id,omitempty"`
}

// FolderDeletedPayload 目录递归删除.
type FolderDeletedPayload struct {
	Folder         FolderRef `json:"folder"`
	FoldersRemoved int       `json:"folders_removed"`
	ReportsRemoved int64     `json:"reports_removed"`
}

// -------------------------- 报告领域 --------------------------

// ReportRef 报告快照，不含内容.
type ReportRef struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	FileName   string  `json:"file_name"`
	FolderID   *string `json:"folder_id"`
	Status     string  `json:"status"`
	ActivityID *string `json:"activity_id,omitempty"`
}

// ReportEventPayload 报告创建/更新/删除.
type ReportEventPayload struct {
	Report ReportRef `json:"report"`
	// Changed 更新事件中被修改的字段.
	Changed []string `json:"changed,omitempty"`
}

// ReportsMovedPayload 报告批量移动.
type ReportsMovedPayload struct {
	ReportIDs      []string `json:"report_ids"`
	TargetFolderID *string  `json:"target_folder_id"`
	Affected       int64    `json:"affected"`
}

// -------------------------- 审计与活动 --------------------------

// AuditPayload 审计记录.
type AuditPayload struct {
	ID          string `json:"id"`
	Action      string `json:"action"`
	TargetKind  string `json:"target_kind"`
	TargetID    string `json:"target_id"`
	Description string `json:"description"`
}

// ActivityLinkedPayload 报告关联到活动.
type ActivityLinkedPayload struct {
	ActivityID string    `json:"activity_id"`
	ReportID   string    `json:"report_id"`
	UploadedBy string    `json:"uploaded_by"`
	LinkedAt   time.Time `json:"linked_at"`
}
