package model

import "time"

// Folder 目录树节点，ParentID 为 nil 表示位于根目录.
type Folder struct {
	ID        string    `gorm:"primaryKey;size:26"                                 json:"id"`
	Name      string    `gorm:"size:255;not null;index:idx_folders_parent_name,priority:2" json:"name"`
	ParentID  *string   `gorm:"size:26;index:idx_folders_parent_name,priority:1"   json:"parent_id"`
	Status    Status    `gorm:"size:16;not null;default:active;index"              json:"status"`
	CreatedBy string    `gorm:"size:255;not null"                                  json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 固定表名.
func (Folder) TableName() string { return "folders" }

// IsRoot 是否位于根目录.
func (f *Folder) IsRoot() bool { return f.ParentID == nil }

// ParentKey 返回父目录 ID，根目录返回空字符串，便于日志与比较.
func (f *Folder) ParentKey() string {
	if f.ParentID == nil {
		return ""
	}

	return *f.ParentID
}
