package model

import "time"

// Report 报告文件记录，FolderID 为 nil 表示位于根目录.
// FileData 是不透明的编码内容或对象存储引用，完整性逻辑不解析它.
type Report struct {
	ID         string    `gorm:"primaryKey;size:26"                   json:"id"`
	Title      string    `gorm:"size:512;not null"                    json:"title"`
	FileName   string    `gorm:"size:512;not null;index"              json:"file_name"`
	FileType   string    `gorm:"size:255"                             json:"file_type"`
	FileSize   int64     `json:"file_size"`
	FileData   string    `gorm:"type:text"                            json:"-"`
	Checksum   string    `gorm:"size:16"                              json:"checksum"`
	FolderID   *string   `gorm:"size:26;index"                        json:"folder_id"`
	Status     Status    `gorm:"size:16;not null;default:active;index" json:"status"`
	UploadedBy string    `gorm:"size:255;not null;index"              json:"uploaded_by"`
	ActivityID *string   `gorm:"size:64;index"                        json:"activity_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName 固定表名.
func (Report) TableName() string { return "reports" }
