package configs

import "github.com/spf13/viper"

// BlobStoreType 报告内容的存储方式.
type BlobStoreType string

const (
	BlobStoreInline BlobStoreType = "inline" // 内容直接写入 reports.file_data
	BlobStoreS3     BlobStoreType = "s3"     // 内容写入对象存储，file_data 保存引用
)

// ReportConfig 报告内容配置.
type ReportConfig struct {
	BlobStore       BlobStoreType `mapstructure:"blob_store"        rule:"oneof=inline s3"`
	MaxPayloadBytes int64         `mapstructure:"max_payload_bytes" rule:"min=1"`
}

func (c *ReportConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("report.blob_store", BlobStoreInline)
	v.SetDefault("report.max_payload_bytes", 32<<20)
}
