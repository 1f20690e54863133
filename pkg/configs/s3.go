package configs

import (
	"strings"

	"github.com/spf13/viper"
)

// S3Config 对象存储配置，report.blob_store=s3 时报告内容写入该桶.
type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"       rule:"required"`
	Region          string `mapstructure:"region"`
	// KeyPrefix 报告内容在桶内的前缀.
	KeyPrefix string `mapstructure:"key_prefix"`
}

const (
	DefaultS3Endpoint        = "localhost:9000" // 默认S3端点
	DefaultS3AccessKeyID     = "minioadmin"     // 默认访问密钥ID
	DefaultS3SecretAccessKey = "minioadmin"     // 默认秘密访问密钥
	DefaultS3UseSSL          = false            // 默认是否使用SSL
	DefaultS3BucketName      = "reportvault"    // 默认存储桶名称
	DefaultS3Region          = "us-east-1"      // 默认区域
)

// ReportPrefix 报告内容对象键前缀，保证以 "/" 结尾.
func (c *S3Config) ReportPrefix() string {
	p := strings.Trim(c.KeyPrefix, "/")
	if p == "" {
		return ""
	}

	return p + "/"
}

// setDefaults 设置 S3 配置的默认值.
func (c *S3Config) setDefaults(v *viper.Viper) {
	v.SetDefault("s3.endpoint", DefaultS3Endpoint)
	v.SetDefault("s3.access_key_id", DefaultS3AccessKeyID)
	v.SetDefault("s3.secret_access_key", DefaultS3SecretAccessKey)
	v.SetDefault("s3.use_ssl", DefaultS3UseSSL)
	v.SetDefault("s3.bucket_name", DefaultS3BucketName)
	v.SetDefault("s3.region", DefaultS3Region)
	v.SetDefault("s3.key_prefix", "reports/")
}
