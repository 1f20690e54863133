package configs

import (
	"fmt"

	"github.com/yeisme/reportvault/pkg/rule"
)

// Validate 按 rule 标签校验配置，只校验当前启用的组件.
func (c *AppConfig) Validate() error {
	parts := []struct {
		name string
		v    any
		on   bool
	}{
		{"server", &c.Server, true},
		{"db", &c.DB, true},
		{"log", &c.Log, true},
		{"kv", &c.KV, true},
		{"mq", &c.MQ, true},
		{"auth", &c.Auth, c.Auth.Enabled},
		{"jobs", &c.Jobs, c.Jobs.Enabled},
		{"tree", &c.Tree, true},
		{"bulk", &c.Bulk, true},
		{"report", &c.Report, true},
		{"s3", &c.S3, c.Report.BlobStore == BlobStoreS3},
	}

	for _, p := range parts {
		if !p.on {
			continue
		}

		if err := rule.ValidateStruct(p.v); err != nil {
			return fmt.Errorf("invalid %s config: %w", p.name, err)
		}
	}

	return nil
}
