// Package types 定义 HTTP 请求与响应结构，并在接口边界完成参数解析.
package types

import (
	"strings"

	"github.com/bytedance/sonic"

	"github.com/yeisme/reportvault/pkg/internal/model"
	"github.com/yeisme/reportvault/pkg/internal/service"
)

// ErrorResponse 错误响应，Error 为可直接展示给用户的文本.
type ErrorResponse struct {
	Error string `json:"error"`
}

// OptionalString 三态 JSON 字段：未出现、null、字符串.
// 用于区分"不修改"与"移到根目录".
type OptionalString struct {
	Set   bool
	Value *string
}

// UnmarshalJSON 只要字段出现就标记 Set.
func (o *OptionalString) UnmarshalJSON(b []byte) error {
	o.Set = true

	if string(b) == "null" {
		o.Value = nil

		return nil
	}

	var s string
	if err := sonic.Unmarshal(b, &s); err != nil {
		return err
	}

	o.Value = &s

	return nil
}

// ParseFolderFilter 解析 parent_id / folder_id 查询参数.
// 空值、"null"、"root" 表示根目录，"all" 表示不过滤，其余视为目录 ID.
func ParseFolderFilter(raw string) model.FolderFilter {
	switch v := strings.TrimSpace(raw); strings.ToLower(v) {
	case "", "null", "root":
		return model.RootFilter()
	case "all":
		return model.AllFilter()
	default:
		return model.SpecificFilter(v)
	}
}

// ParseStatus 解析可选的 status 查询参数，空值表示不过滤.
func ParseStatus(raw string) (*model.Status, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	s := model.Status(strings.ToLower(raw))
	if !s.Valid() {
		return nil, &service.ValidationError{Field: "status", Message: "Status must be active or archived."}
	}

	return &s, nil
}

// emptyToNil 把空字符串视为未提供.
func emptyToNil(p *string) *string {
	if p == nil {
		return nil
	}

	if v := strings.TrimSpace(*p); v != "" {
		return &v
	}

	return nil
}
