package rule_test

import (
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/yeisme/reportvault/pkg/rule"
)

// TestStruct 用于测试 ValidateStruct.
type TestStruct struct {
	Name   string `rule:"foldername"`
	Status string `rule:"status"`
}

// TestEngine 测试 Engine 函数返回非 nil 实例.
func TestEngine(t *testing.T) {
	if rule.Engine() == nil {
		t.Error("Engine() returned nil")
	}
}

// TestValidateStruct 目录名称与状态规则.
func TestValidateStruct(t *testing.T) {
	if err := rule.ValidateStruct(TestStruct{Name: "Reports", Status: "active"}); err != nil {
		t.Errorf("Expected no error for valid struct, got %v", err)
	}

	cases := []TestStruct{
		{Name: "", Status: "active"},
		{Name: "   ", Status: "active"},
		{Name: "a/b", Status: "active"},
		{Name: "..", Status: "archived"},
		{Name: "Reports", Status: "trashed"},
	}
	for _, c := range cases {
		if err := rule.ValidateStruct(c); err == nil {
			t.Errorf("Expected error for %+v, got nil", c)
		}
	}
}

// TestFolderNameError 错误信息可直接展示给用户.
func TestFolderNameError(t *testing.T) {
	if msg := rule.FolderNameError("Q3 Reports"); msg != "" {
		t.Errorf("unexpected error %q", msg)
	}

	if msg := rule.FolderNameError(""); msg != "Folder name cannot be empty." {
		t.Errorf("unexpected message %q", msg)
	}

	if msg := rule.FolderNameError(`a\b`); msg != "Folder name cannot contain slashes." {
		t.Errorf("unexpected message %q", msg)
	}
}

// TestValidateVar 测试 ValidateVar 对变量的验证.
func TestValidateVar(t *testing.T) {
	if err := rule.ValidateVar("test@example.com", "required,email"); err != nil {
		t.Errorf("Expected no error for valid email, got %v", err)
	}

	if err := rule.ValidateVar("invalid-email", "required,email"); err == nil {
		t.Error("Expected error for invalid email, got nil")
	}
}

// TestRegisterValidation 测试注册自定义验证.
func TestRegisterValidation(t *testing.T) {
	err := rule.RegisterValidation("even_length", func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}

		return len(str)%2 == 0
	})
	if err != nil {
		t.Fatalf("Failed to register validation: %v", err)
	}

	if err := rule.ValidateVar("test", "even_length"); err != nil {
		t.Errorf("Expected no error for even length string, got %v", err)
	}

	if err := rule.ValidateVar("test1", "even_length"); err == nil {
		t.Error("Expected error for odd length string, got nil")
	}
}

// TestRegisterAlias 测试注册别名.
func TestRegisterAlias(t *testing.T) {
	rule.RegisterAlias("min_required", "required,min=3")

	if err := rule.ValidateVar("abc", "min_required"); err != nil {
		t.Errorf("Expected no error for valid string with alias, got %v", err)
	}

	if err := rule.ValidateVar("ab", "min_required"); err == nil {
		t.Error("Expected error for invalid string with alias, got nil")
	}
}
