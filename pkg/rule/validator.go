// Package rule 提供结构体和字段验证功能的封装，基于 go-playground/validator 实现.
// 除通用规则外注册了目录名称规则 foldername 与状态规则 status.
package rule

import (
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	inst *validator.Validate
	once sync.Once
)

// initValidator 新建独立的 validator 使用 rule 标签，并把业务规则同时注册到 gin 的 binding 引擎.
// 不能直接复用 gin 的实例并修改其标签名，否则请求结构体上的 binding 标签会失效.
func initValidator() {
	inst = validator.New(validator.WithRequiredStructEnabled())
	inst.SetTagName("rule")
	registerBuiltins(inst)

	if engine := binding.Validator.Engine(); engine != nil {
		if v, ok := engine.(*validator.Validate); ok {
			registerBuiltins(v)
		}
	}
}

// Init 提前初始化，使 gin 的 binding 标签也可使用 foldername 等规则.
func Init() {
	lazyInit()
}

// registerBuiltins 注册业务规则.
func registerBuiltins(v *validator.Validate) {
	_ = v.RegisterValidation("foldername", validFolderName)
	v.RegisterAlias("status", "oneof=active archived")
}

// validFolderName 目录名称：去除首尾空白后非空，不含路径分隔符与控制字符.
func validFolderName(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}

	return FolderNameError(s) == ""
}

// FolderNameError 返回目录名称不合法的原因，合法时返回空字符串.
func FolderNameError(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Folder name cannot be empty."
	}

	if name == "." || name == ".." {
		return fmt.Sprintf("%q is not a valid folder name.", name)
	}

	for _, r := range name {
		if r == '/' || r == '\\' {
			return "Folder name cannot contain slashes."
		}

		if unicode.IsControl(r) {
			return "Folder name cannot contain control characters."
		}
	}

	return ""
}

// lazyInit 初始化全局 validator（幂等）.
func lazyInit() {
	once.Do(initValidator)
}

// Engine 返回全局 *validator.Validate，若未初始化则先初始化.
func Engine() *validator.Validate {
	lazyInit()

	return inst
}

// RegisterValidation 代理 RegisterValidation，确保已初始化.
func RegisterValidation(tag string, fn validator.Func, opts ...bool) error {
	lazyInit()

	return inst.RegisterValidation(tag, fn, opts...)
}

// ValidateStruct 对结构体执行完整校验，返回原始 error.
func ValidateStruct(s any) error {
	lazyInit()

	return inst.Struct(s)
}

// ValidateVar 按规则对单个变量校验，例如: ValidateVar("abc", "required,email").
func ValidateVar(field any, tag string) error {
	lazyInit()

	return inst.Var(field, tag)
}

// RegisterAlias 包装 RegisterAlias，便于注册别名规则.
func RegisterAlias(alias, rules string) {
	lazyInit()

	inst.RegisterAlias(alias, rules)
}
