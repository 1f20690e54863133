package service

import (
	"errors"
	"fmt"
	"net/http"
)

// 错误类别哨兵，配合 errors.Is 判断.
var (
	ErrDuplicateName    = errors.New("duplicate name")
	ErrCycle            = errors.New("cycle")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation")
)

// DuplicateNameError 同一父目录、同一状态下已存在同名目录.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("A folder named %q already exists in this location.", e.Name)
}

func (e *DuplicateNameError) Is(target error) bool { return target == ErrDuplicateName }

// StatusCode HTTP 状态码.
func (e *DuplicateNameError) StatusCode() int { return http.StatusConflict }

// MetricLabel 指标标签.
func (e *DuplicateNameError) MetricLabel() string { return "duplicate_name" }

// CycleError 移动会使目录成为自身的祖先.
// Self 为 true 表示目标就是自身，此时同时属于 ErrInvalidOperation.
type CycleError struct {
	FolderID string
	TargetID string
	Self     bool
}

func (e *CycleError) Error() string {
	if e.Self {
		return "A folder cannot be moved into itself."
	}

	return "Cannot move a folder into itself or one of its subfolders."
}

func (e *CycleError) Is(target error) bool {
	return target == ErrCycle || (e.Self && target == ErrInvalidOperation)
}

func (e *CycleError) StatusCode() int {
	if e.Self {
		return http.StatusBadRequest
	}

	return http.StatusConflict
}

func (e *CycleError) MetricLabel() string { return "cycle" }

// InvalidOperationError 请求本身不合法，例如把目录移动到自身.
type InvalidOperationError struct {
	Reason string
}

func (e *InvalidOperationError) Error() string { return e.Reason }

func (e *InvalidOperationError) Is(target error) bool { return target == ErrInvalidOperation }

func (e *InvalidOperationError) StatusCode() int { return http.StatusBadRequest }

func (e *InvalidOperationError) MetricLabel() string { return "invalid_operation" }

// NotFoundError 目录或报告不存在.
type NotFoundError struct {
	Kind string // folder | report
	ID   string
}

func (e *NotFoundError) Error() string {
	switch e.Kind {
	case KindFolder:
		return "Folder not found."
	case KindReport:
		return "Report not found."
	default:
		return "Not found."
	}
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func (e *NotFoundError) StatusCode() int { return http.StatusNotFound }

func (e *NotFoundError) MetricLabel() string { return "not_found" }

// ValidationError 输入字段不合法.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }

func (e *ValidationError) MetricLabel() string { return "validation" }

// 对象种类.
const (
	KindFolder = "folder"
	KindReport = "report"
)

func folderNotFound(id string) error { return &NotFoundError{Kind: KindFolder, ID: id} }

func reportNotFound(id string) error { return &NotFoundError{Kind: KindReport, ID: id} }

// StatusCode 返回错误对应的 HTTP 状态码，未分类的错误为 500.
func StatusCode(err error) int {
	var sc interface{ StatusCode() int }
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}

	return http.StatusInternalServerError
}

// PublicMessage 返回可以直接展示给用户的错误文本，未分类的错误不暴露细节.
func PublicMessage(err error) string {
	if err == nil {
		return ""
	}

	if StatusCode(err) == http.StatusInternalServerError {
		return "Internal server error."
	}

	return err.Error()
}

// IsDomainError 是否为领域错误（可预期、可展示）.
func IsDomainError(err error) bool {
	return errors.Is(err, ErrDuplicateName) ||
		errors.Is(err, ErrCycle) ||
		errors.Is(err, ErrInvalidOperation) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrValidation)
}
