package model

import "fmt"

// FolderFilterKind 目录过滤器的种类.
type FolderFilterKind int

const (
	// FilterRoot 只匹配位于根目录的记录（parent_id / folder_id IS NULL）.
	FilterRoot FolderFilterKind = iota
	// FilterAll 不按父目录过滤.
	FilterAll
	// FilterSpecific 匹配指定父目录.
	FilterSpecific
)

// FolderFilter 按父目录过滤的标签变体：Root | All | Specific(id).
// 请求参数只在接口边界解析一次，服务层只接触这个类型.
type FolderFilter struct {
	kind FolderFilterKind
	id   string
}

// RootFilter 根目录.
func RootFilter() FolderFilter { return FolderFilter{kind: FilterRoot} }

// AllFilter 全部.
func AllFilter() FolderFilter { return FolderFilter{kind: FilterAll} }

// SpecificFilter 指定目录.
func SpecificFilter(id string) FolderFilter { return FolderFilter{kind: FilterSpecific, id: id} }

// FilterFor nil 表示根目录，否则为指定目录.
func FilterFor(id *string) FolderFilter {
	if id == nil {
		return RootFilter()
	}

	return SpecificFilter(*id)
}

// Kind 返回过滤器种类.
func (f FolderFilter) Kind() FolderFilterKind { return f.kind }

// ID 返回指定目录 ID，仅 FilterSpecific 有意义.
func (f FolderFilter) ID() string { return f.id }

// ParentRef 把过滤器还原为可空的父目录引用，FilterAll 返回 ok=false.
func (f FolderFilter) ParentRef() (ref *string, ok bool) {
	switch f.kind {
	case FilterRoot:
		return nil, true
	case FilterSpecific:
		id := f.id

		return &id, true
	default:
		return nil, false
	}
}

func (f FolderFilter) String() string {
	switch f.kind {
	case FilterRoot:
		return "root"
	case FilterAll:
		return "all"
	default:
		return fmt.Sprintf("folder(%s)", f.id)
	}
}
