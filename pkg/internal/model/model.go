// Package model 定义持久化实体：目录树节点 Folder 与报告文件 Report.
// 目录树完全由 folders.parent_id 自引用外键表示，不在内存中缓存树结构.
package model

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid"
)

// Status 目录与报告共用的软状态，删除是独立的永久操作，不属于状态.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// Valid 判断状态值是否合法.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusArchived
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewID 生成按时间有序的 ULID 字符串.
func NewID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// All 返回需要迁移的全部模型.
func All() []any {
	return []any{&Folder{}, &Report{}}
}
