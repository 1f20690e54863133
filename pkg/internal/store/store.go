// Package store 提供基于 GORM 的泛型实体 CRUD，供目录与报告服务在事务内复用.
package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound 记录不存在.
var ErrNotFound = errors.New("record not found")

// Scope 追加查询条件.
type Scope func(*gorm.DB) *gorm.DB

// Table 绑定到某个 *gorm.DB（通常是事务）的实体访问器.
type Table[T any] struct {
	db *gorm.DB
}

// For 返回 T 的访问器，db 可以是事务句柄.
func For[T any](db *gorm.DB) Table[T] {
	return Table[T]{db: db}
}

func (t Table[T]) model() *gorm.DB {
	var zero T

	return t.db.Model(&zero)
}

// Get 按主键读取，未找到返回 ErrNotFound.
func (t Table[T]) Get(ctx context.Context, id string) (*T, error) {
	var out T

	err := t.db.WithContext(ctx).Where("id = ?", id).Take(&out).Error
	if err != nil {
		return nil, translate(err)
	}

	return &out, nil
}

// First 按条件读取第一条，未找到返回 ErrNotFound.
func (t Table[T]) First(ctx context.Context, scopes ...Scope) (*T, error) {
	var out T

	err := apply(t.model().WithContext(ctx), scopes).Take(&out).Error
	if err != nil {
		return nil, translate(err)
	}

	return &out, nil
}

// Find 按条件查询全部匹配记录.
func (t Table[T]) Find(ctx context.Context, scopes ...Scope) ([]T, error) {
	out := make([]T, 0)

	if err := apply(t.model().WithContext(ctx), scopes).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}

	return out, nil
}

// Exists 判断是否存在匹配记录.
func (t Table[T]) Exists(ctx context.Context, scopes ...Scope) (bool, error) {
	var n int64

	if err := apply(t.model().WithContext(ctx), scopes).Limit(1).Count(&n).Error; err != nil {
		return false, fmt.Errorf("count: %w", err)
	}

	return n > 0, nil
}

// Pluck 查询单列字符串值.
func (t Table[T]) Pluck(ctx context.Context, column string, scopes ...Scope) ([]string, error) {
	out := make([]string, 0)

	if err := apply(t.model().WithContext(ctx), scopes).Pluck(column, &out).Error; err != nil {
		return nil, fmt.Errorf("pluck %s: %w", column, err)
	}

	return out, nil
}

// Create 插入记录.
func (t Table[T]) Create(ctx context.Context, v *T) error {
	if err := t.db.WithContext(ctx).Create(v).Error; err != nil {
		return fmt.Errorf("create: %w", err)
	}

	return nil
}

// Update 按主键更新给定列，返回受影响行数.
func (t Table[T]) Update(ctx context.Context, id string, values map[string]any) (int64, error) {
	res := t.model().WithContext(ctx).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return 0, fmt.Errorf("update: %w", res.Error)
	}

	return res.RowsAffected, nil
}

// UpdateWhere 按条件批量更新，返回受影响行数.
func (t Table[T]) UpdateWhere(ctx context.Context, values map[string]any, scopes ...Scope) (int64, error) {
	res := apply(t.model().WithContext(ctx), scopes).Updates(values)
	if res.Error != nil {
		return 0, fmt.Errorf("update: %w", res.Error)
	}

	return res.RowsAffected, nil
}

// Delete 按主键删除，返回受影响行数.
func (t Table[T]) Delete(ctx context.Context, id string) (int64, error) {
	var zero T

	res := t.db.WithContext(ctx).Where("id = ?", id).Delete(&zero)
	if res.Error != nil {
		return 0, fmt.Errorf("delete: %w", res.Error)
	}

	return res.RowsAffected, nil
}

// DeleteWhere 按条件删除，返回受影响行数；没有条件时拒绝执行.
func (t Table[T]) DeleteWhere(ctx context.Context, scopes ...Scope) (int64, error) {
	if len(scopes) == 0 {
		return 0, errors.New("delete without conditions")
	}

	var zero T

	res := apply(t.db.WithContext(ctx), scopes).Delete(&zero)
	if res.Error != nil {
		return 0, fmt.Errorf("delete: %w", res.Error)
	}

	return res.RowsAffected, nil
}

func apply(db *gorm.DB, scopes []Scope) *gorm.DB {
	for _, s := range scopes {
		db = s(db)
	}

	return db
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	return err
}
