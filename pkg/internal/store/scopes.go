package store

import "gorm.io/gorm"

// NullableEq 对可空外键列生成条件：nil 对应 IS NULL，否则为等值比较.
// 根目录语义依赖它：folder_id 为 nil 只匹配 IS NULL 的记录.
func NullableEq(column string, v *string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		if v == nil {
			return db.Where(column + " IS NULL")
		}

		return db.Where(column+" = ?", *v)
	}
}

// Eq 等值条件.
func Eq(column string, v any) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column+" = ?", v)
	}
}

// NotEq 不等条件.
func NotEq(column string, v any) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column+" <> ?", v)
	}
}

// In IN 条件.
func In(column string, values []string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column+" IN ?", values)
	}
}

// OrderBy 排序.
func OrderBy(expr string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(expr)
	}
}

// Select 只读取给定列.
func Select(columns ...string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Select(columns)
	}
}

// Omit 忽略给定列.
func Omit(columns ...string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Omit(columns...)
	}
}

// Like 前缀等模式匹配.
func Like(column, pattern string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column+" LIKE ?", pattern)
	}
}

// NotNull 列非空.
func NotNull(column string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column + " IS NOT NULL")
	}
}
