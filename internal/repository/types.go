package repository

import "gorm.io/gorm"

// QueryOption 附加查询条件
type QueryOption func(*gorm.DB) *gorm.DB

// WithPreload 预加载关联
func WithPreload(association string, conds ...interface{}) QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		return db.Preload(association, conds...)
	}
}

// WithOrderedPreload 预加载关联并按 order 排序
func WithOrderedPreload(association, order string) QueryOption {
	return WithPreload(association, func(db *gorm.DB) *gorm.DB {
		return db.Order(order)
	})
}
