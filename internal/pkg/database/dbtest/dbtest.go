// Package dbtest 为测试提供迁移完成的 sqlite 数据库
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"gitolite-sync/internal/pkg/config"
	"gitolite-sync/internal/pkg/database"
)

// Open 在 t.TempDir() 中创建 sqlite 数据库并迁移所有模型
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(&config.DatabaseConfig{
		Driver:   "sqlite",
		Database: filepath.Join(t.TempDir(), "gitolite-sync.db") + "?_pragma=foreign_keys(1)",
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
