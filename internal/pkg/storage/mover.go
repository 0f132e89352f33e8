// Package storage 代码库存储目录的迁移
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Mover 把代码库从 oldPath 移动到 newPath, 要么成功要么不产生变化
type Mover interface {
	Move(oldPath, newPath string) error
}

// FSMover 基于 afero 文件系统的 Mover
type FSMover struct {
	fs     afero.Fs
	logger *zap.Logger
}

// NewFSMover 生产环境传入 afero.NewOsFs(), 测试使用 afero.NewMemMapFs()
func NewFSMover(fs afero.Fs, logger *zap.Logger) *FSMover {
	return &FSMover{fs: fs, logger: logger}
}

func (m *FSMover) Move(oldPath, newPath string) error {
	if oldPath == newPath {
		return nil
	}

	ok, err := afero.DirExists(m.fs, oldPath)
	if err != nil {
		return fmt.Errorf("stat %s: %w", oldPath, err)
	}
	if !ok {
		return fmt.Errorf("source %s: %w", oldPath, os.ErrNotExist)
	}

	exists, err := afero.Exists(m.fs, newPath)
	if err != nil {
		return fmt.Errorf("stat %s: %w", newPath, err)
	}
	if exists {
		return fmt.Errorf("target %s: %w", newPath, os.ErrExist)
	}

	if err := m.fs.MkdirAll(filepath.Dir(newPath), 0o755); err != nil {
		return fmt.Errorf("create parent of %s: %w", newPath, err)
	}
	if err := m.fs.Rename(oldPath, newPath); err != nil {
		return fmt.Errorf("move %s -> %s: %w", oldPath, newPath, err)
	}

	m.logger.Info("Repository storage moved", zap.String("from", oldPath), zap.String("to", newPath))
	return nil
}
