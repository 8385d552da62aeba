// Package upgrade 实现首次运行时的历史数据导入
// Package upgrade implements first-run legacy data import
package upgrade

import (
	"context"
	"os"
	"path/filepath"

	"github.com/elsendo/elsendo-server/internal/domain"

	"go.uber.org/zap"
)

// MarkerFile 迁移标记文件
// 标记文件存在时无条件跳过迁移检查
const MarkerFile = "storage/.elsendo-migrated"

// Migration 定义迁移接口
type Migration interface {
	Name() string
	Run(ctx context.Context) error
}

// Manager 迁移管理器
// 通过进程本地的标记文件保证迁移只执行一次，
// 即使没有可导入的内容也会写入标记
type Manager struct {
	logger     *zap.Logger
	marker     string
	migrations []Migration
}

// NewManager 创建迁移管理器
func NewManager(noteRepo domain.NoteRepository, userRepo domain.UserRepository, logger *zap.Logger) *Manager {
	return &Manager{
		logger: logger,
		marker: MarkerFile,
		migrations: []Migration{
			// 在这里注册所有的迁移脚本
			NewFlowImport(noteRepo, userRepo, logger),
		},
	}
}

// Run 执行迁移
// 标记文件存在时直接返回
func (m *Manager) Run(ctx context.Context) error {
	if _, err := os.Stat(m.marker); err == nil {
		m.logger.Debug("migration marker present, skipping import")
		return nil
	}

	for _, migration := range m.migrations {
		m.logger.Info("running migration", zap.String("name", migration.Name()))
		if err := migration.Run(ctx); err != nil {
			return err
		}
	}

	return m.writeMarker()
}

// writeMarker 写入迁移标记文件
func (m *Manager) writeMarker() error {
	if err := os.MkdirAll(filepath.Dir(m.marker), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(m.marker, []byte("1"), 0644); err != nil {
		return err
	}
	m.logger.Info("migration marker written", zap.String("file", m.marker))
	return nil
}
