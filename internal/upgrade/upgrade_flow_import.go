package upgrade

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"

	"github.com/elsendo/elsendo-server/internal/domain"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ExportFile 上一代产品 Flow 的导出文件路径
const ExportFile = "storage/flow-export.json"

// MigratedNoteTitle 导入内容生成的笔记标题
const MigratedNoteTitle = "Migrated from Flow"

// flowExportEntry Flow 导出文件中的单条记录
type flowExportEntry struct {
	Email   string `json:"email"`   // 归属用户邮箱 // Owner email
	Content string `json:"content"` // 笔记内容（HTML） // Note content (HTML)
}

// FlowImport 将 Flow 的导出内容导入为笔记
// 每条记录按邮箱匹配已注册用户，找不到用户的记录跳过
type FlowImport struct {
	noteRepo domain.NoteRepository
	userRepo domain.UserRepository
	logger   *zap.Logger
	file     string
}

// NewFlowImport 创建 Flow 导入迁移
func NewFlowImport(noteRepo domain.NoteRepository, userRepo domain.UserRepository, logger *zap.Logger) *FlowImport {
	return &FlowImport{
		noteRepo: noteRepo,
		userRepo: userRepo,
		logger:   logger,
		file:     ExportFile,
	}
}

// Name 返回迁移名称
func (f *FlowImport) Name() string {
	return "FlowImport"
}

// Run 执行导入
// 导出文件不存在时视为没有可导入的内容，不是错误
func (f *FlowImport) Run(ctx context.Context) error {
	data, err := os.ReadFile(f.file)
	if err != nil {
		if os.IsNotExist(err) {
			f.logger.Info("no legacy export found, nothing to import")
			return nil
		}
		return err
	}

	var entries []flowExportEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		f.logger.Warn("legacy export is not parseable, skipping import",
			zap.String("file", f.file),
			zap.Error(err))
		return nil
	}

	imported := 0
	for _, entry := range entries {
		content := strings.TrimSpace(entry.Content)
		if content == "" {
			continue
		}

		user, err := f.userRepo.GetByEmail(ctx, entry.Email)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				f.logger.Warn("legacy export entry has no matching user, skipping",
					zap.String("email", entry.Email))
				continue
			}
			return err
		}

		if _, err := f.noteRepo.Create(ctx, &domain.Note{
			UID:     user.UID,
			Title:   MigratedNoteTitle,
			Content: content,
		}); err != nil {
			return err
		}
		imported++
	}

	f.logger.Info("legacy import finished",
		zap.Int("entries", len(entries)),
		zap.Int("imported", imported))
	return nil
}
