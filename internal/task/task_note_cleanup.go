package task

import (
	"context"
	"time"

	"github.com/elsendo/elsendo-server/internal/app"
	"github.com/elsendo/elsendo-server/pkg/util"

	"go.uber.org/zap"
)

// NoteCleanupTask 定期物理清理超过保留期的已删除笔记
type NoteCleanupTask struct {
	app *app.App
}

// Name 返回任务名称
func (t *NoteCleanupTask) Name() string {
	return "NoteCleanup"
}

// LoopInterval 返回执行间隔
func (t *NoteCleanupTask) LoopInterval() time.Duration {
	return 10 * time.Minute
}

// IsStartupRun 是否立即执行一次
func (t *NoteCleanupTask) IsStartupRun() bool {
	return true
}

// Run 执行清理任务
func (t *NoteCleanupTask) Run(ctx context.Context) error {
	purged, err := t.app.NoteService.PurgeDeleted(ctx)
	if err != nil {
		t.app.Logger().Error("task log",
			zap.String("task", t.Name()),
			zap.String("msg", "failed"),
			zap.Error(err))
		return err
	}

	if purged > 0 {
		t.app.Logger().Info("task log",
			zap.String("task", t.Name()),
			zap.String("msg", "success"),
			zap.Int64("purged", purged))
	}

	return nil
}

// NewNoteCleanupTask 创建清理任务
// 未配置保留时间时返回 nil，任务被禁用
func NewNoteCleanupTask(appContainer *app.App) (Task, error) {
	retentionTimeStr := appContainer.Config().App.SoftDeleteRetentionTime
	if retentionTimeStr == "" || retentionTimeStr == "0" {
		return nil, nil
	}
	duration, err := util.ParseDuration(retentionTimeStr)
	if err != nil {
		return nil, err
	}

	if duration <= 0 {
		return nil, nil
	}

	return &NoteCleanupTask{app: appContainer}, nil
}

// init 自动注册清理任务
func init() {
	Register(func(appContainer *app.App) (Task, error) {
		return NewNoteCleanupTask(appContainer)
	})
}
