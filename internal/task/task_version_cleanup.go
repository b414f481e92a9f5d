package task

import (
	"context"

	"github.com/Evraldi/realtime-texteditor-sub000/internal/app"
	"github.com/Evraldi/realtime-texteditor-sub000/pkg/timex"
	"github.com/Evraldi/realtime-texteditor-sub000/pkg/util"

	"go.uber.org/zap"
)

// VersionCleanupTask prunes old document versions by retention time and count
// VersionCleanupTask 按保留时长与保留数量清理旧文档版本
// Per-document cleanup runs through the worker pool to bound concurrency.
// 按文档粒度通过 Worker Pool 执行，限制并发量。
type VersionCleanupTask struct {
	app *app.App
}

// NewVersionCleanupTask 创建版本清理任务
func NewVersionCleanupTask(a *app.App) *VersionCleanupTask {
	return &VersionCleanupTask{app: a}
}

// Name 返回任务名称
func (t *VersionCleanupTask) Name() string {
	return "VersionCleanup"
}

// CronSpec 返回 cron 表达式
func (t *VersionCleanupTask) CronSpec() string {
	return t.app.Config().Version.CleanupCron
}

// IsStartupRun 返回 false，清理只按计划执行
func (t *VersionCleanupTask) IsStartupRun() bool {
	return false
}

// Run 遍历所有文档并提交清理任务
func (t *VersionCleanupTask) Run(ctx context.Context) error {
	cfg := t.app.Config().Version

	retention, err := util.ParseDuration(cfg.RetentionTime)
	if err != nil {
		t.app.Logger().Warn("version cleanup retention time invalid, skipping",
			zap.String("retentionTime", cfg.RetentionTime),
			zap.Error(err))
		return nil
	}
	if retention <= 0 && cfg.KeepVersions <= 0 {
		return nil
	}

	var cutoff int64
	if retention > 0 {
		cutoff = timex.Now().UnixMilli() - retention.Milliseconds()
	}

	ids, err := t.app.DocumentRepo.ListIDs(ctx)
	if err != nil {
		return err
	}

	logger := t.app.Logger()
	for _, id := range ids {
		documentID := id
		err := t.app.SubmitTaskAsync(ctx, func(taskCtx context.Context) error {
			removed, err := t.app.VersionRepo.DeleteOldVersions(taskCtx, documentID, cutoff, cfg.KeepVersions)
			if err != nil {
				logger.Error("version cleanup failed",
					zap.Int64("documentId", documentID),
					zap.Error(err))
				return err
			}
			if removed > 0 {
				logger.Info("version cleanup done",
					zap.Int64("documentId", documentID),
					zap.Int64("removed", removed))
			}
			return nil
		})
		if err != nil {
			// 队列满时放弃本轮剩余文档，下次调度重试
			logger.Warn("version cleanup submit failed",
				zap.Int64("documentId", documentID),
				zap.Error(err))
			return err
		}
	}

	logger.Info("version cleanup scheduled",
		zap.Int("documents", len(ids)),
		zap.Int64("cutoff", cutoff),
		zap.Int("keepVersions", cfg.KeepVersions))
	return nil
}
