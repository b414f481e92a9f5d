package task

import (
	"context"

	"github.com/Evraldi/realtime-texteditor-sub000/internal/app"
	"github.com/Evraldi/realtime-texteditor-sub000/pkg/timex"
	"github.com/Evraldi/realtime-texteditor-sub000/pkg/util"

	"go.uber.org/zap"
)

// DocumentPurgeTask hard-deletes documents that stayed in the trash past retention
// DocumentPurgeTask 物理删除超过保留期的已删除文档
// Versions are removed first so a failed purge never leaves orphan version rows.
// 先删版本再删文档，避免清理失败后留下孤儿版本记录。
type DocumentPurgeTask struct {
	app *app.App
}

// NewDocumentPurgeTask 创建文档清理任务
func NewDocumentPurgeTask(a *app.App) *DocumentPurgeTask {
	return &DocumentPurgeTask{app: a}
}

// Name 返回任务名称
func (t *DocumentPurgeTask) Name() string {
	return "DocumentPurge"
}

// CronSpec 返回 cron 表达式，与版本清理共用同一调度
func (t *DocumentPurgeTask) CronSpec() string {
	return t.app.Config().Version.CleanupCron
}

// IsStartupRun 返回 false，清理只按计划执行
func (t *DocumentPurgeTask) IsStartupRun() bool {
	return false
}

// Run 遍历到期的已删除文档并提交清理任务
func (t *DocumentPurgeTask) Run(ctx context.Context) error {
	cfg := t.app.Config().Version

	retention, err := util.ParseDuration(cfg.TrashRetentionTime)
	if err != nil {
		t.app.Logger().Warn("document purge retention time invalid, skipping",
			zap.String("trashRetentionTime", cfg.TrashRetentionTime),
			zap.Error(err))
		return nil
	}
	if retention <= 0 {
		return nil
	}

	cutoff := timex.Now().UnixMilli() - retention.Milliseconds()

	ids, err := t.app.DocumentRepo.ListDeletedIDs(ctx, cutoff)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	logger := t.app.Logger()
	for _, id := range ids {
		documentID := id
		err := t.app.SubmitTaskAsync(ctx, func(taskCtx context.Context) error {
			removed, err := t.app.VersionRepo.DeleteByDocumentID(taskCtx, documentID)
			if err != nil {
				logger.Error("document purge version delete failed",
					zap.Int64("documentId", documentID),
					zap.Error(err))
				return err
			}
			if err := t.app.DocumentRepo.Purge(taskCtx, documentID); err != nil {
				logger.Error("document purge failed",
					zap.Int64("documentId", documentID),
					zap.Error(err))
				return err
			}
			logger.Info("document purged",
				zap.Int64("documentId", documentID),
				zap.Int64("versionsRemoved", removed))
			return nil
		})
		if err != nil {
			// 队列满时放弃本轮剩余文档，下次调度重试
			logger.Warn("document purge submit failed",
				zap.Int64("documentId", documentID),
				zap.Error(err))
			return err
		}
	}

	logger.Info("document purge scheduled",
		zap.Int("documents", len(ids)),
		zap.Int64("cutoff", cutoff))
	return nil
}
