package service

import (
	"context"
	"errors"
	"time"

	"github.com/Evraldi/realtime-texteditor-sub000/internal/domain"
	"github.com/Evraldi/realtime-texteditor-sub000/internal/dto"
	"github.com/Evraldi/realtime-texteditor-sub000/pkg/code"
	"github.com/Evraldi/realtime-texteditor-sub000/pkg/diff"
	"github.com/Evraldi/realtime-texteditor-sub000/pkg/logger"
	"github.com/Evraldi/realtime-texteditor-sub000/pkg/timex"
	"github.com/Evraldi/realtime-texteditor-sub000/pkg/util"

	"github.com/sergi/go-diff/diffmatchpatch"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultSnapshotCooldown 默认快照去抖窗口
const DefaultSnapshotCooldown = 60 * time.Second

// WriteExecutor serializes writes sharing the same key
// WriteExecutor 串行化同一 key 上的写操作
//
// 版本号在每个文档内严格递增且不允许出现空洞，因此同一文档的
// 版本创建必须串行执行。pkg/writequeue 的 Manager 满足该接口。
type WriteExecutor interface {
	Execute(ctx context.Context, key int64, fn func() error) error
}

// VersionService 定义版本历史业务服务接口
type VersionService interface {
	// MaybeSnapshot 按需生成版本快照，未生成时返回 nil
	// 首个快照无条件生成版本 1；之后仅当内容变化、冷却窗口已过
	// 且变更显著时生成下一个版本
	MaybeSnapshot(ctx context.Context, documentID int64, content string, actorUID int64) (*dto.VersionDTO, error)

	// Snapshot 立即生成版本快照，绕过冷却窗口与显著性判断
	// 内容与最新版本一致时不生成新版本，返回最新版本
	Snapshot(ctx context.Context, uid, documentID int64, comment string) (*dto.VersionDTO, error)

	// Restore 将文档内容恢复到历史版本
	// 恢复以追加方式记录：生成一个标记为恢复操作的新版本，历史不被改写
	Restore(ctx context.Context, uid, documentID, version int64) (*dto.VersionDTO, error)

	// Compare 比较同一文档的两个版本
	Compare(ctx context.Context, documentID, from, to int64) (*dto.VersionCompareDTO, error)

	// Tag 为版本追加标签，标签按并集合并且去重
	Tag(ctx context.Context, documentID, version int64, params *dto.VersionTagRequest) (*dto.VersionDTO, error)

	// List 分页获取版本列表，按版本号倒序，不带内容
	List(ctx context.Context, documentID int64, page, pageSize int) ([]*dto.VersionDTO, int64, error)

	// Get 获取单个版本，带内容
	Get(ctx context.Context, documentID, version int64) (*dto.VersionDTO, error)
}

// versionService 实现 VersionService 接口
type versionService struct {
	versionRepo domain.DocumentVersionRepository
	docRepo     domain.DocumentRepository
	executor    WriteExecutor
	logger      *zap.Logger
	config      VersionServiceConfig
	cooldown    time.Duration
}

// NewVersionService 创建 VersionService 实例
// executor 为 nil 时写操作直接执行，便于测试
func NewVersionService(
	versionRepo domain.DocumentVersionRepository,
	docRepo domain.DocumentRepository,
	executor WriteExecutor,
	lg *zap.Logger,
	config VersionServiceConfig,
) VersionService {
	if lg == nil {
		lg = zap.NewNop()
	}
	cooldown := DefaultSnapshotCooldown
	if config.Cooldown != "" {
		if d, err := util.ParseDuration(config.Cooldown); err == nil && d >= 0 {
			cooldown = d
		} else {
			lg.Warn("invalid snapshot cooldown, using default",
				zap.String("cooldown", config.Cooldown),
			)
		}
	}
	return &versionService{
		versionRepo: versionRepo,
		docRepo:     docRepo,
		executor:    executor,
		logger:      lg,
		config:      config,
		cooldown:    cooldown,
	}
}

// execute 通过写执行器串行执行，未配置执行器时直接执行
func (s *versionService) execute(ctx context.Context, key int64, fn func() error) error {
	if s.executor == nil {
		return fn()
	}
	return s.executor.Execute(ctx, key, fn)
}

// domainToDTO 将领域模型转换为 DTO
func (s *versionService) domainToDTO(v *domain.DocumentVersion, withContent bool) *dto.VersionDTO {
	if v == nil {
		return nil
	}
	d := &dto.VersionDTO{
		ID:                  v.ID,
		DocumentID:          v.DocumentID,
		Version:             v.Version,
		ContentHash:         v.ContentHash,
		Stats:               v.Stats,
		Description:         v.Description,
		Tags:                v.Tags,
		IsSignificant:       v.IsSignificant,
		IsRestoration:       v.IsRestoration,
		RestoredFromVersion: v.RestoredFromVersion,
		CreatedByUID:        v.CreatedByUID,
		CreatedAt:           timex.Time(v.CreatedAt),
	}
	if withContent {
		d.Content = v.Content
	}
	return d
}

// isSignificant 判断变更是否显著
// 行级有任何改动，或增删字符数超过阈值即视为显著
func (s *versionService) isSignificant(stats diff.ChangeStats) bool {
	minAdded := s.config.MinAddedChars
	minRemoved := s.config.MinRemovedChars
	return stats.ChangedLines() > 0 ||
		stats.AddedChars > minAdded ||
		stats.RemovedChars > minRemoved
}

// MaybeSnapshot 按需生成版本快照，未生成时返回 nil
func (s *versionService) MaybeSnapshot(ctx context.Context, documentID int64, content string, actorUID int64) (*dto.VersionDTO, error) {
	var created *domain.DocumentVersion

	err := s.execute(ctx, documentID, func() error {
		latest, err := s.versionRepo.GetLatest(ctx, documentID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var prevContent string
		var nextVersion int64 = 1
		if latest != nil {
			// 内容未变或仍在冷却窗口内则不生成
			if latest.Content == content {
				versionsSkippedTotal.WithLabelValues(skipReasonIdentical).Inc()
				return nil
			}
			if time.Since(latest.CreatedAt) < s.cooldown {
				versionsSkippedTotal.WithLabelValues(skipReasonCooldown).Inc()
				return nil
			}
			prevContent = latest.Content
			nextVersion = latest.Version + 1
		}

		stats := diff.ComputeChanges(prevContent, content)
		// 首个版本无条件生成，之后要求变更显著
		if latest != nil && !s.isSignificant(stats) {
			versionsSkippedTotal.WithLabelValues(skipReasonInsignificant).Inc()
			return nil
		}

		v, err := s.versionRepo.Create(ctx, &domain.DocumentVersion{
			DocumentID:   documentID,
			Version:      nextVersion,
			Content:      content,
			ContentHash:  util.EncodeMD5(content),
			Stats:        &stats,
			Description:  diff.GenerateChangeDescription(stats),
			CreatedByUID: actorUID,
		})
		if err != nil {
			return err
		}
		created = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, nil
	}
	versionsCreatedTotal.WithLabelValues(snapshotKindAuto).Inc()

	s.logger.Info("version snapshot created",
		zap.Int64(logger.FieldDocumentID, documentID),
		zap.Int64(logger.FieldVersionNumber, created.Version),
		zap.Int64(logger.FieldUID, actorUID),
	)
	return s.domainToDTO(created, false), nil
}

// Snapshot 立即生成版本快照，绕过冷却窗口与显著性判断
func (s *versionService) Snapshot(ctx context.Context, uid, documentID int64, comment string) (*dto.VersionDTO, error) {
	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorDocumentNotFound
		}
		return nil, code.ErrorDBQuery
	}

	var created *domain.DocumentVersion
	var result *dto.VersionDTO

	err = s.execute(ctx, documentID, func() error {
		latest, err := s.versionRepo.GetLatest(ctx, documentID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var prevContent string
		var nextVersion int64 = 1
		if latest != nil {
			// 与最新版本内容一致时不重复记录
			if latest.Content == doc.Content {
				versionsSkippedTotal.WithLabelValues(skipReasonIdentical).Inc()
				result = s.domainToDTO(latest, false)
				return nil
			}
			prevContent = latest.Content
			nextVersion = latest.Version + 1
		}

		stats := diff.ComputeChanges(prevContent, doc.Content)
		description := comment
		if description == "" {
			description = diff.GenerateChangeDescription(stats)
		}

		v, err := s.versionRepo.Create(ctx, &domain.DocumentVersion{
			DocumentID:   documentID,
			Version:      nextVersion,
			Content:      doc.Content,
			ContentHash:  util.EncodeMD5(doc.Content),
			Stats:        &stats,
			Description:  description,
			CreatedByUID: uid,
		})
		if err != nil {
			return err
		}
		created = v
		return nil
	})
	if err != nil {
		return nil, code.ErrorVersionCreateFailed.WithDetails(err.Error())
	}
	if created == nil {
		return result, nil
	}
	versionsCreatedTotal.WithLabelValues(snapshotKindManual).Inc()

	s.logger.Info("version created manually",
		zap.Int64(logger.FieldDocumentID, documentID),
		zap.Int64(logger.FieldVersionNumber, created.Version),
		zap.Int64(logger.FieldUID, uid),
	)
	return s.domainToDTO(created, false), nil
}

// Restore 将文档内容恢复到历史版本
func (s *versionService) Restore(ctx context.Context, uid, documentID, version int64) (*dto.VersionDTO, error) {
	target, err := s.versionRepo.GetByNumber(ctx, documentID, version)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorVersionNotFound
		}
		return nil, code.ErrorDBQuery
	}

	if err := s.docRepo.UpdateContent(ctx, target.Content, target.ContentHash, documentID); err != nil {
		return nil, code.ErrorVersionRestoreFailed.WithDetails(err.Error())
	}

	var created *domain.DocumentVersion
	err = s.execute(ctx, documentID, func() error {
		latest, err := s.versionRepo.GetLatest(ctx, documentID)
		if err != nil {
			return err
		}

		// 恢复绕过冷却窗口，但与恢复前的最新版本内容一致时不再记录
		stats := diff.ComputeChanges(latest.Content, target.Content)
		if latest.Content == target.Content || !s.isSignificant(stats) {
			return nil
		}

		v, err := s.versionRepo.Create(ctx, &domain.DocumentVersion{
			DocumentID:          documentID,
			Version:             latest.Version + 1,
			Content:             target.Content,
			ContentHash:         target.ContentHash,
			Stats:               &stats,
			Description:         diff.GenerateChangeDescription(stats),
			IsRestoration:       true,
			RestoredFromVersion: target.Version,
			CreatedByUID:        uid,
		})
		if err != nil {
			return err
		}
		created = v
		return nil
	})
	if err != nil {
		return nil, code.ErrorVersionRestoreFailed.WithDetails(err.Error())
	}
	if created == nil {
		// 文档内容已恢复，只是无需新的版本记录
		return s.domainToDTO(target, true), nil
	}
	versionsCreatedTotal.WithLabelValues(snapshotKindRestoration).Inc()

	s.logger.Info("version restored",
		zap.Int64(logger.FieldDocumentID, documentID),
		zap.Int64(logger.FieldVersionNumber, created.Version),
		zap.Int64("restoredFromVersion", target.Version),
		zap.Int64(logger.FieldUID, uid),
	)
	return s.domainToDTO(created, true), nil
}

// Compare 比较同一文档的两个版本
func (s *versionService) Compare(ctx context.Context, documentID, from, to int64) (*dto.VersionCompareDTO, error) {
	fromVersion, err := s.versionRepo.GetByNumber(ctx, documentID, from)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorVersionNotFound
		}
		return nil, code.ErrorVersionCompareFailed
	}
	toVersion, err := s.versionRepo.GetByNumber(ctx, documentID, to)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorVersionNotFound
		}
		return nil, code.ErrorVersionCompareFailed
	}

	stats := diff.ComputeChanges(fromVersion.Content, toVersion.Content)

	var segments []dto.DiffSegmentDTO
	for _, d := range diff.Render(fromVersion.Content, toVersion.Content) {
		var op string
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = "insert"
		case diffmatchpatch.DiffDelete:
			op = "delete"
		default:
			op = "equal"
		}
		segments = append(segments, dto.DiffSegmentDTO{Op: op, Text: d.Text})
	}

	return &dto.VersionCompareDTO{
		DocumentID:  documentID,
		From:        from,
		To:          to,
		Stats:       stats,
		Description: diff.GenerateChangeDescription(stats),
		Segments:    segments,
	}, nil
}

// Tag 为版本追加标签，标签按并集合并且去重
func (s *versionService) Tag(ctx context.Context, documentID, version int64, params *dto.VersionTagRequest) (*dto.VersionDTO, error) {
	v, err := s.versionRepo.GetByNumber(ctx, documentID, version)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorVersionNotFound
		}
		return nil, code.ErrorDBQuery
	}

	v.AddTags(params.Tags...)
	// 元数据是追加语义，重要标记只置位不清除
	if params.IsSignificant {
		v.IsSignificant = true
	}
	if params.Comment != "" {
		v.Description = params.Comment
	}

	if err := s.versionRepo.UpdateTagMetadata(ctx, v.Tags, v.IsSignificant, v.Description, v.ID); err != nil {
		return nil, code.ErrorVersionTagFailed.WithDetails(err.Error())
	}

	return s.domainToDTO(v, false), nil
}

// List 分页获取版本列表，按版本号倒序，不带内容
func (s *versionService) List(ctx context.Context, documentID int64, page, pageSize int) ([]*dto.VersionDTO, int64, error) {
	versions, count, err := s.versionRepo.ListByDocumentID(ctx, documentID, page, pageSize)
	if err != nil {
		return nil, 0, code.ErrorVersionListFailed
	}
	var results []*dto.VersionDTO
	for _, v := range versions {
		results = append(results, s.domainToDTO(v, false))
	}
	return results, count, nil
}

// Get 获取单个版本，带内容
func (s *versionService) Get(ctx context.Context, documentID, version int64) (*dto.VersionDTO, error) {
	v, err := s.versionRepo.GetByNumber(ctx, documentID, version)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorVersionNotFound
		}
		return nil, code.ErrorDBQuery
	}
	return s.domainToDTO(v, true), nil
}

// 确保 versionService 实现了 VersionService 接口
var _ VersionService = (*versionService)(nil)
