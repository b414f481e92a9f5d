package dao

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Evraldi/realtime-texteditor-sub000/internal/domain"
	"github.com/Evraldi/realtime-texteditor-sub000/internal/model"
	"github.com/Evraldi/realtime-texteditor-sub000/pkg/app"
	"github.com/Evraldi/realtime-texteditor-sub000/pkg/diff"
	"github.com/Evraldi/realtime-texteditor-sub000/pkg/logger"
	"github.com/Evraldi/realtime-texteditor-sub000/pkg/timex"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// documentVersionRepository 实现 domain.DocumentVersionRepository 接口
type documentVersionRepository struct {
	dao *Dao
}

// NewDocumentVersionRepository 创建 DocumentVersionRepository 实例
func NewDocumentVersionRepository(dao *Dao) domain.DocumentVersionRepository {
	return &documentVersionRepository{dao: dao}
}

// toDomain 将数据库模型转换为领域模型
func (r *documentVersionRepository) toDomain(m *model.DocumentVersion) *domain.DocumentVersion {
	if m == nil {
		return nil
	}
	v := &domain.DocumentVersion{
		ID:                  m.ID,
		DocumentID:          m.DocumentID,
		Version:             m.Version,
		Content:             m.Content,
		ContentHash:         m.ContentHash,
		Description:         m.Description,
		IsSignificant:       m.IsSignificant,
		IsRestoration:       m.IsRestoration,
		RestoredFromVersion: m.RestoredFromVersion,
		CreatedByUID:        m.CreatedByUID,
		CreatedAt:           time.Time(m.CreatedAt),
	}
	if m.Stats != "" {
		var stats diff.ChangeStats
		if err := json.Unmarshal([]byte(m.Stats), &stats); err != nil {
			r.dao.logger.Warn("failed to decode version stats",
				zap.Int64(logger.FieldVersionID, m.ID),
				zap.Error(err),
			)
		} else {
			v.Stats = &stats
		}
	}
	if m.Tags != "" {
		var tags []string
		if err := json.Unmarshal([]byte(m.Tags), &tags); err != nil {
			r.dao.logger.Warn("failed to decode version tags",
				zap.Int64(logger.FieldVersionID, m.ID),
				zap.Error(err),
			)
		} else {
			v.Tags = tags
		}
	}
	return v
}

func encodeStats(stats *diff.ChangeStats) string {
	if stats == nil {
		return ""
	}
	b, err := json.Marshal(stats)
	if err != nil {
		return ""
	}
	return string(b)
}

func encodeTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return ""
	}
	return string(b)
}

// GetByID 根据ID获取版本记录
func (r *documentVersionRepository) GetByID(ctx context.Context, id int64) (*domain.DocumentVersion, error) {
	var m model.DocumentVersion
	err := r.dao.db.WithContext(ctx).
		Where("id = ?", id).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// GetByNumber 根据文档ID和版本号获取版本记录
func (r *documentVersionRepository) GetByNumber(ctx context.Context, documentID, version int64) (*domain.DocumentVersion, error) {
	var m model.DocumentVersion
	err := r.dao.db.WithContext(ctx).
		Where("document_id = ? AND version = ?", documentID, version).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// GetLatest 获取文档的最新版本记录
func (r *documentVersionRepository) GetLatest(ctx context.Context, documentID int64) (*domain.DocumentVersion, error) {
	var m model.DocumentVersion
	err := r.dao.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("version DESC").
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// GetLatestNumber 获取文档的最新版本号，无版本时返回 0
func (r *documentVersionRepository) GetLatestNumber(ctx context.Context, documentID int64) (int64, error) {
	v, err := r.GetLatest(ctx, documentID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, err
	}
	return v.Version, nil
}

// Create 创建版本记录
func (r *documentVersionRepository) Create(ctx context.Context, version *domain.DocumentVersion) (*domain.DocumentVersion, error) {
	m := &model.DocumentVersion{
		DocumentID:          version.DocumentID,
		Version:             version.Version,
		Content:             version.Content,
		ContentHash:         version.ContentHash,
		Stats:               encodeStats(version.Stats),
		Description:         version.Description,
		Tags:                encodeTags(version.Tags),
		IsSignificant:       version.IsSignificant,
		IsRestoration:       version.IsRestoration,
		RestoredFromVersion: version.RestoredFromVersion,
		CreatedByUID:        version.CreatedByUID,
		CreatedAt:           timex.Time(version.CreatedAt),
	}
	if time.Time(m.CreatedAt).IsZero() {
		m.CreatedAt = timex.Now()
	}
	if err := r.dao.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

// UpdateTagMetadata 更新版本的附加元数据（标签、重要标记、描述）
func (r *documentVersionRepository) UpdateTagMetadata(ctx context.Context, tags []string, isSignificant bool, description string, id int64) error {
	return r.dao.db.WithContext(ctx).
		Model(&model.DocumentVersion{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"tags":           encodeTags(tags),
			"is_significant": isSignificant,
			"description":    description,
		}).Error
}

// ListByDocumentID 分页获取文档的版本列表，按版本号倒序
func (r *documentVersionRepository) ListByDocumentID(ctx context.Context, documentID int64, page, pageSize int) ([]*domain.DocumentVersion, int64, error) {
	q := r.dao.db.WithContext(ctx).
		Model(&model.DocumentVersion{}).
		Where("document_id = ?", documentID)

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var modelList []*model.DocumentVersion
	err := q.Order("version DESC").
		Limit(pageSize).
		Offset(app.GetPageOffset(page, pageSize)).
		Find(&modelList).Error
	if err != nil {
		return nil, 0, err
	}

	var results []*domain.DocumentVersion
	for _, m := range modelList {
		results = append(results, r.toDomain(m))
	}
	return results, count, nil
}

// DeleteOldVersions 删除旧版本记录，保留最近 keepVersions 个版本
func (r *documentVersionRepository) DeleteOldVersions(ctx context.Context, documentID int64, cutoffTime int64, keepVersions int) (int64, error) {

	// 先获取需要保留的最近 N 个版本的最小版本号
	var minKeepVersion int64 = 0
	if keepVersions > 0 {
		var keep []*model.DocumentVersion
		err := r.dao.db.WithContext(ctx).
			Where("document_id = ?", documentID).
			Order("version DESC").
			Limit(keepVersions).
			Find(&keep).Error
		if err != nil {
			return 0, err
		}
		if len(keep) > 0 {
			minKeepVersion = keep[len(keep)-1].Version
		}
	}

	cutoffTimeValue := timex.Time(time.UnixMilli(cutoffTime))

	q := r.dao.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Where("created_at < ?", cutoffTimeValue)

	if minKeepVersion > 0 {
		q = q.Where("version < ?", minKeepVersion)
	}

	result := q.Delete(&model.DocumentVersion{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Delete 删除指定ID的版本记录
func (r *documentVersionRepository) Delete(ctx context.Context, id int64) error {
	return r.dao.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.DocumentVersion{}).Error
}

// DeleteByDocumentID 删除文档的全部版本记录
func (r *documentVersionRepository) DeleteByDocumentID(ctx context.Context, documentID int64) (int64, error) {
	result := r.dao.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Delete(&model.DocumentVersion{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// 确保 documentVersionRepository 实现了 domain.DocumentVersionRepository 接口
var _ domain.DocumentVersionRepository = (*documentVersionRepository)(nil)
