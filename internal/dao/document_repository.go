package dao

import (
	"context"
	"time"

	"github.com/Evraldi/realtime-texteditor-sub000/internal/domain"
	"github.com/Evraldi/realtime-texteditor-sub000/internal/model"
	"github.com/Evraldi/realtime-texteditor-sub000/pkg/app"
	"github.com/Evraldi/realtime-texteditor-sub000/pkg/timex"
)

// documentRepository 实现 domain.DocumentRepository 接口
type documentRepository struct {
	dao *Dao
}

// NewDocumentRepository 创建 DocumentRepository 实例
func NewDocumentRepository(dao *Dao) domain.DocumentRepository {
	return &documentRepository{dao: dao}
}

// toDomain 将数据库模型转换为领域模型
func (r *documentRepository) toDomain(m *model.Document) *domain.Document {
	if m == nil {
		return nil
	}
	return &domain.Document{
		ID:          m.ID,
		Title:       m.Title,
		Content:     m.Content,
		ContentHash: m.ContentHash,
		OwnerUID:    m.OwnerUID,
		Size:        m.Size,
		IsDeleted:   m.IsDeleted,
		CreatedAt:   time.Time(m.CreatedAt),
		UpdatedAt:   time.Time(m.UpdatedAt),
	}
}

// GetByID 根据ID获取文档
func (r *documentRepository) GetByID(ctx context.Context, id int64) (*domain.Document, error) {
	var m model.Document
	err := r.dao.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// Create 创建文档
func (r *documentRepository) Create(ctx context.Context, doc *domain.Document) (*domain.Document, error) {
	now := timex.Now()
	m := &model.Document{
		Title:       doc.Title,
		Content:     doc.Content,
		ContentHash: doc.ContentHash,
		OwnerUID:    doc.OwnerUID,
		Size:        int64(len(doc.Content)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.dao.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

// UpdateContent 更新文档内容（最后写入者胜出）
func (r *documentRepository) UpdateContent(ctx context.Context, content, contentHash string, id int64) error {
	return r.dao.db.WithContext(ctx).
		Model(&model.Document{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"content":      content,
			"content_hash": contentHash,
			"size":         int64(len(content)),
			"updated_at":   timex.Now(),
		}).Error
}

// UpdateTitle 更新文档标题
func (r *documentRepository) UpdateTitle(ctx context.Context, title string, id int64) error {
	return r.dao.db.WithContext(ctx).
		Model(&model.Document{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"title":      title,
			"updated_at": timex.Now(),
		}).Error
}

// UpdateDelete 更新文档为删除状态
func (r *documentRepository) UpdateDelete(ctx context.Context, id int64) error {
	return r.dao.db.WithContext(ctx).
		Model(&model.Document{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"updated_at": timex.Now(),
		}).Error
}

// List 分页获取文档列表
func (r *documentRepository) List(ctx context.Context, page, pageSize int) ([]*domain.Document, error) {
	var modelList []*model.Document
	err := r.dao.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Order("updated_at DESC").
		Limit(pageSize).
		Offset(app.GetPageOffset(page, pageSize)).
		Find(&modelList).Error
	if err != nil {
		return nil, err
	}

	var results []*domain.Document
	for _, m := range modelList {
		results = append(results, r.toDomain(m))
	}
	return results, nil
}

// ListCount 获取文档数量
func (r *documentRepository) ListCount(ctx context.Context) (int64, error) {
	var count int64
	err := r.dao.db.WithContext(ctx).
		Model(&model.Document{}).
		Where("is_deleted = ?", false).
		Count(&count).Error
	return count, err
}

// ListIDs 获取所有未删除文档的ID
func (r *documentRepository) ListIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.dao.db.WithContext(ctx).
		Model(&model.Document{}).
		Where("is_deleted = ?", false).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ListDeletedIDs 获取在截止时间之前标记删除的文档ID
func (r *documentRepository) ListDeletedIDs(ctx context.Context, cutoffTime int64) ([]int64, error) {
	var ids []int64
	cutoffTimeValue := timex.Time(time.UnixMilli(cutoffTime))
	err := r.dao.db.WithContext(ctx).
		Model(&model.Document{}).
		Where("is_deleted = ? AND updated_at < ?", true, cutoffTimeValue).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Purge 物理删除已标记删除的文档
func (r *documentRepository) Purge(ctx context.Context, id int64) error {
	return r.dao.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, true).
		Delete(&model.Document{}).Error
}

// 确保 documentRepository 实现了 domain.DocumentRepository 接口
var _ domain.DocumentRepository = (*documentRepository)(nil)
