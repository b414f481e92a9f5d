package service

import (
	"context"
	"errors"
	"strconv"

	"github.com/Evraldi/realtime-texteditor-sub000/internal/domain"
	"github.com/Evraldi/realtime-texteditor-sub000/internal/dto"
	"github.com/Evraldi/realtime-texteditor-sub000/pkg/code"
	"github.com/Evraldi/realtime-texteditor-sub000/pkg/logger"
	"github.com/Evraldi/realtime-texteditor-sub000/pkg/timex"
	"github.com/Evraldi/realtime-texteditor-sub000/pkg/util"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// DocumentService 定义文档业务服务接口
type DocumentService interface {
	// Create 创建文档
	Create(ctx context.Context, uid int64, params *dto.DocumentCreateRequest) (*dto.DocumentDTO, error)

	// Get 获取文档
	Get(ctx context.Context, id int64) (*dto.DocumentDTO, error)

	// List 分页获取文档列表
	List(ctx context.Context, page, pageSize int) ([]*dto.DocumentListItemDTO, int64, error)

	// Rename 重命名文档
	Rename(ctx context.Context, id int64, title string) error

	// Delete 删除文档（软删除）
	Delete(ctx context.Context, id int64) error

	// Save 持久化文档内容并按需生成版本快照
	// 两个连接并发保存时在存储层以最后写入者胜出解决
	Save(ctx context.Context, uid, id int64, content string) (*dto.DocumentSaveResultDTO, error)
}

// documentService 实现 DocumentService 接口
type documentService struct {
	docRepo        domain.DocumentRepository
	versionService VersionService
	logger         *zap.Logger

	// readGroup 合并同一文档的并发读取
	// 多个协作者同时加入文档时只落一条查询
	readGroup singleflight.Group
}

// NewDocumentService 创建 DocumentService 实例
func NewDocumentService(docRepo domain.DocumentRepository, versionService VersionService, lg *zap.Logger) DocumentService {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &documentService{
		docRepo:        docRepo,
		versionService: versionService,
		logger:         lg,
	}
}

// domainToDTO 将领域模型转换为 DTO
func (s *documentService) domainToDTO(doc *domain.Document) *dto.DocumentDTO {
	if doc == nil {
		return nil
	}
	return &dto.DocumentDTO{
		ID:          doc.ID,
		Title:       doc.Title,
		Content:     doc.Content,
		ContentHash: doc.ContentHash,
		OwnerUID:    doc.OwnerUID,
		Size:        doc.Size,
		UpdatedAt:   timex.Time(doc.UpdatedAt),
		CreatedAt:   timex.Time(doc.CreatedAt),
	}
}

// Create 创建文档
func (s *documentService) Create(ctx context.Context, uid int64, params *dto.DocumentCreateRequest) (*dto.DocumentDTO, error) {
	doc := &domain.Document{
		Title:       params.Title,
		Content:     params.Content,
		ContentHash: util.EncodeMD5(params.Content),
		OwnerUID:    uid,
	}

	created, err := s.docRepo.Create(ctx, doc)
	if err != nil {
		return nil, code.ErrorDocumentCreateFailed.WithDetails(err.Error())
	}

	// 初始内容非空时生成版本 1，失败不影响创建
	if created.Content != "" && s.versionService != nil {
		if _, err := s.versionService.MaybeSnapshot(ctx, created.ID, created.Content, uid); err != nil {
			s.logger.Warn("initial version snapshot failed",
				zap.Int64(logger.FieldDocumentID, created.ID),
				zap.Error(err),
			)
		}
	}

	return s.domainToDTO(created), nil
}

// Get 获取文档
func (s *documentService) Get(ctx context.Context, id int64) (*dto.DocumentDTO, error) {
	result, err, _ := s.readGroup.Do(strconv.FormatInt(id, 10), func() (interface{}, error) {
		doc, err := s.docRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, code.ErrorDocumentNotFound
			}
			return nil, code.ErrorDBQuery
		}
		return s.domainToDTO(doc), nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*dto.DocumentDTO), nil
}

// List 分页获取文档列表
func (s *documentService) List(ctx context.Context, page, pageSize int) ([]*dto.DocumentListItemDTO, int64, error) {
	count, err := s.docRepo.ListCount(ctx)
	if err != nil {
		return nil, 0, code.ErrorDocumentListFailed
	}

	docs, err := s.docRepo.List(ctx, page, pageSize)
	if err != nil {
		return nil, 0, code.ErrorDocumentListFailed
	}

	var results []*dto.DocumentListItemDTO
	for _, doc := range docs {
		results = append(results, &dto.DocumentListItemDTO{
			ID:        doc.ID,
			Title:     doc.Title,
			OwnerUID:  doc.OwnerUID,
			Size:      doc.Size,
			UpdatedAt: timex.Time(doc.UpdatedAt),
			CreatedAt: timex.Time(doc.CreatedAt),
		})
	}
	return results, count, nil
}

// Rename 重命名文档
func (s *documentService) Rename(ctx context.Context, id int64, title string) error {
	if _, err := s.docRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return code.ErrorDocumentNotFound
		}
		return code.ErrorDBQuery
	}
	if err := s.docRepo.UpdateTitle(ctx, title, id); err != nil {
		return code.ErrorDocumentSaveFailed.WithDetails(err.Error())
	}
	return nil
}

// Delete 删除文档（软删除）
func (s *documentService) Delete(ctx context.Context, id int64) error {
	if _, err := s.docRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return code.ErrorDocumentNotFound
		}
		return code.ErrorDBQuery
	}
	if err := s.docRepo.UpdateDelete(ctx, id); err != nil {
		return code.ErrorDocumentDeleteFailed.WithDetails(err.Error())
	}
	return nil
}

// Save 持久化文档内容并按需生成版本快照
// 快照是尽力而为的：快照失败不回滚保存，保存仍然向调用方报告成功
func (s *documentService) Save(ctx context.Context, uid, id int64, content string) (*dto.DocumentSaveResultDTO, error) {
	if _, err := s.docRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorDocumentNotFound
		}
		return nil, code.ErrorDBQuery
	}

	if err := s.docRepo.UpdateContent(ctx, content, util.EncodeMD5(content), id); err != nil {
		s.logger.Error("document content save failed",
			zap.Int64(logger.FieldDocumentID, id),
			zap.Int64(logger.FieldUID, uid),
			zap.Error(err),
		)
		if retryErr := s.retrySaveEmpty(ctx, id); retryErr != nil {
			s.logger.Error("empty-content fallback save failed",
				zap.Int64(logger.FieldDocumentID, id),
				zap.Error(retryErr),
			)
		}
		return nil, code.ErrorDocumentSaveFailed.WithDetails(err.Error())
	}

	result := &dto.DocumentSaveResultDTO{
		ID:      id,
		SavedAt: timex.Now(),
	}

	// 版本历史尽力而为，绝不阻塞内容保存
	if s.versionService != nil {
		version, err := s.versionService.MaybeSnapshot(ctx, id, content, uid)
		if err != nil {
			s.logger.Warn("version snapshot failed",
				zap.Int64(logger.FieldDocumentID, id),
				zap.Int64(logger.FieldUID, uid),
				zap.Error(err),
			)
		} else if version != nil {
			result.VersionCreated = true
			result.Version = version.Version
		}
	}

	return result, nil
}

// retrySaveEmpty 保存失败后的自愈回退：用空内容重试一次写入
// 避免存储层停留在半写状态
func (s *documentService) retrySaveEmpty(ctx context.Context, id int64) error {
	return s.docRepo.UpdateContent(ctx, "", util.EncodeMD5(""), id)
}

// 确保 documentService 实现了 DocumentService 接口
var _ DocumentService = (*documentService)(nil)
