package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Evraldi/realtime-texteditor-sub000/internal/domain"
	"github.com/Evraldi/realtime-texteditor-sub000/internal/dto"
	"github.com/Evraldi/realtime-texteditor-sub000/pkg/code"
	"github.com/Evraldi/realtime-texteditor-sub000/pkg/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubVersionService 只关心 MaybeSnapshot 的测试替身
type stubVersionService struct {
	snapshotFn func(ctx context.Context, documentID int64, content string, actorUID int64) (*dto.VersionDTO, error)
	calls      int
}

func (s *stubVersionService) MaybeSnapshot(ctx context.Context, documentID int64, content string, actorUID int64) (*dto.VersionDTO, error) {
	s.calls++
	if s.snapshotFn == nil {
		return nil, nil
	}
	return s.snapshotFn(ctx, documentID, content, actorUID)
}

func (s *stubVersionService) Snapshot(context.Context, int64, int64, string) (*dto.VersionDTO, error) {
	return nil, nil
}

func (s *stubVersionService) Restore(context.Context, int64, int64, int64) (*dto.VersionDTO, error) {
	return nil, nil
}

func (s *stubVersionService) Compare(context.Context, int64, int64, int64) (*dto.VersionCompareDTO, error) {
	return nil, nil
}

func (s *stubVersionService) Tag(context.Context, int64, int64, *dto.VersionTagRequest) (*dto.VersionDTO, error) {
	return nil, nil
}

func (s *stubVersionService) List(context.Context, int64, int, int) ([]*dto.VersionDTO, int64, error) {
	return nil, 0, nil
}

func (s *stubVersionService) Get(context.Context, int64, int64) (*dto.VersionDTO, error) {
	return nil, nil
}

var _ VersionService = (*stubVersionService)(nil)

func newDocumentServiceForTest(docRepo *fakeDocumentRepo, versionService VersionService) DocumentService {
	return NewDocumentService(docRepo, versionService, zap.NewNop())
}

func TestDocumentService_CreateSnapshotsInitialContent(t *testing.T) {
	ctx := context.Background()
	docRepo := newFakeDocumentRepo()
	versionRepo := newFakeVersionRepo()
	versionService := newVersionServiceForTest(versionRepo, docRepo)
	svc := newDocumentServiceForTest(docRepo, versionService)

	doc, err := svc.Create(ctx, 7, &dto.DocumentCreateRequest{Title: "notes", Content: "hello"})
	require.NoError(t, err)

	assert.Equal(t, "notes", doc.Title)
	assert.Equal(t, "hello", doc.Content)
	assert.Equal(t, int64(7), doc.OwnerUID)
	assert.Equal(t, util.EncodeMD5("hello"), doc.ContentHash)

	// 初始内容直接生成版本 1
	v, err := versionService.Get(ctx, doc.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "hello", v.Content)
}

func TestDocumentService_CreateEmptyContentSkipsSnapshot(t *testing.T) {
	ctx := context.Background()
	docRepo := newFakeDocumentRepo()
	stub := &stubVersionService{}
	svc := newDocumentServiceForTest(docRepo, stub)

	_, err := svc.Create(ctx, 7, &dto.DocumentCreateRequest{Title: "empty"})
	require.NoError(t, err)
	assert.Equal(t, 0, stub.calls)
}

func TestDocumentService_SaveCreatesFirstVersion(t *testing.T) {
	ctx := context.Background()
	docRepo := newFakeDocumentRepo()
	versionRepo := newFakeVersionRepo()
	svc := newDocumentServiceForTest(docRepo, newVersionServiceForTest(versionRepo, docRepo))

	doc, err := docRepo.Create(ctx, &domain.Document{Title: "notes"})
	require.NoError(t, err)

	result, err := svc.Save(ctx, 7, doc.ID, "hello")
	require.NoError(t, err)

	assert.Equal(t, doc.ID, result.ID)
	assert.False(t, result.SavedAt.IsZero())
	assert.True(t, result.VersionCreated)
	assert.Equal(t, int64(1), result.Version)

	stored, err := docRepo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", stored.Content)
	assert.Equal(t, util.EncodeMD5("hello"), stored.ContentHash)
}

func TestDocumentService_SaveSucceedsWhenSnapshotFails(t *testing.T) {
	ctx := context.Background()
	docRepo := newFakeDocumentRepo()
	stub := &stubVersionService{
		snapshotFn: func(context.Context, int64, string, int64) (*dto.VersionDTO, error) {
			return nil, errors.New("version store unavailable")
		},
	}
	svc := newDocumentServiceForTest(docRepo, stub)

	doc, err := docRepo.Create(ctx, &domain.Document{Title: "notes"})
	require.NoError(t, err)

	// 版本历史是尽力而为的，快照失败不影响保存结果
	result, err := svc.Save(ctx, 7, doc.ID, "hello")
	require.NoError(t, err)
	assert.False(t, result.VersionCreated)

	stored, err := docRepo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", stored.Content)
}

func TestDocumentService_SaveUnknownDocument(t *testing.T) {
	ctx := context.Background()
	svc := newDocumentServiceForTest(newFakeDocumentRepo(), &stubVersionService{})

	_, err := svc.Save(ctx, 7, 99, "hello")
	assert.ErrorIs(t, err, code.ErrorDocumentNotFound)
}

func TestDocumentService_SaveFailureRetriesWithEmptyContent(t *testing.T) {
	ctx := context.Background()
	docRepo := newFakeDocumentRepo()
	svc := newDocumentServiceForTest(docRepo, &stubVersionService{})

	doc, err := docRepo.Create(ctx, &domain.Document{Title: "notes", Content: "old"})
	require.NoError(t, err)

	docRepo.failUpdateContent = 1
	docRepo.updateContentErr = errors.New("disk full")

	_, err = svc.Save(ctx, 7, doc.ID, "new content")
	require.Error(t, err)

	// 首次写入失败后用空内容重试一次
	require.Len(t, docRepo.updates, 2)
	assert.Equal(t, "new content", docRepo.updates[0].content)
	assert.Equal(t, "", docRepo.updates[1].content)
	assert.Equal(t, util.EncodeMD5(""), docRepo.updates[1].contentHash)
}

func TestDocumentService_GetNotFound(t *testing.T) {
	ctx := context.Background()
	svc := newDocumentServiceForTest(newFakeDocumentRepo(), &stubVersionService{})

	_, err := svc.Get(ctx, 99)
	assert.ErrorIs(t, err, code.ErrorDocumentNotFound)
}

func TestDocumentService_RenameAndDelete(t *testing.T) {
	ctx := context.Background()
	docRepo := newFakeDocumentRepo()
	svc := newDocumentServiceForTest(docRepo, &stubVersionService{})

	doc, err := docRepo.Create(ctx, &domain.Document{Title: "notes"})
	require.NoError(t, err)

	require.NoError(t, svc.Rename(ctx, doc.ID, "renamed"))
	stored, err := svc.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", stored.Title)

	require.NoError(t, svc.Delete(ctx, doc.ID))
	_, err = svc.Get(ctx, doc.ID)
	assert.ErrorIs(t, err, code.ErrorDocumentNotFound)
}

func TestDocumentService_List(t *testing.T) {
	ctx := context.Background()
	docRepo := newFakeDocumentRepo()
	svc := newDocumentServiceForTest(docRepo, &stubVersionService{})

	for _, title := range []string{"a", "b", "c"} {
		_, err := docRepo.Create(ctx, &domain.Document{Title: title})
		require.NoError(t, err)
	}

	list, total, err := svc.List(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, list, 3)
}
