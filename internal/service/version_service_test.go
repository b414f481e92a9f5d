package service

import (
	"context"
	"testing"
	"time"

	"github.com/Evraldi/realtime-texteditor-sub000/internal/domain"
	"github.com/Evraldi/realtime-texteditor-sub000/internal/dto"
	"github.com/Evraldi/realtime-texteditor-sub000/pkg/code"
	"github.com/Evraldi/realtime-texteditor-sub000/pkg/diff"
	"github.com/Evraldi/realtime-texteditor-sub000/pkg/util"
	"github.com/Evraldi/realtime-texteditor-sub000/pkg/writequeue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newVersionServiceForTest(versionRepo *fakeVersionRepo, docRepo *fakeDocumentRepo) VersionService {
	return NewVersionService(versionRepo, docRepo, nil, zap.NewNop(), VersionServiceConfig{
		Cooldown:        "60s",
		MinAddedChars:   10,
		MinRemovedChars: 10,
	})
}

func seedVersion(t *testing.T, repo *fakeVersionRepo, documentID, version int64, content string, age time.Duration) *domain.DocumentVersion {
	t.Helper()
	stats := diff.ComputeChanges("", content)
	v, err := repo.Create(context.Background(), &domain.DocumentVersion{
		DocumentID:  documentID,
		Version:     version,
		Content:     content,
		ContentHash: util.EncodeMD5(content),
		Stats:       &stats,
	})
	require.NoError(t, err)
	if age > 0 {
		repo.backdate(documentID, version, age)
	}
	return v
}

func TestVersionService_FirstSnapshotAlwaysCreatesVersionOne(t *testing.T) {
	ctx := context.Background()
	versionRepo := newFakeVersionRepo()
	svc := newVersionServiceForTest(versionRepo, newFakeDocumentRepo())

	v, err := svc.MaybeSnapshot(ctx, 1, "hello", 7)
	require.NoError(t, err)
	require.NotNil(t, v)

	assert.Equal(t, int64(1), v.Version)
	assert.Equal(t, int64(7), v.CreatedByUID)
	require.NotNil(t, v.Stats)
	assert.Equal(t, 5, v.Stats.AddedChars)
	assert.Equal(t, 0, v.Stats.RemovedChars)
}

func TestVersionService_UnchangedContentCreatesNothing(t *testing.T) {
	ctx := context.Background()
	versionRepo := newFakeVersionRepo()
	svc := newVersionServiceForTest(versionRepo, newFakeDocumentRepo())

	seedVersion(t, versionRepo, 1, 1, "hello", 2*time.Minute)

	v, err := svc.MaybeSnapshot(ctx, 1, "hello", 7)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestVersionService_CooldownSuppressesSnapshot(t *testing.T) {
	ctx := context.Background()
	versionRepo := newFakeVersionRepo()
	svc := newVersionServiceForTest(versionRepo, newFakeDocumentRepo())

	seedVersion(t, versionRepo, 1, 1, "hello", 0)

	// 刚刚生成过版本，冷却窗口内不再生成
	v, err := svc.MaybeSnapshot(ctx, 1, "hello world, now with much more text", 7)
	require.NoError(t, err)
	assert.Nil(t, v)

	// 冷却窗口过后同样的保存生成版本 2
	versionRepo.backdate(1, 1, 2*time.Minute)
	v, err = svc.MaybeSnapshot(ctx, 1, "hello world, now with much more text", 7)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, int64(2), v.Version)
}

func TestVersionService_VersionNumbersAreSequential(t *testing.T) {
	ctx := context.Background()
	versionRepo := newFakeVersionRepo()
	svc := newVersionServiceForTest(versionRepo, newFakeDocumentRepo())

	contents := []string{
		"first line",
		"first line\nsecond line",
		"first line\nsecond line\nthird line",
	}
	for i, content := range contents {
		v, err := svc.MaybeSnapshot(ctx, 1, content, 7)
		require.NoError(t, err)
		require.NotNil(t, v)
		assert.Equal(t, int64(i+1), v.Version)
		versionRepo.backdate(1, v.Version, 2*time.Minute)
	}
}

func TestVersionService_ManualSnapshotBypassesCooldown(t *testing.T) {
	ctx := context.Background()
	versionRepo := newFakeVersionRepo()
	docRepo := newFakeDocumentRepo()
	svc := newVersionServiceForTest(versionRepo, docRepo)

	doc, err := docRepo.Create(ctx, &domain.Document{Title: "notes", Content: "hello, tiny edit"})
	require.NoError(t, err)
	// 刚刚生成过版本，且改动微小
	seedVersion(t, versionRepo, doc.ID, 1, "hello", 0)

	v, err := svc.Snapshot(ctx, 7, doc.ID, "before refactor")
	require.NoError(t, err)
	require.NotNil(t, v)

	assert.Equal(t, int64(2), v.Version)
	assert.Equal(t, "before refactor", v.Description)
	assert.Equal(t, int64(7), v.CreatedByUID)
}

func TestVersionService_ManualSnapshotIdenticalContentReturnsLatest(t *testing.T) {
	ctx := context.Background()
	versionRepo := newFakeVersionRepo()
	docRepo := newFakeDocumentRepo()
	svc := newVersionServiceForTest(versionRepo, docRepo)

	doc, err := docRepo.Create(ctx, &domain.Document{Title: "notes", Content: "same text"})
	require.NoError(t, err)
	seedVersion(t, versionRepo, doc.ID, 1, "same text", time.Minute)

	v, err := svc.Snapshot(ctx, 7, doc.ID, "")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, int64(1), v.Version)

	_, total, err := svc.List(ctx, doc.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestVersionService_ManualSnapshotUnknownDocument(t *testing.T) {
	ctx := context.Background()
	svc := newVersionServiceForTest(newFakeVersionRepo(), newFakeDocumentRepo())

	_, err := svc.Snapshot(ctx, 7, 99, "")
	assert.ErrorIs(t, err, code.ErrorDocumentNotFound)
}

func TestVersionService_ManualSnapshotFirstVersionWithoutComment(t *testing.T) {
	ctx := context.Background()
	versionRepo := newFakeVersionRepo()
	docRepo := newFakeDocumentRepo()
	svc := newVersionServiceForTest(versionRepo, docRepo)

	doc, err := docRepo.Create(ctx, &domain.Document{Title: "notes", Content: "fresh content"})
	require.NoError(t, err)

	v, err := svc.Snapshot(ctx, 7, doc.ID, "")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, int64(1), v.Version)
	// 未提供描述时回退到自动生成的变更摘要
	assert.NotEmpty(t, v.Description)
}

func TestVersionService_RestoreCreatesRestorationVersion(t *testing.T) {
	ctx := context.Background()
	versionRepo := newFakeVersionRepo()
	docRepo := newFakeDocumentRepo()
	svc := newVersionServiceForTest(versionRepo, docRepo)

	doc, err := docRepo.Create(ctx, &domain.Document{Title: "notes", Content: "latest draft"})
	require.NoError(t, err)

	seedVersion(t, versionRepo, doc.ID, 1, "original draft", 10*time.Minute)
	seedVersion(t, versionRepo, doc.ID, 2, "latest draft", 0)

	// 恢复绕过冷却窗口，追加一个恢复版本而不改写历史
	restored, err := svc.Restore(ctx, 7, doc.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, restored)

	assert.Equal(t, int64(3), restored.Version)
	assert.True(t, restored.IsRestoration)
	assert.Equal(t, int64(1), restored.RestoredFromVersion)
	assert.Equal(t, "original draft", restored.Content)

	// 文档内容立即可见
	stored, err := docRepo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "original draft", stored.Content)

	// 历史保持完整，最新版本就是恢复版本
	latest, err := svc.Get(ctx, doc.ID, 3)
	require.NoError(t, err)
	assert.True(t, latest.IsRestoration)
	assert.Equal(t, "original draft", latest.Content)
}

func TestVersionService_RestoreToCurrentContentAddsNoVersion(t *testing.T) {
	ctx := context.Background()
	versionRepo := newFakeVersionRepo()
	docRepo := newFakeDocumentRepo()
	svc := newVersionServiceForTest(versionRepo, docRepo)

	doc, err := docRepo.Create(ctx, &domain.Document{Title: "notes", Content: "same text"})
	require.NoError(t, err)
	seedVersion(t, versionRepo, doc.ID, 1, "same text", time.Minute)

	restored, err := svc.Restore(ctx, 7, doc.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, restored)
	assert.Equal(t, int64(1), restored.Version)

	_, total, err := svc.List(ctx, doc.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestVersionService_RestoreUnknownVersion(t *testing.T) {
	ctx := context.Background()
	svc := newVersionServiceForTest(newFakeVersionRepo(), newFakeDocumentRepo())

	_, err := svc.Restore(ctx, 7, 1, 99)
	assert.ErrorIs(t, err, code.ErrorVersionNotFound)
}

func TestVersionService_Compare(t *testing.T) {
	ctx := context.Background()
	versionRepo := newFakeVersionRepo()
	svc := newVersionServiceForTest(versionRepo, newFakeDocumentRepo())

	seedVersion(t, versionRepo, 1, 1, "hello world", 2*time.Minute)
	seedVersion(t, versionRepo, 1, 2, "hello brave world", time.Minute)

	result, err := svc.Compare(ctx, 1, 1, 2)
	require.NoError(t, err)

	assert.Equal(t, int64(1), result.From)
	assert.Equal(t, int64(2), result.To)
	assert.Equal(t, 6, result.Stats.AddedChars)
	assert.NotEmpty(t, result.Description)

	var hasInsert bool
	for _, seg := range result.Segments {
		if seg.Op == "insert" {
			hasInsert = true
		}
	}
	assert.True(t, hasInsert)
}

func TestVersionService_CompareUnknownVersion(t *testing.T) {
	ctx := context.Background()
	versionRepo := newFakeVersionRepo()
	svc := newVersionServiceForTest(versionRepo, newFakeDocumentRepo())
	seedVersion(t, versionRepo, 1, 1, "hello", time.Minute)

	_, err := svc.Compare(ctx, 1, 1, 9)
	assert.ErrorIs(t, err, code.ErrorVersionNotFound)
}

func TestVersionService_TagUnionsTags(t *testing.T) {
	ctx := context.Background()
	versionRepo := newFakeVersionRepo()
	svc := newVersionServiceForTest(versionRepo, newFakeDocumentRepo())

	seeded := seedVersion(t, versionRepo, 1, 1, "hello", time.Minute)
	require.NoError(t, versionRepo.UpdateTagMetadata(ctx, []string{"draft"}, false, "", seeded.ID))

	tagged, err := svc.Tag(ctx, 1, 1, &dto.VersionTagRequest{
		Tags:          []string{"draft", "reviewed"},
		Comment:       "editorial pass",
		IsSignificant: true,
	})
	require.NoError(t, err)

	// 标签取并集，重复项只保留一份
	assert.Equal(t, []string{"draft", "reviewed"}, tagged.Tags)
	assert.True(t, tagged.IsSignificant)
	assert.Equal(t, "editorial pass", tagged.Description)

	stored, err := versionRepo.GetByID(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"draft", "reviewed"}, stored.Tags)
	assert.True(t, stored.IsSignificant)
	assert.Equal(t, "editorial pass", stored.Description)
}

func TestVersionService_TagSignificantMarkIsSticky(t *testing.T) {
	ctx := context.Background()
	versionRepo := newFakeVersionRepo()
	svc := newVersionServiceForTest(versionRepo, newFakeDocumentRepo())

	seeded := seedVersion(t, versionRepo, 1, 1, "hello", time.Minute)

	_, err := svc.Tag(ctx, 1, 1, &dto.VersionTagRequest{IsSignificant: true})
	require.NoError(t, err)

	// 后续未带重要标记的追加不会清除已有标记，内容与统计不受影响
	tagged, err := svc.Tag(ctx, 1, 1, &dto.VersionTagRequest{Tags: []string{"reviewed"}})
	require.NoError(t, err)
	assert.True(t, tagged.IsSignificant)

	stored, err := versionRepo.GetByID(ctx, seeded.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsSignificant)
	assert.Equal(t, "hello", stored.Content)
	assert.Equal(t, []string{"reviewed"}, stored.Tags)
}

func TestVersionService_ListOrderedByVersionDesc(t *testing.T) {
	ctx := context.Background()
	versionRepo := newFakeVersionRepo()
	svc := newVersionServiceForTest(versionRepo, newFakeDocumentRepo())

	seedVersion(t, versionRepo, 1, 1, "a", 3*time.Minute)
	seedVersion(t, versionRepo, 1, 2, "ab", 2*time.Minute)
	seedVersion(t, versionRepo, 1, 3, "abc", time.Minute)

	list, total, err := svc.List(ctx, 1, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, list, 2)
	assert.Equal(t, int64(3), list[0].Version)
	assert.Equal(t, int64(2), list[1].Version)
	// 列表不携带内容
	assert.Empty(t, list[0].Content)
}

func TestVersionService_GetUnknownVersion(t *testing.T) {
	ctx := context.Background()
	svc := newVersionServiceForTest(newFakeVersionRepo(), newFakeDocumentRepo())

	_, err := svc.Get(ctx, 1, 42)
	assert.ErrorIs(t, err, code.ErrorVersionNotFound)
}

func TestVersionService_WithWriteQueueExecutor(t *testing.T) {
	ctx := context.Background()
	versionRepo := newFakeVersionRepo()
	queue := writequeue.New(nil, zap.NewNop())
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = queue.Shutdown(shutdownCtx)
	}()

	svc := NewVersionService(versionRepo, newFakeDocumentRepo(), queue, zap.NewNop(), VersionServiceConfig{
		Cooldown:        "60s",
		MinAddedChars:   10,
		MinRemovedChars: 10,
	})

	v, err := svc.MaybeSnapshot(ctx, 1, "queued snapshot content", 7)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, int64(1), v.Version)
}
