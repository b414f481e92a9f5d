package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Evraldi/realtime-texteditor-sub000/internal/domain"

	"gorm.io/gorm"
)

// ---------------- in-memory user repository ----------------

type fakeUserRepo struct {
	mu      sync.Mutex
	users   map[int64]*domain.User
	nextUID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*domain.User)}
}

func (r *fakeUserRepo) GetByUID(_ context.Context, uid int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[uid]
	if !ok || u.IsDeleted {
		return nil, gorm.ErrRecordNotFound
	}
	c := *u
	return &c, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email && !u.IsDeleted {
			c := *u
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username && !u.IsDeleted {
			c := *u
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextUID++
	c := *user
	c.UID = r.nextUID
	r.users[c.UID] = &c
	out := c
	return &out, nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, password string, uid int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[uid]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Password = password
	return nil
}

func (r *fakeUserRepo) GetAllUIDs(_ context.Context) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var uids []int64
	for uid := range r.users {
		uids = append(uids, uid)
	}
	return uids, nil
}

var _ domain.UserRepository = (*fakeUserRepo)(nil)

// ---------------- in-memory document repository ----------------

type contentUpdate struct {
	content     string
	contentHash string
	id          int64
}

type fakeDocumentRepo struct {
	mu     sync.Mutex
	docs   map[int64]*domain.Document
	nextID int64

	// failUpdateContent makes the next N UpdateContent calls fail
	failUpdateContent int
	updateContentErr  error
	updates           []contentUpdate
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{docs: make(map[int64]*domain.Document)}
}

func (r *fakeDocumentRepo) GetByID(_ context.Context, id int64) (*domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[id]
	if !ok || d.IsDeleted {
		return nil, gorm.ErrRecordNotFound
	}
	c := *d
	return &c, nil
}

func (r *fakeDocumentRepo) Create(_ context.Context, doc *domain.Document) (*domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c := *doc
	c.ID = r.nextID
	c.Size = int64(len(c.Content))
	r.docs[c.ID] = &c
	out := c
	return &out, nil
}

func (r *fakeDocumentRepo) UpdateContent(_ context.Context, content, contentHash string, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, contentUpdate{content: content, contentHash: contentHash, id: id})
	if r.failUpdateContent > 0 {
		r.failUpdateContent--
		return r.updateContentErr
	}
	d, ok := r.docs[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	d.Content = content
	d.ContentHash = contentHash
	d.Size = int64(len(content))
	return nil
}

func (r *fakeDocumentRepo) UpdateTitle(_ context.Context, title string, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	d.Title = title
	return nil
}

func (r *fakeDocumentRepo) UpdateDelete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	d.IsDeleted = true
	return nil
}

func (r *fakeDocumentRepo) List(_ context.Context, page, pageSize int) ([]*domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var docs []*domain.Document
	for _, d := range r.docs {
		if !d.IsDeleted {
			c := *d
			docs = append(docs, &c)
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

func (r *fakeDocumentRepo) ListCount(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, d := range r.docs {
		if !d.IsDeleted {
			count++
		}
	}
	return count, nil
}

func (r *fakeDocumentRepo) ListIDs(_ context.Context) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []int64
	for id, d := range r.docs {
		if !d.IsDeleted {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *fakeDocumentRepo) ListDeletedIDs(_ context.Context, cutoffTime int64) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []int64
	for id, d := range r.docs {
		if d.IsDeleted && d.UpdatedAt.UnixMilli() < cutoffTime {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *fakeDocumentRepo) Purge(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[id]
	if !ok || !d.IsDeleted {
		return nil
	}
	delete(r.docs, id)
	return nil
}

var _ domain.DocumentRepository = (*fakeDocumentRepo)(nil)

// ---------------- in-memory version repository ----------------

type fakeVersionRepo struct {
	mu        sync.Mutex
	versions  []*domain.DocumentVersion
	nextID    int64
	createErr error
}

func newFakeVersionRepo() *fakeVersionRepo {
	return &fakeVersionRepo{}
}

func (r *fakeVersionRepo) GetByID(_ context.Context, id int64) (*domain.DocumentVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.versions {
		if v.ID == id {
			c := *v
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeVersionRepo) GetByNumber(_ context.Context, documentID, version int64) (*domain.DocumentVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.versions {
		if v.DocumentID == documentID && v.Version == version {
			c := *v
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeVersionRepo) GetLatest(_ context.Context, documentID int64) (*domain.DocumentVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *domain.DocumentVersion
	for _, v := range r.versions {
		if v.DocumentID != documentID {
			continue
		}
		if latest == nil || v.Version > latest.Version {
			latest = v
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	c := *latest
	return &c, nil
}

func (r *fakeVersionRepo) GetLatestNumber(ctx context.Context, documentID int64) (int64, error) {
	v, err := r.GetLatest(ctx, documentID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, err
	}
	return v.Version, nil
}

func (r *fakeVersionRepo) Create(_ context.Context, version *domain.DocumentVersion) (*domain.DocumentVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.nextID++
	c := *version
	c.ID = r.nextID
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	r.versions = append(r.versions, &c)
	out := c
	return &out, nil
}

func (r *fakeVersionRepo) UpdateTagMetadata(_ context.Context, tags []string, isSignificant bool, description string, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.versions {
		if v.ID == id {
			v.Tags = append([]string(nil), tags...)
			v.IsSignificant = isSignificant
			v.Description = description
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeVersionRepo) ListByDocumentID(_ context.Context, documentID int64, page, pageSize int) ([]*domain.DocumentVersion, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*domain.DocumentVersion
	for _, v := range r.versions {
		if v.DocumentID == documentID {
			c := *v
			list = append(list, &c)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Version > list[j].Version })
	total := int64(len(list))
	offset := (page - 1) * pageSize
	if offset < 0 {
		offset = 0
	}
	if offset >= len(list) {
		return nil, total, nil
	}
	end := offset + pageSize
	if end > len(list) {
		end = len(list)
	}
	return list[offset:end], total, nil
}

func (r *fakeVersionRepo) DeleteOldVersions(_ context.Context, documentID int64, cutoffTime int64, keepVersions int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var docVersions []*domain.DocumentVersion
	for _, v := range r.versions {
		if v.DocumentID == documentID {
			docVersions = append(docVersions, v)
		}
	}
	sort.Slice(docVersions, func(i, j int) bool { return docVersions[i].Version > docVersions[j].Version })

	var minKeepVersion int64
	if keepVersions > 0 && len(docVersions) > 0 {
		idx := keepVersions
		if idx > len(docVersions) {
			idx = len(docVersions)
		}
		minKeepVersion = docVersions[idx-1].Version
	}

	var kept []*domain.DocumentVersion
	var removed int64
	for _, v := range r.versions {
		if v.DocumentID == documentID &&
			v.CreatedAt.UnixMilli() < cutoffTime &&
			(minKeepVersion == 0 || v.Version < minKeepVersion) {
			removed++
			continue
		}
		kept = append(kept, v)
	}
	r.versions = kept
	return removed, nil
}

func (r *fakeVersionRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, v := range r.versions {
		if v.ID == id {
			r.versions = append(r.versions[:i], r.versions[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeVersionRepo) DeleteByDocumentID(_ context.Context, documentID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*domain.DocumentVersion
	var removed int64
	for _, v := range r.versions {
		if v.DocumentID == documentID {
			removed++
			continue
		}
		kept = append(kept, v)
	}
	r.versions = kept
	return removed, nil
}

// backdate 将指定版本的创建时间前移，用于冷却窗口测试
func (r *fakeVersionRepo) backdate(documentID, version int64, delta time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.versions {
		if v.DocumentID == documentID && v.Version == version {
			v.CreatedAt = v.CreatedAt.Add(-delta)
		}
	}
}

var _ domain.DocumentVersionRepository = (*fakeVersionRepo)(nil)
