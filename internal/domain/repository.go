// Package domain 定义领域模型和接口
package domain

import "context"

// UserRepository 用户仓储接口
type UserRepository interface {
	// GetByUID 根据UID获取用户
	GetByUID(ctx context.Context, uid int64) (*User, error)

	// GetByEmail 根据邮箱获取用户
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByUsername 根据用户名获取用户
	GetByUsername(ctx context.Context, username string) (*User, error)

	// Create 创建用户
	Create(ctx context.Context, user *User) (*User, error)

	// UpdatePassword 更新用户密码
	UpdatePassword(ctx context.Context, password string, uid int64) error

	// GetAllUIDs 获取所有用户UID
	GetAllUIDs(ctx context.Context) ([]int64, error)
}

// DocumentRepository 文档仓储接口
type DocumentRepository interface {
	// GetByID 根据ID获取文档
	GetByID(ctx context.Context, id int64) (*Document, error)

	// Create 创建文档
	Create(ctx context.Context, doc *Document) (*Document, error)

	// UpdateContent 更新文档内容（最后写入者胜出）
	UpdateContent(ctx context.Context, content, contentHash string, id int64) error

	// UpdateTitle 更新文档标题
	UpdateTitle(ctx context.Context, title string, id int64) error

	// UpdateDelete 更新文档为删除状态
	UpdateDelete(ctx context.Context, id int64) error

	// List 分页获取文档列表
	List(ctx context.Context, page, pageSize int) ([]*Document, error)

	// ListCount 获取文档数量
	ListCount(ctx context.Context) (int64, error)

	// ListIDs 获取所有未删除文档的ID
	ListIDs(ctx context.Context) ([]int64, error)

	// ListDeletedIDs 获取在截止时间之前标记删除的文档ID
	// cutoffTime: 截止时间戳（毫秒）
	ListDeletedIDs(ctx context.Context, cutoffTime int64) ([]int64, error)

	// Purge 物理删除已标记删除的文档
	Purge(ctx context.Context, id int64) error
}

// DocumentVersionRepository 文档版本仓储接口
type DocumentVersionRepository interface {
	// GetByID 根据ID获取版本记录
	GetByID(ctx context.Context, id int64) (*DocumentVersion, error)

	// GetByNumber 根据文档ID和版本号获取版本记录
	GetByNumber(ctx context.Context, documentID, version int64) (*DocumentVersion, error)

	// GetLatest 获取文档的最新版本记录
	GetLatest(ctx context.Context, documentID int64) (*DocumentVersion, error)

	// GetLatestNumber 获取文档的最新版本号，无版本时返回 0
	GetLatestNumber(ctx context.Context, documentID int64) (int64, error)

	// Create 创建版本记录
	Create(ctx context.Context, version *DocumentVersion) (*DocumentVersion, error)

	// UpdateTagMetadata 更新版本的附加元数据（标签、重要标记、描述）
	// 不触碰内容与变更统计
	UpdateTagMetadata(ctx context.Context, tags []string, isSignificant bool, description string, id int64) error

	// ListByDocumentID 分页获取文档的版本列表，按版本号倒序
	ListByDocumentID(ctx context.Context, documentID int64, page, pageSize int) ([]*DocumentVersion, int64, error)

	// DeleteOldVersions 删除旧版本记录，保留最近 keepVersions 个版本
	// cutoffTime: 截止时间戳（毫秒），删除早于此时间的记录
	DeleteOldVersions(ctx context.Context, documentID int64, cutoffTime int64, keepVersions int) (int64, error)

	// Delete 删除指定ID的版本记录
	Delete(ctx context.Context, id int64) error

	// DeleteByDocumentID 删除文档的全部版本记录
	DeleteByDocumentID(ctx context.Context, documentID int64) (int64, error)
}
