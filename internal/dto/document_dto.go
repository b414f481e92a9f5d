package dto

import "github.com/Evraldi/realtime-texteditor-sub000/pkg/timex"

// DocumentCreateRequest Request parameters for creating a document
// 创建文档请求参数
type DocumentCreateRequest struct {
	Title   string `json:"title" form:"title" binding:"required" example:"Untitled"` // Document title // 文档标题
	Content string `json:"content" form:"content" example:"# Hello World"`           // Initial content // 初始内容
}

// DocumentSaveRequest Request parameters for saving document content
// 保存文档内容请求参数
type DocumentSaveRequest struct {
	Content string `json:"content" form:"content"` // Full document content // 文档完整内容
}

// DocumentTitleRequest Request parameters for renaming a document
// 重命名文档请求参数
type DocumentTitleRequest struct {
	Title string `json:"title" form:"title" binding:"required"` // New title // 新标题
}

// ---------------- DTO / Response ----------------

// DocumentDTO Document data transfer object
// DocumentDTO 文档数据传输对象
type DocumentDTO struct {
	ID          int64      `json:"id"`          // Document ID // 文档ID
	Title       string     `json:"title"`       // Document title // 文档标题
	Content     string     `json:"content"`     // Full content // 完整内容
	ContentHash string     `json:"contentHash"` // Content hash // 内容哈希
	OwnerUID    int64      `json:"ownerUid"`    // Owner user ID // 所有者用户ID
	Size        int64      `json:"size"`        // Content size in bytes // 内容字节大小
	UpdatedAt   timex.Time `json:"updatedAt"`   // Last updated time // 最后更新时间
	CreatedAt   timex.Time `json:"createdAt"`   // Created time // 创建时间
}

// DocumentListItemDTO Document list item without content
// DocumentListItemDTO 文档列表项，不带内容
type DocumentListItemDTO struct {
	ID        int64      `json:"id"`        // Document ID // 文档ID
	Title     string     `json:"title"`     // Document title // 文档标题
	OwnerUID  int64      `json:"ownerUid"`  // Owner user ID // 所有者用户ID
	Size      int64      `json:"size"`      // Content size in bytes // 内容字节大小
	UpdatedAt timex.Time `json:"updatedAt"` // Last updated time // 最后更新时间
	CreatedAt timex.Time `json:"createdAt"` // Created time // 创建时间
}

// DocumentSaveResultDTO Result of a document save
// DocumentSaveResultDTO 文档保存结果
type DocumentSaveResultDTO struct {
	ID             int64      `json:"id"`                // Document ID // 文档ID
	SavedAt        timex.Time `json:"savedAt"`           // Save time // 保存时间
	VersionCreated bool       `json:"versionCreated"`    // Whether a version snapshot was created // 是否生成了版本快照
	Version        int64      `json:"version,omitempty"` // Created version number // 生成的版本号
}
