package domain

import "time"

// Document 文档领域模型
type Document struct {
	ID          int64
	Title       string
	Content     string
	ContentHash string
	OwnerUID    int64
	Size        int64
	IsDeleted   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsEmpty 判断文档内容是否为空
func (d *Document) IsEmpty() bool {
	return d.Content == ""
}
