package model

import "github.com/Evraldi/realtime-texteditor-sub000/pkg/timex"

const TableNameDocument = "document"

// Document mapped from table <document>
type Document struct {
	ID          int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id" form:"id"`
	Title       string     `gorm:"column:title;not null" json:"title" form:"title"`
	Content     string     `gorm:"column:content" json:"content" form:"content"`
	ContentHash string     `gorm:"column:content_hash;index:idx_content_hash" json:"contentHash" form:"contentHash"`
	OwnerUID    int64      `gorm:"column:owner_uid;not null;index:idx_owner_uid" json:"ownerUid" form:"ownerUid"`
	Size        int64      `gorm:"column:size;default:0" json:"size" form:"size"`
	IsDeleted   bool       `gorm:"column:is_deleted;default:false" json:"isDeleted" form:"isDeleted"`
	CreatedAt   timex.Time `gorm:"column:created_at;type:datetime;default:NULL;autoCreateTime:false" json:"createdAt" form:"createdAt"`
	UpdatedAt   timex.Time `gorm:"column:updated_at;type:datetime;default:NULL;autoUpdateTime:false" json:"updatedAt" form:"updatedAt"`
}

// TableName Document's table name
func (*Document) TableName() string {
	return TableNameDocument
}
