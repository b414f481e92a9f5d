package model

import "github.com/Evraldi/realtime-texteditor-sub000/pkg/timex"

const TableNameDocumentVersion = "document_version"

// DocumentVersion mapped from table <document_version>
// Stats 与 Tags 以 JSON 文本存储
type DocumentVersion struct {
	ID                  int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id" form:"id"`
	DocumentID          int64      `gorm:"column:document_id;not null;index:idx_document_version,priority:1" json:"documentId" form:"documentId"`
	Version             int64      `gorm:"column:version;not null;index:idx_document_version,priority:2" json:"version" form:"version"`
	Content             string     `gorm:"column:content" json:"content" form:"content"`
	ContentHash         string     `gorm:"column:content_hash" json:"contentHash" form:"contentHash"`
	Stats               string     `gorm:"column:stats" json:"stats" form:"stats"`
	Description         string     `gorm:"column:description" json:"description" form:"description"`
	Tags                string     `gorm:"column:tags" json:"tags" form:"tags"`
	IsSignificant       bool       `gorm:"column:is_significant;default:false" json:"isSignificant" form:"isSignificant"`
	IsRestoration       bool       `gorm:"column:is_restoration;default:false" json:"isRestoration" form:"isRestoration"`
	RestoredFromVersion int64      `gorm:"column:restored_from_version;default:0" json:"restoredFromVersion" form:"restoredFromVersion"`
	CreatedByUID        int64      `gorm:"column:created_by_uid;not null" json:"createdByUid" form:"createdByUid"`
	CreatedAt           timex.Time `gorm:"column:created_at;type:datetime;default:NULL;autoCreateTime:false" json:"createdAt" form:"createdAt"`
}

// TableName DocumentVersion's table name
func (*DocumentVersion) TableName() string {
	return TableNameDocumentVersion
}
