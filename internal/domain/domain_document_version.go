package domain

import (
	"time"

	"github.com/Evraldi/realtime-texteditor-sub000/pkg/diff"
)

// DocumentVersion 文档版本领域模型
type DocumentVersion struct {
	ID                  int64
	DocumentID          int64
	Version             int64
	Content             string
	ContentHash         string
	Stats               *diff.ChangeStats
	Description         string
	Tags                []string
	IsSignificant       bool
	IsRestoration       bool
	RestoredFromVersion int64
	CreatedByUID        int64
	CreatedAt           time.Time
}

// HasTag 判断版本是否携带指定标签
func (v *DocumentVersion) HasTag(tag string) bool {
	for _, t := range v.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// AddTags 合并标签，重复标签只保留一份
func (v *DocumentVersion) AddTags(tags ...string) {
	for _, tag := range tags {
		if tag == "" || v.HasTag(tag) {
			continue
		}
		v.Tags = append(v.Tags, tag)
	}
}
