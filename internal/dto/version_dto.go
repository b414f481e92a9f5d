package dto

import (
	"github.com/Evraldi/realtime-texteditor-sub000/pkg/diff"
	"github.com/Evraldi/realtime-texteditor-sub000/pkg/timex"
)

// VersionRestoreRequest Request parameters for restoring a version
// 恢复版本请求参数
type VersionRestoreRequest struct {
	Version int64 `json:"version" form:"version" binding:"required" example:"3"` // Version number to restore // 要恢复的版本号
}

// VersionCreateRequest Request parameters for creating a version on demand
// 手动创建版本请求参数
type VersionCreateRequest struct {
	Comment string `json:"comment" form:"comment" example:"before refactor"` // Optional version description // 可选的版本描述
}

// VersionCompareRequest Request parameters for comparing two versions
// 比较两个版本请求参数
type VersionCompareRequest struct {
	From int64 `json:"from" form:"from" binding:"required" example:"1"` // Base version number // 基准版本号
	To   int64 `json:"to" form:"to" binding:"required" example:"2"`     // Target version number // 目标版本号
}

// VersionTagRequest Request parameters for tagging a version
// 标记版本请求参数
type VersionTagRequest struct {
	Tags          []string `json:"tags" form:"tags"`                   // Tags to add // 要添加的标签
	Comment       string   `json:"comment" form:"comment"`             // Optional comment // 可选评论
	IsSignificant bool     `json:"isSignificant" form:"isSignificant"` // Mark version as significant // 标记为重要版本
}

// ---------------- DTO / Response ----------------

// VersionDTO Document version data transfer object
// VersionDTO 文档版本数据传输对象
type VersionDTO struct {
	ID                  int64             `json:"id"`                            // Version record ID // 版本记录ID
	DocumentID          int64             `json:"documentId"`                    // Document ID // 文档ID
	Version             int64             `json:"version"`                       // Version number, starts at 1 // 版本号，从1开始
	Content             string            `json:"content,omitempty"`             // Version content // 版本内容
	ContentHash         string            `json:"contentHash"`                   // Content hash // 内容哈希
	Stats               *diff.ChangeStats `json:"stats,omitempty"`               // Change statistics // 变更统计
	Description         string            `json:"description"`                   // Generated change description // 生成的变更描述
	Tags                []string          `json:"tags,omitempty"`                // Version tags // 版本标签
	IsSignificant       bool              `json:"isSignificant"`                 // Marked significant by a user // 用户标记的重要版本
	IsRestoration       bool              `json:"isRestoration"`                 // Created by a restore // 由恢复操作产生
	RestoredFromVersion int64             `json:"restoredFromVersion,omitempty"` // Source version of the restore // 恢复来源版本号
	CreatedByUID        int64             `json:"createdByUid"`                  // Creator user ID // 创建者用户ID
	CreatedAt           timex.Time        `json:"createdAt"`                     // Created time // 创建时间
}

// DiffSegmentDTO one rendered diff segment
// DiffSegmentDTO 一个渲染后的差异片段
type DiffSegmentDTO struct {
	Op   string `json:"op" example:"insert"` // insert, delete or equal // 插入、删除或相同
	Text string `json:"text"`                // Segment text // 片段文本
}

// VersionCompareDTO Result of comparing two versions
// VersionCompareDTO 两个版本的比较结果
type VersionCompareDTO struct {
	DocumentID  int64            `json:"documentId"`  // Document ID // 文档ID
	From        int64            `json:"from"`        // Base version // 基准版本
	To          int64            `json:"to"`          // Target version // 目标版本
	Stats       diff.ChangeStats `json:"stats"`       // Change statistics // 变更统计
	Description string           `json:"description"` // Generated change description // 生成的变更描述
	Segments    []DiffSegmentDTO `json:"segments"`    // Rendered diff segments // 渲染后的差异片段
}
