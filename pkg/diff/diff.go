// Package diff computes change statistics between two content snapshots
// Package diff 计算两个内容快照之间的变更统计
//
// The counters are deliberately cheap heuristics rather than a real edit
// script: character counts come from the length delta, line and word
// modifications from positional comparison. Downstream version-significance
// decisions depend on these exact values, so the algorithm must stay stable.
// 这里的计数是刻意廉价的启发式而非真实编辑脚本：字符计数来自长度差，
// 行与词的修改数来自按位置比较。版本显著性判断依赖这些精确值，算法必须保持稳定。
package diff

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// ChangeStats 两个快照之间的变更统计，作为值类型嵌入版本记录
type ChangeStats struct {
	AddedChars    int `json:"addedChars"`
	RemovedChars  int `json:"removedChars"`
	ModifiedChars int `json:"modifiedChars"`

	AddedWords    int `json:"addedWords"`
	RemovedWords  int `json:"removedWords"`
	ModifiedWords int `json:"modifiedWords"`

	AddedLines    int `json:"addedLines"`
	RemovedLines  int `json:"removedLines"`
	ModifiedLines int `json:"modifiedLines"`

	// ChangePercentage 变更占比，四舍五入到整数百分比
	ChangePercentage int `json:"changePercentage"`

	OldLength    int `json:"oldLength"`
	NewLength    int `json:"newLength"`
	OldLineCount int `json:"oldLineCount"`
	NewLineCount int `json:"newLineCount"`
}

// ChangedLines returns the total number of lines touched in any way
// ChangedLines 返回以任何方式被改动的行数总和
func (s ChangeStats) ChangedLines() int {
	return s.AddedLines + s.RemovedLines + s.ModifiedLines
}

// ComputeChanges computes change statistics between two content snapshots
// ComputeChanges 计算两个内容快照之间的变更统计
//
// Character counts are a length-delta heuristic: an equal-length replacement
// yields zero added/removed chars even when content changed.
// 字符计数是长度差启发式：等长替换即使内容变了也会得到零增删字符。
func ComputeChanges(oldContent, newContent string) ChangeStats {
	stats := ChangeStats{}

	oldRunes := []rune(oldContent)
	newRunes := []rune(newContent)
	oldLen := len(oldRunes)
	newLen := len(newRunes)

	stats.OldLength = oldLen
	stats.NewLength = newLen

	// 字符：只看长度差
	if newLen > oldLen {
		stats.AddedChars = newLen - oldLen
	} else {
		stats.RemovedChars = oldLen - newLen
	}
	// 修改的字符按位置比较前 min(oldLen, newLen) 个
	minChars := oldLen
	if newLen < minChars {
		minChars = newLen
	}
	for i := 0; i < minChars; i++ {
		if oldRunes[i] != newRunes[i] {
			stats.ModifiedChars++
		}
	}

	// 行：前 min 行按位置比较，多出的一侧计入新增或删除
	oldLines := strings.Split(oldContent, "\n")
	newLines := strings.Split(newContent, "\n")
	stats.OldLineCount = len(oldLines)
	stats.NewLineCount = len(newLines)

	minLines := len(oldLines)
	if len(newLines) < minLines {
		minLines = len(newLines)
	}
	for i := 0; i < minLines; i++ {
		if oldLines[i] != newLines[i] {
			stats.ModifiedLines++
		}
	}
	if len(newLines) > len(oldLines) {
		stats.AddedLines = len(newLines) - len(oldLines)
	} else {
		stats.RemovedLines = len(oldLines) - len(newLines)
	}

	// 词：空白分割，丢弃空 token，同样的位置启发式
	oldWords := strings.Fields(oldContent)
	newWords := strings.Fields(newContent)
	if len(newWords) > len(oldWords) {
		stats.AddedWords = len(newWords) - len(oldWords)
	} else {
		stats.RemovedWords = len(oldWords) - len(newWords)
	}
	minWords := len(oldWords)
	if len(newWords) < minWords {
		minWords = len(newWords)
	}
	for i := 0; i < minWords; i++ {
		if oldWords[i] != newWords[i] {
			stats.ModifiedWords++
		}
	}

	// 变更占比：两个空串比较时分母取 1，得到 0
	denom := oldLen
	if newLen > denom {
		denom = newLen
	}
	if denom < 1 {
		denom = 1
	}
	stats.ChangePercentage = int(math.Round(100 * float64(stats.AddedChars+stats.RemovedChars) / float64(denom)))

	return stats
}

// GenerateChangeDescription builds a human-readable summary of the stats
// GenerateChangeDescription 生成变更统计的可读摘要
// Clauses appear in fixed order: lines added, lines removed, lines modified,
// words added, words removed.
// 片段按固定顺序拼接：行新增、行删除、行修改、词新增、词删除。
func GenerateChangeDescription(stats ChangeStats) string {
	var parts []string

	if stats.AddedLines > 0 {
		parts = append(parts, fmt.Sprintf("%d %s added", stats.AddedLines, plural("line", stats.AddedLines)))
	}
	if stats.RemovedLines > 0 {
		parts = append(parts, fmt.Sprintf("%d %s removed", stats.RemovedLines, plural("line", stats.RemovedLines)))
	}
	if stats.ModifiedLines > 0 {
		parts = append(parts, fmt.Sprintf("%d %s modified", stats.ModifiedLines, plural("line", stats.ModifiedLines)))
	}
	if stats.AddedWords > 0 {
		parts = append(parts, fmt.Sprintf("%d %s added", stats.AddedWords, plural("word", stats.AddedWords)))
	}
	if stats.RemovedWords > 0 {
		parts = append(parts, fmt.Sprintf("%d %s removed", stats.RemovedWords, plural("word", stats.RemovedWords)))
	}

	if len(parts) == 0 {
		if stats.ChangePercentage > 0 {
			return fmt.Sprintf("minor text changes (%d%% changed)", stats.ChangePercentage)
		}
		return "no significant changes"
	}

	return strings.Join(parts, ", ")
}

func plural(word string, n int) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// Render produces a detailed diff for display purposes, e.g. version compare
// Render 生成用于展示的详细 diff，例如版本比较
// The statistics above stay on the positional heuristic; the rendered diff is
// presentation only and never feeds significance decisions.
// 上面的统计保持位置启发式；渲染 diff 仅用于展示，不参与显著性判断。
func Render(oldContent, newContent string) []diffmatchpatch.Diff {
	dmp := diffmatchpatch.New()
	o := ensureValidUTF8(oldContent)
	n := ensureValidUTF8(newContent)
	diffs := dmp.DiffMain(o, n, false)
	return dmp.DiffCleanupSemantic(diffs)
}

// ensureValidUTF8 确保字符串是有效的 UTF-8 编码
func ensureValidUTF8(str string) string {
	if utf8.ValidString(str) {
		return str
	}
	return strings.ToValidUTF8(str, "")
}
