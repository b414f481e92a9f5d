package diff

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/stretchr/testify/assert"
)

func TestComputeChanges_Identical(t *testing.T) {
	stats := ComputeChanges("hello\nworld", "hello\nworld")

	assert.Equal(t, 0, stats.AddedChars)
	assert.Equal(t, 0, stats.RemovedChars)
	assert.Equal(t, 0, stats.ModifiedChars)
	assert.Equal(t, 0, stats.AddedLines)
	assert.Equal(t, 0, stats.RemovedLines)
	assert.Equal(t, 0, stats.ModifiedLines)
	assert.Equal(t, 0, stats.AddedWords)
	assert.Equal(t, 0, stats.RemovedWords)
	assert.Equal(t, 0, stats.ModifiedWords)
	assert.Equal(t, 0, stats.ChangePercentage)
}

func TestComputeChanges_EmptyToContent(t *testing.T) {
	stats := ComputeChanges("", "hello")

	assert.Equal(t, 5, stats.AddedChars)
	assert.Equal(t, 0, stats.RemovedChars)
	assert.Equal(t, 1, stats.AddedWords)
	assert.Equal(t, 100, stats.ChangePercentage)
	assert.Equal(t, 0, stats.OldLength)
	assert.Equal(t, 5, stats.NewLength)
}

func TestComputeChanges_BothEmpty(t *testing.T) {
	stats := ComputeChanges("", "")

	assert.Equal(t, 0, stats.ChangePercentage)
	assert.Equal(t, 0, stats.AddedChars)
	assert.Equal(t, 0, stats.RemovedChars)
}

func TestComputeChanges_LineCounts(t *testing.T) {
	tests := []struct {
		name          string
		oldContent    string
		newContent    string
		addedLines    int
		removedLines  int
		modifiedLines int
	}{
		{
			name:       "append line",
			oldContent: "a\nb",
			newContent: "a\nb\nc",
			addedLines: 1,
		},
		{
			name:         "drop two lines",
			oldContent:   "a\nb\nc\nd",
			newContent:   "a\nb",
			removedLines: 2,
		},
		{
			name:          "modify middle line",
			oldContent:    "a\nb\nc",
			newContent:    "a\nX\nc",
			modifiedLines: 1,
		},
		{
			name:          "modify and append",
			oldContent:    "a\nb",
			newContent:    "a\nX\nc",
			addedLines:    1,
			modifiedLines: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := ComputeChanges(tt.oldContent, tt.newContent)
			assert.Equal(t, tt.addedLines, stats.AddedLines, "addedLines")
			assert.Equal(t, tt.removedLines, stats.RemovedLines, "removedLines")
			assert.Equal(t, tt.modifiedLines, stats.ModifiedLines, "modifiedLines")
		})
	}
}

// 等长替换时字符增删计数为零，这是刻意保留的启发式行为
func TestComputeChanges_EqualLengthReplacement(t *testing.T) {
	stats := ComputeChanges("abcd", "wxyz")

	assert.Equal(t, 0, stats.AddedChars)
	assert.Equal(t, 0, stats.RemovedChars)
	assert.Equal(t, 4, stats.ModifiedChars)
	assert.Equal(t, 0, stats.ChangePercentage)
}

func TestComputeChanges_WordCounts(t *testing.T) {
	stats := ComputeChanges("the quick fox", "the lazy fox jumps")

	assert.Equal(t, 1, stats.AddedWords)
	assert.Equal(t, 0, stats.RemovedWords)
	// "quick" -> "lazy" 按位置比较
	assert.Equal(t, 1, stats.ModifiedWords)
}

func TestComputeChanges_WhitespaceTokens(t *testing.T) {
	// 连续空白只分割一次，空 token 被丢弃
	stats := ComputeChanges("a  b\t c", "a b c")

	assert.Equal(t, 0, stats.AddedWords)
	assert.Equal(t, 0, stats.RemovedWords)
	assert.Equal(t, 0, stats.ModifiedWords)
}

// 只有单侧可以出现行的增或删，因为它来自单个长度差
func TestComputeChanges_SingleSidedLineSurplus(t *testing.T) {
	stats := ComputeChanges("a\nb\nc", "x\ny")

	assert.Equal(t, 0, stats.AddedLines)
	assert.Equal(t, 1, stats.RemovedLines)
	assert.Equal(t, 2, stats.ModifiedLines)
}

func TestGenerateChangeDescription(t *testing.T) {
	tests := []struct {
		name  string
		stats ChangeStats
		want  string
	}{
		{
			name:  "lines added only",
			stats: ChangeStats{AddedLines: 3},
			want:  "3 lines added",
		},
		{
			name:  "single line added",
			stats: ChangeStats{AddedLines: 1},
			want:  "1 line added",
		},
		{
			name:  "fixed clause order",
			stats: ChangeStats{AddedLines: 2, RemovedLines: 1, ModifiedLines: 4, AddedWords: 5, RemovedWords: 2},
			want:  "2 lines added, 1 line removed, 4 lines modified, 5 words added, 2 words removed",
		},
		{
			name:  "minor changes fallback",
			stats: ChangeStats{ChangePercentage: 7},
			want:  "minor text changes (7% changed)",
		},
		{
			name:  "no changes fallback",
			stats: ChangeStats{},
			want:  "no significant changes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateChangeDescription(tt.stats))
		})
	}
}

// 字符增删计数在参数交换下反对称
func TestProperty_CharCountAntisymmetry(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("addedChars(a,b) == removedChars(b,a)", prop.ForAll(
		func(a, b string) bool {
			ab := ComputeChanges(a, b)
			ba := ComputeChanges(b, a)
			return ab.AddedChars == ba.RemovedChars && ab.RemovedChars == ba.AddedChars
		},
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.Property("self comparison is all zero", prop.ForAll(
		func(a string) bool {
			s := ComputeChanges(a, a)
			return s.AddedChars == 0 && s.RemovedChars == 0 && s.ModifiedChars == 0 &&
				s.AddedLines == 0 && s.RemovedLines == 0 && s.ModifiedLines == 0 &&
				s.AddedWords == 0 && s.RemovedWords == 0 && s.ModifiedWords == 0 &&
				s.ChangePercentage == 0
		},
		gen.AnyString(),
	))

	properties.Property("only one side of line surplus is nonzero", prop.ForAll(
		func(a, b string) bool {
			s := ComputeChanges(a, b)
			return s.AddedLines == 0 || s.RemovedLines == 0
		},
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

func TestRender_ProducesDiffs(t *testing.T) {
	diffs := Render("hello world", "hello brave world")

	assert.NotEmpty(t, diffs)

	var rebuilt string
	for _, d := range diffs {
		if d.Type != diffmatchpatch.DiffDelete {
			rebuilt += d.Text
		}
	}
	assert.Equal(t, "hello brave world", rebuilt)
}
