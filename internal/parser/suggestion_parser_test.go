package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSuggestionReply = `Overall Score: 82/100

About:
Score: 8/10
Insight: The about section is concise but lacks impact metrics.
Suggestions:
- Suggestion 1: Add quantified achievements.
- Suggestion 2: Open with a value statement.
- Suggestion 3: Mention core technologies.

Experience:
Score: 7/10
Insight: Roles are listed without outcomes.
Suggestions:
- Suggestion 1: Use action verbs.
- Suggestion 2: Quantify results.
- Suggestion 3: Trim outdated roles.

Skills:
Score: 9/10
Insight: Good coverage of relevant skills.
Suggestions:
- Suggestion 1: Reorder by relevance.
- Suggestion 2: Remove generic entries.
- Suggestion 3: Add endorsements.

Completeness:
Score: 8/10
Insight: Profile is mostly complete.
Suggestions:
- Suggestion 1: Add a banner image.
- Suggestion 2: Fill the featured section.
- Suggestion 3: Request recommendations.
`

// TestParseSuggestionsFullReply 测试标准格式回复的完整解析
func TestParseSuggestionsFullReply(t *testing.T) {
	record := ParseSuggestions(sampleSuggestionReply)
	require.NotNil(t, record)

	assert.Equal(t, 82, record.OverallScore)
	assert.Contains(t, record.About, "Add quantified achievements")
	assert.Contains(t, record.Experience, "Use action verbs")
	assert.Contains(t, record.Skills, "Reorder by relevance")
	assert.Contains(t, record.Completeness, "Add a banner image")

	// 小节正文不应该串到别的小节里
	assert.NotContains(t, record.About, "Use action verbs")
	assert.NotContains(t, record.Skills, "banner image")
}

// TestParseSuggestionsScoreVariants 测试总分行的几种写法
func TestParseSuggestionsScoreVariants(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected int
	}{
		{"冒号加斜杠", "Overall Score: 75/100", 75},
		{"无斜杠", "Overall Score: 60", 60},
		{"大小写混合", "overall score 91", 91},
		{"行内有前缀", "Here is my overall score: 55/100", 55},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := ParseSuggestions(tt.raw)
			assert.Equal(t, tt.expected, record.OverallScore)
		})
	}
}

// TestParseSuggestionsExplicitZeroKept 显式给出的0分必须原样保留，不触发回退
func TestParseSuggestionsExplicitZeroKept(t *testing.T) {
	raw := `Overall Score: 0/100

About:
This section is empty.

Experience:
No experience listed.
`
	record := ParseSuggestions(raw)
	assert.Equal(t, 0, record.OverallScore)
	assert.NotEmpty(t, record.About)
	assert.NotEmpty(t, record.Experience)
}

// TestParseSuggestionsScoreFallback 总分缺失时按25×非空小节数回退
func TestParseSuggestionsScoreFallback(t *testing.T) {
	raw := `About:
Looks fine.

Skills:
Strong list.
`
	record := ParseSuggestions(raw)
	assert.Equal(t, 50, record.OverallScore)
	assert.Equal(t, 2, record.SectionCount())
}

// TestParseSuggestionsHeaderAliases Completeness小节接受Structure/Formatting别名
func TestParseSuggestionsHeaderAliases(t *testing.T) {
	for _, header := range []string{"Completeness:", "Structure:", "Formatting:"} {
		record := ParseSuggestions(header + "\nNeeds work.\n")
		assert.Contains(t, record.Completeness, "Needs work", "标题 %q 应归入Completeness", header)
	}
}

// TestParseSuggestionsUnstructuredInput 解析是全函数：任意输入都能得到记录
func TestParseSuggestionsUnstructuredInput(t *testing.T) {
	t.Run("完全无结构的文本", func(t *testing.T) {
		record := ParseSuggestions("模型这次没有按格式回复，只给了一段散文。")
		assert.Equal(t, 0, record.OverallScore)
		assert.Empty(t, record.About)
		assert.Empty(t, record.Experience)
	})

	t.Run("空字符串", func(t *testing.T) {
		record := ParseSuggestions("")
		assert.Equal(t, 0, record.OverallScore)
		assert.Equal(t, 0, record.SectionCount())
	})

	t.Run("小节标题前的散行被丢弃", func(t *testing.T) {
		raw := "这行没有归属\nAbout:\nGood summary.\n"
		record := ParseSuggestions(raw)
		assert.Contains(t, record.About, "Good summary")
		assert.NotContains(t, record.About, "没有归属")
	})
}

// TestParseSuggestionsRepeatedSection 同名小节再次出现时内容累加
func TestParseSuggestionsRepeatedSection(t *testing.T) {
	raw := `About:
First part.

About:
Second part.
`
	record := ParseSuggestions(raw)
	assert.Contains(t, record.About, "First part")
	assert.Contains(t, record.About, "Second part")
}
