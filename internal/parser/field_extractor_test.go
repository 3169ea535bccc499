package parser

import (
	"testing"

	"profile-optimizer-go/internal/constants"
	"profile-optimizer-go/internal/types"

	"github.com/stretchr/testify/assert"
)

// TestExtractName 测试姓名启发式：跳过栏目标题和单词行，取第一个像人名的行
func TestExtractName(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		expected string
	}{
		{
			name:     "栏目标题在前时跳过",
			lines:    []string{"Contact", "Top Skills", "Jane Doe", "Senior Engineer"},
			expected: "Jane Doe",
		},
		{
			name:     "单词行不作为姓名",
			lines:    []string{"Summary", "Jane", "John Smith"},
			expected: "John Smith",
		},
		{
			name:     "栏目标题大小写不敏感",
			lines:    []string{"EXPERIENCE", "top skills", "Wang Xiaoming"},
			expected: "Wang Xiaoming",
		},
		{
			name:     "没有候选行时返回哨兵值",
			lines:    []string{"Contact", "Education"},
			expected: constants.SentinelUnknown,
		},
		{
			name:     "空文档返回哨兵值",
			lines:    nil,
			expected: constants.SentinelUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractName(tt.lines))
		})
	}
}

// TestExtractEmail 测试邮箱提取：mailto链接优先，正文正则兜底
func TestExtractEmail(t *testing.T) {
	t.Run("mailto链接优先于正文", func(t *testing.T) {
		links := []string{"https://example.com", "mailto:jane@corp.io"}
		joined := "other@body.com 出现在正文里"
		assert.Equal(t, "jane@corp.io", extractEmail(links, joined))
	})

	t.Run("没有mailto时用正文正则", func(t *testing.T) {
		assert.Equal(t, "other@body.com", extractEmail(nil, "联系方式 other@body.com"))
	})

	t.Run("mailto值会去除前后空白", func(t *testing.T) {
		links := []string{"mailto: jane@corp.io "}
		assert.Equal(t, "jane@corp.io", extractEmail(links, ""))
	})

	t.Run("都没有时返回哨兵值", func(t *testing.T) {
		assert.Equal(t, constants.SentinelNotFound, extractEmail(nil, "没有邮箱的文本"))
	})
}

// TestExtractProfileURL 测试档案URL提取与规整
func TestExtractProfileURL(t *testing.T) {
	t.Run("链接注解优先", func(t *testing.T) {
		links := []string{"https://example.com", "https://www.linkedin.com/in/janedoe"}
		got := extractProfileURL(links, "")
		assert.Equal(t, "https://www.linkedin.com/in/janedoe", got)
	})

	t.Run("正文正则兜底", func(t *testing.T) {
		joined := "访问 https://linkedin.com/pub/john-smith/12 了解更多"
		got := extractProfileURL(nil, joined)
		assert.Equal(t, "https://linkedin.com/pub/john-smith/12", got)
	})

	t.Run("未找到返回哨兵值", func(t *testing.T) {
		assert.Equal(t, constants.SentinelNotFound, extractProfileURL(nil, "无链接"))
	})
}

// TestNormalizeProfileURL 测试URL规整：丢弃查询串和fragment
func TestNormalizeProfileURL(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{
			name:     "去掉跟踪参数",
			raw:      "https://www.linkedin.com/in/janedoe?trk=abc",
			expected: "https://www.linkedin.com/in/janedoe",
		},
		{
			name:     "无查询串时原样保留",
			raw:      "https://linkedin.com/in/janedoe",
			expected: "https://linkedin.com/in/janedoe",
		},
		{
			name:     "非档案域名不处理",
			raw:      "https://example.com/page?x=1",
			expected: "https://example.com/page?x=1",
		},
		{
			name:     "哨兵值原样通过",
			raw:      constants.SentinelNotFound,
			expected: constants.SentinelNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeProfileURL(tt.raw))
		})
	}
}

// TestExtractIdentity 测试三个字段的整体提取
func TestExtractIdentity(t *testing.T) {
	doc := &types.ExtractedDocument{
		Lines: []string{"Contact", "Jane Doe", "Senior Engineer at Corp"},
		Links: []string{"mailto:jane@corp.io", "https://www.linkedin.com/in/janedoe?trk=profile"},
	}

	identity := ExtractIdentity(doc)
	assert.Equal(t, "Jane Doe", identity.Name)
	assert.Equal(t, "jane@corp.io", identity.Email)
	assert.Equal(t, "https://www.linkedin.com/in/janedoe", identity.ProfileURL)
}
