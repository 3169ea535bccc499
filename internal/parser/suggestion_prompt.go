package parser

import (
	"github.com/cloudwego/eino/schema"
)

// suggestionSystemPrompt 固定的点评指令，向模型描述期望的回复文法：
// 一行总分，随后About/Experience/Skills/Completeness四个小节，
// 每节包含小节分、一段洞察和三条建议。
const suggestionSystemPrompt = `You are a LinkedIn profile optimization expert.
Your job is to evaluate the uploaded PDF text (extracted from a LinkedIn profile) and return a detailed analysis.

Output format:
Overall Score: <score>/100

About:
Score: <score>/10
Insight: <two-liner>
Suggestions:
- Suggestion 1: <tip>
- Suggestion 2: <tip>
- Suggestion 3: <tip>

Experience:
Score: <score>/10
Insight: <two-liner>
Suggestions:
- Suggestion 1: <tip>
- Suggestion 2: <tip>
- Suggestion 3: <tip>

Skills:
Score: <score>/10
Insight: <two-liner>
Suggestions:
- Suggestion 1: <tip>
- Suggestion 2: <tip>
- Suggestion 3: <tip>

Completeness:
Score: <score>/10
Insight: <two-liner>
Suggestions:
- Suggestion 1: <tip>
- Suggestion 2: <tip>
- Suggestion 3: <tip>
`

// BuildSuggestionMessages 组装两条消息的补全请求：固定的系统指令 + 档案全文。
// 纯粹的请求塑形函数，不做任何解析；采样温度固定在模型客户端层。
func BuildSuggestionMessages(joinedText string) []*schema.Message {
	return []*schema.Message{
		schema.SystemMessage(suggestionSystemPrompt),
		schema.UserMessage(joinedText),
	}
}
