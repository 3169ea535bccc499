package parser

import (
	"regexp"
	"strconv"
	"strings"

	"profile-optimizer-go/internal/types"
)

// 模型回复的行级模式。总分行用搜索语义（短语不要求出现在行首），
// 小节标题则要求整行匹配：标题词后只允许冒号和空白。
var (
	overallScorePattern       = regexp.MustCompile(`(?i)overall score[:\s]*([0-9]{1,3})`)
	aboutHeaderPattern        = regexp.MustCompile(`(?i)^about[:\s]*$`)
	experienceHeaderPattern   = regexp.MustCompile(`(?i)^experience[:\s]*$`)
	skillsHeaderPattern       = regexp.MustCompile(`(?i)^skills[:\s]*$`)
	completenessHeaderPattern = regexp.MustCompile(`(?i)^(?:completeness|structure|formatting)[:\s]*$`)
)

// suggestionSection 状态机中"当前打开的小节"
type suggestionSection int

const (
	sectionNone suggestionSection = iota
	sectionAbout
	sectionExperience
	sectionSkills
	sectionCompleteness
)

// suggestionState 行状态机的可变状态：结果记录、当前小节及其缓冲行
type suggestionState struct {
	record    *types.SuggestionRecord
	current   suggestionSection
	buffer    []string
	scoreSeen bool
}

// flush 把缓冲行并入当前小节的累计文本：换行拼接、整体trim、补一个结尾换行
func (s *suggestionState) flush() {
	if s.current == sectionNone || len(s.buffer) == 0 {
		s.buffer = s.buffer[:0]
		return
	}
	text := strings.TrimSpace(strings.Join(s.buffer, "\n")) + "\n"
	switch s.current {
	case sectionAbout:
		s.record.About += text
	case sectionExperience:
		s.record.Experience += text
	case sectionSkills:
		s.record.Skills += text
	case sectionCompleteness:
		s.record.Completeness += text
	}
	s.buffer = s.buffer[:0]
}

// open 关闭上一小节并打开新小节
func (s *suggestionState) open(section suggestionSection) {
	s.flush()
	s.current = section
}

// ParseSuggestions 把模型的自由文本回复解析为固定结构的点评记录。
// 解析是全函数：任何输入都会得到一个（可能大部分为空的）SuggestionRecord，
// 不存在解析失败。没有打开小节时遇到的普通行直接丢弃。
func ParseSuggestions(raw string) *types.SuggestionRecord {
	state := &suggestionState{record: &types.SuggestionRecord{}}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if m := overallScorePattern.FindStringSubmatch(line); m != nil {
			state.flush()
			score, _ := strconv.Atoi(m[1])
			state.record.OverallScore = score
			state.scoreSeen = true
			state.current = sectionNone
			continue
		}

		switch {
		case aboutHeaderPattern.MatchString(line):
			state.open(sectionAbout)
		case experienceHeaderPattern.MatchString(line):
			state.open(sectionExperience)
		case skillsHeaderPattern.MatchString(line):
			state.open(sectionSkills)
		case completenessHeaderPattern.MatchString(line):
			state.open(sectionCompleteness)
		default:
			if state.current != sectionNone {
				state.buffer = append(state.buffer, line)
			}
		}
	}
	state.flush()

	// 模型没有给出总分时回退：25 × 非空小节数（至多4节，天然封顶100）。
	// 显式解析到的0分原样保留，不触发回退。
	if !state.scoreSeen {
		state.record.OverallScore = 25 * state.record.SectionCount()
	}

	return state.record
}
