package types

import "strings"

// TextBlock 页面上的一个可见文本块，带有排版位置。
// Vert 自上而下递增，Horiz 自左向右递增，两者仅用于阅读顺序排序。
type TextBlock struct {
	Vert  float64
	Horiz float64
	Text  string
}

// LinkAnnotation 页面上的一个链接注解。URI 为空表示注解没有携带目标地址。
type LinkAnnotation struct {
	URI string
}

// ExtractedDocument 一次上传解析出的全部文本行和超链接。
// Lines 按页内阅读顺序、页间文档顺序排列；Links 去重后保持首次出现顺序。
// 提取完成后不再修改。
type ExtractedDocument struct {
	Lines []string
	Links []string
}

// IsEmpty 判断文档是否没有任何可用内容
func (d *ExtractedDocument) IsEmpty() bool {
	return len(d.Lines) == 0 && len(d.Links) == 0
}

// JoinedText 返回空格拼接的全文（行在前，链接在后），作为LLM的输入
func (d *ExtractedDocument) JoinedText() string {
	parts := make([]string, 0, len(d.Lines)+len(d.Links))
	parts = append(parts, d.Lines...)
	parts = append(parts, d.Links...)
	return strings.Join(parts, " ")
}

// IdentityFields 从档案文本中启发式恢复出的身份信息。
// 任一字段无法解析时保留哨兵值（"Unknown" / "Not found"）。
type IdentityFields struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	ProfileURL string `json:"profile_url"`
}

// SuggestionRecord LLM点评解析后的固定结构。
// OverallScore 为回复中显式给出的总分；缺失时回退为 25 × 非空小节数。
// JSON字段名与前端约定保持一致（见 overallscore 小写无下划线的历史格式）。
type SuggestionRecord struct {
	OverallScore int    `json:"overallscore"`
	About        string `json:"about"`
	Experience   string `json:"experience"`
	Skills       string `json:"skills"`
	Completeness string `json:"completeness"`
}

// SectionCount 统计非空小节数量，用于总分回退规则
func (r *SuggestionRecord) SectionCount() int {
	count := 0
	for _, section := range []string{r.About, r.Experience, r.Skills, r.Completeness} {
		if section != "" {
			count++
		}
	}
	return count
}

// UploadResult 一次上传处理的完整结果：结构化点评 + 身份元数据
type UploadResult struct {
	Suggestions *SuggestionRecord `json:"suggestions"`
	Meta        IdentityFields    `json:"meta"`
}
