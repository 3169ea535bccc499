package parser

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"profile-optimizer-go/internal/constants"
	"profile-optimizer-go/internal/types"
)

const (
	mailtoPrefix = "mailto:"
	profileHost  = "linkedin.com"
)

// nameStoplist 档案导出中的固定栏目标题，整行命中时不可能是姓名
var nameStoplist = map[string]struct{}{
	"contact":        {},
	"top skills":     {},
	"experience":     {},
	"education":      {},
	"summary":        {},
	"certifications": {},
	"languages":      {},
	"projects":       {},
	"publications":   {},
}

var (
	// emailPattern 正文中邮箱地址的兜底匹配；链接注解里的mailto优先
	emailPattern = regexp.MustCompile(`(?i)(?:mailto:)?([a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,})`)

	// profileURLPattern 正文中档案URL的兜底匹配
	profileURLPattern = regexp.MustCompile(`(?i)https?://(?:www\.)?linkedin\.com/(?:in|pub|profile)/[a-zA-Z0-9\-_/]+(?:\?[^\s]*)?`)
)

// profileLinkMarkers 链接注解中可直接认定为档案地址的路径特征
var profileLinkMarkers = []string{"linkedin.com/in/", "linkedin.com/pub/"}

// ExtractIdentity 从提取结果中启发式恢复姓名、邮箱与档案URL。
// 每个字段按策略链依次尝试，第一个命中的策略生效；全部失败时返回哨兵值。
// 链接注解优先于正文正则：内嵌的mailto/档案超链接在结构上无歧义，
// 正文匹配则可能误报，仅作为信息以纯文本形式出现时的兜底。
func ExtractIdentity(doc *types.ExtractedDocument) types.IdentityFields {
	joined := doc.JoinedText()
	return types.IdentityFields{
		Name:       extractName(doc.Lines),
		Email:      extractEmail(doc.Links, joined),
		ProfileURL: normalizeProfileURL(extractProfileURL(doc.Links, joined)),
	}
}

// extractName 选取第一行至少两个词、且整行不等于栏目标题的文本作为姓名
func extractName(lines []string) string {
	for _, line := range lines {
		if len(strings.Fields(line)) < 2 {
			continue
		}
		if _, stop := nameStoplist[strings.ToLower(line)]; stop {
			continue
		}
		return line
	}
	return constants.SentinelUnknown
}

func extractEmail(links []string, joined string) string {
	for _, link := range links {
		if strings.Contains(link, mailtoPrefix) {
			return strings.TrimSpace(strings.ReplaceAll(link, mailtoPrefix, ""))
		}
	}
	if m := emailPattern.FindStringSubmatch(joined); m != nil {
		return m[1]
	}
	return constants.SentinelNotFound
}

func extractProfileURL(links []string, joined string) string {
	for _, link := range links {
		for _, marker := range profileLinkMarkers {
			if strings.Contains(link, marker) {
				return strings.TrimSpace(link)
			}
		}
	}
	if m := profileURLPattern.FindString(joined); m != "" {
		return m
	}
	return constants.SentinelNotFound
}

// normalizeProfileURL 把档案URL规整为 scheme://host/path，
// 丢弃查询串和fragment。链接注解来源的值同样适用。
func normalizeProfileURL(raw string) string {
	if !strings.Contains(raw, profileHost) {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return fmt.Sprintf("%s://%s%s", u.Scheme, u.Host, u.Path)
}
