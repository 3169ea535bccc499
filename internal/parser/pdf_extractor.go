package parser

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"profile-optimizer-go/internal/logger"
	"profile-optimizer-go/internal/types"

	"github.com/rs/zerolog"
)

// DocumentOpener 把原始字节解码为 DocumentSource，测试时可注入替身
type DocumentOpener func(data []byte) (DocumentSource, error)

// PDFDocumentExtractor 把一份PDF转换为按阅读顺序排列的文本行序列
// 和按首次出现顺序去重的超链接序列
type PDFDocumentExtractor struct {
	open   DocumentOpener
	logger zerolog.Logger
}

// PDFExtractorOption PDF提取器的配置选项
type PDFExtractorOption func(*PDFDocumentExtractor)

// WithDocumentOpener 替换文档解码入口（测试用）
func WithDocumentOpener(open DocumentOpener) PDFExtractorOption {
	return func(e *PDFDocumentExtractor) {
		if open != nil {
			e.open = open
		}
	}
}

// WithExtractorLogger 配置自定义日志记录器
func WithExtractorLogger(l zerolog.Logger) PDFExtractorOption {
	return func(e *PDFDocumentExtractor) {
		e.logger = l
	}
}

// NewPDFDocumentExtractor 初始化PDF文档提取器
func NewPDFDocumentExtractor(options ...PDFExtractorOption) *PDFDocumentExtractor {
	extractor := &PDFDocumentExtractor{
		open:   OpenPDFDocument,
		logger: logger.Logger,
	}
	for _, option := range options {
		option(extractor)
	}
	return extractor
}

// Extract 从原始PDF字节中提取文本行与超链接。
// 解码失败对整个请求是致命的；单页处理失败只跳过该页，后续页面照常处理。
func (e *PDFDocumentExtractor) Extract(ctx context.Context, data []byte) (*types.ExtractedDocument, error) {
	source, err := e.open(data)
	if err != nil {
		return nil, fmt.Errorf("无法解码PDF文档: %w", err)
	}

	doc := &types.ExtractedDocument{}
	seen := make(map[string]struct{})
	for i := 0; i < source.PageCount(); i++ {
		e.collectPage(source.Page(i), i+1, doc, seen)
	}

	e.logger.Debug().
		Int("lines", len(doc.Lines)).
		Int("links", len(doc.Links)).
		Msg("PDF提取完成")
	return doc, nil
}

// collectPage 处理单页：先收文本块，再收链接注解。
// 任一步出错只放弃该页的剩余处理。
func (e *PDFDocumentExtractor) collectPage(page PageSource, pageNum int, doc *types.ExtractedDocument, seen map[string]struct{}) {
	blocks, err := page.TextBlocks()
	if err != nil {
		e.logger.Warn().Int("page", pageNum).Err(err).Msg("读取页面文本块失败，跳过该页")
		return
	}

	// 近似自然阅读顺序：先上后下，同一视觉行内从左到右
	sort.SliceStable(blocks, func(i, j int) bool {
		if blocks[i].Vert != blocks[j].Vert {
			return blocks[i].Vert < blocks[j].Vert
		}
		return blocks[i].Horiz < blocks[j].Horiz
	})

	for _, block := range blocks {
		text := strings.TrimSpace(block.Text)
		if text == "" {
			continue
		}
		doc.Lines = append(doc.Lines, text)
	}

	links, err := page.Links()
	if err != nil {
		e.logger.Warn().Int("page", pageNum).Err(err).Msg("读取页面链接注解失败，跳过该页剩余处理")
		return
	}

	for _, link := range links {
		if link.URI == "" {
			continue
		}
		if _, dup := seen[link.URI]; dup {
			continue
		}
		seen[link.URI] = struct{}{}
		doc.Links = append(doc.Links, link.URI)
	}
}
