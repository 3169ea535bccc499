package parser

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"

	"profile-optimizer-go/internal/types"

	"github.com/dslipak/pdf"
)

// PageSource 已解码文档中的一页。
// 文本块带排版位置但不保证顺序，链接注解可能不携带URI。
type PageSource interface {
	TextBlocks() ([]types.TextBlock, error)
	Links() ([]types.LinkAnnotation, error)
}

// DocumentSource 已解码的PDF文档
type DocumentSource interface {
	PageCount() int
	Page(i int) PageSource // i 从0开始
}

// OpenPDFDocument 把原始字节解码为 DocumentSource。
// 解码失败是文档级错误，与单页处理失败区分开。
func OpenPDFDocument(data []byte) (DocumentSource, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	return &pdfDocument{reader: reader}, nil
}

type pdfDocument struct {
	reader *pdf.Reader
}

func (d *pdfDocument) PageCount() int {
	return d.reader.NumPage()
}

func (d *pdfDocument) Page(i int) PageSource {
	// dslipak/pdf 的页码从1开始
	return &pdfPage{page: d.reader.Page(i + 1)}
}

type pdfPage struct {
	page pdf.Page
}

// TextBlocks 把页面内容流中的字形段聚合成视觉行级文本块。
// 底层库在内容流损坏时会panic，这里转换为页级错误。
func (p *pdfPage) TextBlocks() (blocks []types.TextBlock, err error) {
	defer func() {
		if r := recover(); r != nil {
			blocks = nil
			err = fmt.Errorf("解析页面内容流失败: %v", r)
		}
	}()

	if p.page.V.IsNull() {
		return nil, fmt.Errorf("页面对象缺失")
	}

	content := p.page.Content()
	return groupTextBlocks(content.Text), nil
}

// Links 枚举页面的链接注解，提取其中的URI目标（可能为空）
func (p *pdfPage) Links() (links []types.LinkAnnotation, err error) {
	defer func() {
		if r := recover(); r != nil {
			links = nil
			err = fmt.Errorf("解析页面链接注解失败: %v", r)
		}
	}()

	annots := p.page.V.Key("Annots")
	if annots.Kind() != pdf.Array {
		return nil, nil
	}

	for i := 0; i < annots.Len(); i++ {
		annot := annots.Index(i)
		if annot.Key("Subtype").Name() != "Link" {
			continue
		}
		// URI动作才携带目标地址；其他动作（内部跳转等）URI为空
		uri := annot.Key("A").Key("URI").Text()
		links = append(links, types.LinkAnnotation{URI: uri})
	}
	return links, nil
}

// 同一视觉行允许的基线偏差(pt)
const blockLineTolerance = 2.0

// groupTextBlocks 把离散的字形段按基线聚合成行级文本块。
// PDF坐标系Y向上增大，这里统一换算为自上而下递增的Vert。
func groupTextBlocks(texts []pdf.Text) []types.TextBlock {
	if len(texts) == 0 {
		return nil
	}

	items := make([]pdf.Text, len(texts))
	copy(items, texts)
	sort.SliceStable(items, func(i, j int) bool {
		if math.Abs(items[i].Y-items[j].Y) > blockLineTolerance {
			return items[i].Y > items[j].Y // Y大的在页面上方
		}
		return items[i].X < items[j].X
	})

	var blocks []types.TextBlock
	var sb strings.Builder

	lineStart := items[0]
	lineEnd := items[0].X + items[0].W
	sb.WriteString(items[0].S)

	flush := func() {
		blocks = append(blocks, types.TextBlock{
			Vert:  -lineStart.Y,
			Horiz: lineStart.X,
			Text:  sb.String(),
		})
		sb.Reset()
	}

	for _, t := range items[1:] {
		if math.Abs(t.Y-lineStart.Y) > blockLineTolerance {
			flush()
			lineStart = t
			lineEnd = t.X + t.W
			sb.WriteString(t.S)
			continue
		}
		// 同一行内字形段之间有明显水平间距时补一个空格
		if t.X-lineEnd > wordGapThreshold(t.FontSize) &&
			!strings.HasSuffix(sb.String(), " ") && !strings.HasPrefix(t.S, " ") {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.S)
		lineEnd = t.X + t.W
	}
	flush()

	return blocks
}

func wordGapThreshold(fontSize float64) float64 {
	if fontSize <= 0 {
		return 1.0
	}
	return fontSize * 0.2
}
