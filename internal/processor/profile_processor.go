package processor

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"profile-optimizer-go/internal/constants"
	"profile-optimizer-go/internal/parser"
	"profile-optimizer-go/internal/storage"
	"profile-optimizer-go/internal/storage/models"
	"profile-optimizer-go/internal/types"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Components 聚合处理一次上传所需的全部依赖，便于集中管理和测试替换。
// Store/ObjectStore/Cache 允许为nil：对应能力降级为不持久化、不归档、不走缓存，
// 上传请求本身照常完成。
type Components struct {
	PDFExtractor DocumentExtractor
	ChatModel    LLMModel
	Store        SubmissionStore
	ObjectStore  ObjectStore
	Cache        SuggestionCache
}

// Settings 纯配置项，不包含任何业务逻辑组件
type Settings struct {
	CacheDuration time.Duration
	Logger        zerolog.Logger
}

// ProfileProcessor 档案处理流水线：提取 → 身份识别 → 点评生成 → 持久化
type ProfileProcessor struct {
	components Components
	settings   Settings
}

// NewProfileProcessor 创建档案处理器；PDFExtractor 与 ChatModel 是硬依赖
func NewProfileProcessor(components Components, settings Settings) (*ProfileProcessor, error) {
	if components.PDFExtractor == nil {
		return nil, errors.New("PDFExtractor 组件不能为空")
	}
	if components.ChatModel == nil {
		return nil, errors.New("ChatModel 组件不能为空")
	}
	if settings.CacheDuration <= 0 {
		settings.CacheDuration = constants.SuggestionCacheDuration
	}
	return &ProfileProcessor{components: components, settings: settings}, nil
}

// ProcessUpload 同步处理一次档案上传，返回结构化点评与身份元数据。
// 错误分两类：提取/点评失败使整个请求失败；持久化与归档失败只记日志，
// 用户已经拿到的结果不因存储问题丢掉。
func (p *ProfileProcessor) ProcessUpload(ctx context.Context, data []byte, filename string) (*types.UploadResult, error) {
	log := p.settings.Logger.With().Str("filename", filename).Logger()

	if len(data) == 0 {
		return nil, NewNoFileError("上传内容为空")
	}

	doc, err := p.components.PDFExtractor.Extract(ctx, data)
	if err != nil {
		return nil, NewDecodeError(filename, err.Error())
	}
	if doc.IsEmpty() {
		return nil, NewEmptyDocumentError(filename)
	}

	identity := parser.ExtractIdentity(doc)
	joined := doc.JoinedText()
	textMD5 := md5Hex(joined)
	log.Info().
		Str("name", identity.Name).
		Str("text_md5", textMD5).
		Int("lines", len(doc.Lines)).
		Msg("档案文本提取完成")

	record, cached := p.lookupCache(ctx, textMD5, log)
	if !cached {
		record, err = p.generateSuggestions(ctx, joined, filename)
		if err != nil {
			return nil, err
		}
		p.storeCache(ctx, textMD5, record, log)
	}

	p.persistSubmission(ctx, data, filename, joined, textMD5, identity, record, log)

	return &types.UploadResult{
		Suggestions: record,
		Meta:        identity,
	}, nil
}

// ListSubmissions 查询最近的提交记录；未配置持久化时返回 storage.ErrNotFound
func (p *ProfileProcessor) ListSubmissions(ctx context.Context, limit int) ([]*models.ProfileSubmission, error) {
	if p.components.Store == nil {
		return nil, storage.ErrNotFound
	}
	return p.components.Store.ListSubmissions(ctx, limit)
}

// generateSuggestions 调LLM生成点评并解析为固定结构
func (p *ProfileProcessor) generateSuggestions(ctx context.Context, joined string, filename string) (*types.SuggestionRecord, error) {
	messages := parser.BuildSuggestionMessages(joined)
	reply, err := p.components.ChatModel.Generate(ctx, messages)
	if err != nil {
		return nil, NewSuggestionError(filename, err.Error())
	}
	return parser.ParseSuggestions(reply.Content), nil
}

// lookupCache 查点评缓存；任何缓存错误都按未命中处理
func (p *ProfileProcessor) lookupCache(ctx context.Context, textMD5 string, log zerolog.Logger) (*types.SuggestionRecord, bool) {
	if p.components.Cache == nil {
		return nil, false
	}
	record, err := p.components.Cache.GetSuggestions(ctx, textMD5)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Warn().Err(err).Msg("查询点评缓存失败，按未命中处理")
		}
		return nil, false
	}
	log.Info().Str("text_md5", textMD5).Msg("命中点评缓存，跳过LLM调用")
	return record, true
}

func (p *ProfileProcessor) storeCache(ctx context.Context, textMD5 string, record *types.SuggestionRecord, log zerolog.Logger) {
	if p.components.Cache == nil {
		return
	}
	if err := p.components.Cache.SetSuggestions(ctx, textMD5, record, p.settings.CacheDuration); err != nil {
		log.Warn().Err(err).Msg("写入点评缓存失败")
	}
}

// persistSubmission 归档原始文件并落库提交记录。尽力而为：任一步失败只记日志。
func (p *ProfileProcessor) persistSubmission(ctx context.Context, data []byte, filename, joined, textMD5 string, identity types.IdentityFields, record *types.SuggestionRecord, log zerolog.Logger) {
	submissionUUID := uuid.NewString()

	objectPath := ""
	if p.components.ObjectStore != nil {
		path, err := p.components.ObjectStore.UploadProfileFile(ctx, submissionUUID, data, filename)
		if err != nil {
			log.Warn().Err(err).Str("submission_uuid", submissionUUID).Msg("归档原始PDF失败")
		} else {
			objectPath = path
		}
	}

	if p.components.Store == nil {
		return
	}

	suggestionsJSON, err := json.Marshal(record)
	if err != nil {
		log.Warn().Err(err).Msg("序列化点评结果失败，跳过落库")
		return
	}

	submission := &models.ProfileSubmission{
		SubmissionUUID:      submissionUUID,
		SubmissionTimestamp: time.Now(),
		OriginalFilename:    filename,
		OriginalFilePathOSS: objectPath,
		RawTextMD5:          textMD5,
		RawText:             joined,
		CandidateName:       identity.Name,
		CandidateEmail:      identity.Email,
		ProfileURL:          identity.ProfileURL,
		OverallScore:        record.OverallScore,
		SuggestionsJSON:     suggestionsJSON,
	}
	if err := p.components.Store.CreateSubmission(ctx, submission); err != nil {
		log.Warn().Err(err).Str("submission_uuid", submissionUUID).Msg("写入提交记录失败")
		return
	}
	log.Debug().Str("submission_uuid", submissionUUID).Msg("提交记录已落库")
}

func md5Hex(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}
