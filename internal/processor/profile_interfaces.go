package processor

import (
	"context"
	"time"

	"profile-optimizer-go/internal/storage/models"
	"profile-optimizer-go/internal/types"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

//
// 文档提取相关接口
//

// DocumentExtractor 文档提取器接口
type DocumentExtractor interface {
	// Extract 从原始PDF字节中提取文本行与超链接
	Extract(ctx context.Context, data []byte) (*types.ExtractedDocument, error)
}

//
// LLM相关接口
//

// LLMModel 聊天补全模型接口 (符合 cloudwego/eino 规范)
type LLMModel interface {
	// Generate 同步生成一条回复
	Generate(ctx context.Context, messages []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

//
// 存储相关接口
//

// SubmissionStore 提交记录持久化接口
type SubmissionStore interface {
	// CreateSubmission 写入一条提交记录
	CreateSubmission(ctx context.Context, submission *models.ProfileSubmission) error

	// ListSubmissions 按提交时间倒序返回最近的提交记录
	ListSubmissions(ctx context.Context, limit int) ([]*models.ProfileSubmission, error)
}

// ObjectStore 原始文件归档接口
type ObjectStore interface {
	// UploadProfileFile 归档上传的原始PDF，返回对象键
	UploadProfileFile(ctx context.Context, submissionUUID string, data []byte, originalFilename string) (string, error)
}

// SuggestionCache 点评结果缓存接口
type SuggestionCache interface {
	// GetSuggestions 按全文MD5查缓存；未命中返回 storage.ErrNotFound
	GetSuggestions(ctx context.Context, textMD5 string) (*types.SuggestionRecord, error)

	// SetSuggestions 写入缓存，过期由实现方控制
	SetSuggestions(ctx context.Context, textMD5 string, record *types.SuggestionRecord, expiration time.Duration) error
}
