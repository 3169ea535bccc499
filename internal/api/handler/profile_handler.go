package handler

import (
	"context"
	"errors"
	"io"
	"strconv"

	"profile-optimizer-go/internal/config"
	"profile-optimizer-go/internal/logger"
	"profile-optimizer-go/internal/processor"
	"profile-optimizer-go/internal/storage"
	"profile-optimizer-go/internal/tracing"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	uploadFormField   = "pdf"
	defaultListLimit  = 50
	maxListLimit      = 200
	maxUploadSizeByte = 20 << 20 // 20MB
)

var handlerTracer = otel.Tracer("profile-optimizer-go/api/handler")

// ProfileHandler 档案相关HTTP接口
type ProfileHandler struct {
	cfg       *config.Config
	processor *processor.ProfileProcessor
}

// NewProfileHandler 创建档案处理器
func NewProfileHandler(cfg *config.Config, profileProcessor *processor.ProfileProcessor) *ProfileHandler {
	return &ProfileHandler{
		cfg:       cfg,
		processor: profileProcessor,
	}
}

// UploadProfile 处理档案PDF上传，同步返回结构化点评
func (h *ProfileHandler) UploadProfile(c context.Context, ctx *app.RequestContext) {
	c, span := handlerTracer.Start(c, "ProfileHandler.UploadProfile")
	defer span.End()

	fileHeader, err := ctx.FormFile(uploadFormField)
	if err != nil {
		tracing.RecordHTTPError(span, processor.ErrNoFile, consts.StatusBadRequest)
		ctx.JSON(consts.StatusBadRequest, utils.H{"error": "未提供文件，请使用表单字段 pdf 上传"})
		return
	}
	if fileHeader.Size > maxUploadSizeByte {
		ctx.JSON(consts.StatusRequestEntityTooLarge, utils.H{"error": "文件超过大小限制"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		tracing.RecordHTTPError(span, err, consts.StatusInternalServerError)
		ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "打开上传文件失败"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		tracing.RecordHTTPError(span, err, consts.StatusInternalServerError)
		ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "读取上传文件失败"})
		return
	}

	span.SetAttributes(
		attribute.String("upload.filename", tracing.SafeAttributeValue("filename", fileHeader.Filename, tracing.DefaultMaxLength)),
		attribute.Int("upload.size", len(data)),
	)

	result, err := h.processor.ProcessUpload(c, data, fileHeader.Filename)
	if err != nil {
		status := statusForProcessError(err)
		tracing.RecordHTTPError(span, err, status)
		logger.Warn().Err(err).Str("filename", fileHeader.Filename).Msg("档案上传处理失败")
		ctx.JSON(status, utils.H{"error": err.Error()})
		return
	}

	ctx.JSON(consts.StatusOK, result)
}

// ListSubmissions 返回最近的提交记录，按提交时间倒序
func (h *ProfileHandler) ListSubmissions(c context.Context, ctx *app.RequestContext) {
	c, span := handlerTracer.Start(c, "ProfileHandler.ListSubmissions")
	defer span.End()

	limit := defaultListLimit
	if raw := ctx.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	submissions, err := h.processor.ListSubmissions(c, limit)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			ctx.JSON(consts.StatusServiceUnavailable, utils.H{"error": "提交记录存储未配置"})
			return
		}
		tracing.RecordHTTPError(span, err, consts.StatusInternalServerError)
		logger.Error().Err(err).Msg("查询提交记录失败")
		ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "查询提交记录失败"})
		return
	}

	ctx.JSON(consts.StatusOK, utils.H{
		"count":       len(submissions),
		"submissions": submissions,
	})
}

// statusForProcessError 把流水线错误映射为HTTP状态码。
// 客户端可纠正的问题（没给文件、给了坏文件、文件没内容）返回400，
// LLM侧失败返回502，其余按500处理。
func statusForProcessError(err error) int {
	switch {
	case errors.Is(err, processor.ErrNoFile),
		errors.Is(err, processor.ErrDocumentDecodeFailed),
		errors.Is(err, processor.ErrEmptyDocument):
		return consts.StatusBadRequest
	case errors.Is(err, processor.ErrSuggestionFailed):
		return consts.StatusBadGateway
	default:
		return consts.StatusInternalServerError
	}
}
