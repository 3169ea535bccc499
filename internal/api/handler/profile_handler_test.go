package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"testing"

	"profile-optimizer-go/internal/api/handler"
	"profile-optimizer-go/internal/api/router"
	"profile-optimizer-go/internal/config"
	"profile-optimizer-go/internal/processor"
	"profile-optimizer-go/internal/types"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubExtractor 测试用文档提取器
type stubExtractor struct {
	doc *types.ExtractedDocument
	err error
}

func (s *stubExtractor) Extract(ctx context.Context, data []byte) (*types.ExtractedDocument, error) {
	return s.doc, s.err
}

// stubLLM 测试用LLM
type stubLLM struct {
	reply string
	err   error
}

func (s *stubLLM) Generate(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.Message, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &schema.Message{Role: schema.Assistant, Content: s.reply}, nil
}

const stubReply = `Overall Score: 64/100

About:
Short but clear.
`

func newTestEngine(t *testing.T, extractor processor.DocumentExtractor, llm processor.LLMModel) *server.Hertz {
	t.Helper()

	p, err := processor.NewProfileProcessor(processor.Components{
		PDFExtractor: extractor,
		ChatModel:    llm,
	}, processor.Settings{Logger: zerolog.Nop()})
	require.NoError(t, err)

	h := server.New(server.WithHostPorts("127.0.0.1:0"))
	router.RegisterRoutes(h, handler.NewProfileHandler(&config.Config{}, p))
	return h
}

// buildUploadBody 组装multipart表单，文件放在pdf字段
func buildUploadBody(t *testing.T, fieldName, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(fieldName, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

// TestUploadProfileSuccess 正常上传返回结构化点评与身份元数据
func TestUploadProfileSuccess(t *testing.T) {
	engine := newTestEngine(t,
		&stubExtractor{doc: &types.ExtractedDocument{
			Lines: []string{"Jane Doe", "Engineer"},
			Links: []string{"mailto:jane@corp.io"},
		}},
		&stubLLM{reply: stubReply},
	)

	body, contentType := buildUploadBody(t, "pdf", "profile.pdf", []byte("%PDF-1.4 fake"))
	resp := ut.PerformRequest(engine.Engine, "POST", "/api/v1/profile/upload",
		&ut.Body{Body: body, Len: body.Len()},
		ut.Header{Key: "Content-Type", Value: contentType},
	)

	require.Equal(t, 200, resp.Code)

	var result types.UploadResult
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	assert.Equal(t, 64, result.Suggestions.OverallScore)
	assert.Equal(t, "Jane Doe", result.Meta.Name)
	assert.Equal(t, "jane@corp.io", result.Meta.Email)
}

// TestUploadProfileMissingFile 缺少pdf表单字段返回400
func TestUploadProfileMissingFile(t *testing.T) {
	engine := newTestEngine(t, &stubExtractor{}, &stubLLM{reply: stubReply})

	// 用错误的字段名上传
	body, contentType := buildUploadBody(t, "file", "profile.pdf", []byte("%PDF"))
	resp := ut.PerformRequest(engine.Engine, "POST", "/api/v1/profile/upload",
		&ut.Body{Body: body, Len: body.Len()},
		ut.Header{Key: "Content-Type", Value: contentType},
	)

	assert.Equal(t, 400, resp.Code)
}

// TestUploadProfileStatusMapping 流水线错误映射为对应状态码
func TestUploadProfileStatusMapping(t *testing.T) {
	t.Run("解码失败返回400", func(t *testing.T) {
		engine := newTestEngine(t,
			&stubExtractor{err: errors.New("不是PDF")},
			&stubLLM{reply: stubReply},
		)
		body, contentType := buildUploadBody(t, "pdf", "bad.pdf", []byte("garbage"))
		resp := ut.PerformRequest(engine.Engine, "POST", "/api/v1/profile/upload",
			&ut.Body{Body: body, Len: body.Len()},
			ut.Header{Key: "Content-Type", Value: contentType},
		)
		assert.Equal(t, 400, resp.Code)
	})

	t.Run("空文档返回400", func(t *testing.T) {
		engine := newTestEngine(t,
			&stubExtractor{doc: &types.ExtractedDocument{}},
			&stubLLM{reply: stubReply},
		)
		body, contentType := buildUploadBody(t, "pdf", "empty.pdf", []byte("%PDF"))
		resp := ut.PerformRequest(engine.Engine, "POST", "/api/v1/profile/upload",
			&ut.Body{Body: body, Len: body.Len()},
			ut.Header{Key: "Content-Type", Value: contentType},
		)
		assert.Equal(t, 400, resp.Code)
	})

	t.Run("LLM失败返回502", func(t *testing.T) {
		engine := newTestEngine(t,
			&stubExtractor{doc: &types.ExtractedDocument{Lines: []string{"Jane Doe x"}}},
			&stubLLM{err: errors.New("上游超时")},
		)
		body, contentType := buildUploadBody(t, "pdf", "profile.pdf", []byte("%PDF"))
		resp := ut.PerformRequest(engine.Engine, "POST", "/api/v1/profile/upload",
			&ut.Body{Body: body, Len: body.Len()},
			ut.Header{Key: "Content-Type", Value: contentType},
		)
		assert.Equal(t, 502, resp.Code)
	})
}

// TestListSubmissionsUnavailable 未配置持久化时返回503
func TestListSubmissionsUnavailable(t *testing.T) {
	engine := newTestEngine(t, &stubExtractor{}, &stubLLM{reply: stubReply})

	resp := ut.PerformRequest(engine.Engine, "GET", "/api/v1/submissions", nil)
	assert.Equal(t, 503, resp.Code)
}

// TestHealthEndpoints 探针接口
func TestHealthEndpoints(t *testing.T) {
	engine := newTestEngine(t, &stubExtractor{}, &stubLLM{reply: stubReply})

	resp := ut.PerformRequest(engine.Engine, "GET", "/api/v1/health", nil)
	assert.Equal(t, 200, resp.Code)

	resp = ut.PerformRequest(engine.Engine, "GET", "/", nil)
	assert.Equal(t, 200, resp.Code)
}
