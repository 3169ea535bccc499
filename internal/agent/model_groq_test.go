package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewGroqChatModelValidation 测试构造参数校验与默认值
func TestNewGroqChatModelValidation(t *testing.T) {
	t.Run("缺少API密钥时报错", func(t *testing.T) {
		_, err := NewGroqChatModel("", "", "")
		assert.Error(t, err)
	})

	t.Run("模型名与端点有默认值", func(t *testing.T) {
		m, err := NewGroqChatModel("test-key", "", "")
		require.NoError(t, err)
		assert.Equal(t, defaultGroqModelName, m.modelName)
		assert.Equal(t, defaultGroqAPIURL, m.apiURL)
		assert.Equal(t, defaultTemperature, m.temperature)
	})

	t.Run("选项覆盖默认温度", func(t *testing.T) {
		m, err := NewGroqChatModel("test-key", "", "", WithTemperature(0.3))
		require.NoError(t, err)
		assert.Equal(t, 0.3, m.temperature)
	})

	t.Run("超时选项不受选项顺序影响", func(t *testing.T) {
		custom := &http.Client{}
		m, err := NewGroqChatModel("test-key", "", "",
			WithRequestTimeout(7*time.Second),
			WithHTTPClient(custom),
		)
		require.NoError(t, err)
		assert.Same(t, custom, m.httpClient)
		assert.Equal(t, 7*time.Second, m.httpClient.Timeout)

		m, err = NewGroqChatModel("test-key", "", "",
			WithHTTPClient(&http.Client{}),
			WithRequestTimeout(7*time.Second),
		)
		require.NoError(t, err)
		assert.Equal(t, 7*time.Second, m.httpClient.Timeout)
	})
}

// TestGroqGenerate 测试补全请求的组装与响应解析
func TestGroqGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 校验请求头与请求体
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req openAIChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3-70b-8192", req.Model)
		assert.Equal(t, 0.7, req.Temperature)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, schema.System, req.Messages[0].Role)
		assert.Equal(t, schema.User, req.Messages[1].Role)

		content := "Overall Score: 80/100"
		resp := openAICompletionResponse{
			Id:     "cmpl-1",
			Object: "chat.completion",
			Model:  req.Model,
			Choices: []openAIChatChoice{
				{
					Index:        0,
					Message:      openAIMessage{Role: "assistant", Content: &content},
					FinishReason: "stop",
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	m, err := NewGroqChatModel("test-key", "llama3-70b-8192", server.URL)
	require.NoError(t, err)

	reply, err := m.Generate(context.Background(), []*schema.Message{
		schema.SystemMessage("system prompt"),
		schema.UserMessage("profile text"),
	})
	require.NoError(t, err)
	assert.Equal(t, schema.Assistant, reply.Role)
	assert.Equal(t, "Overall Score: 80/100", reply.Content)
}

// TestGroqGenerateErrors 测试非200响应与异常响应体的处理
func TestGroqGenerateErrors(t *testing.T) {
	t.Run("非200响应作为错误返回", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"rate limited"}`))
		}))
		defer server.Close()

		m, err := NewGroqChatModel("test-key", "", server.URL)
		require.NoError(t, err)

		_, err = m.Generate(context.Background(), []*schema.Message{schema.UserMessage("hi")})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "rate limited")
	})

	t.Run("空choices作为错误返回", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"cmpl-2","choices":[]}`))
		}))
		defer server.Close()

		m, err := NewGroqChatModel("test-key", "", server.URL)
		require.NoError(t, err)

		_, err = m.Generate(context.Background(), []*schema.Message{schema.UserMessage("hi")})
		assert.Error(t, err)
	})

	t.Run("上下文取消时请求中止", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer server.Close()

		m, err := NewGroqChatModel("test-key", "", server.URL)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = m.Generate(ctx, []*schema.Message{schema.UserMessage("hi")})
		assert.Error(t, err)
	})
}

// TestGroqStreamUnimplemented Stream接口未实现，调用应返回错误
func TestGroqStreamUnimplemented(t *testing.T) {
	m, err := NewGroqChatModel("test-key", "", "")
	require.NoError(t, err)

	_, err = m.Stream(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	assert.Error(t, err)
}
