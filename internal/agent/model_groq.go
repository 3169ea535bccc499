package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"profile-optimizer-go/internal/logger"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

const (
	// Groq的OpenAI兼容补全接口
	defaultGroqAPIURL    = "https://api.groq.com/openai/v1/chat/completions"
	defaultGroqModelName = "llama3-70b-8192"

	// 采样温度固定为中等值，点评结果不要求确定性
	defaultTemperature = 0.7
)

// GroqChatModel 实现 model.ChatModel 接口，用于与Groq托管的模型交互。
// API密钥和端点通过构造函数注入，不依赖进程级全局状态。
type GroqChatModel struct {
	apiKey         string
	modelName      string
	apiURL         string
	temperature    float64
	httpClient     *http.Client
	requestTimeout time.Duration
}

// GroqOption GroqChatModel的配置选项
type GroqOption func(*GroqChatModel)

// WithHTTPClient 替换HTTP客户端（测试或自定义超时用）
func WithHTTPClient(client *http.Client) GroqOption {
	return func(g *GroqChatModel) {
		if client != nil {
			g.httpClient = client
		}
	}
}

// WithTemperature 覆盖默认采样温度
func WithTemperature(temperature float64) GroqOption {
	return func(g *GroqChatModel) {
		if temperature > 0 {
			g.temperature = temperature
		}
	}
}

// WithRequestTimeout 设置单次补全调用的HTTP超时。
// 超时在所有选项应用完之后才写入客户端，与 WithHTTPClient 的先后顺序无关。
func WithRequestTimeout(timeout time.Duration) GroqOption {
	return func(g *GroqChatModel) {
		if timeout > 0 {
			g.requestTimeout = timeout
		}
	}
}

// NewGroqChatModel 创建一个新的 GroqChatModel 实例
func NewGroqChatModel(apiKey string, modelName string, apiURL string, options ...GroqOption) (*GroqChatModel, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("API 密钥不能为空")
	}

	mn := modelName
	if strings.TrimSpace(mn) == "" {
		mn = defaultGroqModelName
	}

	url := apiURL
	if strings.TrimSpace(url) == "" {
		url = defaultGroqAPIURL
	}

	g := &GroqChatModel{
		apiKey:      apiKey,
		modelName:   mn,
		apiURL:      url,
		temperature: defaultTemperature,
		httpClient:  &http.Client{},
	}
	for _, option := range options {
		option(g)
	}
	if g.requestTimeout > 0 {
		g.httpClient.Timeout = g.requestTimeout
	}

	logger.Info().Str("api_url", g.apiURL).Str("model", g.modelName).Msg("Groq LLM 客户端初始化完成")
	return g, nil
}

// --- OpenAI兼容请求/响应结构 ---

type openAIChatCompletionRequest struct {
	Model string `json:"model"`
	// schema.Message 的 role/content 字段与OpenAI消息格式兼容
	Messages    []*schema.Message `json:"messages"`
	Temperature float64           `json:"temperature"`
}

type openAIMessage struct {
	Role    string  `json:"role"`
	Content *string `json:"content"`
}

type openAIChatChoice struct {
	Index        int           `json:"index"`
	Message      openAIMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type openAICompletionResponse struct {
	Id      string             `json:"id"`
	Object  string             `json:"object"`
	Created int64              `json:"created"`
	Model   string             `json:"model"`
	Choices []openAIChatChoice `json:"choices"`
}

// Generate 实现 model.ChatModel 接口。
// 传输失败与非200响应都作为错误返回，由上层决定对整个请求的影响；
// 这里不做重试。
func (g *GroqChatModel) Generate(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.Message, error) {
	// 采样参数在客户端构造时固定，调用级选项不生效
	reqPayload := openAIChatCompletionRequest{
		Model:       g.modelName,
		Messages:    messages,
		Temperature: g.temperature,
	}

	jsonData, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, fmt.Errorf("序列化请求体失败: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("创建 HTTP 请求失败: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("发送 HTTP 请求失败: %w", err)
	}
	defer httpResp.Body.Close()

	bodyBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应体失败: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API 请求失败，状态 %s: %s", httpResp.Status, string(bodyBytes))
	}

	var openAIResp openAICompletionResponse
	if err := json.Unmarshal(bodyBytes, &openAIResp); err != nil {
		return nil, fmt.Errorf("反序列化 API 响应失败: %w", err)
	}

	if len(openAIResp.Choices) == 0 {
		return nil, fmt.Errorf("从 API 收到空选项: %s", string(bodyBytes))
	}

	apiMessage := openAIResp.Choices[0].Message
	responseContent := ""
	if apiMessage.Content != nil {
		responseContent = *apiMessage.Content
	}

	role := apiMessage.Role
	if role == "" {
		role = "assistant"
	}

	return &schema.Message{
		Role:    schema.RoleType(role),
		Content: responseContent,
	}, nil
}

// Stream 实现 model.ChatModel 接口。上传流程只需要同步调用，未实现流式。
func (g *GroqChatModel) Stream(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("GroqChatModel 的 Stream 方法未实现")
}

// BindTools 实现 model.ChatModel 接口；本服务不使用工具调用
func (g *GroqChatModel) BindTools(tools []*schema.ToolInfo) error {
	return nil
}

var _ model.ChatModel = (*GroqChatModel)(nil)
