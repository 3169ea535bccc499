package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTokenBucketAllow 初始容量内的请求放行，超出后拒绝
func TestTokenBucketAllow(t *testing.T) {
	tb := NewTokenBucket(60, 2)

	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())
}

// TestTokenBucketWaitContextCancel 等待期间上下文取消立即返回
func TestTokenBucketWaitContextCancel(t *testing.T) {
	tb := NewTokenBucket(1, 1)
	require.True(t, tb.Allow()) // 耗尽令牌

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := tb.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// TestIsRetryableError 限额和传输故障可重试，业务错误不可
func TestIsRetryableError(t *testing.T) {
	assert.True(t, isRetryableError(errors.New("API 请求失败，状态 429 Too Many Requests: rate limit")))
	assert.True(t, isRetryableError(errors.New("context deadline exceeded")))
	assert.False(t, isRetryableError(errors.New("API 密钥无效")))
	assert.False(t, isRetryableError(nil))
}

// countingModel 记录调用次数的LLM替身
type countingModel struct {
	failures int // 前N次调用返回可重试错误
	calls    int
}

func (m *countingModel) Generate(ctx context.Context, messages []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.calls++
	if m.calls <= m.failures {
		return nil, errors.New("429 Too Many Requests")
	}
	return &schema.Message{Role: schema.Assistant, Content: "ok"}, nil
}

// TestRateLimitedChatModelRetry 可重试错误在退避后重试直至成功
func TestRateLimitedChatModelRetry(t *testing.T) {
	inner := &countingModel{failures: 2}
	proxy := NewRateLimitedChatModel(inner, 6000).WithRetryPolicy(time.Millisecond, 3)

	reply, err := proxy.Generate(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	require.NoError(t, err)
	assert.Equal(t, "ok", reply.Content)
	assert.Equal(t, 3, inner.calls)
}

// TestRateLimitedChatModelNonRetryable 不可重试的错误立即上抛
func TestRateLimitedChatModelNonRetryable(t *testing.T) {
	inner := &failingModel{err: errors.New("API 密钥无效")}
	proxy := NewRateLimitedChatModel(inner, 6000).WithRetryPolicy(time.Millisecond, 3)

	_, err := proxy.Generate(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	assert.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}

type failingModel struct {
	err   error
	calls int
}

func (m *failingModel) Generate(ctx context.Context, messages []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.calls++
	return nil, m.err
}
