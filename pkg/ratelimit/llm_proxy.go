package ratelimit

import (
	"context"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ChatGenerator 被代理的最小LLM接口：同步补全
type ChatGenerator interface {
	Generate(ctx context.Context, messages []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// RateLimitedChatModel 对LLM补全调用做限流和重试的代理。
// Groq免费档按QPM限额，超限返回429；代理在客户端侧把调用速率
// 压到限额以内，429仍然出现时按退避策略重试。
type RateLimitedChatModel struct {
	original    ChatGenerator
	rateLimiter *TokenBucket
}

// NewRateLimitedChatModel 创建限流LLM代理；qpm<=0时使用默认值30
func NewRateLimitedChatModel(original ChatGenerator, qpm int) *RateLimitedChatModel {
	if qpm <= 0 {
		qpm = 30
	}
	return &RateLimitedChatModel{
		original:    original,
		rateLimiter: NewTokenBucket(qpm, qpm/2), // 容量设为QPM的一半，允许一定突发
	}
}

// WithRetryPolicy 设置重试策略
func (rl *RateLimitedChatModel) WithRetryPolicy(waitTime time.Duration, maxRetries int) *RateLimitedChatModel {
	rl.rateLimiter.WithRetryPolicy(waitTime, maxRetries)
	return rl
}

// Generate 代理Generate方法，增加限流和重试逻辑
func (rl *RateLimitedChatModel) Generate(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.Message, error) {
	var response *schema.Message

	err := rl.rateLimiter.RetryWithBackoff(ctx, func() error {
		var genErr error
		response, genErr = rl.original.Generate(ctx, messages, options...)
		return genErr
	})

	return response, err
}
