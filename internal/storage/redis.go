package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"profile-optimizer-go/internal/config"
	"profile-optimizer-go/internal/constants"
	"profile-optimizer-go/internal/tracing"
	"profile-optimizer-go/internal/types"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// ErrNotFound 存储层统一的未命中/未配置哨兵。
// 各适配器把自己的驱动哨兵（如 redis.Nil）翻译为它，调用方不感知驱动细节。
var ErrNotFound = errors.New("存储记录不存在")

var redisTracer = otel.Tracer("profile-optimizer-go/storage/redis")

// Redis 封装Redis客户端，提供点评结果缓存
type Redis struct {
	Client *redis.Client
	config *config.RedisConfig
}

// NewRedisAdapter 创建Redis客户端连接
func NewRedisAdapter(cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis配置不能为空")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis地址不能为空")
	}

	opt := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,

		// 连接池设置
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,

		// 超时设置
		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
	}

	client := redis.NewClient(opt)

	// 添加OpenTelemetry钩子，记录所有Redis操作
	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("注册Redis追踪钩子失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("连接Redis失败: %w", err)
	}

	return &Redis{
		Client: client,
		config: cfg,
	}, nil
}

// Close 关闭Redis连接
func (r *Redis) Close() error {
	return r.Client.Close()
}

// suggestionCacheKey 点评缓存键：固定前缀 + 档案全文MD5
func suggestionCacheKey(textMD5 string) string {
	return constants.SuggestionCachePrefix + textMD5
}

// GetSuggestions 按全文MD5查询缓存的点评结果；未命中返回 ErrNotFound
func (r *Redis) GetSuggestions(ctx context.Context, textMD5 string) (*types.SuggestionRecord, error) {
	key := suggestionCacheKey(textMD5)

	ctx, span := redisTracer.Start(ctx, "redis.GetSuggestions",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			semconv.DBSystemRedis,
			attribute.String("db.redis.key", tracing.SafeRedisKey(key)),
		),
	)
	defer span.End()

	data, err := r.Client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			span.SetStatus(codes.Ok, "cache miss")
			return nil, ErrNotFound
		}
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return nil, fmt.Errorf("查询点评缓存失败: %w", err)
	}

	record := &types.SuggestionRecord{}
	if err := json.Unmarshal(data, record); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return nil, fmt.Errorf("反序列化缓存的点评结果失败: %w", err)
	}

	span.SetStatus(codes.Ok, "cache hit")
	return record, nil
}

// SetSuggestions 缓存点评结果
func (r *Redis) SetSuggestions(ctx context.Context, textMD5 string, record *types.SuggestionRecord, expiration time.Duration) error {
	if record == nil {
		return fmt.Errorf("点评结果不能为空")
	}
	key := suggestionCacheKey(textMD5)

	ctx, span := redisTracer.Start(ctx, "redis.SetSuggestions",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			semconv.DBSystemRedis,
			attribute.String("db.redis.key", tracing.SafeRedisKey(key)),
		),
	)
	defer span.End()

	data, err := json.Marshal(record)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return fmt.Errorf("序列化点评结果失败: %w", err)
	}

	if err := r.Client.Set(ctx, key, data, expiration).Err(); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return fmt.Errorf("写入点评缓存失败: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}
