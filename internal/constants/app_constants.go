package constants

import "time"

const (
	// 身份字段无法解析时的哨兵值
	SentinelUnknown  = "Unknown"
	SentinelNotFound = "Not found"

	// Redis缓存键与过期时间（按全文MD5缓存已解析的点评结果）
	SuggestionCachePrefix   = "suggestions:text_md5:"
	SuggestionCacheDuration = 24 * time.Hour
)
