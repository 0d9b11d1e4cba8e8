package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/parivartan/platform-api/internal/app/models/dto"
	"github.com/parivartan/platform-api/internal/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// RateLimitConfig configures the token bucket
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	Prefix         string
}

func (cfg RateLimitConfig) normalized() RateLimitConfig {
	if cfg.Capacity < 1 {
		cfg.Capacity = 1
	}
	if cfg.RefillTokens < 1 {
		cfg.RefillTokens = 1
	}
	if cfg.RefillInterval <= 0 {
		cfg.RefillInterval = time.Second
	}
	if minTTL := 5 * cfg.RefillInterval; cfg.TTL < minTTL {
		cfg.TTL = minTTL
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "rl"
	}
	return cfg
}

// tokenBucketScript refills by whole intervals, takes one token and returns
// {allowed, remaining, retry_after_ms}
var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill_tokens = tonumber(ARGV[3])
local interval_ms = tonumber(ARGV[4])
local ttl_seconds = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])

if tokens == nil or last_refill == nil then
	tokens = capacity
	last_refill = now_ms
end

local elapsed = math.max(0, now_ms - last_refill)
local intervals = math.floor(elapsed / interval_ms)
if intervals > 0 then
	tokens = math.min(capacity, tokens + (intervals * refill_tokens))
	last_refill = last_refill + (intervals * interval_ms)
end

local allowed = 0
local retry_after_ms = 0
if tokens > 0 then
	allowed = 1
	tokens = tokens - 1
else
	retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('EXPIRE', key, ttl_seconds)

return { allowed, tokens, retry_after_ms }
`)

// RateLimiter is a Redis backed token bucket shared by every instance
type RateLimiter struct {
	cfg    RateLimitConfig
	client *redis.Client
	now    func() time.Time
}

// NewRateLimiter creates a RateLimiter. A nil client or a disabled config lets every request through.
func NewRateLimiter(cfg RateLimitConfig, client *redis.Client) *RateLimiter {
	return &RateLimiter{cfg: cfg.normalized(), client: client, now: time.Now}
}

// bucketKey scopes the bucket to the caller: the user when authenticated, otherwise the client IP
func (l *RateLimiter) bucketKey(c *gin.Context, scope string) string {
	caller := "ip:" + c.ClientIP()
	if id, ok := CurrentUserID(c); ok {
		caller = "user:" + strconv.FormatInt(id, 10)
	}
	return strings.Join([]string{l.cfg.Prefix, scope, caller}, ":")
}

// Limit returns a middleware drawing from the bucket named scope
func (l *RateLimiter) Limit(scope string) gin.HandlerFunc {
	if !l.cfg.Enabled || l.client == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		key := l.bucketKey(c, scope)
		res, err := tokenBucketScript.Run(c.Request.Context(), l.client, []string{key},
			l.now().UnixMilli(),
			l.cfg.Capacity,
			l.cfg.RefillTokens,
			l.cfg.RefillInterval.Milliseconds(),
			int64(l.cfg.TTL/time.Second),
		).Int64Slice()
		if err != nil || len(res) != 3 {
			// fail open
			logger.Warn().Err(err).Str("key", key).Msg("Rate limiter unavailable")
			c.Next()
			return
		}

		allowed, remaining, retryMs := res[0] == 1, res[1], res[2]
		c.Header("X-RateLimit-Limit", strconv.Itoa(l.cfg.Capacity))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if !allowed {
			secs := int(math.Ceil(float64(retryMs) / 1000))
			c.Header("Retry-After", strconv.Itoa(secs))
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeRateLimited, "Too many requests").
				WithDetails(fmt.Sprintf("retry after %d seconds", secs)).
				WithSeverity(dto.ErrorSeverityWarning)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse(errorDetail))
			return
		}
		c.Next()
	}
}
