package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// rateLimitUserPrefix is the Redis key prefix for per-user rate limits.
	rateLimitUserPrefix = "ratelimit:user:"
	// rateLimitIPPrefix is the Redis key prefix for IP rate limits.
	rateLimitIPPrefix = "ratelimit:ip:"
	// rateLimitTTL is the TTL for rate limit keys.
	rateLimitTTL = 120 * time.Second
)

// RateLimitResult contains the result of a rate limit check.
type RateLimitResult struct {
	Allowed    bool
	Remaining  int64
	ResetAt    time.Time
	RetryAfter time.Duration
}

// tokenBucketScript is a Lua script implementing the token bucket algorithm.
// It's atomic and handles token refill and consumption in a single operation.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])      -- tokens per second
	local burst = tonumber(ARGV[2])     -- max tokens (bucket capacity)
	local now = tonumber(ARGV[3])       -- current time in seconds
	local ttl = tonumber(ARGV[4])       -- TTL in seconds

	local data = redis.call('HMGET', key, 'tokens', 'last_update')
	local tokens = tonumber(data[1]) or burst
	local last_update = tonumber(data[2]) or now

	local elapsed = now - last_update
	tokens = math.min(burst, tokens + (elapsed * rate))

	local allowed = 0
	local retry_after = 0

	if tokens >= 1 then
		tokens = tokens - 1
		allowed = 1
	else
		retry_after = math.ceil((1 - tokens) / rate)
	end

	redis.call('HMSET', key, 'tokens', tokens, 'last_update', now)
	redis.call('EXPIRE', key, ttl)

	return {allowed, retry_after, math.floor(tokens)}
`)

// CheckUserRateLimit checks and updates the rate limit for a signed-in user.
// A ratePerMinute of 0 means unlimited.
func (c *Cache) CheckUserRateLimit(ctx context.Context, userID string, ratePerMinute, burst int) (*RateLimitResult, error) {
	if ratePerMinute <= 0 {
		return unlimited(burst), nil
	}

	key := rateLimitUserPrefix + userID
	return c.checkRateLimit(ctx, key, float64(ratePerMinute)/60.0, burst)
}

// CheckIPRateLimit checks and updates the rate limit for an IP address.
// IP is hashed to avoid storing raw IP addresses.
func (c *Cache) CheckIPRateLimit(ctx context.Context, ip string, ratePerMinute, burst int) (*RateLimitResult, error) {
	if ratePerMinute <= 0 {
		return unlimited(burst), nil
	}

	key := rateLimitIPPrefix + hashIP(ip)
	return c.checkRateLimit(ctx, key, float64(ratePerMinute)/60.0, burst)
}

// checkRateLimit is the common rate limit implementation.
func (c *Cache) checkRateLimit(ctx context.Context, key string, rate float64, burst int) (*RateLimitResult, error) {
	now := time.Now().Unix()

	result, err := tokenBucketScript.Run(ctx, c.client,
		[]string{key},
		rate, burst, now, int(rateLimitTTL.Seconds()),
	).Int64Slice()

	if err != nil {
		// Fail open on Redis errors
		return unlimited(burst), nil
	}

	return toResult(result, rate), nil
}

func toResult(raw []int64, rate float64) *RateLimitResult {
	return &RateLimitResult{
		Allowed:    raw[0] == 1,
		Remaining:  raw[2],
		ResetAt:    time.Now().Add(time.Duration(float64(time.Second) / rate)),
		RetryAfter: time.Duration(raw[1]) * time.Second,
	}
}

func unlimited(burst int) *RateLimitResult {
	return &RateLimitResult{
		Allowed:   true,
		Remaining: int64(burst),
		ResetAt:   time.Now().Add(time.Minute),
	}
}

// hashIP creates a truncated SHA256 hash of an IP address.
func hashIP(ip string) string {
	hash := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(hash[:8]) // 16 hex chars
}
