package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/marketplace/backend/internal/interfaces/http/dto"
)

// Limiter decides whether one more request for key fits in the current window
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, remaining int, err error)
	Limit() int
}

// RateLimiter is an in-process fixed window limiter
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	limit   int
	window  time.Duration
	stop    chan struct{}
	once    sync.Once
}

type client struct {
	tokens    int
	lastReset time.Time
}

var _ Limiter = (*RateLimiter)(nil)

// NewRateLimiter creates a new rate limiter. Call Close to stop its cleanup loop.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*client),
		limit:   limit,
		window:  window,
		stop:    make(chan struct{}),
	}
	go rl.cleanup(window * 2)
	return rl
}

func (rl *RateLimiter) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			now := time.Now()
			for key, c := range rl.clients {
				if now.Sub(c.lastReset) > rl.window*2 {
					delete(rl.clients, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Close stops the cleanup loop
func (rl *RateLimiter) Close() {
	rl.once.Do(func() { close(rl.stop) })
}

// Limit returns the number of requests allowed per window
func (rl *RateLimiter) Limit() int {
	return rl.limit
}

// Allow consumes one token for key
func (rl *RateLimiter) Allow(_ context.Context, key string) (bool, int, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	c, exists := rl.clients[key]
	if !exists || now.Sub(c.lastReset) >= rl.window {
		rl.clients[key] = &client{tokens: rl.limit - 1, lastReset: now}
		return true, rl.limit - 1, nil
	}
	if c.tokens > 0 {
		c.tokens--
		return true, c.tokens, nil
	}
	return false, 0, nil
}

// RedisRateLimiter is a fixed window limiter shared by every API replica
type RedisRateLimiter struct {
	client    redis.UniversalClient
	limit     int
	window    time.Duration
	keyPrefix string
}

var _ Limiter = (*RedisRateLimiter)(nil)

// NewRedisRateLimiter creates a limiter storing counters in Redis
func NewRedisRateLimiter(client redis.UniversalClient, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		client:    client,
		limit:     limit,
		window:    window,
		keyPrefix: "ratelimit:",
	}
}

// Limit returns the number of requests allowed per window
func (l *RedisRateLimiter) Limit() int {
	return l.limit
}

// Allow increments the counter of the current window for key
func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, int, error) {
	windowStart := time.Now().UnixNano() / int64(l.window)
	redisKey := l.keyPrefix + key + ":" + strconv.FormatInt(windowStart, 10)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("rate limit counter: %w", err)
	}

	count := int(incr.Val())
	if count > l.limit {
		return false, 0, nil
	}
	return true, l.limit - count, nil
}

// RateLimitConfig configures the rate limit middleware
type RateLimitConfig struct {
	Limiter Limiter
	// KeyFunc derives the bucket key; defaults to the client IP
	KeyFunc func(*gin.Context) string
	Code    string
	Message string
	Logger  *zap.Logger
}

// RateLimit throttles requests per client IP
func RateLimit(limiter Limiter) gin.HandlerFunc {
	return RateLimitWithConfig(RateLimitConfig{Limiter: limiter})
}

// AuthRateLimit throttles login and registration attempts per client IP
func AuthRateLimit(limiter Limiter, logger *zap.Logger) gin.HandlerFunc {
	return RateLimitWithConfig(RateLimitConfig{
		Limiter: limiter,
		KeyFunc: func(c *gin.Context) string { return "auth:" + c.ClientIP() },
		Code:    "AUTH_RATE_LIMIT_EXCEEDED",
		Message: "Too many authentication attempts. Please try again later.",
		Logger:  logger,
	})
}

// RateLimitWithConfig returns a rate limiting middleware. Limiter errors let
// the request through.
func RateLimitWithConfig(cfg RateLimitConfig) gin.HandlerFunc {
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	code := cfg.Code
	if code == "" {
		code = dto.ErrCodeRateLimited
	}
	message := cfg.Message
	if message == "" {
		message = "Too many requests. Please try again later."
	}

	return func(c *gin.Context) {
		allowed, remaining, err := cfg.Limiter.Allow(c.Request.Context(), keyFunc(c))
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Warn("Rate limiter unavailable", zap.Error(err))
			}
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Limiter.Limit()))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse(
				dto.KindRateLimited, code, message, GetRequestID(c),
			))
			return
		}
		c.Next()
	}
}
