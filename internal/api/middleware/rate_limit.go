package middleware

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/JoeSaf/Allika-sub000/config"
	"github.com/JoeSaf/Allika-sub000/pkg/redis"
	"github.com/JoeSaf/Allika-sub000/pkg/response"
)

const rateLimitMessage = "Too many requests, please try again later."

// RateLimiter counts requests per client ip and route. Redis fixed-window
// counters are used when rdb is set; on a nil rdb or a redis error each key
// falls back to an in-process token bucket.
type RateLimiter struct {
	cfg    config.RateLimitConfig
	rdb    *redis.Client
	logger *zap.Logger

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(cfg config.RateLimitConfig, rdb *redis.Client, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		cfg:     cfg,
		rdb:     rdb,
		logger:  logger,
		buckets: make(map[string]*bucket),
	}
}

// Handler returns the middleware. scope separates counters of route groups.
func (l *RateLimiter) Handler(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.cfg.Enabled {
			c.Next()
			return
		}

		key := scope + ":" + c.ClientIP()
		allowed, remaining, retryAfter := l.allow(c.Request.Context(), key)

		c.Header("X-RateLimit-Limit", strconv.Itoa(l.cfg.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !allowed {
			secs := int(math.Ceil(retryAfter.Seconds()))
			if secs < 1 {
				secs = 1
			}
			c.Header("Retry-After", strconv.Itoa(secs))
			response.TooManyRequests(c, rateLimitMessage)
			c.Abort()
			return
		}

		c.Next()
	}
}

func (l *RateLimiter) allow(ctx context.Context, key string) (bool, int, time.Duration) {
	if l.rdb != nil {
		res, err := l.rdb.CheckRateLimit(ctx, key, l.cfg.Limit, l.cfg.Window)
		if err == nil {
			return res.Allowed, res.Remaining, res.RetryAfter
		}
		l.logger.Warn("redis rate limit failed, using local limiter", zap.String("key", key), zap.Error(err))
	}
	return l.allowLocal(key, time.Now())
}

func (l *RateLimiter) allowLocal(key string, now time.Time) (bool, int, time.Duration) {
	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		every := rate.Every(l.cfg.Window / time.Duration(max(l.cfg.Limit, 1)))
		b = &bucket{limiter: rate.NewLimiter(every, max(l.cfg.Burst, 1))}
		l.buckets[key] = b
	}
	b.lastSeen = now
	l.mu.Unlock()

	r := b.limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, 0, delay
	}
	remaining := int(b.limiter.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	return true, remaining, 0
}

// Sweep evicts local buckets idle for longer than IdleTTL until ctx ends.
func (l *RateLimiter) Sweep(ctx context.Context) {
	ttl := l.cfg.IdleTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	ticker := time.NewTicker(ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.evictIdle(now, ttl)
		}
	}
}

func (l *RateLimiter) evictIdle(now time.Time, ttl time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, b := range l.buckets {
		if now.Sub(b.lastSeen) > ttl {
			delete(l.buckets, k)
		}
	}
}
