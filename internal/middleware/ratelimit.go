package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/staynest/booking-api/internal/pkg/response"
)

// RateLimiter is a fixed-window per-client limiter backed by Redis
type RateLimiter struct {
	redis  *redis.Client
	prefix string
	limit  int
	window time.Duration
}

// NewRateLimiter creates a new rate limiter.
// A nil client disables limiting.
func NewRateLimiter(redisClient *redis.Client, prefix string, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		prefix: prefix,
		limit:  limit,
		window: window,
	}
}

// Allow checks if the client identified by key may make another request
func (rl *RateLimiter) Allow(r *http.Request, key string) bool {
	if rl == nil || rl.redis == nil || rl.limit <= 0 {
		return true
	}

	ctx := r.Context()
	redisKey := fmt.Sprintf("ratelimit:%s:%s", rl.prefix, key)

	// SET NX EX and INCR share one transaction, so every counter carries a TTL.
	pipe := rl.redis.TxPipeline()
	pipe.SetNX(ctx, redisKey, 0, rl.window)
	incr := pipe.Incr(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		// Fail open
		log.Warn().Err(err).Str("key", redisKey).Msg("Rate limiter unavailable")
		return true
	}

	return incr.Val() <= int64(rl.limit)
}

// Middleware limits requests per client IP.
// The IP comes from RemoteAddr, which chi's RealIP rewrites only when proxy headers are trusted.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(r, getClientIP(r)) {
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			response.TooManyRequests(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}
