package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerWindow int           // Number of requests allowed per window
	Window            time.Duration // Time window for rate limiting
	KeyPrefix         string        // Redis key prefix
}

// fixedWindow counts requests per client in redis. The first hit of a window
// starts the key's expiry.
type fixedWindow struct {
	client *redis.Client
	config RateLimitConfig
}

// hit records one request and returns the count so far and the time left in
// the window.
func (fw fixedWindow) hit(ctx context.Context, clientID string) (int64, time.Duration, error) {
	key := fmt.Sprintf("%s:%s", fw.config.KeyPrefix, clientID)

	pipe := fw.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	ttl := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, err
	}

	left := ttl.Val()
	if left < 0 {
		if err := fw.client.Expire(ctx, key, fw.config.Window).Err(); err != nil {
			return 0, 0, err
		}
		left = fw.config.Window
	}
	return incr.Val(), left, nil
}

// RateLimitMiddleware limits each client IP to RequestsPerWindow requests.
// Requests pass through when redis cannot be reached.
func RateLimitMiddleware(redisClient *redis.Client, config RateLimitConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	window := fixedWindow{client: redisClient, config: config}
	limit := strconv.Itoa(config.RequestsPerWindow)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := clientIP(r)

			count, left, err := window.hit(r.Context(), clientID)
			if err != nil {
				logger.Error("Failed to count request for rate limiting",
					zap.Error(err),
					zap.String("client_id", clientID),
				)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", limit)

			if count > int64(config.RequestsPerWindow) {
				logger.Warn("Rate limit exceeded",
					zap.String("client_id", clientID),
					zap.Int64("count", count),
					zap.Int("limit", config.RequestsPerWindow),
				)

				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(left).Unix(), 10))
				w.Header().Set("Retry-After", strconv.Itoa(int(left.Seconds())))
				RespondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(int64(config.RequestsPerWindow)-count, 10))
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP strips the port chi's RealIP leaves on RemoteAddr when no proxy header is set.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
