package api

import (
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/printmechecks/server/internal/config"
	"github.com/printmechecks/server/internal/pkg/httputil"
)

// RateLimiter throttles webhook ingestion per source IP with a Redis
// fixed window. A nil RateLimiter means no limiting.
type RateLimiter struct {
	client *redis.Client
	limit  int
}

// NewRateLimiter connects to Redis from config. Returns nil with no
// error when no Redis URL is configured.
func NewRateLimiter(cfg config.RateLimitConfig) (*RateLimiter, error) {
	if cfg.RedisURL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	limit := cfg.RequestsPerMinute
	if limit <= 0 {
		limit = 120
	}
	return &RateLimiter{client: redis.NewClient(opts), limit: limit}, nil
}

// NewRateLimiterWithClient wraps an existing client. Used by tests.
func NewRateLimiterWithClient(client *redis.Client, limit int) *RateLimiter {
	return &RateLimiter{client: client, limit: limit}
}

// Middleware counts requests in one-minute windows keyed by source IP.
// Redis trouble fails open: dropping provider callbacks costs more than
// briefly losing the limit.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}
		key := fmt.Sprintf("ratelimit:webhook:%s:%d", ip, time.Now().Unix()/60)

		count, err := l.client.Incr(r.Context(), key).Result()
		if err != nil {
			log.Printf("[ratelimit] Redis error, passing request through: %v", err)
			next.ServeHTTP(w, r)
			return
		}
		if count == 1 {
			l.client.Expire(r.Context(), key, 2*time.Minute)
		}
		if count > int64(l.limit) {
			httputil.Error(w, http.StatusTooManyRequests, "rate_limited")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Close releases the Redis connection.
func (l *RateLimiter) Close() error {
	if l == nil || l.client == nil {
		return nil
	}
	return l.client.Close()
}
