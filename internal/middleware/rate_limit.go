package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/anonto42/inkwell/backend/pkg/logger"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const tooManyRequests = "Too many requests, please try again later."

// RedisLimiterStore is a fixed-window counter shared by every API instance.
// Each identifier gets limit requests per window.
type RedisLimiterStore struct {
	client *redis.Client
	prefix string
	limit  int64
	window time.Duration
	now    func() time.Time
}

func NewRedisLimiterStore(client *redis.Client, prefix string, limit int, window time.Duration) *RedisLimiterStore {
	return &RedisLimiterStore{
		client: client,
		prefix: prefix,
		limit:  int64(limit),
		window: window,
		now:    time.Now,
	}
}

// Allow counts one request for identifier. Redis failures let the request
// through.
func (s *RedisLimiterStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	key := fmt.Sprintf("%s:%s:%s", s.prefix, identifier, keyBucket(s.now(), s.window))

	n, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		logger.Warn("rate limiter store unavailable", zap.Error(err))
		return true, nil
	}
	if n == 1 {
		if err := s.client.Expire(ctx, key, s.window).Err(); err != nil {
			logger.Warn("rate limiter expire", zap.String("key", key), zap.Error(err))
		}
	}
	return n <= s.limit, nil
}

func keyBucket(t time.Time, window time.Duration) string {
	return strconv.FormatInt(t.UnixNano()/int64(window), 10)
}

// RateLimit allows limit requests per window for each client IP. With a Redis
// client the window is shared across instances, otherwise a per-process token
// bucket of the same average rate is used.
func RateLimit(client *redis.Client, prefix string, limit int, window time.Duration) echo.MiddlewareFunc {
	var store echomw.RateLimiterStore
	if client != nil {
		store = NewRedisLimiterStore(client, prefix, limit, window)
	} else {
		store = echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(float64(limit) / window.Seconds()),
			Burst:     limit,
			ExpiresIn: window,
		})
	}

	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "unable to identify client")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, tooManyRequests)
		},
	})
}
