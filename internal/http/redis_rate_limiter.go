package http

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type redisRateLimiter struct {
	client   *redis.Client
	logger   logrus.FieldLogger
	prefix   string
	requests int
	window   time.Duration
	timeout  time.Duration
}

// NewRedisRateLimiter constructs a fixed-window limiter shared by every
// instance pointing at the same Redis. Redis failures let requests through.
func NewRedisRateLimiter(addr, password string, db, requests int, window time.Duration, logger logrus.FieldLogger) (RateLimiter, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	if window <= 0 {
		window = time.Minute
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &redisRateLimiter{
		client:   client,
		logger:   logger,
		prefix:   "urbanmatch:ratelimit:",
		requests: requests,
		window:   window,
		timeout:  250 * time.Millisecond,
	}, nil
}

func (rl *redisRateLimiter) Allow(ctx context.Context, key string) rateDecision {
	if rl.requests <= 0 {
		return rateDecision{allowed: true}
	}
	ctx, cancel := context.WithTimeout(ctx, rl.timeout)
	defer cancel()

	redisKey := rl.prefix + key
	counter, err := rl.client.Incr(ctx, redisKey).Result()
	if err != nil {
		rl.logger.WithError(err).WithField("op", "incr").Error("redis rate limiter")
		return rateDecision{allowed: true}
	}
	if counter == 1 {
		if err := rl.client.Expire(ctx, redisKey, rl.window).Err(); err != nil {
			rl.logger.WithError(err).WithField("op", "expire").Error("redis rate limiter")
		}
	}
	if counter <= int64(rl.requests) {
		return rateDecision{allowed: true, limit: rl.requests}
	}

	ttl, err := rl.client.TTL(ctx, redisKey).Result()
	if err != nil || ttl <= 0 {
		ttl = rl.window
	}
	return rateDecision{allowed: false, limit: rl.requests, retryAfter: ttl}
}

func (rl *redisRateLimiter) Close() error {
	return rl.client.Close()
}
