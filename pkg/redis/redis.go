package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wanderwise/wanderwise-backend/config"
	"github.com/wanderwise/wanderwise-backend/pkg/logger"
)

var client *redis.Client

// Init initializes the Redis connection. When Redis is disabled the
// package stays inert: Allow always admits and nothing is blacklisted.
func Init(cfg *config.RedisConfig) error {
	if !cfg.Enabled {
		logger.Info("Redis disabled, rate limiting and token revocation are off")
		return nil
	}

	logger.Info("Initializing Redis connection", logger.Fields{
		"addr": cfg.Addr(),
		"db":   cfg.DB,
	})

	c := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, logger.Fields{
			"addr": cfg.Addr(),
		})
		_ = c.Close()
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	client = c
	logger.Info("Redis connection established successfully")
	return nil
}

// SetClient swaps the package client. Passing nil disables Redis.
func SetClient(c *redis.Client) {
	client = c
}

// GetClient returns the Redis client instance, or nil when disabled.
func GetClient() *redis.Client {
	return client
}

func Enabled() bool {
	return client != nil
}

// Close closes the Redis connection
func Close() error {
	if client == nil {
		return nil
	}
	logger.Info("Closing Redis connection")
	err := client.Close()
	client = nil
	return err
}

// Window is one fixed rate-limit window for a key.
type Window struct {
	Key        string
	RetryAfter time.Duration
}

// WindowFor buckets now into a fixed window of the given length.
func WindowFor(key string, now time.Time, window time.Duration) Window {
	if window < time.Second {
		window = time.Second
	}
	size := int64(window / time.Second)
	bucket := now.Unix() / size
	end := time.Unix((bucket+1)*size, 0)
	return Window{
		Key:        fmt.Sprintf("ratelimit:%s:%d", key, bucket),
		RetryAfter: end.Sub(now),
	}
}

// Allow counts one hit against key in the current fixed window and reports
// whether it is within limit. RetryAfter is the time left in the window.
func Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	if client == nil || limit <= 0 {
		return true, 0, nil
	}

	w := WindowFor(key, time.Now(), window)
	var incr *redis.IntCmd
	_, err := client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, w.Key)
		pipe.Expire(ctx, w.Key, window+time.Second)
		return nil
	})
	if err != nil {
		logger.Error("Rate limit counter failed", err, logger.Fields{
			"key": w.Key,
		})
		return true, 0, err
	}
	return incr.Val() <= int64(limit), w.RetryAfter, nil
}

// BlacklistToken revokes a token until it would have expired anyway.
func BlacklistToken(ctx context.Context, token string, expiry time.Duration) error {
	if client == nil || expiry <= 0 {
		return nil
	}
	if err := client.Set(ctx, blacklistKey(token), "revoked", expiry).Err(); err != nil {
		logger.Error("Failed to blacklist token", err)
		return err
	}
	logger.Debug("Token blacklisted", logger.Fields{
		"expiry": expiry.String(),
	})
	return nil
}

// IsTokenBlacklisted checks if a token is in the blacklist
func IsTokenBlacklisted(ctx context.Context, token string) (bool, error) {
	if client == nil {
		return false, nil
	}
	val, err := client.Get(ctx, blacklistKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		logger.Error("Failed to check token blacklist", err)
		return false, err
	}
	return val == "revoked", nil
}

func blacklistKey(token string) string {
	return "blacklist:" + token
}
