package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/richxcame/pairchat/pkg/config"
	"github.com/richxcame/pairchat/pkg/logger"
	"github.com/richxcame/pairchat/pkg/resilience"
	"go.uber.org/zap"
)

// Client wraps the Redis client
type Client struct {
	*redis.Client
}

var nonRetryablePrefixes = []string{
	"wrongtype",
	"err syntax",
	"err invalid",
	"err unknown",
	"noauth",
	"wrongpass",
	"noperm",
	"execabort",
}

// NewRedisClient creates a new Redis client, retrying the initial ping.
func NewRedisClient(ctx context.Context, cfg *config.RedisConfig) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	retryConfig := resilience.ConservativeRetryConfig()
	retryConfig.MaxAttempts = 5
	retryConfig.RetryableChecker = isRedisRetryable

	_, err := resilience.Retry(ctx, retryConfig, func(ctx context.Context) (interface{}, error) {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis not reachable yet", zap.String("addr", cfg.RedisAddr()), zap.Error(err))
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("unable to connect to redis: %w", err)
	}

	return &Client{Client: client}, nil
}

// Close closes the Redis client
func (c *Client) Close() error {
	return c.Client.Close()
}

// isRedisRetryable treats everything except context errors, redis.Nil and
// command or auth errors as transient.
func isRedisRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, redis.Nil) {
		return false
	}

	msg := strings.ToLower(err.Error())
	for _, prefix := range nonRetryablePrefixes {
		if strings.HasPrefix(msg, prefix) {
			return false
		}
	}
	return true
}
