package health

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Pinger is satisfied by *pgxpool.Pool
type Pinger interface {
	Ping(ctx context.Context) error
}

// DatabaseChecker returns a health check function for PostgreSQL
func DatabaseChecker(db Pinger) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if db == nil {
			return errors.New("database connection is nil")
		}
		return db.Ping(ctx)
	}
}

// RedisChecker returns a health check function for Redis
func RedisChecker(client redis.Cmdable) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if client == nil {
			return errors.New("redis client is nil")
		}
		return client.Ping(ctx).Err()
	}
}
