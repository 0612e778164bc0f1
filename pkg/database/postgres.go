package database

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/richxcame/pairchat/pkg/config"
	"github.com/richxcame/pairchat/pkg/logger"
	"github.com/richxcame/pairchat/pkg/resilience"
	"go.uber.org/zap"
)

// DBTX is the subset of *pgxpool.Pool used by repositories.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// NewPostgresPool creates a new PostgreSQL connection pool. Connecting is
// retried on transient failures so the service survives a database that
// starts after it.
func NewPostgresPool(ctx context.Context, cfg *config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.AfterConnect = createStatementTimeoutCallback(resolveQueryTimeout(cfg.QueryTimeout))

	retryConfig := resilience.ConservativeRetryConfig()
	retryConfig.MaxAttempts = 5
	retryConfig.RetryableChecker = isPostgresRetryable

	result, err := resilience.Retry(ctx, retryConfig, func(ctx context.Context) (interface{}, error) {
		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return nil, fmt.Errorf("unable to create connection pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			logger.Warn("database not reachable yet", zap.String("host", cfg.Host), zap.Error(err))
			return nil, fmt.Errorf("unable to ping database: %w", err)
		}
		return pool, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*pgxpool.Pool), nil
}

// Close closes the database connection pool
func Close(pool *pgxpool.Pool) {
	if pool != nil {
		pool.Close()
	}
}

// IsUniqueViolation reports whether err is a Postgres unique_violation.
func IsUniqueViolation(err error) bool {
	code, ok := pgErrorCode(err)
	return ok && code == "23505"
}

func resolveQueryTimeout(values ...int) int {
	if len(values) > 0 && values[0] > 0 {
		return values[0]
	}
	return config.DefaultDatabaseQueryTimeout
}

// createStatementTimeoutCallback sets statement_timeout on every new connection.
func createStatementTimeoutCallback(timeoutSeconds int) func(context.Context, *pgx.Conn) error {
	timeoutMillis := strconv.Itoa(timeoutSeconds * 1000)
	return func(ctx context.Context, conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, "SET statement_timeout = "+timeoutMillis)
		return err
	}
}
