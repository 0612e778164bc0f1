package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/richxcame/pairchat/migrations"
	"github.com/richxcame/pairchat/pkg/config"
)

// ============== Helper Function Tests ==============

func TestResolveQueryTimeout(t *testing.T) {
	tests := []struct {
		name     string
		input    []int
		expected int
	}{
		{
			name:     "no input uses default",
			input:    nil,
			expected: config.DefaultDatabaseQueryTimeout,
		},
		{
			name:     "positive value",
			input:    []int{30},
			expected: 30,
		},
		{
			name:     "zero uses default",
			input:    []int{0},
			expected: config.DefaultDatabaseQueryTimeout,
		},
		{
			name:     "negative uses default",
			input:    []int{-5},
			expected: config.DefaultDatabaseQueryTimeout,
		},
		{
			name:     "multiple values uses first",
			input:    []int{15, 30},
			expected: 15,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := resolveQueryTimeout(tc.input...)
			if result != tc.expected {
				t.Errorf("expected %d, got %d", tc.expected, result)
			}
		})
	}
}

func TestCreateStatementTimeoutCallback(t *testing.T) {
	for _, seconds := range []int{1, 5, 30} {
		if createStatementTimeoutCallback(seconds) == nil {
			t.Errorf("callback for %ds should not be nil", seconds)
		}
	}
}

func TestClose_NilPool(t *testing.T) {
	var pool *pgxpool.Pool
	Close(pool)
}

// ============== Unique Violation Tests ==============

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"unique violation", &pgconn.PgError{Code: "23505"}, true},
		{"wrapped unique violation", fmt.Errorf("failed to insert: %w", &pgconn.PgError{Code: "23505"}), true},
		{"check violation", &pgconn.PgError{Code: "23514"}, false},
		{"plain error", errors.New("duplicate key value"), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsUniqueViolation(tc.err); got != tc.expected {
				t.Errorf("IsUniqueViolation(%v) = %v, want %v", tc.err, got, tc.expected)
			}
		})
	}
}

// ============== Postgres Retryable Error Tests ==============

func TestIsPostgresRetryable_ContextErrors(t *testing.T) {
	if isPostgresRetryable(nil) {
		t.Error("nil error should not be retryable")
	}
	if isPostgresRetryable(context.Canceled) {
		t.Error("context.Canceled should not be retryable")
	}
	if isPostgresRetryable(fmt.Errorf("ping: %w", context.DeadlineExceeded)) {
		t.Error("wrapped context.DeadlineExceeded should not be retryable")
	}
}

func TestPgErrorCodes_AllRetryableCodes(t *testing.T) {
	retryableCodes := []string{
		"40001", "40P01", "55P03", "53000", "53300", "53400",
		"08000", "08003", "08006", "57P01", "57P02", "57P03", "58000", "XX000",
	}

	for _, code := range retryableCodes {
		err := &pgconn.PgError{Code: code}
		if !isPostgresRetryable(err) {
			t.Errorf("code %s should be retryable", code)
		}
	}
}

func TestPgErrorCodes_AllNonRetryableCodes(t *testing.T) {
	nonRetryableCodes := []string{
		"53100", // disk_full
		"53200", // out_of_memory
		"23502", // not_null_violation
		"23505", // unique_violation
		"23514", // check_violation
		"22001", // string_data_right_truncation
		"42601", // syntax_error
		"42P01", // undefined_table
	}

	for _, code := range nonRetryableCodes {
		err := &pgconn.PgError{Code: code}
		if isPostgresRetryable(err) {
			t.Errorf("code %s should NOT be retryable", code)
		}
	}
}

func TestIsPostgresRetryable_WrappedPgError(t *testing.T) {
	err := fmt.Errorf("unable to ping database: %w", &pgconn.PgError{Code: "57P03"})
	if !isPostgresRetryable(err) {
		t.Error("wrapped cannot_connect_now should be retryable")
	}
}

func TestConnectionErrorMessages(t *testing.T) {
	for _, msg := range retryableMessages {
		if !isPostgresRetryable(errors.New(msg)) {
			t.Errorf("message %q should be retryable", msg)
		}
		upper := strings.ToUpper(msg)
		if !isPostgresRetryable(errors.New(upper)) {
			t.Errorf("message %q (uppercase) should be retryable", upper)
		}
	}

	if isPostgresRetryable(errors.New("password authentication failed")) {
		t.Error("auth failure should NOT be retryable")
	}
}

// ============== Migration Source Tests ==============

func TestMigrations_Embedded(t *testing.T) {
	up, err := migrations.FS.ReadFile("000001_create_translations.up.sql")
	if err != nil {
		t.Fatalf("up migration missing: %v", err)
	}

	schema := string(up)
	for _, want := range []string{
		"UNIQUE (message_id, source_language, target_language)",
		"PRIMARY KEY (user_role, message_id)",
		"'zh-TW'",
	} {
		if !strings.Contains(schema, want) {
			t.Errorf("schema missing %q", want)
		}
	}

	if _, err := migrations.FS.ReadFile("000001_create_translations.down.sql"); err != nil {
		t.Errorf("down migration missing: %v", err)
	}
}
