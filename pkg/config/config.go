package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DefaultDatabaseQueryTimeout is the per-query timeout in seconds
	DefaultDatabaseQueryTimeout = 5
	// DefaultTranslationTimeout bounds a single call to the MT provider
	DefaultTranslationTimeout = 10 * time.Second
	// DefaultTranslationURL is the public MyMemory endpoint
	DefaultTranslationURL = "https://api.mymemory.translated.net"
)

// Config holds all application configuration
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Translation TranslationConfig
	RateLimit   RateLimitConfig
	Tracing     TracingConfig
	Sentry      SentryConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	Environment  string
	ServiceName  string
	ReadTimeout  int
	WriteTimeout int
	CORSOrigins  string // Comma-separated list of allowed origins
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host          string
	Port          string
	User          string
	Password      string
	DBName        string
	SSLMode       string
	MaxConns      int
	MinConns      int
	QueryTimeout  int // seconds
	MigrateOnBoot bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
}

// TranslationConfig holds settings for the external machine-translation API
type TranslationConfig struct {
	BaseURL      string
	ContactEmail string // sent as "de" to raise the anonymous quota
	Timeout      time.Duration

	BreakerEnabled          bool
	BreakerInterval         time.Duration
	BreakerTimeout          time.Duration
	BreakerFailureThreshold int
	BreakerSuccessThreshold int
}

// RateLimitConfig holds the per-user limit applied to translation requests
type RateLimitConfig struct {
	Enabled       bool
	WindowSeconds int
	Limit         int
	RedisPrefix   string
}

// TracingConfig holds OpenTelemetry exporter settings
type TracingConfig struct {
	Enabled      bool
	OTLPEndpoint string
	SampleRatio  float64
}

// SentryConfig holds Sentry settings
type SentryConfig struct {
	DSN string
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			ServiceName:  serviceName,
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 15),
			CORSOrigins:  getEnv("CORS_ORIGINS", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			Host:          getEnv("DB_HOST", "localhost"),
			Port:          getEnv("DB_PORT", "5432"),
			User:          getEnv("DB_USER", "postgres"),
			Password:      getEnv("DB_PASSWORD", "postgres"),
			DBName:        getEnv("DB_NAME", "pairchat"),
			SSLMode:       getEnv("DB_SSLMODE", "disable"),
			MaxConns:      getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:      getEnvAsInt("DB_MIN_CONNS", 2),
			QueryTimeout:  getEnvAsInt("DB_QUERY_TIMEOUT", DefaultDatabaseQueryTimeout),
			MigrateOnBoot: getEnvAsBool("DB_MIGRATE_ON_BOOT", true),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		},
		Translation: TranslationConfig{
			BaseURL:                 getEnv("TRANSLATION_API_URL", DefaultTranslationURL),
			ContactEmail:            getEnv("TRANSLATION_CONTACT_EMAIL", ""),
			Timeout:                 getEnvAsDuration("TRANSLATION_TIMEOUT", DefaultTranslationTimeout),
			BreakerEnabled:          getEnvAsBool("TRANSLATION_BREAKER_ENABLED", true),
			BreakerInterval:         getEnvAsDuration("TRANSLATION_BREAKER_INTERVAL", time.Minute),
			BreakerTimeout:          getEnvAsDuration("TRANSLATION_BREAKER_TIMEOUT", 30*time.Second),
			BreakerFailureThreshold: getEnvAsInt("TRANSLATION_BREAKER_FAILURES", 5),
			BreakerSuccessThreshold: getEnvAsInt("TRANSLATION_BREAKER_SUCCESSES", 1),
		},
		RateLimit: RateLimitConfig{
			Enabled:       getEnvAsBool("RATE_LIMIT_ENABLED", true),
			WindowSeconds: getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 60),
			Limit:         getEnvAsInt("RATE_LIMIT_TRANSLATIONS", 30),
			RedisPrefix:   getEnv("RATE_LIMIT_PREFIX", "rl"),
		},
		Tracing: TracingConfig{
			Enabled:      getEnvAsBool("TRACING_ENABLED", false),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			SampleRatio:  getEnvAsFloat("TRACING_SAMPLE_RATIO", 1.0),
		},
		Sentry: SentryConfig{
			DSN: getEnv("SENTRY_DSN", ""),
		},
	}

	if cfg.Server.Environment == "production" && cfg.JWT.Secret == "your-secret-key-change-in-production" {
		return nil, fmt.Errorf("JWT_SECRET must be set in production")
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// URL returns the database connection string in URL form, as expected by migrate
func (c *DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Window returns the rate limit window, defaulting to one minute.
func (c RateLimitConfig) Window() time.Duration {
	if c.WindowSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.WindowSeconds) * time.Second
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil && value > 0 {
		return value
	}
	return defaultValue
}
