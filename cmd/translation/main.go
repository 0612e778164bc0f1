package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/richxcame/pairchat/internal/messages"
	"github.com/richxcame/pairchat/internal/translation"
	"github.com/richxcame/pairchat/migrations"
	"github.com/richxcame/pairchat/pkg/common"
	"github.com/richxcame/pairchat/pkg/config"
	"github.com/richxcame/pairchat/pkg/database"
	"github.com/richxcame/pairchat/pkg/health"
	"github.com/richxcame/pairchat/pkg/jwtkeys"
	"github.com/richxcame/pairchat/pkg/logger"
	"github.com/richxcame/pairchat/pkg/middleware"
	"github.com/richxcame/pairchat/pkg/ratelimit"
	"github.com/richxcame/pairchat/pkg/redis"
	"github.com/richxcame/pairchat/pkg/tracing"
	"go.uber.org/zap"
)

const (
	serviceName    = "translation"
	serviceVersion = "1.0.0"

	// maxRequestBody caps JSON bodies; requests only carry ids and codes
	maxRequestBody = 64 << 10
)

// routerDeps is everything newRouter needs, so tests can build the same chain
type routerDeps struct {
	cfg          *config.Config
	service      *translation.Service
	keys         jwtkeys.KeyProvider
	limiter      *ratelimit.Limiter
	healthChecks map[string]common.CheckFunc
	sentry       bool
}

func main() {
	// Load configuration
	cfg, err := config.Load(serviceName)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting translation service",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
	)

	ctx := context.Background()

	// Error reporting
	sentryEnabled := false
	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Server.Environment,
			Release:     cfg.Server.ServiceName + "@" + serviceVersion,
		}); err != nil {
			logger.Warn("Failed to initialize Sentry", zap.Error(err))
		} else {
			sentryEnabled = true
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Tracing
	shutdownTracing, err := tracing.Init(ctx, cfg.Server.ServiceName, cfg.Tracing)
	if err != nil {
		logger.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("Failed to flush traces", zap.Error(err))
		}
	}()

	// Connect to PostgreSQL
	if cfg.Database.MigrateOnBoot {
		if err := database.RunMigrations(&cfg.Database, migrations.FS); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	db, err := database.NewPostgresPool(ctx, &cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	// Connect to Redis
	redisClient, err := redis.NewRedisClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	logger.Info("Connected to Redis", zap.String("addr", cfg.Redis.RedisAddr()))

	// Create service and handler dependencies
	repo := translation.NewRepository(db)
	provider := translation.NewMyMemoryProvider(cfg.Translation)
	service := translation.NewService(repo, provider, messages.NewRepository(db))

	router := newRouter(routerDeps{
		cfg:     cfg,
		service: service,
		keys:    jwtkeys.NewStaticProvider(cfg.JWT.Secret),
		limiter: ratelimit.NewLimiter(redisClient.Client, cfg.RateLimit),
		healthChecks: map[string]common.CheckFunc{
			"database": health.DatabaseChecker(db),
			"redis":    health.RedisChecker(redisClient.Client),
		},
		sentry: sentryEnabled,
	})

	// the provider may take its full timeout before we can answer
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout)*time.Second + cfg.Translation.Timeout,
	}

	go func() {
		logger.Info("Translation service listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down translation service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
}

func newRouter(deps routerDeps) *gin.Engine {
	if deps.cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	if deps.sentry {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics(serviceName))
	router.Use(middleware.SecurityHeaders(deps.cfg.Server.Environment == "production"))
	router.Use(middleware.MaxBodySize(maxRequestBody))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	if origins := splitOrigins(deps.cfg.Server.CORSOrigins); len(origins) > 0 {
		corsConfig.AllowOrigins = origins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "Accept-Language", middleware.CorrelationIDHeader}
	corsConfig.ExposeHeaders = []string{middleware.CorrelationIDHeader, "Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining"}
	router.Use(cors.New(corsConfig))

	// Health check and metrics (no auth required)
	router.GET("/healthz", common.HealthCheckWithDeps(serviceName, serviceVersion, deps.healthChecks))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddlewareWithProvider(deps.keys))

	var translateMiddleware []gin.HandlerFunc
	if deps.limiter != nil {
		translateMiddleware = append(translateMiddleware,
			ratelimit.Middleware(deps.limiter, "translations", rateLimitIdentity))
	}
	translation.NewHandler(deps.service).RegisterRoutes(api, translateMiddleware...)

	router.NoRoute(func(c *gin.Context) {
		common.AppErrorResponse(c, common.NewNotFoundError("route not found", nil))
	})

	return router
}

// rateLimitIdentity limits per user, falling back to the chat role
func rateLimitIdentity(c *gin.Context) string {
	if id := c.GetString(middleware.UserIDKey); id != "" {
		return id
	}
	return c.GetString(middleware.UserRoleKey)
}

func splitOrigins(origins string) []string {
	var out []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
