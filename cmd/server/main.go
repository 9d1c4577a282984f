package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/seu-repo/ambience/internal/adapter/cache"
	catalogclient "github.com/seu-repo/ambience/internal/adapter/catalog"
	"github.com/seu-repo/ambience/internal/adapter/queue"
	"github.com/seu-repo/ambience/internal/adapter/session"
	"github.com/seu-repo/ambience/internal/domain"
	"github.com/seu-repo/ambience/internal/infrastructure/circuitbreaker"
	"github.com/seu-repo/ambience/internal/observability/telemetry"
	"github.com/seu-repo/ambience/internal/ports"
	"github.com/seu-repo/ambience/internal/service/assistant"
	"github.com/seu-repo/ambience/internal/service/catalog"
	"github.com/seu-repo/ambience/internal/service/health"
	"github.com/seu-repo/ambience/internal/service/tracks"
	"github.com/seu-repo/ambience/pkg/config"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	// 2. Initialize Logger
	logger, err := newLogger(cfg.Logging)
	if err != nil {
		log.Fatal("Failed to initialize logger: ", err)
	}
	defer logger.Sync()

	logger.Info("Starting Ambience fulfillment service",
		zap.String("service", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	// 3. Initialize OpenTelemetry (Distributed Tracing)
	if cfg.OpenTelemetry.Enabled {
		tracerProvider, err := telemetry.InitTracer(
			cfg.OpenTelemetry.ServiceName,
			cfg.App.Version,
			cfg.OpenTelemetry.Jaeger.Endpoint,
			cfg.OpenTelemetry.Jaeger.SamplerParam,
		)
		if err != nil {
			logger.Fatal("Failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			if err := tracerProvider.Shutdown(context.Background()); err != nil {
				logger.Error("Error shutting down tracer provider", zap.Error(err))
			}
		}()
	}

	// 4. Initialize Cache (Redis, or process memory for a single replica)
	var store ports.Cache
	if cfg.Redis.URL != "" {
		redisCache, err := cache.NewRedisCache(cfg.Redis.URL, logger)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		store = redisCache
	} else {
		logger.Warn("No redis.url configured, sessions are kept in memory")
		store = cache.NewLocalCache(time.Minute, logger)
	}
	defer store.Close()

	// 5. Initialize Message Queue
	messageQueue, err := queue.New(cfg.Queue.Driver, cfg.Queue.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to message queue", zap.Error(err))
	}
	defer messageQueue.Close()

	// 6. Initialize Services
	breaker := breakerSettings(cfg.CircuitBreaker, "catalog")
	catalogClient := catalogclient.NewHTTPClient(catalogclient.Config{
		URL:     cfg.Catalog.URL,
		Timeout: cfg.Catalog.Timeout,
		Breaker: breaker,
	}, logger)

	catalogService := catalog.NewService(catalogClient, store, catalog.Config{
		FetchTimeout:   cfg.Catalog.Timeout,
		SharedCacheTTL: cfg.Catalog.SharedCacheTTL,
	}, logger)

	random := tracks.NewRandomSource()
	if cfg.Suggestions.Seed != 0 {
		random = tracks.NewSeededRandomSource(cfg.Suggestions.Seed)
	}

	skill := assistant.NewAssistant(
		assistant.DefaultRouter(),
		session.NewStore(store, cfg.Session.TTL, logger),
		catalogService,
		queue.NewPlayPublisher(messageQueue, cfg.Queue.Subject, logger),
		random,
		assistant.Config{
			SuggestionCount: cfg.Suggestions.Count,
			SessionEntities: cfg.Assistant.SessionEntities,
		},
		logger,
	)

	healthService := health.NewService(&health.Config{
		Version: cfg.App.Version,
		Cache:   store,
		Catalog: catalogClient,
	}, logger)

	// 7. Initialize Fiber HTTP Server
	app := newApp(cfg, skill, healthService, logger)

	// 8. Start Background Workers
	startBackgroundWorkers(messageQueue, cfg.Queue.Subject, logger)

	// 9. Start HTTP Server
	go func() {
		logger.Info("Starting HTTP Server", zap.Int("port", cfg.HTTP.Port))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
			logger.Fatal("HTTP Server failed", zap.Error(err))
		}
	}()

	// 10. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}
	return zcfg.Build()
}

func breakerSettings(cfg config.CircuitBreakerConfig, name string) circuitbreaker.Settings {
	s := circuitbreaker.DefaultSettings(name)
	if cfg.MaxRequests > 0 {
		s.MaxRequests = cfg.MaxRequests
	}
	if cfg.Interval > 0 {
		s.Interval = cfg.Interval
	}
	if cfg.Timeout > 0 {
		s.Timeout = cfg.Timeout
	}
	if cfg.FailureThreshold > 0 {
		s.FailureThreshold = cfg.FailureThreshold
	}
	s.FailureRatio = cfg.FailureRatio
	s.MinRequests = cfg.MinRequests
	return s
}

// startBackgroundWorkers consumes play events for the access log.
func startBackgroundWorkers(mq queue.MessageQueue, subject string, logger *zap.Logger) {
	logger.Info("Starting background workers")

	if err := mq.Subscribe(subject, playEventLogger(logger)); err != nil {
		logger.Error("Failed to subscribe to play events", zap.String("subject", subject), zap.Error(err))
	}
}

func playEventLogger(logger *zap.Logger) func([]byte) error {
	return func(msg []byte) error {
		var event domain.PlayEvent
		if err := json.Unmarshal(msg, &event); err != nil {
			logger.Warn("Dropping malformed play event", zap.Error(err))
			return nil
		}
		logger.Info("Track played",
			zap.String("event_id", event.ID),
			zap.String("session_id", event.SessionID),
			zap.String("title", event.Title),
			zap.String("source", event.Source),
		)
		return nil
	}
}
