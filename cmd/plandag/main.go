package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ecanizales/plandag/internal/application/coordinator"
	"github.com/ecanizales/plandag/internal/application/workers"
	"github.com/ecanizales/plandag/internal/config"
	eventsmem "github.com/ecanizales/plandag/pkg/adapters/events/memory"
	eventsredis "github.com/ecanizales/plandag/pkg/adapters/events/redis"
	"github.com/ecanizales/plandag/pkg/adapters/metrics/prometheus"
	storagemem "github.com/ecanizales/plandag/pkg/adapters/storage/memory"
	storageredis "github.com/ecanizales/plandag/pkg/adapters/storage/redis"
	"github.com/ecanizales/plandag/pkg/api/http"
	"github.com/ecanizales/plandag/pkg/api/websocket"
	"github.com/ecanizales/plandag/pkg/domain"
	"github.com/ecanizales/plandag/pkg/ports"
)

var (
	// Version is set by build flags
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("starting plandag",
		zap.String("version", Version),
		zap.String("build_time", BuildTime))

	// Select adapters: in-memory by default, Redis when configured
	var (
		eventBus    ports.EventBus
		runStore    ports.RunStore
		redisClient *goredis.Client
	)

	if cfg.EventBus == "redis" {
		redisClient = goredis.NewClient(&goredis.Options{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			MaxRetries:   cfg.Redis.MaxRetries,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})

		ctx := context.Background()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal("failed to connect to Redis", zap.Error(err))
		}
		logger.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))

		bus, err := eventsredis.NewStreamsEventBus(
			redisClient,
			"plandag-workers",
			fmt.Sprintf("plandag-%d", os.Getpid()),
			logger,
		)
		if err != nil {
			logger.Fatal("failed to create event bus", zap.Error(err))
		}
		eventBus = bus
		runStore = storageredis.NewRunStore(redisClient, cfg.Redis.RunTTL, logger)
	} else {
		eventBus = eventsmem.NewBus()
		runStore = storagemem.NewRunStore()
	}

	metricsCollector := prometheus.NewCollector()

	workerPool := workers.NewPool(
		cfg.Workers.PoolSize,
		dryRunExecutor(logger),
		metricsCollector,
		logger,
		cfg.Workers.HealthCheckInterval,
	)

	if err := workerPool.Start(); err != nil {
		logger.Fatal("failed to start worker pool", zap.Error(err))
	}

	coordinatorMgr := coordinator.NewManager(
		eventBus,
		runStore,
		metricsCollector,
		workerPool,
		coordinator.NewValidator(),
		logger,
		cfg.Timeouts.RunExecutionTimeout,
	)

	httpServer := http.NewServer(&http.Config{
		Port:        cfg.HTTPPort,
		Coordinator: coordinatorMgr,
		Pool:        workerPool,
		Logger:      logger,
	})

	wsHandler := websocket.NewHandler(eventBus, logger)
	httpServer.SetupWebSocket(wsHandler)

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	logger.Info("plandag started",
		zap.Int("http_port", cfg.HTTPPort),
		zap.String("event_bus", cfg.EventBus),
		zap.Int("worker_pool_size", cfg.Workers.PoolSize))

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	if err := coordinatorMgr.Shutdown(shutdownCtx); err != nil {
		logger.Error("coordinator shutdown error", zap.Error(err))
	}

	if err := workerPool.Shutdown(shutdownCtx); err != nil {
		logger.Error("worker pool shutdown error", zap.Error(err))
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error("Redis close error", zap.Error(err))
		}
	}

	logger.Info("plandag shut down complete")
}

// dryRunExecutor simulates story execution. A story's metadata may carry a
// "duration_ms" hint to simulate work and a "fail" flag to simulate failure.
func dryRunExecutor(logger *zap.Logger) ports.StoryExecutor {
	return ports.StoryExecutorFunc(func(ctx context.Context, story domain.Story) error {
		duration := 100 * time.Millisecond
		if hint, ok := story.Metadata["duration_ms"].(float64); ok && hint > 0 {
			duration = time.Duration(hint) * time.Millisecond
		}

		logger.Debug("executing story",
			zap.String("story_id", story.ID),
			zap.Duration("duration", duration))

		select {
		case <-time.After(duration):
		case <-ctx.Done():
			return ctx.Err()
		}

		if fail, ok := story.Metadata["fail"].(bool); ok && fail {
			return fmt.Errorf("story %s marked to fail", story.ID)
		}
		return nil
	})
}

// initLogger initializes the logger based on log level
func initLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	return logger
}
