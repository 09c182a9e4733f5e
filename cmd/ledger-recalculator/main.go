package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/feral-file/contract-ledger/internal/adapter"
	"github.com/feral-file/contract-ledger/internal/cache"
	"github.com/feral-file/contract-ledger/internal/config"
	"github.com/feral-file/contract-ledger/internal/ledger"
	"github.com/feral-file/contract-ledger/internal/logger"
	"github.com/feral-file/contract-ledger/internal/messaging"
	"github.com/feral-file/contract-ledger/internal/messaging/jetstream"
	"github.com/feral-file/contract-ledger/internal/store"
	"github.com/feral-file/contract-ledger/internal/sweeper"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadRecalculatorConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "ledger-recalculator",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting ledger recalculator")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("host", cfg.Database.Host))
	}

	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)

	dataStore := store.NewPGStore(db)
	clock := adapter.NewClock()

	// Initialize projection cache
	var projectionCache cache.Cache
	switch cfg.Ledger.CacheBackend {
	case config.CacheBackendRedis:
		redisClient := adapter.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer func() { _ = redisClient.Close() }()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.FatalCtx(ctx, "Failed to connect to Redis", zap.Error(err), zap.String("addr", cfg.Redis.Addr))
		}
		projectionCache = cache.NewRedisCache(redisClient, cfg.Redis.KeyPrefix)
	default:
		projectionCache = cache.NewMemoryCache(clock)
	}
	logger.InfoCtx(ctx, "Initialized projection cache", zap.String("backend", cfg.Ledger.CacheBackend))

	// Connect to NATS for state-change notifications
	var publisher messaging.Publisher
	if cfg.NATS.Enabled() {
		publisher, err = jetstream.NewPublisher(ctx, jetstream.Config{
			URL:            cfg.NATS.URL,
			StreamName:     cfg.NATS.StreamName,
			SubjectPrefix:  cfg.NATS.SubjectPrefix,
			MaxReconnects:  cfg.NATS.MaxReconnects,
			ReconnectWait:  cfg.NATS.ReconnectWait,
			ConnectionName: cfg.NATS.ConnectionName,
		}, adapter.NewNatsJetStream())
		if err != nil {
			logger.FatalCtx(ctx, "Failed to connect to NATS", zap.Error(err), zap.String("url", cfg.NATS.URL))
		}
		defer publisher.Close()
		logger.InfoCtx(ctx, "Connected to NATS", zap.String("stream", cfg.NATS.StreamName))
	}

	epsilon, err := cfg.Ledger.Epsilon()
	if err != nil {
		logger.FatalCtx(ctx, "Invalid ledger configuration", zap.Error(err))
	}
	ledgerService := ledger.New(ledger.Config{
		CacheTTL:     cfg.Ledger.CacheTTL,
		StaleAfter:   cfg.Ledger.StaleAfter,
		DriftEpsilon: epsilon,
	}, dataStore, projectionCache, publisher, clock)

	recalculationSweeper := sweeper.NewRecalculationSweeper(&sweeper.RecalculationSweeperConfig{
		Interval:             cfg.Recalculation.Interval,
		WorkerPoolSize:       cfg.Recalculation.Worker.WorkerPoolSize,
		MaxRetries:           cfg.Recalculation.MaxRetries,
		RetryInitialInterval: cfg.Recalculation.RetryInitialInterval,
		RetryMaxInterval:     cfg.Recalculation.RetryMaxInterval,
	}, dataStore, ledgerService.Calculator(), clock)

	logger.InfoCtx(ctx, "Initialized recalculation sweeper",
		zap.Duration("interval", cfg.Recalculation.Interval),
		zap.Int("worker_pool_size", cfg.Recalculation.Worker.WorkerPoolSize),
		zap.Uint64("max_retries", cfg.Recalculation.MaxRetries),
	)

	// Start the sweeper in a goroutine
	errChan := make(chan error, 1)
	doneChan := make(chan struct{})
	go func() {
		defer close(doneChan)
		if err := recalculationSweeper.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	// Wait for interrupt signal, error or the end of a single run
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		logger.ErrorCtx(ctx, err)
	case <-doneChan:
		logger.InfoCtx(ctx, "Recalculation finished")
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := recalculationSweeper.Stop(shutdownCtx); err != nil {
		logger.ErrorCtx(shutdownCtx, err)
	}

	logger.InfoCtx(shutdownCtx, "Ledger recalculator stopped")
}
