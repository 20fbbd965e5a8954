package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/verdeai/backend/config"
	httpDelivery "github.com/verdeai/backend/internal/delivery/http"
	"github.com/verdeai/backend/internal/domain"
	"github.com/verdeai/backend/internal/infrastructure/cache"
	"github.com/verdeai/backend/internal/infrastructure/climatetrace"
	"github.com/verdeai/backend/internal/infrastructure/gemini"
	"github.com/verdeai/backend/internal/platform/logger"
	"github.com/verdeai/backend/internal/usecase"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Server.Environment)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zlog.Sync()

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	zlog.Info("starting VerdeAI backend",
		zap.String("version", httpDelivery.Version),
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("cache_type", cfg.Cache.Type),
		zap.Duration("cache_ttl", cfg.Cache.TTL),
	)

	// Initialize infrastructure dependencies
	cacheRepo, err := newCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := cacheRepo.Close(); err != nil {
			zlog.Warn("cache close failed", zap.Error(err))
		}
	}()

	model, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:            cfg.GenAI.APIKey,
		Model:             cfg.GenAI.Model,
		Timeout:           cfg.GenAI.Timeout,
		RequestsPerMinute: cfg.GenAI.RequestsPerMinute,
		Language:          cfg.GenAI.Language,
		BaseURL:           cfg.GenAI.BaseURL,
		Logger:            zlog,
	})
	if err != nil {
		return fmt.Errorf("create model client: %w", err)
	}

	emissionsClient := climatetrace.NewClient(cfg.Emissions.BaseURL, zlog)
	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		emissionsClient.SetDebug(true)
	}

	// Initialize usecase layer
	identifier := usecase.NewPhotoIdentifier(cacheRepo, model, usecase.PhotoIdentifierConfig{
		CacheTTL: cfg.Cache.TTL,
		Logger:   zlog,
	})
	scorer := usecase.NewProductScorer(cacheRepo, model, usecase.ProductScorerConfig{
		CacheTTL: cfg.Cache.TTL,
		Logger:   zlog,
	})
	analyzer := usecase.NewAnalyzer(identifier, scorer, model, usecase.AnalyzerConfig{Logger: zlog})
	emissions := usecase.NewEmissionsService(cacheRepo, emissionsClient, usecase.EmissionsServiceConfig{
		CacheTTL: cfg.Emissions.TTL,
		Logger:   zlog,
	})

	handler := httpDelivery.NewHandler(identifier, scorer, analyzer, emissions, httpDelivery.HandlerConfig{
		DefaultCountry: cfg.Emissions.Country,
		Logger:         zlog,
	})

	router, err := httpDelivery.SetupRouter(cfg, handler, zlog)
	if err != nil {
		return fmt.Errorf("setup router: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// model calls for photos can take a while
		WriteTimeout: cfg.GenAI.Timeout*3 + 10*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
		zlog.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newCache(ctx context.Context, cfg *config.Config) (domain.CacheRepository, error) {
	if cfg.Cache.Type == "redis" {
		redisCache, err := cache.NewRedisCache(cfg.Cache.RedisURL, "verdeai:")
		if err != nil {
			return nil, fmt.Errorf("create redis cache: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := redisCache.Ping(pingCtx); err != nil {
			redisCache.Close()
			return nil, fmt.Errorf("redis not reachable: %w", err)
		}
		return redisCache, nil
	}

	return cache.NewMemoryCache(cache.MemoryCacheConfig{MaxEntries: cfg.Cache.MaxEntries}), nil
}
