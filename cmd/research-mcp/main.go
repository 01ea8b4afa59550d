package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/research-mcp/internal/cache/memory"
	"github.com/kitbuilder587/research-mcp/internal/config"
	"github.com/kitbuilder587/research-mcp/internal/health"
	"github.com/kitbuilder587/research-mcp/internal/mcpserver"
	"github.com/kitbuilder587/research-mcp/internal/metrics"
	"github.com/kitbuilder587/research-mcp/internal/ratelimit"
	"github.com/kitbuilder587/research-mcp/internal/retry"
	"github.com/kitbuilder587/research-mcp/internal/scheduler"
	"github.com/kitbuilder587/research-mcp/internal/search/tavily"
	"github.com/kitbuilder587/research-mcp/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// логгера еще нет
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()

	searchClient := tavily.New(tavily.Config{
		APIKey:  cfg.Tavily.APIKey,
		BaseURL: cfg.Tavily.BaseURL,
		Timeout: cfg.Tavily.Timeout,
	}, logger)

	bucket := ratelimit.New(ratelimit.Config{
		Capacity:   cfg.RateLimit.Capacity,
		RefillRate: cfg.RateLimit.RefillPerSec,
		MinTokens:  cfg.RateLimit.MinTokens,
	})

	queue := scheduler.New(scheduler.Config{
		MaxConcurrent: cfg.RateLimit.MaxConcurrent,
	}, bucket, logger, m)

	retrier := retry.New(retry.Config{
		MaxAttempts:  cfg.Retry.MaxAttempts,
		BaseBackoff:  cfg.Retry.BaseBackoff,
		GrowthFactor: cfg.Retry.GrowthFactor,
	}, logger).WithOnFailure(func(attempt int, err error) {
		m.RecordRetryAttempt("tavily-search")
	})

	tracker := health.NewTracker(health.TrackerConfig{
		MaxErrors:           cfg.Health.MaxErrors,
		MaxRecoveryAttempts: cfg.Health.MaxRecoveryAttempts,
		RecoveryDecrement:   cfg.Health.RecoveryDecrement,
	})

	cache := memory.New(cfg.Cache.TTL)
	defer cache.Stop()

	orch := service.NewOrchestrator(service.Deps{
		Search:  searchClient,
		Queue:   queue,
		Retrier: retrier,
		Tracker: tracker,
		Cache:   cache,
		Logger:  logger,
		Metrics: m,
		Config: service.Config{
			OverallTimeout:     cfg.Search.OverallTimeout,
			MinCombinedResults: cfg.Search.MinCombinedResults,
			MaxCombinedResults: cfg.Search.MaxCombinedResults,
		},
	})

	// монитор живет независимо от потока запросов; исчерпанное
	// восстановление роняет весь процесс через cancel
	monitor := health.NewMonitor(tracker, health.MonitorConfig{
		Interval: cfg.Health.CheckInterval,
	}, cancel, logger)
	go monitor.Run(ctx)

	metricsSrv := &http.Server{
		Addr:              cfg.Metrics.Addr,
		Handler:           metrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("metrics listening", zap.String("addr", cfg.Metrics.Addr))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	srv := mcpserver.New(orch, logger)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ServeStdio(ctx)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logger.Info("signal received, shutting down", zap.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("shutdown initiated")
	case err := <-serveErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("mcp server exited", zap.Error(err))
		}
	}

	cancel()

	// отменяем все активные операции и ждем, пока они осядут
	queue.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = metricsSrv.Shutdown(shutdownCtx)

	logger.Info("server stopped")
	return nil
}
