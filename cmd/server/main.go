package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dkovalets/wordfreq/internal/analyzer"
	"github.com/dkovalets/wordfreq/internal/events"
	"github.com/dkovalets/wordfreq/internal/server/handler"
	"github.com/dkovalets/wordfreq/internal/source"
	"github.com/dkovalets/wordfreq/internal/source/cache"
	"github.com/dkovalets/wordfreq/pkg/config"
	"github.com/dkovalets/wordfreq/pkg/health"
	"github.com/dkovalets/wordfreq/pkg/kafka"
	"github.com/dkovalets/wordfreq/pkg/logger"
	"github.com/dkovalets/wordfreq/pkg/metrics"
	"github.com/dkovalets/wordfreq/pkg/middleware"
	pkgredis "github.com/dkovalets/wordfreq/pkg/redis"
	"github.com/dkovalets/wordfreq/pkg/resilience"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting word frequency service", "port", cfg.Server.Port)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		go func() {
			addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
			slog.Info("metrics server listening", "addr", addr)
			if err := http.ListenAndServe(addr, metrics.Handler()); err != nil {
				slog.Error("metrics server error", "error", err)
			}
		}()
	}

	breaker := resilience.NewCircuitBreaker("document-fetch", resilience.CircuitBreakerConfig{
		FailureThreshold:    cfg.Source.Breaker.FailureThreshold,
		ResetTimeout:        cfg.Source.Breaker.ResetTimeout,
		HalfOpenMaxRequests: cfg.Source.Breaker.HalfOpenMaxRequests,
	}, func(from, to resilience.State) {
		if m != nil {
			m.CircuitTransitions.WithLabelValues(to.String()).Inc()
		}
	})
	fetcher := source.NewFetcher(cfg.Source, breaker)

	var analyzerFetcher analyzer.Fetcher = fetcher
	var redisClient *pkgredis.Client
	var docCache *cache.CachedFetcher
	redisClient, err = pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, document caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		docCache = cache.New(fetcher, redisClient, cfg.Redis.CacheTTL, m)
		analyzerFetcher = docCache
		slog.Info("document cache enabled",
			"addr", cfg.Redis.Addr,
			"ttl", cfg.Redis.CacheTTL,
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var collector *events.Collector
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalysisCompleted)
		defer producer.Close()
		collector = events.NewCollector(producer, 1024, m)
		collector.Start(ctx)
		defer collector.Close()
		slog.Info("event collector started", "topic", cfg.Kafka.Topics.AnalysisCompleted)
	}

	checker := health.NewChecker()
	checker.Register("fetch_circuit", func(ctx context.Context) health.ComponentHealth {
		if state := breaker.GetState(); state != resilience.StateClosed {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "circuit " + state.String()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	a := analyzer.New(analyzerFetcher, collector, m)
	h := handler.New(a, cfg.Analyze)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/analyze", h.Analyze)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	if m != nil {
		chain = middleware.Metrics(m)(chain)
	}
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("word frequency service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	// In-flight handlers may still call Track; close the collector only
	// after Shutdown has drained them.
	<-shutdownDone

	slog.Info("word frequency service stopped")
}
