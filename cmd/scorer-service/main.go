// cmd/scorer-service/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"ecoscore/internal/cache"
	"ecoscore/internal/common/config"
	"ecoscore/internal/common/database"
	apperrors "ecoscore/internal/common/errors"
	"ecoscore/internal/common/logger"
	"ecoscore/internal/common/observability"
	"ecoscore/internal/footprint"
	"ecoscore/internal/normalizer"
	"ecoscore/internal/percentile"
	"ecoscore/internal/pipeline"
	"ecoscore/internal/providers/aiestimate"
	"ecoscore/internal/providers/carbonledger"
	"ecoscore/internal/rewards"
	"ecoscore/internal/scorer"
	"ecoscore/pkg/benchmarks"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting scorer service...",
		zap.String("name", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Init PostgreSQL with retry; degrade to memory stores on failure ---
	var scoreStore cache.ScoreStore
	var accountStore rewards.AccountStore
	var pg *database.PostgresClient
	maxAttempts := 1 + apperrors.GetRetryCount(apperrors.ErrCodeStoreUnavailable)
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		defer pingCancel()
		return pg.Ping(pingCtx)
	}, maxAttempts, 2*time.Second, zapLog, "PostgreSQL initialization")

	if err != nil {
		zapLog.Warn("postgres unavailable, running on in-memory stores", zap.Error(err))
		scoreStore = cache.NewMemoryScoreStore()
		accountStore = rewards.NewMemoryAccountStore()
	} else {
		defer pg.Close()
		scoreStore = cache.NewPostgresScoreStore(pg.GetDB())
		accountStore = rewards.NewPostgresAccountStore(pg.GetDB())
		zapLog.Info("PostgreSQL connected successfully")
	}

	// --- Init Redis; the hot layer is optional ---
	var redisClient *redis.Client
	rdb, err := database.NewRedis(cfg.Database.Redis)
	if err == nil {
		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		err = rdb.Ping(pingCtx)
		pingCancel()
	}
	if err != nil {
		zapLog.Warn("redis unavailable, running without hot cache layer", zap.Error(err))
	} else {
		defer rdb.Close()
		redisClient = rdb.GetClient()
		zapLog.Info("Redis connected successfully")
	}

	// --- Providers ---
	primary := carbonledger.NewClient(carbonledger.Config{
		BaseURL: cfg.Providers.CarbonLedger.BaseURL,
		APIKey:  cfg.Providers.CarbonLedger.APIKey,
		Timeout: time.Duration(cfg.Providers.CarbonLedger.Timeout) * time.Millisecond,
	}, log)

	secondary, err := aiestimate.NewClient(aiestimate.Config{
		BaseURL: cfg.Providers.AIEstimate.BaseURL,
		APIKey:  cfg.Providers.AIEstimate.APIKey,
		Timeout: time.Duration(cfg.Providers.AIEstimate.Timeout) * time.Millisecond,
	}, log)
	if err != nil {
		zapLog.Fatal("ai estimator client failed", zap.Error(err))
	}

	// --- Percentile benchmarks, with optional registry override ---
	ranker := percentile.NewRanker()
	if cfg.Cache.BenchmarkPath != "" {
		if reg, err := benchmarks.LoadRegistry(cfg.Cache.BenchmarkPath); err != nil {
			zapLog.Warn("benchmark registry load failed, using built-in table", zap.Error(err))
		} else {
			ranker = percentile.NewRankerWithBenchmarks(reg.ToOverrides())
			zapLog.Info("benchmark registry loaded",
				zap.String("path", cfg.Cache.BenchmarkPath),
				zap.String("version", reg.Version),
			)
		}
	}

	// --- Pipeline wiring ---
	norm := normalizer.New(log)
	estimator := footprint.NewEstimator(primary, secondary, log,
		footprint.WithQualityThreshold(cfg.Providers.QualityThreshold),
		footprint.WithCallTimeout(time.Duration(cfg.Providers.CarbonLedger.Timeout)*time.Millisecond),
	)
	scoring := scorer.New(cfg.Scoring.Weights, cfg.Scoring.GradeBands, ranker, log)

	coordinatorOpts := []cache.Option{}
	if redisClient != nil {
		coordinatorOpts = append(coordinatorOpts,
			cache.WithRedis(redisClient, time.Duration(cfg.Cache.TTLSeconds)*time.Second))
	}
	coordinator := cache.NewCoordinator(scoreStore, log, coordinatorOpts...)

	aggregator := rewards.NewAggregator(accountStore, cfg.Rewards, cfg.Scoring.FavorableGrades, log)

	service := pipeline.NewService(norm, estimator, scoring, coordinator, aggregator, obs, log)

	// --- HTTP edge: evaluation gateway plus operational endpoints ---
	mux := http.NewServeMux()
	(&gateway{service: service}).register(mux)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:    cfg.App.MetricsAddr,
		Handler: mux,
	}

	go func() {
		zapLog.Info("http server listening", zap.String("addr", cfg.App.MetricsAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	zapLog.Info("shutting down", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)
}
