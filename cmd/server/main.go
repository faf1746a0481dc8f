package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/leasehub/exposure-rotation/internal/api"
	"github.com/leasehub/exposure-rotation/internal/api/handler"
	"github.com/leasehub/exposure-rotation/internal/cache"
	"github.com/leasehub/exposure-rotation/internal/config"
	"github.com/leasehub/exposure-rotation/internal/db"
	"github.com/leasehub/exposure-rotation/internal/metrics"
	"github.com/leasehub/exposure-rotation/internal/queue"
	"github.com/leasehub/exposure-rotation/internal/ratelimiter"
	"github.com/leasehub/exposure-rotation/internal/repository"
	"github.com/leasehub/exposure-rotation/internal/rotation"
	"github.com/leasehub/exposure-rotation/internal/service"
	"github.com/leasehub/exposure-rotation/internal/worker"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	// ---- configuration ----
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// ---- database ----
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("database migrations applied")

	// ---- cache store ----
	// An unreachable cache is not fatal: the partitioner and cooldown gate
	// have their own fallbacks.
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer func() { _ = rdb.Close() }()

	store := cache.NewRedisStore(rdb, cache.WithKeyPrefix(cfg.RedisKeyPrefix))
	pingCtx, cancelPing := context.WithTimeout(ctx, 2*time.Second)
	if err := store.Ping(pingCtx); err != nil {
		logger.Warn("cache store unreachable, starting in degraded mode", zap.Error(err))
	}
	cancelPing()

	// ---- core dependencies ----
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	tasks := queue.New(cfg.RotationBuffer)
	m.TrackBufferDepth(tasks.Depth)
	repo := repository.NewPgItemRepository(pool, cfg.PremiumMaxRank)
	limiter := ratelimiter.New(cfg.RotationRateLimit)
	hooks := m.RotationHooks()

	partitioner := rotation.NewPartitioner(store, cfg.CounterTTL, cfg.CacheTimeout, logger, hooks)
	gate := rotation.NewCooldownGate(store, cfg.CooldownTTL, cfg.CacheTimeout, logger, hooks)
	cursor := rotation.NewCursor(repo, gate, tasks, logger, hooks)
	compactor := rotation.NewCompactor(repo, logger, hooks)

	services := api.Services{
		Homepage: service.NewHomepageService(repo, partitioner, service.PanelConfig{
			PremiumSlots:   cfg.PremiumSlots,
			RecommendSlots: cfg.RecommendSlots,
			CandidateLimit: cfg.CandidateLimit,
		}, logger),
		Feed:       service.NewFeedService(cursor, cfg.FeedCount, cfg.FeedMaxCount, logger),
		Activation: service.NewActivationService(repo, rotation.NewSlotAssigner(repo), logger),
		Compaction: service.NewCompactionService(compactor),
		Health: []handler.Check{
			{Name: "postgres", Critical: true, Probe: pool.Ping},
			{Name: "redis", Probe: store.Ping},
		},
	}

	// ---- worker pool ----
	// Context for all background goroutines; cancelled on shutdown signal.
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	onMoved, onFailed := m.WorkerHooks()
	rotationPool := worker.NewPool(cfg, tasks, repo, limiter, logger, worker.MetricHooks{
		OnMoved:  onMoved,
		OnFailed: onFailed,
	})
	rotationPool.Start(workerCtx)

	compactionW := worker.NewCompactionWorker(compactor, cfg.CompactionInterval, cfg.CompactionTimeout, logger)
	go compactionW.Run(workerCtx)

	if cfg.AdminSecret == "" {
		logger.Warn("ADMIN_BEARER_SECRET is empty, internal endpoints are disabled")
	}

	// ---- HTTP server ----
	router := api.NewRouter(services, tasks, reg, cfg.AdminSecret, logger)
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start server in a goroutine so it does not block the shutdown listener.
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")

	// 1. Stop accepting new HTTP requests.
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// 2. Signal all workers to stop; buffered tasks are discarded.
	cancelWorkers()

	// 3. Wait for in-flight tail-moves to commit.
	rotationPool.Wait()

	logger.Info("server stopped cleanly", zap.Int("discarded_rotations", tasks.Depth()))
}
