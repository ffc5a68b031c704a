package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/zecadelgado/patp/internal/app"
	"github.com/zecadelgado/patp/internal/assets"
	"github.com/zecadelgado/patp/internal/depreciation"
	"github.com/zecadelgado/patp/internal/masterdata/sectors"
	"github.com/zecadelgado/patp/internal/movements"
	"github.com/zecadelgado/patp/internal/platform/cache"
	"github.com/zecadelgado/patp/internal/platform/db"
	"github.com/zecadelgado/patp/internal/reports"
	"github.com/zecadelgado/patp/internal/schema"
	"github.com/zecadelgado/patp/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}

	probe := schema.NewProbe(schema.NewPGColumnSource(pool), cfg.AssetTable, logger)
	if err := probe.Refresh(ctx); err != nil {
		logger.Warn("schema capability probe failed", slog.Any("error", err))
	}

	engine := depreciation.NewEngine(cfg.UsefulLifeYears)
	sectorsSvc := sectors.NewService(sectors.NewRepository(pool))
	movementService := movements.NewService(movements.NewRepository(pool), logger)
	assetRepo := assets.NewRepository(pool, cfg.AssetTable)
	assetService := assets.NewService(assetRepo, movementService, probe, sectorsSvc, engine, logger)

	reportCache := cache.NewCache(redisClient, cfg.ReportTTL)
	reportService := reports.NewService(assetService, sectorsSvc, engine, reportCache, logger)

	revalueTask, err := jobs.NewAssetRevaluationTask(time.Now())
	if err != nil {
		logger.Error("build revaluation task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{
				Type:    jobs.TaskAssetRevaluation,
				Handler: jobs.NewAssetRevaluationHandler(assetService, reportService, logger),
			},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.RevaluationCron, Task: revalueTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("build worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker")
	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker shut down")
}
