package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/zecadelgado/patp/internal/app"
	"github.com/zecadelgado/patp/internal/assets"
	"github.com/zecadelgado/patp/internal/depreciation"
	"github.com/zecadelgado/patp/internal/masterdata"
	"github.com/zecadelgado/patp/internal/masterdata/categories"
	"github.com/zecadelgado/patp/internal/masterdata/sectors"
	"github.com/zecadelgado/patp/internal/masterdata/suppliers"
	"github.com/zecadelgado/patp/internal/movements"
	"github.com/zecadelgado/patp/internal/platform/cache"
	"github.com/zecadelgado/patp/internal/platform/db"
	"github.com/zecadelgado/patp/internal/reports"
	"github.com/zecadelgado/patp/internal/schema"
	"github.com/zecadelgado/patp/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	probe := schema.NewProbe(schema.NewPGColumnSource(pool), cfg.AssetTable, logger)
	if err := probe.Refresh(ctx); err != nil {
		// Fail open: the ledger degrades to computed values.
		logger.Warn("schema capability probe failed", slog.Any("error", err))
	}

	engine := depreciation.NewEngine(cfg.UsefulLifeYears)

	categoriesSvc := categories.NewService(categories.NewRepository(pool))
	if err := categoriesSvc.EnsureDefaults(ctx); err != nil {
		logger.Warn("seed default categories", slog.Any("error", err))
	}
	sectorsSvc := sectors.NewService(sectors.NewRepository(pool))
	suppliersSvc := suppliers.NewService(suppliers.NewRepository(pool))
	masterDataHandler := masterdata.NewHandler(logger, categoriesSvc, sectorsSvc, suppliersSvc)

	movementService := movements.NewService(movements.NewRepository(pool), logger)
	movementHandler := movements.NewHandler(logger, movementService)

	assetRepo := assets.NewRepository(pool, cfg.AssetTable)
	assetService := assets.NewService(assetRepo, movementService, probe, sectorsSvc, engine, logger)
	assetHandler := assets.NewHandler(logger, assetService)

	reportCache := cache.NewCache(redisClient, cfg.ReportTTL)
	reportService := reports.NewService(assetService, sectorsSvc, engine, reportCache, logger)
	reportHandler := reports.NewHandler(logger, reportService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		AssetHandler:      assetHandler,
		MovementHandler:   movementHandler,
		MasterDataHandler: masterDataHandler,
		ReportHandler:     reportHandler,
		JobHandler:        jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", slog.Any("error", err))
	}
}
