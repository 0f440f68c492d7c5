package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/portfoliotrack/portfolio_tracker_api/config"
	"github.com/portfoliotrack/portfolio_tracker_api/data"
	"github.com/portfoliotrack/portfolio_tracker_api/data/cache"
	"github.com/portfoliotrack/portfolio_tracker_api/data/repository/postgres"
	"github.com/portfoliotrack/portfolio_tracker_api/internal/externalApi/cloudStorageApi/googleDriveApi"
	"github.com/portfoliotrack/portfolio_tracker_api/internal/externalApi/fxApi"
	"github.com/portfoliotrack/portfolio_tracker_api/internal/externalApi/priceApi"
	"github.com/portfoliotrack/portfolio_tracker_api/internal/reportGenerator/xlsxGenerator"
	"github.com/portfoliotrack/portfolio_tracker_api/internal/scheduler"
	"github.com/portfoliotrack/portfolio_tracker_api/internal/service/portfolioService"
	"github.com/portfoliotrack/portfolio_tracker_api/internal/transport/rest"
)

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config", slog.Any("cfg", cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgClient := data.NewPostgresClient(cfg)
	defer pgClient.Close()

	pgRepo := postgres.NewPostgres(cfg, pgClient)

	redisClient := data.NewRedisClient(cfg)
	defer redisClient.Close()

	redisCache := cache.NewRedisCache(redisClient, cfg)

	priceApiClient := priceApi.New(cfg)
	fxApiClient := fxApi.New(cfg)

	reportGenerator := xlsxGenerator.New()

	var cloudStorage portfolioService.CloudStorage
	sched := scheduler.New()

	if cfg.GoogleDrive.Enabled {
		driveApi := googleDriveApi.New(ctx, cfg)
		cloudStorage = driveApi
		sched.NewCrontabJob("drive cleanup", driveApi.DeleteOldFiles, cfg.Jobs.DriveCleanupCrontab, false)
	}

	portfolioSrv := portfolioService.New(cfg, pgRepo, redisCache, priceApiClient, fxApiClient, reportGenerator, cloudStorage)

	sched.NewIntervalJob("refresh quotes", portfolioSrv.RefreshQuotes, cfg.Jobs.RefreshQuotesInterval, true)
	sched.Start()
	defer sched.Stop()

	router := rest.NewRouter(cfg, rest.NewController(portfolioSrv))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		slog.Info("http server start", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server stopped", slog.String("err", err.Error()))
			cancel()
		}
	}()

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	select {
	case <-interrupt:
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", slog.String("err", err.Error()))
	}
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
