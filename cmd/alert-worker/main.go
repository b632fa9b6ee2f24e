// Package main is the alert worker: it periodically evaluates every user
// with active triggers against live weather and dispatches alert emails.
// Same wiring as the API server, minus the HTTP surface.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"droughtwatch/internal/alerts"
	"droughtwatch/internal/config"
	"droughtwatch/internal/db"
	"droughtwatch/internal/engine"
	"droughtwatch/internal/external"
	"droughtwatch/internal/types"
	"droughtwatch/internal/weather"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("alert worker starting",
		"environment", cfg.Environment,
		"cycle_interval", cfg.Alerts.CycleInterval,
		"concurrency", cfg.Alerts.CycleConcurrency,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := newPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	triggerRepo := db.NewTriggerRepository(pool)
	notifRepo := db.NewNotificationRepository(pool)
	userRepo := db.NewUserRepository(pool)

	clock := types.RealClock{}

	weatherClient := external.NewOpenWeatherClient(
		&http.Client{Timeout: cfg.Weather.RequestTimeout},
		external.OpenWeatherClientConfig{
			APIKey:  cfg.Weather.OpenWeatherAPIKey.Unmask(),
			BaseURL: cfg.Weather.BaseURL,
			Logger:  logger,
		},
	)
	weatherSvc := weather.NewService(weatherClient, cfg.Weather.RiskCacheTTL, clock, logger)

	emailClient := external.NewSendGridClient(
		&http.Client{Timeout: cfg.Email.RequestTimeout},
		external.SendGridClientConfig{
			APIKey:    cfg.Email.SendGridAPIKey.Unmask(),
			FromEmail: cfg.Email.FromAddress,
			FromName:  cfg.Email.FromName,
			Logger:    logger,
		},
	)

	evaluator := engine.NewEvaluator(triggerRepo, logger)
	limiter := engine.NewRateLimiter(notifRepo, clock, cfg.Alerts.RateLimitWindow(), logger)
	alertSvc := alerts.NewService(evaluator, limiter, userRepo, notifRepo, emailClient, weatherSvc, clock, logger)

	runCycle := func() {
		start := time.Now()
		if err := alertSvc.RunCycle(ctx, triggerRepo, cfg.Alerts.CycleConcurrency); err != nil {
			logger.Error("evaluation cycle failed", "error", err)
			return
		}
		logger.Info("evaluation cycle completed", "duration", time.Since(start))
	}

	// One cycle immediately on startup, then on the interval.
	runCycle()

	ticker := time.NewTicker(cfg.Alerts.CycleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("alert worker stopping")
			return nil
		case <-ticker.C:
			runCycle()
		}
	}
}

func newPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(cfg.URL.Unmask())
	if err != nil {
		return nil, fmt.Errorf("parsing database url: %w", err)
	}
	pc.MaxConns = int32(cfg.MaxConns)
	pc.MinConns = int32(cfg.MinConns)
	pc.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("creating database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return pool, nil
}

var _ alerts.UserLister = (*db.TriggerRepository)(nil)

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
