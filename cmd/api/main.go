// Package main is the entry point for the drought monitor API server.
//
// It loads configuration from the environment, connects the Postgres pool,
// wires the evaluation engine, weather and email clients, and the alert
// dispatch pipeline, mounts the HTTP routes, and serves until SIGINT or
// SIGTERM triggers a graceful shutdown.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"droughtwatch/internal/alerts"
	"droughtwatch/internal/api/handlers"
	"droughtwatch/internal/config"
	"droughtwatch/internal/core"
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
	logger.Info("droughtwatch API starting",
		"environment", cfg.Environment,
		"port", cfg.Server.Port,
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

	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	srv.HealthProbes = []core.HealthProbe{poolProbe{pool: pool}}

	triggerHandler := handlers.NewTriggerHandler(triggerRepo, srv.Validator, logger)
	userHandler := handlers.NewUserHandler(userRepo, srv.Validator, logger)
	alertHandler := handlers.NewAlertHandler(alertSvc, srv.Validator, logger)
	notifHandler := handlers.NewNotificationHandler(notifRepo)
	riskHandler := handlers.NewRiskHandler(weatherSvc)

	srv.V1RouteRegistrars = []core.RouteRegistrar{
		triggerHandler.RegisterRoutes,
		userHandler.RegisterRoutes,
		alertHandler.RegisterRoutes,
		notifHandler.RegisterRoutes,
		riskHandler.RegisterRoutes,
	}
	srv.MountRoutes()

	if err := srv.Serve(ctx); err != nil {
		return err
	}

	logger.Info("server stopped cleanly")
	return nil
}

// newPool builds the pgx pool from config and verifies connectivity.
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

// poolProbe reports database health for GET /health.
type poolProbe struct {
	pool *pgxpool.Pool
}

func (p poolProbe) Name() string                    { return "database" }
func (p poolProbe) Check(ctx context.Context) error { return p.pool.Ping(ctx) }

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

// Compile-time checks that the wired concrete types satisfy the handler and
// service contracts.
var (
	_ handlers.TriggerRepo        = (*db.TriggerRepository)(nil)
	_ handlers.UserRepo           = (*db.UserRepository)(nil)
	_ handlers.NotificationReader = (*db.NotificationRepository)(nil)
	_ handlers.AlertRunner        = (*alerts.Service)(nil)
	_ handlers.RiskAssessor       = (*weather.Service)(nil)
	_ alerts.UserLister           = (*db.TriggerRepository)(nil)
)
