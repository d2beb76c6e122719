package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/victorivanov/complaintbox/internal/api"
	"github.com/victorivanov/complaintbox/internal/config"
	"github.com/victorivanov/complaintbox/internal/database"
	redisclient "github.com/victorivanov/complaintbox/internal/redis"
	"github.com/victorivanov/complaintbox/internal/service"
	"github.com/victorivanov/complaintbox/internal/snowflake"
)

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	// --- Infrastructure ---

	sf, err := snowflake.NewGenerator(cfg.NodeID)
	if err != nil {
		return err
	}

	complaints, err := openStore(ctx, cfg, sf)
	if err != nil {
		return err
	}
	defer complaints.Close()

	var rdb *redisclient.Client
	if cfg.RedisURL != "" {
		rdb, err = redisclient.NewClient(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
	} else {
		logger.Info("REDIS_URL not set, submission rate limiting disabled")
	}

	// --- Handlers ---

	deps := &api.Dependencies{
		Complaints:      api.NewComplaintHandler(service.NewComplaintService(complaints)),
		Redis:           rdb,
		SubmitRateLimit: cfg.SubmitRateLimit,
	}

	// --- Echo ---

	e := echo.New()
	e.HidePort = true
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(api.RequestLogger(logger))
	e.Use(api.MetricsMiddleware())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	api.SetupRouter(e, deps)

	// --- Start ---

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("complaintbox starting", "addr", cfg.ServerAddr, "store", cfg.StoreDriver)
		if err := e.Start(cfg.ServerAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-sigCtx.Done():
	}

	logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg *config.Config, sf *snowflake.Generator) (database.ComplaintRepository, error) {
	switch cfg.StoreDriver {
	case config.DriverBolt:
		return database.OpenBoltRepository(cfg.BoltPath, sf)
	default:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		pool, err := database.NewPostgresPool(connectCtx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return database.NewComplaintRepository(pool, sf), nil
	}
}
