package main

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/KasumiMercury/freelance-deadline-alerts/internal/config"
	"github.com/KasumiMercury/freelance-deadline-alerts/internal/delivery"
	"github.com/KasumiMercury/freelance-deadline-alerts/internal/domain"
	"github.com/KasumiMercury/freelance-deadline-alerts/internal/handler"
	"github.com/KasumiMercury/freelance-deadline-alerts/internal/health"
	"github.com/KasumiMercury/freelance-deadline-alerts/internal/infra/dedup"
	"github.com/KasumiMercury/freelance-deadline-alerts/internal/infra/repository"
	"github.com/KasumiMercury/freelance-deadline-alerts/internal/infra/runrecorder"
	"github.com/KasumiMercury/freelance-deadline-alerts/internal/notification"
	"github.com/KasumiMercury/freelance-deadline-alerts/internal/observability/logging"
	"github.com/KasumiMercury/freelance-deadline-alerts/internal/observability/metrics"
	"github.com/KasumiMercury/freelance-deadline-alerts/internal/observability/middleware"
	"github.com/KasumiMercury/freelance-deadline-alerts/internal/service/evaluator"
	"github.com/KasumiMercury/freelance-deadline-alerts/internal/service/scheduler"
)

// Version is set via ldflags at build time
var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		return 1
	}

	obs, err := initObservability(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize observability", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			slog.Warn("observability shutdown error", slog.String("error", err.Error()))
		}
	}()

	slog.SetDefault(obs.Logger())

	if err := config.ValidateForRun(cfg); err != nil {
		slog.Error("configuration validation error", slog.String("error", err.Error()))
		return 1
	}
	for _, warning := range config.Warnings(cfg) {
		slog.Warn(warning, slog.String("event", "config.warning"))
	}

	httpMetrics, err := metrics.NewHTTPMetrics()
	if err != nil {
		slog.Error("failed to initialize HTTP metrics", slog.String("error", err.Error()))
		return 1
	}

	alertMetrics, err := metrics.NewAlertMetrics()
	if err != nil {
		slog.Error("failed to initialize alert metrics", slog.String("error", err.Error()))
		return 1
	}

	// Run result recorder (InfluxDB for local, BigQuery for gcloud)
	runRecorder, err := runrecorder.NewRecorder(ctx, cfg.RunRecorder)
	if err != nil {
		slog.Error("failed to initialize run result recorder", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		if err := runRecorder.Flush(context.Background()); err != nil {
			slog.Warn("failed to flush run result recorder", slog.String("error", err.Error()))
		}
		if err := runRecorder.Close(); err != nil {
			slog.Warn("failed to close run result recorder", slog.String("error", err.Error()))
		}
	}()

	db, err := repository.Open(cfg.Database)
	if err != nil {
		slog.Error("failed to open database",
			slog.String("event", "database.connect.fail"),
			slog.String("driver", cfg.Database.Driver),
			slog.String("error", err.Error()),
		)
		return 1
	}
	defer func() {
		if err := repository.Close(db); err != nil {
			slog.Warn("failed to close database", slog.String("error", err.Error()))
		}
	}()

	if err := repository.Ping(ctx, db); err != nil {
		slog.Error("failed to ping database",
			slog.String("event", "database.connect.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}

	slog.Info("database connected",
		slog.String("driver", cfg.Database.Driver),
		slog.Bool("auto_migrate", cfg.Database.AutoMigrate),
	)

	projectRepo := repository.NewProjectRepository(db)
	var alertStore domain.AlertStore = repository.NewAlertRepository(db)
	var runLock scheduler.RunLock

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = initRedis(ctx, cfg.Redis)
		if err != nil {
			return 1
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				slog.Warn("failed to close redis client", slog.String("error", err.Error()))
			}
		}()

		alertStore = dedup.NewRedisGuard(redisClient, alertStore, cfg.Alert.DedupWindow)
		runLock = dedup.NewRunLock(redisClient, 0)
	}

	baseChannel := delivery.NewChannel(cfg.Email, slog.Default())
	channel := delivery.WithTimeout(baseChannel, cfg.Alert.DispatchTimeout)
	renderer := notification.NewRenderer(cfg.Email.AppURL)

	alertEvaluator := evaluator.NewEvaluator(
		projectRepo,
		alertStore,
		channel,
		renderer,
		alertMetrics,
		evaluator.ConfigFromAlert(cfg.Alert),
	)
	alertScheduler := scheduler.NewScheduler(alertEvaluator, runLock, runRecorder, alertMetrics)

	cronHandler := handler.NewCronHandler(alertScheduler)
	alertHandler := handler.NewAlertHandler(alertScheduler, channel, renderer, alertStore, handler.AlertOptions{
		DefaultRecipient: cfg.Alert.Recipient,
		Simulation:       delivery.IsSimulated(baseChannel),
	})

	// Setup router with observability middleware
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.Gin(middleware.GinConfig{
		SkipPaths:   []string{"/health", "/health/live", "/health/ready"},
		Module:      logging.ModuleHTTP,
		TracerName:  "github.com/KasumiMercury/freelance-deadline-alerts/internal/observability/middleware",
		HTTPMetrics: httpMetrics,
	}))
	r.Use(middleware.PanicRecoveryGin())

	// Health check endpoints
	healthChecker := health.NewChecker(redisClient, db, Version)
	r.GET("/health/live", healthChecker.LiveHandler())
	r.GET("/health/ready", healthChecker.ReadyHandler())
	r.GET("/health", healthChecker.ReadyHandler())

	handler.RegisterRoutes(r, cronHandler, alertHandler, cfg.CronSecret)

	if cfg.Alert.SchedulerEnabled {
		alertScheduler.Start(ctx, cfg.Alert.CheckInterval)
		defer alertScheduler.Stop()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Port),
			slog.String("environment", cfg.Environment),
			slog.Int("days_threshold", cfg.Alert.DaysThreshold),
			slog.Duration("check_interval", cfg.Alert.CheckInterval),
			slog.Bool("scheduler_enabled", cfg.Alert.SchedulerEnabled),
			slog.String("email_provider", baseChannel.Name()),
		)
		serverErr <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown server", slog.String("error", err.Error()))
			return 1
		}

		slog.Info("server exited properly")
		return 0

	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return 0
		}
		slog.Error("server exited with error", slog.String("error", err.Error()))
		return 1
	}
}

func initRedis(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(opts)

	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		slog.Error("failed to instrument redis tracing",
			slog.String("event", "redis.otel.tracing.fail"),
			slog.String("error", err.Error()),
		)
		_ = redisClient.Close()
		return nil, err
	}

	if err := redisotel.InstrumentMetrics(redisClient); err != nil {
		slog.Error("failed to instrument redis metrics",
			slog.String("event", "redis.otel.metrics.fail"),
			slog.String("error", err.Error()),
		)
		_ = redisClient.Close()
		return nil, err
	}

	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.Error("failed to connect redis",
			slog.String("event", "redis.connect.fail"),
			slog.String("error", err.Error()),
		)
		_ = redisClient.Close()
		return nil, err
	}

	slog.Info("redis connected",
		slog.String("addr", cfg.Addr),
	)

	return redisClient, nil
}
