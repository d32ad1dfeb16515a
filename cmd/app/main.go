package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"parceltrack/cmd"
	"parceltrack/internal/jobs"
	"parceltrack/internal/pkg/metrics"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Warnf("No .env file found, relying on process environment")
	}

	config := getConfig()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	gormDB, err := gorm.Open(postgres.Open(postgresDSN(config)), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to postgres: %v", err)
	}

	root, err := cmd.NewCompositionRoot(config, gormDB, logger)
	if err != nil {
		log.Fatalf("Failed to build composition root: %v", err)
	}
	defer root.Close()

	metrics.Register()

	jobManager := root.CreateJobManager(config.StaleSessionAfter)
	if err := jobManager.StartAll(); err != nil {
		log.Fatalf("Failed to start background jobs: %v", err)
	}
	defer jobManager.StopAll()

	if err := run(config, root, logger); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

func run(config cmd.Config, root *cmd.CompositionRoot, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api := echo.New()
	api.HideBanner = true
	root.CreateHTTPServer().RegisterRoutes(api)

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf("0.0.0.0:%s", config.MetricsPort),
		Handler: promhttp.Handler(),
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("Starting API server", "port", config.HTTPPort)
		err := api.Start(fmt.Sprintf("0.0.0.0:%s", config.HTTPPort))
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	group.Go(func() error {
		logger.Info("Starting metrics server", "port", config.MetricsPort)
		err := metricsServer.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := api.Shutdown(shutdownCtx); err != nil {
			logger.Warn("API server shutdown failed", "error", err)
		}
		return metricsServer.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

func getConfig() cmd.Config {
	return cmd.Config{
		HTTPPort:    envOrDefault("HTTP_PORT", "8080"),
		MetricsPort: envOrDefault("METRICS_PORT", "9090"),

		DBHost:     envOrDefault("DB_HOST", "localhost"),
		DBPort:     envOrDefault("DB_PORT", "5432"),
		DBUser:     envOrDefault("DB_USER", "postgres"),
		DBPassword: envOrDefault("DB_PASSWORD", "postgres"),
		DBName:     envOrDefault("DB_NAME", "parceltrack"),
		DBSslMode:  envOrDefault("DB_SSLMODE", "disable"),

		RedisAddr:     envOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		AmqpURL: os.Getenv("AMQP_URL"),

		BackendBaseURL: envOrDefault("BACKEND_BASE_URL", "http://localhost:8081"),

		TrackingInitialBackoff:   envDuration("TRACKING_INITIAL_BACKOFF", 0),
		TrackingBackoffFactor:    envFloat("TRACKING_BACKOFF_FACTOR", 0),
		TrackingMaxBackoff:       envDuration("TRACKING_MAX_BACKOFF", 0),
		TrackingUnavailableAfter: envDuration("TRACKING_UNAVAILABLE_AFTER", 0),

		StaleSessionAfter: envDuration("STALE_SESSION_AFTER", jobs.DefaultStaleAfter),
	}
}

func postgresDSN(config cmd.Config) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		config.DBHost, config.DBPort, config.DBUser,
		config.DBPassword, config.DBName, config.DBSslMode)
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Fatalf("Invalid duration in %s: %v", key, err)
	}
	return parsed
}

func envFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Fatalf("Invalid number in %s: %v", key, err)
	}
	return parsed
}
