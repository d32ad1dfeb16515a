package cmd

import "time"

// Config carries everything the composition root needs to wire the service.
// Values come from the environment; see cmd/app/main.go for the variable
// names and defaults.
type Config struct {
	HTTPPort    string
	MetricsPort string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	RedisAddr     string
	RedisPassword string

	AmqpURL string

	BackendBaseURL string

	TrackingInitialBackoff   time.Duration
	TrackingBackoffFactor    float64
	TrackingMaxBackoff       time.Duration
	TrackingUnavailableAfter time.Duration

	StaleSessionAfter time.Duration
}
