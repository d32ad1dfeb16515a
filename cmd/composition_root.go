package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"parceltrack/internal/adapters/in/http"
	"parceltrack/internal/adapters/out/backendhttp"
	"parceltrack/internal/adapters/out/postgres/deliveryrepo"
	"parceltrack/internal/adapters/out/rabbitmq"
	"parceltrack/internal/adapters/out/rediscache"
	"parceltrack/internal/adapters/out/stream"
	"parceltrack/internal/core/application/store"
	"parceltrack/internal/core/application/usecases/commands"
	"parceltrack/internal/core/application/usecases/queries"
	"parceltrack/internal/core/domain/events"
	"parceltrack/internal/jobs"
	"parceltrack/internal/observer"
	"parceltrack/internal/tracking"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CompositionRoot wires every adapter, the record store, the tracking
// supervisor, and the observer hub into one object graph. Listener
// registration order matters: the supervisor reacts to a status change
// before the hub fans it out, so a subscriber never sees a status whose
// session state lags behind.
type CompositionRoot struct {
	gormDB      *gorm.DB
	logger      *slog.Logger
	recordStore *store.RecordStore
	supervisor  *tracking.Supervisor
	hub         *observer.Hub
	publisher   *rabbitmq.Publisher
}

func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	dispatcher := events.NewDispatcher()

	repo := deliveryrepo.NewGormDeliveryRepository(gormDB)
	backend := backendhttp.NewClient(config.BackendBaseURL, nil)
	recordStore := store.NewRecordStore(repo, backend, dispatcher, logger)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr,
		Password: config.RedisPassword,
	})
	sampleCache := rediscache.NewSampleCache(redisClient, rediscache.DefaultTTL)

	hub := observer.NewHub(sampleCache, logger)
	transport := stream.NewLoopback(nil, logger)
	supervisor := tracking.NewSupervisor(transport, hub, sampleCache, recordStore,
		trackingConfig(config), logger)

	dispatcher.Register(supervisor)
	dispatcher.Register(hub)

	root := &CompositionRoot{
		gormDB:      gormDB,
		logger:      logger,
		recordStore: recordStore,
		supervisor:  supervisor,
		hub:         hub,
	}

	if config.AmqpURL != "" {
		publisher, err := rabbitmq.NewPublisher(config.AmqpURL, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
		}
		dispatcher.Register(publisher)
		root.publisher = publisher
	}

	return root, nil
}

func trackingConfig(config Config) tracking.Config {
	cfg := tracking.DefaultConfig()
	if config.TrackingInitialBackoff > 0 {
		cfg.InitialBackoff = config.TrackingInitialBackoff
	}
	if config.TrackingBackoffFactor > 1 {
		cfg.BackoffFactor = config.TrackingBackoffFactor
	}
	if config.TrackingMaxBackoff > 0 {
		cfg.MaxBackoff = config.TrackingMaxBackoff
	}
	if config.TrackingUnavailableAfter > 0 {
		cfg.UnavailableAfter = config.TrackingUnavailableAfter
	}
	return cfg
}

func (c *CompositionRoot) CreateHTTPServer() *http.Server {
	return http.NewServer(
		commands.NewCreateDeliveryCommandHandler(c.recordStore),
		commands.NewEditDeliveryCommandHandler(c.recordStore),
		commands.NewRequestTransitionCommandHandler(c.recordStore),
		queries.NewGetDeliveryQueryHandler(c.gormDB),
		queries.NewGetActiveDeliveriesQueryHandler(c.gormDB),
		c.supervisor,
		c.hub,
	)
}

func (c *CompositionRoot) CreateJobManager(staleAfter time.Duration) *jobs.JobManager {
	return jobs.NewJobManager(c.recordStore, c.supervisor, staleAfter, c.logger)
}

// Close shuts down the tracking supervisor and the event publisher. Call
// after the HTTP server has stopped accepting requests.
func (c *CompositionRoot) Close() {
	c.supervisor.Shutdown()
	if c.publisher != nil {
		if err := c.publisher.Close(); err != nil {
			c.logger.Warn("Failed to close rabbitmq publisher", "error", err)
		}
	}
}
