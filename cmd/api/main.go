package main

import (
	"context"

	adspaceshandler "adhub/internal/adspaces/handler"
	adspacesrepo "adhub/internal/adspaces/repository"
	adspacesservice "adhub/internal/adspaces/service"
	adspacesvalidator "adhub/internal/adspaces/validator"
	"adhub/internal/bookings/events"
	bookingshandler "adhub/internal/bookings/handler"
	bookingsrepo "adhub/internal/bookings/repository"
	bookingsservice "adhub/internal/bookings/service"
	bookingsvalidator "adhub/internal/bookings/validator"
	"adhub/pkg/app"
	"adhub/pkg/config"
	"adhub/pkg/kafka"
	kafka_config "adhub/pkg/kafka/config"
	kafka_middleware "adhub/pkg/kafka/middleware"
	"adhub/pkg/metrics"
	"adhub/pkg/middleware"
	"adhub/pkg/tracing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const ServiceName = "adhub-api"

func main() {
	cfg := config.Load(ServiceName)

	shutdownTracing, err := tracing.Init(context.Background(), ServiceName, cfg.OtelEndpoint, cfg.OtelEnabled)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize tracing", "error", err)
	}

	cfg.SetStore()
	cfg.SetRedis()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	publisher, closePublisher := initPublisher(cfg, m)

	cfg.Log.Info("Starting AdHub API")
	adSpaceRepo := adspacesrepo.NewAdSpaceRepository(cfg)
	adSpaceService := adspacesservice.NewAdSpaceService(adSpaceRepo, adspacesvalidator.NewAdSpaceValidator(cfg.Log), cfg)
	bookingService := bookingsservice.NewBookingService(
		bookingsrepo.NewBookingRepository(cfg),
		bookingsrepo.NewBookingLockRepository(cfg),
		adSpaceRepo,
		bookingsvalidator.NewBookingValidator(cfg.Log),
		publisher,
		m,
		cfg,
	)
	cfg.Log.Info("Services initialized", "store_driver", cfg.StoreDriver)

	var idempotencyStore middleware.IdempotencyStore
	if cfg.Client.Redis != nil {
		idempotencyStore = middleware.NewRedisIdempotencyStore(cfg.Client.Redis, cfg.IdempotencyTTL, cfg.Log)
	}

	serverApp := app.NewApplication(cfg, m, registry)
	serverApp.SetApp(cfg.Client, idempotencyStore,
		adspaceshandler.NewAdSpaceHandler(adSpaceService, cfg.Log),
		bookingshandler.NewBookingHandler(bookingService, cfg.Log, cfg.BusinessLocation),
	)
	serverApp.OnShutdown(closePublisher)
	serverApp.OnShutdown(app.ShutdownHook(shutdownTracing))
	serverApp.Run()
}

// initPublisher wires the Kafka producer when events are enabled.
func initPublisher(cfg *config.Config, m *metrics.Metrics) (events.Publisher, app.ShutdownHook) {
	noop := func(context.Context) error { return nil }
	if !cfg.EventsEnabled {
		cfg.Log.Info("Booking events disabled")
		return events.NoopPublisher{}, noop
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.BookingEventsTopic, cfg.BookingEventsDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	producer.Use(kafka_middleware.MetricsProducerMiddleware(m))

	cfg.Log.Info("Booking events enabled", "topic", cfg.BookingEventsTopic)
	return events.NewKafkaPublisher(producer, ServiceName), func(context.Context) error {
		return producer.Close()
	}
}
