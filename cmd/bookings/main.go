package main

import (
	"agendo/internal/bookings/events"
	bookingshandler "agendo/internal/bookings/handler"
	bookingsrepo "agendo/internal/bookings/repository"
	bookingsservice "agendo/internal/bookings/service"
	bookingsvalidator "agendo/internal/bookings/validator"
	cataloghandler "agendo/internal/catalog/handler"
	catalogrepo "agendo/internal/catalog/repository"
	catalogservice "agendo/internal/catalog/service"
	catalogvalidator "agendo/internal/catalog/validator"
	tenantsrepo "agendo/internal/tenants/repository"
	"agendo/internal/tenants/resolver"
	"agendo/pkg/app"
	"agendo/pkg/config"
	"agendo/pkg/kafka"
	kafkaconfig "agendo/pkg/kafka/config"
	kafkamiddleware "agendo/pkg/kafka/middleware"
	"agendo/pkg/metrics"
	"context"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	metrics.Register()

	cfg.Log.Info("Starting Bookings service")
	serverApp := app.NewApplication(cfg)

	publisher := initPublisher(cfg, serverApp)
	catalogService := catalogservice.NewCatalogService(
		catalogrepo.NewMongoServiceRepository(cfg),
		catalogvalidator.NewServiceValidator(cfg.Log),
		cfg,
	)
	bookingService := bookingsservice.NewBookingService(
		bookingsrepo.NewMongoBookingRepository(cfg),
		bookingsrepo.NewBookingLockRepository(cfg),
		catalogService,
		bookingsvalidator.NewBookingValidator(cfg.Log, cfg.MaxBookingDuration),
		publisher,
		cfg,
	)
	tenantResolver := resolver.New(tenantsrepo.NewMongoTenantRepository(cfg), cfg.TenantHeader, cfg.Log)
	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	serverApp.SetApp(tenantResolver.Middleware,
		bookingshandler.NewBookingHandler(bookingService, cfg),
		cataloghandler.NewServiceHandler(catalogService, cfg),
	)
	serverApp.Run()
}

// initPublisher wires booking events to Kafka. Without KAFKA_BROKERS the
// service runs with events disabled.
func initPublisher(cfg *config.Config, serverApp *app.Application) events.Publisher {
	kafkaCfg := kafkaconfig.Load()
	if !kafkaCfg.Enabled() {
		cfg.Log.Info("Kafka brokers not configured, booking events disabled")
		return events.NewNoopPublisher()
	}
	if err := kafkaCfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafkamiddleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(kafkamiddleware.MetricsProducerMiddleware())
	}
	serverApp.OnShutdown(func(context.Context) {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	})

	return events.NewKafkaPublisher(producer, ServiceName, cfg.Log)
}
