package main

import (
	"proconnect/internal/bookings/events"
	"proconnect/internal/bookings/handler"
	"proconnect/internal/bookings/repository"
	"proconnect/internal/bookings/service"
	"proconnect/internal/bookings/validator"
	"proconnect/pkg/app"
	"proconnect/pkg/client"
	"proconnect/pkg/config"
	"proconnect/pkg/kafka"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Bookings service")

	producer := initProducer(cfg)
	bookingService := initServices(cfg, producer)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewBookingHandler(bookingService, cfg.Log))
	serverApp.Run()

	if producer != nil {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	}
	cfg.GracefulShutdown()
}

func initProducer(cfg *config.Config) *kafka.Producer {
	if !cfg.BookingEventsEnable {
		cfg.Log.Info("Booking events disabled")
		return nil
	}

	kafkaCfg, err := kafka.LoadConfig()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}

	producer, err := kafka.NewProducer(kafkaCfg, cfg.BookingEventsTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	cfg.Log.Info("Booking events enabled", "topic", cfg.BookingEventsTopic)
	return producer
}

func initServices(cfg *config.Config, producer *kafka.Producer) service.BookingService {
	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	lockRepo := repository.NewSlotLockRepository(cfg)
	professionalRepo := repository.NewMongoProfessionalRepository(cfg)

	var publisher events.Publisher
	if producer != nil {
		publisher = events.NewKafkaPublisher(producer, cfg.Log)
	}

	var resolver service.NameResolver
	if cfg.DirectoryBaseURL != "" {
		resolver = client.NewDirectoryClient(cfg.DirectoryBaseURL)
		cfg.Log.Info("Party directory enrichment enabled", "base_url", cfg.DirectoryBaseURL)
	}

	bookingService := service.NewBookingService(
		bookingRepo,
		lockRepo,
		professionalRepo,
		bookingValidator,
		resolver,
		publisher,
		cfg,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService
}
