package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tripweave/service-booking/internal/application"
	"github.com/tripweave/service-booking/internal/config"
	"github.com/tripweave/service-booking/internal/consumer"
	"github.com/tripweave/service-booking/internal/domain/pricing"
	"github.com/tripweave/service-booking/internal/handler"
	"github.com/tripweave/service-booking/internal/notification"
	"github.com/tripweave/service-booking/internal/platform/auth"
	"github.com/tripweave/service-booking/internal/platform/database"
	"github.com/tripweave/service-booking/internal/platform/health"
	"github.com/tripweave/service-booking/internal/platform/kafka"
	"github.com/tripweave/service-booking/internal/platform/logger"
	"github.com/tripweave/service-booking/internal/platform/middleware"
	"github.com/tripweave/service-booking/internal/repository"
	"github.com/tripweave/service-booking/internal/sweeper"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "service-booking")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-booking",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.BookingModel{},
			&repository.StayReservationModel{},
			&repository.TourReservationModel{},
			&repository.StayModel{},
			&repository.TourModel{},
			&repository.TourTimeSlotModel{},
			&repository.PageModel{},
			&repository.UserModel{},
		); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		15*time.Minute,
		7*24*time.Hour,
	)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize repositories
	bookingRepo := repository.NewGormBookingRepository(db)
	stayRepo := repository.NewGormCatalogRepository(db)
	tourRepo := repository.NewGormTourRepository(db)
	pageRepo := repository.NewGormPageRepository(db)
	userDirectory := repository.NewGormUserDirectory(db)

	// Initialize notification dispatcher
	mailer := notification.NewKafkaMailer(kafkaProducer)
	notifier := notification.NewKafkaNotifier(kafkaProducer, "service-booking")
	dispatcher := notification.NewDispatcher(mailer, notifier, pageRepo, userDirectory, cfg.MailFromAddress, log)

	// Initialize application services
	checker := application.NewAvailabilityChecker(bookingRepo, log)
	gateway := pricing.NewStandardGateway()
	bookingService := application.NewBookingService(
		bookingRepo,
		stayRepo,
		tourRepo,
		pageRepo,
		checker,
		gateway,
		dispatcher,
		kafkaProducer,
		log,
	)
	sweepService := application.NewSweepService(bookingRepo, dispatcher, kafkaProducer, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize and start review event consumer in a goroutine
	groupID := cfg.KafkaConfig.GroupPrefix + "booking-service"
	reviewConsumer := consumer.NewReviewEventConsumer(
		cfg.KafkaConfig.Brokers,
		groupID,
		bookingService,
		log,
	)
	defer func() { _ = reviewConsumer.Close() }()

	go func() {
		log.Info("starting review event consumer")
		if err := reviewConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("review event consumer error", zap.Error(err))
		}
	}()

	// Start the sweep worker
	sweepWorker := sweeper.NewWorker(sweepService, log, cfg.SweepInterval, cfg.SweepStaleHours)
	go sweepWorker.Start(ctx)

	// Initialize HTTP handlers
	bookingHandler := handler.NewBookingHandler(bookingService)
	adminBookingHandler := handler.NewAdminBookingHandler(bookingService, sweepService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, "service-booking")
	healthHandler.RegisterRoutes(router)

	// Register routes
	bookingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	adminBookingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-booking...")

	// Cancel the consumer and sweep worker contexts
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-booking stopped")
}
