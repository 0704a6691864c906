//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/tripweave/service-booking/internal/application"
	"github.com/tripweave/service-booking/internal/consumer"
	bookingDomain "github.com/tripweave/service-booking/internal/domain/booking"
	"github.com/tripweave/service-booking/internal/domain/pricing"
	bookingEvents "github.com/tripweave/service-booking/internal/events"
	"github.com/tripweave/service-booking/internal/notification"
	"github.com/tripweave/service-booking/internal/platform/kafka"
	"github.com/tripweave/service-booking/internal/repository"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// bookingStack holds wired-up booking service components.
type bookingStack struct {
	Service         *application.BookingService
	Sweeps          *application.SweepService
	ReviewConsumer  *consumer.ReviewEventConsumer
	CleanupProducer func()
}

// setupContainers starts PostgreSQL and Kafka testcontainers and returns a connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_booking",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_booking sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error)
	require.NoError(t, db.AutoMigrate(
		&repository.BookingModel{},
		&repository.StayReservationModel{},
		&repository.TourReservationModel{},
		&repository.StayModel{},
		&repository.TourModel{},
		&repository.TourTimeSlotModel{},
		&repository.PageModel{},
		&repository.UserModel{},
	))

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers,
		bookingEvents.TopicBookingEvents,
		bookingEvents.TopicNotificationEvents,
		bookingEvents.TopicMailOutbound,
		bookingEvents.TopicReviewEvents,
	)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupBookingStack wires up the full booking service stack.
func setupBookingStack(t *testing.T, db *gorm.DB, brokers []string) *bookingStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	bookingRepo := repository.NewGormBookingRepository(db)
	stayRepo := repository.NewGormCatalogRepository(db)
	tourRepo := repository.NewGormTourRepository(db)
	pageRepo := repository.NewGormPageRepository(db)
	userDirectory := repository.NewGormUserDirectory(db)

	producer := kafka.NewProducer(brokers, logger)
	mailer := notification.NewKafkaMailer(producer)
	notifier := notification.NewKafkaNotifier(producer, "service-booking-test")
	dispatcher := notification.NewDispatcher(mailer, notifier, pageRepo, userDirectory, "test@tripweave.io", logger)

	checker := application.NewAvailabilityChecker(bookingRepo, logger)
	gateway := pricing.NewStandardGateway()
	bookingSvc := application.NewBookingService(
		bookingRepo, stayRepo, tourRepo, pageRepo,
		checker, gateway, dispatcher, producer, logger,
	)
	sweeps := application.NewSweepService(bookingRepo, dispatcher, producer, logger)

	groupID := fmt.Sprintf("test-booking-%s", uuid.New().String()[:8])
	reviewConsumer := consumer.NewReviewEventConsumer(brokers, groupID, bookingSvc, logger)

	return &bookingStack{
		Service:         bookingSvc,
		Sweeps:          sweeps,
		ReviewConsumer:  reviewConsumer,
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// seedCatalog inserts a page with its operator user and a stay.
func seedCatalog(t *testing.T, db *gorm.DB, policy string) (pageID, operatorID, stayID uuid.UUID) {
	t.Helper()
	pageID = uuid.New()
	operatorID = uuid.New()
	stayID = uuid.New()

	require.NoError(t, db.Create(&repository.UserModel{
		ID:       operatorID,
		FullName: "Test Host",
		Email:    "host@example.com",
	}).Error)
	require.NoError(t, db.Create(&repository.PageModel{
		ID:            pageID,
		Name:          "Test Page",
		RelatedUserID: operatorID,
		BookingPolicy: policy,
		ContactEmail:  "host@example.com",
	}).Error)
	require.NoError(t, db.Create(&repository.StayModel{
		ID:               stayID,
		PageID:           pageID,
		Name:             "Test Villa",
		CurrencyID:       "THB",
		MaxAdults:        4,
		MaxNumberOfGuest: 6,
		Pricing:          []byte(`{"base_price": 100000}`),
		CreatedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}).Error)
	return pageID, operatorID, stayID
}

// seedConfirmedStayBooking inserts a confirmed stay booking whose reservation
// ended in the past.
func seedConfirmedStayBooking(t *testing.T, db *gorm.DB, pageID, stayID, customerID uuid.UUID, endDaysAgo int) uuid.UUID {
	t.Helper()
	now := time.Now().UTC()
	end := now.AddDate(0, 0, -endDaysAgo)
	start := end.AddDate(0, 0, -2)
	bookingID := uuid.New()

	bkCode, err := bookingDomain.GenerateCode()
	require.NoError(t, err)
	resCode, err := bookingDomain.GenerateCode()
	require.NoError(t, err)

	require.NoError(t, db.Create(&repository.BookingModel{
		ID:          bookingID,
		BookingCode: bkCode,
		Type:        string(bookingDomain.TypeStay),
		Status:      string(bookingDomain.StatusConfirmed),
		PayMethod:   string(bookingDomain.PayMethodPostpaid),
		TotalPrice:  200000,
		CurrencyID:  "THB",
		CreatedByID: customerID,
		PageID:      pageID,
		ServiceID:   stayID,
		ActByID:     customerID,
		Version:     1,
		CreatedAt:   start,
		UpdatedAt:   start,
	}).Error)
	require.NoError(t, db.Create(&repository.StayReservationModel{
		ID:              uuid.New(),
		ReservationCode: resCode,
		StayID:          stayID,
		BookingID:       bookingID,
		StartDate:       start,
		EndDate:         end,
		NumAdult:        2,
		Price:           200000,
		UserInfo:        []byte(`{"name": "Test Guest", "email": "guest@example.com"}`),
		Metadata:        []byte(`{"stay_name": "Test Villa", "total_price": 200000, "currency_id": "THB"}`),
		CreatedAt:       start,
	}).Error)
	return bookingID
}

// publishTestEvent publishes a CloudEvent to Kafka.
func publishTestEvent(t *testing.T, brokers []string, topic, source, eventType string, data interface{}) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	producer := kafka.NewProducer(brokers, logger)
	defer func() { _ = producer.Close() }()

	ce, err := kafka.NewCloudEvent(source, eventType, data)
	require.NoError(t, err, "failed to create cloud event")

	err = producer.PublishEvent(context.Background(), topic, ce)
	require.NoError(t, err, "failed to publish event")
}

// waitForBookingStatus polls the bookings table until the status matches.
func waitForBookingStatus(t *testing.T, db *gorm.DB, bookingID uuid.UUID, expectedStatus string, timeout time.Duration) repository.BookingModel {
	t.Helper()
	var result repository.BookingModel
	require.Eventually(t, func() bool {
		var model repository.BookingModel
		err := db.Where("id = ?", bookingID).First(&model).Error
		if err != nil {
			return false
		}
		if model.Status == expectedStatus {
			result = model
			return true
		}
		return false
	}, timeout, 200*time.Millisecond, "booking did not transition to %s", expectedStatus)
	return result
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
