package consumer

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/tripweave/service-booking/internal/events"
	"github.com/tripweave/service-booking/internal/platform/kafka"
)

// ReviewMarker flips the review flag on a booking.
type ReviewMarker interface {
	MarkReviewed(ctx context.Context, bookingID uuid.UUID) error
}

// ReviewEventConsumer listens to review events and flips the review flag on
// the booking the review was written for.
type ReviewEventConsumer struct {
	consumer *kafka.Consumer
	bookings ReviewMarker
	logger   *zap.Logger
}

// NewReviewEventConsumer creates a new ReviewEventConsumer.
func NewReviewEventConsumer(
	brokers []string,
	groupID string,
	bookings ReviewMarker,
	logger *zap.Logger,
) *ReviewEventConsumer {
	kc := kafka.NewConsumer(brokers, groupID, events.TopicReviewEvents, logger)
	return &ReviewEventConsumer{
		consumer: kc,
		bookings: bookings,
		logger:   logger,
	}
}

// Start begins consuming review events. This blocks until the context is cancelled.
func (c *ReviewEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *ReviewEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *ReviewEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var cloudEvent kafka.CloudEvent
	if err := json.Unmarshal(msg.Value, &cloudEvent); err != nil {
		c.logger.Error("failed to parse cloud event from review topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case events.ReviewSubmitted:
		return c.handleReviewSubmitted(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled review event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *ReviewEventConsumer) handleReviewSubmitted(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt events.ReviewSubmittedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse ReviewSubmittedEvent data",
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	c.logger.Info("processing review submitted event",
		zap.String("booking_id", evt.BookingID.String()),
		zap.String("review_id", evt.ReviewID.String()),
	)

	if err := c.bookings.MarkReviewed(ctx, evt.BookingID); err != nil {
		c.logger.Error("failed to mark booking reviewed",
			zap.String("booking_id", evt.BookingID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}
