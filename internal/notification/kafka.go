package notification

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tripweave/service-booking/internal/events"
	"github.com/tripweave/service-booking/internal/platform/kafka"
)

// KafkaMailer hands outbound mail to the external mail service through the
// mail.outbound topic.
type KafkaMailer struct {
	producer *kafka.Producer
}

// NewKafkaMailer creates a KafkaMailer.
func NewKafkaMailer(producer *kafka.Producer) *KafkaMailer {
	return &KafkaMailer{producer: producer}
}

// SendMail publishes the mail payload keyed by recipient address.
func (m *KafkaMailer) SendMail(ctx context.Context, mail Mail) error {
	return m.producer.Publish(ctx, events.TopicMailOutbound, mail.To, mail)
}

// KafkaNotifier hands in-app notifications to the external notification
// service through the notification.events topic.
type KafkaNotifier struct {
	producer *kafka.Producer
	source   string
}

// NewKafkaNotifier creates a KafkaNotifier.
func NewKafkaNotifier(producer *kafka.Producer, source string) *KafkaNotifier {
	return &KafkaNotifier{producer: producer, source: source}
}

type bookingNotificationPayload struct {
	BookingID        uuid.UUID   `json:"booking_id"`
	NotificationType string      `json:"notification_type"`
	Recipients       []uuid.UUID `json:"recipients"`
	OccurredAt       time.Time   `json:"occurred_at"`
}

// SendBookingNotification publishes the notification payload keyed by booking ID.
func (n *KafkaNotifier) SendBookingNotification(ctx context.Context, bookingID uuid.UUID, notificationType string, recipients []uuid.UUID) error {
	ce, err := kafka.NewCloudEvent(n.source, "notification.booking."+notificationType, bookingNotificationPayload{
		BookingID:        bookingID,
		NotificationType: notificationType,
		Recipients:       recipients,
		OccurredAt:       time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return n.producer.Publish(ctx, events.TopicNotificationEvents, bookingID.String(), ce)
}
