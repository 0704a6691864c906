// Package notification implements the side-effect dispatcher: fire-and-forget
// email and notification triggers keyed by a booking's status change. Dispatch
// is best-effort; failures are logged and swallowed so they can never fail or
// roll back the booking transition that caused them.
package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tripweave/service-booking/internal/domain/booking"
	"github.com/tripweave/service-booking/internal/domain/catalog"
)

// Mail is one outbound email.
type Mail struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Mailer delivers email through the external mail collaborator.
type Mailer interface {
	SendMail(ctx context.Context, mail Mail) error
}

// NotificationSender delivers in-app notifications through the external
// notification collaborator.
type NotificationSender interface {
	SendBookingNotification(ctx context.Context, bookingID uuid.UUID, notificationType string, recipients []uuid.UUID) error
}

// Dispatcher resolves recipients and templates for a status change and hands
// the messages to the external collaborators.
type Dispatcher struct {
	mailer   Mailer
	notifier NotificationSender
	pages    catalog.PageRepository
	users    catalog.UserDirectory
	from     string
	logger   *zap.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(
	mailer Mailer,
	notifier NotificationSender,
	pages catalog.PageRepository,
	users catalog.UserDirectory,
	fromAddress string,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		mailer:   mailer,
		notifier: notifier,
		pages:    pages,
		users:    users,
		from:     fromAddress,
		logger:   logger,
	}
}

// Notify dispatches all messages for the booking's current status. It never
// returns an error: every failure is logged and the remaining messages are
// still attempted. Recipients without an email address are skipped silently.
func (d *Dispatcher) Notify(ctx context.Context, bwr *booking.BookingWithReservation) {
	b := bwr.Booking
	change := Change{Status: b.Status(), Type: b.Type(), CancelBy: b.CancelBy()}
	templates := TemplatesFor(change)
	if len(templates) == 0 {
		return
	}

	var notified []uuid.UUID
	for _, tpl := range templates {
		addr, userID := d.resolveRecipient(ctx, bwr, tpl.Audience)
		if userID != uuid.Nil {
			notified = append(notified, userID)
		}
		if addr == "" {
			continue
		}

		mail := Mail{
			To:      addr,
			From:    d.from,
			Subject: tpl.Subject,
			HTML:    renderBody(tpl, bwr),
		}
		if err := d.mailer.SendMail(ctx, mail); err != nil {
			d.logger.Error("failed to send booking mail",
				zap.String("booking_id", b.ID().String()),
				zap.String("template", tpl.Name),
				zap.Error(err),
			)
		}
	}

	if len(notified) > 0 {
		if err := d.notifier.SendBookingNotification(ctx, b.ID(), string(b.Status()), notified); err != nil {
			d.logger.Error("failed to send booking notification",
				zap.String("booking_id", b.ID().String()),
				zap.String("status", string(b.Status())),
				zap.Error(err),
			)
		}
	}
}

// resolveRecipient maps a template audience to an email address and, when the
// recipient is an account holder, the user ID for in-app notification.
func (d *Dispatcher) resolveRecipient(ctx context.Context, bwr *booking.BookingWithReservation, audience Audience) (string, uuid.UUID) {
	b := bwr.Booking
	switch audience {
	case AudiencePage:
		page, err := d.pages.FindByID(ctx, b.PageID())
		if err != nil {
			d.logger.Warn("failed to resolve page for notification",
				zap.String("page_id", b.PageID().String()),
				zap.Error(err),
			)
			return "", uuid.Nil
		}
		if page.ContactEmail != "" {
			return page.ContactEmail, page.RelatedUserID
		}
		contact, err := d.users.FindContact(ctx, page.RelatedUserID)
		if err != nil {
			return "", page.RelatedUserID
		}
		return contact.Email, page.RelatedUserID

	case AudienceCreator:
		contact, err := d.users.FindContact(ctx, b.CreatedByID())
		if err != nil {
			d.logger.Warn("failed to resolve creator contact for notification",
				zap.String("user_id", b.CreatedByID().String()),
				zap.Error(err),
			)
			return "", b.CreatedByID()
		}
		return contact.Email, b.CreatedByID()

	case AudienceGuest:
		var other *booking.UserInfo
		if bwr.StayReservation != nil {
			other = bwr.StayReservation.OtherUserInfo()
		} else if bwr.TourReservation != nil {
			other = bwr.TourReservation.OtherUserInfo()
		}
		if other == nil {
			return "", uuid.Nil
		}
		return other.Email, uuid.Nil
	}
	return "", uuid.Nil
}

func renderBody(tpl Template, bwr *booking.BookingWithReservation) string {
	b := bwr.Booking
	var period, code string
	switch {
	case bwr.StayReservation != nil:
		r := bwr.StayReservation
		period = fmt.Sprintf("%s to %s", r.StartDate().Format("2006-01-02"), r.EndDate().Format("2006-01-02"))
		code = r.ReservationCode()
	case bwr.TourReservation != nil:
		r := bwr.TourReservation
		period = fmt.Sprintf("%s to %s", r.StartDate().Format("2006-01-02"), r.EndDate().Format("2006-01-02"))
		code = r.ReservationCode()
	}

	body := fmt.Sprintf(
		"<p>Booking <strong>%s</strong> (reservation %s)</p><p>Period: %s</p><p>Total: %d %s</p>",
		b.BookingCode(), code, period, b.TotalPrice(), b.CurrencyID(),
	)
	if b.Status() == booking.StatusCanceled && b.ReasonCancellation() != "" {
		body += fmt.Sprintf("<p>Reason: %s</p>", b.ReasonCancellation())
	}
	return body
}
