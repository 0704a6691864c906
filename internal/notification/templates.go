package notification

import (
	"fmt"

	"github.com/tripweave/service-booking/internal/domain/booking"
)

// Audience identifies who a template is addressed to.
type Audience string

const (
	AudiencePage    Audience = "page"
	AudienceCreator Audience = "creator"
	AudienceGuest   Audience = "guest"
)

// Change is the tagged status-change variant templates are selected over.
// CancelBy is set only when Status is canceled.
type Change struct {
	Status   booking.BookingStatus
	Type     booking.BookingType
	CancelBy *booking.CancelActor
}

// Template describes one outbound message: who it goes to and which copy it
// carries. Rendering happens in the dispatcher with the booking's data.
type Template struct {
	Name     string
	Audience Audience
	Subject  string
}

// TemplatesFor returns the template descriptors for a status change. It is a
// pure function: the same change always yields the same descriptors.
//
//   - request: the page operator is told about the new booking.
//   - confirmed: the page gets a record, the creator gets the confirmation,
//     and the counterpart guest (when present) is informed.
//   - canceled: copy branches on who canceled. A user cancellation notifies
//     the page; page and system cancellations notify the creator.
//   - completed: both sides get an informational wrap-up.
func TemplatesFor(c Change) []Template {
	kind := "stay"
	if c.Type == booking.TypeTour {
		kind = "tour"
	}

	switch c.Status {
	case booking.StatusRequest:
		return []Template{
			{Name: "booking_requested_page", Audience: AudiencePage,
				Subject: fmt.Sprintf("New %s booking request", kind)},
		}
	case booking.StatusConfirmed:
		return []Template{
			{Name: "booking_confirmed_page", Audience: AudiencePage,
				Subject: fmt.Sprintf("You confirmed a %s booking", kind)},
			{Name: "booking_confirmed_creator", Audience: AudienceCreator,
				Subject: fmt.Sprintf("Your %s booking is confirmed", kind)},
			{Name: "booking_confirmed_guest", Audience: AudienceGuest,
				Subject: fmt.Sprintf("A %s booking that includes you is confirmed", kind)},
		}
	case booking.StatusCanceled:
		if c.CancelBy == nil {
			return nil
		}
		switch *c.CancelBy {
		case booking.CancelByUser:
			return []Template{
				{Name: "booking_canceled_by_user_page", Audience: AudiencePage,
					Subject: fmt.Sprintf("A %s booking was canceled by the guest", kind)},
			}
		case booking.CancelByPage:
			return []Template{
				{Name: "booking_canceled_by_page_creator", Audience: AudienceCreator,
					Subject: fmt.Sprintf("Your %s booking was canceled by the host", kind)},
			}
		case booking.CancelBySystem:
			return []Template{
				{Name: "booking_canceled_by_system_creator", Audience: AudienceCreator,
					Subject: fmt.Sprintf("Your %s booking request expired", kind)},
			}
		}
		return nil
	case booking.StatusCompleted:
		return []Template{
			{Name: "booking_completed_page", Audience: AudiencePage,
				Subject: fmt.Sprintf("A %s booking was completed", kind)},
			{Name: "booking_completed_creator", Audience: AudienceCreator,
				Subject: fmt.Sprintf("Your %s booking is complete", kind)},
		}
	}
	return nil
}
