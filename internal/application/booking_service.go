package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tripweave/service-booking/internal/domain"
	bookingDomain "github.com/tripweave/service-booking/internal/domain/booking"
	"github.com/tripweave/service-booking/internal/domain/catalog"
	"github.com/tripweave/service-booking/internal/domain/pricing"
	"github.com/tripweave/service-booking/internal/events"
	"github.com/tripweave/service-booking/internal/notification"
	"github.com/tripweave/service-booking/internal/platform/kafka"
)

// CreateStayBookingRequest holds the data needed to book a stay.
type CreateStayBookingRequest struct {
	StayID        uuid.UUID                `json:"stay_id" binding:"required"`
	StartDate     time.Time                `json:"start_date" binding:"required"`
	EndDate       time.Time                `json:"end_date" binding:"required"`
	NumAdult      int                      `json:"num_adult" binding:"required"`
	NumChildren   int                      `json:"num_children"`
	NumInfant     int                      `json:"num_infant"`
	UserInfo      bookingDomain.UserInfo   `json:"user_info" binding:"required"`
	OtherUserInfo *bookingDomain.UserInfo  `json:"other_user_info"`
}

// CreateTourBookingRequest holds the data needed to book a tour. Daily tours
// take a start date; scheduled tours take a time slot ID instead.
type CreateTourBookingRequest struct {
	TourID         uuid.UUID               `json:"tour_id" binding:"required"`
	StartDate      *time.Time              `json:"start_date"`
	TimeOrganizeID *uuid.UUID              `json:"time_organize_id"`
	NumAdult       int                     `json:"num_adult" binding:"required"`
	NumChildren    int                     `json:"num_children"`
	PickUpPoint    string                  `json:"pick_up_point"`
	DropOffPoint   string                  `json:"drop_off_point"`
	UserInfo       bookingDomain.UserInfo  `json:"user_info" binding:"required"`
	OtherUserInfo  *bookingDomain.UserInfo `json:"other_user_info"`
}

// ReservationDTO is the reservation part of a booking response.
type ReservationDTO struct {
	ID              uuid.UUID               `json:"id"`
	ReservationCode string                  `json:"reservation_code"`
	ServiceID       uuid.UUID               `json:"service_id"`
	StartDate       time.Time               `json:"start_date"`
	EndDate         time.Time               `json:"end_date"`
	NumAdult        int                     `json:"num_adult"`
	NumChildren     int                     `json:"num_children"`
	NumInfant       int                     `json:"num_infant,omitempty"`
	PickUpPoint     string                  `json:"pick_up_point,omitempty"`
	DropOffPoint    string                  `json:"drop_off_point,omitempty"`
	UserInfo        bookingDomain.UserInfo  `json:"user_info"`
	OtherUserInfo   *bookingDomain.UserInfo `json:"other_user_info,omitempty"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID                 uuid.UUID       `json:"id"`
	BookingCode        string          `json:"booking_code"`
	Type               string          `json:"type"`
	Status             string          `json:"status"`
	PayMethod          string          `json:"pay_method"`
	TotalPrice         int64           `json:"total_price"`
	CurrencyID         string          `json:"currency_id"`
	CreatedByID        uuid.UUID       `json:"created_by_id"`
	PageID             uuid.UUID       `json:"page_id"`
	ServiceID          uuid.UUID       `json:"service_id"`
	ActByID            uuid.UUID       `json:"act_by_id"`
	CancelBy           string          `json:"cancel_by,omitempty"`
	ReasonCancellation string          `json:"reason_cancellation,omitempty"`
	HasReviewed        bool            `json:"has_reviewed"`
	Reservation        *ReservationDTO `json:"reservation,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// ListBookingsFilter mirrors the findBooking filter semantics.
type ListBookingsFilter struct {
	Type        string
	Status      string
	PageID      *uuid.UUID
	CreatedByID *uuid.UUID
	ServiceID   *uuid.UUID
}

// EventPublisher publishes lifecycle events. *kafka.Producer satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// BookingService orchestrates booking use cases: reservation construction,
// status transitions, and the best-effort side effects around them.
type BookingService struct {
	repo       bookingDomain.BookingRepository
	stays      catalog.StayRepository
	tours      catalog.TourRepository
	pages      catalog.PageRepository
	checker    *AvailabilityChecker
	gateway    pricing.Gateway
	dispatcher *notification.Dispatcher
	producer   EventPublisher
	logger     *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	repo bookingDomain.BookingRepository,
	stays catalog.StayRepository,
	tours catalog.TourRepository,
	pages catalog.PageRepository,
	checker *AvailabilityChecker,
	gateway pricing.Gateway,
	dispatcher *notification.Dispatcher,
	producer EventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:       repo,
		stays:      stays,
		tours:      tours,
		pages:      pages,
		checker:    checker,
		gateway:    gateway,
		dispatcher: dispatcher,
		producer:   producer,
		logger:     logger,
	}
}

// CreateStayBooking validates availability, freezes a price quote, and
// persists the booking with its stay reservation in one transaction.
func (s *BookingService) CreateStayBooking(ctx context.Context, customerID uuid.UUID, req CreateStayBookingRequest) (*BookingDTO, error) {
	stay, err := s.stays.FindByID(ctx, req.StayID)
	if err != nil {
		return nil, err
	}
	page, err := s.pages.FindByID(ctx, stay.PageID)
	if err != nil {
		return nil, err
	}

	if err := s.checker.CheckStay(ctx, stay, req.StartDate, req.EndDate, req.NumAdult, req.NumChildren, req.NumInfant); err != nil {
		return nil, err
	}

	quote, err := s.gateway.ComputeStayPrice(
		pricing.GuestCounts{NumAdult: req.NumAdult, NumChildren: req.NumChildren, NumInfant: req.NumInfant},
		pricing.DateRange{Start: req.StartDate, End: req.EndDate},
		stay,
	)
	if err != nil {
		return nil, err
	}

	bk, err := bookingDomain.NewBooking(
		bookingDomain.TypeStay,
		initialStatusFor(page),
		bookingDomain.PayMethodPostpaid,
		quote.TotalPrice,
		quote.CurrencyID,
		customerID,
		stay.PageID,
		stay.ID,
	)
	if err != nil {
		return nil, err
	}

	metadata := bookingDomain.StayMetadata{
		StayName:         stay.Name,
		NumOfNights:      quote.NumOfNights,
		Nights:           quote.Nights,
		GuestSurcharge:   quote.GuestSurcharge,
		LongTermDiscount: quote.LongTermDiscount,
		TotalPrice:       quote.TotalPrice,
		CurrencyID:       quote.CurrencyID,
	}
	res, err := bookingDomain.NewStayReservation(
		stay.ID, bk.ID(),
		req.StartDate, req.EndDate,
		req.NumAdult, req.NumChildren, req.NumInfant,
		req.UserInfo, req.OtherUserInfo,
		metadata,
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateWithStayReservation(ctx, bk, res); err != nil {
		return nil, err
	}

	bwr := &bookingDomain.BookingWithReservation{Booking: bk, StayReservation: res}
	s.afterTransition(ctx, bwr)

	dto := toBookingDTO(bwr)
	return &dto, nil
}

// CreateTourBooking builds a tour reservation, splitting on the tour kind:
// daily tours derive their end date from the program; scheduled tours copy
// the window from a departure slot and are capacity-checked.
func (s *BookingService) CreateTourBooking(ctx context.Context, customerID uuid.UUID, req CreateTourBookingRequest) (*BookingDTO, error) {
	tour, err := s.tours.FindByID(ctx, req.TourID)
	if err != nil {
		return nil, err
	}
	page, err := s.pages.FindByID(ctx, tour.PageID)
	if err != nil {
		return nil, err
	}

	var startDate, endDate time.Time
	var slotID *uuid.UUID
	if tour.IsDailyTour {
		if req.StartDate == nil {
			return nil, domain.NewValidationError("a start date is required for a daily tour")
		}
		if err := s.checker.CheckDailyTour(tour, *req.StartDate, req.NumAdult, req.NumChildren); err != nil {
			return nil, err
		}
		startDate = req.StartDate.UTC()
		endDate = bookingDomain.DeriveDailyTourEnd(startDate, tour.ProgramDays, tour.LastProgramDayTime(startDate))
	} else {
		if req.TimeOrganizeID == nil {
			return nil, domain.NewNotFoundError("TimeSlot", "none given")
		}
		slot, err := s.tours.FindTimeSlot(ctx, tour.ID, *req.TimeOrganizeID)
		if err != nil {
			return nil, err
		}
		if !slot.StartAt.After(time.Now().UTC()) {
			return nil, domain.NewConflictError("the departure slot has already started")
		}
		if err := s.checker.CheckTourSlot(ctx, tour, slot, req.NumAdult, req.NumChildren); err != nil {
			return nil, err
		}
		startDate = slot.StartAt
		endDate = slot.EndAt
		slotID = &slot.ID
	}

	totalPrice := tour.AdultPrice*int64(req.NumAdult) + tour.ChildPrice*int64(req.NumChildren)
	bk, err := bookingDomain.NewBooking(
		bookingDomain.TypeTour,
		initialStatusFor(page),
		bookingDomain.PayMethodPostpaid,
		totalPrice,
		tour.CurrencyID,
		customerID,
		tour.PageID,
		tour.ID,
	)
	if err != nil {
		return nil, err
	}

	metadata := bookingDomain.TourMetadata{
		TourName:        tour.Name,
		AdultPrice:      tour.AdultPrice,
		ChildPrice:      tour.ChildPrice,
		CurrencyID:      tour.CurrencyID,
		HolidayCalendar: tour.HolidayCalendar,
		TimeSlotID:      slotID,
	}
	res, err := bookingDomain.NewTourReservation(
		tour.ID, bk.ID(),
		startDate, endDate,
		req.NumAdult, req.NumChildren,
		req.PickUpPoint, req.DropOffPoint,
		req.UserInfo, req.OtherUserInfo,
		metadata,
	)
	if err != nil {
		return nil, err
	}

	capacity := 0
	if !tour.IsDailyTour {
		capacity = tour.MaxPassenger
	}
	if err := s.repo.CreateWithTourReservation(ctx, bk, res, capacity); err != nil {
		return nil, err
	}

	bwr := &bookingDomain.BookingWithReservation{Booking: bk, TourReservation: res}
	s.afterTransition(ctx, bwr)

	dto := toBookingDTO(bwr)
	return &dto, nil
}

// ConfirmBooking transitions a requested booking to confirmed. Only the
// operating account of the owning page may confirm.
func (s *BookingService) ConfirmBooking(ctx context.Context, bookingID, actorID uuid.UUID) (*BookingDTO, error) {
	bwr, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	page, err := s.pages.FindByID(ctx, bwr.Booking.PageID())
	if err != nil {
		return nil, err
	}

	if err := bwr.Booking.Confirm(actorID, page.RelatedUserID); err != nil {
		return nil, err
	}

	bwr.Booking.IncrementVersion()
	if err := s.repo.UpdateStatus(ctx, bwr.Booking, bookingDomain.StatusRequest); err != nil {
		return nil, err
	}

	s.afterTransition(ctx, bwr)

	dto := toBookingDTO(bwr)
	return &dto, nil
}

// CancelBooking cancels a requested booking on behalf of the page operator or
// the original creator. The reason is recorded together with who canceled.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, actorID uuid.UUID, reason string) (*BookingDTO, error) {
	bwr, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	page, err := s.pages.FindByID(ctx, bwr.Booking.PageID())
	if err != nil {
		return nil, err
	}

	if err := bwr.Booking.Cancel(actorID, page.RelatedUserID, reason); err != nil {
		return nil, err
	}

	bwr.Booking.IncrementVersion()
	if err := s.repo.UpdateStatus(ctx, bwr.Booking, bookingDomain.StatusRequest); err != nil {
		return nil, err
	}

	s.afterTransition(ctx, bwr)

	dto := toBookingDTO(bwr)
	return &dto, nil
}

// GetBooking retrieves a single booking with its reservation.
func (s *BookingService) GetBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bwr, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	dto := toBookingDTO(bwr)
	return &dto, nil
}

// GetBookingByCode retrieves a booking by its human-readable booking code.
func (s *BookingService) GetBookingByCode(ctx context.Context, code string) (*BookingDTO, error) {
	if !bookingDomain.IsValidCode(code) {
		return nil, domain.NewValidationError("invalid booking code")
	}
	bwr, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	dto := toBookingDTO(bwr)
	return &dto, nil
}

// ListBookings retrieves bookings matching the filter, newest first.
func (s *BookingService) ListBookings(ctx context.Context, filter ListBookingsFilter, page, limit int) ([]BookingDTO, int64, error) {
	domainFilter := bookingDomain.ListFilter{
		PageID:      filter.PageID,
		CreatedByID: filter.CreatedByID,
		ServiceID:   filter.ServiceID,
	}
	if filter.Type != "" {
		t, err := bookingDomain.ParseBookingType(filter.Type)
		if err != nil {
			return nil, 0, domain.NewValidationError(err.Error())
		}
		domainFilter.Type = &t
	}
	if filter.Status != "" {
		st, err := bookingDomain.ParseBookingStatus(filter.Status)
		if err != nil {
			return nil, 0, domain.NewValidationError(err.Error())
		}
		domainFilter.Status = &st
	}

	results, total, err := s.repo.List(ctx, domainFilter, page, limit)
	if err != nil {
		return nil, 0, err
	}

	dtos := make([]BookingDTO, len(results))
	for i, bwr := range results {
		dtos[i] = toBookingDTO(bwr)
	}
	return dtos, total, nil
}

// MarkReviewed flips the review flag when the review subsystem reports a
// submitted review.
func (s *BookingService) MarkReviewed(ctx context.Context, bookingID uuid.UUID) error {
	return s.repo.SetReviewed(ctx, bookingID)
}

// BookingStatsDTO holds booking statistics for the admin surface.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// GetBookingStats returns aggregate booking counts grouped by status.
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, c := range counts {
		total += c
	}
	return &BookingStatsDTO{TotalBookings: total, ByStatus: counts}, nil
}

// afterTransition runs the best-effort side effects of a persisted status:
// the lifecycle event and the notification/email dispatch. Neither may fail
// or roll back the transition that triggered them.
func (s *BookingService) afterTransition(ctx context.Context, bwr *bookingDomain.BookingWithReservation) {
	publishStatusChanged(ctx, s.producer, s.logger, bwr.Booking)
	s.dispatcher.Notify(ctx, bwr)
}

// initialStatusFor maps the page's booking policy to the seed status:
// quick-booking pages start confirmed, everything else starts as a request.
func initialStatusFor(page *catalog.Page) bookingDomain.BookingStatus {
	if page.BookingPolicy == catalog.PolicyQuick {
		return bookingDomain.StatusConfirmed
	}
	return bookingDomain.StatusRequest
}

// publishStatusChanged emits the lifecycle CloudEvent for the booking's
// current status, logging and swallowing any failure.
func publishStatusChanged(ctx context.Context, producer EventPublisher, logger *zap.Logger, b *bookingDomain.Booking) {
	eventType := map[bookingDomain.BookingStatus]string{
		bookingDomain.StatusRequest:   events.BookingRequested,
		bookingDomain.StatusConfirmed: events.BookingConfirmed,
		bookingDomain.StatusCanceled:  events.BookingCanceled,
		bookingDomain.StatusCompleted: events.BookingCompleted,
	}[b.Status()]
	if eventType == "" {
		return
	}

	payload := events.BookingStatusChangedEvent{
		BookingID:   b.ID(),
		BookingCode: b.BookingCode(),
		BookingType: string(b.Type()),
		Status:      string(b.Status()),
		PageID:      b.PageID(),
		CreatedByID: b.CreatedByID(),
		ServiceID:   b.ServiceID(),
		TotalPrice:  b.TotalPrice(),
		CurrencyID:  b.CurrencyID(),
		OccurredAt:  time.Now().UTC(),
	}
	if cb := b.CancelBy(); cb != nil {
		payload.CancelBy = string(*cb)
	}

	ce, err := kafka.NewCloudEvent("service-booking", eventType, payload)
	if err != nil {
		logger.Error("failed to create booking event", zap.String("event_type", eventType), zap.Error(err))
		return
	}
	if err := producer.Publish(ctx, events.TopicBookingEvents, b.ID().String(), ce); err != nil {
		logger.Error("failed to publish booking event",
			zap.String("event_type", eventType),
			zap.String("booking_id", b.ID().String()),
			zap.Error(err),
		)
	}
}

// --- Helpers ---

func toBookingDTO(bwr *bookingDomain.BookingWithReservation) BookingDTO {
	b := bwr.Booking
	dto := BookingDTO{
		ID:                 b.ID(),
		BookingCode:        b.BookingCode(),
		Type:               string(b.Type()),
		Status:             string(b.Status()),
		PayMethod:          string(b.PayMethod()),
		TotalPrice:         b.TotalPrice(),
		CurrencyID:         b.CurrencyID(),
		CreatedByID:        b.CreatedByID(),
		PageID:             b.PageID(),
		ServiceID:          b.ServiceID(),
		ActByID:            b.ActByID(),
		ReasonCancellation: b.ReasonCancellation(),
		HasReviewed:        b.HasReviewed(),
		CreatedAt:          b.CreatedAt(),
		UpdatedAt:          b.UpdatedAt(),
	}
	if cb := b.CancelBy(); cb != nil {
		dto.CancelBy = string(*cb)
	}

	switch {
	case bwr.StayReservation != nil:
		r := bwr.StayReservation
		dto.Reservation = &ReservationDTO{
			ID:              r.ID(),
			ReservationCode: r.ReservationCode(),
			ServiceID:       r.StayID(),
			StartDate:       r.StartDate(),
			EndDate:         r.EndDate(),
			NumAdult:        r.NumAdult(),
			NumChildren:     r.NumChildren(),
			NumInfant:       r.NumInfant(),
			UserInfo:        r.UserInfo(),
			OtherUserInfo:   r.OtherUserInfo(),
		}
	case bwr.TourReservation != nil:
		r := bwr.TourReservation
		dto.Reservation = &ReservationDTO{
			ID:              r.ID(),
			ReservationCode: r.ReservationCode(),
			ServiceID:       r.TourID(),
			StartDate:       r.StartDate(),
			EndDate:         r.EndDate(),
			NumAdult:        r.NumAdult(),
			NumChildren:     r.NumChildren(),
			PickUpPoint:     r.PickUpPoint(),
			DropOffPoint:    r.DropOffPoint(),
			UserInfo:        r.UserInfo(),
			OtherUserInfo:   r.OtherUserInfo(),
		}
	}
	return dto
}
