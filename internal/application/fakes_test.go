package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tripweave/service-booking/internal/domain"
	bookingDomain "github.com/tripweave/service-booking/internal/domain/booking"
	"github.com/tripweave/service-booking/internal/domain/catalog"
	"github.com/tripweave/service-booking/internal/domain/pricing"
	"github.com/tripweave/service-booking/internal/notification"
	"github.com/tripweave/service-booking/internal/platform/kafka"
)

// fakeBookingRepo is an in-memory BookingRepository. Persisted status is
// tracked separately from the aggregate so compare-and-set semantics hold
// even though the service mutates the shared aggregate pointer.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*bookingDomain.BookingWithReservation
	statuses map[uuid.UUID]bookingDomain.BookingStatus
	reviewed map[uuid.UUID]bool

	overlap        bool
	confirmedCount int64
	lastCapacity   int

	updateErrFor map[uuid.UUID]error
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{
		bookings:     make(map[uuid.UUID]*bookingDomain.BookingWithReservation),
		statuses:     make(map[uuid.UUID]bookingDomain.BookingStatus),
		reviewed:     make(map[uuid.UUID]bool),
		updateErrFor: make(map[uuid.UUID]error),
	}
}

func (r *fakeBookingRepo) put(bwr *bookingDomain.BookingWithReservation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[bwr.Booking.ID()] = bwr
	r.statuses[bwr.Booking.ID()] = bwr.Booking.Status()
}

func (r *fakeBookingRepo) CreateWithStayReservation(ctx context.Context, b *bookingDomain.Booking, res *bookingDomain.StayReservation) error {
	if r.overlap {
		return domain.NewConflictError("the requested dates overlap an existing reservation")
	}
	r.put(&bookingDomain.BookingWithReservation{Booking: b, StayReservation: res})
	return nil
}

func (r *fakeBookingRepo) CreateWithTourReservation(ctx context.Context, b *bookingDomain.Booking, res *bookingDomain.TourReservation, maxPassenger int) error {
	r.mu.Lock()
	r.lastCapacity = maxPassenger
	r.mu.Unlock()
	if maxPassenger > 0 && r.confirmedCount >= int64(maxPassenger) {
		return domain.NewConflictError("the tour is fully booked for the requested departure")
	}
	r.put(&bookingDomain.BookingWithReservation{Booking: b, TourReservation: res})
	return nil
}

func (r *fakeBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.BookingWithReservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bwr, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", id.String())
	}
	return bwr, nil
}

func (r *fakeBookingRepo) FindByCode(ctx context.Context, code string) (*bookingDomain.BookingWithReservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, bwr := range r.bookings {
		if bwr.Booking.BookingCode() == code {
			return bwr, nil
		}
	}
	return nil, domain.NewNotFoundError("Booking", code)
}

func (r *fakeBookingRepo) List(ctx context.Context, filter bookingDomain.ListFilter, page, limit int) ([]*bookingDomain.BookingWithReservation, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.BookingWithReservation
	for _, bwr := range r.bookings {
		if filter.Type != nil && bwr.Booking.Type() != *filter.Type {
			continue
		}
		if filter.Status != nil && r.statuses[bwr.Booking.ID()] != *filter.Status {
			continue
		}
		if filter.CreatedByID != nil && bwr.Booking.CreatedByID() != *filter.CreatedByID {
			continue
		}
		out = append(out, bwr)
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) UpdateStatus(ctx context.Context, b *bookingDomain.Booking, expectedStatus bookingDomain.BookingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.updateErrFor[b.ID()]; ok {
		return err
	}
	if r.statuses[b.ID()] != expectedStatus {
		return domain.NewInvalidStateError(string(expectedStatus), string(b.Status()))
	}
	r.statuses[b.ID()] = b.Status()
	return nil
}

func (r *fakeBookingRepo) SetReviewed(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[id]; !ok {
		return domain.NewNotFoundError("Booking", id.String())
	}
	r.reviewed[id] = true
	return nil
}

func (r *fakeBookingRepo) HasActiveStayOverlap(ctx context.Context, stayID uuid.UUID, start, end time.Time) (bool, error) {
	return r.overlap, nil
}

func (r *fakeBookingRepo) CountConfirmedTourBookingsOn(ctx context.Context, tourID uuid.UUID, day time.Time) (int64, error) {
	return r.confirmedCount, nil
}

func (r *fakeBookingRepo) FindStaleRequests(ctx context.Context, kind bookingDomain.BookingType, cutoff time.Time) ([]*bookingDomain.BookingWithReservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.BookingWithReservation
	for _, bwr := range r.bookings {
		if bwr.Booking.Type() != kind {
			continue
		}
		if r.statuses[bwr.Booking.ID()] != bookingDomain.StatusRequest {
			continue
		}
		if bwr.Booking.CreatedAt().After(cutoff) {
			continue
		}
		out = append(out, bwr)
	}
	return out, nil
}

func (r *fakeBookingRepo) FindCompletable(ctx context.Context, kind bookingDomain.BookingType, cutoff time.Time) ([]*bookingDomain.BookingWithReservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.BookingWithReservation
	for _, bwr := range r.bookings {
		if bwr.Booking.Type() != kind {
			continue
		}
		if r.statuses[bwr.Booking.ID()] != bookingDomain.StatusConfirmed {
			continue
		}
		var end time.Time
		switch {
		case bwr.StayReservation != nil:
			end = bwr.StayReservation.EndDate()
		case bwr.TourReservation != nil:
			end = bwr.TourReservation.EndDate()
		}
		if end.After(cutoff) {
			continue
		}
		out = append(out, bwr)
	}
	return out, nil
}

func (r *fakeBookingRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for id := range r.bookings {
		counts[string(r.statuses[id])]++
	}
	return counts, nil
}

func (r *fakeBookingRepo) persistedStatus(id uuid.UUID) bookingDomain.BookingStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.statuses[id]
}

// fakeStayRepo serves one stay.
type fakeStayRepo struct {
	stay *catalog.Stay
}

func (r *fakeStayRepo) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Stay, error) {
	if r.stay == nil || r.stay.ID != id {
		return nil, domain.NewNotFoundError("Stay", id.String())
	}
	return r.stay, nil
}

// fakeTourRepo serves one tour and its slots.
type fakeTourRepo struct {
	tour  *catalog.Tour
	slots map[uuid.UUID]*catalog.TimeSlot
}

func (r *fakeTourRepo) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Tour, error) {
	if r.tour == nil || r.tour.ID != id {
		return nil, domain.NewNotFoundError("Tour", id.String())
	}
	return r.tour, nil
}

func (r *fakeTourRepo) FindTimeSlot(ctx context.Context, tourID, slotID uuid.UUID) (*catalog.TimeSlot, error) {
	slot, ok := r.slots[slotID]
	if !ok {
		return nil, domain.NewNotFoundError("TimeSlot", slotID.String())
	}
	return slot, nil
}

// fakePageRepo serves pages by ID.
type fakePageRepo struct {
	pages map[uuid.UUID]*catalog.Page
}

func (r *fakePageRepo) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Page, error) {
	page, ok := r.pages[id]
	if !ok {
		return nil, domain.NewNotFoundError("Page", id.String())
	}
	return page, nil
}

// fakeUserDirectory serves contacts by ID.
type fakeUserDirectory struct {
	contacts map[uuid.UUID]*catalog.Contact
}

func (r *fakeUserDirectory) FindContact(ctx context.Context, userID uuid.UUID) (*catalog.Contact, error) {
	contact, ok := r.contacts[userID]
	if !ok {
		return nil, domain.NewNotFoundError("User", userID.String())
	}
	return contact, nil
}

// fakePublisher records published events.
type fakePublisher struct {
	mu     sync.Mutex
	topics []string
	events []kafka.CloudEvent
}

func (p *fakePublisher) Publish(ctx context.Context, topic, key string, value interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	if ce, ok := value.(kafka.CloudEvent); ok {
		p.events = append(p.events, ce)
	}
	return nil
}

func (p *fakePublisher) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ce := range p.events {
		out[i] = ce.Type
	}
	return out
}

// fakeMailer records outbound mail.
type fakeMailer struct {
	mu    sync.Mutex
	mails []notification.Mail
}

func (m *fakeMailer) SendMail(ctx context.Context, mail notification.Mail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mails = append(m.mails, mail)
	return nil
}

func (m *fakeMailer) sent() []notification.Mail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notification.Mail(nil), m.mails...)
}

// fakeNotifier records notification calls.
type fakeNotifier struct {
	mu    sync.Mutex
	calls int
}

func (n *fakeNotifier) SendBookingNotification(ctx context.Context, bookingID uuid.UUID, notificationType string, recipients []uuid.UUID) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	return nil
}

// fixedGateway returns a canned quote.
type fixedGateway struct {
	quote *pricing.Quote
	err   error
}

func (g *fixedGateway) ComputeStayPrice(guests pricing.GuestCounts, dates pricing.DateRange, stay *catalog.Stay) (*pricing.Quote, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.quote, nil
}

// serviceFixture wires a BookingService over the fakes.
type serviceFixture struct {
	repo      *fakeBookingRepo
	stayRepo  *fakeStayRepo
	tourRepo  *fakeTourRepo
	pageRepo  *fakePageRepo
	users     *fakeUserDirectory
	mailer    *fakeMailer
	notifier  *fakeNotifier
	publisher *fakePublisher
	gateway   *fixedGateway
	service   *BookingService
	sweeps    *SweepService

	pageID     uuid.UUID
	operatorID uuid.UUID
	customerID uuid.UUID
}

func newServiceFixture(policy catalog.BookingPolicy) *serviceFixture {
	f := &serviceFixture{
		repo:       newFakeBookingRepo(),
		stayRepo:   &fakeStayRepo{},
		tourRepo:   &fakeTourRepo{slots: make(map[uuid.UUID]*catalog.TimeSlot)},
		mailer:     &fakeMailer{},
		notifier:   &fakeNotifier{},
		publisher:  &fakePublisher{},
		pageID:     uuid.New(),
		operatorID: uuid.New(),
		customerID: uuid.New(),
	}
	f.gateway = &fixedGateway{quote: &pricing.Quote{
		NumOfNights: 2,
		TotalPrice:  240000,
		CurrencyID:  "THB",
	}}
	f.pageRepo = &fakePageRepo{pages: map[uuid.UUID]*catalog.Page{
		f.pageID: {
			ID:            f.pageID,
			Name:          "Sunrise Travel",
			RelatedUserID: f.operatorID,
			BookingPolicy: policy,
			ContactEmail:  "host@example.com",
		},
	}}
	f.users = &fakeUserDirectory{contacts: map[uuid.UUID]*catalog.Contact{
		f.customerID: {UserID: f.customerID, Name: "Mei", Email: "mei@example.com"},
		f.operatorID: {UserID: f.operatorID, Name: "Host", Email: "host@example.com"},
	}}

	logger := zap.NewNop()
	dispatcher := notification.NewDispatcher(f.mailer, f.notifier, f.pageRepo, f.users, "bookings@example.com", logger)
	checker := NewAvailabilityChecker(f.repo, logger)
	f.service = NewBookingService(f.repo, f.stayRepo, f.tourRepo, f.pageRepo, checker, f.gateway, dispatcher, f.publisher, logger)
	f.sweeps = NewSweepService(f.repo, dispatcher, f.publisher, logger)
	return f
}

func (f *serviceFixture) withStay() *catalog.Stay {
	stay := &catalog.Stay{
		ID:         uuid.New(),
		PageID:     f.pageID,
		Name:       "Riverside Villa",
		CurrencyID: "THB",
		Pricing:    catalog.StayPricing{BasePrice: 120000},
	}
	f.stayRepo.stay = stay
	return stay
}

func (f *serviceFixture) withDailyTour(programDays int) *catalog.Tour {
	tour := &catalog.Tour{
		ID:          uuid.New(),
		PageID:      f.pageID,
		Name:        "Old Town Walk",
		CurrencyID:  "THB",
		IsDailyTour: true,
		ProgramDays: programDays,
		AdultPrice:  80000,
		ChildPrice:  40000,
	}
	f.tourRepo.tour = tour
	return tour
}

func (f *serviceFixture) withScheduledTour(maxPassenger int) (*catalog.Tour, *catalog.TimeSlot) {
	tour := &catalog.Tour{
		ID:           uuid.New(),
		PageID:       f.pageID,
		Name:         "Island Hopper",
		CurrencyID:   "THB",
		ProgramDays:  1,
		MaxPassenger: maxPassenger,
		AdultPrice:   150000,
		ChildPrice:   75000,
	}
	departure := time.Now().UTC().AddDate(0, 0, 30).Truncate(time.Hour)
	slot := &catalog.TimeSlot{
		ID:      uuid.New(),
		TourID:  tour.ID,
		StartAt: departure,
		EndAt:   departure.Add(9 * time.Hour),
	}
	f.tourRepo.tour = tour
	f.tourRepo.slots[slot.ID] = slot
	return tour, slot
}

// withPastSlot adds a slot whose departure has already gone by.
func (f *serviceFixture) withPastSlot(tour *catalog.Tour) *catalog.TimeSlot {
	departure := time.Now().UTC().Add(-2 * time.Hour)
	slot := &catalog.TimeSlot{
		ID:      uuid.New(),
		TourID:  tour.ID,
		StartAt: departure,
		EndAt:   departure.Add(9 * time.Hour),
	}
	f.tourRepo.slots[slot.ID] = slot
	return slot
}

func newID() uuid.UUID { return uuid.New() }

func mustCode(t *testing.T) string {
	t.Helper()
	code, err := bookingDomain.GenerateCode()
	require.NoError(t, err)
	return code
}

func validStayRequest(stayID uuid.UUID) CreateStayBookingRequest {
	return CreateStayBookingRequest{
		StayID:    stayID,
		StartDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 6, 3, 0, 0, 0, 0, time.UTC),
		NumAdult:  2,
		UserInfo:  bookingDomain.UserInfo{Name: "Mei", Email: "mei@example.com"},
	}
}
