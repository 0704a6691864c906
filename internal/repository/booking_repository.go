package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tripweave/service-booking/internal/domain"
	bookingDomain "github.com/tripweave/service-booking/internal/domain/booking"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingCode        string    `gorm:"uniqueIndex;not null;size:11"`
	Type               string    `gorm:"not null;size:10;index"`
	Status             string    `gorm:"not null;size:20;index"`
	PayMethod          string    `gorm:"not null;size:20"`
	TotalPrice         int64     `gorm:"not null"`
	CurrencyID         string    `gorm:"not null;size:3"`
	CreatedByID        uuid.UUID `gorm:"type:uuid;index;not null"`
	PageID             uuid.UUID `gorm:"type:uuid;index;not null"`
	ServiceID          uuid.UUID `gorm:"type:uuid;index;not null"`
	ActByID            uuid.UUID `gorm:"type:uuid;not null"`
	CancelBy           *string   `gorm:"size:10"`
	ReasonCancellation string    `gorm:"size:500"`
	HasReviewed        bool      `gorm:"not null;default:false"`
	Version            int64     `gorm:"not null;default:1"`
	CreatedAt          time.Time `gorm:"not null;index"`
	UpdatedAt          time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string { return "bookings" }

// TourReservationModel is the GORM model for the tour_reservations table.
// The unique index on BookingID enforces the 1:1 booking/reservation shape.
type TourReservationModel struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey"`
	ReservationCode string         `gorm:"uniqueIndex;not null;size:11"`
	TourID          uuid.UUID      `gorm:"type:uuid;index;not null"`
	BookingID       uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null"`
	StartDate       time.Time      `gorm:"not null;index"`
	EndDate         time.Time      `gorm:"not null;index"`
	NumAdult        int            `gorm:"not null"`
	NumChildren     int            `gorm:"not null;default:0"`
	PickUpPoint     string         `gorm:"size:500"`
	DropOffPoint    string         `gorm:"size:500"`
	UserInfo        datatypes.JSON `gorm:"not null"`
	OtherUserInfo   datatypes.JSON `gorm:""`
	Metadata        datatypes.JSON `gorm:"not null"`
	CreatedAt       time.Time      `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (TourReservationModel) TableName() string { return "tour_reservations" }

// StayReservationModel is the GORM model for the stay_reservations table.
type StayReservationModel struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey"`
	ReservationCode string         `gorm:"uniqueIndex;not null;size:11"`
	StayID          uuid.UUID      `gorm:"type:uuid;index;not null"`
	BookingID       uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null"`
	StartDate       time.Time      `gorm:"not null;index"`
	EndDate         time.Time      `gorm:"not null;index"`
	NumAdult        int            `gorm:"not null"`
	NumChildren     int            `gorm:"not null;default:0"`
	NumInfant       int            `gorm:"not null;default:0"`
	Price           int64          `gorm:"not null"`
	UserInfo        datatypes.JSON `gorm:"not null"`
	OtherUserInfo   datatypes.JSON `gorm:""`
	Metadata        datatypes.JSON `gorm:"not null"`
	CreatedAt       time.Time      `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (StayReservationModel) TableName() string { return "stay_reservations" }

var activeStatuses = []string{
	string(bookingDomain.StatusRequest),
	string(bookingDomain.StatusConfirmed),
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// CreateWithStayReservation persists a booking and its stay reservation in
// one transaction. The overlap check runs again inside the transaction so
// two simultaneous requests for the same window cannot both commit.
func (r *GormBookingRepository) CreateWithStayReservation(ctx context.Context, bk *bookingDomain.Booking, res *bookingDomain.StayReservation) error {
	bkModel, err := toBookingModel(bk)
	if err != nil {
		return err
	}
	resModel, err := toStayReservationModel(res)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		overlap, err := stayOverlapExists(tx, res.StayID(), res.StartDate(), res.EndDate())
		if err != nil {
			return err
		}
		if overlap {
			return domain.NewConflictError("the requested dates overlap an existing reservation")
		}

		if err := tx.Create(bkModel).Error; err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}
		if err := tx.Create(resModel).Error; err != nil {
			return fmt.Errorf("failed to create stay reservation: %w", err)
		}
		return nil
	})
}

// CreateWithTourReservation persists a booking and its tour reservation in
// one transaction, re-verifying slot capacity when maxPassenger is positive.
func (r *GormBookingRepository) CreateWithTourReservation(ctx context.Context, bk *bookingDomain.Booking, res *bookingDomain.TourReservation, maxPassenger int) error {
	bkModel, err := toBookingModel(bk)
	if err != nil {
		return err
	}
	resModel, err := toTourReservationModel(res)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if maxPassenger > 0 {
			count, err := countConfirmedTourBookingsOn(tx, res.TourID(), res.StartDate())
			if err != nil {
				return err
			}
			if count >= int64(maxPassenger) {
				return domain.NewConflictError("the tour is fully booked for the requested departure")
			}
		}

		if err := tx.Create(bkModel).Error; err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}
		if err := tx.Create(resModel).Error; err != nil {
			return fmt.Errorf("failed to create tour reservation: %w", err)
		}
		return nil
	})
}

// FindByID retrieves a booking and its reservation.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.BookingWithReservation, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return r.attachReservation(ctx, &model)
}

// FindByCode retrieves a booking and its reservation by booking code.
func (r *GormBookingRepository) FindByCode(ctx context.Context, code string) (*bookingDomain.BookingWithReservation, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("booking_code = ?", code).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", code)
		}
		return nil, fmt.Errorf("failed to find booking by code: %w", err)
	}
	return r.attachReservation(ctx, &model)
}

// List retrieves bookings matching the filter, newest first.
func (r *GormBookingRepository) List(ctx context.Context, filter bookingDomain.ListFilter, page, limit int) ([]*bookingDomain.BookingWithReservation, int64, error) {
	query := r.db.WithContext(ctx).Model(&BookingModel{})
	if filter.Type != nil {
		query = query.Where("type = ?", string(*filter.Type))
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.PageID != nil {
		query = query.Where("page_id = ?", *filter.PageID)
	}
	if filter.CreatedByID != nil {
		query = query.Where("created_by_id = ?", *filter.CreatedByID)
	}
	if filter.ServiceID != nil {
		query = query.Where("service_id = ?", *filter.ServiceID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	results := make([]*bookingDomain.BookingWithReservation, len(models))
	for i := range models {
		bwr, err := r.attachReservation(ctx, &models[i])
		if err != nil {
			return nil, 0, err
		}
		results[i] = bwr
	}
	return results, total, nil
}

// UpdateStatus persists a status transition with a compare-and-set on both
// the previous status and the version. Zero rows affected means another
// transition won the race; the caller gets an invalid-state error, never a
// silent double transition.
func (r *GormBookingRepository) UpdateStatus(ctx context.Context, bk *bookingDomain.Booking, expectedStatus bookingDomain.BookingStatus) error {
	var cancelBy *string
	if cb := bk.CancelBy(); cb != nil {
		v := string(*cb)
		cancelBy = &v
	}

	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND status = ? AND version = ?", bk.ID(), string(expectedStatus), expectedVersion).
		Updates(map[string]interface{}{
			"status":              string(bk.Status()),
			"act_by_id":           bk.ActByID(),
			"cancel_by":           cancelBy,
			"reason_cancellation": bk.ReasonCancellation(),
			"version":             bk.Version(),
			"updated_at":          bk.UpdatedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update booking status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewInvalidStateError(string(expectedStatus), string(bk.Status()))
	}
	return nil
}

// SetReviewed flips the review flag without touching status or version.
func (r *GormBookingRepository) SetReviewed(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"has_reviewed": true,
			"updated_at":   time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to set reviewed flag: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Booking", id.String())
	}
	return nil
}

// HasActiveStayOverlap reports whether [start, end] collides with any
// reservation of the stay whose booking is still active.
func (r *GormBookingRepository) HasActiveStayOverlap(ctx context.Context, stayID uuid.UUID, start, end time.Time) (bool, error) {
	return stayOverlapExists(r.db.WithContext(ctx), stayID, start, end)
}

// CountConfirmedTourBookingsOn counts confirmed bookings whose tour
// reservation starts on the given UTC day.
func (r *GormBookingRepository) CountConfirmedTourBookingsOn(ctx context.Context, tourID uuid.UUID, day time.Time) (int64, error) {
	return countConfirmedTourBookingsOn(r.db.WithContext(ctx), tourID, day)
}

// FindStaleRequests returns bookings of the kind still in request status
// created at or before the cutoff.
func (r *GormBookingRepository) FindStaleRequests(ctx context.Context, kind bookingDomain.BookingType, cutoff time.Time) ([]*bookingDomain.BookingWithReservation, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("type = ? AND status = ? AND created_at <= ?", string(kind), string(bookingDomain.StatusRequest), cutoff).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find stale requests: %w", err)
	}
	return r.attachAll(ctx, models)
}

// FindCompletable returns confirmed bookings of the kind whose reservation
// end date is at or before the cutoff.
func (r *GormBookingRepository) FindCompletable(ctx context.Context, kind bookingDomain.BookingType, cutoff time.Time) ([]*bookingDomain.BookingWithReservation, error) {
	table := "stay_reservations"
	if kind == bookingDomain.TypeTour {
		table = "tour_reservations"
	}

	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Joins(fmt.Sprintf("JOIN %s res ON res.booking_id = bookings.id", table)).
		Where("bookings.type = ? AND bookings.status = ? AND res.end_date <= ?",
			string(kind), string(bookingDomain.StatusConfirmed), cutoff).
		Order("bookings.created_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find completable bookings: %w", err)
	}
	return r.attachAll(ctx, models)
}

// CountByStatus returns booking counts grouped by status.
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// --- Shared query helpers ---

func stayOverlapExists(tx *gorm.DB, stayID uuid.UUID, start, end time.Time) (bool, error) {
	startDay := bookingDomain.ToUTCDate(start)
	endDay := bookingDomain.ToUTCDate(end)

	var count int64
	err := tx.Model(&StayReservationModel{}).
		Joins("JOIN bookings ON bookings.id = stay_reservations.booking_id").
		Where("stay_reservations.stay_id = ? AND bookings.status IN ?", stayID, activeStatuses).
		Where("stay_reservations.start_date <= ? AND stay_reservations.end_date >= ?", endDay, startDay).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check stay overlap: %w", err)
	}
	return count > 0, nil
}

func countConfirmedTourBookingsOn(tx *gorm.DB, tourID uuid.UUID, day time.Time) (int64, error) {
	dayStart := bookingDomain.ToUTCDate(day)
	dayEnd := dayStart.AddDate(0, 0, 1)

	var count int64
	err := tx.Model(&TourReservationModel{}).
		Joins("JOIN bookings ON bookings.id = tour_reservations.booking_id").
		Where("tour_reservations.tour_id = ? AND bookings.status = ?", tourID, string(bookingDomain.StatusConfirmed)).
		Where("tour_reservations.start_date >= ? AND tour_reservations.start_date < ?", dayStart, dayEnd).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count tour bookings: %w", err)
	}
	return count, nil
}

func (r *GormBookingRepository) attachAll(ctx context.Context, models []BookingModel) ([]*bookingDomain.BookingWithReservation, error) {
	results := make([]*bookingDomain.BookingWithReservation, len(models))
	for i := range models {
		bwr, err := r.attachReservation(ctx, &models[i])
		if err != nil {
			return nil, err
		}
		results[i] = bwr
	}
	return results, nil
}

func (r *GormBookingRepository) attachReservation(ctx context.Context, model *BookingModel) (*bookingDomain.BookingWithReservation, error) {
	bk, err := toDomainBooking(model)
	if err != nil {
		return nil, err
	}
	bwr := &bookingDomain.BookingWithReservation{Booking: bk}

	switch bk.Type() {
	case bookingDomain.TypeStay:
		var resModel StayReservationModel
		if err := r.db.WithContext(ctx).Where("booking_id = ?", model.ID).First(&resModel).Error; err != nil {
			return nil, fmt.Errorf("failed to load stay reservation: %w", err)
		}
		res, err := toDomainStayReservation(&resModel)
		if err != nil {
			return nil, err
		}
		bwr.StayReservation = res
	case bookingDomain.TypeTour:
		var resModel TourReservationModel
		if err := r.db.WithContext(ctx).Where("booking_id = ?", model.ID).First(&resModel).Error; err != nil {
			return nil, fmt.Errorf("failed to load tour reservation: %w", err)
		}
		res, err := toDomainTourReservation(&resModel)
		if err != nil {
			return nil, err
		}
		bwr.TourReservation = res
	}
	return bwr, nil
}

// --- Conversion helpers ---

func toBookingModel(bk *bookingDomain.Booking) (*BookingModel, error) {
	var cancelBy *string
	if cb := bk.CancelBy(); cb != nil {
		v := string(*cb)
		cancelBy = &v
	}
	return &BookingModel{
		ID:                 bk.ID(),
		BookingCode:        bk.BookingCode(),
		Type:               string(bk.Type()),
		Status:             string(bk.Status()),
		PayMethod:          string(bk.PayMethod()),
		TotalPrice:         bk.TotalPrice(),
		CurrencyID:         bk.CurrencyID(),
		CreatedByID:        bk.CreatedByID(),
		PageID:             bk.PageID(),
		ServiceID:          bk.ServiceID(),
		ActByID:            bk.ActByID(),
		CancelBy:           cancelBy,
		ReasonCancellation: bk.ReasonCancellation(),
		HasReviewed:        bk.HasReviewed(),
		Version:            bk.Version(),
		CreatedAt:          bk.CreatedAt(),
		UpdatedAt:          bk.UpdatedAt(),
	}, nil
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}
	bookingType, err := bookingDomain.ParseBookingType(m.Type)
	if err != nil {
		return nil, err
	}

	var cancelBy *bookingDomain.CancelActor
	if m.CancelBy != nil {
		actor := bookingDomain.CancelActor(*m.CancelBy)
		if !actor.IsValid() {
			return nil, fmt.Errorf("invalid cancel actor: %s", *m.CancelBy)
		}
		cancelBy = &actor
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		m.BookingCode,
		bookingType,
		status,
		bookingDomain.PayMethod(m.PayMethod),
		m.TotalPrice,
		m.CurrencyID,
		m.CreatedByID,
		m.PageID,
		m.ServiceID,
		m.ActByID,
		cancelBy,
		m.ReasonCancellation,
		m.HasReviewed,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toStayReservationModel(res *bookingDomain.StayReservation) (*StayReservationModel, error) {
	userInfo, err := json.Marshal(res.UserInfo())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal user info: %w", err)
	}
	var otherUserInfo datatypes.JSON
	if res.OtherUserInfo() != nil {
		data, err := json.Marshal(res.OtherUserInfo())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal other user info: %w", err)
		}
		otherUserInfo = data
	}
	metadata, err := json.Marshal(res.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal stay metadata: %w", err)
	}

	return &StayReservationModel{
		ID:              res.ID(),
		ReservationCode: res.ReservationCode(),
		StayID:          res.StayID(),
		BookingID:       res.BookingID(),
		StartDate:       res.StartDate(),
		EndDate:         res.EndDate(),
		NumAdult:        res.NumAdult(),
		NumChildren:     res.NumChildren(),
		NumInfant:       res.NumInfant(),
		Price:           res.Price(),
		UserInfo:        userInfo,
		OtherUserInfo:   otherUserInfo,
		Metadata:        metadata,
		CreatedAt:       res.CreatedAt(),
	}, nil
}

func toDomainStayReservation(m *StayReservationModel) (*bookingDomain.StayReservation, error) {
	var userInfo bookingDomain.UserInfo
	if err := json.Unmarshal(m.UserInfo, &userInfo); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user info: %w", err)
	}
	var otherUserInfo *bookingDomain.UserInfo
	if len(m.OtherUserInfo) > 0 {
		var info bookingDomain.UserInfo
		if err := json.Unmarshal(m.OtherUserInfo, &info); err != nil {
			return nil, fmt.Errorf("failed to unmarshal other user info: %w", err)
		}
		otherUserInfo = &info
	}
	var metadata bookingDomain.StayMetadata
	if err := json.Unmarshal(m.Metadata, &metadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stay metadata: %w", err)
	}

	return bookingDomain.ReconstructStayReservation(
		m.ID,
		m.ReservationCode,
		m.StayID,
		m.BookingID,
		m.StartDate,
		m.EndDate,
		m.NumAdult,
		m.NumChildren,
		m.NumInfant,
		m.Price,
		userInfo,
		otherUserInfo,
		metadata,
		m.CreatedAt,
	), nil
}

func toTourReservationModel(res *bookingDomain.TourReservation) (*TourReservationModel, error) {
	userInfo, err := json.Marshal(res.UserInfo())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal user info: %w", err)
	}
	var otherUserInfo datatypes.JSON
	if res.OtherUserInfo() != nil {
		data, err := json.Marshal(res.OtherUserInfo())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal other user info: %w", err)
		}
		otherUserInfo = data
	}
	metadata, err := json.Marshal(res.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tour metadata: %w", err)
	}

	return &TourReservationModel{
		ID:              res.ID(),
		ReservationCode: res.ReservationCode(),
		TourID:          res.TourID(),
		BookingID:       res.BookingID(),
		StartDate:       res.StartDate(),
		EndDate:         res.EndDate(),
		NumAdult:        res.NumAdult(),
		NumChildren:     res.NumChildren(),
		PickUpPoint:     res.PickUpPoint(),
		DropOffPoint:    res.DropOffPoint(),
		UserInfo:        userInfo,
		OtherUserInfo:   otherUserInfo,
		Metadata:        metadata,
		CreatedAt:       res.CreatedAt(),
	}, nil
}

func toDomainTourReservation(m *TourReservationModel) (*bookingDomain.TourReservation, error) {
	var userInfo bookingDomain.UserInfo
	if err := json.Unmarshal(m.UserInfo, &userInfo); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user info: %w", err)
	}
	var otherUserInfo *bookingDomain.UserInfo
	if len(m.OtherUserInfo) > 0 {
		var info bookingDomain.UserInfo
		if err := json.Unmarshal(m.OtherUserInfo, &info); err != nil {
			return nil, fmt.Errorf("failed to unmarshal other user info: %w", err)
		}
		otherUserInfo = &info
	}
	var metadata bookingDomain.TourMetadata
	if err := json.Unmarshal(m.Metadata, &metadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tour metadata: %w", err)
	}

	return bookingDomain.ReconstructTourReservation(
		m.ID,
		m.ReservationCode,
		m.TourID,
		m.BookingID,
		m.StartDate,
		m.EndDate,
		m.NumAdult,
		m.NumChildren,
		m.PickUpPoint,
		m.DropOffPoint,
		userInfo,
		otherUserInfo,
		metadata,
		m.CreatedAt,
	), nil
}
