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
	"github.com/tripweave/service-booking/internal/domain/catalog"
)

// The catalog tables are read models maintained by the catalog services;
// this service only selects from them.

// StayModel is the GORM model for the stays table.
type StayModel struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey"`
	PageID           uuid.UUID      `gorm:"type:uuid;index;not null"`
	Name             string         `gorm:"not null;size:255"`
	CurrencyID       string         `gorm:"not null;size:3"`
	MaxAdults        int            `gorm:"not null;default:0"`
	MaxNumberOfGuest int            `gorm:"not null;default:0"`
	OffDays          datatypes.JSON `gorm:""`
	Pricing          datatypes.JSON `gorm:"not null"`
	CreatedAt        time.Time      `gorm:"not null"`
	UpdatedAt        time.Time      `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (StayModel) TableName() string { return "stays" }

// TourModel is the GORM model for the tours table.
type TourModel struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey"`
	PageID          uuid.UUID      `gorm:"type:uuid;index;not null"`
	Name            string         `gorm:"not null;size:255"`
	CurrencyID      string         `gorm:"not null;size:3"`
	IsDailyTour     bool           `gorm:"not null;default:false"`
	ProgramDays     int            `gorm:"not null;default:1"`
	Program         datatypes.JSON `gorm:""`
	DateOff         datatypes.JSON `gorm:""`
	MaxPassenger    int            `gorm:"not null;default:0"`
	MaxAdults       int            `gorm:"not null;default:0"`
	AdultPrice      int64          `gorm:"not null;default:0"`
	ChildPrice      int64          `gorm:"not null;default:0"`
	HolidayCalendar datatypes.JSON `gorm:""`
	CreatedAt       time.Time      `gorm:"not null"`
	UpdatedAt       time.Time      `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (TourModel) TableName() string { return "tours" }

// TourTimeSlotModel is the GORM model for the tour_time_slots table.
type TourTimeSlotModel struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	TourID  uuid.UUID `gorm:"type:uuid;index;not null"`
	StartAt time.Time `gorm:"not null;index"`
	EndAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (TourTimeSlotModel) TableName() string { return "tour_time_slots" }

// PageModel is the GORM model for the pages table.
type PageModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name          string    `gorm:"not null;size:255"`
	RelatedUserID uuid.UUID `gorm:"type:uuid;index;not null"`
	BookingPolicy string    `gorm:"not null;size:20;default:'confirm'"`
	ContactEmail  string    `gorm:"size:255"`
}

// TableName returns the table name for the GORM model.
func (PageModel) TableName() string { return "pages" }

// UserModel is the GORM model for the users read model.
type UserModel struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	FullName string    `gorm:"size:255"`
	Email    string    `gorm:"size:255"`
}

// TableName returns the table name for the GORM model.
func (UserModel) TableName() string { return "users" }

// GormCatalogRepository implements the catalog lookup interfaces against the
// shared read-model tables.
type GormCatalogRepository struct {
	db *gorm.DB
}

// NewGormCatalogRepository creates a new GormCatalogRepository.
func NewGormCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

// FindByID retrieves a stay by its service ID.
func (r *GormCatalogRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Stay, error) {
	var model StayModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Stay", id.String())
		}
		return nil, fmt.Errorf("failed to find stay: %w", err)
	}

	var offDays []time.Time
	if len(model.OffDays) > 0 {
		if err := json.Unmarshal(model.OffDays, &offDays); err != nil {
			return nil, fmt.Errorf("failed to unmarshal stay off-days: %w", err)
		}
	}
	var pricing catalog.StayPricing
	if err := json.Unmarshal(model.Pricing, &pricing); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stay pricing: %w", err)
	}

	return &catalog.Stay{
		ID:               model.ID,
		PageID:           model.PageID,
		Name:             model.Name,
		CurrencyID:       model.CurrencyID,
		MaxAdults:        model.MaxAdults,
		MaxNumberOfGuest: model.MaxNumberOfGuest,
		OffDays:          offDays,
		Pricing:          pricing,
	}, nil
}

// GormTourRepository implements catalog.TourRepository.
type GormTourRepository struct {
	db *gorm.DB
}

// NewGormTourRepository creates a new GormTourRepository.
func NewGormTourRepository(db *gorm.DB) *GormTourRepository {
	return &GormTourRepository{db: db}
}

// FindByID retrieves a tour by its service ID.
func (r *GormTourRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Tour, error) {
	var model TourModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Tour", id.String())
		}
		return nil, fmt.Errorf("failed to find tour: %w", err)
	}
	return toDomainTour(&model)
}

// FindTimeSlot retrieves one departure slot of a tour.
func (r *GormTourRepository) FindTimeSlot(ctx context.Context, tourID, slotID uuid.UUID) (*catalog.TimeSlot, error) {
	var model TourTimeSlotModel
	if err := r.db.WithContext(ctx).Where("id = ? AND tour_id = ?", slotID, tourID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("TimeSlot", slotID.String())
		}
		return nil, fmt.Errorf("failed to find time slot: %w", err)
	}
	return &catalog.TimeSlot{
		ID:      model.ID,
		TourID:  model.TourID,
		StartAt: model.StartAt,
		EndAt:   model.EndAt,
	}, nil
}

func toDomainTour(m *TourModel) (*catalog.Tour, error) {
	var program []catalog.ProgramDay
	if len(m.Program) > 0 {
		if err := json.Unmarshal(m.Program, &program); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tour program: %w", err)
		}
	}
	var dateOff []time.Time
	if len(m.DateOff) > 0 {
		if err := json.Unmarshal(m.DateOff, &dateOff); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tour off-days: %w", err)
		}
	}
	var holidays []time.Time
	if len(m.HolidayCalendar) > 0 {
		if err := json.Unmarshal(m.HolidayCalendar, &holidays); err != nil {
			return nil, fmt.Errorf("failed to unmarshal holiday calendar: %w", err)
		}
	}

	return &catalog.Tour{
		ID:              m.ID,
		PageID:          m.PageID,
		Name:            m.Name,
		CurrencyID:      m.CurrencyID,
		IsDailyTour:     m.IsDailyTour,
		ProgramDays:     m.ProgramDays,
		Program:         program,
		DateOff:         dateOff,
		MaxPassenger:    m.MaxPassenger,
		MaxAdults:       m.MaxAdults,
		AdultPrice:      m.AdultPrice,
		ChildPrice:      m.ChildPrice,
		HolidayCalendar: holidays,
	}, nil
}

// GormPageRepository implements catalog.PageRepository.
type GormPageRepository struct {
	db *gorm.DB
}

// NewGormPageRepository creates a new GormPageRepository.
func NewGormPageRepository(db *gorm.DB) *GormPageRepository {
	return &GormPageRepository{db: db}
}

// FindByID retrieves a page by ID.
func (r *GormPageRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Page, error) {
	var model PageModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Page", id.String())
		}
		return nil, fmt.Errorf("failed to find page: %w", err)
	}
	return &catalog.Page{
		ID:            model.ID,
		Name:          model.Name,
		RelatedUserID: model.RelatedUserID,
		BookingPolicy: catalog.BookingPolicy(model.BookingPolicy),
		ContactEmail:  model.ContactEmail,
	}, nil
}

// GormUserDirectory implements catalog.UserDirectory.
type GormUserDirectory struct {
	db *gorm.DB
}

// NewGormUserDirectory creates a new GormUserDirectory.
func NewGormUserDirectory(db *gorm.DB) *GormUserDirectory {
	return &GormUserDirectory{db: db}
}

// FindContact retrieves a user's name and email. A user without an email
// yields an empty Email, not an error; notification code skips them.
func (r *GormUserDirectory) FindContact(ctx context.Context, userID uuid.UUID) (*catalog.Contact, error) {
	var model UserModel
	if err := r.db.WithContext(ctx).Where("id = ?", userID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("User", userID.String())
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &catalog.Contact{UserID: model.ID, Name: model.FullName, Email: model.Email}, nil
}
