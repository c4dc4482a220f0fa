// internal/services/trip_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripline/travel-backend/internal/commission"
	"github.com/tripline/travel-backend/internal/config"
	"github.com/tripline/travel-backend/internal/models"
	"github.com/tripline/travel-backend/internal/utils"
)

type TripService struct {
	db  *gorm.DB
	cfg *config.Config
}

type CreateTripRequest struct {
	Title           string                `json:"title" validate:"required,max=255"`
	Description     string                `json:"description"`
	Destination     string                `json:"destination" validate:"required,max=100"`
	PricePerPerson  float64               `json:"price_per_person" validate:"required,gt=0"`
	CommissionType  models.CommissionType `json:"commission_type" validate:"required"`
	CommissionValue float64               `json:"commission_value" validate:"gte=0"`
	CoverImageURL   string                `json:"cover_image_url,omitempty"`
}

type UpdateTripRequest struct {
	Title           *string                `json:"title,omitempty"`
	Description     *string                `json:"description,omitempty"`
	Destination     *string                `json:"destination,omitempty"`
	PricePerPerson  *float64               `json:"price_per_person,omitempty"`
	CommissionType  *models.CommissionType `json:"commission_type,omitempty"`
	CommissionValue *float64               `json:"commission_value,omitempty"`
	CoverImageURL   *string                `json:"cover_image_url,omitempty"`
	IsActive        *bool                  `json:"is_active,omitempty"`
}

type CreateScheduleRequest struct {
	DepartureDate        time.Time `json:"departure_date" validate:"required"`
	ReturnDate           time.Time `json:"return_date" validate:"required"`
	RegistrationDeadline time.Time `json:"registration_deadline" validate:"required"`
	TotalSeats           int       `json:"total_seats" validate:"required,min=1"`
}

func NewTripService(db *gorm.DB, cfg *config.Config) *TripService {
	return &TripService{
		db:  db,
		cfg: cfg,
	}
}

func (s *TripService) CreateTrip(req *CreateTripRequest) (*models.Trip, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	trip := &models.Trip{
		Title:           req.Title,
		Description:     req.Description,
		Destination:     req.Destination,
		PricePerPerson:  req.PricePerPerson,
		CommissionType:  req.CommissionType,
		CommissionValue: req.CommissionValue,
		CoverImageURL:   req.CoverImageURL,
		IsActive:        true,
	}

	if err := trip.ValidatePricing(); err != nil {
		return nil, fmt.Errorf("%w: %v", commission.ErrInvalidInput, err)
	}

	if err := s.db.Create(trip).Error; err != nil {
		return nil, fmt.Errorf("failed to create trip: %w", err)
	}
	return trip, nil
}

func (s *TripService) GetTrip(tripID uuid.UUID) (*models.Trip, error) {
	var trip models.Trip
	if err := s.db.Preload("Schedules").First(&trip, tripID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: trip %s", commission.ErrNotFound, tripID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &trip, nil
}

func (s *TripService) ListTrips(params utils.PaginationParams) ([]models.Trip, int64, error) {
	query := s.db.Model(&models.Trip{}).Where("is_active = ?", true)

	if params.Destination != "" {
		query = query.Where("destination = ?", params.Destination)
	}
	if params.Search != "" {
		searchTerm := "%" + params.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count trips: %w", err)
	}

	allowedSortFields := []string{"created_at", "price_per_person", "destination", "title"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var trips []models.Trip
	if err := query.Preload("Schedules").Find(&trips).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch trips: %w", err)
	}

	return trips, total, nil
}

// UpdateTrip applies partial updates. Pricing changes only affect future
// bookings; existing bookings carry their snapshotted commission.
func (s *TripService) UpdateTrip(tripID uuid.UUID, req *UpdateTripRequest) (*models.Trip, error) {
	trip, err := s.GetTrip(tripID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		trip.Title = *req.Title
	}
	if req.Description != nil {
		trip.Description = *req.Description
	}
	if req.Destination != nil {
		trip.Destination = *req.Destination
	}
	if req.PricePerPerson != nil {
		trip.PricePerPerson = *req.PricePerPerson
	}
	if req.CommissionType != nil {
		trip.CommissionType = *req.CommissionType
	}
	if req.CommissionValue != nil {
		trip.CommissionValue = *req.CommissionValue
	}
	if req.CoverImageURL != nil {
		trip.CoverImageURL = *req.CoverImageURL
	}
	if req.IsActive != nil {
		trip.IsActive = *req.IsActive
	}

	if err := trip.ValidatePricing(); err != nil {
		return nil, fmt.Errorf("%w: %v", commission.ErrInvalidInput, err)
	}

	if err := s.db.Save(trip).Error; err != nil {
		return nil, fmt.Errorf("failed to update trip: %w", err)
	}
	return trip, nil
}

// DeactivateTrip closes a trip for new bookings without touching existing
// ones.
func (s *TripService) DeactivateTrip(tripID uuid.UUID) error {
	result := s.db.Model(&models.Trip{}).Where("id = ?", tripID).Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to deactivate trip: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: trip %s", commission.ErrNotFound, tripID)
	}
	return nil
}

func (s *TripService) CreateSchedule(tripID uuid.UUID, req *CreateScheduleRequest) (*models.TripSchedule, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if _, err := s.GetTrip(tripID); err != nil {
		return nil, err
	}

	schedule := &models.TripSchedule{
		TripID:               tripID,
		DepartureDate:        req.DepartureDate,
		ReturnDate:           req.ReturnDate,
		RegistrationDeadline: req.RegistrationDeadline,
		TotalSeats:           req.TotalSeats,
		AvailableSeats:       req.TotalSeats,
	}

	if err := schedule.ValidateDates(); err != nil {
		return nil, fmt.Errorf("%w: %v", commission.ErrInvalidInput, err)
	}
	if err := schedule.ValidateSeats(); err != nil {
		return nil, fmt.Errorf("%w: %v", commission.ErrInvalidInput, err)
	}

	if err := s.db.Create(schedule).Error; err != nil {
		return nil, fmt.Errorf("failed to create schedule: %w", err)
	}
	return schedule, nil
}

func (s *TripService) GetSchedule(scheduleID uuid.UUID) (*models.TripSchedule, error) {
	var schedule models.TripSchedule
	if err := s.db.Preload("Trip").First(&schedule, scheduleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: trip schedule %s", commission.ErrNotFound, scheduleID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &schedule, nil
}

// ListUpcomingSchedules returns schedules still open for registration.
func (s *TripService) ListUpcomingSchedules(tripID uuid.UUID) ([]models.TripSchedule, error) {
	var schedules []models.TripSchedule
	err := s.db.Where("trip_id = ? AND registration_deadline > ?", tripID, time.Now()).
		Order("departure_date asc").
		Find(&schedules).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedules: %w", err)
	}
	return schedules, nil
}
