// internal/models/trip.go
package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Trip struct {
	BaseModel
	Title           string         `json:"title" gorm:"size:255;not null"`
	Description     string         `json:"description" gorm:"type:text"`
	Destination     string         `json:"destination" gorm:"size:100;not null;index"`
	PricePerPerson  float64        `json:"price_per_person" gorm:"type:decimal(12,2);not null"`
	CommissionType  CommissionType `json:"commission_type" gorm:"type:varchar(20);not null;default:'percentage'"`
	CommissionValue float64        `json:"commission_value" gorm:"type:decimal(12,2);not null"`
	CoverImageURL   string         `json:"cover_image_url" gorm:"size:500"`
	IsActive        bool           `json:"is_active" gorm:"default:true;index"`

	// Relationships
	Schedules []TripSchedule `json:"schedules,omitempty" gorm:"foreignKey:TripID"`
}

// ValidatePricing checks the trip's commission rule before it is persisted.
func (t *Trip) ValidatePricing() error {
	if t.PricePerPerson < 0 {
		return errors.New("price_per_person must not be negative")
	}
	switch t.CommissionType {
	case CommissionTypePercentage:
		if t.CommissionValue < 0 || t.CommissionValue > 100 {
			return errors.New("percentage commission_value must be within [0,100]")
		}
	case CommissionTypeFixed:
		if t.CommissionValue < 0 {
			return errors.New("fixed commission_value must not be negative")
		}
	default:
		return errors.New("commission_type must be percentage or fixed")
	}
	return nil
}

type TripSchedule struct {
	BaseModel
	TripID               uuid.UUID `json:"trip_id" gorm:"type:uuid;not null;index"`
	DepartureDate        time.Time `json:"departure_date" gorm:"not null"`
	ReturnDate           time.Time `json:"return_date" gorm:"not null"`
	RegistrationDeadline time.Time `json:"registration_deadline" gorm:"not null"`
	TotalSeats           int       `json:"total_seats" gorm:"not null"`
	AvailableSeats       int       `json:"available_seats" gorm:"not null"`

	// Relationships
	Trip     Trip      `json:"trip,omitempty" gorm:"foreignKey:TripID"`
	Bookings []Booking `json:"bookings,omitempty" gorm:"foreignKey:TripScheduleID"`
}

// ValidateDates enforces registration_deadline < departure_date < return_date.
func (s *TripSchedule) ValidateDates() error {
	if !s.RegistrationDeadline.Before(s.DepartureDate) {
		return errors.New("registration_deadline must be before departure_date")
	}
	if !s.DepartureDate.Before(s.ReturnDate) {
		return errors.New("departure_date must be before return_date")
	}
	return nil
}

func (s *TripSchedule) ValidateSeats() error {
	if s.TotalSeats <= 0 {
		return errors.New("total_seats must be positive")
	}
	if s.AvailableSeats < 0 || s.AvailableSeats > s.TotalSeats {
		return errors.New("available_seats must be within [0,total_seats]")
	}
	return nil
}
