// internal/models/trip_test.go
package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTripValidatePricing(t *testing.T) {
	tests := []struct {
		name    string
		trip    Trip
		wantErr bool
	}{
		{
			name: "valid percentage",
			trip: Trip{PricePerPerson: 1200, CommissionType: CommissionTypePercentage, CommissionValue: 12.5},
		},
		{
			name: "valid fixed",
			trip: Trip{PricePerPerson: 1200, CommissionType: CommissionTypeFixed, CommissionValue: 150},
		},
		{
			name:    "negative price",
			trip:    Trip{PricePerPerson: -1, CommissionType: CommissionTypePercentage, CommissionValue: 10},
			wantErr: true,
		},
		{
			name:    "percentage over 100",
			trip:    Trip{PricePerPerson: 100, CommissionType: CommissionTypePercentage, CommissionValue: 101},
			wantErr: true,
		},
		{
			name:    "negative fixed commission",
			trip:    Trip{PricePerPerson: 100, CommissionType: CommissionTypeFixed, CommissionValue: -5},
			wantErr: true,
		},
		{
			name:    "unknown commission type",
			trip:    Trip{PricePerPerson: 100, CommissionType: "flat", CommissionValue: 5},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.trip.ValidatePricing()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTripScheduleValidateDates(t *testing.T) {
	base := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	valid := TripSchedule{
		RegistrationDeadline: base,
		DepartureDate:        base.AddDate(0, 0, 7),
		ReturnDate:           base.AddDate(0, 0, 14),
	}
	assert.NoError(t, valid.ValidateDates())

	deadlineAfterDeparture := TripSchedule{
		RegistrationDeadline: base.AddDate(0, 0, 8),
		DepartureDate:        base.AddDate(0, 0, 7),
		ReturnDate:           base.AddDate(0, 0, 14),
	}
	assert.Error(t, deadlineAfterDeparture.ValidateDates())

	returnBeforeDeparture := TripSchedule{
		RegistrationDeadline: base,
		DepartureDate:        base.AddDate(0, 0, 14),
		ReturnDate:           base.AddDate(0, 0, 7),
	}
	assert.Error(t, returnBeforeDeparture.ValidateDates())
}

func TestTripScheduleValidateSeats(t *testing.T) {
	assert.NoError(t, (&TripSchedule{TotalSeats: 20, AvailableSeats: 20}).ValidateSeats())
	assert.NoError(t, (&TripSchedule{TotalSeats: 20, AvailableSeats: 0}).ValidateSeats())
	assert.Error(t, (&TripSchedule{TotalSeats: 0, AvailableSeats: 0}).ValidateSeats())
	assert.Error(t, (&TripSchedule{TotalSeats: 20, AvailableSeats: 21}).ValidateSeats())
	assert.Error(t, (&TripSchedule{TotalSeats: 20, AvailableSeats: -1}).ValidateSeats())
}
