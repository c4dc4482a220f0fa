// internal/models/booking.go
package models

import (
	"github.com/google/uuid"
)

type Booking struct {
	BaseModel
	CustomerID     uuid.UUID     `json:"customer_id" gorm:"type:uuid;not null;index"`
	TripScheduleID uuid.UUID     `json:"trip_schedule_id" gorm:"type:uuid;not null;index"`
	SellerID       *uuid.UUID    `json:"seller_id" gorm:"type:uuid;index"`
	Seats          int           `json:"seats" gorm:"not null;default:1"`
	Status         BookingStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	PaymentStatus  PaymentStatus `json:"payment_status" gorm:"type:varchar(20);default:'pending';index"`
	TotalAmount    float64       `json:"total_amount" gorm:"type:decimal(12,2);not null"`

	// CommissionAmount is computed once at booking creation from the trip's
	// pricing rule and is not recomputed after commission payments exist.
	CommissionAmount float64 `json:"commission_amount" gorm:"type:decimal(12,2);not null;default:0"`

	// Stripe payment references for the deposit and balance collections.
	DepositIntentID string `json:"deposit_intent_id,omitempty" gorm:"size:255"`
	BalanceIntentID string `json:"balance_intent_id,omitempty" gorm:"size:255"`

	// Relationships
	Customer           User                `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	TripSchedule       TripSchedule        `json:"trip_schedule,omitempty" gorm:"foreignKey:TripScheduleID"`
	Seller             *User               `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
	CommissionPayments []CommissionPayment `json:"commission_payments,omitempty" gorm:"foreignKey:BookingID"`
}

// HasSeller reports whether the booking is attributed to a seller; bookings
// without one never produce commission side effects.
func (b *Booking) HasSeller() bool {
	return b.SellerID != nil && *b.SellerID != uuid.Nil
}
