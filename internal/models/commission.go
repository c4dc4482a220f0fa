// internal/models/commission.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// CommissionPayment is one owed-or-paid slice of a booking's commission.
// The composite unique index on (booking_id, payment_type) is the
// authoritative guard against duplicate rows created by racing requests;
// application-level existence checks are a fast path only.
type CommissionPayment struct {
	BaseModel
	BookingID   uuid.UUID               `json:"booking_id" gorm:"type:uuid;not null;uniqueIndex:idx_commission_booking_type,priority:1"`
	SellerID    uuid.UUID               `json:"seller_id" gorm:"type:uuid;not null;index"`
	PaymentType CommissionPaymentType   `json:"payment_type" gorm:"type:varchar(32);not null;uniqueIndex:idx_commission_booking_type,priority:2"`
	Amount      float64                 `json:"amount" gorm:"type:decimal(12,2);not null"`
	Percentage  float64                 `json:"percentage" gorm:"type:decimal(5,2)"`
	Status      CommissionPaymentStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	PaidAt      *time.Time              `json:"paid_at"`

	// Relationships
	Booking Booking `json:"booking,omitempty" gorm:"foreignKey:BookingID"`
	Seller  User    `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
}
