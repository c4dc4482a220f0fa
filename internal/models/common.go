// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type UserType string

const (
	UserTypeAdmin    UserType = "admin"
	UserTypeSeller   UserType = "seller"
	UserTypeCustomer UserType = "customer"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusBanned    UserStatus = "banned"
)

type SellerStatus string

const (
	SellerStatusPending  SellerStatus = "pending"
	SellerStatusApproved SellerStatus = "approved"
	SellerStatusRejected SellerStatus = "rejected"
)

type SellerTier string

const (
	SellerTierBronze SellerTier = "bronze"
	SellerTierSilver SellerTier = "silver"
	SellerTierGold   SellerTier = "gold"
)

type CommissionType string

const (
	CommissionTypePercentage CommissionType = "percentage"
	CommissionTypeFixed      CommissionType = "fixed"
)

type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusInProgress BookingStatus = "inprogress"
	BookingStatusApproved   BookingStatus = "approved"
	BookingStatusRejected   BookingStatus = "rejected"
	BookingStatusCancelled  BookingStatus = "cancelled"
)

// PaymentStatus is the booking-level payment lifecycle. The forward path is
// pending -> partial -> completed; refunded is terminal and reachable from
// any non-terminal state.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPartial   PaymentStatus = "partial"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// CommissionPaymentType identifies which half of a booking's commission a
// ledger row represents.
type CommissionPaymentType string

const (
	CommissionPaymentPartial CommissionPaymentType = "partial_commission"
	CommissionPaymentFinal   CommissionPaymentType = "final_commission"
)

type CommissionPaymentStatus string

const (
	CommissionStatusPending   CommissionPaymentStatus = "pending"
	CommissionStatusPaid      CommissionPaymentStatus = "paid"
	CommissionStatusCancelled CommissionPaymentStatus = "cancelled"
)

type RedemptionStatus string

const (
	RedemptionStatusPending  RedemptionStatus = "pending"
	RedemptionStatusApproved RedemptionStatus = "approved"
	RedemptionStatusRejected RedemptionStatus = "rejected"
)

// CoinReferenceType names the record a coin transaction originated from.
type CoinReferenceType string

const (
	CoinReferenceBooking    CoinReferenceType = "booking"
	CoinReferenceRedemption CoinReferenceType = "redemption"
)
