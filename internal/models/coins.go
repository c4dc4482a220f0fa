// internal/models/coins.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// SellerCoins holds the running redeemable coin balance per seller.
type SellerCoins struct {
	BaseModel
	SellerID          uuid.UUID `json:"seller_id" gorm:"type:uuid;not null;uniqueIndex"`
	RedeemableBalance float64   `json:"redeemable_balance" gorm:"type:decimal(14,2);not null;default:0"`
	TotalEarned       float64   `json:"total_earned" gorm:"type:decimal(14,2);not null;default:0"`
	TotalRedeemed     float64   `json:"total_redeemed" gorm:"type:decimal(14,2);not null;default:0"`

	// Relationships
	Seller User `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
}

// CoinTransaction is an append-only audit log of coin balance changes.
// Invariant: BalanceAfter == BalanceBefore + Amount for every row, and the
// seller's current redeemable_balance equals the latest row's BalanceAfter.
type CoinTransaction struct {
	BaseModel
	SellerID      uuid.UUID         `json:"seller_id" gorm:"type:uuid;not null;index"`
	Amount        float64           `json:"amount" gorm:"type:decimal(14,2);not null"`
	BalanceBefore float64           `json:"balance_before" gorm:"type:decimal(14,2);not null"`
	BalanceAfter  float64           `json:"balance_after" gorm:"type:decimal(14,2);not null"`
	ReferenceType CoinReferenceType `json:"reference_type" gorm:"type:varchar(20);not null;index"`
	ReferenceID   uuid.UUID         `json:"reference_id" gorm:"type:uuid;not null;index"`
	Description   string            `json:"description" gorm:"size:255"`
}

// CoinRedemption is a seller's request to convert coins to cash.
type CoinRedemption struct {
	BaseModel
	SellerID        uuid.UUID        `json:"seller_id" gorm:"type:uuid;not null;index"`
	CoinAmount      float64          `json:"coin_amount" gorm:"type:decimal(14,2);not null"`
	PayoutMethod    string           `json:"payout_method" gorm:"size:50;not null"`
	PayoutDetails   JSONB            `json:"payout_details" gorm:"type:jsonb"`
	Status          RedemptionStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	ApprovedAt      *time.Time       `json:"approved_at"`
	ApprovedBy      *uuid.UUID       `json:"approved_by" gorm:"type:uuid"`
	RejectionReason string           `json:"rejection_reason,omitempty" gorm:"type:text"`

	// Relationships
	Seller User `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
}
