// internal/models/user.go
package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Username     string     `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"`
	UserType     UserType   `json:"user_type" gorm:"type:varchar(20);not null"`
	Status       UserStatus `json:"status" gorm:"type:varchar(20);default:'active'"`
	FullName     string     `json:"full_name" gorm:"size:100"`
	Phone        string     `json:"phone" gorm:"size:20"`
	ProfileData  JSONB      `json:"profile_data" gorm:"type:jsonb"`
	LastLoginAt  *time.Time `json:"last_login_at"`

	// Relationships
	SellerProfile *SellerProfile `json:"seller_profile,omitempty" gorm:"foreignKey:UserID"`
	Bookings      []Booking      `json:"bookings,omitempty" gorm:"foreignKey:CustomerID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// SellerProfile carries the seller-specific state of a user: admin approval,
// commission tier and the referral code bookings are attributed through.
type SellerProfile struct {
	BaseModel
	UserID       uuid.UUID    `json:"user_id" gorm:"type:uuid;not null;uniqueIndex"`
	Status       SellerStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	Tier         SellerTier   `json:"tier" gorm:"type:varchar(20);default:'bronze'"`
	ReferralCode string       `json:"referral_code" gorm:"size:16;uniqueIndex"`
	DocumentURL  string       `json:"document_url" gorm:"size:500"`
	ApprovedAt   *time.Time   `json:"approved_at"`
	ApprovedBy   *uuid.UUID   `json:"approved_by" gorm:"type:uuid"`
	RejectReason string       `json:"reject_reason,omitempty" gorm:"type:text"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// CoinMultiplier scales coin awards by tier.
func (p *SellerProfile) CoinMultiplier() float64 {
	switch p.Tier {
	case SellerTierGold:
		return 2.0
	case SellerTierSilver:
		return 1.5
	default:
		return 1.0
	}
}
