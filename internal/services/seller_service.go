// internal/services/seller_service.go
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

type SellerService struct {
	db       *gorm.DB
	cfg      *config.Config
	coins    *CoinService
	notifier *NotificationService
}

type SetTierRequest struct {
	Tier models.SellerTier `json:"tier" validate:"required,oneof=bronze silver gold"`
}

func NewSellerService(db *gorm.DB, cfg *config.Config) *SellerService {
	return &SellerService{
		db:       db,
		cfg:      cfg,
		coins:    NewCoinService(db, cfg),
		notifier: NewNotificationService(cfg),
	}
}

func (s *SellerService) GetProfile(userID uuid.UUID) (*models.SellerProfile, error) {
	var profile models.SellerProfile
	if err := s.db.Preload("User").Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: seller profile for %s", commission.ErrNotFound, userID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &profile, nil
}

func (s *SellerService) GetProfileByID(profileID uuid.UUID) (*models.SellerProfile, error) {
	var profile models.SellerProfile
	if err := s.db.Preload("User").First(&profile, profileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: seller profile %s", commission.ErrNotFound, profileID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &profile, nil
}

func (s *SellerService) ListSellers(params utils.PaginationParams) ([]models.SellerProfile, int64, error) {
	query := s.db.Model(&models.SellerProfile{}).Preload("User")

	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count sellers: %w", err)
	}

	allowedSortFields := []string{"created_at", "status", "tier"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var profiles []models.SellerProfile
	if err := query.Find(&profiles).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch sellers: %w", err)
	}

	return profiles, total, nil
}

// ApproveSeller activates a pending seller and opens their coin account.
func (s *SellerService) ApproveSeller(profileID, adminID uuid.UUID) (*models.SellerProfile, error) {
	var profile models.SellerProfile
	if err := s.db.Preload("User").First(&profile, profileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: seller profile %s", commission.ErrNotFound, profileID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if profile.Status == models.SellerStatusApproved {
		return &profile, nil
	}
	if profile.Status != models.SellerStatusPending {
		return nil, fmt.Errorf("cannot approve seller in %s state", profile.Status)
	}

	now := time.Now()
	profile.Status = models.SellerStatusApproved
	profile.ApprovedAt = &now
	profile.ApprovedBy = &adminID
	profile.RejectReason = ""

	if err := s.db.Save(&profile).Error; err != nil {
		return nil, fmt.Errorf("failed to approve seller: %w", err)
	}

	if _, err := s.coins.EnsureAccount(profile.UserID); err != nil {
		return nil, err
	}

	go s.notifier.SendSellerApproved(profile.User.Email, profile.User.FullName, profile.ReferralCode)

	return &profile, nil
}

func (s *SellerService) RejectSeller(profileID uuid.UUID, reason string) (*models.SellerProfile, error) {
	var profile models.SellerProfile
	if err := s.db.Preload("User").First(&profile, profileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: seller profile %s", commission.ErrNotFound, profileID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if profile.Status != models.SellerStatusPending {
		return nil, fmt.Errorf("cannot reject seller in %s state", profile.Status)
	}

	profile.Status = models.SellerStatusRejected
	profile.RejectReason = reason

	if err := s.db.Save(&profile).Error; err != nil {
		return nil, fmt.Errorf("failed to reject seller: %w", err)
	}

	go s.notifier.SendSellerRejected(profile.User.Email, profile.User.FullName, reason)

	return &profile, nil
}

// SetTier changes the seller's coin multiplier tier.
func (s *SellerService) SetTier(profileID uuid.UUID, req *SetTierRequest) (*models.SellerProfile, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var profile models.SellerProfile
	if err := s.db.First(&profile, profileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: seller profile %s", commission.ErrNotFound, profileID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	profile.Tier = req.Tier
	if err := s.db.Save(&profile).Error; err != nil {
		return nil, fmt.Errorf("failed to update tier: %w", err)
	}
	return &profile, nil
}

// SetDocumentURL records the seller's uploaded verification document.
func (s *SellerService) SetDocumentURL(userID uuid.UUID, url string) (*models.SellerProfile, error) {
	profile, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	profile.DocumentURL = url
	if err := s.db.Save(profile).Error; err != nil {
		return nil, fmt.Errorf("failed to update document: %w", err)
	}
	return profile, nil
}
