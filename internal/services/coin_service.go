// internal/services/coin_service.go
package services

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/tripline/travel-backend/internal/commission"
	"github.com/tripline/travel-backend/internal/config"
	"github.com/tripline/travel-backend/internal/database"
	"github.com/tripline/travel-backend/internal/models"
	"github.com/tripline/travel-backend/internal/utils"
)

// gormCoinStore backs commission.CoinStore with the seller_coins,
// coin_transactions and coin_redemptions tables.
type gormCoinStore struct {
	db *gorm.DB
}

func newGormCoinStore(db *gorm.DB) *gormCoinStore {
	return &gormCoinStore{db: db}
}

func (s *gormCoinStore) FindRedemption(id uuid.UUID) (*models.CoinRedemption, error) {
	var redemption models.CoinRedemption
	if err := s.db.First(&redemption, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: redemption %s", commission.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch redemption: %w", err)
	}
	return &redemption, nil
}

func (s *gormCoinStore) Balance(sellerID uuid.UUID) (float64, error) {
	var account models.SellerCoins
	err := s.db.Where("seller_id = ?", sellerID).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to fetch coin account: %w", err)
	}
	return account.RedeemableBalance, nil
}

func (s *gormCoinStore) FindTransactionByReference(sellerID uuid.UUID, refType models.CoinReferenceType, refID uuid.UUID) (*models.CoinTransaction, error) {
	var txn models.CoinTransaction
	err := s.db.Where("seller_id = ? AND reference_type = ? AND reference_id = ?", sellerID, refType, refID).
		First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, commission.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch coin transaction: %w", err)
	}
	return &txn, nil
}

func (s *gormCoinStore) AppendTransaction(txn *models.CoinTransaction) error {
	if err := s.db.Create(txn).Error; err != nil {
		return fmt.Errorf("failed to append coin transaction: %w", err)
	}
	return nil
}

// DebitBalance is a conditional update: the WHERE guard rejects a debit
// that would drive the balance negative, so two concurrent approvals
// cannot both spend the same coins.
func (s *gormCoinStore) DebitBalance(sellerID uuid.UUID, amount float64) error {
	result := s.db.Model(&models.SellerCoins{}).
		Where("seller_id = ? AND redeemable_balance >= ?", sellerID, amount).
		Updates(map[string]interface{}{
			"redeemable_balance": gorm.Expr("redeemable_balance - ?", amount),
			"total_redeemed":     gorm.Expr("total_redeemed + ?", amount),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to debit coin balance: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return commission.ErrInsufficientBalance
	}
	return nil
}

func (s *gormCoinStore) CreditBalance(sellerID uuid.UUID, amount float64) error {
	result := s.db.Model(&models.SellerCoins{}).
		Where("seller_id = ?", sellerID).
		Updates(map[string]interface{}{
			"redeemable_balance": gorm.Expr("redeemable_balance + ?", amount),
			"total_earned":       gorm.Expr("total_earned + ?", amount),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to credit coin balance: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: coin account for seller %s", commission.ErrNotFound, sellerID)
	}
	return nil
}

func (s *gormCoinStore) UpdateRedemption(id uuid.UUID, fields map[string]interface{}) error {
	result := s.db.Model(&models.CoinRedemption{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update redemption: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: redemption %s", commission.ErrNotFound, id)
	}
	return nil
}

type CoinService struct {
	db  *gorm.DB
	cfg *config.Config
}

type RedemptionRequest struct {
	CoinAmount    float64                `json:"coin_amount" validate:"required,gt=0"`
	PayoutMethod  string                 `json:"payout_method" validate:"required,oneof=bank_transfer paypal"`
	PayoutDetails map[string]interface{} `json:"payout_details" validate:"required"`
}

func NewCoinService(db *gorm.DB, cfg *config.Config) *CoinService {
	return &CoinService{
		db:  db,
		cfg: cfg,
	}
}

// EnsureAccount creates the seller's coin account if absent. Safe to call
// repeatedly; the unique index on seller_id makes races harmless.
func (s *CoinService) EnsureAccount(sellerID uuid.UUID) (*models.SellerCoins, error) {
	var account models.SellerCoins
	err := s.db.Where("seller_id = ?", sellerID).First(&account).Error
	if err == nil {
		return &account, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to fetch coin account: %w", err)
	}

	account = models.SellerCoins{SellerID: sellerID}
	if err := s.db.Create(&account).Error; err != nil {
		if isUniqueViolation(err) {
			if err := s.db.Where("seller_id = ?", sellerID).First(&account).Error; err != nil {
				return nil, fmt.Errorf("failed to fetch coin account: %w", err)
			}
			return &account, nil
		}
		return nil, fmt.Errorf("failed to create coin account: %w", err)
	}
	return &account, nil
}

func (s *CoinService) GetAccount(sellerID uuid.UUID) (*models.SellerCoins, error) {
	return s.EnsureAccount(sellerID)
}

func (s *CoinService) GetTransactions(sellerID uuid.UUID, params utils.PaginationParams) ([]models.CoinTransaction, int64, error) {
	query := s.db.Model(&models.CoinTransaction{}).Where("seller_id = ?", sellerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count coin transactions: %w", err)
	}

	allowedSortFields := []string{"created_at", "amount"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var txns []models.CoinTransaction
	if err := query.Find(&txns).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch coin transactions: %w", err)
	}

	return txns, total, nil
}

// RequestRedemption files a pending payout request. The balance check here
// is advisory; the authoritative check happens at approval time via the
// conditional debit.
func (s *CoinService) RequestRedemption(sellerID uuid.UUID, req *RedemptionRequest) (*models.CoinRedemption, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if req.CoinAmount < s.cfg.Coins.MinimumRedemption {
		return nil, fmt.Errorf("minimum redemption is %.0f coins", s.cfg.Coins.MinimumRedemption)
	}

	account, err := s.EnsureAccount(sellerID)
	if err != nil {
		return nil, err
	}
	if req.CoinAmount > account.RedeemableBalance {
		return nil, fmt.Errorf("%w: balance %.2f, requested %.2f",
			commission.ErrInsufficientBalance, account.RedeemableBalance, req.CoinAmount)
	}

	redemption := &models.CoinRedemption{
		SellerID:      sellerID,
		CoinAmount:    req.CoinAmount,
		PayoutMethod:  req.PayoutMethod,
		PayoutDetails: models.JSONB(req.PayoutDetails),
		Status:        models.RedemptionStatusPending,
	}
	if err := s.db.Create(redemption).Error; err != nil {
		return nil, fmt.Errorf("failed to create redemption: %w", err)
	}
	return redemption, nil
}

func (s *CoinService) GetRedemptions(sellerID uuid.UUID, params utils.PaginationParams) ([]models.CoinRedemption, int64, error) {
	query := s.db.Model(&models.CoinRedemption{}).Where("seller_id = ?", sellerID)

	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count redemptions: %w", err)
	}

	allowedSortFields := []string{"created_at", "coin_amount", "status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var redemptions []models.CoinRedemption
	if err := query.Find(&redemptions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch redemptions: %w", err)
	}

	return redemptions, total, nil
}

func (s *CoinService) ListPendingRedemptions(params utils.PaginationParams) ([]models.CoinRedemption, int64, error) {
	query := s.db.Model(&models.CoinRedemption{}).
		Where("status = ?", models.RedemptionStatusPending).
		Preload("Seller")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count redemptions: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "coin_amount"})
	query = utils.ApplyPagination(query, params)

	var redemptions []models.CoinRedemption
	if err := query.Find(&redemptions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch redemptions: %w", err)
	}

	return redemptions, total, nil
}

// ApproveRedemption debits the seller's balance and marks the request
// approved, atomically with the transaction log append.
func (s *CoinService) ApproveRedemption(redemptionID, approverID uuid.UUID) (*models.CoinRedemption, error) {
	var redemption *models.CoinRedemption
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		ledger := commission.NewCoinLedger(newGormCoinStore(tx))
		var err error
		redemption, err = ledger.Approve(redemptionID, approverID)
		return err
	})
	if err != nil {
		return nil, err
	}

	go s.notifyRedemptionReviewed(redemption, "")

	return redemption, nil
}

func (s *CoinService) RejectRedemption(redemptionID uuid.UUID, reason string) (*models.CoinRedemption, error) {
	var redemption *models.CoinRedemption
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		ledger := commission.NewCoinLedger(newGormCoinStore(tx))
		var err error
		redemption, err = ledger.Reject(redemptionID, reason)
		return err
	})
	if err != nil {
		return nil, err
	}

	go s.notifyRedemptionReviewed(redemption, reason)

	return redemption, nil
}

func (s *CoinService) notifyRedemptionReviewed(redemption *models.CoinRedemption, reason string) {
	var seller models.User
	if err := s.db.First(&seller, redemption.SellerID).Error; err != nil {
		logrus.WithError(err).WithField("seller_id", redemption.SellerID).Warn("Failed to load seller for redemption email")
		return
	}
	notifier := NewNotificationService(s.cfg)
	var err error
	if redemption.Status == models.RedemptionStatusApproved {
		err = notifier.SendRedemptionApproved(seller.Email, seller.Username, redemption)
	} else {
		err = notifier.SendRedemptionRejected(seller.Email, seller.Username, reason)
	}
	if err != nil {
		logrus.WithError(err).WithField("redemption_id", redemption.ID).Warn("Failed to send redemption email")
	}
}

// AwardForBooking credits the seller's coin reward for a completed
// booking: floor(total * earn rate * tier multiplier). Idempotent per
// booking via the transaction's reference pair.
func (s *CoinService) AwardForBooking(booking *models.Booking) (*models.CoinTransaction, error) {
	if !booking.HasSeller() {
		return nil, nil
	}

	var profile models.SellerProfile
	if err := s.db.Where("user_id = ?", *booking.SellerID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: seller profile for %s", commission.ErrNotFound, *booking.SellerID)
		}
		return nil, fmt.Errorf("failed to fetch seller profile: %w", err)
	}

	coins := math.Floor(booking.TotalAmount * s.cfg.Coins.EarnRate * profile.CoinMultiplier())
	if coins <= 0 {
		return nil, nil
	}

	if _, err := s.EnsureAccount(*booking.SellerID); err != nil {
		return nil, err
	}

	description := fmt.Sprintf("coins earned for booking %s", booking.ID)

	var txn *models.CoinTransaction
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		ledger := commission.NewCoinLedger(newGormCoinStore(tx))
		var err error
		txn, err = ledger.Award(*booking.SellerID, booking.ID, coins, description)
		return err
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}
