// internal/services/commission_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/tripline/travel-backend/internal/commission"
	"github.com/tripline/travel-backend/internal/config"
	"github.com/tripline/travel-backend/internal/database"
	"github.com/tripline/travel-backend/internal/models"
	"github.com/tripline/travel-backend/internal/utils"
)

// gormLedger backs commission.Ledger with the commission_payments table.
// It is constructed per transaction so engine runs are atomic with the
// booking update they accompany.
type gormLedger struct {
	db *gorm.DB
}

func newGormLedger(db *gorm.DB) *gormLedger {
	return &gormLedger{db: db}
}

func (l *gormLedger) FindPayments(bookingID uuid.UUID) ([]models.CommissionPayment, error) {
	var rows []models.CommissionPayment
	if err := l.db.Where("booking_id = ?", bookingID).Order("payment_type asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch commission payments: %w", err)
	}
	return rows, nil
}

func (l *gormLedger) Insert(rows []models.CommissionPayment) ([]models.CommissionPayment, error) {
	if err := l.db.Create(&rows).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, commission.ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to insert commission payments: %w", err)
	}
	return rows, nil
}

func (l *gormLedger) MarkPaid(bookingID uuid.UUID, paymentType models.CommissionPaymentType, paidAt time.Time) (*models.CommissionPayment, error) {
	result := l.db.Model(&models.CommissionPayment{}).
		Where("booking_id = ? AND payment_type = ? AND status <> ?", bookingID, paymentType, models.CommissionStatusPaid).
		Updates(map[string]interface{}{
			"status":  models.CommissionStatusPaid,
			"paid_at": paidAt,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to mark commission paid: %w", result.Error)
	}

	var row models.CommissionPayment
	err := l.db.Where("booking_id = ? AND payment_type = ?", bookingID, paymentType).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: booking %s type %s", commission.ErrPaymentNotFound, bookingID, paymentType)
		}
		return nil, fmt.Errorf("failed to reload commission payment: %w", err)
	}
	return &row, nil
}

func (l *gormLedger) SumPaid(bookingID uuid.UUID) (float64, error) {
	var total float64
	err := l.db.Model(&models.CommissionPayment{}).
		Where("booking_id = ? AND status = ?", bookingID, models.CommissionStatusPaid).
		Select("COALESCE(SUM(amount), 0)").Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum paid commission: %w", err)
	}
	return total, nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

type CommissionService struct {
	db  *gorm.DB
	cfg *config.Config
}

type MarkCommissionPaidRequest struct {
	PaymentType models.CommissionPaymentType `json:"payment_type" validate:"required"`
}

func NewCommissionService(db *gorm.DB, cfg *config.Config) *CommissionService {
	return &CommissionService{
		db:  db,
		cfg: cfg,
	}
}

// MarkPaid records an admin payout of one commission half. Missing ledger
// rows are backfilled from the booking's precomputed commission total.
func (s *CommissionService) MarkPaid(bookingID uuid.UUID, req *MarkCommissionPaidRequest) (*models.CommissionPayment, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var booking models.Booking
	if err := s.db.First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: booking %s", commission.ErrNotFound, bookingID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var row *models.CommissionPayment
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		engine := commission.NewEngine(newGormLedger(tx))
		var err error
		row, err = engine.MarkPaid(&booking, req.PaymentType)
		return err
	})
	if err != nil {
		return nil, err
	}

	if booking.HasSeller() {
		go s.notifySellerPaid(*booking.SellerID, row)
	}

	return row, nil
}

func (s *CommissionService) notifySellerPaid(sellerID uuid.UUID, row *models.CommissionPayment) {
	var seller models.User
	if err := s.db.First(&seller, sellerID).Error; err != nil {
		logrus.WithError(err).WithField("seller_id", sellerID).Warn("Failed to load seller for commission email")
		return
	}
	notifier := NewNotificationService(s.cfg)
	if err := notifier.SendCommissionPaid(seller.Email, seller.Username, row); err != nil {
		logrus.WithError(err).WithField("seller_id", sellerID).Warn("Failed to send commission paid email")
	}
}

// GetBookingPayments returns the commission ledger rows for one booking.
func (s *CommissionService) GetBookingPayments(bookingID uuid.UUID) ([]models.CommissionPayment, error) {
	return newGormLedger(s.db).FindPayments(bookingID)
}

// GetSellerCommissions lists a seller's commission rows, newest first.
func (s *CommissionService) GetSellerCommissions(sellerID uuid.UUID, params utils.PaginationParams) ([]models.CommissionPayment, int64, error) {
	query := s.db.Model(&models.CommissionPayment{}).
		Where("seller_id = ?", sellerID).
		Preload("Booking")

	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count commission payments: %w", err)
	}

	allowedSortFields := []string{"created_at", "amount", "status", "paid_at"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var rows []models.CommissionPayment
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch commission payments: %w", err)
	}

	return rows, total, nil
}

// GetSellerEarnings aggregates a seller's paid and pending commission.
func (s *CommissionService) GetSellerEarnings(sellerID uuid.UUID) (map[string]interface{}, error) {
	var paid, pending float64

	err := s.db.Model(&models.CommissionPayment{}).
		Where("seller_id = ? AND status = ?", sellerID, models.CommissionStatusPaid).
		Select("COALESCE(SUM(amount), 0)").Scan(&paid).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum paid commission: %w", err)
	}

	err = s.db.Model(&models.CommissionPayment{}).
		Where("seller_id = ? AND status = ?", sellerID, models.CommissionStatusPending).
		Select("COALESCE(SUM(amount), 0)").Scan(&pending).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum pending commission: %w", err)
	}

	return map[string]interface{}{
		"paid_commission":    paid,
		"pending_commission": pending,
		"total_commission":   paid + pending,
		"currency":           s.cfg.Payment.Currency,
	}, nil
}
