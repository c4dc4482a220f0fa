// internal/services/booking_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/tripline/travel-backend/internal/commission"
	"github.com/tripline/travel-backend/internal/config"
	"github.com/tripline/travel-backend/internal/database"
	"github.com/tripline/travel-backend/internal/models"
	"github.com/tripline/travel-backend/internal/utils"
)

type BookingService struct {
	db    *gorm.DB
	cfg   *config.Config
	coins *CoinService
}

type CreateBookingRequest struct {
	TripScheduleID uuid.UUID `json:"trip_schedule_id" validate:"required"`
	Seats          int       `json:"seats" validate:"required,min=1,max=20"`
	ReferralCode   string    `json:"referral_code,omitempty" validate:"omitempty,referral_code"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus models.PaymentStatus `json:"payment_status" validate:"required"`
}

func NewBookingService(db *gorm.DB, cfg *config.Config) *BookingService {
	return &BookingService{
		db:    db,
		cfg:   cfg,
		coins: NewCoinService(db, cfg),
	}
}

// CreateBooking reserves seats on a schedule and snapshots the commission
// owed to the referring seller. The commission amount is computed once here
// from the trip's pricing rule; later price changes never affect it.
func (s *BookingService) CreateBooking(customerID uuid.UUID, req *CreateBookingRequest) (*models.Booking, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var schedule models.TripSchedule
	if err := s.db.Preload("Trip").First(&schedule, req.TripScheduleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: trip schedule %s", commission.ErrNotFound, req.TripScheduleID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !schedule.Trip.IsActive {
		return nil, errors.New("trip is not open for booking")
	}
	if time.Now().After(schedule.RegistrationDeadline) {
		return nil, errors.New("registration deadline has passed")
	}
	if req.Seats > schedule.AvailableSeats {
		return nil, fmt.Errorf("only %d seats available", schedule.AvailableSeats)
	}

	// Resolve seller attribution from the referral code. Only approved
	// sellers earn commission; an unknown or unapproved code is rejected
	// rather than silently dropped.
	var sellerID *uuid.UUID
	if req.ReferralCode != "" {
		var profile models.SellerProfile
		err := s.db.Where("referral_code = ?", req.ReferralCode).First(&profile).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errors.New("unknown referral code")
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
		if profile.Status != models.SellerStatusApproved {
			return nil, errors.New("referral code belongs to an unapproved seller")
		}
		sellerID = &profile.UserID
	}

	totalAmount := commission.RoundCents(schedule.Trip.PricePerPerson * float64(req.Seats))

	perPerson, err := commission.Calculate(schedule.Trip.PricePerPerson, schedule.Trip.CommissionType, schedule.Trip.CommissionValue)
	if err != nil {
		return nil, fmt.Errorf("failed to compute commission: %w", err)
	}

	// Percentage commission scales with seats; fixed commission is a flat
	// amount per booking.
	commissionAmount := perPerson
	if schedule.Trip.CommissionType == models.CommissionTypePercentage {
		commissionAmount = commission.RoundCents(perPerson * float64(req.Seats))
	}
	if sellerID == nil {
		commissionAmount = 0
	}

	booking := &models.Booking{
		CustomerID:       customerID,
		TripScheduleID:   schedule.ID,
		SellerID:         sellerID,
		Seats:            req.Seats,
		Status:           models.BookingStatusPending,
		PaymentStatus:    models.PaymentStatusPending,
		TotalAmount:      totalAmount,
		CommissionAmount: commissionAmount,
	}

	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		// Conditional decrement: the seat guard in the WHERE clause keeps
		// two concurrent bookings from overselling the schedule.
		result := tx.Model(&models.TripSchedule{}).
			Where("id = ? AND available_seats >= ?", schedule.ID, req.Seats).
			Update("available_seats", gorm.Expr("available_seats - ?", req.Seats))
		if result.Error != nil {
			return fmt.Errorf("failed to reserve seats: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return errors.New("not enough seats available")
		}

		if err := tx.Create(booking).Error; err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return booking, nil
}

func (s *BookingService) GetBooking(bookingID uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.Preload("TripSchedule.Trip").
		Preload("Customer").
		Preload("Seller").
		Preload("CommissionPayments").
		First(&booking, bookingID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: booking %s", commission.ErrNotFound, bookingID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &booking, nil
}

func (s *BookingService) GetCustomerBookings(customerID uuid.UUID, params utils.PaginationParams) ([]models.Booking, int64, error) {
	query := s.db.Model(&models.Booking{}).
		Where("customer_id = ?", customerID).
		Preload("TripSchedule.Trip")

	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	allowedSortFields := []string{"created_at", "total_amount", "status", "payment_status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var bookings []models.Booking
	if err := query.Find(&bookings).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch bookings: %w", err)
	}

	return bookings, total, nil
}

func (s *BookingService) GetSellerBookings(sellerID uuid.UUID, params utils.PaginationParams) ([]models.Booking, int64, error) {
	query := s.db.Model(&models.Booking{}).
		Where("seller_id = ?", sellerID).
		Preload("TripSchedule.Trip").
		Preload("CommissionPayments")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	allowedSortFields := []string{"created_at", "total_amount", "payment_status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var bookings []models.Booking
	if err := query.Find(&bookings).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch bookings: %w", err)
	}

	return bookings, total, nil
}

// UpdatePaymentStatus drives the booking through the payment state machine.
// The commission side effects of the transition run in the same database
// transaction as the booking update; the coin award on completion is a
// secondary effect whose failure is logged, not surfaced, because the
// payment itself already happened.
// The returned warning is non-empty when a secondary effect failed.
func (s *BookingService) UpdatePaymentStatus(bookingID uuid.UUID, req *UpdatePaymentStatusRequest) (*models.Booking, string, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, "", fmt.Errorf("validation failed: %w", err)
	}

	var booking models.Booking
	if err := s.db.First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", fmt.Errorf("%w: booking %s", commission.ErrNotFound, bookingID)
		}
		return nil, "", fmt.Errorf("database error: %w", err)
	}

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		engine := commission.NewEngine(newGormLedger(tx))
		if _, err := engine.Transition(&booking, req.PaymentStatus); err != nil {
			return err
		}

		updates := map[string]interface{}{"payment_status": req.PaymentStatus}
		if req.PaymentStatus == models.PaymentStatusCompleted {
			updates["status"] = models.BookingStatusApproved
		}
		if req.PaymentStatus == models.PaymentStatusRefunded {
			updates["status"] = models.BookingStatusCancelled
		}
		if err := tx.Model(&booking).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update booking: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	booking.PaymentStatus = req.PaymentStatus

	var warning string
	if req.PaymentStatus == models.PaymentStatusCompleted && booking.HasSeller() {
		if _, err := s.coins.AwardForBooking(&booking); err != nil {
			logrus.WithError(err).WithField("booking_id", booking.ID).
				Error("Coin award failed after completed payment")
			warning = "coin award failed; payment was recorded and the award needs manual review"
		}
	}

	return &booking, warning, nil
}

// CancelBooking releases the reserved seats. Only unpaid bookings can be
// cancelled directly; paid bookings go through the refund flow.
func (s *BookingService) CancelBooking(bookingID, customerID uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: booking %s", commission.ErrNotFound, bookingID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if booking.CustomerID != customerID {
		return nil, errors.New("booking belongs to another customer")
	}
	if booking.Status == models.BookingStatusCancelled {
		return &booking, nil
	}
	if booking.PaymentStatus != models.PaymentStatusPending {
		return nil, errors.New("paid bookings must be refunded, not cancelled")
	}

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		result := tx.Model(&models.TripSchedule{}).
			Where("id = ?", booking.TripScheduleID).
			Update("available_seats", gorm.Expr("available_seats + ?", booking.Seats))
		if result.Error != nil {
			return fmt.Errorf("failed to release seats: %w", result.Error)
		}

		if err := tx.Model(&booking).Update("status", models.BookingStatusCancelled).Error; err != nil {
			return fmt.Errorf("failed to cancel booking: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	booking.Status = models.BookingStatusCancelled
	return &booking, nil
}

// DeleteBooking removes a booking and its commission ledger rows together.
// Refused once any commission has been paid out; that money trail must
// survive.
func (s *BookingService) DeleteBooking(bookingID uuid.UUID) error {
	var booking models.Booking
	if err := s.db.First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: booking %s", commission.ErrNotFound, bookingID)
		}
		return fmt.Errorf("database error: %w", err)
	}

	var paid int64
	err := s.db.Model(&models.CommissionPayment{}).
		Where("booking_id = ? AND status = ?", bookingID, models.CommissionStatusPaid).
		Count(&paid).Error
	if err != nil {
		return fmt.Errorf("failed to check commission payments: %w", err)
	}
	if paid > 0 {
		return fmt.Errorf("%w: commission already paid for booking %s", commission.ErrInvalidState, bookingID)
	}

	return database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.Where("booking_id = ?", bookingID).Delete(&models.CommissionPayment{}).Error; err != nil {
			return fmt.Errorf("failed to delete commission payments: %w", err)
		}

		// Cancelled bookings already gave their seats back.
		if booking.Status != models.BookingStatusCancelled {
			result := tx.Model(&models.TripSchedule{}).
				Where("id = ?", booking.TripScheduleID).
				Update("available_seats", gorm.Expr("available_seats + ?", booking.Seats))
			if result.Error != nil {
				return fmt.Errorf("failed to release seats: %w", result.Error)
			}
		}

		if err := tx.Delete(&booking).Error; err != nil {
			return fmt.Errorf("failed to delete booking: %w", err)
		}
		return nil
	})
}
