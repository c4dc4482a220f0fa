// internal/services/payment_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"github.com/stripe/stripe-go/v74/refund"
	"gorm.io/gorm"

	"github.com/tripline/travel-backend/internal/commission"
	"github.com/tripline/travel-backend/internal/config"
	"github.com/tripline/travel-backend/internal/models"
	"github.com/tripline/travel-backend/internal/utils"
)

// PaymentService collects booking payments through Stripe in two legs: a
// deposit intent and a balance intent. Confirming a leg drives the
// booking's payment-status state machine, which in turn triggers the
// commission side effects.
type PaymentService struct {
	db       *gorm.DB
	cfg      *config.Config
	bookings *BookingService
}

type PaymentIntentResponse struct {
	ClientSecret string  `json:"client_secret"`
	PaymentID    string  `json:"payment_id"`
	Amount       float64 `json:"amount"`
	Status       string  `json:"status"`
}

type ConfirmPaymentRequest struct {
	PaymentIntentID string    `json:"payment_intent_id" validate:"required"`
	BookingID       uuid.UUID `json:"booking_id" validate:"required"`
}

type RefundBookingRequest struct {
	BookingID uuid.UUID `json:"booking_id" validate:"required"`
	Reason    string    `json:"reason" validate:"required"`
}

func NewPaymentService(db *gorm.DB, cfg *config.Config) *PaymentService {
	// Initialize Stripe
	stripe.Key = cfg.Payment.StripeSecretKey

	return &PaymentService{
		db:       db,
		cfg:      cfg,
		bookings: NewBookingService(db, cfg),
	}
}

// CreateDepositIntent opens the first payment leg for a pending booking.
func (s *PaymentService) CreateDepositIntent(bookingID, customerID uuid.UUID) (*PaymentIntentResponse, error) {
	booking, err := s.loadBookingFor(bookingID, customerID)
	if err != nil {
		return nil, err
	}
	if booking.PaymentStatus != models.PaymentStatusPending {
		return nil, fmt.Errorf("booking payment is already %s", booking.PaymentStatus)
	}

	amount := commission.RoundCents(booking.TotalAmount * s.cfg.Payment.DepositPercent / 100)

	pi, err := s.newIntent(booking, amount, "deposit")
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(booking).Update("deposit_intent_id", pi.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to record deposit intent: %w", err)
	}

	return &PaymentIntentResponse{
		ClientSecret: pi.ClientSecret,
		PaymentID:    pi.ID,
		Amount:       amount,
		Status:       string(pi.Status),
	}, nil
}

// CreateBalanceIntent opens the remaining-balance leg after the deposit.
func (s *PaymentService) CreateBalanceIntent(bookingID, customerID uuid.UUID) (*PaymentIntentResponse, error) {
	booking, err := s.loadBookingFor(bookingID, customerID)
	if err != nil {
		return nil, err
	}
	if booking.PaymentStatus != models.PaymentStatusPartial {
		return nil, fmt.Errorf("balance payment requires a paid deposit, booking is %s", booking.PaymentStatus)
	}

	deposit := commission.RoundCents(booking.TotalAmount * s.cfg.Payment.DepositPercent / 100)
	amount := commission.RoundCents(booking.TotalAmount - deposit)

	pi, err := s.newIntent(booking, amount, "balance")
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(booking).Update("balance_intent_id", pi.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to record balance intent: %w", err)
	}

	return &PaymentIntentResponse{
		ClientSecret: pi.ClientSecret,
		PaymentID:    pi.ID,
		Amount:       amount,
		Status:       string(pi.Status),
	}, nil
}

// ConfirmPayment verifies the intent with Stripe and advances the booking:
// a succeeded deposit moves it to partial, a succeeded balance to
// completed. Confirming an already-applied intent is a no-op.
func (s *PaymentService) ConfirmPayment(req *ConfirmPaymentRequest) (*models.Booking, string, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, "", fmt.Errorf("validation failed: %w", err)
	}

	var booking models.Booking
	if err := s.db.First(&booking, req.BookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", fmt.Errorf("%w: booking %s", commission.ErrNotFound, req.BookingID)
		}
		return nil, "", fmt.Errorf("database error: %w", err)
	}

	var target models.PaymentStatus
	switch req.PaymentIntentID {
	case booking.DepositIntentID:
		target = models.PaymentStatusPartial
	case booking.BalanceIntentID:
		target = models.PaymentStatusCompleted
	default:
		return nil, "", errors.New("payment intent does not belong to this booking")
	}

	pi, err := paymentintent.Get(req.PaymentIntentID, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get payment intent: %w", err)
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, "", fmt.Errorf("payment intent is %s, not succeeded", pi.Status)
	}

	if booking.PaymentStatus == target {
		return &booking, "", nil
	}

	return s.bookings.UpdatePaymentStatus(booking.ID, &UpdatePaymentStatusRequest{PaymentStatus: target})
}

// RefundBooking refunds the collected legs through Stripe and moves the
// booking to refunded. Paid commission is not clawed back.
func (s *PaymentService) RefundBooking(req *RefundBookingRequest) (*models.Booking, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var booking models.Booking
	if err := s.db.First(&booking, req.BookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: booking %s", commission.ErrNotFound, req.BookingID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if booking.PaymentStatus == models.PaymentStatusRefunded {
		return &booking, nil
	}
	if booking.PaymentStatus == models.PaymentStatusPending {
		return nil, errors.New("nothing collected yet; cancel the booking instead")
	}

	for _, intentID := range []string{booking.DepositIntentID, booking.BalanceIntentID} {
		if intentID == "" {
			continue
		}
		pi, err := paymentintent.Get(intentID, nil)
		if err != nil || pi.Status != stripe.PaymentIntentStatusSucceeded {
			continue
		}
		params := &stripe.RefundParams{
			PaymentIntent: stripe.String(intentID),
			Reason:        stripe.String("requested_by_customer"),
		}
		if _, err := refund.New(params); err != nil {
			return nil, fmt.Errorf("failed to refund intent %s: %w", intentID, err)
		}
	}

	// Refund transitions have no coin side effects; the warning is unused.
	refunded, _, err := s.bookings.UpdatePaymentStatus(booking.ID, &UpdatePaymentStatusRequest{PaymentStatus: models.PaymentStatusRefunded})
	return refunded, err
}

func (s *PaymentService) loadBookingFor(bookingID, customerID uuid.UUID) (*models.Booking, error) {
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
	return &booking, nil
}

func (s *PaymentService) newIntent(booking *models.Booking, amount float64, leg string) (*stripe.PaymentIntent, error) {
	currency := s.cfg.Payment.Currency
	if currency == "" {
		currency = "usd"
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(amount * 100)),
		Currency: stripe.String(currency),
	}
	params.AddMetadata("booking_id", booking.ID.String())
	params.AddMetadata("customer_id", booking.CustomerID.String())
	params.AddMetadata("payment_leg", leg)

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}
	return pi, nil
}
