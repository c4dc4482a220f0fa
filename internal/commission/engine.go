// internal/commission/engine.go
package commission

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tripline/travel-backend/internal/models"
)

// Ledger is the persistence boundary of the commission engine. The gorm
// implementation lives in the services layer; tests supply fakes.
//
// Insert must map a storage-level unique violation on
// (booking_id, payment_type) to ErrAlreadyExists — the constraint is the
// authoritative duplicate guard, the engine's existence check is only a
// fast path.
type Ledger interface {
	FindPayments(bookingID uuid.UUID) ([]models.CommissionPayment, error)
	Insert(rows []models.CommissionPayment) ([]models.CommissionPayment, error)
	MarkPaid(bookingID uuid.UUID, paymentType models.CommissionPaymentType, paidAt time.Time) (*models.CommissionPayment, error)
	SumPaid(bookingID uuid.UUID) (float64, error)
}

// Engine enforces the payment-status transition table and triggers the
// commission side effects of each transition exactly once per booking.
// All commission writes go through the Ledger.
type Engine struct {
	ledger Ledger
	now    func() time.Time
}

func NewEngine(ledger Ledger) *Engine {
	return &Engine{
		ledger: ledger,
		now:    time.Now,
	}
}

// Transition applies a payment-status change to the booking and performs
// the commission side effects the transition table prescribes. The booking
// row itself is updated by the caller; the returned payments are the ledger
// rows the transition touched.
func (e *Engine) Transition(booking *models.Booking, to models.PaymentStatus) ([]models.CommissionPayment, error) {
	if !ValidPaymentStatus(to) {
		return nil, fmt.Errorf("%w: unknown payment status %q", ErrInvalidInput, to)
	}
	if !CanTransition(booking.PaymentStatus, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, booking.PaymentStatus, to)
	}

	// Refunds never claw back commission: an already-paid first half stays
	// paid when the booking is refunded after a partial payment.
	if to == models.PaymentStatusRefunded {
		return nil, nil
	}

	// Bookings without a seller move through the same states with no
	// commission side effects.
	if !booking.HasSeller() {
		return nil, nil
	}

	switch to {
	case models.PaymentStatusPartial:
		row, err := e.ensurePaid(booking, models.CommissionPaymentPartial)
		if err != nil {
			return nil, err
		}
		return []models.CommissionPayment{*row}, nil

	case models.PaymentStatusCompleted:
		// The partial row should exist from the prior transition; create it
		// if missing so a direct pending-seeded booking still reconciles.
		partial, err := e.ensurePaid(booking, models.CommissionPaymentPartial)
		if err != nil {
			return nil, err
		}
		final, err := e.ensurePaid(booking, models.CommissionPaymentFinal)
		if err != nil {
			return nil, err
		}
		return []models.CommissionPayment{*partial, *final}, nil
	}

	return nil, nil
}

// MarkPaid marks one commission half paid for the booking, synthesizing
// both pending halves first when the booking has no ledger rows yet.
// Commission rows are not always created at booking time, so the admin
// action lazily materializes them from the booking's precomputed total.
func (e *Engine) MarkPaid(booking *models.Booking, paymentType models.CommissionPaymentType) (*models.CommissionPayment, error) {
	if !ValidPaymentType(paymentType) {
		return nil, fmt.Errorf("%w: unknown payment type %q", ErrInvalidInput, paymentType)
	}
	if !booking.HasSeller() {
		return nil, fmt.Errorf("%w: booking %s", ErrNoSellerAttached, booking.ID)
	}

	existing, err := e.ledger.FindPayments(booking.ID)
	if err != nil {
		return nil, err
	}
	if len(existing) == 0 {
		if err := e.backfill(booking); err != nil {
			return nil, err
		}
	}

	row, err := e.ledger.MarkPaid(booking.ID, paymentType, e.now())
	if err != nil {
		return nil, err
	}
	return row, nil
}

// SumPaid returns the total of paid commission rows for reconciliation.
func (e *Engine) SumPaid(bookingID uuid.UUID) (float64, error) {
	return e.ledger.SumPaid(bookingID)
}

// ensurePaid returns the ledger row for (booking, paymentType), creating it
// when absent, and marks it paid unless it already is. An existing paid row
// is returned untouched so its paid_at survives repeated transitions.
func (e *Engine) ensurePaid(booking *models.Booking, paymentType models.CommissionPaymentType) (*models.CommissionPayment, error) {
	row, err := e.getOrCreate(booking, paymentType)
	if err != nil {
		return nil, err
	}
	if row.Status == models.CommissionStatusPaid {
		return row, nil
	}

	paid, err := e.ledger.MarkPaid(booking.ID, paymentType, e.now())
	if err != nil {
		return nil, err
	}
	return paid, nil
}

// getOrCreate implements the idempotent check-then-create: an existing row
// for the (booking, payment_type) pair is reused; a racing insert that
// trips the unique constraint is resolved by re-reading the winner's row.
func (e *Engine) getOrCreate(booking *models.Booking, paymentType models.CommissionPaymentType) (*models.CommissionPayment, error) {
	rows, err := e.ledger.FindPayments(booking.ID)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].PaymentType == paymentType {
			return &rows[i], nil
		}
	}

	inserted, err := e.ledger.Insert([]models.CommissionPayment{e.buildRow(booking, paymentType)})
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return e.findExisting(booking.ID, paymentType)
		}
		return nil, err
	}
	return &inserted[0], nil
}

// backfill synthesizes both pending halves from the booking's precomputed
// commission total. A concurrent backfill losing the insert race is fine;
// the rows exist either way.
func (e *Engine) backfill(booking *models.Booking) error {
	rows := []models.CommissionPayment{
		e.buildRow(booking, models.CommissionPaymentPartial),
		e.buildRow(booking, models.CommissionPaymentFinal),
	}
	if _, err := e.ledger.Insert(rows); err != nil && !errors.Is(err, ErrAlreadyExists) {
		return err
	}
	return nil
}

func (e *Engine) buildRow(booking *models.Booking, paymentType models.CommissionPaymentType) models.CommissionPayment {
	first, second := SplitHalves(booking.CommissionAmount)
	amount := first
	if paymentType == models.CommissionPaymentFinal {
		amount = second
	}
	return models.CommissionPayment{
		BookingID:   booking.ID,
		SellerID:    *booking.SellerID,
		PaymentType: paymentType,
		Amount:      amount,
		Percentage:  50,
		Status:      models.CommissionStatusPending,
	}
}

func (e *Engine) findExisting(bookingID uuid.UUID, paymentType models.CommissionPaymentType) (*models.CommissionPayment, error) {
	rows, err := e.ledger.FindPayments(bookingID)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].PaymentType == paymentType {
			return &rows[i], nil
		}
	}
	return nil, fmt.Errorf("%w: booking %s type %s", ErrPaymentNotFound, bookingID, paymentType)
}
