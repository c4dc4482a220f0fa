// internal/commission/engine_test.go
package commission

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripline/travel-backend/internal/models"
)

// fakeLedger is an in-memory Ledger that mimics the storage-level unique
// constraint on (booking_id, payment_type).
type fakeLedger struct {
	rows []models.CommissionPayment

	// failNextInsertWithConflict simulates losing a check-then-create race:
	// the insert reports a unique violation even though the caller saw no
	// row, as a concurrent request inserted one in between.
	failNextInsertWithConflict bool

	// hideRowsOnce makes the next FindPayments return nothing, modeling the
	// read happening before a concurrent insert commits.
	hideRowsOnce bool
}

func (f *fakeLedger) FindPayments(bookingID uuid.UUID) ([]models.CommissionPayment, error) {
	if f.hideRowsOnce {
		f.hideRowsOnce = false
		return nil, nil
	}
	var out []models.CommissionPayment
	for _, r := range f.rows {
		if r.BookingID == bookingID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeLedger) Insert(rows []models.CommissionPayment) ([]models.CommissionPayment, error) {
	if f.failNextInsertWithConflict {
		f.failNextInsertWithConflict = false
		return nil, ErrAlreadyExists
	}
	for _, r := range rows {
		for _, existing := range f.rows {
			if existing.BookingID == r.BookingID && existing.PaymentType == r.PaymentType {
				return nil, ErrAlreadyExists
			}
		}
	}
	var inserted []models.CommissionPayment
	for _, r := range rows {
		r.ID = uuid.New()
		f.rows = append(f.rows, r)
		inserted = append(inserted, r)
	}
	return inserted, nil
}

func (f *fakeLedger) MarkPaid(bookingID uuid.UUID, paymentType models.CommissionPaymentType, paidAt time.Time) (*models.CommissionPayment, error) {
	for i := range f.rows {
		if f.rows[i].BookingID == bookingID && f.rows[i].PaymentType == paymentType {
			f.rows[i].Status = models.CommissionStatusPaid
			t := paidAt
			f.rows[i].PaidAt = &t
			row := f.rows[i]
			return &row, nil
		}
	}
	return nil, fmt.Errorf("%w: booking %s type %s", ErrPaymentNotFound, bookingID, paymentType)
}

func (f *fakeLedger) SumPaid(bookingID uuid.UUID) (float64, error) {
	var sum float64
	for _, r := range f.rows {
		if r.BookingID == bookingID && r.Status == models.CommissionStatusPaid {
			sum += r.Amount
		}
	}
	return sum, nil
}

func (f *fakeLedger) sumNonCancelled(bookingID uuid.UUID) float64 {
	var sum float64
	for _, r := range f.rows {
		if r.BookingID == bookingID && r.Status != models.CommissionStatusCancelled {
			sum += r.Amount
		}
	}
	return sum
}

func newTestBooking(commission float64) *models.Booking {
	sellerID := uuid.New()
	b := &models.Booking{
		CustomerID:       uuid.New(),
		TripScheduleID:   uuid.New(),
		SellerID:         &sellerID,
		Seats:            1,
		PaymentStatus:    models.PaymentStatusPending,
		TotalAmount:      10000,
		CommissionAmount: commission,
	}
	b.ID = uuid.New()
	return b
}

func TestTransitionPendingToPartial(t *testing.T) {
	ledger := &fakeLedger{}
	engine := NewEngine(ledger)
	booking := newTestBooking(1000)

	payments, err := engine.Transition(booking, models.PaymentStatusPartial)
	require.NoError(t, err)
	require.Len(t, payments, 1)

	assert.Equal(t, models.CommissionPaymentPartial, payments[0].PaymentType)
	assert.Equal(t, 500.0, payments[0].Amount)
	assert.Equal(t, models.CommissionStatusPaid, payments[0].Status)
	require.NotNil(t, payments[0].PaidAt)
	assert.Equal(t, *booking.SellerID, payments[0].SellerID)
}

func TestTransitionFullSequenceConservesCommission(t *testing.T) {
	ledger := &fakeLedger{}
	engine := NewEngine(ledger)
	booking := newTestBooking(1000)

	_, err := engine.Transition(booking, models.PaymentStatusPartial)
	require.NoError(t, err)
	booking.PaymentStatus = models.PaymentStatusPartial

	payments, err := engine.Transition(booking, models.PaymentStatusCompleted)
	require.NoError(t, err)
	require.Len(t, payments, 2)

	sum, err := engine.SumPaid(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, sum)
	assert.Equal(t, booking.CommissionAmount, ledger.sumNonCancelled(booking.ID))
	assert.Len(t, ledger.rows, 2)
}

func TestTransitionCompletedBackfillsMissingPartial(t *testing.T) {
	ledger := &fakeLedger{}
	engine := NewEngine(ledger)
	booking := newTestBooking(1000)
	booking.PaymentStatus = models.PaymentStatusPartial

	// No rows exist: the completion transition creates and pays both.
	payments, err := engine.Transition(booking, models.PaymentStatusCompleted)
	require.NoError(t, err)
	require.Len(t, payments, 2)

	sum, err := engine.SumPaid(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, sum)
}

func TestTransitionNoDuplicateRows(t *testing.T) {
	ledger := &fakeLedger{}
	engine := NewEngine(ledger)
	booking := newTestBooking(1000)

	first, err := engine.Transition(booking, models.PaymentStatusPartial)
	require.NoError(t, err)

	// A second identical request must reuse the first call's row.
	second, err := engine.Transition(booking, models.PaymentStatusPartial)
	require.NoError(t, err)

	assert.Len(t, ledger.rows, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, first[0].PaidAt, second[0].PaidAt)
}

func TestTransitionSurvivesInsertRace(t *testing.T) {
	ledger := &fakeLedger{}
	engine := NewEngine(ledger)
	booking := newTestBooking(1000)

	// Seed the row a concurrent request inserted, then make our own read
	// miss it and our insert trip the unique constraint: the engine must
	// resolve the conflict by reusing the winner's row.
	_, err := ledger.Insert([]models.CommissionPayment{{
		BookingID:   booking.ID,
		SellerID:    *booking.SellerID,
		PaymentType: models.CommissionPaymentPartial,
		Amount:      500,
		Status:      models.CommissionStatusPending,
	}})
	require.NoError(t, err)
	ledger.hideRowsOnce = true
	ledger.failNextInsertWithConflict = true

	payments, err := engine.Transition(booking, models.PaymentStatusPartial)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Len(t, ledger.rows, 1)
	assert.Equal(t, models.CommissionStatusPaid, payments[0].Status)
}

func TestTransitionRefundKeepsPaidCommission(t *testing.T) {
	ledger := &fakeLedger{}
	engine := NewEngine(ledger)
	booking := newTestBooking(1000)

	_, err := engine.Transition(booking, models.PaymentStatusPartial)
	require.NoError(t, err)
	booking.PaymentStatus = models.PaymentStatusPartial

	payments, err := engine.Transition(booking, models.PaymentStatusRefunded)
	require.NoError(t, err)
	assert.Empty(t, payments)

	// Seller keeps the first-half commission on refund after partial payment.
	require.Len(t, ledger.rows, 1)
	assert.Equal(t, models.CommissionStatusPaid, ledger.rows[0].Status)
	assert.Equal(t, 500.0, ledger.rows[0].Amount)
}

func TestTransitionWithoutSellerHasNoSideEffects(t *testing.T) {
	ledger := &fakeLedger{}
	engine := NewEngine(ledger)
	booking := newTestBooking(1000)
	booking.SellerID = nil

	payments, err := engine.Transition(booking, models.PaymentStatusPartial)
	require.NoError(t, err)
	assert.Empty(t, payments)
	assert.Empty(t, ledger.rows)
}

func TestTransitionIllegalMoves(t *testing.T) {
	engine := NewEngine(&fakeLedger{})

	booking := newTestBooking(1000)
	_, err := engine.Transition(booking, models.PaymentStatusCompleted)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	booking.PaymentStatus = models.PaymentStatusRefunded
	_, err = engine.Transition(booking, models.PaymentStatusPartial)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	booking.PaymentStatus = models.PaymentStatusPending
	_, err = engine.Transition(booking, models.PaymentStatus("settled"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMarkPaidBackfillsBothHalves(t *testing.T) {
	ledger := &fakeLedger{}
	engine := NewEngine(ledger)
	booking := newTestBooking(1000)

	// Admin marks the final half paid on a booking with no rows yet: both
	// halves are synthesized, only the requested one is paid.
	row, err := engine.MarkPaid(booking, models.CommissionPaymentFinal)
	require.NoError(t, err)

	assert.Equal(t, models.CommissionPaymentFinal, row.PaymentType)
	assert.Equal(t, models.CommissionStatusPaid, row.Status)
	assert.Equal(t, 500.0, row.Amount)

	require.Len(t, ledger.rows, 2)
	var partial *models.CommissionPayment
	for i := range ledger.rows {
		if ledger.rows[i].PaymentType == models.CommissionPaymentPartial {
			partial = &ledger.rows[i]
		}
	}
	require.NotNil(t, partial)
	assert.Equal(t, models.CommissionStatusPending, partial.Status)
	assert.Equal(t, 500.0, partial.Amount)

	sum, err := engine.SumPaid(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, 500.0, sum)
}

func TestMarkPaidFailsWithoutSeller(t *testing.T) {
	engine := NewEngine(&fakeLedger{})
	booking := newTestBooking(1000)
	booking.SellerID = nil

	_, err := engine.MarkPaid(booking, models.CommissionPaymentPartial)
	assert.ErrorIs(t, err, ErrNoSellerAttached)
}

func TestMarkPaidUnknownType(t *testing.T) {
	engine := NewEngine(&fakeLedger{})
	booking := newTestBooking(1000)

	_, err := engine.MarkPaid(booking, models.CommissionPaymentType("deposit_commission"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestOddCommissionTotalsNeverOverpay(t *testing.T) {
	totals := []float64{1000.01, 333.33, 0.01, 99.99}
	for _, total := range totals {
		ledger := &fakeLedger{}
		engine := NewEngine(ledger)
		booking := newTestBooking(total)

		_, err := engine.Transition(booking, models.PaymentStatusPartial)
		require.NoError(t, err)
		booking.PaymentStatus = models.PaymentStatusPartial
		_, err = engine.Transition(booking, models.PaymentStatusCompleted)
		require.NoError(t, err)

		sum, err := engine.SumPaid(booking.ID)
		require.NoError(t, err)
		assert.LessOrEqual(t, sum, booking.CommissionAmount, "total %.2f", total)
		assert.Equal(t, RoundCents(booking.CommissionAmount), RoundCents(sum))
	}
}
