// internal/commission/coins_test.go
package commission

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripline/travel-backend/internal/models"
)

// fakeCoinStore keeps balances and the append-only transaction log in
// memory, with the same conditional-debit semantics as the SQL store.
type fakeCoinStore struct {
	balances    map[uuid.UUID]float64
	txns        []models.CoinTransaction
	redemptions map[uuid.UUID]*models.CoinRedemption

	failDebit  bool
	failUpdate bool
}

func newFakeCoinStore() *fakeCoinStore {
	return &fakeCoinStore{
		balances:    make(map[uuid.UUID]float64),
		redemptions: make(map[uuid.UUID]*models.CoinRedemption),
	}
}

func (f *fakeCoinStore) FindRedemption(id uuid.UUID) (*models.CoinRedemption, error) {
	r, ok := f.redemptions[id]
	if !ok {
		return nil, fmt.Errorf("%w: redemption %s", ErrNotFound, id)
	}
	copied := *r
	return &copied, nil
}

func (f *fakeCoinStore) Balance(sellerID uuid.UUID) (float64, error) {
	return f.balances[sellerID], nil
}

func (f *fakeCoinStore) FindTransactionByReference(sellerID uuid.UUID, refType models.CoinReferenceType, refID uuid.UUID) (*models.CoinTransaction, error) {
	for i := range f.txns {
		if f.txns[i].SellerID == sellerID && f.txns[i].ReferenceType == refType && f.txns[i].ReferenceID == refID {
			return &f.txns[i], nil
		}
	}
	return nil, fmt.Errorf("%w: no transaction for %s/%s", ErrNotFound, refType, refID)
}

func (f *fakeCoinStore) AppendTransaction(txn *models.CoinTransaction) error {
	txn.ID = uuid.New()
	f.txns = append(f.txns, *txn)
	return nil
}

func (f *fakeCoinStore) DebitBalance(sellerID uuid.UUID, amount float64) error {
	if f.failDebit {
		return errors.New("connection reset")
	}
	if f.balances[sellerID] < amount {
		return fmt.Errorf("%w: conditional update matched no row", ErrInsufficientBalance)
	}
	f.balances[sellerID] -= amount
	return nil
}

func (f *fakeCoinStore) CreditBalance(sellerID uuid.UUID, amount float64) error {
	f.balances[sellerID] += amount
	return nil
}

func (f *fakeCoinStore) UpdateRedemption(id uuid.UUID, fields map[string]interface{}) error {
	if f.failUpdate {
		return errors.New("connection reset")
	}
	r, ok := f.redemptions[id]
	if !ok {
		return fmt.Errorf("%w: redemption %s", ErrNotFound, id)
	}
	if status, ok := fields["status"].(models.RedemptionStatus); ok {
		r.Status = status
	}
	if reason, ok := fields["rejection_reason"].(string); ok {
		r.RejectionReason = reason
	}
	return nil
}

func (f *fakeCoinStore) addRedemption(sellerID uuid.UUID, amount float64) *models.CoinRedemption {
	r := &models.CoinRedemption{
		SellerID:     sellerID,
		CoinAmount:   amount,
		PayoutMethod: "bank_transfer",
		Status:       models.RedemptionStatusPending,
	}
	r.ID = uuid.New()
	f.redemptions[r.ID] = r
	return r
}

func TestApproveRedemption(t *testing.T) {
	store := newFakeCoinStore()
	ledger := NewCoinLedger(store)
	sellerID := uuid.New()
	approverID := uuid.New()
	store.balances[sellerID] = 1000
	redemption := store.addRedemption(sellerID, 400)

	approved, err := ledger.Approve(redemption.ID, approverID)
	require.NoError(t, err)

	assert.Equal(t, models.RedemptionStatusApproved, approved.Status)
	assert.Equal(t, approverID, *approved.ApprovedBy)
	assert.NotNil(t, approved.ApprovedAt)
	assert.Equal(t, 600.0, store.balances[sellerID])

	require.Len(t, store.txns, 1)
	txn := store.txns[0]
	assert.Equal(t, -400.0, txn.Amount)
	assert.Equal(t, 1000.0, txn.BalanceBefore)
	assert.Equal(t, 600.0, txn.BalanceAfter)
	assert.Equal(t, models.CoinReferenceRedemption, txn.ReferenceType)
	assert.Equal(t, redemption.ID, txn.ReferenceID)
}

func TestApproveInsufficientBalance(t *testing.T) {
	store := newFakeCoinStore()
	ledger := NewCoinLedger(store)
	sellerID := uuid.New()
	store.balances[sellerID] = 1000
	redemption := store.addRedemption(sellerID, 1500)

	_, err := ledger.Approve(redemption.ID, uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// No mutation of any kind: balance, log and redemption are untouched.
	assert.Equal(t, 1000.0, store.balances[sellerID])
	assert.Empty(t, store.txns)
	assert.Equal(t, models.RedemptionStatusPending, store.redemptions[redemption.ID].Status)
}

func TestApproveMissingRedemption(t *testing.T) {
	ledger := NewCoinLedger(newFakeCoinStore())
	_, err := ledger.Approve(uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApproveAlreadyApprovedIsIdempotent(t *testing.T) {
	store := newFakeCoinStore()
	ledger := NewCoinLedger(store)
	sellerID := uuid.New()
	store.balances[sellerID] = 1000
	redemption := store.addRedemption(sellerID, 400)

	_, err := ledger.Approve(redemption.ID, uuid.New())
	require.NoError(t, err)

	// A repeated approval must not debit a second time.
	again, err := ledger.Approve(redemption.ID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, models.RedemptionStatusApproved, again.Status)
	assert.Equal(t, 600.0, store.balances[sellerID])
	assert.Len(t, store.txns, 1)
}

func TestApproveRejectedRedemptionFails(t *testing.T) {
	store := newFakeCoinStore()
	ledger := NewCoinLedger(store)
	sellerID := uuid.New()
	store.balances[sellerID] = 1000
	redemption := store.addRedemption(sellerID, 400)
	store.redemptions[redemption.ID].Status = models.RedemptionStatusRejected

	_, err := ledger.Approve(redemption.ID, uuid.New())
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Empty(t, store.txns)
}

func TestApprovePartialFailureIsSurfaced(t *testing.T) {
	store := newFakeCoinStore()
	ledger := NewCoinLedger(store)
	sellerID := uuid.New()
	store.balances[sellerID] = 1000
	redemption := store.addRedemption(sellerID, 400)
	store.failDebit = true

	_, err := ledger.Approve(redemption.ID, uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPartialFailure)

	// The appended transaction and the undebited balance now disagree;
	// the error must say so rather than mask it.
	assert.Len(t, store.txns, 1)
	assert.Equal(t, 1000.0, store.balances[sellerID])
}

func TestApproveUpdateFailureIsPartialFailure(t *testing.T) {
	store := newFakeCoinStore()
	ledger := NewCoinLedger(store)
	sellerID := uuid.New()
	store.balances[sellerID] = 1000
	redemption := store.addRedemption(sellerID, 400)
	store.failUpdate = true

	_, err := ledger.Approve(redemption.ID, uuid.New())
	assert.ErrorIs(t, err, ErrPartialFailure)
}

func TestRejectRedemption(t *testing.T) {
	store := newFakeCoinStore()
	ledger := NewCoinLedger(store)
	sellerID := uuid.New()
	store.balances[sellerID] = 1000
	redemption := store.addRedemption(sellerID, 400)

	rejected, err := ledger.Reject(redemption.ID, "payout details unverifiable")
	require.NoError(t, err)

	assert.Equal(t, models.RedemptionStatusRejected, rejected.Status)
	assert.Equal(t, "payout details unverifiable", rejected.RejectionReason)
	assert.Equal(t, 1000.0, store.balances[sellerID])
	assert.Empty(t, store.txns)
}

func TestRejectProcessedRedemptionFails(t *testing.T) {
	store := newFakeCoinStore()
	ledger := NewCoinLedger(store)
	sellerID := uuid.New()
	store.balances[sellerID] = 1000
	redemption := store.addRedemption(sellerID, 400)
	_, err := ledger.Approve(redemption.ID, uuid.New())
	require.NoError(t, err)

	_, err = ledger.Reject(redemption.ID, "too late")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestAwardCreditsBalanceAndReconciles(t *testing.T) {
	store := newFakeCoinStore()
	ledger := NewCoinLedger(store)
	sellerID := uuid.New()
	bookingID := uuid.New()
	store.balances[sellerID] = 250

	txn, err := ledger.Award(sellerID, bookingID, 120, "booking completion reward")
	require.NoError(t, err)

	assert.Equal(t, 120.0, txn.Amount)
	assert.Equal(t, 250.0, txn.BalanceBefore)
	assert.Equal(t, 370.0, txn.BalanceAfter)
	assert.Equal(t, 370.0, store.balances[sellerID])

	// Every transaction reconciles and the balance tracks the latest row.
	for _, logged := range store.txns {
		assert.Equal(t, logged.BalanceAfter, logged.BalanceBefore+logged.Amount)
	}
	assert.Equal(t, store.txns[len(store.txns)-1].BalanceAfter, store.balances[sellerID])
}

func TestAwardIsIdempotentPerBooking(t *testing.T) {
	store := newFakeCoinStore()
	ledger := NewCoinLedger(store)
	sellerID := uuid.New()
	bookingID := uuid.New()

	first, err := ledger.Award(sellerID, bookingID, 50, "booking completion reward")
	require.NoError(t, err)
	second, err := ledger.Award(sellerID, bookingID, 50, "booking completion reward")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, store.txns, 1)
	assert.Equal(t, 50.0, store.balances[sellerID])
}

func TestAwardRejectsNegativeAndSkipsZero(t *testing.T) {
	ledger := NewCoinLedger(newFakeCoinStore())

	_, err := ledger.Award(uuid.New(), uuid.New(), -1, "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	txn, err := ledger.Award(uuid.New(), uuid.New(), 0, "")
	require.NoError(t, err)
	assert.Nil(t, txn)
}
