// internal/commission/coins.go
package commission

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tripline/travel-backend/internal/models"
)

// CoinStore is the persistence boundary of the coin ledger.
//
// DebitBalance must be a storage-level conditional update (balance >= amount
// guard in SQL) and return ErrInsufficientBalance when the guard rejects the
// row; a plain read-modify-write would let two concurrent approvals double
// spend the balance.
type CoinStore interface {
	FindRedemption(id uuid.UUID) (*models.CoinRedemption, error)
	Balance(sellerID uuid.UUID) (float64, error)
	FindTransactionByReference(sellerID uuid.UUID, refType models.CoinReferenceType, refID uuid.UUID) (*models.CoinTransaction, error)
	AppendTransaction(txn *models.CoinTransaction) error
	DebitBalance(sellerID uuid.UUID, amount float64) error
	CreditBalance(sellerID uuid.UUID, amount float64) error
	UpdateRedemption(id uuid.UUID, fields map[string]interface{}) error
}

// CoinLedger approves and rejects redemption requests and credits booking
// rewards, keeping the append-only transaction log reconciled with the
// running balance.
type CoinLedger struct {
	store CoinStore
	now   func() time.Time
}

func NewCoinLedger(store CoinStore) *CoinLedger {
	return &CoinLedger{
		store: store,
		now:   time.Now,
	}
}

// Approve debits the seller's balance by the redemption amount and records
// one negative transaction. No clamping and no partial redemption: a
// request exceeding the balance fails with ErrInsufficientBalance and
// mutates nothing. Once the transaction row is written, any later step
// failing surfaces ErrPartialFailure so the log/balance disagreement is
// reported rather than masked.
func (l *CoinLedger) Approve(redemptionID, approverID uuid.UUID) (*models.CoinRedemption, error) {
	redemption, err := l.store.FindRedemption(redemptionID)
	if err != nil {
		return nil, err
	}

	switch redemption.Status {
	case models.RedemptionStatusPending:
		// proceed
	case models.RedemptionStatusApproved:
		// Already applied; do not debit twice.
		return redemption, nil
	default:
		return nil, fmt.Errorf("%w: redemption %s is %s", ErrInvalidState, redemptionID, redemption.Status)
	}

	balanceBefore, err := l.store.Balance(redemption.SellerID)
	if err != nil {
		return nil, err
	}

	balanceAfter := balanceBefore - redemption.CoinAmount
	if balanceAfter < 0 {
		return nil, fmt.Errorf("%w: balance %.2f, requested %.2f", ErrInsufficientBalance, balanceBefore, redemption.CoinAmount)
	}

	txn := &models.CoinTransaction{
		SellerID:      redemption.SellerID,
		Amount:        -redemption.CoinAmount,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceAfter,
		ReferenceType: models.CoinReferenceRedemption,
		ReferenceID:   redemption.ID,
		Description:   "coin redemption payout",
	}
	if err := l.store.AppendTransaction(txn); err != nil {
		return nil, fmt.Errorf("append coin transaction: %w", err)
	}

	if err := l.store.DebitBalance(redemption.SellerID, redemption.CoinAmount); err != nil {
		if errors.Is(err, ErrInsufficientBalance) {
			// A concurrent debit won the balance between our read and the
			// conditional update; the appended row no longer matches.
			return nil, fmt.Errorf("%w: debit rejected after transaction append: %v", ErrPartialFailure, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrPartialFailure, err)
	}

	now := l.now()
	fields := map[string]interface{}{
		"status":      models.RedemptionStatusApproved,
		"approved_at": now,
		"approved_by": approverID,
	}
	if err := l.store.UpdateRedemption(redemption.ID, fields); err != nil {
		return nil, fmt.Errorf("%w: balance debited but redemption not updated: %v", ErrPartialFailure, err)
	}

	redemption.Status = models.RedemptionStatusApproved
	redemption.ApprovedAt = &now
	redemption.ApprovedBy = &approverID
	return redemption, nil
}

// Reject marks a pending redemption rejected. No balance mutation.
func (l *CoinLedger) Reject(redemptionID uuid.UUID, reason string) (*models.CoinRedemption, error) {
	redemption, err := l.store.FindRedemption(redemptionID)
	if err != nil {
		return nil, err
	}

	if redemption.Status != models.RedemptionStatusPending {
		return nil, fmt.Errorf("%w: redemption %s is %s", ErrInvalidState, redemptionID, redemption.Status)
	}

	fields := map[string]interface{}{
		"status":           models.RedemptionStatusRejected,
		"rejection_reason": reason,
	}
	if err := l.store.UpdateRedemption(redemption.ID, fields); err != nil {
		return nil, err
	}

	redemption.Status = models.RedemptionStatusRejected
	redemption.RejectionReason = reason
	return redemption, nil
}

// Award credits earned coins to a seller for a completed booking. Awards
// are idempotent per (seller, booking): a transaction already referencing
// the booking short-circuits without a second credit.
func (l *CoinLedger) Award(sellerID, bookingID uuid.UUID, coins float64, description string) (*models.CoinTransaction, error) {
	if coins < 0 {
		return nil, fmt.Errorf("%w: negative coin award %.2f", ErrInvalidInput, coins)
	}
	if coins == 0 {
		return nil, nil
	}

	if existing, err := l.store.FindTransactionByReference(sellerID, models.CoinReferenceBooking, bookingID); err == nil && existing != nil {
		return existing, nil
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	balanceBefore, err := l.store.Balance(sellerID)
	if err != nil {
		return nil, err
	}

	txn := &models.CoinTransaction{
		SellerID:      sellerID,
		Amount:        coins,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceBefore + coins,
		ReferenceType: models.CoinReferenceBooking,
		ReferenceID:   bookingID,
		Description:   description,
	}
	if err := l.store.AppendTransaction(txn); err != nil {
		return nil, fmt.Errorf("append coin transaction: %w", err)
	}

	if err := l.store.CreditBalance(sellerID, coins); err != nil {
		return nil, fmt.Errorf("%w: coins logged but balance not credited: %v", ErrPartialFailure, err)
	}
	return txn, nil
}
