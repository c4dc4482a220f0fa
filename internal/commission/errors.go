// internal/commission/errors.go
package commission

import "errors"

// Sentinel errors for the commission engine and coin ledger. Services wrap
// them with context via fmt.Errorf("...: %w", err); handlers match with
// errors.Is and map them to API error codes.
var (
	// ErrInvalidInput reports a malformed or out-of-range calculator input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound reports a missing booking, trip, redemption or profile.
	ErrNotFound = errors.New("not found")

	// ErrNoSellerAttached reports a commission operation on a booking that
	// has no seller attribution.
	ErrNoSellerAttached = errors.New("no seller attached to booking")

	// ErrPaymentNotFound reports a mark-paid update that matched zero rows.
	ErrPaymentNotFound = errors.New("commission payment not found")

	// ErrAlreadyExists reports a duplicate-row attempt on the unique
	// (booking_id, payment_type) pair. Callers treat it as "already
	// applied" and reuse the existing row, never as a hard failure.
	ErrAlreadyExists = errors.New("commission payment already exists")

	// ErrInvalidTransition reports a payment-status change outside the
	// transition table.
	ErrInvalidTransition = errors.New("invalid payment status transition")

	// ErrInvalidState reports an operation on a redemption whose status
	// does not permit it.
	ErrInvalidState = errors.New("invalid redemption state")

	// ErrInsufficientBalance reports a redemption that would drive the
	// seller's coin balance negative.
	ErrInsufficientBalance = errors.New("insufficient coin balance")

	// ErrPartialFailure reports a multi-step ledger mutation that succeeded
	// partially. The transaction log and balance may disagree; this is a
	// reconciliation signal, not a retryable error.
	ErrPartialFailure = errors.New("partial ledger mutation failure")
)
