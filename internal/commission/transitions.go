// internal/commission/transitions.go
package commission

import (
	"github.com/tripline/travel-backend/internal/models"
)

// transitionTable encodes the legal payment-status moves. The forward path
// is pending -> partial -> completed; refunded is reachable from any
// non-terminal state and is itself terminal.
var transitionTable = map[models.PaymentStatus][]models.PaymentStatus{
	models.PaymentStatusPending:   {models.PaymentStatusPartial, models.PaymentStatusRefunded},
	models.PaymentStatusPartial:   {models.PaymentStatusCompleted, models.PaymentStatusRefunded},
	models.PaymentStatusCompleted: {models.PaymentStatusRefunded},
	models.PaymentStatusRefunded:  nil,
}

// CanTransition reports whether moving a booking's payment status from one
// state to another is legal.
func CanTransition(from, to models.PaymentStatus) bool {
	for _, next := range transitionTable[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidPaymentStatus reports whether s is a member of the closed enum.
func ValidPaymentStatus(s models.PaymentStatus) bool {
	switch s {
	case models.PaymentStatusPending, models.PaymentStatusPartial,
		models.PaymentStatusCompleted, models.PaymentStatusRefunded:
		return true
	}
	return false
}

// ValidPaymentType reports whether t is one of the two commission halves.
func ValidPaymentType(t models.CommissionPaymentType) bool {
	return t == models.CommissionPaymentPartial || t == models.CommissionPaymentFinal
}
