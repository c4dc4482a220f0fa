// internal/commission/calculator.go
package commission

import (
	"fmt"
	"math"

	"github.com/tripline/travel-backend/internal/models"
)

// Calculate computes the commission owed for one booking seat from the
// trip's pricing rule. Percentage commissions are value% of the price;
// fixed commissions are the value itself, independent of price. The result
// is rounded to cents. Pure, no side effects.
func Calculate(pricePerPerson float64, commissionType models.CommissionType, commissionValue float64) (float64, error) {
	if pricePerPerson < 0 {
		return 0, fmt.Errorf("%w: negative price %.2f", ErrInvalidInput, pricePerPerson)
	}
	if commissionValue < 0 {
		return 0, fmt.Errorf("%w: negative commission value %.2f", ErrInvalidInput, commissionValue)
	}

	switch commissionType {
	case models.CommissionTypePercentage:
		if commissionValue > 100 {
			return 0, fmt.Errorf("%w: percentage %.2f exceeds 100", ErrInvalidInput, commissionValue)
		}
		return RoundCents(pricePerPerson * commissionValue / 100), nil
	case models.CommissionTypeFixed:
		return RoundCents(commissionValue), nil
	default:
		return 0, fmt.Errorf("%w: unknown commission type %q", ErrInvalidInput, commissionType)
	}
}

// SplitHalves derives the two commission halves from the total computed
// once at booking creation. The second half is the remainder, so the halves
// always sum exactly to the total regardless of rounding.
func SplitHalves(total float64) (first, second float64) {
	first = RoundCents(total / 2)
	second = RoundCents(total - first)
	return first, second
}

// RoundCents rounds a currency amount to two decimal places.
func RoundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}
