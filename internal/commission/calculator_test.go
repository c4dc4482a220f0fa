// internal/commission/calculator_test.go
package commission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripline/travel-backend/internal/models"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name           string
		price          float64
		commissionType models.CommissionType
		value          float64
		expected       float64
		expectError    bool
	}{
		{
			name:           "percentage commission",
			price:          10000,
			commissionType: models.CommissionTypePercentage,
			value:          10,
			expected:       1000,
		},
		{
			name:           "percentage rounds to cents",
			price:          999.99,
			commissionType: models.CommissionTypePercentage,
			value:          7.5,
			expected:       75.00,
		},
		{
			name:           "zero percentage",
			price:          5000,
			commissionType: models.CommissionTypePercentage,
			value:          0,
			expected:       0,
		},
		{
			name:           "full percentage",
			price:          250,
			commissionType: models.CommissionTypePercentage,
			value:          100,
			expected:       250,
		},
		{
			name:           "fixed commission ignores price",
			price:          10000,
			commissionType: models.CommissionTypeFixed,
			value:          750,
			expected:       750,
		},
		{
			name:           "fixed commission on zero price",
			price:          0,
			commissionType: models.CommissionTypeFixed,
			value:          50,
			expected:       50,
		},
		{
			name:           "negative price",
			price:          -1,
			commissionType: models.CommissionTypePercentage,
			value:          10,
			expectError:    true,
		},
		{
			name:           "negative value",
			price:          100,
			commissionType: models.CommissionTypeFixed,
			value:          -5,
			expectError:    true,
		},
		{
			name:           "percentage above 100",
			price:          100,
			commissionType: models.CommissionTypePercentage,
			value:          101,
			expectError:    true,
		},
		{
			name:           "unknown commission type",
			price:          100,
			commissionType: models.CommissionType("bonus"),
			value:          10,
			expectError:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := Calculate(tt.price, tt.commissionType, tt.value)
			if tt.expectError {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, amount)
		})
	}
}

func TestSplitHalves(t *testing.T) {
	tests := []struct {
		name   string
		total  float64
		first  float64
		second float64
	}{
		{name: "even total", total: 1000, first: 500, second: 500},
		{name: "odd cents", total: 1000.01, first: 500.01, second: 500.00},
		{name: "single cent", total: 0.01, first: 0.01, second: 0.00},
		{name: "zero", total: 0, first: 0, second: 0},
		{name: "uneven total", total: 333.33, first: 166.67, second: 166.66},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, second := SplitHalves(tt.total)
			assert.Equal(t, tt.first, first)
			assert.Equal(t, tt.second, second)

			// The halves must never sum to more than the total.
			assert.Equal(t, RoundCents(tt.total), RoundCents(first+second))
		})
	}
}

func TestCanTransition(t *testing.T) {
	allowed := []struct {
		from, to models.PaymentStatus
	}{
		{models.PaymentStatusPending, models.PaymentStatusPartial},
		{models.PaymentStatusPending, models.PaymentStatusRefunded},
		{models.PaymentStatusPartial, models.PaymentStatusCompleted},
		{models.PaymentStatusPartial, models.PaymentStatusRefunded},
		{models.PaymentStatusCompleted, models.PaymentStatusRefunded},
	}
	for _, tr := range allowed {
		assert.True(t, CanTransition(tr.from, tr.to), "%s -> %s should be legal", tr.from, tr.to)
	}

	// Everything else in the enum product is illegal, refunded is terminal.
	states := []models.PaymentStatus{
		models.PaymentStatusPending, models.PaymentStatusPartial,
		models.PaymentStatusCompleted, models.PaymentStatusRefunded,
	}
	legal := func(from, to models.PaymentStatus) bool {
		for _, tr := range allowed {
			if tr.from == from && tr.to == to {
				return true
			}
		}
		return false
	}
	for _, from := range states {
		for _, to := range states {
			if !legal(from, to) {
				assert.False(t, CanTransition(from, to), "%s -> %s should be illegal", from, to)
			}
		}
	}
}
