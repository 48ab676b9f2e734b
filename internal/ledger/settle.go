// Package ledger holds the pure order-ledger arithmetic and the order state
// machine. Nothing in this package touches the database; the transaction
// engine in internal/services applies these results atomically.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/smartsupply/delivery-app/internal/models"
)

// Settlement is the derived financial state of an order after a payment has
// been applied against its total.
type Settlement struct {
	PaymentStatus string
	Receivable    decimal.Decimal // remainder the customer still owes
	Payable       decimal.Decimal // remainder we owe the customer
}

// Settle classifies a payment against a total. All comparisons are exact
// decimal comparisons; an amount one paisa off PAID lands in PARTIAL or
// OVERPAID, never in PAID.
func Settle(total, paid decimal.Decimal) Settlement {
	remaining := total.Sub(paid)
	s := Settlement{PaymentStatus: classify(total, paid)}
	switch {
	case remaining.Sign() > 0:
		s.Receivable = remaining
	case remaining.Sign() < 0:
		s.Payable = remaining.Neg()
	}
	return s
}

func classify(total, paid decimal.Decimal) string {
	switch {
	case paid.IsZero():
		return models.PaymentNotPaid
	case paid.Sign() < 0:
		return models.PaymentRefund
	case paid.LessThan(total):
		return models.PaymentPartial
	case paid.Equal(total):
		return models.PaymentPaid
	default:
		return models.PaymentOverpaid
	}
}

// SettleBalance is the clear-bill variant: the classification runs against
// the magnitude of the outstanding balance, with the sign tracked
// separately. When the balance is a payable (negative) the paid amount is
// negated before it is subtracted from the balance, so paying off what we
// owe moves the balance toward zero.
//
// It returns the settlement, the sign-adjusted paid amount, and the
// resulting customer balance.
func SettleBalance(balance, paid decimal.Decimal) (Settlement, decimal.Decimal, decimal.Decimal) {
	basis := balance.Abs()
	adjusted := paid
	if balance.Sign() < 0 {
		adjusted = paid.Neg()
	}
	newBalance := balance.Sub(adjusted)
	s := Settlement{PaymentStatus: classify(basis, paid)}
	switch {
	case newBalance.Sign() > 0:
		s.Receivable = newBalance
	case newBalance.Sign() < 0:
		s.Payable = newBalance.Neg()
	}
	return s, adjusted, newBalance
}

// OrderAmount computes an order's own charge from its bottle count and unit
// price.
func OrderAmount(numberOfBottles int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(numberOfBottles)))
}
