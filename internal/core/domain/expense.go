package domain

import "github.com/shopspring/decimal"

// ExpenseStatus is the payoff state of an Expense.
type ExpenseStatus string

const (
	ExpenseStatusUnpaid  ExpenseStatus = "Unpaid"
	ExpenseStatusPartial ExpenseStatus = "Partial"
	ExpenseStatusPaid    ExpenseStatus = "Paid"
)

// Epsilon absorbs cent-level rounding when comparing balances.
var Epsilon = decimal.NewFromFloat(0.01)

// ExpenseStatusFor derives the payoff status from the remaining balance and
// the original total: Paid when the balance is within Epsilon of zero,
// Unpaid when it is within Epsilon of the full total, Partial in between.
func ExpenseStatusFor(balance, total decimal.Decimal) ExpenseStatus {
	switch {
	case balance.LessThanOrEqual(Epsilon):
		return ExpenseStatusPaid
	case balance.GreaterThanOrEqual(total.Sub(Epsilon)):
		return ExpenseStatusUnpaid
	default:
		return ExpenseStatusPartial
	}
}
