package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AmortizationRow is one period of a reducing-balance repayment schedule.
// Rows are derived from the loan's original terms on every request and are
// never persisted.
type AmortizationRow struct {
	Period         int             `json:"period"`
	Date           time.Time       `json:"date"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Principal      decimal.Decimal `json:"principal"`
	Interest       decimal.Decimal `json:"interest"`
	Payment        decimal.Decimal `json:"payment"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
}
