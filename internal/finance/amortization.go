// Package finance holds the pure financial calculations: reducing-balance
// amortization and repayment allocation. Nothing here touches storage or
// carries state between calls.
package finance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/saccotech/sacco-engine/internal/domain"
	"github.com/saccotech/sacco-engine/pkg/utils"
)

// GenerateSchedule produces a reducing-balance repayment schedule of
// termMonths rows from the loan's original terms. A zero monthly rate falls
// back to straight-line principal/termMonths. A non-positive term yields an
// empty schedule.
//
// Output money fields are rounded to 2 decimal places per row; the running
// balance carries the unrounded closing value into the next period. The
// principal portion of a period is capped at the remaining balance so the
// final row closes at exactly zero.
func GenerateSchedule(principal, annualRatePct decimal.Decimal, termMonths int, startDate time.Time) []domain.AmortizationRow {
	if termMonths <= 0 {
		return []domain.AmortizationRow{}
	}

	monthlyRate := utils.MonthlyRate(annualRatePct)
	payment := annuityPayment(principal, monthlyRate, termMonths)

	rows := make([]domain.AmortizationRow, 0, termMonths)
	balance := principal
	for i := 1; i <= termMonths; i++ {
		interest := balance.Mul(monthlyRate)
		principalPart := utils.MinDecimal(payment.Sub(interest), balance)
		closing := balance.Sub(principalPart)
		if closing.IsNegative() {
			closing = decimal.Zero
		}

		rows = append(rows, domain.AmortizationRow{
			Period:         i,
			Date:           utils.PeriodDate(startDate, i),
			OpeningBalance: balance.Round(2),
			Principal:      principalPart.Round(2),
			Interest:       interest.Round(2),
			Payment:        principalPart.Add(interest).Round(2),
			ClosingBalance: closing.Round(2),
		})
		balance = closing
	}
	return rows
}

// annuityPayment is the constant periodic payment:
// P*r*(1+r)^n / ((1+r)^n - 1), or P/n when the rate is zero.
func annuityPayment(principal, monthlyRate decimal.Decimal, termMonths int) decimal.Decimal {
	n := decimal.NewFromInt(int64(termMonths))
	if monthlyRate.IsZero() {
		return principal.Div(n)
	}
	factor := decimal.NewFromInt(1).Add(monthlyRate).Pow(n)
	return principal.Mul(monthlyRate).Mul(factor).Div(factor.Sub(decimal.NewFromInt(1)))
}
