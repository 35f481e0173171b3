package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	hundred    = decimal.NewFromInt(100)
	daysInYear = decimal.NewFromInt(365)
)

// MonthlyRate converts a percent-per-annum rate to a monthly fraction.
// 12% p.a. -> 0.01 per month.
func MonthlyRate(annualRatePct decimal.Decimal) decimal.Decimal {
	return annualRatePct.Div(hundred).Div(decimal.NewFromInt(12))
}

// DailyRate converts a percent-per-annum rate to a daily fraction using a
// 365-day year.
func DailyRate(annualRatePct decimal.Decimal) decimal.Decimal {
	return annualRatePct.Div(hundred).Div(daysInYear)
}

// PeriodDate returns the due date for a 1-indexed monthly period.
func PeriodDate(startDate time.Time, period int) time.Time {
	return startDate.AddDate(0, period, 0)
}

// MinDecimal returns the smaller of a and b.
func MinDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// MonthsSince returns the number of whole 30-day months between t and now.
func MonthsSince(t time.Time, now time.Time) int {
	if now.Before(t) {
		return 0
	}
	days := int(now.Sub(t).Hours() / 24)
	return days / 30
}

// SameDay reports whether two times fall on the same UTC calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
