package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateOnly strips the time-of-day component, keeping the location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	// day 0 of the next month is the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DueDateInMonth places a rent due day inside a month, clamping to the last
// valid day when the configured day exceeds the month's length (day 31 in
// February lands on Feb 28/29).
func DueDateInMonth(year int, month time.Month, dueDay int) time.Time {
	if last := DaysInMonth(year, month); dueDay > last {
		dueDay = last
	}
	return time.Date(year, month, dueDay, 0, 0, 0, 0, time.UTC)
}

// SameMonth reports whether two dates fall in the same calendar month.
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// GraceEnd returns the last day a payment can arrive before an entry becomes
// fee-eligible.
func GraceEnd(dueDate time.Time, gracePeriodDays int) time.Time {
	return dueDate.AddDate(0, 0, gracePeriodDays)
}

// ToCents converts a decimal dollar amount to integer cents for the processor.
func ToCents(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// FromCents converts processor cents back to a decimal dollar amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100))
}
