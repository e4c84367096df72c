package core

import "time"

// Calendar arithmetic shared by the budget aggregator and the goal
// funding math.

// NextPeriod returns the month/year that follows the given one,
// rolling December into January of the next year.
func NextPeriod(month, year int) (int, int) {
	if month == 12 {
		return 1, year + 1
	}
	return month + 1, year
}

// MonthBounds returns the first day of the month and the first day of
// the following month, for half-open date-range queries.
func MonthBounds(month, year int) (Date, Date) {
	start := NewDate(year, month, 1)
	nm, ny := NextPeriod(month, year)
	return start, NewDate(ny, nm, 1)
}

// MonthsBetween counts whole calendar months from a to b. Negative
// when b precedes a.
func MonthsBetween(a, b Date) int {
	if b.Before(a.Time) {
		return -MonthsBetween(b, a)
	}
	months := (b.Year()-a.Year())*12 + int(b.Time.Month()) - int(a.Time.Month())
	if b.Day() < a.Day() {
		months--
	}
	return months
}

// DaysBetween counts calendar days from a to b. Negative when b
// precedes a.
func DaysBetween(a, b Date) int {
	return int(b.Time.Sub(a.Time) / (24 * time.Hour))
}
