package finance

import (
	"time"

	"gitlab.com/yelinaung/finflow/internal/models"
)

// Clock supplies the current instant. Services take one so tests can pin time.
type Clock func() time.Time

// Window is an inclusive range of calendar dates.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether the calendar date of t falls inside w.
func (w Window) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(w.Start) && !d.After(w.End)
}

// Day strips the clock from t, keeping the calendar date as seen in t's own
// location, and returns it at midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts whole calendar days from a to b. It is negative when b
// precedes a.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

// CurrentWindow returns the period window containing now. Weeks run Monday
// to Sunday. Unknown periods are treated as monthly.
func CurrentWindow(period models.BudgetPeriod, now time.Time) Window {
	today := Day(now)

	switch period {
	case models.PeriodWeekly:
		offset := (int(today.Weekday()) + 6) % 7
		start := today.AddDate(0, 0, -offset)
		return Window{Start: start, End: start.AddDate(0, 0, 6)}
	case models.PeriodYearly:
		start := time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return Window{Start: start, End: start.AddDate(1, 0, -1)}
	default:
		return MonthWindow(today)
	}
}

// MonthWindow returns the calendar month containing t.
func MonthWindow(t time.Time) Window {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Window{Start: start, End: start.AddDate(0, 1, -1)}
}
