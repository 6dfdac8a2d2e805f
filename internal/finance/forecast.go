package finance

import (
	"iter"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// TrailingExpenseDays is the fixed divisor of the average daily expense.
	TrailingExpenseDays = 30
	// ProjectionDays is the length of the forecast projection.
	ProjectionDays = 7
	// SafeDaysSentinel means spending is zero, so the balance is not at risk.
	SafeDaysSentinel = 999
)

var trailingDivisor = decimal.NewFromInt(TrailingExpenseDays)

// ForecastInput is the ledger data a forecast needs.
type ForecastInput struct {
	// Lifetime sums every transaction of the user regardless of date.
	Lifetime Totals
	// TrailingExpense sums the expenses dated within the trailing window
	// returned by TrailingWindow.
	TrailingExpense decimal.Decimal
}

// ProjectionPoint is the projected balance at the end of one future day.
type ProjectionPoint struct {
	Date    time.Time
	Balance decimal.Decimal
}

// Forecast is a short-range cash-flow outlook.
type Forecast struct {
	CurrentBalance      decimal.Decimal
	AverageDailyExpense decimal.Decimal
	EstimatedEndOfMonth decimal.Decimal
	SafeDaysRemaining   int
	DaysLeftInMonth     int
	// Projection yields ProjectionDays points starting tomorrow.
	Projection iter.Seq[ProjectionPoint]
}

// TrailingWindow is the window whose expenses feed the daily average: the
// 30 days before today plus today.
func TrailingWindow(now time.Time) Window {
	today := Day(now)
	return Window{Start: today.AddDate(0, 0, -TrailingExpenseDays), End: today}
}

// BuildForecast projects the balance forward from in at now.
func BuildForecast(in ForecastInput, now time.Time) Forecast {
	balance := in.Lifetime.Net()
	avg := Round2(in.TrailingExpense.Div(trailingDivisor))
	today := Day(now)
	daysLeft := max(0, DaysBetween(today, MonthWindow(today).End))

	safeDays := SafeDaysSentinel
	if avg.IsPositive() {
		safeDays = int(balance.Div(avg).Floor().IntPart())
	}

	return Forecast{
		CurrentBalance:      balance,
		AverageDailyExpense: avg,
		EstimatedEndOfMonth: maxZero(balance.Sub(avg.Mul(decimal.NewFromInt(int64(daysLeft))))),
		SafeDaysRemaining:   safeDays,
		DaysLeftInMonth:     daysLeft,
		Projection:          Projection(balance, avg, today, ProjectionDays),
	}
}

// Projection yields days points starting the day after today, each one the
// previous balance less dailyExpense, floored at zero.
func Projection(balance, dailyExpense decimal.Decimal, today time.Time, days int) iter.Seq[ProjectionPoint] {
	start := Day(today)
	return func(yield func(ProjectionPoint) bool) {
		running := balance
		for i := 1; i <= days; i++ {
			running = maxZero(running.Sub(dailyExpense))
			if !yield(ProjectionPoint{Date: start.AddDate(0, 0, i), Balance: Round2(running)}) {
				return
			}
		}
	}
}
