package finance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"gitlab.com/yelinaung/finflow/internal/models"
)

func TestCurrentWindow(t *testing.T) {
	t.Parallel()
	t.Run("weekly runs Monday to Sunday", func(t *testing.T) {
		w := CurrentWindow(models.PeriodWeekly, refNow)
		require.Equal(t, date(2026, time.October, 19), w.Start)
		require.Equal(t, date(2026, time.October, 25), w.End)
	})

	t.Run("weekly on a Sunday belongs to the week that started six days earlier", func(t *testing.T) {
		w := CurrentWindow(models.PeriodWeekly, date(2026, time.October, 25))
		require.Equal(t, date(2026, time.October, 19), w.Start)
	})

	t.Run("weekly may cross a year boundary", func(t *testing.T) {
		w := CurrentWindow(models.PeriodWeekly, date(2027, time.January, 1))
		require.Equal(t, date(2026, time.December, 28), w.Start)
		require.Equal(t, date(2027, time.January, 3), w.End)
	})

	t.Run("monthly is the calendar month", func(t *testing.T) {
		w := CurrentWindow(models.PeriodMonthly, date(2028, time.February, 10))
		require.Equal(t, date(2028, time.February, 1), w.Start)
		require.Equal(t, date(2028, time.February, 29), w.End)
	})

	t.Run("yearly is the calendar year", func(t *testing.T) {
		w := CurrentWindow(models.PeriodYearly, refNow)
		require.Equal(t, date(2026, time.January, 1), w.Start)
		require.Equal(t, date(2026, time.December, 31), w.End)
	})

	t.Run("unknown periods fall back to monthly", func(t *testing.T) {
		require.Equal(t, MonthWindow(refNow), CurrentWindow(models.BudgetPeriod("daily"), refNow))
	})

	t.Run("uses the calendar date of now in its own location", func(t *testing.T) {
		jakarta := time.FixedZone("WIB", 7*3600)
		lateNight := time.Date(2026, time.October, 31, 23, 30, 0, 0, jakarta)
		w := CurrentWindow(models.PeriodMonthly, lateNight)
		require.Equal(t, date(2026, time.October, 1), w.Start)
	})
}

func TestWindowContains(t *testing.T) {
	t.Parallel()
	w := Window{Start: date(2026, time.October, 1), End: date(2026, time.October, 31)}

	require.True(t, w.Contains(date(2026, time.October, 1)))
	require.True(t, w.Contains(time.Date(2026, time.October, 31, 23, 59, 59, 0, time.UTC)))
	require.False(t, w.Contains(date(2026, time.September, 30)))
	require.False(t, w.Contains(date(2026, time.November, 1)))
}

func TestDaysBetween(t *testing.T) {
	t.Parallel()
	require.Equal(t, 10, DaysBetween(refNow, date(2026, time.October, 31)))
	require.Equal(t, 0, DaysBetween(refNow, date(2026, time.October, 21)))
	require.Equal(t, -1, DaysBetween(refNow, date(2026, time.October, 20)))
}

func TestCurrentWindow_Properties(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		now := date(2020, time.January, 1).AddDate(0, 0, rapid.IntRange(0, 3650).Draw(t, "offset"))
		period := rapid.SampledFrom([]models.BudgetPeriod{
			models.PeriodWeekly, models.PeriodMonthly, models.PeriodYearly,
		}).Draw(t, "period")

		w := CurrentWindow(period, now)
		require.True(t, w.Contains(now), "window %v must contain %v", w, now)
		require.False(t, w.End.Before(w.Start))
		if period == models.PeriodWeekly {
			require.Equal(t, time.Monday, w.Start.Weekday())
			require.Equal(t, 6, DaysBetween(w.Start, w.End))
		}
	})
}
