package service

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"gitlab.com/yelinaung/finflow/internal/finance"
	"gitlab.com/yelinaung/finflow/internal/models"
)

func TestReportService_Dashboard(t *testing.T) {
	f := newFixture(t, 7501)
	ctx := context.Background()
	food := f.category(t, models.TypeExpense, "Food")
	salary := f.category(t, models.TypeIncome, "Salary")

	f.record(t, salary, "5000", day(2026, 9, 25))
	f.record(t, salary, "1000", day(2026, 10, 1))
	f.record(t, food, "300", day(2026, 10, 2), spending(models.SpendingNeed))
	f.record(t, food, "100", day(2026, 10, 3), spending(models.SpendingWant))

	d, err := f.svc.Reports.Dashboard(ctx, f.userID)
	require.NoError(t, err)
	requireDecimal(t, "5600", d.CurrentBalance)
	require.Equal(t, "2026-10", d.MonthlySummary.Month)
	requireDecimal(t, "1000", d.MonthlySummary.TotalIncome)
	requireDecimal(t, "400", d.MonthlySummary.TotalExpense)
	requireDecimal(t, "600", d.MonthlySummary.Remaining)
	require.Equal(t, 75, d.NeedWant.NeedPercentage)
	require.Len(t, d.ExpenseByCategory, 1)
	require.Equal(t, "Food", d.ExpenseByCategory[0].Category)
}

func TestReportService_MonthlyReport(t *testing.T) {
	f := newFixture(t, 7502)
	ctx := context.Background()
	food := f.category(t, models.TypeExpense, "Food")

	f.record(t, food, "100", day(2026, 9, 10))
	f.record(t, food, "150", day(2026, 10, 10))

	t.Run("compares with the previous month", func(t *testing.T) {
		r, err := f.svc.Reports.MonthlyReport(ctx, f.userID, "2026-10")
		require.NoError(t, err)
		requireDecimal(t, "150", r.TotalExpense)
		require.Equal(t, 50, r.Comparison.ExpenseChange)
		require.Len(t, r.DailyBreakdown, 1)
	})

	t.Run("defaults to the current month", func(t *testing.T) {
		r, err := f.svc.Reports.MonthlyReport(ctx, f.userID, "")
		require.NoError(t, err)
		require.Equal(t, "2026-10", r.Month)
	})

	t.Run("rejects a malformed month", func(t *testing.T) {
		_, err := f.svc.Reports.MonthlyReport(ctx, f.userID, "October")
		require.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestReportService_BalanceHistory(t *testing.T) {
	f := newFixture(t, 7503)
	ctx := context.Background()
	salary := f.category(t, models.TypeIncome, "Salary")
	food := f.category(t, models.TypeExpense, "Food")

	f.record(t, salary, "1000", day(2026, 8, 1))
	f.record(t, food, "200", day(2026, 10, 1))

	history, err := f.svc.Reports.BalanceHistory(ctx, f.userID, 3)
	require.NoError(t, err)
	require.Len(t, history, 3)
	require.Equal(t, "2026-08", history[0].MonthKey)
	requireDecimal(t, "1000", history[1].Value)
	requireDecimal(t, "800", history[2].Value)

	_, err = f.svc.Reports.BalanceHistory(ctx, f.userID, MaxHistoryMonths+1)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestReportService_Forecast(t *testing.T) {
	t.Run("no trailing expenses yields the sentinel", func(t *testing.T) {
		f := newFixture(t, 7504)
		f.record(t, f.category(t, models.TypeIncome, "Salary"), "1000", day(2026, 10, 1))

		fc, err := f.svc.Reports.Forecast(context.Background(), f.userID)
		require.NoError(t, err)
		requireDecimal(t, "1000", fc.CurrentBalance)
		require.True(t, fc.AverageDailyExpense.IsZero())
		require.Equal(t, finance.SafeDaysSentinel, fc.SafeDaysRemaining)
		require.Equal(t, 10, fc.DaysLeftInMonth)
	})

	t.Run("averages the trailing thirty days", func(t *testing.T) {
		f := newFixture(t, 7505)
		f.record(t, f.category(t, models.TypeIncome, "Salary"), "3000", day(2026, 9, 1))
		food := f.category(t, models.TypeExpense, "Food")
		f.record(t, food, "300", day(2026, 10, 20))
		f.record(t, food, "999", day(2026, 9, 1))

		fc, err := f.svc.Reports.Forecast(context.Background(), f.userID)
		require.NoError(t, err)
		requireDecimal(t, "1701", fc.CurrentBalance)
		requireDecimal(t, "10", fc.AverageDailyExpense)
		require.Equal(t, 170, fc.SafeDaysRemaining)
		requireDecimal(t, "1601", fc.EstimatedEndOfMonth)

		points := slices.Collect(fc.Projection)
		require.Len(t, points, finance.ProjectionDays)
		requireDecimal(t, "1691", points[0].Balance)
	})
}

func TestReportService_Insights(t *testing.T) {
	f := newFixture(t, 7506)
	ctx := context.Background()
	food := f.category(t, models.TypeExpense, "Food")

	f.record(t, food, "100", day(2026, 9, 10))
	f.record(t, food, "200", day(2026, 10, 20), spending(models.SpendingWant))

	in, err := f.svc.Reports.Insights(ctx, f.userID, "")
	require.NoError(t, err)
	require.Equal(t, "2026-10", in.Month)
	require.NotEmpty(t, in.Insights)
	require.Equal(t, finance.InsightExpenseChange, in.Insights[0].Type)
	require.Equal(t, finance.TrendUp, in.Insights[0].Trend)
	require.Equal(t, 100, in.Insights[0].Value)

	require.Equal(t, "2026-W43", in.WeeklyReflection.Week)
	require.Equal(t, 1, in.WeeklyReflection.TotalTransactions)
	require.Equal(t, 1, in.WeeklyReflection.WantTransactions)

	_, err = f.svc.Reports.Insights(ctx, f.userID, "2026-1")
	require.ErrorIs(t, err, ErrInvalidInput)
}
