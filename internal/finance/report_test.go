package finance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gitlab.com/yelinaung/finflow/internal/models"
)

func TestPercentageChange(t *testing.T) {
	t.Parallel()
	tests := []struct {
		prev, curr string
		want       int
	}{
		{"0", "0", 0},
		{"0", "100", 100},
		{"100", "150", 50},
		{"100", "50", -50},
		{"300", "400", 33},
		{"3", "1", -67},
	}
	for _, tt := range tests {
		t.Run(tt.prev+" to "+tt.curr, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, PercentageChange(dec(tt.prev), dec(tt.curr)))
		})
	}
}

func TestMonthKeys(t *testing.T) {
	t.Parallel()
	t.Run("formats and parses", func(t *testing.T) {
		require.Equal(t, "2026-10", MonthKey(refNow))
		got, err := ParseMonthKey("2026-02")
		require.NoError(t, err)
		require.Equal(t, date(2026, time.February, 1), got)
	})

	t.Run("rejects malformed keys", func(t *testing.T) {
		for _, bad := range []string{"", "2026", "2026-13", "10-2026", "2026-1"} {
			_, err := ParseMonthKey(bad)
			require.Error(t, err, bad)
		}
	})

	t.Run("previous month wraps the year", func(t *testing.T) {
		prev, err := PreviousMonthKey("2026-01")
		require.NoError(t, err)
		require.Equal(t, "2025-12", prev)
	})
}

func FuzzParseMonthKey(f *testing.F) {
	f.Add("2026-10")
	f.Add("1999-12")
	f.Add("")
	f.Add("2026-1")
	f.Fuzz(func(t *testing.T, key string) {
		got, err := ParseMonthKey(key)
		if err != nil {
			return
		}
		if MonthKey(got) != key {
			t.Fatalf("round trip of %q produced %q", key, MonthKey(got))
		}
	})
}

func octoberLedger() []models.Transaction {
	return []models.Transaction{
		withCategory(income("5000000", date(2026, time.October, 1)), 20, "Salary", "#078834"),
		withSpending(withCategory(expense("300000", date(2026, time.October, 2)), 1, "Food", "#007180"), models.SpendingNeed),
		withSpending(withCategory(expense("200000", date(2026, time.October, 2)), 1, "Food", "#007180"), models.SpendingWant),
		withSpending(withCategory(expense("100000", date(2026, time.October, 9)), 4, "Entertainment", "#009688"), models.SpendingWant),
		withCategory(expense("500000", date(2026, time.October, 15)), 5, "Bills", "#26a69a"),
		withCategory(income("4000000", date(2026, time.September, 1)), 20, "Salary", "#078834"),
		withSpending(withCategory(expense("800000", date(2026, time.September, 3)), 1, "Food", "#007180"), models.SpendingWant),
	}
}

func TestMonthlyTotals(t *testing.T) {
	t.Parallel()
	totals := MonthlyTotals(octoberLedger(), "2026-10")
	requireDecimal(t, "5000000", totals.Income)
	requireDecimal(t, "1100000", totals.Expense)
	requireDecimal(t, "3900000", totals.Net())

	empty := MonthlyTotals(octoberLedger(), "2025-01")
	requireDecimal(t, "0", empty.Income)
	requireDecimal(t, "0", empty.Expense)
}

func TestCategoryBreakdown(t *testing.T) {
	t.Parallel()
	t.Run("sorts by amount and shares the total", func(t *testing.T) {
		rows := CategoryBreakdown(octoberLedger(), "2026-10", 0)
		require.Len(t, rows, 3)
		require.Equal(t, "Bills", rows[0].Category)
		require.Equal(t, "Food", rows[1].Category)
		require.Equal(t, "#007180", rows[1].Color)
		requireDecimal(t, "500000", rows[1].Amount)
		require.Equal(t, "Entertainment", rows[2].Category)
		require.Equal(t, []int{45, 45, 9}, []int{rows[0].Percentage, rows[1].Percentage, rows[2].Percentage})
	})

	t.Run("percentages are shares of the listed rows", func(t *testing.T) {
		rows := CategoryBreakdown(octoberLedger(), "2026-10", 2)
		require.Len(t, rows, 2)
		require.Equal(t, 50, rows[0].Percentage)
		require.Equal(t, 50, rows[1].Percentage)
	})

	t.Run("is empty for months without expenses", func(t *testing.T) {
		require.Empty(t, CategoryBreakdown(octoberLedger(), "2025-01", 10))
	})
}

func TestDailyBreakdown(t *testing.T) {
	t.Parallel()
	days := DailyBreakdown(octoberLedger(), "2026-10")
	require.Len(t, days, 4)
	require.Equal(t, date(2026, time.October, 1), days[0].Date)
	requireDecimal(t, "5000000", days[0].Income)
	require.Equal(t, date(2026, time.October, 2), days[1].Date)
	requireDecimal(t, "500000", days[1].Expense)
	requireDecimal(t, "0", days[1].Income)
}

func TestNeedWantRatio(t *testing.T) {
	t.Parallel()
	t.Run("splits tagged expenses", func(t *testing.T) {
		nw := NeedWantRatio(octoberLedger(), "2026-10")
		requireDecimal(t, "300000", nw.NeedAmount)
		requireDecimal(t, "300000", nw.WantAmount)
		require.Equal(t, 50, nw.NeedPercentage)
		require.Equal(t, 50, nw.WantPercentage)
	})

	t.Run("is zero when nothing is tagged", func(t *testing.T) {
		nw := NeedWantRatio([]models.Transaction{expense("10", refNow)}, "2026-10")
		require.Equal(t, 0, nw.NeedPercentage)
		require.Equal(t, 0, nw.WantPercentage)
	})
}

func TestBuildDashboard(t *testing.T) {
	t.Parallel()
	ledger := octoberLedger()
	d := BuildDashboard(TotalsOf(ledger), ledger, refNow)

	requireDecimal(t, "7100000", d.CurrentBalance)
	require.Equal(t, "2026-10", d.MonthlySummary.Month)
	requireDecimal(t, "3900000", d.MonthlySummary.Remaining)
	require.Equal(t, 50, d.NeedWant.WantPercentage)
	require.Len(t, d.ExpenseByCategory, 3)
}

func TestBuildMonthlyReport(t *testing.T) {
	t.Parallel()
	r, err := BuildMonthlyReport(octoberLedger(), "2026-10")
	require.NoError(t, err)

	requireDecimal(t, "5000000", r.TotalIncome)
	requireDecimal(t, "1100000", r.TotalExpense)
	requireDecimal(t, "3900000", r.RemainingBalance)
	require.Equal(t, 25, r.Comparison.IncomeChange)
	require.Equal(t, 38, r.Comparison.ExpenseChange)
	require.Equal(t, -63, r.Comparison.WantChange)
	require.Len(t, r.TopCategories, 3)
	require.Len(t, r.DailyBreakdown, 4)

	t.Run("rejects malformed months", func(t *testing.T) {
		_, err := BuildMonthlyReport(nil, "October")
		require.Error(t, err)
	})
}
