package finance

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/finflow/internal/models"
)

// MonthKey formats the month of t as YYYY-MM.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// ParseMonthKey parses a YYYY-MM key into the first day of that month.
func ParseMonthKey(key string) (time.Time, error) {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q, want YYYY-MM: %w", key, err)
	}
	return t, nil
}

// PreviousMonthKey returns the key of the month before key.
func PreviousMonthKey(key string) (string, error) {
	t, err := ParseMonthKey(key)
	if err != nil {
		return "", err
	}
	return MonthKey(t.AddDate(0, -1, 0)), nil
}

func inMonth(tx models.Transaction, key string) bool {
	return MonthKey(tx.Date) == key
}

// MonthlyTotals sums the income and expense of txs dated in month.
func MonthlyTotals(txs []models.Transaction, month string) Totals {
	var t Totals
	for _, tx := range txs {
		if !inMonth(tx, month) {
			continue
		}
		switch tx.Type {
		case models.TypeIncome:
			t.Income = t.Income.Add(tx.Amount)
		case models.TypeExpense:
			t.Expense = t.Expense.Add(tx.Amount)
		}
	}
	return t
}

// PercentageChange returns the rounded percent change from prev to curr.
// A zero baseline yields 100 when curr is positive and 0 otherwise.
func PercentageChange(prev, curr decimal.Decimal) int {
	if prev.IsZero() {
		if curr.IsPositive() {
			return 100
		}
		return 0
	}
	return int(curr.Sub(prev).Div(prev).Mul(hundred).Round(0).IntPart())
}

// CategoryAmount is one row of an expense breakdown.
type CategoryAmount struct {
	CategoryID int
	Category   string
	Color      string
	Amount     decimal.Decimal
	Percentage int
}

// CategoryBreakdown groups the month's expenses by category, largest first.
// When limit is positive only the top limit rows are kept, and percentages
// are shares of the kept rows' total.
func CategoryBreakdown(txs []models.Transaction, month string, limit int) []CategoryAmount {
	return categoryBreakdown(txs, month, limit, func(models.Transaction) bool { return true })
}

func categoryBreakdown(txs []models.Transaction, month string, limit int, keep func(models.Transaction) bool) []CategoryAmount {
	byID := make(map[int]*CategoryAmount)
	for _, tx := range txs {
		if tx.Type != models.TypeExpense || !inMonth(tx, month) || !keep(tx) {
			continue
		}
		row, ok := byID[tx.CategoryID]
		if !ok {
			row = &CategoryAmount{CategoryID: tx.CategoryID}
			if tx.Category != nil {
				row.Category = tx.Category.Name
				row.Color = tx.Category.Color
			}
			byID[tx.CategoryID] = row
		}
		row.Amount = row.Amount.Add(tx.Amount)
	}

	rows := make([]CategoryAmount, 0, len(byID))
	for _, row := range byID {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if c := rows[i].Amount.Cmp(rows[j].Amount); c != 0 {
			return c > 0
		}
		if rows[i].Category != rows[j].Category {
			return rows[i].Category < rows[j].Category
		}
		return rows[i].CategoryID < rows[j].CategoryID
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Amount)
	}
	for i := range rows {
		rows[i].Percentage = Percent(rows[i].Amount, total)
	}
	return rows
}

// DailyAmount is the income and expense of one calendar day.
type DailyAmount struct {
	Date    time.Time
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// DailyBreakdown lists the month's days that have transactions, ascending.
func DailyBreakdown(txs []models.Transaction, month string) []DailyAmount {
	byDay := make(map[time.Time]*DailyAmount)
	for _, tx := range txs {
		if !inMonth(tx, month) {
			continue
		}
		d := Day(tx.Date)
		row, ok := byDay[d]
		if !ok {
			row = &DailyAmount{Date: d}
			byDay[d] = row
		}
		switch tx.Type {
		case models.TypeIncome:
			row.Income = row.Income.Add(tx.Amount)
		case models.TypeExpense:
			row.Expense = row.Expense.Add(tx.Amount)
		}
	}

	days := make([]DailyAmount, 0, len(byDay))
	for _, row := range byDay {
		days = append(days, *row)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	return days
}

// NeedWant splits a month's tagged expenses into needs and wants.
type NeedWant struct {
	NeedAmount     decimal.Decimal
	WantAmount     decimal.Decimal
	NeedPercentage int
	WantPercentage int
}

// NeedWantRatio sums the month's expenses tagged need or want. Untagged
// expenses are ignored. Percentages are 0 when nothing is tagged.
func NeedWantRatio(txs []models.Transaction, month string) NeedWant {
	var nw NeedWant
	for _, tx := range txs {
		if tx.Type != models.TypeExpense || !inMonth(tx, month) {
			continue
		}
		switch tx.SpendingType {
		case models.SpendingNeed:
			nw.NeedAmount = nw.NeedAmount.Add(tx.Amount)
		case models.SpendingWant:
			nw.WantAmount = nw.WantAmount.Add(tx.Amount)
		}
	}

	total := nw.NeedAmount.Add(nw.WantAmount)
	nw.NeedPercentage = Percent(nw.NeedAmount, total)
	nw.WantPercentage = Percent(nw.WantAmount, total)
	return nw
}

// MonthlySummary is the income, expense and remainder of one month.
type MonthlySummary struct {
	Month        string
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	Remaining    decimal.Decimal
}

// Dashboard is the landing overview for the current month.
type Dashboard struct {
	CurrentBalance    decimal.Decimal
	MonthlySummary    MonthlySummary
	NeedWant          NeedWant
	ExpenseByCategory []CategoryAmount
}

// BuildDashboard derives the dashboard from lifetime totals and the user's
// transactions. Only the current month of txs is read.
func BuildDashboard(lifetime Totals, txs []models.Transaction, now time.Time) Dashboard {
	month := MonthKey(now)
	totals := MonthlyTotals(txs, month)
	return Dashboard{
		CurrentBalance: lifetime.Net(),
		MonthlySummary: MonthlySummary{
			Month:        month,
			TotalIncome:  totals.Income,
			TotalExpense: totals.Expense,
			Remaining:    totals.Net(),
		},
		NeedWant:          NeedWantRatio(txs, month),
		ExpenseByCategory: CategoryBreakdown(txs, month, 10),
	}
}

// Comparison holds month-over-month percentage changes.
type Comparison struct {
	IncomeChange  int
	ExpenseChange int
	WantChange    int
}

// MonthlyReport is the full report of one month against the month before.
type MonthlyReport struct {
	Month            string
	TotalIncome      decimal.Decimal
	TotalExpense     decimal.Decimal
	RemainingBalance decimal.Decimal
	NeedPercentage   int
	WantPercentage   int
	Comparison       Comparison
	TopCategories    []CategoryAmount
	DailyBreakdown   []DailyAmount
}

// BuildMonthlyReport derives the report for month. txs must cover month and
// the month before it.
func BuildMonthlyReport(txs []models.Transaction, month string) (MonthlyReport, error) {
	prev, err := PreviousMonthKey(month)
	if err != nil {
		return MonthlyReport{}, err
	}

	curr := MonthlyTotals(txs, month)
	before := MonthlyTotals(txs, prev)
	nw := NeedWantRatio(txs, month)
	prevNW := NeedWantRatio(txs, prev)

	return MonthlyReport{
		Month:            month,
		TotalIncome:      curr.Income,
		TotalExpense:     curr.Expense,
		RemainingBalance: curr.Net(),
		NeedPercentage:   nw.NeedPercentage,
		WantPercentage:   nw.WantPercentage,
		Comparison: Comparison{
			IncomeChange:  PercentageChange(before.Income, curr.Income),
			ExpenseChange: PercentageChange(before.Expense, curr.Expense),
			WantChange:    PercentageChange(prevNW.WantAmount, nw.WantAmount),
		},
		TopCategories:  CategoryBreakdown(txs, month, 5),
		DailyBreakdown: DailyBreakdown(txs, month),
	}, nil
}
