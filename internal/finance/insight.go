package finance

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/finflow/internal/models"
)

// Insight types.
const (
	InsightExpenseChange   = "expense_change"
	InsightTopCategory     = "top_category"
	InsightTopWantCategory = "top_want_category"
	InsightWantChange      = "want_change"
)

// Insight trends.
const (
	TrendUp   = "up"
	TrendDown = "down"
)

// Insight is one observation about a month of spending. Change insights set
// Trend and Value; category insights set Category and Amount.
type Insight struct {
	Type        string
	Title       string
	Description string
	Trend       string
	Value       int
	Category    string
	Amount      decimal.Decimal
}

// WeeklyReflection summarises the expenses of the current ISO week.
type WeeklyReflection struct {
	Week              string
	TotalTransactions int
	WantTransactions  int
	TotalAmount       decimal.Decimal
	Message           string
}

// Insights bundles the month's observations with the weekly reflection.
type Insights struct {
	Month            string
	Insights         []Insight
	WeeklyReflection WeeklyReflection
}

type insightGenerator func(txs []models.Transaction, month, prev string) *Insight

// BuildInsights runs every generator over txs for month. txs must cover
// month, the month before it and the current week. currency formats amounts.
func BuildInsights(txs []models.Transaction, month string, now time.Time, currency string) (Insights, error) {
	prev, err := PreviousMonthKey(month)
	if err != nil {
		return Insights{}, err
	}

	generators := []insightGenerator{
		expenseChangeInsight,
		topCategoryInsight(currency),
		topWantCategoryInsight(currency),
		wantChangeInsight,
	}

	out := Insights{Month: month, Insights: []Insight{}}
	for _, gen := range generators {
		if in := gen(txs, month, prev); in != nil {
			out.Insights = append(out.Insights, *in)
		}
	}
	out.WeeklyReflection = Reflect(txs, now, currency)
	return out, nil
}

func changeInsight(kind, title, subject string, prevAmount, currAmount decimal.Decimal) *Insight {
	if prevAmount.IsZero() && currAmount.IsZero() {
		return nil
	}

	change := PercentageChange(prevAmount, currAmount)
	trend := TrendDown
	text := fmt.Sprintf("down %d%%", -change)
	if change > 0 {
		trend = TrendUp
		text = fmt.Sprintf("up %d%%", change)
	}

	return &Insight{
		Type:        kind,
		Title:       title,
		Description: fmt.Sprintf("%s this month is %s from last month", subject, text),
		Trend:       trend,
		Value:       change,
	}
}

func expenseChangeInsight(txs []models.Transaction, month, prev string) *Insight {
	return changeInsight(InsightExpenseChange, "Spending change", "Spending",
		MonthlyTotals(txs, prev).Expense, MonthlyTotals(txs, month).Expense)
}

func wantChangeInsight(txs []models.Transaction, month, prev string) *Insight {
	return changeInsight(InsightWantChange, "Want spending trend", "Want spending",
		NeedWantRatio(txs, prev).WantAmount, NeedWantRatio(txs, month).WantAmount)
}

func topCategoryInsight(currency string) insightGenerator {
	return func(txs []models.Transaction, month, _ string) *Insight {
		rows := CategoryBreakdown(txs, month, 1)
		if len(rows) == 0 {
			return nil
		}
		top := rows[0]
		return &Insight{
			Type:        InsightTopCategory,
			Title:       "Top spending category",
			Description: fmt.Sprintf("Your biggest spending this month: %s (%s)", top.Category, FormatMoney(currency, top.Amount)),
			Category:    top.Category,
			Amount:      top.Amount,
		}
	}
}

func topWantCategoryInsight(currency string) insightGenerator {
	return func(txs []models.Transaction, month, _ string) *Insight {
		rows := categoryBreakdown(txs, month, 1, func(tx models.Transaction) bool {
			return tx.SpendingType == models.SpendingWant
		})
		if len(rows) == 0 {
			return nil
		}
		top := rows[0]
		return &Insight{
			Type:        InsightTopWantCategory,
			Title:       "Top want category",
			Description: fmt.Sprintf("Most of your wants went to %s (%s)", top.Category, FormatMoney(currency, top.Amount)),
			Category:    top.Category,
			Amount:      top.Amount,
		}
	}
}

// ISOWeekLabel formats the ISO week containing t as YYYY-Www.
func ISOWeekLabel(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// Reflect counts the expenses of the ISO week containing now.
func Reflect(txs []models.Transaction, now time.Time, currency string) WeeklyReflection {
	w := CurrentWindow(models.PeriodWeekly, now)
	r := WeeklyReflection{Week: ISOWeekLabel(Day(now))}

	for _, tx := range txs {
		if tx.Type != models.TypeExpense || !w.Contains(tx.Date) {
			continue
		}
		r.TotalTransactions++
		r.TotalAmount = r.TotalAmount.Add(tx.Amount)
		if tx.SpendingType == models.SpendingWant {
			r.WantTransactions++
		}
	}

	if r.TotalTransactions == 0 {
		r.Message = "No transactions this week yet."
	} else {
		r.Message = fmt.Sprintf("%d expenses this week totalling %s", r.TotalTransactions, FormatMoney(currency, r.TotalAmount))
	}
	return r
}

// InsightWindow is the span of transactions BuildInsights reads for month at
// now: the previous month through the end of month, widened to the current week.
func InsightWindow(month string, now time.Time) (Window, error) {
	start, err := ParseMonthKey(month)
	if err != nil {
		return Window{}, err
	}
	w := Window{Start: start.AddDate(0, -1, 0), End: start.AddDate(0, 1, -1)}
	week := CurrentWindow(models.PeriodWeekly, now)
	if week.Start.Before(w.Start) {
		w.Start = week.Start
	}
	if week.End.After(w.End) {
		w.End = week.End
	}
	return w, nil
}
