package finance

import (
	"time"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/finflow/internal/models"
)

// BudgetStatus is a budget evaluated against its current period window.
type BudgetStatus struct {
	Budget         models.Budget
	Window         Window
	Spent          decimal.Decimal
	Remaining      decimal.Decimal
	Progress       int
	OverThreshold  bool
	Exceeded       bool
	DaysRemaining  int
	DailySafeSpend decimal.Decimal
}

// SpentAmount sums the budget owner's expenses dated inside w, restricted to
// the budget's category when it has one.
func SpentAmount(budget models.Budget, txs []models.Transaction, w Window) decimal.Decimal {
	spent := decimal.Zero
	for _, tx := range txs {
		if tx.UserID != budget.UserID || tx.Type != models.TypeExpense || !w.Contains(tx.Date) {
			continue
		}
		if budget.CategoryID != nil && tx.CategoryID != *budget.CategoryID {
			continue
		}
		spent = spent.Add(tx.Amount)
	}
	return spent
}

// Evaluate derives the budget's state for the period window containing now
// from the amount spent in that window. Degenerate budgets evaluate to zeros.
func Evaluate(budget models.Budget, spent decimal.Decimal, now time.Time) BudgetStatus {
	w := CurrentWindow(budget.Period, now)

	progress := 0
	if budget.Amount.IsPositive() {
		progress = CappedPercent(spent, budget.Amount)
	}
	remaining := maxZero(budget.Amount.Sub(spent))
	days := max(0, DaysBetween(now, w.End))

	safe := decimal.Zero
	if days > 0 {
		safe = Round2(remaining.Div(decimal.NewFromInt(int64(days))))
	}

	return BudgetStatus{
		Budget:         budget,
		Window:         w,
		Spent:          spent,
		Remaining:      remaining,
		Progress:       progress,
		OverThreshold:  progress >= budget.AlertThreshold,
		Exceeded:       spent.GreaterThanOrEqual(budget.Amount),
		DaysRemaining:  days,
		DailySafeSpend: safe,
	}
}

// EvaluateAll evaluates each budget against txs, which must cover every
// budget's current window.
func EvaluateAll(budgets []models.Budget, txs []models.Transaction, now time.Time) []BudgetStatus {
	statuses := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		spent := SpentAmount(b, txs, CurrentWindow(b.Period, now))
		statuses = append(statuses, Evaluate(b, spent, now))
	}
	return statuses
}

// CoveringWindow returns the smallest window spanning the current windows
// of every budget, for loading the transactions EvaluateAll needs. ok is false
// when budgets is empty.
func CoveringWindow(budgets []models.Budget, now time.Time) (w Window, ok bool) {
	for i, b := range budgets {
		bw := CurrentWindow(b.Period, now)
		if i == 0 {
			w = bw
			continue
		}
		if bw.Start.Before(w.Start) {
			w.Start = bw.Start
		}
		if bw.End.After(w.End) {
			w.End = bw.End
		}
	}
	return w, len(budgets) > 0
}
