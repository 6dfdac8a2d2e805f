package finance

import (
	"fmt"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/finflow/internal/models"
)

// TotalCategoryLabel labels budgets that cover all expenses.
const TotalCategoryLabel = "Total"

// BudgetSummary rolls up a user's evaluated budgets.
type BudgetSummary struct {
	TotalBudget     decimal.Decimal
	TotalSpent      decimal.Decimal
	TotalRemaining  decimal.Decimal
	OverallProgress int
	BudgetCount     int
	OverBudgetCount int
	NearLimitCount  int
	OnTrackCount    int
}

// Summarize totals the statuses. Spending covered by overlapping budgets is
// counted once per budget.
func Summarize(statuses []BudgetStatus) BudgetSummary {
	var s BudgetSummary
	for _, st := range statuses {
		s.TotalBudget = s.TotalBudget.Add(st.Budget.Amount)
		s.TotalSpent = s.TotalSpent.Add(st.Spent)
		switch {
		case st.Exceeded:
			s.OverBudgetCount++
		case st.OverThreshold:
			s.NearLimitCount++
		}
	}

	s.BudgetCount = len(statuses)
	s.OnTrackCount = s.BudgetCount - s.OverBudgetCount - s.NearLimitCount
	s.TotalRemaining = maxZero(s.TotalBudget.Sub(s.TotalSpent))
	s.OverallProgress = CappedPercent(s.TotalSpent, s.TotalBudget)
	s.TotalBudget = Round2(s.TotalBudget)
	s.TotalSpent = Round2(s.TotalSpent)
	s.TotalRemaining = Round2(s.TotalRemaining)
	return s
}

// Alert types and severities.
const (
	AlertExceeded = "exceeded"
	AlertWarning  = "warning"

	SeverityHigh   = "high"
	SeverityMedium = "medium"
)

// Alert flags a budget that crossed its threshold or its amount.
// Overage is set for exceeded alerts, Remaining for warnings.
type Alert struct {
	Type         string
	Severity     string
	BudgetID     int
	BudgetName   string
	CategoryName string
	Message      string
	Overage      decimal.Decimal
	Remaining    decimal.Decimal
}

// Alerts returns one alert per exceeded or over-threshold budget, in input
// order. Amounts in messages use currency.
func Alerts(statuses []BudgetStatus, currency string) []Alert {
	var alerts []Alert
	for _, st := range statuses {
		b := st.Budget
		switch {
		case st.Exceeded:
			alerts = append(alerts, Alert{
				Type:         AlertExceeded,
				Severity:     SeverityHigh,
				BudgetID:     b.ID,
				BudgetName:   b.Name,
				CategoryName: categoryLabel(b),
				Message: fmt.Sprintf("Budget '%s' has been exceeded! Spent %s of %s",
					b.Name, FormatMoney(currency, st.Spent), FormatMoney(currency, b.Amount)),
				Overage: Round2(st.Spent.Sub(b.Amount)),
			})
		case st.OverThreshold:
			alerts = append(alerts, Alert{
				Type:         AlertWarning,
				Severity:     SeverityMedium,
				BudgetID:     b.ID,
				BudgetName:   b.Name,
				CategoryName: categoryLabel(b),
				Message: fmt.Sprintf("Budget '%s' is at %d%%! %s remaining.",
					b.Name, st.Progress, FormatMoney(currency, st.Remaining)),
				Remaining: st.Remaining,
			})
		}
	}
	return alerts
}

// Performance statuses.
const (
	StatusExceeded = "exceeded"
	StatusWarning  = "warning"
	StatusOnTrack  = "on_track"
)

// PerformanceEntry is one budget's standing within a period kind.
type PerformanceEntry struct {
	BudgetID      int
	Name          string
	Category      string
	CategoryColor string
	Amount        decimal.Decimal
	Spent         decimal.Decimal
	Progress      int
	Status        string
}

// Performance reports every status whose budget recurs with period.
func Performance(statuses []BudgetStatus, period models.BudgetPeriod) []PerformanceEntry {
	var entries []PerformanceEntry
	for _, st := range statuses {
		b := st.Budget
		if b.Period != period {
			continue
		}

		status := StatusOnTrack
		switch {
		case st.Exceeded:
			status = StatusExceeded
		case st.OverThreshold:
			status = StatusWarning
		}

		entry := PerformanceEntry{
			BudgetID: b.ID,
			Name:     b.Name,
			Category: categoryLabel(b),
			Amount:   b.Amount,
			Spent:    st.Spent,
			Progress: st.Progress,
			Status:   status,
		}
		if b.Category != nil {
			entry.CategoryColor = b.Category.Color
		}
		entries = append(entries, entry)
	}
	return entries
}

func categoryLabel(b models.Budget) string {
	if b.Category != nil && b.Category.Name != "" {
		return b.Category.Name
	}
	return TotalCategoryLabel
}
