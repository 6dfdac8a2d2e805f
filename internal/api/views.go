package api

import (
	"time"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/finflow/internal/finance"
	"gitlab.com/yelinaung/finflow/internal/models"
	"gitlab.com/yelinaung/finflow/internal/service"
)

// JSON shapes of the API. Money is rendered as decimal strings and dates as
// YYYY-MM-DD.

type accountView struct {
	ID             int             `json:"id"`
	Name           string          `json:"name"`
	Type           string          `json:"type"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	Currency       string          `json:"currency"`
	Icon           string          `json:"icon,omitempty"`
	Color          string          `json:"color,omitempty"`
	IsActive       bool            `json:"is_active"`
}

func newAccountView(ab service.AccountBalance) accountView {
	a := ab.Account
	return accountView{
		ID:             a.ID,
		Name:           a.Name,
		Type:           string(a.Type),
		InitialBalance: a.InitialBalance,
		CurrentBalance: ab.Balance,
		Currency:       a.Currency,
		Icon:           a.Icon,
		Color:          a.Color,
		IsActive:       a.IsActive,
	}
}

type settingsView struct {
	ID        int64  `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Currency  string `json:"currency"`
	CreatedAt string `json:"created_at,omitempty"`
}

func newSettingsView(u models.User) settingsView {
	v := settingsView{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Currency:  u.DefaultCurrency,
	}
	if !u.CreatedAt.IsZero() {
		v.CreatedAt = u.CreatedAt.Format(time.RFC3339)
	}
	return v
}

type pointView struct {
	Date    string          `json:"date"`
	Balance decimal.Decimal `json:"balance"`
}

type categoryView struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Color     string `json:"color"`
	IsDefault bool   `json:"is_default"`
}

func newCategoryView(c models.Category) categoryView {
	return categoryView{ID: c.ID, Name: c.Name, Type: string(c.Type), Color: c.Color, IsDefault: c.IsDefault}
}

type transactionView struct {
	ID           int             `json:"id"`
	Type         string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	Date         string          `json:"transaction_date"`
	Note         string          `json:"note,omitempty"`
	SpendingType string          `json:"spending_type,omitempty"`
	CategoryID   int             `json:"category_id"`
	Category     *categoryView   `json:"category,omitempty"`
	AccountID    *int            `json:"account_id"`
}

func newTransactionView(tx models.Transaction) transactionView {
	v := transactionView{
		ID:           tx.ID,
		Type:         string(tx.Type),
		Amount:       tx.Amount,
		Date:         formatDate(tx.Date),
		Note:         tx.Note,
		SpendingType: string(tx.SpendingType),
		CategoryID:   tx.CategoryID,
		AccountID:    tx.AccountID,
	}
	if tx.Category != nil {
		c := newCategoryView(*tx.Category)
		v.Category = &c
	}
	return v
}

func newTransactionViews(txs []models.Transaction) []transactionView {
	out := make([]transactionView, 0, len(txs))
	for _, tx := range txs {
		out = append(out, newTransactionView(tx))
	}
	return out
}

type paginationView struct {
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
	LastPage    int `json:"last_page"`
}

type pageView struct {
	Items      []transactionView `json:"items"`
	Pagination paginationView    `json:"pagination"`
}

type transferView struct {
	Outgoing    transactionView `json:"outgoing"`
	Incoming    transactionView `json:"incoming"`
	FromBalance decimal.Decimal `json:"from_balance"`
	ToBalance   decimal.Decimal `json:"to_balance"`
}

type budgetView struct {
	ID              int             `json:"id"`
	Name            string          `json:"name"`
	CategoryID      *int            `json:"category_id"`
	Category        string          `json:"category"`
	Amount          decimal.Decimal `json:"amount"`
	Period          string          `json:"period"`
	AlertThreshold  int             `json:"alert_threshold"`
	StartDate       string          `json:"start_date"`
	EndDate         string          `json:"end_date,omitempty"`
	PeriodStart     string          `json:"period_start"`
	PeriodEnd       string          `json:"period_end"`
	Spent           decimal.Decimal `json:"spent"`
	Remaining       decimal.Decimal `json:"remaining"`
	Progress        int             `json:"progress"`
	IsOverThreshold bool            `json:"is_over_threshold"`
	IsExceeded      bool            `json:"is_exceeded"`
	DaysRemaining   int             `json:"days_remaining"`
	DailySafeSpend  decimal.Decimal `json:"daily_safe_spend"`
}

func newBudgetView(st finance.BudgetStatus) budgetView {
	b := st.Budget
	v := budgetView{
		ID:              b.ID,
		Name:            b.Name,
		CategoryID:      b.CategoryID,
		Category:        finance.TotalCategoryLabel,
		Amount:          b.Amount,
		Period:          string(b.Period),
		AlertThreshold:  b.AlertThreshold,
		StartDate:       formatDate(b.StartDate),
		PeriodStart:     formatDate(st.Window.Start),
		PeriodEnd:       formatDate(st.Window.End),
		Spent:           st.Spent,
		Remaining:       st.Remaining,
		Progress:        st.Progress,
		IsOverThreshold: st.OverThreshold,
		IsExceeded:      st.Exceeded,
		DaysRemaining:   st.DaysRemaining,
		DailySafeSpend:  st.DailySafeSpend,
	}
	if b.Category != nil {
		v.Category = b.Category.Name
	}
	if b.EndDate != nil {
		v.EndDate = formatDate(*b.EndDate)
	}
	return v
}

type summaryView struct {
	TotalBudget     decimal.Decimal `json:"total_budget"`
	TotalSpent      decimal.Decimal `json:"total_spent"`
	TotalRemaining  decimal.Decimal `json:"total_remaining"`
	OverallProgress int             `json:"overall_progress"`
	BudgetCount     int             `json:"budget_count"`
	OverBudgetCount int             `json:"over_budget_count"`
	NearLimitCount  int             `json:"near_limit_count"`
	OnTrackCount    int             `json:"on_track_count"`
}

type alertView struct {
	Type       string           `json:"type"`
	Severity   string           `json:"severity"`
	BudgetID   int              `json:"budget_id"`
	BudgetName string           `json:"budget_name"`
	Category   string           `json:"category"`
	Message    string           `json:"message"`
	Overage    *decimal.Decimal `json:"overage,omitempty"`
	Remaining  *decimal.Decimal `json:"remaining,omitempty"`
}

func newAlertView(a finance.Alert) alertView {
	v := alertView{
		Type:       a.Type,
		Severity:   a.Severity,
		BudgetID:   a.BudgetID,
		BudgetName: a.BudgetName,
		Category:   a.CategoryName,
		Message:    a.Message,
	}
	if a.Type == finance.AlertExceeded {
		v.Overage = &a.Overage
	} else {
		v.Remaining = &a.Remaining
	}
	return v
}

type performanceView struct {
	BudgetID      int             `json:"budget_id"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	CategoryColor string          `json:"category_color,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Spent         decimal.Decimal `json:"spent"`
	Progress      int             `json:"progress"`
	Status        string          `json:"status"`
}

type categoryAmountView struct {
	CategoryID int             `json:"category_id"`
	Category   string          `json:"category"`
	Color      string          `json:"color"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage int             `json:"percentage"`
}

func newCategoryAmountViews(rows []finance.CategoryAmount) []categoryAmountView {
	out := make([]categoryAmountView, 0, len(rows))
	for _, r := range rows {
		out = append(out, categoryAmountView(r))
	}
	return out
}

type needWantView struct {
	NeedAmount     decimal.Decimal `json:"need_amount"`
	WantAmount     decimal.Decimal `json:"want_amount"`
	NeedPercentage int             `json:"need_percentage"`
	WantPercentage int             `json:"want_percentage"`
}

type monthlySummaryView struct {
	Month        string          `json:"month"`
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	Remaining    decimal.Decimal `json:"remaining"`
}

type dashboardView struct {
	CurrentBalance    decimal.Decimal      `json:"current_balance"`
	MonthlySummary    monthlySummaryView   `json:"monthly_summary"`
	NeedWant          needWantView         `json:"need_want_ratio"`
	ExpenseByCategory []categoryAmountView `json:"expense_by_category"`
}

func newDashboardView(d finance.Dashboard) dashboardView {
	return dashboardView{
		CurrentBalance:    d.CurrentBalance,
		MonthlySummary:    monthlySummaryView(d.MonthlySummary),
		NeedWant:          needWantView(d.NeedWant),
		ExpenseByCategory: newCategoryAmountViews(d.ExpenseByCategory),
	}
}

type dailyView struct {
	Date    string          `json:"date"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

type comparisonView struct {
	IncomeChange  int `json:"income_change"`
	ExpenseChange int `json:"expense_change"`
	WantChange    int `json:"want_change"`
}

type monthlyReportView struct {
	Month            string               `json:"month"`
	TotalIncome      decimal.Decimal      `json:"total_income"`
	TotalExpense     decimal.Decimal      `json:"total_expense"`
	RemainingBalance decimal.Decimal      `json:"remaining_balance"`
	NeedPercentage   int                  `json:"need_percentage"`
	WantPercentage   int                  `json:"want_percentage"`
	Comparison       comparisonView       `json:"comparison"`
	TopCategories    []categoryAmountView `json:"top_categories"`
	DailyBreakdown   []dailyView          `json:"daily_breakdown"`
}

func newMonthlyReportView(r finance.MonthlyReport) monthlyReportView {
	daily := make([]dailyView, 0, len(r.DailyBreakdown))
	for _, d := range r.DailyBreakdown {
		daily = append(daily, dailyView{Date: formatDate(d.Date), Income: d.Income, Expense: d.Expense})
	}
	return monthlyReportView{
		Month:            r.Month,
		TotalIncome:      r.TotalIncome,
		TotalExpense:     r.TotalExpense,
		RemainingBalance: r.RemainingBalance,
		NeedPercentage:   r.NeedPercentage,
		WantPercentage:   r.WantPercentage,
		Comparison:       comparisonView(r.Comparison),
		TopCategories:    newCategoryAmountViews(r.TopCategories),
		DailyBreakdown:   daily,
	}
}

type monthBalanceView struct {
	Label string          `json:"label"`
	Month string          `json:"month"`
	Value decimal.Decimal `json:"value"`
}

type forecastView struct {
	CurrentBalance      decimal.Decimal `json:"current_balance"`
	AverageDailyExpense decimal.Decimal `json:"avg_daily_expense"`
	EstimatedEndOfMonth decimal.Decimal `json:"estimated_end_of_month"`
	SafeDaysRemaining   int             `json:"safe_days_remaining"`
	DaysLeftInMonth     int             `json:"days_left_in_month"`
	Projection          []pointView     `json:"projection"`
}

func newForecastView(f finance.Forecast) forecastView {
	v := forecastView{
		CurrentBalance:      f.CurrentBalance,
		AverageDailyExpense: f.AverageDailyExpense,
		EstimatedEndOfMonth: f.EstimatedEndOfMonth,
		SafeDaysRemaining:   f.SafeDaysRemaining,
		DaysLeftInMonth:     f.DaysLeftInMonth,
		Projection:          []pointView{},
	}
	if f.Projection != nil {
		for p := range f.Projection {
			v.Projection = append(v.Projection, pointView{Date: formatDate(p.Date), Balance: p.Balance})
		}
	}
	return v
}

type insightView struct {
	Type        string           `json:"type"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Trend       string           `json:"trend,omitempty"`
	Value       *int             `json:"value,omitempty"`
	Category    string           `json:"category,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
}

type reflectionView struct {
	Week              string          `json:"week"`
	TotalTransactions int             `json:"total_transactions"`
	WantTransactions  int             `json:"want_transactions"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	Message           string          `json:"message"`
}

type insightsView struct {
	Month            string         `json:"month"`
	Insights         []insightView  `json:"insights"`
	WeeklyReflection reflectionView `json:"weekly_reflection"`
}

func newInsightsView(in finance.Insights) insightsView {
	v := insightsView{
		Month:            in.Month,
		Insights:         make([]insightView, 0, len(in.Insights)),
		WeeklyReflection: reflectionView(in.WeeklyReflection),
	}
	for _, i := range in.Insights {
		iv := insightView{Type: i.Type, Title: i.Title, Description: i.Description, Trend: i.Trend, Category: i.Category}
		if i.Trend != "" {
			iv.Value = &i.Value
		}
		if i.Category != "" {
			iv.Amount = &i.Amount
		}
		v.Insights = append(v.Insights, iv)
	}
	return v
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}

// parseDate parses an optional YYYY-MM-DD value; empty yields the zero time.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.DateOnly, s)
}
