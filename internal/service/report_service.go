package service

import (
	"context"

	"gitlab.com/yelinaung/finflow/internal/database"
	"gitlab.com/yelinaung/finflow/internal/finance"
	"gitlab.com/yelinaung/finflow/internal/repository"
)

// Bounds of the portfolio balance history.
const (
	DefaultHistoryMonths = 6
	MaxHistoryMonths     = 24
)

// ReportService builds dashboards, reports, forecasts and insights.
type ReportService struct {
	clock        finance.Clock
	transactions *repository.TransactionRepository
	users        *repository.UserRepository
}

// NewReportService creates a ReportService.
func NewReportService(db database.PGXDB, clock finance.Clock) *ReportService {
	return &ReportService{
		clock:        clock,
		transactions: repository.NewTransactionRepository(db),
		users:        repository.NewUserRepository(db),
	}
}

func (s *ReportService) lifetime(ctx context.Context, userID int64) (finance.Totals, error) {
	income, expense, err := s.transactions.TotalsByUser(ctx, userID)
	if err != nil {
		return finance.Totals{}, err
	}
	return finance.Totals{Income: income, Expense: expense}, nil
}

// Dashboard returns the overview of the current month.
func (s *ReportService) Dashboard(ctx context.Context, userID int64) (_ finance.Dashboard, err error) {
	ctx, span := startSpan(ctx, "ReportService.Dashboard", userID)
	defer func() { endSpan(span, err) }()

	now := s.clock()
	lifetime, err := s.lifetime(ctx, userID)
	if err != nil {
		return finance.Dashboard{}, err
	}
	w := finance.MonthWindow(now)
	txs, err := s.transactions.GetByUserAndDateRange(ctx, userID, w.Start, w.End)
	if err != nil {
		return finance.Dashboard{}, err
	}
	return finance.BuildDashboard(lifetime, txs, now), nil
}

// MonthlyReport returns the report for month (YYYY-MM); empty means the
// current month.
func (s *ReportService) MonthlyReport(ctx context.Context, userID int64, month string) (_ finance.MonthlyReport, err error) {
	ctx, span := startSpan(ctx, "ReportService.MonthlyReport", userID)
	defer func() { endSpan(span, err) }()

	if month == "" {
		month = finance.MonthKey(s.clock())
	}
	start, err := finance.ParseMonthKey(month)
	if err != nil {
		return finance.MonthlyReport{}, invalid("month must be YYYY-MM")
	}
	txs, err := s.transactions.GetByUserAndDateRange(ctx, userID, start.AddDate(0, -1, 0), start.AddDate(0, 1, -1))
	if err != nil {
		return finance.MonthlyReport{}, err
	}
	return finance.BuildMonthlyReport(txs, month)
}

// BalanceHistory returns the user's cumulative net at the end of each of the
// trailing months. months <= 0 means DefaultHistoryMonths.
func (s *ReportService) BalanceHistory(ctx context.Context, userID int64, months int) ([]finance.MonthBalance, error) {
	if months <= 0 {
		months = DefaultHistoryMonths
	}
	if months > MaxHistoryMonths {
		return nil, invalid("months must be at most %d", MaxHistoryMonths)
	}
	today := finance.Day(s.clock())
	txs, err := s.transactions.GetAllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return finance.MonthlyBalanceHistory(txs, months, today), nil
}

// Forecast projects the user's balance from lifetime totals and the
// trailing 30 days of expenses.
func (s *ReportService) Forecast(ctx context.Context, userID int64) (_ finance.Forecast, err error) {
	ctx, span := startSpan(ctx, "ReportService.Forecast", userID)
	defer func() { endSpan(span, err) }()

	now := s.clock()
	lifetime, err := s.lifetime(ctx, userID)
	if err != nil {
		return finance.Forecast{}, err
	}
	w := finance.TrailingWindow(now)
	trailing, err := s.transactions.SumExpensesBetween(ctx, userID, w.Start, w.End)
	if err != nil {
		return finance.Forecast{}, err
	}
	return finance.BuildForecast(finance.ForecastInput{Lifetime: lifetime, TrailingExpense: trailing}, now), nil
}

// Insights returns the observations for month (YYYY-MM) and the current
// week's reflection; empty month means the current month.
func (s *ReportService) Insights(ctx context.Context, userID int64, month string) (_ finance.Insights, err error) {
	ctx, span := startSpan(ctx, "ReportService.Insights", userID)
	defer func() { endSpan(span, err) }()

	now := s.clock()
	if month == "" {
		month = finance.MonthKey(now)
	}
	w, err := finance.InsightWindow(month, now)
	if err != nil {
		return finance.Insights{}, invalid("month must be YYYY-MM")
	}
	txs, err := s.transactions.GetByUserAndDateRange(ctx, userID, w.Start, w.End)
	if err != nil {
		return finance.Insights{}, err
	}
	return finance.BuildInsights(txs, month, now, currencyOf(ctx, s.users, userID))
}

// CategoryBreakdown returns the month's expenses by category, largest first.
// limit <= 0 returns every category.
func (s *ReportService) CategoryBreakdown(ctx context.Context, userID int64, month string, limit int) ([]finance.CategoryAmount, error) {
	if month == "" {
		month = finance.MonthKey(s.clock())
	}
	start, err := finance.ParseMonthKey(month)
	if err != nil {
		return nil, invalid("month must be YYYY-MM")
	}
	txs, err := s.transactions.GetByUserAndDateRange(ctx, userID, start, start.AddDate(0, 1, -1))
	if err != nil {
		return nil, err
	}
	return finance.CategoryBreakdown(txs, month, limit), nil
}

// Currency returns the user's display currency.
func (s *ReportService) Currency(ctx context.Context, userID int64) string {
	return currencyOf(ctx, s.users, userID)
}
