package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"gitlab.com/yelinaung/finflow/internal/database"
	"gitlab.com/yelinaung/finflow/internal/finance"
	"gitlab.com/yelinaung/finflow/internal/models"
	"gitlab.com/yelinaung/finflow/internal/repository"
)

// OverallBudgetName names a budget that covers every expense category.
const OverallBudgetName = "All expenses"

// BudgetService creates budgets and evaluates them against the ledger.
type BudgetService struct {
	clock        finance.Clock
	budgets      *repository.BudgetRepository
	categories   *repository.CategoryRepository
	transactions *repository.TransactionRepository
	users        *repository.UserRepository
}

// NewBudgetService creates a BudgetService.
func NewBudgetService(db database.PGXDB, clock finance.Clock) *BudgetService {
	return &BudgetService{
		clock:        clock,
		budgets:      repository.NewBudgetRepository(db),
		categories:   repository.NewCategoryRepository(db),
		transactions: repository.NewTransactionRepository(db),
		users:        repository.NewUserRepository(db),
	}
}

// Create validates and stores an active budget. An empty period means
// monthly, a zero threshold means the default and an empty name is derived
// from the category.
func (s *BudgetService) Create(ctx context.Context, b *models.Budget) error {
	if err := s.prepare(ctx, b); err != nil {
		return err
	}
	b.IsActive = true
	return s.budgets.Create(ctx, b)
}

func (s *BudgetService) prepare(ctx context.Context, b *models.Budget) error {
	b.Amount = finance.Round2(b.Amount)
	if !b.Amount.IsPositive() {
		return fmt.Errorf("budget amount: %w", finance.ErrNonPositiveAmount)
	}
	if b.Period == "" {
		b.Period = models.PeriodMonthly
	}
	if !b.Period.Valid() {
		return invalid("unknown budget period %q", b.Period)
	}
	if b.AlertThreshold == 0 {
		b.AlertThreshold = models.DefaultAlertThreshold
	}
	if b.AlertThreshold < 1 || b.AlertThreshold > 100 {
		return invalid("alert threshold must be between 1 and 100")
	}

	b.Name = strings.TrimSpace(b.Name)
	b.Category = nil
	if b.CategoryID != nil {
		cat, err := s.categories.GetByID(ctx, b.UserID, *b.CategoryID)
		if err != nil {
			return fmt.Errorf("category: %w", translate(err))
		}
		if cat.Type != models.TypeExpense {
			return invalid("budgets can only track expense categories")
		}
		b.Category = cat
		if b.Name == "" {
			b.Name = cat.Name
		}
	}
	if b.Name == "" {
		b.Name = OverallBudgetName
	}

	if b.StartDate.IsZero() {
		b.StartDate = finance.CurrentWindow(b.Period, s.clock()).Start
	}
	b.StartDate = finance.Day(b.StartDate)
	if b.EndDate != nil {
		end := finance.Day(*b.EndDate)
		if end.Before(b.StartDate) {
			return invalid("end date must not be before start date")
		}
		b.EndDate = &end
	}
	return nil
}

// BudgetChanges lists the fields of a budget to change. Nil fields keep
// their stored value.
type BudgetChanges struct {
	CategoryID     *int
	Name           *string
	Amount         *decimal.Decimal
	Period         *models.BudgetPeriod
	StartDate      *time.Time
	EndDate        *time.Time
	AlertThreshold *int
	IsActive       *bool
}

// Update applies ch to one of the user's budgets with the same checks as
// Create and returns the budget evaluated for the current period.
func (s *BudgetService) Update(ctx context.Context, userID int64, budgetID int, ch BudgetChanges) (finance.BudgetStatus, error) {
	b, err := s.budgets.GetByID(ctx, userID, budgetID)
	if err != nil {
		return finance.BudgetStatus{}, translate(err)
	}
	if ch.CategoryID != nil {
		b.CategoryID = ch.CategoryID
	}
	if ch.Name != nil {
		b.Name = *ch.Name
	}
	if ch.Amount != nil {
		b.Amount = *ch.Amount
	}
	if ch.Period != nil {
		b.Period = *ch.Period
	}
	if ch.StartDate != nil {
		b.StartDate = *ch.StartDate
	}
	if ch.EndDate != nil {
		b.EndDate = ch.EndDate
	}
	if ch.AlertThreshold != nil {
		b.AlertThreshold = *ch.AlertThreshold
		if b.AlertThreshold == 0 {
			return finance.BudgetStatus{}, invalid("alert threshold must be between 1 and 100")
		}
	}
	if ch.IsActive != nil {
		b.IsActive = *ch.IsActive
	}

	if err := s.prepare(ctx, b); err != nil {
		return finance.BudgetStatus{}, err
	}
	if err := s.budgets.Update(ctx, b); err != nil {
		return finance.BudgetStatus{}, translate(err)
	}
	return s.Progress(ctx, userID, b.ID)
}

// Statuses evaluates every active budget of the user for the current period.
func (s *BudgetService) Statuses(ctx context.Context, userID int64) (_ []finance.BudgetStatus, err error) {
	ctx, span := startSpan(ctx, "BudgetService.Statuses", userID)
	defer func() { endSpan(span, err) }()

	budgets, err := s.budgets.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	w, ok := finance.CoveringWindow(budgets, now)
	if !ok {
		return []finance.BudgetStatus{}, nil
	}
	txs, err := s.transactions.GetByUserAndDateRange(ctx, userID, w.Start, w.End)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("budgets", len(budgets)), attribute.Int("transactions", len(txs)))
	return finance.EvaluateAll(budgets, txs, now), nil
}

// Progress evaluates a single budget for the current period.
func (s *BudgetService) Progress(ctx context.Context, userID int64, budgetID int) (finance.BudgetStatus, error) {
	b, err := s.budgets.GetByID(ctx, userID, budgetID)
	if err != nil {
		return finance.BudgetStatus{}, translate(err)
	}
	now := s.clock()
	w := finance.CurrentWindow(b.Period, now)
	txs, err := s.transactions.GetByUserAndDateRange(ctx, userID, w.Start, w.End)
	if err != nil {
		return finance.BudgetStatus{}, err
	}
	return finance.Evaluate(*b, finance.SpentAmount(*b, txs, w), now), nil
}

// Summary aggregates the user's active budgets.
func (s *BudgetService) Summary(ctx context.Context, userID int64) (finance.BudgetSummary, error) {
	statuses, err := s.Statuses(ctx, userID)
	if err != nil {
		return finance.BudgetSummary{}, err
	}
	return finance.Summarize(statuses), nil
}

// Alerts lists the user's exceeded and over-threshold budgets, with messages
// in the user's currency.
func (s *BudgetService) Alerts(ctx context.Context, userID int64) ([]finance.Alert, error) {
	statuses, err := s.Statuses(ctx, userID)
	if err != nil {
		return nil, err
	}
	alerts := finance.Alerts(statuses, currencyOf(ctx, s.users, userID))
	for _, a := range alerts {
		budgetAlertsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("type", a.Type)))
	}
	return alerts, nil
}

// Performance reports the user's budgets of one period kind.
func (s *BudgetService) Performance(ctx context.Context, userID int64, period models.BudgetPeriod) ([]finance.PerformanceEntry, error) {
	if period == "" {
		period = models.PeriodMonthly
	}
	if !period.Valid() {
		return nil, invalid("unknown budget period %q", period)
	}
	statuses, err := s.Statuses(ctx, userID)
	if err != nil {
		return nil, err
	}
	return finance.Performance(statuses, period), nil
}

// Deactivate stops evaluating a budget without deleting it.
func (s *BudgetService) Deactivate(ctx context.Context, userID int64, budgetID int) error {
	return translate(s.budgets.SetActive(ctx, userID, budgetID, false))
}

// Delete removes a budget.
func (s *BudgetService) Delete(ctx context.Context, userID int64, budgetID int) error {
	return translate(s.budgets.Delete(ctx, userID, budgetID))
}
