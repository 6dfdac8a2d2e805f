// Package service loads ledger rows through the repositories and runs the
// finance calculators over them. It is the only layer the API and bot call.
package service

import (
	"context"
	"time"

	"gitlab.com/yelinaung/finflow/internal/database"
	"gitlab.com/yelinaung/finflow/internal/finance"
	"gitlab.com/yelinaung/finflow/internal/models"
	"gitlab.com/yelinaung/finflow/internal/repository"
)

// Services bundles every service over one database handle.
type Services struct {
	Users        *UserService
	Categories   *CategoryService
	Accounts     *AccountService
	Transactions *TransactionService
	Budgets      *BudgetService
	Reports      *ReportService
}

// Options configures New.
type Options struct {
	// Clock supplies "now" in the users' timezone. Nil means time.Now.
	Clock finance.Clock
	// Palette colours new categories.
	Palette finance.Palette
	// DefaultCurrency is given to new users. Empty means models.DefaultCurrency.
	DefaultCurrency string
}

// New wires all services.
func New(db database.PGXDB, opts Options) *Services {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	categories := NewCategoryService(db, opts.Palette)
	return &Services{
		Users:        NewUserService(db, categories, opts.DefaultCurrency),
		Categories:   categories,
		Accounts:     NewAccountService(db, clock),
		Transactions: NewTransactionService(db, clock),
		Budgets:      NewBudgetService(db, clock),
		Reports:      NewReportService(db, clock),
	}
}

// currencyOf returns the user's display currency, falling back to the default
// when the user row is missing.
func currencyOf(ctx context.Context, users *repository.UserRepository, userID int64) string {
	user, err := users.GetUserByID(ctx, userID)
	if err != nil || user.DefaultCurrency == "" {
		return models.DefaultCurrency
	}
	return user.DefaultCurrency
}
