package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"gitlab.com/yelinaung/finflow/internal/config"
	"gitlab.com/yelinaung/finflow/internal/database"
	"gitlab.com/yelinaung/finflow/internal/finance"
	"gitlab.com/yelinaung/finflow/internal/models"
)

// fixedNow is Wednesday 21 October 2026.
var fixedNow = time.Date(2026, time.October, 21, 15, 4, 5, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

var testPalette = finance.Palette{Expense: config.DefaultExpensePalette, Income: config.DefaultIncomePalette}

type fixture struct {
	tx     pgx.Tx
	svc    *Services
	userID int64
}

// newFixture registers a user with the default categories inside a
// rolled-back transaction.
func newFixture(t *testing.T, userID int64) *fixture {
	t.Helper()
	tx := database.TestTx(t)
	svc := New(tx, Options{Clock: fixedClock, Palette: testPalette})
	require.NoError(t, svc.Users.Register(context.Background(), &models.User{ID: userID, Username: "tester"}))
	return &fixture{tx: tx, svc: svc, userID: userID}
}

func (f *fixture) account(t *testing.T, name, initial string) *models.Account {
	t.Helper()
	a := &models.Account{UserID: f.userID, Name: name, Type: models.AccountBank, InitialBalance: dec(initial)}
	require.NoError(t, f.svc.Accounts.Create(context.Background(), a))
	return a
}

func (f *fixture) category(t *testing.T, txType models.TransactionType, name string) *models.Category {
	t.Helper()
	cat, err := f.svc.Categories.FindByName(context.Background(), f.userID, txType, name)
	require.NoError(t, err)
	return cat
}

func (f *fixture) record(t *testing.T, cat *models.Category, amount string, on time.Time, opts ...func(*models.Transaction)) *models.Transaction {
	t.Helper()
	tx := &models.Transaction{UserID: f.userID, CategoryID: cat.ID, Type: cat.Type, Amount: dec(amount), Date: on}
	for _, opt := range opts {
		opt(tx)
	}
	require.NoError(t, f.svc.Transactions.Record(context.Background(), tx))
	return tx
}

func onAccount(id int) func(*models.Transaction) {
	return func(tx *models.Transaction) { tx.AccountID = &id }
}

func spending(st models.SpendingType) func(*models.Transaction) {
	return func(tx *models.Transaction) { tx.SpendingType = st }
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, got.Equal(dec(want)), "want %s, got %s", want, got.String())
}
