package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/finflow/internal/models"
)

func createUser(t *testing.T, tx pgx.Tx, id int64) *models.User {
	t.Helper()
	user := &models.User{ID: id, Username: "user", FirstName: "Test"}
	require.NoError(t, NewUserRepository(tx).UpsertUser(context.Background(), user))
	return user
}

func createCategory(t *testing.T, tx pgx.Tx, userID int64, txType models.TransactionType, name string) *models.Category {
	t.Helper()
	cat := &models.Category{UserID: userID, Name: name, Type: txType, Color: "#111111"}
	require.NoError(t, NewCategoryRepository(tx).Create(context.Background(), cat))
	return cat
}

func createAccount(t *testing.T, tx pgx.Tx, userID int64, name string, initial string) *models.Account {
	t.Helper()
	account := &models.Account{
		UserID:         userID,
		Name:           name,
		Type:           models.AccountBank,
		InitialBalance: decimal.RequireFromString(initial),
		IsActive:       true,
	}
	require.NoError(t, NewAccountRepository(tx).Create(context.Background(), account))
	return account
}

func createTransaction(t *testing.T, tx pgx.Tx, cat *models.Category, accountID *int, amount string, date time.Time) *models.Transaction {
	t.Helper()
	txn := &models.Transaction{
		UserID:     cat.UserID,
		CategoryID: cat.ID,
		AccountID:  accountID,
		Type:       cat.Type,
		Amount:     decimal.RequireFromString(amount),
		Date:       date,
	}
	require.NoError(t, NewTransactionRepository(tx).Create(context.Background(), txn))
	return txn
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
