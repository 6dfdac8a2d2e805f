package finance

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"gitlab.com/yelinaung/finflow/internal/models"
)

// refNow is Wednesday 21 October 2026, inside ISO week 43.
var refNow = time.Date(2026, time.October, 21, 15, 4, 5, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func requireDecimal(t require.TestingT, want string, got decimal.Decimal, msgAndArgs ...any) {
	require.True(t, got.Equal(dec(want)), append([]any{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func expense(amount string, on time.Time) models.Transaction {
	return models.Transaction{UserID: 1, Type: models.TypeExpense, Amount: dec(amount), Date: on, CategoryID: 1}
}

func income(amount string, on time.Time) models.Transaction {
	return models.Transaction{UserID: 1, Type: models.TypeIncome, Amount: dec(amount), Date: on, CategoryID: 2}
}

func withCategory(tx models.Transaction, id int, name, color string) models.Transaction {
	tx.CategoryID = id
	tx.Category = &models.Category{ID: id, Name: name, Color: color, Type: tx.Type}
	return tx
}

func withSpending(tx models.Transaction, st models.SpendingType) models.Transaction {
	tx.SpendingType = st
	return tx
}
