package finance

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gitlab.com/yelinaung/finflow/internal/models"
)

func TestValidateTransfer(t *testing.T) {
	t.Parallel()
	a := models.Account{ID: 1, Name: "Bank"}
	b := models.Account{ID: 2, Name: "Wallet"}

	t.Run("accepts distinct accounts and a positive amount", func(t *testing.T) {
		require.NoError(t, ValidateTransfer(a, b, dec("0.01")))
	})

	t.Run("rejects the same account", func(t *testing.T) {
		require.ErrorIs(t, ValidateTransfer(a, a, dec("10")), ErrSameAccount)
	})

	t.Run("rejects zero and negative amounts", func(t *testing.T) {
		require.ErrorIs(t, ValidateTransfer(a, b, dec("0")), ErrNonPositiveAmount)
		require.ErrorIs(t, ValidateTransfer(a, b, dec("-5")), ErrNonPositiveAmount)
	})

	t.Run("checks the account before the amount", func(t *testing.T) {
		require.ErrorIs(t, ValidateTransfer(a, a, dec("0")), ErrSameAccount)
	})
}

func TestTransferNotes(t *testing.T) {
	t.Parallel()
	from := models.Account{Name: "Bank"}
	to := models.Account{Name: "Savings"}

	t.Run("references the counterpart account", func(t *testing.T) {
		out, in := TransferNotes(from, to, "rent")
		require.Equal(t, "Transfer to Savings: rent", out)
		require.Equal(t, "Transfer from Bank: rent", in)
	})

	t.Run("defaults a blank note", func(t *testing.T) {
		out, in := TransferNotes(from, to, "  ")
		require.Equal(t, "Transfer to Savings: Transfer", out)
		require.Equal(t, "Transfer from Bank: Transfer", in)
	})
}

func TestResolveTransferCategory(t *testing.T) {
	t.Parallel()
	categories := []models.Category{
		{ID: 5, Name: "Food", Type: models.TypeExpense},
		{ID: 3, Name: "Bills", Type: models.TypeExpense},
		{ID: 9, Name: "other", Type: models.TypeExpense},
		{ID: 12, Name: "Salary", Type: models.TypeIncome},
		{ID: 11, Name: "Bonus", Type: models.TypeIncome},
	}

	t.Run("prefers the Other category of the type", func(t *testing.T) {
		c, err := ResolveTransferCategory(categories, models.TypeExpense)
		require.NoError(t, err)
		require.Equal(t, 9, c.ID)
	})

	t.Run("falls back to the lowest id of the type", func(t *testing.T) {
		c, err := ResolveTransferCategory(categories, models.TypeIncome)
		require.NoError(t, err)
		require.Equal(t, 11, c.ID)
	})

	t.Run("fails when no category of the type exists", func(t *testing.T) {
		_, err := ResolveTransferCategory(categories[:3], models.TypeIncome)
		require.ErrorIs(t, err, ErrNoCategory)
	})
}

func TestPaletteColor(t *testing.T) {
	t.Parallel()
	p := Palette{
		Expense: []string{"#111111", "#222222", "#333333"},
		Income:  []string{"#aaaaaa", "#bbbbbb"},
	}

	t.Run("cycles through the type's palette", func(t *testing.T) {
		require.Equal(t, "#111111", p.Color(models.TypeExpense, 0))
		require.Equal(t, "#333333", p.Color(models.TypeExpense, 2))
		require.Equal(t, "#111111", p.Color(models.TypeExpense, 3))
		require.Equal(t, "#bbbbbb", p.Color(models.TypeIncome, 5))
	})

	t.Run("returns nothing for an empty palette", func(t *testing.T) {
		require.Empty(t, Palette{}.Color(models.TypeIncome, 1))
	})
}
