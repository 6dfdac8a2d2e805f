package service

import (
	"context"
	"slices"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"gitlab.com/yelinaung/finflow/internal/finance"
	"gitlab.com/yelinaung/finflow/internal/models"
	"gitlab.com/yelinaung/finflow/internal/repository"
)

func TestAccountService_Create(t *testing.T) {
	f := newFixture(t, 7001)
	ctx := context.Background()

	t.Run("stores a valid account", func(t *testing.T) {
		a := &models.Account{UserID: f.userID, Name: "  BCA ", Type: models.AccountBank, InitialBalance: dec("100.005"), Currency: "idr"}
		require.NoError(t, f.svc.Accounts.Create(ctx, a))
		require.NotZero(t, a.ID)
		require.Equal(t, "BCA", a.Name)
		require.Equal(t, "IDR", a.Currency)
		requireDecimal(t, "100.01", a.InitialBalance)
		require.True(t, a.IsActive)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		tests := []struct {
			name    string
			account models.Account
		}{
			{"empty name", models.Account{Name: " ", Type: models.AccountCash}},
			{"unknown type", models.Account{Name: "Piggy", Type: "piggybank"}},
			{"bad currency", models.Account{Name: "Cash", Type: models.AccountCash, Currency: "RUPIAH"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				a := tt.account
				a.UserID = f.userID
				require.ErrorIs(t, f.svc.Accounts.Create(ctx, &a), ErrInvalidInput)
			})
		}
	})
}

func TestAccountService_Balance(t *testing.T) {
	f := newFixture(t, 7002)
	ctx := context.Background()

	account := f.account(t, "BCA", "1000000")
	f.record(t, f.category(t, models.TypeIncome, "Salary"), "250000", day(2026, 10, 1), onAccount(account.ID))
	f.record(t, f.category(t, models.TypeExpense, "Food"), "50000", day(2026, 10, 2), onAccount(account.ID))
	f.record(t, f.category(t, models.TypeExpense, "Food"), "9999", day(2026, 10, 2))

	t.Run("derives balance from initial balance and transactions", func(t *testing.T) {
		bal, err := f.svc.Accounts.Balance(ctx, f.userID, account.ID)
		require.NoError(t, err)
		requireDecimal(t, "1200000", bal.Balance)
	})

	t.Run("lists accounts with balances", func(t *testing.T) {
		f.account(t, "Wallet", "20000")
		list, err := f.svc.Accounts.List(ctx, f.userID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		requireDecimal(t, "1200000", list[0].Balance)
		requireDecimal(t, "20000", list[1].Balance)
	})

	t.Run("unknown account is not found", func(t *testing.T) {
		_, err := f.svc.Accounts.Balance(ctx, f.userID, account.ID+1000)
		require.ErrorIs(t, err, ErrNotFound)

		_, err = f.svc.Accounts.Balance(ctx, f.userID+1, account.ID)
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestAccountService_History(t *testing.T) {
	f := newFixture(t, 7003)
	ctx := context.Background()

	account := f.account(t, "BCA", "100")
	food := f.category(t, models.TypeExpense, "Food")
	salary := f.category(t, models.TypeIncome, "Salary")
	f.record(t, salary, "50", day(2026, 9, 1), onAccount(account.ID))
	f.record(t, food, "30", day(2026, 10, 20), onAccount(account.ID))
	f.record(t, food, "5", day(2026, 10, 25), onAccount(account.ID))

	t.Run("ends at today's balance and ignores future entries", func(t *testing.T) {
		seq, err := f.svc.Accounts.History(ctx, f.userID, account.ID, 7)
		require.NoError(t, err)

		points := slices.Collect(seq)
		require.Len(t, points, 8)
		require.Equal(t, day(2026, 10, 14), points[0].Date)
		requireDecimal(t, "150", points[0].Balance)
		require.Equal(t, day(2026, 10, 21), points[7].Date)
		requireDecimal(t, "120", points[7].Balance)
	})

	t.Run("defaults to thirty days", func(t *testing.T) {
		seq, err := f.svc.Accounts.History(ctx, f.userID, account.ID, 0)
		require.NoError(t, err)
		require.Len(t, slices.Collect(seq), DefaultHistoryDays+1)
	})

	t.Run("rejects oversized windows", func(t *testing.T) {
		_, err := f.svc.Accounts.History(ctx, f.userID, account.ID, MaxHistoryDays+1)
		require.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestAccountService_Delete(t *testing.T) {
	f := newFixture(t, 7004)
	ctx := context.Background()

	t.Run("deletes an unused account", func(t *testing.T) {
		a := f.account(t, "Old", "0")
		require.NoError(t, f.svc.Accounts.Delete(ctx, f.userID, a.ID))

		_, err := f.svc.Accounts.Balance(ctx, f.userID, a.ID)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("refuses an account with transactions", func(t *testing.T) {
		a := f.account(t, "Busy", "0")
		f.record(t, f.category(t, models.TypeExpense, "Food"), "1", day(2026, 10, 1), onAccount(a.ID))

		require.ErrorIs(t, f.svc.Accounts.Delete(ctx, f.userID, a.ID), ErrAccountInUse)
	})

	t.Run("unknown account is not found", func(t *testing.T) {
		require.ErrorIs(t, f.svc.Accounts.Delete(ctx, f.userID, 987654), ErrNotFound)
	})
}

func TestAccountService_Transfer(t *testing.T) {
	ctx := context.Background()

	t.Run("moves money between accounts", func(t *testing.T) {
		f := newFixture(t, 7101)
		a := f.account(t, "A", "1000000")
		b := f.account(t, "B", "500000")

		res, err := f.svc.Accounts.Transfer(ctx, TransferRequest{
			UserID:        f.userID,
			FromAccountID: a.ID,
			ToAccountID:   b.ID,
			Amount:        dec("200000"),
			Note:          "rent share",
		})
		require.NoError(t, err)
		requireDecimal(t, "800000", res.FromBalance)
		requireDecimal(t, "700000", res.ToBalance)

		require.Equal(t, models.TypeExpense, res.Outgoing.Type)
		require.Equal(t, models.TypeIncome, res.Incoming.Type)
		require.Equal(t, "Transfer to B: rent share", res.Outgoing.Note)
		require.Equal(t, "Transfer from A: rent share", res.Incoming.Note)
		require.Equal(t, day(2026, 10, 21), res.Outgoing.Date)
		require.Equal(t, res.Outgoing.Date, res.Incoming.Date)
		require.Equal(t, models.OtherCategoryName, res.Outgoing.Category.Name)
		require.Equal(t, models.OtherCategoryName, res.Incoming.Category.Name)

		page, err := f.svc.Transactions.List(ctx, ListQuery{TransactionFilter: repository.TransactionFilter{UserID: f.userID}})
		require.NoError(t, err)
		require.Equal(t, 2, page.Pagination.Total)

		bal, err := f.svc.Accounts.Balance(ctx, f.userID, a.ID)
		require.NoError(t, err)
		requireDecimal(t, "800000", bal.Balance)
	})

	t.Run("uses the default note and given date", func(t *testing.T) {
		f := newFixture(t, 7102)
		a := f.account(t, "A", "10")
		b := f.account(t, "B", "0")

		res, err := f.svc.Accounts.Transfer(ctx, TransferRequest{
			UserID: f.userID, FromAccountID: a.ID, ToAccountID: b.ID, Amount: dec("5"), Date: day(2026, 10, 1),
		})
		require.NoError(t, err)
		require.Equal(t, "Transfer to B: Transfer", res.Outgoing.Note)
		require.Equal(t, day(2026, 10, 1), res.Incoming.Date)
	})

	t.Run("rejects same account and non-positive amounts before writing", func(t *testing.T) {
		f := newFixture(t, 7103)
		a := f.account(t, "A", "10")
		b := f.account(t, "B", "0")

		_, err := f.svc.Accounts.Transfer(ctx, TransferRequest{UserID: f.userID, FromAccountID: a.ID, ToAccountID: a.ID, Amount: dec("1")})
		require.ErrorIs(t, err, finance.ErrSameAccount)

		_, err = f.svc.Accounts.Transfer(ctx, TransferRequest{UserID: f.userID, FromAccountID: a.ID, ToAccountID: b.ID, Amount: dec("0")})
		require.ErrorIs(t, err, finance.ErrNonPositiveAmount)

		_, err = f.svc.Accounts.Transfer(ctx, TransferRequest{UserID: f.userID, FromAccountID: a.ID, ToAccountID: b.ID, Amount: dec("-3")})
		require.ErrorIs(t, err, finance.ErrNonPositiveAmount)

		all, err := f.svc.Transactions.All(ctx, f.userID)
		require.NoError(t, err)
		require.Empty(t, all)
	})

	t.Run("writes nothing when a category is missing", func(t *testing.T) {
		f := newFixture(t, 7104)
		a := f.account(t, "A", "10")
		b := f.account(t, "B", "0")
		_, err := f.tx.Exec(ctx, `DELETE FROM categories WHERE user_id = $1 AND type = 'income'`, f.userID)
		require.NoError(t, err)

		_, err = f.svc.Accounts.Transfer(ctx, TransferRequest{UserID: f.userID, FromAccountID: a.ID, ToAccountID: b.ID, Amount: dec("5")})
		require.ErrorIs(t, err, finance.ErrNoCategory)

		all, err := f.svc.Transactions.All(ctx, f.userID)
		require.NoError(t, err)
		require.Empty(t, all)

		bal, err := f.svc.Accounts.Balance(ctx, f.userID, a.ID)
		require.NoError(t, err)
		requireDecimal(t, "10", bal.Balance)
	})

	t.Run("rolls back the outgoing leg when the incoming leg fails", func(t *testing.T) {
		f := newFixture(t, 7107)
		a := f.account(t, "A", "1000000")
		b := f.account(t, "B", "500000")
		_, err := f.tx.Exec(ctx, `
			ALTER TABLE transactions ADD CONSTRAINT reject_incoming_transfer
			CHECK (type <> 'income' OR note NOT LIKE 'Transfer from %') NOT VALID
		`)
		require.NoError(t, err)

		_, err = f.svc.Accounts.Transfer(ctx, TransferRequest{UserID: f.userID, FromAccountID: a.ID, ToAccountID: b.ID, Amount: dec("200000")})
		require.ErrorContains(t, err, "record incoming leg")
		var pgErr *pgconn.PgError
		require.ErrorAs(t, err, &pgErr)
		require.Equal(t, "23514", pgErr.Code)

		all, err := f.svc.Transactions.All(ctx, f.userID)
		require.NoError(t, err)
		require.Empty(t, all)

		from, err := f.svc.Accounts.Balance(ctx, f.userID, a.ID)
		require.NoError(t, err)
		requireDecimal(t, "1000000", from.Balance)
		to, err := f.svc.Accounts.Balance(ctx, f.userID, b.ID)
		require.NoError(t, err)
		requireDecimal(t, "500000", to.Balance)
	})

	t.Run("rejects another user's account", func(t *testing.T) {
		f := newFixture(t, 7105)
		a := f.account(t, "A", "10")
		other := &models.Account{UserID: 7106, Name: "Theirs", Type: models.AccountCash}
		require.NoError(t, f.svc.Users.Register(ctx, &models.User{ID: 7106}))
		require.NoError(t, f.svc.Accounts.Create(ctx, other))

		_, err := f.svc.Accounts.Transfer(ctx, TransferRequest{UserID: f.userID, FromAccountID: a.ID, ToAccountID: other.ID, Amount: dec("5")})
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestAccountService_Update(t *testing.T) {
	f := newFixture(t, 7120)
	ctx := context.Background()
	food := f.category(t, models.TypeExpense, "Food")

	t.Run("changes the initial balance and recomputes the current one", func(t *testing.T) {
		a := f.account(t, "BCA", "1000")
		f.record(t, food, "300", day(2026, 10, 5), onAccount(a.ID))

		name := " BCA Main "
		initial := dec("5000")
		color := "#0D9488"
		inactive := false
		got, err := f.svc.Accounts.Update(ctx, f.userID, a.ID, AccountChanges{
			Name:           &name,
			InitialBalance: &initial,
			Color:          &color,
			IsActive:       &inactive,
		})
		require.NoError(t, err)
		require.Equal(t, "BCA Main", got.Account.Name)
		require.Equal(t, models.AccountBank, got.Account.Type)
		require.False(t, got.Account.IsActive)
		requireDecimal(t, "4700", got.Balance)

		bal, err := f.svc.Accounts.Balance(ctx, f.userID, a.ID)
		require.NoError(t, err)
		requireDecimal(t, "4700", bal.Balance)
		require.Equal(t, "#0D9488", bal.Account.Color)
	})

	t.Run("rejects invalid changes", func(t *testing.T) {
		a := f.account(t, "Wallet", "10")
		blank := "  "
		badType := models.AccountType("mattress")
		badColor := "teal"
		negative := dec("-1")
		tests := []struct {
			name    string
			changes AccountChanges
		}{
			{"blank name", AccountChanges{Name: &blank}},
			{"unknown type", AccountChanges{Type: &badType}},
			{"non-hex colour", AccountChanges{Color: &badColor}},
			{"negative initial balance", AccountChanges{InitialBalance: &negative}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := f.svc.Accounts.Update(ctx, f.userID, a.ID, tt.changes)
				require.ErrorIs(t, err, ErrInvalidInput)
			})
		}
	})

	t.Run("unknown account is not found", func(t *testing.T) {
		_, err := f.svc.Accounts.Update(ctx, f.userID, 424242, AccountChanges{})
		require.ErrorIs(t, err, ErrNotFound)
	})
}
