package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/finflow/internal/database"
	"gitlab.com/yelinaung/finflow/internal/models"
)

// AccountRepository handles account database operations.
type AccountRepository struct {
	db database.PGXDB
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db database.PGXDB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, user_id, name, type, initial_balance, currency,
	COALESCE(icon, ''), COALESCE(color, ''), is_active, created_at, updated_at`

// Create adds a new account.
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	if account.Currency == "" {
		account.Currency = models.DefaultCurrency
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO accounts (user_id, name, type, initial_balance, currency, icon, color, is_active)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8)
		RETURNING id, created_at, updated_at
	`, account.UserID, account.Name, account.Type, account.InitialBalance, account.Currency,
		account.Icon, account.Color, account.IsActive,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// GetByID retrieves one of the user's accounts.
func (r *AccountRepository) GetByID(ctx context.Context, userID int64, id int) (*models.Account, error) {
	account, err := scanAccount(r.db.QueryRow(ctx, `
		SELECT `+accountColumns+` FROM accounts WHERE user_id = $1 AND id = $2
	`, userID, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", notFound(err))
	}
	return &account, nil
}

// GetByUser retrieves the user's accounts in creation order.
func (r *AccountRepository) GetByUser(ctx context.Context, userID int64) ([]models.Account, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+accountColumns+` FROM accounts WHERE user_id = $1 ORDER BY id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}
	return accounts, nil
}

// Update rewrites one of the user's accounts.
func (r *AccountRepository) Update(ctx context.Context, account *models.Account) error {
	err := r.db.QueryRow(ctx, `
		UPDATE accounts SET
			name = $3,
			type = $4,
			initial_balance = $5,
			currency = $6,
			icon = NULLIF($7, ''),
			color = NULLIF($8, ''),
			is_active = $9,
			updated_at = NOW()
		WHERE user_id = $1 AND id = $2
		RETURNING created_at, updated_at
	`, account.UserID, account.ID, account.Name, account.Type, account.InitialBalance, account.Currency,
		account.Icon, account.Color, account.IsActive,
	).Scan(&account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", notFound(err))
	}
	return nil
}

// Totals sums the income and expense transactions booked on an account.
func (r *AccountRepository) Totals(ctx context.Context, accountID int) (income, expense decimal.Decimal, err error) {
	err = r.db.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'income'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'expense'), 0)
		FROM transactions WHERE account_id = $1
	`, accountID).Scan(&income, &expense)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to sum account transactions: %w", err)
	}
	return income, expense, nil
}

// HasTransactions reports whether any transaction references the account.
func (r *AccountRepository) HasTransactions(ctx context.Context, accountID int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM transactions WHERE account_id = $1)
	`, accountID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check account transactions: %w", err)
	}
	return exists, nil
}

// Delete removes one of the user's accounts.
func (r *AccountRepository) Delete(ctx context.Context, userID int64, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM accounts WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to delete account: %w", ErrNotFound)
	}
	return nil
}

func scanAccount(row interface{ Scan(dest ...any) error }) (models.Account, error) {
	var a models.Account
	if err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &a.InitialBalance, &a.Currency,
		&a.Icon, &a.Color, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return models.Account{}, fmt.Errorf("failed to scan account: %w", err)
	}
	return a, nil
}
