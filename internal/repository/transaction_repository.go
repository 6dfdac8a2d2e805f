package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/finflow/internal/database"
	"gitlab.com/yelinaung/finflow/internal/models"
)

// TransactionRepository handles ledger database operations.
type TransactionRepository struct {
	db database.PGXDB
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db database.PGXDB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// TransactionFilter narrows a listing. Zero values mean "any".
type TransactionFilter struct {
	UserID       int64
	Type         models.TransactionType
	CategoryID   *int
	AccountID    *int
	SpendingType models.SpendingType
	StartDate    *time.Time
	EndDate      *time.Time
	// Month restricts to one YYYY-MM calendar month.
	Month  string
	Limit  int
	Offset int
}

const transactionSelect = `
	SELECT t.id, t.user_id, t.category_id, t.account_id, t.type, t.amount, t.transaction_date,
	       COALESCE(t.note, ''), COALESCE(t.spending_type, ''), t.created_at, t.updated_at,
	       c.id, c.user_id, c.name, c.type, c.color, c.is_default, c.created_at
	FROM transactions t
	JOIN categories c ON c.id = t.category_id`

// Create inserts a transaction.
func (r *TransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO transactions (user_id, category_id, account_id, type, amount, transaction_date, note, spending_type)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''))
		RETURNING id, created_at, updated_at
	`, tx.UserID, tx.CategoryID, tx.AccountID, tx.Type, tx.Amount, tx.Date, tx.Note, string(tx.SpendingType),
	).Scan(&tx.ID, &tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// GetByID retrieves one of the user's transactions with its category.
func (r *TransactionRepository) GetByID(ctx context.Context, userID int64, id int) (*models.Transaction, error) {
	rows, err := r.db.Query(ctx, transactionSelect+` WHERE t.user_id = $1 AND t.id = $2`, userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	defer rows.Close()

	txs, err := scanTransactions(rows)
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, fmt.Errorf("failed to get transaction: %w", ErrNotFound)
	}
	return &txs[0], nil
}

// Update rewrites one of the user's transactions.
func (r *TransactionRepository) Update(ctx context.Context, tx *models.Transaction) error {
	err := r.db.QueryRow(ctx, `
		UPDATE transactions SET
			category_id = $3,
			account_id = $4,
			type = $5,
			amount = $6,
			transaction_date = $7,
			note = NULLIF($8, ''),
			spending_type = NULLIF($9, ''),
			updated_at = NOW()
		WHERE user_id = $1 AND id = $2
		RETURNING created_at, updated_at
	`, tx.UserID, tx.ID, tx.CategoryID, tx.AccountID, tx.Type, tx.Amount, tx.Date, tx.Note, string(tx.SpendingType),
	).Scan(&tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", notFound(err))
	}
	return nil
}

// Delete removes one of the user's transactions.
func (r *TransactionRepository) Delete(ctx context.Context, userID int64, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM transactions WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to delete transaction: %w", ErrNotFound)
	}
	return nil
}

func (f TransactionFilter) where() (string, []any) {
	clauses := []string{"t.user_id = $1"}
	args := []any{f.UserID}
	add := func(clause string, arg any) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if f.Type != "" {
		add("t.type = $%d", f.Type)
	}
	if f.CategoryID != nil {
		add("t.category_id = $%d", *f.CategoryID)
	}
	if f.AccountID != nil {
		add("t.account_id = $%d", *f.AccountID)
	}
	if f.SpendingType != "" {
		add("t.spending_type = $%d", string(f.SpendingType))
	}
	if f.StartDate != nil {
		add("t.transaction_date >= $%d", *f.StartDate)
	}
	if f.EndDate != nil {
		add("t.transaction_date <= $%d", *f.EndDate)
	}
	if f.Month != "" {
		add("to_char(t.transaction_date, 'YYYY-MM') = $%d", f.Month)
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// List returns the page of transactions matching f, newest first.
func (r *TransactionRepository) List(ctx context.Context, f TransactionFilter) ([]models.Transaction, error) {
	where, args := f.where()
	query := transactionSelect + where + ` ORDER BY t.transaction_date DESC, t.created_at DESC, t.id DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit, f.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// Count returns how many transactions match f, ignoring Limit and Offset.
func (r *TransactionRepository) Count(ctx context.Context, f TransactionFilter) (int, error) {
	where, args := f.where()
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM transactions t`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return n, nil
}

// GetByUserAndDateRange retrieves the user's transactions dated within
// [start, end], oldest first.
func (r *TransactionRepository) GetByUserAndDateRange(ctx context.Context, userID int64, start, end time.Time) ([]models.Transaction, error) {
	rows, err := r.db.Query(ctx, transactionSelect+`
		WHERE t.user_id = $1 AND t.transaction_date BETWEEN $2 AND $3
		ORDER BY t.transaction_date, t.id
	`, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions by date range: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// GetAllByUser retrieves every transaction of the user, oldest first.
func (r *TransactionRepository) GetAllByUser(ctx context.Context, userID int64) ([]models.Transaction, error) {
	rows, err := r.db.Query(ctx, transactionSelect+`
		WHERE t.user_id = $1
		ORDER BY t.transaction_date, t.id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// GetByAccountUpTo retrieves an account's transactions dated on or before upTo, oldest first.
func (r *TransactionRepository) GetByAccountUpTo(ctx context.Context, accountID int, upTo time.Time) ([]models.Transaction, error) {
	rows, err := r.db.Query(ctx, transactionSelect+`
		WHERE t.account_id = $1 AND t.transaction_date <= $2
		ORDER BY t.transaction_date, t.id
	`, accountID, upTo)
	if err != nil {
		return nil, fmt.Errorf("failed to query account transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// TotalsByUser sums all of the user's income and expense with no date bound.
func (r *TransactionRepository) TotalsByUser(ctx context.Context, userID int64) (income, expense decimal.Decimal, err error) {
	err = r.db.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'income'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'expense'), 0)
		FROM transactions WHERE user_id = $1
	`, userID).Scan(&income, &expense)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to sum transactions: %w", err)
	}
	return income, expense, nil
}

// SumExpensesBetween sums the user's expenses dated within [start, end].
func (r *TransactionRepository) SumExpensesBetween(ctx context.Context, userID int64, start, end time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM transactions
		WHERE user_id = $1 AND type = 'expense' AND transaction_date BETWEEN $2 AND $3
	`, userID, start, end).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum expenses: %w", err)
	}
	return total, nil
}

func scanTransactions(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
},
) ([]models.Transaction, error) {
	var txs []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		var cat models.Category
		var spending string

		if err := rows.Scan(
			&tx.ID, &tx.UserID, &tx.CategoryID, &tx.AccountID, &tx.Type, &tx.Amount, &tx.Date,
			&tx.Note, &spending, &tx.CreatedAt, &tx.UpdatedAt,
			&cat.ID, &cat.UserID, &cat.Name, &cat.Type, &cat.Color, &cat.IsDefault, &cat.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		tx.SpendingType = models.SpendingType(spending)
		tx.Category = &cat
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return txs, nil
}
