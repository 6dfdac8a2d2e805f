package repository

import (
	"context"
	"fmt"
	"time"

	"gitlab.com/yelinaung/finflow/internal/database"
	"gitlab.com/yelinaung/finflow/internal/models"
)

// BudgetRepository handles budget database operations.
type BudgetRepository struct {
	db database.PGXDB
}

// NewBudgetRepository creates a new BudgetRepository.
func NewBudgetRepository(db database.PGXDB) *BudgetRepository {
	return &BudgetRepository{db: db}
}

const budgetSelect = `
	SELECT b.id, b.user_id, b.category_id, b.name, b.amount, b.period, b.start_date, b.end_date,
	       b.alert_threshold, b.is_active, b.created_at, b.updated_at,
	       c.id, c.name, c.type, c.color
	FROM budgets b
	LEFT JOIN categories c ON c.id = b.category_id`

// Create adds a new budget.
func (r *BudgetRepository) Create(ctx context.Context, b *models.Budget) error {
	if b.AlertThreshold == 0 {
		b.AlertThreshold = models.DefaultAlertThreshold
	}
	if b.Period == "" {
		b.Period = models.PeriodMonthly
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO budgets (user_id, category_id, name, amount, period, start_date, end_date, alert_threshold, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`, b.UserID, b.CategoryID, b.Name, b.Amount, b.Period, b.StartDate, b.EndDate, b.AlertThreshold, b.IsActive,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create budget: %w", err)
	}
	return nil
}

// GetByID retrieves one of the user's budgets with its category.
func (r *BudgetRepository) GetByID(ctx context.Context, userID int64, id int) (*models.Budget, error) {
	rows, err := r.db.Query(ctx, budgetSelect+` WHERE b.user_id = $1 AND b.id = $2`, userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}
	defer rows.Close()

	budgets, err := scanBudgets(rows)
	if err != nil {
		return nil, err
	}
	if len(budgets) == 0 {
		return nil, fmt.Errorf("failed to get budget: %w", ErrNotFound)
	}
	return &budgets[0], nil
}

// GetActiveByUser retrieves the user's active budgets in creation order.
func (r *BudgetRepository) GetActiveByUser(ctx context.Context, userID int64) ([]models.Budget, error) {
	rows, err := r.db.Query(ctx, budgetSelect+`
		WHERE b.user_id = $1 AND b.is_active
		ORDER BY b.id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer rows.Close()

	return scanBudgets(rows)
}

// Update rewrites one of the user's budgets.
func (r *BudgetRepository) Update(ctx context.Context, b *models.Budget) error {
	err := r.db.QueryRow(ctx, `
		UPDATE budgets SET
			category_id = $3,
			name = $4,
			amount = $5,
			period = $6,
			start_date = $7,
			end_date = $8,
			alert_threshold = $9,
			is_active = $10,
			updated_at = NOW()
		WHERE user_id = $1 AND id = $2
		RETURNING created_at, updated_at
	`, b.UserID, b.ID, b.CategoryID, b.Name, b.Amount, b.Period, b.StartDate, b.EndDate, b.AlertThreshold, b.IsActive,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update budget: %w", notFound(err))
	}
	return nil
}

// SetActive toggles whether a budget is evaluated.
func (r *BudgetRepository) SetActive(ctx context.Context, userID int64, id int, active bool) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE budgets SET is_active = $3, updated_at = NOW() WHERE user_id = $1 AND id = $2
	`, userID, id, active)
	if err != nil {
		return fmt.Errorf("failed to update budget: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to update budget: %w", ErrNotFound)
	}
	return nil
}

// Delete removes one of the user's budgets.
func (r *BudgetRepository) Delete(ctx context.Context, userID int64, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM budgets WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to delete budget: %w", ErrNotFound)
	}
	return nil
}

func scanBudgets(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
},
) ([]models.Budget, error) {
	var budgets []models.Budget
	for rows.Next() {
		var b models.Budget
		var endDate *time.Time
		var catID *int
		var catName, catType, catColor *string

		if err := rows.Scan(
			&b.ID, &b.UserID, &b.CategoryID, &b.Name, &b.Amount, &b.Period, &b.StartDate, &endDate,
			&b.AlertThreshold, &b.IsActive, &b.CreatedAt, &b.UpdatedAt,
			&catID, &catName, &catType, &catColor,
		); err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}

		b.EndDate = endDate
		if catID != nil {
			b.Category = &models.Category{
				ID:     *catID,
				UserID: b.UserID,
				Name:   *catName,
				Type:   models.TransactionType(*catType),
				Color:  *catColor,
			}
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budgets: %w", err)
	}
	return budgets, nil
}
