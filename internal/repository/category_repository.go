// Package repository provides database access for domain entities.
package repository

import (
	"context"
	"fmt"

	"gitlab.com/yelinaung/finflow/internal/database"
	"gitlab.com/yelinaung/finflow/internal/models"
)

// CategoryRepository handles category database operations.
type CategoryRepository struct {
	db database.PGXDB
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(db database.PGXDB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

const categoryColumns = `id, user_id, name, type, color, is_default, created_at`

// GetByUser retrieves a user's categories ordered by type then id.
func (r *CategoryRepository) GetByUser(ctx context.Context, userID int64) ([]models.Category, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+categoryColumns+` FROM categories
		WHERE user_id = $1
		ORDER BY type, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

// GetByID retrieves one of the user's categories.
func (r *CategoryRepository) GetByID(ctx context.Context, userID int64, id int) (*models.Category, error) {
	cat, err := scanCategory(r.db.QueryRow(ctx, `
		SELECT `+categoryColumns+` FROM categories WHERE user_id = $1 AND id = $2
	`, userID, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", notFound(err))
	}
	return &cat, nil
}

// GetByName retrieves a user's category of the given type by name (case-insensitive).
func (r *CategoryRepository) GetByName(ctx context.Context, userID int64, txType models.TransactionType, name string) (*models.Category, error) {
	cat, err := scanCategory(r.db.QueryRow(ctx, `
		SELECT `+categoryColumns+` FROM categories
		WHERE user_id = $1 AND type = $2 AND LOWER(name) = LOWER($3)
	`, userID, txType, name))
	if err != nil {
		return nil, fmt.Errorf("failed to get category by name: %w", notFound(err))
	}
	return &cat, nil
}

// CountByType counts the user's categories of one type.
func (r *CategoryRepository) CountByType(ctx context.Context, userID int64, txType models.TransactionType) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM categories WHERE user_id = $1 AND type = $2
	`, userID, txType).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count categories: %w", err)
	}
	return n, nil
}

// Create adds a new category. Duplicate names within a type are ignored and
// the existing row is returned.
func (r *CategoryRepository) Create(ctx context.Context, cat *models.Category) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO categories (user_id, name, type, color, is_default)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, type, name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, color, is_default, created_at
	`, cat.UserID, cat.Name, cat.Type, cat.Color, cat.IsDefault,
	).Scan(&cat.ID, &cat.Color, &cat.IsDefault, &cat.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// Update renames or recolours one of the user's categories.
func (r *CategoryRepository) Update(ctx context.Context, cat *models.Category) error {
	err := r.db.QueryRow(ctx, `
		UPDATE categories SET name = $3, color = $4
		WHERE user_id = $1 AND id = $2
		RETURNING type, is_default, created_at
	`, cat.UserID, cat.ID, cat.Name, cat.Color,
	).Scan(&cat.Type, &cat.IsDefault, &cat.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", notFound(err))
	}
	return nil
}

// HasTransactions reports whether any transaction is booked on the category.
func (r *CategoryRepository) HasTransactions(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM transactions WHERE category_id = $1)
	`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check category transactions: %w", err)
	}
	return exists, nil
}

// Delete removes one of the user's categories. Budgets scoped to it go with it.
func (r *CategoryRepository) Delete(ctx context.Context, userID int64, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to delete category: %w", ErrNotFound)
	}
	return nil
}

func scanCategory(row interface{ Scan(dest ...any) error }) (models.Category, error) {
	var cat models.Category
	if err := row.Scan(&cat.ID, &cat.UserID, &cat.Name, &cat.Type, &cat.Color, &cat.IsDefault, &cat.CreatedAt); err != nil {
		return models.Category{}, fmt.Errorf("failed to scan category: %w", err)
	}
	return cat, nil
}
