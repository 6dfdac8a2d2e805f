package repository

import (
	"context"
	"fmt"

	"gitlab.com/yelinaung/finflow/internal/database"
	"gitlab.com/yelinaung/finflow/internal/models"
)

// UserRepository handles user database operations.
type UserRepository struct {
	db database.PGXDB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db database.PGXDB) *UserRepository {
	return &UserRepository{db: db}
}

// UpsertUser creates or updates a user. The default currency is only set on insert.
func (r *UserRepository) UpsertUser(ctx context.Context, user *models.User) error {
	if user.DefaultCurrency == "" {
		user.DefaultCurrency = models.DefaultCurrency
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (id, username, first_name, last_name, default_currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			updated_at = NOW()
		RETURNING default_currency, created_at, updated_at
	`, user.ID, user.Username, user.FirstName, user.LastName, user.DefaultCurrency,
	).Scan(&user.DefaultCurrency, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by their ID.
func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := r.db.QueryRow(ctx, `
		SELECT id, COALESCE(username, ''), COALESCE(first_name, ''), COALESCE(last_name, ''),
		       default_currency, created_at, updated_at
		FROM users WHERE id = $1
	`, id).Scan(&user.ID, &user.Username, &user.FirstName, &user.LastName,
		&user.DefaultCurrency, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", notFound(err))
	}
	return &user, nil
}

// GetAllUsers retrieves every user, oldest first.
func (r *UserRepository) GetAllUsers(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, COALESCE(username, ''), COALESCE(first_name, ''), COALESCE(last_name, ''),
		       default_currency, created_at, updated_at
		FROM users ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Username, &user.FirstName, &user.LastName,
			&user.DefaultCurrency, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

// UpdateDefaultCurrency changes the currency used when rendering a user's amounts.
func (r *UserRepository) UpdateDefaultCurrency(ctx context.Context, userID int64, currency string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users SET default_currency = $2, updated_at = NOW() WHERE id = $1
	`, userID, currency)
	if err != nil {
		return fmt.Errorf("failed to update default currency: %w", err)
	}
	return nil
}
