package service

import (
	"context"
	"fmt"
	"strings"

	"gitlab.com/yelinaung/finflow/internal/database"
	"gitlab.com/yelinaung/finflow/internal/logger"
	"gitlab.com/yelinaung/finflow/internal/models"
	"gitlab.com/yelinaung/finflow/internal/repository"
)

// UserService registers users.
type UserService struct {
	users           *repository.UserRepository
	categories      *CategoryService
	defaultCurrency string
}

// NewUserService creates a UserService. New users get defaultCurrency, or
// models.DefaultCurrency when it is empty.
func NewUserService(db database.PGXDB, categories *CategoryService, defaultCurrency string) *UserService {
	if defaultCurrency == "" {
		defaultCurrency = models.DefaultCurrency
	}
	return &UserService{
		users:           repository.NewUserRepository(db),
		categories:      categories,
		defaultCurrency: defaultCurrency,
	}
}

// Register upserts the user and seeds the default categories on first use.
// An existing user keeps their currency.
func (s *UserService) Register(ctx context.Context, user *models.User) error {
	if user.ID == 0 {
		return invalid("user id is required")
	}
	if user.DefaultCurrency == "" {
		user.DefaultCurrency = s.defaultCurrency
	}
	if err := s.users.UpsertUser(ctx, user); err != nil {
		return fmt.Errorf("register user: %w", err)
	}
	seeded, err := s.categories.SeedDefaults(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("register user: %w", err)
	}
	if seeded > 0 {
		logger.Log.Info().
			Str("user_hash", logger.HashUserID(user.ID)).
			Int("categories", seeded).
			Msg("Seeded default categories")
	}
	return nil
}

// Get returns a registered user.
func (s *UserService) Get(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}

// All returns every registered user.
func (s *UserService) All(ctx context.Context) ([]models.User, error) {
	return s.users.GetAllUsers(ctx)
}

// SetCurrency changes the currency the user's amounts are rendered in.
func (s *UserService) SetCurrency(ctx context.Context, userID int64, currency string) error {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if len(currency) != 3 {
		return invalid("currency must be a 3-letter code")
	}
	if _, ok := models.CurrencySymbols[currency]; !ok {
		return invalid("unsupported currency %q", currency)
	}
	if _, err := s.Get(ctx, userID); err != nil {
		return err
	}
	return s.users.UpdateDefaultCurrency(ctx, userID, currency)
}
