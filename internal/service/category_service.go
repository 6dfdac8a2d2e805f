package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gitlab.com/yelinaung/finflow/internal/database"
	"gitlab.com/yelinaung/finflow/internal/finance"
	"gitlab.com/yelinaung/finflow/internal/models"
	"gitlab.com/yelinaung/finflow/internal/repository"
)

// CategoryService manages a user's categories.
type CategoryService struct {
	categories *repository.CategoryRepository
	palette    finance.Palette
}

// NewCategoryService creates a CategoryService. New categories without a
// colour take the next palette colour of their type.
func NewCategoryService(db database.PGXDB, palette finance.Palette) *CategoryService {
	return &CategoryService{categories: repository.NewCategoryRepository(db), palette: palette}
}

// SeedDefaults creates the default categories of every type the user has no
// categories of yet. It returns how many were created.
func (s *CategoryService) SeedDefaults(ctx context.Context, userID int64) (int, error) {
	defaults := map[models.TransactionType][]string{
		models.TypeExpense: models.DefaultExpenseCategories,
		models.TypeIncome:  models.DefaultIncomeCategories,
	}

	created := 0
	for _, txType := range []models.TransactionType{models.TypeExpense, models.TypeIncome} {
		n, err := s.categories.CountByType(ctx, userID, txType)
		if err != nil {
			return created, err
		}
		if n > 0 {
			continue
		}
		for i, name := range defaults[txType] {
			cat := &models.Category{
				UserID:    userID,
				Name:      name,
				Type:      txType,
				Color:     s.palette.Color(txType, i),
				IsDefault: true,
			}
			if err := s.categories.Create(ctx, cat); err != nil {
				return created, fmt.Errorf("seed category %q: %w", name, err)
			}
			created++
		}
	}
	return created, nil
}

// List returns the user's categories ordered by type then id.
func (s *CategoryService) List(ctx context.Context, userID int64) ([]models.Category, error) {
	return s.categories.GetByUser(ctx, userID)
}

// Get returns one of the user's categories.
func (s *CategoryService) Get(ctx context.Context, userID int64, id int) (*models.Category, error) {
	cat, err := s.categories.GetByID(ctx, userID, id)
	if err != nil {
		return nil, translate(err)
	}
	return cat, nil
}

// FindByName looks a category up by name within a type, ignoring case.
func (s *CategoryService) FindByName(ctx context.Context, userID int64, txType models.TransactionType, name string) (*models.Category, error) {
	cat, err := s.categories.GetByName(ctx, userID, txType, strings.TrimSpace(name))
	if err != nil {
		return nil, translate(err)
	}
	return cat, nil
}

// Create adds a category. An empty colour is filled from the palette.
func (s *CategoryService) Create(ctx context.Context, cat *models.Category) error {
	cat.Name = strings.TrimSpace(cat.Name)
	if cat.Name == "" {
		return invalid("category name is required")
	}
	if utf8.RuneCountInString(cat.Name) > models.MaxCategoryNameLength {
		return invalid("category name must be at most %d characters", models.MaxCategoryNameLength)
	}
	if !cat.Type.Valid() {
		return invalid("unknown category type %q", cat.Type)
	}
	if !validColor(cat.Color) {
		return invalid("color must be a hex colour like #0D9488")
	}

	if cat.Color == "" {
		n, err := s.categories.CountByType(ctx, cat.UserID, cat.Type)
		if err != nil {
			return err
		}
		cat.Color = s.palette.Color(cat.Type, n)
	}
	return s.categories.Create(ctx, cat)
}

// Update renames or recolours one of the user's categories. Nil fields keep
// their value; the type never changes. A new name must not clash with
// another category of the same type.
func (s *CategoryService) Update(ctx context.Context, userID int64, id int, name, color *string) (*models.Category, error) {
	cat, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if name != nil {
		cat.Name = strings.TrimSpace(*name)
		if cat.Name == "" {
			return nil, invalid("category name is required")
		}
		if utf8.RuneCountInString(cat.Name) > models.MaxCategoryNameLength {
			return nil, invalid("category name must be at most %d characters", models.MaxCategoryNameLength)
		}
		clash, err := s.categories.GetByName(ctx, userID, cat.Type, cat.Name)
		switch {
		case err == nil && clash.ID != cat.ID:
			return nil, invalid("a %s category named %q already exists", cat.Type, clash.Name)
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return nil, err
		}
	}
	if color != nil {
		if *color == "" || !validColor(*color) {
			return nil, invalid("color must be a hex colour like #0D9488")
		}
		cat.Color = *color
	}

	if err := s.categories.Update(ctx, cat); err != nil {
		return nil, translate(err)
	}
	return cat, nil
}

// Delete removes a category the user created. Seeded defaults and
// categories with transactions are kept.
func (s *CategoryService) Delete(ctx context.Context, userID int64, id int) error {
	cat, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if cat.IsDefault {
		return fmt.Errorf("delete category %q: %w", cat.Name, ErrDefaultCategory)
	}
	used, err := s.categories.HasTransactions(ctx, cat.ID)
	if err != nil {
		return err
	}
	if used {
		return fmt.Errorf("delete category %q: %w", cat.Name, ErrCategoryInUse)
	}
	return translate(s.categories.Delete(ctx, userID, cat.ID))
}
