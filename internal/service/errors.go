package service

import (
	"errors"
	"fmt"
	"regexp"

	"gitlab.com/yelinaung/finflow/internal/repository"
)

// Errors returned by services. Boundaries match them with errors.Is, together
// with the precondition errors of package finance.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrAccountInUse = errors.New("account has transactions")
	// ErrCategoryInUse is returned when deleting a category that still has
	// transactions booked on it.
	ErrCategoryInUse = errors.New("category has transactions")
	// ErrDefaultCategory is returned when deleting a seeded default category.
	ErrDefaultCategory = errors.New("default categories cannot be deleted")
)

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// validColor accepts an empty colour or a #RRGGBB hex colour.
func validColor(c string) bool {
	return c == "" || colorPattern.MatchString(c)
}

// translate maps repository lookup misses onto ErrNotFound.
func translate(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
