package finance

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/finflow/internal/models"
)

// DefaultTransferNote is used when a transfer is made without a note.
const DefaultTransferNote = "Transfer"

// ValidateTransfer checks the preconditions of moving amount from one
// account to another.
func ValidateTransfer(from, to models.Account, amount decimal.Decimal) error {
	if from.ID == to.ID {
		return ErrSameAccount
	}
	if !amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	return nil
}

// TransferNotes returns the notes of the outgoing and incoming legs.
func TransferNotes(from, to models.Account, note string) (outgoing, incoming string) {
	note = strings.TrimSpace(note)
	if note == "" {
		note = DefaultTransferNote
	}
	return fmt.Sprintf("Transfer to %s: %s", to.Name, note),
		fmt.Sprintf("Transfer from %s: %s", from.Name, note)
}

// ResolveTransferCategory picks the category a transfer leg is filed under:
// the category of type txType named Other, else the lowest-id category of
// that type. categories may contain any types; order does not matter.
func ResolveTransferCategory(categories []models.Category, txType models.TransactionType) (models.Category, error) {
	var first *models.Category
	for i := range categories {
		c := &categories[i]
		if c.Type != txType {
			continue
		}
		if strings.EqualFold(c.Name, models.OtherCategoryName) {
			return *c, nil
		}
		if first == nil || c.ID < first.ID {
			first = c
		}
	}
	if first == nil {
		return models.Category{}, fmt.Errorf("%w: %s", ErrNoCategory, txType)
	}
	return *first, nil
}
