package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"gitlab.com/yelinaung/finflow/internal/database"
	"gitlab.com/yelinaung/finflow/internal/finance"
	"gitlab.com/yelinaung/finflow/internal/logger"
	"gitlab.com/yelinaung/finflow/internal/models"
	"gitlab.com/yelinaung/finflow/internal/repository"
)

// Paging defaults for transaction listings.
const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// MaxNoteLength bounds transaction notes.
const MaxNoteLength = 500

// TransactionService records and lists ledger entries.
type TransactionService struct {
	clock        finance.Clock
	transactions *repository.TransactionRepository
	categories   *repository.CategoryRepository
	accounts     *repository.AccountRepository
}

// NewTransactionService creates a TransactionService.
func NewTransactionService(db database.PGXDB, clock finance.Clock) *TransactionService {
	return &TransactionService{
		clock:        clock,
		transactions: repository.NewTransactionRepository(db),
		categories:   repository.NewCategoryRepository(db),
		accounts:     repository.NewAccountRepository(db),
	}
}

// Record validates and stores a transaction. A zero Date means today. The
// category and account must belong to the user, and the category type must
// match the transaction type.
func (s *TransactionService) Record(ctx context.Context, tx *models.Transaction) (err error) {
	ctx, span := startSpan(ctx, "TransactionService.Record", tx.UserID)
	defer func() { endSpan(span, err) }()

	if err := s.prepare(ctx, tx); err != nil {
		return err
	}
	if tx.Date.IsZero() {
		tx.Date = s.clock()
	}
	tx.Date = finance.Day(tx.Date)

	if err := s.transactions.Create(ctx, tx); err != nil {
		return err
	}

	transactionsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("type", string(tx.Type))))
	logger.Log.Debug().
		Str("user_hash", logger.HashUserID(tx.UserID)).
		Int("transaction_id", tx.ID).
		Str("type", string(tx.Type)).
		Str("note", logger.SanitizeNote(tx.Note)).
		Msg("Transaction recorded")
	return nil
}

// prepare normalises tx and checks it against the user's categories and
// accounts.
func (s *TransactionService) prepare(ctx context.Context, tx *models.Transaction) error {
	if !tx.Type.Valid() {
		return invalid("unknown transaction type %q", tx.Type)
	}
	tx.Amount = finance.Round2(tx.Amount)
	if !tx.Amount.IsPositive() {
		return fmt.Errorf("record transaction: %w", finance.ErrNonPositiveAmount)
	}
	if tx.SpendingType != "" && !tx.SpendingType.Valid() {
		return invalid("unknown spending type %q", tx.SpendingType)
	}
	tx.Note = strings.TrimSpace(tx.Note)
	if len([]rune(tx.Note)) > MaxNoteLength {
		return invalid("note must be at most %d characters", MaxNoteLength)
	}

	cat, err := s.categories.GetByID(ctx, tx.UserID, tx.CategoryID)
	if err != nil {
		return fmt.Errorf("category: %w", translate(err))
	}
	if cat.Type != tx.Type {
		return invalid("category %q is not an %s category", cat.Name, tx.Type)
	}
	tx.Category = cat

	if tx.AccountID != nil {
		if _, err := s.accounts.GetByID(ctx, tx.UserID, *tx.AccountID); err != nil {
			return fmt.Errorf("account: %w", translate(err))
		}
	}
	return nil
}

// Get returns one of the user's transactions with its category.
func (s *TransactionService) Get(ctx context.Context, userID int64, id int) (*models.Transaction, error) {
	tx, err := s.transactions.GetByID(ctx, userID, id)
	if err != nil {
		return nil, translate(err)
	}
	return tx, nil
}

// TransactionChanges lists the fields of a transaction to change. Nil fields
// keep their stored value.
type TransactionChanges struct {
	CategoryID   *int
	AccountID    *int
	Type         *models.TransactionType
	Amount       *decimal.Decimal
	Date         *time.Time
	Note         *string
	SpendingType *models.SpendingType
}

// Update applies ch to one of the user's transactions with the same checks
// as Record. Balances derived from the ledger follow the new amounts.
func (s *TransactionService) Update(ctx context.Context, userID int64, id int, ch TransactionChanges) (_ *models.Transaction, err error) {
	ctx, span := startSpan(ctx, "TransactionService.Update", userID)
	defer func() { endSpan(span, err) }()

	tx, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if ch.CategoryID != nil {
		tx.CategoryID = *ch.CategoryID
	}
	if ch.AccountID != nil {
		tx.AccountID = ch.AccountID
	}
	if ch.Type != nil {
		tx.Type = *ch.Type
	}
	if ch.Amount != nil {
		tx.Amount = *ch.Amount
	}
	if ch.Date != nil {
		tx.Date = finance.Day(*ch.Date)
	}
	if ch.Note != nil {
		tx.Note = *ch.Note
	}
	if ch.SpendingType != nil {
		tx.SpendingType = *ch.SpendingType
	}

	if err := s.prepare(ctx, tx); err != nil {
		return nil, err
	}
	if err := s.transactions.Update(ctx, tx); err != nil {
		return nil, translate(err)
	}
	logger.Log.Debug().
		Str("user_hash", logger.HashUserID(userID)).
		Int("transaction_id", tx.ID).
		Msg("Transaction updated")
	return tx, nil
}

// ListQuery filters and pages a transaction listing.
type ListQuery struct {
	repository.TransactionFilter
	Page    int
	PerPage int
}

// Pagination describes one page of a listing.
type Pagination struct {
	CurrentPage int
	PerPage     int
	Total       int
	LastPage    int
}

// Page is one page of transactions, newest first.
type Page struct {
	Items      []models.Transaction
	Pagination Pagination
}

// List returns one page of the user's transactions.
func (s *TransactionService) List(ctx context.Context, q ListQuery) (*Page, error) {
	if q.PerPage <= 0 {
		q.PerPage = DefaultPerPage
	}
	q.PerPage = min(q.PerPage, MaxPerPage)
	q.Page = max(q.Page, 1)
	if q.Month != "" {
		if _, err := finance.ParseMonthKey(q.Month); err != nil {
			return nil, invalid("month must be YYYY-MM")
		}
	}
	if q.Type != "" && !q.Type.Valid() {
		return nil, invalid("unknown transaction type %q", q.Type)
	}
	if q.SpendingType != "" && !q.SpendingType.Valid() {
		return nil, invalid("unknown spending type %q", q.SpendingType)
	}

	total, err := s.transactions.Count(ctx, q.TransactionFilter)
	if err != nil {
		return nil, err
	}

	pagination := Pagination{
		CurrentPage: q.Page,
		PerPage:     q.PerPage,
		Total:       total,
		LastPage:    max(1, (total+q.PerPage-1)/q.PerPage),
	}
	// Pages past the end are empty; the offset is only computed for pages
	// that exist.
	if q.Page > pagination.LastPage {
		return &Page{Items: []models.Transaction{}, Pagination: pagination}, nil
	}

	f := q.TransactionFilter
	f.Limit = q.PerPage
	f.Offset = (q.Page - 1) * q.PerPage
	items, err := s.transactions.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &Page{Items: items, Pagination: pagination}, nil
}

// Recent returns the user's latest transactions.
func (s *TransactionService) Recent(ctx context.Context, userID int64, limit int) ([]models.Transaction, error) {
	return s.transactions.List(ctx, repository.TransactionFilter{UserID: userID, Limit: limit})
}

// All returns every transaction of the user, oldest first.
func (s *TransactionService) All(ctx context.Context, userID int64) ([]models.Transaction, error) {
	return s.transactions.GetAllByUser(ctx, userID)
}

// Between returns the user's transactions dated within [start, end].
func (s *TransactionService) Between(ctx context.Context, userID int64, start, end time.Time) ([]models.Transaction, error) {
	return s.transactions.GetByUserAndDateRange(ctx, userID, finance.Day(start), finance.Day(end))
}

// ExportQuery selects the transactions of an export. Month is YYYY-MM and
// CategoryID must name one of the user's categories.
type ExportQuery struct {
	UserID     int64
	Month      string
	CategoryID *int
}

// Export returns the transactions selected by q, newest first. The category,
// when set, is returned too so callers can name the file after it.
func (s *TransactionService) Export(ctx context.Context, q ExportQuery) ([]models.Transaction, *models.Category, error) {
	f := repository.TransactionFilter{UserID: q.UserID, Month: q.Month}
	if q.Month != "" {
		if _, err := finance.ParseMonthKey(q.Month); err != nil {
			return nil, nil, invalid("month must be YYYY-MM")
		}
	}

	var cat *models.Category
	if q.CategoryID != nil {
		var err error
		if cat, err = s.categories.GetByID(ctx, q.UserID, *q.CategoryID); err != nil {
			return nil, nil, fmt.Errorf("category: %w", translate(err))
		}
		f.CategoryID = &cat.ID
	}

	txs, err := s.transactions.List(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	return txs, cat, nil
}

// Delete removes one of the user's transactions.
func (s *TransactionService) Delete(ctx context.Context, userID int64, id int) error {
	return translate(s.transactions.Delete(ctx, userID, id))
}
