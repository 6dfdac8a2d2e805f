package service

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/finflow/internal/database"
	"gitlab.com/yelinaung/finflow/internal/finance"
	"gitlab.com/yelinaung/finflow/internal/logger"
	"gitlab.com/yelinaung/finflow/internal/models"
	"gitlab.com/yelinaung/finflow/internal/repository"
)

// DefaultHistoryDays is the balance history window when none is given.
const DefaultHistoryDays = 30

// MaxHistoryDays bounds the balance history window.
const MaxHistoryDays = 366

// AccountService manages accounts, their derived balances and transfers.
type AccountService struct {
	db           database.PGXDB
	clock        finance.Clock
	accounts     *repository.AccountRepository
	transactions *repository.TransactionRepository
}

// NewAccountService creates an AccountService.
func NewAccountService(db database.PGXDB, clock finance.Clock) *AccountService {
	return &AccountService{
		db:           db,
		clock:        clock,
		accounts:     repository.NewAccountRepository(db),
		transactions: repository.NewTransactionRepository(db),
	}
}

// AccountBalance is an account with its current balance.
type AccountBalance struct {
	Account models.Account
	Balance decimal.Decimal
}

// Create validates and stores a new account.
func (s *AccountService) Create(ctx context.Context, account *models.Account) error {
	if err := validateAccount(account); err != nil {
		return err
	}
	account.IsActive = true
	return s.accounts.Create(ctx, account)
}

// validateAccount normalises the editable fields of account.
func validateAccount(account *models.Account) error {
	account.Name = strings.TrimSpace(account.Name)
	if account.Name == "" {
		return invalid("account name is required")
	}
	if utf8.RuneCountInString(account.Name) > models.MaxAccountNameLength {
		return invalid("account name must be at most %d characters", models.MaxAccountNameLength)
	}
	if !account.Type.Valid() {
		return invalid("unknown account type %q", account.Type)
	}
	account.Currency = strings.ToUpper(strings.TrimSpace(account.Currency))
	if account.Currency != "" && len(account.Currency) != 3 {
		return invalid("currency must be a 3-letter code")
	}
	if !validColor(account.Color) {
		return invalid("color must be a hex colour like #0D9488")
	}
	account.InitialBalance = finance.Round2(account.InitialBalance)
	if account.InitialBalance.IsNegative() {
		return invalid("initial balance must not be negative")
	}
	return nil
}

// List returns the user's accounts with their current balances.
func (s *AccountService) List(ctx context.Context, userID int64) ([]AccountBalance, error) {
	accounts, err := s.accounts.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]AccountBalance, 0, len(accounts))
	for _, a := range accounts {
		bal, err := s.balanceOf(ctx, s.accounts, a)
		if err != nil {
			return nil, err
		}
		out = append(out, AccountBalance{Account: a, Balance: bal})
	}
	return out, nil
}

// Balance returns one account with its current balance.
func (s *AccountService) Balance(ctx context.Context, userID int64, accountID int) (AccountBalance, error) {
	account, err := s.accounts.GetByID(ctx, userID, accountID)
	if err != nil {
		return AccountBalance{}, translate(err)
	}
	bal, err := s.balanceOf(ctx, s.accounts, *account)
	if err != nil {
		return AccountBalance{}, err
	}
	return AccountBalance{Account: *account, Balance: bal}, nil
}

func (s *AccountService) balanceOf(ctx context.Context, repo *repository.AccountRepository, account models.Account) (decimal.Decimal, error) {
	income, expense, err := repo.Totals(ctx, account.ID)
	if err != nil {
		return decimal.Zero, err
	}
	return finance.CurrentBalance(account, finance.Totals{Income: income, Expense: expense}), nil
}

// History returns the daily closing balances of an account over the last
// days days. days <= 0 means DefaultHistoryDays.
func (s *AccountService) History(ctx context.Context, userID int64, accountID, days int) (iter.Seq[finance.BalancePoint], error) {
	if days <= 0 {
		days = DefaultHistoryDays
	}
	if days > MaxHistoryDays {
		return nil, invalid("days must be at most %d", MaxHistoryDays)
	}

	account, err := s.accounts.GetByID(ctx, userID, accountID)
	if err != nil {
		return nil, translate(err)
	}
	today := finance.Day(s.clock())
	txs, err := s.transactions.GetByAccountUpTo(ctx, account.ID, today)
	if err != nil {
		return nil, err
	}
	return finance.BalanceHistory(*account, txs, days, today), nil
}

// AccountChanges lists the fields of an account to change. Nil fields keep
// their stored value.
type AccountChanges struct {
	Name           *string
	Type           *models.AccountType
	InitialBalance *decimal.Decimal
	Currency       *string
	Icon           *string
	Color          *string
	IsActive       *bool
}

// Update applies ch to one of the user's accounts and returns it with its
// recomputed balance.
func (s *AccountService) Update(ctx context.Context, userID int64, accountID int, ch AccountChanges) (AccountBalance, error) {
	account, err := s.accounts.GetByID(ctx, userID, accountID)
	if err != nil {
		return AccountBalance{}, translate(err)
	}
	if ch.Name != nil {
		account.Name = *ch.Name
	}
	if ch.Type != nil {
		account.Type = *ch.Type
	}
	if ch.InitialBalance != nil {
		account.InitialBalance = *ch.InitialBalance
	}
	if ch.Currency != nil {
		account.Currency = *ch.Currency
	}
	if ch.Icon != nil {
		account.Icon = strings.TrimSpace(*ch.Icon)
	}
	if ch.Color != nil {
		account.Color = *ch.Color
	}
	if ch.IsActive != nil {
		account.IsActive = *ch.IsActive
	}

	if err := validateAccount(account); err != nil {
		return AccountBalance{}, err
	}
	if account.Currency == "" {
		account.Currency = models.DefaultCurrency
	}
	if err := s.accounts.Update(ctx, account); err != nil {
		return AccountBalance{}, translate(err)
	}
	bal, err := s.balanceOf(ctx, s.accounts, *account)
	if err != nil {
		return AccountBalance{}, err
	}
	return AccountBalance{Account: *account, Balance: bal}, nil
}

// Delete removes an account that has no transactions.
func (s *AccountService) Delete(ctx context.Context, userID int64, accountID int) error {
	account, err := s.accounts.GetByID(ctx, userID, accountID)
	if err != nil {
		return translate(err)
	}
	used, err := s.accounts.HasTransactions(ctx, account.ID)
	if err != nil {
		return err
	}
	if used {
		return fmt.Errorf("delete account %d: %w", account.ID, ErrAccountInUse)
	}
	return translate(s.accounts.Delete(ctx, userID, account.ID))
}

// TransferRequest moves Amount from one of the user's accounts to another.
// A zero Date means today.
type TransferRequest struct {
	UserID        int64
	FromAccountID int
	ToAccountID   int
	Amount        decimal.Decimal
	Date          time.Time
	Note          string
}

// TransferResult holds both legs of a transfer and the balances after it.
type TransferResult struct {
	Outgoing    models.Transaction
	Incoming    models.Transaction
	FromBalance decimal.Decimal
	ToBalance   decimal.Decimal
}

// Transfer records an expense on the source account and an income on the
// destination account in one database transaction. Either both legs are
// stored or neither is.
func (s *AccountService) Transfer(ctx context.Context, req TransferRequest) (_ *TransferResult, err error) {
	ctx, span := startSpan(ctx, "AccountService.Transfer", req.UserID)
	defer func() { endSpan(span, err) }()

	from, err := s.accounts.GetByID(ctx, req.UserID, req.FromAccountID)
	if err != nil {
		return nil, fmt.Errorf("source account: %w", translate(err))
	}
	to, err := s.accounts.GetByID(ctx, req.UserID, req.ToAccountID)
	if err != nil {
		return nil, fmt.Errorf("destination account: %w", translate(err))
	}
	amount := finance.Round2(req.Amount)
	if err := finance.ValidateTransfer(*from, *to, amount); err != nil {
		return nil, err
	}

	date := req.Date
	if date.IsZero() {
		date = s.clock()
	}
	date = finance.Day(date)
	outNote, inNote := finance.TransferNotes(*from, *to, req.Note)

	result := &TransferResult{}
	err = database.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		txCategories := repository.NewCategoryRepository(tx)
		txLedger := repository.NewTransactionRepository(tx)
		txAccounts := repository.NewAccountRepository(tx)

		outCat, err := s.transferCategory(ctx, txCategories, from.UserID, models.TypeExpense)
		if err != nil {
			return err
		}
		inCat, err := s.transferCategory(ctx, txCategories, to.UserID, models.TypeIncome)
		if err != nil {
			return err
		}

		result.Outgoing = models.Transaction{
			UserID:     from.UserID,
			CategoryID: outCat.ID,
			Category:   &outCat,
			AccountID:  &from.ID,
			Type:       models.TypeExpense,
			Amount:     amount,
			Date:       date,
			Note:       outNote,
		}
		result.Incoming = models.Transaction{
			UserID:     to.UserID,
			CategoryID: inCat.ID,
			Category:   &inCat,
			AccountID:  &to.ID,
			Type:       models.TypeIncome,
			Amount:     amount,
			Date:       date,
			Note:       inNote,
		}
		if err := txLedger.Create(ctx, &result.Outgoing); err != nil {
			return fmt.Errorf("record outgoing leg: %w", err)
		}
		if err := txLedger.Create(ctx, &result.Incoming); err != nil {
			return fmt.Errorf("record incoming leg: %w", err)
		}

		if result.FromBalance, err = s.balanceOf(ctx, txAccounts, *from); err != nil {
			return err
		}
		result.ToBalance, err = s.balanceOf(ctx, txAccounts, *to)
		return err
	})
	if err != nil {
		return nil, err
	}

	transfersCounter.Add(ctx, 1)
	logger.Log.Info().
		Str("user_hash", logger.HashUserID(req.UserID)).
		Int("from_account", from.ID).
		Int("to_account", to.ID).
		Msg("Transfer recorded")
	return result, nil
}

func (s *AccountService) transferCategory(ctx context.Context, repo *repository.CategoryRepository, userID int64, txType models.TransactionType) (models.Category, error) {
	categories, err := repo.GetByUser(ctx, userID)
	if err != nil {
		return models.Category{}, err
	}
	return finance.ResolveTransferCategory(categories, txType)
}
