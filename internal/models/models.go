// Package models defines the domain entities for the finance tracker.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is the default currency for new users and accounts.
const DefaultCurrency = "IDR"

// MaxCategoryNameLength is the maximum allowed length for category names.
const MaxCategoryNameLength = 50

// MaxAccountNameLength is the maximum allowed length for account names.
const MaxAccountNameLength = 100

// DefaultAlertThreshold is the alert threshold of a budget created without one.
const DefaultAlertThreshold = 80

// OtherCategoryName names the catch-all category seeded for both types.
const OtherCategoryName = "Other"

// CurrencySymbols maps currency codes to the symbol shown in messages.
var CurrencySymbols = map[string]string{
	"IDR": "Rp",
	"SGD": "S$",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"MYR": "RM",
	"THB": "฿",
	"PHP": "₱",
	"VND": "₫",
	"INR": "₹",
	"AUD": "A$",
}

// DefaultExpenseCategories are seeded for every new user, in palette order.
var DefaultExpenseCategories = []string{
	"Food", "Transportation", "Shopping", "Entertainment",
	"Bills", "Health", "Education", OtherCategoryName,
}

// DefaultIncomeCategories are seeded for every new user, in palette order.
var DefaultIncomeCategories = []string{
	"Salary", "Freelance", "Bonus", "Investment", OtherCategoryName,
}

// TransactionType distinguishes money coming in from money going out.
type TransactionType string

// Transaction and category types.
const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// AccountType is the kind of money store an account represents.
type AccountType string

// Account types.
const (
	AccountBank       AccountType = "bank"
	AccountEWallet    AccountType = "ewallet"
	AccountCash       AccountType = "cash"
	AccountInvestment AccountType = "investment"
	AccountCreditCard AccountType = "credit_card"
	AccountOther      AccountType = "other"
)

// AccountTypes lists every account type in display order.
var AccountTypes = []AccountType{
	AccountBank, AccountEWallet, AccountCash, AccountInvestment, AccountCreditCard, AccountOther,
}

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	for _, known := range AccountTypes {
		if t == known {
			return true
		}
	}
	return false
}

// SpendingType tags an expense as essential or discretionary.
type SpendingType string

// Spending types.
const (
	SpendingNeed SpendingType = "need"
	SpendingWant SpendingType = "want"
)

// Valid reports whether t is a known spending type.
func (t SpendingType) Valid() bool {
	return t == SpendingNeed || t == SpendingWant
}

// BudgetPeriod is the recurrence of a budget window.
type BudgetPeriod string

// Budget periods.
const (
	PeriodWeekly  BudgetPeriod = "weekly"
	PeriodMonthly BudgetPeriod = "monthly"
	PeriodYearly  BudgetPeriod = "yearly"
)

// Valid reports whether p is a known budget period.
func (p BudgetPeriod) Valid() bool {
	return p == PeriodWeekly || p == PeriodMonthly || p == PeriodYearly
}

// User represents a Telegram user or API caller.
type User struct {
	ID              int64
	Username        string
	FirstName       string
	LastName        string
	DefaultCurrency string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Account is a money store. Its current balance is always derived from
// InitialBalance and the account's transactions.
type Account struct {
	ID             int
	UserID         int64
	Name           string
	Type           AccountType
	InitialBalance decimal.Decimal
	Currency       string
	Icon           string
	Color          string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Category groups transactions of one type.
type Category struct {
	ID        int
	UserID    int64
	Name      string
	Type      TransactionType
	Color     string
	IsDefault bool
	CreatedAt time.Time
}

// Transaction is a single ledger entry. Date holds a calendar date at midnight UTC.
type Transaction struct {
	ID           int
	UserID       int64
	CategoryID   int
	Category     *Category
	AccountID    *int
	Type         TransactionType
	Amount       decimal.Decimal
	Date         time.Time
	Note         string
	SpendingType SpendingType
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Budget caps expenses over a recurring period. A nil CategoryID covers all expenses.
// StartDate and EndDate are informational; evaluation always uses the current window.
type Budget struct {
	ID             int
	UserID         int64
	CategoryID     *int
	Category       *Category
	Name           string
	Amount         decimal.Decimal
	Period         BudgetPeriod
	StartDate      time.Time
	EndDate        *time.Time
	AlertThreshold int
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
