package finance

import (
	"iter"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/finflow/internal/models"
)

// Totals holds income and expense sums over some set of transactions.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// Net is Income minus Expense.
func (t Totals) Net() decimal.Decimal {
	return t.Income.Sub(t.Expense)
}

// TotalsOf sums txs by type.
func TotalsOf(txs []models.Transaction) Totals {
	var t Totals
	for _, tx := range txs {
		switch tx.Type {
		case models.TypeIncome:
			t.Income = t.Income.Add(tx.Amount)
		case models.TypeExpense:
			t.Expense = t.Expense.Add(tx.Amount)
		}
	}
	return t
}

// CurrentBalance derives an account balance from its initial balance and the
// totals of every transaction on it.
func CurrentBalance(account models.Account, totals Totals) decimal.Decimal {
	return account.InitialBalance.Add(totals.Net())
}

// BalancePoint is the closing balance of one calendar day.
type BalancePoint struct {
	Date    time.Time
	Balance decimal.Decimal
}

// BalanceHistory yields one closing balance per day from today-windowDays to
// today inclusive. txs are the account's transactions in any order; those
// dated after today are ignored. The sequence can be ranged over repeatedly.
func BalanceHistory(account models.Account, txs []models.Transaction, windowDays int, today time.Time) iter.Seq[BalancePoint] {
	end := Day(today)
	start := end.AddDate(0, 0, -max(0, windowDays))

	opening := account.InitialBalance
	daily := make(map[time.Time]decimal.Decimal)
	for _, tx := range txs {
		d := Day(tx.Date)
		switch {
		case d.After(end):
			continue
		case d.Before(start):
			opening = opening.Add(signed(tx))
		default:
			daily[d] = daily[d].Add(signed(tx))
		}
	}

	return func(yield func(BalancePoint) bool) {
		running := opening
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			running = running.Add(daily[d])
			if !yield(BalancePoint{Date: d, Balance: Round2(running)}) {
				return
			}
		}
	}
}

// MonthBalance is the cumulative net ledger value at the end of a month.
type MonthBalance struct {
	Label    string
	MonthKey string
	Value    decimal.Decimal
}

// MonthlyBalanceHistory returns the cumulative net of txs at the end of each
// of the trailing months ending with the month of today, oldest first. Months
// without activity carry the previous value forward; months before any
// activity are zero.
func MonthlyBalanceHistory(txs []models.Transaction, months int, today time.Time) []MonthBalance {
	if months <= 0 {
		return nil
	}

	netByMonth := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		key := MonthKey(tx.Date)
		netByMonth[key] = netByMonth[key].Add(signed(tx))
	}

	keys := make([]string, 0, len(netByMonth))
	for k := range netByMonth {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cumulative := make([]decimal.Decimal, len(keys))
	running := decimal.Zero
	for i, k := range keys {
		running = running.Add(netByMonth[k])
		cumulative[i] = running
	}

	first := MonthWindow(today).Start.AddDate(0, -(months - 1), 0)
	history := make([]MonthBalance, 0, months)
	for i := range months {
		month := first.AddDate(0, i, 0)
		key := MonthKey(month)

		value := decimal.Zero
		// keys sort lexically in calendar order because MonthKey is zero padded.
		if idx := sort.SearchStrings(keys, key); idx < len(keys) && keys[idx] == key {
			value = cumulative[idx]
		} else if idx > 0 {
			value = cumulative[idx-1]
		}

		history = append(history, MonthBalance{
			Label:    month.Format("Jan"),
			MonthKey: key,
			Value:    Round2(value),
		})
	}
	return history
}
