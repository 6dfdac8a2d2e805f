// Package export renders ledger rows for download.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gitlab.com/yelinaung/finflow/internal/models"
)

// Header is the first CSV row.
var Header = []string{"ID", "Date", "Type", "Category", "Amount", "Note", "Spending Type"}

// TransactionsCSV generates a CSV file from a list of transactions.
func TransactionsCSV(txs []models.Transaction) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(Header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i := range txs {
		categoryName := ""
		if txs[i].Category != nil {
			categoryName = txs[i].Category.Name
		}

		row := []string{
			strconv.Itoa(txs[i].ID),
			txs[i].Date.Format(time.DateOnly),
			string(txs[i].Type),
			categoryName,
			txs[i].Amount.StringFixed(2),
			txs[i].Note,
			string(txs[i].SpendingType),
		}

		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// Filename names an export produced at now.
func Filename(now time.Time) string {
	return fmt.Sprintf("transactions_%s.csv", now.Format("2006-01-02"))
}

// MonthFilename names an export of one YYYY-MM month.
func MonthFilename(month string) string {
	return fmt.Sprintf("transactions_%s.csv", month)
}

// CategoryFilename names an export of one category, lower-cased with spaces
// replaced by underscores.
func CategoryFilename(name string) string {
	name = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
	return fmt.Sprintf("transactions_%s.csv", name)
}
