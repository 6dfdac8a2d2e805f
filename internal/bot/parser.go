package bot

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/finflow/internal/models"
)

// ParsedEntry is a transaction typed as free text, e.g. "25k lunch #Food".
type ParsedEntry struct {
	Amount       decimal.Decimal
	Note         string
	CategoryName string
}

var (
	// thousandsRegex matches "25.000", "1,500,000".
	thousandsRegex = regexp.MustCompile(`^\d{1,3}(?:[.,]\d{3})+$`)
	// decimalRegex matches "5", "5.50", "5,5".
	decimalRegex = regexp.MustCompile(`^\d+(?:[.,]\d{1,2})?$`)
)

var thousand = decimal.NewFromInt(1000)

// ParseAmount reads a positive amount token. It accepts an optional "rp"
// prefix, thousands separators ("25.000"), up to two decimals ("5,50") and
// a "k" suffix meaning thousands ("25k", "1.5k").
func ParseAmount(token string) (decimal.Decimal, bool) {
	token = strings.ToLower(strings.TrimSpace(token))
	token = strings.TrimPrefix(token, "rp")
	token = strings.TrimSpace(token)

	multiplier := decimal.NewFromInt(1)
	if rest, ok := strings.CutSuffix(token, "k"); ok {
		token = rest
		multiplier = thousand
	}
	if token == "" {
		return decimal.Zero, false
	}

	var normalized string
	switch {
	case thousandsRegex.MatchString(token) && !decimalRegex.MatchString(token):
		normalized = strings.NewReplacer(".", "", ",", "").Replace(token)
	case decimalRegex.MatchString(token):
		normalized = strings.ReplaceAll(token, ",", ".")
	default:
		return decimal.Zero, false
	}

	amount, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, false
	}
	amount = amount.Mul(multiplier)
	if !amount.IsPositive() {
		return decimal.Zero, false
	}
	return amount, true
}

// ParseEntry parses "<amount> [note] [#category]". Everything after the
// first '#' names the category. It returns nil when input has no leading amount.
func ParseEntry(input string) *ParsedEntry {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}

	var category string
	if idx := strings.Index(input, "#"); idx != -1 {
		category = strings.Join(strings.Fields(input[idx+1:]), " ")
		input = strings.TrimSpace(input[:idx])
	}

	fields := strings.Fields(input)
	if len(fields) == 0 {
		return nil
	}
	amount, ok := ParseAmount(fields[0])
	if !ok {
		return nil
	}
	return &ParsedEntry{
		Amount:       amount,
		Note:         strings.Join(fields[1:], " "),
		CategoryName: category,
	}
}

// extractCommandArgs strips the /command prefix (and optional @botname suffix)
// from a message and returns the remaining trimmed arguments.
func extractCommandArgs(text, command string) string {
	args := strings.TrimSpace(strings.TrimPrefix(text, command))
	if strings.HasPrefix(args, "@") {
		if spaceIdx := strings.Index(args, " "); spaceIdx != -1 {
			args = strings.TrimSpace(args[spaceIdx:])
		} else {
			args = ""
		}
	}
	return args
}

var errUsage = errors.New("usage")

// accountArgs are the arguments of /addaccount <type> <initial> <name>.
type accountArgs struct {
	Type    models.AccountType
	Initial decimal.Decimal
	Name    string
}

func parseAccountArgs(args string) (accountArgs, error) {
	fields := strings.Fields(args)
	if len(fields) < 3 {
		return accountArgs{}, errUsage
	}
	t := models.AccountType(strings.ToLower(fields[0]))
	if !t.Valid() {
		return accountArgs{}, errUsage
	}
	initial := decimal.Zero
	if fields[1] != "0" {
		amount, ok := ParseAmount(fields[1])
		if !ok {
			return accountArgs{}, errUsage
		}
		initial = amount
	}
	return accountArgs{Type: t, Initial: initial, Name: strings.Join(fields[2:], " ")}, nil
}

// transferArgs are the arguments of /transfer <from> <to> <amount> [note].
type transferArgs struct {
	From, To int
	Amount   decimal.Decimal
	Note     string
}

func parseTransferArgs(args string) (transferArgs, error) {
	fields := strings.Fields(args)
	if len(fields) < 3 {
		return transferArgs{}, errUsage
	}
	from, err := strconv.Atoi(fields[0])
	if err != nil || from <= 0 {
		return transferArgs{}, errUsage
	}
	to, err := strconv.Atoi(fields[1])
	if err != nil || to <= 0 {
		return transferArgs{}, errUsage
	}
	amount, ok := ParseAmount(fields[2])
	if !ok {
		return transferArgs{}, errUsage
	}
	return transferArgs{From: from, To: to, Amount: amount, Note: strings.Join(fields[3:], " ")}, nil
}

// budgetArgs are the arguments of /addbudget <period> <amount> [#category].
type budgetArgs struct {
	Period       models.BudgetPeriod
	Amount       decimal.Decimal
	CategoryName string
}

func parseBudgetArgs(args string) (budgetArgs, error) {
	var category string
	if idx := strings.Index(args, "#"); idx != -1 {
		category = strings.Join(strings.Fields(args[idx+1:]), " ")
		args = args[:idx]
	}
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return budgetArgs{}, errUsage
	}
	period := models.BudgetPeriod(strings.ToLower(fields[0]))
	if !period.Valid() {
		return budgetArgs{}, errUsage
	}
	amount, ok := ParseAmount(fields[1])
	if !ok {
		return budgetArgs{}, errUsage
	}
	return budgetArgs{Period: period, Amount: amount, CategoryName: category}, nil
}
