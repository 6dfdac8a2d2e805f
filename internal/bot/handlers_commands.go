package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/finflow/internal/finance"
	"gitlab.com/yelinaung/finflow/internal/logger"
	appmodels "gitlab.com/yelinaung/finflow/internal/models"
	"gitlab.com/yelinaung/finflow/internal/service"
)

func escapeHTML(s string) string {
	return html.EscapeString(s)
}

// formatGreeting returns a greeting suffix with the user's name.
func formatGreeting(firstName string) string {
	if firstName == "" {
		return ""
	}
	return ", " + escapeHTML(firstName)
}

// userFailure renders err for the user. Input problems are shown verbatim,
// everything else is logged and reported generically.
func userFailure(action string, err error) string {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, finance.ErrSameAccount),
		errors.Is(err, finance.ErrNonPositiveAmount),
		errors.Is(err, finance.ErrNoCategory),
		errors.Is(err, service.ErrAccountInUse):
		return "❌ " + escapeHTML(err.Error())
	case errors.Is(err, service.ErrNotFound):
		return "❌ Not found."
	default:
		logger.Log.Error().Err(err).Str("action", action).Msg("Bot action failed")
		return fmt.Sprintf("❌ Failed to %s. Please try again.", action)
	}
}

func (b *Bot) handleStart(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleStartCore(ctx, tgBot, update)
}

func (b *Bot) handleStartCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}

	firstName := ""
	if update.Message.From != nil {
		firstName = update.Message.From.FirstName
	}

	text := fmt.Sprintf(`👋 Welcome%s!

I keep track of your accounts, income, expenses and budgets.

<b>Quick Start:</b>
• Send an expense like: <code>25000 lunch</code>
• Pick a category with a hashtag: <code>25k lunch #Food</code>
• Add an account: <code>/addaccount bank 1000000 BCA</code>

Use /help to see all available commands.`,
		formatGreeting(firstName))

	b.sendHTML(ctx, tg, update.Message.Chat.ID, text)
}

func (b *Bot) handleHelp(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleHelpCore(ctx, tgBot, update)
}

func (b *Bot) handleHelpCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}

	text := `📚 <b>Available Commands</b>

<b>Recording:</b>
• <code>/expense &lt;amount&gt; &lt;note&gt; [#category]</code> - Record an expense
• <code>/income &lt;amount&gt; &lt;note&gt; [#category]</code> - Record income
• Just send <code>25000 lunch</code> to record an expense
• <code>/delete &lt;id&gt;</code> - Delete a transaction
• <code>/list</code> - Latest transactions
• <code>/today</code>, <code>/week</code> - Transactions of the day or week

<b>Accounts:</b>
• <code>/accounts</code> - Balances of all accounts
• <code>/addaccount &lt;type&gt; &lt;initial&gt; &lt;name&gt;</code> - Types: bank, e_wallet, cash, investment, credit_card, other
• <code>/transfer &lt;from id&gt; &lt;to id&gt; &lt;amount&gt; [note]</code> - Move money between accounts

<b>Budgets:</b>
• <code>/budgets</code> - Progress of active budgets
• <code>/addbudget &lt;weekly|monthly|yearly&gt; &lt;amount&gt; [#category]</code> - Create a budget
• <code>/alerts</code> - Budgets near or over their limit

<b>Reports:</b>
• <code>/report [YYYY-MM]</code> - Monthly report
• <code>/chart [YYYY-MM]</code> - Expense breakdown chart
• <code>/forecast</code> - End-of-month balance forecast
• <code>/insights [YYYY-MM]</code> - Spending insights
• <code>/export [YYYY-MM]</code> - Transactions as CSV

<b>Other:</b>
• <code>/categories</code> - List your categories
• <code>/currency [code]</code> - Show or change your currency
• <code>/help</code> - Show this help message`

	b.sendHTML(ctx, tg, update.Message.Chat.ID, text)
}

func (b *Bot) handleCategories(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleCategoriesCore(ctx, tgBot, update)
}

func (b *Bot) handleCategoriesCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	categories, err := b.svc.Categories.List(ctx, update.Message.From.ID)
	if err != nil {
		b.sendHTML(ctx, tg, chatID, userFailure("fetch categories", err))
		return
	}
	if len(categories) == 0 {
		b.sendHTML(ctx, tg, chatID, "No categories found.")
		return
	}

	var sb strings.Builder
	var current appmodels.TransactionType
	for _, cat := range categories {
		if cat.Type != current {
			current = cat.Type
			if current == appmodels.TypeIncome {
				sb.WriteString("\n💰 <b>Income Categories</b>\n")
			} else {
				sb.WriteString("\n📁 <b>Expense Categories</b>\n")
			}
		}
		fmt.Fprintf(&sb, "• %s\n", escapeHTML(cat.Name))
	}
	b.sendHTML(ctx, tg, chatID, strings.TrimSpace(sb.String()))
}

func (b *Bot) handleAccounts(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleAccountsCore(ctx, tgBot, update)
}

func (b *Bot) handleAccountsCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	accounts, err := b.svc.Accounts.List(ctx, userID)
	if err != nil {
		b.sendHTML(ctx, tg, chatID, userFailure("fetch accounts", err))
		return
	}
	if len(accounts) == 0 {
		b.sendHTML(ctx, tg, chatID, "No accounts yet. Add one with <code>/addaccount bank 1000000 BCA</code>")
		return
	}

	currency := b.svc.Reports.Currency(ctx, userID)
	total := decimal.Zero
	var sb strings.Builder
	sb.WriteString("🏦 <b>Accounts</b>\n\n")
	for _, a := range accounts {
		total = total.Add(a.Balance)
		fmt.Fprintf(&sb, "<code>#%d</code> %s (%s): <b>%s</b>\n",
			a.Account.ID, escapeHTML(a.Account.Name), a.Account.Type, escapeHTML(finance.FormatMoney(currency, a.Balance)))
	}
	fmt.Fprintf(&sb, "\nTotal: <b>%s</b>", escapeHTML(finance.FormatMoney(currency, total)))
	b.sendHTML(ctx, tg, chatID, sb.String())
}

func (b *Bot) handleAddAccount(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleAddAccountCore(ctx, tgBot, update)
}

func (b *Bot) handleAddAccountCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	args, err := parseAccountArgs(extractCommandArgs(update.Message.Text, "/addaccount"))
	if err != nil {
		b.sendHTML(ctx, tg, chatID, "❌ Usage: <code>/addaccount &lt;type&gt; &lt;initial&gt; &lt;name&gt;</code>\nTypes: bank, e_wallet, cash, investment, credit_card, other")
		return
	}

	account := &appmodels.Account{
		UserID:         userID,
		Name:           args.Name,
		Type:           args.Type,
		InitialBalance: args.Initial,
	}
	if err := b.svc.Accounts.Create(ctx, account); err != nil {
		b.sendHTML(ctx, tg, chatID, userFailure("create account", err))
		return
	}

	currency := b.svc.Reports.Currency(ctx, userID)
	b.sendHTML(ctx, tg, chatID, fmt.Sprintf("✅ Account <code>#%d</code> %s created with %s",
		account.ID, escapeHTML(account.Name), escapeHTML(finance.FormatMoney(currency, account.InitialBalance))))
}

func (b *Bot) handleExpense(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleRecordCore(ctx, tgBot, update, "/expense", appmodels.TypeExpense)
}

func (b *Bot) handleIncome(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleRecordCore(ctx, tgBot, update, "/income", appmodels.TypeIncome)
}

// handleRecordCore implements /expense and /income.
func (b *Bot) handleRecordCore(ctx context.Context, tg TelegramAPI, update *models.Update, command string, txType appmodels.TransactionType) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	parsed := ParseEntry(extractCommandArgs(update.Message.Text, command))
	if parsed == nil {
		b.sendHTML(ctx, tg, chatID, fmt.Sprintf("❌ Usage: <code>%s &lt;amount&gt; &lt;note&gt; [#category]</code>\nExample: <code>%s 25000 lunch #Food</code>", command, command))
		return
	}
	b.record(ctx, tg, update.Message.From.ID, chatID, txType, parsed)
}

// handleFreeTextCore records "<amount> <note>" messages as expenses. It
// reports whether the text was understood.
func (b *Bot) handleFreeTextCore(ctx context.Context, tg TelegramAPI, update *models.Update) bool {
	parsed := ParseEntry(update.Message.Text)
	if parsed == nil {
		return false
	}
	b.record(ctx, tg, update.Message.From.ID, update.Message.Chat.ID, appmodels.TypeExpense, parsed)
	return true
}

func (b *Bot) record(ctx context.Context, tg TelegramAPI, userID, chatID int64, txType appmodels.TransactionType, parsed *ParsedEntry) {
	cat, spending, err := b.resolveCategory(ctx, userID, txType, parsed)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			b.sendHTML(ctx, tg, chatID, fmt.Sprintf("❌ Unknown %s category %q. See /categories.", txType, escapeHTML(parsed.CategoryName)))
			return
		}
		b.sendHTML(ctx, tg, chatID, userFailure("record transaction", err))
		return
	}

	tx := &appmodels.Transaction{
		UserID:       userID,
		CategoryID:   cat.ID,
		Type:         txType,
		Amount:       parsed.Amount,
		Note:         parsed.Note,
		SpendingType: spending,
	}
	if err := b.svc.Transactions.Record(ctx, tx); err != nil {
		b.sendHTML(ctx, tg, chatID, userFailure("record transaction", err))
		return
	}

	currency := b.svc.Reports.Currency(ctx, userID)
	title := "✅ <b>Expense Recorded</b>"
	if txType == appmodels.TypeIncome {
		title = "✅ <b>Income Recorded</b>"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n\n🆔 <code>%d</code>\n💵 %s\n📁 %s\n",
		title, tx.ID, escapeHTML(finance.FormatMoney(currency, tx.Amount)), escapeHTML(cat.Name))
	if tx.Note != "" {
		fmt.Fprintf(&sb, "📝 %s\n", escapeHTML(tx.Note))
	}
	if tx.SpendingType != "" {
		fmt.Fprintf(&sb, "🏷 %s\n", tx.SpendingType)
	}

	if txType == appmodels.TypeExpense {
		alerts, err := b.svc.Budgets.Alerts(ctx, userID)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("Failed to check budget alerts after expense")
		}
		for _, a := range alerts {
			if a.CategoryName == cat.Name || a.CategoryName == finance.TotalCategoryLabel {
				fmt.Fprintf(&sb, "\n%s %s", alertIcon(a), escapeHTML(a.Message))
			}
		}
	}

	b.sendHTML(ctx, tg, chatID, strings.TrimSpace(sb.String()))
}

// resolveCategory picks the category for an entry: the named one, else the
// classifier's suggestion, else the "Other" category of the type.
func (b *Bot) resolveCategory(ctx context.Context, userID int64, txType appmodels.TransactionType, parsed *ParsedEntry) (*appmodels.Category, appmodels.SpendingType, error) {
	if parsed.CategoryName != "" {
		cat, err := b.svc.Categories.FindByName(ctx, userID, txType, parsed.CategoryName)
		return cat, "", err
	}

	if b.classifier != nil && parsed.Note != "" {
		if cat, spending, ok := b.suggest(ctx, userID, txType, parsed.Note); ok {
			return cat, spending, nil
		}
	}

	cat, err := b.svc.Categories.FindByName(ctx, userID, txType, appmodels.OtherCategoryName)
	return cat, "", err
}

func (b *Bot) suggest(ctx context.Context, userID int64, txType appmodels.TransactionType, note string) (*appmodels.Category, appmodels.SpendingType, bool) {
	categories, err := b.svc.Categories.List(ctx, userID)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Failed to list categories for suggestion")
		return nil, "", false
	}
	byName := make(map[string]*appmodels.Category)
	var names []string
	for i := range categories {
		if categories[i].Type == txType {
			byName[categories[i].Name] = &categories[i]
			names = append(names, categories[i].Name)
		}
	}

	result, err := b.classifier.Classify(ctx, note, txType, names)
	if err != nil {
		logger.Log.Warn().Err(err).Str("user_hash", logger.HashUserID(userID)).Msg("Category suggestion failed, using default")
		return nil, "", false
	}
	cat, ok := byName[result.Category]
	if !ok {
		return nil, "", false
	}
	return cat, result.SpendingType, true
}

func (b *Bot) handleDelete(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleDeleteCore(ctx, tgBot, update)
}

func (b *Bot) handleDeleteCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	id, err := strconv.Atoi(extractCommandArgs(update.Message.Text, "/delete"))
	if err != nil || id <= 0 {
		b.sendHTML(ctx, tg, chatID, "❌ Usage: <code>/delete &lt;id&gt;</code>")
		return
	}
	if err := b.svc.Transactions.Delete(ctx, update.Message.From.ID, id); err != nil {
		b.sendHTML(ctx, tg, chatID, userFailure("delete transaction", err))
		return
	}
	b.sendHTML(ctx, tg, chatID, fmt.Sprintf("🗑 Transaction <code>%d</code> deleted.", id))
}

func (b *Bot) handleTransfer(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleTransferCore(ctx, tgBot, update)
}

func (b *Bot) handleTransferCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	args, err := parseTransferArgs(extractCommandArgs(update.Message.Text, "/transfer"))
	if err != nil {
		b.sendHTML(ctx, tg, chatID, "❌ Usage: <code>/transfer &lt;from id&gt; &lt;to id&gt; &lt;amount&gt; [note]</code>\nSee /accounts for ids.")
		return
	}

	res, err := b.svc.Accounts.Transfer(ctx, service.TransferRequest{
		UserID:        userID,
		FromAccountID: args.From,
		ToAccountID:   args.To,
		Amount:        args.Amount,
		Note:          args.Note,
	})
	if err != nil {
		b.sendHTML(ctx, tg, chatID, userFailure("transfer", err))
		return
	}

	currency := b.svc.Reports.Currency(ctx, userID)
	b.sendHTML(ctx, tg, chatID, fmt.Sprintf("🔁 <b>Transfer Completed</b>\n\n%s\n\n<code>#%d</code> balance: %s\n<code>#%d</code> balance: %s",
		escapeHTML(finance.FormatMoney(currency, res.Outgoing.Amount)),
		args.From, escapeHTML(finance.FormatMoney(currency, res.FromBalance)),
		args.To, escapeHTML(finance.FormatMoney(currency, res.ToBalance))))
}
