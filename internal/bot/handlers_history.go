package bot

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"gitlab.com/yelinaung/finflow/internal/finance"
	appmodels "gitlab.com/yelinaung/finflow/internal/models"
)

// recentLimit is how many transactions /list shows.
const recentLimit = 10

// formatTransactionList renders txs under header, newest first as given.
func formatTransactionList(header, currency string, txs []appmodels.Transaction) string {
	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString("\n")
	if len(txs) == 0 {
		sb.WriteString("\nNo transactions found.")
		return sb.String()
	}
	for _, tx := range txs {
		sign := "-"
		if tx.Type == appmodels.TypeIncome {
			sign = "+"
		}
		category := ""
		if tx.Category != nil {
			category = tx.Category.Name
		}
		fmt.Fprintf(&sb, "\n<code>#%d</code> %s %s%s %s",
			tx.ID, tx.Date.Format(time.DateOnly), sign,
			escapeHTML(finance.FormatMoney(currency, tx.Amount)), escapeHTML(category))
		if tx.Note != "" {
			fmt.Fprintf(&sb, " · %s", escapeHTML(tx.Note))
		}
	}
	return sb.String()
}

func (b *Bot) handleList(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleListCore(ctx, tgBot, update)
}

func (b *Bot) handleListCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	txs, err := b.svc.Transactions.Recent(ctx, userID, recentLimit)
	if err != nil {
		b.sendHTML(ctx, tg, chatID, userFailure("fetch transactions", err))
		return
	}
	currency := b.svc.Reports.Currency(ctx, userID)
	b.sendHTML(ctx, tg, chatID, formatTransactionList("📋 <b>Recent Transactions</b>", currency, txs))
}

func (b *Bot) handleToday(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleTodayCore(ctx, tgBot, update)
}

func (b *Bot) handleTodayCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	today := finance.Day(b.clock())
	b.sendPeriodCore(ctx, tg, update, "📅 <b>Today</b>", finance.Window{Start: today, End: today})
}

func (b *Bot) handleWeek(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleWeekCore(ctx, tgBot, update)
}

func (b *Bot) handleWeekCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	w := finance.CurrentWindow(appmodels.PeriodWeekly, b.clock())
	b.sendPeriodCore(ctx, tg, update, "📆 <b>This Week</b>", w)
}

// sendPeriodCore lists the transactions dated in w with the period totals.
func (b *Bot) sendPeriodCore(ctx context.Context, tg TelegramAPI, update *models.Update, title string, w finance.Window) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	txs, err := b.svc.Transactions.Between(ctx, userID, w.Start, w.End)
	if err != nil {
		b.sendHTML(ctx, tg, chatID, userFailure("fetch transactions", err))
		return
	}
	currency := b.svc.Reports.Currency(ctx, userID)
	totals := finance.TotalsOf(txs)
	slices.Reverse(txs)

	header := fmt.Sprintf("%s\nIncome: %s · Expense: %s", title,
		escapeHTML(finance.FormatMoney(currency, totals.Income)),
		escapeHTML(finance.FormatMoney(currency, totals.Expense)))
	b.sendHTML(ctx, tg, chatID, formatTransactionList(header, currency, txs))
}

func (b *Bot) handleCurrency(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleCurrencyCore(ctx, tgBot, update)
}

// handleCurrencyCore shows or changes the currency amounts are rendered in.
func (b *Bot) handleCurrencyCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	code := strings.ToUpper(extractCommandArgs(update.Message.Text, "/currency"))
	if code == "" {
		codes := slices.Sorted(maps.Keys(appmodels.CurrencySymbols))
		b.sendHTML(ctx, tg, chatID, fmt.Sprintf("💱 Your currency is <b>%s</b>.\nChange it with <code>/currency &lt;code&gt;</code>, e.g. %s",
			b.svc.Reports.Currency(ctx, userID), strings.Join(codes, ", ")))
		return
	}
	if _, ok := appmodels.CurrencySymbols[code]; !ok {
		b.sendHTML(ctx, tg, chatID, fmt.Sprintf("❌ Unknown currency <code>%s</code>.", escapeHTML(code)))
		return
	}
	if err := b.svc.Users.SetCurrency(ctx, userID, code); err != nil {
		b.sendHTML(ctx, tg, chatID, userFailure("change currency", err))
		return
	}
	b.sendHTML(ctx, tg, chatID, fmt.Sprintf("✅ Amounts are now shown in <b>%s</b>.", code))
}
