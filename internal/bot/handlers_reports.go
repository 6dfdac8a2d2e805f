package bot

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/finflow/internal/export"
	"gitlab.com/yelinaung/finflow/internal/finance"
	"gitlab.com/yelinaung/finflow/internal/logger"
	appmodels "gitlab.com/yelinaung/finflow/internal/models"
	"gitlab.com/yelinaung/finflow/internal/service"
)

func signed(n int) string {
	if n > 0 {
		return fmt.Sprintf("+%d%%", n)
	}
	return fmt.Sprintf("%d%%", n)
}

// monthArg returns the optional YYYY-MM argument, defaulting to the current month.
func (b *Bot) monthArg(text, command string) (string, bool) {
	arg := extractCommandArgs(text, command)
	if arg == "" {
		return finance.MonthKey(b.clock()), true
	}
	if _, err := finance.ParseMonthKey(arg); err != nil {
		return "", false
	}
	return arg, true
}

func (b *Bot) handleReport(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleReportCore(ctx, tgBot, update)
}

func (b *Bot) handleReportCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	month, ok := b.monthArg(update.Message.Text, "/report")
	if !ok {
		b.sendHTML(ctx, tg, chatID, "❌ Usage: <code>/report [YYYY-MM]</code>")
		return
	}

	r, err := b.svc.Reports.MonthlyReport(ctx, userID, month)
	if err != nil {
		b.sendHTML(ctx, tg, chatID, userFailure("build report", err))
		return
	}
	currency := b.svc.Reports.Currency(ctx, userID)

	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 <b>Report %s</b>\n\n", r.Month)
	fmt.Fprintf(&sb, "Income: <b>%s</b> (%s)\n", escapeHTML(finance.FormatMoney(currency, r.TotalIncome)), signed(r.Comparison.IncomeChange))
	fmt.Fprintf(&sb, "Expense: <b>%s</b> (%s)\n", escapeHTML(finance.FormatMoney(currency, r.TotalExpense)), signed(r.Comparison.ExpenseChange))
	fmt.Fprintf(&sb, "Remaining: <b>%s</b>\n", escapeHTML(finance.FormatMoney(currency, r.RemainingBalance)))
	fmt.Fprintf(&sb, "Needs %d%% · Wants %d%% (wants %s)\n", r.NeedPercentage, r.WantPercentage, signed(r.Comparison.WantChange))

	if len(r.TopCategories) > 0 {
		sb.WriteString("\n<b>Top categories</b>\n")
		for i, c := range r.TopCategories {
			fmt.Fprintf(&sb, "%d. %s: %s (%d%%)\n", i+1, escapeHTML(c.Category), escapeHTML(finance.FormatMoney(currency, c.Amount)), c.Percentage)
		}
	}

	b.sendHTML(ctx, tg, chatID, strings.TrimSpace(sb.String()))
}

func (b *Bot) handleForecast(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleForecastCore(ctx, tgBot, update)
}

func (b *Bot) handleForecastCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	f, err := b.svc.Reports.Forecast(ctx, userID)
	if err != nil {
		b.sendHTML(ctx, tg, chatID, userFailure("build forecast", err))
		return
	}
	currency := b.svc.Reports.Currency(ctx, userID)

	var sb strings.Builder
	sb.WriteString("🔮 <b>Forecast</b>\n\n")
	fmt.Fprintf(&sb, "Balance now: <b>%s</b>\n", escapeHTML(finance.FormatMoney(currency, f.CurrentBalance)))
	fmt.Fprintf(&sb, "Average daily expense: %s\n", escapeHTML(finance.FormatMoney(currency, f.AverageDailyExpense)))
	fmt.Fprintf(&sb, "Estimated end of month: <b>%s</b> (%d days left)\n", escapeHTML(finance.FormatMoney(currency, f.EstimatedEndOfMonth)), f.DaysLeftInMonth)
	if f.AverageDailyExpense.IsZero() {
		sb.WriteString("No expenses in the last 30 days.")
	} else {
		fmt.Fprintf(&sb, "Money lasts about <b>%d</b> more days at this pace.", f.SafeDaysRemaining)
	}

	b.sendHTML(ctx, tg, chatID, sb.String())
}

func (b *Bot) handleInsights(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleInsightsCore(ctx, tgBot, update)
}

func (b *Bot) handleInsightsCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	month, ok := b.monthArg(update.Message.Text, "/insights")
	if !ok {
		b.sendHTML(ctx, tg, chatID, "❌ Usage: <code>/insights [YYYY-MM]</code>")
		return
	}

	in, err := b.svc.Reports.Insights(ctx, update.Message.From.ID, month)
	if err != nil {
		b.sendHTML(ctx, tg, chatID, userFailure("build insights", err))
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "💡 <b>Insights %s</b>\n", in.Month)
	if len(in.Insights) == 0 {
		sb.WriteString("\nNot enough data yet.\n")
	}
	for _, i := range in.Insights {
		fmt.Fprintf(&sb, "\n<b>%s</b>\n%s\n", escapeHTML(i.Title), escapeHTML(i.Description))
	}
	fmt.Fprintf(&sb, "\n🗓 <b>Week %s</b>\n%s", in.WeeklyReflection.Week, escapeHTML(in.WeeklyReflection.Message))

	b.sendHTML(ctx, tg, chatID, sb.String())
}

func (b *Bot) handleExport(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleExportCore(ctx, tgBot, update)
}

func (b *Bot) handleExportCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	var (
		txs      []appmodels.Transaction
		filename = export.Filename(b.clock())
		err      error
	)
	if month := extractCommandArgs(update.Message.Text, "/export"); month != "" {
		if _, perr := finance.ParseMonthKey(month); perr != nil {
			b.sendHTML(ctx, tg, chatID, "❌ Usage: <code>/export [YYYY-MM]</code>")
			return
		}
		txs, _, err = b.svc.Transactions.Export(ctx, service.ExportQuery{UserID: userID, Month: month})
		filename = export.MonthFilename(month)
	} else {
		txs, err = b.svc.Transactions.All(ctx, userID)
	}
	if err != nil {
		b.sendHTML(ctx, tg, chatID, userFailure("export transactions", err))
		return
	}
	if len(txs) == 0 {
		b.sendHTML(ctx, tg, chatID, "📭 No transactions to export.")
		return
	}

	data, err := export.TransactionsCSV(txs)
	if err != nil {
		b.sendHTML(ctx, tg, chatID, userFailure("export transactions", err))
		return
	}

	_, err = tg.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID:    chatID,
		Document:  &models.InputFileUpload{Filename: filename, Data: bytes.NewReader(data)},
		Caption:   fmt.Sprintf("📄 <b>Export</b>\n%d transactions", len(txs)),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send export document")
		b.sendHTML(ctx, tg, chatID, "❌ Failed to send export. Please try again.")
		return
	}

	logger.Log.Info().
		Str("user_hash", logger.HashUserID(userID)).
		Int("transaction_count", len(txs)).
		Msg("Export sent")
}

func (b *Bot) handleChart(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleChartCore(ctx, tgBot, update)
}

func (b *Bot) handleChartCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	month, ok := b.monthArg(update.Message.Text, "/chart")
	if !ok {
		b.sendHTML(ctx, tg, chatID, "❌ Usage: <code>/chart [YYYY-MM]</code>")
		return
	}

	rows, err := b.svc.Reports.CategoryBreakdown(ctx, userID, month, 0)
	if err != nil {
		b.sendHTML(ctx, tg, chatID, userFailure("generate chart", err))
		return
	}
	if len(rows) == 0 {
		b.sendHTML(ctx, tg, chatID, fmt.Sprintf("📊 No expenses found for %s.", month))
		return
	}

	chartData, err := GenerateCategoryChart(rows, "Expenses "+month)
	if err != nil {
		b.sendHTML(ctx, tg, chatID, userFailure("generate chart", err))
		return
	}

	currency := b.svc.Reports.Currency(ctx, userID)
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.Amount)
	}

	_, err = tg.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID:    chatID,
		Document:  &models.InputFileUpload{Filename: chartFilename(month), Data: bytes.NewReader(chartData)},
		Caption:   fmt.Sprintf("📊 <b>Expenses %s</b>\n\nTotal: %s\nCategories: %d", month, escapeHTML(finance.FormatMoney(currency, total)), len(rows)),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send chart document")
		b.sendHTML(ctx, tg, chatID, "❌ Failed to send chart. Please try again.")
	}
}
