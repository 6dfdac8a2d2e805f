package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"gitlab.com/yelinaung/finflow/internal/finance"
	appmodels "gitlab.com/yelinaung/finflow/internal/models"
	"gitlab.com/yelinaung/finflow/internal/service"
)

const progressBarWidth = 10

// progressBar renders progress (0-100) as a fixed-width bar.
func progressBar(progress int) string {
	filled := min(max(progress, 0), 100) * progressBarWidth / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", progressBarWidth-filled)
}

func statusIcon(st finance.BudgetStatus) string {
	switch {
	case st.Exceeded:
		return "🔴"
	case st.OverThreshold:
		return "🟡"
	default:
		return "🟢"
	}
}

func alertIcon(a finance.Alert) string {
	if a.Type == finance.AlertExceeded {
		return "🚨"
	}
	return "⚠️"
}

func (b *Bot) handleBudgets(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleBudgetsCore(ctx, tgBot, update)
}

func (b *Bot) handleBudgetsCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	statuses, err := b.svc.Budgets.Statuses(ctx, userID)
	if err != nil {
		b.sendHTML(ctx, tg, chatID, userFailure("fetch budgets", err))
		return
	}
	if len(statuses) == 0 {
		b.sendHTML(ctx, tg, chatID, "No active budgets. Create one with <code>/addbudget monthly 2000000 #Food</code>")
		return
	}

	currency := b.svc.Reports.Currency(ctx, userID)
	summary := finance.Summarize(statuses)

	var sb strings.Builder
	sb.WriteString("💼 <b>Budgets</b>\n")
	for _, st := range statuses {
		fmt.Fprintf(&sb, "\n%s <b>%s</b> (%s)\n<code>%s</code> %d%%\n%s of %s, %d days left\n",
			statusIcon(st),
			escapeHTML(st.Budget.Name),
			st.Budget.Period,
			progressBar(st.Progress),
			st.Progress,
			escapeHTML(finance.FormatMoney(currency, st.Spent)),
			escapeHTML(finance.FormatMoney(currency, st.Budget.Amount)),
			st.DaysRemaining)
		if !st.Exceeded && st.DailySafeSpend.IsPositive() {
			fmt.Fprintf(&sb, "Safe to spend %s/day\n", escapeHTML(finance.FormatMoney(currency, st.DailySafeSpend)))
		}
	}
	fmt.Fprintf(&sb, "\nTotal: %s of %s (%d%%)\n🔴 %d  🟡 %d  🟢 %d",
		escapeHTML(finance.FormatMoney(currency, summary.TotalSpent)),
		escapeHTML(finance.FormatMoney(currency, summary.TotalBudget)),
		summary.OverallProgress,
		summary.OverBudgetCount, summary.NearLimitCount, summary.OnTrackCount)

	b.sendHTML(ctx, tg, chatID, sb.String())
}

func (b *Bot) handleAddBudget(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleAddBudgetCore(ctx, tgBot, update)
}

func (b *Bot) handleAddBudgetCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	args, err := parseBudgetArgs(extractCommandArgs(update.Message.Text, "/addbudget"))
	if err != nil {
		b.sendHTML(ctx, tg, chatID, "❌ Usage: <code>/addbudget &lt;weekly|monthly|yearly&gt; &lt;amount&gt; [#category]</code>\nWithout a category the budget covers all expenses.")
		return
	}

	budget := &appmodels.Budget{
		UserID: userID,
		Amount: args.Amount,
		Period: args.Period,
	}
	if args.CategoryName != "" {
		cat, err := b.svc.Categories.FindByName(ctx, userID, appmodels.TypeExpense, args.CategoryName)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				b.sendHTML(ctx, tg, chatID, fmt.Sprintf("❌ Unknown expense category %q. See /categories.", escapeHTML(args.CategoryName)))
				return
			}
			b.sendHTML(ctx, tg, chatID, userFailure("create budget", err))
			return
		}
		budget.CategoryID = &cat.ID
	} else {
		budget.Name = service.OverallBudgetName
	}

	if err := b.svc.Budgets.Create(ctx, budget); err != nil {
		b.sendHTML(ctx, tg, chatID, userFailure("create budget", err))
		return
	}

	currency := b.svc.Reports.Currency(ctx, userID)
	b.sendHTML(ctx, tg, chatID, fmt.Sprintf("✅ Budget <b>%s</b> created: %s %s, alert at %d%%",
		escapeHTML(budget.Name), escapeHTML(finance.FormatMoney(currency, budget.Amount)), budget.Period, budget.AlertThreshold))
}

func (b *Bot) handleAlerts(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleAlertsCore(ctx, tgBot, update)
}

func (b *Bot) handleAlertsCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	alerts, err := b.svc.Budgets.Alerts(ctx, update.Message.From.ID)
	if err != nil {
		b.sendHTML(ctx, tg, chatID, userFailure("fetch alerts", err))
		return
	}
	if len(alerts) == 0 {
		b.sendHTML(ctx, tg, chatID, "✅ All budgets are on track.")
		return
	}
	b.sendHTML(ctx, tg, chatID, formatAlerts("🔔 <b>Budget Alerts</b>", alerts))
}

func formatAlerts(title string, alerts []finance.Alert) string {
	var sb strings.Builder
	sb.WriteString(title)
	sb.WriteString("\n")
	for _, a := range alerts {
		fmt.Fprintf(&sb, "\n%s %s", alertIcon(a), escapeHTML(a.Message))
	}
	return sb.String()
}
