// Package bot is the Telegram boundary of the ledger.
package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"gitlab.com/yelinaung/finflow/internal/config"
	"gitlab.com/yelinaung/finflow/internal/finance"
	"gitlab.com/yelinaung/finflow/internal/gemini"
	"gitlab.com/yelinaung/finflow/internal/logger"
	"gitlab.com/yelinaung/finflow/internal/models"
	"gitlab.com/yelinaung/finflow/internal/service"
)

// Classifier suggests a category and spending type for a note.
type Classifier interface {
	Classify(ctx context.Context, note string, txType models.TransactionType, categories []string) (*gemini.Classification, error)
}

// Bot wraps the Telegram bot with application dependencies.
type Bot struct {
	bot        *bot.Bot
	cfg        *config.Config
	svc        *service.Services
	classifier Classifier
	clock      finance.Clock

	// messageSender sends unsolicited messages such as the daily digest.
	messageSender TelegramAPI

	// registered caches users already upserted by this process.
	registered sync.Map
}

// New creates a Bot. classifier may be nil.
func New(cfg *config.Config, svc *service.Services, classifier Classifier, clock finance.Clock) (*Bot, error) {
	if clock == nil {
		clock = time.Now
	}
	b := &Bot{
		cfg:        cfg,
		svc:        svc,
		classifier: classifier,
		clock:      clock,
	}

	opts := []bot.Option{
		bot.WithMiddlewares(b.whitelistMiddleware),
		bot.WithDefaultHandler(b.defaultHandler),
	}

	telegramBot, err := bot.New(cfg.TelegramBotToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b.bot = telegramBot
	b.messageSender = telegramBot
	b.registerHandlers()

	return b, nil
}

// Start polls for updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) {
	go b.startDailyDigestLoop(ctx)

	logger.Log.Info().Msg("Bot started polling")
	b.bot.Start(ctx)
	logger.Log.Info().Msg("Bot stopped")
}

func (b *Bot) registerHandlers() {
	commands := []struct {
		pattern string
		handler bot.HandlerFunc
	}{
		{"/start", b.handleStart},
		{"/help", b.handleHelp},
		{"/categories", b.handleCategories},
		{"/accounts", b.handleAccounts},
		{"/addaccount", b.handleAddAccount},
		{"/expense", b.handleExpense},
		{"/income", b.handleIncome},
		{"/delete", b.handleDelete},
		{"/list", b.handleList},
		{"/today", b.handleToday},
		{"/week", b.handleWeek},
		{"/currency", b.handleCurrency},
		{"/transfer", b.handleTransfer},
		{"/budgets", b.handleBudgets},
		{"/addbudget", b.handleAddBudget},
		{"/alerts", b.handleAlerts},
		{"/report", b.handleReport},
		{"/forecast", b.handleForecast},
		{"/insights", b.handleInsights},
		{"/export", b.handleExport},
		{"/chart", b.handleChart},
	}
	for _, c := range commands {
		b.bot.RegisterHandler(bot.HandlerTypeMessageText, c.pattern, bot.MatchTypePrefix, c.handler)
	}
}

// whitelistMiddleware drops updates from users outside the whitelist and
// registers everyone else before the handler runs.
func (b *Bot) whitelistMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
		if b.authorizeCore(ctx, tgBot, update) {
			next(ctx, tgBot, update)
		}
	}
}

// authorizeCore reports whether the update may reach a handler.
func (b *Bot) authorizeCore(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) bool {
	from := sender(update)
	if from == nil {
		return false
	}

	logUserAction(from, update)

	if !b.cfg.IsUserWhitelisted(from.ID, from.Username) {
		logger.Log.Warn().
			Str("user_hash", logger.HashUserID(from.ID)).
			Msg("Blocked non-whitelisted user")
		if update.Message != nil {
			b.sendHTML(ctx, tg, update.Message.Chat.ID, "⛔ Sorry, you are not authorized to use this bot.")
		}
		return false
	}

	if err := b.ensureUserRegistered(ctx, from); err != nil {
		logger.Log.Error().
			Str("user_hash", logger.HashUserID(from.ID)).
			Err(err).
			Msg("Failed to register user")
	}
	return true
}

func sender(update *tgmodels.Update) *tgmodels.User {
	switch {
	case update.Message != nil:
		return update.Message.From
	case update.EditedMessage != nil:
		return update.EditedMessage.From
	}
	return nil
}

func logUserAction(from *tgmodels.User, update *tgmodels.Update) {
	msg := update.Message
	if msg == nil {
		msg = update.EditedMessage
	}
	logger.Log.Info().
		Str("user_hash", logger.HashUserID(from.ID)).
		Str("chat_hash", logger.HashChatID(msg.Chat.ID)).
		Bool("edited", update.EditedMessage != nil).
		Str("text", logger.SanitizeText(msg.Text)).
		Msg("User input")
}

// ensureUserRegistered upserts the sender once per process. Registration
// also seeds the default categories.
func (b *Bot) ensureUserRegistered(ctx context.Context, from *tgmodels.User) error {
	if _, ok := b.registered.Load(from.ID); ok {
		return nil
	}
	user := &models.User{
		ID:        from.ID,
		Username:  from.Username,
		FirstName: from.FirstName,
		LastName:  from.LastName,
	}
	if err := b.svc.Users.Register(ctx, user); err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}
	b.registered.Store(from.ID, struct{}{})
	return nil
}

// defaultHandler treats unrecognized text as a free-text expense.
func (b *Bot) defaultHandler(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
	b.defaultHandlerCore(ctx, tgBot, update)
}

func (b *Bot) defaultHandlerCore(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) {
	if update.Message == nil {
		return
	}
	if b.handleFreeTextCore(ctx, tg, update) {
		return
	}
	b.sendHTML(ctx, tg, update.Message.Chat.ID,
		"I didn't understand that. Use /help to see available commands, or send an expense like <code>25000 lunch</code>")
}

// sendHTML sends an HTML message and logs failures.
func (b *Bot) sendHTML(ctx context.Context, tg TelegramAPI, chatID int64, text string) {
	_, err := tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: tgmodels.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Str("chat_hash", logger.HashChatID(chatID)).Msg("Failed to send message")
	}
}
