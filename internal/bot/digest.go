package bot

import (
	"context"
	"time"

	tgbot "github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"gitlab.com/yelinaung/finflow/internal/logger"
)

const (
	// DigestCheckInterval is how often the digest loop checks whether to send.
	DigestCheckInterval = 30 * time.Minute
	// DigestTimeout bounds a single digest run.
	DigestTimeout = 2 * time.Minute
)

// startDailyDigestLoop sends each user their budget alerts once a day at
// the configured hour.
func (b *Bot) startDailyDigestLoop(ctx context.Context) {
	if !b.cfg.DailyDigestEnabled {
		logger.Log.Info().Msg("Daily digest is disabled")
		return
	}

	logger.Log.Info().
		Int("hour", b.cfg.DigestHour).
		Str("timezone", b.cfg.Timezone).
		Msg("Daily digest loop started")

	sent := make(map[int64]string)
	ticker := time.NewTicker(DigestCheckInterval)
	defer ticker.Stop()

	// Check once right away so a start during the digest hour is not skipped.
	b.checkAndSendDigests(ctx, sent, b.clock())

	for {
		select {
		case <-ctx.Done():
			logger.Log.Info().Msg("Daily digest loop stopped")
			return
		case <-ticker.C:
			b.checkAndSendDigests(ctx, sent, b.clock())
		}
	}
}

// checkAndSendDigests sends the digest to every whitelisted user with at
// least one alert, at most once per day. sent maps user id to the last day
// (YYYY-MM-DD) a digest went out.
func (b *Bot) checkAndSendDigests(ctx context.Context, sent map[int64]string, now time.Time) {
	if now.Hour() != b.cfg.DigestHour {
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, DigestTimeout)
	defer cancel()

	today := now.Format(time.DateOnly)
	for uid, day := range sent {
		if day != today {
			delete(sent, uid)
		}
	}

	users, err := b.svc.Users.All(checkCtx)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to fetch users for daily digest")
		return
	}

	for _, user := range users {
		if sent[user.ID] == today || !b.cfg.IsUserWhitelisted(user.ID, user.Username) {
			continue
		}
		log := logger.Log.With().Str("user_hash", logger.HashUserID(user.ID)).Logger()

		alerts, err := b.svc.Budgets.Alerts(checkCtx, user.ID)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to evaluate budgets for digest")
			continue
		}
		if len(alerts) == 0 {
			continue
		}

		_, err = b.messageSender.SendMessage(checkCtx, &tgbot.SendMessageParams{
			ChatID:    user.ID,
			Text:      formatAlerts("🌙 <b>Daily Budget Digest</b>", alerts),
			ParseMode: tgmodels.ParseModeHTML,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Failed to send daily digest")
			continue
		}

		sent[user.ID] = today
		log.Debug().Int("alerts", len(alerts)).Msg("Sent daily digest")
	}
}
