package bot

import (
	"context"
	"testing"
	"time"

	tgmodels "github.com/go-telegram/bot/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"gitlab.com/yelinaung/finflow/internal/bot/mocks"
	"gitlab.com/yelinaung/finflow/internal/config"
	"gitlab.com/yelinaung/finflow/internal/database"
	"gitlab.com/yelinaung/finflow/internal/finance"
	"gitlab.com/yelinaung/finflow/internal/models"
	"gitlab.com/yelinaung/finflow/internal/service"
)

const (
	testUserID = int64(123456)
	testChatID = int64(123456)
)

// fixedNow is Wednesday 21 October 2026, 20:15 in the bot's timezone.
var fixedNow = time.Date(2026, time.October, 21, 20, 15, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// setupTestBot builds a Bot over a rolled-back transaction with testUserID
// registered and whitelisted.
func setupTestBot(t *testing.T) (*Bot, *mocks.MockBot) {
	t.Helper()
	tx := database.TestTx(t)

	cfg := &config.Config{
		TelegramBotToken:   "test-token",
		WhitelistedUserIDs: []int64{testUserID},
		DigestHour:         20,
		Timezone:           "UTC",
		Location:           time.UTC,
		DailyDigestEnabled: true,
	}
	svc := service.New(tx, service.Options{
		Clock:   fixedClock,
		Palette: finance.Palette{Expense: config.DefaultExpensePalette, Income: config.DefaultIncomePalette},
	})
	require.NoError(t, svc.Users.Register(context.Background(), &models.User{ID: testUserID, Username: "testuser", FirstName: "Test"}))

	mockBot := mocks.NewMockBot()
	b := &Bot{
		cfg:           cfg,
		svc:           svc,
		clock:         fixedClock,
		messageSender: mockBot,
	}
	return b, mockBot
}

func send(t *testing.T, handler func(context.Context, TelegramAPI, *tgmodels.Update), text string) *mocks.MockBot {
	t.Helper()
	mockBot := mocks.NewMockBot()
	handler(context.Background(), mockBot, mocks.CommandUpdate(testChatID, testUserID, text))
	return mockBot
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
