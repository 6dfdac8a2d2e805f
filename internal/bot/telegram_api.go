package bot

import (
	tgbot "github.com/go-telegram/bot"

	"gitlab.com/yelinaung/finflow/internal/bot/mocks"
)

// TelegramAPI is the Telegram client surface the handlers use.
type TelegramAPI = mocks.TelegramAPI

var _ TelegramAPI = (*tgbot.Bot)(nil)
