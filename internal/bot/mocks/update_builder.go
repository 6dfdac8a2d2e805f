package mocks

import (
	"github.com/go-telegram/bot/models"
)

// Default sender of built updates.
const (
	DefaultUsername  = "testuser"
	DefaultFirstName = "Test"
	DefaultLastName  = "User"
)

// UpdateBuilder assembles Telegram updates for handler tests.
type UpdateBuilder struct {
	update models.Update
}

// NewUpdateBuilder starts an update with neither message nor sender.
func NewUpdateBuilder() *UpdateBuilder {
	return &UpdateBuilder{}
}

func privateMessage(chatID, userID int64, text string) *models.Message {
	return &models.Message{
		ID:   1,
		Chat: models.Chat{ID: chatID, Type: models.ChatTypePrivate},
		From: &models.User{
			ID:        userID,
			Username:  DefaultUsername,
			FirstName: DefaultFirstName,
			LastName:  DefaultLastName,
		},
		Text: text,
	}
}

// WithMessage sets a private-chat message sent by userID.
func (b *UpdateBuilder) WithMessage(chatID, userID int64, text string) *UpdateBuilder {
	b.update.Message = privateMessage(chatID, userID, text)
	return b
}

// WithEditedMessage sets an edited private-chat message sent by userID.
func (b *UpdateBuilder) WithEditedMessage(chatID, userID int64, text string) *UpdateBuilder {
	b.update.EditedMessage = privateMessage(chatID, userID, text)
	return b
}

// WithFrom replaces the sender on whichever messages are set.
func (b *UpdateBuilder) WithFrom(userID int64, username, firstName, lastName string) *UpdateBuilder {
	for _, msg := range []*models.Message{b.update.Message, b.update.EditedMessage} {
		if msg != nil {
			msg.From = &models.User{ID: userID, Username: username, FirstName: firstName, LastName: lastName}
		}
	}
	return b
}

// Build returns a copy of the update built so far.
func (b *UpdateBuilder) Build() *models.Update {
	u := b.update
	return &u
}

// MessageUpdate is a private message update from the default sender.
func MessageUpdate(chatID, userID int64, text string) *models.Update {
	return NewUpdateBuilder().WithMessage(chatID, userID, text).Build()
}

// CommandUpdate is MessageUpdate for a /command line.
func CommandUpdate(chatID, userID int64, command string) *models.Update {
	return MessageUpdate(chatID, userID, command)
}
