// Package mocks provides test doubles for the Telegram bot handlers.
package mocks

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// TelegramAPI is the part of the Telegram client the handlers use.
// It lives here so the bot package and its tests can share it without a cycle.
type TelegramAPI interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendDocument(ctx context.Context, params *bot.SendDocumentParams) (*models.Message, error)
}

// SentMessage is a recorded SendMessage call.
type SentMessage struct {
	ChatID    any
	Text      string
	ParseMode models.ParseMode
}

// SentDocument is a recorded SendDocument call. Data holds the uploaded bytes.
type SentDocument struct {
	ChatID    any
	Filename  string
	Caption   string
	ParseMode models.ParseMode
	Data      []byte
}

var _ TelegramAPI = (*MockBot)(nil)

// MockBot records outgoing Telegram calls in memory.
type MockBot struct {
	mu sync.RWMutex

	SentMessages  []SentMessage
	SentDocuments []SentDocument

	// SendMessageError and SendDocumentError make the calls fail without
	// recording anything.
	SendMessageError  error
	SendDocumentError error

	nextID int
}

// NewMockBot creates an empty MockBot.
func NewMockBot() *MockBot {
	return &MockBot{nextID: 1000}
}

func (m *MockBot) reply(chatID any) *models.Message {
	m.nextID++
	return &models.Message{ID: m.nextID, Chat: models.Chat{ID: chatIDToInt64(chatID)}}
}

// SendMessage records the message.
func (m *MockBot) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SendMessageError != nil {
		return nil, m.SendMessageError
	}
	m.SentMessages = append(m.SentMessages, SentMessage{
		ChatID:    params.ChatID,
		Text:      params.Text,
		ParseMode: params.ParseMode,
	})

	msg := m.reply(params.ChatID)
	msg.Text = params.Text
	return msg, nil
}

// SendDocument records the document. Only InputFileUpload documents are
// supported since the handlers never resend files by id.
func (m *MockBot) SendDocument(_ context.Context, params *bot.SendDocumentParams) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SendDocumentError != nil {
		return nil, m.SendDocumentError
	}
	upload, ok := params.Document.(*models.InputFileUpload)
	if !ok {
		return nil, fmt.Errorf("mock: unsupported document %T", params.Document)
	}

	doc := SentDocument{
		ChatID:    params.ChatID,
		Filename:  upload.Filename,
		Caption:   params.Caption,
		ParseMode: params.ParseMode,
	}
	if upload.Data != nil {
		data, err := io.ReadAll(upload.Data)
		if err != nil {
			return nil, err
		}
		doc.Data = data
	}
	m.SentDocuments = append(m.SentDocuments, doc)

	msg := m.reply(params.ChatID)
	msg.Caption = params.Caption
	msg.Document = &models.Document{FileID: fmt.Sprintf("mock-%d", msg.ID), FileName: doc.Filename}
	return msg, nil
}

// Reset clears recorded calls and simulated errors.
func (m *MockBot) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SentMessages = nil
	m.SentDocuments = nil
	m.SendMessageError = nil
	m.SendDocumentError = nil
}

func last[T any](items []T) *T {
	if len(items) == 0 {
		return nil
	}
	return &items[len(items)-1]
}

// LastSentMessage returns the most recent message, or nil.
func (m *MockBot) LastSentMessage() *SentMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return last(m.SentMessages)
}

// LastSentDocument returns the most recent document, or nil.
func (m *MockBot) LastSentDocument() *SentDocument {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return last(m.SentDocuments)
}

// SentMessageCount returns the number of messages sent.
func (m *MockBot) SentMessageCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.SentMessages)
}

// SentDocumentCount returns the number of documents sent.
func (m *MockBot) SentDocumentCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.SentDocuments)
}

// MessagesTo returns the texts sent to chatID, oldest first.
func (m *MockBot) MessagesTo(chatID int64) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var texts []string
	for _, msg := range m.SentMessages {
		if chatIDToInt64(msg.ChatID) == chatID {
			texts = append(texts, msg.Text)
		}
	}
	return texts
}

func chatIDToInt64(chatID any) int64 {
	switch v := chatID.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	default:
		return 0
	}
}
