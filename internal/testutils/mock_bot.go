package testutils

import (
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/deweni2/telegram-video-bot/internal/core/domain"
)

// MockMessage captures a single message sent by MockBot.
type MockMessage struct {
	ID       int
	ChatID   int64
	ReplyTo  int
	Text     string
	Keyboard any
}

// MockEdit captures a single EditMessageText call.
type MockEdit struct {
	ChatID    int64
	MessageID int
	Text      string
}

// MockUpload captures a single video or document upload.
type MockUpload struct {
	ChatID  int64
	ReplyTo int
	Path    string
	Caption string
}

// MockBot implements domain.BotInterface for testing.
// Message IDs start at 100 and grow by one per SendMessage.
type MockBot struct {
	mu sync.Mutex

	SentMessages  []MockMessage
	Edits         []MockEdit
	Deleted       []int
	SentVideos    []MockUpload
	SentDocuments []MockUpload

	// Error injection; a non-nil value is returned by the matching call.
	SendMessageError  error
	EditError         error
	DeleteError       error
	SendVideoError    error
	SendDocumentError error

	// OnUpload, if set, runs before every upload with the file path.
	OnUpload func(path string)

	Updates chan tgbotapi.Update
	stopped bool
	nextID  int
}

var _ domain.BotInterface = (*MockBot)(nil)

func NewMockBot() *MockBot {
	return &MockBot{
		Updates: make(chan tgbotapi.Update, 16),
		nextID:  100,
	}
}

func (m *MockBot) SendMessage(chatID int64, replyTo int, text string, keyboard any) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendMessageError != nil {
		return 0, m.SendMessageError
	}
	if m.nextID == 0 {
		m.nextID = 100
	}
	id := m.nextID
	m.nextID++
	m.SentMessages = append(m.SentMessages, MockMessage{
		ID:       id,
		ChatID:   chatID,
		ReplyTo:  replyTo,
		Text:     text,
		Keyboard: keyboard,
	})
	return id, nil
}

func (m *MockBot) EditMessageText(chatID int64, messageID int, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.EditError != nil {
		return m.EditError
	}
	m.Edits = append(m.Edits, MockEdit{ChatID: chatID, MessageID: messageID, Text: text})
	return nil
}

func (m *MockBot) DeleteMessage(_ int64, messageID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.Deleted = append(m.Deleted, messageID)
	return nil
}

func (m *MockBot) SendVideo(chatID int64, replyTo int, path, caption string) error {
	if m.OnUpload != nil {
		m.OnUpload(path)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendVideoError != nil {
		return m.SendVideoError
	}
	m.SentVideos = append(m.SentVideos, MockUpload{ChatID: chatID, ReplyTo: replyTo, Path: path, Caption: caption})
	return nil
}

func (m *MockBot) SendDocument(chatID int64, replyTo int, path, caption string) error {
	if m.OnUpload != nil {
		m.OnUpload(path)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendDocumentError != nil {
		return m.SendDocumentError
	}
	m.SentDocuments = append(m.SentDocuments, MockUpload{ChatID: chatID, ReplyTo: replyTo, Path: path, Caption: caption})
	return nil
}

func (m *MockBot) GetUpdatesChan(_ tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return m.Updates
}

func (m *MockBot) StopReceivingUpdates() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.stopped {
		m.stopped = true
		close(m.Updates)
	}
}

// Stopped reports whether StopReceivingUpdates was called.
func (m *MockBot) Stopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}

// Messages returns a copy of the sent messages.
func (m *MockBot) Messages() []MockMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockMessage(nil), m.SentMessages...)
}

// GetLastMessage returns the most recently sent message, or nil if none.
func (m *MockBot) GetLastMessage() *MockMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.SentMessages) == 0 {
		return nil
	}
	msg := m.SentMessages[len(m.SentMessages)-1]
	return &msg
}

// GetLastEdit returns the most recent edit, or nil if none.
func (m *MockBot) GetLastEdit() *MockEdit {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Edits) == 0 {
		return nil
	}
	e := m.Edits[len(m.Edits)-1]
	return &e
}

// Uploads returns the number of videos and documents sent.
func (m *MockBot) Uploads() (videos, documents int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.SentVideos), len(m.SentDocuments)
}
