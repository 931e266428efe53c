package lang

import (
	"fmt"
	"sync/atomic"

	"github.com/deweni2/telegram-video-bot/internal/pkg/logger"
)

// MessageID is a key into the message catalog.
type MessageID string

const fallbackLang = "en"

var current atomic.Value

func init() {
	current.Store(fallbackLang)
}

// SetupLang selects the catalog language. Unknown languages keep English.
func SetupLang(language string) {
	if _, ok := catalogs[language]; !ok {
		logger.Log.WithField("lang", language).Warn("No messages for language, using en")
		language = fallbackLang
	}
	current.Store(language)
}

// Current returns the active catalog language.
func Current() string {
	return current.Load().(string)
}

// GetMessage formats the message for id in the active language, falling back to English.
func GetMessage(id MessageID, args ...any) string {
	lang := Current()
	if msg, ok := catalogs[lang][id]; ok {
		return format(msg, args)
	}
	if msg, ok := catalogs[fallbackLang][id]; ok {
		return format(msg, args)
	}
	logger.Log.WithField("message_id", id).Error("Message not found")
	return string(id)
}

// Translate looks up a message by its string key, as stored in DomainError.UserMsg.
func Translate(key string, args ...any) string {
	return GetMessage(MessageID(key), args...)
}

func format(msg string, args []any) string {
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}
