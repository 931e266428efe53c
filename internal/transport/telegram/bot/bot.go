package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/deweni2/telegram-video-bot/internal/core/domain"
	"github.com/deweni2/telegram-video-bot/internal/lang"
	"github.com/deweni2/telegram-video-bot/internal/pkg/logger"
)

// apiClient is the subset of *tgbotapi.BotAPI the bot uses.
type apiClient interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot реализует интерфейс BotInterface поверх Bot API.
// Все тексты отправляются в режиме HTML.
type Bot struct {
	api      apiClient
	keyboard *tgbotapi.InlineKeyboardMarkup
}

// Проверяем, что Bot реализует интерфейс BotInterface
var _ domain.BotInterface = (*Bot)(nil)

// NewBot создает новый экземпляр бота. developerURL может быть пустым
func NewBot(botToken string, debug bool, developerURL string) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		logger.Log.WithError(err).Error("Error creating bot")
		return nil, fmt.Errorf("error creating bot: %w", err)
	}
	api.Debug = debug
	logger.Log.Infof("Authorized on account %s", api.Self.UserName)
	return newBot(api, developerURL), nil
}

func newBot(api apiClient, developerURL string) *Bot {
	return &Bot{api: api, keyboard: DeveloperKeyboard(developerURL)}
}

// DeveloperKeyboard returns the inline keyboard with the developer link, or nil without a URL.
func DeveloperKeyboard(url string) *tgbotapi.InlineKeyboardMarkup {
	if url == "" {
		return nil
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(lang.GetMessage(lang.DeveloperLabel), url),
		),
	)
	return &kb
}

func (b *Bot) markup(keyboard any) any {
	switch k := keyboard.(type) {
	case tgbotapi.InlineKeyboardMarkup, tgbotapi.ReplyKeyboardMarkup, tgbotapi.ReplyKeyboardRemove:
		return k
	case *tgbotapi.InlineKeyboardMarkup:
		if k != nil {
			return *k
		}
	}
	if b.keyboard != nil {
		return *b.keyboard
	}
	return nil
}

func (b *Bot) SendMessage(chatID int64, replyTo int, text string, keyboard any) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	msg.ReplyToMessageID = replyTo
	msg.AllowSendingWithoutReply = true
	msg.ReplyMarkup = b.markup(keyboard)

	sent, err := b.api.Send(msg)
	if err != nil {
		logger.Log.WithError(err).WithField("chat_id", chatID).Error("Message not sent")
		return 0, err
	}
	return sent.MessageID, nil
}

func (b *Bot) EditMessageText(chatID int64, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	edit.DisableWebPagePreview = true
	edit.ReplyMarkup = b.keyboard

	if _, err := b.api.Request(edit); err != nil {
		logger.Log.WithError(err).WithFields(map[string]any{
			"chat_id":    chatID,
			"message_id": messageID,
		}).Debug("Failed to edit message")
		return err
	}
	return nil
}

func (b *Bot) DeleteMessage(chatID int64, messageID int) error {
	deleteMsg := tgbotapi.NewDeleteMessage(chatID, messageID)
	_, err := b.api.Request(deleteMsg)
	if err != nil {
		logger.Log.WithError(err).Errorf("Failed to delete message %d in chat %d", messageID, chatID)
	}
	return err
}

// SendVideo uploads path as a streamable video.
func (b *Bot) SendVideo(chatID int64, replyTo int, path, caption string) error {
	video := tgbotapi.NewVideo(chatID, tgbotapi.FilePath(path))
	video.Caption = caption
	video.ParseMode = tgbotapi.ModeHTML
	video.SupportsStreaming = true
	video.ReplyToMessageID = replyTo
	video.AllowSendingWithoutReply = true
	video.ReplyMarkup = b.markup(nil)

	return b.upload(video, chatID, path, "video")
}

// SendDocument uploads path as a file under its base name.
func (b *Bot) SendDocument(chatID int64, replyTo int, path, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = caption
	doc.ParseMode = tgbotapi.ModeHTML
	doc.ReplyToMessageID = replyTo
	doc.AllowSendingWithoutReply = true
	doc.ReplyMarkup = b.markup(nil)

	return b.upload(doc, chatID, path, "document")
}

func (b *Bot) upload(c tgbotapi.Chattable, chatID int64, path, kind string) error {
	log := logger.Log.WithFields(map[string]any{
		"chat_id": chatID,
		"path":    path,
		"kind":    kind,
	})
	log.Debug("Uploading file")
	if _, err := b.api.Send(c); err != nil {
		log.WithError(err).Warn("Upload failed")
		return err
	}
	return nil
}

func (b *Bot) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return b.api.GetUpdatesChan(config)
}

func (b *Bot) StopReceivingUpdates() {
	b.api.StopReceivingUpdates()
}
