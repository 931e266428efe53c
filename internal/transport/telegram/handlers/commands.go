package handlers

import (
	"github.com/deweni2/telegram-video-bot/internal/core/domain"
	"github.com/deweni2/telegram-video-bot/internal/lang"
	"github.com/deweni2/telegram-video-bot/internal/pkg/logger"
)

// CommandHandler отвечает на команды и нераспознанные сообщения
type CommandHandler struct {
	bot domain.BotInterface
}

func NewCommandHandler(bot domain.BotInterface) *CommandHandler {
	return &CommandHandler{bot: bot}
}

// HandleStart отправляет приветствие
func (h *CommandHandler) HandleStart(req domain.Request) error {
	return h.reply(req, lang.GetMessage(lang.StartWelcome))
}

// HandleHelp отправляет краткую инструкцию
func (h *CommandHandler) HandleHelp(req domain.Request) error {
	return h.reply(req, lang.GetMessage(lang.HelpUsage))
}

// HandleUnknown отвечает на сообщения, которые бот не понимает
func (h *CommandHandler) HandleUnknown(req domain.Request) error {
	return h.reply(req, lang.GetMessage(lang.UnknownInput))
}

func (h *CommandHandler) reply(req domain.Request, text string) error {
	if _, err := h.bot.SendMessage(req.ChatID, req.MessageID, text, nil); err != nil {
		logger.Log.WithError(err).WithField("chat_id", req.ChatID).Error("Failed to answer command")
		return err
	}
	return nil
}
