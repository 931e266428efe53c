package services

import (
	"strings"

	"github.com/deweni2/telegram-video-bot/internal/core/domain"
	"github.com/deweni2/telegram-video-bot/internal/pkg/logger"
)

// StatusReporter owns the single progress message of one request.
type StatusReporter struct {
	bot     domain.BotInterface
	chatID  int64
	replyTo int

	msg    *domain.StatusMessage
	last   string
	closed bool
}

func NewStatusReporter(bot domain.BotInterface, chatID int64, replyTo int) *StatusReporter {
	return &StatusReporter{bot: bot, chatID: chatID, replyTo: replyTo}
}

// Start posts the progress message. Calling it twice edits instead of posting again.
func (s *StatusReporter) Start(text string) {
	if s.msg != nil {
		s.Update(text)
		return
	}
	id, err := s.bot.SendMessage(s.chatID, s.replyTo, text, nil)
	if err != nil {
		logger.Log.WithError(err).WithField("chat_id", s.chatID).Warn("Failed to post status message")
		return
	}
	s.msg = &domain.StatusMessage{ChatID: s.chatID, MessageID: id}
	s.last = text
}

// Update edits the progress message in place.
func (s *StatusReporter) Update(text string) {
	if s.msg == nil || s.closed || text == s.last {
		return
	}
	if err := s.bot.EditMessageText(s.msg.ChatID, s.msg.MessageID, text); err != nil {
		if !isNotModified(err) {
			logger.Log.WithError(err).WithField("message_id", s.msg.MessageID).Warn("Failed to update status message")
		}
		return
	}
	s.last = text
}

// Succeed removes the progress message.
func (s *StatusReporter) Succeed() {
	if s.closed {
		return
	}
	s.closed = true
	if s.msg == nil {
		return
	}
	if err := s.bot.DeleteMessage(s.msg.ChatID, s.msg.MessageID); err != nil {
		logger.Log.WithError(err).WithField("message_id", s.msg.MessageID).Warn("Failed to delete status message")
	}
}

// Fail replaces the progress message with text. Without a progress message text is posted as a reply.
func (s *StatusReporter) Fail(text string) {
	if s.closed {
		return
	}
	s.closed = true
	if s.msg != nil {
		err := s.bot.EditMessageText(s.msg.ChatID, s.msg.MessageID, text)
		if err == nil || isNotModified(err) {
			return
		}
		logger.Log.WithError(err).WithField("message_id", s.msg.MessageID).Warn("Failed to edit status message, sending error separately")
	}
	if _, err := s.bot.SendMessage(s.chatID, s.replyTo, text, nil); err != nil {
		logger.Log.WithError(err).WithField("chat_id", s.chatID).Error("Failed to report error to user")
	}
}

func isNotModified(err error) bool {
	return strings.Contains(err.Error(), "message is not modified")
}
