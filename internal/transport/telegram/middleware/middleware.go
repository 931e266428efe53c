package middleware

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/deweni2/telegram-video-bot/internal/core/domain"
	"github.com/deweni2/telegram-video-bot/internal/core/errors"
	"github.com/deweni2/telegram-video-bot/internal/lang"
	"github.com/deweni2/telegram-video-bot/internal/pkg/logger"
)

const (
	maxMessageLength = 4096
	maxCaptionLength = 1024
)

// UpdateContext содержит контекст обработки обновления
type UpdateContext struct {
	Context   context.Context
	Update    *tgbotapi.Update
	Bot       domain.BotInterface
	Route     domain.Route
	Request   domain.Request
	StartTime time.Time
}

// MiddlewareFunc представляет функцию middleware
type MiddlewareFunc func(*UpdateContext) error

// Chain представляет цепочку middleware
type Chain struct {
	middlewares []MiddlewareFunc
}

// NewChain создает новую цепочку middleware
func NewChain(middlewares ...MiddlewareFunc) *Chain {
	return &Chain{
		middlewares: middlewares,
	}
}

// Use добавляет middleware в цепочку
func (c *Chain) Use(middleware MiddlewareFunc) *Chain {
	c.middlewares = append(c.middlewares, middleware)
	return c
}

// Execute выполняет всю цепочку middleware, останавливаясь на первой ошибке
func (c *Chain) Execute(ctx *UpdateContext) error {
	for _, middleware := range c.middlewares {
		if err := middleware(ctx); err != nil {
			return err
		}
	}
	return nil
}

// LoggingMiddleware заполняет Request из сообщения и логирует его
func LoggingMiddleware(ctx *UpdateContext) error {
	ctx.StartTime = time.Now()

	if ctx.Update == nil || ctx.Update.Message == nil {
		return nil
	}
	msg := ctx.Update.Message

	ctx.Request = domain.Request{
		ID:        uuid.NewString(),
		MessageID: msg.MessageID,
		Text:      msg.Text,
		Caption:   msg.Caption,
	}
	if msg.Chat != nil {
		ctx.Request.ChatID = msg.Chat.ID
	}
	if msg.From != nil {
		ctx.Request.UserID = msg.From.ID
		ctx.Request.Username = msg.From.UserName
	}

	logger.Log.WithFields(map[string]any{
		"request_id": ctx.Request.ID,
		"user_id":    ctx.Request.UserID,
		"username":   ctx.Request.Username,
		"chat_id":    ctx.Request.ChatID,
		"route":      ctx.Route,
	}).Info("Received message")

	return nil
}

// ValidationMiddleware отбрасывает обновления, которые бот не обрабатывает
func ValidationMiddleware(ctx *UpdateContext) error {
	if ctx.Update == nil {
		return errors.ErrInvalidUpdate.WithDetails(map[string]any{"reason": "nil update"})
	}
	msg := ctx.Update.Message
	if msg == nil {
		return errors.ErrInvalidUpdate.WithDetails(map[string]any{"reason": "no message"})
	}
	if msg.Chat == nil || msg.Chat.ID == 0 {
		return errors.ErrInvalidUpdate.WithDetails(map[string]any{"reason": "chat ID cannot be zero"})
	}
	if utf8.RuneCountInString(msg.Text) > maxMessageLength {
		return errors.ErrInvalidUpdate.WithDetails(map[string]any{
			"reason": fmt.Sprintf("message text exceeds maximum length of %d characters", maxMessageLength),
		})
	}
	if utf8.RuneCountInString(msg.Caption) > maxCaptionLength {
		return errors.ErrInvalidUpdate.WithDetails(map[string]any{
			"reason": fmt.Sprintf("caption exceeds maximum length of %d characters", maxCaptionLength),
		})
	}
	return nil
}

// MetricsMiddleware считает обновления по маршрутам
func MetricsMiddleware(metrics domain.MetricsInterface) MiddlewareFunc {
	return func(ctx *UpdateContext) error {
		if metrics == nil {
			return nil // Метрики отключены
		}
		metrics.IncUpdate(string(ctx.Route))
		return nil
	}
}

// RateLimitMiddleware ограничивает частоту запросов на скачивание
func RateLimitMiddleware(limiter domain.RateLimiterInterface) MiddlewareFunc {
	return func(ctx *UpdateContext) error {
		if limiter == nil || ctx.Route != domain.RouteLink {
			return nil
		}

		if !limiter.Allow(ctx.Request.UserID) {
			logger.Log.WithField("user_id", ctx.Request.UserID).Warn("Rate limit exceeded")
			return errors.ErrRateLimited.WithDetails(map[string]any{
				"user_id": ctx.Request.UserID,
			})
		}
		return nil
	}
}

// Recover восстанавливается после паники в обработчике. Вызывать только через defer
func Recover(ctx *UpdateContext) {
	r := recover()
	if r == nil {
		return
	}
	logger.Log.WithFields(map[string]any{
		"panic":      r,
		"stack":      string(debug.Stack()),
		"chat_id":    ctx.Request.ChatID,
		"request_id": ctx.Request.ID,
	}).Error("Panic recovered while handling update")

	if ctx.Bot != nil && ctx.Request.ChatID != 0 {
		errorMessage := lang.GetMessage(lang.ErrInternal)
		if _, err := ctx.Bot.SendMessage(ctx.Request.ChatID, ctx.Request.MessageID, errorMessage, nil); err != nil {
			logger.Log.WithError(err).Error("Failed to report panic to user")
		}
	}
}

// DefaultMiddlewareChain создает стандартную цепочку middleware
func DefaultMiddlewareChain(metrics domain.MetricsInterface, rateLimiter domain.RateLimiterInterface) *Chain {
	return NewChain(
		LoggingMiddleware,
		ValidationMiddleware,
		MetricsMiddleware(metrics),
		RateLimitMiddleware(rateLimiter),
	)
}
