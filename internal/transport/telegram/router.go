package router

import (
	"context"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/deweni2/telegram-video-bot/internal/core/domain"
	"github.com/deweni2/telegram-video-bot/internal/core/errors"
	"github.com/deweni2/telegram-video-bot/internal/lang"
	"github.com/deweni2/telegram-video-bot/internal/pkg/logger"
	"github.com/deweni2/telegram-video-bot/internal/transport/telegram/handlers"
	"github.com/deweni2/telegram-video-bot/internal/transport/telegram/middleware"
)

// Router классифицирует сообщения и передает их обработчикам.
// Каждое обновление обрабатывается в своей горутине.
type Router struct {
	bot      domain.BotInterface
	links    domain.LinkHandler
	commands *handlers.CommandHandler
	chain    *middleware.Chain

	inFlight sync.WaitGroup
	// закрывается при выходе из Run, после этого inFlight.Add не вызывается
	stopped  chan struct{}
	stopOnce sync.Once
}

// NewRouter создает новый роутер
func NewRouter(
	bot domain.BotInterface,
	links domain.LinkHandler,
	commands *handlers.CommandHandler,
	chain *middleware.Chain,
) *Router {
	if chain == nil {
		chain = middleware.NewChain()
	}
	return &Router{
		bot:      bot,
		links:    links,
		commands: commands,
		chain:    chain,
		stopped:  make(chan struct{}),
	}
}

// Classify выбирает маршрут по содержимому сообщения
func Classify(msg *tgbotapi.Message) domain.Route {
	if msg == nil {
		return domain.RouteUnknown
	}
	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			return domain.RouteStart
		case "help":
			return domain.RouteHelp
		default:
			return domain.RouteUnknown
		}
	}
	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	if strings.TrimSpace(text) == "" || strings.HasPrefix(text, "/") {
		return domain.RouteUnknown
	}
	return domain.RouteLink
}

// Run читает обновления до закрытия канала или отмены ctx
func (r *Router) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	defer r.stopOnce.Do(func() { close(r.stopped) })
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			r.inFlight.Add(1)
			go func() {
				defer r.inFlight.Done()
				r.HandleUpdate(ctx, &update)
			}()
		}
	}
}

// Wait ждет выхода из Run, затем завершения обработчиков, или окончания ctx
func (r *Router) Wait(ctx context.Context) error {
	select {
	case <-r.stopped:
	case <-ctx.Done():
		return ctx.Err()
	}

	done := make(chan struct{})
	go func() {
		r.inFlight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HandleUpdate обрабатывает одно обновление от Telegram
func (r *Router) HandleUpdate(ctx context.Context, update *tgbotapi.Update) {
	uc := &middleware.UpdateContext{
		Context: ctx,
		Update:  update,
		Bot:     r.bot,
	}
	if update != nil {
		uc.Route = Classify(update.Message)
	}
	defer middleware.Recover(uc)

	if err := r.chain.Execute(uc); err != nil {
		r.reject(uc, err)
		return
	}

	if err := r.dispatch(uc); err != nil {
		logger.Log.WithError(err).WithFields(map[string]any{
			"request_id": uc.Request.ID,
			"route":      uc.Route,
		}).Error("Failed to handle update")
	}

	logger.Log.WithFields(map[string]any{
		"request_id":  uc.Request.ID,
		"route":       uc.Route,
		"duration_ms": time.Since(uc.StartTime).Milliseconds(),
	}).Debug("Update processed")
}

func (r *Router) dispatch(uc *middleware.UpdateContext) error {
	switch uc.Route {
	case domain.RouteStart:
		return r.commands.HandleStart(uc.Request)
	case domain.RouteHelp:
		return r.commands.HandleHelp(uc.Request)
	case domain.RouteLink:
		return r.links.HandleLink(uc.Context, uc.Request)
	default:
		return r.commands.HandleUnknown(uc.Request)
	}
}

func (r *Router) reject(uc *middleware.UpdateContext, err error) {
	if errors.Is(err, errors.ErrInvalidUpdate) {
		logger.Log.WithError(err).Debug("Update skipped")
		return
	}

	var de *errors.DomainError
	if errors.As(err, &de) && de.UserMsg != "" && uc.Request.ChatID != 0 {
		if _, sendErr := r.bot.SendMessage(uc.Request.ChatID, uc.Request.MessageID, lang.Translate(de.UserMsg), nil); sendErr != nil {
			logger.Log.WithError(sendErr).Error("Failed to notify user")
		}
		return
	}
	logger.Log.WithError(err).Error("Update rejected")
}
