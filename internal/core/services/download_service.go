package services

import (
	"context"
	"html"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/deweni2/telegram-video-bot/internal/config"
	"github.com/deweni2/telegram-video-bot/internal/core/domain"
	"github.com/deweni2/telegram-video-bot/internal/core/errors"
	"github.com/deweni2/telegram-video-bot/internal/downloader/manager"
	"github.com/deweni2/telegram-video-bot/internal/filemanager"
	"github.com/deweni2/telegram-video-bot/internal/lang"
	"github.com/deweni2/telegram-video-bot/internal/pkg/logger"
	"github.com/deweni2/telegram-video-bot/internal/pkg/validation"
)

// DownloadService реализует сценарий "скачать и доставить" для одного сообщения со ссылкой
type DownloadService struct {
	bot      domain.BotInterface
	engine   domain.DownloadEngine
	pool     domain.DownloadPool
	delivery *DeliverySelector
	metrics  domain.MetricsInterface
	baseDir  string
}

var _ domain.LinkHandler = (*DownloadService)(nil)

// NewDownloadService создает сервис загрузок. metrics может быть nil
func NewDownloadService(
	cfg *config.Config,
	bot domain.BotInterface,
	engine domain.DownloadEngine,
	pool domain.DownloadPool,
	metrics domain.MetricsInterface,
) *DownloadService {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &DownloadService{
		bot:      bot,
		engine:   engine,
		pool:     pool,
		delivery: NewDeliverySelector(bot, cfg.DownloadSettings.MaxVideoSize),
		metrics:  metrics,
		baseDir:  cfg.DownloadSettings.DownloadDir,
	}
}

// HandleLink обрабатывает сообщение: все ошибки превращаются в одно сообщение пользователю.
// Возвращает ошибку только если пользователю не удалось ничего сообщить.
func (s *DownloadService) HandleLink(ctx context.Context, req domain.Request) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	log := logger.Log.WithFields(map[string]any{
		"request_id": req.ID,
		"chat_id":    req.ChatID,
		"user_id":    req.UserID,
	})

	link, err := validation.FirstLink(validation.MessageText(req))
	if err != nil {
		log.Debug("No link in message")
		s.metrics.IncRequest(domain.OutcomeNoLink)
		_, sendErr := s.bot.SendMessage(req.ChatID, req.MessageID, UserMessage(err, nil, ""), nil)
		return sendErr
	}
	log = log.WithField("url", link)
	log.Info("Starting video download")

	status := NewStatusReporter(s.bot, req.ChatID, req.MessageID)
	status.Start(lang.GetMessage(lang.StatusPreparing, html.EscapeString(link)))

	outcome, result, err := s.process(ctx, req, link, status)
	s.metrics.IncRequest(outcome)
	if err != nil {
		s.logFailure(log, outcome, err)
		status.Fail(UserMessage(err, result, link))
		return nil
	}

	status.Succeed()
	log.WithField("file", result.FileName()).Info("Request completed")
	return nil
}

func (s *DownloadService) process(
	ctx context.Context,
	req domain.Request,
	link string,
	status *StatusReporter,
) (string, *domain.DownloadResult, error) {
	dir, err := filemanager.CreateRequestDir(s.baseDir, req.ID)
	if err != nil {
		return domain.OutcomeAborted, nil, errors.ErrInternal.WithCause(err)
	}

	jobDone := make(chan struct{})
	abandoned := false
	defer func() {
		if abandoned {
			// yt-dlp still writes into dir; remove it once the job returns.
			go func() {
				<-jobDone
				_ = filemanager.RemoveRequestDir(dir)
			}()
			return
		}
		_ = filemanager.RemoveRequestDir(dir)
	}()

	started := time.Now()
	result, err := s.pool.Submit(ctx, func(jobCtx context.Context) (*domain.DownloadResult, error) {
		defer close(jobDone)
		return s.engine.Download(jobCtx, link, dir)
	})
	s.metrics.ObserveDownload(time.Since(started), err == nil)

	if err != nil {
		abandoned = errors.Is(err, manager.ErrAbandoned)
		return downloadOutcome(err), nil, err
	}

	mode, err := s.delivery.Deliver(req, status, result)
	if err != nil {
		if errors.Is(err, errors.ErrProducedFileMissing) {
			return domain.OutcomeFileMissing, result, err
		}
		return domain.OutcomeUploadFailed, result, err
	}
	s.metrics.IncDelivery(mode)
	return domain.OutcomeDelivered, result, nil
}

func downloadOutcome(err error) string {
	switch {
	case errors.Is(err, errors.ErrDownloadFailed):
		return domain.OutcomeDownloadFailed
	case errors.Is(err, errors.ErrProducedFileMissing):
		return domain.OutcomeFileMissing
	default:
		return domain.OutcomeAborted
	}
}

func (*DownloadService) logFailure(log *logrus.Entry, outcome string, err error) {
	entry := log.WithError(err).WithField("outcome", outcome)
	switch outcome {
	case domain.OutcomeDownloadFailed, domain.OutcomeAborted:
		entry.Error("Request failed")
	default:
		entry.Warn("Request failed")
	}
}

type noopMetrics struct{}

func (noopMetrics) IncUpdate(string)                    {}
func (noopMetrics) IncRequest(string)                   {}
func (noopMetrics) IncDelivery(domain.DeliveryMode)     {}
func (noopMetrics) ObserveDownload(time.Duration, bool) {}
func (noopMetrics) SetDownloadsInFlight(int)            {}
