package services

import (
	"html"

	"github.com/deweni2/telegram-video-bot/internal/core/domain"
	"github.com/deweni2/telegram-video-bot/internal/core/errors"
	"github.com/deweni2/telegram-video-bot/internal/filemanager"
	"github.com/deweni2/telegram-video-bot/internal/lang"
	"github.com/deweni2/telegram-video-bot/internal/pkg/logger"
)

const maxCaptionRunes = 1000

// SelectMode picks the upload method. A file exactly at the threshold is still a video.
func SelectMode(size int64, known bool, maxVideoSize int64) domain.DeliveryMode {
	if known && size <= maxVideoSize {
		return domain.DeliveryVideo
	}
	return domain.DeliveryDocument
}

// DeliverySelector uploads a produced file as video or document.
type DeliverySelector struct {
	bot          domain.BotInterface
	maxVideoSize int64
}

func NewDeliverySelector(bot domain.BotInterface, maxVideoSize int64) *DeliverySelector {
	return &DeliverySelector{bot: bot, maxVideoSize: maxVideoSize}
}

// Deliver sends result to the request's chat. It fills result.Size from the file on disk.
// A missing file gives ErrProducedFileMissing and a rejected upload gives ErrUploadFailed;
// the other upload mode is not tried.
func (d *DeliverySelector) Deliver(req domain.Request, status *StatusReporter, result *domain.DownloadResult) (domain.DeliveryMode, error) {
	if result == nil || result.Path == "" {
		return domain.DeliveryText, errors.ErrProducedFileMissing
	}

	size, err := filemanager.FileSize(result.Path)
	switch {
	case errors.Is(err, errors.ErrProducedFileMissing):
		return domain.DeliveryText, err
	case err != nil:
		logger.Log.WithError(err).WithField("path", result.Path).Warn("Could not stat produced file, size unknown")
		result.Size, result.SizeKnown = 0, false
	default:
		result.Size, result.SizeKnown = size, true
	}

	title := html.EscapeString(result.DisplayTitle())
	status.Update(lang.GetMessage(lang.StatusDownloaded, title, HumanSize(result.Size, result.SizeKnown)))

	mode := SelectMode(result.Size, result.SizeKnown, d.maxVideoSize)
	caption := html.EscapeString(truncateRunes(result.DisplayTitle(), maxCaptionRunes))

	log := logger.Log.WithFields(map[string]any{
		"request_id": req.ID,
		"mode":       mode.String(),
		"size":       result.Size,
		"size_known": result.SizeKnown,
		"file":       result.FileName(),
	})

	if mode == domain.DeliveryVideo {
		status.Update(lang.GetMessage(lang.StatusUploadingVideo, title))
		err = d.bot.SendVideo(req.ChatID, req.MessageID, result.Path, caption)
	} else {
		status.Update(lang.GetMessage(lang.StatusUploadingDocument, title))
		err = d.bot.SendDocument(req.ChatID, req.MessageID, result.Path, caption)
	}
	if err != nil {
		log.WithError(err).Warn("Upload rejected, falling back to text summary")
		return domain.DeliveryText, errors.ErrUploadFailed.WithCause(err).WithDetails(map[string]any{
			"mode": mode.String(),
			"size": result.Size,
		})
	}

	log.Info("File delivered")
	return mode, nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
