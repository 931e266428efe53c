package services

import (
	"html"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/deweni2/telegram-video-bot/internal/core/domain"
	"github.com/deweni2/telegram-video-bot/internal/core/errors"
	"github.com/deweni2/telegram-video-bot/internal/lang"
)

// UserMessage converts a workflow error into the text shown in the chat.
// Interpolated values are HTML-escaped. result and link may be empty.
func UserMessage(err error, result *domain.DownloadResult, link string) string {
	switch {
	case errors.Is(err, errors.ErrNoLinkFound):
		return lang.GetMessage(lang.ErrNoLink)
	case errors.Is(err, errors.ErrDownloadFailed):
		reason := errors.DownloadReason(err)
		if reason == "" {
			reason = "unknown error"
		}
		return lang.GetMessage(lang.ErrDownloadFailed, html.EscapeString(reason))
	case errors.Is(err, errors.ErrProducedFileMissing):
		return lang.GetMessage(lang.ErrFileMissing)
	case errors.Is(err, errors.ErrUploadFailed):
		return uploadFallback(result, link)
	case errors.Is(err, errors.ErrRateLimited):
		return lang.GetMessage(lang.ErrRateLimited)
	default:
		return lang.GetMessage(lang.ErrInternal)
	}
}

func uploadFallback(result *domain.DownloadResult, link string) string {
	url := link
	title, uploader := "", ""
	size := lang.GetMessage(lang.SizeUnknown)
	if result != nil {
		if result.URL != "" {
			url = result.URL
		}
		title = result.DisplayTitle()
		uploader = strings.TrimSpace(result.Uploader)
		size = HumanSize(result.Size, result.SizeKnown)
	}
	if uploader == "" {
		uploader = lang.GetMessage(lang.UploaderUnknown)
	}
	return lang.GetMessage(lang.ErrUploadFailed,
		html.EscapeString(url),
		html.EscapeString(title),
		html.EscapeString(uploader),
		size,
	)
}

// HumanSize formats bytes in IEC units, e.g. "10 MiB".
func HumanSize(size int64, known bool) string {
	if !known || size < 0 {
		return lang.GetMessage(lang.SizeUnknown)
	}
	return humanize.IBytes(uint64(size))
}
