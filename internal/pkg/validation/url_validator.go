package validation

import (
	"regexp"
	"strings"

	"github.com/deweni2/telegram-video-bot/internal/core/domain"
	"github.com/deweni2/telegram-video-bot/internal/core/errors"
)

var linkPattern = regexp.MustCompile(`https?://\S+`)

// MessageText returns the text a link is searched in: the body, or the caption when the body is empty.
func MessageText(req domain.Request) string {
	if req.Text != "" {
		return req.Text
	}
	return req.Caption
}

// FirstLink returns the first http(s) URL in text. Later URLs are ignored.
func FirstLink(text string) (string, error) {
	match := linkPattern.FindString(text)
	if match == "" {
		return "", errors.ErrNoLinkFound
	}
	return strings.TrimSpace(match), nil
}
