package config

import (
	stderrors "errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/deweni2/telegram-video-bot/internal/core/errors"
	"github.com/deweni2/telegram-video-bot/internal/pkg/logger"
)

var supportedLangs = map[string]bool{"en": true, "ru": true}

func (c *Config) validate() error {
	var errs []error
	for _, check := range []func() error{
		c.validateRequiredFields,
		c.validateDownloadSettings,
		c.validateRateLimit,
		c.validateDeveloperURL,
		c.validateTimeouts,
	} {
		if err := check(); err != nil {
			errs = append(errs, err)
		}
	}
	c.normalizeLang()

	if len(errs) > 0 {
		return errors.ErrConfiguration.WithCause(stderrors.Join(errs...)).WithDetails(map[string]any{
			"error_count": len(errs),
		})
	}
	return nil
}

func (c *Config) validateRequiredFields() error {
	if c.BotToken == "" {
		return stderrors.New("BOT_TOKEN is required")
	}
	return nil
}

func (c *Config) validateDownloadSettings() error {
	s := c.DownloadSettings
	if s.MaxVideoSize <= 0 {
		return fmt.Errorf("MAX_VIDEO_SIZE must be positive, got %d", s.MaxVideoSize)
	}
	if s.MaxConcurrentDownloads < 1 {
		return fmt.Errorf("MAX_CONCURRENT_DOWNLOADS must be at least 1, got %d", s.MaxConcurrentDownloads)
	}
	if s.Retries < 0 {
		return fmt.Errorf("YTDLP_RETRIES cannot be negative, got %d", s.Retries)
	}
	if s.SocketTimeout <= 0 {
		return fmt.Errorf("YTDLP_SOCKET_TIMEOUT must be positive, got %s", s.SocketTimeout)
	}
	if s.YTDLPPath == "" {
		return stderrors.New("YTDLP_PATH cannot be empty")
	}

	info, err := os.Stat(s.DownloadDir)
	if err != nil {
		return fmt.Errorf("DOWNLOAD_DIR is not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("DOWNLOAD_DIR is not a directory: %s", s.DownloadDir)
	}
	return nil
}

func (c *Config) validateRateLimit() error {
	r := c.RateLimitSettings
	if r.Requests < 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS cannot be negative, got %d", r.Requests)
	}
	if r.Requests > 0 && r.Window <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive when limiting is enabled, got %s", r.Window)
	}
	return nil
}

func (c *Config) validateDeveloperURL() error {
	if c.DeveloperURL == "" {
		return nil
	}
	u, err := url.Parse(c.DeveloperURL)
	if err != nil {
		return fmt.Errorf("DEVELOPER_URL is not a valid URL: %w", err)
	}
	web := (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
	if !web && u.Scheme != "tg" {
		return fmt.Errorf("DEVELOPER_URL must be an http(s) or tg:// link, got %q", c.DeveloperURL)
	}
	return nil
}

func (c *Config) validateTimeouts() error {
	if c.PollTimeout < 0 {
		return fmt.Errorf("POLL_TIMEOUT cannot be negative, got %s", c.PollTimeout)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %s", c.ShutdownTimeout)
	}
	return nil
}

// normalizeLang accepts locale-style values such as en_US.UTF-8.
func (c *Config) normalizeLang() {
	if i := strings.IndexAny(c.Lang, "_.-"); i > 0 {
		c.Lang = c.Lang[:i]
	}
	if supportedLangs[c.Lang] {
		return
	}
	logger.Log.WithField("lang", c.Lang).Warn("Unsupported LANG, falling back to en")
	c.Lang = "en"
}

// RateLimitEnabled reports whether per-user limiting should be applied.
func (c *Config) RateLimitEnabled() bool {
	return c.RateLimitSettings.Requests > 0
}
