package video

import (
	"context"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/deweni2/telegram-video-bot/internal/pkg/logger"
)

const updateTimeout = 3 * time.Minute

// Updater runs yt-dlp's self-update (-U).
type Updater struct {
	executable string
	run        func(ctx context.Context, cmd *ytdlp.Command) (*ytdlp.Result, error)
}

func NewUpdater(executable string) *Updater {
	if executable == "" {
		executable = defaultYtdlpBinary
	}
	return &Updater{
		executable: executable,
		run: func(ctx context.Context, cmd *ytdlp.Command) (*ytdlp.Result, error) {
			return cmd.Update(ctx)
		},
	}
}

func (u *Updater) RunUpdate(ctx context.Context) {
	updateCtx, cancel := context.WithTimeout(ctx, updateTimeout)
	defer cancel()

	res, err := u.run(updateCtx, ytdlp.New().SetExecutable(u.executable))
	out := ""
	if res != nil {
		out = strings.TrimSpace(res.Stdout + "\n" + res.Stderr)
	}

	if err != nil {
		if updateCtx.Err() != nil {
			logger.Log.WithError(err).Warn("yt-dlp update timed out or was canceled")
			return
		}
		logger.Log.WithError(err).WithFields(map[string]any{
			"output": out,
			"binary": u.executable,
		}).Warn("yt-dlp update failed")
		return
	}

	logger.Log.WithFields(map[string]any{
		"binary": u.executable,
		"output": out,
	}).Info("yt-dlp update check completed successfully")
}

// StartPeriodicUpdater blocks, calling u every interval until ctx is done.
// A non-positive interval returns immediately.
func StartPeriodicUpdater(ctx context.Context, interval time.Duration, u interface{ RunUpdate(context.Context) }) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Log.WithField("interval", interval).Info("Starting periodic yt-dlp updater")

	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("Stopping periodic yt-dlp updater")
			return
		case <-ticker.C:
			u.RunUpdate(ctx)
		}
	}
}
