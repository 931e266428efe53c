package filemanager

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/deweni2/telegram-video-bot/internal/core/errors"
	"github.com/deweni2/telegram-video-bot/internal/pkg/logger"
)

// RequestDirPrefix marks directories owned by a single request.
const RequestDirPrefix = "tg_dl_"

// CreateRequestDir creates base/tg_dl_<id>. The id must be unique per request.
func CreateRequestDir(base, id string) (string, error) {
	dir := filepath.Join(base, RequestDirPrefix+id)
	if err := os.Mkdir(dir, 0o700); err != nil {
		return "", fmt.Errorf("create request dir: %w", err)
	}
	logger.Log.WithField("dir", dir).Debug("Request directory created")
	return dir, nil
}

// RemoveRequestDir deletes dir and everything inside it. Only request directories are removed.
func RemoveRequestDir(dir string) error {
	if dir == "" || !strings.HasPrefix(filepath.Base(dir), RequestDirPrefix) {
		return fmt.Errorf("refusing to remove %q: not a request directory", dir)
	}
	if err := os.RemoveAll(dir); err != nil {
		logger.Log.WithError(err).WithField("dir", dir).Error("Failed to remove request directory")
		return err
	}
	logger.Log.WithField("dir", dir).Debug("Request directory removed")
	return nil
}

// FileSize re-stats path. A missing path or a directory is ErrProducedFileMissing.
func FileSize(path string) (int64, error) {
	if path == "" {
		return 0, errors.ErrProducedFileMissing
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, errors.ErrProducedFileMissing.WithCause(err).WithDetails(map[string]any{"path": path})
		}
		return 0, err
	}
	if info.IsDir() {
		return 0, errors.ErrProducedFileMissing.WithDetails(map[string]any{"path": path, "is_dir": true})
	}
	return info.Size(), nil
}

// SweepStale removes request directories in base older than maxAge, left behind by a crash.
func SweepStale(base string, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(base)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), RequestDirPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := RemoveRequestDir(filepath.Join(base, entry.Name())); err == nil {
			removed++
		}
	}

	if removed > 0 {
		logger.Log.WithFields(map[string]any{
			"dir":     base,
			"removed": removed,
		}).Info("Removed stale request directories")
	}
	return removed, nil
}
