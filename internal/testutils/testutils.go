package testutils

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/deweni2/telegram-video-bot/internal/config"
)

const tickerInterval = 10 * time.Millisecond

// TestConfig creates a configuration suitable for testing
func TestConfig(tempDir string) *config.Config {
	return &config.Config{
		BotToken:        "test-bot-token",
		Lang:            "en",
		LogLevel:        "debug",
		LogFormat:       "text",
		DeveloperURL:    "https://t.me/example_dev",
		PollTimeout:     time.Second,
		ShutdownTimeout: 5 * time.Second,

		DownloadSettings: config.DownloadConfig{
			MaxVideoSize:           45 * 1000 * 1000,
			DownloadDir:            tempDir,
			CookiesFile:            "",
			MaxConcurrentDownloads: 2,
			YTDLPPath:              "yt-dlp",
			Retries:                0,
			SocketTimeout:          5 * time.Second,
		},

		RateLimitSettings: config.RateLimitConfig{
			Requests: 0,
			Window:   time.Minute,
		},
	}
}

// AssertFileNotExists checks if a file doesn't exist
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); err == nil {
		t.Errorf("Expected %s to not exist, but it does", path)
	}
}

// AssertDirEmpty checks that dir has no entries
func AssertDirEmpty(t *testing.T, dir string) {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", dir, err)
	}
	if len(entries) != 0 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("Expected %s to be empty, found %v", dir, names)
	}
}

// WaitForCondition waits for a condition to be true or times out
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration, message string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(tickerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.Fatalf("Timeout waiting for condition: %s", message)
		case <-ticker.C:
			if condition() {
				return
			}
		}
	}
}
