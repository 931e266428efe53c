package services

import (
	"context"
	"strings"
	"testing"

	"github.com/deweni2/telegram-video-bot/internal/core/domain"
	"github.com/deweni2/telegram-video-bot/internal/core/errors"
	"github.com/deweni2/telegram-video-bot/internal/lang"
	"github.com/deweni2/telegram-video-bot/internal/testutils"
)

func TestSelectMode(t *testing.T) {
	tests := []struct {
		name  string
		size  int64
		known bool
		want  domain.DeliveryMode
	}{
		{"small", 10, true, domain.DeliveryVideo},
		{"at threshold", 100, true, domain.DeliveryVideo},
		{"over threshold", 101, true, domain.DeliveryDocument},
		{"unknown size", 10, false, domain.DeliveryDocument},
		{"empty file", 0, true, domain.DeliveryVideo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectMode(tt.size, tt.known, 100); got != tt.want {
				t.Errorf("SelectMode(%d, %v) = %s, want %s", tt.size, tt.known, got, tt.want)
			}
		})
	}
}

func TestDeliverySelector_MissingFile(t *testing.T) {
	bot := testutils.NewMockBot()
	d := NewDeliverySelector(bot, 100)
	status := NewStatusReporter(bot, chatID, 0)

	for _, result := range []*domain.DownloadResult{nil, {}, {Path: t.TempDir() + "/nope.mp4"}} {
		if _, err := d.Deliver(domain.Request{ChatID: chatID}, status, result); !errors.Is(err, errors.ErrProducedFileMissing) {
			t.Errorf("Deliver(%+v) error = %v, want ErrProducedFileMissing", result, err)
		}
	}
	if videos, docs := bot.Uploads(); videos+docs != 0 {
		t.Error("nothing should be uploaded")
	}
}

func TestDeliverySelector_DocumentFailureIsUploadFailed(t *testing.T) {
	dir := t.TempDir()
	engine := &testutils.FakeEngine{Size: 200, FileName: "long.webm"}
	result, err := engine.Download(context.Background(), testURL, dir)
	if err != nil {
		t.Fatal(err)
	}

	bot := testutils.NewMockBot()
	bot.SendDocumentError = errors.ErrInternal
	d := NewDeliverySelector(bot, 100)
	status := NewStatusReporter(bot, chatID, 0)
	status.Start("working")

	mode, err := d.Deliver(domain.Request{ChatID: chatID}, status, result)
	if !errors.Is(err, errors.ErrUploadFailed) {
		t.Fatalf("Deliver() error = %v, want ErrUploadFailed", err)
	}
	if mode != domain.DeliveryText {
		t.Errorf("mode = %s, want text", mode)
	}
	if !result.SizeKnown || result.Size != 200 {
		t.Errorf("result size = %d known=%v, want 200", result.Size, result.SizeKnown)
	}
	if last := bot.GetLastEdit(); last == nil || !strings.Contains(last.Text, "long.webm") {
		t.Errorf("status should show the file name when there is no title, got %+v", last)
	}
	if videos, _ := bot.Uploads(); videos != 0 {
		t.Error("document failure must not retry as video")
	}
}

func TestUserMessage(t *testing.T) {
	result := &domain.DownloadResult{
		Path:      "/tmp/x/abc.mp4",
		Size:      2048,
		SizeKnown: true,
		URL:       "https://example.com/v?a=1&b=2",
	}

	tests := []struct {
		name   string
		err    error
		result *domain.DownloadResult
		want   []string
	}{
		{"no link", errors.ErrNoLinkFound, nil, []string{lang.GetMessage(lang.ErrNoLink)}},
		{"download failed", errors.NewDownloadFailed("<Private video>", nil), nil, []string{"&lt;Private video&gt;"}},
		{"file missing", errors.ErrProducedFileMissing, nil, []string{lang.GetMessage(lang.ErrFileMissing)}},
		{"upload failed", errors.ErrUploadFailed, result, []string{"abc.mp4", "2.0 KiB", "a=1&amp;b=2", lang.GetMessage(lang.UploaderUnknown)}},
		{"upload failed without result", errors.ErrUploadFailed, nil, []string{testURL, lang.GetMessage(lang.SizeUnknown)}},
		{"rate limited", errors.ErrRateLimited, nil, []string{lang.GetMessage(lang.ErrRateLimited)}},
		{"anything else", errors.ErrInvalidUpdate, nil, []string{lang.GetMessage(lang.ErrInternal)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UserMessage(tt.err, tt.result, testURL)
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("UserMessage() = %q, missing %q", got, want)
				}
			}
		})
	}
}

func TestHumanSize(t *testing.T) {
	if got := HumanSize(10*1024*1024, true); got != "10 MiB" {
		t.Errorf("HumanSize() = %q", got)
	}
	if got := HumanSize(5, false); got != lang.GetMessage(lang.SizeUnknown) {
		t.Errorf("HumanSize(unknown) = %q", got)
	}
}
