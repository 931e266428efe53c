package services

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/deweni2/telegram-video-bot/internal/core/domain"
	"github.com/deweni2/telegram-video-bot/internal/core/errors"
	"github.com/deweni2/telegram-video-bot/internal/downloader/manager"
	"github.com/deweni2/telegram-video-bot/internal/lang"
	"github.com/deweni2/telegram-video-bot/internal/pkg/logger"
	"github.com/deweni2/telegram-video-bot/internal/pkg/metrics"
	"github.com/deweni2/telegram-video-bot/internal/testutils"
)

const (
	mb            = 1000 * 1000
	testURL       = "https://example.com/watch?v=abc123"
	chatID  int64 = 12345
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	lang.SetupLang("en")
	os.Exit(m.Run())
}

type fixture struct {
	bot     *testutils.MockBot
	engine  *testutils.FakeEngine
	metrics *metrics.Metrics
	service *DownloadService
	baseDir string
}

func newFixture(t *testing.T, engine *testutils.FakeEngine) *fixture {
	t.Helper()
	base := t.TempDir()
	cfg := testutils.TestConfig(base)
	bot := testutils.NewMockBot()
	m := metrics.NewMetrics()
	pool := manager.NewDownloadManager(cfg.DownloadSettings.MaxConcurrentDownloads, m)
	return &fixture{
		bot:     bot,
		engine:  engine,
		metrics: m,
		service: NewDownloadService(cfg, bot, engine, pool, m),
		baseDir: base,
	}
}

func linkRequest(text string) domain.Request {
	return domain.Request{ChatID: chatID, MessageID: 7, UserID: 1, Text: text}
}

func TestHandleLink_SizeSelectsDeliveryMode(t *testing.T) {
	tests := []struct {
		name      string
		size      int64
		wantVideo bool
	}{
		{"10MB under 45MB threshold", 10 * mb, true},
		{"60MB over 45MB threshold", 60 * mb, false},
		{"exactly at threshold", 45 * mb, true},
		{"one byte over threshold", 45*mb + 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, &testutils.FakeEngine{Size: tt.size, Title: "Clip"})

			if err := f.service.HandleLink(context.Background(), linkRequest("check this out "+testURL+" thanks")); err != nil {
				t.Fatalf("HandleLink() error = %v", err)
			}

			if got := f.engine.Calls; len(got) != 1 || got[0] != testURL {
				t.Fatalf("engine calls = %v, want [%s]", got, testURL)
			}
			videos, docs := f.bot.Uploads()
			if tt.wantVideo && (videos != 1 || docs != 0) {
				t.Errorf("uploads = %d videos, %d documents; want 1 video", videos, docs)
			}
			if !tt.wantVideo && (videos != 0 || docs != 1) {
				t.Errorf("uploads = %d videos, %d documents; want 1 document", videos, docs)
			}

			msgs := f.bot.Messages()
			if len(msgs) != 1 {
				t.Fatalf("sent %d messages, want only the status message", len(msgs))
			}
			if len(f.bot.Deleted) != 1 || f.bot.Deleted[0] != msgs[0].ID {
				t.Errorf("deleted = %v, want status message %d", f.bot.Deleted, msgs[0].ID)
			}
			for _, e := range f.bot.Edits {
				if e.MessageID != msgs[0].ID {
					t.Errorf("edit of message %d, want only status message %d", e.MessageID, msgs[0].ID)
				}
			}
			testutils.AssertDirEmpty(t, f.baseDir)

			if got := testutil.ToFloat64(f.metrics.RequestsTotal.WithLabelValues(domain.OutcomeDelivered)); got != 1 {
				t.Errorf("delivered requests = %v, want 1", got)
			}
		})
	}
}

func TestHandleLink_StatusEchoesURLAndReplies(t *testing.T) {
	f := newFixture(t, &testutils.FakeEngine{Size: mb, Title: "Clip"})

	if err := f.service.HandleLink(context.Background(), linkRequest(testURL)); err != nil {
		t.Fatal(err)
	}

	status := f.bot.Messages()[0]
	if !strings.Contains(status.Text, testURL) {
		t.Errorf("status text %q should contain the URL", status.Text)
	}
	if status.ReplyTo != 7 {
		t.Errorf("status ReplyTo = %d, want 7", status.ReplyTo)
	}
	if got := f.bot.SentVideos[0]; got.Caption != "Clip" || got.ReplyTo != 7 {
		t.Errorf("video = %+v", got)
	}
}

func TestHandleLink_DownloadFailed(t *testing.T) {
	reason := "ERROR: [youtube] abc123: Private video. Sign in if you've been granted access"
	f := newFixture(t, &testutils.FakeEngine{
		Err: errors.NewDownloadFailed(reason, fmt.Errorf("exit status 1")),
	})

	if err := f.service.HandleLink(context.Background(), linkRequest(testURL)); err != nil {
		t.Fatalf("HandleLink() error = %v", err)
	}

	last := f.bot.GetLastEdit()
	if last == nil || !strings.Contains(last.Text, "Private video") {
		t.Fatalf("terminal message = %+v, want it to mention Private video", last)
	}
	if videos, docs := f.bot.Uploads(); videos+docs != 0 {
		t.Errorf("no upload expected, got %d videos %d documents", videos, docs)
	}
	if len(f.bot.Deleted) != 0 {
		t.Error("status message must stay visible on failure")
	}
	testutils.AssertDirEmpty(t, f.baseDir)
}

func TestHandleLink_UploadFailedFallsBackToText(t *testing.T) {
	f := newFixture(t, &testutils.FakeEngine{
		Size:     10 * 1024 * 1024,
		Title:    "Cats & Dogs",
		Uploader: "someone",
		URL:      "https://example.com/v/abc123",
	})
	f.bot.SendVideoError = fmt.Errorf("Bad Request: file is too big")

	if err := f.service.HandleLink(context.Background(), linkRequest(testURL)); err != nil {
		t.Fatal(err)
	}

	last := f.bot.GetLastEdit()
	if last == nil {
		t.Fatal("expected status message to be edited to the fallback text")
	}
	for _, want := range []string{"Cats &amp; Dogs", "someone", "https://example.com/v/abc123", "10 MiB"} {
		if !strings.Contains(last.Text, want) {
			t.Errorf("fallback %q missing %q", last.Text, want)
		}
	}
	if strings.Contains(last.Text, "too big") {
		t.Error("fallback must not expose the raw platform error")
	}
	if _, docs := f.bot.Uploads(); docs != 0 {
		t.Error("a failed video upload must not be retried as a document")
	}
	testutils.AssertDirEmpty(t, f.baseDir)
	if got := testutil.ToFloat64(f.metrics.RequestsTotal.WithLabelValues(domain.OutcomeUploadFailed)); got != 1 {
		t.Errorf("upload_failed requests = %v, want 1", got)
	}
}

func TestHandleLink_ProducedFileMissing(t *testing.T) {
	f := newFixture(t, &testutils.FakeEngine{SkipFile: true})

	if err := f.service.HandleLink(context.Background(), linkRequest(testURL)); err != nil {
		t.Fatal(err)
	}

	last := f.bot.GetLastEdit()
	if last == nil || last.Text != lang.GetMessage(lang.ErrFileMissing) {
		t.Errorf("terminal message = %+v, want file missing text", last)
	}
	testutils.AssertDirEmpty(t, f.baseDir)
}

func TestHandleLink_NoLink(t *testing.T) {
	f := newFixture(t, &testutils.FakeEngine{})

	if err := f.service.HandleLink(context.Background(), linkRequest("hello there")); err != nil {
		t.Fatal(err)
	}

	if n := f.engine.CallCount(); n != 0 {
		t.Errorf("engine called %d times without a link", n)
	}
	msgs := f.bot.Messages()
	if len(msgs) != 1 || msgs[0].Text != lang.GetMessage(lang.ErrNoLink) {
		t.Errorf("messages = %+v, want one no-link reply", msgs)
	}
	if len(f.bot.Edits) != 0 {
		t.Error("no status message should be edited for a message without a link")
	}
}

func TestHandleLink_UsesCaption(t *testing.T) {
	f := newFixture(t, &testutils.FakeEngine{Size: mb})
	req := domain.Request{ChatID: chatID, Caption: "look " + testURL}

	if err := f.service.HandleLink(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	if got := f.engine.Calls; len(got) != 1 || got[0] != testURL {
		t.Errorf("engine calls = %v", got)
	}
}

func TestHandleLink_DirExistsDuringUpload(t *testing.T) {
	f := newFixture(t, &testutils.FakeEngine{Size: mb})
	var existed bool
	f.bot.OnUpload = func(path string) {
		_, err := os.Stat(path)
		existed = err == nil
	}

	if err := f.service.HandleLink(context.Background(), linkRequest(testURL)); err != nil {
		t.Fatal(err)
	}
	if !existed {
		t.Error("produced file should exist while it is uploaded")
	}
	testutils.AssertDirEmpty(t, f.baseDir)
}

func TestHandleLink_AbandonedDownloadCleansUpLater(t *testing.T) {
	block := make(chan struct{})
	f := newFixture(t, &testutils.FakeEngine{Size: mb, Block: block})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.service.HandleLink(ctx, linkRequest(testURL)) }()

	testutils.WaitForCondition(t, func() bool { return f.engine.CallCount() == 1 }, time.Second, "download started")
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("HandleLink() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("HandleLink did not return after cancellation")
	}

	dir := f.engine.LastDir()
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("request dir removed while the download still runs: %v", err)
	}

	close(block)
	testutils.WaitForCondition(t, func() bool {
		_, err := os.Stat(dir)
		return os.IsNotExist(err)
	}, 2*time.Second, "request dir removed after the download finished")

	if videos, docs := f.bot.Uploads(); videos+docs != 0 {
		t.Error("an abandoned download must not be delivered")
	}
	if last := f.bot.GetLastEdit(); last == nil || last.Text != lang.GetMessage(lang.ErrInternal) {
		t.Errorf("terminal message = %+v", last)
	}
}

func TestHandleLink_StatusPostFails(t *testing.T) {
	f := newFixture(t, &testutils.FakeEngine{Err: errors.NewDownloadFailed("boom", nil)})
	f.bot.SendMessageError = fmt.Errorf("network down")

	// Nothing reaches the user, but the request must still finish and clean up.
	if err := f.service.HandleLink(context.Background(), linkRequest(testURL)); err != nil {
		t.Fatal(err)
	}
	testutils.AssertDirEmpty(t, f.baseDir)
}

func TestHandleLink_EnginePanic_CleansUpAndReportsInternal(t *testing.T) {
	f := newFixture(t, &testutils.FakeEngine{Size: mb, Panic: "extractor blew up"})

	if err := f.service.HandleLink(context.Background(), linkRequest(testURL)); err != nil {
		t.Fatalf("HandleLink() error = %v", err)
	}

	if edit := f.bot.GetLastEdit(); edit == nil || edit.Text != lang.GetMessage(lang.ErrInternal) {
		t.Errorf("last edit = %+v, want internal error text", edit)
	}
	if videos, docs := f.bot.Uploads(); videos+docs != 0 {
		t.Errorf("uploads = %d, want none", videos+docs)
	}
	testutils.AssertDirEmpty(t, f.baseDir)
}

func TestHandleLink_UploadPanic_CleansUp(t *testing.T) {
	f := newFixture(t, &testutils.FakeEngine{Size: mb, Title: "Clip"})
	f.bot.OnUpload = func(string) { panic("connection reset mid-upload") }

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Error("expected the upload panic to propagate to the caller")
			}
		}()
		_ = f.service.HandleLink(context.Background(), linkRequest(testURL))
	}()

	testutils.AssertDirEmpty(t, f.baseDir)
}
