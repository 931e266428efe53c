package testutils

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/deweni2/telegram-video-bot/internal/core/domain"
)

// FakeEngine implements domain.DownloadEngine without running yt-dlp.
// It writes a file of Size bytes into the request directory unless Err is set.
type FakeEngine struct {
	mu sync.Mutex

	Size     int64
	FileName string
	Title    string
	Uploader string
	URL      string
	Err      error
	// SkipFile reports success without creating a file.
	SkipFile bool
	// Block, if set, is waited on before the download returns.
	Block chan struct{}
	// Panic, if set, is raised after the file is written.
	Panic any

	Calls []string
	Dirs  []string
}

var _ domain.DownloadEngine = (*FakeEngine)(nil)

func (f *FakeEngine) Download(_ context.Context, url, dir string) (*domain.DownloadResult, error) {
	f.mu.Lock()
	f.Calls = append(f.Calls, url)
	f.Dirs = append(f.Dirs, dir)
	f.mu.Unlock()

	if f.Block != nil {
		<-f.Block
	}
	if f.Err != nil {
		return nil, f.Err
	}

	name := f.FileName
	if name == "" {
		name = "video.mp4"
	}
	path := filepath.Join(dir, name)
	if !f.SkipFile {
		file, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		if err := file.Truncate(f.Size); err != nil {
			file.Close()
			return nil, err
		}
		if err := file.Close(); err != nil {
			return nil, err
		}
	}

	if f.Panic != nil {
		panic(f.Panic)
	}

	webpage := f.URL
	if webpage == "" {
		webpage = url
	}
	return &domain.DownloadResult{
		Path:     path,
		Title:    f.Title,
		Uploader: f.Uploader,
		URL:      webpage,
	}, nil
}

// CallCount returns the number of Download calls.
func (f *FakeEngine) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Calls)
}

// LastDir returns the directory of the latest Download call.
func (f *FakeEngine) LastDir() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Dirs) == 0 {
		return ""
	}
	return f.Dirs[len(f.Dirs)-1]
}
