package filemanager

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/deweni2/telegram-video-bot/internal/core/errors"
)

func TestCreateAndRemoveRequestDir(t *testing.T) {
	base := t.TempDir()

	dir, err := CreateRequestDir(base, "abc")
	if err != nil {
		t.Fatalf("CreateRequestDir() error = %v", err)
	}
	if filepath.Base(dir) != "tg_dl_abc" {
		t.Errorf("dir = %q, want tg_dl_abc", dir)
	}
	if err := os.WriteFile(filepath.Join(dir, "v.mp4"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := CreateRequestDir(base, "abc"); err == nil {
		t.Error("creating the same request dir twice should fail")
	}

	if err := RemoveRequestDir(dir); err != nil {
		t.Fatalf("RemoveRequestDir() error = %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("dir still exists: %v", err)
	}
}

func TestRemoveRequestDir_RefusesOtherDirs(t *testing.T) {
	base := t.TempDir()
	other := filepath.Join(base, "important")
	if err := os.Mkdir(other, 0o700); err != nil {
		t.Fatal(err)
	}

	for _, dir := range []string{"", other, base} {
		if err := RemoveRequestDir(dir); err == nil {
			t.Errorf("RemoveRequestDir(%q) should refuse", dir)
		}
	}
	if _, err := os.Stat(other); err != nil {
		t.Errorf("unrelated dir was touched: %v", err)
	}
}

func TestFileSize(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(file, make([]byte, 1234), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		size    int64
		missing bool
	}{
		{"regular file", file, 1234, false},
		{"missing file", filepath.Join(dir, "gone.mp4"), 0, true},
		{"directory", dir, 0, true},
		{"empty path", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			size, err := FileSize(tt.path)
			if tt.missing {
				if !errors.Is(err, errors.ErrProducedFileMissing) {
					t.Errorf("FileSize() error = %v, want ErrProducedFileMissing", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FileSize() error = %v", err)
			}
			if size != tt.size {
				t.Errorf("FileSize() = %d, want %d", size, tt.size)
			}
		})
	}
}

func TestSweepStale(t *testing.T) {
	base := t.TempDir()

	old, _ := CreateRequestDir(base, "old")
	if _, err := CreateRequestDir(base, "fresh"); err != nil {
		t.Fatal(err)
	}
	keep := filepath.Join(base, "not_ours")
	if err := os.Mkdir(keep, 0o700); err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-2 * time.Hour)
	for _, d := range []string{old, keep} {
		if err := os.Chtimes(d, past, past); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := SweepStale(base, time.Hour)
	if err != nil {
		t.Fatalf("SweepStale() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	entries, _ := os.ReadDir(base)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	got := strings.Join(names, ",")
	if strings.Contains(got, "tg_dl_old") || !strings.Contains(got, "tg_dl_fresh") || !strings.Contains(got, "not_ours") {
		t.Errorf("unexpected remaining entries: %s", got)
	}
}
