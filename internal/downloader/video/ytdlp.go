package video

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/deweni2/telegram-video-bot/internal/config"
	"github.com/deweni2/telegram-video-bot/internal/core/domain"
	"github.com/deweni2/telegram-video-bot/internal/core/errors"
	"github.com/deweni2/telegram-video-bot/internal/pkg/logger"
)

const (
	// MergeFormat needs ffmpeg to mux the separate streams.
	MergeFormat = "bestvideo+bestaudio/best"
	// ProgressiveFormat picks a single file that already has audio and video.
	ProgressiveFormat = "best[vcodec!=none][acodec!=none]/best"
	OutputTemplate    = "%(id)s.%(ext)s"

	defaultYtdlpBinary = "yt-dlp"
	maxReasonLength    = 1000
)

var (
	errorLineRe = regexp.MustCompile(`(?m)^ERROR:\s*(.+?)\s*$`)
	// Files yt-dlp leaves behind mid-download.
	partialSuffixes = []string{".part", ".ytdl", ".temp", ".tmp"}
	// Files written next to the media that must never be delivered.
	sidecarSuffixes = []string{
		".json", ".jpg", ".jpeg", ".png", ".webp", ".vtt", ".srt", ".ass", ".lrc",
		".description", ".annotations.xml", ".url", ".webloc", ".desktop", ".log", ".txt",
	}
)

// Options is the declarative record handed to the extraction engine.
type Options struct {
	Executable    string
	Format        string
	NoPlaylist    bool
	Retries       int
	SocketTimeout time.Duration
	CookiesFile   string
	Proxy         string
}

// OptionsFromConfig builds engine options. The format override wins; otherwise the
// merge format is used only when ffmpeg is on PATH.
func OptionsFromConfig(cfg *config.DownloadConfig) Options {
	return Options{
		Executable:    cfg.YTDLPPath,
		Format:        ResolveFormat(cfg.YTDLPFormat, HasFFmpeg()),
		NoPlaylist:    true,
		Retries:       cfg.Retries,
		SocketTimeout: cfg.SocketTimeout,
		CookiesFile:   cfg.CookiesFile,
		Proxy:         cfg.Proxy,
	}
}

// ResolveFormat returns the format selector to pass to yt-dlp.
func ResolveFormat(override string, hasFFmpeg bool) string {
	if override != "" {
		return override
	}
	if hasFFmpeg {
		return MergeFormat
	}
	return ProgressiveFormat
}

// HasFFmpeg reports whether ffmpeg is available for merging streams.
func HasFFmpeg() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

type runFunc func(ctx context.Context, cmd *ytdlp.Command, url string) (*ytdlp.Result, error)

func runCommand(ctx context.Context, cmd *ytdlp.Command, url string) (*ytdlp.Result, error) {
	return cmd.Run(ctx, url)
}

// Engine downloads a single URL into a directory with yt-dlp.
type Engine struct {
	opts Options
	run  runFunc
}

var _ domain.DownloadEngine = (*Engine)(nil)

func NewEngine(opts Options) *Engine {
	if opts.Executable == "" {
		opts.Executable = defaultYtdlpBinary
	}
	if opts.Format == "" {
		opts.Format = ProgressiveFormat
	}
	return &Engine{opts: opts, run: runCommand}
}

// Options returns the options the engine runs with.
func (e *Engine) Options() Options {
	return e.opts
}

func (e *Engine) command(dir string) *ytdlp.Command {
	cmd := ytdlp.New().
		SetExecutable(e.opts.Executable).
		Format(e.opts.Format).
		Output(filepath.Join(dir, OutputTemplate)).
		Retries(strconv.Itoa(e.opts.Retries)).
		Quiet().
		NoWarnings().
		NoProgress().
		PrintJSON()

	if e.opts.NoPlaylist {
		cmd = cmd.NoPlaylist()
	}
	if e.opts.SocketTimeout > 0 {
		cmd = cmd.SocketTimeout(e.opts.SocketTimeout.Seconds())
	}
	if cookies := usableCookiesFile(e.opts.CookiesFile); cookies != "" {
		cmd = cmd.Cookies(cookies)
	}
	if e.opts.Proxy != "" {
		cmd = cmd.Proxy(e.opts.Proxy)
	}
	return cmd
}

// usableCookiesFile returns path only if it names an existing regular file.
func usableCookiesFile(path string) string {
	if path == "" {
		return ""
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return ""
	}
	return path
}

// Download runs yt-dlp for url with dir as the output directory. The returned
// result has no size; callers stat the file themselves.
func (e *Engine) Download(ctx context.Context, url, dir string) (*domain.DownloadResult, error) {
	log := logger.Log.WithFields(map[string]any{
		"url":    url,
		"dir":    dir,
		"format": e.opts.Format,
	})
	log.Debug("Starting yt-dlp")

	res, err := e.run(ctx, e.command(dir), url)
	if err != nil {
		stderr := ""
		if res != nil {
			stderr = res.Stderr
		}
		reason := FailureReason(stderr, err)
		log.WithError(err).WithField("stderr", stderr).Error("yt-dlp failed")
		return nil, errors.NewDownloadFailed(reason, err)
	}

	result := &domain.DownloadResult{URL: url}
	reported := ""
	if info := firstInfo(res); info != nil {
		result.Title = deref(info.Title)
		result.Uploader = deref(info.Uploader)
		if u := deref(info.WebpageURL); u != "" {
			result.URL = u
		}
		reported = deref(info.Filename)
	}

	result.Path = ProducedPath(reported, dir)
	if result.Path == "" {
		log.WithField("reported", reported).Error("yt-dlp reported success but produced no file")
		return result, errors.ErrProducedFileMissing.WithDetails(map[string]any{
			"url":      url,
			"reported": reported,
		})
	}

	log.WithFields(map[string]any{
		"path":  result.Path,
		"title": result.Title,
	}).Info("yt-dlp finished")
	return result, nil
}

func firstInfo(res *ytdlp.Result) *ytdlp.ExtractedInfo {
	if res == nil {
		return nil
	}
	infos, err := res.GetExtractedInfo()
	if err != nil || len(infos) == 0 {
		if err != nil {
			logger.Log.WithError(err).Debug("No extracted info in yt-dlp output")
		}
		return nil
	}
	return infos[0]
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// ProducedPath returns the reported file if it exists, otherwise the
// largest finished media file in dir. Empty means nothing was produced.
func ProducedPath(reported, dir string) string {
	if reported != "" {
		if !filepath.IsAbs(reported) {
			reported = filepath.Join(dir, reported)
		}
		if info, err := os.Stat(reported); err == nil && info.Mode().IsRegular() {
			return reported
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var (
		best     string
		bestSize int64 = -1
	)
	for _, entry := range entries {
		if !entry.Type().IsRegular() || isPartial(entry.Name()) || isSidecar(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.Size() > bestSize {
			best, bestSize = filepath.Join(dir, entry.Name()), info.Size()
		}
	}
	return best
}

func isPartial(name string) bool {
	return hasAnySuffix(name, partialSuffixes)
}

func isSidecar(name string) bool {
	return hasAnySuffix(name, sidecarSuffixes)
}

func hasAnySuffix(name string, suffixes []string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range suffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// FailureReason turns yt-dlp stderr into the text shown to the user: the ERROR lines
// when present, else the last stderr line, else the error itself.
func FailureReason(stderr string, err error) string {
	var reason string
	if matches := errorLineRe.FindAllStringSubmatch(stderr, -1); len(matches) > 0 {
		lines := make([]string, 0, len(matches))
		for _, m := range matches {
			lines = append(lines, m[1])
		}
		reason = strings.Join(lines, "\n")
	} else if last := lastLine(stderr); last != "" {
		reason = last
	} else if err != nil {
		reason = err.Error()
	}

	if len(reason) > maxReasonLength {
		reason = strings.ToValidUTF8(reason[:maxReasonLength], "") + "..."
	}
	return reason
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
