package config

import (
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/deweni2/telegram-video-bot/internal/core/errors"
	"github.com/deweni2/telegram-video-bot/internal/pkg/logger"
)

const (
	DefaultMaxVideoSize           = "50MiB"
	DefaultCookiesFile            = "cookies.txt"
	DefaultMaxConcurrentDownloads = 3
	DefaultYTDLPPath              = "yt-dlp"
	DefaultRetries                = 2
	DefaultSocketTimeout          = 30 * time.Second
	DefaultRateLimitRequests      = 5
	DefaultRateLimitWindow        = time.Minute
	DefaultShutdownTimeout        = 30 * time.Second
	DefaultPollTimeout            = 60 * time.Second
	DefaultEnvFile                = ".env"
)

// Config is built once at startup and passed explicitly; nothing mutates it afterwards.
type Config struct {
	BotToken        string
	BotDebug        bool
	Lang            string
	LogLevel        string
	LogFormat       string
	DeveloperURL    string
	MetricsAddr     string
	PollTimeout     time.Duration
	ShutdownTimeout time.Duration

	DownloadSettings  DownloadConfig
	RateLimitSettings RateLimitConfig
}

type DownloadConfig struct {
	// MaxVideoSize is the largest file, in bytes, sent as a video attachment.
	MaxVideoSize           int64
	DownloadDir            string
	CookiesFile            string
	MaxConcurrentDownloads int
	YTDLPPath              string
	// YTDLPFormat overrides the automatic format choice when non-empty.
	YTDLPFormat            string
	Retries                int
	SocketTimeout          time.Duration
	Proxy                  string
	// UpdateInterval between yt-dlp self-updates. Zero disables updating.
	UpdateInterval         time.Duration
}

type RateLimitConfig struct {
	// Requests per Window for a single user. Zero disables limiting.
	Requests int
	Window   time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("LANG", "en")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("BOT_DEBUG", false)
	v.SetDefault("MAX_VIDEO_SIZE", DefaultMaxVideoSize)
	v.SetDefault("COOKIES_FILE", DefaultCookiesFile)
	v.SetDefault("DOWNLOAD_DIR", os.TempDir())
	v.SetDefault("MAX_CONCURRENT_DOWNLOADS", DefaultMaxConcurrentDownloads)
	v.SetDefault("YTDLP_PATH", DefaultYTDLPPath)
	v.SetDefault("YTDLP_RETRIES", DefaultRetries)
	v.SetDefault("RATE_LIMIT_REQUESTS", DefaultRateLimitRequests)
}

func newViper() (*viper.Viper, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	if path := v.GetString("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.ErrConfiguration.WithCause(err).WithDetails(map[string]any{
				"config_file": path,
			})
		}
		logger.Log.WithField("config_file", path).Info("Configuration file loaded")
	}
	return v, nil
}

// loadDotEnv reads the env file if present. Variables already set in the environment win.
func loadDotEnv() {
	path := os.Getenv("ENV_FILE")
	if path == "" {
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if !os.IsNotExist(err) {
			logger.Log.WithError(err).WithField("env_file", path).Warn("Failed to load env file")
		}
		return
	}
	logger.Log.WithField("env_file", path).Debug("Env file loaded")
}

func getDuration(v *viper.Viper, key string, defaultValue time.Duration) time.Duration {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	logger.Log.WithField("key", key).Warnf("Invalid duration %q, using %s", raw, defaultValue)
	return defaultValue
}

func NewConfig() (*Config, error) {
	loadDotEnv()

	v, err := newViper()
	if err != nil {
		return nil, err
	}

	maxVideoSize, sizeErr := humanize.ParseBytes(v.GetString("MAX_VIDEO_SIZE"))

	cfg := &Config{
		BotToken:        strings.TrimSpace(v.GetString("BOT_TOKEN")),
		BotDebug:        v.GetBool("BOT_DEBUG"),
		Lang:            strings.ToLower(v.GetString("LANG")),
		LogLevel:        v.GetString("LOG_LEVEL"),
		LogFormat:       v.GetString("LOG_FORMAT"),
		DeveloperURL:    strings.TrimSpace(v.GetString("DEVELOPER_URL")),
		MetricsAddr:     strings.TrimSpace(v.GetString("METRICS_ADDR")),
		PollTimeout:     getDuration(v, "POLL_TIMEOUT", DefaultPollTimeout),
		ShutdownTimeout: getDuration(v, "SHUTDOWN_TIMEOUT", DefaultShutdownTimeout),

		DownloadSettings: DownloadConfig{
			MaxVideoSize:           int64(maxVideoSize),
			DownloadDir:            v.GetString("DOWNLOAD_DIR"),
			CookiesFile:            v.GetString("COOKIES_FILE"),
			MaxConcurrentDownloads: v.GetInt("MAX_CONCURRENT_DOWNLOADS"),
			YTDLPPath:              v.GetString("YTDLP_PATH"),
			YTDLPFormat:            strings.TrimSpace(v.GetString("YTDLP_FORMAT")),
			Retries:                v.GetInt("YTDLP_RETRIES"),
			SocketTimeout:          getDuration(v, "YTDLP_SOCKET_TIMEOUT", DefaultSocketTimeout),
			Proxy:                  strings.TrimSpace(v.GetString("YTDLP_PROXY")),
			UpdateInterval:         getDuration(v, "YTDLP_UPDATE_INTERVAL", 0),
		},

		RateLimitSettings: RateLimitConfig{
			Requests: v.GetInt("RATE_LIMIT_REQUESTS"),
			Window:   getDuration(v, "RATE_LIMIT_WINDOW", DefaultRateLimitWindow),
		},
	}

	if sizeErr != nil {
		return nil, errors.ErrConfiguration.WithCause(sizeErr).WithDetails(map[string]any{
			"MAX_VIDEO_SIZE": v.GetString("MAX_VIDEO_SIZE"),
		})
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logger.Log.WithFields(map[string]any{
		"max_video_size":  humanize.IBytes(uint64(cfg.DownloadSettings.MaxVideoSize)),
		"max_concurrent":  cfg.DownloadSettings.MaxConcurrentDownloads,
		"download_dir":    cfg.DownloadSettings.DownloadDir,
		"metrics_enabled": cfg.MetricsAddr != "",
	}).Info("Configuration loaded successfully")
	return cfg, nil
}
