package app

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/deweni2/telegram-video-bot/internal/api"
	"github.com/deweni2/telegram-video-bot/internal/config"
	"github.com/deweni2/telegram-video-bot/internal/container"
	"github.com/deweni2/telegram-video-bot/internal/core/domain"
	"github.com/deweni2/telegram-video-bot/internal/downloader/video"
	"github.com/deweni2/telegram-video-bot/internal/filemanager"
	"github.com/deweni2/telegram-video-bot/internal/lang"
	"github.com/deweni2/telegram-video-bot/internal/pkg/logger"
	"github.com/deweni2/telegram-video-bot/internal/shutdown"
	"github.com/deweni2/telegram-video-bot/internal/transport/telegram/bot"
)

// Request directories older than this are leftovers of a previous run.
const staleDirAge = 6 * time.Hour

// Application представляет главное приложение
type Application struct {
	container *container.Container
	config    *config.Config
	ops       *api.Server
}

// New создает приложение, подключаясь к Telegram
func New(cfg *config.Config) (*Application, error) {
	lang.SetupLang(cfg.Lang)

	botInstance, err := bot.NewBot(cfg.BotToken, cfg.BotDebug, cfg.DeveloperURL)
	if err != nil {
		return nil, err
	}
	return NewWithDeps(cfg, botInstance, video.NewEngine(video.OptionsFromConfig(&cfg.DownloadSettings))), nil
}

// NewWithDeps создает приложение с заданными ботом и движком загрузки
func NewWithDeps(cfg *config.Config, b domain.BotInterface, engine domain.DownloadEngine) *Application {
	lang.SetupLang(cfg.Lang)

	c := container.NewContainer(cfg)
	c.SetBot(b)
	c.SetEngine(engine)

	app := &Application{container: c, config: cfg}
	if cfg.MetricsAddr != "" {
		app.ops = api.NewServer(cfg.MetricsAddr, c.GetMetrics().Registry, c.GetDownloadManager())
	}
	return app
}

// Run обрабатывает обновления до отмены ctx или сигнала, затем выполняет graceful shutdown
func (app *Application) Run(ctx context.Context) error {
	logger.Log.WithFields(map[string]any{
		"workers":        app.config.DownloadSettings.MaxConcurrentDownloads,
		"max_video_size": app.config.DownloadSettings.MaxVideoSize,
		"download_dir":   app.config.DownloadSettings.DownloadDir,
	}).Info("Starting Telegram video bot")

	if n, err := filemanager.SweepStale(app.config.DownloadSettings.DownloadDir, staleDirAge); err != nil {
		logger.Log.WithError(err).Warn("Failed to sweep stale request directories")
	} else if n > 0 {
		logger.Log.WithField("removed", n).Info("Removed request directories left by a previous run")
	}

	runCtx, stopBackground := context.WithCancel(ctx)
	defer stopBackground()

	go video.StartPeriodicUpdater(runCtx, app.config.DownloadSettings.UpdateInterval,
		video.NewUpdater(app.config.DownloadSettings.YTDLPPath))

	if app.ops != nil {
		if err := app.ops.Start(); err != nil {
			return err
		}
	}

	// Handlers get their own context so in-flight requests can finish during shutdown.
	handlerCtx, cancelHandlers := context.WithCancel(context.Background())
	defer cancelHandlers()

	b := app.container.GetBot()
	r := app.container.GetRouter()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = int(app.config.PollTimeout.Seconds())
	go r.Run(handlerCtx, b.GetUpdatesChan(u))

	logger.Log.Info("Telegram video bot started")
	shutdown.WaitForSignal(ctx)
	stopBackground()

	return app.shutdownManager(r, cancelHandlers).Shutdown()
}

func (app *Application) shutdownManager(r interface{ Wait(context.Context) error }, cancelHandlers context.CancelFunc) *shutdown.Manager {
	m := shutdown.NewManager(app.config.ShutdownTimeout)
	m.Register(shutdown.NewUpdatesShutdown(app.container.GetBot()))
	m.Register(shutdown.NewFunc("handlers", func(ctx context.Context) error {
		err := r.Wait(ctx)
		if err != nil {
			logger.Log.Warn("Handlers still running at shutdown deadline, abandoning them")
		}
		cancelHandlers()
		return err
	}))
	m.Register(app.container.GetDownloadManager())
	if l, ok := app.container.GetRateLimiter().(domain.GracefulShutdownInterface); ok {
		m.Register(l)
	}
	if app.ops != nil {
		m.Register(shutdown.NewHTTPServerShutdown(app.ops))
	}
	return m
}
