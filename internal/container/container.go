package container

import (
	"github.com/deweni2/telegram-video-bot/internal/config"
	"github.com/deweni2/telegram-video-bot/internal/core/domain"
	"github.com/deweni2/telegram-video-bot/internal/core/services"
	"github.com/deweni2/telegram-video-bot/internal/downloader/manager"
	"github.com/deweni2/telegram-video-bot/internal/pkg/metrics"
	"github.com/deweni2/telegram-video-bot/internal/ratelimit"
	router "github.com/deweni2/telegram-video-bot/internal/transport/telegram"
	"github.com/deweni2/telegram-video-bot/internal/transport/telegram/handlers"
	"github.com/deweni2/telegram-video-bot/internal/transport/telegram/middleware"
)

// Container реализует паттерн Dependency Injection.
// Бот и движок загрузки задаются снаружи, остальное создается лениво.
type Container struct {
	config *config.Config
	bot    domain.BotInterface
	engine domain.DownloadEngine

	metrics         *metrics.Metrics
	downloadManager *manager.DownloadManager
	rateLimiter     domain.RateLimiterInterface
	downloadService *services.DownloadService
	router          *router.Router
}

// NewContainer создает новый DI контейнер
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config: cfg,
	}
}

// SetBot устанавливает бот
func (c *Container) SetBot(bot domain.BotInterface) {
	c.bot = bot
}

// SetEngine устанавливает движок загрузки
func (c *Container) SetEngine(engine domain.DownloadEngine) {
	c.engine = engine
}

// GetBot возвращает бот
func (c *Container) GetBot() domain.BotInterface {
	if c.bot == nil {
		panic("bot not initialized in container")
	}
	return c.bot
}

// GetEngine возвращает движок загрузки
func (c *Container) GetEngine() domain.DownloadEngine {
	if c.engine == nil {
		panic("download engine not initialized in container")
	}
	return c.engine
}

// GetMetrics возвращает метрики (lazy initialization)
func (c *Container) GetMetrics() *metrics.Metrics {
	if c.metrics == nil {
		c.metrics = metrics.NewMetrics()
	}
	return c.metrics
}

// GetDownloadManager возвращает пул загрузок (lazy initialization)
func (c *Container) GetDownloadManager() *manager.DownloadManager {
	if c.downloadManager == nil {
		c.downloadManager = manager.NewDownloadManager(c.config.DownloadSettings.MaxConcurrentDownloads, c.GetMetrics())
	}
	return c.downloadManager
}

// GetRateLimiter возвращает rate limiter (lazy initialization)
func (c *Container) GetRateLimiter() domain.RateLimiterInterface {
	if c.rateLimiter == nil {
		if c.config.RateLimitEnabled() {
			c.rateLimiter = ratelimit.NewTokenBucketLimiter(c.config.RateLimitSettings.Requests, c.config.RateLimitSettings.Window)
		} else {
			c.rateLimiter = ratelimit.NewNoOpRateLimiter()
		}
	}
	return c.rateLimiter
}

// GetDownloadService возвращает сервис загрузок (lazy initialization)
func (c *Container) GetDownloadService() *services.DownloadService {
	if c.downloadService == nil {
		c.downloadService = services.NewDownloadService(
			c.config,
			c.GetBot(),
			c.GetEngine(),
			c.GetDownloadManager(),
			c.GetMetrics(),
		)
	}
	return c.downloadService
}

// GetRouter возвращает роутер (lazy initialization)
func (c *Container) GetRouter() *router.Router {
	if c.router == nil {
		c.router = router.NewRouter(
			c.GetBot(),
			c.GetDownloadService(),
			handlers.NewCommandHandler(c.GetBot()),
			middleware.DefaultMiddlewareChain(c.GetMetrics(), c.GetRateLimiter()),
		)
	}
	return c.router
}
