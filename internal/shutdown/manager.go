package shutdown

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/deweni2/telegram-video-bot/internal/core/domain"
	"github.com/deweni2/telegram-video-bot/internal/pkg/logger"
)

// Manager управляет graceful shutdown приложения.
// Сервисы останавливаются по очереди в порядке регистрации, общий таймаут один на всех.
type Manager struct {
	services []domain.GracefulShutdownInterface
	timeout  time.Duration
	mu       sync.RWMutex
}

// NewManager создает новый менеджер shutdown
func NewManager(timeout time.Duration) *Manager {
	return &Manager{
		services: make([]domain.GracefulShutdownInterface, 0),
		timeout:  timeout,
	}
}

// Register регистрирует сервис для graceful shutdown
func (m *Manager) Register(service domain.GracefulShutdownInterface) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.services = append(m.services, service)
	logger.Log.WithField("service", service.Name()).Debug("Service registered for graceful shutdown")
}

// WaitForSignal блокируется до SIGINT/SIGTERM/SIGHUP или отмены ctx
func WaitForSignal(ctx context.Context) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		logger.Log.WithField("signal", sig.String()).Info("Received shutdown signal")
	case <-ctx.Done():
		logger.Log.Info("Context canceled, shutting down")
	}
}

// Shutdown останавливает все зарегистрированные сервисы
func (m *Manager) Shutdown() error {
	logger.Log.Info("Starting graceful shutdown")

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	m.mu.RLock()
	services := make([]domain.GracefulShutdownInterface, len(m.services))
	copy(services, m.services)
	m.mu.RUnlock()

	var errs []error
	for _, svc := range services {
		log := logger.Log.WithField("service", svc.Name())
		log.Info("Shutting down service")

		if err := svc.Shutdown(ctx); err != nil {
			log.WithError(err).Error("Error during service shutdown")
			errs = append(errs, fmt.Errorf("service %s shutdown failed: %w", svc.Name(), err))
			continue
		}
		log.Info("Service shutdown completed")
	}

	if len(errs) > 0 {
		logger.Log.WithField("error_count", len(errs)).Error("Some services failed to shutdown gracefully")
		return errors.Join(errs...)
	}

	logger.Log.Info("Graceful shutdown completed successfully")
	return nil
}

// Func адаптирует функцию к GracefulShutdownInterface
type Func struct {
	name string
	fn   func(ctx context.Context) error
}

func NewFunc(name string, fn func(ctx context.Context) error) *Func {
	return &Func{name: name, fn: fn}
}

func (f *Func) Shutdown(ctx context.Context) error {
	return f.fn(ctx)
}

func (f *Func) Name() string {
	return f.name
}

// UpdatesShutdown прекращает long polling Telegram
type UpdatesShutdown struct {
	bot interface{ StopReceivingUpdates() }
}

func NewUpdatesShutdown(bot interface{ StopReceivingUpdates() }) *UpdatesShutdown {
	return &UpdatesShutdown{bot: bot}
}

func (u *UpdatesShutdown) Shutdown(_ context.Context) error {
	u.bot.StopReceivingUpdates()
	logger.Log.Info("Stopped receiving updates")
	return nil
}

func (*UpdatesShutdown) Name() string {
	return "telegram_updates"
}

// HTTPServerShutdown реализует graceful shutdown для HTTP сервера
type HTTPServerShutdown struct {
	server HTTPServer
}

// HTTPServer интерфейс для HTTP сервера
type HTTPServer interface {
	Shutdown(ctx context.Context) error
}

// NewHTTPServerShutdown создает новый shutdown handler для HTTP сервера
func NewHTTPServerShutdown(server HTTPServer) *HTTPServerShutdown {
	return &HTTPServerShutdown{server: server}
}

// Shutdown выполняет shutdown HTTP сервера
func (h *HTTPServerShutdown) Shutdown(ctx context.Context) error {
	logger.Log.Info("Shutting down HTTP server")
	return h.server.Shutdown(ctx)
}

// Name возвращает имя сервиса
func (*HTTPServerShutdown) Name() string {
	return "http_server"
}
