package domain

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotInterface определяет операции с Telegram Bot API, нужные боту
type BotInterface interface {
	// SendMessage отправляет текст в ответ на replyTo (0 - без ответа) и возвращает ID сообщения
	SendMessage(chatID int64, replyTo int, text string, keyboard any) (int, error)
	EditMessageText(chatID int64, messageID int, text string) error
	DeleteMessage(chatID int64, messageID int) error
	SendVideo(chatID int64, replyTo int, path, caption string) error
	SendDocument(chatID int64, replyTo int, path, caption string) error
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// DownloadEngine запускает внешний экстрактор и возвращает созданный файл
type DownloadEngine interface {
	Download(ctx context.Context, url, dir string) (*DownloadResult, error)
}

// DownloadPool выполняет загрузку на ограниченном пуле воркеров
type DownloadPool interface {
	Submit(ctx context.Context, job func(ctx context.Context) (*DownloadResult, error)) (*DownloadResult, error)
}

// LinkHandler обрабатывает сообщение со ссылкой
type LinkHandler interface {
	HandleLink(ctx context.Context, req Request) error
}

// RateLimiterInterface ограничивает частоту запросов пользователя
type RateLimiterInterface interface {
	Allow(userID int64) bool
}

// MetricsInterface собирает метрики бота
type MetricsInterface interface {
	IncUpdate(route string)
	IncRequest(outcome string)
	IncDelivery(mode DeliveryMode)
	ObserveDownload(d time.Duration, ok bool)
	SetDownloadsInFlight(n int)
}

// GracefulShutdownInterface сервис, который нужно корректно остановить
type GracefulShutdownInterface interface {
	Shutdown(ctx context.Context) error
	Name() string
}
