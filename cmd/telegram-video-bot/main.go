package main

import (
	"context"

	"github.com/deweni2/telegram-video-bot/internal/app"
	"github.com/deweni2/telegram-video-bot/internal/config"
	"github.com/deweni2/telegram-video-bot/internal/pkg/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to initialize configuration")
	}

	logger.InitLogger(cfg.LogLevel, cfg.LogFormat)
	logger.Log.WithFields(map[string]any{
		"version":    Version,
		"build_time": BuildTime,
	}).Info("Starting Telegram video bot")

	application, err := app.New(cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("Bot initialization failed")
	}

	if err := application.Run(context.Background()); err != nil {
		logger.Log.WithError(err).Fatal("Shutdown completed with errors")
	}
	logger.Log.Info("Telegram video bot shutdown complete")
}
