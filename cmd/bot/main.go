// cmd/bot/main.go
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"offer-browser/internal/bot"
	"offer-browser/internal/config"
	"offer-browser/internal/storage"
	"offer-browser/internal/storage/postgres"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func main() {
	cfg := config.MustLoad()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	if cfg.TelegramToken == "" {
		slog.Error("TELEGRAM_BOT_TOKEN not set")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store storage.OfferStorage = storage.Unconfigured{}
	pg, err := postgres.Open(ctx, cfg.DBConn)
	switch {
	case errors.Is(err, storage.ErrConfigMissing):
		slog.Warn("DATABASE_URL not set, bot will answer with the configuration message")
	case err != nil:
		slog.Error("Failed to create database pool", "error", err)
		os.Exit(1)
	default:
		defer pg.Close()
		store = pg
	}

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		slog.Error("Failed to start Telegram bot", "error", err)
		os.Exit(1)
	}
	slog.Info("Bot started", "username", api.Self.UserName)

	commands := bot.NewCommands(store)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			slog.Info("Bot stopped")
			return
		case update := <-updates:
			if update.Message == nil {
				continue
			}

			chatID := update.Message.Chat.ID
			slog.Info("📥 Message received", "chat_id", chatID, "text", update.Message.Text)

			msg := tgbotapi.NewMessage(chatID, commands.Reply(ctx, update.Message.Text))
			msg.ParseMode = tgbotapi.ModeMarkdown
			msg.DisableWebPagePreview = true
			if _, err := api.Send(msg); err != nil {
				slog.Error("Failed to send reply", "error", err, "chat_id", chatID)
			}
		}
	}
}
