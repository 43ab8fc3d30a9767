// cmd/api/main.go
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"offer-browser/internal/bot"
	"offer-browser/internal/config"
	"offer-browser/internal/handler"
	"offer-browser/internal/middleware"
	"offer-browser/internal/storage"
	"offer-browser/internal/storage/postgres"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func main() {
	cfg := config.MustLoad()

	// Настройка логгера
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	// Без DATABASE_URL сервер всё равно стартует и показывает сообщение о конфигурации.
	var store storage.OfferStorage = storage.Unconfigured{}
	if cfg.HasDatabase() {
		pg, err := postgres.Open(context.Background(), cfg.DBConn)
		if err != nil {
			slog.Error("Failed to create database pool", "error", err)
			os.Exit(1)
		}
		defer pg.Close()

		if err := pg.Ping(context.Background()); err != nil {
			slog.Warn("Database ping failed, pages will show the fetch error", "error", err)
		} else {
			slog.Info("✅ Connected to PostgreSQL")
		}
		store = pg
	} else {
		slog.Warn("DATABASE_URL not set, offers page will show the configuration message")
	}

	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(middleware.RequestLogger(), gin.Recovery())

	handler.RegisterRoutes(router, handler.NewOfferHandler(store))

	// Telegram webhook
	if cfg.TelegramToken != "" {
		if err := registerWebhook(router, cfg, store); err != nil {
			slog.Error("Failed to set up Telegram webhook", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("🚀 Server started", "addr", cfg.ServerPort)
	if err := router.Run(cfg.ServerPort); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func registerWebhook(router *gin.Engine, cfg config.Config, store storage.OfferStorage) error {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return err
	}

	webhookURL := cfg.ExternalURL + "/telegram"
	if _, err := api.MakeRequest("setWebhook", tgbotapi.Params{"url": webhookURL}); err != nil {
		return err
	}
	slog.Info("Telegram webhook set", "url", webhookURL)

	commands := bot.NewCommands(store)
	router.POST("/telegram", func(c *gin.Context) {
		var update tgbotapi.Update
		if err := c.ShouldBindJSON(&update); err != nil {
			slog.Error("Failed to parse Telegram update", "error", err)
			c.Status(http.StatusBadRequest)
			return
		}
		if update.Message == nil {
			c.Status(http.StatusOK)
			return
		}

		slog.Info("📥 Message received", "chat_id", update.Message.Chat.ID, "text", update.Message.Text)
		msg := tgbotapi.NewMessage(update.Message.Chat.ID, commands.Reply(c.Request.Context(), update.Message.Text))
		msg.ParseMode = tgbotapi.ModeMarkdown
		msg.DisableWebPagePreview = true
		if _, err := api.Send(msg); err != nil {
			slog.Error("Failed to send Telegram reply", "error", err)
		}

		c.Status(http.StatusOK)
	})
	return nil
}
