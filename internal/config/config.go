// internal/config/config.go
package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort    string
	DBConn        string
	LogLevel      slog.Level
	GinMode       string
	TelegramToken string
	ExternalURL   string
}

// MustLoad читает окружение (и .env, если он есть). Отсутствие DATABASE_URL не ошибка:
// страница покажет сообщение о незаданной конфигурации.
func MustLoad() Config {
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "" {
		ginMode = "release"
	}

	return Config{
		ServerPort:    ":" + port,
		DBConn:        strings.TrimSpace(os.Getenv("DATABASE_URL")),
		LogLevel:      parseLevel(os.Getenv("LOG_LEVEL")),
		GinMode:       ginMode,
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		ExternalURL:   strings.TrimRight(os.Getenv("RENDER_EXTERNAL_URL"), "/"),
	}
}

// HasDatabase reports whether connection parameters were supplied.
func (c Config) HasDatabase() bool {
	return c.DBConn != ""
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
