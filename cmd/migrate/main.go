// cmd/migrate/main.go
package main

import (
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"

	"offer-browser/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

func main() {
	cfg := config.MustLoad()
	if !cfg.HasDatabase() {
		slog.Error("DATABASE_URL not set")
		os.Exit(1)
	}

	db, err := sql.Open("pgx", cfg.DBConn)
	if err != nil {
		slog.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		slog.Error("Failed to set goose dialect", "error", err)
		os.Exit(1)
	}

	// Используем текущую рабочую директорию
	wd, err := os.Getwd()
	if err != nil {
		slog.Error("Failed to get working directory", "error", err)
		os.Exit(1)
	}

	migrationsDir := filepath.Join(wd, "migrations")
	slog.Info("Applying migrations", "dir", migrationsDir)

	if err := goose.Up(db, migrationsDir); err != nil {
		slog.Error("Migrations failed", "error", err)
		os.Exit(1)
	}

	slog.Info("✅ Migrations applied")
}
