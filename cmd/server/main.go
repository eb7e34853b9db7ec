package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/federicodonati07/fintrack-sub001/internal/config"
	"github.com/federicodonati07/fintrack-sub001/internal/database"
	httpserver "github.com/federicodonati07/fintrack-sub001/internal/http"
	"github.com/federicodonati07/fintrack-sub001/internal/models"
	"github.com/federicodonati07/fintrack-sub001/internal/plan"
	"github.com/federicodonati07/fintrack-sub001/pkg/logging"
)

func main() {
	_ = godotenv.Load(".env")
	logging.Setup()

	database.Connect()
	if err := database.DB.AutoMigrate(
		&models.User{},
		&models.Account{},
		&models.Transaction{},
		&models.SharedAccount{},
		&models.SharedAccountMember{},
		&models.SharedAccountInvite{},
		&models.PlanLimits{},
	); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// Seed plan limits for tiers that were never configured.
	for _, row := range plan.Defaults() {
		if err := database.DB.Where(models.PlanLimits{Plan: row.Plan}).FirstOrCreate(&row).Error; err != nil {
			slog.Error("plan limits seeding failed", "plan", row.Plan, "error", err)
			os.Exit(1)
		}
	}

	cfg := config.Load()
	r := httpserver.NewServer(cfg)
	slog.Info("listening", "port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
