package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rentfolio/backend/internal/domain/rental"
	"github.com/rentfolio/backend/internal/infrastructure/config"
	"github.com/rentfolio/backend/internal/infrastructure/logger"
	"github.com/rentfolio/backend/internal/infrastructure/persistence"
	"github.com/rentfolio/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
)

func main() {
	var logLevel string
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	log, err := logger.New(config.LogConfig{
		Level:  logLevel,
		Format: "console",
		Output: "stdout",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	log.Info("Running schema migration",
		zap.String("database", cfg.Database.DBName),
	)

	err = db.DB.AutoMigrate(
		&rental.Property{},
		&rental.Unit{},
		&rental.Tenant{},
		&models.InvoiceModel{},
		&models.PaymentModel{},
	)
	if err != nil {
		log.Fatal("Schema migration failed", zap.Error(err))
	}

	log.Info("Schema migration completed successfully")
}
