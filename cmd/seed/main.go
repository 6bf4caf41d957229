package main

import (
	"context"
	"fmt"
	"time"

	"shophub/internal/config"
	"shophub/internal/database"
	"shophub/internal/logger"
	"shophub/internal/repository"
	"shophub/internal/seed"

	"go.uber.org/zap"
)

// Loads the demo accounts and catalog into the configured postgres database.
func main() {
	cfg := config.Load()

	log, err := logger.NewWithFile(cfg.Server.Env, cfg.Log.File)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	dbService, err := database.New(cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer dbService.Close()

	if err := database.RunMigrations(dbService.DB(), cfg.Database.MigrationsDir, log); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := seed.Run(ctx, repository.NewPostgresStorage(dbService.DB()), log); err != nil {
		log.Fatal("Failed to seed database", zap.Error(err))
	}

	log.Info("Seeding complete",
		zap.String("admin", seed.AdminEmail),
		zap.String("seller", "seller@shophub.com"),
		zap.String("buyer", "buyer@shophub.com"),
	)
}
