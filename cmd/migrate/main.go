package main

import (
	"fmt"
	"os"

	"shophub/internal/config"
	"shophub/internal/database"
	"shophub/internal/logger"

	"go.uber.org/zap"
)

const usage = "usage: migrate [up|down|status]"

func main() {
	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	cfg := config.Load()

	log := logger.NewWithDefaults()
	defer log.Sync()

	dbService, err := database.New(cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer dbService.Close()

	dir := cfg.Database.MigrationsDir
	switch command {
	case "up":
		err = database.RunMigrations(dbService.DB(), dir, log)
	case "down":
		err = database.RollbackMigration(dbService.DB(), dir, log)
	case "status":
		err = database.MigrationStatus(dbService.DB(), dir)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		log.Fatal("Migration command failed", zap.String("command", command), zap.Error(err))
	}
}
