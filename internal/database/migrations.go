package database

import (
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

func setDialect() error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return nil
}

// RunMigrations applies every pending migration in migrationsDir and logs
// the resulting schema version.
func RunMigrations(db *sql.DB, migrationsDir string, logger *zap.Logger) error {
	if err := setDialect(); err != nil {
		return err
	}

	before, err := goose.GetDBVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	logger.Info("Checking for pending migrations", zap.String("dir", migrationsDir), zap.Int64("version", before))

	if err := goose.Up(db, migrationsDir); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	after, err := goose.GetDBVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	logger.Info("Schema up to date", zap.Int64("from", before), zap.Int64("to", after))
	return nil
}

// RollbackMigration reverts the most recently applied migration.
func RollbackMigration(db *sql.DB, migrationsDir string, logger *zap.Logger) error {
	if err := setDialect(); err != nil {
		return err
	}
	if err := goose.Down(db, migrationsDir); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}

	version, err := goose.GetDBVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	logger.Info("Rolled back one migration", zap.Int64("version", version))
	return nil
}

// MigrationStatus prints the applied state of every migration
func MigrationStatus(db *sql.DB, migrationsDir string) error {
	if err := setDialect(); err != nil {
		return err
	}
	return goose.Status(db, migrationsDir)
}
