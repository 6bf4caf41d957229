package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"shophub/internal/ai"
	"shophub/internal/config"
	"shophub/internal/database"
	"shophub/internal/logger"
	"shophub/internal/payment"
	"shophub/internal/repository"
	"shophub/internal/repository/memory"
	"shophub/internal/seed"
	"shophub/internal/server"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *server.Server, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The server has 30 seconds to finish the requests it is handling
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")

	done <- true
}

// openStorage selects the storage backend. The database service is nil for
// the in-memory backend.
func openStorage(cfg *config.Config, log *zap.Logger) (repository.Storage, database.Service, error) {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		log.Warn("Using in-memory storage, data is lost on restart")
		return memory.NewStorage(), nil, nil
	}

	dbService, err := database.New(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	log.Info("Database health check", zap.Any("health", dbService.Health()))

	if err := database.RunMigrations(dbService.DB(), cfg.Database.MigrationsDir, log); err != nil {
		dbService.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("Database migrations completed successfully")

	return repository.NewPostgresStorage(dbService.DB()), dbService, nil
}

func openRedis(cfg *config.Config, log *zap.Logger) *redis.Client {
	if !cfg.RateLimit.Enabled {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("Redis unreachable, rate limiting will fail open", zap.String("addr", cfg.Redis.Addr()), zap.Error(err))
	}
	return client
}

func newCompleter(cfg *config.Config, log *zap.Logger) ai.Completer {
	if cfg.AI.APIKey == "" {
		log.Info("GEMINI_API_KEY not set, AI features use fallbacks")
		return ai.Unavailable{}
	}

	completer, err := ai.NewGeminiCompleter(context.Background(), cfg.AI.APIKey, cfg.AI.TextModel, cfg.AI.JSONModel)
	if err != nil {
		log.Error("Failed to create Gemini client, AI features use fallbacks", zap.Error(err))
		return ai.Unavailable{}
	}
	return completer
}

func newGateway(cfg *config.Config, log *zap.Logger) payment.Gateway {
	if cfg.Payment.PaystackSecretKey == "" {
		log.Info("PAYSTACK_SECRET_KEY not set, using the mock payment gateway")
		return payment.NewMockGateway()
	}
	return payment.NewPaystackGateway(cfg.Payment.PaystackSecretKey, cfg.Payment.PaystackBaseURL, nil)
}

func main() {
	cfg := config.Load()

	log, err := logger.NewWithFile(cfg.Server.Env, cfg.Log.File)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", zap.Error(err))
	}

	log.Info("Starting ShopHub API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
		zap.String("storage", cfg.Storage.Driver),
	)

	store, dbService, err := openStorage(cfg, log)
	if err != nil {
		log.Fatal("Failed to open storage", zap.Error(err))
	}

	if cfg.Seed {
		if err := seed.Run(context.Background(), store, log); err != nil {
			log.Fatal("Failed to seed demo data", zap.Error(err))
		}
	}

	srv, err := server.NewServer(cfg, log, server.Dependencies{
		Storage:   store,
		Database:  dbService,
		Redis:     openRedis(cfg, log),
		Completer: newCompleter(cfg, log),
		Gateway:   newGateway(cfg, log),
	})
	if err != nil {
		log.Fatal("Failed to create server", zap.Error(err))
	}

	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	go gracefulShutdown(srv, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Info("Graceful shutdown complete")
}
