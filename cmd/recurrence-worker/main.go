package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"contas/internal/amqp"
	"contas/internal/config"
	"contas/internal/services"
	"contas/internal/storage"
	"contas/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting recurrence-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// Initialize AMQP client for publishing entry-created events (optional)
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without eventing", "error", err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("AMQP disabled - entry-created events will not be published")
	}

	materializer := services.NewMaterializer(repo, publisher)
	sweeper := worker.NewRecurrenceSweeper(repo, materializer, cfg.SweepConcurrency)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("Recurrence sweeper configured",
		"interval", cfg.SweepInterval,
		"concurrency", cfg.SweepConcurrency,
		"sqlite_db", cfg.SQLiteDBPath)

	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	// Run initial sweep on startup
	logger.Info("Running initial recurrence sweep...")
	if count, err := sweeper.SweepAll(ctx, time.Now()); err != nil {
		logger.Error("Initial sweep failed", "error", err)
	} else {
		logger.Info("Initial sweep complete", "transactions_created", count)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				count, err := sweeper.SweepAll(ctx, now)
				if err != nil {
					logger.Error("Periodic sweep failed", "error", err)
				} else {
					logger.Info("Periodic sweep complete",
						"transactions_created", count,
						"next_check", now.Add(cfg.SweepInterval).Format("15:04:05"))
				}
			}
		}
	}()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	logger.Info("Shutting down recurrence-worker...")
	cancel()

	time.Sleep(2 * time.Second)
	logger.Info("Recurrence-worker shutdown complete")
}
