package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"stolik/internal/config"
	"stolik/internal/database"
	"stolik/internal/events"
	"stolik/internal/logging"
	"stolik/internal/service"
	"stolik/internal/worker"
)

// Standalone expiration sweeper. Normally the API binary runs the sweep loop
// itself; this binary exists for deployments that want lifecycle timers
// isolated from request serving. The conditional status guard in the store
// keeps running both at once safe.
func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}
	logger := baseLogger.With().Str("component", "sweeper-main").Logger()

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	bookingService := service.NewBookingService(db, events.NewEventBus(), cfg.Booking.PendingTimeout, &logger)
	sweeper := worker.NewSweeper(db, bookingService, cfg.Booking.SweepInterval, cfg.Booking.PendingTimeout, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeper.Start(ctx)
	return nil
}
