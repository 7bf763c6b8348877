package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stolik/internal/api"
	"stolik/internal/config"
	"stolik/internal/database"
	"stolik/internal/domain"
	"stolik/internal/events"
	"stolik/internal/export"
	"stolik/internal/logging"
	"stolik/internal/metrics"
	"stolik/internal/models"
	"stolik/internal/repository"
	"stolik/internal/service"
	"stolik/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := seedIfConfigured(ctx, db, logger); err != nil {
		return err
	}

	sessions := initSessions(ctx, cfg, logger)
	eventBus := events.NewEventBus()

	authService := service.NewAuthService(db, sessions, logger)
	bookingService := service.NewBookingService(db, eventBus, cfg.Booking.PendingTimeout, logger)
	availabilityService := service.NewAvailabilityService(db, cfg.Booking.AvailabilityLookahead, logger)
	layoutService := service.NewLayoutService(db, logger)

	exporter := export.NewExporter(cfg.Exports.Path, logger)
	exportInterval := 24 * time.Hour
	if cfg.Exports.Schedule != "" {
		if d, err := time.ParseDuration(cfg.Exports.Schedule); err == nil {
			exportInterval = d
		} else {
			logger.Warn().Err(err).Str("schedule", cfg.Exports.Schedule).Msg("invalid export schedule, using 24h")
		}
	}
	exportWorker := worker.NewExportWorker(db, exporter, exportInterval, worker.RetryPolicy{}, logger)
	go exportWorker.Start(ctx)

	sweeper := worker.NewSweeper(db, bookingService, cfg.Booking.SweepInterval, cfg.Booking.PendingTimeout, logger)
	go sweeper.Start(ctx)

	backup := database.NewBackupService(cfg.Database.Path, cfg.Backup, logger)
	go backup.Start(ctx)

	startMetrics(ctx, cfg, logger)

	httpServer := api.NewHTTPServer(cfg.API, authService, bookingService, availabilityService, layoutService, exporter, exportWorker, logger)
	return serve(ctx, httpServer, logger)
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, &logger, closer, nil
}

// initSessions wires the session store: Redis fronted by a memory fallback
// when enabled, plain memory otherwise.
func initSessions(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) domain.SessionRepository {
	memory := repository.NewMemorySessionRepository(cfg.Booking.SessionTTL)
	if !cfg.Redis.Enabled {
		logger.Info().Msg("redis disabled, sessions kept in memory")
		return memory
	}

	client := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, client); err != nil {
		logger.Warn().Err(err).Msg("redis unreachable at startup, failover starts degraded")
	} else {
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	}

	primary := repository.NewRedisSessionRepository(client, cfg.Booking.SessionTTL)
	return repository.NewFailoverSessionRepository(primary, memory, logger)
}

type seedFile struct {
	Restaurants []struct {
		Name     string `yaml:"name"`
		Timezone string `yaml:"timezone"`
		Tables   []struct {
			Label string `yaml:"label"`
			Seats int    `yaml:"seats"`
		} `yaml:"tables"`
		Admins []struct {
			Email    string `yaml:"email"`
			Password string `yaml:"password"`
		} `yaml:"admins"`
	} `yaml:"restaurants"`
	Owner struct {
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
	} `yaml:"owner"`
}

// seedIfConfigured loads restaurants, tables and staff accounts from SEED_PATH
// on first start. Existing records are left alone, so re-running with the same
// seed is harmless.
func seedIfConfigured(ctx context.Context, db *database.DB, logger *zerolog.Logger) error {
	seedPath := os.Getenv("SEED_PATH")
	if seedPath == "" {
		return nil
	}

	data, err := os.ReadFile(seedPath)
	if err != nil {
		logger.Error().Err(err).Str("seed_path", seedPath).Msg("read seed file")
		return err
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		logger.Error().Err(err).Str("seed_path", seedPath).Msg("parse seed file")
		return err
	}

	if seed.Owner.Email != "" {
		if err := seedAdmin(ctx, db, "", seed.Owner.Email, seed.Owner.Password, true, logger); err != nil {
			return err
		}
	}

	existing, err := db.ListRestaurants(ctx)
	if err != nil {
		return err
	}
	byName := make(map[string]*models.Restaurant, len(existing))
	for _, r := range existing {
		byName[r.Name] = r
	}

	for _, entry := range seed.Restaurants {
		restaurant := byName[entry.Name]
		if restaurant == nil {
			restaurant = &models.Restaurant{Name: entry.Name, Timezone: entry.Timezone}
			if err := db.CreateRestaurant(ctx, restaurant); err != nil {
				return err
			}

			tables := make([]models.Table, 0, len(entry.Tables))
			for _, t := range entry.Tables {
				tables = append(tables, models.Table{Label: t.Label, Seats: t.Seats})
			}
			if len(tables) > 0 {
				if err := db.ReplaceTables(ctx, restaurant.ID, tables); err != nil {
					return err
				}
			}
			logger.Info().Str("restaurant_id", restaurant.ID).Str("name", entry.Name).Msg("seeded restaurant")
		}

		for _, a := range entry.Admins {
			if err := seedAdmin(ctx, db, restaurant.ID, a.Email, a.Password, false, logger); err != nil {
				return err
			}
		}
	}
	return nil
}

func seedAdmin(ctx context.Context, db *database.DB, restaurantID, email, password string, isOwner bool, logger *zerolog.Logger) error {
	hash, err := service.HashPassword(password)
	if err != nil {
		return err
	}
	admin := &models.Admin{
		RestaurantID: restaurantID,
		Email:        email,
		PasswordHash: hash,
		IsOwner:      isOwner,
	}
	err = db.CreateAdmin(ctx, admin)
	if errors.Is(err, database.ErrAdminExists) {
		return nil
	}
	if err == nil {
		logger.Info().Str("email", email).Bool("is_owner", isOwner).Msg("seeded admin")
	}
	return err
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func serve(ctx context.Context, httpServer *api.HTTPServer, logger *zerolog.Logger) error {
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown error")
	}

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
