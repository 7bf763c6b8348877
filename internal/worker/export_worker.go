package worker

import (
	"context"
	"time"

	"stolik/internal/domain"
	"stolik/internal/export"
	"stolik/internal/models"

	"github.com/rs/zerolog"
)

// ExportWorker writes periodic XLSX snapshots of every restaurant's bookings
// and serves on-demand export requests from a bounded queue.
type ExportWorker struct {
	repo     domain.Repository
	exporter *export.Exporter
	interval time.Duration
	retry    RetryPolicy
	queue    chan string
	logger   *zerolog.Logger
}

func NewExportWorker(repo domain.Repository, exporter *export.Exporter, interval time.Duration, retry RetryPolicy, logger *zerolog.Logger) *ExportWorker {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 3
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = time.Minute
	}

	return &ExportWorker{
		repo:     repo,
		exporter: exporter,
		interval: interval,
		retry:    retry,
		queue:    make(chan string, models.ExportQueueSize),
		logger:   logger,
	}
}

// Enqueue requests an export for one restaurant. Non-blocking: a full queue
// drops the request, the next scheduled pass covers it anyway.
func (w *ExportWorker) Enqueue(restaurantID string) bool {
	select {
	case w.queue <- restaurantID:
		return true
	default:
		w.logger.Warn().Str("restaurant_id", restaurantID).Msg("export queue full, dropping request")
		return false
	}
}

func (w *ExportWorker) Start(ctx context.Context) {
	w.logger.Info().Dur("interval", w.interval).Msg("export worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("export worker stopped")
			return
		case restaurantID := <-w.queue:
			w.exportWithRetry(ctx, restaurantID)
		case <-ticker.C:
			w.exportAll(ctx)
		}
	}
}

func (w *ExportWorker) exportAll(ctx context.Context) {
	restaurants, err := w.repo.ListRestaurants(ctx)
	if err != nil {
		w.logger.Error().Err(err).Msg("export pass: list restaurants failed")
		return
	}
	for _, r := range restaurants {
		w.exportWithRetry(ctx, r.ID)
	}
}

func (w *ExportWorker) exportWithRetry(ctx context.Context, restaurantID string) {
	for attempt := 1; attempt <= w.retry.MaxRetries; attempt++ {
		err := w.exportOne(ctx, restaurantID)
		if err == nil {
			return
		}

		w.logger.Warn().Err(err).
			Str("restaurant_id", restaurantID).
			Int("attempt", attempt).
			Msg("export attempt failed")

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.retry.NextDelay(attempt)):
		}
	}
	w.logger.Error().Str("restaurant_id", restaurantID).Msg("export failed after retries")
}

func (w *ExportWorker) exportOne(ctx context.Context, restaurantID string) error {
	restaurant, err := w.repo.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return err
	}
	bookings, err := w.repo.ListBookings(ctx, restaurantID)
	if err != nil {
		return err
	}
	_, err = w.exporter.WriteWorkbook(restaurant, bookings)
	return err
}
