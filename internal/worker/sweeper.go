package worker

import (
	"context"
	"errors"
	"time"

	"stolik/internal/domain"
	"stolik/internal/metrics"
	"stolik/internal/models"
	"stolik/internal/service"

	"github.com/rs/zerolog"
)

// Sweeper auto-declines pending bookings nobody answered within the decision
// timeout. It is the only time-driven writer in the system; everything it does
// goes through the lifecycle controller, so a race with a staff decision on
// the same record resolves to exactly one winner.
type Sweeper struct {
	repo      domain.Repository
	lifecycle domain.BookingLifecycle
	interval  time.Duration
	timeout   time.Duration
	logger    *zerolog.Logger
	now       func() time.Time
}

func NewSweeper(repo domain.Repository, lifecycle domain.BookingLifecycle, interval, timeout time.Duration, logger *zerolog.Logger) *Sweeper {
	if interval <= 0 {
		interval = models.DefaultSweepInterval
	}
	if timeout <= 0 {
		timeout = models.PendingDecisionTimeout
	}
	return &Sweeper{
		repo:      repo,
		lifecycle: lifecycle,
		interval:  interval,
		timeout:   timeout,
		logger:    logger,
		now:       time.Now,
	}
}

// SetNow overrides the clock; used by tests.
func (s *Sweeper) SetNow(now func() time.Time) {
	s.now = now
}

// Start runs the sweep loop until the context is canceled. A failed pass is
// logged and retried on the next tick; the conditional pending guard makes a
// repeated pass over the same record harmless.
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info().
		Dur("interval", s.interval).
		Dur("timeout", s.timeout).
		Msg("expiration sweeper started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("expiration sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				metrics.IncSweeperError()
				s.logger.Error().Err(err).Msg("sweep failed, will retry next tick")
			}
		}
	}
}

// Sweep runs one pass and returns how many bookings it expired. Records are
// processed independently: one failing transition never aborts the rest.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.timeout)

	stale, err := s.repo.ListPendingBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, booking := range stale {
		_, err := s.lifecycle.Expire(ctx, booking.ID)
		if err == nil {
			metrics.IncSweeperExpired()
			expired++
			continue
		}

		var invalid *models.InvalidTransitionError
		if errors.As(err, &invalid) || errors.Is(err, service.ErrNotYetExpired) {
			// Staff got there first; nothing to do.
			s.logger.Debug().Str("booking_id", booking.ID).Err(err).Msg("skipping booking")
			continue
		}

		s.logger.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to expire booking")
	}

	if expired > 0 {
		s.logger.Info().Int("expired", expired).Msg("sweep expired stale bookings")
	}
	return expired, nil
}
