package service

import (
	"context"
	"time"

	"stolik/internal/domain"
	"stolik/internal/models"

	"github.com/rs/zerolog"
)

// ResolveTable derives one table's status from the bookings touching it at
// the given instant. Pure: same inputs, same answer. Never cached — now
// advances continuously, so every query re-derives.
//
// Order of precedence:
//  1. an overdue unanswered request (pending, slot already reached) marks the
//     table pending;
//  2. a confirmed or occupied booking whose slot has started marks it booked;
//  3. otherwise the earliest upcoming booking within the lookahead window
//     pre-emptively marks it booked;
//  4. else the table is available.
//
// The returned booking is the one that decided the status: among overlapping
// candidates in steps 1–2 the latest slot wins, which keeps diagnostics
// deterministic without changing the status itself.
func ResolveTable(bookings []*models.Booking, tableID string, now time.Time, lookahead time.Duration) (string, *models.Booking) {
	var overduePending *models.Booking
	var activeSeated *models.Booking
	var upcoming *models.Booking

	for _, b := range bookings {
		if b.TableID != tableID {
			continue
		}

		switch b.Status {
		case models.StatusPending, models.StatusConfirmed, models.StatusOccupied:
		default:
			continue
		}

		if b.DateTime.After(now) {
			if upcoming == nil || b.DateTime.Before(upcoming.DateTime) {
				upcoming = b
			}
			continue
		}

		if b.Status == models.StatusPending {
			if overduePending == nil || b.DateTime.After(overduePending.DateTime) {
				overduePending = b
			}
		} else {
			if activeSeated == nil || b.DateTime.After(activeSeated.DateTime) {
				activeSeated = b
			}
		}
	}

	if overduePending != nil {
		return models.TablePending, overduePending
	}
	if activeSeated != nil {
		return models.TableBooked, activeSeated
	}
	if upcoming != nil && upcoming.DateTime.Sub(now) <= lookahead {
		return models.TableBooked, upcoming
	}
	return models.TableAvailable, nil
}

// ResolveAll maps every table of a restaurant to its derived status.
func ResolveAll(tables []models.Table, bookings []*models.Booking, now time.Time, lookahead time.Duration) map[string]string {
	statuses := make(map[string]string, len(tables))
	for _, table := range tables {
		status, _ := ResolveTable(bookings, table.ID, now, lookahead)
		statuses[table.ID] = status
	}
	return statuses
}

// AvailabilityService feeds the resolver from the booking store.
type AvailabilityService struct {
	repo      domain.Repository
	lookahead time.Duration
	logger    *zerolog.Logger
}

func NewAvailabilityService(repo domain.Repository, lookahead time.Duration, logger *zerolog.Logger) *AvailabilityService {
	if lookahead <= 0 {
		lookahead = models.AvailabilityLookahead
	}
	return &AvailabilityService{repo: repo, lookahead: lookahead, logger: logger}
}

// ResolveAvailability reads one snapshot of the restaurant's tables and
// bookings and derives the status map for the given instant.
func (s *AvailabilityService) ResolveAvailability(ctx context.Context, restaurantID string, now time.Time) (map[string]string, error) {
	tables, err := s.repo.ListTables(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	bookings, err := s.repo.ListBookings(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	statuses := make(map[string]string, len(tables))
	for _, table := range tables {
		status, cause := ResolveTable(bookings, table.ID, now, s.lookahead)
		statuses[table.ID] = status
		if cause != nil {
			s.logger.Debug().
				Str("table_id", table.ID).
				Str("status", status).
				Str("booking_id", cause.ID).
				Time("date_time", cause.DateTime).
				Msg("table status resolved")
		}
	}
	return statuses, nil
}
