package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stolik/internal/database"
	"stolik/internal/domain"
	"stolik/internal/events"
	"stolik/internal/metrics"
	"stolik/internal/models"

	"github.com/rs/zerolog"
)

// ErrNotYetExpired guards the sweeper transition: a pending booking younger
// than the decision timeout must not be auto-declined.
var ErrNotYetExpired = errors.New("booking has not reached the decision timeout")

// BookingService is the lifecycle controller: the only component that mutates
// a booking's status. All guards live here; the store is never written around
// this boundary.
type BookingService struct {
	repo           domain.Repository
	eventBus       domain.EventPublisher
	pendingTimeout time.Duration
	logger         *zerolog.Logger
	now            func() time.Time
}

func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, pendingTimeout time.Duration, logger *zerolog.Logger) *BookingService {
	if pendingTimeout <= 0 {
		pendingTimeout = models.PendingDecisionTimeout
	}
	return &BookingService{
		repo:           repo,
		eventBus:       eventBus,
		pendingTimeout: pendingTimeout,
		logger:         logger,
		now:            time.Now,
	}
}

// SetNow overrides the clock; used by tests.
func (s *BookingService) SetNow(now func() time.Time) {
	s.now = now
}

// guestDateTimeLayout is how the booking form composes a slot: a wall-clock
// string without offset, local to the restaurant.
const guestDateTimeLayout = "2006-01-02T15:04"

// CreateBooking validates a guest request and persists it in the pending
// state. The table's capacity is captured on the record at this moment and is
// not re-validated if the layout changes later.
func (s *BookingService) CreateBooking(ctx context.Context, req domain.CreateBookingRequest) (*models.Booking, error) {
	if strings.TrimSpace(req.GuestName) == "" {
		return nil, models.NewValidationError("guest_name", "is required")
	}
	if strings.TrimSpace(req.GuestPhone) == "" {
		return nil, models.NewValidationError("guest_phone", "is required")
	}
	if req.GuestCount <= 0 {
		return nil, models.NewValidationError("guest_count", "must be positive")
	}

	restaurant, err := s.repo.GetRestaurant(ctx, req.RestaurantID)
	if err != nil {
		return nil, err
	}

	table, err := s.repo.GetTable(ctx, req.RestaurantID, req.TableID)
	if errors.Is(err, database.ErrTableNotFound) {
		return nil, models.NewValidationError("table_id", "unknown table")
	}
	if err != nil {
		return nil, err
	}

	if req.GuestCount > table.Seats {
		return nil, models.NewValidationError("guest_count",
			fmt.Sprintf("party of %d exceeds table capacity of %d", req.GuestCount, table.Seats))
	}

	dateTime, err := s.parseGuestDateTime(req.DateTime, restaurant.Timezone)
	if err != nil {
		return nil, models.NewValidationError("date_time", err.Error())
	}

	booking := &models.Booking{
		RestaurantID: req.RestaurantID,
		TableID:      table.ID,
		TableLabel:   table.Label,
		GuestName:    strings.TrimSpace(req.GuestName),
		GuestPhone:   strings.TrimSpace(req.GuestPhone),
		GuestCount:   req.GuestCount,
		SeatCapacity: table.Seats,
		DateTime:     dateTime,
	}

	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	metrics.IncBookingCreated()
	s.publishEvent(events.EventBookingCreated, booking, "guest")

	s.logger.Info().
		Str("booking_id", booking.ID).
		Str("restaurant_id", booking.RestaurantID).
		Str("table_id", booking.TableID).
		Time("date_time", booking.DateTime).
		Msg("booking created")

	return booking, nil
}

// parseGuestDateTime accepts either an explicit RFC 3339 timestamp or the
// offset-less form the booking widget sends. The latter is interpreted in the
// restaurant's zone and normalized to UTC for storage.
func (s *BookingService) parseGuestDateTime(raw, timezone string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("is required")
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(guestDateTimeLayout, raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid format, expected %s", guestDateTimeLayout)
	}
	return t.UTC(), nil
}

func (s *BookingService) ListBookings(ctx context.Context, restaurantID string) ([]*models.Booking, error) {
	return s.repo.ListBookings(ctx, restaurantID)
}

func (s *BookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	return s.repo.GetBooking(ctx, id)
}

// Confirm moves a pending booking to confirmed.
func (s *BookingService) Confirm(ctx context.Context, bookingID, actor string) (*models.Booking, error) {
	return s.transition(ctx, bookingID, models.StatusConfirmed, "", actor, events.EventBookingConfirmed)
}

// Decline rejects a pending booking. The reason is mandatory and becomes part
// of the permanent record.
func (s *BookingService) Decline(ctx context.Context, bookingID, actor, reason string) (*models.Booking, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, models.NewValidationError("reason", "decline reason is required")
	}
	return s.transition(ctx, bookingID, models.StatusDeclined, strings.TrimSpace(reason), actor, events.EventBookingDeclined)
}

// MarkOccupied records that guests are seated, including walk-ins promoted
// from a confirmed reservation.
func (s *BookingService) MarkOccupied(ctx context.Context, bookingID, actor string) (*models.Booking, error) {
	return s.transition(ctx, bookingID, models.StatusOccupied, "", actor, events.EventBookingOccupied)
}

// Complete closes out a finished reservation.
func (s *BookingService) Complete(ctx context.Context, bookingID, actor string) (*models.Booking, error) {
	return s.transition(ctx, bookingID, models.StatusCompleted, "", actor, events.EventBookingCompleted)
}

// Expire is the sweeper's transition: auto-decline a pending booking that
// waited past the decision timeout. Idempotent — a booking resolved by staff
// in the meantime fails the pending guard and is left untouched.
func (s *BookingService) Expire(ctx context.Context, bookingID string) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.StatusPending {
		return nil, &models.InvalidTransitionError{
			BookingID: booking.ID,
			Current:   booking.Status,
			Requested: models.StatusDeclined,
		}
	}
	if s.now().Sub(booking.CreatedAt) < s.pendingTimeout {
		return nil, ErrNotYetExpired
	}

	return s.transition(ctx, bookingID, models.StatusDeclined, models.AutoDeclineReason, "system", events.EventBookingExpired)
}

// transition applies a guarded status change. The conditional store update
// serializes races on the same record: if another actor moved the booking
// first, the loser gets InvalidTransitionError with the fresh status.
func (s *BookingService) transition(ctx context.Context, bookingID, to, reason, actor, eventType string) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if !models.CanTransition(booking.Status, to) {
		return nil, &models.InvalidTransitionError{
			BookingID: booking.ID,
			Current:   booking.Status,
			Requested: to,
		}
	}

	err = s.repo.UpdateBookingStatusFrom(ctx, bookingID, booking.Status, to, reason)
	if errors.Is(err, database.ErrStatusConflict) {
		current, getErr := s.repo.GetBooking(ctx, bookingID)
		if getErr != nil {
			return nil, getErr
		}
		return nil, &models.InvalidTransitionError{
			BookingID: current.ID,
			Current:   current.Status,
			Requested: to,
		}
	}
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	metrics.IncTransition(to)
	s.publishEvent(eventType, updated, actor)

	s.logger.Info().
		Str("booking_id", updated.ID).
		Str("status", updated.Status).
		Str("actor", actor).
		Msg("booking transitioned")

	return updated, nil
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, changedBy string) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:     booking.ID,
		RestaurantID:  booking.RestaurantID,
		TableID:       booking.TableID,
		TableLabel:    booking.TableLabel,
		GuestName:     booking.GuestName,
		Status:        booking.Status,
		DateTime:      booking.DateTime,
		DeclineReason: booking.DeclineReason,
		ChangedBy:     changedBy,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("booking_id", booking.ID).Msg("publish event error")
	}
}
