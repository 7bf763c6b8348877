package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"stolik/internal/models"

	"github.com/google/uuid"
)

const bookingColumns = `id, restaurant_id, table_id, table_label, guest_name, guest_phone,
                 guest_count, seat_capacity, date_time, status, decline_reason,
                 created_at, updated_at, version`

// CreateBooking persists a new request. The store owns identity and creation
// timestamps: a fresh id is assigned, status starts as pending.
func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	now := db.now().UTC()
	booking.Status = models.StatusPending
	booking.CreatedAt = now
	booking.UpdatedAt = now
	booking.Version = 1

	query := `INSERT INTO bookings (
				id, restaurant_id, table_id, table_label, guest_name, guest_phone,
				guest_count, seat_capacity, date_time, status, decline_reason,
				created_at, updated_at, version
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.db.ExecContext(ctx, query,
		booking.ID,
		booking.RestaurantID,
		booking.TableID,
		booking.TableLabel,
		booking.GuestName,
		booking.GuestPhone,
		booking.GuestCount,
		booking.SeatCapacity,
		booking.DateTime.UTC(),
		booking.Status,
		booking.DeclineReason,
		booking.CreatedAt,
		booking.UpdatedAt,
		booking.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	booking, err := scanBooking(db.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

// ListBookings returns every booking for a restaurant, newest slot first.
func (db *DB) ListBookings(ctx context.Context, restaurantID string) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
              FROM bookings WHERE restaurant_id = ?
              ORDER BY date_time DESC, created_at DESC`
	rows, err := db.db.QueryContext(ctx, query, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

// ListPendingBefore returns pending bookings across all restaurants created at
// or before the cutoff. Used by the expiration sweeper.
func (db *DB) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
              FROM bookings WHERE status = ? AND created_at <= ?
              ORDER BY created_at ASC`
	rows, err := db.db.QueryContext(ctx, query, models.StatusPending, cutoff.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list pending bookings: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

// UpdateBookingStatusFrom applies a status transition only if the record is
// still in the expected state. The conditional WHERE serializes concurrent
// transitions on the same record: exactly one caller sees a matched row.
func (db *DB) UpdateBookingStatusFrom(ctx context.Context, id, from, to, declineReason string) error {
	query := `UPDATE bookings
              SET status = ?, decline_reason = ?, version = version + 1, updated_at = ?
              WHERE id = ? AND status = ?`
	result, err := db.db.ExecContext(ctx, query, to, declineReason, db.now().UTC(), id, from)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrStatusConflict
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	b := &models.Booking{}
	err := row.Scan(
		&b.ID, &b.RestaurantID, &b.TableID, &b.TableLabel, &b.GuestName, &b.GuestPhone,
		&b.GuestCount, &b.SeatCapacity, &b.DateTime, &b.Status, &b.DeclineReason,
		&b.CreatedAt, &b.UpdatedAt, &b.Version,
	)
	if err != nil {
		return nil, err
	}
	b.DateTime = b.DateTime.UTC()
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	return b, nil
}

func collectBookings(rows *sql.Rows) ([]*models.Booking, error) {
	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}
