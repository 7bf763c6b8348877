package domain

import (
	"context"
	"time"

	"stolik/internal/models"
)

// Repository is the persistence contract of the booking core.
type Repository interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListBookings(ctx context.Context, restaurantID string) ([]*models.Booking, error)
	ListPendingBefore(ctx context.Context, cutoff time.Time) ([]*models.Booking, error)
	UpdateBookingStatusFrom(ctx context.Context, id, from, to, declineReason string) error

	CreateRestaurant(ctx context.Context, r *models.Restaurant) error
	GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error)
	ListRestaurants(ctx context.Context) ([]*models.Restaurant, error)

	ReplaceTables(ctx context.Context, restaurantID string, tables []models.Table) error
	GetTable(ctx context.Context, restaurantID, tableID string) (*models.Table, error)
	ListTables(ctx context.Context, restaurantID string) ([]models.Table, error)

	CreateAdmin(ctx context.Context, admin *models.Admin) error
	GetAdminByEmail(ctx context.Context, email, restaurantID string) (*models.Admin, error)
	GetAdminByID(ctx context.Context, id string) (*models.Admin, error)
	ListAdmins(ctx context.Context, restaurantID string) ([]*models.Admin, error)
}

// SessionRepository keeps staff sessions and login rate-limit counters.
type SessionRepository interface {
	GetSession(ctx context.Context, token string) (*models.Session, error)
	SetSession(ctx context.Context, session *models.Session) error
	ClearSession(ctx context.Context, token string) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// BookingLifecycle is the only mutation path for booking status. Everything
// the presentation layer may do to a booking goes through here.
type BookingLifecycle interface {
	CreateBooking(ctx context.Context, req CreateBookingRequest) (*models.Booking, error)
	ListBookings(ctx context.Context, restaurantID string) ([]*models.Booking, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	Confirm(ctx context.Context, bookingID, actor string) (*models.Booking, error)
	Decline(ctx context.Context, bookingID, actor, reason string) (*models.Booking, error)
	MarkOccupied(ctx context.Context, bookingID, actor string) (*models.Booking, error)
	Complete(ctx context.Context, bookingID, actor string) (*models.Booking, error)
	Expire(ctx context.Context, bookingID string) (*models.Booking, error)
}

// CreateBookingRequest carries a guest reservation request. DateTime is the
// wall-clock string as the guest typed it, local to the restaurant.
type CreateBookingRequest struct {
	RestaurantID string
	TableID      string
	GuestName    string
	GuestPhone   string
	GuestCount   int
	DateTime     string
}

// AvailabilityResolver derives per-table status from current bookings.
type AvailabilityResolver interface {
	ResolveAvailability(ctx context.Context, restaurantID string, now time.Time) (map[string]string, error)
}

// StaffAuthorizer is the yes/no gate consumed from the auth subsystem.
type StaffAuthorizer interface {
	IsAuthorizedStaff(ctx context.Context, restaurantID, token string) (*models.Admin, error)
}
