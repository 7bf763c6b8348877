package database

import "errors"

var (
	ErrBookingNotFound    = errors.New("booking not found")
	ErrTableNotFound      = errors.New("table not found")
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrAdminNotFound      = errors.New("admin not found")
	ErrAdminExists        = errors.New("admin already exists for this restaurant")

	// ErrStatusConflict means a conditional status update matched no row
	// because the booking's status changed under us.
	ErrStatusConflict = errors.New("booking status changed concurrently")
)
