package models

import "time"

type Booking struct {
	ID            string    `json:"id"`
	RestaurantID  string    `json:"restaurant_id"`
	TableID       string    `json:"table_id"`
	TableLabel    string    `json:"table_label"`
	GuestName     string    `json:"guest_name"`
	GuestPhone    string    `json:"guest_phone"`
	GuestCount    int       `json:"guest_count"`
	SeatCapacity  int       `json:"seat_capacity"` // table capacity captured at creation time
	DateTime      time.Time `json:"date_time"`     // reserved slot, UTC
	Status        string    `json:"status"`        // pending, confirmed, declined, occupied, completed
	DeclineReason string    `json:"decline_reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Version       int64     `json:"version"`
}

// IsTerminal reports whether no further transition is possible.
func (b *Booking) IsTerminal() bool {
	return b.Status == StatusDeclined || b.Status == StatusCompleted
}

// allowedTransitions is the booking state machine. Absent keys are terminal.
var allowedTransitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusDeclined},
	StatusConfirmed: {StatusOccupied, StatusCompleted},
	StatusOccupied:  {StatusCompleted},
}

// CanTransition reports whether from -> to is a legal status change.
func CanTransition(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
