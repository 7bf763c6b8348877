package models

import "time"

type Restaurant struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Timezone  string    `json:"timezone" yaml:"timezone"` // IANA name, guest date_time is local to this zone
	CreatedAt time.Time `json:"created_at" yaml:"-"`
}

type Admin struct {
	ID           string    `json:"id"`
	RestaurantID string    `json:"restaurant_id"` // empty for the platform owner
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsOwner      bool      `json:"is_owner"`
	CreatedAt    time.Time `json:"created_at"`
}

// CanManage reports whether the admin may act on the restaurant's bookings.
func (a *Admin) CanManage(restaurantID string) bool {
	return a.IsOwner || a.RestaurantID == restaurantID
}
