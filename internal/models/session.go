package models

import "time"

// Session is an authenticated staff session kept in the session store.
type Session struct {
	Token        string    `json:"token"`
	AdminID      string    `json:"admin_id"`
	RestaurantID string    `json:"restaurant_id"`
	IsOwner      bool      `json:"is_owner"`
	CreatedAt    time.Time `json:"created_at"`
}
