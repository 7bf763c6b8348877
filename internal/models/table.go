package models

// Table is the read-only slice of the layout subsystem the booking core needs:
// an identifier, a display label and a seat capacity. Geometry stays with the
// layout editor.
type Table struct {
	ID           string `json:"id" yaml:"id"`
	RestaurantID string `json:"restaurant_id" yaml:"-"`
	Label        string `json:"label" yaml:"label"`
	Seats        int    `json:"seats" yaml:"seats"`
}

// Table availability as derived by the resolver.
const (
	TableAvailable = "available"
	TablePending   = "pending"
	TableBooked    = "booked"
)
