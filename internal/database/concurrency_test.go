package database

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"stolik/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Concurrent decisions on the same pending booking: the conditional status
// guard must let exactly one transition through.
func TestConcurrentDecisions(t *testing.T) {
	logger := zerolog.New(zerolog.NewConsoleWriter())
	dbPath := filepath.Join(t.TempDir(), "concurrency.db")
	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()

	restaurant := &models.Restaurant{Name: "Race Cafe", Timezone: "UTC"}
	require.NoError(t, db.CreateRestaurant(ctx, restaurant))
	require.NoError(t, db.ReplaceTables(ctx, restaurant.ID, []models.Table{{Label: "T1", Seats: 2}}))
	tables, err := db.ListTables(ctx, restaurant.ID)
	require.NoError(t, err)

	booking := &models.Booking{
		RestaurantID: restaurant.ID,
		TableID:      tables[0].ID,
		TableLabel:   tables[0].Label,
		GuestName:    "Guest",
		GuestPhone:   "+7000",
		GuestCount:   2,
		SeatCapacity: 2,
		DateTime:     time.Now().Add(time.Hour),
	}
	require.NoError(t, db.CreateBooking(ctx, booking))

	const numGoroutines = 10
	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	results := make(chan error, numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		to := models.StatusConfirmed
		if i%2 == 1 {
			to = models.StatusDeclined
		}
		go func(to string) {
			defer wg.Done()
			results <- db.UpdateBookingStatusFrom(ctx, booking.ID, models.StatusPending, to, "")
		}(to)
	}

	wg.Wait()
	close(results)

	successCount := 0
	conflictCount := 0
	for err := range results {
		switch {
		case err == nil:
			successCount++
		case errors.Is(err, ErrStatusConflict):
			conflictCount++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, successCount, "exactly one transition should win")
	assert.Equal(t, numGoroutines-1, conflictCount)

	got, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Contains(t, []string{models.StatusConfirmed, models.StatusDeclined}, got.Status)
	assert.Equal(t, int64(2), got.Version, "only the winner should bump the version")
}
