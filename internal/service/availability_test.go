package service

import (
	"testing"
	"time"

	"stolik/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var resolveNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func slotBooking(tableID, status string, dateTime time.Time) *models.Booking {
	return &models.Booking{
		ID:       tableID + "-" + status + "-" + dateTime.Format("15:04"),
		TableID:  tableID,
		Status:   status,
		DateTime: dateTime,
	}
}

func TestResolveTableEmpty(t *testing.T) {
	status, cause := ResolveTable(nil, "t1", resolveNow, time.Hour)
	assert.Equal(t, models.TableAvailable, status)
	assert.Nil(t, cause)
}

func TestResolveTableOverduePendingWins(t *testing.T) {
	// An unanswered request whose slot already arrived beats an active
	// confirmed booking on the same table.
	bookings := []*models.Booking{
		slotBooking("t1", models.StatusConfirmed, resolveNow.Add(-30*time.Minute)),
		slotBooking("t1", models.StatusPending, resolveNow.Add(-10*time.Minute)),
	}

	status, cause := ResolveTable(bookings, "t1", resolveNow, time.Hour)
	assert.Equal(t, models.TablePending, status)
	require.NotNil(t, cause)
	assert.Equal(t, models.StatusPending, cause.Status)
}

func TestResolveTableActiveSeated(t *testing.T) {
	for _, st := range []string{models.StatusConfirmed, models.StatusOccupied} {
		bookings := []*models.Booking{
			slotBooking("t1", st, resolveNow.Add(-5*time.Minute)),
		}
		status, cause := ResolveTable(bookings, "t1", resolveNow, time.Hour)
		assert.Equal(t, models.TableBooked, status, st)
		require.NotNil(t, cause)
	}
}

func TestResolveTableUpcomingWithinLookahead(t *testing.T) {
	bookings := []*models.Booking{
		slotBooking("t1", models.StatusConfirmed, resolveNow.Add(45*time.Minute)),
	}

	status, cause := ResolveTable(bookings, "t1", resolveNow, time.Hour)
	assert.Equal(t, models.TableBooked, status)
	require.NotNil(t, cause)

	// The exact edge of the window still blocks the table.
	edge := []*models.Booking{
		slotBooking("t1", models.StatusPending, resolveNow.Add(time.Hour)),
	}
	status, _ = ResolveTable(edge, "t1", resolveNow, time.Hour)
	assert.Equal(t, models.TableBooked, status)
}

func TestResolveTableUpcomingBeyondLookahead(t *testing.T) {
	bookings := []*models.Booking{
		slotBooking("t1", models.StatusConfirmed, resolveNow.Add(2*time.Hour)),
	}

	status, cause := ResolveTable(bookings, "t1", resolveNow, time.Hour)
	assert.Equal(t, models.TableAvailable, status)
	assert.Nil(t, cause)
}

func TestResolveTableIgnoresTerminalStatuses(t *testing.T) {
	bookings := []*models.Booking{
		slotBooking("t1", models.StatusDeclined, resolveNow.Add(-10*time.Minute)),
		slotBooking("t1", models.StatusCompleted, resolveNow.Add(-5*time.Minute)),
		slotBooking("t1", models.StatusDeclined, resolveNow.Add(30*time.Minute)),
	}

	status, _ := ResolveTable(bookings, "t1", resolveNow, time.Hour)
	assert.Equal(t, models.TableAvailable, status)
}

func TestResolveTableIgnoresOtherTables(t *testing.T) {
	bookings := []*models.Booking{
		slotBooking("t2", models.StatusOccupied, resolveNow.Add(-5*time.Minute)),
	}

	status, _ := ResolveTable(bookings, "t1", resolveNow, time.Hour)
	assert.Equal(t, models.TableAvailable, status)
}

func TestResolveTableDeterministicCause(t *testing.T) {
	// Two overlapping active bookings: the latest slot decides diagnostics,
	// regardless of input order.
	early := slotBooking("t1", models.StatusConfirmed, resolveNow.Add(-40*time.Minute))
	late := slotBooking("t1", models.StatusOccupied, resolveNow.Add(-10*time.Minute))

	status1, cause1 := ResolveTable([]*models.Booking{early, late}, "t1", resolveNow, time.Hour)
	status2, cause2 := ResolveTable([]*models.Booking{late, early}, "t1", resolveNow, time.Hour)

	assert.Equal(t, status1, status2)
	require.NotNil(t, cause1)
	require.NotNil(t, cause2)
	assert.Equal(t, late.ID, cause1.ID)
	assert.Equal(t, cause1.ID, cause2.ID)
}

func TestResolveTableEarliestUpcomingWins(t *testing.T) {
	soon := slotBooking("t1", models.StatusConfirmed, resolveNow.Add(20*time.Minute))
	later := slotBooking("t1", models.StatusConfirmed, resolveNow.Add(50*time.Minute))

	_, cause := ResolveTable([]*models.Booking{later, soon}, "t1", resolveNow, time.Hour)
	require.NotNil(t, cause)
	assert.Equal(t, soon.ID, cause.ID)
}

func TestResolveAll(t *testing.T) {
	tables := []models.Table{
		{ID: "t1", Label: "T1", Seats: 2},
		{ID: "t2", Label: "T2", Seats: 4},
		{ID: "t3", Label: "T3", Seats: 6},
	}
	bookings := []*models.Booking{
		slotBooking("t1", models.StatusPending, resolveNow.Add(-time.Minute)),
		slotBooking("t2", models.StatusConfirmed, resolveNow.Add(30*time.Minute)),
	}

	statuses := ResolveAll(tables, bookings, resolveNow, time.Hour)
	assert.Equal(t, models.TablePending, statuses["t1"])
	assert.Equal(t, models.TableBooked, statuses["t2"])
	assert.Equal(t, models.TableAvailable, statuses["t3"])
}
