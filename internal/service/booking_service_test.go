package service

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"stolik/internal/database"
	"stolik/internal/domain"
	"stolik/internal/events"
	"stolik/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookingFixture struct {
	db         *database.DB
	service    *BookingService
	restaurant *models.Restaurant
	table      models.Table
}

func setupBookingFixture(t *testing.T, timezone string) *bookingFixture {
	logger := zerolog.New(os.Stdout)
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	restaurant := &models.Restaurant{Name: "Test Restaurant", Timezone: timezone}
	require.NoError(t, db.CreateRestaurant(ctx, restaurant))
	require.NoError(t, db.ReplaceTables(ctx, restaurant.ID, []models.Table{{Label: "T1", Seats: 4}}))

	tables, err := db.ListTables(ctx, restaurant.ID)
	require.NoError(t, err)

	svc := NewBookingService(db, events.NewEventBus(), models.PendingDecisionTimeout, &logger)

	return &bookingFixture{db: db, service: svc, restaurant: restaurant, table: tables[0]}
}

func (f *bookingFixture) request() domain.CreateBookingRequest {
	return domain.CreateBookingRequest{
		RestaurantID: f.restaurant.ID,
		TableID:      f.table.ID,
		GuestName:    "Anna",
		GuestPhone:   "+79990001122",
		GuestCount:   2,
		DateTime:     "2026-09-01T19:00",
	}
}

func TestCreateBooking(t *testing.T) {
	f := setupBookingFixture(t, "UTC")

	booking, err := f.service.CreateBooking(context.Background(), f.request())
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, booking.Status)
	assert.Equal(t, "T1", booking.TableLabel)
	assert.Equal(t, 4, booking.SeatCapacity)
	assert.Equal(t, time.Date(2026, 9, 1, 19, 0, 0, 0, time.UTC), booking.DateTime)
}

func TestCreateBookingLocalTimezone(t *testing.T) {
	f := setupBookingFixture(t, "Europe/Moscow")

	booking, err := f.service.CreateBooking(context.Background(), f.request())
	require.NoError(t, err)

	// 19:00 Moscow time is 16:00 UTC.
	assert.Equal(t, time.Date(2026, 9, 1, 16, 0, 0, 0, time.UTC), booking.DateTime)
}

func TestCreateBookingRFC3339(t *testing.T) {
	f := setupBookingFixture(t, "Europe/Moscow")

	req := f.request()
	req.DateTime = "2026-09-01T19:00:00+03:00"

	booking, err := f.service.CreateBooking(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 1, 16, 0, 0, 0, time.UTC), booking.DateTime)
}

func TestCreateBookingValidation(t *testing.T) {
	f := setupBookingFixture(t, "UTC")
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*domain.CreateBookingRequest)
		field  string
	}{
		{"missing name", func(r *domain.CreateBookingRequest) { r.GuestName = "  " }, "guest_name"},
		{"missing phone", func(r *domain.CreateBookingRequest) { r.GuestPhone = "" }, "guest_phone"},
		{"zero party", func(r *domain.CreateBookingRequest) { r.GuestCount = 0 }, "guest_count"},
		{"oversized party", func(r *domain.CreateBookingRequest) { r.GuestCount = 5 }, "guest_count"},
		{"unknown table", func(r *domain.CreateBookingRequest) { r.TableID = "nope" }, "table_id"},
		{"missing slot", func(r *domain.CreateBookingRequest) { r.DateTime = "" }, "date_time"},
		{"garbage slot", func(r *domain.CreateBookingRequest) { r.DateTime = "tomorrow evening" }, "date_time"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := f.request()
			tc.mutate(&req)

			_, err := f.service.CreateBooking(ctx, req)
			var validation *models.ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, tc.field, validation.Field)
		})
	}
}

func TestCreateBookingUnknownRestaurant(t *testing.T) {
	f := setupBookingFixture(t, "UTC")

	req := f.request()
	req.RestaurantID = "missing"

	_, err := f.service.CreateBooking(context.Background(), req)
	assert.ErrorIs(t, err, database.ErrRestaurantNotFound)
}

func TestConfirmAndComplete(t *testing.T) {
	f := setupBookingFixture(t, "UTC")
	ctx := context.Background()

	booking, err := f.service.CreateBooking(ctx, f.request())
	require.NoError(t, err)

	confirmed, err := f.service.Confirm(ctx, booking.ID, "admin@test.ru")
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, confirmed.Status)

	occupied, err := f.service.MarkOccupied(ctx, booking.ID, "admin@test.ru")
	require.NoError(t, err)
	assert.Equal(t, models.StatusOccupied, occupied.Status)

	completed, err := f.service.Complete(ctx, booking.ID, "admin@test.ru")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, completed.Status)
	assert.True(t, completed.IsTerminal())
}

func TestConfirmTwiceReportsCurrentStatus(t *testing.T) {
	f := setupBookingFixture(t, "UTC")
	ctx := context.Background()

	booking, err := f.service.CreateBooking(ctx, f.request())
	require.NoError(t, err)

	_, err = f.service.Confirm(ctx, booking.ID, "admin@test.ru")
	require.NoError(t, err)

	_, err = f.service.Confirm(ctx, booking.ID, "admin@test.ru")
	var invalid *models.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, models.StatusConfirmed, invalid.Current)
	assert.Equal(t, models.StatusConfirmed, invalid.Requested)
}

func TestDeclineRequiresReason(t *testing.T) {
	f := setupBookingFixture(t, "UTC")
	ctx := context.Background()

	booking, err := f.service.CreateBooking(ctx, f.request())
	require.NoError(t, err)

	_, err = f.service.Decline(ctx, booking.ID, "admin@test.ru", "   ")
	var validation *models.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "reason", validation.Field)

	declined, err := f.service.Decline(ctx, booking.ID, "admin@test.ru", "fully booked tonight")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDeclined, declined.Status)
	assert.Equal(t, "fully booked tonight", declined.DeclineReason)
}

func TestConfirmHasNoReason(t *testing.T) {
	f := setupBookingFixture(t, "UTC")
	ctx := context.Background()

	booking, err := f.service.CreateBooking(ctx, f.request())
	require.NoError(t, err)

	confirmed, err := f.service.Confirm(ctx, booking.ID, "admin@test.ru")
	require.NoError(t, err)
	assert.Empty(t, confirmed.DeclineReason)
}

func TestDeclinedIsTerminal(t *testing.T) {
	f := setupBookingFixture(t, "UTC")
	ctx := context.Background()

	booking, err := f.service.CreateBooking(ctx, f.request())
	require.NoError(t, err)

	_, err = f.service.Decline(ctx, booking.ID, "admin@test.ru", "closed for a private event")
	require.NoError(t, err)

	_, err = f.service.Confirm(ctx, booking.ID, "admin@test.ru")
	var invalid *models.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, models.StatusDeclined, invalid.Current)
}

func TestExpire(t *testing.T) {
	f := setupBookingFixture(t, "UTC")
	ctx := context.Background()

	createdAt := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	f.db.SetNow(func() time.Time { return createdAt })

	booking, err := f.service.CreateBooking(ctx, f.request())
	require.NoError(t, err)

	// Too young: the timeout has not elapsed yet.
	f.service.SetNow(func() time.Time { return createdAt.Add(2*time.Minute + 59*time.Second) })
	_, err = f.service.Expire(ctx, booking.ID)
	assert.ErrorIs(t, err, ErrNotYetExpired)

	// Past the timeout it auto-declines with the fixed reason.
	f.service.SetNow(func() time.Time { return createdAt.Add(3*time.Minute + time.Second) })
	expired, err := f.service.Expire(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDeclined, expired.Status)
	assert.Equal(t, models.AutoDeclineReason, expired.DeclineReason)
}

func TestExpireResolvedBooking(t *testing.T) {
	f := setupBookingFixture(t, "UTC")
	ctx := context.Background()

	booking, err := f.service.CreateBooking(ctx, f.request())
	require.NoError(t, err)

	_, err = f.service.Confirm(ctx, booking.ID, "admin@test.ru")
	require.NoError(t, err)

	f.service.SetNow(func() time.Time { return time.Now().Add(time.Hour) })
	_, err = f.service.Expire(ctx, booking.ID)
	var invalid *models.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, models.StatusConfirmed, invalid.Current)
}

func TestTransitionPublishesEvent(t *testing.T) {
	logger := zerolog.New(os.Stdout)
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	restaurant := &models.Restaurant{Name: "Test", Timezone: "UTC"}
	require.NoError(t, db.CreateRestaurant(ctx, restaurant))
	require.NoError(t, db.ReplaceTables(ctx, restaurant.ID, []models.Table{{Label: "T1", Seats: 4}}))
	tables, err := db.ListTables(ctx, restaurant.ID)
	require.NoError(t, err)

	bus := events.NewEventBus()
	var published []string
	for _, eventType := range []string{events.EventBookingCreated, events.EventBookingConfirmed} {
		et := eventType
		bus.Subscribe(et, func(_ *events.Event) error {
			published = append(published, et)
			return nil
		})
	}

	svc := NewBookingService(db, bus, models.PendingDecisionTimeout, &logger)

	booking, err := svc.CreateBooking(ctx, domain.CreateBookingRequest{
		RestaurantID: restaurant.ID,
		TableID:      tables[0].ID,
		GuestName:    "Anna",
		GuestPhone:   "+7000",
		GuestCount:   2,
		DateTime:     "2026-09-01T19:00",
	})
	require.NoError(t, err)

	_, err = svc.Confirm(ctx, booking.ID, "admin@test.ru")
	require.NoError(t, err)

	assert.Equal(t, []string{events.EventBookingCreated, events.EventBookingConfirmed}, published)
}

func TestGetBookingNotFound(t *testing.T) {
	f := setupBookingFixture(t, "UTC")

	_, err := f.service.GetBooking(context.Background(), "missing")
	assert.True(t, errors.Is(err, database.ErrBookingNotFound))
}
