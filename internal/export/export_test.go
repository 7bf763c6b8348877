package export

import (
	"bytes"
	"os"
	"testing"
	"time"

	"stolik/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleBookings() (*models.Restaurant, []*models.Booking) {
	restaurant := &models.Restaurant{ID: "r1", Name: "Test Restaurant", Timezone: "UTC"}
	slot := time.Date(2026, 9, 1, 19, 0, 0, 0, time.UTC)

	return restaurant, []*models.Booking{
		{
			ID: "b1", RestaurantID: "r1", TableID: "t1", TableLabel: "T1",
			GuestName: "Anna", GuestPhone: "+7000", GuestCount: 2,
			DateTime: slot, Status: models.StatusConfirmed, CreatedAt: slot.Add(-time.Hour),
		},
		{
			ID: "b2", RestaurantID: "r1", TableID: "t2", TableLabel: "T2",
			GuestName: "Boris", GuestPhone: "+7001", GuestCount: 4,
			DateTime: slot.Add(time.Hour), Status: models.StatusDeclined,
			DeclineReason: "fully booked", CreatedAt: slot.Add(-30 * time.Minute),
		},
	}
}

func TestWorkbook(t *testing.T) {
	logger := zerolog.New(os.Stdout)
	exporter := NewExporter(t.TempDir(), &logger)

	restaurant, bookings := sampleBookings()

	data, err := exporter.Workbook(restaurant, bookings)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Contains(t, f.GetSheetList(), "Bookings")

	title, err := f.GetCellValue("Bookings", "A1")
	require.NoError(t, err)
	assert.Contains(t, title, "Test Restaurant")

	header, err := f.GetCellValue("Bookings", "D2")
	require.NoError(t, err)
	assert.Equal(t, "Guest", header)

	guest, err := f.GetCellValue("Bookings", "D3")
	require.NoError(t, err)
	assert.Equal(t, "Anna", guest)

	reason, err := f.GetCellValue("Bookings", "H4")
	require.NoError(t, err)
	assert.Equal(t, "fully booked", reason)
}

func TestWriteWorkbook(t *testing.T) {
	logger := zerolog.New(os.Stdout)
	dir := t.TempDir()
	exporter := NewExporter(dir, &logger)

	restaurant, bookings := sampleBookings()

	path, err := exporter.WriteWorkbook(restaurant, bookings)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
	assert.Contains(t, path, "bookings_r1_")
}

func TestWorkbookEmpty(t *testing.T) {
	logger := zerolog.New(os.Stdout)
	exporter := NewExporter(t.TempDir(), &logger)

	restaurant := &models.Restaurant{ID: "r1", Name: "Empty", Timezone: "UTC"}
	data, err := exporter.Workbook(restaurant, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, data, "empty history still renders title and headers")
}
