package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"stolik/internal/config"
	"stolik/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupSnapshot(t *testing.T) {
	logger := zerolog.New(os.Stdout)

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "bookings.db")
	storagePath := filepath.Join(dir, "backups")

	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	restaurant := &models.Restaurant{Name: "Backup Cafe", Timezone: "UTC"}
	require.NoError(t, db.CreateRestaurant(ctx, restaurant))

	svc := NewBackupService(dbPath, config.BackupConfig{
		Enabled:     true,
		StoragePath: storagePath,
	}, &logger)

	require.NoError(t, svc.Snapshot())

	entries, err := os.ReadDir(storagePath)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// The snapshot is a usable database with the data in it.
	restored, err := NewDB(filepath.Join(storagePath, entries[0].Name()), &logger)
	require.NoError(t, err)
	defer restored.Close()

	got, err := restored.GetRestaurant(ctx, restaurant.ID)
	require.NoError(t, err)
	assert.Equal(t, "Backup Cafe", got.Name)
}

func TestBackupScheduleParsing(t *testing.T) {
	logger := zerolog.New(os.Stdout)

	svc := NewBackupService("x.db", config.BackupConfig{Schedule: "6h"}, &logger)
	assert.Equal(t, 6*time.Hour, svc.interval)

	svc = NewBackupService("x.db", config.BackupConfig{Schedule: "not-a-duration"}, &logger)
	assert.Equal(t, 24*time.Hour, svc.interval)

	svc = NewBackupService("x.db", config.BackupConfig{}, &logger)
	assert.Equal(t, 24*time.Hour, svc.interval)
}
