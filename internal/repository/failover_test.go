package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"stolik/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailoverSwitchesToMemory(t *testing.T) {
	logger := zerolog.New(os.Stdout)
	ctx := context.Background()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	primary := NewRedisSessionRepository(client, time.Hour)
	fallback := NewMemorySessionRepository(time.Hour)
	repo := NewFailoverSessionRepository(primary, fallback, &logger)

	// Healthy primary serves the session
	session := &models.Session{Token: "tok", AdminID: "a1"}
	require.NoError(t, repo.SetSession(ctx, session))

	got, err := repo.GetSession(ctx, "tok")
	require.NoError(t, err)
	require.NotNil(t, got)

	// Primary goes away: writes land in memory, reads keep working
	mr.Close()

	require.NoError(t, repo.SetSession(ctx, &models.Session{Token: "tok2", AdminID: "a2"}))

	got, err = repo.GetSession(ctx, "tok2")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "a2", got.AdminID)
}

func TestFailoverClearRevokesEverywhere(t *testing.T) {
	logger := zerolog.New(os.Stdout)
	ctx := context.Background()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	primary := NewRedisSessionRepository(client, time.Hour)
	fallback := NewMemorySessionRepository(time.Hour)
	repo := NewFailoverSessionRepository(primary, fallback, &logger)

	session := &models.Session{Token: "tok", AdminID: "a1"}
	require.NoError(t, repo.SetSession(ctx, session))
	require.NoError(t, fallback.SetSession(ctx, session))

	require.NoError(t, repo.ClearSession(ctx, "tok"))

	got, err := repo.GetSession(ctx, "tok")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = fallback.GetSession(ctx, "tok")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFailoverRateLimit(t *testing.T) {
	logger := zerolog.New(os.Stdout)
	ctx := context.Background()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	primary := NewRedisSessionRepository(client, time.Hour)
	fallback := NewMemorySessionRepository(time.Hour)
	repo := NewFailoverSessionRepository(primary, fallback, &logger)

	allowed, err := repo.CheckRateLimit(ctx, "key", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	// After the outage the limiter still answers, from memory
	mr.Close()
	allowed, err = repo.CheckRateLimit(ctx, "key", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed, "memory fallback starts with a fresh counter")
}
