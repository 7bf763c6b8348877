package logging

import (
	"path/filepath"
	"testing"

	"stolik/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var appCfg = config.AppConfig{Name: "stolik-test", Environment: "test", Version: "0.0.0"}

func TestNewDefaults(t *testing.T) {
	logger, closer, err := New(config.LoggingConfig{}, appCfg)
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.Nil(t, closer)
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestNewLevels(t *testing.T) {
	for raw, want := range map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"WARN ":   zerolog.WarnLevel,
		"garbage": zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
	} {
		logger, _, err := New(config.LoggingConfig{Level: raw}, appCfg)
		require.NoError(t, err)
		assert.Equal(t, want, logger.GetLevel(), raw)
	}
}

func TestNewFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	logger, closer, err := New(config.LoggingConfig{Output: "file", FilePath: path}, appCfg)
	require.NoError(t, err)
	require.NotNil(t, closer)
	defer closer.Close()

	logger.Info().Msg("hello")
	assert.FileExists(t, path)
}

func TestNewFileOutputRequiresPath(t *testing.T) {
	_, _, err := New(config.LoggingConfig{Output: "file"}, appCfg)
	assert.Error(t, err)
}

func TestNewUnknownOutput(t *testing.T) {
	_, _, err := New(config.LoggingConfig{Output: "syslog"}, appCfg)
	assert.Error(t, err)
}
