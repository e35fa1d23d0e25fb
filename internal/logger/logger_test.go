package logger_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"codeberg.org/mutker/mcwatch/internal/errors"
	"codeberg.org/mutker/mcwatch/internal/logger"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"", zerolog.InfoLevel},
		{"INFO", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
	}
	for _, tt := range tests {
		got, err := logger.ParseLevel(tt.name)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}
}

func TestParseLevelInvalid(t *testing.T) {
	_, err := logger.ParseLevel("loud")
	require.Error(t, err)
	assert.Equal(t, errors.ErrInvalidLogLevel, errors.CodeOf(err))
}

func TestWriterLoggerIncludesErrorCode(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf)

	log.WarnWithCode(errors.New().New(errors.ErrPersistenceCorruption)).Msg("state reset")

	assert.Contains(t, buf.String(), `"error_code":"persistence_corruption"`)
	assert.Contains(t, buf.String(), `"message":"state reset"`)
	assert.Contains(t, buf.String(), `"level":"warn"`)
}

func TestInitWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcwatch.log")

	require.NoError(t, logger.Init(logger.Options{Level: "debug", File: path, IsService: true}))
	logger.Info().Msg("hello")

	assert.FileExists(t, path)
	require.NoError(t, logger.Init(logger.Options{Level: "error"}))
}
