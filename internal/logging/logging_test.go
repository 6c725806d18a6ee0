package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"  DEBUG ", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"", LevelInfo},
		{"verbose", LevelInfo},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseLevel(tc.in), "input %q", tc.in)
	}
}

func TestNewLoggerHonorsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LevelWarn)

	logger.Info("quiet")
	assert.Empty(t, buf.String())

	logger.Warn("loud", "code", "APF0401")
	assert.Contains(t, buf.String(), "loud")
	assert.Contains(t, buf.String(), "APF0401")
}

func TestNewLoggerNilWriterDefaultsToStderr(t *testing.T) {
	logger := NewLogger(nil, LevelInfo)
	assert.NotNil(t, logger)
	assert.True(t, logger.Enabled(t.Context(), slog.LevelInfo))
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	assert.NotNil(t, logger)
	// must not panic and must swallow output
	logger.Error("dropped")
}
