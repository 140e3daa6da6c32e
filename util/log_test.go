package util

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFormatRFC3339Millis(t *testing.T) {
	ts := time.Date(2024, 3, 5, 7, 8, 9, 123456789, time.FixedZone("X", 3600))

	require.Equal(t, "2024-03-05T06:08:09.123Z", FormatRFC3339Millis(ts))
}

func TestNewLoggerLevel(t *testing.T) {
	var buf bytes.Buffer

	log := NewLogger(&buf, LogOptions{})
	log.Debug("hidden")
	log.Info("shown", "key", "value")

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")
	require.Contains(t, buf.String(), "value")

	buf.Reset()

	log = NewLogger(&buf, LogOptions{Verbose: true})
	log.Debug("debugging")

	require.Contains(t, buf.String(), "debugging")
}

func TestNewLoggerDropsEmpty(t *testing.T) {
	var buf bytes.Buffer

	log := NewLogger(&buf, LogOptions{})
	log.Info("message", "empty", "")

	require.NotContains(t, buf.String(), "empty=")
}
