package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureHandler(t *testing.T) {
	logger, h := NewTestLogger(t)

	logger.With(slog.String("component", "loader")).Info("year loaded", slog.Int("year", 2020))
	logger.WithGroup("file").Warn("skipped", slog.String("name", "a.csv"))

	records := h.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "loader", records[0].Attrs["component"])
	assert.Equal(t, int64(2020), records[0].Attrs["year"])
	assert.Equal(t, "a.csv", records[1].Attrs["file.name"])

	r := AssertLogged(t, h, slog.LevelWarn, "skip")
	assert.Equal(t, "skipped", r.Message)

	_, ok := h.Find(slog.LevelError, "year")
	assert.False(t, ok)
	AssertNoErrors(t, h)
}
