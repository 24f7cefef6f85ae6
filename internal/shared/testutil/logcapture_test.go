package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureHandler(t *testing.T) {
	logger, h := NewTestLogger()
	child := logger.With("component", "capm")

	logger.Info("plain", slog.Int("rows", 3))
	child.Debug("derived", slog.String("reason", "undefined"))

	records := h.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "plain", records[0].Message)
	assert.EqualValues(t, 3, records[0].Attrs["rows"])
	assert.Equal(t, "capm", records[1].Attrs["component"])
	assert.Equal(t, "undefined", records[1].Attrs["reason"])

	r := AssertLogged(t, h, slog.LevelDebug, "derived")
	assert.Equal(t, slog.LevelDebug, r.Level)
	assert.Empty(t, h.Find("missing"))
}

func TestCaptureHandler_Level(t *testing.T) {
	h := NewCaptureHandler(slog.LevelWarn)
	logger := slog.New(h)

	logger.Info("ignored")
	logger.Warn("kept")
	logger.Error("kept too")

	assert.Len(t, h.Records(), 2)
	assert.Len(t, h.Find("kept"), 2)
}
