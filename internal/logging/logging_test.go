package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/wavesd/internal/config"
)

func keepDefault(t *testing.T) {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
}

func TestSetup_WritesStderrAndFile(t *testing.T) {
	keepDefault(t)
	path := filepath.Join(t.TempDir(), "logs", "wavesd.log")
	var stderr bytes.Buffer

	closer := Setup(config.Log{Level: "info", File: path, MaxSizeMB: 1}, &stderr)
	slog.Info("focus changed", "state", "Focused")
	slog.Debug("hidden")
	require.NoError(t, closer.Close())

	assert.Contains(t, stderr.String(), "focus changed")
	assert.NotContains(t, stderr.String(), "hidden")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "state=Focused")
}

func TestSetup_DebugLevel(t *testing.T) {
	keepDefault(t)
	var stderr bytes.Buffer

	closer := Setup(config.Log{Level: "debug"}, &stderr)
	defer closer.Close()
	slog.Debug("mailbox drained", "events", 3)

	assert.Contains(t, stderr.String(), "mailbox drained")
}

func TestSetup_InvalidLevelDefaultsToInfo(t *testing.T) {
	keepDefault(t)
	var stderr bytes.Buffer

	closer := Setup(config.Log{Level: "chatty"}, &stderr)
	defer closer.Close()

	assert.False(t, slog.Default().Enabled(t.Context(), slog.LevelDebug))
	assert.True(t, slog.Default().Enabled(t.Context(), slog.LevelInfo))
}
