// Package logging configures the default slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/llehouerou/wavesd/internal/config"
)

// Setup installs a text handler writing to stderr and, when a file is
// configured, to a rotated log file. The returned closer releases the file.
func Setup(cfg config.Log, stderr io.Writer) io.Closer {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}

	writers := []io.Writer{stderr}
	var closer io.Closer = nopCloser{}

	if cfg.File != "" {
		dir := filepath.Dir(cfg.File)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			// Keep logging to stderr only
			slog.Error("failed to create log directory", "path", dir, "error", err)
		} else {
			fileWriter := &lumberjack.Logger{
				Filename:   cfg.File,
				MaxSize:    cfg.MaxSizeMB,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAgeDays,
				Compress:   cfg.Compress,
			}
			writers = append(writers, fileWriter)
			closer = fileWriter
		}
	}

	handler := slog.NewTextHandler(io.MultiWriter(writers...), &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))

	slog.Debug("logging setup completed", "level", level.String(), "file", cfg.File)
	return closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
