package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/llehouerou/wavesd/internal/config"
	"github.com/llehouerou/wavesd/internal/logging"
	"github.com/llehouerou/wavesd/internal/stderr"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "wavesd [paths...]",
		Short: "Playback coordination daemon",
		Long: `wavesd plays local audio files and keeps the desktop in sync with
playback: MPRIS session, notification, widget signals, sleep inhibition
and audio focus.

Paths given on the command line replace the queue and start playing.
Otherwise the last saved queue is restored.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			// Audio libraries write to fd 2 directly; keep that in the log
			var logOut io.Writer = os.Stderr
			capture, err := stderr.Start(func(line string) {
				slog.Debug("native library output", "line", line)
			})
			if err == nil {
				logOut = capture.Original()
			}
			logCloser := logging.Setup(cfg.GetLog(), logOut)
			defer logCloser.Close()
			if capture != nil {
				defer capture.Stop()
			}

			return run(cmd.Context(), cfg, args)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "config file loaded after the default locations")
	return cmd
}
