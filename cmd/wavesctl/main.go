// Command wavesctl controls a running wavesd over the session bus.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/llehouerou/wavesd/internal/control"
	"github.com/llehouerou/wavesd/internal/playback"
)

const callTimeout = 5 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "wavesctl",
		Short:        "Control a running wavesd",
		SilenceUsage: true,
	}
	root.AddCommand(
		newStatusCmd(),
		newWatchCmd(),
		newSignalCmd(),
		newFocusCmd(),
		newLoadCmd(),
		newAddCmd(),
		newRemoveCmd(),
		newRepeatCmd(),
		newShuffleCmd(),
		newPopupCmd(),
		newLastfmAuthCmd(),
	)
	return root
}

// withClient dials the bus and runs fn with a bounded context.
func withClient(cmd *cobra.Command, fn func(ctx context.Context, c *control.Client) error) error {
	c, err := control.Dial()
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), callTimeout)
	defer cancel()
	return fn(ctx, c)
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show playback and coordinator state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd, func(ctx context.Context, c *control.Client) error {
				info, err := c.Status(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderStatus(info))
				return nil
			})
		},
	}
}

func newSignalCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "signal <name>",
		Short:     "Deliver a broadcast (noisy, play-pause, next, ...)",
		Args:      cobra.ExactArgs(1),
		ValidArgs: playback.SignalNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := playback.ParseSignal(args[0]); !ok {
				return fmt.Errorf("unknown signal %q", args[0])
			}
			return withClient(cmd, func(ctx context.Context, c *control.Client) error {
				return c.Signal(ctx, args[0])
			})
		},
	}
}

func newFocusCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "focus <change>",
		Short:     "Deliver an audio focus change",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"gain", "loss", "loss-transient", "loss-transient-can-duck"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *control.Client) error {
				return c.Focus(ctx, args[0])
			})
		},
	}
}

func newLoadCmd() *cobra.Command {
	var index int
	cmd := &cobra.Command{
		Use:   "load <paths...>",
		Short: "Replace the queue and start playing",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := absPaths(args)
			if err != nil {
				return err
			}
			return withClient(cmd, func(ctx context.Context, c *control.Client) error {
				return c.Load(ctx, paths, index)
			})
		},
	}
	cmd.Flags().IntVar(&index, "index", 0, "queue position to start at")
	return cmd
}

func newAddCmd() *cobra.Command {
	var play bool
	cmd := &cobra.Command{
		Use:   "add <paths...>",
		Short: "Append to the queue",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := absPaths(args)
			if err != nil {
				return err
			}
			return withClient(cmd, func(ctx context.Context, c *control.Client) error {
				return c.Enqueue(ctx, paths, play)
			})
		},
	}
	cmd.Flags().BoolVar(&play, "play", false, "jump to the first added track")
	return cmd
}

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <position>",
		Short: "Remove a queue entry, counting from 1 as status shows it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := strconv.Atoi(args[0])
			if err != nil || pos < 1 {
				return fmt.Errorf("invalid queue position %q", args[0])
			}
			return withClient(cmd, func(ctx context.Context, c *control.Client) error {
				return c.Remove(ctx, pos-1)
			})
		},
	}
}

func newRepeatCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "repeat off|all|one|cycle",
		Short:     "Set or cycle the repeat mode",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"off", "all", "one", "cycle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *control.Client) error {
				mode, err := c.Repeat(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "repeat", mode)
				return nil
			})
		},
	}
}

func newShuffleCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "shuffle on|off|toggle",
		Short:     "Set or toggle shuffle",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off", "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *control.Client) error {
				on, err := c.Shuffle(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "shuffle", flag(on))
				return nil
			})
		},
	}
}

// absPaths resolves args against the working directory, which the daemon
// does not share.
func absPaths(args []string) ([]string, error) {
	paths := make([]string, len(args))
	for i, a := range args {
		p, err := filepath.Abs(a)
		if err != nil {
			return nil, err
		}
		paths[i] = p
	}
	return paths, nil
}

func newPopupCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "popup on|off",
		Short:     "Mark a detached presentation as active or gone",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var detached bool
			switch args[0] {
			case "on":
				detached = true
			case "off":
			default:
				return fmt.Errorf("expected on or off, got %q", args[0])
			}
			return withClient(cmd, func(ctx context.Context, c *control.Client) error {
				return c.SetPresentation(ctx, detached)
			})
		},
	}
}
