package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/llehouerou/wavesd/internal/config"
	"github.com/llehouerou/wavesd/internal/lastfm"
	"github.com/llehouerou/wavesd/internal/state"
)

var errLastfmNotConfigured = errors.New("set [lastfm] api_key and api_secret in the config first")

func newLastfmAuthCmd() *cobra.Command {
	var (
		configPath string
		manual     bool
		noBrowser  bool
		showKey    bool
		unlink     bool
	)
	cmd := &cobra.Command{
		Use:   "lastfm-auth",
		Short: "Link or unlink a Last.fm account for scrobbling",
		Long: `Link a Last.fm account. The daemon picks up the session on its next
start.

By default a local callback server receives the token once you authorize in
the browser. --manual uses the desktop flow instead: authorize, then press
Enter. --show-key prints the session key for the [lastfm] session_key
setting.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			mgr, err := state.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer mgr.Close()

			out := cmd.OutOrStdout()
			if unlink {
				if err := mgr.DeleteLastfmSession(); err != nil {
					return err
				}
				fmt.Fprintln(out, "Last.fm account unlinked")
				return nil
			}

			if !cfg.HasLastfmConfig() {
				return errLastfmNotConfigured
			}
			client := lastfm.New(cfg.Lastfm.APIKey, cfg.Lastfm.APISecret)

			var sess lastfm.Session
			if manual {
				sess, err = authorizeManual(client, cmd.InOrStdin(), out)
			} else {
				open := func(url string) error {
					fmt.Fprintln(out, "Authorize wavesd at:", url)
					if noBrowser {
						return nil
					}
					return lastfm.OpenBrowser(url)
				}
				sess, err = lastfm.Authorize(cmd.Context(), client, open)
			}
			if err != nil {
				return err
			}

			if err := mgr.SaveLastfmSession(sess.Username, sess.Key); err != nil {
				return err
			}
			printLinked(out, sess, showKey)
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "config file loaded after the default locations")
	cmd.Flags().BoolVar(&manual, "manual", false, "use the desktop flow without a callback server")
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "print the authorization URL only")
	cmd.Flags().BoolVar(&showKey, "show-key", false, "print the session key once linked")
	cmd.Flags().BoolVar(&unlink, "unlink", false, "remove the stored session")
	return cmd
}

func authorizeManual(client *lastfm.Client, in io.Reader, out io.Writer) (lastfm.Session, error) {
	token, err := client.Token()
	if err != nil {
		return lastfm.Session{}, err
	}
	fmt.Fprintln(out, "Authorize wavesd at:", client.DesktopAuthURL(token))
	fmt.Fprint(out, "Press Enter once done. ")
	if _, err := bufio.NewReader(in).ReadString('\n'); err != nil && !errors.Is(err, io.EOF) {
		return lastfm.Session{}, err
	}
	return client.Login(token)
}

func printLinked(out io.Writer, sess lastfm.Session, showKey bool) {
	name := sess.Username
	if name == "" {
		name = "(name unavailable)"
	}
	fmt.Fprintln(out, "Linked Last.fm account", name)
	if showKey {
		fmt.Fprintln(out, "session_key =", sess.Key)
	}
}
