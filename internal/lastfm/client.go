package lastfm

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/shkh/lastfm-go/lastfm"
)

const authEndpoint = "https://www.last.fm/api/auth/"

// ErrNotAuthenticated is returned by the scrobbling calls of an unlinked client.
var ErrNotAuthenticated = errors.New("not authenticated")

// Session is a linked Last.fm account.
type Session struct {
	// Username is empty when the account name could not be fetched.
	Username string
	Key      string
}

// Client talks to the Last.fm API for one account.
type Client struct {
	api    *lastfm.Api
	apiKey string
	linked bool
}

func New(apiKey, apiSecret string) *Client {
	return &Client{api: lastfm.New(apiKey, apiSecret), apiKey: apiKey}
}

// Link signs later calls with an existing session key.
func (c *Client) Link(sessionKey string) {
	c.api.SetSession(sessionKey)
	c.linked = sessionKey != ""
}

func (c *Client) Linked() bool { return c.linked }

// Token starts an authorization with a fresh request token.
func (c *Client) Token() (string, error) {
	token, err := c.api.GetToken()
	if err != nil {
		return "", fmt.Errorf("get token: %w", err)
	}
	return token, nil
}

// DesktopAuthURL is where the user approves token before Login.
func (c *Client) DesktopAuthURL(token string) string {
	return c.authURL(url.Values{"token": {token}})
}

// CallbackAuthURL is the web flow page; Last.fm redirects to callback
// with the token appended once the user approves.
func (c *Client) CallbackAuthURL(callback string) string {
	return c.authURL(url.Values{"cb": {callback}})
}

func (c *Client) authURL(q url.Values) string {
	q.Set("api_key", c.apiKey)
	return authEndpoint + "?" + q.Encode()
}

// Login trades an approved token for a session and links the client to it.
func (c *Client) Login(token string) (Session, error) {
	if err := c.api.LoginWithToken(token); err != nil {
		return Session{}, fmt.Errorf("get session: %w", err)
	}
	sess := Session{Key: c.api.GetSessionKey()}
	c.linked = sess.Key != ""

	// The key is valid without the name.
	if info, err := c.api.User.GetInfo(nil); err == nil {
		sess.Username = info.Name
	}
	return sess, nil
}

func (c *Client) UpdateNowPlaying(track ScrobbleTrack) error {
	if !c.linked {
		return ErrNotAuthenticated
	}
	if _, err := c.api.Track.UpdateNowPlaying(trackParams(track)); err != nil {
		return fmt.Errorf("update now playing: %w", err)
	}
	return nil
}

func (c *Client) Scrobble(track ScrobbleTrack) error {
	if !c.linked {
		return ErrNotAuthenticated
	}
	p := trackParams(track)
	p["timestamp"] = track.Timestamp.Unix()
	if _, err := c.api.Track.Scrobble(p); err != nil {
		return fmt.Errorf("scrobble: %w", err)
	}
	return nil
}

// trackParams leaves out optional fields Last.fm would otherwise store empty.
func trackParams(track ScrobbleTrack) lastfm.P {
	p := lastfm.P{"artist": track.Artist, "track": track.Track}
	if track.Album != "" {
		p["album"] = track.Album
	}
	if track.AlbumArtist != "" && track.AlbumArtist != track.Artist {
		p["albumArtist"] = track.AlbumArtist
	}
	if secs := int(track.Duration.Seconds()); secs > 0 {
		p["duration"] = secs
	}
	return p
}
