package lastfm

import (
	"errors"
	"testing"
	"time"

	"github.com/shkh/lastfm-go/lastfm"
)

func TestCallbackAuthURL(t *testing.T) {
	c := New("key", "secret")
	got := c.CallbackAuthURL("http://127.0.0.1:9847/callback")
	want := "https://www.last.fm/api/auth/?api_key=key&cb=http%3A%2F%2F127.0.0.1%3A9847%2Fcallback"
	if got != want {
		t.Errorf("CallbackAuthURL() = %q, want %q", got, want)
	}
}

func TestDesktopAuthURL(t *testing.T) {
	c := New("key", "secret")
	want := "https://www.last.fm/api/auth/?api_key=key&token=tok"
	if got := c.DesktopAuthURL("tok"); got != want {
		t.Errorf("DesktopAuthURL() = %q, want %q", got, want)
	}
}

func TestUnlinkedClientRefusesToScrobble(t *testing.T) {
	c := New("key", "secret")
	if c.Linked() {
		t.Fatal("new client reports linked")
	}
	track := ScrobbleTrack{Artist: "A", Track: "T", Timestamp: time.Unix(1700000000, 0)}
	if err := c.UpdateNowPlaying(track); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("UpdateNowPlaying() error = %v, want ErrNotAuthenticated", err)
	}
	if err := c.Scrobble(track); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("Scrobble() error = %v, want ErrNotAuthenticated", err)
	}

	c.Link("sk")
	if !c.Linked() {
		t.Error("Link(sk) did not link the client")
	}
	c.Link("")
	if c.Linked() {
		t.Error("Link(\"\") left the client linked")
	}
}

func TestTrackParams(t *testing.T) {
	tests := []struct {
		name  string
		track ScrobbleTrack
		want  lastfm.P
	}{
		{
			name:  "required only",
			track: ScrobbleTrack{Artist: "A", Track: "T"},
			want:  lastfm.P{"artist": "A", "track": "T"},
		},
		{
			name:  "album artist same as artist",
			track: ScrobbleTrack{Artist: "A", Track: "T", Album: "L", AlbumArtist: "A", Duration: 3 * time.Minute},
			want:  lastfm.P{"artist": "A", "track": "T", "album": "L", "duration": 180},
		},
		{
			name:  "various artists",
			track: ScrobbleTrack{Artist: "A", Track: "T", AlbumArtist: "VA", Duration: 500 * time.Millisecond},
			want:  lastfm.P{"artist": "A", "track": "T", "albumArtist": "VA"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := trackParams(tt.track)
			if len(got) != len(tt.want) {
				t.Fatalf("trackParams() = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("trackParams()[%q] = %v, want %v", k, got[k], v)
				}
			}
		})
	}
}
