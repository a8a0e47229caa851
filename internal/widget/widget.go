// Package widget sends playback broadcasts to home-screen style widgets and
// other passive observers, deduplicating what they do not need twice.
package widget

import (
	"log/slog"
	"time"

	"github.com/llehouerou/wavesd/internal/playlist"
)

// DefaultTitle is shown when nothing is loaded.
const DefaultTitle = "No media"

// positionSteps is the number of position broadcasts per track.
const positionSteps = 50

// State is the widget summary broadcast.
type State struct {
	Title   string
	Artist  string
	Playing bool
}

// Meta is the "meta changed" broadcast for third-party observers.
type Meta struct {
	Track    string
	Artist   string
	Album    string
	Duration time.Duration
	Playing  bool
}

// Broadcaster delivers widget broadcasts.
type Broadcaster interface {
	SendState(s State) error
	SendCover(identifier string) error
	SendPosition(fraction float32) error
	SendMetaChanged(m Meta) error
}

// Notifier decides which broadcasts to send. It is not safe for concurrent
// use; the coordinator owns it.
type Notifier struct {
	b            Broadcaster
	enabled      bool
	defaultTitle string

	lastCover      string
	coverSent      bool
	lastPositionAt time.Time
}

// NewNotifier creates a notifier. An empty defaultTitle uses DefaultTitle.
func NewNotifier(b Broadcaster, enabled bool, defaultTitle string) *Notifier {
	if defaultTitle == "" {
		defaultTitle = DefaultTitle
	}
	return &Notifier{b: b, enabled: enabled, defaultTitle: defaultTitle}
}

// SetEnabled turns widget output on or off. Enabling forgets the last cover
// so the next update resends it.
func (n *Notifier) SetEnabled(enabled bool) {
	if enabled && !n.enabled {
		n.coverSent = false
	}
	n.enabled = enabled
}

// Reset forgets what was sent, so the next update resends everything. Used
// when a widget instance (re)initializes.
func (n *Notifier) Reset() {
	n.coverSent = false
	n.lastPositionAt = time.Time{}
}

// Enabled reports whether widget output is on.
func (n *Notifier) Enabled() bool { return n.enabled }

// Update sends the state summary and, if it changed, the cover.
func (n *Notifier) Update(track *playlist.Track, playing bool) {
	if !n.enabled {
		return
	}

	st := State{Title: n.defaultTitle, Playing: playing}
	cover := ""
	if track != nil {
		st.Title = track.Title
		st.Artist = track.DisplayArtist()
		cover = track.Artwork
	}
	if err := n.b.SendState(st); err != nil {
		slog.Warn("widget state broadcast", "error", err)
	}

	if n.coverSent && cover == n.lastCover {
		return
	}
	if err := n.b.SendCover(cover); err != nil {
		slog.Warn("widget cover broadcast", "error", err)
		return
	}
	n.lastCover = cover
	n.coverSent = true
}

// Position sends a position broadcast, at most positionSteps per track
// length. Nothing is sent without a track, with an unknown length, or while
// video is visible.
func (n *Notifier) Position(track *playlist.Track, length time.Duration, fraction float32, videoVisible bool) {
	if !n.enabled || track == nil || videoVisible || length <= 0 {
		return
	}
	now := time.Now()
	if !n.lastPositionAt.IsZero() && now.Sub(n.lastPositionAt) < length/positionSteps {
		return
	}
	if err := n.b.SendPosition(fraction); err != nil {
		slog.Warn("widget position broadcast", "error", err)
		return
	}
	n.lastPositionAt = now
}

// MetaChanged sends the meta changed broadcast when a track is loaded and
// no video is visible.
func (n *Notifier) MetaChanged(track *playlist.Track, length time.Duration, playing, videoVisible bool) {
	if track == nil || videoVisible {
		return
	}
	m := Meta{
		Track:    track.Title,
		Artist:   track.DisplayArtist(),
		Album:    track.Album,
		Duration: length,
		Playing:  playing,
	}
	if err := n.b.SendMetaChanged(m); err != nil {
		slog.Warn("meta changed broadcast", "error", err)
	}
}
