// Package session publishes the playback session state to the host (media
// keys, lock screen, desktop media controls).
package session

import (
	"strings"
	"time"

	"github.com/llehouerou/wavesd/internal/playlist"
)

// Phase is the published playback phase.
type Phase int

const (
	PhaseStopped Phase = iota
	PhasePlaying
	PhasePaused
	PhaseConnecting
)

func (p Phase) String() string {
	switch p {
	case PhaseStopped:
		return "Stopped"
	case PhasePlaying:
		return "Playing"
	case PhasePaused:
		return "Paused"
	case PhaseConnecting:
		return "Connecting"
	}
	return "Unknown"
}

// Active reports whether the phase keeps the session open.
func (p Phase) Active() bool {
	return p != PhaseStopped
}

// Action is a set of transport actions the host may offer.
type Action uint32

const (
	ActionPlay Action = 1 << iota
	ActionPause
	ActionStop
	ActionPlayPause
	ActionSkipNext
	ActionSkipPrevious
	ActionFastForward
	ActionRewind
	ActionPlayFromSearch
	ActionPlayFromMediaID
	ActionPlayFromURI
	ActionSkipToQueueItem
)

// BaseActions are offered in every state.
const BaseActions = ActionPlayFromSearch | ActionPlayFromMediaID | ActionPlayFromURI |
	ActionPlayPause | ActionSkipToQueueItem

var actionNames = []struct {
	a    Action
	name string
}{
	{ActionPlay, "play"},
	{ActionPause, "pause"},
	{ActionStop, "stop"},
	{ActionPlayPause, "play-pause"},
	{ActionSkipNext, "next"},
	{ActionSkipPrevious, "previous"},
	{ActionFastForward, "fast-forward"},
	{ActionRewind, "rewind"},
	{ActionPlayFromSearch, "play-from-search"},
	{ActionPlayFromMediaID, "play-from-media-id"},
	{ActionPlayFromURI, "play-from-uri"},
	{ActionSkipToQueueItem, "skip-to-queue-item"},
}

// Has reports whether all actions in o are set.
func (a Action) Has(o Action) bool {
	return a&o == o
}

func (a Action) String() string {
	var names []string
	for _, n := range actionNames {
		if a.Has(n.a) {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, "|")
}

// Snapshot is one published session state.
type Snapshot struct {
	Phase    Phase
	Position time.Duration
	Rate     float32
	Actions  Action
	Repeat   playlist.RepeatMode
	Shuffle  bool
}

// Status is the coordinator's view of playback used to build a Snapshot.
type Status struct {
	Phase       Phase
	Position    time.Duration
	Length      time.Duration
	Rate        float32
	HasMedia    bool
	HasNext     bool
	HasPrevious bool
	Seekable    bool
	Repeat      playlist.RepeatMode
	Shuffle     bool
}

// staleProgress is the progress below which a stopped item is reported as
// paused by the stale-state workaround.
const staleProgress = 0.95

// BuildSnapshot derives the snapshot and its action set from st. When
// staleWorkaround is enabled, a stopped item that did not reach the end is
// reported as Paused and stale is true; its actions stay those of the
// stopped phase.
func BuildSnapshot(st Status, staleWorkaround bool) (snap Snapshot, stale bool) {
	phase := st.Phase
	if staleWorkaround && phase == PhaseStopped && st.HasMedia && st.Length > 0 {
		progress := float64(st.Position) / float64(st.Length)
		if progress < staleProgress {
			phase = PhasePaused
			stale = true
		}
	}

	actions := BaseActions
	switch st.Phase {
	case PhasePlaying:
		actions |= ActionPause | ActionStop
	case PhasePaused:
		actions |= ActionPlay | ActionStop
	case PhaseStopped, PhaseConnecting:
		actions |= ActionPlay
	}

	repeating := st.Repeat != playlist.RepeatOff
	if st.HasNext || repeating {
		actions |= ActionSkipNext
	}
	if st.HasPrevious || repeating || st.Seekable {
		actions |= ActionSkipPrevious
	}
	if st.Seekable {
		actions |= ActionFastForward | ActionRewind
	}

	rate := st.Rate
	if phase != PhasePlaying {
		rate = 0
	}

	return Snapshot{
		Phase:    phase,
		Position: st.Position,
		Rate:     rate,
		Actions:  actions,
		Repeat:   st.Repeat,
		Shuffle:  st.Shuffle,
	}, stale
}

// Metadata describes the current item.
type Metadata struct {
	ID          int64
	Location    string
	Title       string
	Artist      string
	AlbumArtist string
	Album       string
	Genre       string
	TrackNumber int
	Duration    time.Duration
	ArtURL      string
}

// QueueItem is one entry of the published queue.
type QueueItem struct {
	ID         int64
	Title      string
	Subtitle   string
	ArtworkURL string
	Location   string
}

// Host receives session publications.
type Host interface {
	SetPlaybackState(s Snapshot) error
	SetActive(active bool) error
	SetMetadata(m Metadata) error
	SetQueue(items []QueueItem) error
}

// Effects is notified when an audio session opens or closes.
type Effects interface {
	OpenSession(id string) error
	CloseSession(id string) error
}
