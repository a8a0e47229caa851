package mpris

import (
	"fmt"
	"hash/fnv"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/llehouerou/wavesd/internal/playlist"
	"github.com/llehouerou/wavesd/internal/session"
)

// Controller executes commands received from MPRIS clients.
type Controller interface {
	Play() error
	Pause() error
	TogglePlayPause() error
	Stop() error
	Next() error
	Previous() error
	Seek(offset time.Duration) error
	SeekTo(position time.Duration) error
	SetRate(rate float32) error
	SetVolume(volume int) error
	SetRepeat(mode playlist.RepeatMode)
	SetShuffle(on bool)
	Position() time.Duration
	Volume() int
}

// seekTolerance is the drift between the extrapolated and reported position
// that is announced to clients as a seek.
const seekTolerance = time.Second

func playbackStatus(p session.Phase) types.PlaybackStatus {
	switch p {
	case session.PhasePlaying:
		return types.PlaybackStatusPlaying
	case session.PhasePaused, session.PhaseConnecting:
		return types.PlaybackStatusPaused
	case session.PhaseStopped:
		return types.PlaybackStatusStopped
	}
	return types.PlaybackStatusStopped
}

func loopStatus(m playlist.RepeatMode) types.LoopStatus {
	switch m {
	case playlist.RepeatOne:
		return types.LoopStatusTrack
	case playlist.RepeatAll:
		return types.LoopStatusPlaylist
	case playlist.RepeatOff:
		return types.LoopStatusNone
	}
	return types.LoopStatusNone
}

func repeatMode(s types.LoopStatus) (playlist.RepeatMode, bool) {
	switch s {
	case types.LoopStatusNone:
		return playlist.RepeatOff, true
	case types.LoopStatusTrack:
		return playlist.RepeatOne, true
	case types.LoopStatusPlaylist:
		return playlist.RepeatAll, true
	}
	return playlist.RepeatOff, false
}

func metadata(m session.Metadata) types.Metadata {
	if m.Location == "" {
		return types.Metadata{TrackId: dbus.ObjectPath("/org/mpris/MediaPlayer2/TrackList/NoTrack")}
	}
	meta := types.Metadata{
		TrackId:     dbus.ObjectPath(formatTrackID(m.Location)),
		Length:      types.Microseconds(m.Duration.Microseconds()),
		Title:       m.Title,
		Album:       m.Album,
		TrackNumber: m.TrackNumber,
		ArtUrl:      m.ArtURL,
	}
	if m.Artist != "" {
		meta.Artist = []string{m.Artist}
	}
	return meta
}

// volumeFraction maps an engine volume onto the MPRIS 0..1 scale.
func volumeFraction(v, maxVolume int) float64 {
	if maxVolume <= 0 {
		return 0
	}
	f := float64(v) / float64(maxVolume)
	return min(max(f, 0), 1)
}

// seeked reports whether next is a jump relative to where prev would be
// after elapsed at prev's rate.
func seeked(prev, next session.Snapshot, elapsed time.Duration) bool {
	expected := prev.Position
	if prev.Phase == session.PhasePlaying {
		expected += time.Duration(float64(elapsed) * float64(prev.Rate))
	}
	drift := next.Position - expected
	return drift > seekTolerance || drift < -seekTolerance
}

func optionsChanged(prev, next session.Snapshot) bool {
	return prev.Actions != next.Actions || prev.Repeat != next.Repeat ||
		prev.Shuffle != next.Shuffle || prev.Rate != next.Rate
}

func formatTrackID(path string) string {
	h := fnv.New64a()
	h.Write([]byte(path))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
