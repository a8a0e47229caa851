package mpris

import (
	"strings"
	"testing"
	"time"

	"github.com/quarckster/go-mpris-server/pkg/types"
	"github.com/stretchr/testify/assert"

	"github.com/llehouerou/wavesd/internal/playlist"
	"github.com/llehouerou/wavesd/internal/session"
)

func TestPlaybackStatus(t *testing.T) {
	assert.Equal(t, types.PlaybackStatusPlaying, playbackStatus(session.PhasePlaying))
	assert.Equal(t, types.PlaybackStatusPaused, playbackStatus(session.PhasePaused))
	assert.Equal(t, types.PlaybackStatusPaused, playbackStatus(session.PhaseConnecting))
	assert.Equal(t, types.PlaybackStatusStopped, playbackStatus(session.PhaseStopped))
}

func TestLoopStatusRoundTrip(t *testing.T) {
	for _, m := range []playlist.RepeatMode{playlist.RepeatOff, playlist.RepeatAll, playlist.RepeatOne} {
		got, ok := repeatMode(loopStatus(m))
		assert.True(t, ok)
		assert.Equal(t, m, got)
	}
	_, ok := repeatMode(types.LoopStatus("Bogus"))
	assert.False(t, ok)
}

func TestMetadata(t *testing.T) {
	meta := metadata(session.Metadata{
		Location:    "/music/a.mp3",
		Title:       "Song",
		Artist:      "Artist",
		Album:       "Album",
		TrackNumber: 3,
		Duration:    2 * time.Second,
		ArtURL:      "file:///music/cover.jpg",
	})

	assert.True(t, strings.HasPrefix(string(meta.TrackId), "/org/mpris/MediaPlayer2/Track/"))
	assert.Equal(t, types.Microseconds(2_000_000), meta.Length)
	assert.Equal(t, []string{"Artist"}, meta.Artist)
	assert.Equal(t, 3, meta.TrackNumber)
	assert.Equal(t, "file:///music/cover.jpg", meta.ArtUrl)

	empty := metadata(session.Metadata{})
	assert.Equal(t, "/org/mpris/MediaPlayer2/TrackList/NoTrack", string(empty.TrackId))
}

func TestFormatTrackID_Stable(t *testing.T) {
	assert.Equal(t, formatTrackID("/a.mp3"), formatTrackID("/a.mp3"))
	assert.NotEqual(t, formatTrackID("/a.mp3"), formatTrackID("/b.mp3"))
}

func TestVolumeFraction(t *testing.T) {
	assert.InDelta(t, 0.5, volumeFraction(50, 100), 0.001)
	assert.InDelta(t, 1.0, volumeFraction(150, 100), 0.001)
	assert.Zero(t, volumeFraction(50, 0))
}

func TestSeeked(t *testing.T) {
	prev := session.Snapshot{Phase: session.PhasePlaying, Position: 10 * time.Second, Rate: 1}

	next := prev
	next.Position = 12 * time.Second
	assert.False(t, seeked(prev, next, 2*time.Second), "position advanced with playback")

	next.Position = 40 * time.Second
	assert.True(t, seeked(prev, next, 2*time.Second))

	paused := session.Snapshot{Phase: session.PhasePaused, Position: 10 * time.Second}
	next = paused
	next.Position = 10 * time.Second
	assert.False(t, seeked(paused, next, time.Minute), "paused position does not advance")
}

func TestOptionsChanged(t *testing.T) {
	a := session.Snapshot{Actions: session.BaseActions}
	assert.False(t, optionsChanged(a, a))

	b := a
	b.Shuffle = true
	assert.True(t, optionsChanged(a, b))

	c := a
	c.Actions |= session.ActionSkipNext
	assert.True(t, optionsChanged(a, c))
}
