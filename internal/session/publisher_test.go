package session

import (
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/wavesd/internal/playlist"
)

type fakeHost struct {
	states   []Snapshot
	active   []bool
	metadata []Metadata
	queues   [][]QueueItem
}

func (h *fakeHost) SetPlaybackState(s Snapshot) error {
	h.states = append(h.states, s)
	return nil
}

func (h *fakeHost) SetActive(active bool) error {
	h.active = append(h.active, active)
	return nil
}

func (h *fakeHost) SetMetadata(m Metadata) error {
	h.metadata = append(h.metadata, m)
	return nil
}

func (h *fakeHost) SetQueue(items []QueueItem) error {
	h.queues = append(h.queues, items)
	return nil
}

type fakeEffects struct {
	opened []string
	closed []string
}

func (e *fakeEffects) OpenSession(id string) error {
	e.opened = append(e.opened, id)
	return nil
}

func (e *fakeEffects) CloseSession(id string) error {
	e.closed = append(e.closed, id)
	return nil
}

func playing() Status {
	return Status{Phase: PhasePlaying, Rate: 1, HasMedia: true, Length: time.Minute}
}

func TestBuildSnapshot_Actions(t *testing.T) {
	tests := []struct {
		name    string
		st      Status
		want    Action
		notWant Action
	}{
		{
			name:    "playing",
			st:      Status{Phase: PhasePlaying},
			want:    BaseActions | ActionPause | ActionStop,
			notWant: ActionPlay | ActionSkipNext | ActionSkipPrevious,
		},
		{
			name:    "paused",
			st:      Status{Phase: PhasePaused},
			want:    BaseActions | ActionPlay | ActionStop,
			notWant: ActionPause,
		},
		{
			name:    "stopped",
			st:      Status{Phase: PhaseStopped},
			want:    BaseActions | ActionPlay,
			notWant: ActionStop | ActionPause,
		},
		{
			name:    "connecting",
			st:      Status{Phase: PhaseConnecting},
			want:    BaseActions | ActionPlay,
			notWant: ActionStop,
		},
		{
			name: "next and previous exist",
			st:   Status{Phase: PhasePlaying, HasNext: true, HasPrevious: true},
			want: ActionSkipNext | ActionSkipPrevious,
		},
		{
			name: "repeat enables skipping",
			st:   Status{Phase: PhasePlaying, Repeat: playlist.RepeatAll},
			want: ActionSkipNext | ActionSkipPrevious,
		},
		{
			name:    "seekable",
			st:      Status{Phase: PhasePlaying, Seekable: true},
			want:    ActionSkipPrevious | ActionFastForward | ActionRewind,
			notWant: ActionSkipNext,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, _ := BuildSnapshot(tt.st, false)
			assert.True(t, snap.Actions.Has(tt.want), "actions %v missing %v", snap.Actions, tt.want)
			if tt.notWant != 0 {
				assert.Zero(t, snap.Actions&tt.notWant, "actions %v should not contain %v", snap.Actions, tt.notWant)
			}
		})
	}
}

func TestBuildSnapshot_StaleHeuristic(t *testing.T) {
	st := Status{Phase: PhaseStopped, HasMedia: true, Position: 30 * time.Second, Length: time.Minute}

	snap, stale := BuildSnapshot(st, false)
	assert.Equal(t, PhaseStopped, snap.Phase, "workaround off")
	assert.False(t, stale)

	snap, stale = BuildSnapshot(st, true)
	assert.Equal(t, PhasePaused, snap.Phase)
	assert.True(t, stale)
	assert.True(t, snap.Actions.Has(ActionPlay))
	assert.False(t, snap.Actions.Has(ActionStop), "actions come from the stopped phase")

	st.Position = 58 * time.Second
	snap, stale = BuildSnapshot(st, true)
	assert.Equal(t, PhaseStopped, snap.Phase, "near the end counts as finished")
	assert.False(t, stale)

	st.HasMedia = false
	_, stale = BuildSnapshot(st, true)
	assert.False(t, stale, "nothing loaded")
}

func TestBuildSnapshot_RateZeroUnlessPlaying(t *testing.T) {
	snap, _ := BuildSnapshot(Status{Phase: PhasePaused, Rate: 1.5}, false)
	assert.Zero(t, snap.Rate)

	snap, _ = BuildSnapshot(Status{Phase: PhasePlaying, Rate: 1.5}, false)
	assert.InDelta(t, 1.5, snap.Rate, 0.001)
}

func TestPublisher_Throttle(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := &fakeHost{}
		p := NewPublisher(h, nil, Options{})

		require.True(t, p.Publish(playing(), false), "first publication always goes out")

		// A burst of 50 position updates within 200ms
		published := 0
		for range 50 {
			time.Sleep(4 * time.Millisecond)
			if p.Publish(playing(), false) {
				published++
			}
		}
		assert.Zero(t, published)

		// Forced publications bypass the throttle
		assert.True(t, p.Publish(playing(), true))

		time.Sleep(DefaultInterval)
		assert.True(t, p.Publish(playing(), false))
		assert.Len(t, h.states, 3)
	})
}

func TestPublisher_SessionOpenClose(t *testing.T) {
	h := &fakeHost{}
	e := &fakeEffects{}
	p := NewPublisher(h, e, Options{})

	p.Publish(playing(), true)
	p.Publish(Status{Phase: PhasePaused, HasMedia: true}, true)
	require.Len(t, e.opened, 1, "paused keeps the session open")
	assert.True(t, p.Active())
	id := p.SessionID()
	assert.NotEmpty(t, id)

	p.Publish(Status{Phase: PhaseStopped}, true)
	assert.Equal(t, []string{id}, e.closed)
	assert.False(t, p.Active())
	assert.Empty(t, p.SessionID())

	p.Publish(playing(), true)
	require.Len(t, e.opened, 2)
	assert.NotEqual(t, id, e.opened[1], "each activation gets a fresh id")

	assert.Equal(t, []bool{true, false, true}, h.active)
}

func TestPublisher_StaleStateExpires(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := &fakeHost{}
		expired := make(chan uint64, 1)
		p := NewPublisher(h, nil, Options{
			StaleWorkaround: true,
			StaleTimeout:    time.Minute,
			OnStale:         func(gen uint64) { expired <- gen },
		})

		p.Publish(playing(), true)
		p.Publish(Status{Phase: PhaseStopped, HasMedia: true, Position: 10 * time.Second, Length: time.Minute}, true)
		last, _ := p.Last()
		require.Equal(t, PhasePaused, last.Phase)
		require.True(t, p.Active())

		time.Sleep(time.Minute)
		synctest.Wait()

		gen := <-expired
		p.Expire(gen)

		last, _ = p.Last()
		assert.Equal(t, PhaseStopped, last.Phase)
		assert.False(t, p.Active())
		assert.Equal(t, PhaseStopped, h.states[len(h.states)-1].Phase)
	})
}

func TestPublisher_LaterPublicationCancelsStaleTimer(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := &fakeHost{}
		expired := make(chan uint64, 2)
		p := NewPublisher(h, nil, Options{
			StaleWorkaround: true,
			StaleTimeout:    time.Minute,
			OnStale:         func(gen uint64) { expired <- gen },
		})

		p.Publish(Status{Phase: PhaseStopped, HasMedia: true, Length: time.Minute}, true)
		p.Publish(playing(), true)

		time.Sleep(2 * time.Minute)
		synctest.Wait()

		select {
		case <-expired:
			t.Fatal("stale timer fired after a later publication")
		default:
		}
		assert.True(t, p.Active())
	})
}

func TestPublisher_ExpireIgnoresSupersededGeneration(t *testing.T) {
	h := &fakeHost{}
	p := NewPublisher(h, nil, Options{StaleWorkaround: true, StaleTimeout: time.Hour})

	p.Publish(Status{Phase: PhaseStopped, HasMedia: true, Length: time.Minute}, true)
	stale := p.staleGen
	p.Publish(Status{Phase: PhaseStopped, HasMedia: true, Length: time.Minute}, true)

	p.Expire(stale)
	assert.True(t, p.Active(), "old generation ignored")

	p.Close()
	assert.False(t, p.Active())
}

func TestPublisher_ForwardsMetadataAndQueue(t *testing.T) {
	h := &fakeHost{}
	p := NewPublisher(h, nil, Options{})

	p.SetMetadata(Metadata{Title: "Song"})
	p.SetQueue([]QueueItem{{ID: 1, Title: "Song"}})

	require.Len(t, h.metadata, 1)
	assert.Equal(t, "Song", h.metadata[0].Title)
	require.Len(t, h.queues, 1)
}

func TestAction_String(t *testing.T) {
	assert.Equal(t, "play|pause", (ActionPlay | ActionPause).String())
	assert.Empty(t, Action(0).String())
}
