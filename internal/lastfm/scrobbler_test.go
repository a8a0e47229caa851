package lastfm

import (
	"errors"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/wavesd/internal/engine"
	"github.com/llehouerou/wavesd/internal/playlist"
	"github.com/llehouerou/wavesd/internal/state"
)

type fakeAPI struct {
	mu         sync.Mutex
	nowPlaying []ScrobbleTrack
	scrobbles  []ScrobbleTrack
	err        error
}

func (a *fakeAPI) UpdateNowPlaying(t ScrobbleTrack) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nowPlaying = append(a.nowPlaying, t)
	return nil
}

func (a *fakeAPI) Scrobble(t ScrobbleTrack) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.scrobbles = append(a.scrobbles, t)
	return nil
}

func (a *fakeAPI) setErr(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.err = err
}

func (a *fakeAPI) counts() (nowPlaying, scrobbles int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.nowPlaying), len(a.scrobbles)
}

type fakePlayer struct {
	mu       sync.Mutex
	track    *playlist.Track
	position time.Duration
}

func (p *fakePlayer) CurrentTrack() *playlist.Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.track == nil {
		return nil
	}
	t := *p.track
	return &t
}

func (p *fakePlayer) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position
}

func (p *fakePlayer) set(t *playlist.Track, pos time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.track = t
	p.position = pos
}

type fakePending struct {
	mu      sync.Mutex
	nextID  int64
	pending map[int64]state.PendingScrobble
}

func newFakePending() *fakePending {
	return &fakePending{pending: make(map[int64]state.PendingScrobble)}
}

func (f *fakePending) AddPendingScrobble(s state.PendingScrobble) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	s.ID = f.nextID
	f.pending[s.ID] = s
	return nil
}

func (f *fakePending) GetPendingScrobbles() ([]state.PendingScrobble, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]state.PendingScrobble, 0, len(f.pending))
	for _, p := range f.pending {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePending) DeletePendingScrobble(id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.pending, id)
	return nil
}

func (f *fakePending) UpdatePendingScrobbleAttempt(id int64, errMsg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.pending[id]
	p.Attempts++
	p.LastError = errMsg
	f.pending[id] = p
	return nil
}

func (f *fakePending) DeleteOldPendingScrobbles(time.Duration) error { return nil }

func (f *fakePending) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

func song(path string, d time.Duration) *playlist.Track {
	return &playlist.Track{Path: path, Title: "Song", Artist: "Artist", Album: "Album", Duration: d}
}

func TestScrobbler_NowPlayingOncePerTrack(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		api, player := &fakeAPI{}, &fakePlayer{}
		s := NewScrobbler(api, player, nil)
		defer s.Close()

		player.set(song("/a.mp3", 3*time.Minute), 0)
		s.OnPlayerEvent(engine.Event{Type: engine.EventMediaChanged})
		s.OnPlayerEvent(engine.Event{Type: engine.EventPlaying})
		s.OnPlayerEvent(engine.Event{Type: engine.EventPaused})
		s.OnPlayerEvent(engine.Event{Type: engine.EventPlaying})
		synctest.Wait()

		np, sc := api.counts()
		assert.Equal(t, 1, np)
		assert.Zero(t, sc)
	})
}

func TestScrobbler_ScrobblesAtHalfTrack(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		api, player := &fakeAPI{}, &fakePlayer{}
		s := NewScrobbler(api, player, nil)
		defer s.Close()

		player.set(song("/a.mp3", 3*time.Minute), 0)
		s.OnPlayerEvent(engine.Event{Type: engine.EventMediaChanged})
		s.OnPlayerEvent(engine.Event{Type: engine.EventPlaying})

		player.set(song("/a.mp3", 3*time.Minute), 89*time.Second)
		s.OnPlayerEvent(engine.Event{Type: engine.EventPositionChanged})
		synctest.Wait()
		_, sc := api.counts()
		assert.Zero(t, sc)

		player.set(song("/a.mp3", 3*time.Minute), 90*time.Second)
		s.OnPlayerEvent(engine.Event{Type: engine.EventPositionChanged})
		s.OnPlayerEvent(engine.Event{Type: engine.EventPositionChanged})
		synctest.Wait()

		_, sc = api.counts()
		assert.Equal(t, 1, sc)
		api.mu.Lock()
		assert.Equal(t, "Artist", api.scrobbles[0].Artist)
		assert.Equal(t, time.Now().Unix(), api.scrobbles[0].Timestamp.Unix())
		api.mu.Unlock()
	})
}

func TestScrobbler_LongTrackScrobblesAtFourMinutes(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		api, player := &fakeAPI{}, &fakePlayer{}
		s := NewScrobbler(api, player, nil)
		defer s.Close()

		player.set(song("/long.mp3", 20*time.Minute), 0)
		s.OnPlayerEvent(engine.Event{Type: engine.EventMediaChanged})

		player.set(song("/long.mp3", 20*time.Minute), 4*time.Minute)
		s.OnPlayerEvent(engine.Event{Type: engine.EventPositionChanged})
		synctest.Wait()

		_, sc := api.counts()
		assert.Equal(t, 1, sc)
	})
}

func TestScrobbler_ShortTrackNeverScrobbled(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		api, player := &fakeAPI{}, &fakePlayer{}
		s := NewScrobbler(api, player, nil)
		defer s.Close()

		player.set(song("/jingle.mp3", 20*time.Second), 0)
		s.OnPlayerEvent(engine.Event{Type: engine.EventMediaChanged})
		player.set(song("/jingle.mp3", 20*time.Second), 19*time.Second)
		s.OnPlayerEvent(engine.Event{Type: engine.EventPositionChanged})
		synctest.Wait()

		_, sc := api.counts()
		assert.Zero(t, sc)
	})
}

func TestScrobbler_UntaggedTrackSkipped(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		api, player := &fakeAPI{}, &fakePlayer{}
		s := NewScrobbler(api, player, nil)
		defer s.Close()

		player.set(&playlist.Track{Path: "/x.mp3", Title: "x", Duration: time.Minute}, time.Minute)
		s.OnPlayerEvent(engine.Event{Type: engine.EventMediaChanged})
		s.OnPlayerEvent(engine.Event{Type: engine.EventPlaying})
		synctest.Wait()

		np, sc := api.counts()
		assert.Zero(t, np)
		assert.Zero(t, sc)
	})
}

func TestScrobbler_FailedScrobbleQueuedAndRetried(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		api, player, store := &fakeAPI{}, &fakePlayer{}, newFakePending()
		api.setErr(errors.New("service offline"))
		s := NewScrobbler(api, player, store)
		defer s.Close()

		player.set(song("/a.mp3", time.Minute), 0)
		s.OnPlayerEvent(engine.Event{Type: engine.EventMediaChanged})
		player.set(song("/a.mp3", time.Minute), 40*time.Second)
		s.OnPlayerEvent(engine.Event{Type: engine.EventPositionChanged})
		synctest.Wait()
		require.Equal(t, 1, store.len())

		// Still failing at the next retry: attempt recorded
		time.Sleep(retryInterval)
		synctest.Wait()
		pending, _ := store.GetPendingScrobbles()
		require.Len(t, pending, 1)
		assert.Equal(t, 1, pending[0].Attempts)

		api.setErr(nil)
		time.Sleep(retryInterval)
		synctest.Wait()
		assert.Zero(t, store.len())
		_, sc := api.counts()
		assert.Equal(t, 1, sc)
	})
}

func TestScrobbler_RetryOnStart(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		api, store := &fakeAPI{}, newFakePending()
		require.NoError(t, store.AddPendingScrobble(state.PendingScrobble{
			Artist: "A", Track: "T", Timestamp: time.Now().Add(-time.Hour),
		}))
		require.NoError(t, store.AddPendingScrobble(state.PendingScrobble{
			Artist: "B", Track: "U", Attempts: maxRetryAttempts,
		}))

		s := NewScrobbler(api, &fakePlayer{}, store)
		synctest.Wait()
		s.Close()

		_, sc := api.counts()
		assert.Equal(t, 1, sc)
		assert.Equal(t, 1, store.len(), "exhausted entries are left alone")
	})
}

func TestScrobbler_CloseIsIdempotent(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		s := NewScrobbler(&fakeAPI{}, &fakePlayer{}, nil)
		s.Close()
		s.Close()
		s.OnPlayerEvent(engine.Event{Type: engine.EventPlaying})
	})
}
