package lastfm

import (
	"log/slog"
	"sync"
	"time"

	"github.com/llehouerou/wavesd/internal/engine"
	"github.com/llehouerou/wavesd/internal/errmsg"
	"github.com/llehouerou/wavesd/internal/mailbox"
	"github.com/llehouerou/wavesd/internal/playlist"
	"github.com/llehouerou/wavesd/internal/state"
)

const (
	// Last.fm rules: scrobble after 50% of duration or 4 minutes, whichever
	// comes first. Track must be at least 30 seconds long.
	minScrobbleLength = 30 * time.Second
	maxScrobbleWait   = 4 * time.Minute

	retryInterval    = 5 * time.Minute
	maxRetryAttempts = 10
	// Last.fm rejects scrobbles older than two weeks.
	pendingMaxAge = 14 * 24 * time.Hour
)

// API is the part of Client the scrobbler uses.
type API interface {
	UpdateNowPlaying(track ScrobbleTrack) error
	Scrobble(track ScrobbleTrack) error
}

// Player reports what is playing.
type Player interface {
	CurrentTrack() *playlist.Track
	Position() time.Duration
}

// PendingStore keeps scrobbles that failed for a later retry.
type PendingStore interface {
	AddPendingScrobble(s state.PendingScrobble) error
	GetPendingScrobbles() ([]state.PendingScrobble, error)
	DeletePendingScrobble(id int64) error
	UpdatePendingScrobbleAttempt(id int64, errMsg string) error
	DeleteOldPendingScrobbles(maxAge time.Duration) error
}

// Scrobbler is a playback listener that reports plays to Last.fm. Listener
// callbacks only enqueue; player queries and network calls happen on the
// scrobbler's own goroutine.
type Scrobbler struct {
	api    API
	player Player
	store  PendingStore // may be nil

	mb   *mailbox.Mailbox[engine.EventType]
	quit chan struct{}
	done chan struct{}
	once sync.Once

	// Owned by the worker goroutine.
	current *ScrobbleState
}

// NewScrobbler starts a scrobbler. store may be nil, in which case failed
// scrobbles are dropped.
func NewScrobbler(api API, player Player, store PendingStore) *Scrobbler {
	s := &Scrobbler{
		api:    api,
		player: player,
		store:  store,
		mb:     mailbox.New[engine.EventType](),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go s.run()
	return s
}

// Close stops the worker and waits for it.
func (s *Scrobbler) Close() {
	s.once.Do(func() {
		s.mb.Close()
		close(s.quit)
	})
	<-s.done
}

func (s *Scrobbler) OnStateUpdated()                {}
func (s *Scrobbler) OnProgressUpdated()             {}
func (s *Scrobbler) OnMediaEvent(engine.MediaEvent) {}

// OnPlayerEvent implements playback.Listener.
func (s *Scrobbler) OnPlayerEvent(ev engine.Event) {
	switch ev.Type { //nolint:exhaustive // other events don't affect scrobbling
	case engine.EventMediaChanged, engine.EventPlaying, engine.EventPositionChanged:
		s.mb.Put(ev.Type)
	}
}

func (s *Scrobbler) run() {
	defer close(s.done)

	retry := time.NewTicker(retryInterval)
	defer retry.Stop()
	s.retryPending()

	for {
		select {
		case <-s.quit:
			return
		case <-retry.C:
			s.retryPending()
		case <-s.mb.Ready():
			for _, t := range s.mb.Drain() {
				s.handle(t)
			}
		}
	}
}

func (s *Scrobbler) handle(t engine.EventType) {
	switch t { //nolint:exhaustive // filtered in OnPlayerEvent
	case engine.EventMediaChanged:
		s.reset()
	case engine.EventPlaying:
		if s.current == nil {
			s.reset()
		}
		s.sendNowPlaying()
		s.checkThreshold()
	case engine.EventPositionChanged:
		s.checkThreshold()
	}
}

// reset starts tracking the current track.
func (s *Scrobbler) reset() {
	track := s.player.CurrentTrack()
	if track == nil {
		s.current = nil
		return
	}
	s.current = &ScrobbleState{
		TrackPath: track.Path,
		StartedAt: time.Now(),
	}
}

func (s *Scrobbler) sendNowPlaying() {
	if s.current == nil || s.current.NowPlayingSent {
		return
	}
	track, ok := s.buildScrobbleTrack()
	if !ok {
		return
	}
	s.current.NowPlayingSent = true
	if err := s.api.UpdateNowPlaying(track); err != nil {
		// Now playing is best-effort
		slog.Debug(errmsg.Format(errmsg.OpNowPlaying, err))
	}
}

func (s *Scrobbler) checkThreshold() {
	if s.current == nil || s.current.Scrobbled {
		return
	}
	track, ok := s.buildScrobbleTrack()
	if !ok || track.Duration < minScrobbleLength {
		return
	}

	threshold := min(track.Duration/2, maxScrobbleWait)
	if s.player.Position() < threshold {
		return
	}

	s.current.Scrobbled = true
	if err := s.api.Scrobble(track); err != nil {
		slog.Warn(errmsg.FormatWith(errmsg.OpScrobble, track.Track, err))
		s.queueFailed(track, err)
		return
	}
	slog.Debug("scrobbled", "artist", track.Artist, "track", track.Track)
}

// buildScrobbleTrack describes the current track, false when it is not the
// tracked one or lacks the tags Last.fm requires.
func (s *Scrobbler) buildScrobbleTrack() (ScrobbleTrack, bool) {
	t := s.player.CurrentTrack()
	if t == nil || s.current == nil || t.Path != s.current.TrackPath {
		return ScrobbleTrack{}, false
	}
	artist := t.DisplayArtist()
	if artist == "" || t.Title == "" {
		return ScrobbleTrack{}, false
	}
	track := ScrobbleTrack{
		Artist:    artist,
		Track:     t.Title,
		Album:     t.Album,
		Duration:  t.Duration,
		Timestamp: s.current.StartedAt,
	}
	if t.AlbumArtist != "" && t.AlbumArtist != artist {
		track.AlbumArtist = t.AlbumArtist
	}
	return track, true
}

func (s *Scrobbler) queueFailed(track ScrobbleTrack, err error) {
	if s.store == nil {
		return
	}
	if addErr := s.store.AddPendingScrobble(state.PendingScrobble{
		Artist:    track.Artist,
		Track:     track.Track,
		Album:     track.Album,
		Duration:  track.Duration,
		Timestamp: track.Timestamp,
		LastError: err.Error(),
	}); addErr != nil {
		slog.Warn(errmsg.Format(errmsg.OpRetryScrobbles, addErr))
	}
}

// retryPending resubmits queued scrobbles.
func (s *Scrobbler) retryPending() {
	if s.store == nil {
		return
	}
	if err := s.store.DeleteOldPendingScrobbles(pendingMaxAge); err != nil {
		slog.Warn(errmsg.Format(errmsg.OpRetryScrobbles, err))
	}
	pending, err := s.store.GetPendingScrobbles()
	if err != nil {
		slog.Warn(errmsg.Format(errmsg.OpRetryScrobbles, err))
		return
	}

	var succeeded, failed int
	for i := range pending {
		p := &pending[i]
		if p.Attempts >= maxRetryAttempts {
			continue
		}
		err := s.api.Scrobble(ScrobbleTrack{
			Artist:    p.Artist,
			Track:     p.Track,
			Album:     p.Album,
			Duration:  p.Duration,
			Timestamp: p.Timestamp,
		})
		if err != nil {
			failed++
			_ = s.store.UpdatePendingScrobbleAttempt(p.ID, err.Error())
		} else {
			succeeded++
			_ = s.store.DeletePendingScrobble(p.ID)
		}
	}
	if succeeded+failed > 0 {
		slog.Info("retried pending scrobbles", "succeeded", succeeded, "failed", failed)
	}
}
