package playback

import (
	"log/slog"

	"github.com/llehouerou/wavesd/internal/engine"
	"github.com/llehouerou/wavesd/internal/errmsg"
	"github.com/llehouerou/wavesd/internal/playlist"
	"github.com/llehouerou/wavesd/internal/state"
)

// RestoreQueue loads the saved queue once the store is ready. With play set,
// playback starts from the saved position.
func (s *Service) RestoreQueue(play bool) {
	s.Defer(func() { s.restoreQueue(play) })
}

// whenStoreReady runs fn now if the store is open, and defers it otherwise.
func (s *Service) whenStoreReady(fn func()) {
	if s.store == nil {
		s.deferred = append(s.deferred, fn)
		return
	}
	fn()
}

func (s *Service) loadLastPlaylist() {
	s.whenStoreReady(func() { s.restoreQueue(true) })
}

func (s *Service) restoreQueue(play bool) {
	saved, err := s.store.GetQueue()
	if err != nil {
		slog.Warn(errmsg.Format(errmsg.OpQueueRestore, err))
		return
	}
	if len(saved.Tracks) == 0 {
		slog.Debug("no saved queue")
		return
	}

	tracks := make([]playlist.Track, len(saved.Tracks))
	for i, t := range saved.Tracks {
		tracks[i] = fromQueueTrack(t)
	}

	s.mu.Lock()
	s.queue.Replace(tracks...)
	s.queue.JumpTo(saved.CurrentIndex)
	s.queue.SetRepeatMode(playlist.RepeatMode(saved.RepeatMode))
	s.queue.SetShuffle(saved.Shuffle)
	s.resumeAt = saved.Position
	s.stopPos = saved.Position
	if t := s.queue.Current(); t != nil {
		s.stopLength = t.Duration
	}
	s.mu.Unlock()

	slog.Info("queue restored", "tracks", len(tracks), "index", saved.CurrentIndex,
		"position", saved.Position)

	s.publishQueue()
	s.fullUpdate()
	s.publish(true)

	if play {
		s.logCommand(errmsg.OpPlaybackStart, s.Play())
	}
}

// saveQueue hands the queue to the store, which debounces the write.
func (s *Service) saveQueue() {
	if s.store == nil {
		return
	}

	running := s.eng.State() != engine.Stopped

	s.mu.RLock()
	q := state.QueueState{
		CurrentIndex: s.queue.CurrentIndex(),
		RepeatMode:   int(s.queue.RepeatMode()),
		Shuffle:      s.queue.Shuffle(),
		Position:     s.resumeAt,
	}
	tracks := s.queue.Tracks()
	s.mu.RUnlock()

	if running {
		q.Position = s.eng.Time()
	}
	q.Tracks = make([]state.QueueTrack, len(tracks))
	for i, t := range tracks {
		q.Tracks[i] = toQueueTrack(t)
	}
	s.store.SaveQueue(q)
}

func toQueueTrack(t playlist.Track) state.QueueTrack {
	return state.QueueTrack{
		Path:        t.Path,
		Title:       t.Title,
		Artist:      t.Artist,
		AlbumArtist: t.AlbumArtist,
		Album:       t.Album,
		Genre:       t.Genre,
		TrackNumber: t.TrackNumber,
		Duration:    t.Duration,
		Artwork:     t.Artwork,
	}
}

func fromQueueTrack(t state.QueueTrack) playlist.Track {
	return playlist.Track{
		Path:        t.Path,
		Title:       t.Title,
		Artist:      t.Artist,
		AlbumArtist: t.AlbumArtist,
		Album:       t.Album,
		Genre:       t.Genre,
		TrackNumber: t.TrackNumber,
		Duration:    t.Duration,
		Artwork:     t.Artwork,
	}
}
