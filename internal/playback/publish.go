package playback

import (
	"strings"
	"time"

	"github.com/llehouerou/wavesd/internal/artwork"
	"github.com/llehouerou/wavesd/internal/engine"
	"github.com/llehouerou/wavesd/internal/playlist"
	"github.com/llehouerou/wavesd/internal/session"
)

func phaseOf(st engine.State) session.Phase {
	switch st {
	case engine.Playing:
		return session.PhasePlaying
	case engine.Paused:
		return session.PhasePaused
	case engine.Opening:
		return session.PhaseConnecting
	case engine.Stopped:
	}
	return session.PhaseStopped
}

func (s *Service) sessionStatus() session.Status {
	s.mu.RLock()
	st := session.Status{
		HasMedia:    s.queue.Current() != nil,
		HasNext:     s.queue.HasNext(),
		HasPrevious: s.queue.HasPrevious(),
		Repeat:      s.queue.RepeatMode(),
		Shuffle:     s.queue.Shuffle(),
		Position:    s.stopPos,
		Length:      s.stopLength,
	}
	s.mu.RUnlock()

	st.Phase = phaseOf(s.eng.State())
	if st.Phase != session.PhaseStopped {
		st.Position = s.eng.Time()
		st.Length = s.eng.Length()
	}
	st.Rate = s.eng.Rate()
	st.Seekable = s.eng.Seekable()
	return st
}

func (s *Service) publish(force bool) {
	s.publisher.Publish(s.sessionStatus(), force)
}

// refreshMetadata rebuilds the item metadata off the coordinator. Cover
// thumbnails can take a while to render.
func (s *Service) refreshMetadata() {
	s.metaGen++
	gen := s.metaGen

	track := s.CurrentTrack()
	if track == nil {
		s.applyMetadata(metadataReady{gen: gen})
		return
	}
	length := s.eng.Length()
	cache := s.artwork
	withCover := s.opts.LockscreenCover
	go func() {
		s.Submit(metadataReady{gen: gen, meta: buildMetadata(cache, *track, length, withCover)})
	}()
}

func (s *Service) applyMetadata(ev metadataReady) {
	if ev.gen != s.metaGen || ev.meta == s.lastMeta {
		return
	}
	s.lastMeta = ev.meta
	s.publisher.SetMetadata(ev.meta)
}

func buildMetadata(cache *artwork.Cache, t playlist.Track, length time.Duration, withCover bool) session.Metadata {
	m := session.Metadata{
		ID:          t.ID,
		Location:    t.Path,
		Title:       t.Title,
		Artist:      t.DisplayArtist(),
		AlbumArtist: t.AlbumArtist,
		Album:       t.Album,
		Genre:       t.Genre,
		TrackNumber: t.TrackNumber,
		Duration:    t.Duration,
	}
	if length > 0 {
		m.Duration = length
	}
	if withCover {
		m.ArtURL = coverImage(cache, t, "")
	}
	return m
}

func (s *Service) publishQueue() {
	tracks := s.QueueTracks()
	items := make([]session.QueueItem, len(tracks))
	for i, t := range tracks {
		items[i] = session.QueueItem{
			ID:         t.ID,
			Title:      t.Title,
			Subtitle:   subtitle(t),
			ArtworkURL: artwork.FileURL(t.Artwork),
			Location:   t.Path,
		}
	}
	s.publisher.SetQueue(items)
}

func subtitle(t playlist.Track) string {
	parts := make([]string, 0, 2)
	if a := t.DisplayArtist(); a != "" {
		parts = append(parts, a)
	}
	if t.Album != "" {
		parts = append(parts, t.Album)
	}
	return strings.Join(parts, " - ")
}
