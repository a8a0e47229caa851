package playback

import (
	"log/slog"

	"github.com/llehouerou/wavesd/internal/artwork"
	"github.com/llehouerou/wavesd/internal/engine"
	"github.com/llehouerou/wavesd/internal/errmsg"
	"github.com/llehouerou/wavesd/internal/playlist"
	"github.com/llehouerou/wavesd/internal/surface"
)

// fallbackIcon is shown when a track has no cover.
const fallbackIcon = "audio-x-generic"

func (s *Service) surfaceInputs() surface.Inputs {
	remote := s.eng.HasRenderer()
	return surface.Inputs{
		DetachedPresentation: (s.presentation || s.eng.VideoPlaying()) && !remote,
		HasMedia:             s.eng.State() != engine.Stopped && s.CurrentTrack() != nil,
		Playing:              s.eng.State() == engine.Playing,
		ResumePending:        s.focus.ResumePending(),
		FocusRequested:       s.focus.Requested(),
		RemoteOutput:         remote,
		CanDetach:            s.opts.Detach,
	}
}

// showSurface moves the status surface to the state playback calls for.
// Content is built off the coordinator and applied when it comes back.
func (s *Service) showSurface() {
	target := surface.Target(s.surfaceInputs())
	track := s.CurrentTrack()
	if target == surface.Hidden || track == nil {
		s.hideSurface(true)
		return
	}
	s.buildSurface(target, *track)
}

// refreshSurface rebuilds the content of a shown surface.
func (s *Service) refreshSurface() {
	if s.surface.State() == surface.Hidden {
		return
	}
	s.showSurface()
}

func (s *Service) hideSurface(remove bool) {
	if err := s.surface.Hide(remove); err != nil {
		slog.Warn(errmsg.Format(errmsg.OpSurfaceUpdate, err))
	}
}

func (s *Service) buildSurface(target surface.State, track playlist.Track) {
	gen := s.surface.Begin()
	playing := s.eng.State() == engine.Playing
	cache := s.artwork
	go func() {
		c, err := surfaceContent(cache, track, playing)
		s.Submit(surfaceContentReady{gen: gen, target: target, content: c, err: err})
	}()
}

func (s *Service) applySurface(ev surfaceContentReady) {
	if !s.surface.Current(ev.gen) {
		slog.Debug("dropping stale status surface content", "gen", ev.gen)
		return
	}
	if ev.err != nil {
		slog.Warn(errmsg.Format(errmsg.OpSurfaceContent, ev.err))
		return
	}
	if err := s.surface.Apply(ev.target, ev.content); err != nil {
		slog.Warn(errmsg.Format(errmsg.OpSurfaceUpdate, err))
	}
}

func surfaceContent(cache *artwork.Cache, t playlist.Track, playing bool) (surface.Content, error) {
	if t.Path == "" {
		return surface.Content{}, surface.ErrNoMedia
	}
	return surface.Content{
		Title:   t.Title,
		Artist:  t.DisplayArtist(),
		Album:   t.Album,
		Icon:    coverImage(cache, t, fallbackIcon),
		Playing: playing,
	}, nil
}

// coverImage returns a displayable cover for t: a cached thumbnail, the
// folder cover, or fallback.
func coverImage(cache *artwork.Cache, t playlist.Track, fallback string) string {
	if t.Artwork == "" {
		return fallback
	}
	if cache != nil {
		path, err := cache.Thumbnail(t.Path)
		if err == nil {
			return "file://" + path
		}
		slog.Debug(errmsg.FormatWith(errmsg.OpArtwork, t.Path, err))
	}
	if u := artwork.FileURL(t.Artwork); u != "" {
		return u
	}
	return fallback
}
