package playback

import (
	"log/slog"

	"github.com/llehouerou/wavesd/internal/engine"
	"github.com/llehouerou/wavesd/internal/errmsg"
)

func (s *Service) handleEngineEvent(ev engine.Event) {
	switch ev.Type {
	case engine.EventPlaying:
		s.publish(true)
		s.focus.Request(!s.eng.HasRenderer())
		if err := s.wake.Acquire(); err != nil {
			slog.Warn(errmsg.Format(errmsg.OpWakeLock, err))
		}
		s.showSurface()
		s.fullUpdate()

	case engine.EventPaused:
		s.publish(true)
		s.showSurface()
		if err := s.wake.Release(); err != nil {
			slog.Warn(errmsg.Format(errmsg.OpWakeLock, err))
		}
		s.saveQueue()
		s.fullUpdate()

	case engine.EventStopped:
		s.hideSurface(true)
		if err := s.wake.Release(); err != nil {
			slog.Warn(errmsg.Format(errmsg.OpWakeLock, err))
		}
		s.focus.Release()
		s.publish(true)
		s.saveQueue()
		s.fullUpdate()

	case engine.EventEndReached:
		s.progress()
		s.advance()

	case engine.EventEncounteredError:
		track := s.CurrentTrack()
		path := ""
		if track != nil {
			path = track.Path
		}
		slog.Error(errmsg.FormatWith(errmsg.OpPlaybackStart, path, ev.Err))
		s.advance()
		s.fullUpdate()

	case engine.EventPositionChanged:
		s.widget.Position(s.CurrentTrack(), s.eng.Length(), ev.Position, s.eng.VideoPlaying())
		s.publish(false)

	case engine.EventTrackAdded:
		if ev.TrackKind == engine.TrackVideo {
			s.refreshMetadata()
			s.showSurface()
		}

	case engine.EventMediaChanged:
		s.refreshMetadata()
		s.widget.Update(s.CurrentTrack(), s.eng.State() == engine.Playing)
		s.publishQueue()
		s.publish(true)
		s.refreshSurface()
		s.saveQueue()
		s.progress()
	}

	s.notifyListeners(func(l Listener) { l.OnPlayerEvent(ev) })
}

// advance moves to the next track after the current one ended, honoring the
// repeat and shuffle modes, and stops at the end of the queue.
func (s *Service) advance() {
	s.mu.Lock()
	next := s.queue.Next()
	var path string
	if next != nil {
		path = next.Path
	}
	s.mu.Unlock()

	if next == nil {
		s.rememberStop(false)
		if err := s.eng.Stop(); err != nil {
			slog.Warn(errmsg.Format(errmsg.OpPlaybackStop, err))
		}
		return
	}
	if err := s.loadAndPlay(path); err != nil {
		slog.Warn(errmsg.FormatWith(errmsg.OpTrackAdvance, path, err))
	}
}

func (s *Service) handleSignal(sig Signal) {
	slog.Debug("broadcast received", "signal", sig)

	hasMedia := s.CurrentTrack() != nil
	playing := s.IsPlaying()

	switch sig {
	case SignalNoisy, SignalHeadsetUnplugged:
		if !s.opts.DetectHeadset {
			return
		}
		s.noisyPaused = playing
		if playing && hasMedia {
			s.pauseEngine()
		}

	case SignalHeadsetPlugged:
		if !s.opts.DetectHeadset {
			return
		}
		if s.noisyPaused && hasMedia && s.opts.PlayOnHeadsetInsert {
			s.logCommand(errmsg.OpPlaybackStart, s.Play())
		}
		s.noisyPaused = false

	case SignalWidgetInit:
		s.widget.Reset()
		s.fullUpdate()

	case SignalWidgetEnable, SignalWidgetDisable:
		s.widget.SetEnabled(sig == SignalWidgetEnable)
		if sig == SignalWidgetEnable {
			s.fullUpdate()
		}

	case SignalPlayPause:
		switch {
		case !hasMedia:
			s.loadLastPlaylist()
		case playing:
			s.pauseEngine()
		default:
			s.logCommand(errmsg.OpPlaybackStart, s.Play())
		}

	case SignalPlay:
		if !playing && hasMedia {
			s.logCommand(errmsg.OpPlaybackStart, s.Play())
		}

	case SignalPause:
		if hasMedia {
			s.pauseEngine()
		}

	case SignalStop:
		s.logCommand(errmsg.OpPlaybackStop, s.Stop())

	case SignalNext:
		s.logCommand(errmsg.OpTrackAdvance, s.Next())

	case SignalPrevious:
		s.logCommand(errmsg.OpTrackAdvance, s.Previous())

	case SignalLoadLastPlaylist:
		s.loadLastPlaylist()
	}
}

func (s *Service) pauseEngine() {
	s.logCommand(errmsg.OpPlaybackPause, s.Pause())
}

func (s *Service) logCommand(op errmsg.Op, err error) {
	if err != nil {
		slog.Warn(errmsg.Format(op, err))
	}
}
