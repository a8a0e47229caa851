package playback

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/llehouerou/wavesd/internal/engine"
	"github.com/llehouerou/wavesd/internal/focus"
	"github.com/llehouerou/wavesd/internal/playlist"
)

// restartThreshold is how far into a track Previous restarts it instead of
// moving back.
const restartThreshold = 2 * time.Second

// Transport commands may be called from any goroutine. They act on the
// engine directly and leave the observers to the coordinator.

// Play starts or resumes the current track, loading it first when the
// engine is stopped.
func (s *Service) Play() error {
	s.mu.Lock()
	track := s.queue.Current()
	if track == nil {
		s.mu.Unlock()
		return ErrNoCurrentTrack
	}
	path := track.Path
	var resume time.Duration
	if s.eng.State() == engine.Stopped {
		resume = s.resumeAt
		s.resumeAt = 0
	} else {
		path = ""
	}
	s.mu.Unlock()

	if path != "" {
		if err := s.eng.Load(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		if resume > 0 {
			if err := s.eng.Seek(resume); err != nil {
				slog.Debug("seek to restored position", "error", err)
			}
		}
	}
	if err := s.eng.Play(); err != nil {
		return err
	}
	s.Submit(PublishState{Force: true})
	return nil
}

// Pause pauses playback.
func (s *Service) Pause() error {
	if err := s.eng.Pause(); err != nil {
		return err
	}
	s.Submit(PublishState{Force: true})
	return nil
}

// Stop stops playback. The queue keeps its position and the next Play
// resumes where it stopped.
func (s *Service) Stop() error {
	s.rememberStop(true)
	if err := s.eng.Stop(); err != nil {
		return err
	}
	s.Submit(PublishState{Force: true})
	return nil
}

// TogglePlayPause pauses when playing and plays otherwise.
func (s *Service) TogglePlayPause() error {
	if s.IsPlaying() {
		return s.Pause()
	}
	return s.Play()
}

// Next skips to the next track. It leaves a repeat-one track.
func (s *Service) Next() error {
	s.mu.Lock()
	next := s.queue.SkipNext()
	var path string
	if next != nil {
		path = next.Path
	}
	s.mu.Unlock()

	if next == nil {
		return ErrEndOfQueue
	}
	return s.loadAndPlay(path)
}

// Previous restarts the current track when it played for more than two
// seconds, and moves back one track otherwise.
func (s *Service) Previous() error {
	if s.eng.Seekable() && s.eng.Time() > restartThreshold {
		return s.SeekTo(0)
	}

	s.mu.Lock()
	prev := s.queue.Previous()
	var path string
	if prev != nil {
		path = prev.Path
	}
	s.mu.Unlock()

	if prev != nil {
		return s.loadAndPlay(path)
	}
	if s.eng.Seekable() {
		return s.SeekTo(0)
	}
	return ErrStartOfQueue
}

// JumpTo plays the queue entry at index.
func (s *Service) JumpTo(index int) error {
	s.mu.Lock()
	track := s.queue.JumpTo(index)
	var path string
	if track != nil {
		path = track.Path
	}
	s.mu.Unlock()

	if track == nil {
		return fmt.Errorf("queue index %d: %w", index, ErrNoCurrentTrack)
	}
	return s.loadAndPlay(path)
}

// Seek moves the position by offset, clamped to the track.
func (s *Service) Seek(offset time.Duration) error {
	pos := s.eng.Time() + offset
	if length := s.eng.Length(); length > 0 {
		pos = min(pos, length)
	}
	return s.SeekTo(max(pos, 0))
}

// SeekTo moves to an absolute position.
func (s *Service) SeekTo(position time.Duration) error {
	if err := s.eng.Seek(position); err != nil {
		return err
	}
	s.Submit(PublishState{Force: true})
	s.Submit(Progress{})
	return nil
}

// SetRate changes the playback rate.
func (s *Service) SetRate(rate float32) error {
	if err := s.eng.SetRate(rate); err != nil {
		return err
	}
	s.Submit(PublishState{Force: true})
	return nil
}

// SetVolume changes the engine volume (0..engine.MaxVolume).
func (s *Service) SetVolume(volume int) error {
	return s.eng.SetVolume(volume)
}

// SetRepeat changes the repeat mode.
func (s *Service) SetRepeat(mode playlist.RepeatMode) {
	s.mu.Lock()
	s.queue.SetRepeatMode(mode)
	s.mu.Unlock()
	s.Submit(QueueChanged{})
}

// SetShuffle turns shuffle on or off.
func (s *Service) SetShuffle(on bool) {
	s.mu.Lock()
	s.queue.SetShuffle(on)
	s.mu.Unlock()
	s.Submit(QueueChanged{})
}

// CycleRepeat moves the repeat mode Off -> All -> One -> Off and returns the
// new mode.
func (s *Service) CycleRepeat() playlist.RepeatMode {
	s.mu.Lock()
	mode := s.queue.CycleRepeatMode()
	s.mu.Unlock()
	s.Submit(QueueChanged{})
	return mode
}

// ToggleShuffle flips shuffle and returns the new setting.
func (s *Service) ToggleShuffle() bool {
	s.mu.Lock()
	on := s.queue.ToggleShuffle()
	s.mu.Unlock()
	s.Submit(QueueChanged{})
	return on
}

// Enqueue appends tracks to the queue. With play set, playback jumps to the
// first of them; otherwise an empty queue only selects it.
func (s *Service) Enqueue(tracks []playlist.Track, play bool) error {
	if len(tracks) == 0 {
		return ErrNoCurrentTrack
	}
	s.mu.Lock()
	if !play {
		first := s.queue.Len()
		s.queue.Add(tracks...)
		selected := s.queue.Current() == nil
		if selected {
			s.queue.JumpTo(first)
		}
		s.mu.Unlock()
		s.Submit(QueueChanged{})
		if selected {
			s.Submit(FullUpdate{})
		}
		return nil
	}
	path := s.queue.AddAndPlay(tracks...).Path
	s.resumeAt = 0
	s.stopPos, s.stopLength = 0, 0
	s.mu.Unlock()

	s.Submit(QueueChanged{})
	return s.loadAndPlay(path)
}

// EnqueuePaths expands files and directories into tracks and enqueues them.
func (s *Service) EnqueuePaths(paths []string, play bool) error {
	tracks, err := playlist.Collect(paths)
	if err != nil {
		return err
	}
	return s.Enqueue(tracks, play)
}

// Remove drops the queue entry at index. When it was playing, playback moves
// to the entry that takes its place, and stops once the queue is empty.
func (s *Service) Remove(index int) error {
	s.mu.Lock()
	wasCurrent := index == s.queue.CurrentIndex()
	if !s.queue.RemoveAt(index) {
		s.mu.Unlock()
		return fmt.Errorf("queue index %d: %w", index, ErrNoCurrentTrack)
	}
	var path string
	if t := s.queue.Current(); t != nil {
		path = t.Path
	}
	s.mu.Unlock()

	s.Submit(QueueChanged{})
	if !wasCurrent || s.eng.State() == engine.Stopped {
		return nil
	}
	if path == "" {
		return s.Stop()
	}
	return s.loadAndPlay(path)
}

// Replace swaps the queue for tracks with index current, without starting
// playback. An out-of-range index selects the first track.
func (s *Service) Replace(tracks []playlist.Track, index int) {
	s.mu.Lock()
	s.queue.Replace(tracks...)
	s.queue.JumpTo(index)
	s.resumeAt = 0
	s.stopPos, s.stopLength = 0, 0
	s.mu.Unlock()
	s.Submit(QueueChanged{})
	s.Submit(FullUpdate{})
}

// Load replaces the queue with tracks and plays the one at index.
func (s *Service) Load(tracks []playlist.Track, index int) error {
	if len(tracks) == 0 {
		return ErrNoCurrentTrack
	}
	if index < 0 || index >= len(tracks) {
		index = 0
	}
	s.mu.Lock()
	s.queue.Replace(tracks...)
	track := s.queue.JumpTo(index)
	path := track.Path
	s.resumeAt = 0
	s.stopPos, s.stopLength = 0, 0
	s.mu.Unlock()

	s.Submit(QueueChanged{})
	return s.loadAndPlay(path)
}

// LoadPaths expands files and directories into tracks and plays the one at
// index.
func (s *Service) LoadPaths(paths []string, index int) error {
	tracks, err := playlist.Collect(paths)
	if err != nil {
		return err
	}
	return s.Load(tracks, index)
}

// rememberStop records the position and length of the item about to be
// stopped. With resume set, the next Play starts from there.
func (s *Service) rememberStop(resume bool) {
	if s.eng.State() == engine.Stopped {
		return
	}
	pos, length := s.eng.Time(), s.eng.Length()

	s.mu.Lock()
	defer s.mu.Unlock()
	if t := s.queue.Current(); length <= 0 && t != nil {
		length = t.Duration
	}
	s.stopPos, s.stopLength = pos, length
	if resume {
		s.resumeAt = pos
	}
}

func (s *Service) loadAndPlay(path string) error {
	if err := s.eng.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	if err := s.eng.Play(); err != nil {
		return err
	}
	s.Submit(PublishState{Force: true})
	return nil
}

// CurrentTrack returns a copy of the current track, nil when there is none.
func (s *Service) CurrentTrack() *playlist.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := s.queue.Current()
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// QueueTracks returns a copy of the queue.
func (s *Service) QueueTracks() []playlist.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queue.Tracks()
}

// IsPlaying reports whether the engine is playing.
func (s *Service) IsPlaying() bool {
	return s.eng.State() == engine.Playing
}

// Position returns the playback position.
func (s *Service) Position() time.Duration {
	return s.eng.Time()
}

// Volume returns the engine volume.
func (s *Service) Volume() int {
	return s.eng.Volume()
}

// Submit helpers for collaborators that only produce events.

// AddListener registers l. If a track is loaded, l receives a progress
// update right away.
func (s *Service) AddListener(l Listener) { s.Submit(ListenerAdd{Listener: l}) }

// RemoveListener unregisters l.
func (s *Service) RemoveListener(l Listener) { s.Submit(ListenerRemove{Listener: l}) }

// Signal delivers an OS or remote-control broadcast.
func (s *Service) Signal(sig Signal) { s.Submit(Broadcast{Signal: sig}) }

// SetPresentation reports whether a detached presentation owns output.
func (s *Service) SetPresentation(detached bool) {
	s.Submit(PresentationChanged{Detached: detached})
}

// Defer runs fn on the coordinator once the queue store is ready.
func (s *Service) Defer(fn func()) { s.Submit(DeferredActionEnqueue{Action: fn}) }

// HandleFocus delivers an audio focus change from the host.
func (s *Service) HandleFocus(c focus.Change) { s.Submit(FocusChange{Change: c}) }

// SetStore hands over the queue store once it is open. Deferred actions run
// from then on.
func (s *Service) SetStore(store Store) { s.Submit(storeReady{store: store}) }
