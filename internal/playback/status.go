package playback

import (
	"time"

	"github.com/llehouerou/wavesd/internal/focus"
	"github.com/llehouerou/wavesd/internal/playlist"
	"github.com/llehouerou/wavesd/internal/session"
	"github.com/llehouerou/wavesd/internal/surface"
)

// Status is a consistent view of the coordinator state.
type Status struct {
	Phase         session.Phase
	Focus         focus.State
	Surface       surface.State
	WakeLockHeld  bool
	SessionActive bool
	Listeners     int
	Track         *playlist.Track
	Next          *playlist.Track // nil when unknown, as with shuffle
	Position      time.Duration
	Length        time.Duration
	Volume        int
	QueueLength   int
	QueueIndex    int
	Repeat        playlist.RepeatMode
	Shuffle       bool
	WidgetEnabled bool
	StoreReady    bool
}

// Status returns the coordinator state, read on the coordinator after every
// event submitted before it.
func (s *Service) Status() (Status, error) {
	ch := make(chan Status, 1)
	ok := s.Submit(query{fn: func() { ch <- s.status() }})
	if !ok {
		return Status{}, ErrClosed
	}
	select {
	case st := <-ch:
		return st, nil
	case <-s.done:
		return Status{}, ErrClosed
	}
}

func (s *Service) status() Status {
	st := Status{
		Phase:         phaseOf(s.eng.State()),
		Focus:         s.focus.State(),
		Surface:       s.surface.State(),
		WakeLockHeld:  s.wake.Held(),
		SessionActive: s.publisher.Active(),
		Listeners:     len(s.listeners),
		Track:         s.CurrentTrack(),
		Position:      s.eng.Time(),
		Length:        s.eng.Length(),
		Volume:        s.eng.Volume(),
		WidgetEnabled: s.widget.Enabled(),
		StoreReady:    s.store != nil,
	}
	s.mu.RLock()
	st.QueueLength = s.queue.Len()
	st.QueueIndex = s.queue.CurrentIndex()
	st.Repeat = s.queue.RepeatMode()
	st.Shuffle = s.queue.Shuffle()
	if next := s.queue.PeekNext(); next != nil {
		t := *next
		st.Next = &t
	}
	s.mu.RUnlock()
	return st
}
