package engine

import (
	"sync"
	"time"
)

// Mock is a test double for Engine. Transport calls update the state and
// emit the matching event to the handler, like a real engine would.
type Mock struct {
	mu       sync.Mutex
	handler  Handler
	state    State
	location string
	time     time.Duration
	length   time.Duration
	// media is the length Load gives the loaded item.
	media    time.Duration
	rate     float32
	volume   int
	seekable bool
	pausable bool
	video    bool
	renderer bool

	playErr error

	loadCalls   []string
	playCalls   int
	pauseCalls  int
	stopCalls   int
	seekCalls   []time.Duration
	volumeCalls []int
}

var _ Engine = (*Mock)(nil)

// NewMock creates a mock engine with full volume and seekable media.
func NewMock() *Mock {
	return &Mock{
		rate:     1,
		volume:   MaxVolume,
		seekable: true,
		pausable: true,
	}
}

func (m *Mock) emit(ev Event) {
	m.mu.Lock()
	h := m.handler
	m.mu.Unlock()
	if h != nil {
		h.OnEngineEvent(ev)
	}
}

func (m *Mock) Load(location string) error {
	m.mu.Lock()
	m.loadCalls = append(m.loadCalls, location)
	m.location = location
	m.time = 0
	m.length = m.media
	m.mu.Unlock()
	m.emit(Event{Type: EventMediaChanged})
	return nil
}

func (m *Mock) Play() error {
	m.mu.Lock()
	m.playCalls++
	if m.playErr != nil {
		err := m.playErr
		m.mu.Unlock()
		return err
	}
	m.state = Playing
	m.mu.Unlock()
	m.emit(Event{Type: EventPlaying})
	return nil
}

func (m *Mock) Pause() error {
	m.mu.Lock()
	m.pauseCalls++
	if m.state != Playing {
		m.mu.Unlock()
		return nil
	}
	m.state = Paused
	m.mu.Unlock()
	m.emit(Event{Type: EventPaused})
	return nil
}

func (m *Mock) Stop() error {
	m.mu.Lock()
	m.stopCalls++
	if m.state == Stopped {
		m.mu.Unlock()
		return nil
	}
	m.state = Stopped
	m.time, m.length = 0, 0
	m.mu.Unlock()
	m.emit(Event{Type: EventStopped})
	return nil
}

func (m *Mock) Seek(position time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seekCalls = append(m.seekCalls, position)
	m.time = position
	return nil
}

func (m *Mock) SetRate(rate float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rate = rate
	return nil
}

func (m *Mock) SetVolume(volume int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volumeCalls = append(m.volumeCalls, volume)
	m.volume = volume
	return nil
}

func (m *Mock) SetAudioTrack(_ int) error { return nil }

func (m *Mock) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Mock) Time() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.time
}

func (m *Mock) Length() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.length
}

func (m *Mock) Rate() float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rate
}

func (m *Mock) Volume() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

func (m *Mock) Seekable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seekable
}

func (m *Mock) Pausable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pausable
}

func (m *Mock) VideoPlaying() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.video
}

func (m *Mock) HasRenderer() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.renderer
}

func (m *Mock) SetHandler(h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = h
}

// Test helpers

// Emit delivers ev to the handler. Playing, Paused and Stopped events also
// move the mock into the matching state.
func (m *Mock) Emit(ev Event) {
	m.mu.Lock()
	switch ev.Type {
	case EventPlaying:
		m.state = Playing
	case EventPaused:
		m.state = Paused
	case EventStopped:
		m.state = Stopped
		m.time, m.length = 0, 0
	default:
	}
	m.mu.Unlock()
	m.emit(ev)
}

// EmitMedia delivers a media event to the handler.
func (m *Mock) EmitMedia(ev MediaEvent) {
	m.mu.Lock()
	h := m.handler
	m.mu.Unlock()
	if h != nil {
		h.OnMediaEvent(ev)
	}
}

// SetState changes the state without emitting an event.
func (m *Mock) SetState(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
}

// SetTime sets the current position.
func (m *Mock) SetTime(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.time = d
}

// SetLength sets the length of the loaded media and of media loaded later.
// Stop forgets it, like a real engine releasing the item.
func (m *Mock) SetLength(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.length = d
	m.media = d
}

// SetSeekable sets whether the media is seekable.
func (m *Mock) SetSeekable(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seekable = v
}

// SetVideoPlaying sets whether a video output is visible.
func (m *Mock) SetVideoPlaying(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.video = v
}

// SetRenderer sets whether an external renderer owns output.
func (m *Mock) SetRenderer(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.renderer = v
}

// SetVolumeDirect sets the volume without recording a call.
func (m *Mock) SetVolumeDirect(v int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = v
}

// SetPlayError makes Play fail with err.
func (m *Mock) SetPlayError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playErr = err
}

// Location returns the last loaded location.
func (m *Mock) Location() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.location
}

// LoadCalls returns all locations passed to Load.
func (m *Mock) LoadCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.loadCalls...)
}

// PlayCalls returns the number of Play calls.
func (m *Mock) PlayCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playCalls
}

// PauseCalls returns the number of Pause calls.
func (m *Mock) PauseCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pauseCalls
}

// StopCalls returns the number of Stop calls.
func (m *Mock) StopCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopCalls
}

// SeekCalls returns all positions passed to Seek.
func (m *Mock) SeekCalls() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.seekCalls...)
}

// VolumeCalls returns all values passed to SetVolume.
func (m *Mock) VolumeCalls() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.volumeCalls...)
}
