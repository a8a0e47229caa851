package playback

import (
	"sync"
	"testing"

	"github.com/llehouerou/wavesd/internal/engine"
	"github.com/llehouerou/wavesd/internal/focus"
	"github.com/llehouerou/wavesd/internal/playlist"
	"github.com/llehouerou/wavesd/internal/session"
	"github.com/llehouerou/wavesd/internal/state"
	"github.com/llehouerou/wavesd/internal/surface"
	"github.com/llehouerou/wavesd/internal/widget"
)

type fakeRenderer struct {
	mu    sync.Mutex
	calls []string
}

func (r *fakeRenderer) record(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *fakeRenderer) Attach(_ surface.Content, foreground bool) error {
	if foreground {
		r.record("attach-fg")
	} else {
		r.record("attach")
	}
	return nil
}

func (r *fakeRenderer) Detach() error {
	r.record("detach")
	return nil
}

func (r *fakeRenderer) Hide(remove bool) error {
	if remove {
		r.record("remove")
	} else {
		r.record("hide")
	}
	return nil
}

func (r *fakeRenderer) Update(surface.Content) error {
	r.record("update")
	return nil
}

func (r *fakeRenderer) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

type fakeHost struct {
	mu        sync.Mutex
	snapshots []session.Snapshot
	active    []bool
	metadata  []session.Metadata
	queues    [][]session.QueueItem
}

func (h *fakeHost) SetPlaybackState(s session.Snapshot) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.snapshots = append(h.snapshots, s)
	return nil
}

func (h *fakeHost) SetActive(active bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.active = append(h.active, active)
	return nil
}

func (h *fakeHost) SetMetadata(m session.Metadata) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.metadata = append(h.metadata, m)
	return nil
}

func (h *fakeHost) SetQueue(items []session.QueueItem) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.queues = append(h.queues, items)
	return nil
}

func (h *fakeHost) Snapshots() []session.Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]session.Snapshot(nil), h.snapshots...)
}

func (h *fakeHost) PhaseCount(p session.Phase) int {
	n := 0
	for _, s := range h.Snapshots() {
		if s.Phase == p {
			n++
		}
	}
	return n
}

func (h *fakeHost) LastSnapshot() session.Snapshot {
	snaps := h.Snapshots()
	if len(snaps) == 0 {
		return session.Snapshot{}
	}
	return snaps[len(snaps)-1]
}

func (h *fakeHost) ActiveCalls() []bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]bool(nil), h.active...)
}

func (h *fakeHost) LastMetadata() session.Metadata {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.metadata) == 0 {
		return session.Metadata{}
	}
	return h.metadata[len(h.metadata)-1]
}

// fakeLock counts outstanding holds.
type fakeLock struct {
	mu       sync.Mutex
	held     int
	maxHeld  int
	acquires int
}

func (l *fakeLock) Acquire() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held++
	l.acquires++
	l.maxHeld = max(l.maxHeld, l.held)
	return nil
}

func (l *fakeLock) Release() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held--
	return nil
}

func (l *fakeLock) Held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held
}

func (l *fakeLock) MaxHeld() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.maxHeld
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	states []widget.State
	covers []string
}

func (b *fakeBroadcaster) SendState(s widget.State) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.states = append(b.states, s)
	return nil
}

func (b *fakeBroadcaster) SendCover(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.covers = append(b.covers, id)
	return nil
}

func (b *fakeBroadcaster) SendPosition(float32) error        { return nil }
func (b *fakeBroadcaster) SendMetaChanged(widget.Meta) error { return nil }

func (b *fakeBroadcaster) Covers() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.covers...)
}

type recordingListener struct {
	mu       sync.Mutex
	events   []engine.Event
	media    []engine.MediaEvent
	updates  int
	progress int
}

func (l *recordingListener) OnStateUpdated() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.updates++
}

func (l *recordingListener) OnProgressUpdated() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.progress++
}

func (l *recordingListener) OnMediaEvent(ev engine.MediaEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.media = append(l.media, ev)
}

func (l *recordingListener) OnPlayerEvent(ev engine.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *recordingListener) Events() []engine.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]engine.Event(nil), l.events...)
}

func (l *recordingListener) Progress() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.progress
}

func (l *recordingListener) Updates() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.updates
}

type fakeStore struct {
	mu    sync.Mutex
	queue state.QueueState
	saves []state.QueueState
}

func (s *fakeStore) GetQueue() (*state.QueueState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.queue
	return &q, nil
}

func (s *fakeStore) SaveQueue(q state.QueueState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves = append(s.saves, q)
}

func (s *fakeStore) LastSave() (state.QueueState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.saves) == 0 {
		return state.QueueState{}, false
	}
	return s.saves[len(s.saves)-1], true
}

type harness struct {
	svc      *Service
	eng      *engine.Mock
	host     *fakeHost
	renderer *fakeRenderer
	lock     *fakeLock
	widget   *fakeBroadcaster
}

// newHarness builds a service over fakes. It must run inside a synctest
// bubble; the service is closed when the test ends.
func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	h := &harness{
		eng:      engine.NewMock(),
		host:     &fakeHost{},
		renderer: &fakeRenderer{},
		lock:     &fakeLock{},
		widget:   &fakeBroadcaster{},
	}
	h.svc = New(Deps{
		Engine:   h.eng,
		Host:     h.host,
		Renderer: h.renderer,
		Widget:   h.widget,
		WakeLock: h.lock,
	}, opts)
	t.Cleanup(func() { h.svc.Close() })
	return h
}

func defaultOptions() Options {
	return Options{
		DetectHeadset: true,
		Focus:         focus.Options{ResumeOnGain: true, Ducking: true},
		Detach:        true,
		WidgetEnabled: true,
	}
}

func tracks(paths ...string) []playlist.Track {
	out := make([]playlist.Track, len(paths))
	for i, p := range paths {
		out[i] = playlist.Track{Path: p, Title: p, Artwork: p + ".jpg"}
	}
	return out
}
