// Package playback coordinates playback state between the audio engine,
// caller commands, host signals and every observer of that state.
//
// All coordination runs on a single goroutine that drains an unbounded
// mailbox. Producers never block: engine callbacks, D-Bus handlers and
// timers submit events, and transport commands call the engine directly
// before submitting a forced state publication.
package playback

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/llehouerou/wavesd/internal/artwork"
	"github.com/llehouerou/wavesd/internal/engine"
	"github.com/llehouerou/wavesd/internal/focus"
	"github.com/llehouerou/wavesd/internal/mailbox"
	"github.com/llehouerou/wavesd/internal/playlist"
	"github.com/llehouerou/wavesd/internal/session"
	"github.com/llehouerou/wavesd/internal/state"
	"github.com/llehouerou/wavesd/internal/surface"
	"github.com/llehouerou/wavesd/internal/wakelock"
	"github.com/llehouerou/wavesd/internal/widget"
)

var (
	// ErrClosed is returned by queries after Close.
	ErrClosed = errors.New("playback service closed")
	// ErrNoCurrentTrack is returned by commands that need a current track.
	ErrNoCurrentTrack = errors.New("no current track")
	// ErrEndOfQueue is returned by Next when there is nothing after the
	// current track.
	ErrEndOfQueue = errors.New("end of queue")
	// ErrStartOfQueue is returned by Previous when there is nothing before
	// the current track and it cannot be restarted.
	ErrStartOfQueue = errors.New("start of queue")
)

// Listener observes playback. Methods are called on the coordinator
// goroutine and must not block; a listener that needs to call back into the
// Service must do so from another goroutine.
type Listener interface {
	OnStateUpdated()
	OnProgressUpdated()
	OnMediaEvent(ev engine.MediaEvent)
	OnPlayerEvent(ev engine.Event)
}

// Store persists the queue.
type Store interface {
	GetQueue() (*state.QueueState, error)
	SaveQueue(q state.QueueState)
}

// Deps are the collaborators of a Service. Engine, Host and Renderer are
// required.
type Deps struct {
	Engine   engine.Engine
	Host     session.Host
	Renderer surface.Renderer

	Audio    focus.AudioService // nil: focus is always granted
	Effects  session.Effects    // optional
	Widget   widget.Broadcaster // nil: no widget output
	WakeLock wakelock.Lock      // nil: no wake lock
	Artwork  *artwork.Cache     // nil: folder covers only
}

// Options are the user policies of a Service.
type Options struct {
	DetectHeadset       bool
	PlayOnHeadsetInsert bool
	Focus               focus.Options
	// LockscreenCover publishes cover art with the session metadata.
	LockscreenCover bool
	// Detach leaves a dismissable status surface while paused instead of
	// removing it.
	Detach        bool
	Publish       session.Options
	WidgetEnabled bool
	WidgetTitle   string
	// Volume is the initial engine volume, 0 keeps the engine's.
	Volume int
}

// Service is the playback coordinator.
type Service struct {
	eng engine.Engine
	mb  *mailbox.Mailbox[Event]

	// mu guards the queue, which commands on caller goroutines share with
	// the coordinator.
	mu       sync.RWMutex
	queue    *playlist.PlayingQueue
	resumeAt time.Duration // restored position for the next load
	// Where the current item stopped. A stopped engine no longer knows.
	stopPos    time.Duration
	stopLength time.Duration

	closeOnce sync.Once
	done      chan struct{}

	// Owned by the coordinator goroutine.
	opts         Options
	listeners    map[Listener]struct{}
	focus        *focus.Arbiter
	surface      *surface.Manager
	publisher    *session.Publisher
	widget       *widget.Notifier
	wake         *wakelock.Manager
	artwork      *artwork.Cache
	store        Store
	deferred     []func()
	presentation bool
	noisyPaused  bool
	metaGen      uint64
	lastMeta     session.Metadata
	stopped      bool
}

// New creates a Service and starts its coordinator goroutine.
func New(deps Deps, opts Options) *Service {
	s := &Service{
		eng:       deps.Engine,
		mb:        mailbox.New[Event](),
		queue:     playlist.NewQueue(),
		done:      make(chan struct{}),
		opts:      opts,
		listeners: make(map[Listener]struct{}),
		artwork:   deps.Artwork,
	}

	audio := deps.Audio
	if audio == nil {
		audio = focus.Local{}
	}
	s.focus = focus.New(audio, engineMixer{deps.Engine}, transport{s}, opts.Focus)
	s.surface = surface.NewManager(deps.Renderer)

	pubOpts := opts.Publish
	pubOpts.OnStale = func(gen uint64) { s.Submit(sessionExpired{gen: gen}) }
	s.publisher = session.NewPublisher(deps.Host, deps.Effects, pubOpts)

	b := deps.Widget
	if b == nil {
		b = widget.Nop{}
	}
	s.widget = widget.NewNotifier(b, opts.WidgetEnabled, opts.WidgetTitle)

	lock := deps.WakeLock
	if lock == nil {
		lock = wakelock.Nop{}
	}
	s.wake = wakelock.NewManager(lock)

	if opts.Volume > 0 {
		if err := s.eng.SetVolume(opts.Volume); err != nil {
			slog.Warn("set initial volume", "error", err)
		}
	}

	s.eng.SetHandler(s)
	go s.run()
	return s
}

// Submit queues ev for the coordinator. It never blocks. Returns false once
// the service is closed.
func (s *Service) Submit(ev Event) bool {
	return s.mb.Put(ev)
}

// Close tears the service down after every event submitted before it has
// been handled: the wake lock, audio focus, status surface and session are
// released, and later submissions are discarded.
func (s *Service) Close() error {
	s.closeOnce.Do(func() {
		s.mb.Put(stop{})
	})
	<-s.done
	return nil
}

// OnEngineEvent implements engine.Handler.
func (s *Service) OnEngineEvent(ev engine.Event) {
	s.Submit(EngineEvent{Payload: ev})
}

// OnMediaEvent implements engine.Handler.
func (s *Service) OnMediaEvent(ev engine.MediaEvent) {
	s.Submit(MediaEvent{Payload: ev})
}

func (s *Service) run() {
	defer close(s.done)
	for range s.mb.Ready() {
		for _, ev := range s.mb.Drain() {
			s.dispatch(ev)
			if s.stopped {
				return
			}
		}
	}
}

// dispatch handles one event. A panicking handler is logged and the loop
// carries on with the next event.
func (s *Service) dispatch(ev Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("playback event handler panicked",
				"event", fmt.Sprintf("%T", ev), "panic", r)
		}
	}()

	switch ev := ev.(type) {
	case EngineEvent:
		s.handleEngineEvent(ev.Payload)
	case MediaEvent:
		s.refreshMetadata()
		s.notifyListeners(func(l Listener) { l.OnMediaEvent(ev.Payload) })
	case Progress:
		s.progress()
	case FullUpdate:
		s.fullUpdate()
	case MetadataInvalidated:
		s.refreshMetadata()
	case ListenerAdd:
		s.listeners[ev.Listener] = struct{}{}
		if s.active() {
			callListener(ev.Listener, Listener.OnProgressUpdated)
		}
	case ListenerRemove:
		delete(s.listeners, ev.Listener)
	case ShowStatusSurface:
		s.showSurface()
	case HideStatusSurface:
		s.hideSurface(ev.Remove)
	case DeferredActionEnqueue:
		s.deferred = append(s.deferred, ev.Action)
		if s.store != nil {
			s.flushDeferred()
		}
	case DeferredActionsFlush:
		if s.store != nil {
			s.flushDeferred()
		}
	case FocusChange:
		s.focus.Handle(ev.Change)
		s.showSurface()
	case Broadcast:
		s.handleSignal(ev.Signal)
	case PublishState:
		s.publish(ev.Force)
	case QueueChanged:
		s.publishQueue()
		s.publish(true)
		s.saveQueue()
	case PresentationChanged:
		s.presentation = ev.Detached
		s.showSurface()
	case surfaceContentReady:
		s.applySurface(ev)
	case metadataReady:
		s.applyMetadata(ev)
	case sessionExpired:
		s.publisher.Expire(ev.gen)
	case storeReady:
		s.store = ev.store
		s.flushDeferred()
	case query:
		ev.fn()
	case stop:
		s.stopped = true
		s.teardown()
		s.mb.Close()
	}
}

func (s *Service) teardown() {
	slog.Debug("playback service stopping")
	if err := s.wake.Release(); err != nil {
		slog.Warn("release wake lock", "error", err)
	}
	s.focus.Release()
	s.hideSurface(true)
	s.publisher.Close()
	s.saveQueue()
	s.listeners = nil
}

// active reports whether there is a current track the engine has loaded.
func (s *Service) active() bool {
	switch s.eng.State() {
	case engine.Playing, engine.Paused, engine.Opening:
		return s.CurrentTrack() != nil
	case engine.Stopped:
	}
	return false
}

// notifyListeners calls fn for every listener. A panicking listener is
// logged and the others are still called.
func (s *Service) notifyListeners(fn func(Listener)) {
	for l := range s.listeners {
		callListener(l, fn)
	}
}

func callListener(l Listener, fn func(Listener)) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("playback listener panicked",
				"listener", fmt.Sprintf("%T", l), "panic", r)
		}
	}()
	fn(l)
}

func (s *Service) progress() {
	s.notifyListeners(Listener.OnProgressUpdated)
}

func (s *Service) fullUpdate() {
	s.notifyListeners(Listener.OnStateUpdated)
	s.refreshMetadata()

	track := s.CurrentTrack()
	playing := s.eng.State() == engine.Playing
	s.widget.Update(track, playing)
	s.widget.MetaChanged(track, s.eng.Length(), playing, s.eng.VideoPlaying())
	s.progress()
}

func (s *Service) flushDeferred() {
	actions := s.deferred
	s.deferred = nil
	for _, fn := range actions {
		fn()
	}
}
