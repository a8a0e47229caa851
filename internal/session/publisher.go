package session

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultInterval is the minimum time between throttled publications.
	DefaultInterval = time.Second
	// DefaultStaleTimeout is how long a stale Paused state is kept before
	// the session is closed.
	DefaultStaleTimeout = 15 * time.Minute
)

// Options configure a Publisher.
type Options struct {
	Interval        time.Duration
	StaleWorkaround bool
	StaleTimeout    time.Duration
	// OnStale is called from a timer goroutine when a stale state expires.
	// It must hand gen back to Expire on the owning goroutine.
	OnStale func(gen uint64)
}

// Publisher throttles and forwards session state to a Host. It is not safe
// for concurrent use; the coordinator owns it.
type Publisher struct {
	host    Host
	effects Effects
	opts    Options

	lastPublished time.Time
	last          Snapshot
	published     bool
	active        bool
	sessionID     string

	staleTimer *time.Timer
	staleGen   uint64
}

// NewPublisher creates a publisher. effects may be nil.
func NewPublisher(host Host, effects Effects, opts Options) *Publisher {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.StaleTimeout <= 0 {
		opts.StaleTimeout = DefaultStaleTimeout
	}
	return &Publisher{host: host, effects: effects, opts: opts}
}

// Publish publishes st. Unless force is set, it is skipped when the last
// publication is less than the interval old. Returns whether it published.
func (p *Publisher) Publish(st Status, force bool) bool {
	now := time.Now()
	if !force && p.published && now.Sub(p.lastPublished) < p.opts.Interval {
		return false
	}

	p.cancelStale()

	snap, stale := BuildSnapshot(st, p.opts.StaleWorkaround)
	if err := p.host.SetPlaybackState(snap); err != nil {
		slog.Warn("publish session state", "error", err)
	}
	p.lastPublished = now
	p.last = snap
	p.published = true

	p.setActive(snap.Phase.Active())

	if stale {
		p.scheduleStale()
	}
	return true
}

// Last returns the last published snapshot.
func (p *Publisher) Last() (Snapshot, bool) {
	return p.last, p.published
}

// Active reports whether the session is open.
func (p *Publisher) Active() bool { return p.active }

// SessionID returns the current effects session ID, "" when closed.
func (p *Publisher) SessionID() string { return p.sessionID }

// Expire confirms a stale Paused state as stopped. gen must come from
// OnStale; expirations superseded by a later publication are ignored.
func (p *Publisher) Expire(gen uint64) {
	if gen != p.staleGen || p.staleTimer == nil {
		return
	}
	p.staleTimer = nil
	slog.Debug("stale session expired")

	p.last.Phase = PhaseStopped
	p.last.Rate = 0
	if err := p.host.SetPlaybackState(p.last); err != nil {
		slog.Warn("publish session state", "error", err)
	}
	p.setActive(false)
}

// SetMetadata forwards item metadata to the host.
func (p *Publisher) SetMetadata(m Metadata) {
	if err := p.host.SetMetadata(m); err != nil {
		slog.Warn("publish session metadata", "error", err)
	}
}

// SetQueue forwards the queue to the host.
func (p *Publisher) SetQueue(items []QueueItem) {
	if err := p.host.SetQueue(items); err != nil {
		slog.Warn("publish session queue", "error", err)
	}
}

// Close cancels pending timers and closes an open session.
func (p *Publisher) Close() {
	p.cancelStale()
	p.setActive(false)
}

func (p *Publisher) setActive(active bool) {
	if active == p.active {
		return
	}
	p.active = active
	if err := p.host.SetActive(active); err != nil {
		slog.Warn("set session active", "active", active, "error", err)
	}

	if p.effects == nil {
		return
	}
	if active {
		p.sessionID = uuid.NewString()
		if err := p.effects.OpenSession(p.sessionID); err != nil {
			slog.Warn("open effects session", "error", err)
		}
		return
	}
	if err := p.effects.CloseSession(p.sessionID); err != nil {
		slog.Warn("close effects session", "error", err)
	}
	p.sessionID = ""
}

func (p *Publisher) scheduleStale() {
	p.staleGen++
	gen := p.staleGen
	onStale := p.opts.OnStale
	p.staleTimer = time.AfterFunc(p.opts.StaleTimeout, func() {
		if onStale != nil {
			onStale(gen)
		}
	})
}

func (p *Publisher) cancelStale() {
	if p.staleTimer != nil {
		p.staleTimer.Stop()
		p.staleTimer = nil
	}
	p.staleGen++
}
