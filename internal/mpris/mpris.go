//go:build linux

package mpris

import (
	"log/slog"
	"sync"
	"time"

	"github.com/quarckster/go-mpris-server/pkg/events"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/llehouerou/wavesd/internal/engine"
	"github.com/llehouerou/wavesd/internal/session"
)

// Host publishes the playback session over MPRIS and routes client commands
// to a Controller. It implements session.Host.
type Host struct {
	server *server.Server
	events *events.EventHandler
	ctrl   Controller

	mu          sync.Mutex
	snap        session.Snapshot
	publishedAt time.Time
	meta        session.Metadata
	active      bool
	queue       []session.QueueItem
}

// New creates an MPRIS host. It publishes nothing on the bus until Serve.
func New() (*Host, error) {
	h := &Host{}
	h.server = server.NewServer("wavesd", &rootAdapter{}, &playerAdapter{h: h})
	h.events = events.NewEventHandler(h.server)
	return h, nil
}

// Serve claims the bus name and routes client commands to ctrl. It must be
// called once.
func (h *Host) Serve(ctrl Controller) {
	h.ctrl = ctrl
	go func() {
		if err := h.server.Listen(); err != nil {
			slog.Warn("mpris server stopped", "error", err)
		}
	}()
}

// Close stops the server and releases D-Bus resources.
func (h *Host) Close() error {
	return h.server.Stop()
}

// SetPlaybackState implements session.Host.
func (h *Host) SetPlaybackState(s session.Snapshot) error {
	h.mu.Lock()
	prev, prevAt := h.snap, h.publishedAt
	h.snap = s
	h.publishedAt = time.Now()
	h.mu.Unlock()

	if prev.Phase != s.Phase {
		if err := h.events.Player.OnPlayPause(); err != nil {
			return err
		}
	}
	if optionsChanged(prev, s) {
		if err := h.events.Player.OnOptions(); err != nil {
			return err
		}
	}
	if !prevAt.IsZero() && seeked(prev, s, time.Since(prevAt)) {
		return h.events.Player.OnSeek(types.Microseconds(s.Position.Microseconds()))
	}
	return nil
}

// SetActive implements session.Host.
func (h *Host) SetActive(active bool) error {
	h.mu.Lock()
	changed := h.active != active
	h.active = active
	h.mu.Unlock()

	if changed {
		slog.Debug("mpris session", "active", active)
	}
	return nil
}

// SetMetadata implements session.Host.
func (h *Host) SetMetadata(m session.Metadata) error {
	h.mu.Lock()
	h.meta = m
	h.mu.Unlock()
	return h.events.Player.OnTitle()
}

// SetQueue implements session.Host. The queue is kept for CanGoNext and
// related queries; the TrackList interface is not exported.
func (h *Host) SetQueue(items []session.QueueItem) error {
	h.mu.Lock()
	h.queue = items
	h.mu.Unlock()
	return nil
}

func (h *Host) snapshot() (session.Snapshot, session.Metadata) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snap, h.meta
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error {
	return nil // Not supported
}

func (r *rootAdapter) Quit() error {
	return nil // Not supported - the daemon manages its own lifecycle
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil
}

func (r *rootAdapter) Identity() (string, error) {
	return "Waves", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"file"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/flac", "audio/mp3"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter and optional interfaces.
type playerAdapter struct {
	h *Host
}

func (p *playerAdapter) Next() error {
	return p.h.ctrl.Next()
}

func (p *playerAdapter) Previous() error {
	return p.h.ctrl.Previous()
}

func (p *playerAdapter) Pause() error {
	return p.h.ctrl.Pause()
}

func (p *playerAdapter) PlayPause() error {
	return p.h.ctrl.TogglePlayPause()
}

func (p *playerAdapter) Stop() error {
	return p.h.ctrl.Stop()
}

func (p *playerAdapter) Play() error {
	return p.h.ctrl.Play()
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	return p.h.ctrl.Seek(time.Duration(offset) * time.Microsecond)
}

func (p *playerAdapter) SetPosition(_ string, position types.Microseconds) error {
	return p.h.ctrl.SeekTo(time.Duration(position) * time.Microsecond)
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil // Not supported
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	snap, _ := p.h.snapshot()
	return playbackStatus(snap.Phase), nil
}

func (p *playerAdapter) Rate() (float64, error) {
	snap, _ := p.h.snapshot()
	if snap.Rate == 0 {
		return 1.0, nil
	}
	return float64(snap.Rate), nil
}

func (p *playerAdapter) SetRate(rate float64) error {
	if rate <= 0 {
		return p.h.ctrl.Pause()
	}
	return p.h.ctrl.SetRate(float32(rate))
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	_, meta := p.h.snapshot()
	return metadata(meta), nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return volumeFraction(p.h.ctrl.Volume(), engine.MaxVolume), nil
}

func (p *playerAdapter) SetVolume(v float64) error {
	v = min(max(v, 0), 1)
	return p.h.ctrl.SetVolume(int(v*engine.MaxVolume + 0.5))
}

func (p *playerAdapter) Position() (int64, error) {
	return p.h.ctrl.Position().Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return 0.25, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return 4.0, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	snap, _ := p.h.snapshot()
	return snap.Actions.Has(session.ActionSkipNext), nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	snap, _ := p.h.snapshot()
	return snap.Actions.Has(session.ActionSkipPrevious), nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	_, meta := p.h.snapshot()
	return meta.Location != "", nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	snap, _ := p.h.snapshot()
	return snap.Actions.Has(session.ActionPause) || snap.Phase != session.PhasePlaying, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	snap, _ := p.h.snapshot()
	return snap.Actions.Has(session.ActionFastForward), nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

// LoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) LoopStatus() (types.LoopStatus, error) {
	snap, _ := p.h.snapshot()
	return loopStatus(snap.Repeat), nil
}

// SetLoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) SetLoopStatus(status types.LoopStatus) error {
	if mode, ok := repeatMode(status); ok {
		p.h.ctrl.SetRepeat(mode)
	}
	return nil
}

// Shuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) Shuffle() (bool, error) {
	snap, _ := p.h.snapshot()
	return snap.Shuffle, nil
}

// SetShuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) SetShuffle(shuffle bool) error {
	p.h.ctrl.SetShuffle(shuffle)
	return nil
}
