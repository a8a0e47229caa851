// Package player is the beep-based audio engine.
package player

import (
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"

	"github.com/llehouerou/wavesd/internal/engine"
)

const (
	// positionInterval is how often EventPositionChanged is emitted while
	// playing.
	positionInterval = 500 * time.Millisecond

	minRate = 0.25
	maxRate = 4
)

var (
	speakerInitialized bool
	speakerSampleRate  beep.SampleRate
)

// Player decodes local files and renders them on the default audio device.
// All methods are safe for concurrent use. Events are delivered after the
// internal lock is released.
type Player struct {
	mu      sync.Mutex
	handler engine.Handler

	state    engine.State
	location string
	streamer beep.StreamSeekCloser
	format   beep.Format
	resample *beep.Resampler
	ctrl     *beep.Ctrl
	volume   *effects.Volume

	rate  float32
	level int

	// gen identifies the chain handed to the speaker; end callbacks from
	// an older chain are ignored.
	gen   uint64
	ended bool

	tickStop chan struct{}
}

var _ engine.Engine = (*Player)(nil)

// New creates a stopped player at full volume.
func New() *Player {
	return &Player{rate: 1, level: engine.MaxVolume}
}

// SetHandler implements engine.Engine.
func (p *Player) SetHandler(h engine.Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handler = h
}

func (p *Player) emit(ev engine.Event) {
	p.mu.Lock()
	h := p.handler
	p.mu.Unlock()
	if h != nil {
		h.OnEngineEvent(ev)
	}
}

func (p *Player) emitMedia(ev engine.MediaEvent) {
	p.mu.Lock()
	h := p.handler
	p.mu.Unlock()
	if h != nil {
		h.OnMediaEvent(ev)
	}
}

// Load opens location and prepares it paused at the start. A previously
// loaded item is released without a Stopped event.
func (p *Player) Load(location string) error {
	f, err := os.Open(location)
	if err != nil {
		return err
	}
	streamer, format, err := decode(f, location)
	if err != nil {
		f.Close()
		return err
	}

	p.mu.Lock()
	p.release()

	if !speakerInitialized {
		speakerSampleRate = format.SampleRate
		if err := speaker.Init(speakerSampleRate, speakerSampleRate.N(time.Second/10)); err != nil {
			p.mu.Unlock()
			streamer.Close()
			return err
		}
		speakerInitialized = true
	}

	p.location = location
	p.streamer = streamer
	p.format = format
	p.resample = beep.ResampleRatio(4, p.ratio(), streamer)
	p.ctrl = &beep.Ctrl{Streamer: p.resample, Paused: true}
	p.volume = &effects.Volume{Streamer: p.ctrl, Base: 2}
	p.applyVolume()
	p.state = engine.Opening
	p.start()
	p.mu.Unlock()

	slog.Debug("media loaded", "location", location, "rate", format.SampleRate)
	p.emit(engine.Event{Type: engine.EventMediaChanged})
	p.emitMedia(engine.MediaEvent{Type: engine.MediaDurationChanged})
	return nil
}

// start hands the current chain to the speaker. p.mu must be held.
func (p *Player) start() {
	p.gen++
	gen := p.gen
	p.ended = false
	// The callback runs on the speaker goroutine with the speaker locked
	speaker.Play(beep.Seq(p.volume, beep.Callback(func() {
		go p.endReached(gen)
	})))
}

func (p *Player) endReached(gen uint64) {
	p.mu.Lock()
	if gen != p.gen || p.streamer == nil {
		p.mu.Unlock()
		return
	}
	p.ended = true
	p.stopTicker()
	p.mu.Unlock()

	p.emit(engine.Event{Type: engine.EventEndReached})
}

// release drops the loaded stream. p.mu must be held.
func (p *Player) release() {
	p.stopTicker()
	if p.streamer == nil {
		return
	}
	speaker.Clear()
	p.gen++
	if err := p.streamer.Close(); err != nil {
		slog.Debug("close stream", "error", err)
	}
	p.streamer = nil
	p.resample = nil
	p.ctrl = nil
	p.volume = nil
	p.ended = false
}

// Play implements engine.Engine.
func (p *Player) Play() error {
	p.mu.Lock()
	if p.streamer == nil {
		p.mu.Unlock()
		return engine.ErrNoMedia
	}
	if p.ended {
		speaker.Lock()
		err := p.streamer.Seek(0)
		speaker.Unlock()
		if err != nil {
			p.mu.Unlock()
			return err
		}
		p.start()
	}
	wasPlaying := p.state == engine.Playing
	speaker.Lock()
	p.ctrl.Paused = false
	speaker.Unlock()
	p.state = engine.Playing
	p.startTicker()
	p.mu.Unlock()

	if !wasPlaying {
		p.emit(engine.Event{Type: engine.EventPlaying})
	}
	return nil
}

// Pause implements engine.Engine.
func (p *Player) Pause() error {
	p.mu.Lock()
	if p.state != engine.Playing || p.ctrl == nil {
		p.mu.Unlock()
		return nil
	}
	speaker.Lock()
	p.ctrl.Paused = true
	speaker.Unlock()
	p.state = engine.Paused
	p.stopTicker()
	p.mu.Unlock()

	p.emit(engine.Event{Type: engine.EventPaused})
	return nil
}

// Stop implements engine.Engine.
func (p *Player) Stop() error {
	p.mu.Lock()
	if p.state == engine.Stopped {
		p.mu.Unlock()
		return nil
	}
	p.release()
	p.state = engine.Stopped
	p.mu.Unlock()

	p.emit(engine.Event{Type: engine.EventStopped})
	return nil
}

// Close stops playback.
func (p *Player) Close() error {
	return p.Stop()
}

// Seek implements engine.Engine.
func (p *Player) Seek(position time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.streamer == nil {
		return engine.ErrNoMedia
	}
	n := min(max(p.format.SampleRate.N(position), 0), p.streamer.Len())
	speaker.Lock()
	defer speaker.Unlock()
	return p.streamer.Seek(n)
}

// SetRate implements engine.Engine.
func (p *Player) SetRate(rate float32) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rate = min(max(rate, minRate), maxRate)
	if p.resample != nil {
		speaker.Lock()
		p.resample.SetRatio(p.ratio())
		speaker.Unlock()
	}
	return nil
}

// ratio is the resampling ratio for the current stream and rate. p.mu must
// be held.
func (p *Player) ratio() float64 {
	return resampleRatio(p.format.SampleRate, speakerSampleRate, p.rate)
}

func resampleRatio(from, to beep.SampleRate, rate float32) float64 {
	if to == 0 {
		return float64(rate)
	}
	return float64(from) / float64(to) * float64(rate)
}

// SetAudioTrack implements engine.Engine. Local files carry a single audio
// stream.
func (p *Player) SetAudioTrack(int) error { return nil }

// State implements engine.Engine.
func (p *Player) State() engine.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Time implements engine.Engine.
func (p *Player) Time() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position()
}

// position returns the stream position. p.mu must be held.
func (p *Player) position() time.Duration {
	if p.streamer == nil {
		return 0
	}
	speaker.Lock()
	defer speaker.Unlock()
	return p.format.SampleRate.D(p.streamer.Position())
}

// Length implements engine.Engine.
func (p *Player) Length() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.streamer == nil {
		return 0
	}
	return p.format.SampleRate.D(p.streamer.Len())
}

// Rate implements engine.Engine.
func (p *Player) Rate() float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rate
}

// Seekable implements engine.Engine.
func (p *Player) Seekable() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.streamer != nil
}

// Pausable implements engine.Engine.
func (p *Player) Pausable() bool { return true }

// VideoPlaying implements engine.Engine. The player renders audio only.
func (p *Player) VideoPlaying() bool { return false }

// HasRenderer implements engine.Engine. Output always goes to the local
// audio device.
func (p *Player) HasRenderer() bool { return false }

// Location returns the loaded location, "" when nothing is loaded.
func (p *Player) Location() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.streamer == nil {
		return ""
	}
	return p.location
}

// startTicker starts position notifications. p.mu must be held.
func (p *Player) startTicker() {
	if p.tickStop != nil {
		return
	}
	stop := make(chan struct{})
	p.tickStop = stop
	go func() {
		t := time.NewTicker(positionInterval)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				p.tick()
			}
		}
	}()
}

// stopTicker stops position notifications. p.mu must be held.
func (p *Player) stopTicker() {
	if p.tickStop == nil {
		return
	}
	close(p.tickStop)
	p.tickStop = nil
}

func (p *Player) tick() {
	p.mu.Lock()
	if p.streamer == nil || p.state != engine.Playing {
		p.mu.Unlock()
		return
	}
	length := p.streamer.Len()
	if length <= 0 {
		p.mu.Unlock()
		return
	}
	speaker.Lock()
	pos := p.streamer.Position()
	speaker.Unlock()
	p.mu.Unlock()

	p.emit(engine.Event{
		Type:     engine.EventPositionChanged,
		Position: float32(pos) / float32(length),
	})
}
