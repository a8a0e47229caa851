// Package focus arbitrates exclusive use of the audio output between this
// service and other audio producers on the host.
package focus

import (
	"log/slog"
)

// State is the arbiter's view of audio focus.
type State int

const (
	NoFocus State = iota
	Focused
	TransientlyLost
	DuckLost
)

func (s State) String() string {
	switch s {
	case NoFocus:
		return "NoFocus"
	case Focused:
		return "Focused"
	case TransientlyLost:
		return "TransientlyLost"
	case DuckLost:
		return "DuckLost"
	}
	return "Unknown"
}

// Change is a focus notification from the host audio service.
type Change int

const (
	Gain Change = iota
	Loss
	LossTransient
	LossTransientCanDuck
)

func (c Change) String() string {
	switch c {
	case Gain:
		return "Gain"
	case Loss:
		return "Loss"
	case LossTransient:
		return "LossTransient"
	case LossTransientCanDuck:
		return "LossTransientCanDuck"
	}
	return "Unknown"
}

// ParseChange maps a change name ("gain", "loss", "loss-transient",
// "loss-transient-can-duck") to a Change.
func ParseChange(s string) (Change, bool) {
	switch s {
	case "gain":
		return Gain, true
	case "loss":
		return Loss, true
	case "loss-transient":
		return LossTransient, true
	case "loss-transient-can-duck", "duck":
		return LossTransientCanDuck, true
	}
	return 0, false
}

// FixedScaleDuckLevel is the duck threshold on fixed-step mixers.
const FixedScaleDuckLevel = 50

// AudioService is the host's focus authority.
type AudioService interface {
	RequestFocus() (granted bool, err error)
	AbandonFocus() error
}

// Mixer controls the playback volume.
type Mixer interface {
	Volume() int
	SetVolume(v int) error
	MaxVolume() int
	// FixedScale reports whether the volume moves in fixed steps.
	FixedScale() bool
}

// Transport pauses and resumes playback.
type Transport interface {
	IsPlaying() bool
	Pause() error
	Play() error
}

// Options are the user policies applied on focus changes.
type Options struct {
	ResumeOnGain bool // resume after a transient loss if we were playing
	Ducking      bool // lower the volume on duck losses
	PauseOnDuck  bool // treat duck losses as transient losses
}

// Arbiter is the audio focus state machine. It is not safe for concurrent
// use; the coordinator owns it.
type Arbiter struct {
	audio     AudioService
	mixer     Mixer
	transport Transport
	opts      Options

	state     State
	requested bool

	duckLevel     int // -1 until computed for the current episode
	preDuckVolume int // -1 when nothing to restore
	wasPlaying    bool
}

// New creates an arbiter in NoFocus.
func New(audio AudioService, mixer Mixer, transport Transport, opts Options) *Arbiter {
	return &Arbiter{
		audio:         audio,
		mixer:         mixer,
		transport:     transport,
		opts:          opts,
		duckLevel:     -1,
		preDuckVolume: -1,
	}
}

// State returns the current focus state.
func (a *Arbiter) State() State { return a.state }

// Requested reports whether focus was requested since the last release,
// whether or not the request was granted.
func (a *Arbiter) Requested() bool { return a.requested }

// ResumePending reports whether playback will resume on the next gain.
func (a *Arbiter) ResumePending() bool {
	return a.state == TransientlyLost && a.wasPlaying
}

// Request asks the host for focus. It is skipped when localOutput is false
// (an external renderer owns output) or when focus is already held. A denied
// request leaves the arbiter in NoFocus; playback continues unfocused.
func (a *Arbiter) Request(localOutput bool) State {
	if !localOutput || a.state != NoFocus {
		return a.state
	}

	a.requested = true
	granted, err := a.audio.RequestFocus()
	switch {
	case err != nil:
		slog.Warn("audio focus request failed", "error", err)
	case !granted:
		slog.Warn("audio focus request denied")
	default:
		a.state = Focused
		slog.Debug("audio focus granted")
	}
	return a.state
}

// Release abandons focus with the host.
func (a *Arbiter) Release() {
	if !a.requested && a.state == NoFocus {
		return
	}
	a.restoreVolume()
	a.abandon()
}

// Handle applies a focus change from the host.
func (a *Arbiter) Handle(c Change) {
	slog.Debug("audio focus change", "change", c, "state", a.state)

	switch c {
	case Loss:
		if a.state == NoFocus {
			return
		}
		if a.transport.IsPlaying() {
			a.pause()
		}
		a.restoreVolume()
		a.abandon()

	case LossTransient:
		a.loseTransiently()

	case LossTransientCanDuck:
		if a.state != Focused {
			return
		}
		if a.opts.PauseOnDuck {
			a.loseTransiently()
			return
		}
		if !a.transport.IsPlaying() {
			return
		}
		a.state = DuckLost
		if !a.opts.Ducking {
			return
		}
		level := a.duckThreshold()
		if vol := a.mixer.Volume(); vol > level {
			a.preDuckVolume = vol
			if err := a.mixer.SetVolume(level); err != nil {
				slog.Warn("duck volume", "error", err)
			}
		}

	case Gain:
		switch a.state {
		case NoFocus, Focused:
			return
		case TransientlyLost:
			resume := a.wasPlaying && a.opts.ResumeOnGain
			a.wasPlaying = false
			a.restoreVolume()
			a.state = Focused
			if resume {
				if err := a.transport.Play(); err != nil {
					slog.Warn("resume after focus gain", "error", err)
				}
			}
		case DuckLost:
			a.restoreVolume()
			a.state = Focused
		}
		a.duckLevel = -1
	}
}

func (a *Arbiter) loseTransiently() {
	if a.state == NoFocus || a.state == TransientlyLost {
		return
	}
	a.wasPlaying = a.transport.IsPlaying()
	if a.wasPlaying {
		a.pause()
	}
	a.state = TransientlyLost
}

func (a *Arbiter) pause() {
	if err := a.transport.Pause(); err != nil {
		slog.Warn("pause on focus loss", "error", err)
	}
}

func (a *Arbiter) abandon() {
	if err := a.audio.AbandonFocus(); err != nil {
		slog.Warn("abandon audio focus", "error", err)
	}
	a.state = NoFocus
	a.requested = false
	a.wasPlaying = false
	a.duckLevel = -1
}

func (a *Arbiter) duckThreshold() int {
	if a.duckLevel < 0 {
		if a.mixer.FixedScale() {
			a.duckLevel = FixedScaleDuckLevel
		} else {
			a.duckLevel = a.mixer.MaxVolume() / 5
		}
	}
	return a.duckLevel
}

func (a *Arbiter) restoreVolume() {
	if a.preDuckVolume < 0 {
		return
	}
	if err := a.mixer.SetVolume(a.preDuckVolume); err != nil {
		slog.Warn("restore volume", "error", err)
	}
	a.preDuckVolume = -1
}

// Local is an AudioService for hosts without system-wide focus arbitration.
// Every request is granted.
type Local struct{}

func (Local) RequestFocus() (bool, error) { return true, nil }
func (Local) AbandonFocus() error         { return nil }
