// Package engine defines the contract between the coordinator and the audio
// engine that decodes and renders media.
package engine

import (
	"errors"
	"time"
)

// ErrNoMedia is returned by transport calls when nothing is loaded.
var ErrNoMedia = errors.New("no media loaded")

// State is the engine's transport state.
type State int

const (
	Stopped State = iota
	Opening
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Opening:
		return "Opening"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	}
	return "Unknown"
}

// Handler receives engine notifications. Implementations must not block:
// callbacks run on engine goroutines.
type Handler interface {
	OnEngineEvent(Event)
	OnMediaEvent(MediaEvent)
}

// Engine is a media engine. All methods are safe for concurrent use.
type Engine interface {
	Load(location string) error
	Play() error
	Pause() error
	Stop() error
	Seek(position time.Duration) error
	SetRate(rate float32) error
	SetVolume(volume int) error
	SetAudioTrack(index int) error

	State() State
	Time() time.Duration
	Length() time.Duration
	Rate() float32
	Volume() int
	Seekable() bool
	Pausable() bool
	VideoPlaying() bool
	// HasRenderer reports whether output is routed to an external renderer.
	HasRenderer() bool

	SetHandler(h Handler)
}

// MaxVolume is the upper bound of the engine volume scale.
const MaxVolume = 100
