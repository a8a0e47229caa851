package playback

import "github.com/llehouerou/wavesd/internal/engine"

// engineMixer exposes the engine volume to the focus arbiter.
type engineMixer struct{ eng engine.Engine }

func (m engineMixer) Volume() int           { return m.eng.Volume() }
func (m engineMixer) SetVolume(v int) error { return m.eng.SetVolume(v) }
func (m engineMixer) MaxVolume() int        { return engine.MaxVolume }
func (m engineMixer) FixedScale() bool      { return false }

// transport lets the focus arbiter pause and resume through the service, so
// a resume loads a stopped track like any other play command.
type transport struct{ s *Service }

func (t transport) IsPlaying() bool { return t.s.IsPlaying() }
func (t transport) Pause() error    { return t.s.Pause() }
func (t transport) Play() error     { return t.s.Play() }
