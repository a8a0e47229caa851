package player

import (
	"math"

	"github.com/gopxl/beep/v2/speaker"

	"github.com/llehouerou/wavesd/internal/engine"
)

// SetVolume implements engine.Engine. volume is clamped to
// 0..engine.MaxVolume.
func (p *Player) SetVolume(volume int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = min(max(volume, 0), engine.MaxVolume)
	if p.volume != nil {
		speaker.Lock()
		p.applyVolume()
		speaker.Unlock()
	}
	return nil
}

// Volume implements engine.Engine.
func (p *Player) Volume() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

// applyVolume pushes the level into the volume effect. p.mu must be held,
// and the speaker lock too once the effect is playing.
func (p *Player) applyVolume() {
	p.volume.Volume = levelToVolume(float64(p.level) / engine.MaxVolume)
	p.volume.Silent = p.level == 0
}

// levelToVolume converts a 0.0-1.0 level to beep's base-2 Volume value:
// 1.0 -> 0, 0.5 -> -1, 0.25 -> -2, 0 -> -10 (silent).
func levelToVolume(level float64) float64 {
	if level <= 0 {
		return -10
	}
	if level >= 1 {
		return 0
	}
	return math.Log2(level)
}
