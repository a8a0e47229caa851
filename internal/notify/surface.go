package notify

import (
	"strings"
	"time"

	"github.com/llehouerou/wavesd/internal/surface"
)

// detachedExpire is how long a detached surface stays on screen.
const detachedExpire = 5 * time.Second

// SurfaceRenderer shows the playback status surface as a desktop
// notification. A pinned surface never expires and is marked resident.
type SurfaceRenderer struct {
	n Notifier

	id      uint32
	pinned  bool
	content surface.Content
}

// NewSurfaceRenderer creates a renderer sending through n.
func NewSurfaceRenderer(n Notifier) *SurfaceRenderer {
	return &SurfaceRenderer{n: n}
}

// Attach implements surface.Renderer.
func (r *SurfaceRenderer) Attach(c surface.Content, foreground bool) error {
	r.pinned = foreground
	r.content = c
	return r.send()
}

// Detach implements surface.Renderer.
func (r *SurfaceRenderer) Detach() error {
	if !r.pinned {
		return nil
	}
	r.pinned = false
	return r.send()
}

// Hide implements surface.Renderer. Without remove a detached remnant is
// kept on screen until it times out.
func (r *SurfaceRenderer) Hide(remove bool) error {
	if r.id == 0 {
		return nil
	}
	if !remove {
		r.pinned = false
		err := r.send()
		r.id = 0
		return err
	}
	err := r.n.Close(r.id)
	r.id = 0
	r.pinned = false
	return err
}

// Update implements surface.Renderer.
func (r *SurfaceRenderer) Update(c surface.Content) error {
	r.content = c
	return r.send()
}

func (r *SurfaceRenderer) send() error {
	n := Notification{
		Summary:  r.content.Title,
		Body:     body(r.content),
		Icon:     r.content.Icon,
		Replaces: r.id,
		Urgency:  UrgencyLow,
		Resident: r.pinned,
		Category: "x-wavesd.playback",
		Expire:   detachedExpire,
	}
	if r.pinned {
		n.Expire = 0
	}
	if n.Icon == "" {
		n.Icon = "audio-x-generic"
	}

	id, err := r.n.Notify(n)
	if err != nil {
		return err
	}
	r.id = id
	return nil
}

func body(c surface.Content) string {
	parts := make([]string, 0, 2)
	if c.Artist != "" {
		parts = append(parts, c.Artist)
	}
	if c.Album != "" {
		parts = append(parts, c.Album)
	}
	text := strings.Join(parts, " - ")
	if !c.Playing {
		if text == "" {
			return "Paused"
		}
		text += " (paused)"
	}
	return text
}
