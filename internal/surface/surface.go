// Package surface manages the lifecycle of the persistent playback status
// surface (the "now playing" notification).
package surface

import (
	"errors"
	"log/slog"
)

// State is the presentation state of the status surface.
type State int

const (
	// Hidden means no surface is shown.
	Hidden State = iota
	// Attached means the surface is shown and pins the service as foreground.
	Attached
	// Detached means the surface is shown but dismissable.
	Detached
)

func (s State) String() string {
	switch s {
	case Hidden:
		return "Hidden"
	case Attached:
		return "Attached"
	case Detached:
		return "Detached"
	}
	return "Unknown"
}

// ErrNoMedia is returned when content is requested with nothing loaded.
var ErrNoMedia = errors.New("no current media")

// Content is what the surface displays.
type Content struct {
	Title   string
	Artist  string
	Album   string
	Icon    string // image path or icon name
	Playing bool
}

// Renderer displays the status surface on the host.
type Renderer interface {
	// Attach shows the surface. foreground pins it (not dismissable).
	Attach(c Content, foreground bool) error
	// Detach unpins a shown surface, keeping it visible.
	Detach() error
	// Hide removes the surface. remove drops it entirely rather than
	// leaving a detached remnant.
	Hide(remove bool) error
	// Update refreshes the content of a shown surface.
	Update(c Content) error
}

// Inputs are the facts the target state is derived from.
type Inputs struct {
	// DetachedPresentation is true when a popup or visible video owns output
	// and no external renderer is active.
	DetachedPresentation bool
	HasMedia             bool
	Playing              bool
	ResumePending        bool // transient focus loss pending resume
	FocusRequested       bool
	RemoteOutput         bool // an external renderer owns output
	CanDetach            bool
}

// Target returns the state the surface should be in for in.
func Target(in Inputs) State {
	if in.DetachedPresentation || !in.HasMedia {
		return Hidden
	}
	if (in.Playing || in.ResumePending) && (in.FocusRequested || in.RemoteOutput) {
		return Attached
	}
	if in.CanDetach {
		return Detached
	}
	return Hidden
}

// Manager tracks the surface state and drives a Renderer. It is not safe
// for concurrent use; the coordinator owns it.
type Manager struct {
	r     Renderer
	state State
	gen   uint64
}

// NewManager creates a manager in the Hidden state.
func NewManager(r Renderer) *Manager {
	return &Manager{r: r}
}

// State returns the current surface state.
func (m *Manager) State() State { return m.state }

// Begin starts a new content request and returns its generation. Results
// of earlier requests become stale.
func (m *Manager) Begin() uint64 {
	m.gen++
	return m.gen
}

// Current reports whether gen is the latest request.
func (m *Manager) Current(gen uint64) bool {
	return gen == m.gen
}

// Apply moves the surface to target showing c. Re-entering the current state
// only refreshes the content. On renderer failure the state is left at the
// last successfully applied step.
func (m *Manager) Apply(target State, c Content) error {
	switch target {
	case Hidden:
		return m.hide(true)

	case Attached:
		if m.state == Attached {
			return m.r.Update(c)
		}
		if err := m.r.Attach(c, true); err != nil {
			return err
		}
		m.transition(Attached)

	case Detached:
		switch m.state {
		case Attached:
			if err := m.r.Detach(); err != nil {
				return err
			}
			m.transition(Detached)
			return m.r.Update(c)
		case Detached:
			return m.r.Update(c)
		case Hidden:
			if err := m.r.Attach(c, false); err != nil {
				return err
			}
			m.transition(Detached)
		}
	}
	return nil
}

// Hide invalidates pending content requests and hides the surface.
func (m *Manager) Hide(remove bool) error {
	m.Begin()
	return m.hide(remove)
}

func (m *Manager) hide(remove bool) error {
	if m.state == Hidden {
		return nil
	}
	if err := m.r.Hide(remove); err != nil {
		return err
	}
	m.transition(Hidden)
	return nil
}

func (m *Manager) transition(to State) {
	slog.Debug("status surface", "from", m.state, "to", to)
	m.state = to
}
