package playback

import (
	"github.com/llehouerou/wavesd/internal/engine"
	"github.com/llehouerou/wavesd/internal/focus"
	"github.com/llehouerou/wavesd/internal/session"
	"github.com/llehouerou/wavesd/internal/surface"
)

// Event is a unit of work for the coordinator. Events are immutable once
// submitted and are handled one at a time, in submission order.
type Event interface {
	event()
}

// EngineEvent carries an engine notification.
type EngineEvent struct{ Payload engine.Event }

// MediaEvent carries a notification about the loaded media item.
type MediaEvent struct{ Payload engine.MediaEvent }

// Progress asks listeners to refresh the position.
type Progress struct{}

// FullUpdate asks every observer to refresh from the current state.
type FullUpdate struct{}

// MetadataInvalidated rebuilds the published item metadata.
type MetadataInvalidated struct{}

// ListenerAdd registers a listener.
type ListenerAdd struct{ Listener Listener }

// ListenerRemove unregisters a listener.
type ListenerRemove struct{ Listener Listener }

// ShowStatusSurface moves the status surface to the state playback calls for.
type ShowStatusSurface struct{}

// HideStatusSurface hides the status surface. Remove drops it entirely.
type HideStatusSurface struct{ Remove bool }

// DeferredActionEnqueue runs Action once the queue store is ready.
type DeferredActionEnqueue struct{ Action func() }

// DeferredActionsFlush runs the deferred actions if the store is ready.
type DeferredActionsFlush struct{}

// FocusChange delivers an audio focus change from the host.
type FocusChange struct{ Change focus.Change }

// Broadcast delivers an OS or remote-control signal.
type Broadcast struct{ Signal Signal }

// PublishState publishes the session state. Force bypasses the throttle.
type PublishState struct{ Force bool }

// QueueChanged reports a change to the queue contents, order or modes.
type QueueChanged struct{}

// PresentationChanged reports whether a detached presentation (popup)
// currently owns output.
type PresentationChanged struct{ Detached bool }

type surfaceContentReady struct {
	gen     uint64
	target  surface.State
	content surface.Content
	err     error
}

type metadataReady struct {
	gen  uint64
	meta session.Metadata
}

type sessionExpired struct{ gen uint64 }

type storeReady struct{ store Store }

type query struct{ fn func() }

type stop struct{}

func (EngineEvent) event()           {}
func (MediaEvent) event()            {}
func (Progress) event()              {}
func (FullUpdate) event()            {}
func (MetadataInvalidated) event()   {}
func (ListenerAdd) event()           {}
func (ListenerRemove) event()        {}
func (ShowStatusSurface) event()     {}
func (HideStatusSurface) event()     {}
func (DeferredActionEnqueue) event() {}
func (DeferredActionsFlush) event()  {}
func (FocusChange) event()           {}
func (Broadcast) event()             {}
func (PublishState) event()          {}
func (QueueChanged) event()          {}
func (PresentationChanged) event()   {}
func (surfaceContentReady) event()   {}
func (metadataReady) event()         {}
func (sessionExpired) event()        {}
func (storeReady) event()            {}
func (query) event()                 {}
func (stop) event()                  {}
