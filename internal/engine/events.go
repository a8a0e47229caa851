package engine

// EventType identifies an engine notification.
type EventType int

const (
	EventPlaying EventType = iota
	EventPaused
	EventStopped
	EventEndReached
	EventEncounteredError
	EventPositionChanged
	EventTrackAdded
	EventMediaChanged
)

func (t EventType) String() string {
	switch t {
	case EventPlaying:
		return "Playing"
	case EventPaused:
		return "Paused"
	case EventStopped:
		return "Stopped"
	case EventEndReached:
		return "EndReached"
	case EventEncounteredError:
		return "EncounteredError"
	case EventPositionChanged:
		return "PositionChanged"
	case EventTrackAdded:
		return "TrackAdded"
	case EventMediaChanged:
		return "MediaChanged"
	}
	return "Unknown"
}

// TrackKind is the elementary stream type reported by EventTrackAdded.
type TrackKind int

const (
	TrackAudio TrackKind = iota
	TrackVideo
	TrackText
)

// Event is an engine notification.
type Event struct {
	Type      EventType
	Position  float32   // fraction of length, EventPositionChanged only
	TrackKind TrackKind // EventTrackAdded only
	Err       error     // EventEncounteredError only
}

// MediaEventType identifies a notification about the loaded media item.
type MediaEventType int

const (
	MediaMetaChanged MediaEventType = iota
	MediaParsedChanged
	MediaDurationChanged
)

func (t MediaEventType) String() string {
	switch t {
	case MediaMetaChanged:
		return "MetaChanged"
	case MediaParsedChanged:
		return "ParsedChanged"
	case MediaDurationChanged:
		return "DurationChanged"
	}
	return "Unknown"
}

// MediaEvent is a media item notification.
type MediaEvent struct {
	Type MediaEventType
}
