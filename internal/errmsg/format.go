// Package errmsg provides consistent error formatting for log and user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Transport operations
	OpPlaybackStart Op = "start playback"
	OpPlaybackPause Op = "pause playback"
	OpPlaybackStop  Op = "stop playback"
	OpPlaybackSeek  Op = "seek"
	OpTrackLoad     Op = "load track"
	OpTrackAdvance  Op = "advance to the next track"

	// Queue operations
	OpQueueLoad    Op = "load queue"
	OpQueueSave    Op = "save queue"
	OpQueueRestore Op = "restore queue"

	// Coordinator side effects
	OpFocusRequest   Op = "request audio focus"
	OpWakeLock       Op = "update wake lock"
	OpSurfaceUpdate  Op = "update status surface"
	OpSurfaceContent Op = "build status surface content"
	OpArtwork        Op = "load artwork"

	// Scrobbling
	OpScrobble       Op = "scrobble track"
	OpNowPlaying     Op = "update now playing"
	OpRetryScrobbles Op = "retry pending scrobbles"
	OpLastfmAuth     Op = "authorize Last.fm"

	// Control bus
	OpControlBus Op = "export control bus"
	OpSleepWatch Op = "watch for system sleep"

	// Initialization
	OpInitialize Op = "initialize daemon"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
