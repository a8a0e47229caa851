//nolint:goconst // test cases intentionally repeat strings for readability
package errmsg

import (
	"errors"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpPlaybackStart,
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with operation",
			op:       OpPlaybackStart,
			err:      errors.New("no audio device"),
			expected: "Failed to start playback: no audio device",
		},
		{
			name:     "queue operation",
			op:       OpQueueRestore,
			err:      errors.New("database is locked"),
			expected: "Failed to restore queue: database is locked",
		},
		{
			name:     "focus operation",
			op:       OpFocusRequest,
			err:      errors.New("denied"),
			expected: "Failed to request audio focus: denied",
		},
		{
			name:     "surface operation",
			op:       OpSurfaceUpdate,
			err:      errors.New("no notification daemon"),
			expected: "Failed to update status surface: no notification daemon",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.op, tt.err)
			if result != tt.expected {
				t.Errorf("Format(%q, %v) = %q, want %q", tt.op, tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatWith(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		context  string
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpTrackLoad,
			context:  "song.mp3",
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with context",
			op:       OpTrackLoad,
			context:  "song.mp3",
			err:      errors.New("permission denied"),
			expected: "Failed to load track 'song.mp3': permission denied",
		},
		{
			name:     "empty context falls back to Format",
			op:       OpTrackLoad,
			context:  "",
			err:      errors.New("permission denied"),
			expected: "Failed to load track: permission denied",
		},
		{
			name:     "artwork with path context",
			op:       OpArtwork,
			context:  "/music/album/cover.jpg",
			err:      errors.New("unknown format"),
			expected: "Failed to load artwork '/music/album/cover.jpg': unknown format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatWith(tt.op, tt.context, tt.err)
			if result != tt.expected {
				t.Errorf("FormatWith(%q, %q, %v) = %q, want %q", tt.op, tt.context, tt.err, result, tt.expected)
			}
		})
	}
}

func TestOpConstants(t *testing.T) {
	ops := []Op{
		OpPlaybackStart, OpPlaybackPause, OpPlaybackStop, OpPlaybackSeek,
		OpTrackLoad, OpTrackAdvance,
		OpQueueLoad, OpQueueSave, OpQueueRestore,
		OpFocusRequest, OpWakeLock, OpSurfaceUpdate, OpSurfaceContent, OpArtwork,
		OpScrobble, OpNowPlaying, OpRetryScrobbles, OpLastfmAuth,
		OpControlBus, OpSleepWatch,
		OpInitialize,
	}

	testErr := errors.New("test error")

	for _, op := range ops {
		t.Run(string(op), func(t *testing.T) {
			if op == "" {
				t.Error("Op constant should not be empty")
			}

			expected := "Failed to " + string(op) + ": test error"
			if result := Format(op, testErr); result != expected {
				t.Errorf("Format = %q, want %q", result, expected)
			}
		})
	}
}
