package playlist

import (
	"math/rand/v2"
	"slices"
)

// PlayingQueue is the ordered track list with playback position, repeat
// and shuffle. It is not safe for concurrent use.
type PlayingQueue struct {
	tracks       []Track
	currentIndex int // -1 if nothing playing
	repeat       RepeatMode
	shuffle      bool
	played       []int // shuffle history, oldest first
	nextID       int64
}

// NewQueue creates a new empty playing queue.
func NewQueue() *PlayingQueue {
	return &PlayingQueue{
		currentIndex: -1,
		nextID:       1,
	}
}

// Current returns the currently playing track, or nil if none.
func (q *PlayingQueue) Current() *Track {
	return q.at(q.currentIndex)
}

// CurrentIndex returns the index of the currently playing track (-1 if none).
func (q *PlayingQueue) CurrentIndex() int {
	return q.currentIndex
}

// RepeatMode returns the repeat mode.
func (q *PlayingQueue) RepeatMode() RepeatMode { return q.repeat }

// SetRepeatMode sets the repeat mode.
func (q *PlayingQueue) SetRepeatMode(m RepeatMode) { q.repeat = m }

// CycleRepeatMode moves Off -> All -> One -> Off and returns the new mode.
func (q *PlayingQueue) CycleRepeatMode() RepeatMode {
	switch q.repeat {
	case RepeatOff:
		q.repeat = RepeatAll
	case RepeatAll:
		q.repeat = RepeatOne
	default:
		q.repeat = RepeatOff
	}
	return q.repeat
}

// Shuffle reports whether shuffle is enabled.
func (q *PlayingQueue) Shuffle() bool { return q.shuffle }

// SetShuffle enables or disables shuffle. The shuffle history restarts from
// the current track.
func (q *PlayingQueue) SetShuffle(on bool) {
	q.shuffle = on
	q.played = q.played[:0]
	if on && q.currentIndex >= 0 {
		q.played = append(q.played, q.currentIndex)
	}
}

// ToggleShuffle flips shuffle and returns the new value.
func (q *PlayingQueue) ToggleShuffle() bool {
	q.SetShuffle(!q.shuffle)
	return q.shuffle
}

// Next moves to the track that follows the current one when it ends and
// returns it. RepeatOne keeps the current track. Returns nil at the end of
// the queue.
func (q *PlayingQueue) Next() *Track {
	if q.repeat == RepeatOne && q.Current() != nil {
		return q.Current()
	}
	return q.SkipNext()
}

// SkipNext moves to the next track on user request. Unlike Next it leaves a
// RepeatOne track. Returns nil if there is nowhere to go.
func (q *PlayingQueue) SkipNext() *Track {
	idx := q.nextIndex()
	if idx < 0 {
		return nil
	}
	if q.shuffle && len(q.unplayed()) == 0 {
		// Wrapped around with repeat: start a new shuffle round
		q.played = q.played[:0]
	}
	return q.jump(idx)
}

// PeekNext returns the track Next would move to without moving.
func (q *PlayingQueue) PeekNext() *Track {
	if q.repeat == RepeatOne && q.Current() != nil {
		return q.Current()
	}
	if q.shuffle {
		// Shuffle picks are random; only linear order can be previewed
		return nil
	}
	return q.at(q.nextIndex())
}

// HasNext returns true if there's a track after the current one.
func (q *PlayingQueue) HasNext() bool {
	if q.currentIndex < 0 {
		return false
	}
	if q.shuffle {
		return len(q.unplayed()) > 0
	}
	return q.currentIndex < len(q.tracks)-1
}

// HasPrevious returns true if there's a track before the current one.
func (q *PlayingQueue) HasPrevious() bool {
	if q.shuffle {
		return len(q.played) > 1
	}
	return q.currentIndex > 0
}

// Previous moves back one track and returns it. In shuffle mode it walks the
// shuffle history. Returns nil if there is no previous track.
func (q *PlayingQueue) Previous() *Track {
	if q.shuffle {
		if len(q.played) < 2 {
			return nil
		}
		q.played = q.played[:len(q.played)-1]
		q.currentIndex = q.played[len(q.played)-1]
		return q.Current()
	}
	switch {
	case q.currentIndex > 0:
		q.currentIndex--
	case q.repeat == RepeatAll && len(q.tracks) > 0:
		q.currentIndex = len(q.tracks) - 1
	default:
		return nil
	}
	return q.Current()
}

// JumpTo sets the current index to the specified position.
// Returns the track at that position, or nil if invalid.
func (q *PlayingQueue) JumpTo(index int) *Track {
	if index < 0 || index >= len(q.tracks) {
		return nil
	}
	return q.jump(index)
}

// Add appends tracks to the queue without changing playback.
func (q *PlayingQueue) Add(tracks ...Track) {
	q.tracks = append(q.tracks, q.assignIDs(tracks)...)
}

// AddAndPlay appends tracks and jumps to the first added track.
// Returns the track to play.
func (q *PlayingQueue) AddAndPlay(tracks ...Track) *Track {
	if len(tracks) == 0 {
		return nil
	}
	insertIndex := len(q.tracks)
	q.Add(tracks...)
	return q.jump(insertIndex)
}

// Replace clears the queue, adds tracks, and sets index to 0.
// Returns the first track to play.
func (q *PlayingQueue) Replace(tracks ...Track) *Track {
	q.Clear()
	if len(tracks) == 0 {
		return nil
	}
	q.Add(tracks...)
	return q.jump(0)
}

// RemoveAt removes the track at the given index.
// Adjusts currentIndex if necessary.
func (q *PlayingQueue) RemoveAt(index int) bool {
	if index < 0 || index >= len(q.tracks) {
		return false
	}
	q.tracks = slices.Delete(q.tracks, index, index+1)

	if q.currentIndex > index {
		q.currentIndex--
	} else if q.currentIndex == index && q.currentIndex >= len(q.tracks) {
		// Removed current track at the end: clamp
		q.currentIndex = len(q.tracks) - 1
	}

	// Shuffle history refers to indices; rebase it
	played := q.played[:0]
	for _, i := range q.played {
		switch {
		case i < index:
			played = append(played, i)
		case i > index:
			played = append(played, i-1)
		}
	}
	q.played = played

	return true
}

// Clear removes all tracks and resets playback.
func (q *PlayingQueue) Clear() {
	q.tracks = q.tracks[:0]
	q.currentIndex = -1
	q.played = q.played[:0]
}

// Tracks returns all tracks in the queue.
func (q *PlayingQueue) Tracks() []Track {
	return slices.Clone(q.tracks)
}

// Len returns the number of tracks in the queue.
func (q *PlayingQueue) Len() int {
	return len(q.tracks)
}

// IsEmpty returns true if the queue has no tracks.
func (q *PlayingQueue) IsEmpty() bool {
	return len(q.tracks) == 0
}

func (q *PlayingQueue) at(index int) *Track {
	if index < 0 || index >= len(q.tracks) {
		return nil
	}
	return &q.tracks[index]
}

func (q *PlayingQueue) jump(index int) *Track {
	q.currentIndex = index
	if q.shuffle {
		q.played = append(q.played, index)
	}
	return q.Current()
}

// nextIndex returns the index SkipNext would move to, or -1.
func (q *PlayingQueue) nextIndex() int {
	n := len(q.tracks)
	if n == 0 {
		return -1
	}
	if q.shuffle {
		candidates := q.unplayed()
		if len(candidates) == 0 {
			if q.repeat == RepeatOff {
				return -1
			}
			candidates = q.allExcept(q.currentIndex)
			if len(candidates) == 0 {
				return q.currentIndex
			}
		}
		return candidates[rand.IntN(len(candidates))] //nolint:gosec // shuffle order
	}
	if q.currentIndex < n-1 {
		return q.currentIndex + 1
	}
	if q.repeat != RepeatOff {
		return 0
	}
	return -1
}

func (q *PlayingQueue) unplayed() []int {
	var out []int
	for i := range len(q.tracks) {
		if i != q.currentIndex && !slices.Contains(q.played, i) {
			out = append(out, i)
		}
	}
	return out
}

func (q *PlayingQueue) allExcept(skip int) []int {
	var out []int
	for i := range len(q.tracks) {
		if i != skip {
			out = append(out, i)
		}
	}
	return out
}

func (q *PlayingQueue) assignIDs(tracks []Track) []Track {
	out := make([]Track, len(tracks))
	for i, t := range tracks {
		if t.ID == 0 {
			t.ID = q.nextID
			q.nextID++
		} else if t.ID >= q.nextID {
			q.nextID = t.ID + 1
		}
		out[i] = t
	}
	return out
}
