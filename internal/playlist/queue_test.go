//nolint:goconst // test file with repeated string literals
package playlist

import (
	"strings"
	"testing"
)

func TestNewQueue(t *testing.T) {
	q := NewQueue()

	if q.Len() != 0 {
		t.Errorf("Len() = %d, want 0", q.Len())
	}
	if q.CurrentIndex() != -1 {
		t.Errorf("CurrentIndex() = %d, want -1", q.CurrentIndex())
	}
	if q.Current() != nil {
		t.Error("Current() should be nil for empty queue")
	}
}

func TestQueue_Add(t *testing.T) {
	q := NewQueue()

	q.Add(Track{Path: "/track1.mp3"}, Track{Path: "/track2.mp3"})

	if q.Len() != 2 {
		t.Errorf("Len() = %d, want 2", q.Len())
	}
	// Add doesn't change current index
	if q.CurrentIndex() != -1 {
		t.Errorf("CurrentIndex() = %d, want -1 (unchanged)", q.CurrentIndex())
	}
}

func TestQueue_AddAndPlay(t *testing.T) {
	q := NewQueue()
	q.Add(Track{Path: "/existing.mp3"})

	track := q.AddAndPlay(Track{Path: "/new1.mp3"}, Track{Path: "/new2.mp3"})

	if q.Len() != 3 {
		t.Errorf("Len() = %d, want 3", q.Len())
	}
	if q.CurrentIndex() != 1 {
		t.Errorf("CurrentIndex() = %d, want 1", q.CurrentIndex())
	}
	if track == nil || track.Path != "/new1.mp3" {
		t.Errorf("returned track = %v, want /new1.mp3", track)
	}
}

func TestQueue_AddAndPlay_Empty(t *testing.T) {
	q := NewQueue()

	track := q.AddAndPlay()

	if track != nil {
		t.Error("AddAndPlay with no tracks should return nil")
	}
}

func TestQueue_Replace(t *testing.T) {
	q := NewQueue()
	q.Add(Track{Path: "/old1.mp3"}, Track{Path: "/old2.mp3"})
	q.JumpTo(1)

	track := q.Replace(Track{Path: "/new.mp3"})

	if q.Len() != 1 {
		t.Errorf("Len() = %d, want 1", q.Len())
	}
	if q.CurrentIndex() != 0 {
		t.Errorf("CurrentIndex() = %d, want 0", q.CurrentIndex())
	}
	if track == nil || track.Path != "/new.mp3" {
		t.Errorf("returned track = %v, want /new.mp3", track)
	}
}

func TestQueue_Replace_Empty(t *testing.T) {
	q := NewQueue()
	q.Add(Track{Path: "/old.mp3"})

	track := q.Replace()

	if q.Len() != 0 {
		t.Errorf("Len() = %d, want 0", q.Len())
	}
	if track != nil {
		t.Error("Replace with no tracks should return nil")
	}
}

func TestQueue_JumpTo(t *testing.T) {
	q := NewQueue()
	q.Add(
		Track{Path: "/track0.mp3"},
		Track{Path: "/track1.mp3"},
		Track{Path: "/track2.mp3"},
	)

	track := q.JumpTo(1)

	if q.CurrentIndex() != 1 {
		t.Errorf("CurrentIndex() = %d, want 1", q.CurrentIndex())
	}
	if track == nil || track.Path != "/track1.mp3" {
		t.Errorf("JumpTo returned %v, want /track1.mp3", track)
	}
}

func TestQueue_JumpTo_Invalid(t *testing.T) {
	q := NewQueue()
	q.Add(Track{Path: "/track.mp3"})

	track := q.JumpTo(5)

	if track != nil {
		t.Error("JumpTo with invalid index should return nil")
	}
}

func TestQueue_Next_Normal(t *testing.T) {
	q := NewQueue()
	q.Add(
		Track{Path: "/track0.mp3"},
		Track{Path: "/track1.mp3"},
		Track{Path: "/track2.mp3"},
	)
	q.JumpTo(0)

	track := q.Next()

	if q.CurrentIndex() != 1 {
		t.Errorf("CurrentIndex() = %d, want 1", q.CurrentIndex())
	}
	if track == nil || track.Path != "/track1.mp3" {
		t.Errorf("Next() = %v, want /track1.mp3", track)
	}
}

func TestQueue_Next_AtEnd_NoRepeat(t *testing.T) {
	q := NewQueue()
	q.Add(Track{Path: "/track0.mp3"}, Track{Path: "/track1.mp3"})
	q.JumpTo(1) // at last track

	track := q.Next()

	if track != nil {
		t.Error("Next() at end with RepeatOff should return nil")
	}
}

func TestQueue_Next_AtEnd_RepeatAll(t *testing.T) {
	q := NewQueue()
	q.Add(Track{Path: "/track0.mp3"}, Track{Path: "/track1.mp3"})
	q.JumpTo(1)
	q.SetRepeatMode(RepeatAll)

	track := q.Next()

	if q.CurrentIndex() != 0 {
		t.Errorf("CurrentIndex() = %d, want 0 (wrapped)", q.CurrentIndex())
	}
	if track == nil || track.Path != "/track0.mp3" {
		t.Errorf("Next() = %v, want /track0.mp3", track)
	}
}

func TestQueue_Next_RepeatOne(t *testing.T) {
	q := NewQueue()
	q.Add(Track{Path: "/track0.mp3"}, Track{Path: "/track1.mp3"})
	q.JumpTo(0)
	q.SetRepeatMode(RepeatOne)

	track := q.Next()

	if q.CurrentIndex() != 0 {
		t.Errorf("CurrentIndex() = %d, want 0 (same track)", q.CurrentIndex())
	}
	if track == nil || track.Path != "/track0.mp3" {
		t.Errorf("Next() = %v, want /track0.mp3", track)
	}
}

func TestQueue_HasNext(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(*PlayingQueue)
		wantHas bool
	}{
		{
			name:    "empty queue",
			setup:   func(_ *PlayingQueue) {},
			wantHas: false,
		},
		{
			name: "no current track with tracks in queue",
			setup: func(q *PlayingQueue) {
				q.Add(Track{Path: "/a.mp3"}, Track{Path: "/b.mp3"})
			},
			wantHas: false,
		},
		{
			name: "at start",
			setup: func(q *PlayingQueue) {
				q.Add(Track{Path: "/a.mp3"}, Track{Path: "/b.mp3"})
				q.JumpTo(0)
			},
			wantHas: true,
		},
		{
			name: "at end",
			setup: func(q *PlayingQueue) {
				q.Add(Track{Path: "/a.mp3"})
				q.JumpTo(0)
			},
			wantHas: false,
		},
		{
			name: "shuffle with unplayed tracks",
			setup: func(q *PlayingQueue) {
				q.Add(Track{Path: "/a.mp3"}, Track{Path: "/b.mp3"})
				q.JumpTo(0)
				q.SetShuffle(true)
			},
			wantHas: true,
		},
		{
			name: "shuffle with everything played",
			setup: func(q *PlayingQueue) {
				q.Add(Track{Path: "/a.mp3"})
				q.JumpTo(0)
				q.SetShuffle(true)
			},
			wantHas: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQueue()
			tt.setup(q)

			got := q.HasNext()
			if got != tt.wantHas {
				t.Errorf("HasNext() = %v, want %v", got, tt.wantHas)
			}
		})
	}
}

func TestQueue_SkipNext_LeavesRepeatOneTrack(t *testing.T) {
	q := NewQueue()
	q.Add(Track{Path: "/track0.mp3"}, Track{Path: "/track1.mp3"})
	q.JumpTo(0)
	q.SetRepeatMode(RepeatOne)

	track := q.SkipNext()

	if track == nil || track.Path != "/track1.mp3" {
		t.Errorf("SkipNext() = %v, want /track1.mp3", track)
	}
}

func TestQueue_Previous(t *testing.T) {
	q := NewQueue()
	q.Add(Track{Path: "/a.mp3"}, Track{Path: "/b.mp3"})
	q.JumpTo(1)

	if !q.HasPrevious() {
		t.Fatal("HasPrevious() = false at index 1")
	}
	if tr := q.Previous(); tr == nil || tr.Path != "/a.mp3" {
		t.Errorf("Previous() = %v, want /a.mp3", tr)
	}
	if q.Previous() != nil {
		t.Error("Previous() at start with RepeatOff should return nil")
	}

	q.SetRepeatMode(RepeatAll)
	if tr := q.Previous(); tr == nil || tr.Path != "/b.mp3" {
		t.Errorf("Previous() with RepeatAll = %v, want /b.mp3 (wrap)", tr)
	}
}

func TestQueue_ShuffleVisitsEveryTrackOnce(t *testing.T) {
	q := NewQueue()
	for _, p := range []string{"/a.mp3", "/b.mp3", "/c.mp3", "/d.mp3", "/e.mp3"} {
		q.Add(Track{Path: p})
	}
	q.JumpTo(0)
	q.SetShuffle(true)

	seen := map[string]bool{"/a.mp3": true}
	for {
		tr := q.Next()
		if tr == nil {
			break
		}
		if seen[tr.Path] {
			t.Fatalf("track %s played twice in one shuffle round", tr.Path)
		}
		seen[tr.Path] = true
	}
	if len(seen) != 5 {
		t.Errorf("visited %d tracks, want 5", len(seen))
	}
}

func TestQueue_ShufflePreviousWalksHistory(t *testing.T) {
	q := NewQueue()
	q.Add(Track{Path: "/a.mp3"}, Track{Path: "/b.mp3"}, Track{Path: "/c.mp3"})
	q.JumpTo(0)
	q.SetShuffle(true)

	first := q.Next()
	if first == nil {
		t.Fatal("Next() = nil with unplayed tracks")
	}
	if tr := q.Previous(); tr == nil || tr.Path != "/a.mp3" {
		t.Errorf("Previous() = %v, want /a.mp3", tr)
	}
	if q.HasPrevious() {
		t.Error("HasPrevious() = true at start of shuffle history")
	}
}

func TestQueue_ShuffleRepeatAllStartsNewRound(t *testing.T) {
	q := NewQueue()
	q.Add(Track{Path: "/a.mp3"}, Track{Path: "/b.mp3"})
	q.JumpTo(0)
	q.SetShuffle(true)
	q.SetRepeatMode(RepeatAll)

	for i := range 6 {
		if q.Next() == nil {
			t.Fatalf("Next() = nil on step %d with RepeatAll", i)
		}
	}
}

func TestQueue_AssignsStableIDs(t *testing.T) {
	q := NewQueue()
	q.Add(Track{Path: "/a.mp3"}, Track{Path: "/b.mp3", ID: 10})
	q.Add(Track{Path: "/c.mp3"})

	tracks := q.Tracks()
	if tracks[0].ID != 1 || tracks[1].ID != 10 || tracks[2].ID != 11 {
		t.Errorf("IDs = %d,%d,%d; want 1,10,11", tracks[0].ID, tracks[1].ID, tracks[2].ID)
	}
}

func TestQueue_RemoveAt(t *testing.T) {
	t.Run("remove before current", func(t *testing.T) {
		q := NewQueue()
		q.Add(Track{Path: "/a.mp3"}, Track{Path: "/b.mp3"}, Track{Path: "/c.mp3"})
		q.JumpTo(2)

		ok := q.RemoveAt(0)

		if !ok {
			t.Error("RemoveAt should return true")
		}
		if q.Len() != 2 {
			t.Errorf("Len() = %d, want 2", q.Len())
		}
		if q.CurrentIndex() != 1 {
			t.Errorf("CurrentIndex() = %d, want 1 (adjusted)", q.CurrentIndex())
		}
	})

	t.Run("remove current at end clamps", func(t *testing.T) {
		q := NewQueue()
		q.Add(Track{Path: "/a.mp3"}, Track{Path: "/b.mp3"})
		q.JumpTo(1)

		q.RemoveAt(1)

		if q.CurrentIndex() != 0 {
			t.Errorf("CurrentIndex() = %d, want 0", q.CurrentIndex())
		}
	})

	t.Run("remove after current", func(t *testing.T) {
		q := NewQueue()
		q.Add(Track{Path: "/a.mp3"}, Track{Path: "/b.mp3"}, Track{Path: "/c.mp3"})
		q.JumpTo(0)

		q.RemoveAt(2)

		if q.CurrentIndex() != 0 {
			t.Errorf("CurrentIndex() = %d, want 0 (unchanged)", q.CurrentIndex())
		}
	})
}

func TestQueue_Clear(t *testing.T) {
	q := NewQueue()
	q.Add(Track{Path: "/a.mp3"}, Track{Path: "/b.mp3"})
	q.JumpTo(1)

	q.Clear()

	if q.Len() != 0 {
		t.Errorf("Len() = %d, want 0", q.Len())
	}
	if q.CurrentIndex() != -1 {
		t.Errorf("CurrentIndex() = %d, want -1", q.CurrentIndex())
	}
}

func TestQueue_CycleRepeatMode(t *testing.T) {
	q := NewQueue()

	if q.RepeatMode() != RepeatOff {
		t.Errorf("initial RepeatMode() = %v, want RepeatOff", q.RepeatMode())
	}

	want := []RepeatMode{RepeatAll, RepeatOne, RepeatOff}
	for i, w := range want {
		if got := q.CycleRepeatMode(); got != w {
			t.Errorf("after cycle %d = %v, want %v", i+1, got, w)
		}
	}
}

func TestQueue_ToggleShuffle(t *testing.T) {
	q := NewQueue()

	if q.Shuffle() {
		t.Error("initial Shuffle() should be false")
	}
	if !q.ToggleShuffle() {
		t.Error("ToggleShuffle() should return true")
	}
	if q.ToggleShuffle() {
		t.Error("ToggleShuffle() should return false")
	}
}

func TestPlayingQueue_PeekNext(t *testing.T) {
	q := NewQueue()
	track1 := Track{Path: "/music/track1.mp3", Title: "Track 1"}
	track2 := Track{Path: "/music/track2.mp3", Title: "Track 2"}
	track3 := Track{Path: "/music/track3.mp3", Title: "Track 3"}

	if q.PeekNext() != nil {
		t.Error("PeekNext() on empty queue should return nil")
	}

	q.Replace(track1, track2, track3)
	q.JumpTo(0)

	next := q.PeekNext()
	if next == nil || next.Path != track2.Path {
		t.Fatalf("PeekNext() = %v, want %s", next, track2.Path)
	}
	if q.CurrentIndex() != 0 {
		t.Errorf("CurrentIndex() = %d, want 0 (position unchanged)", q.CurrentIndex())
	}

	q.JumpTo(2)
	if q.PeekNext() != nil {
		t.Error("PeekNext() at last track with RepeatOff should return nil")
	}

	q.SetRepeatMode(RepeatAll)
	if next = q.PeekNext(); next == nil || next.Path != track1.Path {
		t.Errorf("PeekNext() = %v, want %s (wrap to first)", next, track1.Path)
	}

	q.SetRepeatMode(RepeatOne)
	q.JumpTo(1)
	if next = q.PeekNext(); next == nil || next.Path != track2.Path {
		t.Errorf("PeekNext() = %v, want %s (repeat one)", next, track2.Path)
	}
}

func TestParseRepeatMode(t *testing.T) {
	for _, m := range []RepeatMode{RepeatOff, RepeatAll, RepeatOne} {
		got, ok := ParseRepeatMode(strings.ToLower(m.String()))
		if !ok || got != m {
			t.Errorf("ParseRepeatMode(%q) = %v, %v", m.String(), got, ok)
		}
	}
	if _, ok := ParseRepeatMode("radio"); ok {
		t.Error("ParseRepeatMode(radio) should fail")
	}
}

func TestQueue_TracksReturnsCopy(t *testing.T) {
	q := NewQueue()
	q.Add(Track{Path: "/a.mp3"})

	tracks := q.Tracks()
	tracks[0].Path = "/modified.mp3"

	if q.Tracks()[0].Path != "/a.mp3" {
		t.Error("Tracks() should return a copy")
	}
}

func TestQueue_RemoveAt_InvalidIndex(t *testing.T) {
	q := NewQueue()
	q.Add(Track{Path: "/a.mp3"})
	q.JumpTo(0)

	for _, idx := range []int{-1, 1, 5} {
		if q.RemoveAt(idx) {
			t.Errorf("RemoveAt(%d) = true, want false", idx)
		}
	}
	if q.Len() != 1 || q.CurrentIndex() != 0 {
		t.Errorf("queue changed: len %d, index %d", q.Len(), q.CurrentIndex())
	}
}
