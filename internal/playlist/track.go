// Package playlist holds the playing queue and builds tracks from files.
package playlist

import "time"

// Track is one queue entry. ID stays with the entry when the queue is
// reordered or saved.
type Track struct {
	ID          int64
	Path        string
	Title       string
	Artist      string
	AlbumArtist string
	Album       string
	Genre       string
	TrackNumber int
	Duration    time.Duration
	Artwork     string // cover identifier, empty without a cover
}

// DisplayArtist returns the artist, falling back to the album artist.
func (t *Track) DisplayArtist() string {
	if t.Artist != "" {
		return t.Artist
	}
	return t.AlbumArtist
}
