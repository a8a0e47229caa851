package playlist

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/dhowden/tag"

	"github.com/llehouerou/wavesd/internal/artwork"
	"github.com/llehouerou/wavesd/internal/player"
)

// FromPath creates a playlist track from a file path by reading its tags.
// Falls back to the file name when the file has no readable tags.
func FromPath(path string) Track {
	t := Track{
		Path:  path,
		Title: filepath.Base(path),
	}

	f, err := os.Open(path)
	if err != nil {
		t.Artwork = artwork.Identify(path, false)
		return t
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		t.Artwork = artwork.Identify(path, false)
		return t
	}

	t.Artwork = artwork.Identify(path, m.Picture() != nil)
	if m.Title() != "" {
		t.Title = m.Title()
	}
	t.Artist = m.Artist()
	t.AlbumArtist = m.AlbumArtist()
	if t.AlbumArtist == "" {
		t.AlbumArtist = m.Artist()
	}
	t.Album = m.Album()
	t.Genre = m.Genre()
	t.TrackNumber, _ = m.Track()
	return t
}

// Collect expands paths into tracks. Directories are walked recursively
// and their music files sorted by path; unsupported files are skipped.
func Collect(paths []string) ([]Track, error) {
	var tracks []Track
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if player.Supported(p) {
				tracks = append(tracks, FromPath(p))
			}
			continue
		}

		var dirTracks []Track
		err = filepath.WalkDir(p, func(path string, d os.DirEntry, walkErr error) error {
			if walkErr != nil {
				// Skip directories/files with errors, continue walking
				return nil //nolint:nilerr // intentionally skipping errors
			}
			if d.IsDir() || !player.Supported(path) {
				return nil
			}
			dirTracks = append(dirTracks, FromPath(path))
			return nil
		})
		if err != nil {
			return nil, err
		}
		sort.Slice(dirTracks, func(i, j int) bool {
			return dirTracks[i].Path < dirTracks[j].Path
		})
		tracks = append(tracks, dirTracks...)
	}
	return tracks, nil
}
