// Package artwork locates cover art for tracks and keeps a cache of resized
// thumbnails for the status surface and session metadata.
package artwork

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/spf13/afero"
)

// ErrNoArtwork is returned when a track has neither embedded nor folder art.
var ErrNoArtwork = errors.New("no artwork")

const embeddedPrefix = "embedded:"

// coverNames lists common album art filenames in priority order.
var coverNames = []string{
	"cover.jpg", "cover.png", "cover.jpeg",
	"folder.jpg", "folder.png", "folder.jpeg",
	"album.jpg", "album.png", "album.jpeg",
	"front.jpg", "front.png", "front.jpeg",
}

// FolderCover looks for album art in the same directory as the track.
// Returns the path to the art file, or empty string if not found.
func FolderCover(fs afero.Fs, trackPath string) string {
	dir := filepath.Dir(trackPath)
	for _, name := range coverNames {
		for _, candidate := range []string{name, strings.ToUpper(name)} {
			path := filepath.Join(dir, candidate)
			if info, err := fs.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
	}
	return ""
}

// Identify returns a cover identifier for a track on the OS filesystem:
// the folder cover path if there is one, otherwise an embedded-art marker
// when hasEmbedded is set, otherwise "".
func Identify(trackPath string, hasEmbedded bool) string {
	if p := FolderCover(afero.NewOsFs(), trackPath); p != "" {
		return p
	}
	if hasEmbedded {
		return embeddedPrefix + trackPath
	}
	return ""
}

// FileURL returns a file:// URL for a folder cover identifier, or "" for
// embedded or missing art.
func FileURL(identifier string) string {
	if identifier == "" || strings.HasPrefix(identifier, embeddedPrefix) {
		return ""
	}
	return "file://" + identifier
}

// Extract reads cover art for a track. Embedded art wins over folder art.
func Extract(fs afero.Fs, trackPath string) ([]byte, error) {
	data, err := extractEmbedded(fs, trackPath)
	if err == nil && data != nil {
		return data, nil
	}

	p := FolderCover(fs, trackPath)
	if p == "" {
		return nil, ErrNoArtwork
	}
	return afero.ReadFile(fs, p)
}

func extractEmbedded(fs afero.Fs, trackPath string) ([]byte, error) {
	f, err := fs.Open(trackPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoArtwork
		}
		return nil, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, err
	}
	pic := m.Picture()
	if pic == nil || len(pic.Data) == 0 {
		return nil, nil
	}
	return pic.Data, nil
}
