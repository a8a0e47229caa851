package playlist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("not really audio"), 0o644))
}

func TestTrack_DisplayArtist(t *testing.T) {
	assert.Equal(t, "A", (&Track{Artist: "A", AlbumArtist: "B"}).DisplayArtist())
	assert.Equal(t, "B", (&Track{AlbumArtist: "B"}).DisplayArtist())
	assert.Empty(t, (&Track{}).DisplayArtist())
}

func TestFromPath_UntaggedFileUsesFileName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "01 - Untitled.mp3")
	touch(t, path)

	track := FromPath(path)
	assert.Equal(t, path, track.Path)
	assert.Equal(t, "01 - Untitled.mp3", track.Title)
	assert.Empty(t, track.Artwork)
}

func TestCollect(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "album")
	for _, name := range []string{"c.opus", "b.flac", "a.mp3", "notes.txt", "cover.jpg"} {
		touch(t, filepath.Join(sub, name))
	}
	single := filepath.Join(dir, "single.mp3")
	touch(t, single)

	tracks, err := Collect([]string{single, sub})
	require.NoError(t, err)

	var paths []string
	for _, tr := range tracks {
		paths = append(paths, tr.Path)
	}
	assert.Equal(t, []string{
		single,
		filepath.Join(sub, "a.mp3"),
		filepath.Join(sub, "b.flac"),
		filepath.Join(sub, "c.opus"),
	}, paths)
}

func TestCollect_MissingPath(t *testing.T) {
	_, err := Collect([]string{"/does/not/exist.mp3"})
	assert.Error(t, err)
}
