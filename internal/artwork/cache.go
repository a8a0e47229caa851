package artwork

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/jpeg" // cover decoders
	"image/png"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/nfnt/resize"
	"github.com/spf13/afero"
)

const (
	cacheMaxAge = 30 * 24 * time.Hour // 30 days

	// DefaultSize is the thumbnail edge length in pixels.
	DefaultSize = 256
)

// Cache stores resized cover thumbnails as PNG files.
type Cache struct {
	fs   afero.Fs
	dir  string
	size int
}

// NewCache creates a thumbnail cache in dir on fs.
func NewCache(fs afero.Fs, dir string, size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{fs: fs, dir: dir, size: size}, nil
}

// cacheKey generates a unique key for a track at a thumbnail size.
func cacheKey(trackPath string, size int) string {
	data := fmt.Sprintf("%s:%d", trackPath, size)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// Thumbnail returns the path of a cached thumbnail for the track, creating
// it on first use. Returns ErrNoArtwork if the track has no cover.
func (c *Cache) Thumbnail(trackPath string) (string, error) {
	path := filepath.Join(c.dir, cacheKey(trackPath, c.size)+".png")

	if _, err := c.fs.Stat(path); err == nil {
		// Touch the file to keep frequently used entries fresh
		now := time.Now()
		_ = c.fs.Chtimes(path, now, now) //nolint:errcheck // best-effort
		return path, nil
	}

	data, err := Extract(c.fs, trackPath)
	if err != nil {
		return "", err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode cover: %w", err)
	}

	size := uint(c.size) //nolint:gosec // size is positive
	thumb := resize.Thumbnail(size, size, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := png.Encode(&buf, thumb); err != nil {
		return "", fmt.Errorf("encode thumbnail: %w", err)
	}
	if err := afero.WriteFile(c.fs, path, buf.Bytes(), 0o600); err != nil {
		return "", err
	}
	return path, nil
}

// Prune removes thumbnails not used for 30 days.
func (c *Cache) Prune() {
	entries, err := afero.ReadDir(c.fs, c.dir)
	if err != nil {
		return
	}

	cutoff := time.Now().Add(-cacheMaxAge)
	var freed uint64
	var removed int
	for _, info := range entries {
		if info.IsDir() || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := c.fs.Remove(filepath.Join(c.dir, info.Name())); err == nil {
			freed += uint64(info.Size()) //nolint:gosec // file sizes are positive
			removed++
		}
	}
	if removed > 0 {
		slog.Info("pruned artwork cache", "files", removed, "freed", humanize.Bytes(freed))
	}
}
