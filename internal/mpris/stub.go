//go:build !linux

package mpris

import "github.com/llehouerou/wavesd/internal/session"

// Host is a no-op on non-Linux platforms.
type Host struct{}

// New returns a no-op host on non-Linux platforms.
func New() (*Host, error) {
	return &Host{}, nil
}

// Serve is a no-op on non-Linux platforms.
func (h *Host) Serve(Controller) {}

// Close is a no-op on non-Linux platforms.
func (h *Host) Close() error {
	return nil
}

func (h *Host) SetPlaybackState(session.Snapshot) error { return nil }
func (h *Host) SetActive(bool) error                    { return nil }
func (h *Host) SetMetadata(session.Metadata) error      { return nil }
func (h *Host) SetQueue([]session.QueueItem) error      { return nil }
