//go:build !linux

package wakelock

// New returns a no-op lock on non-Linux platforms.
func New() (Lock, error) {
	return Nop{}, nil
}
