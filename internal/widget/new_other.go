//go:build !linux

package widget

// New returns a no-op broadcaster on non-Linux platforms.
func New() (Broadcaster, error) {
	return Nop{}, nil
}
