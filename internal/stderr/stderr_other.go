//go:build !unix

package stderr

import (
	"io"
	"os"
)

// Capture is a no-op where fd redirection is unavailable.
type Capture struct{}

// Start is a no-op on this platform.
func Start(func(line string)) (*Capture, error) {
	return &Capture{}, nil
}

// Original returns os.Stderr.
func (c *Capture) Original() io.Writer { return os.Stderr }

// Stop is a no-op on this platform.
func (c *Capture) Stop() {}
