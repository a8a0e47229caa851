//go:build unix

// Package stderr captures output that C libraries (ALSA, minimp3) write
// directly to file descriptor 2, bypassing Go's os.Stderr, and hands it to
// the daemon log line by line.
package stderr

import (
	"bufio"
	"io"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

// Capture redirects fd 2 into a pipe. Lines read from the pipe go to the
// handler given to Start.
type Capture struct {
	orig *os.File
	r, w *os.File
	done chan struct{}
}

// Start begins capturing stderr. It must run before any C library writes.
// On error the program can continue without capture.
func Start(handle func(line string)) (*Capture, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}

	origFD, err := unix.Dup(int(os.Stderr.Fd()))
	if err != nil {
		r.Close()
		w.Close()
		return nil, err
	}

	if err := unix.Dup2(int(w.Fd()), int(os.Stderr.Fd())); err != nil {
		unix.Close(origFD)
		r.Close()
		w.Close()
		return nil, err
	}

	c := &Capture{
		orig: os.NewFile(uintptr(origFD), "stderr"),
		r:    r,
		w:    w,
		done: make(chan struct{}),
	}
	go c.forward(handle)
	return c, nil
}

func (c *Capture) forward(handle func(line string)) {
	defer close(c.done)
	scanner := bufio.NewScanner(c.r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			handle(line)
		}
	}
}

// Original writes to the stderr that was in place before Start.
func (c *Capture) Original() io.Writer {
	return c.orig
}

// Stop restores the original stderr and waits for the remaining lines.
func (c *Capture) Stop() {
	_ = unix.Dup2(int(c.orig.Fd()), int(os.Stderr.Fd()))
	// fd 2 no longer references the pipe, so closing w ends the reader
	c.w.Close()
	<-c.done
	c.r.Close()
	c.orig.Close()
}
