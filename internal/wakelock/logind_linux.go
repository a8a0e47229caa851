//go:build linux

package wakelock

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	logindDest      = "org.freedesktop.login1"
	logindPath      = "/org/freedesktop/login1"
	logindInterface = "org.freedesktop.login1.Manager"
)

// inhibitor takes a logind "block" inhibitor for sleep and idle. The lock is
// held for as long as the returned file descriptor stays open.
type inhibitor struct {
	obj dbus.BusObject

	mu sync.Mutex
	fd *os.File
}

// New returns a logind-backed Lock. Returns a no-op lock if the system bus is
// unavailable.
func New() (Lock, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return Nop{}, nil //nolint:nilerr // graceful fallback when D-Bus unavailable
	}
	return &inhibitor{obj: conn.Object(logindDest, logindPath)}, nil
}

func (i *inhibitor) Acquire() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.fd != nil {
		return nil
	}

	call := i.obj.Call(
		logindInterface+".Inhibit",
		0,
		"sleep:idle",     // what
		"wavesd",         // who
		"Audio playback", // why
		"block",          // mode
	)
	if call.Err != nil {
		return fmt.Errorf("logind inhibit: %w", call.Err)
	}

	var fd dbus.UnixFD
	if err := call.Store(&fd); err != nil {
		return fmt.Errorf("logind inhibit: %w", err)
	}
	if fd < 0 {
		return errors.New("logind inhibit: invalid file descriptor")
	}
	i.fd = os.NewFile(uintptr(fd), "logind-inhibit")
	return nil
}

func (i *inhibitor) Release() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.fd == nil {
		return nil
	}
	err := i.fd.Close()
	i.fd = nil
	return err
}
