// Package wakelock keeps the host from sleeping while audio plays.
package wakelock

import "log/slog"

// Lock is a platform keep-awake primitive.
type Lock interface {
	Acquire() error
	Release() error
}

// Manager holds at most one Lock acquisition. Acquire and Release are
// idempotent. Manager is not safe for concurrent use; the coordinator owns it.
type Manager struct {
	lock Lock
	held bool
}

// NewManager wraps lock.
func NewManager(lock Lock) *Manager {
	return &Manager{lock: lock}
}

// Acquire takes the lock unless already held.
func (m *Manager) Acquire() error {
	if m.held {
		return nil
	}
	if err := m.lock.Acquire(); err != nil {
		return err
	}
	m.held = true
	slog.Debug("wake lock acquired")
	return nil
}

// Release drops the lock if held.
func (m *Manager) Release() error {
	if !m.held {
		return nil
	}
	m.held = false
	slog.Debug("wake lock released")
	return m.lock.Release()
}

// Held reports whether the lock is currently held.
func (m *Manager) Held() bool {
	return m.held
}

// Nop is a Lock that does nothing.
type Nop struct{}

func (Nop) Acquire() error { return nil }
func (Nop) Release() error { return nil }
