package wakelock

import (
	"errors"
	"testing"
)

type countingLock struct {
	acquires, releases int
	acquireErr         error
}

func (l *countingLock) Acquire() error {
	l.acquires++
	return l.acquireErr
}

func (l *countingLock) Release() error {
	l.releases++
	return nil
}

func TestManager_AcquireIsIdempotent(t *testing.T) {
	l := &countingLock{}
	m := NewManager(l)

	for range 3 {
		if err := m.Acquire(); err != nil {
			t.Fatalf("Acquire() error: %v", err)
		}
	}

	if !m.Held() {
		t.Error("Held() = false after Acquire")
	}
	if l.acquires != 1 {
		t.Errorf("underlying acquires = %d, want 1", l.acquires)
	}
}

func TestManager_ReleaseIsIdempotent(t *testing.T) {
	l := &countingLock{}
	m := NewManager(l)

	_ = m.Release() // not held
	_ = m.Acquire()
	_ = m.Release()
	_ = m.Release()

	if m.Held() {
		t.Error("Held() = true after Release")
	}
	if l.releases != 1 {
		t.Errorf("underlying releases = %d, want 1", l.releases)
	}
}

func TestManager_AcquireFailureLeavesReleased(t *testing.T) {
	l := &countingLock{acquireErr: errors.New("denied")}
	m := NewManager(l)

	if err := m.Acquire(); err == nil {
		t.Fatal("Acquire() should fail")
	}
	if m.Held() {
		t.Error("Held() = true after failed Acquire")
	}
	_ = m.Release()
	if l.releases != 0 {
		t.Errorf("underlying releases = %d, want 0", l.releases)
	}
}

func TestManager_AlternatingSequenceHoldsAtMostOnce(t *testing.T) {
	l := &countingLock{}
	m := NewManager(l)

	seq := []bool{true, true, false, true, false, false, true}
	for _, acquire := range seq {
		if acquire {
			_ = m.Acquire()
		} else {
			_ = m.Release()
		}
		outstanding := l.acquires - l.releases
		if outstanding < 0 || outstanding > 1 {
			t.Fatalf("outstanding holds = %d", outstanding)
		}
	}
}
