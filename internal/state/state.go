// Package state persists the playing queue and the Last.fm session in a
// SQLite database.
package state

import (
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/llehouerou/wavesd/internal/errmsg"
)

const (
	appName      = "wavesd"
	dbFileName   = "wavesd.db"
	saveDebounce = 500 * time.Millisecond

	memoryDSN = ":memory:"
)

// Manager owns the state database. All methods are safe for concurrent use.
type Manager struct {
	db        *sql.DB
	saveMu    sync.Mutex
	saveTimer *time.Timer
	pending   *QueueState
}

// Open opens the database at path, creating it and its directory when
// missing. An empty path selects $XDG_DATA_HOME/wavesd/wavesd.db.
func Open(path string) (*Manager, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}
	if path != memoryDSN {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection keeps in-memory databases shared and serializes writers
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Manager{db: db}, nil
}

// DefaultPath returns the database location under the XDG data directory.
func DefaultPath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, dbFileName))
}

// Close flushes a pending queue save and closes the database.
func (m *Manager) Close() error {
	m.saveMu.Lock()
	if m.saveTimer != nil {
		m.saveTimer.Stop()
		m.saveTimer = nil
	}
	pending := m.pending
	m.pending = nil
	m.saveMu.Unlock()

	if pending != nil {
		if err := saveQueue(m.db, *pending); err != nil {
			slog.Warn(errmsg.Format(errmsg.OpQueueSave, err))
		}
	}

	return m.db.Close()
}

// GetQueue returns the saved queue. An empty queue has CurrentIndex -1.
func (m *Manager) GetQueue() (*QueueState, error) {
	return getQueue(m.db)
}

// SaveQueue schedules state to be written. Saves within the debounce window
// replace each other; only the last one is written.
func (m *Manager) SaveQueue(state QueueState) {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	m.pending = &state

	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}

	m.saveTimer = time.AfterFunc(saveDebounce, m.flush)
}

func (m *Manager) flush() {
	m.saveMu.Lock()
	pending := m.pending
	m.pending = nil
	m.saveTimer = nil
	m.saveMu.Unlock()

	if pending == nil {
		return
	}
	if err := saveQueue(m.db, *pending); err != nil {
		slog.Warn(errmsg.Format(errmsg.OpQueueSave, err))
	}
}
