//go:build linux

package widget

import (
	"github.com/godbus/dbus/v5"
)

const (
	dbusWidgetPath      = "/org/waves/wavesd/Widget"
	dbusWidgetInterface = "org.waves.wavesd.Widget"
)

// dbusBroadcaster emits widget broadcasts as session bus signals.
type dbusBroadcaster struct {
	conn *dbus.Conn
}

// New returns a Broadcaster emitting D-Bus signals. Returns a no-op
// broadcaster if the session bus is unavailable.
func New() (Broadcaster, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return Nop{}, nil //nolint:nilerr // graceful fallback when D-Bus unavailable
	}
	return &dbusBroadcaster{conn: conn}, nil
}

func (b *dbusBroadcaster) emit(member string, values ...any) error {
	return b.conn.Emit(dbus.ObjectPath(dbusWidgetPath), dbusWidgetInterface+"."+member, values...)
}

func (b *dbusBroadcaster) SendState(s State) error {
	return b.emit("State", s.Title, s.Artist, s.Playing)
}

func (b *dbusBroadcaster) SendCover(identifier string) error {
	return b.emit("Cover", identifier)
}

func (b *dbusBroadcaster) SendPosition(fraction float32) error {
	return b.emit("Position", float64(fraction))
}

func (b *dbusBroadcaster) SendMetaChanged(m Meta) error {
	return b.emit("MetaChanged", m.Track, m.Artist, m.Album, m.Duration.Milliseconds(), m.Playing)
}
