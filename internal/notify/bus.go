//go:build linux

package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	notifyService = "org.freedesktop.Notifications"
	notifyPath    = "/org/freedesktop/Notifications"
	notifyIface   = "org.freedesktop.Notifications"
	callTimeout   = 2 * time.Second
)

type busNotifier struct {
	obj dbus.BusObject
}

// New connects to the session bus notification server. Without a session
// bus it returns a notifier that shows nothing.
func New() (Notifier, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		slog.Debug("notifications disabled", "error", err)
		return nopNotifier{}, nil
	}
	return &busNotifier{obj: conn.Object(notifyService, notifyPath)}, nil
}

func (b *busNotifier) Notify(n Notification) (uint32, error) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	var id uint32
	err := b.obj.CallWithContext(ctx, notifyIface+".Notify", 0, n.notifyArgs()...).Store(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (b *busNotifier) Close(id uint32) error {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	return b.obj.CallWithContext(ctx, notifyIface+".CloseNotification", 0, id).Err
}
