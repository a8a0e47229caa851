// Package notify renders the playback status surface as a freedesktop
// desktop notification.
package notify

import (
	"time"

	"github.com/godbus/dbus/v5"
)

const appName = "wavesd"

// Urgency is the freedesktop urgency hint.
type Urgency byte

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

// Notification is one Notify call. Replaces reuses an id the server handed
// out earlier so the popup is updated in place.
type Notification struct {
	Summary  string
	Body     string
	Icon     string
	Replaces uint32
	Urgency  Urgency
	Resident bool
	Category string

	// Expire is how long the popup stays up: zero keeps it until closed,
	// a negative value leaves the choice to the server.
	Expire time.Duration
}

func (n Notification) expireMillis() int32 {
	if n.Expire < 0 {
		return -1
	}
	return int32(min(n.Expire.Milliseconds(), 1<<31-1)) //nolint:gosec // clamped
}

func (n Notification) hints() map[string]dbus.Variant {
	h := map[string]dbus.Variant{
		"urgency":       dbus.MakeVariant(byte(n.Urgency)),
		"desktop-entry": dbus.MakeVariant(appName),
	}
	if n.Resident {
		h["resident"] = dbus.MakeVariant(true)
	}
	if n.Category != "" {
		h["category"] = dbus.MakeVariant(n.Category)
	}
	return h
}

// notifyArgs lays out the arguments of org.freedesktop.Notifications.Notify.
func (n Notification) notifyArgs() []any {
	return []any{appName, n.Replaces, n.Icon, n.Summary, n.Body, []string{}, n.hints(), n.expireMillis()}
}

// Notifier talks to a notification server.
type Notifier interface {
	// Notify shows or replaces a notification and returns its id. Zero
	// with a nil error means nothing was shown.
	Notify(n Notification) (uint32, error)
	Close(id uint32) error
}

type nopNotifier struct{}

func (nopNotifier) Notify(Notification) (uint32, error) { return 0, nil }
func (nopNotifier) Close(uint32) error                  { return nil }
