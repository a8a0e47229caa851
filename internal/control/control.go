// Package control exposes the daemon on the session bus so that other
// processes can deliver broadcasts, focus changes and queue loads, and read
// the coordinator status.
package control

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/llehouerou/wavesd/internal/focus"
	"github.com/llehouerou/wavesd/internal/playback"
	"github.com/llehouerou/wavesd/internal/playlist"
)

const (
	BusName    = "org.waves.wavesd"
	ObjectPath = dbus.ObjectPath("/org/waves/wavesd")
	Interface  = "org.waves.wavesd.Control"

	errInvalidArgs = "org.waves.wavesd.Error.InvalidArgs"
)

// ErrNameTaken is returned when another daemon owns the bus name.
var ErrNameTaken = errors.New("bus name already taken")

// Controller is what the control object drives.
type Controller interface {
	Signal(sig playback.Signal)
	HandleFocus(c focus.Change)
	LoadPaths(paths []string, index int) error
	EnqueuePaths(paths []string, play bool) error
	Remove(index int) error
	SetRepeat(mode playlist.RepeatMode)
	CycleRepeat() playlist.RepeatMode
	SetShuffle(on bool)
	ToggleShuffle() bool
	SetPresentation(detached bool)
	Status() (playback.Status, error)
}

// object is exported on the bus. Method names and signatures are the D-Bus
// interface.
type object struct {
	ctrl Controller
}

func invalidArgs(format string, args ...any) *dbus.Error {
	return dbus.NewError(errInvalidArgs, []any{fmt.Sprintf(format, args...)})
}

func (o *object) Signal(name string) *dbus.Error {
	sig, ok := playback.ParseSignal(name)
	if !ok {
		return invalidArgs("unknown signal %q", name)
	}
	o.ctrl.Signal(sig)
	return nil
}

func (o *object) Focus(change string) *dbus.Error {
	c, ok := focus.ParseChange(change)
	if !ok {
		return invalidArgs("unknown focus change %q", change)
	}
	o.ctrl.HandleFocus(c)
	return nil
}

func (o *object) Load(paths []string, index int32) *dbus.Error {
	if len(paths) == 0 {
		return invalidArgs("no paths")
	}
	if err := o.ctrl.LoadPaths(paths, int(index)); err != nil {
		return dbus.MakeFailedError(err)
	}
	return nil
}

func (o *object) Enqueue(paths []string, play bool) *dbus.Error {
	if len(paths) == 0 {
		return invalidArgs("no paths")
	}
	if err := o.ctrl.EnqueuePaths(paths, play); err != nil {
		return dbus.MakeFailedError(err)
	}
	return nil
}

func (o *object) Remove(index int32) *dbus.Error {
	if err := o.ctrl.Remove(int(index)); err != nil {
		return dbus.MakeFailedError(err)
	}
	return nil
}

// Repeat takes off, all, one or cycle and returns the resulting mode.
func (o *object) Repeat(mode string) (string, *dbus.Error) {
	if mode == "cycle" {
		return strings.ToLower(o.ctrl.CycleRepeat().String()), nil
	}
	m, ok := playlist.ParseRepeatMode(mode)
	if !ok {
		return "", invalidArgs("unknown repeat mode %q", mode)
	}
	o.ctrl.SetRepeat(m)
	return mode, nil
}

// Shuffle takes on, off or toggle and returns the resulting setting.
func (o *object) Shuffle(mode string) (bool, *dbus.Error) {
	switch mode {
	case "on", "off":
		on := mode == "on"
		o.ctrl.SetShuffle(on)
		return on, nil
	case "toggle":
		return o.ctrl.ToggleShuffle(), nil
	}
	return false, invalidArgs("unknown shuffle mode %q", mode)
}

func (o *object) SetPresentation(detached bool) *dbus.Error {
	o.ctrl.SetPresentation(detached)
	return nil
}

func (o *object) Status() (map[string]dbus.Variant, *dbus.Error) {
	st, err := o.ctrl.Status()
	if err != nil {
		return nil, dbus.MakeFailedError(err)
	}
	return encodeStatus(st), nil
}

// Info is the status as carried over the bus.
type Info struct {
	Phase         string
	Focus         string
	Surface       string
	WakeLockHeld  bool
	SessionActive bool
	Listeners     int

	Path     string
	Title    string
	Artist   string
	Album    string
	Next     string
	Position time.Duration
	Length   time.Duration
	Volume   int

	QueueLength int
	QueueIndex  int
	Repeat      string
	Shuffle     bool

	WidgetEnabled bool
	StoreReady    bool
}

func encodeStatus(st playback.Status) map[string]dbus.Variant {
	m := map[string]dbus.Variant{
		"phase":          dbus.MakeVariant(st.Phase.String()),
		"focus":          dbus.MakeVariant(st.Focus.String()),
		"surface":        dbus.MakeVariant(st.Surface.String()),
		"wake_lock":      dbus.MakeVariant(st.WakeLockHeld),
		"session_active": dbus.MakeVariant(st.SessionActive),
		"listeners":      dbus.MakeVariant(int32(st.Listeners)),
		"position_ms":    dbus.MakeVariant(st.Position.Milliseconds()),
		"length_ms":      dbus.MakeVariant(st.Length.Milliseconds()),
		"volume":         dbus.MakeVariant(int32(st.Volume)),
		"queue_length":   dbus.MakeVariant(int32(st.QueueLength)),
		"queue_index":    dbus.MakeVariant(int32(st.QueueIndex)),
		"repeat":         dbus.MakeVariant(st.Repeat.String()),
		"shuffle":        dbus.MakeVariant(st.Shuffle),
		"widget_enabled": dbus.MakeVariant(st.WidgetEnabled),
		"store_ready":    dbus.MakeVariant(st.StoreReady),
	}
	if t := st.Track; t != nil {
		m["path"] = dbus.MakeVariant(t.Path)
		m["title"] = dbus.MakeVariant(t.Title)
		m["artist"] = dbus.MakeVariant(t.DisplayArtist())
		m["album"] = dbus.MakeVariant(t.Album)
	}
	if t := st.Next; t != nil {
		next := t.Title
		if next == "" {
			next = t.Path
		}
		m["next"] = dbus.MakeVariant(next)
	}
	return m
}

// DecodeInfo reads a Status reply. Missing or mistyped keys keep their zero
// value.
func DecodeInfo(m map[string]dbus.Variant) Info {
	return Info{
		Phase:         variantAs[string](m, "phase"),
		Focus:         variantAs[string](m, "focus"),
		Surface:       variantAs[string](m, "surface"),
		WakeLockHeld:  variantAs[bool](m, "wake_lock"),
		SessionActive: variantAs[bool](m, "session_active"),
		Listeners:     int(variantAs[int32](m, "listeners")),
		Path:          variantAs[string](m, "path"),
		Title:         variantAs[string](m, "title"),
		Artist:        variantAs[string](m, "artist"),
		Album:         variantAs[string](m, "album"),
		Next:          variantAs[string](m, "next"),
		Position:      time.Duration(variantAs[int64](m, "position_ms")) * time.Millisecond,
		Length:        time.Duration(variantAs[int64](m, "length_ms")) * time.Millisecond,
		Volume:        int(variantAs[int32](m, "volume")),
		QueueLength:   int(variantAs[int32](m, "queue_length")),
		QueueIndex:    int(variantAs[int32](m, "queue_index")),
		Repeat:        variantAs[string](m, "repeat"),
		Shuffle:       variantAs[bool](m, "shuffle"),
		WidgetEnabled: variantAs[bool](m, "widget_enabled"),
		StoreReady:    variantAs[bool](m, "store_ready"),
	}
}

func variantAs[T any](m map[string]dbus.Variant, key string) T {
	var zero T
	v, ok := m[key]
	if !ok {
		return zero
	}
	t, ok := v.Value().(T)
	if !ok {
		return zero
	}
	return t
}
