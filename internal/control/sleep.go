package control

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/llehouerou/wavesd/internal/focus"
)

const (
	logindPath      = dbus.ObjectPath("/org/freedesktop/login1")
	logindInterface = "org.freedesktop.login1.Manager"
	prepareForSleep = "PrepareForSleep"
)

// WatchSleep forwards logind suspend and resume as focus changes until ctx
// is done. Suspend is a transient loss, resume a gain.
func WatchSleep(ctx context.Context, handle func(focus.Change)) error {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return fmt.Errorf("connect to system bus: %w", err)
	}
	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(logindPath),
		dbus.WithMatchInterface(logindInterface),
		dbus.WithMatchMember(prepareForSleep),
	); err != nil {
		conn.Close()
		return fmt.Errorf("match %s: %w", prepareForSleep, err)
	}

	signals := make(chan *dbus.Signal, 4)
	conn.Signal(signals)

	go func() {
		defer conn.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case sig, ok := <-signals:
				if !ok {
					return
				}
				if c, ok := sleepChange(sig); ok {
					handle(c)
				}
			}
		}
	}()
	return nil
}

func sleepChange(sig *dbus.Signal) (focus.Change, bool) {
	if sig == nil || sig.Name != logindInterface+"."+prepareForSleep || len(sig.Body) != 1 {
		return 0, false
	}
	sleeping, ok := sig.Body[0].(bool)
	if !ok {
		return 0, false
	}
	if sleeping {
		return focus.LossTransient, true
	}
	return focus.Gain, true
}
