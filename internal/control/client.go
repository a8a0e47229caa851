package control

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

// Client calls a running daemon.
type Client struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

// Dial connects to the session bus. It does not check that the daemon runs.
func Dial() (*Client, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect to session bus: %w", err)
	}
	return &Client{conn: conn, obj: conn.Object(BusName, ObjectPath)}, nil
}

func (c *Client) Close() error { return c.conn.Close() }

func (c *Client) call(ctx context.Context, method string, args ...any) *dbus.Call {
	return c.obj.CallWithContext(ctx, Interface+"."+method, 0, args...)
}

// Signal delivers a named broadcast.
func (c *Client) Signal(ctx context.Context, name string) error {
	return c.call(ctx, "Signal", name).Err
}

// Focus delivers a named focus change.
func (c *Client) Focus(ctx context.Context, change string) error {
	return c.call(ctx, "Focus", change).Err
}

// Load replaces the queue with paths and starts playing at index.
func (c *Client) Load(ctx context.Context, paths []string, index int) error {
	return c.call(ctx, "Load", paths, int32(index)).Err
}

// Enqueue appends paths to the queue, jumping to them when play is set.
func (c *Client) Enqueue(ctx context.Context, paths []string, play bool) error {
	return c.call(ctx, "Enqueue", paths, play).Err
}

// Remove drops the queue entry at index.
func (c *Client) Remove(ctx context.Context, index int) error {
	return c.call(ctx, "Remove", int32(index)).Err
}

// Repeat sets or cycles the repeat mode and returns the new one.
func (c *Client) Repeat(ctx context.Context, mode string) (string, error) {
	var got string
	err := c.call(ctx, "Repeat", mode).Store(&got)
	return got, err
}

// Shuffle sets or toggles shuffle and returns the new setting.
func (c *Client) Shuffle(ctx context.Context, mode string) (bool, error) {
	var on bool
	err := c.call(ctx, "Shuffle", mode).Store(&on)
	return on, err
}

func (c *Client) SetPresentation(ctx context.Context, detached bool) error {
	return c.call(ctx, "SetPresentation", detached).Err
}

// Status reads the daemon status.
func (c *Client) Status(ctx context.Context) (Info, error) {
	var m map[string]dbus.Variant
	if err := c.call(ctx, "Status").Store(&m); err != nil {
		return Info{}, err
	}
	return DecodeInfo(m), nil
}
