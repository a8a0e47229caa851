package control

import (
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
)

// Server owns the control bus name. It also emits effects session signals,
// which is why it exists before the Controller it serves.
type Server struct {
	conn *dbus.Conn
}

// Connect opens a private session bus connection.
func Connect() (*Server, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect to session bus: %w", err)
	}
	return &Server{conn: conn}, nil
}

// Serve exports ctrl and claims the bus name.
func (s *Server) Serve(ctrl Controller) error {
	obj := &object{ctrl: ctrl}
	if err := s.conn.Export(obj, ObjectPath, Interface); err != nil {
		return fmt.Errorf("export control object: %w", err)
	}

	node := &introspect.Node{
		Name: string(ObjectPath),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    Interface,
				Methods: introspect.Methods(obj),
				Signals: []introspect.Signal{
					{Name: "EffectsSessionOpened", Args: []introspect.Arg{{Name: "id", Type: "s"}}},
					{Name: "EffectsSessionClosed", Args: []introspect.Arg{{Name: "id", Type: "s"}}},
				},
			},
		},
	}
	if err := s.conn.Export(introspect.NewIntrospectable(node), ObjectPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("export introspection: %w", err)
	}

	reply, err := s.conn.RequestName(BusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return ErrNameTaken
	}
	return nil
}

// OpenSession implements session.Effects.
func (s *Server) OpenSession(id string) error {
	return s.conn.Emit(ObjectPath, Interface+".EffectsSessionOpened", id)
}

// CloseSession implements session.Effects.
func (s *Server) CloseSession(id string) error {
	return s.conn.Emit(ObjectPath, Interface+".EffectsSessionClosed", id)
}

// Close releases the bus name and the connection.
func (s *Server) Close() error {
	_, _ = s.conn.ReleaseName(BusName)
	return s.conn.Close()
}
