package dbus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"

	"github.com/jmylchreest/swaydisplayd/internal/daemon"
)

const (
	// DBusInterface is the display-config interface name.
	DBusInterface = "org.gnome.Mutter.DisplayConfig"
	// DBusPath is the display-config object path.
	DBusPath = "/org/gnome/Mutter/DisplayConfig"
	// DBusBusName is the bus name to claim. Settings clients find the
	// daemon by this name, so it must match the interface.
	DBusBusName = "org.gnome.Mutter.DisplayConfig"
)

// Server exports the DisplayConfig interface on the session bus. All
// mutation requests are forwarded to the manager; the server itself
// holds no display state.
type Server struct {
	conn    *dbus.Conn
	logger  *slog.Logger
	manager *daemon.Manager

	mu      sync.Mutex
	running bool
}

// NewServer creates a Server for the given manager.
func NewServer(manager *daemon.Manager, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{logger: logger, manager: manager}
}

// Start connects to the session bus, exports the object and claims the
// bus name.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.mu.Unlock()

	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	s.conn = conn

	if err := conn.Export(s, DBusPath, DBusInterface); err != nil {
		return fmt.Errorf("failed to export object: %w", err)
	}

	if _, err := prop.Export(conn, DBusPath, map[string]map[string]*prop.Prop{
		DBusInterface: {
			"ApplyMonitorsConfigAllowed": {
				Value:    true,
				Writable: false,
				Emit:     prop.EmitTrue,
			},
		},
	}); err != nil {
		return fmt.Errorf("failed to export properties: %w", err)
	}

	node := &introspect.Node{
		Name: DBusPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			prop.IntrospectData,
			{
				Name:       DBusInterface,
				Methods:    displayConfigMethods(),
				Signals:    displayConfigSignals(),
				Properties: displayConfigProperties(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), DBusPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	reply, err := conn.RequestName(DBusBusName, dbus.NameFlagDoNotQueue|dbus.NameFlagReplaceExisting)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %s already taken", DBusBusName)
	}

	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	s.logger.Info("display config server started", "interface", DBusInterface, "path", DBusPath)
	return nil
}

// Stop releases the bus name. The session bus connection is shared and
// stays open.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	if s.conn != nil {
		if _, err := s.conn.ReleaseName(DBusBusName); err != nil {
			s.logger.Warn("failed to release bus name", "error", err)
		}
	}

	s.logger.Info("display config server stopped")
	return nil
}

// GetCurrentState returns the cached display snapshot. It performs no
// compositor I/O.
// D-Bus method: GetCurrentState() -> (ua((ssss)a(siiddada{sv})a{sv})a(iiduba(ssss)a{sv})a{sv})
func (s *Server) GetCurrentState() (uint32, []Monitor, []LogicalMonitor, map[string]dbus.Variant, *dbus.Error) {
	snap := s.manager.Snapshot()
	s.logger.Debug("GetCurrentState called", "serial", snap.Serial, "monitors", len(snap.Monitors))
	serial, monitors, logical, props := snapshotToWire(snap)
	return serial, monitors, logical, props, nil
}

// ApplyMonitorsConfig applies or verifies a monitor configuration.
// D-Bus method: ApplyMonitorsConfig(uua(iiduba(ssa{sv}))a{sv}) -> ()
func (s *Server) ApplyMonitorsConfig(serial uint32, method uint32, logicalMonitors []ApplyLogicalMonitor, properties map[string]dbus.Variant) *dbus.Error {
	s.logger.Debug("ApplyMonitorsConfig called",
		"serial", serial, "method", method, "logical_monitors", len(logicalMonitors))

	if method > uint32(daemon.MethodPersistent) {
		return invalidArgs(fmt.Sprintf("unknown configuration method %d", method))
	}

	entries, err := applyEntriesFromWire(logicalMonitors)
	if err != nil {
		return invalidArgs(err.Error())
	}

	props := propertiesFromWire(properties, s.manager.Snapshot().Properties)
	if err := s.manager.Apply(context.Background(), serial, daemon.ApplyMethod(method), entries, props); err != nil {
		s.logger.Warn("configuration rejected", "method", method, "error", err)
		return toDBusError(err)
	}
	return nil
}

// MonitorsChanged implements daemon.Notifier: it emits the
// MonitorsChanged signal. The signal carries no payload; clients call
// GetCurrentState afterwards.
func (s *Server) MonitorsChanged() {
	if s.conn == nil {
		return
	}
	if err := s.conn.Emit(DBusPath, DBusInterface+".MonitorsChanged"); err != nil {
		s.logger.Warn("failed to emit MonitorsChanged signal", "error", err)
		return
	}
	s.logger.Debug("emitted MonitorsChanged signal")
}

func displayConfigMethods() []introspect.Method {
	return []introspect.Method{
		{
			Name: "GetCurrentState",
			Args: []introspect.Arg{
				{Name: "serial", Type: "u", Direction: "out"},
				{Name: "monitors", Type: "a((ssss)a(siiddada{sv})a{sv})", Direction: "out"},
				{Name: "logical_monitors", Type: "a(iiduba(ssss)a{sv})", Direction: "out"},
				{Name: "properties", Type: "a{sv}", Direction: "out"},
			},
		},
		{
			Name: "ApplyMonitorsConfig",
			Args: []introspect.Arg{
				{Name: "serial", Type: "u", Direction: "in"},
				{Name: "method", Type: "u", Direction: "in"},
				{Name: "logical_monitors", Type: "a(iiduba(ssa{sv}))", Direction: "in"},
				{Name: "properties", Type: "a{sv}", Direction: "in"},
			},
		},
	}
}

func displayConfigSignals() []introspect.Signal {
	return []introspect.Signal{
		{Name: "MonitorsChanged"},
	}
}

func displayConfigProperties() []introspect.Property {
	return []introspect.Property{
		{Name: "ApplyMonitorsConfigAllowed", Type: "b", Access: "read"},
	}
}
