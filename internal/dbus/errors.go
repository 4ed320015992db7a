package dbus

import (
	"errors"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/swaydisplayd/internal/display"
)

// errPrefix namespaces the client-visible failure taxonomy.
const errPrefix = DBusInterface + ".Error."

// toDBusError maps a domain error to a named D-Bus error so clients can
// tell exactly which rule failed. Anything outside the taxonomy becomes
// a generic failure; it never crashes the daemon.
func toDBusError(err error) *dbus.Error {
	name := "Failed"
	switch {
	case errors.Is(err, display.ErrStaleSerial):
		name = "StaleSerial"
	case errors.Is(err, display.ErrMonitorNotFound):
		name = "MonitorNotFound"
	case errors.Is(err, display.ErrInvalidMode):
		name = "InvalidMode"
	case errors.Is(err, display.ErrInvalidScale):
		name = "InvalidScale"
	case errors.Is(err, display.ErrInvalidTransform):
		name = "InvalidTransform"
	case errors.Is(err, display.ErrPersistence):
		name = "PersistenceFailure"
	}
	return dbus.NewError(errPrefix+name, []interface{}{err.Error()})
}

func invalidArgs(msg string) *dbus.Error {
	return dbus.NewError("org.freedesktop.DBus.Error.InvalidArgs", []interface{}{msg})
}
