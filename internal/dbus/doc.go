// Package dbus implements the org.gnome.Mutter.DisplayConfig D-Bus
// interface. It exposes the cached display state, accepts apply/verify
// configuration requests, serves the ApplyMonitorsConfigAllowed
// property and emits the MonitorsChanged signal. It also provides the
// client side used by swaydisplayctl.
package dbus
