package display

import (
	"fmt"
	"strings"

	"github.com/joshuarubin/go-sway"
)

// MonitorID is the identity tuple of a physical monitor. Connector is
// the stable hardware port name (e.g. "DP-1"); vendor, product and
// serial form the human-facing display identity that survives connector
// renumbering.
type MonitorID struct {
	Connector string
	Vendor    string
	Product   string
	Serial    string
}

// DisplayName returns the vendor/product/serial triple used to address
// the monitor in sway commands and kanshi profiles.
func (id MonitorID) DisplayName() string {
	return fmt.Sprintf("%s %s %s", id.Vendor, id.Product, id.Serial)
}

// Monitor is an immutable snapshot of one physical monitor and its
// supported modes. Monitors are created wholesale from a compositor
// query and never partially mutated afterwards.
type Monitor struct {
	ID    MonitorID
	Modes []Mode

	WidthMM  int
	HeightMM int
	Builtin  bool
}

// NewMonitor builds a Monitor from a sway output descriptor.
func NewMonitor(o sway.Output) Monitor {
	modes := make([]Mode, 0, len(o.Modes))
	for _, m := range o.Modes {
		current := o.Active &&
			m.Width == o.CurrentMode.Width &&
			m.Height == o.CurrentMode.Height &&
			m.Refresh == o.CurrentMode.Refresh
		modes = append(modes, newMode(m, current))
	}
	return Monitor{
		ID: MonitorID{
			Connector: o.Name,
			Vendor:    o.Make,
			Product:   o.Model,
			Serial:    o.Serial,
		},
		Modes:    modes,
		WidthMM:  int(o.Rect.Width),
		HeightMM: int(o.Rect.Height),
	}
}

// FindMode looks up a mode by its canonical ID.
func (m Monitor) FindMode(id string) (Mode, bool) {
	for _, mode := range m.Modes {
		if mode.ID == id {
			return mode, true
		}
	}
	return Mode{}, false
}

// DisplayName returns the monitor's display name.
func (m Monitor) DisplayName() string {
	return m.ID.DisplayName()
}

// IdentityKey returns a string that changes whenever anything the
// change watcher should react to changes: the identity tuple, the mode
// list, or which mode is current.
func (m Monitor) IdentityKey() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|%s|%s|%s|%dx%d", m.ID.Connector, m.ID.Vendor, m.ID.Product, m.ID.Serial, m.WidthMM, m.HeightMM)
	for _, mode := range m.Modes {
		fmt.Fprintf(&b, "|%s:%t", mode.ID, mode.IsCurrent)
	}
	return b.String()
}

// LogicalMonitor is an active placement of one physical monitor within
// the desktop layout. It is rebuilt from the compositor on every query.
type LogicalMonitor struct {
	X         int
	Y         int
	Scale     float64
	Transform Transform
	// Primary is always false on Wayland compositors; it is carried for
	// protocol compatibility and deliberately excluded from IdentityKey.
	Primary bool
	Monitor MonitorID
}

// NewLogicalMonitor builds a LogicalMonitor from an active sway output.
func NewLogicalMonitor(o sway.Output) LogicalMonitor {
	scale := o.Scale
	if scale == 0 {
		scale = 1.0
	}
	return LogicalMonitor{
		X:         int(o.Rect.X),
		Y:         int(o.Rect.Y),
		Scale:     scale,
		Transform: ParseCompositorTransform(o.Transform),
		Primary:   o.Primary,
		Monitor: MonitorID{
			Connector: o.Name,
			Vendor:    o.Make,
			Product:   o.Model,
			Serial:    o.Serial,
		},
	}
}

// IdentityKey returns the equality key used for change detection:
// position, scale, transform and the referenced monitor identity.
func (l LogicalMonitor) IdentityKey() string {
	return fmt.Sprintf("%d,%d|%g|%d|%s|%s|%s|%s",
		l.X, l.Y, l.Scale, l.Transform.Code(),
		l.Monitor.Connector, l.Monitor.Vendor, l.Monitor.Product, l.Monitor.Serial)
}

// FromOutputs converts a compositor output listing into the snapshot
// lists: every output becomes a Monitor, every active output also
// becomes a LogicalMonitor.
func FromOutputs(outputs []sway.Output) ([]Monitor, []LogicalMonitor) {
	monitors := make([]Monitor, 0, len(outputs))
	logical := make([]LogicalMonitor, 0, len(outputs))
	for _, o := range outputs {
		monitors = append(monitors, NewMonitor(o))
		if o.Active {
			logical = append(logical, NewLogicalMonitor(o))
		}
	}
	return monitors, logical
}

// Properties is the adapter-wide configuration advertised to clients.
// It is replaced wholesale by a successful apply.
type Properties struct {
	LayoutMode                 uint32
	SupportsChangingLayoutMode bool
	GlobalScaleRequired        bool
	LegacyUIScalingFactor      int32
}

// DefaultProperties returns the properties advertised before any client
// has applied a configuration.
func DefaultProperties() Properties {
	return Properties{
		LayoutMode:                 1,
		SupportsChangingLayoutMode: true,
		GlobalScaleRequired:        false,
		LegacyUIScalingFactor:      1,
	}
}
