package dbus

import (
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/swaydisplayd/internal/display"
	"github.com/jmylchreest/swaydisplayd/internal/state"
)

// Wire types mirroring the DisplayConfig signatures. godbus marshals
// struct fields in declaration order, so field order here is protocol,
// not style.

// MonitorDescriptor is the (ssss) identity tuple.
type MonitorDescriptor struct {
	Connector string
	Vendor    string
	Product   string
	Serial    string
}

// Mode is one entry of a monitor's mode list: (siiddada{sv}).
type Mode struct {
	ID              string
	Width           int32
	Height          int32
	RefreshRate     float64
	PreferredScale  float64
	SupportedScales []float64
	Properties      map[string]dbus.Variant
}

// Monitor is one physical monitor: ((ssss)a(siiddada{sv})a{sv}).
type Monitor struct {
	Descriptor MonitorDescriptor
	Modes      []Mode
	Properties map[string]dbus.Variant
}

// LogicalMonitor is one active placement: (iiduba(ssss)a{sv}).
type LogicalMonitor struct {
	X          int32
	Y          int32
	Scale      float64
	Transform  uint32
	Primary    bool
	Monitors   []MonitorDescriptor
	Properties map[string]dbus.Variant
}

// ApplyMonitor references one monitor inside an apply request:
// (ssa{sv}): connector, mode ID, properties.
type ApplyMonitor struct {
	Connector  string
	Mode       string
	Properties map[string]dbus.Variant
}

// ApplyLogicalMonitor is one desired placement from a client:
// (iiduba(ssa{sv})).
type ApplyLogicalMonitor struct {
	X         int32
	Y         int32
	Scale     float64
	Transform uint32
	Primary   bool
	Monitors  []ApplyMonitor
}

func descriptorFromID(id display.MonitorID) MonitorDescriptor {
	return MonitorDescriptor{
		Connector: id.Connector,
		Vendor:    id.Vendor,
		Product:   id.Product,
		Serial:    id.Serial,
	}
}

func modeToWire(m display.Mode) Mode {
	return Mode{
		ID:              m.ID,
		Width:           int32(m.Width),
		Height:          int32(m.Height),
		RefreshRate:     m.RefreshRate,
		PreferredScale:  m.PreferredScale,
		SupportedScales: m.SupportedScales,
		Properties: map[string]dbus.Variant{
			"is-current":    dbus.MakeVariant(m.IsCurrent),
			"is-preferred":  dbus.MakeVariant(m.IsPreferred),
			"is-interlaced": dbus.MakeVariant(m.IsInterlaced),
		},
	}
}

func monitorToWire(m display.Monitor) Monitor {
	modes := make([]Mode, len(m.Modes))
	for i, mode := range m.Modes {
		modes[i] = modeToWire(mode)
	}
	return Monitor{
		Descriptor: descriptorFromID(m.ID),
		Modes:      modes,
		Properties: map[string]dbus.Variant{
			"width-mm":     dbus.MakeVariant(int32(m.WidthMM)),
			"height-mm":    dbus.MakeVariant(int32(m.HeightMM)),
			"is-builtin":   dbus.MakeVariant(m.Builtin),
			"display-name": dbus.MakeVariant(m.DisplayName()),
		},
	}
}

func logicalToWire(l display.LogicalMonitor) LogicalMonitor {
	return LogicalMonitor{
		X:          int32(l.X),
		Y:          int32(l.Y),
		Scale:      l.Scale,
		Transform:  l.Transform.Code(),
		Primary:    l.Primary,
		Monitors:   []MonitorDescriptor{descriptorFromID(l.Monitor)},
		Properties: map[string]dbus.Variant{},
	}
}

func snapshotToWire(snap state.Snapshot) (uint32, []Monitor, []LogicalMonitor, map[string]dbus.Variant) {
	monitors := make([]Monitor, len(snap.Monitors))
	for i, m := range snap.Monitors {
		monitors[i] = monitorToWire(m)
	}
	logical := make([]LogicalMonitor, len(snap.LogicalMonitors))
	for i, l := range snap.LogicalMonitors {
		logical[i] = logicalToWire(l)
	}
	return snap.Serial, monitors, logical, propertiesToWire(snap.Properties)
}

func propertiesToWire(p display.Properties) map[string]dbus.Variant {
	return map[string]dbus.Variant{
		"layout-mode":                   dbus.MakeVariant(p.LayoutMode),
		"supports-changing-layout-mode": dbus.MakeVariant(p.SupportsChangingLayoutMode),
		"global-scale-required":         dbus.MakeVariant(p.GlobalScaleRequired),
		"legacy-ui-scaling-factor":      dbus.MakeVariant(p.LegacyUIScalingFactor),
	}
}

// propertiesFromWire decodes the client-supplied property dict.
// Unknown keys are ignored; missing keys keep the current value.
func propertiesFromWire(in map[string]dbus.Variant, current display.Properties) display.Properties {
	out := current
	if v, ok := in["layout-mode"]; ok {
		if mode, ok := v.Value().(uint32); ok {
			out.LayoutMode = mode
		}
	}
	if v, ok := in["supports-changing-layout-mode"]; ok {
		if b, ok := v.Value().(bool); ok {
			out.SupportsChangingLayoutMode = b
		}
	}
	if v, ok := in["global-scale-required"]; ok {
		if b, ok := v.Value().(bool); ok {
			out.GlobalScaleRequired = b
		}
	}
	if v, ok := in["legacy-ui-scaling-factor"]; ok {
		if f, ok := v.Value().(int32); ok {
			out.LegacyUIScalingFactor = f
		}
	}
	return out
}

// applyEntriesFromWire flattens the request into the domain's apply
// entries. Each desired logical monitor must reference at least one
// monitor; only the first reference is used, as mirroring inside one
// logical monitor is not supported by the compositor.
func applyEntriesFromWire(in []ApplyLogicalMonitor) ([]display.ApplyEntry, error) {
	entries := make([]display.ApplyEntry, 0, len(in))
	for _, lm := range in {
		if len(lm.Monitors) == 0 {
			return nil, fmt.Errorf("logical monitor at %d,%d references no monitors", lm.X, lm.Y)
		}
		entries = append(entries, display.ApplyEntry{
			X:             int(lm.X),
			Y:             int(lm.Y),
			Scale:         lm.Scale,
			TransformCode: lm.Transform,
			Primary:       lm.Primary,
			Connector:     lm.Monitors[0].Connector,
			ModeID:        lm.Monitors[0].Mode,
		})
	}
	return entries, nil
}
