package display

import (
	"fmt"
	"strconv"
)

// ApplyEntry is one desired logical monitor from a client request. It
// exists only for the duration of one apply/verify call.
type ApplyEntry struct {
	X             int
	Y             int
	Scale         float64
	TransformCode uint32
	Primary       bool
	Connector     string
	ModeID        string
}

// Resolve finds the physical monitor the entry references by connector
// identity.
func (e ApplyEntry) Resolve(monitors []Monitor) (Monitor, error) {
	for _, m := range monitors {
		if m.ID.Connector == e.Connector {
			return m, nil
		}
	}
	return Monitor{}, fmt.Errorf("%w: connector %q", ErrMonitorNotFound, e.Connector)
}

// Validate checks the entry against the resolved monitor. This is the
// single rule set shared by the verify path and the pre-apply check;
// it is pure and touches nothing.
func (e ApplyEntry) Validate(monitor Monitor) error {
	mode, ok := monitor.FindMode(e.ModeID)
	if !ok {
		return fmt.Errorf("%w: %q on %s", ErrInvalidMode, e.ModeID, monitor.ID.Connector)
	}
	if !mode.SupportsScale(e.Scale) {
		return fmt.Errorf("%w: %g not supported by mode %s", ErrInvalidScale, e.Scale, mode.ID)
	}
	if _, err := TransformFromCode(e.TransformCode); err != nil {
		return err
	}
	return nil
}

// Transform decodes the entry's transform code. Call Validate first;
// an invalid code falls back to the untransformed orientation here.
func (e ApplyEntry) Transform() Transform {
	t, err := TransformFromCode(e.TransformCode)
	if err != nil {
		return TransformNormal
	}
	return t
}

// Commands builds the sway output commands that realize the entry on
// the given monitor. The monitor must have passed Validate.
func (e ApplyEntry) Commands(monitor Monitor) []string {
	name := monitor.DisplayName()
	return []string{
		fmt.Sprintf("output '%s' mode %s", name, e.ModeID),
		fmt.Sprintf("output '%s' position %d %d", name, e.X, e.Y),
		fmt.Sprintf("output '%s' scale %s", name, FormatScale(e.Scale)),
		fmt.Sprintf("output '%s' transform %s", name, e.Transform().CompositorName()),
		fmt.Sprintf("output '%s' enable", name),
	}
}

// FormatScale renders a scale factor with minimal digits ("1", "1.25").
func FormatScale(scale float64) string {
	return strconv.FormatFloat(scale, 'f', -1, 64)
}
