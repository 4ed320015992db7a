package display

import (
	"fmt"
	"math"
	"strconv"

	"github.com/joshuarubin/go-sway"
)

// scaleLadder is the set of scales advertised for every mode. Wayland
// compositors accept fractional scaling in these steps; sway itself does
// not report per-mode scale capabilities, so the ladder is fixed.
var scaleLadder = []float64{0.25, 0.5, 0.75, 1.0, 1.25, 1.5, 1.75, 2.0}

// scaleTolerance absorbs float noise when a client echoes back a scale
// we advertised through the D-Bus boundary.
const scaleTolerance = 1e-6

// Mode is one resolution/refresh combination supported by a monitor.
// The ID is the only key clients use to reference a mode; it is derived
// from width, height and refresh rate and is stable for that triple.
type Mode struct {
	ID              string
	Width           int
	Height          int
	RefreshRate     float64
	PreferredScale  float64
	SupportedScales []float64

	IsCurrent    bool
	IsPreferred  bool
	IsInterlaced bool
}

// ModeID builds the canonical mode identifier, e.g. "1920x1080@60Hz".
// The refresh component renders with minimal digits so that 60000 mHz
// and 59951 mHz become "60" and "59.951" respectively.
func ModeID(width, height int, refreshHz float64) string {
	return fmt.Sprintf("%dx%d@%sHz", width, height, formatRefresh(refreshHz))
}

func formatRefresh(hz float64) string {
	// Round away sub-millihertz noise before formatting.
	hz = math.Round(hz*1000) / 1000
	return strconv.FormatFloat(hz, 'f', -1, 64)
}

// newMode builds a Mode from a sway mode record. current marks the mode
// the output is running right now; the flag is fixed at construction
// time and never recomputed, so a Monitor snapshot stays immutable.
func newMode(m sway.OutputMode, current bool) Mode {
	refresh := float64(m.Refresh) / 1000
	return Mode{
		ID:              ModeID(int(m.Width), int(m.Height), refresh),
		Width:           int(m.Width),
		Height:          int(m.Height),
		RefreshRate:     refresh,
		PreferredScale:  1.0,
		SupportedScales: scaleLadder,
		IsCurrent:       current,
	}
}

// SupportsScale reports whether the mode advertises the given scale.
func (m Mode) SupportsScale(scale float64) bool {
	for _, s := range m.SupportedScales {
		if math.Abs(s-scale) < scaleTolerance {
			return true
		}
	}
	return false
}
