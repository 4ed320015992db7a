package display

import (
	"testing"

	"github.com/joshuarubin/go-sway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModeID(t *testing.T) {
	tests := []struct {
		width, height int
		refresh       float64
		want          string
	}{
		{1920, 1080, 60, "1920x1080@60Hz"},
		{2560, 1440, 59.951, "2560x1440@59.951Hz"},
		{3840, 2160, 144, "3840x2160@144Hz"},
		{1280, 720, 59.94, "1280x720@59.94Hz"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ModeID(tt.width, tt.height, tt.refresh))
	}
}

func TestModeID_StableFromMillihertz(t *testing.T) {
	// The sway IPC reports refresh in millihertz; the derived ID must be
	// stable for a given triple.
	a := newMode(sway.OutputMode{Width: 1920, Height: 1080, Refresh: 60000}, false)
	b := newMode(sway.OutputMode{Width: 1920, Height: 1080, Refresh: 60000}, true)
	assert.Equal(t, "1920x1080@60Hz", a.ID)
	assert.Equal(t, a.ID, b.ID)

	c := newMode(sway.OutputMode{Width: 1920, Height: 1080, Refresh: 59951}, false)
	assert.Equal(t, "1920x1080@59.951Hz", c.ID)
}

func TestModeSupportsScale(t *testing.T) {
	m := newMode(sway.OutputMode{Width: 1920, Height: 1080, Refresh: 60000}, false)
	assert.True(t, m.SupportsScale(1.0))
	assert.True(t, m.SupportsScale(1.25))
	assert.True(t, m.SupportsScale(2.0))
	assert.False(t, m.SupportsScale(3.0))
	assert.False(t, m.SupportsScale(0.1))
}

func TestNewMonitor_CurrentMode(t *testing.T) {
	out := testOutput("DP-1", true)
	m := NewMonitor(out)

	require.Len(t, m.Modes, 2)
	assert.True(t, m.Modes[0].IsCurrent)
	assert.False(t, m.Modes[1].IsCurrent)
	assert.Equal(t, "DP-1", m.ID.Connector)
	assert.Equal(t, "Dell Inc. U2720Q ABC123", m.DisplayName())
}

func TestNewMonitor_InactiveHasNoCurrentMode(t *testing.T) {
	out := testOutput("DP-1", false)
	m := NewMonitor(out)
	for _, mode := range m.Modes {
		assert.False(t, mode.IsCurrent)
	}
}

func TestFromOutputs(t *testing.T) {
	outputs := []sway.Output{
		testOutput("DP-1", true),
		testOutput("HDMI-A-1", false),
	}
	monitors, logical := FromOutputs(outputs)
	assert.Len(t, monitors, 2)
	require.Len(t, logical, 1)
	assert.Equal(t, "DP-1", logical[0].Monitor.Connector)
}

func TestLogicalMonitorIdentityKey_IgnoresPrimary(t *testing.T) {
	a := NewLogicalMonitor(testOutput("DP-1", true))
	b := a
	b.Primary = true
	assert.Equal(t, a.IdentityKey(), b.IdentityKey())

	c := a
	c.X = 100
	assert.NotEqual(t, a.IdentityKey(), c.IdentityKey())
}

func TestMonitorIdentityKey_TracksCurrentMode(t *testing.T) {
	a := NewMonitor(testOutput("DP-1", true))
	b := NewMonitor(testOutput("DP-1", false))
	assert.NotEqual(t, a.IdentityKey(), b.IdentityKey())
}

// testOutput builds a two-mode sway output for tests. The first mode is
// the current one when active.
func testOutput(connector string, active bool) sway.Output {
	return sway.Output{
		Name:        connector,
		Make:        "Dell Inc.",
		Model:       "U2720Q",
		Serial:      "ABC123",
		Active:      active,
		Scale:       1.0,
		Transform:   "normal",
		CurrentMode: sway.OutputMode{Width: 3840, Height: 2160, Refresh: 60000},
		Modes: []sway.OutputMode{
			{Width: 3840, Height: 2160, Refresh: 60000},
			{Width: 1920, Height: 1080, Refresh: 60000},
		},
		Rect: sway.Rect{X: 0, Y: 0, Width: 3840, Height: 2160},
	}
}
